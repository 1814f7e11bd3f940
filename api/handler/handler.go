package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/atelierhq/atelier/api/auth"
	"github.com/atelierhq/atelier/database"
	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const loginErrorMessage = "Invalid username or password."

type Handler struct {
	db *database.Client
}

func New(db *database.Client) *Handler {
	return &Handler{db: db}
}

// Home renders the public catalog: featured categories and every unsold
// painting, most recently created first.
func (h *Handler) Home(c *gin.Context) {
	featured, err := h.db.ListFeaturedCategories(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	paintings, err := h.db.ListAvailablePaintings(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"FeaturedCategories": featured,
		"Paintings":          paintings,
	})
}

// CategoryPage renders the unsold paintings of the named category.
func (h *Handler) CategoryPage(c *gin.Context) {
	category, err := h.db.GetCategoryByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}

	paintings, err := h.db.ListAvailableByCategory(c.Request.Context(), category.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, "category.html", gin.H{
		"CategoryName": category.Name,
		"Paintings":    paintings,
	})
}

// Product renders a single painting, sold or not.
func (h *Handler) Product(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	painting, err := h.db.GetPaintingByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, "product.html", gin.H{"Painting": painting})
}

// LoginForm renders the login form, or goes straight to the dashboard if
// the session is already authenticated.
func (h *Handler) LoginForm(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get(auth.SessionUserKey) != nil {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// Login verifies the submitted credentials. The failure message never
// distinguishes a missing user from a wrong password.
func (h *Handler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.db.VerifyUser(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, database.ErrInvalidCredentials) {
			c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Error": loginErrorMessage})
			return
		}
		h.serverError(c, err)
		return
	}

	// Drop any previous session state before storing the new identity.
	session := sessions.Default(c)
	session.Clear()
	session.Set(auth.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		h.serverError(c, err)
		return
	}

	log.Info("admin logged in", "username", user.Username)
	c.Redirect(http.StatusFound, "/admin")
}

// Logout unconditionally clears the session.
func (h *Handler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		h.serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// paramID parses the :id route parameter. A malformed id renders the
// not-found page, same as a missing row.
func (h *Handler) paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.notFound(c)
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", gin.H{})
	c.Abort()
}

func (h *Handler) serverError(c *gin.Context, err error) {
	log.Error("request failed", "path", c.Request.URL.Path, "error", err)
	c.HTML(http.StatusInternalServerError, "500.html", gin.H{})
	c.Abort()
}
