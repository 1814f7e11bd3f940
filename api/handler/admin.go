package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/atelierhq/atelier/database"
	"github.com/atelierhq/atelier/database/models"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Flash keys used on the admin dashboard.
const (
	flashError   = "error"
	flashSuccess = "success"
)

// Dashboard lists every painting and every category, sold or not, featured
// or not.
func (h *Handler) Dashboard(c *gin.Context) {
	paintings, err := h.db.ListPaintings(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	categories, err := h.db.ListCategories(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	session := sessions.Default(c)
	errs := session.Flashes(flashError)
	msgs := session.Flashes(flashSuccess)
	if len(errs) > 0 || len(msgs) > 0 {
		// Reading flashes removes them; persist the cleared session.
		_ = session.Save()
	}

	c.HTML(http.StatusOK, "admin.html", gin.H{
		"Paintings":  paintings,
		"Categories": categories,
		"Errors":     errs,
		"Messages":   msgs,
	})
}

// AddPainting creates a painting. An unknown category name or a bad price
// is a validation error, not a silent drop.
func (h *Handler) AddPainting(c *gin.Context) {
	price, ok := h.parsePrice(c, c.PostForm("price"))
	if !ok {
		return
	}

	categoryName := c.PostForm("category")
	category, err := h.db.GetCategoryByName(c.Request.Context(), categoryName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.validationError(c, fmt.Sprintf("Category %q does not exist.", categoryName))
			return
		}
		h.serverError(c, err)
		return
	}

	painting := models.Painting{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Price:       price,
		ImageURL:    c.PostForm("image_url"),
		CategoryID:  category.ID,
	}
	if err := h.db.CreatePainting(c.Request.Context(), &painting); err != nil {
		h.serverError(c, err)
		return
	}

	h.success(c, fmt.Sprintf("Painting %q has been added.", painting.Title))
}

// AddCategory creates a category. The featured flag is derived from the
// presence of the checkbox field.
func (h *Handler) AddCategory(c *gin.Context) {
	category := models.Category{
		Name:             c.PostForm("name"),
		FeaturedImageURL: c.PostForm("featured_image_url"),
		IsFeatured:       c.PostForm("is_featured") != "",
	}

	if err := h.db.CreateCategory(c.Request.Context(), &category); err != nil {
		if errors.Is(err, database.ErrDuplicateName) {
			h.validationError(c, fmt.Sprintf("Category %q already exists.", category.Name))
			return
		}
		h.serverError(c, err)
		return
	}

	h.success(c, fmt.Sprintf("Category %q has been added.", category.Name))
}

// EditPaintingForm renders the prefilled painting form.
func (h *Handler) EditPaintingForm(c *gin.Context) {
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
	categories, err := h.db.ListCategories(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, "edit_painting.html", gin.H{
		"Painting":   painting,
		"Categories": categories,
	})
}

// EditPainting overwrites all mutable fields of the painting. The submitted
// category name must resolve; an unknown name fails instead of silently
// keeping the old reference.
func (h *Handler) EditPainting(c *gin.Context) {
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

	price, ok := h.parsePrice(c, c.PostForm("price"))
	if !ok {
		return
	}

	categoryName := c.PostForm("category")
	category, err := h.db.GetCategoryByName(c.Request.Context(), categoryName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.validationError(c, fmt.Sprintf("Category %q does not exist.", categoryName))
			return
		}
		h.serverError(c, err)
		return
	}

	painting.Title = c.PostForm("title")
	painting.Description = c.PostForm("description")
	painting.Price = price
	painting.ImageURL = c.PostForm("image_url")
	painting.CategoryID = category.ID

	if err := h.db.UpdatePainting(c.Request.Context(), painting); err != nil {
		h.serverError(c, err)
		return
	}

	h.success(c, fmt.Sprintf("Painting %q has been updated.", painting.Title))
}

// DeletePainting deletes by id and reports not-found when the id no longer
// exists.
func (h *Handler) DeletePainting(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	if err := h.db.DeletePainting(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}

	h.success(c, "Painting has been deleted.")
}

// ToggleSold flips the sold flag of the painting.
func (h *Handler) ToggleSold(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	painting, err := h.db.ToggleSold(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}

	state := "available"
	if painting.IsSold {
		state = "sold"
	}
	h.success(c, fmt.Sprintf("Painting %q is now %s.", painting.Title, state))
}

// EditCategoryForm renders the prefilled category form.
func (h *Handler) EditCategoryForm(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	category, err := h.db.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, "edit_category.html", gin.H{"Category": category})
}

// EditCategory overwrites name, featured image and featured flag.
func (h *Handler) EditCategory(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	category, err := h.db.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}

	category.Name = c.PostForm("name")
	category.FeaturedImageURL = c.PostForm("featured_image_url")
	category.IsFeatured = c.PostForm("is_featured") != ""

	if err := h.db.UpdateCategory(c.Request.Context(), category); err != nil {
		if errors.Is(err, database.ErrDuplicateName) {
			h.validationError(c, fmt.Sprintf("Category %q already exists.", category.Name))
			return
		}
		h.serverError(c, err)
		return
	}

	h.success(c, fmt.Sprintf("Category %q has been updated.", category.Name))
}

// DeleteCategory deletes the category and cascades to all of its paintings.
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	category, err := h.db.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}

	if err := h.db.DeleteCategory(c.Request.Context(), id); err != nil {
		h.serverError(c, err)
		return
	}

	h.success(c, fmt.Sprintf("Category %q and all its paintings have been deleted.", category.Name))
}

// parsePrice validates the price form field: it must parse as a
// non-negative number.
func (h *Handler) parsePrice(c *gin.Context, raw string) (float64, bool) {
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < 0 {
		h.validationError(c, fmt.Sprintf("Price %q must be a non-negative number.", raw))
		return 0, false
	}
	return price, true
}

// validationError records an error flash and sends the admin back to the
// dashboard without writing anything.
func (h *Handler) validationError(c *gin.Context, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg, flashError)
	if err := session.Save(); err != nil {
		h.serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

func (h *Handler) success(c *gin.Context, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg, flashSuccess)
	if err := session.Save(); err != nil {
		h.serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}
