package api

import (
	"fmt"
	"net/http"

	"github.com/atelierhq/atelier/api/auth"
	"github.com/atelierhq/atelier/api/handler"
	"github.com/atelierhq/atelier/config"
	"github.com/atelierhq/atelier/database"
	"github.com/atelierhq/atelier/web"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg       *config.Config
	ginEngine *gin.Engine
	db        *database.Client
}

func New(cfg *config.Config, db *database.Client) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	ginEngine := gin.Default()

	templates, err := web.Templates()
	if err != nil {
		return nil, err
	}
	ginEngine.SetHTMLTemplate(templates)

	return &Server{
		cfg:       cfg,
		ginEngine: ginEngine,
		db:        db,
	}, nil
}

func (s *Server) setupSession() {
	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions("atelier_session", store))
}

func (s *Server) setupRoutes() {
	s.setupSession()

	h := handler.New(s.db)

	s.ginEngine.GET("/", h.Home)
	s.ginEngine.GET("/category/:name", h.CategoryPage)
	s.ginEngine.GET("/product/:id", h.Product)
	s.ginEngine.GET("/login", h.LoginForm)
	s.ginEngine.POST("/login", h.Login)
	s.ginEngine.GET("/logout", h.Logout)

	admin := s.ginEngine.Group("/admin")
	admin.Use(auth.RequireAuth())

	admin.GET("", h.Dashboard)
	admin.POST("/add_painting", h.AddPainting)
	admin.POST("/add_category", h.AddCategory)
	admin.GET("/edit/:id", h.EditPaintingForm)
	admin.POST("/edit/:id", h.EditPainting)
	admin.POST("/delete/:id", h.DeletePainting)
	admin.POST("/toggle_sold/:id", h.ToggleSold)
	admin.GET("/edit_category/:id", h.EditCategoryForm)
	admin.POST("/edit_category/:id", h.EditCategory)
	admin.POST("/delete_category/:id", h.DeleteCategory)
}

func (s *Server) Run() error {
	s.setupRoutes()

	return s.ginEngine.Run(s.cfg.Listen)
}
