// Package folioapi is an administrative content API for a personal
// portfolio site. It manages blog posts, portfolio projects, and contact
// messages over HTTP/JSON, normalizing loosely-typed request fields,
// resolving uploaded images to a canonical reference, deriving reading
// time, and validating before persisting documents to MongoDB. New
// contact messages trigger a best-effort mail notification.
package folioapi

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
)

// App is the central application. It wires together the configuration,
// document store, image storage strategy, mailer, middleware and routes.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store
	Images ImageStore
	Mailer *Mailer
}

// New creates an App with the given configuration.
func New(cfg Config) *App {
	cfg.setDefaults()
	return &App{
		Config: cfg,
		Echo:   echo.New(),
	}
}

// Start connects the store, selects the image storage strategy, sets up
// middleware and routes, and starts the HTTP server.
func (a *App) Start() error {
	if a.Config.MongoURI == "" {
		return fmt.Errorf("folioapi: MongoURI is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := NewStore(ctx, a.Config.MongoURI, a.Config.MongoDatabase)
	if err != nil {
		return fmt.Errorf("folioapi: init store: %w", err)
	}
	a.Store = store

	// Exactly one image storage strategy is active per deployment.
	if a.Config.AssetHostURL != "" {
		a.Images = NewAssetHostImageStore(a.Config.AssetHostURL, a.Config.AssetHostKey)
	} else {
		a.Images = NewDiskImageStore(a.Config.UploadDir)
	}

	mailer, err := NewMailer(a.Config.Mail)
	if err != nil {
		return fmt.Errorf("folioapi: init mailer: %w", err)
	}
	a.Mailer = mailer

	a.setupMiddleware()
	a.setupRoutes()

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Local uploads are only servable under the disk strategy; the asset
	// host serves its own URLs.
	if a.Config.AssetHostURL == "" {
		e.Static("/uploads", a.Config.UploadDir)
	}

	api := e.Group("/api")

	api.POST("/blogs", a.handleBlogCreate)
	api.GET("/blogs", a.handleBlogList)
	api.GET("/blogs/:id", a.handleBlogGet)
	api.PUT("/blogs/:id", a.handleBlogUpdate)
	api.DELETE("/blogs/:id", a.handleBlogDelete)

	api.POST("/projects", a.handleProjectCreate)
	api.GET("/projects", a.handleProjectList)
	api.GET("/projects/:id", a.handleProjectGet)
	api.PUT("/projects/:id", a.handleProjectUpdate)
	api.DELETE("/projects/:id", a.handleProjectDelete)

	api.POST("/messages", a.handleMessageCreate)
	api.GET("/messages", a.handleMessageList)
	api.GET("/messages/:id", a.handleMessageGet)
	api.PUT("/messages/:id", a.handleMessageUpdate)
	api.DELETE("/messages/:id", a.handleMessageDelete)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.Store.Close(ctx)
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if
// empty. Convenience for main.go.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally
// exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("folioapi: required environment variable %s is not set", key)
	}
	return v
}
