// Package server serves avatar SVGs over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zarlcorp/zcircle/internal/avatar"
	"github.com/zarlcorp/zcircle/internal/contact"
)

const (
	svgContentType  = "image/svg+xml"
	shutdownTimeout = 5 * time.Second
	maxSize         = 1024
)

// ContactSource looks up saved contacts.
type ContactSource interface {
	Get(id string) (contact.Contact, error)
}

// Config configures the server.
type Config struct {
	Addr     string
	Contacts ContactSource      // nil disables /contacts routes
	Loader   avatar.ImageLoader // nil passes thumbnail references through
	Renderer *avatar.Renderer   // nil uses the default name hasher
	Logger   *slog.Logger       // nil uses slog.Default
}

// Server is the avatar HTTP server.
type Server struct {
	cfg    Config
	engine *gin.Engine
}

// New creates a server with its routes registered.
func New(cfg Config) *Server {
	if cfg.Renderer == nil {
		cfg.Renderer = avatar.NewRenderer(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{cfg: cfg, engine: gin.New()}
	s.engine.Use(gin.Recovery(), requestLogger(cfg.Logger))
	s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is done, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	s.engine.GET("/avatar.svg", s.handleAvatar)

	if s.cfg.Contacts != nil {
		s.engine.GET("/contacts/:id/avatar.svg", s.handleContactAvatar)
	}
}

func (s *Server) handleAvatar(c *gin.Context) {
	size, ok := parseSize(c)
	if !ok {
		return
	}

	p := avatar.Props{
		Address:       c.Query("address"),
		ThumbnailPath: c.Query("thumbnail"),
		Size:          size,
	}
	if name, ok := c.GetQuery("name"); ok {
		p.Name = avatar.Name(name)
	}

	s.writeSVG(c, p)
}

func (s *Server) handleContactAvatar(c *gin.Context) {
	size, ok := parseSize(c)
	if !ok {
		return
	}

	id := c.Param("id")
	ct, err := s.cfg.Contacts.Get(id)
	if err != nil {
		s.cfg.Logger.Debug("contact lookup", "id", id, "err", err)
		c.String(http.StatusNotFound, "contact not found")
		return
	}

	s.writeSVG(c, avatar.Props{
		Name:    avatar.Name(ct.DisplayName),
		Contact: &ct,
		Address: ct.Address,
		Size:    size,
	})
}

func (s *Server) writeSVG(c *gin.Context, p avatar.Props) {
	out, err := avatar.SVG(s.cfg.Renderer.Render(p), s.cfg.Loader)
	if err != nil {
		s.cfg.Logger.Error("render avatar", "path", c.Request.URL.Path, "err", err)
		c.String(http.StatusInternalServerError, "render failed")
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, svgContentType, []byte(out))
}

// parseSize reads the optional size query parameter, writing a 400 and
// reporting false when it is invalid.
func parseSize(c *gin.Context) (int, bool) {
	raw, ok := c.GetQuery("size")
	if !ok || raw == "" {
		return 0, true
	}

	size, err := strconv.Atoi(raw)
	if err != nil || size <= 0 || size > maxSize {
		c.String(http.StatusBadRequest, "invalid size")
		return 0, false
	}
	return size, true
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
