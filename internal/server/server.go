package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/JamesLuiz/House-me/internal/storage"
	"github.com/JamesLuiz/House-me/internal/webhook"
)

const (
	ServiceName = "House Me Telegram Bot"

	initDataHeader  = "X-Telegram-Init-Data"
	initDataQuery   = "init_data"
	initDataMaxAge  = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

// FavoritesReader is the part of the user store the Mini App endpoint needs.
type FavoritesReader interface {
	Initialized() bool
	GetUser(ctx context.Context, id string) (*storage.User, error)
}

type Options struct {
	Addr     string
	BotToken string
}

// Server serves the webhook, health checks, metrics and the Mini App API.
type Server struct {
	engine *gin.Engine
	hook   *webhook.Handler
	users  FavoritesReader
	opts   Options
}

func New(hook *webhook.Handler, users FavoritesReader, opts Options) *Server {
	s := &Server{
		engine: gin.New(),
		hook:   hook,
		users:  users,
		opts:   opts,
	}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/health", s.handleHealth)
	s.engine.Any("/api/telegram", s.hook.ServeGin)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine.GET("/api/favorites", s.requireInitData, s.handleFavorites)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.opts.Addr).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleRoot(c *gin.Context) {
	loaded, _ := s.hook.Loaded()
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"service":    ServiceName,
		"bot_loaded": loaded,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	loaded, err := s.hook.Loaded()
	var botError any
	if err != nil {
		botError = err.Error()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"bot_loaded": loaded,
		"bot_error":  botError,
	})
}

// requireInitData validates Telegram Mini App init data against the bot token
// and stores the user id in the context.
func (s *Server) requireInitData(c *gin.Context) {
	raw := c.GetHeader(initDataHeader)
	if raw == "" {
		raw = c.Query(initDataQuery)
	}
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing init_data"})
		return
	}

	if err := initdata.Validate(raw, s.opts.BotToken, initDataMaxAge); err != nil {
		log.Debug().Err(err).Msg("invalid init data")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid init_data"})
		return
	}

	parsed, err := initdata.Parse(raw)
	if err != nil || parsed.User.ID == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid init_data format"})
		return
	}

	c.Set("userId", parsed.User.ID)
	c.Next()
}

func (s *Server) handleFavorites(c *gin.Context) {
	if !s.users.Initialized() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not initialized"})
		return
	}

	userId := c.GetInt64("userId")
	user, err := s.users.GetUser(c.Request.Context(), strconv.FormatInt(userId, 10))
	if err != nil {
		log.Error().Err(err).Int64("userId", userId).Msg("failed to load favorites")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load favorites"})
		return
	}

	favorites := []string{}
	if user != nil && user.Favorites != nil {
		favorites = user.Favorites
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	}
}
