// Package server exposes the HTTP API and the realtime websocket
// endpoint, wiring the matchmaking engine, the debate state machine and
// the notification hub behind gin.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neo/debatearena_backend/internal/auth"
	"github.com/neo/debatearena_backend/internal/database"
	"github.com/neo/debatearena_backend/internal/debate"
	"github.com/neo/debatearena_backend/internal/logging"
	"github.com/neo/debatearena_backend/internal/matchmaking"
	"github.com/neo/debatearena_backend/internal/notify"
	"github.com/neo/debatearena_backend/internal/topics"
)

// Server hosts the HTTP and websocket surface of the debate service
type Server struct {
	router    *gin.Engine
	db        database.DatabaseInterface
	hub       *notify.Hub
	engine    *matchmaking.Engine
	machine   *debate.Machine
	auth      *auth.Auth
	generator *topics.Generator
	config    Config
	httpSrv   *http.Server
}

// New creates a server wiring all components together. The topic
// generator may be nil when no LLM credentials are configured.
func New(db database.DatabaseInterface, hub *notify.Hub, engine *matchmaking.Engine, machine *debate.Machine, authService *auth.Auth, generator *topics.Generator, config Config) *Server {
	router := gin.New()

	s := &Server{
		router:    router,
		db:        db,
		hub:       hub,
		engine:    engine,
		machine:   machine,
		auth:      authService,
		generator: generator,
		config:    config,
	}

	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware())
	router.Use(RecoveryMiddleware())
	router.Use(ErrorHandler())
	router.Use(corsMiddleware())

	s.setupRoutes()

	// A dropped connection is an implicit matchmaking leave; the queue
	// must never hold a user nobody can notify.
	hub.SetDisconnectHandler(func(userID string) {
		if err := engine.Leave(userID); err != nil {
			logging.Error("Failed to remove disconnected user from queue", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	})

	return s
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/ws", s.handleWebSocket)

	api := s.router.Group("/api")
	{
		api.POST("/register", s.handleRegister)
		api.POST("/login", s.handleLogin)

		api.GET("/topics", s.handleGetTopics)
		api.GET("/debates/:id", s.handleGetDebate)
		api.GET("/debates", s.handleListDebates)
		api.GET("/achievements", s.handleGetAchievements)
		api.GET("/users/:id", s.handleGetUser)

		authed := api.Group("")
		authed.Use(s.auth.Middleware())
		{
			authed.POST("/arguments", s.handleSubmitArgument)
			authed.POST("/topics/generate", s.handleGenerateTopics)
		}
	}

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"connections": s.hub.ConnectionCount(),
		})
	})
}

// Run starts the HTTP server on the given address and blocks until it
// stops
func (s *Server) Run(addr string) error {
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	logging.Info("Server listening", map[string]interface{}{
		"addr": addr,
	})

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and drops all realtime
// connections
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Router exposes the gin engine for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}
