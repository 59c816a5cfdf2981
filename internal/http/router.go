// Package httpapi wires the HTTP transport (Gin) to the dialogue tracker and
// lifecycle services. It centralizes the cross-cutting concerns: tracing,
// correlation IDs, logging, panic recovery, metrics, rate limiting, CORS, and
// security headers.
//
// The conversational surface is POST /turn; the REST endpoints expose the
// same lifecycle operations for non-voice clients.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/recipedeck/go-recipe-backend/internal/config"
	"github.com/recipedeck/go-recipe-backend/internal/dialogue"
	"github.com/recipedeck/go-recipe-backend/internal/http/handlers"
	"github.com/recipedeck/go-recipe-backend/internal/http/middleware"
	"github.com/recipedeck/go-recipe-backend/internal/repo"
	"github.com/recipedeck/go-recipe-backend/internal/services"
)

// RegisterRoutes attaches all middleware and endpoints to the Gin engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS and security headers
func RegisterRoutes(r *gin.Engine, store *repo.UserDataStore, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// CORS posture: allow all when no allowlist is configured.
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: tracker and handlers ← services ← store.
	recipeSvc := services.NewRecipeService(store, cfg.Dialogue.PageSize)
	prepSvc := services.NewPreparationService(store, cfg.Dialogue.PrepDays)
	summarySvc := services.NewSummaryService(store)
	sessions := dialogue.NewSessionStore(cfg.Dialogue.SessionTTL)
	tracker := dialogue.NewTracker(recipeSvc, prepSvc, summarySvc, store, sessions)

	h := handlers.New(recipeSvc, prepSvc, summarySvc, tracker, store)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Dialogue surface
		api.POST("/turn", h.HandleTurn)

		// Recipes
		api.GET("/recipes", h.ListRecipes)
		api.POST("/recipes", h.AddRecipe)
		api.GET("/recipes/search", h.SearchRecipes)
		api.DELETE("/recipes/:name", h.DeleteRecipe)

		// Preparations and history
		api.GET("/preparations", h.ListPreparations)
		api.POST("/preparations", h.StartPreparation)
		api.POST("/preparations/complete", h.CompletePreparation)
		api.GET("/history", h.ListHistory)

		// User-data administration
		api.DELETE("/userdata", h.PurgeUserData)
	}
}

// limitBody caps the request body size for all endpoints; downstream body
// reads error once the cap is exceeded.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
