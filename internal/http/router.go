// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, access logging, metrics, compression, CORS,
// request deadlines, and the error dispatcher.
//
// Every failure leaves through middleware.ErrorHandler, including unmatched
// routes, unsupported methods, binding errors and panics.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-error-advice/internal/config"
	"github.com/tbourn/go-error-advice/internal/dispatch"
	"github.com/tbourn/go-error-advice/internal/domain"
	"github.com/tbourn/go-error-advice/internal/http/handlers"
	"github.com/tbourn/go-error-advice/internal/http/middleware"
	"github.com/tbourn/go-error-advice/internal/repo"
	"github.com/tbourn/go-error-advice/internal/services"
)

// userRepoShim adapts the repository free functions to the services.UserRepo
// interface expected by the UserService.
type userRepoShim struct{}

func (userRepoShim) CreateUser(ctx context.Context, db *gorm.DB, name, email string, age int) (*domain.User, error) {
	return repo.CreateUser(ctx, db, name, email, age)
}

func (userRepoShim) GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	return repo.GetUser(ctx, db, id)
}

func (userRepoShim) CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountUsers(ctx, db)
}

func (userRepoShim) ListUsersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.User, error) {
	return repo.ListUsersPage(ctx, db, offset, limit)
}

// RenameUser proxies repo.RenameUser, mapping its stale-version sentinel.
func (userRepoShim) RenameUser(ctx context.Context, db *gorm.DB, id, name string, version int) (*domain.User, error) {
	u, err := repo.RenameUser(ctx, db, id, name, version)
	if errors.Is(err, repo.ErrStaleVersion) {
		return nil, services.ErrStaleVersion
	}
	return u, err
}

func (userRepoShim) DeleteUser(ctx context.Context, db *gorm.DB, id string) error {
	return repo.DeleteUser(ctx, db, id)
}

func (userRepoShim) AddTags(ctx context.Context, db *gorm.DB, userID string, names []string) ([]domain.Tag, error) {
	return repo.AddTags(ctx, db, userID, names)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the versioned public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: access log and request-scoped logger
//  4. Metrics
//  5. gzip, CORS
//  6. Request deadline and body size limit
//  7. ErrorHandler: innermost, so everything above observes the final status
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, d *dispatch.Dispatcher) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// CORS posture (safe defaults: allow all if none configured)
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Location"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Use(requestTimeout(cfg.RequestTimeout))
	r.Use(limitBody(1 << 20))
	r.Use(middleware.ErrorHandler(d))

	r.NoRoute(middleware.NoRoute())
	r.NoMethod(middleware.NoMethod())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	handlers.RegisterValidation()
	userSvc := services.NewUserService(db, userRepoShim{})
	userSvc.Maintenance = cfg.MaintenanceMode
	h := handlers.New(userSvc)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/users", h.CreateUser)
		api.GET("/users", h.ListUsers)
		api.GET("/users/:id", h.GetUser)
		api.PUT("/users/:id", h.RenameUser)
		api.DELETE("/users/:id", h.DeleteUser)
		api.POST("/users/:id/tags", h.AddTags)
	}
}

// requestTimeout bounds every request's context. Work that honors the
// context fails with context.DeadlineExceeded, which the dispatcher reports
// as 408. A non-positive d disables the deadline.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
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
