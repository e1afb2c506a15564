package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/hirenest-be/internal/api/authn"
	"github.com/cuongbtq/hirenest-be/internal/api/contact"
	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/jobs"
	"github.com/cuongbtq/hirenest-be/internal/api/lifecycle"
	"github.com/cuongbtq/hirenest-be/internal/api/moderation"
	"github.com/cuongbtq/hirenest-be/internal/api/notification"
	"github.com/cuongbtq/hirenest-be/internal/api/realtime"
	"github.com/cuongbtq/hirenest-be/internal/api/users"
	"github.com/gin-gonic/gin"
)

// HealthChecker is anything the health endpoint can check
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// BrokerStatus reports whether the message broker connection is up
type BrokerStatus interface {
	IsConnected() bool
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger        *slog.Logger
	Database      HealthChecker
	Broker        BrokerStatus
	Jobs          *jobs.Service
	Lifecycle     *lifecycle.Service
	Moderation    *moderation.Gate
	Notifications *notification.Service
	Contact       *contact.Service
	Users         *users.Service
	Verifier      *authn.Verifier
	Hub           *realtime.Hub

	// UploadDir is served under /uploads when set
	UploadDir string

	// Upload ceilings applied while reading multipart files
	MaxResumeBytes int64
	MaxLogoBytes   int64
}

// respondError maps a service error to its HTTP status. Anything that is not
// a domain error is logged and reported as a 500 without details.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}

	message := err.Error()
	var derr *domain.Error
	if errors.As(err, &derr) {
		message = derr.Message
	}
	c.JSON(status, gin.H{"error": message})
}

// principal returns the authenticated caller or writes a 401
func principal(c *gin.Context) (domain.Principal, bool) {
	p, ok := authn.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return domain.Principal{}, false
	}
	return p, true
}

// optionalPrincipal returns the caller when OptionalMiddleware found one
func optionalPrincipal(c *gin.Context) *domain.Principal {
	p, ok := authn.PrincipalFrom(c)
	if !ok {
		return nil
	}
	return &p
}

func logRequest(logger *slog.Logger, c *gin.Context, msg string, attrs ...any) {
	base := []any{
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	}
	logger.Info(msg, append(base, attrs...)...)
}
