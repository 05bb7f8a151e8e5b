package middleware

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"time"

	"evently/internal/cache"
	apperrors "evently/internal/errors"
	"evently/internal/logger"
	"evently/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userIDKey       = "user_id"
	RequestIDHeader = "X-Request-ID"
)

// UserLookup resolves Basic-auth usernames (emails) to accounts.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthCache is the optional credential cache in front of UserLookup.
type AuthCache interface {
	GetUserIDByAuth(ctx context.Context, email, passwordHash string) (uuid.UUID, error)
	SetUserAuth(ctx context.Context, email, passwordHash string, userID uuid.UUID) error
}

// UserIDFromGin returns the id stored by BasicAuth.
func UserIDFromGin(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// SetUserID marks the request as authenticated for handlers and the request logger.
func SetUserID(c *gin.Context, userID uuid.UUID) {
	c.Set(userIDKey, userID)
	c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), userID))
}

// HashPassword returns the hex SHA-256 digest stored in users.password_hash.
func HashPassword(password string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(password)))
}

// CORS middleware для обработки CORS запросов
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// RequestID propagates X-Request-ID, generating one when absent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = logger.NewRequestID()
		}

		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}

// Logger middleware для структурированного логирования запросов
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		log := logger.WithContext(c.Request.Context())
		switch {
		case status >= http.StatusInternalServerError:
			if len(c.Errors) > 0 {
				logFields = append(logFields, "error", c.Errors.String())
			}
			log.Error("Request completed with error", logFields...)
		case status >= http.StatusBadRequest:
			log.Warn("Request rejected", logFields...)
		default:
			log.Debug("Request completed", logFields...)
		}
	}
}

// Recovery middleware для восстановления после паники с детальным логированием
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithContext(c.Request.Context()).Error("PANIC recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		)

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: apperrors.MsgInternal})
		}
	})
}

// BasicAuth аутентифицирует пользователя по HTTP Basic Auth: сначала кеш Valkey, затем БД.
// authCache may be nil.
func BasicAuth(users UserLookup, authCache AuthCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", "Basic realm=\"Restricted\"")
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: apperrors.MsgUnauthorized})
			return
		}

		ctx := c.Request.Context()
		passwordHash := HashPassword(password)

		if authCache != nil {
			// Entries expire, so deactivation takes effect within the cache TTL.
			userID, err := authCache.GetUserIDByAuth(ctx, email, passwordHash)
			if err == nil {
				SetUserID(c, userID)
				c.Next()
				return
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				logger.WithContext(ctx).Warn("Auth cache lookup failed", "error", err)
			}
		}

		user, err := users.GetByEmail(ctx, email)
		if err != nil {
			logger.WithContext(ctx).Error("Failed to load user for auth", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: apperrors.MsgInternal})
			return
		}
		if !user.CanBook() || user.PasswordHash == "" || user.PasswordHash != passwordHash {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: apperrors.MsgInvalidCredentials})
			return
		}

		if authCache != nil {
			if err := authCache.SetUserAuth(ctx, email, passwordHash, user.ID); err != nil {
				logger.WithContext(ctx).Warn("Failed to cache credentials", "error", err)
			}
		}

		SetUserID(c, user.ID)
		c.Next()
	}
}
