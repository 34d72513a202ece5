package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pet-market/internal/domain"
	"pet-market/internal/repository"
)

const ctxUserKey = "authenticated_user"

var errMissingBearer = errors.New("missing or malformed authorization header")

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("request_id", requestID)

		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		}).Info("request")
	}
}

// authRequired extracts and verifies the bearer token, resolves the subject to
// a live user and attaches it to the request context. Every authentication
// failure collapses into the same 401 response with the cause only logged; a
// store outage while resolving the subject is a server fault, not an
// authentication verdict, and propagates as 500.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			h.rejectUnauthenticated(c, err)
			return
		}

		userID, err := h.tokens.Verify(tokenString)
		if err != nil {
			h.rejectUnauthenticated(c, err)
			return
		}

		user, err := h.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				h.rejectUnauthenticated(c, errors.New("token subject no longer exists"))
				return
			}
			h.logger.WithField("path", c.Request.URL.Path).Errorf("resolve token subject: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

func (h *Handler) rejectUnauthenticated(c *gin.Context, err error) {
	h.logger.WithFields(logrus.Fields{
		"path":   c.Request.URL.Path,
		"reason": err.Error(),
	}).Warn("request rejected")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
}

func bearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errMissingBearer
	}
	return parts[1], nil
}

func currentUser(c *gin.Context) (*domain.User, bool) {
	value, ok := c.Get(ctxUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*domain.User)
	return user, ok
}
