package middleware

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kevmuri/bookstore-api/internal/domain/entity"
	"github.com/kevmuri/bookstore-api/internal/domain/repository"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyRequired rejects sale-creating POST requests without an
// Idempotency-Key header and replays the stored response when the same key
// is submitted again. A double-tapped checkout charges stock exactly once.
func IdempotencyRequired(config IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != "POST" {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.JSON(400, gin.H{
				"success": false,
				"message": "Idempotency-Key header is required for this request",
			})
			c.Abort()
			return
		}

		userIDValue, exists := c.Get("user_id")
		if !exists {
			c.JSON(401, gin.H{
				"success": false,
				"message": "User not authenticated",
			})
			c.Abort()
			return
		}
		userID, ok := userIDValue.(uuid.UUID)
		if !ok {
			c.JSON(401, gin.H{
				"success": false,
				"message": "Invalid user ID",
			})
			c.Abort()
			return
		}

		existing, err := config.Repo.GetByKey(c.Request.Context(), idempotencyKey, userID)
		if err != nil {
			c.JSON(500, gin.H{
				"success": false,
				"message": "Failed to check idempotency key",
			})
			c.Abort()
			return
		}

		// If key exists and not expired, return cached response
		if existing != nil && !existing.IsExpired() {
			c.Header("X-Idempotency-Replayed", "true")

			var cachedResponse map[string]interface{}
			if err := json.Unmarshal([]byte(existing.ResponseBody), &cachedResponse); err == nil {
				c.JSON(existing.ResponseCode, cachedResponse)
			} else {
				c.Data(existing.ResponseCode, "application/json", []byte(existing.ResponseBody))
			}
			c.Abort()
			return
		}

		// Capture the response
		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only store successful responses (2xx status codes)
		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			ikey := &entity.IdempotencyKey{
				Key:          idempotencyKey,
				UserID:       userID,
				Endpoint:     c.Request.Method + " " + c.FullPath(),
				ResponseCode: c.Writer.Status(),
				ResponseBody: blw.body.String(),
				ExpiresAt:    time.Now().Add(IdempotencyKeyTTL),
			}

			_ = config.Repo.Create(c.Request.Context(), ikey)
		}
	}
}
