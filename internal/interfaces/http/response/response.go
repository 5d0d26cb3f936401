package response

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bivex/receipt-verify/internal/application/dto"
)

// Verdict writes a validation verdict with the given HTTP status. The
// HTTP status communicates the failure category; the body is the source
// of truth for business meaning.
func Verdict(c *gin.Context, statusCode int, verdict *dto.ValidationVerdict) {
	c.JSON(statusCode, verdict)
}

// Invalid writes a verdict-shaped failure so every response, including
// transport-level rejections, keeps the same body schema.
func Invalid(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, &dto.ValidationVerdict{
		IsValid:   false,
		Error:     message,
		Timestamp: time.Now().UTC(),
	})
}

// CacheHint marks the response as privately cacheable for the given TTL.
// Applied only to valid verdicts.
func CacheHint(c *gin.Context, ttl time.Duration) {
	c.Header("Cache-Control", fmt.Sprintf("private, max-age=%d", int(ttl.Seconds())))
}
