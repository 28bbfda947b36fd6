package middleware

import (
	"math"
	"strconv"

	"github.com/Angel-Eco/CuidadoPRO/pkg/apperror"
	"github.com/Angel-Eco/CuidadoPRO/pkg/ratelimiter"
	"github.com/Angel-Eco/CuidadoPRO/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimit throttles by client IP. A limiter backend failure lets the
// request through.
func RateLimit(limiter ratelimiter.Limiter, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		ok, retryAfter, err := limiter.Allow(ctx, c.ClientIP())
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("rate limiter unavailable")
			c.Next()
			return
		}

		if !ok {
			if retryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			}
			response.Abort(c, apperror.RateLimited(message))
			return
		}

		c.Next()
	}
}
