package server

import (
	"context"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/billdesk/internal/ratelimit"
)

type allowFunc func(ctx context.Context, clientKey string) ratelimit.Result

func rateLimited(allow allowFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := allow(c.Request.Context(), c.ClientIP())
		if !res.Allowed {
			retry := int(math.Ceil(res.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
