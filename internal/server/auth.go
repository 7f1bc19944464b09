package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const HeaderBillingAuth = "X-Billing-Auth"

type LoginRequest struct {
	Password string `json:"password"`
}

// Login checks the back-office password. The client keeps sending the same
// secret in X-Billing-Auth on every protected call.
func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Password) == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	if !s.checkPassword(req.Password) {
		s.log.Warn("billing login failed", zap.String("ip", c.ClientIP()))
		AbortWithError(c, ErrUnauthorized)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"authenticated": true}})
}

func (s *Server) BillingAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := c.GetHeader(HeaderBillingAuth)
		if strings.TrimSpace(secret) == "" || !s.checkPassword(secret) {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// checkPassword accepts a bcrypt hash in BILLING_PASSWORD_HASH. A value that
// is not a bcrypt hash is compared in constant time, for local development.
func (s *Server) checkPassword(password string) bool {
	stored := strings.TrimSpace(s.cfg.BillingPasswordHash)
	if stored == "" {
		return false
	}
	if _, err := bcrypt.Cost([]byte(stored)); err == nil {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	if s.cfg.IsProduction() {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}
