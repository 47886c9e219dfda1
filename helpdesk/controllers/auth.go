// helpdesk/controllers/auth.go
package controllers

import (
	"errors"
	"time"

	"helpdesk/helpdesk/config"
	"helpdesk/helpdesk/middlewares"
)

const DefaultTokenTTL = 24 * time.Hour

type AuthController struct {
	cfg config.Config
}

func NewAuthController(cfg config.Config) *AuthController {
	return &AuthController{cfg: cfg}
}

// IssueAdminToken mints a token accepted by the /admin routes.
func (c *AuthController) IssueAdminToken(subject string, ttl time.Duration) (string, error) {
	if c.cfg.JWTSecret == "" {
		return "", errors.New("JWT_SECRET environment variable not set")
	}
	if subject == "" {
		subject = "admin"
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return middlewares.NewAdminToken(c.cfg.JWTSecret, subject, ttl)
}
