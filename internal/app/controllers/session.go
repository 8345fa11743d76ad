package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieConfig describes the session cookie that carries the token
type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
	MaxAge time.Duration
}

func (c CookieConfig) set(ctx *gin.Context, token string) {
	if c.Name == "" {
		return
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.Name, token, int(c.MaxAge.Seconds()), "/", c.Domain, c.Secure, true)
}

func (c CookieConfig) clear(ctx *gin.Context) {
	if c.Name == "" {
		return
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.Name, "", -1, "/", c.Domain, c.Secure, true)
}
