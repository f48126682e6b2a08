// Package rest serves the sync API over HTTP with gin.
package rest

import (
	"net/http"

	"github.com/dmitrijs2005/reelsync/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// APIVersion prefixes every route except /healthz.
const APIVersion = "v1"

func NewRouter(l logging.Logger, h *Handler, authn Authenticator, requireAuth bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(l))
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/" + APIVersion)
	{
		v1.POST("/auth/register", h.Register)
		v1.POST("/auth/login", h.Login)
	}

	secured := v1.Group("")
	secured.Use(Auth(authn, requireAuth))
	{
		secured.POST("/sync", h.Sync)
		secured.GET("/projects", h.Projects)
	}
	return r
}
