// Package server exposes hostname lookups over HTTP as redirects.
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zeromicro/go-zero/core/logx"
)

// Locator resolves keys to hostnames.
type Locator interface {
	// Get returns hostname owning the key or false if there are no
	// hostnames.
	Get(key string) (string, bool)

	// Nodes returns current hostnames.
	Nodes() []string
}

// New returns a handler serving following routes:
//
//	GET /serve/*key  redirects to https://<host> owning the key
//	GET /nodes       lists current hostnames
func New(l Locator) *gin.Engine {
	e := gin.New()
	e.Use(gin.Recovery(), accessLog())

	h := handler{l}
	e.GET("/serve/*key", h.serve)
	e.GET("/nodes", h.nodes)

	return e
}

type handler struct {
	locator Locator
}

func (h handler) serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	host, ok := h.locator.Get(key)
	if !ok {
		c.String(http.StatusNotFound, "no backend available")
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, "https://"+host)
}

func (h handler) nodes(c *gin.Context) {
	nodes := h.locator.Nodes()
	if nodes == nil {
		nodes = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"nodes": nodes,
	})
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logx.WithContext(c.Request.Context()).WithDuration(time.Since(start)).Infow("http: request",
			logx.Field("method", c.Request.Method),
			logx.Field("path", c.Request.URL.Path),
			logx.Field("status", c.Writer.Status()),
			logx.Field("location", c.Writer.Header().Get("Location")),
		)
	}
}
