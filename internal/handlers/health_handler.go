package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, "doctors portal backend running")
}

// Health reports whether MongoDB answers a ping.
func (h *Handler) Health(c *gin.Context) {
	if err := h.DB.Ping(c.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("health check: database unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
