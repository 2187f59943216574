package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports that the relay process is up. It does not call the upstream.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
