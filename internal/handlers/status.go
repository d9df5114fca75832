package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errGetState        = "failed to load state"
	errNoFrame         = "no frame rendered yet"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get device state
// @Description  Connection phase, published status and its color, boot counter and the last poll.
// @Tags         device
// @Produce      json
// @Success      200  {object}  models.DeviceState
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/state [get]
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Get last LED frame
// @Tags         device
// @Produce      json
// @Success      200  {object}  models.Frame
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/frame [get]
func (h *Handler) getFrame(c *gin.Context) {
	f, ok := h.services.Monitoring.GetFrame()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errNoFrame})
		return
	}
	c.JSON(http.StatusOK, f)
}
