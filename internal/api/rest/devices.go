package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

// GET /api/v1/devices
func (s *Server) listDevices(c *gin.Context) {
	snap := s.lm.Frontend().Snapshot()

	response := make([]gin.H, 0, len(snap.Devices))
	for _, device := range snap.Devices {
		response = append(response, gin.H{
			"name":   device.Name,
			"port":   device.Port,
			"in_use": snap.Current != nil && *snap.Current == device,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"devices": response,
		"count":   len(response),
	})
}

// POST /api/v1/devices/refresh
func (s *Server) refreshDevices(c *gin.Context) {
	if err := s.lm.Frontend().RefreshDevices(); err != nil {
		respondError(c, "DEVICES", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Device discovery started"})
}

// GET /api/v1/camera
func (s *Server) getCamera(c *gin.Context) {
	snap := s.lm.Frontend().Snapshot()
	if snap.Camera == nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse("CAMERA_404", "No camera open", nil))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"device":    snap.Current,
		"info":      snap.Camera.Info,
		"status":    snap.Camera.Status,
		"live_view": snap.LiveView,
	})
}

// POST /api/v1/camera
func (s *Server) openCamera(c *gin.Context) {
	var req types.DeviceDescriptor
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("CAMERA_400", "Invalid request body", err.Error()))
		return
	}

	if err := s.lm.Frontend().UseDevice(req); err != nil {
		respondError(c, "CAMERA", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Opening camera",
		"device":  req,
	})
}

// DELETE /api/v1/camera
func (s *Server) closeCamera(c *gin.Context) {
	if err := s.lm.Frontend().CloseDevice(); err != nil {
		respondError(c, "CAMERA", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Closing camera"})
}
