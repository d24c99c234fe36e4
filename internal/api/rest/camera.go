package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

// GET /api/v1/camera/config
func (s *Server) getConfig(c *gin.Context) {
	snap := s.lm.Frontend().Snapshot()
	if snap.Camera == nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse("CONFIG_404", "No camera open", nil))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings":    snap.Camera.Settings,
		"apply_state": snap.Camera.ApplyState,
		"pending":     snap.Camera.Pending,
	})
}

// POST /api/v1/camera/config/reload
func (s *Server) reloadConfig(c *gin.Context) {
	if err := s.lm.Frontend().ReloadSettings(); err != nil {
		respondError(c, "CONFIG", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Reading settings"})
}

// PUT /api/v1/camera/config/:parent/:id
func (s *Server) editSetting(c *gin.Context) {
	parentID, err := strconv.Atoi(c.Param("parent"))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("CONFIG_400", "Invalid parent id", err.Error()))
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("CONFIG_400", "Invalid setting id", err.Error()))
		return
	}

	var req struct {
		Value any `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("CONFIG_400", "Invalid request body", err.Error()))
		return
	}
	if req.Value == nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("CONFIG_400", "Missing value", nil))
		return
	}

	if err := s.lm.Frontend().EditSetting(parentID, id, req.Value); err != nil {
		respondError(c, "CONFIG", err)
		return
	}

	resp := gin.H{"message": "Setting recorded"}
	if cam := s.lm.Frontend().Snapshot().Camera; cam != nil {
		resp["apply_state"] = cam.ApplyState
		resp["pending"] = len(cam.Pending)
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/v1/camera/config/apply
func (s *Server) applyConfig(c *gin.Context) {
	if err := s.lm.Frontend().ApplySettings(); err != nil {
		respondError(c, "CONFIG", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Applying settings"})
}

// DELETE /api/v1/camera/config/pending
func (s *Server) discardConfig(c *gin.Context) {
	if err := s.lm.Frontend().DiscardSettings(); err != nil {
		respondError(c, "CONFIG", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pending settings discarded"})
}

// PUT /api/v1/camera/liveview
func (s *Server) setLiveView(c *gin.Context) {
	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("LIVEVIEW_400", "Invalid request body", err.Error()))
		return
	}

	if err := s.lm.Frontend().SetLiveView(*req.Enabled); err != nil {
		respondError(c, "LIVEVIEW", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"live_view": *req.Enabled})
}

// GET /api/v1/camera/preview
func (s *Server) getPreview(c *gin.Context) {
	frame := s.lm.Frontend().Preview()
	if frame == nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse("PREVIEW_404", "No preview frame", nil))
		return
	}

	c.Header("X-Frame-Seq", strconv.FormatUint(frame.Seq, 10))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/jpeg", frame.Data)
}
