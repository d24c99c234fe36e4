package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/KevinKickass/OpenCameraCore/internal/app"
	"github.com/KevinKickass/OpenCameraCore/internal/settings"
	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

// respondError maps frontend errors onto status codes.
func respondError(c *gin.Context, prefix string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrNoDevice),
		errors.Is(err, app.ErrNoSettings),
		errors.Is(err, settings.ErrApplyInProgress),
		errors.Is(err, settings.ErrNothingToApply):
		status = http.StatusConflict
	case errors.Is(err, settings.ErrSettingNotFound):
		status = http.StatusNotFound
	case errors.Is(err, settings.ErrReadOnly),
		errors.Is(err, settings.ErrKindMismatch):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrSendFailed):
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, types.NewErrorResponse(prefix+"_"+strconv.Itoa(status), types.Title(err), err.Error()))
}

// GET /api/v1/errors
func (s *Server) listErrors(c *gin.Context) {
	errs := s.lm.Frontend().Snapshot().Errors
	c.JSON(http.StatusOK, gin.H{
		"errors": errs,
		"count":  len(errs),
	})
}

// DELETE /api/v1/errors/:index
func (s *Server) dismissError(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("ERRORS_400", "Invalid error index", err.Error()))
		return
	}

	if err := s.lm.Frontend().DismissError(index); err != nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse("ERRORS_404", "Error not found", err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Error dismissed"})
}
