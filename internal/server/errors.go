package server

import (
	"errors"
	"net/http"

	"github.com/TFMV/fsview/internal/app"
	"github.com/TFMV/fsview/internal/fserr"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, fserr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, fserr.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, fserr.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, fserr.ErrWatch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), errorResponse{Error: app.ErrorMessage(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msg})
}
