package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"clipforge/models"
)

// errorStatus maps the pipeline error taxonomy to HTTP statuses: caller
// mistakes are 400, downstream failures 500.
func errorStatus(err error) int {
	var unsupported *models.UnsupportedFormatError
	var tooLarge *models.FileTooLargeError
	if errors.As(err, &unsupported) || errors.As(err, &tooLarge) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// abortWithError reports a pipeline failure as the structured error body
// every endpoint shares.
func abortWithError(c *gin.Context, err error) {
	status := errorStatus(err)
	log.Error().Err(err).Int("status", status).Str("path", c.FullPath()).Msg("Request failed")
	c.JSON(status, gin.H{"detail": err.Error()})
}
