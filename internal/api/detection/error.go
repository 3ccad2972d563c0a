package detection

import (
	"FallWatch/pkg/response"
	"net/http"
)

var (
	ErrNoVideo           = response.NewError(http.StatusBadRequest, "No video uploaded")
	ErrEmptyFilename     = response.NewError(http.StatusBadRequest, "Empty filename")
	ErrEmptyFile         = response.NewError(http.StatusBadRequest, "Uploaded file is empty")
	ErrFileTooLarge      = response.NewError(http.StatusRequestEntityTooLarge, "Uploaded file is too large")
	ErrFileSave          = response.NewError(http.StatusInternalServerError, "File save failed")
	ErrServer            = response.NewError(http.StatusInternalServerError, "Server error")
	ErrAnalysisNotFound  = response.NewError(http.StatusNotFound, "Analysis not found")
	ErrAdviceUnavailable = response.NewError(http.StatusServiceUnavailable, "Advice service is not configured")
	ErrAdviceNotNeeded   = response.NewError(http.StatusUnprocessableEntity, "No event detected for this analysis")
)
