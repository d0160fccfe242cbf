package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/outreach-import/internal/application/outreach"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiResponse struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

func errorJSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, apiResponse{Error: &errorBody{Code: code, Message: message}})
}

// writeUseCaseError maps application errors onto HTTP responses. fallback is
// the message used for unexpected failures.
func writeUseCaseError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, app.ErrInvalidJobID):
		return errorJSON(c, http.StatusBadRequest, "invalid_job_id", "id must be a valid UUID")
	case errors.Is(err, app.ErrInvalidAction):
		return errorJSON(c, http.StatusBadRequest, "invalid_action", "action must be VALIDATE or IMPORT")
	case errors.Is(err, app.ErrInvalidItemStatus):
		return errorJSON(c, http.StatusBadRequest, "invalid_status", err.Error())
	case errors.Is(err, app.ErrImportJobNotFound):
		return errorJSON(c, http.StatusNotFound, "not_found", "import job not found")
	case errors.Is(err, app.ErrImportJobBusy):
		return errorJSON(c, http.StatusConflict, "job_busy", "import job is being advanced by another request")
	case errors.Is(err, app.ErrValidationIncomplete):
		return errorJSON(c, http.StatusConflict, "validation_incomplete", "validate the job before importing")
	default:
		c.Logger().Error(err)
		return errorJSON(c, http.StatusInternalServerError, "internal_error", fallback)
	}
}
