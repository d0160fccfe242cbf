package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/outreach-import/internal/application/outreach"
)

type jobSubmitter interface {
	Submit(jobID string) bool
}

type ImportHandler struct {
	start   app.StartOutreachImport
	advance app.AdvanceImportJob
	runner  jobSubmitter
}

type startImportRequest struct {
	SourceKey string `json:"source_key"`
	AutoRun   bool   `json:"auto_run"`
}

type startImportResponse struct {
	app.StartOutreachImportOutput
	Queued bool `json:"queued"`
}

type advanceRequest struct {
	Action string `json:"action"`
}

// NewImportHandler wires the write endpoints. runner may be nil, in which
// case auto_run is ignored.
func NewImportHandler(start app.StartOutreachImport, advance app.AdvanceImportJob, runner jobSubmitter) *ImportHandler {
	return &ImportHandler{start: start, advance: advance, runner: runner}
}

func (h *ImportHandler) StartImport(c echo.Context) error {
	var req startImportRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	out, err := h.start.Execute(c.Request().Context(), app.StartOutreachImportInput{
		SourceKey: req.SourceKey,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidImportSource) {
			return errorJSON(c, http.StatusBadRequest, "invalid_source", "source_key must be a .csv or .xlsx file")
		}
		return writeUseCaseError(c, err, "failed to create import job")
	}

	resp := startImportResponse{StartOutreachImportOutput: out}
	if req.AutoRun && h.runner != nil {
		resp.Queued = h.runner.Submit(out.JobID)
	}

	return c.JSON(http.StatusAccepted, apiResponse{Data: resp})
}

func (h *ImportHandler) Advance(c echo.Context) error {
	var req advanceRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	out, err := h.advance.Execute(c.Request().Context(), app.AdvanceInput{
		JobID:  c.Param("id"),
		Action: req.Action,
	})
	if err != nil {
		return writeUseCaseError(c, err, "failed to advance import job")
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}
