package echo

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/outreach-import/internal/application/outreach"
)

type JobHandler struct {
	get  app.GetImportJob
	list app.ListImportJobItems
}

func NewJobHandler(get app.GetImportJob, list app.ListImportJobItems) *JobHandler {
	return &JobHandler{get: get, list: list}
}

func (h *JobHandler) GetJob(c echo.Context) error {
	out, err := h.get.Execute(c.Request().Context(), app.GetImportJobInput{
		ID: c.Param("id"),
	})
	if err != nil {
		return writeUseCaseError(c, err, "failed to get import job")
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *JobHandler) ListItems(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "bad_request", "limit must be an integer")
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "bad_request", "offset must be an integer")
	}

	out, err := h.list.Execute(c.Request().Context(), app.ListImportJobItemsInput{
		JobID:    c.Param("id"),
		Statuses: c.QueryParam("status"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return writeUseCaseError(c, err, "failed to list import job items")
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
