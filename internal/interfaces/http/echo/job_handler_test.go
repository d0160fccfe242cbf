package echo_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/outreach-import/internal/application/outreach"
	httpecho "github.com/mohammadpnp/outreach-import/internal/interfaces/http/echo"
)

type fakeGetUseCase struct {
	output app.ImportJobOutput
	err    error
}

func (f *fakeGetUseCase) Execute(ctx context.Context, in app.GetImportJobInput) (app.ImportJobOutput, error) {
	if f.err != nil {
		return app.ImportJobOutput{}, f.err
	}
	return f.output, nil
}

type fakeListUseCase struct {
	output app.ListImportJobItemsOutput
	err    error
	got    app.ListImportJobItemsInput
}

func (f *fakeListUseCase) Execute(ctx context.Context, in app.ListImportJobItemsInput) (app.ListImportJobItemsOutput, error) {
	f.got = in
	if f.err != nil {
		return app.ListImportJobItemsOutput{}, f.err
	}
	return f.output, nil
}

func newJobServer(get *fakeGetUseCase, list *fakeListUseCase) *echo.Echo {
	e := echo.New()
	importHandler := httpecho.NewImportHandler(&fakeStartUseCase{}, &fakeAdvanceUseCase{}, nil)
	httpecho.RegisterRoutes(e, importHandler, httpecho.NewJobHandler(get, list))
	return e
}

func TestGetJobSuccess(t *testing.T) {
	t.Parallel()

	e := newJobServer(&fakeGetUseCase{output: app.ImportJobOutput{
		ID:                 jobID,
		Status:             "PROCESSING",
		ValidEmails:        4,
		CreatedInvites:     1,
		ValidationProgress: 100,
		ImportProgress:     25,
	}}, &fakeListUseCase{})

	rec := doJSON(e, http.MethodGet, "/api/v1/outreach/imports/"+jobID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	data := decodeData(t, rec)
	if data["id"] != jobID {
		t.Fatalf("unexpected id: %#v", data["id"])
	}
	if data["import_progress"] != float64(25) {
		t.Fatalf("unexpected import_progress: %#v", data["import_progress"])
	}
}

func TestGetJobInvalidID(t *testing.T) {
	t.Parallel()

	e := newJobServer(&fakeGetUseCase{err: app.ErrInvalidJobID}, &fakeListUseCase{})

	rec := doJSON(e, http.MethodGet, "/api/v1/outreach/imports/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetJobNotFound(t *testing.T) {
	t.Parallel()

	e := newJobServer(&fakeGetUseCase{err: app.ErrImportJobNotFound}, &fakeListUseCase{})

	rec := doJSON(e, http.MethodGet, "/api/v1/outreach/imports/"+jobID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListItemsPassesQuery(t *testing.T) {
	t.Parallel()

	list := &fakeListUseCase{output: app.ListImportJobItemsOutput{
		Items: []app.ImportJobItemOutput{{ID: 7, RowNumber: 3, Status: "DUPLICATE_IN_FILE", Reason: "Duplicate of row 1"}},
		Total: 1,
		Limit: 50,
	}}
	e := newJobServer(&fakeGetUseCase{}, list)

	rec := doJSON(e, http.MethodGet, "/api/v1/outreach/imports/"+jobID+"/items?status=DUPLICATE_IN_FILE&limit=50&offset=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if list.got.Statuses != "DUPLICATE_IN_FILE" || list.got.Limit != 50 || list.got.Offset != 10 {
		t.Fatalf("unexpected input: %+v", list.got)
	}

	data := decodeData(t, rec)
	if data["total"] != float64(1) {
		t.Fatalf("unexpected total: %#v", data["total"])
	}
}

func TestListItemsBadLimit(t *testing.T) {
	t.Parallel()

	e := newJobServer(&fakeGetUseCase{}, &fakeListUseCase{})

	rec := doJSON(e, http.MethodGet, "/api/v1/outreach/imports/"+jobID+"/items?limit=ten", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListItemsInvalidStatus(t *testing.T) {
	t.Parallel()

	e := newJobServer(&fakeGetUseCase{}, &fakeListUseCase{err: app.ErrInvalidItemStatus})

	rec := doJSON(e, http.MethodGet, "/api/v1/outreach/imports/"+jobID+"/items?status=PENDING", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
