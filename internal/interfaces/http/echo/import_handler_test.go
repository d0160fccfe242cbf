package echo_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/outreach-import/internal/application/outreach"
	httpecho "github.com/mohammadpnp/outreach-import/internal/interfaces/http/echo"
)

const jobID = "0b9f6a52-4d7e-4b8e-9a51-6f2f6d3c1a10"

type fakeStartUseCase struct {
	output app.StartOutreachImportOutput
	err    error
}

func (f *fakeStartUseCase) Execute(ctx context.Context, in app.StartOutreachImportInput) (app.StartOutreachImportOutput, error) {
	if f.err != nil {
		return app.StartOutreachImportOutput{}, f.err
	}
	return f.output, nil
}

type fakeAdvanceUseCase struct {
	output app.AdvanceOutput
	err    error
	got    app.AdvanceInput
}

func (f *fakeAdvanceUseCase) Execute(ctx context.Context, in app.AdvanceInput) (app.AdvanceOutput, error) {
	f.got = in
	if f.err != nil {
		return app.AdvanceOutput{}, f.err
	}
	return f.output, nil
}

type fakeSubmitter struct {
	submitted []string
}

func (f *fakeSubmitter) Submit(jobID string) bool {
	f.submitted = append(f.submitted, jobID)
	return true
}

func newServer(start app.StartOutreachImport, advance app.AdvanceImportJob, runner *fakeSubmitter) *echo.Echo {
	e := echo.New()
	var importHandler *httpecho.ImportHandler
	if runner == nil {
		importHandler = httpecho.NewImportHandler(start, advance, nil)
	} else {
		importHandler = httpecho.NewImportHandler(start, advance, runner)
	}
	jobHandler := httpecho.NewJobHandler(&fakeGetUseCase{}, &fakeListUseCase{})
	httpecho.RegisterRoutes(e, importHandler, jobHandler)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	data, ok := got["data"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected data payload: %#v", got["data"])
	}
	return data
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var got struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	return got.Error.Code
}

func TestStartImportSuccess(t *testing.T) {
	t.Parallel()

	runner := &fakeSubmitter{}
	e := newServer(&fakeStartUseCase{output: app.StartOutreachImportOutput{JobID: jobID, Status: "UPLOADED"}}, &fakeAdvanceUseCase{}, runner)

	rec := doJSON(e, http.MethodPost, "/api/v1/outreach/imports", `{"source_key":"uploads/contacts.csv","auto_run":true}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	data := decodeData(t, rec)
	if data["job_id"] != jobID {
		t.Fatalf("unexpected job_id: %#v", data["job_id"])
	}
	if data["queued"] != true {
		t.Fatalf("expected queued=true, got %#v", data["queued"])
	}
	if len(runner.submitted) != 1 || runner.submitted[0] != jobID {
		t.Fatalf("expected job to be submitted, got %v", runner.submitted)
	}
}

func TestStartImportWithoutAutoRun(t *testing.T) {
	t.Parallel()

	runner := &fakeSubmitter{}
	e := newServer(&fakeStartUseCase{output: app.StartOutreachImportOutput{JobID: jobID, Status: "UPLOADED"}}, &fakeAdvanceUseCase{}, runner)

	rec := doJSON(e, http.MethodPost, "/api/v1/outreach/imports", `{"source_key":"uploads/contacts.csv"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(runner.submitted) != 0 {
		t.Fatalf("did not expect submission, got %v", runner.submitted)
	}
}

func TestStartImportBadJSON(t *testing.T) {
	t.Parallel()

	e := newServer(&fakeStartUseCase{}, &fakeAdvanceUseCase{}, nil)

	rec := doJSON(e, http.MethodPost, "/api/v1/outreach/imports", `{"source_key":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStartImportInvalidSource(t *testing.T) {
	t.Parallel()

	e := newServer(&fakeStartUseCase{err: app.ErrInvalidImportSource}, &fakeAdvanceUseCase{}, nil)

	rec := doJSON(e, http.MethodPost, "/api/v1/outreach/imports", `{"source_key":"contacts.pdf"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "invalid_source" {
		t.Fatalf("unexpected error code: %s", code)
	}
}

func TestStartImportInternalError(t *testing.T) {
	t.Parallel()

	e := newServer(&fakeStartUseCase{err: errors.New("db down")}, &fakeAdvanceUseCase{}, nil)

	rec := doJSON(e, http.MethodPost, "/api/v1/outreach/imports", `{"source_key":"contacts.csv"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestAdvanceSuccess(t *testing.T) {
	t.Parallel()

	advance := &fakeAdvanceUseCase{output: app.AdvanceOutput{
		Job:      app.ImportJobOutput{ID: jobID, Status: "VALIDATING"},
		Progress: 40,
		Done:     false,
	}}
	e := newServer(&fakeStartUseCase{}, advance, nil)

	rec := doJSON(e, http.MethodPost, "/api/v1/outreach/imports/"+jobID+"/advance", `{"action":"VALIDATE"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if advance.got.JobID != jobID || advance.got.Action != "VALIDATE" {
		t.Fatalf("unexpected input: %+v", advance.got)
	}

	data := decodeData(t, rec)
	if data["progress"] != float64(40) {
		t.Fatalf("unexpected progress: %#v", data["progress"])
	}
	if data["done"] != false {
		t.Fatalf("unexpected done: %#v", data["done"])
	}
}

func TestAdvanceErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "invalid id", err: app.ErrInvalidJobID, status: http.StatusBadRequest, code: "invalid_job_id"},
		{name: "invalid action", err: app.ErrInvalidAction, status: http.StatusBadRequest, code: "invalid_action"},
		{name: "not found", err: app.ErrImportJobNotFound, status: http.StatusNotFound, code: "not_found"},
		{name: "busy", err: app.ErrImportJobBusy, status: http.StatusConflict, code: "job_busy"},
		{name: "validation incomplete", err: app.ErrValidationIncomplete, status: http.StatusConflict, code: "validation_incomplete"},
		{name: "internal", err: app.ErrAdvanceImportJob, status: http.StatusInternalServerError, code: "internal_error"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newServer(&fakeStartUseCase{}, &fakeAdvanceUseCase{err: tt.err}, nil)

			rec := doJSON(e, http.MethodPost, "/api/v1/outreach/imports/"+jobID+"/advance", `{"action":"IMPORT"}`)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if code := decodeErrorCode(t, rec); code != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, code)
			}
		})
	}
}
