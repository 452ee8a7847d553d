package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mugil-an/carcheckmate/internal/model"
	"github.com/Mugil-an/carcheckmate/internal/store"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProcessor struct {
	summary *model.DocumentSummary
	err     error
	gotPath string
}

func (f *fakeProcessor) ProcessFile(ctx context.Context, path string) (*model.DocumentSummary, error) {
	f.gotPath = path
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

type fakeLister struct {
	events []store.ServiceEvent
	err    error
}

func (f *fakeLister) ListEvents() ([]store.ServiceEvent, error) {
	return f.events, f.err
}

func testConfig(t *testing.T) *model.Config {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Output.Dir = t.TempDir()
	cfg.Server.UploadDir = t.TempDir()
	return cfg
}

func uploadRequest(t *testing.T, filename string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("document", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("fake image bytes")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUpload_ReturnsSummaryAndExports(t *testing.T) {
	proc := &fakeProcessor{summary: &model.DocumentSummary{
		File:              "invoice.png",
		ParsedEventsCount: 1,
		Events: []model.Event{{
			ServiceDate: "05/03/2021",
			PageIndex:   1,
		}},
	}}
	srv := New(testConfig(t), proc, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "invoice.png"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		JobID   string                `json:"job_id"`
		Input   string                `json:"input_file"`
		Summary model.DocumentSummary `json:"summary"`
		Exports struct {
			JSON string `json:"json"`
			CSV  string `json:"csv"`
		} `json:"exports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID == "" || resp.Input != "invoice.png" {
		t.Errorf("response = %+v", resp)
	}
	if resp.Summary.ParsedEventsCount != 1 {
		t.Errorf("summary = %+v", resp.Summary)
	}
	if resp.Exports.JSON == "" || resp.Exports.CSV == "" {
		t.Errorf("exports = %+v", resp.Exports)
	}
	if proc.gotPath == "" {
		t.Error("processor was not invoked with the stored upload")
	}
}

func TestUpload_RejectsUnsupportedExtension(t *testing.T) {
	srv := New(testConfig(t), &fakeProcessor{}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "malware.exe"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpload_RejectsMissingFile(t *testing.T) {
	srv := New(testConfig(t), &fakeProcessor{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpload_ProcessorFailure(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("tesseract unavailable")}
	srv := New(testConfig(t), proc, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "invoice.png"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestEvents_WithoutPersistence(t *testing.T) {
	srv := New(testConfig(t), &fakeProcessor{}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestEvents_ListsPersistedHistory(t *testing.T) {
	lister := &fakeLister{events: []store.ServiceEvent{
		{SourceFile: "invoice.png", ServiceDate: "05/03/2021"},
	}}
	srv := New(testConfig(t), &fakeProcessor{}, lister)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Count  int                  `json:"count"`
		Events []store.ServiceEvent `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Events) != 1 {
		t.Errorf("response = %+v", resp)
	}
}
