package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/harvestparse/internal/config"
	"github.com/dgallion1/harvestparse/internal/harvest"
	"github.com/dgallion1/harvestparse/internal/pipeline"
	"github.com/dgallion1/harvestparse/internal/store"
)

const testKey = "test-key"

const report = "2019 Elk Harvest, Hunters and Recreation Days for All Archery Seasons\n" +
	"Unit Bulls Cows Calves Harvest Hunters Success Rec. Days\n" +
	"201 50 120 10 180 300 60 900\n"

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "harvest.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	p := harvest.NewParser(harvest.Options{
		Verbosity:          harvest.VerbosityQuiet,
		IgnoreFilenameYear: true,
		Logger:             log,
	})
	stats := pipeline.NewStats(time.Hour)
	w := pipeline.NewWorker(p, db, stats, log, pipeline.WorkerConfig{})
	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{WorkerCount: 2, MaxQueueSize: 10, JobTTL: time.Hour}, w, stats, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	cfg := config.Config{APIKey: testKey, Species: "elk", MaxUploadBytes: 1 << 20}
	return NewServer(orch, db, log, cfg), db
}

func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, body := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(body))
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func do(t *testing.T, s *Server, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func waitForJob(t *testing.T, s *Server, id string) pipeline.JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := do(t, s, http.MethodGet, "/api/parse/"+id+"/status", nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var snap pipeline.JobSnapshot
		if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if snap.Status == pipeline.StatusCompleted || snap.Status == pipeline.StatusFailed {
			return snap
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return pipeline.JobSnapshot{}
}

func TestHealth_NoAuth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with a bad token, got %d", rec.Code)
	}
}

func TestParse_EndToEnd(t *testing.T) {
	s, _ := newTestServer(t)

	body, ct := multipartBody(t, "file", map[string]string{"2019.txt": report})
	rec := do(t, s, http.MethodPost, "/api/parse", body, ct)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&accepted); err != nil {
		t.Fatal(err)
	}
	id, _ := accepted["job_id"].(string)
	if id == "" {
		t.Fatalf("expected a job id, got %v", accepted)
	}
	if accepted["poll_url"] != "/api/parse/"+id+"/status" {
		t.Errorf("unexpected poll url %v", accepted["poll_url"])
	}

	snap := waitForJob(t, s, id)
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %s (%v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.Year != 2019 || snap.Progress.HarvestRecords != 1 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}

	rec = do(t, s, http.MethodGet, "/api/parse/"+id+"/result", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res harvest.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if len(res.Harvest) != 1 || res.Harvest[0].GMU != 201 {
		t.Errorf("unexpected result %+v", res)
	}

	rec = do(t, s, http.MethodGet, "/api/parse/"+id+"/report", nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<table>") {
		t.Errorf("expected an html report, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/api/records/2019/harvest", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected stored records, got %d: %s", rec.Code, rec.Body.String())
	}
	var stored struct {
		Year    int                   `json:"year"`
		Harvest []harvest.FlatHarvest `json:"harvest"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&stored); err != nil {
		t.Fatal(err)
	}
	if stored.Year != 2019 || len(stored.Harvest) != 1 {
		t.Errorf("unexpected stored records %+v", stored)
	}

	rec = do(t, s, http.MethodGet, "/api/records/years", nil, "")
	if !strings.Contains(rec.Body.String(), `"years":[2019]`) {
		t.Errorf("expected years [2019], got %s", rec.Body.String())
	}
}

func TestParse_FailedJob(t *testing.T) {
	s, _ := newTestServer(t)

	body, ct := multipartBody(t, "file", map[string]string{"notes.txt": "Statewide estimates\n"})
	rec := do(t, s, http.MethodPost, "/api/parse", body, ct)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var accepted map[string]any
	json.NewDecoder(rec.Body).Decode(&accepted)
	id := accepted["job_id"].(string)

	snap := waitForJob(t, s, id)
	if snap.Status != pipeline.StatusFailed || snap.Phase != "parsing" {
		t.Errorf("expected failure in parsing, got %s/%s", snap.Status, snap.Phase)
	}
	rec = do(t, s, http.MethodGet, "/api/parse/"+id+"/result", nil, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}

func TestParse_Rejections(t *testing.T) {
	s, _ := newTestServer(t)

	body, ct := multipartBody(t, "file", map[string]string{"report.docx": "x"})
	if rec := do(t, s, http.MethodPost, "/api/parse", body, ct); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported type, got %d", rec.Code)
	}

	body, ct = multipartBody(t, "file", map[string]string{"big.txt": strings.Repeat("x", 1<<20+1)})
	if rec := do(t, s, http.MethodPost, "/api/parse", body, ct); rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}

	if rec := do(t, s, http.MethodGet, "/api/parse/nope/status", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/records/abc/harvest", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad year, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/records/1999/harvest", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown year, got %d", rec.Code)
	}
}

func TestBatchParse(t *testing.T) {
	s, _ := newTestServer(t)

	body, ct := multipartBody(t, "files", map[string]string{
		"2019.txt":   report,
		"notes.html": "<p>x</p>",
	})
	rec := do(t, s, http.MethodPost, "/api/parse/batch", body, ct)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Jobs []map[string]any `json:"jobs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Jobs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(resp.Jobs))
	}
	var accepted, rejected int
	for _, j := range resp.Jobs {
		if _, ok := j["error"]; ok {
			rejected++
		} else {
			accepted++
			waitForJob(t, s, j["job_id"].(string))
		}
	}
	if accepted != 1 || rejected != 1 {
		t.Errorf("expected 1 accepted and 1 rejected, got %d and %d", accepted, rejected)
	}

	rec = do(t, s, http.MethodGet, "/api/stats", nil, "")
	var stats struct {
		TrackedJobs int                    `json:"tracked_jobs"`
		Processing  pipeline.StatsSnapshot `json:"processing"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.TrackedJobs != 1 || stats.Processing.Count != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\reports\2019.pdf`, "2019.pdf"},
		{"", "unnamed"},
		{"a..b.txt", "a_b.txt"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
