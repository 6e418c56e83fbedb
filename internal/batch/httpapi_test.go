package batch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"sign-translate-client/internal/models"
)

func writeTempVideo(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write temp video: %v", err)
	}
	return path
}

// newEndpointServer serves both the upload and process endpoints.
func newEndpointServer(t *testing.T, processResult *models.TranslationTaskResult) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/videos/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file part", http.StatusBadRequest)
			return
		}
		f.Close()
		json.NewEncoder(w).Encode(models.UploadResponse{
			ID:       "vid-42",
			Filename: hdr.Filename,
			FileSize: hdr.Size,
			Status:   "uploaded",
		})
	})

	mux.HandleFunc("/api/videos/process", func(w http.ResponseWriter, r *http.Request) {
		var req models.ProcessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.VideoID != "vid-42" {
			http.Error(w, "unknown video", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(models.ProcessResponse{
			ID:     "job-42",
			Status: "completed",
			Result: processResult,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAPIClient_Upload(t *testing.T) {
	srv := newEndpointServer(t, nil)
	c := NewAPIClient(srv.URL + "/api")

	path := writeTempVideo(t, []byte("fake mp4 bytes"))
	resp, err := c.Upload(context.Background(), FileInfo{
		Path:     path,
		Name:     "clip.mp4",
		MIMEType: "video/mp4",
	}, "user-1")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if resp.ID != "vid-42" {
		t.Errorf("expected id vid-42, got %s", resp.ID)
	}
	if resp.Filename != "clip.mp4" {
		t.Errorf("expected filename echoed back, got %s", resp.Filename)
	}
}

func TestAPIClient_UploadMissingFile(t *testing.T) {
	srv := newEndpointServer(t, nil)
	c := NewAPIClient(srv.URL + "/api")

	_, err := c.Upload(context.Background(), FileInfo{
		Path: filepath.Join(t.TempDir(), "missing.mp4"),
		Name: "missing.mp4",
	}, "")
	if err == nil {
		t.Fatal("expected error for missing local file")
	}
}

func TestAPIClient_ProcessErrorStatus(t *testing.T) {
	srv := newEndpointServer(t, nil)
	c := NewAPIClient(srv.URL + "/api")

	_, err := c.Process(context.Background(), "no-such-video", "asl")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
}

// End-to-end over real HTTP: a valid mp4 reaches Complete with a
// "completed" task result.
func TestOrchestrator_EndToEndOverHTTP(t *testing.T) {
	result := &models.TranslationTaskResult{
		ID:       "job-42",
		Filename: "clip.mp4",
		Status:   "completed",
		Segments: []models.VideoSegment{
			{StartTime: 0, EndTime: 2.1, Prediction: "thank you", Confidence: 0.91,
				BoundingBox: models.BoundingBox{X: 0.2, Y: 0.1, Width: 0.4, Height: 0.5}},
		},
		Summary:     "thank you",
		DurationSec: 2.1,
	}
	srv := newEndpointServer(t, result)
	client := NewAPIClient(srv.URL + "/api")

	o := NewOrchestrator(client, client, WithUserID("user-1"))

	path := writeTempVideo(t, make([]byte, 1024))
	err := o.Submit(context.Background(), FileInfo{
		Path:      path,
		Name:      "clip.mp4",
		SizeBytes: 10 * 1024 * 1024,
		MIMEType:  "video/mp4",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	s := o.Session()
	if s.Stage != StageComplete {
		t.Fatalf("expected StageComplete, got %v (error=%q)", s.Stage, s.Error)
	}
	if s.Result.Status != "completed" {
		t.Errorf("expected result status 'completed', got %q", s.Result.Status)
	}
	if len(s.Result.Segments) != 1 || s.Result.Segments[0].Prediction != "thank you" {
		t.Errorf("unexpected segments: %+v", s.Result.Segments)
	}
}

// Missing result over real HTTP lands in Failed with a message.
func TestOrchestrator_NoResultOverHTTP(t *testing.T) {
	srv := newEndpointServer(t, nil) // process endpoint omits result
	client := NewAPIClient(srv.URL + "/api")
	o := NewOrchestrator(client, client)

	path := writeTempVideo(t, []byte("bytes"))
	if err := o.Submit(context.Background(), FileInfo{
		Path:      path,
		Name:      "clip.mp4",
		SizeBytes: 5,
		MIMEType:  "video/mp4",
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	s := o.Session()
	if s.Stage != StageFailed {
		t.Fatalf("expected StageFailed, got %v", s.Stage)
	}
	if s.Error == "" {
		t.Error("expected a non-empty error")
	}
}
