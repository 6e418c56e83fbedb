// mockservice is a local stand-in for the recognition service: it accepts
// frame streams over WebSocket and answers each frame with a canned
// prediction, and serves the upload/process/history REST endpoints with
// fabricated results. Development and manual testing only.
package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"sign-translate-client/internal/models"
	"sign-translate-client/internal/observability/logging"
)

var vocabulary = []string{"hello", "thank you", "please", "yes", "no", "help"}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type mockService struct {
	mu      sync.Mutex
	videos  map[string]string // video id -> filename
	history []models.HistoryEntry
}

func main() {
	addr := flag.String("addr", ":8000", "Listen address")
	logFormat := flag.String("log-format", "console", "Log format: json or console")
	flag.Parse()

	_ = godotenv.Load()
	logging.Init(logging.Config{Level: "debug", Format: *logFormat})

	svc := &mockService{videos: make(map[string]string)}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Get("/ws/translate", svc.handleTranslateSocket)

	r.Route("/api", func(r chi.Router) {
		r.Post("/videos/upload", svc.handleUpload)
		r.Post("/videos/process", svc.handleProcess)
		r.Get("/history/{userID}", svc.handleHistoryList)
		r.Post("/history", svc.handleHistorySave)
		r.Delete("/history/{entryID}", svc.handleHistoryDelete)
	})

	server := &http.Server{Addr: *addr, Handler: r}
	go func() {
		log.Info().Str("addr", *addr).Msg("Mock recognition service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("Shutting down mock service")
	_ = server.Close()
}

// handleTranslateSocket answers every inbound frame with the next word in
// the vocabulary, mimicking the live prediction stream.
func (s *mockService) handleTranslateSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Upgrade failed")
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	logger := logging.WithSession(sessionID)
	logger.Info().Msg("Live session opened")

	var frames int
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			logger.Info().Err(err).Int("frames", frames).Msg("Live session closed")
			return
		}
		frames++

		confidence := 0.6 + 0.05*float64(frames%8)
		msg := models.ServiceMessage{
			Prediction: vocabulary[frames%len(vocabulary)],
			Confidence: &confidence,
		}
		if err := conn.WriteJSON(msg); err != nil {
			logger.Warn().Err(err).Msg("Failed to write prediction")
			return
		}
	}
}

func (s *mockService) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(256 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file part", http.StatusBadRequest)
		return
	}
	f.Close()

	id := uuid.NewString()
	s.mu.Lock()
	s.videos[id] = hdr.Filename
	s.mu.Unlock()

	log.Info().Str("videoId", id).Str("filename", hdr.Filename).Int64("bytes", hdr.Size).Msg("Video uploaded")
	writeJSON(w, models.UploadResponse{
		ID:       id,
		Filename: hdr.Filename,
		FileSize: hdr.Size,
		Status:   "uploaded",
	})
}

func (s *mockService) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req models.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	filename, ok := s.videos[req.VideoID]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "unknown video", http.StatusNotFound)
		return
	}

	segments := make([]models.VideoSegment, 0, 3)
	var t float64
	for i := 0; i < 3; i++ {
		segments = append(segments, models.VideoSegment{
			StartTime:  t,
			EndTime:    t + 1.5,
			Prediction: vocabulary[i%len(vocabulary)],
			Confidence: 0.85,
			BoundingBox: models.BoundingBox{
				X: 0.25, Y: 0.2, Width: 0.5, Height: 0.6,
			},
		})
		t += 1.5
	}

	log.Info().Str("videoId", req.VideoID).Str("language", req.Language).Msg("Processing video")
	writeJSON(w, models.ProcessResponse{
		ID:       uuid.NewString(),
		Status:   "completed",
		Progress: 100,
		Result: &models.TranslationTaskResult{
			ID:          req.VideoID,
			Filename:    filename,
			Status:      "completed",
			Segments:    segments,
			Summary:     "hello thank you please",
			DurationSec: t,
		},
	})
}

func (s *mockService) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	s.mu.Lock()
	out := make([]models.HistoryEntry, 0)
	for _, e := range s.history {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	s.mu.Unlock()

	writeJSON(w, out)
}

func (s *mockService) handleHistorySave(w http.ResponseWriter, r *http.Request) {
	var e models.HistoryEntry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	s.mu.Lock()
	s.history = append(s.history, e)
	s.mu.Unlock()

	writeJSON(w, e)
}

func (s *mockService) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.history {
		if e.ID == entryID {
			s.history = append(s.history[:i], s.history[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.Error(w, "not found", http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}
