// liveclient drives the live translation pipeline from the command line,
// feeding still images from a directory in place of a camera.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"sign-translate-client/internal/batch"
	"sign-translate-client/internal/capture"
	"sign-translate-client/internal/config"
	"sign-translate-client/internal/events"
	"sign-translate-client/internal/history"
	"sign-translate-client/internal/historystore"
	"sign-translate-client/internal/live"
	"sign-translate-client/internal/models"
	"sign-translate-client/internal/observability"
	"sign-translate-client/internal/observability/logging"
	"sign-translate-client/internal/recognizer"
	"sign-translate-client/internal/recognizer/wsadapter"
	"sign-translate-client/internal/translator"
)

func main() {
	framesDir := flag.String("frames", "testdata/frames", "Directory of still images used as the video feed")
	statusEvery := flag.Duration("status", 2*time.Second, "How often to print the translation status")
	saveHistory := flag.Bool("save", false, "Save each new prediction to the remote history store")
	cacheDir := flag.String("cache-dir", ".cache/history", "Directory for the local history cache")
	logFormat := flag.String("log-format", "console", "Log format: json or console")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.Observability.LogLevel, Format: *logFormat})

	obs := observability.NewServer(cfg.Observability.MetricsAddr)
	obs.Start()

	publisher := events.New(&events.Config{
		Enabled:         cfg.Kafka.Enabled,
		Brokers:         cfg.Kafka.Brokers,
		TopicPrediction: cfg.Kafka.TopicPrediction,
		TopicHistory:    cfg.Kafka.TopicHistorySync,
		Principal:       cfg.Service.Principal,
	})
	defer publisher.Close()

	source, err := capture.NewFileSource(*framesDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", *framesDir).Msg("Failed to load frame directory")
	}
	capturer := capture.New(source)

	recorder := history.NewRecorder()

	opts := []live.Option{
		live.WithSampleInterval(cfg.Live.SampleInterval),
	}
	if !cfg.Live.Enabled {
		opts = append(opts, live.WithLiveDisabled())
	}
	if cfg.Kafka.Enabled {
		opts = append(opts, live.WithPredictionHook(func(p models.PredictionResult) {
			if err := publisher.PublishPrediction(context.Background(), cfg.Service.UserID, p); err != nil {
				log.Warn().Err(err).Msg("Failed to publish prediction")
			}
		}))
	}

	channel := live.NewChannel(
		func() recognizer.Adapter {
			return wsadapter.New(cfg.Live.SocketURL, wsadapter.WithDialTimeout(cfg.Live.DialTimeout))
		},
		capturer,
		recorder,
		opts...,
	)

	api := batch.NewAPIClient(cfg.Service.APIBase)
	orch := batch.NewOrchestrator(api, api,
		batch.WithLanguage(cfg.Live.Language),
		batch.WithUserID(cfg.Service.UserID),
		batch.WithValidator(batch.NewValidator(cfg.Upload.MaxFileBytes, cfg.Upload.AllowedTypes)),
	)

	var facadeOpts []translator.Option
	if *saveHistory {
		cache, err := historystore.NewCache(*cacheDir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", *cacheDir).Msg("Failed to open history cache")
		}
		defer cache.Close()
		store := historystore.NewClient(cfg.Service.APIBase, publisher, cache)
		facadeOpts = append(facadeOpts, translator.WithHistoryStore(store, cfg.Service.UserID))
	}

	facade := translator.New(channel, orch, recorder, facadeOpts...)

	ctx := context.Background()
	if err := facade.ToggleRecognition(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start recognition")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	ticker := time.NewTicker(*statusEvery)
	defer ticker.Stop()

	var lastSaved string
	for {
		select {
		case <-ticker.C:
			st := facade.Status()
			log.Info().
				Str("state", st.Connection.String()).
				Str("current", st.Current.Prediction).
				Int("confidence", st.Current.Confidence).
				Int("history", len(st.History)).
				Msg("Translation status")

			if *saveHistory && st.Current.Prediction != lastSaved {
				if entry, err := facade.SaveCurrent(ctx); err == nil {
					lastSaved = entry.Prediction
					log.Info().Str("entryId", entry.ID).Str("prediction", entry.Prediction).Msg("Prediction saved")
				} else if !errors.Is(err, historystore.ErrNothingToSave) {
					log.Warn().Err(err).Msg("Failed to save prediction")
				}
			}
		case <-sig:
			log.Info().Msg("Shutting down")
			if *saveHistory {
				if entries, err := facade.SavedHistory(ctx); err == nil {
					log.Info().Int("entries", len(entries)).Msg("Saved history")
				} else {
					log.Warn().Err(err).Msg("Failed to list saved history")
				}
			}
			facade.Disconnect()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = obs.Shutdown(shutdownCtx)
			return
		}
	}
}
