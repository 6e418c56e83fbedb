// batchclient uploads one local video file for translation and prints the
// resulting segments.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"sign-translate-client/internal/batch"
	"sign-translate-client/internal/config"
	"sign-translate-client/internal/observability/logging"
)

// mimeByExt maps common video extensions to their MIME type, since the CLI
// has no browser to sniff it for us.
var mimeByExt = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".avi":  "video/avi",
	".mov":  "video/quicktime",
}

func main() {
	filePath := flag.String("file", "", "Path to the video file to translate")
	language := flag.String("language", "", "Sign language to request (defaults to TRANSLATE_LANGUAGE)")
	logFormat := flag.String("log-format", "console", "Log format: json or console")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.Observability.LogLevel, Format: *logFormat})

	if *filePath == "" {
		log.Fatal().Msg("-file is required")
	}
	info, err := os.Stat(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Cannot read file")
	}

	lang := cfg.Live.Language
	if *language != "" {
		lang = *language
	}

	api := batch.NewAPIClient(cfg.Service.APIBase)
	orch := batch.NewOrchestrator(api, api,
		batch.WithLanguage(lang),
		batch.WithUserID(cfg.Service.UserID),
		batch.WithValidator(batch.NewValidator(cfg.Upload.MaxFileBytes, cfg.Upload.AllowedTypes)),
	)

	file := batch.FileInfo{
		Path:      *filePath,
		Name:      filepath.Base(*filePath),
		SizeBytes: info.Size(),
		MIMEType:  mimeByExt[strings.ToLower(filepath.Ext(*filePath))],
	}

	if err := orch.Submit(context.Background(), file); err != nil {
		log.Fatal().Err(err).Msg("File rejected")
	}

	s := orch.Session()
	switch s.Stage {
	case batch.StageComplete:
		log.Info().
			Str("summary", s.Result.Summary).
			Float64("durationSec", s.Result.DurationSec).
			Int("segments", len(s.Result.Segments)).
			Msg("Translation complete")
		for _, seg := range s.Result.Segments {
			log.Info().
				Float64("start", seg.StartTime).
				Float64("end", seg.EndTime).
				Str("prediction", seg.Prediction).
				Float64("confidence", seg.Confidence).
				Msg("Segment")
		}
	case batch.StageFailed:
		log.Error().Str("error", s.Error).Msg("Translation failed")
		os.Exit(1)
	default:
		log.Error().Str("stage", s.Stage.String()).Msg("Pipeline ended in a non-terminal stage")
		os.Exit(1)
	}
}
