// Package batch owns the upload/process pipeline: validate a video file,
// upload it, trigger the asynchronous translation job, and await the
// terminal result.
package batch

import (
	"errors"
	"fmt"

	"sign-translate-client/internal/models"
)

// Errors returned before any network traffic, plus the no-result case.
var (
	ErrFileTooLarge      = errors.New("file exceeds the upload size limit")
	ErrUnsupportedFormat = errors.New("unsupported video format")
	ErrNoResult          = errors.New("processing returned no result")
)

// Stage is the lifecycle stage of an upload session. It only advances
// forward (Idle -> Uploading -> Processing -> Complete|Failed); the sole
// way back to Idle is an explicit Reset.
type Stage int

const (
	StageIdle Stage = iota
	StageUploading
	StageProcessing
	StageComplete
	StageFailed
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "IDLE"
	case StageUploading:
		return "UPLOADING"
	case StageProcessing:
		return "PROCESSING"
	case StageComplete:
		return "COMPLETE"
	case StageFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true for Complete and Failed.
func (s Stage) IsTerminal() bool {
	return s == StageComplete || s == StageFailed
}

// canAdvance reports whether the forward transition s -> to is legal.
func (s Stage) canAdvance(to Stage) bool {
	switch s {
	case StageIdle:
		return to == StageUploading
	case StageUploading:
		return to == StageProcessing || to == StageFailed
	case StageProcessing:
		return to == StageComplete || to == StageFailed
	default:
		return false
	}
}

// FileInfo describes a candidate upload.
type FileInfo struct {
	Path      string
	Name      string
	SizeBytes int64
	MIMEType  string
}

// Session is a snapshot of the single live upload session. The preview
// reference is created as soon as a file is accepted, before the upload
// finishes, so callers can render a preview immediately.
type Session struct {
	File           FileInfo
	PreviewRef     string // local preview handle; empty once released
	UploadProgress int    // 0..100
	Stage          Stage
	Error          string
	Result         *models.TranslationTaskResult
}
