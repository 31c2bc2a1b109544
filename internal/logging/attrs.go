package logging

import (
	"log/slog"
	"time"
)

// Field names shared across the pipeline so log lines stay greppable.
const (
	FieldVideoID = "video_id"
	FieldChannel = "channel"
	FieldStage   = "stage"
	FieldRunID   = "run_id"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func VideoID(id string) Attr { return slog.String(FieldVideoID, id) }

func Stage(stage string) Attr { return slog.String(FieldStage, stage) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}
