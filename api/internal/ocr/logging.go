package ocr

import (
	"context"
	"log/slog"
	"time"
)

type loggingEngine struct {
	Engine
	log *slog.Logger
}

// WithLogging logs every gateway call: model, pages, latency and outcome.
func WithLogging(e Engine, log *slog.Logger) Engine {
	if e == nil {
		return nil
	}
	return &loggingEngine{Engine: e, log: log}
}

func (l *loggingEngine) ExtractPaper(ctx context.Context, prompt string, images []Image) (string, error) {
	start := time.Now()
	var size int
	for _, img := range images {
		size += len(img.Data)
	}
	out, err := l.Engine.ExtractPaper(ctx, prompt, images)
	attrs := []any{
		"engine", l.Name(),
		"model", l.GetModel(),
		"images", len(images),
		"image_bytes", size,
		"duration", time.Since(start),
	}
	if err != nil {
		l.log.ErrorContext(ctx, "gateway call failed", append(attrs, "err", err)...)
		return "", err
	}
	l.log.InfoContext(ctx, "gateway call done", append(attrs, "reply_len", len(out))...)
	return out, nil
}
