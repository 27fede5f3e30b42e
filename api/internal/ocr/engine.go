package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Image is one uploaded page handed to the model as inline data.
type Image struct {
	Filename string
	MIME     string
	Data     []byte
}

// Engine is a multimodal model gateway: prompt and pages in, free-form text out.
type Engine interface {
	Name() string
	GetModel() string
	ExtractPaper(ctx context.Context, prompt string, images []Image) (string, error)
}

// ErrGateway marks any failure of the upstream model call.
var ErrGateway = errors.New("model gateway error")

// GatewayError carries the upstream message as is.
type GatewayError struct {
	Provider string
	Err      error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("error calling %s: %v", e.Provider, e.Err)
}

func (e *GatewayError) Is(target error) bool { return target == ErrGateway }

func (e *GatewayError) Unwrap() error { return e.Err }

// Engines holds the configured gateways; Default is used when the request does not name one.
type Engines struct {
	Gemini  Engine
	OpenAI  Engine
	Default string
}

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	if name == "" {
		name = e.Default
	}
	var eng Engine
	switch name {
	case "gemini":
		eng = e.Gemini
	case "gpt", "openai":
		eng = e.OpenAI
	default:
		return nil, fmt.Errorf("unknown llm_name %q; use 'gemini' or 'gpt'", llmName)
	}
	if eng == nil {
		return nil, fmt.Errorf("llm %q is not configured", name)
	}
	return eng, nil
}
