package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"question-builder/api/internal/ocr"
	"question-builder/api/internal/util"
)

const maxTokens = 8192

type Engine struct {
	APIKey string
	Model  string
	client *goopenai.Client
}

func New(key, model string) *Engine {
	cfg := goopenai.DefaultConfig(strings.TrimSpace(key))
	// Timeout=0: the request context bounds the call.
	cfg.HTTPClient = &http.Client{Timeout: 0}
	return &Engine{
		APIKey: strings.TrimSpace(key),
		Model:  strings.TrimSpace(model),
		client: goopenai.NewClientWithConfig(cfg),
	}
}

// WithBaseURL points the client at an OpenAI-compatible endpoint (proxies, tests).
func (e *Engine) WithBaseURL(u string) *Engine {
	cfg := goopenai.DefaultConfig(e.APIKey)
	cfg.BaseURL = strings.TrimRight(u, "/")
	cfg.HTTPClient = &http.Client{Timeout: 0}
	e.client = goopenai.NewClientWithConfig(cfg)
	return e
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

// ExtractPaper sends pages as data URLs in a single user message and asks for a JSON object back.
func (e *Engine) ExtractPaper(ctx context.Context, prompt string, images []ocr.Image) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("OPENAI_API_KEY not set")
	}

	parts := make([]goopenai.ChatMessagePart, 0, len(images)+1)
	parts = append(parts, goopenai.ChatMessagePart{Type: goopenai.ChatMessagePartTypeText, Text: prompt})
	for _, img := range images {
		parts = append(parts, goopenai.ChatMessagePart{
			Type: goopenai.ChatMessagePartTypeImageURL,
			ImageURL: &goopenai.ChatMessageImageURL{
				URL:    util.MakeDataURL(img.MIME, base64.StdEncoding.EncodeToString(img.Data)),
				Detail: goopenai.ImageURLDetailHigh,
			},
		})
	}

	req := goopenai.ChatCompletionRequest{
		Model:       e.Model,
		Temperature: 0,
		MaxTokens:   maxTokens,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, MultiContent: parts},
		},
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
