package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"question-builder/api/internal/ocr"
	"question-builder/api/internal/paper"
)

// Extractor is the extraction pipeline shared with the HTTP API.
type Extractor interface {
	Extract(ctx context.Context, llmName string, d paper.Defaults, images []ocr.Image) (map[string]any, error)
}

// Router turns chat updates into extractions: photos are collected per album,
// then sent to the model together and answered with a .docx.
type Router struct {
	Bot       *tgbotapi.BotAPI
	Extractor Extractor
	Log       *slog.Logger

	// Timeout bounds one extraction. Debounce is how long to wait for more pages.
	Timeout  time.Duration
	Debounce time.Duration
	// FileEndpoint is the download URL pattern (token, file path).
	FileEndpoint string
	HTTPClient   *http.Client
	Now          func() time.Time

	batches  sync.Map // key -> *photoBatch
	settings sync.Map // chatID -> *chatSettings
}

func NewRouter(bot *tgbotapi.BotAPI, ex Extractor, log *slog.Logger, timeout time.Duration) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		Bot:          bot,
		Extractor:    ex,
		Log:          log.With("component", "telegram"),
		Timeout:      timeout,
		Debounce:     debounce,
		FileEndpoint: tgbotapi.FileEndpoint,
		HTTPClient:   &http.Client{Timeout: 60 * time.Second},
		Now:          time.Now,
	}
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	switch {
	case msg.IsCommand():
		r.HandleCommand(msg)
	case len(msg.Photo) > 0:
		r.acceptPhoto(msg)
	case msg.Document != nil:
		r.acceptDocument(msg)
	case strings.TrimSpace(msg.Text) != "":
		r.send(msg.Chat.ID, "Send photos of the question paper (several pages in one album are fine). /help lists the commands.")
	}
}

// WebhookHandler accepts updates pushed by Telegram.
func (r *Router) WebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		upd, err := r.Bot.HandleUpdate(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		go r.HandleUpdate(*upd)
		w.WriteHeader(http.StatusOK)
	}
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		r.Log.Warn("send message failed", "chat_id", chatID, "err", err)
	}
}

// sendError explains a failed extraction in terms the user can act on.
func (r *Router) sendError(chatID int64, err error) {
	var text string
	switch {
	case errors.Is(err, paper.ErrNoContent):
		text = "I could not read any image from those pages. Please send the photos again."
	case errors.Is(err, context.DeadlineExceeded):
		text = "The model took too long to answer. Try fewer pages at once."
	case errors.Is(err, ocr.ErrGateway):
		text = "The model service failed: " + err.Error()
	case errors.Is(err, paper.ErrMalformedResponse):
		text = "The model answer was not valid JSON. Please try again."
	case errors.Is(err, paper.ErrEmptyResult):
		text = "No questions were found on these pages."
	default:
		text = fmt.Sprintf("Something went wrong: %v", err)
	}
	r.send(chatID, text)
}
