package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"question-builder/api/internal/docx"
	"question-builder/api/internal/ocr"
	"question-builder/api/internal/paper"
	"question-builder/api/internal/util"
)

func (r *Router) acceptPhoto(msg *tgbotapi.Message) {
	ph := msg.Photo[len(msg.Photo)-1] // largest size
	r.collect(msg, ph.FileID, fmt.Sprintf("photo_%d.jpg", msg.MessageID), "image/jpeg")
}

// acceptDocument takes images sent as files (uncompressed scans).
func (r *Router) acceptDocument(msg *tgbotapi.Message) {
	d := msg.Document
	if !strings.HasPrefix(d.MimeType, "image/") {
		r.send(msg.Chat.ID, "Only images are supported. Send the pages as photos or image files.")
		return
	}
	r.collect(msg, d.FileID, d.FileName, d.MimeType)
}

func (r *Router) collect(msg *tgbotapi.Message, fileID, name, mime string) {
	cid := msg.Chat.ID
	data, err := r.download(fileID)
	if err != nil {
		r.Log.Warn("download failed", "chat_id", cid, "err", err)
		r.send(cid, "Could not download that page, please send it again.")
		return
	}

	key := "chat:" + fmt.Sprint(cid)
	if msg.MediaGroupID != "" {
		key = "grp:" + msg.MediaGroupID
	}
	first, ok := r.addPage(key, cid, msg.MediaGroupID, page{name: name, mime: util.PickMIME(mime, data), data: data})
	if !ok {
		r.send(cid, fmt.Sprintf("At most %d pages per paper; extra pages are ignored.", maxPages))
		return
	}
	if first {
		r.send(cid, "Page received. If the paper has more pages, send them now; I will read them together.")
	}
}

// addPage appends p to the open batch under key and restarts its debounce timer.
// ok is false when the batch is already full.
func (r *Router) addPage(key string, chatID int64, groupID string, p page) (first, ok bool) {
	for {
		bi, _ := r.batches.LoadOrStore(key, &photoBatch{ChatID: chatID, Key: key, MediaGroupID: groupID})
		b := bi.(*photoBatch)

		b.mu.Lock()
		if b.done {
			b.mu.Unlock()
			r.batches.CompareAndDelete(key, b)
			continue
		}
		if len(b.pages) >= maxPages {
			b.mu.Unlock()
			return false, false
		}
		b.pages = append(b.pages, p)
		first = len(b.pages) == 1
		b.lastAt = time.Now()
		if b.timer != nil {
			b.timer.Stop()
		}
		b.timer = time.AfterFunc(r.Debounce, func() { r.processBatch(key) })
		b.mu.Unlock()
		return first, true
	}
}

// takeBatch removes the batch under key and closes it to further pages.
func (r *Router) takeBatch(key string) (*photoBatch, []page) {
	bi, ok := r.batches.LoadAndDelete(key)
	if !ok {
		return nil, nil
	}
	b := bi.(*photoBatch)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.done = true
	return b, append([]page(nil), b.pages...)
}

func (r *Router) processBatch(key string) {
	b, pages := r.takeBatch(key)
	if len(pages) == 0 {
		return
	}
	images := make([]ocr.Image, len(pages))
	for i, p := range pages {
		images[i] = ocr.Image{Filename: p.name, MIME: p.mime, Data: p.data}
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()
	r.extractAndReply(ctx, b.ChatID, images)
}

// extractAndReply runs the pipeline with the chat's defaults and answers with the .docx.
func (r *Router) extractAndReply(ctx context.Context, chatID int64, images []ocr.Image) {
	defaults, engine := r.chat(chatID).snapshot()
	log := r.Log.With("chat_id", chatID, "pages", len(images))

	doc, err := r.Extractor.Extract(ctx, engine, defaults, images)
	if err != nil {
		log.Warn("extraction failed", "err", err)
		r.sendError(chatID, err)
		return
	}
	p, err := paper.Decode(doc)
	if err != nil {
		r.sendError(chatID, err)
		return
	}
	out, err := docx.Render(p)
	if err != nil {
		r.sendError(chatID, err)
		return
	}

	file := tgbotapi.FileBytes{Name: docx.FileName(p.Subject, r.Now()), Bytes: out}
	reply := tgbotapi.NewDocument(chatID, file)
	reply.Caption = paperCaption(p, len(images))
	if _, err := r.Bot.Send(reply); err != nil {
		log.Warn("send document failed", "err", err)
		return
	}
	log.Info("paper sent", "sections", len(p.Sections), "questions", p.QuestionCount())
}

func (r *Router) download(fileID string) ([]byte, error) {
	file, err := r.Bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, err
	}
	resp, err := r.HTTPClient.Get(fmt.Sprintf(r.FileEndpoint, r.Bot.Token, file.FilePath))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}
