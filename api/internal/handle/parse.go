package handle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"question-builder/api/internal/ocr"
	"question-builder/api/internal/paper"
	"question-builder/api/internal/store"
	"question-builder/api/internal/util"
)

const (
	// MaxRequestTimeout caps any extraction deadline, header override included.
	MaxRequestTimeout = 300 * time.Second
	// WriteTimeout leaves the slowest allowed extraction room to write its response.
	WriteTimeout = MaxRequestTimeout + 30*time.Second

	archiveTimeout  = 5 * time.Second
	multipartMemory = 8 << 20
)

// ParseQuestionPaper handles POST /ocr/parse-question-paper (multipart: files[] + metadata fields).
func (h *Handle) ParseQuestionPaper(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.opts.MaxUploadBytes {
		h.writeError(w, r, &http.MaxBytesError{Limit: h.opts.MaxUploadBytes})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.writeError(w, r, err)
			return
		}
		h.writeError(w, r, badRequest{"expected multipart/form-data: " + err.Error()})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	defaults, err := readDefaults(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	images, err := readImages(r.MultipartForm.File["files"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout(r))
	defer cancel()

	doc, err := h.Extract(ctx, r.FormValue("llm_name"), defaults, images)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Extract runs one extraction: prompt, gateway call, normalization. Successful
// results are archived before returning. ctx bounds the gateway call.
func (h *Handle) Extract(ctx context.Context, llmName string, d paper.Defaults, images []ocr.Image) (map[string]any, error) {
	if len(images) == 0 {
		return nil, paper.ErrNoContent
	}
	engine, err := h.engs.GetEngine(llmName)
	if err != nil {
		return nil, badRequest{err.Error()}
	}

	raw, err := engine.ExtractPaper(ctx, paper.BuildPrompt(d), images)
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", err, ctx.Err())
		}
		return nil, &ocr.GatewayError{Provider: engine.Name(), Err: err}
	}

	doc, err := paper.Normalize(raw, d)
	if err != nil {
		return nil, err
	}

	h.archive(ctx, engine, images, doc)
	return doc, nil
}

// requestTimeout: X-Request-Timeout (seconds) may override the configured gateway timeout.
func (h *Handle) requestTimeout(r *http.Request) time.Duration {
	deadline := h.opts.GatewayTimeout
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	if deadline > MaxRequestTimeout {
		deadline = MaxRequestTimeout
	}
	return deadline
}

func readDefaults(r *http.Request) (paper.Defaults, error) {
	d := paper.Defaults{
		SchoolName: strings.TrimSpace(r.FormValue("schoolName")),
		ExamTitle:  strings.TrimSpace(r.FormValue("examTitle")),
		ClassName:  strings.TrimSpace(r.FormValue("className")),
		Subject:    strings.TrimSpace(r.FormValue("subject")),
		Duration:   strings.TrimSpace(r.FormValue("duration")),
	}
	if mm := strings.TrimSpace(r.FormValue("maxMarks")); mm != "" {
		n, err := strconv.Atoi(mm)
		if err != nil {
			return d, badRequest{fmt.Sprintf("maxMarks must be an integer, got %q", mm)}
		}
		d.MaxMarks = n
	}
	return d, nil
}

// readImages loads every non-empty upload; empty parts are skipped.
func readImages(files []*multipart.FileHeader) ([]ocr.Image, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files provided", paper.ErrNoContent)
	}
	images := make([]ocr.Image, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, badRequest{"open upload " + fh.Filename + ": " + err.Error()}
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, badRequest{"read upload " + fh.Filename + ": " + err.Error()}
		}
		if len(data) == 0 {
			continue
		}
		images = append(images, ocr.Image{
			Filename: fh.Filename,
			MIME:     util.PickMIME(fh.Header.Get("Content-Type"), data),
			Data:     data,
		})
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: could not read any image content from uploaded files", paper.ErrNoContent)
	}
	return images, nil
}

// archive stores the pages and the normalized paper when those stores are configured.
// Failures are logged; the response is already decided.
func (h *Handle) archive(reqCtx context.Context, engine ocr.Engine, images []ocr.Image, doc map[string]any) {
	if h.opts.Archive == nil && h.opts.Scans == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(reqCtx), archiveTimeout)
	defer cancel()

	id := uuid.NewString()
	log := h.log.With("paper_id", id)

	if h.opts.Scans != nil {
		for i, img := range images {
			key := fmt.Sprintf("scans/%s/%02d%s", id, i+1, util.ExtForMIME(img.MIME))
			if _, err := h.opts.Scans.PutScan(ctx, key, img.Data, img.MIME); err != nil {
				log.WarnContext(ctx, "scan upload failed", "key", key, "err", err)
			}
		}
	}

	if h.opts.Archive == nil {
		return
	}
	body, err := json.Marshal(doc)
	if err != nil {
		log.WarnContext(ctx, "archive encode failed", "err", err)
		return
	}
	p, err := paper.Decode(doc)
	if err != nil {
		// summary columns stay empty; the document itself is still worth keeping
		log.WarnContext(ctx, "archive decode failed", "err", err)
	}
	hashes := make([][]byte, len(images))
	for i, img := range images {
		hashes[i] = img.Data
	}
	rec := store.PaperRecord{
		ID:         id,
		Engine:     engine.Name(),
		Model:      engine.GetModel(),
		ImageHash:  util.SHA256Hex(hashes...),
		ImageCount: len(images),
		Paper:      body,
	}
	if err := h.opts.Archive.Insert(ctx, rec, p); err != nil {
		log.WarnContext(ctx, "archive insert failed", "err", err)
		return
	}
	log.InfoContext(ctx, "paper archived", "sections", len(p.Sections), "questions", p.QuestionCount())
}
