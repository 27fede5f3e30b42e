package handle

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"question-builder/api/internal/docx"
	"question-builder/api/internal/paper"
)

// GenerateDocument handles POST /question-paper/generate: ExamPaper JSON in, .docx out.
func (h *Handle) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if !errors.As(err, &mbe) {
			err = badRequest{"read body: " + err.Error()}
		}
		h.writeError(w, r, err)
		return
	}
	if len(body) == 0 {
		h.writeError(w, r, badRequest{"request body is empty"})
		return
	}

	p, err := paper.ParseExamPaperJSON(body)
	if err != nil {
		h.writeError(w, r, badRequest{err.Error()})
		return
	}

	out, err := docx.Render(p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	name := docx.FileName(p.Subject, h.opts.Now())
	w.Header().Set("Content-Type", docx.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
