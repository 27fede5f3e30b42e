package telegram

import (
	"sync"
	"time"

	"question-builder/api/internal/paper"
)

const (
	debounce = 1200 * time.Millisecond
	maxPages = 20
)

type photoBatch struct {
	ChatID       int64
	Key          string // "grp:<mediaGroupID>" | "chat:<chatID>"
	MediaGroupID string

	mu     sync.Mutex
	pages  []page
	timer  *time.Timer
	lastAt time.Time
	done   bool // taken for extraction; later pages start a new batch
}

type page struct {
	name string
	mime string
	data []byte
}

// chatSettings are the paper defaults and engine a chat has chosen with commands.
type chatSettings struct {
	mu       sync.Mutex
	defaults paper.Defaults
	engine   string
}

func (r *Router) chat(chatID int64) *chatSettings {
	v, _ := r.settings.LoadOrStore(chatID, &chatSettings{})
	return v.(*chatSettings)
}

func (s *chatSettings) snapshot() (paper.Defaults, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaults, s.engine
}

func (s *chatSettings) update(fn func(d *paper.Defaults, engine *string)) {
	s.mu.Lock()
	fn(&s.defaults, &s.engine)
	s.mu.Unlock()
}
