package services

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Conclusions is the free-text closing section an operator writes for a
// rendered report. It lives only for the server session, like the rest of
// the upload state.
type Conclusions struct {
	UploadID  string    `json:"upload_id"`
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConclusionsStore keeps per-upload conclusions text in memory.
type ConclusionsStore struct {
	logger *slog.Logger

	mu   sync.RWMutex
	byID map[string]*Conclusions
}

// NewConclusionsStore creates an empty conclusions store.
func NewConclusionsStore(logger *slog.Logger) *ConclusionsStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConclusionsStore{
		logger: logger.With(slog.String("component", "conclusions_store")),
		byID:   make(map[string]*Conclusions),
	}
}

// Put stores the conclusions text for an upload, replacing any previous text.
// An empty (or blank) text removes the entry.
func (s *ConclusionsStore) Put(uploadID, text string) *Conclusions {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		delete(s.byID, uploadID)
		return &Conclusions{UploadID: uploadID, UpdatedAt: time.Now()}
	}

	c := &Conclusions{
		UploadID:  uploadID,
		Text:      text,
		UpdatedAt: time.Now(),
	}
	s.byID[uploadID] = c
	return c
}

// Get returns the conclusions for an upload. A missing entry yields an empty
// text, not an error: no conclusions is a valid state.
func (s *ConclusionsStore) Get(uploadID string) Conclusions {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.byID[uploadID]; ok {
		return *c
	}
	return Conclusions{UploadID: uploadID}
}

// Drop removes the conclusions for an upload.
func (s *ConclusionsStore) Drop(uploadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, uploadID)
}
