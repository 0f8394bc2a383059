package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"alumnipulse/internal/dataprocessing"
	"alumnipulse/internal/filter"
	"alumnipulse/internal/infrastructure"
	"alumnipulse/internal/report"
	"alumnipulse/pkg/contracts/domain"
)

// Service-level sentinel errors mapped to HTTP problems by the transport layer.
var (
	ErrUploadNotFound    = errors.New("survey upload not found")
	ErrUploadTooLarge    = errors.New("survey upload payload too large")
	ErrUnsupportedFormat = errors.New("unsupported survey file format")
)

// Upload is one parsed survey export held in memory for the session.
type Upload struct {
	ID         string
	Filename   string
	Hash       string
	Size       int64
	HeaderRow  int
	Fallback   bool
	Frame      *dataprocessing.Frame
	Roles      dataprocessing.RoleColumns
	Engine     *filter.Engine
	UploadedAt time.Time
}

// UploadInfo is the transport-facing summary of a stored upload.
type UploadInfo struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Rows      int       `json:"rows"`
	HeaderRow int       `json:"header_row"`
	Fallback  bool      `json:"header_fallback"`
	Cached    bool      `json:"cached"`
	CreatedAt time.Time `json:"created_at"`
}

// SurveyService parses uploaded survey exports and renders filtered reports.
// Parsed uploads are memoized by content hash so re-uploading the same file
// skips the parse entirely.
type SurveyService struct {
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
	set     domain.QuestionSet
	driver  *report.Driver

	maxUploadBytes int64
	maxEntries     int

	mu      sync.RWMutex
	uploads map[string]*Upload
	byHash  map[string]string
}

// NewSurveyService creates a survey service with the given question set and limits.
func NewSurveyService(set domain.QuestionSet, maxUploadBytes int64, maxEntries int, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *SurveyService {
	if logger == nil {
		logger = slog.Default()
	}
	if maxEntries <= 0 {
		maxEntries = 16
	}

	return &SurveyService{
		logger:         logger.With(slog.String("component", "survey_service")),
		metrics:        metrics,
		set:            set,
		driver:         report.NewDriver(logger),
		maxUploadBytes: maxUploadBytes,
		maxEntries:     maxEntries,
		uploads:        make(map[string]*Upload),
		byHash:         make(map[string]string),
	}
}

// QuestionSet returns the configured question set.
func (s *SurveyService) QuestionSet() domain.QuestionSet {
	return s.set
}

// Ingest reads, parses and stores a survey export. The returned info carries
// the upload ID used by all subsequent report calls.
func (s *SurveyService) Ingest(ctx context.Context, filename string, r io.Reader) (*UploadInfo, error) {
	if !supportedExtension(filename) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}

	data, err := s.readBounded(r)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	// Same bytes, same parse: return the existing upload
	s.mu.RLock()
	if id, ok := s.byHash[hash]; ok {
		if up, ok := s.uploads[id]; ok {
			s.mu.RUnlock()
			infrastructure.RecordUpload(ctx, s.metrics, up.Size, formatOf(filename), true, 0, up.HeaderRow)
			s.logger.InfoContext(ctx, "upload served from cache",
				slog.String("upload_id", up.ID),
				slog.String("hash", hash[:12]))
			return s.info(up, true), nil
		}
	}
	s.mu.RUnlock()

	start := time.Now()
	up, err := s.parse(ctx, filename, data, hash)
	if err != nil {
		return nil, err
	}
	parseTime := time.Since(start)

	s.mu.Lock()
	s.evictLocked()
	s.uploads[up.ID] = up
	s.byHash[hash] = up.ID
	s.mu.Unlock()

	infrastructure.RecordUpload(ctx, s.metrics, up.Size, formatOf(filename), false, parseTime, up.HeaderRow)

	s.logger.InfoContext(ctx, "survey upload parsed",
		slog.String("upload_id", up.ID),
		slog.String("filename", filename),
		slog.Int("rows", up.Frame.NumRows()),
		slog.Int("header_row", up.HeaderRow),
		slog.Bool("header_fallback", up.Fallback),
		slog.Duration("parse_time", parseTime))

	return s.info(up, false), nil
}

// Get returns a stored upload by ID.
func (s *SurveyService) Get(uploadID string) (*Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	up, ok := s.uploads[uploadID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUploadNotFound, uploadID)
	}
	return up, nil
}

// Candidates returns the selectable program and year values for an upload.
func (s *SurveyService) Candidates(ctx context.Context, uploadID string) (domain.FilterCandidates, error) {
	up, err := s.Get(uploadID)
	if err != nil {
		return domain.FilterCandidates{}, err
	}
	return up.Engine.Candidates(), nil
}

// Render builds the full report for an upload under the given filter selection.
func (s *SurveyService) Render(ctx context.Context, uploadID string, sel domain.FilterSelection) (*domain.Report, error) {
	up, err := s.Get(uploadID)
	if err != nil {
		return nil, err
	}

	if sel.Program == "" {
		sel.Program = domain.AllPrograms
	}
	if sel.Year == "" {
		sel.Year = domain.AllYears
	}

	start := time.Now()
	filtered := up.Engine.Apply(sel)

	builder := report.NewBuilder(sel, filtered.NumRows())
	if err := s.driver.Run(ctx, filtered, s.set, builder); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	rep := builder.Report()
	infrastructure.RecordReport(ctx, s.metrics, time.Since(start), rep.Responses, countNotices(rep))

	s.logger.InfoContext(ctx, "report rendered",
		slog.String("upload_id", uploadID),
		slog.String("program", sel.Program),
		slog.String("year", sel.Year),
		slog.Int("responses", rep.Responses))

	return &rep, nil
}

// parse runs the full header-detection pipeline over raw file bytes.
func (s *SurveyService) parse(ctx context.Context, filename string, data []byte, hash string) (*Upload, error) {
	raw, err := dataprocessing.ReadRawTable(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("read survey file: %w", err)
	}

	frame, loc := dataprocessing.LocateHeader(raw)

	roles, err := dataprocessing.ClassifyColumns(frame)
	if err != nil {
		return nil, err
	}

	engine, err := filter.NewEngine(frame, roles)
	if err != nil {
		return nil, err
	}

	return &Upload{
		ID:         uuid.New().String(),
		Filename:   filepath.Base(filename),
		Hash:       hash,
		Size:       int64(len(data)),
		HeaderRow:  loc.RowIndex,
		Fallback:   loc.Fallback,
		Frame:      frame,
		Roles:      roles,
		Engine:     engine,
		UploadedAt: time.Now(),
	}, nil
}

func (s *SurveyService) readBounded(r io.Reader) ([]byte, error) {
	limit := s.maxUploadBytes
	if limit <= 0 {
		limit = 20 << 20
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrUploadTooLarge, limit)
	}
	return data, nil
}

func (s *SurveyService) info(up *Upload, cached bool) *UploadInfo {
	return &UploadInfo{
		ID:        up.ID,
		Filename:  up.Filename,
		Rows:      up.Frame.NumRows(),
		HeaderRow: up.HeaderRow,
		Fallback:  up.Fallback,
		Cached:    cached,
		CreatedAt: up.UploadedAt,
	}
}

// evictLocked removes the oldest uploads until there is room for one more.
// Caller holds s.mu.
func (s *SurveyService) evictLocked() {
	for len(s.uploads) >= s.maxEntries {
		oldest := ""
		var oldestAt time.Time
		for id, up := range s.uploads {
			if oldest == "" || up.UploadedAt.Before(oldestAt) {
				oldest = id
				oldestAt = up.UploadedAt
			}
		}
		if oldest == "" {
			return
		}
		delete(s.byHash, s.uploads[oldest].Hash)
		delete(s.uploads, oldest)
	}
}

// List returns summaries of all stored uploads, newest first.
func (s *SurveyService) List() []UploadInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]UploadInfo, 0, len(s.uploads))
	for _, up := range s.uploads {
		infos = append(infos, *s.info(up, false))
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos
}

func supportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

func formatOf(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

func countNotices(rep domain.Report) int {
	n := 0
	for _, sec := range rep.Sections {
		for _, q := range sec.Questions {
			if q.Notice != "" {
				n++
			}
		}
	}
	return n
}
