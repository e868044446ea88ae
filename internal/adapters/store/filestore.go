package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/robostats/scoutrank/internal/domain/model"
	"github.com/robostats/scoutrank/pkg/logger"
	"github.com/robostats/scoutrank/pkg/metrics"
)

// topLevelKeys are the document keys backfilled on load when absent.
var topLevelKeys = []string{"teams", "events", "epaModel"}

const defaultFileMode = 0o644

// FileStore implements Store against a single JSON file. Writes go to a
// temporary file in the same directory followed by a rename, so a crash
// mid-write never leaves a torn document behind.
type FileStore struct {
	path string
	mode os.FileMode
	log  logger.Logger
}

// NewFileStore creates a file-backed store with configuration options.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{
		path: path,
		mode: defaultFileMode,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = logger.Named("store")
	}

	return s
}

// Load reads the whole document. A missing file yields a fresh blank
// document which is persisted immediately. Missing top-level keys are added
// with empty defaults and the migrated document is re-saved.
func (s *FileStore) Load(ctx context.Context) (*Document, bool, error) {
	start := time.Now()
	defer func() {
		metrics.ObserveStoreLoadDuration(float64(time.Since(start).Milliseconds()))
	}()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		doc := Blank()
		if err := s.Save(ctx, doc); err != nil {
			return nil, false, err
		}
		s.log.Info(ctx, "created blank cache document", logger.String("path", s.path))
		return doc, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", ErrDecode, s.path, err)
	}

	migrated := false
	for _, key := range topLevelKeys {
		if _, ok := raw[key]; !ok {
			migrated = true
			s.log.Info(ctx, "backfilling missing document key", logger.String("key", key))
		}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", ErrDecode, s.path, err)
	}
	if doc.Teams == nil {
		doc.Teams = []model.TeamRecord{}
	}
	if doc.Events == nil {
		doc.Events = []model.EventRecord{}
	}
	if doc.EPAModel == nil {
		doc.EPAModel = []json.RawMessage{}
	}

	if migrated {
		if err := s.Save(ctx, &doc); err != nil {
			return nil, false, err
		}
	}

	return &doc, migrated, nil
}

// Save rewrites the whole document via temp-file-then-rename.
func (s *FileStore) Save(ctx context.Context, doc *Document) error {
	start := time.Now()
	defer func() {
		metrics.ObserveStoreSaveDuration(float64(time.Since(start).Milliseconds()))
	}()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, s.mode); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}

	s.log.Debug(ctx, "saved cache document",
		logger.String("path", s.path),
		logger.Int("teams", len(doc.Teams)),
		logger.Int("events", len(doc.Events)),
	)
	return nil
}
