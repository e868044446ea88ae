// Package store defines the durable cache document adapter and errors.
package store

import (
	"context"
	"encoding/json"

	"github.com/robostats/scoutrank/internal/domain/model"
)

// Document is the whole persisted cache: one structured file with top-level
// collections for teams and events plus a reserved epaModel section for
// future persisted rating configuration.
type Document struct {
	Teams    []model.TeamRecord  `json:"teams"`
	Events   []model.EventRecord `json:"events"`
	EPAModel []json.RawMessage   `json:"epaModel"`
}

// Blank returns an empty document with all top-level keys present.
func Blank() *Document {
	return &Document{
		Teams:    []model.TeamRecord{},
		Events:   []model.EventRecord{},
		EPAModel: []json.RawMessage{},
	}
}

// Store provides whole-document read/write access.
type Store interface {
	// Load reads the document, creating a blank one on first run and
	// backfilling missing top-level keys. The bool reports whether the
	// document was migrated (and re-saved) during the load.
	Load(ctx context.Context) (*Document, bool, error)

	// Save rewrites the whole document durably.
	Save(ctx context.Context, doc *Document) error
}
