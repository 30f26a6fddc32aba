package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrEmptyDocument is returned when the document has no raw.schema section.
var ErrEmptyDocument = errors.New("schema document has no raw.schema section")

// Parse decodes an upstream schema document and builds every lookup table.
// The returned Snapshot is complete and immutable; on error nothing is
// returned, so a bad document can never be installed.
func Parse(data []byte, source string, fetchedAt time.Time, logger *slog.Logger) (*Snapshot, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding schema document: %w", err)
	}
	if len(doc.Raw.Schema) == 0 {
		return nil, ErrEmptyDocument
	}
	if len(doc.Raw.ItemsGame) == 0 {
		logger.Warn("schema document has no raw.items_game section", "component", "schema", "source", source)
	}

	d, err := buildDerived(doc.Raw.Schema, doc.Raw.ItemsGame)
	if err != nil {
		return nil, fmt.Errorf("building lookup tables: %w", err)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return nil, fmt.Errorf("compacting schema document: %w", err)
	}

	version := doc.Version
	if version == "" && doc.Time > 0 {
		version = time.UnixMilli(doc.Time).UTC().Format(time.RFC3339)
	}

	s := &Snapshot{
		Version:   version,
		Source:    source,
		FetchedAt: fetchedAt,
		document:  compact.Bytes(),
		raw: map[Section]map[string]json.RawMessage{
			SectionSchema:    doc.Raw.Schema,
			SectionItemsGame: doc.Raw.ItemsGame,
		},
		derived: d,
	}

	logger.Debug("schema parsed",
		"component", "schema",
		"source", source,
		"version", version,
		"items", len(d.itemsByDefindex),
		"effects", len(d.effects),
		"paintkits", len(d.paintkits),
		"bytes", compact.Len(),
	)
	return s, nil
}
