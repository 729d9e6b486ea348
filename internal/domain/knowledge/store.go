package knowledge

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// SourcePaths names the three knowledge-base files.
type SourcePaths struct {
	SOPs       string
	Policies   string
	Guidelines string
}

// Store holds the three immutable knowledge collections. It is built once at
// startup and shared read-only across all requests; nothing mutates it after
// Load returns.
type Store struct {
	SOPs       Collection
	Policies   Collection
	Guidelines Collection
}

// listField returns the top-level list field and the id field for a source kind.
func listField(kind SourceKind) (string, string) {
	switch kind {
	case SourcePolicy:
		return "policies", "policy_id"
	case SourceGuideline:
		return "guidelines", "guideline_id"
	default:
		return "sops", "sop_id"
	}
}

// Load reads the three knowledge bases. A missing or malformed file yields an
// empty collection for that source and a logged diagnostic; loading never
// fails the process, so the engine still operates on the remaining sources.
func Load(paths SourcePaths, logger zerolog.Logger) *Store {
	return &Store{
		SOPs:       loadCollection(SourceSOP, paths.SOPs, logger),
		Policies:   loadCollection(SourcePolicy, paths.Policies, logger),
		Guidelines: loadCollection(SourceGuideline, paths.Guidelines, logger),
	}
}

// SourceStats reports the size and declared version of one loaded collection.
type SourceStats struct {
	Count   int    `json:"count"`
	Version string `json:"version"`
}

// StoreStats summarizes all three collections for the stats endpoint and the
// kb validate command.
type StoreStats struct {
	SOPs       SourceStats `json:"sops"`
	Policies   SourceStats `json:"policies"`
	Guidelines SourceStats `json:"guidelines"`
}

// Stats returns per-source item counts and knowledge-base versions.
func (s *Store) Stats() StoreStats {
	return StoreStats{
		SOPs:       SourceStats{Count: len(s.SOPs.Items), Version: s.SOPs.Version},
		Policies:   SourceStats{Count: len(s.Policies.Items), Version: s.Policies.Version},
		Guidelines: SourceStats{Count: len(s.Guidelines.Items), Version: s.Guidelines.Version},
	}
}

// Collection returns the collection for the given source kind.
func (s *Store) Collection(kind SourceKind) Collection {
	switch kind {
	case SourcePolicy:
		return s.Policies
	case SourceGuideline:
		return s.Guidelines
	default:
		return s.SOPs
	}
}

func loadCollection(kind SourceKind, path string, logger zerolog.Logger) Collection {
	col := Collection{Kind: kind, Version: "unknown"}
	if path == "" {
		return col
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("source", string(kind)).Str("path", path).
			Msg("knowledge base unavailable, continuing with empty collection")
		return col
	}

	field, idField := listField(kind)
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn().Err(err).Str("source", string(kind)).Str("path", path).
			Msg("malformed knowledge base, continuing with empty collection")
		return col
	}

	if raw, ok := doc["metadata"]; ok {
		var meta struct {
			Version string `json:"version"`
		}
		if err := json.Unmarshal(raw, &meta); err == nil && meta.Version != "" {
			col.Version = meta.Version
		}
	}

	var rawItems []json.RawMessage
	if raw, ok := doc[field]; ok {
		if err := json.Unmarshal(raw, &rawItems); err != nil {
			logger.Warn().Err(err).Str("source", string(kind)).Str("path", path).
				Msg("malformed knowledge base list, continuing with empty collection")
			return col
		}
	}

	for i, raw := range rawItems {
		item, err := decodeItem(raw, idField)
		if err != nil {
			logger.Warn().Err(err).Str("source", string(kind)).Int("index", i).
				Msg("skipping malformed knowledge item")
			continue
		}
		col.Items = append(col.Items, item)
	}

	logger.Info().Str("source", string(kind)).Int("items", len(col.Items)).
		Msg("knowledge base loaded")
	return col
}

func decodeItem(raw json.RawMessage, idField string) (Item, error) {
	var head struct {
		ID       string      `json:"id"`
		Title    string      `json:"title"`
		Keywords []string    `json:"keywords"`
		Triggers *TriggerSet `json:"triggers"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return Item{}, fmt.Errorf("decode item: %w", err)
	}

	// The canonical id field is kind-specific (sop_id, policy_id,
	// guideline_id); a plain "id" is accepted as a fallback.
	var withID map[string]json.RawMessage
	if err := json.Unmarshal(raw, &withID); err != nil {
		return Item{}, fmt.Errorf("decode item: %w", err)
	}
	id := head.ID
	if v, ok := withID[idField]; ok {
		_ = json.Unmarshal(v, &id)
	}
	if id == "" {
		return Item{}, fmt.Errorf("item has no %s", idField)
	}
	if head.Title == "" {
		return Item{}, fmt.Errorf("item %s has no title", id)
	}

	var content map[string]any
	if err := json.Unmarshal(raw, &content); err != nil {
		return Item{}, fmt.Errorf("decode item content: %w", err)
	}

	if head.Triggers != nil {
		normalizeTriggerOperators(head.Triggers)
	}

	return Item{
		ID:       id,
		Title:    head.Title,
		Keywords: head.Keywords,
		Triggers: head.Triggers,
		Content:  content,
	}, nil
}

// normalizeTriggerOperators applies the default "gt" operator to lab and
// vital triggers that omit one.
func normalizeTriggerOperators(ts *TriggerSet) {
	for name, tr := range ts.Labs {
		if tr.Operator == "" {
			tr.Operator = OperatorGT
			ts.Labs[name] = tr
		}
	}
	for name, tr := range ts.Vitals {
		if tr.Operator == "" {
			tr.Operator = OperatorGT
			ts.Vitals[name] = tr
		}
	}
}
