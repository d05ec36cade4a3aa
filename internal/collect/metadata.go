package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sha1n/text-to-visitor/internal/domain"
)

// Required metadata fields.
const (
	FieldType  = "type"
	FieldTitle = "title"
)

var (
	// ErrMalformedMetadata indicates a metadata file is not a JSON object
	ErrMalformedMetadata = errors.New("malformed rule metadata")

	// ErrMissingField indicates a required metadata field is absent
	ErrMissingField = errors.New("missing required field")
)

// JoinStats counts what the metadata walk saw.
type JoinStats struct {
	FilesScanned            int
	Unmatched               int
	VisitorsWithoutMetadata int
}

// JoinResult holds the joined rows in metadata traversal order.
type JoinResult struct {
	Rows  []domain.DatasetRow
	Stats JoinStats
}

// MetadataJoiner reads rule metadata files and joins them with visitors.
type MetadataJoiner struct {
	filter *FileFilter
}

// NewMetadataJoiner creates a joiner for .json files.
func NewMetadataJoiner(excludePatterns []string) (*MetadataJoiner, error) {
	filter, err := NewFileFilter(JSONExtension, excludePatterns)
	if err != nil {
		return nil, err
	}
	return &MetadataJoiner{filter: filter}, nil
}

// Join walks root and emits a row for every metadata file whose stem names a
// collected visitor. Other files are skipped without being parsed.
func (j *MetadataJoiner) Join(ctx context.Context, root string, visitors *Visitors) (*JoinResult, error) {
	result := &JoinResult{}
	matched := make(map[string]struct{})

	err := walkFiles(ctx, root, j.filter, func(path string) error {
		result.Stats.FilesScanned++

		id := Stem(path)
		visitor, ok := visitors.Get(id)
		if !ok {
			result.Stats.Unmatched++
			return nil
		}

		meta, err := ReadRuleMetadata(path, id)
		if err != nil {
			return err
		}

		result.Rows = append(result.Rows, domain.NewDatasetRow(meta, visitor))
		matched[id] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Stats.VisitorsWithoutMetadata = visitors.Len() - len(matched)
	return result, nil
}

// ReadRuleMetadata reads a metadata file and extracts its type and title.
func ReadRuleMetadata(path, id string) (domain.RuleMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RuleMetadata{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return domain.RuleMetadata{}, fmt.Errorf("%w: %s: %v", ErrMalformedMetadata, path, err)
	}
	if fields == nil {
		return domain.RuleMetadata{}, fmt.Errorf("%w: %s: document is null", ErrMalformedMetadata, path)
	}

	ruleType, err := fieldText(fields, FieldType)
	if err != nil {
		return domain.RuleMetadata{}, fmt.Errorf("%s: %w", path, err)
	}
	title, err := fieldText(fields, FieldTitle)
	if err != nil {
		return domain.RuleMetadata{}, fmt.Errorf("%s: %w", path, err)
	}

	return domain.RuleMetadata{
		ID:    id,
		Type:  ruleType,
		Title: title,
		Path:  path,
	}, nil
}

// fieldText returns a field as text. Strings are unquoted, null is empty and
// any other value keeps its compact JSON form.
func fieldText(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingField, name)
	}

	raw = bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(raw, []byte("null")):
		return "", nil
	case len(raw) > 0 && raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%w: field %q: %v", ErrMalformedMetadata, name, err)
		}
		return s, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", fmt.Errorf("%w: field %q: %v", ErrMalformedMetadata, name, err)
	}
	return buf.String(), nil
}
