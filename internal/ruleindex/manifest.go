package ruleindex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// ManifestVersion is the current schema version
	ManifestVersion = 1

	// ManifestFilename is the manifest file name inside the index directory
	ManifestFilename = "manifest.json"
)

// Manifest describes how the rule index was built.
type Manifest struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Sources   Sources   `json:"sources"`
	Output    Output    `json:"output"`
	Summary   Summary   `json:"summary"`
}

// Sources are the input directories of the run that built the index.
type Sources struct {
	JavaDir string `json:"java_dir"`
	JSONDir string `json:"json_dir"`
}

// Output is the dataset file written by the same run.
type Output struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

// Summary holds the run counters.
type Summary struct {
	Rows                    int `json:"rows"`
	JavaFiles               int `json:"java_files"`
	JavaFilesWithoutMarker  int `json:"java_files_without_marker"`
	JSONFiles               int `json:"json_files"`
	UnmatchedJSONFiles      int `json:"unmatched_json_files"`
	VisitorsWithoutMetadata int `json:"visitors_without_metadata"`
	Indexed                 int `json:"indexed"`
}

// NewManifest creates a manifest stamped with the current time.
func NewManifest(sources Sources, output Output, summary Summary) *Manifest {
	return &Manifest{
		Version:   ManifestVersion,
		CreatedAt: time.Now().UTC(),
		Sources:   sources,
		Output:    output,
		Summary:   summary,
	}
}

// LoadManifest reads a manifest from disk.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if manifest.Version != ManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %d", manifest.Version)
	}
	return &manifest, nil
}

// Save writes the manifest to disk atomically.
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename manifest file: %w", err)
	}
	return nil
}
