package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

// MappingVersion is the shot_name_mapping.json format version
const MappingVersion = "1.0"

// ShotNameMapping records the legacy-name → surrogate-id assignment.
// It is written twice, byte-identically: at the project root and inside
// data/. Host applications read the root copy; the data/ copy survives
// root-level cleanup and lets the validator detect tampering.
type ShotNameMapping struct {
	Version string           `json:"version"`
	Created string           `json:"created"`
	Mapping map[string]int64 `json:"mapping"`
}

// NewShotNameMapping wraps a name → id map in the versioned envelope
func NewShotNameMapping(mapping map[string]int64) *ShotNameMapping {
	return &ShotNameMapping{
		Version: MappingVersion,
		Created: UTCTimestamp(),
		Mapping: mapping,
	}
}

// WriteMappingPair writes both copies of the mapping. The same encoded
// bytes go to both paths so the pair is byte-identical by construction.
// Each copy is written atomically; the data/ copy goes first so an
// interrupted write leaves the root copy (the one host apps read) absent
// rather than ahead of its twin.
func (l *Layout) WriteMappingPair(m *ShotNameMapping) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode shot name mapping: %w", err)
	}
	data = append(data, '\n')

	if err := util.WriteFileAtomic(l.DataMappingPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write data mapping copy: %w", err)
	}
	if err := util.WriteFileAtomic(l.RootMappingPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write root mapping copy: %w", err)
	}
	return nil
}

// ReadMapping loads one mapping file
func ReadMapping(path string) (*ShotNameMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: shot name mapping %s: %v", util.ErrNotFound, path, err)
	}
	var m ShotNameMapping
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("malformed shot name mapping %s: %w", path, err)
	}
	return &m, nil
}

// ReadMappingPair loads the root copy and verifies the data/ copy is
// byte-identical. A divergent or missing twin is reported as an error
// alongside the successfully-read root mapping when possible.
func (l *Layout) ReadMappingPair() (*ShotNameMapping, error) {
	rootData, rootErr := os.ReadFile(l.RootMappingPath())
	dataData, dataErr := os.ReadFile(l.DataMappingPath())

	switch {
	case rootErr != nil && dataErr != nil:
		return nil, fmt.Errorf("%w: neither mapping copy readable: %v", util.ErrNotFound, rootErr)
	case rootErr != nil:
		return nil, fmt.Errorf("root mapping copy missing (data copy present): %w", rootErr)
	case dataErr != nil:
		return nil, fmt.Errorf("data mapping copy missing (root copy present): %w", dataErr)
	}

	var m ShotNameMapping
	if err := json.Unmarshal(rootData, &m); err != nil {
		return nil, fmt.Errorf("malformed root mapping: %w", err)
	}

	if !bytes.Equal(rootData, dataData) {
		return &m, fmt.Errorf("shot name mapping copies diverge: %s vs %s",
			l.RootMappingPath(), l.DataMappingPath())
	}
	return &m, nil
}
