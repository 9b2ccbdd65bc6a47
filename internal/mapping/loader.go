package mapping

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const currentVersion = "1"

// LoadFile reads and parses the mapping file at path.
func LoadFile(path string) (*MappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}

	mf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return mf, nil
}

// Parse decodes a mapping document. Unknown keys are rejected so that a
// misspelled option does not silently fall back to convention.
func Parse(data []byte) (*MappingFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	mf := &MappingFile{}
	if err := dec.Decode(mf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}

	if mf.Version == "" {
		mf.Version = currentVersion
	}

	return mf, nil
}

// WriteFile stores mf at path as YAML indented by two spaces.
func WriteFile(mf *MappingFile, path string) error {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(mf); err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}
