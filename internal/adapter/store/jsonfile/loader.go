// Package jsonfile provides JSON-based model document loading.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/UndeadFairy/MagneticModel/internal/adapter/store"
	"github.com/UndeadFairy/MagneticModel/internal/domain"
)

const suffix = ".json"

// ModelStore provides access to model documents stored as <name>.json files.
type ModelStore struct {
	dataDir string
}

// NewModelStore creates a new JSON-based model store.
func NewModelStore(dataDir string) *ModelStore {
	return &ModelStore{
		dataDir: dataDir,
	}
}

// LoadModel loads the model document stored in <dataDir>/<name>.json.
func (s *ModelStore) LoadModel(name string) (*domain.ModelDocument, error) {
	if err := store.ValidateName(name); err != nil {
		return nil, err
	}

	filename := filepath.Join(s.dataDir, name+suffix)

	//nolint:gosec // G304: File path constructed from dataDir (config) and a validated name.
	file, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", store.ErrModelNotFound, name)
		}
		return nil, fmt.Errorf("failed to open model file for %s: %w", name, err)
	}
	defer func() { _ = file.Close() }()

	doc, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", name, err)
	}
	if doc.Name == "" {
		doc.Name = name
	}

	return doc, nil
}

// Decode reads a single model document, rejecting unknown fields.
func Decode(r io.Reader) (*domain.ModelDocument, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc domain.ModelDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListModels returns available model names.
func (s *ModelStore) ListModels() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	models := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, suffix) {
			models = append(models, strings.TrimSuffix(name, suffix))
		}
	}

	return models, nil
}
