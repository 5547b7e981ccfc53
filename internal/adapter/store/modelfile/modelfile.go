// Package modelfile reads and writes single MIO model documents, choosing the
// JSON or NetCDF encoding by file extension.
package modelfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/UndeadFairy/MagneticModel/internal/adapter/store/jsonfile"
	"github.com/UndeadFairy/MagneticModel/internal/adapter/store/ncmodel"
	"github.com/UndeadFairy/MagneticModel/internal/domain"
)

// Read loads a model document from a .json or .nc file. A document without a
// name is named after the file.
func Read(path string) (*domain.ModelDocument, error) {
	var doc *domain.ModelDocument
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc":
		doc, err = ncmodel.ReadModel(path)
	case ".json":
		doc, err = readJSON(path)
	default:
		return nil, fmt.Errorf("unsupported model file extension: %s", path)
	}
	if err != nil {
		return nil, err
	}

	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// Write stores a model document as a .json or .nc file.
func Write(path string, doc *domain.ModelDocument) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc":
		return ncmodel.WriteModel(path, doc)
	case ".json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode model: %w", err)
		}
		return os.WriteFile(path, append(data, '\n'), 0644)
	default:
		return fmt.Errorf("unsupported model file extension: %s", path)
	}
}

func readJSON(path string) (*domain.ModelDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()

	return jsonfile.Decode(f)
}
