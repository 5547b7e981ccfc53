package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/UndeadFairy/MagneticModel/internal/domain"
)

// ErrModelNotFound is returned when no store holds a model of the requested name.
var ErrModelNotFound = errors.New("model not found")

// ErrInvalidName is returned for model names that are not plain file names.
var ErrInvalidName = errors.New("invalid model name")

// ModelLoader is the interface for loading MIO model documents
type ModelLoader interface {
	// LoadModel loads a model by name (file name without extension)
	LoadModel(name string) (*domain.ModelDocument, error)

	// ListModels returns the names of the available models
	ListModels() ([]string, error)
}

// ValidateName rejects model names that could escape the data directory.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w %q", ErrInvalidName, name)
	}
	return nil
}

// Chain queries several loaders in order.
type Chain []ModelLoader

// LoadModel returns the model from the first loader that has it.
func (c Chain) LoadModel(name string) (*domain.ModelDocument, error) {
	for _, l := range c {
		doc, err := l.LoadModel(name)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, ErrModelNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
}

// ListModels returns the sorted union of all loaders' models.
func (c Chain) ListModels() ([]string, error) {
	seen := make(map[string]bool)
	for _, l := range c {
		names, err := l.ListModels()
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			seen[n] = true
		}
	}

	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}
