// Package ncmodel provides access to MIO model documents stored as NetCDF files.
//
// A model file holds two variables and a set of global attributes:
//
//	indices(entry, nm)                      int     spherical harmonic (n, m) pairs
//	coefficients(entry, season, day, pair)  double  (cos, sin) amplitudes
//	:ps_extent  int[4]  (pmin, pmax, smin, smax)
//	:lat_ngp, :lon_ngp, :mio_radius, :wolf_ratio  double
//	:is_internal  int   0 or 1
//	:name  text  optional model name
//	:meta  text  optional JSON object of string metadata
package ncmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/UndeadFairy/MagneticModel/internal/adapter/store"
	"github.com/UndeadFairy/MagneticModel/internal/domain"
)

const (
	suffix = ".nc"

	indicesVarName      = "indices"
	coefficientsVarName = "coefficients"
)

// Store provides cached access to NetCDF model files under a data directory.
type Store struct {
	dataDir string
	cache   map[string]*domain.ModelDocument // Cache loaded models.
	mu      sync.RWMutex                     // Protect cache.
}

// NewStore creates a new NetCDF model store.
func NewStore(dataDir string) *Store {
	return &Store{
		dataDir: dataDir,
		cache:   make(map[string]*domain.ModelDocument),
	}
}

// LoadModel loads the model stored in <name>.nc anywhere under the data directory.
// Loaded models are cached; callers must not modify the returned document.
func (s *Store) LoadModel(name string) (*domain.ModelDocument, error) {
	if err := store.ValidateName(name); err != nil {
		return nil, err
	}

	// Check cache first.
	s.mu.RLock()
	if doc, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return doc, nil
	}
	s.mu.RUnlock()

	path, err := s.find(name + suffix)
	if err != nil {
		return nil, err
	}

	doc, err := ReadModel(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", name, err)
	}
	if doc.Name == "" {
		doc.Name = name
	}

	s.mu.Lock()
	s.cache[name] = doc
	s.mu.Unlock()

	return doc, nil
}

// ListModels returns the names of all .nc files under the data directory.
func (s *Store) ListModels() ([]string, error) {
	if _, err := os.Stat(s.dataDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("model data directory does not exist: %s", s.dataDir)
	}

	models := make([]string, 0)
	err := filepath.WalkDir(s.dataDir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), suffix) {
			return nil
		}
		models = append(models, strings.TrimSuffix(d.Name(), suffix))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk model directory: %w", err)
	}

	return models, nil
}

// find locates a file by name recursively under the data directory.
func (s *Store) find(target string) (string, error) {
	var match string
	errFound := errors.New("found")
	err := filepath.WalkDir(s.dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == target {
			match = path
			return errFound
		}
		return nil
	})
	if errors.Is(err, errFound) {
		return match, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	return "", fmt.Errorf("%w: %s", store.ErrModelNotFound, strings.TrimSuffix(target, suffix))
}

// ReadModel reads a model document from a NetCDF file.
func ReadModel(path string) (*domain.ModelDocument, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer func() { _ = nc.Close() }()

	doc := &domain.ModelDocument{}

	// Indices.
	iv, err := nc.Var(indicesVarName)
	if err != nil {
		return nil, fmt.Errorf("variable %q not found: %w", indicesVarName, err)
	}
	shape, err := varShape(iv)
	if err != nil {
		return nil, err
	}
	if len(shape) != 2 || shape[1] != 2 {
		return nil, fmt.Errorf("expected %s(entry, 2), got shape %v", indicesVarName, shape)
	}
	nm := make([]int32, shape[0]*2)
	if err := iv.ReadInt32s(nm); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", indicesVarName, err)
	}
	doc.Indices = make([][2]int, shape[0])
	for k := range doc.Indices {
		doc.Indices[k] = [2]int{int(nm[2*k]), int(nm[2*k+1])}
	}

	// Coefficients.
	cv, err := nc.Var(coefficientsVarName)
	if err != nil {
		return nil, fmt.Errorf("variable %q not found: %w", coefficientsVarName, err)
	}
	shape, err = varShape(cv)
	if err != nil {
		return nil, err
	}
	if len(shape) != 4 || shape[3] != 2 {
		return nil, fmt.Errorf("expected %s(entry, season, day, 2), got shape %v", coefficientsVarName, shape)
	}
	flat, err := readFloat64s(cv, shape[0]*shape[1]*shape[2]*2)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", coefficientsVarName, err)
	}
	doc.Coefficients = reshape(flat, shape[0], shape[1], shape[2])

	// Global attributes.
	extent := make([]int32, 4)
	ea := nc.Attr("ps_extent")
	if err := readAttr(ea, 4, func() error { return ea.ReadInt32s(extent) }); err != nil {
		return nil, fmt.Errorf("attribute ps_extent: %w", err)
	}
	for i, v := range extent {
		doc.PSExtent[i] = int(v)
	}

	for name, dst := range map[string]*float64{
		"lat_ngp":    &doc.LatNGP,
		"lon_ngp":    &doc.LonNGP,
		"mio_radius": &doc.MIORadius,
		"wolf_ratio": &doc.WolfRatio,
	} {
		buf := make([]float64, 1)
		a := nc.Attr(name)
		if err := readAttr(a, 1, func() error { return a.ReadFloat64s(buf) }); err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		*dst = buf[0]
	}

	internal := make([]int32, 1)
	ia := nc.Attr("is_internal")
	if err := readAttr(ia, 1, func() error { return ia.ReadInt32s(internal) }); err != nil {
		return nil, fmt.Errorf("attribute is_internal: %w", err)
	}
	doc.IsInternal = internal[0] != 0

	if name, ok := readText(nc.Attr("name")); ok {
		doc.Name = name
	}
	if meta, ok := readText(nc.Attr("meta")); ok {
		if err := json.Unmarshal([]byte(meta), &doc.Meta); err != nil {
			return nil, fmt.Errorf("attribute meta: %w", err)
		}
	}

	return doc, nil
}

// WriteModel writes a model document to a NetCDF file, replacing any existing file.
func WriteModel(path string, doc *domain.ModelDocument) error {
	entries := len(doc.Indices)
	if entries == 0 {
		return errors.New("model has no coefficient entries")
	}
	if len(doc.Coefficients) != entries {
		return fmt.Errorf("%w: %d coefficient rows for %d indices", domain.ErrShapeMismatch, len(doc.Coefficients), entries)
	}
	rows := len(doc.Coefficients[0])
	if rows == 0 || len(doc.Coefficients[0][0]) == 0 {
		return fmt.Errorf("%w: empty seasonal or diurnal axis", domain.ErrShapeMismatch)
	}
	cols := len(doc.Coefficients[0][0])

	flat := make([]float64, 0, entries*rows*cols*2)
	for k, entry := range doc.Coefficients {
		if len(entry) != rows {
			return fmt.Errorf("%w: entry %d has %d seasonal orders, expected %d", domain.ErrShapeMismatch, k, len(entry), rows)
		}
		for r, row := range entry {
			if len(row) != cols {
				return fmt.Errorf("%w: entry %d, seasonal row %d has %d diurnal orders, expected %d", domain.ErrShapeMismatch, k, r, len(row), cols)
			}
			for _, pair := range row {
				flat = append(flat, pair[0], pair[1])
			}
		}
	}

	nm := make([]int32, 0, entries*2)
	for _, idx := range doc.Indices {
		nm = append(nm, int32(idx[0]), int32(idx[1]))
	}

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create NetCDF file: %w", err)
	}
	defer func() { _ = ds.Close() }()

	entryDim, err := ds.AddDim("entry", uint64(entries))
	if err != nil {
		return fmt.Errorf("failed to add entry dimension: %w", err)
	}
	nmDim, err := ds.AddDim("nm", 2)
	if err != nil {
		return fmt.Errorf("failed to add nm dimension: %w", err)
	}
	seasonDim, err := ds.AddDim("season", uint64(rows))
	if err != nil {
		return fmt.Errorf("failed to add season dimension: %w", err)
	}
	dayDim, err := ds.AddDim("day", uint64(cols))
	if err != nil {
		return fmt.Errorf("failed to add day dimension: %w", err)
	}
	pairDim, err := ds.AddDim("pair", 2)
	if err != nil {
		return fmt.Errorf("failed to add pair dimension: %w", err)
	}

	iv, err := ds.AddVar(indicesVarName, netcdf.INT, []netcdf.Dim{entryDim, nmDim})
	if err != nil {
		return fmt.Errorf("failed to add %s variable: %w", indicesVarName, err)
	}
	cv, err := ds.AddVar(coefficientsVarName, netcdf.DOUBLE, []netcdf.Dim{entryDim, seasonDim, dayDim, pairDim})
	if err != nil {
		return fmt.Errorf("failed to add %s variable: %w", coefficientsVarName, err)
	}

	extent := []int32{int32(doc.PSExtent[0]), int32(doc.PSExtent[1]), int32(doc.PSExtent[2]), int32(doc.PSExtent[3])}
	if err := ds.Attr("ps_extent").WriteInt32s(extent); err != nil {
		return fmt.Errorf("failed to write ps_extent: %w", err)
	}
	for _, attr := range []struct {
		name  string
		value float64
	}{
		{"lat_ngp", doc.LatNGP},
		{"lon_ngp", doc.LonNGP},
		{"mio_radius", doc.MIORadius},
		{"wolf_ratio", doc.WolfRatio},
	} {
		if err := ds.Attr(attr.name).WriteFloat64s([]float64{attr.value}); err != nil {
			return fmt.Errorf("failed to write %s: %w", attr.name, err)
		}
	}
	internal := int32(0)
	if doc.IsInternal {
		internal = 1
	}
	if err := ds.Attr("is_internal").WriteInt32s([]int32{internal}); err != nil {
		return fmt.Errorf("failed to write is_internal: %w", err)
	}
	if doc.Name != "" {
		if err := ds.Attr("name").WriteBytes([]byte(doc.Name)); err != nil {
			return fmt.Errorf("failed to write name: %w", err)
		}
	}
	if len(doc.Meta) > 0 {
		meta, err := json.Marshal(doc.Meta)
		if err != nil {
			return fmt.Errorf("failed to encode meta: %w", err)
		}
		if err := ds.Attr("meta").WriteBytes(meta); err != nil {
			return fmt.Errorf("failed to write meta: %w", err)
		}
	}

	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}

	if err := iv.WriteInt32s(nm); err != nil {
		return fmt.Errorf("failed to write %s: %w", indicesVarName, err)
	}
	if err := cv.WriteFloat64s(flat); err != nil {
		return fmt.Errorf("failed to write %s: %w", coefficientsVarName, err)
	}

	return nil
}

// varShape returns the dimension lengths of a variable.
func varShape(v netcdf.Var) ([]int, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	shape := make([]int, len(dims))
	for i, d := range dims {
		n, err := d.Len()
		if err != nil {
			return nil, fmt.Errorf("failed to get dim%d length: %w", i, err)
		}
		shape[i] = int(n)
	}
	return shape, nil
}

// readFloat64s reads a numeric variable of any floating point type as float64.
func readFloat64s(v netcdf.Var, n int) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}

	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, n)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, err
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, n)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, n)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
}

// readAttr checks the attribute length before reading it.
func readAttr(a netcdf.Attr, want uint64, read func() error) error {
	n, err := a.Len()
	if err != nil {
		return fmt.Errorf("missing: %w", err)
	}
	if n != want {
		return fmt.Errorf("expected %d values, got %d", want, n)
	}
	return read()
}

// readText reads an optional text attribute.
func readText(a netcdf.Attr) (string, bool) {
	n, err := a.Len()
	if err != nil || n == 0 {
		return "", false
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return "", false
	}
	return string(buf), true
}

func reshape(flat []float64, entries, rows, cols int) [][][][2]float64 {
	out := make([][][][2]float64, entries)
	i := 0
	for k := range out {
		out[k] = make([][][2]float64, rows)
		for r := range out[k] {
			out[k][r] = make([][2]float64, cols)
			for c := range out[k][r] {
				out[k][r][c] = [2]float64{flat[i], flat[i+1]}
				i += 2
			}
		}
	}
	return out
}
