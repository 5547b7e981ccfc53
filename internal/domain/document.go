package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ModelDocument is the serialised form of a MIO coefficient set, as accepted by
// the API and the model stores.
type ModelDocument struct {
	Name         string            `json:"name,omitempty"`
	Indices      [][2]int          `json:"indices"`
	Coefficients [][][][2]float64  `json:"coefficients"`
	PSExtent     [4]int            `json:"ps_extent"`
	LatNGP       float64           `json:"lat_ngp"`
	LonNGP       float64           `json:"lon_ngp"`
	MIORadius    float64           `json:"mio_radius"`
	WolfRatio    float64           `json:"wolf_ratio"`
	IsInternal   bool              `json:"is_internal"`
	Meta         map[string]string `json:"meta,omitempty"`
}

// UnmarshalJSON decodes a document strictly. Index and coefficient pairs must
// have exactly two elements; anything else is reported as ErrShapeMismatch
// rather than being zero-filled or truncated.
func (d *ModelDocument) UnmarshalJSON(data []byte) error {
	type document ModelDocument
	var raw struct {
		document
		Indices      [][]int         `json:"indices"`
		Coefficients [][][][]float64 `json:"coefficients"`
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	doc := ModelDocument(raw.document)

	if raw.Indices != nil {
		doc.Indices = make([][2]int, len(raw.Indices))
	}
	for k, nm := range raw.Indices {
		if len(nm) != 2 {
			return fmt.Errorf("%w: index %d has %d elements, expected (n, m)", ErrShapeMismatch, k, len(nm))
		}
		doc.Indices[k] = [2]int{nm[0], nm[1]}
	}

	if raw.Coefficients != nil {
		doc.Coefficients = make([][][][2]float64, len(raw.Coefficients))
	}
	for k, entry := range raw.Coefficients {
		doc.Coefficients[k] = make([][][2]float64, len(entry))
		for r, row := range entry {
			doc.Coefficients[k][r] = make([][2]float64, len(row))
			for c, pair := range row {
				if len(pair) != 2 {
					return fmt.Errorf("%w: coefficient (%d, %d, %d) has %d elements, expected (cos, sin)", ErrShapeMismatch, k, r, c, len(pair))
				}
				doc.Coefficients[k][r][c] = [2]float64{pair[0], pair[1]}
			}
		}
	}

	*d = doc
	return nil
}

// Validate checks the scalar parameters of the document. The tensor shape is
// left to evaluation.
func (d *ModelDocument) Validate() error {
	if d.LatNGP < -90 || d.LatNGP > 90 {
		return fmt.Errorf("%w: lat_ngp must be between -90 and 90, got %g", ErrInvalidConfiguration, d.LatNGP)
	}
	for _, nm := range d.Indices {
		if nm[0] < 0 || abs(nm[1]) > nm[0] {
			return fmt.Errorf("%w: invalid spherical harmonic index (%d, %d)", ErrInvalidConfiguration, nm[0], nm[1])
		}
	}
	return d.Extent().Validate()
}

// Extent returns the harmonic order extent of the document.
func (d *ModelDocument) Extent() HarmonicOrderExtent {
	return HarmonicOrderExtent{
		PMin: d.PSExtent[0],
		PMax: d.PSExtent[1],
		SMin: d.PSExtent[2],
		SMax: d.PSExtent[3],
	}
}

// Params converts the document to construction parameters using the given time
// converter (nil selects the default).
func (d *ModelDocument) Params(tc TimeConverter) MIOParams {
	indices := make([]Index, len(d.Indices))
	for i, nm := range d.Indices {
		indices[i] = Index{N: nm[0], M: nm[1]}
	}

	return MIOParams{
		Indices:      indices,
		Coefficients: Tensor(d.Coefficients),
		Extent:       d.Extent(),
		Pole:         GeomagneticPole{Lat: d.LatNGP, Lon: d.LonNGP},
		MIORadius:    d.MIORadius,
		WolfRatio:    d.WolfRatio,
		IsInternal:   d.IsInternal,
		Time:         tc,
	}
}

// Build validates the document and creates the coefficient set.
func (d *ModelDocument) Build() (*MIOCoefficients, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return NewMIOCoefficients(d.Params(nil))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
