package main

import (
	"flag"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/UndeadFairy/MagneticModel/internal/adapter/store/modelfile"
	"github.com/UndeadFairy/MagneticModel/internal/domain"
)

func main() {
	// Command line flags
	inPath := flag.String("in", "", "Input model file (.json or .nc); empty generates a synthetic model")
	outPath := flag.String("out", "./data/netcdf/synthetic.nc", "Output model file (.json or .nc)")
	name := flag.String("name", "synthetic", "Model name (synthetic model)")
	degree := flag.Int("degree", 2, "Maximum spherical harmonic degree (synthetic model)")
	pMax := flag.Int("p-max", 4, "Maximum diurnal order, orders run from -p-max to p-max (synthetic model)")
	sMax := flag.Int("s-max", 2, "Maximum seasonal order, orders run from -s-max to s-max (synthetic model)")
	latNGP := flag.Float64("lat-ngp", 80.65, "Latitude of the north geomagnetic pole (synthetic model)")
	lonNGP := flag.Float64("lon-ngp", -72.68, "Longitude of the north geomagnetic pole (synthetic model)")
	internal := flag.Bool("internal", false, "Generate internal (induced) coefficients (synthetic model)")

	flag.Parse()

	var doc *domain.ModelDocument
	if *inPath == "" {
		if *degree < 1 || *pMax < 0 || *sMax < 0 {
			log.Fatalf("Invalid synthetic model parameters: degree=%d p-max=%d s-max=%d", *degree, *pMax, *sMax)
		}
		doc = generateModel(*name, *degree, *pMax, *sMax, *latNGP, *lonNGP, *internal)
		log.Printf("Generated synthetic model %q: degree %d, %d entries", doc.Name, *degree, len(doc.Indices))
	} else {
		var err error
		doc, err = modelfile.Read(*inPath)
		if err != nil {
			log.Fatalf("Failed to read model: %v", err)
		}
		log.Printf("Loaded model %q with %d entries from %s", doc.Name, len(doc.Indices), *inPath)
	}

	// Reject documents the evaluator would refuse.
	coeffs, err := doc.Build()
	if err != nil {
		log.Fatalf("Invalid model: %v", err)
	}
	if _, err := coeffs.Evaluate(0, domain.EvalParams{}); err != nil {
		log.Fatalf("Invalid model: %v", err)
	}

	// Create output directory
	if err := os.MkdirAll(filepath.Dir(*outPath), 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	if err := modelfile.Write(*outPath, doc); err != nil {
		log.Fatalf("Failed to write model: %v", err)
	}

	extent := doc.Extent()
	log.Printf("✓ Wrote %s", *outPath)
	log.Printf("Tensor: %d entries × %d seasonal × %d diurnal orders",
		len(doc.Indices), extent.Rows(), extent.Cols())
}

// generateModel builds a smooth synthetic coefficient set with every (n, m)
// entry up to the given degree. Amplitudes fall off with degree and with
// diurnal and seasonal order so the series resemble a quiet-day variation.
func generateModel(name string, degree, pMax, sMax int, latNGP, lonNGP float64, internal bool) *domain.ModelDocument {
	var indices [][2]int
	var coeffs [][][][2]float64

	for n := 1; n <= degree; n++ {
		for m := -n; m <= n; m++ {
			entry := make([][][2]float64, 2*sMax+1)
			for r := range entry {
				s := r - sMax
				entry[r] = make([][2]float64, 2*pMax+1)
				for c := range entry[r] {
					p := c - pMax

					// Amplitude: decrease with degree and order
					amp := 10.0 / float64(n*n) /
						(1 + math.Abs(float64(p-m))) /
						(1 + 2*math.Abs(float64(s)))

					// Phase: smooth variation across the tensor
					phase := 0.3*float64(n) + 0.2*float64(m) + 0.1*float64(p) - 0.15*float64(s)

					entry[r][c] = [2]float64{amp * math.Cos(phase), amp * math.Sin(phase)}
				}
			}
			indices = append(indices, [2]int{n, m})
			coeffs = append(coeffs, entry)
		}
	}

	return &domain.ModelDocument{
		Name:         name,
		Indices:      indices,
		Coefficients: coeffs,
		PSExtent:     [4]int{-pMax, pMax, -sMax, sMax},
		LatNGP:       latNGP,
		LonNGP:       lonNGP,
		MIORadius:    6371.2 + 110.0,
		WolfRatio:    0.01485,
		IsInternal:   internal,
		Meta: map[string]string{
			"source": "synthetic",
		},
	}
}
