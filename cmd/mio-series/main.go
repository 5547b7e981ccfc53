package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/UndeadFairy/MagneticModel/internal/adapter/export"
	"github.com/UndeadFairy/MagneticModel/internal/adapter/store/modelfile"
	"github.com/UndeadFairy/MagneticModel/internal/domain"
	"github.com/UndeadFairy/MagneticModel/internal/usecase"
)

func main() {
	// Command line flags
	modelPath := flag.String("model", "./data/models/synthetic.json", "Model file (.json or .nc)")
	startStr := flag.String("start", "", "Start time (RFC3339, default: today 00:00 UTC)")
	endStr := flag.String("end", "", "End time (RFC3339, default: start + 24h)")
	step := flag.Duration("step", time.Hour, "Interval between samples")
	outPath := flag.String("out", "", "Output file (default: <model>_series.<format>)")
	formatStr := flag.String("format", "csv", "Output format: nc, csv or png")
	minDegree := flag.Int("min-degree", -1, "Minimum degree kept (-1: no lower bound)")
	maxDegree := flag.Int("max-degree", -1, "Maximum degree kept (-1: no upper bound)")
	slotN := flag.Int("n", 1, "Degree of the slot plotted in png output")
	slotM := flag.Int("m", 0, "Order of the slot plotted in png output")
	maxPoints := flag.Int("max-points", 100000, "Maximum number of samples")

	flag.Parse()

	format, err := export.ParseFormat(*formatStr)
	if err != nil {
		log.Fatalf("Invalid format: %v", err)
	}

	// Parse time range
	start := time.Now().UTC().Truncate(24 * time.Hour)
	if *startStr != "" {
		start, err = time.Parse(time.RFC3339, *startStr)
		if err != nil {
			log.Fatalf("Invalid start time (expected RFC3339): %v", err)
		}
	}
	end := start.Add(24 * time.Hour)
	if *endStr != "" {
		end, err = time.Parse(time.RFC3339, *endStr)
		if err != nil {
			log.Fatalf("Invalid end time (expected RFC3339): %v", err)
		}
	}

	doc, err := modelfile.Read(*modelPath)
	if err != nil {
		log.Fatalf("Failed to read model: %v", err)
	}
	log.Printf("Loaded model %q with %d entries from %s", doc.Name, len(doc.Indices), *modelPath)

	req := usecase.SeriesRequest{
		ModelRef: usecase.ModelRef{Model: doc},
		DegreeRange: usecase.DegreeRange{
			MinDegree: optional(*minDegree),
			MaxDegree: optional(*maxDegree),
		},
		Start:    start.UTC(),
		End:      end.UTC(),
		Interval: *step,
	}

	uc := usecase.NewCoefficientsUseCase(nil, *maxPoints)
	doc, samples, err := uc.Samples(req)
	if err != nil {
		log.Fatalf("Failed to generate series: %v", err)
	}
	log.Printf("Evaluated %d samples from %s to %s every %s",
		len(samples), req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339), *step)

	out := *outPath
	if out == "" {
		out = fmt.Sprintf("%s_series.%s", doc.Name, format)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	switch format {
	case export.FormatNetCDF:
		err = export.WriteNetCDF(out, doc, samples)
	case export.FormatCSV:
		err = writeFile(out, func(f *os.File) error { return export.WriteCSV(f, samples) })
	case export.FormatPNG:
		series := domain.SlotSeries(samples, *slotN, *slotM)
		extrema := domain.SlotExtrema(series)
		log.Printf("Slot (%d, %d): %d highs, %d lows", *slotN, *slotM, len(extrema.Highs), len(extrema.Lows))

		title := fmt.Sprintf("%s (%d, %d)", doc.Name, *slotN, *slotM)
		err = writeFile(out, func(f *os.File) error { return export.WriteChart(f, title, series, extrema) })
	}
	if err != nil {
		log.Fatalf("Failed to write %s: %v", out, err)
	}

	log.Printf("✓ Wrote %s", out)
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func optional(v int) *int {
	if v < 0 {
		return nil
	}
	return &v
}
