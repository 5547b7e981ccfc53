// Package export writes evaluated coefficient series to NetCDF, CSV and PNG files.
package export

import (
	"fmt"
	"strings"

	"github.com/UndeadFairy/MagneticModel/internal/domain"
)

// Format is an output file format.
type Format string

// Supported formats.
const (
	FormatNetCDF Format = "nc"
	FormatCSV    Format = "csv"
	FormatPNG    Format = "png"
)

// ParseFormat parses a format name, accepting the common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "nc", "netcdf", "nc4":
		return FormatNetCDF, nil
	case "csv":
		return FormatCSV, nil
	case "png", "chart":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want nc, csv or png)", s)
	}
}

// seriesDegree returns the largest degree over all samples.
func seriesDegree(samples []domain.Sample) int {
	degree := 0
	for _, s := range samples {
		if s.Result.Degree > degree {
			degree = s.Result.Degree
		}
	}
	return degree
}

// slotValue reads the (row, col) value of a sample, zero beyond its degree.
func slotValue(s domain.Sample, row, col int) float64 {
	if rows, _ := s.Result.Values.Dims(); row < rows {
		return s.Result.Values.At(row, col)
	}
	return 0
}
