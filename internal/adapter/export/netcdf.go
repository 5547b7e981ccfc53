package export

import (
	"errors"
	"fmt"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/UndeadFairy/MagneticModel/internal/domain"
)

// WriteNetCDF writes a coefficient series as a NetCDF4 file with the variables
//
//	time(time)                      double  days since 2000-01-01
//	degree(slot), order(slot)       int     (n, m) of each dense row
//	coefficients(time, slot, pair)  double  dense (g, h) or (q, s) pairs
//
// Model metadata is stored as global attributes.
func WriteNetCDF(path string, doc *domain.ModelDocument, samples []domain.Sample) error {
	if len(samples) == 0 {
		return errors.New("no samples to write")
	}

	degree := seriesDegree(samples)
	slots := domain.CoeffSize(degree)

	times := make([]float64, len(samples))
	data := make([]float64, 0, len(samples)*slots*2)
	for i, s := range samples {
		times[i] = s.MJD2000
		for row := 0; row < slots; row++ {
			data = append(data, slotValue(s, row, 0), slotValue(s, row, 1))
		}
	}

	degrees := make([]int32, 0, slots)
	orders := make([]int32, 0, slots)
	for n := 0; n <= degree; n++ {
		for m := 0; m <= n; m++ {
			degrees = append(degrees, int32(n))
			orders = append(orders, int32(m))
		}
	}

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create NetCDF file: %w", err)
	}
	defer func() { _ = ds.Close() }()

	timeDim, err := ds.AddDim("time", uint64(len(samples)))
	if err != nil {
		return fmt.Errorf("failed to add time dimension: %w", err)
	}
	slotDim, err := ds.AddDim("slot", uint64(slots))
	if err != nil {
		return fmt.Errorf("failed to add slot dimension: %w", err)
	}
	pairDim, err := ds.AddDim("pair", 2)
	if err != nil {
		return fmt.Errorf("failed to add pair dimension: %w", err)
	}

	timeVar, err := ds.AddVar("time", netcdf.DOUBLE, []netcdf.Dim{timeDim})
	if err != nil {
		return fmt.Errorf("failed to add time variable: %w", err)
	}
	if err := timeVar.Attr("units").WriteBytes([]byte("days since 2000-01-01 00:00:00 UTC")); err != nil {
		return fmt.Errorf("failed to write time units: %w", err)
	}
	degreeVar, err := ds.AddVar("degree", netcdf.INT, []netcdf.Dim{slotDim})
	if err != nil {
		return fmt.Errorf("failed to add degree variable: %w", err)
	}
	orderVar, err := ds.AddVar("order", netcdf.INT, []netcdf.Dim{slotDim})
	if err != nil {
		return fmt.Errorf("failed to add order variable: %w", err)
	}
	coeffVar, err := ds.AddVar("coefficients", netcdf.DOUBLE, []netcdf.Dim{timeDim, slotDim, pairDim})
	if err != nil {
		return fmt.Errorf("failed to add coefficients variable: %w", err)
	}

	if doc != nil {
		if err := writeModelAttrs(ds, doc); err != nil {
			return err
		}
	}

	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}

	if err := timeVar.WriteFloat64s(times); err != nil {
		return fmt.Errorf("failed to write time: %w", err)
	}
	if err := degreeVar.WriteInt32s(degrees); err != nil {
		return fmt.Errorf("failed to write degree: %w", err)
	}
	if err := orderVar.WriteInt32s(orders); err != nil {
		return fmt.Errorf("failed to write order: %w", err)
	}
	if err := coeffVar.WriteFloat64s(data); err != nil {
		return fmt.Errorf("failed to write coefficients: %w", err)
	}

	return nil
}

func writeModelAttrs(ds netcdf.Dataset, doc *domain.ModelDocument) error {
	if doc.Name != "" {
		if err := ds.Attr("model").WriteBytes([]byte(doc.Name)); err != nil {
			return fmt.Errorf("failed to write model name: %w", err)
		}
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
	return nil
}
