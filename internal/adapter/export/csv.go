package export

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/UndeadFairy/MagneticModel/internal/domain"
)

// Record is one coefficient value of a series in long CSV form. Negative orders
// hold the sine (h or s) coefficient of |m|.
type Record struct {
	Time    string  `csv:"time"`
	MJD2000 float64 `csv:"mjd2000"`
	N       int     `csv:"n"`
	M       int     `csv:"m"`
	Value   float64 `csv:"value"`
}

// Records flattens a series into long form, one record per (time, n, m).
func Records(samples []domain.Sample) []*Record {
	degree := seriesDegree(samples)
	records := make([]*Record, 0, len(samples)*(degree+1)*(degree+1))

	for _, s := range samples {
		ts := s.Time.UTC().Format(time.RFC3339)
		for n := 0; n <= degree; n++ {
			for m := -n; m <= n; m++ {
				row, col := domain.SlotPosition(n, m)
				records = append(records, &Record{
					Time:    ts,
					MJD2000: s.MJD2000,
					N:       n,
					M:       m,
					Value:   slotValue(s, row, col),
				})
			}
		}
	}

	return records
}

// WriteCSV writes the series as CSV with a header row.
func WriteCSV(w io.Writer, samples []domain.Sample) error {
	if err := gocsv.Marshal(Records(samples), w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// ReadCSV reads records written by WriteCSV.
func ReadCSV(r io.Reader) ([]*Record, error) {
	var records []*Record
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return records, nil
}
