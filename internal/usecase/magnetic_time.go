package usecase

import (
	"fmt"
	"time"

	"github.com/UndeadFairy/MagneticModel/internal/magtime"
)

// MagneticTimeRequest asks for the time arguments of the Fourier series at an instant.
type MagneticTimeRequest struct {
	Time   time.Time
	LatNGP float64
	LonNGP float64
}

// MagneticTimeResponse contains the time arguments at an instant
type MagneticTimeResponse struct {
	Time                  string         `json:"time"`
	MJD2000               float64        `json:"mjd2000"`
	DecimalYear           float64        `json:"decimal_year"`
	YearFraction          float64        `json:"year_fraction"`
	SubSolar              magtime.LatLon `json:"sub_solar"`
	DipoleLongitude       float64        `json:"sub_solar_dipole_lon"`
	MagneticUniversalTime float64        `json:"magnetic_universal_time"`
}

// Validate checks if the request is valid
func (r *MagneticTimeRequest) Validate() error {
	if r.Time.IsZero() {
		return fmt.Errorf("time must be provided")
	}
	if r.LatNGP < -90 || r.LatNGP > 90 {
		return fmt.Errorf("lat_ngp must be between -90 and 90")
	}
	if r.LonNGP < -180 || r.LonNGP > 360 {
		return fmt.Errorf("lon_ngp must be between -180 and 360")
	}
	return nil
}

// MagneticTime computes the year fraction, sub-solar point and magnetic universal time.
func (uc *CoefficientsUseCase) MagneticTime(req MagneticTimeRequest) (*MagneticTimeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	mjd := magtime.MJD2000(req.Time)
	lat, lon := magtime.SubSolarPoint(mjd)

	return &MagneticTimeResponse{
		Time:                  req.Time.UTC().Format(time.RFC3339),
		MJD2000:               mjd,
		DecimalYear:           magtime.DecimalYear(mjd),
		YearFraction:          magtime.YearFraction(mjd),
		SubSolar:              magtime.LatLon{Lat: lat, Lon: lon},
		DipoleLongitude:       magtime.DipoleLongitude(lat, lon, req.LatNGP, req.LonNGP),
		MagneticUniversalTime: magtime.MagneticUniversalTimeAt(req.LatNGP, req.LonNGP, lat, lon),
	}, nil
}
