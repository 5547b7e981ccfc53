package domain

import "github.com/UndeadFairy/MagneticModel/internal/magtime"

// TimeConverter maps an MJD2000 instant to the two angular arguments of the
// 2D Fourier series.
type TimeConverter interface {
	// YearFraction returns the position of the instant within its calendar year in [0, 1).
	YearFraction(mjd2000 float64) float64
	// MagneticUniversalTime returns the magnetic universal time in hours for the
	// given North Geomagnetic Pole (degrees).
	MagneticUniversalTime(mjd2000, latNGP, lonNGP float64) float64
}

// AstronomicalTimeConverter derives the sub-solar point from a solar ephemeris.
type AstronomicalTimeConverter struct{}

// YearFraction returns the calendar year fraction.
func (AstronomicalTimeConverter) YearFraction(mjd2000 float64) float64 {
	return magtime.YearFraction(mjd2000)
}

// MagneticUniversalTime returns the magnetic universal time.
func (AstronomicalTimeConverter) MagneticUniversalTime(mjd2000, latNGP, lonNGP float64) float64 {
	return magtime.MagneticUniversalTime(mjd2000, latNGP, lonNGP)
}

// subSolarTimeConverter uses a caller supplied sub-solar point instead of the ephemeris.
type subSolarTimeConverter struct {
	base     TimeConverter
	subSolar magtime.LatLon
}

func (c subSolarTimeConverter) YearFraction(mjd2000 float64) float64 {
	return c.base.YearFraction(mjd2000)
}

func (c subSolarTimeConverter) MagneticUniversalTime(_, latNGP, lonNGP float64) float64 {
	return magtime.MagneticUniversalTimeAt(latNGP, lonNGP, c.subSolar.Lat, c.subSolar.Lon)
}
