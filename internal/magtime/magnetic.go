package magtime

import (
	"math"

	"github.com/nathan-osman/go-sunrise"
)

// julianDayAtEpoch is the Julian day of 2000-01-01T00:00:00Z.
var julianDayAtEpoch = sunrise.TimeToJulianDay(Epoch)

// LatLon is a geocentric location in degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SubSolarPoint returns the latitude (solar declination) and longitude of the point
// where the Sun is at zenith, both in degrees. Longitude is wrapped to [-180, 180).
func SubSolarPoint(mjd2000 float64) (lat, lon float64) {
	jd := mjd2000 + julianDayAtEpoch

	m := sunrise.SolarMeanAnomaly(jd)
	l := sunrise.EclipticLongitude(m, sunrise.EquationOfCenter(m), jd)

	// The Sun crosses the prime meridian at the solar transit of the nearest
	// noon; it moves west by 360 degrees per day from there.
	noon := math.Round(jd)
	transit := sunrise.SolarTransit(noon, m, l)

	return sunrise.Declination(l), wrapLongitude(-(jd - transit) * 360.0)
}

// DipoleLongitude returns the longitude (degrees) of a geocentric location in the
// centred dipole frame whose north pole sits at (latNGP, lonNGP).
func DipoleLongitude(lat, lon, latNGP, lonNGP float64) float64 {
	sinLat, cosLat := math.Sincos(Deg2Rad(lat))
	sinPole, cosPole := math.Sincos(Deg2Rad(latNGP))
	sinDLon, cosDLon := math.Sincos(Deg2Rad(lon - lonNGP))

	x := sinPole*cosLat*cosDLon - cosPole*sinLat
	y := cosLat * sinDLon

	return Rad2Deg(math.Atan2(y, x))
}

// MagneticUniversalTime returns the magnetic universal time in hours [0, 24) for the
// given instant and North Geomagnetic Pole. The sub-solar point is computed from mjd2000.
func MagneticUniversalTime(mjd2000, latNGP, lonNGP float64) float64 {
	latSol, lonSol := SubSolarPoint(mjd2000)
	return MagneticUniversalTimeAt(latNGP, lonNGP, latSol, lonSol)
}

// MagneticUniversalTimeAt returns the magnetic universal time in hours [0, 24) for an
// explicit sub-solar point. It is the magnetic local time of the dipole meridian zero,
// i.e. 12 hours minus the dipole longitude of the Sun expressed in hours.
func MagneticUniversalTimeAt(latNGP, lonNGP, latSol, lonSol float64) float64 {
	dipoleLon := DipoleLongitude(latSol, lonSol, latNGP, lonNGP)
	mut := math.Mod(180.0-dipoleLon, 360.0)
	if mut < 0 {
		mut += 360.0
	}
	return mut / 15.0
}

func wrapLongitude(lon float64) float64 {
	lon = math.Mod(lon+180.0, 360.0)
	if lon < 0 {
		lon += 360.0
	}
	return lon - 180.0
}
