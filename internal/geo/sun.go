package geo

import (
	"math"
	"time"
)

const j2000 = 2451545.0

// SubsolarPoint returns the latitude and longitude where the Sun is at the
// zenith at time t. It uses a low precision solar ephemeris, good to a few
// hundredths of a degree, which is plenty for shading a terminal globe.
func SubsolarPoint(t time.Time) (lat, lng float64) {
	ra, dec := sunEquatorial(t)
	return dec, NormalizeAngle(ra - siderealAngle(t))
}

// Daylit reports whether the Sun is above the horizon at the given location.
func Daylit(lat, lng float64, t time.Time) bool {
	slat, slng := SubsolarPoint(t)
	return AngularDistance(lat, lng, slat, slng) < 90
}

// sunEquatorial returns the Sun's apparent right ascension and declination
// in degrees.
func sunEquatorial(t time.Time) (ra, dec float64) {
	c := (julianDate(t) - j2000) / 36525

	meanLng := wrap360(280.46646 + 36000.76983*c + 0.0003032*c*c)
	anomaly := degToRad(wrap360(357.52911 + 35999.05029*c - 0.0001537*c*c))

	center := (1.914602-0.004817*c-0.000014*c*c)*math.Sin(anomaly) +
		(0.019993-0.000101*c)*math.Sin(2*anomaly) +
		0.000289*math.Sin(3*anomaly)

	// aberration and nutation
	omega := degToRad(125.04 - 1934.136*c)
	lambda := degToRad(meanLng + center - 0.00569 - 0.00478*math.Sin(omega))

	obliquity := 23.439291 - 0.0130042*c - 0.00000016*c*c + 0.000000504*c*c*c
	eps := degToRad(obliquity + 0.00256*math.Cos(omega))

	ra = wrap360(radToDeg(math.Atan2(math.Cos(eps)*math.Sin(lambda), math.Cos(lambda))))
	dec = radToDeg(math.Asin(math.Sin(eps) * math.Sin(lambda)))
	return ra, dec
}

// siderealAngle is Greenwich mean sidereal time in degrees (IAU 1982).
func siderealAngle(t time.Time) float64 {
	jd := julianDate(t)
	c := (jd - j2000) / 36525
	return wrap360(280.46061837 + 360.98564736629*(jd-j2000) + 0.000387933*c*c - c*c*c/38710000)
}

func julianDate(t time.Time) float64 {
	return j2000 + float64(t.UTC().Sub(j2000Epoch))/float64(24*time.Hour)
}

// j2000Epoch is 2000-01-01 12:00 TT, taken as UTC.
var j2000Epoch = time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)

func wrap360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
