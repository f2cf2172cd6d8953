package ephemeris

import (
	"fmt"
	"math"
	"time"

	"electional-engine/internal/domain"
)

// j2000 is 2000-01-01T12:00:00 TT, approximated as UTC.
var j2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// keplerElements are mean orbital elements at J2000 with rates per Julian century.
// Values are the approximate planetary elements valid 1800–2050.
type keplerElements struct {
	a, aDot       float64 // semi-major axis, au
	e, eDot       float64 // eccentricity
	i, iDot       float64 // inclination, deg
	l, lDot       float64 // mean longitude, deg
	peri, periDot float64 // longitude of perihelion, deg
	node, nodeDot float64 // longitude of ascending node, deg
}

var earthMoonBarycenter = keplerElements{
	1.00000261, 0.00000562, 0.01671123, -0.00004392, -0.00001531, -0.01294668,
	100.46457166, 35999.37244981, 102.93768193, 0.32327364, 0.0, 0.0,
}

var planetElements = map[domain.Body]keplerElements{
	domain.Mercury: {0.38709927, 0.00000037, 0.20563593, 0.00001906, 7.00497902, -0.00594749,
		252.25032350, 149472.67411175, 77.45779628, 0.16047689, 48.33076593, -0.12534081},
	domain.Venus: {0.72333566, 0.00000390, 0.00677672, -0.00004107, 3.39467605, -0.00078890,
		181.97909950, 58517.81538729, 131.60246718, 0.00268329, 76.67984255, -0.27769418},
	domain.Mars: {1.52371034, 0.00001847, 0.09339410, 0.00007882, 1.84969142, -0.00813131,
		-4.55343205, 19140.30268499, -23.94362959, 0.44441088, 49.55953891, -0.29257343},
	domain.Jupiter: {5.20288700, -0.00011607, 0.04838624, -0.00013253, 1.30439695, -0.00183714,
		34.39644051, 3034.74612775, 14.72847983, 0.21252668, 100.47390909, 0.20469106},
	domain.Saturn: {9.53667594, -0.00125060, 0.05386179, -0.00050991, 2.48599187, 0.00193609,
		49.95424423, 1222.49362201, 92.59887831, -0.41897216, 113.66242448, -0.28867794},
	domain.Uranus: {19.18916464, -0.00196176, 0.04725744, -0.00004397, 0.77263783, -0.00242939,
		313.23810451, 428.48202785, 170.95427630, 0.40805281, 74.01692503, 0.04240589},
	domain.Neptune: {30.06992276, 0.00026291, 0.00859048, 0.00005105, 1.77004347, 0.00035372,
		-55.12002969, 218.45945325, 44.96476227, -0.32241464, 131.78422574, -0.00508664},
	domain.Pluto: {39.48211675, -0.00031596, 0.24882730, 0.00005170, 17.14001206, 0.00004818,
		238.92903833, 145.20780515, 224.06891629, -0.04062942, 110.30393684, -0.01183482},
}

// precessionPerCentury converts J2000 longitudes to the equinox of date.
const precessionPerCentury = 1.3970

// MeanElements is a low-precision built-in Source.
// Planets use Keplerian mean elements; the Moon uses a truncated periodic series.
// Accuracy is a fraction of a degree for the inner bodies, adequate for hourly estimation.
type MeanElements struct{}

// NewMeanElements returns the built-in source.
func NewMeanElements() MeanElements {
	return MeanElements{}
}

// Longitude implements Source.
func (MeanElements) Longitude(body domain.Body, t time.Time) (float64, error) {
	days := t.Sub(j2000).Hours() / 24
	centuries := days / 36525

	switch body {
	case domain.Sun:
		x, y, _ := heliocentric(earthMoonBarycenter, centuries)
		return ofDate(rad2deg(math.Atan2(-y, -x)), centuries), nil
	case domain.Moon:
		return moonLongitude(days), nil
	}

	el, ok := planetElements[body]
	if !ok {
		return 0, fmt.Errorf("mean elements for %q: %w", body, ErrUnknownBody)
	}
	px, py, _ := heliocentric(el, centuries)
	ex, ey, _ := heliocentric(earthMoonBarycenter, centuries)
	return ofDate(rad2deg(math.Atan2(py-ey, px-ex)), centuries), nil
}

// heliocentric returns J2000 ecliptic coordinates in au.
func heliocentric(el keplerElements, t float64) (x, y, z float64) {
	a := el.a + el.aDot*t
	e := el.e + el.eDot*t
	inc := deg2rad(el.i + el.iDot*t)
	l := el.l + el.lDot*t
	peri := el.peri + el.periDot*t
	node := el.node + el.nodeDot*t

	omega := deg2rad(peri - node)
	bigOmega := deg2rad(node)
	m := deg2rad(domain.NormalizeDegrees(l - peri))

	ecc := solveKepler(m, e)

	xp := a * (math.Cos(ecc) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(ecc)

	cosW, sinW := math.Cos(omega), math.Sin(omega)
	cosO, sinO := math.Cos(bigOmega), math.Sin(bigOmega)
	cosI, sinI := math.Cos(inc), math.Sin(inc)

	x = (cosW*cosO-sinW*sinO*cosI)*xp + (-sinW*cosO-cosW*sinO*cosI)*yp
	y = (cosW*sinO+sinW*cosO*cosI)*xp + (-sinW*sinO+cosW*cosO*cosI)*yp
	z = (sinW*sinI)*xp + (cosW*sinI)*yp
	return x, y, z
}

// solveKepler solves E - e*sin(E) = M by Newton iteration.
func solveKepler(m, e float64) float64 {
	ecc := m + e*math.Sin(m)
	for i := 0; i < 30; i++ {
		delta := (ecc - e*math.Sin(ecc) - m) / (1 - e*math.Cos(ecc))
		ecc -= delta
		if math.Abs(delta) < 1e-10 {
			break
		}
	}
	return ecc
}

// moonLongitude returns the Moon's geocentric longitude of date.
func moonLongitude(days float64) float64 {
	lp := 218.316 + 13.176396*days // mean longitude
	mp := deg2rad(134.963 + 13.064993*days)
	d := deg2rad(297.850 + 12.190749*days)
	ms := deg2rad(357.529 + 0.985600*days)
	f := deg2rad(93.272 + 13.229350*days)

	lon := lp +
		6.289*math.Sin(mp) +
		1.274*math.Sin(2*d-mp) +
		0.658*math.Sin(2*d) +
		0.214*math.Sin(2*mp) -
		0.186*math.Sin(ms) -
		0.114*math.Sin(2*f)
	return domain.NormalizeDegrees(lon)
}

func ofDate(lon, centuries float64) float64 {
	return domain.NormalizeDegrees(lon + precessionPerCentury*centuries)
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

func rad2deg(r float64) float64 { return r * 180 / math.Pi }
