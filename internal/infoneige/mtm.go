package infoneige

import "math"

// MTM zone 8 (EPSG:32188) covers the Montreal area: transverse Mercator
// on GRS80 with a false easting of 304800 m, central meridian 73.5 W and
// scale factor 0.9999.
const (
	mtmFalseEasting    = 304800.0
	mtmCentralMeridian = -73.5
	mtmScale           = 0.9999

	grs80A = 6378137.0
	grs80F = 1.0 / 298.257222101
)

// MTM8ToWGS84 converts MTM zone 8 easting/northing to WGS84 latitude
// and longitude, using the standard inverse transverse Mercator series.
func MTM8ToWGS84(x, y float64) (lat, lng float64) {
	e2 := grs80F * (2 - grs80F)
	ep2 := e2 / (1 - e2)

	m := y / mtmScale
	mu := m / (grs80A * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	phi1 := mu +
		(3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

	sinPhi1, cosPhi1 := math.Sin(phi1), math.Cos(phi1)
	c1 := ep2 * cosPhi1 * cosPhi1
	t1 := math.Pow(math.Tan(phi1), 2)
	n1 := grs80A / math.Sqrt(1-e2*sinPhi1*sinPhi1)
	r1 := grs80A * (1 - e2) / math.Pow(1-e2*sinPhi1*sinPhi1, 1.5)
	d := (x - mtmFalseEasting) / (n1 * mtmScale)

	latRad := phi1 - (n1*math.Tan(phi1)/r1)*
		(d*d/2-
			(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
			(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)
	lngRad := (d -
		(1+2*t1+c1)*math.Pow(d, 3)/6 +
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120) / cosPhi1

	lat = latRad * 180 / math.Pi
	lng = mtmCentralMeridian + lngRad*180/math.Pi
	return lat, lng
}
