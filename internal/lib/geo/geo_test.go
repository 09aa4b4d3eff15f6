package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoUtils_PointToPoint(t *testing.T) {
	// Highway 4 test coordinates: Angels Camp to Murphys
	angelscamp := Point{Latitude: 38.0675, Longitude: -120.5436}
	murphys := Point{Latitude: 38.1391, Longitude: -120.4561}

	geoUtils := NewGeoUtils()

	distance, err := geoUtils.PointToPoint(angelscamp, murphys)
	require.NoError(t, err)
	assert.InDelta(t, 11046, distance, 100, "Distance should be approximately 11.0km")

	distance, err = geoUtils.PointToPoint(angelscamp, angelscamp)
	require.NoError(t, err)
	assert.Equal(t, 0.0, distance)

	invalidPoint := Point{Latitude: 200, Longitude: -300}
	_, err = geoUtils.PointToPoint(angelscamp, invalidPoint)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestGeoUtils_PathLength(t *testing.T) {
	geoUtils := NewGeoUtils()

	path := []Point{
		{Latitude: 38.0675, Longitude: -120.5436},
		{Latitude: 38.1391, Longitude: -120.4561},
		{Latitude: 38.0675, Longitude: -120.5436},
	}

	length, err := geoUtils.PathLength(path)
	require.NoError(t, err)
	assert.InDelta(t, 2*11046, length, 200)

	length, err = geoUtils.PathLength(path[:1])
	require.NoError(t, err)
	assert.Zero(t, length)

	_, err = geoUtils.PathLength([]Point{{Latitude: 0, Longitude: 0}, {Latitude: 91, Longitude: 0}})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestGeoUtils_Densify(t *testing.T) {
	geoUtils := NewGeoUtils()

	start := Point{Latitude: 38.0675, Longitude: -120.5436}
	end := Point{Latitude: 38.1391, Longitude: -120.4561}

	points, err := geoUtils.Densify([]Point{start, end}, 1000)
	require.NoError(t, err)

	// ~11km leg at 1km steps
	assert.Len(t, points, 13)
	assert.Equal(t, start, points[0])
	assert.Equal(t, end, points[len(points)-1])

	for i := 1; i < len(points); i++ {
		d, err := geoUtils.PointToPoint(points[i-1], points[i])
		require.NoError(t, err)
		assert.LessOrEqual(t, d, 1000.0)
	}

	_, err = geoUtils.Densify(nil, 1000)
	assert.Error(t, err)

	_, err = geoUtils.Densify([]Point{start, end}, 0)
	assert.Error(t, err)
}

func TestGeoUtils_PolylineRoundTrip(t *testing.T) {
	geoUtils := NewGeoUtils()

	// Canonical example from the polyline algorithm documentation
	points, err := geoUtils.DecodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.InDelta(t, 38.5, points[0].Latitude, 1e-5)
	assert.InDelta(t, -120.2, points[0].Longitude, 1e-5)
	assert.InDelta(t, 43.252, points[2].Latitude, 1e-5)

	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", geoUtils.EncodePolyline(points))

	_, err = geoUtils.DecodePolyline("")
	assert.Error(t, err)
}

func TestFeatureConversion(t *testing.T) {
	murphys := Point{Latitude: 38.1391, Longitude: -120.4561}

	f := Feature(murphys, "Murphys, CA")
	assert.Equal(t, orb.Point{-120.4561, 38.1391}, f.Geometry)
	assert.Equal(t, "Murphys, CA", FeatureName(f))

	back, err := FromFeature(f)
	require.NoError(t, err)
	assert.Equal(t, murphys, back)

	_, err = FromFeature(nil)
	assert.Error(t, err)

	f.Geometry = orb.LineString{{0, 0}, {1, 1}}
	_, err = FromFeature(f)
	assert.Error(t, err)
	assert.Equal(t, "", FeatureName(nil))
}

func TestLineStringConversion(t *testing.T) {
	points := []Point{
		{Latitude: 38.0675, Longitude: -120.5436},
		{Latitude: 38.1391, Longitude: -120.4561},
	}

	ls := LineString(points)
	assert.Equal(t, orb.LineString{{-120.5436, 38.0675}, {-120.4561, 38.1391}}, ls)
	assert.Equal(t, points, PointsFromLineString(ls))
}

func TestNewPoint(t *testing.T) {
	p, err := NewPoint(38.0675, -120.5436)
	require.NoError(t, err)
	assert.Equal(t, Point{Latitude: 38.0675, Longitude: -120.5436}, p)

	_, err = NewPoint(-91, 0)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestPoint_String(t *testing.T) {
	assert.Equal(t, "38.06750,-120.54360", Point{Latitude: 38.0675, Longitude: -120.5436}.String())
}

func TestParsePoint(t *testing.T) {
	p, err := ParsePoint("38.1327,-120.4606")
	require.NoError(t, err)
	assert.Equal(t, Point{Latitude: 38.1327, Longitude: -120.4606}, p)

	p, err = ParsePoint(" 38.2458 , -120.3486 ")
	require.NoError(t, err)
	assert.Equal(t, -120.3486, p.Longitude)

	roundTrip, err := ParsePoint(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, roundTrip)

	for _, bad := range []string{"", "38.1", "a,b", "38.1,-120.4,0", "95,0"} {
		_, err := ParsePoint(bad)
		assert.Error(t, err, bad)
	}

	_, err = ParsePoint("95,0")
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}
