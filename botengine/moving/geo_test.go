package moving

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moveline/leadgate/domains/session"
)

func TestFindLocality(t *testing.T) {
	loc, ok := FindLocality("Хайфа, ул. Герцль 10")
	require.True(t, ok)
	assert.Equal(t, 4000, loc.Code)

	loc, ok = FindLocality("Haifa")
	require.True(t, ok)
	assert.Equal(t, 4000, loc.Code)

	loc, ok = FindLocality("חיפה")
	require.True(t, ok)
	assert.Equal(t, 4000, loc.Code)

	loc, ok = FindLocality("Tel Aviv, Dizengoff 50")
	require.True(t, ok)
	assert.Equal(t, 5000, loc.Code)

	_, ok = FindLocality("random gibberish")
	assert.False(t, ok)
}

func TestClassifyRouteBands(t *testing.T) {
	assert.Equal(t, BandSameCity, ClassifyRoute("Хайфа, ул. Герцль 10", "Хайфа, Адар").Band)
	assert.Equal(t, BandSameMetro, ClassifyRoute("Тель-Авив", "Рамат-Ган").Band)
	assert.Equal(t, BandSameMetro, ClassifyRoute("Кирьят-Ата", "Кирьят-Ям").Band)
	assert.Equal(t, BandInterRegionShort, ClassifyRoute("Хайфа", "Тель-Авив").Band)
	assert.Equal(t, BandInterRegionLong, ClassifyRoute("Хайфа", "Беэр-Шева").Band)
	assert.Equal(t, BandInterRegionLong, ClassifyRoute("Нагария", "Иерусалим").Band)
	assert.Equal(t, BandCrossCountry, ClassifyRoute("Эйлат", "Тель-Авив").Band)
}

func TestClassifyRouteUnknownAddressFallsBack(t *testing.T) {
	info := ClassifyRoute("какой-то переулок 7", "Хайфа")
	assert.Equal(t, BandInterRegionShort, info.Band)
	assert.Empty(t, info.FromLocality)
	assert.Equal(t, "Haifa", info.ToLocality)
}

func TestClassifyRouteKeepsLocalityNames(t *testing.T) {
	info := ClassifyRoute("Хайфа", "Беэр-Шева")
	assert.Equal(t, "Haifa", info.FromLocality)
	assert.Equal(t, "Beer Sheva", info.ToLocality)
	assert.Equal(t, "haifa", info.FromRegion)
	assert.Equal(t, "south", info.ToRegion)
}

func TestDistanceFactor(t *testing.T) {
	assert.Equal(t, 1.0, DistanceFactor(nil))

	near := map[string]session.GeoPoint{
		"pickup_1": {Lat: 32.80, Lon: 34.99},
	}
	assert.Equal(t, 1.0, DistanceFactor(near))

	far := map[string]session.GeoPoint{
		"pickup_1": {Lat: 32.80, Lon: 34.99},
		"delivery": {Lat: 32.08, Lon: 34.78}, // Tel Aviv
	}
	assert.Equal(t, 1.2, DistanceFactor(far))
}

func TestHaversineKm(t *testing.T) {
	// Haifa to Tel Aviv is roughly 80 km.
	d := HaversineKm(32.794, 34.989, 32.08, 34.78)
	assert.InDelta(t, 81, d, 5)
}
