package moving

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTariffOverrides(t *testing.T) {
	oldCallout := baseCallout
	oldMetro := routeTariffs[BandSameMetro]
	oldSofa := catalog["sofa_3seat"]
	t.Cleanup(func() {
		baseCallout = oldCallout
		routeTariffs[BandSameMetro] = oldMetro
		catalog["sofa_3seat"] = oldSofa
	})

	path := filepath.Join(t.TempDir(), "tariff.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"base_callout": 200,
		"route_tariffs": {"same_metro": {"fee": 250, "minimum": 400}},
		"item_prices": {"sofa_3seat": [220, 300]}
	}`), 0644))

	require.NoError(t, LoadTariffOverrides(path))
	assert.Equal(t, 200, baseCallout)
	assert.Equal(t, routeTariff{Fee: 250, Minimum: 400}, routeTariffs[BandSameMetro])
	assert.Equal(t, 220, catalog["sofa_3seat"].PriceLo)
	assert.Equal(t, 300, catalog["sofa_3seat"].PriceHi)
}

func TestTariffOverridesRejectUnknownKeys(t *testing.T) {
	bad := TariffOverrides{VolumeSurcharges: map[string]int{"gigantic": 900}}
	assert.Error(t, bad.apply())

	bad = TariffOverrides{RouteTariffs: map[string]struct {
		Fee     int `json:"fee"`
		Minimum int `json:"minimum"`
	}{"interplanetary": {Fee: 1}}}
	assert.Error(t, bad.apply())

	bad = TariffOverrides{ItemPrices: map[string][2]int{"sofa_3seat": {300, 100}}}
	assert.Error(t, bad.apply())
}

func TestLoadTariffOverridesMissingFile(t *testing.T) {
	assert.Error(t, LoadTariffOverrides(filepath.Join(t.TempDir(), "absent.json")))
}
