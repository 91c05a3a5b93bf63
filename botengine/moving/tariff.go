package moving

import (
	"encoding/json"
	"fmt"
	"os"
)

// TariffOverrides is the shape of the optional pricing override file. Every
// field is optional; absent values keep the built-in defaults. The guard
// policy (score thresholds, multipliers) is fixed and not overridable.
type TariffOverrides struct {
	BaseCallout        *int           `json:"base_callout,omitempty"`
	NoElevatorPerFloor *int           `json:"no_elevator_per_floor,omitempty"`
	ExtraPickupFee     *int           `json:"extra_pickup_fee,omitempty"`
	VolumeSurcharges   map[string]int `json:"volume_surcharges,omitempty"`
	ExtrasAdjustments  map[string]int `json:"extras_adjustments,omitempty"`
	RouteTariffs       map[string]struct {
		Fee     int `json:"fee"`
		Minimum int `json:"minimum"`
	} `json:"route_tariffs,omitempty"`
	// ItemPrices patches catalog handling prices: key -> [price_lo, price_hi].
	ItemPrices map[string][2]int `json:"item_prices,omitempty"`
}

// LoadTariffOverrides reads a JSON override file and applies it to the
// package tariff tables. Unknown volume categories, route bands and catalog
// keys are rejected so a typo cannot silently price nothing.
func LoadTariffOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read tariff file: %w", err)
	}
	var o TariffOverrides
	if err := json.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("failed to parse tariff file: %w", err)
	}
	return o.apply()
}

func (o TariffOverrides) apply() error {
	if o.BaseCallout != nil {
		baseCallout = *o.BaseCallout
	}
	if o.NoElevatorPerFloor != nil {
		noElevatorPerFloor = *o.NoElevatorPerFloor
	}
	if o.ExtraPickupFee != nil {
		extraPickupFee = *o.ExtraPickupFee
	}
	for cat, v := range o.VolumeSurcharges {
		if _, ok := volumeSurcharges[cat]; !ok {
			return fmt.Errorf("unknown volume category %q in tariff file", cat)
		}
		volumeSurcharges[cat] = v
	}
	for key, v := range o.ExtrasAdjustments {
		if _, ok := extrasAdjustments[key]; !ok {
			return fmt.Errorf("unknown extras adjustment %q in tariff file", key)
		}
		extrasAdjustments[key] = v
	}
	for band, v := range o.RouteTariffs {
		if _, ok := routeTariffs[band]; !ok {
			return fmt.Errorf("unknown route band %q in tariff file", band)
		}
		routeTariffs[band] = routeTariff{Fee: v.Fee, Minimum: v.Minimum}
	}
	for key, prices := range o.ItemPrices {
		item, ok := catalog[key]
		if !ok {
			return fmt.Errorf("unknown catalog item %q in tariff file", key)
		}
		if prices[0] <= 0 || prices[1] < prices[0] {
			return fmt.Errorf("invalid price range for %q in tariff file", key)
		}
		item.PriceLo, item.PriceHi = prices[0], prices[1]
		catalog[key] = item
	}
	return nil
}
