package moving

import (
	"math"

	"github.com/moveline/leadgate/domains/session"
)

// Base tariff values (ILS). Overridable through a deploy-provided JSON
// file, see tariff.go.
var (
	baseCallout        = 150
	noElevatorPerFloor = 50
	extraPickupFee     = 70
)

const (
	estimateMargin = 0.15

	highFloorThreshold  = 7
	highFloorMultiplier = 1.25

	xlVolumeFloor = 1500

	// Complexity guards: multi-signal jobs get a multiplier and, with
	// enough signals, a hard minimum. Only large/xl volumes qualify.
	complexityMultiplier = 1.18
	complexityBuffer     = 1.08
	complexityHardFloor  = 7800
	complexityFloorScore = 3
	complexityBoostScore = 2
)

var volumeSurcharges = map[string]int{
	"small":  0,
	"medium": 150,
	"large":  350,
	"xl":     600,
}

// extrasAdjustments are priced by internal condition keys; bot menu
// services map onto them via extrasServiceMap.
var extrasAdjustments = map[string]int{
	"narrow_stairs": 60,
	"no_parking":    40,
	"disassembly":   80,
	"extra_movers":  80,
	"packing":       50,
	"client_helps":  -60,
}

var extrasServiceMap = map[string]string{
	"loaders":  "extra_movers",
	"assembly": "disassembly",
	"packing":  "packing",
}

type routeTariff struct {
	Fee     int
	Minimum int
}

var routeTariffs = map[string]routeTariff{
	BandSameCity:         {Fee: 0, Minimum: 0},
	BandSameMetro:        {Fee: 150, Minimum: 0},
	BandInterRegionShort: {Fee: 500, Minimum: 1100},
	BandInterRegionLong:  {Fee: 900, Minimum: 1600},
	BandCrossCountry:     {Fee: 1500, Minimum: 2400},
}

// FloorInfo is a parsed floor answer for one loading or unloading point.
type FloorInfo struct {
	Floor       int
	HasElevator bool
}

// EstimateInput is everything pricing needs, already parsed.
type EstimateInput struct {
	VolumeCategory string
	Items          []session.ItemCount
	PickupFloors   []FloorInfo
	FloorTo        FloorInfo
	ExtraPickups   int
	Extras         []string
	Route          session.RouteInfo
	DistanceFactor float64
}

// ComputeEstimate prices a move and returns the min/max range with a full
// breakdown. The breakdown is stored on the lead and shown to operators,
// never to the client.
func ComputeEstimate(in EstimateInput) session.Estimate {
	guards := []string{}

	floorSurcharge := 0
	highFloorHit := false
	points := append(append([]FloorInfo{}, in.PickupFloors...), in.FloorTo)
	for _, p := range points {
		if p.HasElevator || p.Floor <= 1 {
			continue
		}
		s := (p.Floor - 1) * noElevatorPerFloor
		if p.Floor >= highFloorThreshold {
			s = int(math.Ceil(float64(s) * highFloorMultiplier))
			highFloorHit = true
		}
		floorSurcharge += s
	}
	if highFloorHit {
		guards = append(guards, "high_floor_surcharge")
	}

	extraPickups := in.ExtraPickups
	if extraPickups < 0 {
		extraPickups = 0
	}
	pickupFee := extraPickups * extraPickupFee
	volumeFee := volumeSurcharges[in.VolumeCategory]

	extrasTotal := 0
	for _, svc := range in.Extras {
		key := svc
		if mapped, ok := extrasServiceMap[svc]; ok {
			key = mapped
		}
		extrasTotal += extrasAdjustments[key]
	}

	itemsMid := 0.0
	for _, it := range in.Items {
		c, ok := catalog[it.Key]
		if !ok {
			continue
		}
		qty := it.Qty
		if qty < 1 {
			qty = 1
		}
		itemsMid += c.PriceMid() * float64(qty)
	}

	tariff := routeTariffs[in.Route.Band]
	distanceFactor := in.DistanceFactor
	if distanceFactor <= 0 {
		distanceFactor = 1.0
	}

	fixed := baseCallout + floorSurcharge + pickupFee + volumeFee + extrasTotal + tariff.Fee
	mid := (float64(fixed) + itemsMid) * distanceFactor

	score, triggers := complexityScore(in)
	heavyVolume := in.VolumeCategory == "large" || in.VolumeCategory == "xl"
	boosted := false
	if heavyVolume && score >= complexityBoostScore {
		mid *= complexityMultiplier * complexityBuffer
		boosted = true
		guards = append(guards, "complexity_multiplier")
	}

	min := int(math.Floor(mid * (1 - estimateMargin)))
	max := int(math.Ceil(mid * (1 + estimateMargin)))

	if tariff.Minimum > 0 && min < tariff.Minimum {
		min = tariff.Minimum
		guards = append(guards, "national_move_minimum")
	}
	if in.VolumeCategory == "xl" && min < xlVolumeFloor {
		min = xlVolumeFloor
		guards = append(guards, "xl_volume_floor")
	}
	if heavyVolume && score >= complexityFloorScore && min < complexityHardFloor {
		min = complexityHardFloor
		guards = append(guards, "complexity_hard_floor")
	}
	if max < min {
		max = min
	}

	return session.Estimate{
		Min:      min,
		Max:      max,
		Currency: "ILS",
		Breakdown: map[string]any{
			"base":                baseCallout,
			"floor_surcharge":     floorSurcharge,
			"pickup_fee":          pickupFee,
			"volume_surcharge":    volumeFee,
			"extras_adjustments":  extrasTotal,
			"items_mid":           itemsMid,
			"route_band":          in.Route.Band,
			"route_fee":           tariff.Fee,
			"distance_factor":     distanceFactor,
			"complexity_score":    score,
			"complexity_triggers": triggers,
			"complexity_applied":  boosted,
			"guards_applied":      guards,
		},
	}
}

// complexityScore counts independent difficulty signals on the job.
func complexityScore(in EstimateInput) (int, []string) {
	triggers := []string{}
	if in.VolumeCategory == "large" || in.VolumeCategory == "xl" {
		triggers = append(triggers, "heavy_volume")
	}
	for _, svc := range in.Extras {
		if svc == "assembly" {
			triggers = append(triggers, "assembly")
			break
		}
	}
	if in.ExtraPickups >= 1 {
		triggers = append(triggers, "multi_pickup")
	}
	switch in.Route.Band {
	case BandInterRegionShort, BandInterRegionLong, BandCrossCountry:
		triggers = append(triggers, "inter_region")
	}
	points := append(append([]FloorInfo{}, in.PickupFloors...), in.FloorTo)
	for _, p := range points {
		if !p.HasElevator && p.Floor >= 5 {
			triggers = append(triggers, "high_floor_no_elevator")
			break
		}
	}
	return len(triggers), triggers
}
