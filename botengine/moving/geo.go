package moving

import (
	"math"

	"github.com/moveline/leadgate/domains/session"
)

// Route bands, ordered by effort. Unresolvable addresses fall back to
// inter_region_short so pricing stays conservative without blocking.
const (
	BandSameCity         = "same_city"
	BandSameMetro        = "same_metro"
	BandInterRegionShort = "inter_region_short"
	BandInterRegionLong  = "inter_region_long"
	BandCrossCountry     = "cross_country"
)

// Service home base used for the distance factor: jobs fully inside the
// Haifa operating radius move at factor 1.0, anything else at 1.2.
const (
	baseLat      = 32.794
	baseLon      = 34.989
	baseRadiusKm = 15.0

	nearFactor = 1.0
	farFactor  = 1.2
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two coordinates.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// DistanceFactor returns the worst-case distance multiplier across all
// shared geo points. No points means no penalty.
func DistanceFactor(points map[string]session.GeoPoint) float64 {
	if len(points) == 0 {
		return nearFactor
	}
	factor := nearFactor
	for _, p := range points {
		if HaversineKm(baseLat, baseLon, p.Lat, p.Lon) > baseRadiusKm {
			factor = farFactor
		}
	}
	return factor
}

// macroRegions groups CBS district codes into coarse areas for route
// banding.
var macroRegions = map[int]string{
	21: "north", 22: "north", 23: "north", 24: "north", 25: "north", 29: "north",
	31: "haifa", 32: "haifa",
	41: "center", 42: "center", 43: "center", 44: "center",
	51: "center", 52: "center", 53: "center",
	11: "jerusalem",
	61: "south", 62: "south",
}

// metroClusters are district groups treated as one metropolitan area.
// Eilat shares the southern district but is excluded by code.
var metroClusters = [][]int{
	{51, 52, 53}, // Gush Dan
	{31},         // Haifa and the Krayot
	{11},         // Jerusalem ring
	{62},         // Beer Sheva area
}

// longPairs are macro-region pairs far enough apart to be a long
// inter-region haul.
var longPairs = map[[2]string]bool{
	{"north", "south"}:     true,
	{"north", "jerusalem"}: true,
	{"haifa", "south"}:     true,
}

func sameMetro(a, b Locality) bool {
	if a.Code == eilatCode || b.Code == eilatCode {
		return false
	}
	for _, cluster := range metroClusters {
		inA, inB := false, false
		for _, region := range cluster {
			if a.Region == region {
				inA = true
			}
			if b.Region == region {
				inB = true
			}
		}
		if inA && inB {
			return true
		}
	}
	return false
}

func isLongPair(a, b string) bool {
	return longPairs[[2]string{a, b}] || longPairs[[2]string{b, a}]
}

// ClassifyRoute resolves both addresses to localities and assigns a route
// band. Either endpoint failing to resolve yields the short inter-region
// band with no locality names.
func ClassifyRoute(addrFrom, addrTo string) session.RouteInfo {
	from, okFrom := FindLocality(addrFrom)
	to, okTo := FindLocality(addrTo)
	if !okFrom || !okTo {
		info := session.RouteInfo{Band: BandInterRegionShort}
		if okFrom {
			info.FromLocality = from.En
			info.FromRegion = macroRegions[from.Region]
		}
		if okTo {
			info.ToLocality = to.En
			info.ToRegion = macroRegions[to.Region]
		}
		return info
	}

	info := session.RouteInfo{
		FromLocality: from.En,
		ToLocality:   to.En,
		FromRegion:   macroRegions[from.Region],
		ToRegion:     macroRegions[to.Region],
	}

	switch {
	case from.Code == to.Code:
		info.Band = BandSameCity
	case from.Code == eilatCode || to.Code == eilatCode:
		info.Band = BandCrossCountry
	case sameMetro(from, to):
		info.Band = BandSameMetro
	case info.FromRegion != info.ToRegion && isLongPair(info.FromRegion, info.ToRegion):
		info.Band = BandInterRegionLong
	default:
		info.Band = BandInterRegionShort
	}
	return info
}
