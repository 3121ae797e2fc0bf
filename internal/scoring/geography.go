package scoring

import (
	"strings"

	"github.com/unations/matchengine/internal/contracts"
)

const (
	geoExactCity     = 100
	geoSameRegion    = 80
	geoBroaderRegion = 60
	geoBothRemote    = 70
	geoBaseline      = 40
)

// broaderRegions groups provinces and territories so that, for example, an
// Alberta supplier scores above baseline on a Saskatchewan tender.
var broaderRegions = map[string]string{
	"british columbia": "western",
	"bc":               "western",
	"alberta":          "prairie",
	"ab":               "prairie",
	"saskatchewan":     "prairie",
	"sk":               "prairie",
	"manitoba":         "prairie",
	"mb":               "prairie",
	"ontario":          "central",
	"on":               "central",
	"quebec":           "central",
	"qc":               "central",
	"new brunswick":    "atlantic",
	"nb":               "atlantic",
	"nova scotia":      "atlantic",
	"ns":               "atlantic",
	"prince edward island":      "atlantic",
	"pe":                        "atlantic",
	"newfoundland and labrador": "atlantic",
	"nl":                        "atlantic",
	"yukon":                 "northern",
	"yt":                    "northern",
	"northwest territories": "northern",
	"nt":                    "northern",
	"nunavut":               "northern",
	"nu":                    "northern",
}

// GeographicScore returns the best proximity tier across the candidate's
// locations: exact city 100, same region 80, same broader region 60, both
// remote 70, otherwise 40.
func GeographicScore(oppLoc contracts.Location, candLocs []contracts.Location) float64 {
	best := float64(geoBaseline)
	for _, loc := range candLocs {
		if tier := LocationAffinity(oppLoc, loc); tier > best {
			best = tier
		}
	}
	return best
}

// LocationAffinity scores the proximity of two locations on the same tier
// table used for opportunity matching. Also used for partner proximity in
// team composition.
func LocationAffinity(a, b contracts.Location) float64 {
	cityA, cityB := normalizePlace(a.City), normalizePlace(b.City)
	if cityA != "" && cityA == cityB {
		return geoExactCity
	}

	regionA, regionB := normalizePlace(a.Region), normalizePlace(b.Region)
	if regionA != "" && regionA == regionB {
		return geoSameRegion
	}

	if a.Remote && b.Remote {
		return geoBothRemote
	}

	if broaderA, ok := broaderRegions[regionA]; ok {
		if broaderB, ok := broaderRegions[regionB]; ok && broaderA == broaderB {
			return geoBroaderRegion
		}
	}

	return geoBaseline
}

// normalizePlace lowercases and trims a place name.
func normalizePlace(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
