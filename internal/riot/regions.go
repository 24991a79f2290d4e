package riot

import "strings"

// Riot routing regions accepted by account and match endpoints.
var Regions = []string{"americas", "europe", "asia", "sea"}

// URL/display slugs -> routing regions.
var slugToRegion = map[string]string{
	"na":   "americas",
	"eu":   "europe",
	"asia": "asia",
	"sea":  "sea",
}

var regionToSlug = map[string]string{
	"americas": "na",
	"europe":   "eu",
	"asia":     "asia",
	"sea":      "sea",
}

// Platform partitions per routing region, tried in order for
// platform-scoped endpoints (summoner, league). A 404 on one partition
// just means "try the next".
var regionPlatforms = map[string][]string{
	"americas": {"na1", "br1", "la1", "la2"},
	"europe":   {"euw1", "eun1", "tr1", "ru"},
	"asia":     {"kr", "jp1"},
	"sea":      {"oc1", "sg2", "tw2", "vn2"},
}

// Region maps a URL slug to a routing region, passing through values
// that are already routing regions.
func Region(slug string) string {
	if r, ok := slugToRegion[strings.ToLower(slug)]; ok {
		return r
	}
	return slug
}

// Slug maps a routing region back to its URL slug.
func Slug(region string) string {
	if s, ok := regionToSlug[strings.ToLower(region)]; ok {
		return s
	}
	return region
}

func validRegion(region string) bool {
	region = strings.ToLower(region)
	for _, r := range Regions {
		if r == region {
			return true
		}
	}
	return false
}
