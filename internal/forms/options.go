package forms

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Allowed values for the enumerated form fields.
var (
	Roles             = []string{"owner", "engineer", "architect"}
	SoilTypes         = []string{"clay", "sandy", "loamy", "rocky", "silty", "gravel"}
	SeismicZones      = []string{"II", "III", "IV", "V"}
	FloodRisks        = []string{"low", "medium", "high"}
	BuildingTypes     = []string{"residential", "commercial", "industrial", "mixed-use", "institutional"}
	Orientations      = []string{"north", "south", "east", "west", "north-east", "north-west", "south-east", "south-west"}
	StructuralSystems = []string{"rcc-frame", "steel-frame", "load-bearing", "composite"}
	TerrainRoughness  = []string{"open", "suburban", "urban", "dense-urban"}
)

// Snap maps free text onto the closest allowed option. Case and the
// space/underscore/hyphen distinction are ignored. Input too far from every
// option is returned trimmed and otherwise untouched.
func Snap(input string, options []string) string {
	in := strings.TrimSpace(input)
	if in == "" {
		return in
	}
	key := fold(in)
	best, bestDist := "", -1
	for _, opt := range options {
		o := fold(opt)
		if o == key {
			return opt
		}
		d := levenshtein.ComputeDistance(key, o)
		if bestDist < 0 || d < bestDist {
			best, bestDist = opt, d
		}
	}
	if bestDist < 0 {
		return in
	}
	maxlen := len(key)
	if l := len(fold(best)); l > maxlen {
		maxlen = l
	}
	if float64(bestDist)/float64(maxlen) < 0.4 {
		return best
	}
	return in
}

func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(s)
}
