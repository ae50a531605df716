// Package matrix implements the client value scoring pipeline: adoption
// feature detection, value score calculation, and quadrant classification
// over uploaded engagement datasets.
package matrix

import "strings"

// Tier is a client's engagement tier, ordered from no product usage to
// full platform adoption. The numeric value doubles as the stage weight,
// so the mapping is total and order-preserving by construction.
type Tier int

const (
	TierUntouched Tier = iota
	TierFreemium
	TierDADirect
	TierOrders360Lite
	TierOrders360Full
)

var tierLabels = map[Tier]string{
	TierUntouched:     "Untouched",
	TierFreemium:      "Freemium",
	TierDADirect:      "DA-Direct",
	TierOrders360Lite: "Orders 360 Lite",
	TierOrders360Full: "Orders 360 Full",
}

// tierLookup keys are canonical forms: lowercased with separators removed,
// so "DA-Direct", "da direct", and "Da-direct" all resolve to the same tier.
var tierLookup = map[string]Tier{
	"untouched":     TierUntouched,
	"freemium":      TierFreemium,
	"dadirect":      TierDADirect,
	"orders360lite": TierOrders360Lite,
	"orders360full": TierOrders360Full,
}

// Label returns the tier's display name.
func (t Tier) Label() string { return tierLabels[t] }

// Stage returns the tier's numeric stage weight.
func (t Tier) Stage() float64 { return float64(t) }

// MaxStage is the stage weight of the highest tier.
func MaxStage() float64 { return float64(TierOrders360Full) }

// ParseTier resolves a raw cell value to a Tier. Matching ignores case,
// surrounding whitespace, and space/hyphen/underscore separators.
func ParseTier(label string) (Tier, bool) {
	t, ok := tierLookup[canonicalTier(label)]
	return t, ok
}

func canonicalTier(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// TierInfo describes one tier for API consumers.
type TierInfo struct {
	Label string  `json:"label"`
	Stage float64 `json:"stage"`
}

// Tiers lists the enumeration in ascending stage order.
func Tiers() []TierInfo {
	out := make([]TierInfo, 0, len(tierLabels))
	for t := TierUntouched; t <= TierOrders360Full; t++ {
		out = append(out, TierInfo{Label: t.Label(), Stage: t.Stage()})
	}
	return out
}
