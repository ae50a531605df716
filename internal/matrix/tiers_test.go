package matrix

import "testing"

func TestParseTier(t *testing.T) {
	tests := []struct {
		input    string
		wantTier Tier
		wantOK   bool
	}{
		{"Untouched", TierUntouched, true},
		{"untouched", TierUntouched, true},
		{"  FREEMIUM  ", TierFreemium, true},
		{"DA-Direct", TierDADirect, true},
		{"da direct", TierDADirect, true},
		{"Da-direct", TierDADirect, true},
		{"Orders 360 Lite", TierOrders360Lite, true},
		{"orders 360 lite", TierOrders360Lite, true},
		{"Orders360 Lite", TierOrders360Lite, true},
		{"Orders 360 Full", TierOrders360Full, true},
		{"orders_360_full", TierOrders360Full, true},
		{"Legacy", 0, false},
		{"", 0, false},
		{"yes", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tier, ok := ParseTier(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseTier(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && tier != tt.wantTier {
				t.Errorf("ParseTier(%q) = %v, want %v", tt.input, tier, tt.wantTier)
			}
		})
	}
}

func TestTierOrderPreserved(t *testing.T) {
	ordered := []Tier{TierUntouched, TierFreemium, TierDADirect, TierOrders360Lite, TierOrders360Full}

	for i := 1; i < len(ordered); i++ {
		if ordered[i].Stage() <= ordered[i-1].Stage() {
			t.Errorf("stage order broken: %s (%.0f) <= %s (%.0f)",
				ordered[i].Label(), ordered[i].Stage(), ordered[i-1].Label(), ordered[i-1].Stage())
		}
	}

	if MaxStage() != TierOrders360Full.Stage() {
		t.Errorf("MaxStage() = %v, want %v", MaxStage(), TierOrders360Full.Stage())
	}
}

func TestTiersListing(t *testing.T) {
	tiers := Tiers()

	if len(tiers) != 5 {
		t.Fatalf("Tiers() length = %d, want 5", len(tiers))
	}
	if tiers[0].Label != "Untouched" || tiers[0].Stage != 0 {
		t.Errorf("first tier = %+v, want Untouched/0", tiers[0])
	}
	if tiers[4].Label != "Orders 360 Full" || tiers[4].Stage != 4 {
		t.Errorf("last tier = %+v, want Orders 360 Full/4", tiers[4])
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].Stage <= tiers[i-1].Stage {
			t.Errorf("Tiers() not ascending at index %d", i)
		}
	}
}
