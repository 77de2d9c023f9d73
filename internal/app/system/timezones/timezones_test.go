package timezones

import "testing"

func TestLoadAll(t *testing.T) {
	if err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	zones, err := All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(zones) == 0 {
		t.Fatal("expected zones")
	}
	seen := map[string]bool{}
	for _, z := range zones {
		if z.ID == "" || z.Label == "" {
			t.Errorf("incomplete zone %+v", z)
		}
		if seen[z.ID] {
			t.Errorf("duplicate zone %q", z.ID)
		}
		seen[z.ID] = true
	}
}

func TestValidAndLabel(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
		label string
	}{
		{"UTC", true, "UTC"},
		{"America/New_York", true, "Eastern Time (New York)"},
		{"Europe/London", true, "London"},
		{"Invalid/Zone", false, "Invalid/Zone"},
		{"", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := Valid(tt.id); got != tt.valid {
				t.Errorf("Valid(%q) = %v, want %v", tt.id, got, tt.valid)
			}
			if got := Label(tt.id); got != tt.label {
				t.Errorf("Label(%q) = %q, want %q", tt.id, got, tt.label)
			}
		})
	}
}

func TestGroupsSorted(t *testing.T) {
	groups, err := Groups()
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}
	for i, g := range groups {
		if i > 0 && g.Region < groups[i-1].Region {
			t.Errorf("region %q after %q", g.Region, groups[i-1].Region)
		}
		for j := 1; j < len(g.Zones); j++ {
			if g.Zones[j].Label < g.Zones[j-1].Label {
				t.Errorf("%s: %q after %q", g.Region, g.Zones[j].Label, g.Zones[j-1].Label)
			}
		}
	}
}
