package utils

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 1, 10, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical ranges", at(10, 0), at(11, 0), at(10, 0), at(11, 0), true},
		{"new start inside existing", at(10, 0), at(12, 0), at(11, 0), at(13, 0), true},
		{"new end inside existing", at(10, 0), at(12, 0), at(9, 0), at(11, 0), true},
		{"full containment", at(10, 0), at(12, 0), at(10, 30), at(11, 30), true},
		{"outer containment", at(10, 30), at(11, 30), at(10, 0), at(12, 0), true},
		{"back to back", at(10, 0), at(11, 0), at(11, 0), at(12, 0), false},
		{"back to back reversed", at(11, 0), at(12, 0), at(10, 0), at(11, 0), false},
		{"disjoint", at(8, 0), at(9, 0), at(10, 0), at(11, 0), false},
		{"one minute overlap", at(10, 0), at(11, 1), at(11, 0), at(12, 0), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Overlaps(c.aStart, c.aEnd, c.bStart, c.bEnd); got != c.want {
				t.Errorf("Overlaps = %v, want %v", got, c.want)
			}
		})
	}
}

// The predicate must not care which interval is "existing" and which
// is "new".
func TestOverlapsSymmetry(t *testing.T) {
	starts := []time.Time{at(8, 0), at(9, 30), at(10, 0), at(11, 0)}
	for _, s1 := range starts {
		for _, s2 := range starts {
			e1 := s1.Add(90 * time.Minute)
			e2 := s2.Add(45 * time.Minute)
			if Overlaps(s1, e1, s2, e2) != Overlaps(s2, e2, s1, e1) {
				t.Errorf("Overlaps not symmetric for (%v,%v) vs (%v,%v)", s1, e1, s2, e2)
			}
		}
	}
}

func TestToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	local := time.Date(2025, 1, 10, 13, 0, 0, 0, loc)
	got := ToUTC(local)
	if got.Location() != time.UTC {
		t.Fatalf("location = %v, want UTC", got.Location())
	}
	if got.Hour() != 10 {
		t.Errorf("hour = %d, want 10", got.Hour())
	}
	if !got.Equal(local) {
		t.Error("normalization must not change the instant")
	}
}
