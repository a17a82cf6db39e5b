package fleet

import (
	"math/rand/v2"
	"regexp"
	"testing"
	"unicode/utf8"

	"safetaxi/internal/types"
)

var phonePattern = regexp.MustCompile(`^010-\d{4}-\d{4}$`)

func TestGeneratePlate_Format(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1))
	seenLen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		plate := GeneratePlate(rng)
		runes := []rune(plate)
		n := utf8.RuneCountInString(plate)
		if n != 7 && n != 8 {
			t.Fatalf("plate %q has %d runes, want 7 or 8", plate, n)
		}
		seenLen[n] = true

		prefix := n - 5
		for j, r := range runes {
			switch {
			case j == prefix:
				if r < hangulFirst || r > hangulLast {
					t.Fatalf("plate %q: rune %q outside Hangul block", plate, r)
				}
			case r < '0' || r > '9':
				t.Fatalf("plate %q: expected digit at %d, got %q", plate, j, r)
			}
		}
	}
	if !seenLen[7] || !seenLen[8] {
		t.Errorf("expected both 7 and 8 rune plates, saw %v", seenLen)
	}
}

func TestGenerator_Fleet(t *testing.T) {
	center := types.Point{Lat: 37.4482020408321, Lng: 126.651415033662}
	gen := NewGenerator(rand.New(rand.NewPCG(3, 4)))

	taxis := gen.Fleet(center, 1.0, 5)
	if len(taxis) != 5 {
		t.Fatalf("expected 5 taxis, got %d", len(taxis))
	}
	ids := map[types.ID]bool{}
	for _, tx := range taxis {
		if ids[tx.ID] {
			t.Errorf("duplicate id %s", tx.ID)
		}
		ids[tx.ID] = true
		if !phonePattern.MatchString(tx.DriverPhone) {
			t.Errorf("phone %q does not match 010-XXXX-XXXX", tx.DriverPhone)
		}
		if utf8.RuneCountInString(tx.DriverName) != 3 {
			t.Errorf("driver name %q should be 3 syllables", tx.DriverName)
		}
		if tx.Acceptance != 0 {
			t.Errorf("new taxi should have zero acceptance, got %d", tx.Acceptance)
		}
		if tx.Position != tx.Position.Round6() {
			t.Errorf("position %+v not rounded to 6 decimals", tx.Position)
		}
	}
}
