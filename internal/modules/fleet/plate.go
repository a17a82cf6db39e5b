// README: Random demo data: licence plates, driver names and phone numbers.
package fleet

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"safetaxi/internal/modules/location"
	"safetaxi/internal/types"
)

const (
	hangulFirst = 0xAC00
	hangulLast  = 0xD7A3
)

var (
	surnames   = []rune("김이박최정강조윤장임한오서신권황안송류홍")
	givenNames = []rune("민서준지현우도윤하은수연호영진성태유재")
)

// GeneratePlate returns 2 or 3 digits, one Hangul syllable and 4 digits with
// no separator, e.g. "12가3456" or "123허4567". Plates are not unique.
func GeneratePlate(rng *rand.Rand) string {
	var b strings.Builder
	writeDigits(&b, rng, 2+rng.IntN(2))
	b.WriteRune(rune(hangulFirst + rng.IntN(hangulLast-hangulFirst+1)))
	writeDigits(&b, rng, 4)
	return b.String()
}

func writeDigits(b *strings.Builder, rng *rand.Rand, n int) {
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + rng.IntN(10)))
	}
}

func generateDriverName(rng *rand.Rand) string {
	return string([]rune{
		surnames[rng.IntN(len(surnames))],
		givenNames[rng.IntN(len(givenNames))],
		givenNames[rng.IntN(len(givenNames))],
	})
}

func generatePhone(rng *rand.Rand) string {
	return fmt.Sprintf("010-%04d-%04d", rng.IntN(10000), rng.IntN(10000))
}

// Generator fabricates demo taxis. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator returns a Generator drawing from rng; nil seeds a fresh PCG source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng, now: time.Now}
}

// roundSlackKm bounds how far Round6 can move a point (about 0.08 m).
const roundSlackKm = 1e-4

// Fleet places n taxis uniformly within radiusKm of center. Draws are pulled in
// by roundSlackKm so the rounded positions still lie inside radiusKm.
func (g *Generator) Fleet(center types.Point, radiusKm float64, n int) []Taxi {
	g.mu.Lock()
	defer g.mu.Unlock()

	drawKm := max(radiusKm-roundSlackKm, 0)
	now := g.now().UTC()
	taxis := make([]Taxi, n)
	for i := range taxis {
		taxis[i] = Taxi{
			ID:          types.ID(uuid.NewString()),
			Plate:       GeneratePlate(g.rng),
			Position:    location.RandomPoint(g.rng, center, drawKm).Round6(),
			DriverName:  generateDriverName(g.rng),
			DriverPhone: generatePhone(g.rng),
			CreatedAt:   now,
		}
	}
	return taxis
}
