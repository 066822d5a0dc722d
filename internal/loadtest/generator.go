package loadtest

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/gamekeep/gamekeep/pkg/logger"
	"github.com/google/uuid"
)

// Score distribution bands. Most players land mid-table; a thin elite tier
// keeps the top of the board contested.
const (
	bandCount    = 8
	casualMax    = 3_000
	midMin       = 3_000
	midRange     = 4_000
	strongMin    = 7_000
	strongRange  = 2_000
	eliteMin     = 9_000
	eliteRange   = 1_000
	anywhereMax  = 10_000
	anywhereBase = 1
)

func randomInt64(max int64) int64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(max))
	return n.Int64()
}

// generateSubmissions creates one score submission per generated player id.
func generateSubmissions(ctx context.Context, config *Config, stats *Stats) []Submission {
	logger.Get().Info(ctx, "generating submissions", logger.Int("numPlayers", config.NumPlayers))

	subs := make([]Submission, config.NumPlayers)
	for i := range subs {
		subs[i] = Submission{
			PlayerID: uuid.New().String(),
			Value:    generateBandedValue(),
		}
	}

	stats.SubmissionsGenerated = len(subs)
	logger.Get().Info(ctx, "generated submissions", logger.Int("count", len(subs)))
	return subs
}

// generateBandedValue draws a value from one of the distribution bands.
func generateBandedValue() int64 {
	switch randomInt64(bandCount) {
	case 0, 1, 2:
		// Mid-table, the most common band.
		return midMin + randomInt64(midRange)
	case 3, 4:
		// Casual tail.
		return anywhereBase + randomInt64(casualMax)
	case 5:
		return strongMin + randomInt64(strongRange)
	case 6:
		// Elite tier, rare.
		return eliteMin + randomInt64(eliteRange)
	default:
		return anywhereBase + randomInt64(anywhereMax)
	}
}
