package srs

import (
	"math"
	"time"

	"github.com/phrazzld/scry-trainer/internal/domain"
)

const (
	// minStability keeps stability strictly positive so the forgetting
	// curve never divides by zero.
	minStability = 0.001

	// day is the unit of every interval the Review state produces.
	day = 24 * time.Hour

	// referenceRetention is the recall probability stability is defined against.
	referenceRetention = 0.9

	// newCardEasyDelay is the first-exposure delay when a new card is rated
	// Easy or has no learning steps left to take.
	newCardEasyDelay = day
)

// model holds the weights and the forgetting-curve constants derived from them.
type model struct {
	w      [WeightCount]float64
	decay  float64 // -w20
	factor float64 // 0.9^(1/decay) - 1, so that R(S, S) = 0.9
}

func newModel(w [WeightCount]float64) model {
	decay := -w[20]
	return model{
		w:      w,
		decay:  decay,
		factor: math.Pow(referenceRetention, 1/decay) - 1,
	}
}

// retrievability computes the probability of recall after elapsedDays for a
// memory of the given stability.
//
// The forgetting curve is a power law:
//
//	R(t, S) = (1 + factor * t / S) ^ decay
//
// Returns 0 for a non-positive stability.
func (m *model) retrievability(elapsedDays, stability float64) float64 {
	if stability <= 0 {
		return 0
	}
	return math.Pow(1+m.factor*elapsedDays/stability, m.decay)
}

// initStability returns the seed stability for a first rating: w[G-1].
func (m *model) initStability(r domain.Rating) float64 {
	return clampStability(m.w[r-1])
}

// initDifficulty returns the seed difficulty for a first rating.
//
//	D0(G) = w4 - e^(w5 * (G - 1)) + 1
//
// The unclamped form is the mean-reversion target of nextDifficulty.
func (m *model) initDifficulty(r domain.Rating, clamp bool) float64 {
	d := m.w[4] - math.Exp(m.w[5]*float64(r-1)) + 1
	if clamp {
		return clampDifficulty(d)
	}
	return d
}

// nextDifficulty computes the difficulty after a review.
//
// Parameters:
//   - d: the difficulty before the review, in [1, 10]
//   - r: the rating given
//
// Returns:
//   - the new difficulty, clamped to [1, 10]
//
// Algorithm behavior:
//   - Again and Hard raise difficulty, Good leaves it nearly unchanged and
//     Easy lowers it: delta = -w6 * (G - 3)
//   - The step shrinks linearly as difficulty approaches 10: d + delta * (10 - d) / 9
//   - A w7-weighted pull toward D0(Easy) keeps difficulty from sticking at the bounds
func (m *model) nextDifficulty(d float64, r domain.Rating) float64 {
	delta := -m.w[6] * (float64(r) - 3)
	damped := d + delta*(10-d)/9
	reverted := m.w[7]*m.initDifficulty(domain.Easy, false) + (1-m.w[7])*damped
	return clampDifficulty(reverted)
}

// recallStability computes stability after a successful recall (Hard, Good
// or Easy) at least one day after the previous review.
//
//	S' = S * (1 + e^w8 * (11 - D) * S^-w9 * (e^((1 - R) * w10) - 1) * hard * easy)
//
// hard is w15 for Hard (else 1); easy is w16 for Easy (else 1). Lower
// retrievability at review time yields larger growth.
func (m *model) recallStability(d, s, r float64, rating domain.Rating) float64 {
	hardPenalty := 1.0
	if rating == domain.Hard {
		hardPenalty = m.w[15]
	}
	easyBonus := 1.0
	if rating == domain.Easy {
		easyBonus = m.w[16]
	}
	growth := math.Exp(m.w[8]) *
		(11 - d) *
		math.Pow(s, -m.w[9]) *
		(math.Exp((1-r)*m.w[10]) - 1) *
		hardPenalty * easyBonus
	return clampStability(s * (1 + growth))
}

// forgetStability computes stability after a lapse.
//
//	long  = w11 * D^-w12 * ((S + 1)^w13 - 1) * e^((1 - R) * w14)
//	short = S / e^(w17 * w18)
//	S'    = min(long, short)
//
// The short bound guarantees a lapse never increases stability.
func (m *model) forgetStability(d, s, r float64) float64 {
	long := m.w[11] *
		math.Pow(d, -m.w[12]) *
		(math.Pow(s+1, m.w[13]) - 1) *
		math.Exp((1-r)*m.w[14])
	short := s / math.Exp(m.w[17]*m.w[18])
	return clampStability(math.Min(long, short))
}

// shortTermStability computes stability after a same-day (re)learning review.
//
//	SInc = e^(w17 * (G - 3 + w18)) * S^-w19
//
// For Good and Easy the increment is floored at 1 so a successful step never
// loses stability.
func (m *model) shortTermStability(s float64, r domain.Rating) float64 {
	inc := math.Exp(m.w[17]*(float64(r)-3+m.w[18])) * math.Pow(s, -m.w[19])
	if r == domain.Good || r == domain.Easy {
		inc = math.Max(inc, 1)
	}
	return clampStability(s * inc)
}

// nextInterval converts stability into whole days so that recall probability
// at the due date equals desiredRetention.
//
//	I = round(S / factor * (DR^(1/decay) - 1))
//
// The result is clamped to [1, maxInterval].
func (m *model) nextInterval(stability, desiredRetention float64, maxInterval int) int {
	ivl := stability / m.factor * (math.Pow(desiredRetention, 1/m.decay) - 1)
	days := int(math.Round(ivl))
	if days < 1 {
		days = 1
	}
	if days > maxInterval {
		days = maxInterval
	}
	return days
}

func clampStability(s float64) float64 {
	return math.Max(s, minStability)
}

func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, domain.MinDifficulty), domain.MaxDifficulty)
}

// elapsedDays returns the fractional and whole days between two instants.
// Callers guarantee to is not before from.
func elapsedDays(from, to time.Time) (float64, int) {
	elapsed := to.Sub(from)
	return elapsed.Hours() / 24, int(elapsed / day)
}

// wholeDays reports how many full days a delay spans; sub-day learning steps
// schedule zero days.
func wholeDays(d time.Duration) int {
	return int(d / day)
}
