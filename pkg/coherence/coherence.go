package coherence

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"
)

// PhiPi is the combined golden ratio and pi factor the score is built on.
const PhiPi = "5.083203692"

// beautimusThreshold is the coherence above which AETH is minted.
const beautimusThreshold = "1.1"

// maxCostReduction caps EvaluateCost so a cost never reaches zero.
const maxCostReduction = "0.99"

var ErrNegativeDensity = errors.New("entanglement density must not be negative")

// Score is the outcome of one coherence evaluation. All values are exact.
type Score struct {
	Density   *big.Rat
	Coherence *big.Rat
	Beautimus *big.Rat
	AETH      *big.Rat
}

func rat(s string) *big.Rat {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		panic("coherence: bad constant " + s)
	}
	return r
}

// ParseDensity reads a non-negative decimal such as "0.1" or "1e-2".
func ParseDensity(s string) (*big.Rat, error) {
	d, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok {
		return nil, fmt.Errorf("invalid entanglement density %q", s)
	}
	if d.Sign() < 0 {
		return nil, ErrNegativeDensity
	}
	return d, nil
}

// Compute returns 1 + PhiPi*density.
func Compute(density *big.Rat) *big.Rat {
	c := new(big.Rat).Mul(rat(PhiPi), density)
	return c.Add(c, big.NewRat(1, 1))
}

// Beautimus rates a coherence value and derives the AETH mint amount. Both are
// zero at or below the threshold.
func Beautimus(coherence *big.Rat) (rating, aeth *big.Rat) {
	if coherence.Cmp(rat(beautimusThreshold)) <= 0 {
		return new(big.Rat), new(big.Rat)
	}
	above := new(big.Rat).Sub(coherence, big.NewRat(1, 1))
	rating = new(big.Rat).Mul(above, big.NewRat(100, 1))
	aeth = new(big.Rat).Mul(above, big.NewRat(10, 1))
	return rating, aeth
}

// EvaluateCost reduces cost by coherence*PhiPi/10, clamped to [0, 0.99].
func EvaluateCost(cost, coherence *big.Rat) *big.Rat {
	reduction := new(big.Rat).Mul(coherence, rat(PhiPi))
	reduction.Quo(reduction, big.NewRat(10, 1))
	if reduction.Sign() < 0 {
		reduction.SetInt64(0)
	}
	if limit := rat(maxCostReduction); reduction.Cmp(limit) > 0 {
		reduction = limit
	}
	factor := new(big.Rat).Sub(big.NewRat(1, 1), reduction)
	return factor.Mul(factor, cost)
}

// Evaluate runs the full scoring for one density.
func Evaluate(density *big.Rat) *Score {
	c := Compute(density)
	rating, aeth := Beautimus(c)
	return &Score{Density: density, Coherence: c, Beautimus: rating, AETH: aeth}
}

// PhiScore scales the coherence to the integer the setter takes, rounding half
// away from zero: coherence 1.5083203692 becomes 1508.
func (s *Score) PhiScore() *big.Int {
	scaled := new(big.Rat).Mul(s.Coherence, big.NewRat(common.PhiScoreScale, 1))
	v, _ := new(big.Int).SetString(scaled.FloatString(0), 10)
	return v
}
