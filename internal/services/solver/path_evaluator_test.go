package solver

import (
	"math/big"
	"testing"

	"github.com/spreadlabs/spread-engine/internal/domain"
)

func twoHopPath(first, second *domain.Pool, sell, mid, buy domain.Token) *domain.ExecutionPath {
	return &domain.ExecutionPath{
		Tokens: []domain.Token{sell, mid, buy},
		Pools:  []*domain.Pool{first, second},
	}
}

// TestSimulateTwoHopChain checks hop chaining: selling 1000e18 A through
// A/B2 (10000e18/20000e18) then B2/C (15000e18/10000e18).
func TestSimulateTwoHopChain(t *testing.T) {
	first := tpool("amm_1", "A", "B2", "10000000000000000000000", "20000000000000000000000")
	second := tpool("amm_2", "B2", "C", "15000000000000000000000", "10000000000000000000000")
	path := twoHopPath(first, second, "A", "B2", "C")

	res, err := NewPathEvaluator().Simulate(path, amt("1000000000000000000000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(res.Legs))
	}
	if got, want := res.Legs[0].ExecBuyAmount, amt("1818181818181818181818"); got.Cmp(want) != 0 {
		t.Errorf("leg 1 output = %s, want %s", got, want)
	}
	if got, want := res.Legs[1].ExecSellAmount, amt("1818181818181818181818"); got.Cmp(want) != 0 {
		t.Errorf("leg 2 input = %s, want %s", got, want)
	}
	if got, want := res.BuyAmount, amt("1081081081081081081081"); got.Cmp(want) != 0 {
		t.Errorf("final output = %s, want %s", got, want)
	}
	if !res.CanFill {
		t.Error("path should be fillable")
	}
}

func TestSimulateZeroAmount(t *testing.T) {
	pool := tpool("amm_1", "A", "C", "1000", "1000")
	path := &domain.ExecutionPath{Tokens: []domain.Token{"A", "C"}, Pools: []*domain.Pool{pool}}

	res, err := NewPathEvaluator().Simulate(path, new(big.Int))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.BuyAmount.Sign() != 0 {
		t.Errorf("zero input should yield zero output, got %s", res.BuyAmount)
	}
}

// TestMarginalRateDecreasing checks concavity: the marginal rate strictly
// decreases as more input is pushed through the path.
func TestMarginalRateDecreasing(t *testing.T) {
	first := tpool("amm_1", "A", "B", "10000000000000000000000", "20000000000000000000000")
	second := tpool("amm_2", "B", "C", "15000000000000000000000", "10000000000000000000000")
	path := twoHopPath(first, second, "A", "B", "C")
	eval := NewPathEvaluator()

	amounts := []string{
		"0",
		"1000000000000000000",
		"1000000000000000000000",
		"5000000000000000000000",
		"20000000000000000000000",
	}
	var prev *big.Rat
	for _, s := range amounts {
		rate, err := eval.MarginalRate(path, amt(s))
		if err != nil {
			t.Fatalf("unexpected error at %s: %v", s, err)
		}
		if rate.Sign() <= 0 {
			t.Fatalf("rate at %s should be positive", s)
		}
		if prev != nil && rate.Cmp(prev) >= 0 {
			t.Errorf("rate did not decrease at %s", s)
		}
		prev = rate
	}
}

// TestMarginalRateMatchesOutputDelta cross-checks the closed-form rate
// against the discrete output difference at one point.
func TestMarginalRateMatchesOutputDelta(t *testing.T) {
	pool := tpool("amm_1", "A", "C", "1000000000000", "2000000000000")
	path := &domain.ExecutionPath{Tokens: []domain.Token{"A", "C"}, Pools: []*domain.Pool{pool}}
	eval := NewPathEvaluator()

	x := amt("50000000000")
	rate, err := eval.MarginalRate(path, x)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out1, err := eval.Output(path, x)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out2, err := eval.Output(path, new(big.Int).Add(x, big.NewInt(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	delta := new(big.Rat).SetInt(new(big.Int).Sub(out2, out1))

	// discrete delta floors the continuous rate, so they agree within 1
	diff := new(big.Rat).Sub(rate, delta)
	if diff.Cmp(big.NewRat(-1, 1)) < 0 || diff.Cmp(big.NewRat(1, 1)) > 0 {
		t.Errorf("rate %s and output delta %s disagree by more than one unit",
			rate.FloatString(6), delta.FloatString(6))
	}
}
