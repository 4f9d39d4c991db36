package stable

import (
	"errors"
	"math/big"
	"testing"

	"liquidityEngine/internal/amm"
	"liquidityEngine/internal/fixedpoint"
)

func e18(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), fixedpoint.One())
}

func TestComputeInvariantBalanced(t *testing.T) {
	d, err := ComputeInvariant(big.NewInt(200_000), []*big.Int{e18(1_000_000), e18(1_000_000)})
	if err != nil {
		t.Fatalf("invariant: %v", err)
	}
	if d.Cmp(e18(2_000_000)) != 0 {
		t.Fatalf("balanced invariant should equal the sum, got %s", d)
	}
}

func TestComputeInvariantThreeTokens(t *testing.T) {
	d, err := ComputeInvariant(big.NewInt(200_000), []*big.Int{e18(1_000_000), e18(2_000_000), e18(3_000_000)})
	if err != nil {
		t.Fatalf("invariant: %v", err)
	}
	want, _ := new(big.Int).SetString("5996690543963657169377972", 10)
	if d.Cmp(want) != 0 {
		t.Fatalf("invariant mismatch: %s != %s", d, want)
	}
}

func TestComputeInvariantMonotonic(t *testing.T) {
	amp := big.NewInt(100_000)
	prev := big.NewInt(0)
	for _, b := range []int64{1, 10, 1_000, 100_000, 10_000_000} {
		d, err := ComputeInvariant(amp, []*big.Int{e18(b), e18(50_000)})
		if err != nil {
			t.Fatalf("invariant for %d: %v", b, err)
		}
		if d.Cmp(prev) < 0 {
			t.Fatalf("invariant decreased at balance %d: %s < %s", b, d, prev)
		}
		prev = d
	}
}

func TestComputeInvariantEdgeCases(t *testing.T) {
	d, err := ComputeInvariant(big.NewInt(200_000), []*big.Int{big.NewInt(0), big.NewInt(0)})
	if err != nil || d.Sign() != 0 {
		t.Fatalf("empty pool should have zero invariant, got %v err %v", d, err)
	}
	if _, err := ComputeInvariant(big.NewInt(200_000), []*big.Int{e18(1), big.NewInt(0)}); !errors.Is(err, ErrZeroBalance) {
		t.Fatalf("expected ErrZeroBalance, got %v", err)
	}
	if _, err := ComputeInvariant(big.NewInt(999), []*big.Int{e18(1), e18(1)}); !errors.Is(err, ErrInvalidAmp) {
		t.Fatalf("expected ErrInvalidAmp, got %v", err)
	}
}

func TestComputeOutGivenExactIn(t *testing.T) {
	amp := big.NewInt(200_000)
	balances := []*big.Int{e18(1_000_000), e18(1_000_000)}
	d, err := ComputeInvariant(amp, balances)
	if err != nil {
		t.Fatalf("invariant: %v", err)
	}
	out, err := ComputeOutGivenExactIn(amp, balances, 0, 1, e18(999), d)
	if err != nil {
		t.Fatalf("out given in: %v", err)
	}
	want, _ := new(big.Int).SetString("998995034840667078927", 10)
	if out.Cmp(want) != 0 {
		t.Fatalf("amount out mismatch: %s != %s", out, want)
	}
	if balances[0].Cmp(e18(1_000_000)) != 0 {
		t.Fatalf("balances mutated: %s", balances[0])
	}
}

func TestComputeInGivenExactOut(t *testing.T) {
	amp := big.NewInt(200_000)
	balances := []*big.Int{e18(1_000_000), e18(1_000_000)}
	d, _ := ComputeInvariant(amp, balances)

	in, err := ComputeInGivenExactOut(amp, balances, 0, 1, e18(1000), d)
	if err != nil {
		t.Fatalf("in given out: %v", err)
	}
	want, _ := new(big.Int).SetString("1000004975154055917346", 10)
	if in.Cmp(want) != 0 {
		t.Fatalf("amount in mismatch: %s != %s", in, want)
	}

	if _, err := ComputeInGivenExactOut(amp, balances, 0, 1, e18(1_000_000), d); !errors.Is(err, amm.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestPoolComputeInvariantRounding(t *testing.T) {
	p, err := NewPool(big.NewInt(200_000))
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	balances := []*big.Int{e18(1_000_000), e18(1_000_000)}
	down, err := p.ComputeInvariant(balances, fixedpoint.RoundDown)
	if err != nil {
		t.Fatalf("round down: %v", err)
	}
	up, err := p.ComputeInvariant(balances, fixedpoint.RoundUp)
	if err != nil {
		t.Fatalf("round up: %v", err)
	}
	if new(big.Int).Sub(up, down).Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("round up should add one unit: %s vs %s", up, down)
	}

	zero, err := p.ComputeInvariant([]*big.Int{big.NewInt(0), big.NewInt(0)}, fixedpoint.RoundUp)
	if err != nil || zero.Sign() != 0 {
		t.Fatalf("zero invariant should stay zero, got %v err %v", zero, err)
	}
}

func TestPoolComputeBalanceUnitRatio(t *testing.T) {
	p := Pool{Amp: big.NewInt(200_000)}
	balances := []*big.Int{e18(1_000_000), e18(1_000_000)}
	got, err := p.ComputeBalance(balances, 0, fixedpoint.One())
	if err != nil {
		t.Fatalf("compute balance: %v", err)
	}
	diff := new(big.Int).Sub(got, balances[0])
	if diff.Sign() < 0 || diff.Cmp(big.NewInt(10)) > 0 {
		t.Fatalf("unit ratio should reproduce the balance, got %s", got)
	}
}

func TestNewPoolRejectsSmallAmp(t *testing.T) {
	if _, err := NewPool(big.NewInt(1)); !errors.Is(err, ErrInvalidAmp) {
		t.Fatalf("expected ErrInvalidAmp, got %v", err)
	}
}

func TestInvariantRatioBoundsAreFresh(t *testing.T) {
	MaxInvariantRatio().SetInt64(0)
	MinInvariantRatio().SetInt64(0)
	if MaxInvariantRatio().Cmp(e18(5)) != 0 {
		t.Fatalf("max invariant ratio changed: %s", MaxInvariantRatio())
	}
	if MinInvariantRatio().String() != "600000000000000000" {
		t.Fatalf("min invariant ratio changed: %s", MinInvariantRatio())
	}
}
