package scaling

import (
	"math/big"
	"testing"

	"liquidityEngine/internal/fixedpoint"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("invalid int: %s", s)
	}
	return v
}

func TestToScaled18UnitRate(t *testing.T) {
	sf := mustBig(t, "1000000000000000000")
	rate := mustBig(t, "1000000000000000000")

	if got := ToScaled18(big.NewInt(1), sf, rate, fixedpoint.RoundDown); got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("round down: got %s want 1", got)
	}
	if got := ToScaled18(big.NewInt(1), sf, rate, fixedpoint.RoundUp); got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("round up exact: got %s want 1", got)
	}
}

func TestToScaled18NonUnitRate(t *testing.T) {
	sf := mustBig(t, "1000000000000000000")
	rate := mustBig(t, "1000000000000000001")

	down := ToScaled18(big.NewInt(1), sf, rate, fixedpoint.RoundDown)
	up := ToScaled18(big.NewInt(1), sf, rate, fixedpoint.RoundUp)
	if down.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("round down: got %s want 1", down)
	}
	if new(big.Int).Sub(up, down).Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("round up should be one above round down: up=%s down=%s", up, down)
	}

	// No remainder: 1e18 * (1e18+1) / 1e18 divides exactly.
	amount := mustBig(t, "1000000000000000000")
	down = ToScaled18(amount, sf, rate, fixedpoint.RoundDown)
	up = ToScaled18(amount, sf, rate, fixedpoint.RoundUp)
	if down.Cmp(up) != 0 {
		t.Fatalf("exact conversion should not round: up=%s down=%s", up, down)
	}
}

func TestDecimalScaling(t *testing.T) {
	sf := ScalingFactorForDecimals(6)
	if sf.String() != "1000000000000000000000000000000" {
		t.Fatalf("scaling factor: got %s", sf)
	}
	rate := fixedpoint.One()

	scaled := ToScaled18ApplyRateRoundDown(big.NewInt(1_500_000), sf, rate)
	if scaled.String() != "1500000000000000000" {
		t.Fatalf("scaled: got %s", scaled)
	}
	raw := ToRawUndoRateRoundDown(scaled, sf, rate)
	if raw.Int64() != 1_500_000 {
		t.Fatalf("raw: got %s", raw)
	}

	// Dust below one raw unit is dropped going out and charged going in.
	dusty := new(big.Int).Add(scaled, big.NewInt(1))
	if got := ToRawUndoRateRoundDown(dusty, sf, rate); got.Int64() != 1_500_000 {
		t.Fatalf("round down dust: got %s", got)
	}
	if got := ToRawUndoRateRoundUp(dusty, sf, rate); got.Int64() != 1_500_001 {
		t.Fatalf("round up dust: got %s", got)
	}
}

func TestRoundTripNeverFavorsCaller(t *testing.T) {
	sf := ScalingFactorForDecimals(6)
	rates := []*big.Int{
		mustBig(t, "1000000000000000000"),
		mustBig(t, "1000000000000000001"),
		mustBig(t, "1051234567890123456"),
		mustBig(t, "999999999999999999"),
	}
	amounts := []int64{1, 7, 999, 1_000_003, 123_456_789}

	for _, rate := range rates {
		for _, amount := range amounts {
			x := big.NewInt(amount)
			scaled := ToScaled18ApplyRateRoundDown(x, sf, rate)
			back := ToRawUndoRateRoundDown(scaled, sf, rate)
			if back.Cmp(x) > 0 {
				t.Fatalf("round trip grew: rate=%s amount=%d back=%s", rate, amount, back)
			}
			diff := new(big.Int).Sub(x, back)
			if diff.Cmp(big.NewInt(1)) > 0 {
				t.Fatalf("round trip lost more than one unit: rate=%s amount=%d back=%s", rate, amount, back)
			}
		}
	}
}

func TestComputeRateRoundUp(t *testing.T) {
	exact := mustBig(t, "2000000000000000000")
	if got := ComputeRateRoundUp(exact); got.Cmp(exact) != 0 {
		t.Fatalf("exact rate changed: %s", got)
	}
	inexact := mustBig(t, "1051234567890123456")
	if got := ComputeRateRoundUp(inexact); got.String() != "1051234567890123457" {
		t.Fatalf("inexact rate: got %s", got)
	}
}

func TestComputeAggregateSwapFee(t *testing.T) {
	fee := mustBig(t, "1000000000000000000")
	pct := mustBig(t, "500000000000000000")
	if got := ComputeAggregateSwapFee(fee, pct); got.String() != "500000000000000000" {
		t.Fatalf("aggregate fee: got %s", got)
	}
	if got := ComputeAggregateSwapFee(fee, big.NewInt(0)); got.Sign() != 0 {
		t.Fatalf("zero pct should yield zero, got %s", got)
	}
	if got := ComputeAggregateSwapFee(big.NewInt(3), big.NewInt(1)); got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("aggregate fee rounds up: got %s", got)
	}
}
