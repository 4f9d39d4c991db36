package fixedpoint

import "math/big"

// Rounding selects the direction an inexact result is rounded to.
type Rounding int

const (
	RoundDown Rounding = iota
	RoundUp
)

// Unit is a fixed-point scale such as WAD (1e18) or RAY (1e27).
// All operations treat their inputs as non-negative integers scaled by the unit.
// A zero divisor panics, the same way math/big does.
type Unit struct {
	one *big.Int
}

var (
	// WAD is the 18-decimal unit used by pool math.
	WAD = NewUnit(18)
	// RAY is the 27-decimal unit used by interest-index math.
	RAY = NewUnit(27)

	bigOne  = big.NewInt(1)
	halfRay = new(big.Int).Rsh(RAY.one, 1)
)

// NewUnit returns a unit equal to 10^decimals.
func NewUnit(decimals uint) Unit {
	return Unit{one: new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)}
}

// One returns a fresh 1e18.
func One() *big.Int {
	return WAD.One()
}

// One returns a fresh copy of the unit value.
func (u Unit) One() *big.Int {
	return new(big.Int).Set(u.one)
}

// MulDown returns a*b/unit, truncated.
func (u Unit) MulDown(a, b *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return product.Quo(product, u.one)
}

// MulUp returns a*b/unit, rounded up when the division leaves a remainder.
func (u Unit) MulUp(a, b *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return divUpRaw(product, u.one)
}

// DivDown returns a*unit/b, truncated.
func (u Unit) DivDown(a, b *big.Int) *big.Int {
	scaled := new(big.Int).Mul(a, u.one)
	return scaled.Quo(scaled, nonZero(b))
}

// DivUp returns a*unit/b, rounded up when the division leaves a remainder.
func (u Unit) DivUp(a, b *big.Int) *big.Int {
	return MulDivUp(a, u.one, b)
}

// Complement returns unit-x, clamped to zero.
func (u Unit) Complement(x *big.Int) *big.Int {
	if x.Cmp(u.one) >= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(u.one, x)
}

// MulDown is WAD.MulDown.
func MulDown(a, b *big.Int) *big.Int { return WAD.MulDown(a, b) }

// MulUp is WAD.MulUp.
func MulUp(a, b *big.Int) *big.Int { return WAD.MulUp(a, b) }

// DivDown is WAD.DivDown.
func DivDown(a, b *big.Int) *big.Int { return WAD.DivDown(a, b) }

// DivUp is WAD.DivUp.
func DivUp(a, b *big.Int) *big.Int { return WAD.DivUp(a, b) }

// Complement is WAD.Complement.
func Complement(x *big.Int) *big.Int { return WAD.Complement(x) }

// MulDivUp returns a*b/c rounded up, without any unit scaling.
func MulDivUp(a, b, c *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return divUpRaw(product, nonZero(c))
}

// DivUpRaw returns a/b rounded up, without any unit scaling.
func DivUpRaw(a, b *big.Int) *big.Int {
	return divUpRaw(new(big.Int).Set(a), nonZero(b))
}

// RayMul multiplies two RAY values rounding half up, as interest-index math does.
func RayMul(a, b *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	product.Add(product, halfRay)
	return product.Quo(product, RAY.one)
}

// RayDiv divides two RAY values rounding half up.
func RayDiv(a, b *big.Int) *big.Int {
	nonZero(b)
	half := new(big.Int).Rsh(b, 1)
	scaled := new(big.Int).Mul(a, RAY.one)
	scaled.Add(scaled, half)
	return scaled.Quo(scaled, b)
}

// Min returns a copy of the smaller value.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// Max returns a copy of the larger value.
func Max(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// divUpRaw overwrites and returns n, holding ceil(n/d). Zero stays zero.
func divUpRaw(n, d *big.Int) *big.Int {
	if n.Sign() == 0 {
		return n
	}
	n.Sub(n, bigOne)
	n.Quo(n, d)
	return n.Add(n, bigOne)
}

func nonZero(d *big.Int) *big.Int {
	if d.Sign() == 0 {
		panic("fixedpoint: division by zero")
	}
	return d
}
