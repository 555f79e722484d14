// Copyright 2015 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

package common

import (
	"math/big"

	"github.com/holiman/uint256"
)

// U256 is a 256-bit unsigned integer: difficulty, gas accounting and total
// difficulty all live in this width so that overflow is impossible within
// the lifetime of any real source ledger.
type U256 struct {
	v uint256.Int
}

// U256FromBig builds a U256 from a big.Int. Negative input is truncated to
// zero, matching the domain's "difficulty and gas are never negative"
// invariant.
func U256FromBig(b *big.Int) U256 {
	var u U256
	if b == nil || b.Sign() < 0 {
		return u
	}
	u.v.SetFromBig(b)
	return u
}

// U256FromUint64 builds a U256 from a uint64.
func U256FromUint64(v uint64) U256 {
	var u U256
	u.v.SetUint64(v)
	return u
}

// U256FromBytes builds a U256 from its big-endian byte representation.
func U256FromBytes(b []byte) U256 {
	var u U256
	u.v.SetBytes(b)
	return u
}

// Big converts u to a big.Int.
func (u U256) Big() *big.Int { return u.v.ToBig() }

// Uint64 returns the low 64 bits of u, matching uint256's truncating
// behavior for values that do not fit.
func (u U256) Uint64() uint64 { return u.v.Uint64() }

// Bytes32 returns the big-endian, zero-padded 32 byte representation of u.
func (u U256) Bytes32() [32]byte { return u.v.Bytes32() }

// IsZero reports whether u is zero.
func (u U256) IsZero() bool { return u.v.IsZero() }

// Add returns u + other.
func (u U256) Add(other U256) U256 {
	var r U256
	r.v.Add(&u.v, &other.v)
	return r
}

// Sub returns u - other. Underflow wraps per uint256 semantics; callers
// that reach the domain boundary check Cmp first.
func (u U256) Sub(other U256) U256 {
	var r U256
	r.v.Sub(&u.v, &other.v)
	return r
}

// Mul returns u * other.
func (u U256) Mul(other U256) U256 {
	var r U256
	r.v.Mul(&u.v, &other.v)
	return r
}

// Div returns the integer quotient u / other. Division by zero returns
// zero, matching uint256.Int.Div.
func (u U256) Div(other U256) U256 {
	var r U256
	r.v.Div(&u.v, &other.v)
	return r
}

// Mod returns u % other. Modulo by zero returns zero, matching
// uint256.Int.Mod.
func (u U256) Mod(other U256) U256 {
	var r U256
	r.v.Mod(&u.v, &other.v)
	return r
}

// Cmp compares u and other, returning -1, 0 or 1.
func (u U256) Cmp(other U256) int { return u.v.Cmp(&other.v) }

// Eq reports whether u equals other.
func (u U256) Eq(other U256) bool { return u.Cmp(other) == 0 }

// Lt reports whether u is strictly less than other.
func (u U256) Lt(other U256) bool { return u.Cmp(other) < 0 }

// Gt reports whether u is strictly greater than other.
func (u U256) Gt(other U256) bool { return u.Cmp(other) > 0 }

// String implements fmt.Stringer, rendering u in decimal.
func (u U256) String() string { return u.v.Dec() }

// MarshalText implements encoding.TextMarshaler, rendering u in decimal so
// that config files and JSON stay human readable.
func (u U256) MarshalText() ([]byte, error) { return []byte(u.v.Dec()), nil }

// UnmarshalText implements encoding.TextUnmarshaler, parsing decimal or
// 0x-prefixed hex.
func (u *U256) UnmarshalText(text []byte) error {
	return u.v.UnmarshalText(text)
}
