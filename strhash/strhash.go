// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package strhash provides string hash functions suitable for use as the
// primary or secondary hash of an openaddr.Table.
package strhash

import "github.com/cespare/xxhash/v2"

const (
	p0 = 31
	p1 = 54059
	p2 = 76963
)

// Sum32 returns a 32-bit multiplicative hash of s. Each byte is folded in as
// h = (h * 54059) ^ (c * 76963), starting from h = 31, with bytes treated as
// signed values.
func Sum32(s string) uint32 {
	h := uint32(p0)
	for i := 0; i < len(s); i++ {
		c := uint32(int32(int8(s[i])))
		h = (h * p1) ^ (c * p2)
	}
	return h
}

// Sum returns Sum32(s) widened to 64 bits.
func Sum(s string) uint64 {
	return uint64(Sum32(s))
}

// XX returns the 64-bit xxHash of s.
func XX(s string) uint64 {
	return xxhash.Sum64String(s)
}
