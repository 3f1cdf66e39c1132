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

package openaddr

import "github.com/cockroachdb/errors"

// Strategy is the constraint satisfied by a pointer to a probe strategy value
// S. Next is handed the key being searched for, the hash that produced the
// previous candidate and the index of the previous candidate slot. It returns
// the next candidate hash; the Table reduces it modulo its capacity.
//
// A Table holds a prototype S and copies it at the start of every search, so
// any counters carried by S start from their zero value for each probe
// sequence. Next is only ever called on that per-search copy, which means
// implementations are free to mutate their receiver.
type Strategy[K any, S any] interface {
	*S
	Next(key K, hash, index uint64) uint64
}

// Linear probes consecutive slots. It is stateless and suffers from primary
// clustering.
type Linear[K any] struct{}

// Next implements Strategy.
func (*Linear[K]) Next(_ K, _, index uint64) uint64 {
	return index + 1
}

// Quadratic probes at offsets that grow with the square of the number of
// steps taken: index, index+1, index+1+4, index+1+4+9, ...
//
// For most capacities the sequence does not visit every slot. The Table
// compensates by bounding the walk, see Table.find.
type Quadratic[K any] struct {
	count uint64
}

// Next implements Strategy.
func (q *Quadratic[K]) Next(_ K, _, index uint64) uint64 {
	q.count++
	return index + q.count*q.count
}

// DoubleHash probes with a per-key step size taken from a secondary hash
// function that must be independent of the Table's primary hash. Keys that
// collide on the primary hash are unlikely to share a step, which reduces
// clustering relative to Linear and Quadratic.
type DoubleHash[K any] struct {
	secondary func(key K) uint64
	count     uint64
	step      uint64
}

// DoubleHashStrategy returns a DoubleHash prototype using secondary as the
// step hash.
func DoubleHashStrategy[K any](secondary func(key K) uint64) DoubleHash[K] {
	return DoubleHash[K]{secondary: secondary}
}

// Next implements Strategy.
func (d *DoubleHash[K]) Next(key K, hash, _ uint64) uint64 {
	if d.count == 0 {
		d.step = d.secondary(key)
	}
	d.count++
	return hash + d.count*d.step
}

func (d *DoubleHash[K]) validate() error {
	if d.secondary == nil {
		return errors.Wrap(ErrInvalidConfig, "double hashing requires a secondary hash function")
	}
	return nil
}

// validator is implemented by strategies that carry configuration which New
// must check.
type validator interface {
	validate() error
}
