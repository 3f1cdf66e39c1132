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

// package openaddr is a Go implementation of a classic open-addressing hash
// table with pluggable probing. See
// https://en.wikipedia.org/wiki/Open_addressing.
//
// # Probing
//
// Every entry lives directly in a single array of buckets. A key's home
// bucket is hash(key) % capacity. When the home bucket is occupied by another
// key a probe Strategy generates further candidate buckets until either the
// key or an empty bucket is found. Three strategies are provided:
//
//   - Linear visits consecutive buckets.
//   - Quadratic visits buckets at offsets growing with the square of the
//     step count.
//   - DoubleHash steps by a per-key amount taken from a second, independent
//     hash function.
//
// The strategy is a type parameter of the Table so that probing is resolved
// at compile time. Strategies may carry per-search state (Quadratic and
// DoubleHash count their steps); the Table copies a prototype value at the
// start of every search so that state never leaks between searches.
//
// Quadratic and double hashing only visit every bucket for particular
// capacities and step sizes. Rather than constraining capacities, the Table
// bounds a strategy's walk to capacity steps and then sweeps linearly from
// wherever the walk stopped. Together with a max load factor below 1 this
// guarantees that every search terminates.
//
// # Deletion
//
// Deletion is performed using tombstones. A tombstone does not stop a
// search, but it is reused by a later insertion of a key whose probe
// sequence passes over it. Tombstones are dropped when the bucket array is
// reallocated.
//
// # Capacity
//
// The load factor is (live entries + tombstones) / capacity. An insertion
// that would push the load factor above the max load factor (0.7 by default)
// first doubles the capacity. A deletion that leaves the load factor below
// the min load factor (0.1 by default) halves the capacity, never going below
// the initial capacity (10 by default). Both operations allocate a fresh
// array and re-insert every live entry.
package openaddr

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	debug = false

	// maxCapacity bounds the number of buckets so that doubling can never
	// overflow an int.
	maxCapacity = math.MaxInt >> 1

	noBucket = ^uint64(0)
)

// ErrInvalidConfig is returned (wrapped) by New when the supplied hash
// function, strategy or options cannot produce a working Table.
var ErrInvalidConfig = errors.New("openaddr: invalid configuration")

// ErrCapacityExhausted is the panic value (wrapped) when a Table is asked to
// grow beyond the largest supported capacity.
var ErrCapacityExhausted = errors.New("openaddr: capacity exhausted")

// Stats holds counters describing the shape and history of a Table.
type Stats struct {
	// Capacity is the current number of buckets.
	Capacity int
	// Used is the number of live entries.
	Used int
	// Tombstones is the tombstone count used for load factor calculations.
	Tombstones int
	// Grows and Shrinks count reallocations in each direction.
	Grows   int
	Shrinks int
	// Probes counts the steps taken past a key's home bucket across all
	// searches, including those performed while reallocating.
	Probes uint64
}

// Table is an unordered map from keys to values with Put, Get, Remove and
// All operations, resolving collisions by open addressing with the probe
// strategy S.
//
// A Table is NOT goroutine-safe.
type Table[K comparable, V any, S any, P Strategy[K, S]] struct {
	hash func(key K) uint64
	// probe is the strategy prototype. It is copied for every search and
	// never mutated.
	probe     S
	allocator Allocator[K, V]
	// buckets is the bucket array. len(buckets) is the capacity and is
	// always >= initialCapacity > 0.
	buckets []Bucket[K, V]
	// The number of live buckets.
	used int
	// The number of tombstones. Unless reclaim is set this is only reset by
	// reallocation, so it may exceed the number of tombstone buckets.
	tombstones      int
	minLoad         float64
	maxLoad         float64
	initialCapacity int
	reclaim         bool
	autoShrink      bool

	grows   int
	shrinks int
	probes  uint64
}

// New constructs a new Table using hash as the primary hash function and
// strategy as the probe strategy prototype. The type parameter P is
// inferred, so callers write New[K, V](hash, Linear[K]{}).
func New[K comparable, V any, S any, P Strategy[K, S]](
	hash func(key K) uint64, strategy S, options ...Option[K, V],
) (*Table[K, V, S, P], error) {
	if hash == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "nil hash function")
	}
	if v, ok := any(P(&strategy)).(validator); ok {
		if err := v.validate(); err != nil {
			return nil, err
		}
	}

	c := defaultConfig[K, V]()
	for _, op := range options {
		op.apply(&c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	t := &Table[K, V, S, P]{
		hash:            hash,
		probe:           strategy,
		allocator:       c.allocator,
		minLoad:         c.minLoad,
		maxLoad:         c.maxLoad,
		initialCapacity: c.initialCapacity,
		reclaim:         c.reclaim,
		autoShrink:      c.autoShrink,
	}
	t.buckets = t.alloc(c.initialCapacity)
	t.checkInvariants()
	return t, nil
}

// NewLinear constructs a new Table that uses linear probing.
func NewLinear[K comparable, V any](
	hash func(key K) uint64, options ...Option[K, V],
) (*Table[K, V, Linear[K], *Linear[K]], error) {
	return New[K, V](hash, Linear[K]{}, options...)
}

// NewQuadratic constructs a new Table that uses quadratic probing.
func NewQuadratic[K comparable, V any](
	hash func(key K) uint64, options ...Option[K, V],
) (*Table[K, V, Quadratic[K], *Quadratic[K]], error) {
	return New[K, V](hash, Quadratic[K]{}, options...)
}

// NewDoubleHash constructs a new Table that uses double hashing with
// secondary providing the per-key step.
func NewDoubleHash[K comparable, V any](
	hash, secondary func(key K) uint64, options ...Option[K, V],
) (*Table[K, V, DoubleHash[K], *DoubleHash[K]], error) {
	return New[K, V](hash, DoubleHashStrategy(secondary), options...)
}

// Close releases the bucket array back to the configured allocator. It is
// unnecessary to close a table using the default allocator. It is invalid to
// use a Table after it has been closed, though Close itself is idempotent.
func (t *Table[K, V, S, P]) Close() {
	if t.buckets != nil {
		t.allocator.Free(t.buckets)
		t.buckets = nil
		t.used = 0
		t.tombstones = 0
	}
}

// Put inserts an entry into the table, overwriting an existing value if an
// entry with the same key already exists. It returns true iff an existing
// entry was overwritten.
func (t *Table[K, V, S, P]) Put(key K, value V) bool {
	b, replaced := t.put(key)
	b.value = value
	t.checkInvariants()
	return replaced
}

// Ref returns a pointer to the value stored for key, first inserting the
// zero value of V if the key is absent. The pointer is invalidated by the
// next call to Put, Ref, Remove, Reserve, Shrink or Clear.
func (t *Table[K, V, S, P]) Ref(key K) *V {
	b, _ := t.put(key)
	t.checkInvariants()
	return &b.value
}

// Get retrieves the value from the table for the specified key, returning
// ok=false if the key is not present.
func (t *Table[K, V, S, P]) Get(key K) (value V, ok bool) {
	if t.used == 0 {
		return value, false
	}
	i, _, found := t.find(key)
	if !found {
		return value, false
	}
	return t.buckets[i].value, true
}

// Remove deletes the entry for key, leaving a tombstone in its bucket. It
// returns false if the key was not present.
func (t *Table[K, V, S, P]) Remove(key K) bool {
	if t.used == 0 {
		return false
	}
	i, _, found := t.find(key)
	if !found {
		return false
	}

	t.buckets[i] = Bucket[K, V]{tombstone: true}
	t.used--
	t.tombstones++
	if debug {
		fmt.Printf("remove(%v): index=%d used=%d tombstones=%d\n", key, i, t.used, t.tombstones)
	}

	t.maybeGrow(0)
	if t.autoShrink {
		t.maybeShrink()
	}
	t.checkInvariants()
	return true
}

// All calls yield sequentially for each key and value present in the table.
// If yield returns false, iteration stops. The order is unspecified. The
// table can be mutated during iteration, though there is no guarantee that
// the mutations will be visible to the iteration.
func (t *Table[K, V, S, P]) All(yield func(key K, value V) bool) {
	// Snapshot the buckets so that iteration remains valid if the table is
	// reallocated during iteration.
	buckets := t.buckets
	for i := range buckets {
		b := &buckets[i]
		if b.live() && !yield(b.key, b.value) {
			return
		}
	}
}

// Clear deletes all entries from the table, retaining its capacity. Use
// Shrink afterwards to return to the initial capacity.
func (t *Table[K, V, S, P]) Clear() {
	for i := range t.buckets {
		t.buckets[i] = Bucket[K, V]{empty: true}
	}
	t.used = 0
	t.tombstones = 0
	t.checkInvariants()
}

// Reserve grows the table, if necessary, so that n live entries fit without
// a further reallocation.
func (t *Table[K, V, S, P]) Reserve(n int) {
	capacity := len(t.buckets)
	if n < t.used || t.loadFactorOf(n+t.tombstones, capacity) <= t.maxLoad {
		return
	}
	for t.loadFactorOf(n, capacity) > t.maxLoad {
		if capacity > maxCapacity>>1 {
			panic(errors.Wrapf(ErrCapacityExhausted, "cannot reserve %d entries", n))
		}
		capacity *= 2
	}
	// If the capacity is unchanged only the tombstones are in the way, and
	// reallocating at the same size drops them.
	if capacity > len(t.buckets) {
		t.grows++
	}
	t.resize(capacity)
	t.checkInvariants()
}

// Shrink reallocates the table to a smaller capacity if its load factor is
// below the min load factor. Remove calls it automatically unless the table
// was created with WithoutAutoShrink.
func (t *Table[K, V, S, P]) Shrink() {
	t.maybeShrink()
	t.checkInvariants()
}

// Len returns the number of entries in the table.
func (t *Table[K, V, S, P]) Len() int {
	return t.used
}

// Capacity returns the number of buckets in the table.
func (t *Table[K, V, S, P]) Capacity() int {
	return len(t.buckets)
}

// Tombstones returns the tombstone count that contributes to the load
// factor.
func (t *Table[K, V, S, P]) Tombstones() int {
	return t.tombstones
}

// LoadFactor returns (live entries + tombstones) / capacity.
func (t *Table[K, V, S, P]) LoadFactor() float64 {
	return t.loadFactorOf(t.used+t.tombstones, len(t.buckets))
}

// Stats returns a snapshot of the table's counters.
func (t *Table[K, V, S, P]) Stats() Stats {
	return Stats{
		Capacity:   len(t.buckets),
		Used:       t.used,
		Tombstones: t.tombstones,
		Grows:      t.grows,
		Shrinks:    t.shrinks,
		Probes:     t.probes,
	}
}

func (t *Table[K, V, S, P]) loadFactorOf(occupied, capacity int) float64 {
	return float64(occupied) / float64(capacity)
}

// find walks the probe sequence for key. If the key is present it returns
// its bucket index and found=true. Otherwise index is the first empty bucket
// on the sequence and tombstone is the first tombstone passed on the way
// there, or noBucket if there was none.
func (t *Table[K, V, S, P]) find(key K) (index, tombstone uint64, found bool) {
	// A fresh copy of the prototype for every search. Reusing a strategy
	// across searches would carry its step counter over.
	probe := t.probe

	capacity := uint64(len(t.buckets))
	h := t.hash(key)
	i := h % capacity
	tombstone = noBucket
	if debug {
		fmt.Printf("find(%v): hash=%d index=%d capacity=%d\n", key, h, i, capacity)
	}

	// The strategy gets capacity-1 steps. Quadratic and double hashing may
	// cycle over a subset of the buckets, so after that the walk continues
	// linearly, which reaches every bucket in another capacity steps.
	for steps := uint64(1); ; steps++ {
		b := &t.buckets[i]
		if b.empty {
			if debug {
				fmt.Printf("find(not-found): index=%d tombstone=%d steps=%d\n", i, int64(tombstone), steps-1)
			}
			return i, tombstone, false
		}
		if b.tombstone {
			if tombstone == noBucket {
				tombstone = i
			}
		} else if b.key == key {
			if debug {
				fmt.Printf("find(found): index=%d steps=%d\n", i, steps-1)
			}
			return i, tombstone, true
		}

		t.probes++
		switch {
		case steps < capacity:
			h = P(&probe).Next(key, h, i)
			i = h % capacity
		case steps < 2*capacity:
			i = (i + 1) % capacity
		default:
			// Every bucket has been visited. The load factor bound makes this
			// unreachable unless the invariants are broken.
			if tombstone != noBucket {
				return tombstone, tombstone, false
			}
			panic(errors.AssertionFailedf("find(%v): no empty bucket in table of capacity %d", key, capacity))
		}
		if debug {
			fmt.Printf("find(probing): index=%d steps=%d\n", i, steps)
		}
	}
}

// put returns the bucket for key, inserting an entry with a zero value if
// the key is absent. replaced reports whether the key was already present.
func (t *Table[K, V, S, P]) put(key K) (b *Bucket[K, V], replaced bool) {
	i, tombstone, found := t.find(key)
	if found {
		return &t.buckets[i], true
	}

	// Growth is decided against the occupancy the insertion is about to
	// produce. Reusing a tombstone with reclaim enabled leaves it unchanged.
	extra := 1
	if t.reclaim && tombstone != noBucket {
		extra = 0
	}
	if t.maybeGrow(extra) {
		i, tombstone, _ = t.find(key)
	}
	if tombstone != noBucket {
		i = tombstone
	}
	return t.insertAt(i, key), false
}

// insertAt stores key in the empty or tombstone bucket at index i and
// accounts for the new entry.
func (t *Table[K, V, S, P]) insertAt(i uint64, key K) *Bucket[K, V] {
	b := &t.buckets[i]
	if b.tombstone && t.reclaim {
		t.tombstones--
	}
	var zero V
	*b = Bucket[K, V]{key: key, value: zero}
	t.used++
	if debug {
		fmt.Printf("insert(%v): index=%d used=%d tombstones=%d\n", key, i, t.used, t.tombstones)
	}
	return b
}

// uncheckedPut inserts an entry known not to be in the table without
// checking whether the table needs to grow. Used while reallocating.
func (t *Table[K, V, S, P]) uncheckedPut(key K, value V) {
	i, _, _ := t.find(key)
	t.insertAt(i, key).value = value
}

// maybeGrow doubles the capacity if adding extra entries would push the load
// factor above the max load factor. It reports whether the table was
// reallocated.
func (t *Table[K, V, S, P]) maybeGrow(extra int) bool {
	capacity := len(t.buckets)
	if t.loadFactorOf(t.used+t.tombstones+extra, capacity) <= t.maxLoad {
		return false
	}
	if capacity > maxCapacity>>1 {
		panic(errors.Wrapf(ErrCapacityExhausted, "cannot grow beyond %d buckets", capacity))
	}
	t.grows++
	t.resize(2 * capacity)
	return true
}

// maybeShrink reallocates to a smaller capacity if the load factor is below
// the min load factor. The new capacity is the larger of half the current
// capacity and the capacity that would bring the live entries up to the
// current load factor, or the initial capacity if the table is empty. It
// never goes below the initial capacity.
func (t *Table[K, V, S, P]) maybeShrink() {
	capacity := len(t.buckets)
	lf := t.LoadFactor()
	if lf >= t.minLoad {
		return
	}

	newCapacity := t.initialCapacity
	if lf != 0 {
		fit := int(math.Ceil(float64(t.used) / lf))
		newCapacity = max(capacity/2, fit, t.initialCapacity)
	}
	if newCapacity >= capacity {
		return
	}
	t.shrinks++
	t.resize(newCapacity)
}

// resize allocates a bucket array of newCapacity, re-inserts every live
// entry in array order and releases the old array. Tombstones are dropped.
func (t *Table[K, V, S, P]) resize(newCapacity int) {
	// The new array is allocated before any state is touched, so a failed
	// allocation leaves the table as it was.
	buckets := t.alloc(newCapacity)
	oldBuckets := t.buckets
	if debug {
		fmt.Printf("resize: capacity=%d->%d used=%d tombstones=%d\n",
			len(oldBuckets), newCapacity, t.used, t.tombstones)
	}

	t.buckets = buckets
	t.used = 0
	t.tombstones = 0
	for i := range oldBuckets {
		if b := &oldBuckets[i]; b.live() {
			t.uncheckedPut(b.key, b.value)
		}
	}
	t.allocator.Free(oldBuckets)
}

// alloc returns a bucket array of n empty buckets from the allocator.
func (t *Table[K, V, S, P]) alloc(n int) []Bucket[K, V] {
	buckets := t.allocator.Alloc(n)
	if len(buckets) != n {
		panic(errors.AssertionFailedf("allocator returned %d buckets, expected %d", len(buckets), n))
	}
	for i := range buckets {
		buckets[i] = Bucket[K, V]{empty: true}
	}
	return buckets
}

func (t *Table[K, V, S, P]) checkInvariants() {
	if invariants {
		capacity := len(t.buckets)
		if capacity < t.initialCapacity {
			panic(errors.AssertionFailedf("invariant failed: capacity %d below initial capacity %d\n%s",
				capacity, t.initialCapacity, t.debugString()))
		}
		if t.used+t.tombstones > capacity {
			panic(errors.AssertionFailedf("invariant failed: used=%d + tombstones=%d exceeds capacity %d\n%s",
				t.used, t.tombstones, capacity, t.debugString()))
		}

		// For every live bucket, verify we can retrieve the key using Get.
		// Count the number of live, tombstone and empty buckets.
		var used, tombstones, empty int
		for i := range t.buckets {
			b := &t.buckets[i]
			switch {
			case b.empty:
				if b.tombstone {
					panic(errors.AssertionFailedf("invariant failed: bucket(%d) is both empty and a tombstone", i))
				}
				empty++
			case b.tombstone:
				tombstones++
			default:
				if j, _, ok := t.find(b.key); !ok || j != uint64(i) {
					panic(errors.AssertionFailedf("invariant failed: bucket(%d): %v not found\n%s",
						i, b.key, t.debugString()))
				}
				used++
			}
		}
		if used != t.used {
			panic(errors.AssertionFailedf("invariant failed: found %d live buckets, but used count is %d\n%s",
				used, t.used, t.debugString()))
		}
		if tombstones > t.tombstones || (t.reclaim && tombstones != t.tombstones) {
			panic(errors.AssertionFailedf("invariant failed: found %d tombstones, but tombstone count is %d\n%s",
				tombstones, t.tombstones, t.debugString()))
		}
		if empty == 0 {
			panic(errors.AssertionFailedf("invariant failed: no empty bucket\n%s", t.debugString()))
		}
	}
}

// debugString dumps the non-empty buckets of the table.
func (t *Table[K, V, S, P]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d used=%d tombstones=%d", len(t.buckets), t.used, t.tombstones)
	for i := range t.buckets {
		switch b := &t.buckets[i]; {
		case b.empty:
		case b.tombstone:
			fmt.Fprintf(&buf, "\n  %4d: tombstone", i)
		default:
			fmt.Fprintf(&buf, "\n  %4d: %v=%v", i, b.key, b.value)
		}
	}
	return buf.String()
}
