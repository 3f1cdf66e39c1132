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

const (
	defaultInitialCapacity = 10
	defaultMinLoadFactor   = 0.1
	defaultMaxLoadFactor   = 0.7
)

// config is the construction-time configuration of a Table. Options mutate
// it before it is validated and copied into the Table.
type config[K comparable, V any] struct {
	initialCapacity int
	minLoad         float64
	maxLoad         float64
	allocator       Allocator[K, V]
	reclaim         bool
	autoShrink      bool
}

func defaultConfig[K comparable, V any]() config[K, V] {
	return config[K, V]{
		initialCapacity: defaultInitialCapacity,
		minLoad:         defaultMinLoadFactor,
		maxLoad:         defaultMaxLoadFactor,
		allocator:       defaultAllocator[K, V]{},
		autoShrink:      true,
	}
}

func (c *config[K, V]) validate() error {
	if c.initialCapacity < 1 {
		return errors.Wrapf(ErrInvalidConfig, "initial capacity %d must be positive", c.initialCapacity)
	}
	if c.initialCapacity > maxCapacity {
		return errors.Wrapf(ErrInvalidConfig, "initial capacity %d exceeds %d", c.initialCapacity, maxCapacity)
	}
	// The max load factor must stay below 1 so that an empty bucket always
	// exists to terminate a search.
	if !(c.maxLoad > 0 && c.maxLoad < 1) {
		return errors.Wrapf(ErrInvalidConfig, "max load factor %g must be in (0, 1)", c.maxLoad)
	}
	if !(c.minLoad >= 0 && c.minLoad < c.maxLoad) {
		return errors.Wrapf(ErrInvalidConfig,
			"min load factor %g must be in [0, %g)", c.minLoad, c.maxLoad)
	}
	if c.allocator == nil {
		return errors.Wrap(ErrInvalidConfig, "nil allocator")
	}
	return nil
}

// Option provides an interface to do work on a Table while it is being
// created.
type Option[K comparable, V any] interface {
	apply(c *config[K, V])
}

type optionFunc[K comparable, V any] func(c *config[K, V])

func (f optionFunc[K, V]) apply(c *config[K, V]) {
	f(c)
}

// WithInitialCapacity is an option to specify the number of buckets a Table
// starts with. The Table never shrinks below this capacity. Defaults to 10.
func WithInitialCapacity[K comparable, V any](n int) Option[K, V] {
	return optionFunc[K, V](func(c *config[K, V]) {
		c.initialCapacity = n
	})
}

// WithMinLoadFactor is an option to specify the load factor below which a
// Table shrinks. Defaults to 0.1.
func WithMinLoadFactor[K comparable, V any](f float64) Option[K, V] {
	return optionFunc[K, V](func(c *config[K, V]) {
		c.minLoad = f
	})
}

// WithMaxLoadFactor is an option to specify the load factor above which a
// Table grows. Defaults to 0.7.
func WithMaxLoadFactor[K comparable, V any](f float64) Option[K, V] {
	return optionFunc[K, V](func(c *config[K, V]) {
		c.maxLoad = f
	})
}

// WithTombstoneReclaim is an option that decrements the tombstone count when
// an insertion reuses a tombstone bucket. By default the count is left alone
// and tombstones are only forgotten when the Table is reallocated, which
// over-counts the load factor after a tombstone is reused.
func WithTombstoneReclaim[K comparable, V any]() Option[K, V] {
	return optionFunc[K, V](func(c *config[K, V]) {
		c.reclaim = true
	})
}

// WithoutAutoShrink is an option that disables the shrink check Remove
// performs after each successful deletion. Table.Shrink can still be called
// explicitly.
func WithoutAutoShrink[K comparable, V any]() Option[K, V] {
	return optionFunc[K, V](func(c *config[K, V]) {
		c.autoShrink = false
	})
}

// Allocator specifies an interface for allocating and releasing the bucket
// arrays used by a Table. The default allocator utilizes Go's builtin make()
// and allows the GC to reclaim memory.
//
// If the allocator is manually managing memory and requires that buckets be
// freed then Table.Close must be called in order to ensure Free is called
// for the last array.
type Allocator[K comparable, V any] interface {
	// Alloc should return a slice equivalent to make([]Bucket[K,V], n). The
	// Table initializes every returned bucket as empty.
	Alloc(n int) []Bucket[K, V]

	// Free can optionally release the memory associated with the supplied
	// slice that is guaranteed to have been allocated by Alloc. It is only
	// called once the replacement array is fully populated.
	Free(v []Bucket[K, V])
}

type defaultAllocator[K comparable, V any] struct{}

func (defaultAllocator[K, V]) Alloc(n int) []Bucket[K, V] {
	return make([]Bucket[K, V], n)
}

func (defaultAllocator[K, V]) Free(v []Bucket[K, V]) {
}

// WithAllocator is an option for specify the Allocator to use for a Table.
func WithAllocator[K comparable, V any](allocator Allocator[K, V]) Option[K, V] {
	return optionFunc[K, V](func(c *config[K, V]) {
		c.allocator = allocator
	})
}
