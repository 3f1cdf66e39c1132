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

import (
	"fmt"
	"sort"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

// genSeq returns the first n bucket indexes visited by a strategy starting
// from hash in a table of the given capacity, without the linear fallback.
func genSeq[S any, P Strategy[int, S]](strategy S, key int, hash uint64, capacity uint64, n int) []uint64 {
	vals := make([]uint64, n)
	h, i := hash, hash%capacity
	for j := 0; j < n; j++ {
		vals[j] = i
		h = P(&strategy).Next(key, h, i)
		i = h % capacity
	}
	return vals
}

func TestLinearProbe(t *testing.T) {
	require.Equal(t, []uint64{7, 8, 9, 0, 1, 2, 3, 4, 5, 6, 7},
		genSeq[Linear[int]](Linear[int]{}, 0, 7, 10, 11))
}

func TestQuadraticProbe(t *testing.T) {
	// Offsets accumulate the squares: 0, 1, 1+4, 1+4+9, ... which for a
	// capacity of 10 only ever reaches four distinct buckets.
	seq := genSeq[Quadratic[int]](Quadratic[int]{}, 0, 0, 10, 10)
	require.Equal(t, []uint64{0, 1, 5, 4, 0, 5, 1, 0, 4, 5}, seq)

	seq = genSeq[Quadratic[int]](Quadratic[int]{}, 0, 13, 16, 4)
	require.Equal(t, []uint64{13, 14, 2, 11}, seq)
}

func TestDoubleHashProbe(t *testing.T) {
	var calls int
	strategy := DoubleHashStrategy(func(key int) uint64 {
		calls++
		return uint64(key)
	})

	// The candidate hash advances by count*step: 0, 3, 9, 18, 30, 45.
	seq := genSeq[DoubleHash[int]](strategy, 3, 0, 10, 6)
	require.Equal(t, []uint64{0, 3, 9, 8, 0, 5}, seq)
	// The step is computed once per probe sequence.
	require.Equal(t, 1, calls)

	// genSeq works on a copy, so the prototype still starts from zero.
	require.Equal(t, seq, genSeq[DoubleHash[int]](strategy, 3, 0, 10, 6))
	require.Equal(t, 2, calls)
}

// TestNewWithDoubleHashStrategy builds a double hashing table through the
// generic constructor and checks it behaves like NewDoubleHash.
func TestNewWithDoubleHashStrategy(t *testing.T) {
	secondary := func(key int) uint64 { return uint64(key) | 1 }
	m, err := New[int, int](hashInt, DoubleHashStrategy(secondary))
	require.NoError(t, err)
	e, err := NewDoubleHash[int, int](hashInt, secondary)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		m.Put(i, i)
		e.Put(i, i)
	}
	require.Equal(t, e.debugString(), m.debugString())

	_, err = New[int, int](hashInt, DoubleHashStrategy[int](nil))
	require.True(t, errors.Is(err, ErrInvalidConfig), "%v", err)
}

// TestStrategyCopiedPerSearch verifies that searches never advance the
// Table's prototype strategy.
func TestStrategyCopiedPerSearch(t *testing.T) {
	constant := func(int) uint64 { return 0 }

	q, err := NewQuadratic[int, int](constant)
	require.NoError(t, err)
	d, err := NewDoubleHash[int, int](constant, func(int) uint64 { return 1 })
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		q.Put(i, i)
		d.Put(i, i)
	}
	for i := 0; i < 5; i++ {
		v, ok := q.Get(i)
		require.True(t, ok)
		require.Equal(t, i, v)
		v, ok = d.Get(i)
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	require.EqualValues(t, 0, q.probe.count)
	require.EqualValues(t, 0, d.probe.count)
	require.EqualValues(t, 0, d.probe.step)
}

// TestProbeTermination fills tables up to their max load factor with keys
// that all share a home bucket, using strategies whose sequences cycle over
// a subset of the buckets. Every present key must be found and every absent
// key reported missing.
func TestProbeTermination(t *testing.T) {
	constant := func(int) uint64 { return 0 }

	for capacity := 1; capacity <= 64; capacity++ {
		t.Run(fmt.Sprintf("capacity=%d", capacity), func(t *testing.T) {
			n := int(defaultMaxLoadFactor * float64(capacity))
			for float64(n)/float64(capacity) > defaultMaxLoadFactor {
				n--
			}
			steps := []uint64{0, 1, uint64(capacity), 2 * uint64(capacity)}
			tables := map[string]testTable{}
			var err error
			if tables["linear"], err = NewLinear[int, int](constant,
				WithInitialCapacity[int, int](capacity)); err != nil {
				t.Fatal(err)
			}
			if tables["quadratic"], err = NewQuadratic[int, int](constant,
				WithInitialCapacity[int, int](capacity)); err != nil {
				t.Fatal(err)
			}
			for _, step := range steps {
				name := fmt.Sprintf("double(step=%d)", step)
				if tables[name], err = NewDoubleHash[int, int](constant,
					func(int) uint64 { return step },
					WithInitialCapacity[int, int](capacity)); err != nil {
					t.Fatal(err)
				}
			}

			names := make([]string, 0, len(tables))
			for name := range tables {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				m := tables[name]
				for i := 0; i < n; i++ {
					require.False(t, m.Put(i, i), name)
				}
				require.Equal(t, capacity, m.Capacity(), name)
				for i := 0; i < n; i++ {
					v, ok := m.Get(i)
					require.True(t, ok, "%s: %d", name, i)
					require.Equal(t, i, v)
				}
				for i := n; i < n+10; i++ {
					_, ok := m.Get(i)
					require.False(t, ok, "%s: %d", name, i)
					require.False(t, m.Remove(i), "%s: %d", name, i)
				}
			}
		})
	}
}
