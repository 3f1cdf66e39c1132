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

package main

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/openaddr"
	"github.com/cockroachdb/openaddr/internal/person"
	"github.com/cockroachdb/openaddr/strhash"
)

// benchMap is the common surface of the maps being compared.
type benchMap interface {
	put(p person.Person, v int)
	len() int
	// stats returns the table counters, or ok=false for maps that do not
	// expose them.
	stats() (s openaddr.Stats, ok bool)
}

type runtimeMap map[person.Person]int

func (m runtimeMap) put(p person.Person, v int) {
	m[p] = v
}

func (m runtimeMap) len() int {
	return len(m)
}

func (m runtimeMap) stats() (openaddr.Stats, bool) {
	return openaddr.Stats{}, false
}

type tableMap[S any, P openaddr.Strategy[person.Person, S]] struct {
	*openaddr.Table[person.Person, int, S, P]
}

func (m tableMap[S, P]) put(p person.Person, v int) {
	*m.Ref(p) = v
}

func (m tableMap[S, P]) len() int {
	return m.Len()
}

func (m tableMap[S, P]) stats() (openaddr.Stats, bool) {
	return m.Stats(), true
}

var stringHashes = map[string]func(string) uint64{
	"sum": strhash.Sum,
	"xx":  strhash.XX,
}

// newBenchMap constructs the map called name. Tables are keyed by the
// person's name; double hashing steps by the person's email.
func newBenchMap(name string, config runConfig) (benchMap, error) {
	hash, ok := stringHashes[config.hash]
	if !ok {
		return nil, errors.Newf("unknown hash %q", config.hash)
	}
	primary := person.NameHash(hash)
	options := config.tableOptions()

	switch name {
	case "standard":
		return runtimeMap{}, nil
	case "linear":
		t, err := openaddr.NewLinear[person.Person, int](primary, options...)
		if err != nil {
			return nil, err
		}
		return tableMap[openaddr.Linear[person.Person], *openaddr.Linear[person.Person]]{t}, nil
	case "quadratic":
		t, err := openaddr.NewQuadratic[person.Person, int](primary, options...)
		if err != nil {
			return nil, err
		}
		return tableMap[openaddr.Quadratic[person.Person], *openaddr.Quadratic[person.Person]]{t}, nil
	case "double":
		t, err := openaddr.NewDoubleHash[person.Person, int](primary, person.EmailHash(hash), options...)
		if err != nil {
			return nil, err
		}
		return tableMap[openaddr.DoubleHash[person.Person], *openaddr.DoubleHash[person.Person]]{t}, nil
	default:
		return nil, errors.Newf("unknown map %q", name)
	}
}
