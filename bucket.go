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

// Bucket holds a key, a value and the two flags that describe its state.
// Each bucket is in exactly one of three states:
//
//	    empty: empty=true  tombstone=false
//	     live: empty=false tombstone=false  key and value are valid
//	tombstone: empty=false tombstone=true   key and value are zeroed
//
// An empty bucket terminates a search. A tombstone does not, but can be
// reused by an insertion.
type Bucket[K comparable, V any] struct {
	key       K
	value     V
	empty     bool
	tombstone bool
}

func (b *Bucket[K, V]) live() bool {
	return !b.empty && !b.tombstone
}
