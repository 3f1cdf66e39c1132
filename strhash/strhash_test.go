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

package strhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSum32(t *testing.T) {
	testCases := []struct {
		s        string
		expected uint32
	}{
		{"", 31},
		{"a", 6847478},
		{"ab", 801866292},
		{"Ada Lovelace", 2587203936},
		// Bytes >= 0x80 are sign extended before mixing.
		{"é", 2994211119},
	}
	for _, c := range testCases {
		t.Run(c.s, func(t *testing.T) {
			require.EqualValues(t, c.expected, Sum32(c.s))
			require.EqualValues(t, c.expected, Sum(c.s))
		})
	}
}

func TestXX(t *testing.T) {
	require.EqualValues(t, uint64(0xef46db3751d8e999), XX(""))
	require.Equal(t, XX("ada@example.com"), XX("ada@example.com"))
	require.NotEqual(t, XX("ada@example.com"), XX("bob@example.com"))
}
