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

package person

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/openaddr/strhash"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	testCases := []struct {
		line     string
		expected Person
		err      bool
	}{
		{"Ada Lovelace;36;ada@example.com", Person{"Ada Lovelace", 36, "ada@example.com"}, false},
		{"Bob; 7 ;bob@example.com", Person{"Bob", 7, "bob@example.com"}, false},
		{"", Person{}, true},
		{"Ada;36", Person{}, true},
		{"Ada;36;ada@example.com;extra", Person{}, true},
		{";36;ada@example.com", Person{}, true},
		{"Ada;;ada@example.com", Person{}, true},
		{"Ada;36;", Person{}, true},
		{"Ada;thirty;ada@example.com", Person{}, true},
	}
	for _, c := range testCases {
		t.Run(c.line, func(t *testing.T) {
			p, err := ParseLine(c.line)
			if c.err {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrMalformedLine))
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.expected, p)
			require.Equal(t, p, mustParse(t, p.String()))
		})
	}
}

func mustParse(t *testing.T, line string) Person {
	p, err := ParseLine(line)
	require.NoError(t, err)
	return p
}

func TestHashAdapters(t *testing.T) {
	a := Person{Name: "Ada", Age: 36, Email: "ada@example.com"}
	b := Person{Name: "Ada", Age: 37, Email: "other@example.com"}

	name := NameHash(strhash.Sum)
	require.Equal(t, strhash.Sum("Ada"), name(a))
	require.Equal(t, name(a), name(b))

	email := EmailHash(strhash.Sum)
	require.Equal(t, strhash.Sum("ada@example.com"), email(a))
	require.NotEqual(t, email(a), email(b))
}
