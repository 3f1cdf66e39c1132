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

package dictgen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cockroachdb/openaddr/internal/person"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	const n = 500

	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, n, gofakeit.New(1)))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, n)
	for _, line := range lines {
		p, err := person.ParseLine(line)
		require.NoError(t, err, line)
		require.GreaterOrEqual(t, p.Age, minAge)
		require.LessOrEqual(t, p.Age, maxAge)
	}

	// The same seed produces the same dictionary.
	var again bytes.Buffer
	require.NoError(t, Generate(&again, n, gofakeit.New(1)))
	require.Equal(t, buf.String(), again.String())
}

func TestGenerateEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, 0, gofakeit.New(1)))
	require.Zero(t, buf.Len())

	require.Error(t, Generate(&buf, -1, gofakeit.New(1)))
}

// TestDistinctNames checks that names are varied enough for a table keyed by
// name to see few collisions.
func TestDistinctNames(t *testing.T) {
	const n = 2000

	f := gofakeit.New(1)
	names := make(map[string]struct{})
	emails := make(map[string]struct{})
	for i := 0; i < n; i++ {
		p := Person(f)
		names[p.Name] = struct{}{}
		emails[p.Email] = struct{}{}
	}
	require.Greater(t, len(names), n*3/4)
	require.Greater(t, len(emails), n*3/4)
}
