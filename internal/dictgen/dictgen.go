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

// Package dictgen generates random person dictionaries for probebench.
package dictgen

import (
	"bufio"
	"fmt"
	"io"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/openaddr/internal/person"
)

const (
	minAge = 1
	maxAge = 100
)

// Person returns a random person drawn from f. Ages are uniform in
// [1, 100].
func Person(f *gofakeit.Faker) person.Person {
	return person.Person{
		Name:  f.Name(),
		Age:   f.IntRange(minAge, maxAge),
		Email: f.Email(),
	}
}

// Generate writes n random dictionary lines to w.
func Generate(w io.Writer, n int, f *gofakeit.Faker) error {
	if n < 0 {
		return errors.Newf("dictionary size %d must not be negative", n)
	}
	bw := bufio.NewWriter(w)
	for i := 0; i < n; i++ {
		if _, err := fmt.Fprintln(bw, Person(f)); err != nil {
			return errors.Wrap(err, "writing dictionary")
		}
	}
	return errors.Wrap(bw.Flush(), "writing dictionary")
}
