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

// Package person defines the record type used as a key by probebench and
// the hash adapters that key a table by a person's name or email.
package person

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Separator separates the fields of a dictionary line.
const Separator = ";"

// ErrMalformedLine is returned (wrapped) by ParseLine for lines that do not
// hold a person.
var ErrMalformedLine = errors.New("malformed line")

// Person is a dictionary record. Two persons are equal if all fields are
// equal, so a Person can be used directly as a comparable key.
type Person struct {
	Name  string
	Age   int
	Email string
}

// ParseLine parses a line of the form "name;age;email". All three fields
// must be non-empty and the age must be an integer.
func ParseLine(line string) (Person, error) {
	parts := strings.Split(line, Separator)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Person{}, errors.Wrapf(ErrMalformedLine, "%q: expected name%sage%semail",
			line, Separator, Separator)
	}
	age, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Person{}, errors.Wrapf(ErrMalformedLine, "%q: invalid age", line)
	}
	return Person{Name: parts[0], Age: age, Email: parts[2]}, nil
}

// String formats p as a dictionary line.
func (p Person) String() string {
	return fmt.Sprintf("%s%s%d%s%s", p.Name, Separator, p.Age, Separator, p.Email)
}

// NameHash adapts a string hash into a Person hash over the name.
func NameHash(hash func(string) uint64) func(Person) uint64 {
	return func(p Person) uint64 {
		return hash(p.Name)
	}
}

// EmailHash adapts a string hash into a Person hash over the email.
func EmailHash(hash func(string) uint64) func(Person) uint64 {
	return func(p Person) uint64 {
		return hash(p.Email)
	}
}
