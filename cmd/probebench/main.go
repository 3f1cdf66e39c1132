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
	"log"

	"github.com/spf13/cobra"
)

func makeProbebenchCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "probebench [command] (flags)",
		Short: "probebench compares openaddr probing strategies against Go's builtin map.",
		Long: `probebench compares openaddr probing strategies against Go's builtin map.

Typical usage:
    probebench generate 100000 > people.txt
        Generate a dictionary of 100000 random people.

    probebench run people.txt --maps=standard,linear,quadratic,double
        Insert every person into each map and summarize the insertion latencies.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	command.AddCommand(makeRunCommand())
	command.AddCommand(makeGenerateCommand())
	return command
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("probebench: ")
	if err := makeProbebenchCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
