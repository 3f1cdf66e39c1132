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
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/openaddr/internal/dictgen"
	"github.com/spf13/cobra"
)

type generateConfig struct {
	count int
	seed  uint64
}

func makeGenerateCommand() *cobra.Command {
	var config generateConfig
	runCmdFunc := func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return errors.Newf("N should be a non-negative integer, got %q", args[0])
		}
		config.count = n
		if config.seed == 0 {
			config.seed = uint64(time.Now().UnixNano())
		}
		return dictgen.Generate(cmd.OutOrStdout(), config.count, gofakeit.New(config.seed))
	}

	cmd := &cobra.Command{
		Use:   "generate <N>",
		Short: "Write a dictionary of N random people to stdout",
		Long:  `Write a dictionary of N random name;age;email lines to stdout, suitable as input to run.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runCmdFunc,
	}
	cmd.Flags().Uint64Var(&config.seed, "seed", config.seed, "random seed (0 picks one from the clock)")
	return cmd
}
