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
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/codahale/hdrhistogram"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/openaddr"
	"github.com/cockroachdb/openaddr/internal/person"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const (
	// Put latencies outside [minLatency, maxLatency] are clamped before being
	// recorded.
	minLatency = 1
	maxLatency = int64(10 * time.Second)
	sigFigs    = 3
)

type runConfig struct {
	dictionary      string
	maps            []string
	hash            string
	value           int
	perOp           bool
	initialCapacity int
	minLoad         float64
	maxLoad         float64
	reclaim         bool
}

func defaultRunConfig() runConfig {
	return runConfig{
		maps:            []string{"standard", "linear", "quadratic", "double"},
		hash:            "sum",
		value:           42,
		initialCapacity: 10,
		minLoad:         0.1,
		maxLoad:         0.7,
	}
}

func (c runConfig) tableOptions() []openaddr.Option[person.Person, int] {
	options := []openaddr.Option[person.Person, int]{
		openaddr.WithInitialCapacity[person.Person, int](c.initialCapacity),
		openaddr.WithMinLoadFactor[person.Person, int](c.minLoad),
		openaddr.WithMaxLoadFactor[person.Person, int](c.maxLoad),
	}
	if c.reclaim {
		options = append(options, openaddr.WithTombstoneReclaim[person.Person, int]())
	}
	return options
}

func makeRunCommand() *cobra.Command {
	config := defaultRunConfig()
	runCmdFunc := func(cmd *cobra.Command, args []string) error {
		config.dictionary = args[0]
		f, err := os.Open(config.dictionary)
		if err != nil {
			return errors.Wrapf(err, "could not open dictionary %s", config.dictionary)
		}
		defer f.Close()

		r, err := newRunner(config, cmd.OutOrStdout(), log.Default())
		if err != nil {
			return err
		}
		if err := r.run(f); err != nil {
			return err
		}
		return r.summarize()
	}

	cmd := &cobra.Command{
		Use:   "run <dictionary>",
		Short: "Time insertions of a dictionary into each map",
		Long: `Read a dictionary of name;age;email lines and insert every person into each
of the selected maps, timing each insertion. Lines that do not hold a person
are logged and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: runCmdFunc,
	}
	cmd.Flags().StringSliceVar(&config.maps, "maps", config.maps, "maps to compare: standard, linear, quadratic, double")
	cmd.Flags().StringVar(&config.hash, "hash", config.hash, "string hash for the tables: sum or xx")
	cmd.Flags().IntVar(&config.value, "value", config.value, "value stored for every person")
	cmd.Flags().BoolVar(&config.perOp, "per-op", config.perOp, "print the latency of every insertion as <map> <nanos>")
	cmd.Flags().IntVar(&config.initialCapacity, "initial-capacity", config.initialCapacity, "initial bucket count of the tables")
	cmd.Flags().Float64Var(&config.minLoad, "min-load", config.minLoad, "load factor below which the tables shrink")
	cmd.Flags().Float64Var(&config.maxLoad, "max-load", config.maxLoad, "load factor above which the tables grow")
	cmd.Flags().BoolVar(&config.reclaim, "reclaim", config.reclaim, "decrement the tombstone count when a tombstone is reused")
	return cmd
}

// runner inserts every person of a dictionary into a set of maps, recording
// the latency of each insertion per map.
type runner struct {
	config  runConfig
	out     io.Writer
	logger  *log.Logger
	labels  []string
	maps    []benchMap
	hists   []*hdrhistogram.Histogram
	people  int
	ignored int
}

func newRunner(config runConfig, out io.Writer, logger *log.Logger) (*runner, error) {
	if len(config.maps) == 0 {
		return nil, errors.New("no maps selected")
	}
	r := &runner{config: config, out: out, logger: logger}
	for _, name := range config.maps {
		m, err := newBenchMap(name, config)
		if err != nil {
			return nil, errors.Wrapf(err, "creating map %s", name)
		}
		r.labels = append(r.labels, name)
		r.maps = append(r.maps, m)
		r.hists = append(r.hists, hdrhistogram.New(minLatency, maxLatency, sigFigs))
	}
	return r, nil
}

// run reads the dictionary from in and inserts each person into every map.
func (r *runner) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		p, err := person.ParseLine(line)
		if err != nil {
			r.logger.Printf("ignoring line: %s", line)
			r.ignored++
			continue
		}
		r.people++
		for i, m := range r.maps {
			start := time.Now()
			m.put(p, r.config.value)
			d := time.Since(start)

			if r.config.perOp {
				fmt.Fprintf(r.out, "%s %d\n", r.labels[i], d.Nanoseconds())
			}
			if err := r.hists[i].RecordValue(clampLatency(d.Nanoseconds())); err != nil {
				return errors.Wrapf(err, "recording latency for %s", r.labels[i])
			}
		}
	}
	return errors.Wrap(scanner.Err(), "reading dictionary")
}

func clampLatency(ns int64) int64 {
	return min(max(ns, minLatency), maxLatency)
}

// summarize renders a table with one row per map.
func (r *runner) summarize() error {
	fmt.Fprintf(r.out, "people=%s ignored=%s\n", humanize.Comma(int64(r.people)), humanize.Comma(int64(r.ignored)))

	table := tablewriter.NewWriter(r.out)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeader([]string{"map", "len", "mean", "p50", "p99", "max", "capacity", "grows", "probes"})
	for i, m := range r.maps {
		h := r.hists[i]
		row := []string{
			r.labels[i],
			humanize.Comma(int64(m.len())),
			time.Duration(h.Mean()).String(),
			time.Duration(h.ValueAtQuantile(50)).String(),
			time.Duration(h.ValueAtQuantile(99)).String(),
			time.Duration(h.Max()).String(),
			"-", "-", "-",
		}
		if s, ok := m.stats(); ok {
			row[6] = humanize.Comma(int64(s.Capacity))
			row[7] = strconv.Itoa(s.Grows)
			row[8] = humanize.Comma(int64(s.Probes))
		}
		table.Append(row)
	}
	table.Render()
	return nil
}
