// Copyright 2024 The Tessera authors. All Rights Reserved.
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

// graphstat ingests an edge/vertex file and reports the resulting
// distributed graph's per-node balance, optionally through a live
// terminal dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"k8s.io/klog/v2"

	"github.com/graphfabric/graphfabric/ingest"
)

var (
	inputPath   = flag.String("input", "", "Path to the input file (required)")
	format      = flag.String("format", "edgelist", "Input format: \"edgelist\" or \"csv\"")
	numNodes    = flag.Int("num_nodes", 4, "The number of physical nodes to balance the graph across")
	scaleFactor = flag.Int("scale_factor", 8, "The virtual-host scale factor S (virtual hosts = num_nodes * S)")
	numReaders  = flag.Int("num_readers", 4, "The number of parallel reader/parser threads")
	withMirrors = flag.Bool("mirrors", false, "Materialize mirrors (MirrorDistLocalCSR) instead of a plain DistLocalCSR")
	showUI      = flag.Bool("show_ui", true, "Set to false to disable the text-based UI")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if *inputPath == "" {
		klog.Exitf("-input is required")
	}

	f, err := os.Open(*inputPath)
	if err != nil {
		klog.Exitf("opening %q: %v", *inputPath, err)
	}
	defer f.Close()

	opts := []ingest.Option{
		ingest.WithReaders(*numReaders),
		ingest.WithPhysicalNodes(*numNodes),
		ingest.WithScaleFactor(*scaleFactor),
	}
	if *withMirrors {
		opts = append(opts, ingest.WithMirrors())
	}

	start := time.Now()
	var stats buildStats
	var err2 error
	switch *format {
	case "edgelist":
		stats, err2 = runBuild(ingest.BuildWMD[int64, int64], f, opts)
	case "csv":
		parse := ingest.DefaultCSVParser(map[string]bool{"V": true}, map[string]bool{"E": true})
		stats, err2 = runBuildCSV(parse, f, opts)
	default:
		klog.Exitf("unknown -format %q: want \"edgelist\" or \"csv\"", *format)
	}
	if err2 != nil {
		klog.Exitf("ingest failed: %v", err2)
	}
	stats.elapsed = time.Since(start)

	if *showUI {
		hostUI(context.Background(), stats)
		return
	}
	fmt.Println(stats.String())
}

// buildStats is the summary graphstat reports, whether to stdout or the TUI.
type buildStats struct {
	numNodes    int
	vertices    int64
	edges       int64
	masters     int64
	mirrors     bool
	elapsed     time.Duration
}

func (s buildStats) String() string {
	kind := "DistLocalCSR"
	if s.mirrors {
		kind = "MirrorDistLocalCSR"
	}
	return fmt.Sprintf(
		"%s across %d nodes\nvertices: %d\nedges: %d\nbuild time: %s",
		kind, s.numNodes, s.vertices, s.edges, s.elapsed.Round(time.Millisecond))
}

func runBuild(build func(context.Context, io.Reader, ingest.VertexFactory[int64], ingest.EdgeFactory[int64], ...ingest.Option) (*ingest.Result[int64, int64], error), f *os.File, opts []ingest.Option) (buildStats, error) {
	vf := func(rec ingest.Record) int64 { return rec.Token }
	ef := func(rec ingest.Record) int64 { return 1 }
	res, err := build(context.Background(), f, vf, ef, opts...)
	if err != nil {
		return buildStats{}, err
	}
	return summarize(res, *numNodes)
}

func runBuildCSV(parse ingest.RowParser, f *os.File, opts []ingest.Option) (buildStats, error) {
	vf := func(rec ingest.Record) int64 { return rec.Token }
	ef := func(rec ingest.Record) int64 { return 1 }
	res, err := ingest.Build[int64, int64](context.Background(), f, parse, vf, ef, opts...)
	if err != nil {
		return buildStats{}, err
	}
	return summarize(res, *numNodes)
}

func summarize(res *ingest.Result[int64, int64], nodes int) (buildStats, error) {
	if res.Mirror != nil {
		return buildStats{numNodes: nodes, vertices: res.Mirror.Size(), edges: res.Mirror.SizeEdges(), mirrors: true}, nil
	}
	return buildStats{numNodes: nodes, vertices: res.Dist.Size(), edges: res.Dist.SizeEdges()}, nil
}
