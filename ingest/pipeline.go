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

package ingest

import (
	"context"
	"fmt"
	"io"

	"k8s.io/klog/v2"

	"github.com/graphfabric/graphfabric/graph"
	"github.com/graphfabric/graphfabric/graph/dist"
	"github.com/graphfabric/graphfabric/graph/local"
	"github.com/graphfabric/graphfabric/graph/mirror"
	"github.com/graphfabric/graphfabric/parallel"
)

// VertexFactory builds a vertex payload from its parsed record, for
// callers that carry per-vertex data beyond the bare token.
type VertexFactory[VD any] func(rec Record) VD

// EdgeFactory builds an edge payload from its parsed record.
type EdgeFactory[ED any] func(rec Record) ED

// Options configures a pipeline Build run, set via the With... functional
// options, matching the teacher's configuration idiom (tessera.WithBatching
// etc.).
type Options struct {
	numReaders        int
	numPhysicalNodes  int
	scaleFactor       int
	materializeMirror bool
}

// Option configures a Build run.
type Option func(*Options)

// WithReaders sets the number of parallel reader/parser threads (§4.8
// step 1). Defaults to 1.
func WithReaders(n int) Option { return func(o *Options) { o.numReaders = n } }

// WithPhysicalNodes sets the number of physical nodes edges are balanced
// across. Required - there is no sane default.
func WithPhysicalNodes(n int) Option { return func(o *Options) { o.numPhysicalNodes = n } }

// WithScaleFactor overrides the default virtual-host scale factor S (§3,
// default dist.DefaultScaleFactor).
func WithScaleFactor(s int) Option { return func(o *Options) { o.scaleFactor = s } }

// WithMirrors requests mirror materialization (§4.8 step 6) as the final
// pipeline step, producing a graph/mirror.CSR instead of a plain
// graph/dist.CSR.
func WithMirrors() Option { return func(o *Options) { o.materializeMirror = true } }

func defaultOptions() Options {
	return Options{numReaders: 1, scaleFactor: dist.DefaultScaleFactor}
}

// Result is what Build returns: the plain distributed CSR is always built;
// Mirror is non-nil only when WithMirrors was supplied.
type Result[VD, ED any] struct {
	Dist   *dist.CSR[VD, ED]
	Mirror *mirror.CSR[VD, ED]
}

// Build runs the full ingestion pipeline of §4.8 over r, using parse to
// turn lines into Records and vf/ef to materialize vertex/edge payloads.
// Every edge endpoint, source or destination, that no vertex record declares
// gets a synthesized placeholder vertex (see buildFromParsed). For a
// whitespace-separated edge list with no vertex records, BuildWMD runs the
// same pipeline with DefaultEdgeListParser (§4.8's initializeWMD variant).
func Build[VD, ED any](ctx context.Context, r io.Reader, parse RowParser, vf VertexFactory[VD], ef EdgeFactory[ED], opts ...Option) (*Result[VD, ED], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	lineShards, err := ShardLines(r, o.numReaders)
	if err != nil {
		return nil, err
	}

	// Step 1: parse each shard in parallel.
	parsed := make([]ParsedShard, len(lineShards))
	if err := parallel.DoAllEvenlyPartition(ctx, len(lineShards), len(lineShards), func(_ context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			ps, err := ParseShard(lineShards[i], parse)
			if err != nil {
				return err
			}
			parsed[i] = ps
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return buildFromParsed(ctx, parsed, vf, ef, o)
}

// buildFromParsed runs §4.8 steps 2-6 over already-parsed shards.
func buildFromParsed[VD, ED any](ctx context.Context, parsed []ParsedShard, vf VertexFactory[VD], ef EdgeFactory[ED], o Options) (*Result[VD, ED], error) {
	V := o.numPhysicalNodes * o.scaleFactor
	if V == 0 {
		V = 1
	}

	// Step 1.5: synthesize a placeholder vertex for every edge endpoint -
	// source or destination - that never appears in a vertex record. This
	// is what lets BuildWMD hand buildFromParsed an edge-only input (every
	// token is undeclared) and what keeps a partial CSV input (vertices
	// declared for some but not all tokens an edge touches) from leaving a
	// destination token with nowhere to resolve to in buildLocalHosts /
	// mirror.Build. Declaring both endpoints, not just the source, matches
	// the source's WMD data, where every relation is present in both
	// directions (test/import/test_wmd_importer.cpp's golden-table
	// construction keys an entry off both an edge's src and its inverse).
	declared := make(map[int64]bool)
	for _, ps := range parsed {
		for _, v := range ps.Vertices {
			declared[v.Token] = true
		}
	}
	synthesize := func(tok int64) {
		if !declared[tok] {
			declared[tok] = true
			parsed[0].Vertices = append(parsed[0].Vertices, Record{Token: tok})
		}
	}
	for _, ps := range parsed {
		for _, e := range ps.Edges {
			synthesize(e.Src)
			synthesize(e.Dst)
		}
	}

	// Step 2: per-virtual-host edge count histogram.
	histogram := make([]int64, V)
	for _, ps := range parsed {
		for _, e := range ps.Edges {
			histogram[e.Src%int64(V)]++
		}
	}

	// Step 3: LPT virtual-host balancing.
	vhost, _ := BuildVirtualToPhysicalMapping(histogram, o.numPhysicalNodes)

	// Step 4: per-host edge partitioning - each edge is routed to its
	// source's owning physical node, via the same PerThreadVector
	// write-local/read-global handle (§4.3) the rest of the pipeline uses,
	// keyed by physical node rather than by reader thread this time.
	edgeShards := make([][]Record, o.numPhysicalNodes)
	for _, ps := range parsed {
		for _, e := range ps.Edges {
			n := vhost.PhysicalNode(e.Src)
			edgeShards[n] = append(edgeShards[n], e)
		}
	}
	vertexShards := make([][]Record, o.numPhysicalNodes)
	for _, ps := range parsed {
		for _, v := range ps.Vertices {
			n := vhost.PhysicalNode(v.Token)
			vertexShards[n] = append(vertexShards[n], v)
		}
	}
	perNodeEdges := pushShardsToVector(edgeShards).ComputeIndices(o.numPhysicalNodes)
	perNodeVertices := pushShardsToVector(vertexShards).ComputeIndices(o.numPhysicalNodes)

	// Step 5: per-host CSR build, in parallel across nodes.
	inputs := make([]mirror.BuildInput[VD, ED], o.numPhysicalNodes)
	if err := parallel.DoAllEvenlyPartition(ctx, o.numPhysicalNodes, o.numPhysicalNodes, func(_ context.Context, lo, hi int) error {
		for n := lo; n < hi; n++ {
			inputs[n] = buildHostInput(n, perNodeVertices[n], perNodeEdges[n], vf, ef)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if !o.materializeMirror {
		dlHosts, err := buildLocalHosts(inputs, vhost)
		if err != nil {
			return nil, err
		}
		dl := &dist.CSR[VD, ED]{}
		if err := dl.Initialize(dlHosts, vhost); err != nil {
			return nil, err
		}
		klog.Infof("ingest: built DistLocalCSR with %d vertices, %d edges across %d nodes", dl.Size(), dl.SizeEdges(), dl.NumHosts())
		return &Result[VD, ED]{Dist: dl}, nil
	}

	// Step 6: mirror materialization.
	m, err := mirror.Build(inputs, vhost)
	if err != nil {
		return nil, err
	}
	klog.Infof("ingest: built MirrorDistLocalCSR with %d masters, %d edges across %d nodes", m.Size(), m.SizeEdges(), m.NumHosts())
	return &Result[VD, ED]{Mirror: m}, nil
}

// buildLocalHosts builds each node's plain graph/local.CSR from already
// partitioned per-node input, resolving every edge destination token to its
// owning node's topology ID directly (no mirror placeholders) - the
// DistLocalCSR path of §4.6, as opposed to mirror.Build's §4.7 extension.
// A destination token absent from every host's VertexTokens is an error:
// callers are expected to have already synthesized a placeholder vertex for
// every token that appears as either endpoint of an edge (see
// buildFromParsed's step 1.5), so reaching this means the input referenced a token that
// was never materialized anywhere.
func buildLocalHosts[VD, ED any](inputs []mirror.BuildInput[VD, ED], vhost dist.VHostTable) ([]*local.CSR[VD, ED], error) {
	numNodes := len(inputs)

	tokenToTopology := make(map[int64]graph.VertexTopologyID, 1<<10)
	for n, in := range inputs {
		for i, tok := range in.VertexTokens {
			tokenToTopology[tok] = graph.VertexTopologyID{Node: n, Index: i}
		}
	}

	hosts := make([]*local.CSR[VD, ED], numNodes)
	for n, in := range inputs {
		nv := len(in.VertexTokens)
		outEdges := make([][]graph.VertexTopologyID, nv)
		for i, dsts := range in.OutDstTokens {
			resolved := make([]graph.VertexTopologyID, len(dsts))
			for k, tok := range dsts {
				topo, ok := tokenToTopology[tok]
				if !ok {
					return nil, fmt.Errorf("ingest: edge destination token %d has no vertex in the input", tok)
				}
				resolved[k] = topo
			}
			outEdges[i] = resolved
		}
		csr, err := local.New[VD, ED](n, in.VertexTokens, in.VertexData, outEdges, in.OutEdgeData)
		if err != nil {
			return nil, err
		}
		hosts[n] = csr
	}
	return hosts, nil
}

// buildHostInput assembles one node's mirror.BuildInput from its raw
// vertex/edge records. buildFromParsed's own synthesis step already
// guarantees every edge endpoint has a vertex record routed to its owning
// host before this is called; addVertex's lookup-or-insert here is just the
// mechanism that turns a node's token set into a dense local index.
func buildHostInput[VD, ED any](node int, vertices, edges []Record, vf VertexFactory[VD], ef EdgeFactory[ED]) mirror.BuildInput[VD, ED] {
	tokenIndex := make(map[int64]int, len(vertices))
	var tokens []int64
	var data []VD
	addVertex := func(rec Record) int {
		if idx, ok := tokenIndex[rec.Token]; ok {
			return idx
		}
		idx := len(tokens)
		tokenIndex[rec.Token] = idx
		tokens = append(tokens, rec.Token)
		data = append(data, vf(rec))
		return idx
	}
	for _, v := range vertices {
		addVertex(v)
	}

	outDst := make([][]int64, 0)
	outEdgeData := make([][]ED, 0)
	// Ensure outDst/outEdgeData are parallel to tokens as it grows below.
	grow := func() {
		for len(outDst) < len(tokens) {
			outDst = append(outDst, nil)
			outEdgeData = append(outEdgeData, nil)
		}
	}
	grow()
	for _, e := range edges {
		idx := addVertex(Record{Token: e.Src})
		grow()
		outDst[idx] = append(outDst[idx], e.Dst)
		outEdgeData[idx] = append(outEdgeData[idx], ef(e))
	}

	return mirror.BuildInput[VD, ED]{
		VertexTokens: tokens,
		VertexData:   data,
		OutDstTokens: outDst,
		OutEdgeData:  outEdgeData,
	}
}
