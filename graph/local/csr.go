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

// Package local implements LocalCSR (§4.5, §5 C5): a single-place
// compressed sparse row graph over the vertex/edge topology of §3, with the
// token<->topology maps that let callers address vertices by their
// user-facing ids.
package local

import (
	"github.com/graphfabric/graphfabric/graph"
	"github.com/graphfabric/graphfabric/status"
)

// CSR is a single-node compressed sparse row graph. Offsets has length
// size()+1, the trailing sentinel is mandatory per §3; HalfEdges has length
// sizeEdges() and stores each edge's destination already resolved to a
// topology ID (possibly on another node) - traversal never reconsults a
// token map, per §4.6.
type CSR[VD, ED any] struct {
	Node int

	Offsets   []int64
	HalfEdges []graph.VertexTopologyID

	VertexData []VD
	EdgeData   []ED

	TokenToTopology map[int64]graph.VertexTopologyID
	TopologyToToken []int64
}

// New builds a CSR for node from vertex tokens (in the order they should
// receive dense indices) and, for each vertex, its already-topology-resolved
// out-edges (destination + payload). len(vertexTokens) == len(outEdges) ==
// len(vertexData).
func New[VD, ED any](node int, vertexTokens []int64, vertexData []VD, outEdges [][]graph.VertexTopologyID, edgeData [][]ED) (*CSR[VD, ED], error) {
	nv := len(vertexTokens)
	if len(vertexData) != nv || len(outEdges) != nv || len(edgeData) != nv {
		return nil, status.ErrOutOfBounds
	}

	c := &CSR[VD, ED]{
		Node:            node,
		Offsets:         make([]int64, nv+1),
		TokenToTopology: make(map[int64]graph.VertexTopologyID, nv),
		TopologyToToken: append([]int64(nil), vertexTokens...),
		VertexData:      append([]VD(nil), vertexData...),
	}

	var total int64
	for i := 0; i < nv; i++ {
		c.Offsets[i] = total
		total += int64(len(outEdges[i]))
	}
	c.Offsets[nv] = total

	c.HalfEdges = make([]graph.VertexTopologyID, 0, total)
	c.EdgeData = make([]ED, 0, total)
	for i := 0; i < nv; i++ {
		c.HalfEdges = append(c.HalfEdges, outEdges[i]...)
		c.EdgeData = append(c.EdgeData, edgeData[i]...)
		c.TokenToTopology[vertexTokens[i]] = graph.VertexTopologyID{Node: node, Index: i}
	}

	return c, nil
}

// Size returns the local vertex count.
func (c *CSR[VD, ED]) Size() int64 { return int64(len(c.TopologyToToken)) }

// SizeEdges returns the local edge count.
func (c *CSR[VD, ED]) SizeEdges() int64 { return int64(len(c.HalfEdges)) }

// GetNumEdges returns the out-degree of v.
func (c *CSR[VD, ED]) GetNumEdges(v graph.VertexTopologyID) int64 {
	return c.Offsets[v.Index+1] - c.Offsets[v.Index]
}

// Vertices returns every local vertex's topology ID in dense index order.
func (c *CSR[VD, ED]) Vertices() []graph.VertexTopologyID {
	out := make([]graph.VertexTopologyID, len(c.TopologyToToken))
	for i := range out {
		out[i] = graph.VertexTopologyID{Node: c.Node, Index: i}
	}
	return out
}

// Edges returns the edge-range handles for vertex v.
func (c *CSR[VD, ED]) Edges(v graph.VertexTopologyID) []graph.EdgeHandle {
	lo, hi := c.Offsets[v.Index], c.Offsets[v.Index+1]
	out := make([]graph.EdgeHandle, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, graph.EdgeHandle{Node: c.Node, Index: int(i)})
	}
	return out
}

// GetEdgeDst returns the destination topology ID of eh.
func (c *CSR[VD, ED]) GetEdgeDst(eh graph.EdgeHandle) graph.VertexTopologyID {
	return c.HalfEdges[eh.Index]
}

// GetData returns vertex v's payload.
func (c *CSR[VD, ED]) GetData(v graph.VertexTopologyID) VD { return c.VertexData[v.Index] }

// SetData writes vertex v's payload.
func (c *CSR[VD, ED]) SetData(v graph.VertexTopologyID, d VD) { c.VertexData[v.Index] = d }

// GetEdgeData returns edge eh's payload.
func (c *CSR[VD, ED]) GetEdgeData(eh graph.EdgeHandle) ED { return c.EdgeData[eh.Index] }

// SetEdgeData writes edge eh's payload.
func (c *CSR[VD, ED]) SetEdgeData(eh graph.EdgeHandle, d ED) { c.EdgeData[eh.Index] = d }

// GetTopologyID resolves token to its local topology handle.
func (c *CSR[VD, ED]) GetTopologyID(token int64) (graph.VertexTopologyID, bool) {
	v, ok := c.TokenToTopology[token]
	return v, ok
}

// GetTokenID resolves v back to its user-facing token.
func (c *CSR[VD, ED]) GetTokenID(v graph.VertexTopologyID) int64 {
	return c.TopologyToToken[v.Index]
}

// GetLocalityVertex returns the node that owns v - always this CSR's own
// node, since LocalCSR never holds a remote vertex.
func (c *CSR[VD, ED]) GetLocalityVertex(v graph.VertexTopologyID) int { return c.Node }

// AddVertex is stubbed; dynamic insertion after construction is a non-goal (§1, §9).
func (c *CSR[VD, ED]) AddVertex(token int64, data VD) error { return status.ErrUnsupported }

// AddEdges is stubbed for the same reason.
func (c *CSR[VD, ED]) AddEdges(src int64, dsts []int64, data []ED) error {
	return status.ErrUnsupported
}

// Deinitialize drops this CSR's backing arrays. There is no destructor-
// driven cleanup (§3); callers must call this explicitly.
func (c *CSR[VD, ED]) Deinitialize() {
	c.Offsets = nil
	c.HalfEdges = nil
	c.VertexData = nil
	c.EdgeData = nil
	c.TokenToTopology = nil
	c.TopologyToToken = nil
}
