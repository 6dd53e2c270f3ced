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

package dist

import (
	"github.com/graphfabric/graphfabric/graph"
	"github.com/graphfabric/graphfabric/graph/local"
	"github.com/graphfabric/graphfabric/status"
)

// CSR wraps one graph/local.CSR per node (addressed directly by node index
// here, rather than through container.HostLocalStorage, since the routing
// rules below only ever need "the CSR belonging to node n" and never a
// GlobalPtr to the CSR struct itself) plus the virtual-host table and
// global counters, per §3/§4.6.
type CSR[VD, ED any] struct {
	hosts []*local.CSR[VD, ED] // one per node
	vhost VHostTable

	totalVertices int64
	totalEdges    int64
	initialized   bool
}

// Initialize installs the per-node CSRs (already built, e.g. by package
// ingest) and the virtual-host table. Returns status.ErrAlreadyInit if
// called twice.
func (d *CSR[VD, ED]) Initialize(hosts []*local.CSR[VD, ED], vhost VHostTable) error {
	if d.initialized {
		return status.ErrAlreadyInit
	}
	var tv, te int64
	for _, h := range hosts {
		tv += h.Size()
		te += h.SizeEdges()
	}
	d.hosts = hosts
	d.vhost = vhost
	d.totalVertices = tv
	d.totalEdges = te
	d.initialized = true
	return nil
}

// Host returns node n's local CSR.
func (d *CSR[VD, ED]) Host(n int) *local.CSR[VD, ED] { return d.hosts[n] }

// NumHosts returns the number of nodes this graph spans.
func (d *CSR[VD, ED]) NumHosts() int { return len(d.hosts) }

// VHost returns the virtual-host table backing this graph's routing.
func (d *CSR[VD, ED]) VHost() VHostTable { return d.vhost }

// Size returns the total vertex count across all nodes.
func (d *CSR[VD, ED]) Size() int64 { return d.totalVertices }

// SizeEdges returns the total edge count across all nodes.
func (d *CSR[VD, ED]) SizeEdges() int64 { return d.totalEdges }

// Vertices returns every vertex topology ID across every node, in node then
// dense-index order.
func (d *CSR[VD, ED]) Vertices() []graph.VertexTopologyID {
	out := make([]graph.VertexTopologyID, 0, d.totalVertices)
	for _, h := range d.hosts {
		out = append(out, h.Vertices()...)
	}
	return out
}

// Edges returns the edge-range handles for vertex v, delegating to v's
// owning node's LocalCSR.
func (d *CSR[VD, ED]) Edges(v graph.VertexTopologyID) []graph.EdgeHandle {
	return d.hosts[v.Node].Edges(v)
}

// GetEdgeDst reads the half-edge (possibly on a remote node, from the
// caller's perspective) and returns its stored destination, already
// resolved to a topology ID at construction time (§4.6: "traversal never
// reconsults the token map").
func (d *CSR[VD, ED]) GetEdgeDst(eh graph.EdgeHandle) graph.VertexTopologyID {
	return d.hosts[eh.Node].GetEdgeDst(eh)
}

// GetData returns vertex v's payload.
func (d *CSR[VD, ED]) GetData(v graph.VertexTopologyID) VD { return d.hosts[v.Node].GetData(v) }

// SetData writes vertex v's payload.
func (d *CSR[VD, ED]) SetData(v graph.VertexTopologyID, data VD) { d.hosts[v.Node].SetData(v, data) }

// GetEdgeData returns edge eh's payload.
func (d *CSR[VD, ED]) GetEdgeData(eh graph.EdgeHandle) ED { return d.hosts[eh.Node].GetEdgeData(eh) }

// SetEdgeData writes edge eh's payload.
func (d *CSR[VD, ED]) SetEdgeData(eh graph.EdgeHandle, data ED) {
	d.hosts[eh.Node].SetEdgeData(eh, data)
}

// GetTopologyID computes the owning physical node from token via the
// virtual-host table and delegates the lookup to that node's LocalCSR,
// per §4.6.
func (d *CSR[VD, ED]) GetTopologyID(token int64) (graph.VertexTopologyID, bool) {
	p := d.vhost.PhysicalNode(token)
	return d.hosts[p].GetTopologyID(token)
}

// GetTokenID resolves v back to its user-facing token via its owning node.
func (d *CSR[VD, ED]) GetTokenID(v graph.VertexTopologyID) int64 {
	return d.hosts[v.Node].GetTokenID(v)
}

// GetLocalityVertex returns the node owning v - the locality of the
// pointer, per §4.6.
func (d *CSR[VD, ED]) GetLocalityVertex(v graph.VertexTopologyID) int { return v.Node }

// GetVertexIndex returns v's dense global index: its local index on its
// node, plus the sum of sizes of preceding nodes, per §4.6.
func (d *CSR[VD, ED]) GetVertexIndex(v graph.VertexTopologyID) int64 {
	var base int64
	for n := 0; n < v.Node; n++ {
		base += d.hosts[n].Size()
	}
	return base + int64(v.Index)
}

// AddVertex is stubbed; dynamic insertion after construction is a non-goal (§1, §9).
func (d *CSR[VD, ED]) AddVertex(token int64, data VD) error { return status.ErrUnsupported }

// AddEdges is stubbed for the same reason.
func (d *CSR[VD, ED]) AddEdges(src int64, dsts []int64, data []ED) error {
	return status.ErrUnsupported
}

// Deinitialize recursively frees every node's LocalCSR. There is no
// destructor-driven cleanup (§3); the caller must pair this with
// Initialize explicitly.
func (d *CSR[VD, ED]) Deinitialize() {
	for _, h := range d.hosts {
		h.Deinitialize()
	}
	d.hosts = nil
	d.vhost = nil
	d.totalVertices = 0
	d.totalEdges = 0
	d.initialized = false
}
