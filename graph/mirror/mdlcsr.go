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

// Package mirror implements MirrorDistLocalCSR (§4.7, §5 C7): a
// DistLocalCSR whose local vertex range is split into masters and mirrors,
// plus the sync/reduce/broadcast protocol that keeps mirror replicas
// consistent with their owning masters.
package mirror

import (
	"sort"

	"github.com/graphfabric/graphfabric/graph"
	"github.com/graphfabric/graphfabric/graph/dist"
	"github.com/graphfabric/graphfabric/graph/local"
	"github.com/graphfabric/graphfabric/status"
)

// remotePair is a (local handle, remote handle) mapping: either a local
// mirror paired with its remote master, or a local master paired with one
// of its remote mirrors, depending on which table it's stored in.
type remotePair struct {
	Local  graph.VertexTopologyID
	Remote graph.VertexTopologyID
}

// CSR is a DistLocalCSR whose per-node vertex range is split
// [masterRange | mirrorRange], per §3/§4.7. Masters are authoritative;
// mirrors are read-only replicas of vertices owned elsewhere but
// referenced by a local edge.
type CSR[VD, ED any] struct {
	dl *dist.CSR[VD, ED]

	masterCount []int // per node
	mirrorCount []int // per node

	// localMirrorToRemoteMasterOrderedTable, aligned with each node's
	// mirrorRange: entry i is (local mirror, remote master).
	mirrorToMaster [][]remotePair

	// localMasterToRemoteMirrorTable, indexed [node][localMasterIndex]:
	// every remote mirror registered against that master, built by the
	// exchange in step 6 of §4.7's construction contract.
	masterToMirrors [][][]graph.VertexTopologyID

	masterBits [][]bool
	mirrorBits [][]bool
}

// BuildInput is the per-node raw material described by §4.7 step 1: masters
// only, with edge destinations still expressed as tokens.
type BuildInput[VD, ED any] struct {
	VertexTokens []int64
	VertexData   []VD
	// OutDstTokens[i] / OutEdgeData[i] are vertex i's out-edges (i indexes
	// VertexTokens).
	OutDstTokens [][]int64
	OutEdgeData  [][]ED
}

// Build constructs the full MirrorDistLocalCSR from per-node master data
// and a virtual-host table, executing §4.7's seven construction steps.
func Build[VD, ED any](inputs []BuildInput[VD, ED], vhost dist.VHostTable) (*CSR[VD, ED], error) {
	numNodes := len(inputs)

	// Step 1 (partial): a global token -> master VID map, needed to resolve
	// both same-node and cross-node edge destinations below.
	tokenToMaster := make(map[int64]graph.VertexTopologyID, 1<<10)
	for n, in := range inputs {
		for i, tok := range in.VertexTokens {
			tokenToMaster[tok] = graph.VertexTopologyID{Node: n, Index: i}
		}
	}

	// Step 2: derive each node's mirror list - the set of distinct remote
	// tokens referenced by a local edge.
	mirrorTokens := make([][]int64, numNodes)
	mirrorSeen := make([]map[int64]bool, numNodes)
	for n := range inputs {
		mirrorSeen[n] = make(map[int64]bool)
	}
	for n, in := range inputs {
		for _, dsts := range in.OutDstTokens {
			for _, tok := range dsts {
				p := vhost.PhysicalNode(tok)
				if p == n {
					continue
				}
				if !mirrorSeen[n][tok] {
					mirrorSeen[n][tok] = true
					mirrorTokens[n] = append(mirrorTokens[n], tok)
				}
			}
		}
	}
	for n := range mirrorTokens {
		sort.Slice(mirrorTokens[n], func(i, j int) bool { return mirrorTokens[n][i] < mirrorTokens[n][j] })
	}

	// Step 3: extend each node's vertex array with one placeholder per
	// mirror token, and record the master/mirror ranges.
	masterCount := make([]int, numNodes)
	mirrorCount := make([]int, numNodes)
	mirrorIndexByToken := make([]map[int64]int, numNodes) // token -> mirror-local-index within node
	for n, in := range inputs {
		masterCount[n] = len(in.VertexTokens)
		mirrorCount[n] = len(mirrorTokens[n])
		mirrorIndexByToken[n] = make(map[int64]int, mirrorCount[n])
		for i, tok := range mirrorTokens[n] {
			mirrorIndexByToken[n][tok] = i
		}
	}

	// Step 4: rewrite destinations, building each node's full CSR input
	// (masters followed by mirror placeholders).
	hosts := make([]*local.CSR[VD, ED], numNodes)
	for n, in := range inputs {
		nv := masterCount[n] + mirrorCount[n]
		tokens := make([]int64, nv)
		data := make([]VD, nv)
		outEdges := make([][]graph.VertexTopologyID, nv)
		edgeData := make([][]ED, nv)

		copy(tokens, in.VertexTokens)
		copy(data, in.VertexData)
		for i, tok := range mirrorTokens[n] {
			tokens[masterCount[n]+i] = tok
			// mirror placeholders start zero-valued until the first sync;
			// §4.7 step 3 calls them placeholders for exactly this reason.
		}

		for i := range in.VertexTokens {
			dsts := in.OutDstTokens[i]
			resolved := make([]graph.VertexTopologyID, len(dsts))
			for k, tok := range dsts {
				p := vhost.PhysicalNode(tok)
				if p == n {
					resolved[k] = tokenToMaster[tok]
				} else {
					resolved[k] = graph.VertexTopologyID{Node: n, Index: masterCount[n] + mirrorIndexByToken[n][tok]}
				}
			}
			outEdges[i] = resolved
			edgeData[i] = in.OutEdgeData[i]
		}
		// Mirror placeholders have no out-edges of their own.
		for i := masterCount[n]; i < nv; i++ {
			outEdges[i] = nil
			edgeData[i] = nil
		}

		csr, err := local.New[VD, ED](n, tokens, data, outEdges, edgeData)
		if err != nil {
			return nil, err
		}
		hosts[n] = csr
	}

	dl := &dist.CSR[VD, ED]{}
	if err := dl.Initialize(hosts, vhost); err != nil {
		return nil, err
	}

	// Step 5: localMirrorToRemoteMasterOrderedTable, aligned with mirrorRange.
	mirrorToMaster := make([][]remotePair, numNodes)
	for n := range inputs {
		pairs := make([]remotePair, mirrorCount[n])
		for i, tok := range mirrorTokens[n] {
			local := graph.VertexTopologyID{Node: n, Index: masterCount[n] + i}
			pairs[i] = remotePair{Local: local, Remote: tokenToMaster[tok]}
		}
		mirrorToMaster[n] = pairs
	}

	// Step 6: exchange - every node ships (local mirror, remote master) to
	// the master's owner, which appends it to its own masterToMirrors.
	masterToMirrors := make([][][]graph.VertexTopologyID, numNodes)
	for n := range inputs {
		masterToMirrors[n] = make([][]graph.VertexTopologyID, masterCount[n])
	}
	for n := range inputs {
		for _, pair := range mirrorToMaster[n] {
			owner, idx := pair.Remote.Node, pair.Remote.Index
			masterToMirrors[owner][idx] = append(masterToMirrors[owner][idx], pair.Local)
		}
	}

	// Step 7: dirty-tracking bit sets, one bit per master/mirror, initialized false.
	masterBits := make([][]bool, numNodes)
	mirrorBits := make([][]bool, numNodes)
	for n := range inputs {
		masterBits[n] = make([]bool, masterCount[n])
		mirrorBits[n] = make([]bool, mirrorCount[n])
	}

	return &CSR[VD, ED]{
		dl:              dl,
		masterCount:     masterCount,
		mirrorCount:     mirrorCount,
		mirrorToMaster:  mirrorToMaster,
		masterToMirrors: masterToMirrors,
		masterBits:      masterBits,
		mirrorBits:      mirrorBits,
	}, nil
}

// Size returns the total master vertex count across all nodes. Mirrors are
// replicas, not distinct logical vertices, so they are excluded - matching
// §3's description of the graph's "real" vertex set.
func (c *CSR[VD, ED]) Size() int64 {
	var total int64
	for _, m := range c.masterCount {
		total += int64(m)
	}
	return total
}

// SizeEdges returns the total edge count across all nodes.
func (c *CSR[VD, ED]) SizeEdges() int64 { return c.dl.SizeEdges() }

// NumHosts returns the number of nodes this graph spans.
func (c *CSR[VD, ED]) NumHosts() int { return c.dl.NumHosts() }

// Vertices returns every master vertex's topology ID, node by node.
func (c *CSR[VD, ED]) Vertices() []graph.VertexTopologyID {
	out := make([]graph.VertexTopologyID, 0, c.Size())
	for n, mc := range c.masterCount {
		for i := 0; i < mc; i++ {
			out = append(out, graph.VertexTopologyID{Node: n, Index: i})
		}
	}
	return out
}

// Edges returns the edge-range handles for vertex v.
func (c *CSR[VD, ED]) Edges(v graph.VertexTopologyID) []graph.EdgeHandle { return c.dl.Edges(v) }

// GetEdgeDst returns eh's destination, which may be a local mirror rather
// than the remote master, per step 4 of §4.7's construction contract.
func (c *CSR[VD, ED]) GetEdgeDst(eh graph.EdgeHandle) graph.VertexTopologyID { return c.dl.GetEdgeDst(eh) }

// GetData returns v's payload (master or mirror - both are readable).
func (c *CSR[VD, ED]) GetData(v graph.VertexTopologyID) VD { return c.dl.GetData(v) }

// SetData writes v's payload and sets the matching dirty bit: the mirror
// bit if v is a local mirror, the master bit if v is a local master.
func (c *CSR[VD, ED]) SetData(v graph.VertexTopologyID, d VD) {
	c.dl.SetData(v, d)
	c.markDirty(v)
}

// SetDataOnly writes v's payload without touching either bit set, per
// §4.7's accessor table.
func (c *CSR[VD, ED]) SetDataOnly(v graph.VertexTopologyID, d VD) {
	c.dl.SetData(v, d)
}

func (c *CSR[VD, ED]) markDirty(v graph.VertexTopologyID) {
	if c.IsMirror(v) {
		c.mirrorBits[v.Node][v.Index-c.masterCount[v.Node]] = true
	} else {
		c.masterBits[v.Node][v.Index] = true
	}
}

// GetEdgeData returns edge eh's payload.
func (c *CSR[VD, ED]) GetEdgeData(eh graph.EdgeHandle) ED { return c.dl.GetEdgeData(eh) }

// SetEdgeData writes edge eh's payload.
func (c *CSR[VD, ED]) SetEdgeData(eh graph.EdgeHandle, d ED) { c.dl.SetEdgeData(eh, d) }

// GetTopologyID resolves a token to its master topology handle.
func (c *CSR[VD, ED]) GetTopologyID(token int64) (graph.VertexTopologyID, bool) {
	return c.dl.GetTopologyID(token)
}

// GetTokenID resolves v back to its user-facing token.
func (c *CSR[VD, ED]) GetTokenID(v graph.VertexTopologyID) int64 { return c.dl.GetTokenID(v) }

// GetLocalityVertex returns the node owning v.
func (c *CSR[VD, ED]) GetLocalityVertex(v graph.VertexTopologyID) int { return v.Node }

// IsMaster reports whether v is a local master.
func (c *CSR[VD, ED]) IsMaster(v graph.VertexTopologyID) bool {
	return v.Index < c.masterCount[v.Node]
}

// IsMirror reports whether v is a local mirror.
func (c *CSR[VD, ED]) IsMirror(v graph.VertexTopologyID) bool { return !c.IsMaster(v) }

// GetLocalMasterRange returns [lo, hi) of node's master index range.
func (c *CSR[VD, ED]) GetLocalMasterRange(node int) (int, int) { return 0, c.masterCount[node] }

// GetLocalMirrorRange returns [lo, hi) of node's mirror index range.
func (c *CSR[VD, ED]) GetLocalMirrorRange(node int) (int, int) {
	lo := c.masterCount[node]
	return lo, lo + c.mirrorCount[node]
}

// ResetBitSets clears every master/mirror dirty bit to false, per §8's
// round-trip law.
func (c *CSR[VD, ED]) ResetBitSets() {
	for n := range c.masterBits {
		for i := range c.masterBits[n] {
			c.masterBits[n][i] = false
		}
		for i := range c.mirrorBits[n] {
			c.mirrorBits[n][i] = false
		}
	}
}

// AddVertex is stubbed; dynamic insertion after construction is a non-goal (§1, §9).
func (c *CSR[VD, ED]) AddVertex(token int64, data VD) error { return status.ErrUnsupported }

// AddEdges is stubbed for the same reason.
func (c *CSR[VD, ED]) AddEdges(src int64, dsts []int64, data []ED) error {
	return status.ErrUnsupported
}

// Deinitialize recursively frees the underlying DistLocalCSR and drops the
// mirror bookkeeping. There is no destructor-driven cleanup (§3).
func (c *CSR[VD, ED]) Deinitialize() {
	c.dl.Deinitialize()
	c.masterCount = nil
	c.mirrorCount = nil
	c.mirrorToMaster = nil
	c.masterToMirrors = nil
	c.masterBits = nil
	c.mirrorBits = nil
}
