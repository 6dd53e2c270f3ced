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

// Package graph defines the capability set every graph implementation in
// this module (LocalCSR, DistLocalCSR, MirrorDistLocalCSR) exposes to
// client algorithms, per §6. Per §9's design notes, VertexTopologyID and
// EdgeHandle are plain (node, index) pairs rather than raw pointers: this
// sidesteps the source's GlobalRef/GlobalPtr aliasing hazards and makes the
// handles trivially comparable and serializable.
package graph

import "fmt"

// VertexTopologyID is the runtime handle to a vertex's CSR slot: which
// node's LocalCSR holds it, and that CSR's local dense index.
type VertexTopologyID struct {
	Node  int
	Index int
}

func (v VertexTopologyID) String() string {
	return fmt.Sprintf("v(%d,%d)", v.Node, v.Index)
}

// EdgeHandle is the runtime handle to one half-edge slot: which node's
// LocalCSR holds it, and that CSR's dense index into its flat half-edge
// array.
type EdgeHandle struct {
	Node  int
	Index int
}

func (e EdgeHandle) String() string {
	return fmt.Sprintf("e(%d,%d)", e.Node, e.Index)
}

// Graph is the capability set of §6's table: every graph variant
// (LocalCSR, DistLocalCSR, MirrorDistLocalCSR) implements this over its own
// VD (vertex payload) and ED (edge payload) types.
type Graph[VD, ED any] interface {
	// Size returns the total vertex count.
	Size() int64
	// SizeEdges returns the total edge count.
	SizeEdges() int64

	// Vertices returns every vertex topology ID in this graph, in dense
	// index order.
	Vertices() []VertexTopologyID
	// Edges returns the edge-range handles for vertex v.
	Edges(v VertexTopologyID) []EdgeHandle
	// GetEdgeDst returns the destination vertex of eh.
	GetEdgeDst(eh EdgeHandle) VertexTopologyID

	// GetData returns vertex v's payload.
	GetData(v VertexTopologyID) VD
	// SetData writes vertex v's payload.
	SetData(v VertexTopologyID, d VD)
	// GetEdgeData returns edge eh's payload.
	GetEdgeData(eh EdgeHandle) ED
	// SetEdgeData writes edge eh's payload.
	SetEdgeData(eh EdgeHandle, d ED)

	// GetTopologyID resolves a user-facing token to its topology handle.
	GetTopologyID(token int64) (VertexTopologyID, bool)
	// GetTokenID resolves a topology handle back to its user-facing token.
	GetTokenID(v VertexTopologyID) int64
	// GetLocalityVertex returns the node that owns v.
	GetLocalityVertex(v VertexTopologyID) int

	// AddVertex is stubbed per §9/§1: dynamic insertion after construction
	// is a non-goal, and the source leaves this path unimplemented.
	AddVertex(token int64, data VD) error
	// AddEdges is stubbed for the same reason.
	AddEdges(src int64, dsts []int64, data []ED) error
}

// MirrorGraph extends Graph with the master/mirror accessors of §6's "For
// MDLCSR additionally" row. Only graph/mirror.CSR (the MirrorDistLocalCSR)
// implements this.
type MirrorGraph[VD, ED any] interface {
	Graph[VD, ED]

	// IsMaster reports whether v is a local master.
	IsMaster(v VertexTopologyID) bool
	// IsMirror reports whether v is a local mirror.
	IsMirror(v VertexTopologyID) bool
	// GetLocalMasterRange returns [lo, hi) of the local master index range.
	GetLocalMasterRange(node int) (lo, hi int)
	// GetLocalMirrorRange returns [lo, hi) of the local mirror index range.
	GetLocalMirrorRange(node int) (lo, hi int)
	// ResetBitSets clears every master/mirror dirty bit to false.
	ResetBitSets()
}
