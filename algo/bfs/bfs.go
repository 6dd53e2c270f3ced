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

// Package bfs implements a level-synchronous breadth-first search over any
// graph.Graph, as a client algorithm exercising §6's capability set. BFS
// itself is explicitly out of core scope (§1's Non-goals), but the module
// layout calls for one worked example, so this follows the same
// initialize/loop/visit shape as a traditional BFS walker, generalized to
// run each level's frontier expansion as a parallel.DoAll fan-out instead of
// a single-threaded queue.
package bfs

import (
	"context"
	"sync"

	"k8s.io/klog/v2"

	"github.com/graphfabric/graphfabric/graph"
	"github.com/graphfabric/graphfabric/parallel"
	"github.com/graphfabric/graphfabric/place"
)

const infinity = -1

// Result holds one BFS traversal's outcome: Distance[v] is the number of
// hops from the start vertex, or infinity (-1) if v was never reached.
type Result struct {
	Distance map[graph.VertexTopologyID]int
	Parent   map[graph.VertexTopologyID]graph.VertexTopologyID
}

// Run performs a level-synchronous BFS from start over g, fanning each
// level's frontier out across fabric with parallel.DoAll so that neighbor
// exploration for vertices on different nodes proceeds concurrently. fabric
// may be nil, in which case every task runs in its own goroutine with no
// place pinning - suitable for a single-node graph/local.CSR.
func Run[VD, ED any](ctx context.Context, fabric *place.Fabric, g graph.Graph[VD, ED], start graph.VertexTopologyID) (*Result, error) {
	res := &Result{
		Distance: make(map[graph.VertexTopologyID]int),
		Parent:   make(map[graph.VertexTopologyID]graph.VertexTopologyID),
	}
	for _, v := range g.Vertices() {
		res.Distance[v] = infinity
	}
	if _, ok := res.Distance[start]; !ok {
		res.Distance[start] = infinity
	}
	res.Distance[start] = 0

	var mu sync.Mutex
	frontier := []graph.VertexTopologyID{start}
	depth := 0

	for len(frontier) > 0 {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		next := make(map[graph.VertexTopologyID]graph.VertexTopologyID)
		loc := func(v graph.VertexTopologyID) place.Place { return place.NodeOnly(v.Node) }

		err := parallel.DoAll(ctx, fabric, frontier, func(_ context.Context, v graph.VertexTopologyID) error {
			for _, eh := range g.Edges(v) {
				dst := g.GetEdgeDst(eh)
				mu.Lock()
				if res.Distance[dst] == infinity {
					res.Distance[dst] = -2 // claimed, depth assigned below
					next[dst] = v
				}
				mu.Unlock()
			}
			return nil
		}, loc)
		if err != nil {
			return res, err
		}

		depth++
		newFrontier := make([]graph.VertexTopologyID, 0, len(next))
		for v, parent := range next {
			res.Distance[v] = depth
			res.Parent[v] = parent
			newFrontier = append(newFrontier, v)
		}
		klog.V(2).Infof("bfs: level %d frontier size %d", depth, len(newFrontier))
		frontier = newFrontier
	}

	return res, nil
}
