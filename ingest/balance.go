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
	"container/heap"
	"sort"

	movingaverage "github.com/RobinUS2/golang-moving-average"
	"k8s.io/klog/v2"

	"github.com/graphfabric/graphfabric/graph/dist"
)

// nodeLoad is one entry of the min-heap buildVirtualToPhysicalMapping
// maintains: the current load assigned to a physical node.
type nodeLoad struct {
	node int
	load int64
}

// loadHeap is a container/heap.Interface over nodeLoad, ordered by
// ascending load so Pop always returns the currently-lightest node.
type loadHeap []nodeLoad

func (h loadHeap) Len() int            { return len(h) }
func (h loadHeap) Less(i, j int) bool  { return h[i].load < h[j].load }
func (h loadHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *loadHeap) Push(x interface{}) { *h = append(*h, x.(nodeLoad)) }
func (h *loadHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// BuildVirtualToPhysicalMapping implements §4.8 step 3: sort virtual hosts
// by edge count descending, then greedily assign each to the
// currently-lightest of numPhysicalNodes physical nodes (a min-heap of
// (load, node)), updating that node's load - the classic LPT
// (longest-processing-time) bin-packing heuristic, chosen because edge
// counts per virtual host are heavy-tailed.
//
// edgeCounts[v] is the number of edges whose source falls into virtual
// host v; len(edgeCounts) is V. Returns the resulting table and the final
// per-node loads (for diagnostics/tests - e.g. verifying the LPT bound of
// §8 property 7).
func BuildVirtualToPhysicalMapping(edgeCounts []int64, numPhysicalNodes int) (dist.VHostTable, []int64) {
	V := len(edgeCounts)
	table := dist.NewVHostTable(V)
	if numPhysicalNodes <= 0 {
		return table, nil
	}

	order := make([]int, V)
	for i := range order {
		order[i] = i
	}
	// Sort virtual hosts by edge count descending (stable, so ties break by
	// virtual-host index - deterministic, per §9's reproducibility note).
	sort.SliceStable(order, func(i, j int) bool { return edgeCounts[order[i]] > edgeCounts[order[j]] })

	h := make(loadHeap, numPhysicalNodes)
	for n := range h {
		h[n] = nodeLoad{node: n}
	}
	heap.Init(&h)

	avg := movingaverage.New(numPhysicalNodes)

	for _, v := range order {
		lightest := heap.Pop(&h).(nodeLoad)
		lightest.load += edgeCounts[v]
		table.Assign(v, lightest.node)
		heap.Push(&h, lightest)
		avg.Add(float64(lightest.load))
	}

	loads := make([]int64, numPhysicalNodes)
	for _, e := range h {
		loads[e.node] = e.load
	}
	klog.V(1).Infof("ingest: balanced %d virtual hosts onto %d nodes, trailing average load %.1f", V, numPhysicalNodes, avg.Avg())
	return table, loads
}
