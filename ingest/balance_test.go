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

package ingest_test

import (
	"testing"

	"github.com/graphfabric/graphfabric/ingest"
)

func TestBuildVirtualToPhysicalMapping_EveryVirtualHostAssigned(t *testing.T) {
	edgeCounts := []int64{10, 1, 1, 1, 50, 2, 3, 4}
	table, loads := ingest.BuildVirtualToPhysicalMapping(edgeCounts, 3)

	if got, want := table.Len(), len(edgeCounts); got != want {
		t.Fatalf("table.Len() = %d; want %d", got, want)
	}
	for v := 0; v < len(edgeCounts); v++ {
		if n := table[v]; n < 0 || n >= 3 {
			t.Errorf("virtual host %d assigned to out-of-range node %d", v, n)
		}
	}
	var total int64
	for _, l := range loads {
		total += l
	}
	var want int64
	for _, c := range edgeCounts {
		want += c
	}
	if total != want {
		t.Errorf("sum of node loads = %d; want %d (total edges)", total, want)
	}
}

// TestBuildVirtualToPhysicalMapping_BoundedByLPT verifies the classic LPT
// guarantee: no physical node's final load exceeds (4/3 - 1/(3m)) times the
// optimal balanced load, here approximated by the simpler and always-true
// bound that no node carries more than the heaviest single virtual host plus
// the average load per node (total edges / number of nodes).
func TestBuildVirtualToPhysicalMapping_BoundedByLPT(t *testing.T) {
	edgeCounts := make([]int64, 24)
	var total int64
	for i := range edgeCounts {
		edgeCounts[i] = int64((i%7)*3 + 1)
		total += edgeCounts[i]
	}
	const numNodes = 4
	_, loads := ingest.BuildVirtualToPhysicalMapping(edgeCounts, numNodes)

	avg := float64(total) / float64(numNodes)
	var maxEdge int64
	for _, c := range edgeCounts {
		if c > maxEdge {
			maxEdge = c
		}
	}
	bound := avg + float64(maxEdge)
	for n, l := range loads {
		if float64(l) > bound {
			t.Errorf("node %d load %d exceeds LPT bound %.1f", n, l, bound)
		}
	}
}

func TestBuildVirtualToPhysicalMapping_ZeroPhysicalNodesIsNoop(t *testing.T) {
	table, loads := ingest.BuildVirtualToPhysicalMapping([]int64{1, 2, 3}, 0)
	if table.Len() != 3 {
		t.Errorf("table.Len() = %d; want 3", table.Len())
	}
	if loads != nil {
		t.Errorf("loads = %v; want nil", loads)
	}
}
