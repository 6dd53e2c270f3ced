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

package container_test

import (
	"sort"
	"sync"
	"testing"

	"github.com/graphfabric/graphfabric/container"
)

// TestPerThreadVector_PushFromManyThreadsThenSort pushes 0..999 from 16
// threads in parallel and verifies the flattened+sorted result is exactly
// 0..999, the write-local/read-global round trip the container is built on.
func TestPerThreadVector_PushFromManyThreadsThenSort(t *testing.T) {
	const (
		numThreads = 16
		numItems   = 1000
	)

	v := container.NewPerThreadVector[int](numThreads)
	var wg sync.WaitGroup
	for tid := 0; tid < numThreads; tid++ {
		tid := tid
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := tid; i < numItems; i += numThreads {
				v.PushBack(tid, i)
			}
		}()
	}
	wg.Wait()

	shards := v.ComputeIndices(4)
	if got, want := v.Total(), int64(numItems); got != want {
		t.Fatalf("Total() = %d; want %d", got, want)
	}

	flat := v.Assign(shards)
	sort.Ints(flat)
	if len(flat) != numItems {
		t.Fatalf("flattened length = %d; want %d", len(flat), numItems)
	}
	for i, v := range flat {
		if v != i {
			t.Fatalf("flattened[%d] = %d; want %d (sorted result should be 0..%d)", i, v, i, numItems-1)
		}
	}
}

func TestThreadLocalVector_PreservesPerThreadOrder(t *testing.T) {
	v := container.NewThreadLocalVector[string]()
	v.PushBack(0, "a")
	v.PushBack(0, "b")
	v.PushBack(0, "c")
	v.PushBack(1, "x")
	v.PushBack(1, "y")

	shards := v.ComputeIndices(2)
	dst := make([]string, v.Total())
	v.Assign(shards, dst)

	seen := map[string]bool{}
	for _, s := range dst {
		seen[s] = true
	}
	for _, want := range []string{"a", "b", "c", "x", "y"} {
		if !seen[want] {
			t.Errorf("flattened result missing %q: %v", want, dst)
		}
	}

	// thread 0's own pushes stay in push order wherever its shard lands.
	var aIdx, bIdx, cIdx int
	for i, s := range dst {
		switch s {
		case "a":
			aIdx = i
		case "b":
			bIdx = i
		case "c":
			cIdx = i
		}
	}
	if !(aIdx < bIdx && bIdx < cIdx) {
		t.Errorf("thread 0's shard order not preserved: a=%d b=%d c=%d", aIdx, bIdx, cIdx)
	}
}

func TestPerThreadVector_HostFlattenAppendPreservesSlotOrder(t *testing.T) {
	v := container.NewPerThreadVector[int](3)
	v.PushBack(0, 1)
	v.PushBack(0, 2)
	v.PushBack(1, 3)
	v.PushBack(2, 4)
	v.PushBack(2, 5)

	shards := v.ComputeIndices(2)
	got := v.HostFlattenAppend(shards)
	want := []int{1, 2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("HostFlattenAppend length = %d; want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("HostFlattenAppend[%d] = %d; want %d", i, got[i], want[i])
		}
	}
}
