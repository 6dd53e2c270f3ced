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
	"testing"

	"github.com/graphfabric/graphfabric/arena"
	"github.com/graphfabric/graphfabric/container"
	"github.com/graphfabric/graphfabric/place"
)

func newTestDirectory(nodes int) *arena.Directory {
	dims := place.Dims{Nodes: nodes, PodsPerNode: 1, CoresPerPod: 1}
	threadDims := place.ThreadDims{ThreadsPerCore: 1}
	return arena.NewDirectory(dims, threadDims)
}

func placesFor(nodes int) []place.Place {
	out := make([]place.Place, nodes)
	for i := range out {
		out[i] = place.NodeOnly(i)
	}
	return out
}

func TestDistArray_SetGetRoundTrip(t *testing.T) {
	dir := newTestDirectory(3)
	places := placesFor(3)

	var arr container.DistArray[int]
	if err := arr.Initialize(dir, places, arena.Main, 10); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer arr.Deinitialize()

	for i := 0; i < 10; i++ {
		arr.Set(i, i*i)
	}
	for i := 0; i < 10; i++ {
		if got := arr.Get(i).Deref(); got != i*i {
			t.Errorf("Get(%d) = %d; want %d", i, got, i*i)
		}
	}
}

func TestDistArray_SliceMatchesLogicalOrder(t *testing.T) {
	dir := newTestDirectory(4)
	places := placesFor(4)

	var arr container.DistArray[string]
	if err := arr.Initialize(dir, places, arena.Main, 7); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer arr.Deinitialize()

	want := []string{"a", "b", "c", "d", "e", "f", "g"}
	for i, v := range want {
		arr.Set(i, v)
	}

	got := arr.Slice()
	if len(got) != len(want) {
		t.Fatalf("Slice() length = %d; want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Slice()[%d] = %q; want %q", i, got[i], want[i])
		}
	}
}

func TestDistArray_InitializeTwiceFails(t *testing.T) {
	dir := newTestDirectory(2)
	places := placesFor(2)

	var arr container.DistArray[int]
	if err := arr.Initialize(dir, places, arena.Main, 4); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := arr.Initialize(dir, places, arena.Main, 4); err == nil {
		t.Fatal("expected an error re-initializing an already-initialized DistArray")
	}
}
