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

package arena

import (
	"errors"
	"testing"

	"github.com/graphfabric/graphfabric/place"
	"github.com/graphfabric/graphfabric/status"
)

func TestSlabAllocateAndReuse(t *testing.T) {
	a := New(place.NodeOnly(0), Main, 4*Granule)
	s := NewSlab[int64](a)

	idx, err := s.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	s.Store(idx, 7)
	if got := s.Load(idx); got != 7 {
		t.Errorf("Load(%d) = %d, want 7", idx, got)
	}

	s.Deallocate(idx)
	if got, want := a.UsedGranules(), 0; got != want {
		t.Errorf("UsedGranules after deallocate = %d, want %d", got, want)
	}

	idx2, err := s.Allocate()
	if err != nil {
		t.Fatalf("Allocate after Deallocate: %v", err)
	}
	if idx2 != idx {
		t.Errorf("expected reused offset %d, got %d", idx, idx2)
	}
}

func TestArenaExhaustion(t *testing.T) {
	a := New(place.NodeOnly(0), L1SP, Granule) // room for exactly 1 granule
	s := NewSlab[[Granule]byte](a)

	if _, err := s.Allocate(); err != nil {
		t.Fatalf("first Allocate should succeed: %v", err)
	}
	_, err := s.Allocate()
	if !errors.Is(err, status.ErrBadAlloc) {
		t.Errorf("second Allocate err = %v, want %v", err, status.ErrBadAlloc)
	}
}

func TestGlobalPtrFromSlab(t *testing.T) {
	a := New(place.NodeOnly(2), Main, DefaultHostBytes)
	s := NewSlab[string](a)
	idx, err := s.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	p := s.Ptr(idx)
	p.Store("hi")
	if got := p.Deref(); got != "hi" {
		t.Errorf("Deref() = %q, want %q", got, "hi")
	}
	if got := place.LocalityOf(p); got != place.NodeOnly(2) {
		t.Errorf("LocalityOf = %v, want node 2", got)
	}
}

func TestDirectoryArenaAt(t *testing.T) {
	dir := NewDirectory(place.Dims{Nodes: 2, PodsPerNode: 2, CoresPerPod: 4}, place.ThreadDims{ThreadsPerCore: 2})
	hostArena := dir.ArenaAt(place.Exact(1, 1, 3), Main)
	if hostArena != dir.Host(1) {
		t.Errorf("Main tier should resolve to the node's host arena")
	}
	podArena := dir.ArenaAt(place.Exact(1, 1, 3), L2SP)
	if podArena != dir.Pod(1, 1) {
		t.Errorf("L2SP tier should resolve to the pod's arena")
	}
	coreArena := dir.ArenaAt(place.Exact(1, 1, 3), L1SP)
	if coreArena != dir.Core(1, 1, 3) {
		t.Errorf("L1SP tier should resolve to the specific core's arena")
	}
}

func TestNodeSpecificStorage(t *testing.T) {
	dir := NewDirectory(place.Dims{Nodes: 3, PodsPerNode: 1, CoresPerPod: 1}, place.ThreadDims{ThreadsPerCore: 1})
	nss, err := NewNodeSpecificStorage[int64](dir)
	if err != nil {
		t.Fatalf("NewNodeSpecificStorage: %v", err)
	}
	for n := 0; n < 3; n++ {
		p := nss.At(n)
		p.Store(int64(n * 10))
	}
	for n := 0; n < 3; n++ {
		if got, want := nss.At(n).Deref(), int64(n*10); got != want {
			t.Errorf("node %d slot = %d, want %d", n, got, want)
		}
	}
}
