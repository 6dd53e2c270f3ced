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

package place

import (
	"context"
	"testing"
)

type memCell[T any] struct{ v T }

func (c *memCell[T]) Load(int) T        { return c.v }
func (c *memCell[T]) Store(_ int, v T)  { c.v = v }

func TestGlobalPtrEquality(t *testing.T) {
	cell := &memCell[int]{v: 42}
	p := NewGlobalPtr[int](NodeOnly(1), 3, cell)
	q := NewGlobalPtr[int](NodeOnly(1), 3, cell)
	r := p.Plus(1)

	if !p.Equal(q) {
		t.Errorf("p and q should be equal: same cell, same offset")
	}
	if p.Equal(r) {
		t.Errorf("p and r should differ: r stepped by one element")
	}
	if got, want := p.Deref(), 42; got != want {
		t.Errorf("Deref() = %d, want %d", got, want)
	}
}

func TestGlobalPtrStore(t *testing.T) {
	cell := &memCell[string]{}
	p := NewGlobalPtr[string](NodeOnly(0), 0, cell)
	p.Store("hello")
	if got, want := p.Deref(), "hello"; got != want {
		t.Errorf("Deref() = %q, want %q", got, want)
	}
}

func TestResolveAnyCore(t *testing.T) {
	f := NewFabric(Dims{Nodes: 4, PodsPerNode: 2, CoresPerPod: 8}, ThreadDims{ThreadsPerCore: 4})
	got := f.ResolveAnyCore(NodeOnly(2))
	want := Exact(2, 0, 0)
	if got != want {
		t.Errorf("ResolveAnyCore(NodeOnly(2)) = %v, want %v", got, want)
	}
}

func TestExecuteOnWait(t *testing.T) {
	f := NewFabric(Dims{Nodes: 2, PodsPerNode: 1, CoresPerPod: 1}, ThreadDims{ThreadsPerCore: 1})
	var sawPlace Place
	err := f.ExecuteOnWait(context.Background(), NodeOnly(1), func(ctx context.Context) Status {
		sawPlace = CurrentPlace(ctx)
		return nil
	})
	if err != nil {
		t.Fatalf("ExecuteOnWait returned error: %v", err)
	}
	if want := Exact(1, 0, 0); sawPlace != want {
		t.Errorf("task observed place %v, want %v", sawPlace, want)
	}
}

func TestAtomicFetchAdd(t *testing.T) {
	p := NewAtomicCell(NodeOnly(0))
	prev := AtomicFetchAdd(p, 5)
	if prev != 0 {
		t.Errorf("first FetchAdd returned %d, want 0", prev)
	}
	prev = AtomicFetchAdd(p, 3)
	if prev != 5 {
		t.Errorf("second FetchAdd returned %d, want 5", prev)
	}
	if got := p.Deref(); got != 8 {
		t.Errorf("final value = %d, want 8", got)
	}
}

func TestAtomicCompareExchange(t *testing.T) {
	p := NewAtomicCell(NodeOnly(0))
	p.Store(10)
	if ok := AtomicCompareExchange(p, 5, 99); ok {
		t.Errorf("CompareExchange should fail when old value doesn't match")
	}
	if ok := AtomicCompareExchange(p, 10, 99); !ok {
		t.Errorf("CompareExchange should succeed when old value matches")
	}
	if got := p.Deref(); got != 99 {
		t.Errorf("value after CompareExchange = %d, want 99", got)
	}
}
