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

import "sync/atomic"

// AtomicFetchAdd atomically adds delta to the cell behind p and returns the
// value it held immediately before the add, with sequential-consistency
// semantics for that cell, as required by §4.1.
func AtomicFetchAdd(p GlobalPtr[int64], delta int64) int64 {
	c, ok := p.cell.(*atomicCell)
	if !ok {
		panic("graphfabric: AtomicFetchAdd requires a GlobalPtr[int64] backed by an atomic cell")
	}
	return c.v.Add(delta) - delta
}

// AtomicCompareExchange atomically sets the cell behind p to new if it
// currently holds old, returning whether the swap happened.
func AtomicCompareExchange(p GlobalPtr[int64], old, new int64) bool {
	c, ok := p.cell.(*atomicCell)
	if !ok {
		panic("graphfabric: AtomicCompareExchange requires a GlobalPtr[int64] backed by an atomic cell")
	}
	return c.v.CompareAndSwap(old, new)
}

// AtomicSwap atomically replaces the cell behind p with new, returning the
// previous value.
func AtomicSwap(p GlobalPtr[int64], new int64) int64 {
	c, ok := p.cell.(*atomicCell)
	if !ok {
		panic("graphfabric: AtomicSwap requires a GlobalPtr[int64] backed by an atomic cell")
	}
	return c.v.Swap(new)
}

// atomicCell is a Cell[int64] backed by sync/atomic, used for places where
// the fabric wants sequentially-consistent fetch-add/compare-exchange/swap
// rather than the plain (racy under concurrent write) load/store Cell
// contract gives by default.
type atomicCell struct {
	v atomic.Int64
}

// NewAtomicCell creates a fresh atomic cell initialised to 0, and a GlobalPtr
// referring to it at place at.
func NewAtomicCell(at Place) GlobalPtr[int64] {
	return NewGlobalPtr[int64](at, 0, &atomicCell{})
}

func (c *atomicCell) Load(int) int64 {
	return c.v.Load()
}

func (c *atomicCell) Store(_ int, v int64) {
	c.v.Store(v)
}
