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

// Cell is the minimal capability a backing arena slab must offer a
// GlobalPtr: load and store a single element by its offset within that
// slab. Concrete slabs (package arena) implement this; GlobalPtr itself
// never needs to know how the bytes are actually held.
//
// This is the re-implementation the source's design notes (§9) call for:
// VertexTopologyID-style handles become an (place, offset) pair backed by
// an index into an owned array, rather than a raw pointer, which sidesteps
// the aliasing hazards of the source's GlobalRef/GlobalPtr templates.
type Cell[T any] interface {
	Load(offset int) T
	Store(offset int, v T)
}

// GlobalPtr is an opaque handle carrying (place, offset, type). Dereferencing
// it is handled by the backing Cell, which crosses the fabric transparently
// from the caller's point of view - in this single-process model that means
// indexing into the owning node's slab, wherever the calling goroutine
// happens to be running.
//
// Two GlobalPtrs compare equal (with ==) iff they denote the same byte: same
// backing cell, same offset. Arithmetic (Plus) steps by one element and is
// only meaningful within the same arena; crossing arena boundaries is
// undefined, per §3.
type GlobalPtr[T any] struct {
	At     Place
	Offset int
	cell   Cell[T]
}

// NewGlobalPtr constructs a GlobalPtr backed by cell at the given place and offset.
// Only arena slabs are expected to call this.
func NewGlobalPtr[T any](at Place, offset int, cell Cell[T]) GlobalPtr[T] {
	return GlobalPtr[T]{At: at, Offset: offset, cell: cell}
}

// IsNil reports whether p was never assigned a backing cell.
func (p GlobalPtr[T]) IsNil() bool {
	return p.cell == nil
}

// Deref loads the value currently at this pointer. This is a potentially
// suspending operation: the caller may be descheduled and resumed once the
// access to a remote place completes. Concurrent overlapping derefs to the
// same cell have no ordering guarantee absent an explicit fence or atomic.
func (p GlobalPtr[T]) Deref() T {
	return p.cell.Load(p.Offset)
}

// Store writes v to this pointer, subject to the same suspension and
// ordering caveats as Deref.
func (p GlobalPtr[T]) Store(v T) {
	p.cell.Store(p.Offset, v)
}

// Plus returns the pointer n elements further into the same arena. Stepping
// past the arena's own allocation is undefined and not checked here, mirroring
// §3's "crossing arena boundaries is undefined".
func (p GlobalPtr[T]) Plus(n int) GlobalPtr[T] {
	return GlobalPtr[T]{At: p.At, Offset: p.Offset + n, cell: p.cell}
}

// Equal reports whether p and q denote the same byte.
func (p GlobalPtr[T]) Equal(q GlobalPtr[T]) bool {
	return p.At == q.At && p.Offset == q.Offset && any(p.cell) == any(q.cell)
}

// LocalityOf returns the place that owns the byte p refers to.
func LocalityOf[T any](p GlobalPtr[T]) Place {
	return p.At
}
