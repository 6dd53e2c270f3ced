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

package container

import (
	"math"
	"sync"
	"time"

	"github.com/globocom/go-buffer"

	"github.com/graphfabric/graphfabric/parallel"
)

// perThreadBuf wraps one worker's write-local shard: a go-buffer.Buffer
// accumulates pushed items in arrival order and, on Close, flushes them
// into shard, exactly the "write-local" half of §4.3's write-local /
// read-global pattern. The buffer's own size/age triggers are effectively
// disabled (a huge size, a day-long flush interval) because this container only ever wants one
// flush, at Close - unlike storage/internal/queue.go's Queue, which this is
// grounded on, and which flushes continuously against a live backend.
type perThreadBuf[T any] struct {
	mu    sync.Mutex
	shard []T
	buf   *buffer.Buffer
}

func newPerThreadBuf[T any]() *perThreadBuf[T] {
	p := &perThreadBuf[T]{}
	p.buf = buffer.New(
		buffer.WithSize(math.MaxInt32),
		buffer.WithFlushInterval(24*time.Hour),
		buffer.WithFlusher(buffer.FlusherFunc(func(items []interface{}) {
			p.mu.Lock()
			defer p.mu.Unlock()
			for _, it := range items {
				p.shard = append(p.shard, it.(T))
			}
		})),
	)
	return p
}

func (p *perThreadBuf[T]) pushBack(v T) {
	// InnerVector::pushBack(T&&) in the source silently drops the rvalue and
	// forwards to the by-value overload (§9); replicated here simply by
	// always taking v by value, never by pointer/reference.
	_ = p.buf.Push(v)
}

func (p *perThreadBuf[T]) close() []T {
	_ = p.buf.Flush()
	_ = p.buf.Close()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shard
}

// ThreadLocalVector is a write-local/read-global vector with one shard per
// hardware thread, per §4.3. Each thread pushes into its own shard with
// PushBack; afterward ComputeIndices runs a parallel prefix sum over the
// per-thread sizes and Assign/HostFlattenAppend emits the flattened result.
//
// Between any two PushBacks on the same thread, ordering is preserved;
// across threads it is unspecified until ComputeIndices has run.
type ThreadLocalVector[T any] struct {
	mu      sync.Mutex
	shards  map[int]*perThreadBuf[T]
	order   []int // thread ids in first-seen order
	offsets []int64
	total   int64
	closed  bool
}

// NewThreadLocalVector creates an empty vector.
func NewThreadLocalVector[T any]() *ThreadLocalVector[T] {
	return &ThreadLocalVector[T]{shards: make(map[int]*perThreadBuf[T])}
}

// PushBack appends v to thread tid's private shard.
func (v *ThreadLocalVector[T]) PushBack(tid int, val T) {
	v.mu.Lock()
	s, ok := v.shards[tid]
	if !ok {
		s = newPerThreadBuf[T]()
		v.shards[tid] = s
		v.order = append(v.order, tid)
	}
	v.mu.Unlock()
	s.pushBack(val)
}

// finalize closes every shard's buffer and returns the shards' contents,
// in v.order.
func (v *ThreadLocalVector[T]) finalize() [][]T {
	out := make([][]T, len(v.order))
	for i, tid := range v.order {
		out[i] = v.shards[tid].close()
	}
	return out
}

// ComputeIndices closes every shard and computes the starting offset each
// shard's elements should land at in a flattened output, via a parallel
// prefix sum over shard sizes (§4.4). Must be called exactly once, before
// Assign or HostFlattenAppend.
func (v *ThreadLocalVector[T]) ComputeIndices(workers int) [][]T {
	shards := v.finalize()
	sizes := make([]int64, len(shards))
	for i, s := range shards {
		sizes[i] = int64(len(s))
	}
	prefix := parallel.PrefixSumInts(sizes, workers)
	offsets := make([]int64, len(shards))
	var total int64
	for i := range shards {
		offsets[i] = prefix[i] - sizes[i] // exclusive prefix
		total = prefix[i]
	}
	v.mu.Lock()
	v.offsets = offsets
	v.total = total
	v.closed = true
	v.mu.Unlock()
	return shards
}

// Assign flattens the vector's shards into dst, a pre-sized []T of length
// Total(). Shard i's elements land at [offsets[i], offsets[i]+len(shard)).
func (v *ThreadLocalVector[T]) Assign(shards [][]T, dst []T) {
	for i, s := range shards {
		off := v.offsets[i]
		copy(dst[off:off+int64(len(s))], s)
	}
}

// Total returns the flattened length, valid only after ComputeIndices.
func (v *ThreadLocalVector[T]) Total() int64 { return v.total }

// PerThreadVector is a ThreadLocalVector-backed variant with one shard per
// thread *slot* under a fixed numbering
// rather than keyed by an ad hoc thread id, and its flattened result is
// typically reduced per-host rather than into one global array - see
// HostFlattenAppend.
type PerThreadVector[T any] struct {
	inner *ThreadLocalVector[T]
}

// NewPerThreadVector creates an empty vector with the given number of
// thread slots pre-registered, so every slot contributes even if it never
// pushes anything.
func NewPerThreadVector[T any](numSlots int) *PerThreadVector[T] {
	p := &PerThreadVector[T]{inner: NewThreadLocalVector[T]()}
	for slot := 0; slot < numSlots; slot++ {
		p.inner.mu.Lock()
		p.inner.shards[slot] = newPerThreadBuf[T]()
		p.inner.order = append(p.inner.order, slot)
		p.inner.mu.Unlock()
	}
	return p
}

// PushBack appends v to thread slot's shard.
func (p *PerThreadVector[T]) PushBack(slot int, v T) {
	p.inner.PushBack(slot, v)
}

// ComputeIndices closes every shard and computes flattening offsets.
func (p *PerThreadVector[T]) ComputeIndices(workers int) [][]T {
	return p.inner.ComputeIndices(workers)
}

// Total returns the flattened length, valid only after ComputeIndices.
func (p *PerThreadVector[T]) Total() int64 { return p.inner.Total() }

// Assign flattens into a single global slice of length Total().
func (p *PerThreadVector[T]) Assign(shards [][]T) []T {
	dst := make([]T, p.inner.total)
	p.inner.Assign(shards, dst)
	return dst
}

// HostFlattenAppend reduces every thread slot's shard into a single
// per-host slice without reindexing to a global dense range - used when
// the caller only needs "all of this host's pushed items, in some stable
// per-shard order" rather than a globally addressable DistArray. Shards are
// concatenated in slot order.
func (p *PerThreadVector[T]) HostFlattenAppend(shards [][]T) []T {
	var total int64
	for _, s := range shards {
		total += int64(len(s))
	}
	out := make([]T, 0, total)
	for _, s := range shards {
		out = append(out, s...)
	}
	return out
}
