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

package parallel

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/graphfabric/graphfabric/status"
)

// WaterfallLock gates the transition between PrefixSum's phases: every
// worker of phase K must arrive before any worker may begin phase K+1. It
// is a plain reusable barrier - the "waterfall" name (from §4.4) describes
// how work cascades from one phase to the next once the gate opens, not a
// distinct algorithm.
type WaterfallLock struct {
	mu      sync.Mutex
	cond    *sync.Cond
	arrived int
	phase   int
}

// NewWaterfallLock creates a lock ready for use; the number of workers per
// phase is passed to each Arrive call.
func NewWaterfallLock() *WaterfallLock {
	w := &WaterfallLock{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// Arrive blocks the calling worker until all n workers expected for the
// current phase have also called Arrive, then releases them all together.
func (w *WaterfallLock) Arrive(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	myPhase := w.phase
	w.arrived++
	if w.arrived == n {
		w.arrived = 0
		w.phase++
		w.cond.Broadcast()
		return
	}
	for w.phase == myPhase {
		w.cond.Wait()
	}
}

// Combiner folds one more source element into an accumulated prefix. A
// plain running sum is Combiner[int64](func(acc, v int64) int64 { return
// acc + v }).
type Combiner[T any] func(acc, v T) T

// PrefixSum runs the two-level parallel prefix sum of §4.4 over src,
// writing len(src) elements to dst using workers goroutines (clamped to
// [1, len(src)]):
//
//	Phase 0 (workers): each worker scans its chunk serially, writing its
//	  chunk-local inclusive scan into dst and its chunk total into scratch.
//	Phase 1 (single worker): serial prefix sum over the scratch totals.
//	Phase 2 (workers): each worker combines its scratch prefix into every
//	  element of its own chunk already written in phase 0.
//
// After return, dst[i] = combine(combine(...combine(zero, src[0])...),
// src[i]), i.e. an inclusive scan, matching §4.4's invariant.
func PrefixSum[T any](src []T, dst []T, zero T, combine Combiner[T], workers int) error {
	n := len(src)
	if n == 0 {
		return nil
	}
	if len(dst) != n {
		return status.ErrOutOfBounds
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	chunk := n / workers
	rem := n % workers
	bounds := make([][2]int, workers)
	lo := 0
	for w := 0; w < workers; w++ {
		hi := lo + chunk
		if w < rem {
			hi++
		}
		bounds[w] = [2]int{lo, hi}
		lo = hi
	}

	scratch := make([]T, workers)
	wl := NewWaterfallLock()

	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		eg.Go(func() error {
			lo, hi := bounds[w][0], bounds[w][1]

			// Phase 0: chunk-local inclusive scan, recording the chunk total.
			acc := zero
			for i := lo; i < hi; i++ {
				acc = combine(acc, src[i])
				dst[i] = acc
			}
			scratch[w] = acc
			wl.Arrive(workers)

			// Phase 1: worker 0 alone computes the serial prefix over chunk
			// totals, replacing scratch[w] with the prefix owed to chunk w.
			if w == 0 {
				running := zero
				for k := 0; k < workers; k++ {
					total := scratch[k]
					scratch[k] = running
					running = combine(running, total)
				}
			}
			wl.Arrive(workers)

			// Phase 2: fold the owed prefix into every element of this chunk.
			// Assumes combine is associative with zero as identity, true of
			// every combiner this package is actually handed (sums, max/min).
			prefix := scratch[w]
			for i := lo; i < hi; i++ {
				dst[i] = combine(prefix, dst[i])
			}
			return nil
		})
	}
	return eg.Wait()
}

// PrefixSumInts is the common case of PrefixSum over int64 counts, used by
// ThreadLocalVector/PerThreadVector.ComputeIndices.
func PrefixSumInts(src []int64, workers int) []int64 {
	dst := make([]int64, len(src))
	_ = PrefixSum(src, dst, int64(0), func(acc, v int64) int64 { return acc + v }, workers)
	return dst
}
