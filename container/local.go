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

// Package container implements the distributed container hierarchy of
// §4.3: DistArray, HostLocalStorage, PodLocalStorage, ThreadLocalStorage,
// ThreadLocalVector, PerThreadVector and HostCachedArray, all layered on
// package arena's locality-scoped slabs and package place's GlobalPtr.
//
// Every *_Storage type here is, per §3, a trivially copyable handle that
// shallow-copies its backing storage: only an explicit Deinitialize call
// releases memory, and handles are meant to be passed by value into doAll
// closures.
package container

import (
	"context"

	"github.com/graphfabric/graphfabric/arena"
	"github.com/graphfabric/graphfabric/place"
)

// HostLocalStorage holds exactly one T per node, for per-node state. The
// graph packages keep their own per-node state (CSRs, bit sets, mirror
// tables) in plain slices indexed by node rather than in this type.
type HostLocalStorage[T any] struct {
	dir *arena.Directory
	nss *arena.NodeSpecificStorage[T]
}

// NewHostLocalStorage allocates one T on every node.
func NewHostLocalStorage[T any](dir *arena.Directory) (HostLocalStorage[T], error) {
	nss, err := arena.NewNodeSpecificStorage[T](dir)
	if err != nil {
		return HostLocalStorage[T]{}, err
	}
	return HostLocalStorage[T]{dir: dir, nss: nss}, nil
}

// Get returns node n's copy.
func (h HostLocalStorage[T]) Get(n int) place.GlobalPtr[T] {
	return h.nss.At(n)
}

// GetLocalRef returns the current node's copy, derived from ctx's place.
func (h HostLocalStorage[T]) GetLocalRef(ctx context.Context) place.GlobalPtr[T] {
	return h.Get(place.CurrentPlace(ctx).Node)
}

// NumHosts returns the number of nodes this storage spans.
func (h HostLocalStorage[T]) NumHosts() int {
	return h.dir.Dims().Nodes
}

// All iterates one element per node, in node order.
func (h HostLocalStorage[T]) All() []place.GlobalPtr[T] {
	out := make([]place.GlobalPtr[T], h.NumHosts())
	for n := range out {
		out[n] = h.Get(n)
	}
	return out
}

// PodLocalStorage holds exactly one T per pod.
type PodLocalStorage[T any] struct {
	dir *arena.Directory
	pss *arena.PodSpecificStorage[T]
}

// NewPodLocalStorage allocates one T on every pod.
func NewPodLocalStorage[T any](dir *arena.Directory) (PodLocalStorage[T], error) {
	pss, err := arena.NewPodSpecificStorage[T](dir)
	if err != nil {
		return PodLocalStorage[T]{}, err
	}
	return PodLocalStorage[T]{dir: dir, pss: pss}, nil
}

// Get returns pod p of node n's copy.
func (p PodLocalStorage[T]) Get(n, pod int) place.GlobalPtr[T] {
	return p.pss.At(n, pod)
}

// GetLocalRef returns the current pod's copy, derived from ctx's place.
func (p PodLocalStorage[T]) GetLocalRef(ctx context.Context) place.GlobalPtr[T] {
	cur := place.CurrentPlace(ctx)
	return p.Get(cur.Node, cur.Pod)
}

// ThreadLocalStorage holds exactly one T per hardware thread.
type ThreadLocalStorage[T any] struct {
	dir *arena.Directory
	tls *arena.ThreadLocalStorage[T]
}

// NewThreadLocalStorage allocates one T on every hardware thread.
func NewThreadLocalStorage[T any](dir *arena.Directory) (ThreadLocalStorage[T], error) {
	tls, err := arena.NewThreadLocalStorage[T](dir)
	if err != nil {
		return ThreadLocalStorage[T]{}, err
	}
	return ThreadLocalStorage[T]{dir: dir, tls: tls}, nil
}

// Get returns the copy for hardware thread hw of core c of pod p of node n.
func (t ThreadLocalStorage[T]) Get(n, p, c, hw int) place.GlobalPtr[T] {
	return t.tls.At(n, p, c, hw)
}

// GetLocalRef returns the current hardware thread's copy, using hw as the
// thread-slot index within the current core (the fabric does not expose
// which hardware thread a goroutine is "on", so callers doing genuinely
// per-thread work must supply their own stable index, e.g. a worker id).
func (t ThreadLocalStorage[T]) GetLocalRef(ctx context.Context, hw int) place.GlobalPtr[T] {
	cur := place.CurrentPlace(ctx)
	return t.Get(cur.Node, cur.Pod, cur.Core, hw)
}
