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
	"fmt"

	"github.com/avast/retry-go/v4"
)

// Status is the outcome of a dispatched task. A nil Status is success.
type Status error

// placeKey is the context key under which the current place is stashed by
// Fabric.ExecuteOn before invoking a task body.
type placeKey struct{}

// CurrentPlace returns the place the calling task was dispatched to, or
// NodeOnly(0) if called outside of any Fabric dispatch (e.g. from the
// program's entry goroutine, which is treated as node 0).
func CurrentPlace(ctx context.Context) Place {
	if p, ok := ctx.Value(placeKey{}).(Place); ok {
		return p
	}
	return NodeOnly(0)
}

// Fabric is the host-runtime collaborator this module consumes: it knows
// the shape of the machine and how to run a function at a given place. The
// real scheduler (task queueing, M:N core multiplexing, remote invocation
// transport) is out of scope for this module - spec.md §1 treats it as an
// external collaborator - so Fabric simulates the same contract with
// goroutines inside a single process, which is sufficient for everything
// above it in this module to be exercised and tested.
type Fabric struct {
	dims       Dims
	threadDims ThreadDims
}

// NewFabric creates a fabric with the given shape.
func NewFabric(dims Dims, threadDims ThreadDims) *Fabric {
	return &Fabric{dims: dims, threadDims: threadDims}
}

// PlaceDims returns the shape of the fabric.
func (f *Fabric) PlaceDims() Dims { return f.dims }

// ThreadDims returns the per-core hardware-thread multiplexing.
func (f *Fabric) ThreadDims() ThreadDims { return f.threadDims }

// ResolveAnyCore returns a concrete place for a possibly-wildcarded one,
// choosing core 0 of pod 0 when a node/pod is given with AnyCore/AnyPod.
// This is the "a task submitted to a place with anyCore runs on some core
// of that node/pod" rule from §4.1; this simulator always picks core 0,
// which is a valid (if conservative) choice of "some core".
func (f *Fabric) ResolveAnyCore(p Place) Place {
	pod := p.Pod
	if pod == AnyPod {
		pod = 0
	}
	core := p.Core
	if core == AnyCore {
		core = 0
	}
	return Place{Node: p.Node, Pod: pod, Core: core}
}

// ExecuteOn spawns fn concurrently, bound to place p; fn may run concurrently
// with the caller. It returns immediately with a channel that resolves to fn's
// Status once fn returns. The runtime is free to interleave tasks dispatched
// to the same core, so fn must not assume exclusivity over place-local state
// beyond what an explicit fence/atomic provides.
func (f *Fabric) ExecuteOn(ctx context.Context, p Place, fn func(ctx context.Context) Status) <-chan Status {
	done := make(chan Status, 1)
	resolved := f.ResolveAnyCore(p)
	taskCtx := context.WithValue(ctx, placeKey{}, resolved)
	go func() {
		done <- fn(taskCtx)
	}()
	return done
}

// ExecuteOnWait runs fn at place p and blocks until it completes, returning
// its Status. opts may configure retry-go retry behaviour for transient
// failures (e.g. a remote arena transiently reporting BadAlloc under
// contention); with no options it behaves as a single attempt, matching the
// source's synchronous executeOnWait.
func (f *Fabric) ExecuteOnWait(ctx context.Context, p Place, fn func(ctx context.Context) Status, opts ...retry.Option) Status {
	attempt := func() error {
		return <-f.ExecuteOn(ctx, p, fn)
	}
	if len(opts) == 0 {
		opts = []retry.Option{retry.Attempts(1)}
	}
	if err := retry.Do(attempt, opts...); err != nil {
		return fmt.Errorf("executeOnWait at %s: %w", p, err)
	}
	return nil
}
