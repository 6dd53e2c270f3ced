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

package mirror

import (
	"context"
	"sync"

	"k8s.io/klog/v2"

	"github.com/graphfabric/graphfabric/graph"
	"github.com/graphfabric/graphfabric/parallel"
	"github.com/graphfabric/graphfabric/place"
)

// ReduceFunc combines a mirror's value into its master's current value,
// returning the (possibly unchanged) new master value. Equivalent to the
// source's func(mirrorValue, masterValueRef) in-place update.
type ReduceFunc[VD any] func(mirror, master VD) VD

// Equal reports whether two vertex payloads are identical, used to decide
// whether reduce/broadcast actually changed a value and should therefore
// flip the opposite bit set. Callers with incomparable VD should supply
// their own; for comparable VD, EqualComparable below is the obvious choice.
type Equal[VD any] func(a, b VD) bool

// EqualComparable is the Equal implementation for any comparable VD.
func EqualComparable[VD comparable](a, b VD) bool { return a == b }

// Reduce runs one reduce round (§4.7's pseudocode contract): for every
// local mirror whose mirror bit is set, fetch its value and dispatch it
// through fabric to the owning master's node, where combine is applied. If
// the result differs from the master's prior value, the remote node's
// master bit is set. The WaitGroup awaits every dispatch before returning,
// exactly as the pseudocode's "await all dispatches" step requires.
//
// reduce is idempotent under an idempotent combine (min/max/or); for a
// non-idempotent combine (sum) callers must gate with the bit sets exactly
// as this does, per §4.7's correctness invariants. Reduce does not clear the
// mirror bits it reads, so re-running it re-applies combine for every mirror
// still marked dirty; after ResetBitSets, and with no mirror dirtied since,
// it is a no-op.
func (c *CSR[VD, ED]) Reduce(ctx context.Context, fabric *place.Fabric, eq Equal[VD], combine ReduceFunc[VD]) error {
	wg := parallel.NewWaitGroup()
	var errMu sync.Mutex
	var firstErr error

	for n := range c.mirrorBits {
		for i, dirty := range c.mirrorBits[n] {
			if !dirty {
				continue
			}
			local := graph.VertexTopologyID{Node: n, Index: c.masterCount[n] + i}
			entry := c.mirrorToMaster[n][i]
			value := c.GetData(local)

			wg.Add(1)
			go func() {
				defer wg.Done()
				st := <-fabric.ExecuteOn(ctx, place.NodeOnly(entry.Remote.Node), func(context.Context) place.Status {
					old := c.GetData(entry.Remote)
					next := combine(value, old)
					c.SetDataOnly(entry.Remote, next)
					if !eq(old, next) {
						c.masterBits[entry.Remote.Node][entry.Remote.Index] = true
					}
					return nil
				})
				if st != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = st
					}
					errMu.Unlock()
				}
			}()
		}
	}
	wg.Wait()
	klog.V(1).Infof("mirror: reduce round complete")
	return firstErr
}

// Broadcast runs one broadcast round: for every local master whose master
// bit is set, ship its value to every remote mirror registered for it
// (§4.7's masterToMirrors, built by the exchange at construction). If a
// mirror's value actually changes, that mirror's bit is set.
func (c *CSR[VD, ED]) Broadcast(ctx context.Context, fabric *place.Fabric, eq Equal[VD]) error {
	wg := parallel.NewWaitGroup()
	var errMu sync.Mutex
	var firstErr error

	for n := range c.masterBits {
		for i, dirty := range c.masterBits[n] {
			if !dirty {
				continue
			}
			master := graph.VertexTopologyID{Node: n, Index: i}
			value := c.GetData(master)

			for _, mir := range c.masterToMirrors[n][i] {
				mir := mir
				wg.Add(1)
				go func() {
					defer wg.Done()
					st := <-fabric.ExecuteOn(ctx, place.NodeOnly(mir.Node), func(context.Context) place.Status {
						old := c.GetData(mir)
						if !eq(old, value) {
							c.SetDataOnly(mir, value)
							c.mirrorBits[mir.Node][mir.Index-c.masterCount[mir.Node]] = true
						}
						return nil
					})
					if st != nil {
						errMu.Lock()
						if firstErr == nil {
							firstErr = st
						}
						errMu.Unlock()
					}
				}()
			}
		}
	}
	wg.Wait()
	klog.V(1).Infof("mirror: broadcast round complete")
	return firstErr
}

// Sync runs Reduce then Broadcast in order, per §4.7's sync<Func,
// Reduce=true, Broadcast=true>(func). Callers typically call ResetBitSets
// between successive Sync calls, per §8's round-trip law - Sync itself
// never resets bits, since a caller running reduce-only or broadcast-only
// variants needs the bits to survive a single phase.
func (c *CSR[VD, ED]) Sync(ctx context.Context, fabric *place.Fabric, eq Equal[VD], combine ReduceFunc[VD]) error {
	if err := c.Reduce(ctx, fabric, eq, combine); err != nil {
		return err
	}
	return c.Broadcast(ctx, fabric, eq)
}
