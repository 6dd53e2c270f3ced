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
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// DAccumulator is a per-node counter, per §4.4: Add/Increment/Reset are
// local-only and lock-free, Reduce sums across nodes. Passing a non-empty
// name to NewDAccumulator attaches a metric counter so every local mutation is also
// exported, the way the conformance binaries opt into OTel metrics - by
// default the global meter provider is the SDK no-op, so this costs nothing
// when the caller hasn't configured an exporter.
type DAccumulator struct {
	counts  []atomic.Int64
	metric  metric.Int64Counter
	metricN string
}

// NewDAccumulator creates a zeroed accumulator with one counter per node.
func NewDAccumulator(numNodes int, name string) *DAccumulator {
	d := &DAccumulator{counts: make([]atomic.Int64, numNodes), metricN: name}
	if name != "" {
		c, err := otel.Meter("graphfabric/parallel").Int64Counter(name)
		if err == nil {
			d.metric = c
		}
	}
	return d
}

// Add adds delta to node n's local counter.
func (d *DAccumulator) Add(ctx context.Context, n int, delta int64) {
	d.counts[n].Add(delta)
	if d.metric != nil {
		d.metric.Add(ctx, delta)
	}
}

// Increment adds 1 to node n's local counter.
func (d *DAccumulator) Increment(ctx context.Context, n int) {
	d.Add(ctx, n, 1)
}

// Reset zeroes node n's local counter.
func (d *DAccumulator) Reset(n int) {
	d.counts[n].Store(0)
}

// Reduce sums every node's local counter.
func (d *DAccumulator) Reduce() int64 {
	var total int64
	for i := range d.counts {
		total += d.counts[i].Load()
	}
	return total
}
