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

package parallel_test

import (
	"context"
	"testing"

	"github.com/graphfabric/graphfabric/parallel"
)

func TestDAccumulator_ReduceSumsAcrossNodes(t *testing.T) {
	ctx := context.Background()
	d := parallel.NewDAccumulator(4, "")

	d.Add(ctx, 0, 10)
	d.Increment(ctx, 1)
	d.Increment(ctx, 1)
	d.Add(ctx, 3, 100)

	if got, want := d.Reduce(), int64(112); got != want {
		t.Errorf("Reduce() = %d; want %d", got, want)
	}
}

func TestDAccumulator_ResetClearsOneNodeOnly(t *testing.T) {
	ctx := context.Background()
	d := parallel.NewDAccumulator(2, "")

	d.Add(ctx, 0, 5)
	d.Add(ctx, 1, 7)
	d.Reset(0)

	if got, want := d.Reduce(), int64(7); got != want {
		t.Errorf("Reduce() after Reset(0) = %d; want %d", got, want)
	}
}

func TestDAccumulator_NamedCounterDoesNotPanic(t *testing.T) {
	ctx := context.Background()
	d := parallel.NewDAccumulator(1, "graphfabric_test_counter")
	d.Increment(ctx, 0)
	if got, want := d.Reduce(), int64(1); got != want {
		t.Errorf("Reduce() = %d; want %d", got, want)
	}
}
