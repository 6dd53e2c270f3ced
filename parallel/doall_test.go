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
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/graphfabric/graphfabric/parallel"
)

func TestDoAll_VisitsEveryElement(t *testing.T) {
	rng := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	var mu sync.Mutex
	var seen []int

	err := parallel.DoAll(context.Background(), nil, rng, func(_ context.Context, e int) error {
		mu.Lock()
		seen = append(seen, e)
		mu.Unlock()
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("DoAll: %v", err)
	}

	sort.Ints(seen)
	if len(seen) != len(rng) {
		t.Fatalf("visited %d elements; want %d", len(seen), len(rng))
	}
	for i, v := range seen {
		if v != i {
			t.Fatalf("seen = %v; want 0..9", seen)
		}
	}
}

func TestDoAll_PropagatesFirstError(t *testing.T) {
	wantErr := errors.New("boom")
	err := parallel.DoAll(context.Background(), nil, []int{1, 2, 3}, func(_ context.Context, e int) error {
		if e == 2 {
			return wantErr
		}
		return nil
	}, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("DoAll error = %v; want %v", err, wantErr)
	}
}

func TestDoAllEvenlyPartition_CoversWholeRange(t *testing.T) {
	const n = 97
	var mu sync.Mutex
	covered := make([]bool, n)

	err := parallel.DoAllEvenlyPartition(context.Background(), 8, n, func(_ context.Context, lo, hi int) error {
		mu.Lock()
		for i := lo; i < hi; i++ {
			covered[i] = true
		}
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("DoAllEvenlyPartition: %v", err)
	}
	for i, ok := range covered {
		if !ok {
			t.Fatalf("index %d was never covered", i)
		}
	}
}

func TestDoAllEvenlyPartition_ZeroElementsIsNoop(t *testing.T) {
	called := false
	err := parallel.DoAllEvenlyPartition(context.Background(), 4, 0, func(_ context.Context, lo, hi int) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("DoAllEvenlyPartition: %v", err)
	}
	if called {
		t.Fatal("fn should not be called when n == 0")
	}
}
