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
	"sync/atomic"
	"testing"
	"time"

	"github.com/graphfabric/graphfabric/parallel"
)

func TestWaitGroup_WaitsForAllTasks(t *testing.T) {
	wg := parallel.NewWaitGroup()
	var done atomic.Int64

	const n = 50
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			done.Add(1)
			wg.Done()
		}()
	}
	wg.Wait()

	if got := done.Load(); got != n {
		t.Fatalf("done count = %d; want %d", got, n)
	}
}

func TestWaitGroup_WaitReturnsImmediatelyWhenEmpty(t *testing.T) {
	wg := parallel.NewWaitGroup()
	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return on an empty WaitGroup")
	}
}

func TestWaitGroup_ReusableAcrossRounds(t *testing.T) {
	wg := parallel.NewWaitGroup()
	for round := 0; round < 3; round++ {
		wg.Add(10)
		for i := 0; i < 10; i++ {
			go wg.Done()
		}
		wg.Wait()
	}
}
