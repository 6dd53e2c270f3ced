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

// Package status holds the sentinel errors shared by every container and
// graph implementation in this module.
//
// Construction-time failures (initialize, pushBack, allocate) are returned
// as plain errors wrapping one of these sentinels, and propagate up the
// call chain in the ordinary Go way. Failures discovered inside a doAll
// task body are instead fatal: call Check, which logs and exits the
// process, mirroring the source's PANDO_CHECK macro. There is no partial-
// commit recovery for either path.
package status

import (
	"errors"

	"k8s.io/klog/v2"
)

var (
	// ErrBadAlloc is returned when an arena's slab is exhausted.
	ErrBadAlloc = errors.New("graphfabric: bad alloc: arena exhausted")

	// ErrAlreadyInit is returned by initialize when called twice on the same container.
	ErrAlreadyInit = errors.New("graphfabric: already initialized")

	// ErrNotInit is returned by queries made before initialize/compute has run.
	ErrNotInit = errors.New("graphfabric: not initialized")

	// ErrUnsupported covers stubbed operations such as addVertex/addEdges.
	ErrUnsupported = errors.New("graphfabric: unsupported operation")

	// ErrOutOfBounds is returned (where checked) for an index past a container's end.
	ErrOutOfBounds = errors.New("graphfabric: index out of bounds")
)

// Check aborts the process if err is non-nil. It is only ever called from
// doAll task bodies and other places where the source treats a build-phase
// failure as fatal rather than as a Result to propagate.
func Check(err error) {
	if err != nil {
		klog.Exitf("graphfabric: fatal: %v", err)
	}
}
