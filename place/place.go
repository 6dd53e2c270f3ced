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

// Package place names every core/pod/node in the fabric and provides the
// global-pointer primitive that the rest of this module is built on.
//
// A Place is a triple (node, pod, core). Every allocated byte has exactly
// one owning node; a pod or core may be wildcarded for scheduling purposes,
// but never for residence - see GlobalPtr.
package place

import "fmt"

// AnyPod and AnyCore are wildcard values, valid only when choosing where a
// task may run, never as the residence of an allocation.
const (
	AnyPod  = -1
	AnyCore = -1
)

// Place identifies where a task may run, or where a datum lives.
type Place struct {
	Node int
	Pod  int
	Core int
}

// Dims describes the shape of the fabric: how many nodes, pods per node,
// and cores per pod it has.
type Dims struct {
	Nodes       int
	PodsPerNode int
	CoresPerPod int
}

// ThreadDims describes the hardware-thread multiplexing within a core.
type ThreadDims struct {
	ThreadsPerCore int
}

// NodeOnly returns a place identifying a whole node, with pod and core
// wildcarded - valid for scheduling (executeOn), not for residence.
func NodeOnly(node int) Place {
	return Place{Node: node, Pod: AnyPod, Core: AnyCore}
}

// PodOnly returns a place identifying a pod within a node, core wildcarded.
func PodOnly(node, pod int) Place {
	return Place{Node: node, Pod: pod, Core: AnyCore}
}

// Exact returns a place identifying one specific core.
func Exact(node, pod, core int) Place {
	return Place{Node: node, Pod: pod, Core: core}
}

// IsResident reports whether p is specific enough to be the residence of an
// allocation, i.e. carries no wildcards.
func (p Place) IsResident() bool {
	return p.Pod != AnyPod && p.Core != AnyCore
}

func (p Place) String() string {
	pod, core := "*", "*"
	if p.Pod != AnyPod {
		pod = fmt.Sprintf("%d", p.Pod)
	}
	if p.Core != AnyCore {
		core = fmt.Sprintf("%d", p.Core)
	}
	return fmt.Sprintf("node%d/pod%s/core%s", p.Node, pod, core)
}
