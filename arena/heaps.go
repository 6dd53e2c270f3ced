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

package arena

import "github.com/graphfabric/graphfabric/place"

// Directory owns the per-(node[,pod[,core]]) arenas for one fabric-wide
// allocation: exactly one Main arena per node, one L2SP arena per pod, and
// one L1SP arena per core. It is the thing
// that NodeSpecificStorage/PodSpecificStorage/ThreadLocalStorage (package
// container) allocate through.
type Directory struct {
	dims       place.Dims
	threadDims place.ThreadDims

	host   []*Arena   // one per node
	pod    [][]*Arena // [node][pod]
	thread [][]*Arena // [node][pod*coresPerPod+core], each DefaultPodBytes
}

// NewDirectory builds a directory with one arena per node (Main,
// DefaultHostBytes), one per pod (L2SP, DefaultPodBytes), and one per core
// (L1SP, also DefaultPodBytes).
func NewDirectory(dims place.Dims, threadDims place.ThreadDims) *Directory {
	d := &Directory{dims: dims, threadDims: threadDims}

	d.host = make([]*Arena, dims.Nodes)
	d.pod = make([][]*Arena, dims.Nodes)
	d.thread = make([][]*Arena, dims.Nodes)
	for n := 0; n < dims.Nodes; n++ {
		d.host[n] = New(place.NodeOnly(n), Main, DefaultHostBytes)

		d.pod[n] = make([]*Arena, dims.PodsPerNode)
		d.thread[n] = make([]*Arena, dims.PodsPerNode*dims.CoresPerPod)
		for p := 0; p < dims.PodsPerNode; p++ {
			d.pod[n][p] = New(place.PodOnly(n, p), L2SP, DefaultPodBytes)
			for c := 0; c < dims.CoresPerPod; c++ {
				d.thread[n][p*dims.CoresPerPod+c] = New(place.Exact(n, p, c), L1SP, DefaultPodBytes)
			}
		}
	}
	return d
}

// Host returns the Main-tier arena for node n.
func (d *Directory) Host(n int) *Arena { return d.host[n] }

// Pod returns the L2SP-tier arena for pod p of node n.
func (d *Directory) Pod(n, p int) *Arena { return d.pod[n][p] }

// Core returns the L1SP-tier arena for core c of pod p of node n.
func (d *Directory) Core(n, p, c int) *Arena { return d.thread[n][p*d.dims.CoresPerPod+c] }

// ArenaAt resolves the arena that should back an allocation scoped to p at
// the given tier: Main always resolves to the node's arena regardless of
// p's pod/core, L2SP to the pod's arena, L1SP to the specific core's arena
// (falling back to core 0 when p's core is wildcarded, matching
// Fabric.ResolveAnyCore).
func (d *Directory) ArenaAt(p place.Place, tier Tier) *Arena {
	pod := p.Pod
	if pod == place.AnyPod {
		pod = 0
	}
	core := p.Core
	if core == place.AnyCore {
		core = 0
	}
	switch tier {
	case Main:
		return d.Host(p.Node)
	case L2SP:
		return d.Pod(p.Node, pod)
	default:
		return d.Core(p.Node, pod, core)
	}
}

// Dims returns the shape this directory was built for.
func (d *Directory) Dims() place.Dims { return d.dims }

// ThreadDims returns the hardware-thread multiplexing this directory was built for.
func (d *Directory) ThreadDims() place.ThreadDims { return d.threadDims }
