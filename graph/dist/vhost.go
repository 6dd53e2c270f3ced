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

// Package dist implements DistLocalCSR (§4.6, §5 C6): one LocalCSR per
// node plus the virtual-host table that routes a token to its owning
// physical node.
package dist

// DefaultScaleFactor is S in V = nodes * S, per §3's virtual-host table
// definition.
const DefaultScaleFactor = 8

// VHostTable maps each of V virtual hosts to a physical node, per §3:
// token t belongs to virtual host t mod V, which belongs to physical node
// table[t mod V].
type VHostTable []int

// NewVHostTable creates a table of the given length with every virtual
// host initially assigned to node 0; callers (the ingestion balancer, C8)
// overwrite entries via Assign.
func NewVHostTable(numVirtualHosts int) VHostTable {
	return make(VHostTable, numVirtualHosts)
}

// Assign records that virtual host v belongs to physical node p.
func (t VHostTable) Assign(v, p int) { t[v] = p }

// VirtualHost returns the virtual host a token belongs to.
func (t VHostTable) VirtualHost(token int64) int {
	return int(token % int64(len(t)))
}

// PhysicalNode returns the physical node that owns token, by way of its
// virtual host.
func (t VHostTable) PhysicalNode(token int64) int {
	return t[t.VirtualHost(token)]
}

// Len returns the number of virtual hosts, V.
func (t VHostTable) Len() int { return len(t) }
