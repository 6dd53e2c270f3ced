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

package dist_test

import (
	"testing"

	"github.com/graphfabric/graphfabric/graph/dist"
)

func TestVHostTable_VirtualHostIsTokenModV(t *testing.T) {
	table := dist.NewVHostTable(4)
	for _, tok := range []int64{0, 1, 2, 3, 4, 5, 100, 101} {
		want := int(tok % 4)
		if got := table.VirtualHost(tok); got != want {
			t.Errorf("VirtualHost(%d) = %d; want %d", tok, got, want)
		}
	}
}

func TestVHostTable_PhysicalNodeFollowsAssignment(t *testing.T) {
	table := dist.NewVHostTable(6)
	table.Assign(0, 2)
	table.Assign(1, 0)
	table.Assign(2, 1)
	table.Assign(3, 2)
	table.Assign(4, 0)
	table.Assign(5, 1)

	for tok := int64(0); tok < 12; tok++ {
		v := table.VirtualHost(tok)
		if got, want := table.PhysicalNode(tok), table[v]; got != want {
			t.Errorf("PhysicalNode(%d) = %d; want %d", tok, got, want)
		}
	}
}

func TestVHostTable_Len(t *testing.T) {
	table := dist.NewVHostTable(dist.DefaultScaleFactor * 3)
	if got, want := table.Len(), dist.DefaultScaleFactor*3; got != want {
		t.Errorf("Len() = %d; want %d", got, want)
	}
}
