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

package ingest_test

import (
	"context"
	"strings"
	"testing"

	"github.com/graphfabric/graphfabric/ingest"
)

func vf(rec ingest.Record) int { return int(rec.Token) }
func ef(rec ingest.Record) int { return 1 }

func TestBuildWMD_SynthesizesVerticesFromEdgeEndpoints(t *testing.T) {
	// A small edge list over tokens 0..5, no vertex records at all.
	input := "0 1\n1 2\n2 0\n3 4\n4 5\n"
	res, err := ingest.BuildWMD[int, int](context.Background(), strings.NewReader(input), vf, ef,
		ingest.WithReaders(2),
		ingest.WithPhysicalNodes(2),
		ingest.WithScaleFactor(4),
	)
	if err != nil {
		t.Fatalf("BuildWMD: %v", err)
	}
	if res.Dist == nil {
		t.Fatal("expected a plain DistLocalCSR result")
	}
	if got, want := res.Dist.Size(), int64(6); got != want {
		t.Errorf("Size() = %d; want %d", got, want)
	}
	if got, want := res.Dist.SizeEdges(), int64(5); got != want {
		t.Errorf("SizeEdges() = %d; want %d", got, want)
	}
	for _, tok := range []int64{0, 1, 2, 3, 4, 5} {
		if _, ok := res.Dist.GetTopologyID(tok); !ok {
			t.Errorf("token %d not found in built graph", tok)
		}
	}
}

func TestBuild_WithMirrorsMaterializesMirrorGraph(t *testing.T) {
	vertexTypes := map[string]bool{"V": true}
	edgeTypes := map[string]bool{"E": true}
	parse := ingest.DefaultCSVParser(vertexTypes, edgeTypes)

	input := "V,0\nV,1\nV,2\nV,3\nE,0,1\nE,1,2\nE,2,3\nE,3,0\n"
	res, err := ingest.Build[int, int](context.Background(), strings.NewReader(input), parse, vf, ef,
		ingest.WithReaders(2),
		ingest.WithPhysicalNodes(2),
		ingest.WithScaleFactor(4),
		ingest.WithMirrors(),
	)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Mirror == nil {
		t.Fatal("expected a MirrorDistLocalCSR result")
	}
	if got, want := res.Mirror.Size(), int64(4); got != want {
		t.Errorf("Size() (masters only) = %d; want %d", got, want)
	}
	if got, want := res.Mirror.SizeEdges(), int64(4); got != want {
		t.Errorf("SizeEdges() = %d; want %d", got, want)
	}
}
