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
	"strings"
	"testing"

	"github.com/graphfabric/graphfabric/ingest"
)

func TestDefaultCSVParser_ClassifiesVertexAndEdgeRows(t *testing.T) {
	parse := ingest.DefaultCSVParser(
		map[string]bool{"Person": true},
		map[string]bool{"Sale": true},
	)

	rec, err := parse("Person,42,Alice")
	if err != nil {
		t.Fatalf("parse vertex row: %v", err)
	}
	if rec.IsEdge || rec.Token != 42 {
		t.Errorf("vertex record = %+v; want Token=42, IsEdge=false", rec)
	}

	rec, err = parse("Sale,42,99")
	if err != nil {
		t.Fatalf("parse edge row: %v", err)
	}
	if !rec.IsEdge || rec.Src != 42 || rec.Dst != 99 {
		t.Errorf("edge record = %+v; want Src=42, Dst=99, IsEdge=true", rec)
	}
}

func TestDefaultCSVParser_RejectsUnknownHeader(t *testing.T) {
	parse := ingest.DefaultCSVParser(map[string]bool{"Person": true}, map[string]bool{"Sale": true})
	if _, err := parse("Mystery,1,2"); err == nil {
		t.Fatal("expected an error for an unrecognized header")
	}
}

func TestDefaultEdgeListParser_ParsesWhitespaceSeparatedPairs(t *testing.T) {
	rec, err := ingest.DefaultEdgeListParser("7 9")
	if err != nil {
		t.Fatalf("DefaultEdgeListParser: %v", err)
	}
	if !rec.IsEdge || rec.Src != 7 || rec.Dst != 9 {
		t.Errorf("record = %+v; want Src=7, Dst=9", rec)
	}
}

func TestShardLines_DropsCommentsAndBlankLines(t *testing.T) {
	input := "a 1\n# comment\n\nb 2 // trailing comment\nc 3\n"
	shards, err := ingest.ShardLines(strings.NewReader(input), 2)
	if err != nil {
		t.Fatalf("ShardLines: %v", err)
	}
	var all []string
	for _, s := range shards {
		all = append(all, s...)
	}
	// Kept lines are dealt round-robin: shard 0 gets "a 1" and "c 3", shard 1 "b 2".
	want := []string{"a 1", "c 3", "b 2"}
	if len(all) != len(want) {
		t.Fatalf("got %v lines; want %v", all, want)
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("line %d = %q; want %q", i, all[i], want[i])
		}
	}
}

func TestParseShard_SplitsVerticesFromEdges(t *testing.T) {
	lines := []string{"1 2", "3 4"}
	ps, err := ingest.ParseShard(lines, ingest.DefaultEdgeListParser)
	if err != nil {
		t.Fatalf("ParseShard: %v", err)
	}
	if len(ps.Vertices) != 0 || len(ps.Edges) != 2 {
		t.Errorf("ParsedShard = %+v; want 0 vertices, 2 edges", ps)
	}
}
