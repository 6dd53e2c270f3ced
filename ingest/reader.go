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

// Package ingest implements the parallel construction pipeline of §4.8, §5
// C8: parse rows sharded across reader threads into per-thread edge
// buffers, balance virtual hosts onto physical nodes with an LPT
// heuristic, partition edges by owning node, and build each node's CSR -
// optionally materializing mirrors (graph/mirror) as the final step.
package ingest

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/graphfabric/graphfabric/container"
)

// Record is one parsed input row, per §6's "Input file shape": either a
// vertex record (Token set, IsEdge false) or an edge record (Src/Dst set,
// IsEdge true). Types beyond what routes the row to vertex/edge handling
//(the TYPE header column) are left to the caller's VD/ED parsing, which
// this package never inspects.
type Record struct {
	IsEdge bool
	Token  int64 // vertex record: this vertex's token
	Src    int64 // edge record: source token
	Dst    int64 // edge record: destination token
	Fields []string
}

// RowParser turns one raw input line into a Record. Callers supply this so
// ingest stays agnostic to the concrete VertexType/EdgeType schemas (§6:
// headers Person/ForumEvent/Forum/Publication/Topic for vertices,
// Sale/Author/Includes/HasTopic/HasOrg for edges) - it only needs to know
// whether a row is a vertex or an edge and what its token(s) are.
type RowParser func(line string) (Record, error)

// stripComment trims the §6 comment conventions (//, #, /* ... */) from a
// line, returning the content before the first comment marker.
func stripComment(line string) string {
	if i := strings.Index(line, "/*"); i >= 0 {
		if j := strings.Index(line[i:], "*/"); j >= 0 {
			line = line[:i] + line[i+j+2:]
		} else {
			line = line[:i]
		}
	}
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// DefaultCSVParser parses the comma-separated vertex/edge record shape of
// §6: a vertex row is TYPE,id,...; an edge row is TYPE,src,dst,.... vertexTypes
// and edgeTypes classify the TYPE header.
func DefaultCSVParser(vertexTypes, edgeTypes map[string]bool) RowParser {
	return func(line string) (Record, error) {
		line = stripComment(line)
		if line == "" {
			return Record{}, errBlankLine
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		head := fields[0]
		switch {
		case vertexTypes[head]:
			id, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return Record{}, err
			}
			return Record{Token: id, Fields: fields}, nil
		case edgeTypes[head]:
			src, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return Record{}, err
			}
			dst, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				return Record{}, err
			}
			return Record{IsEdge: true, Src: src, Dst: dst, Fields: fields}, nil
		default:
			return Record{}, errUnknownHeader
		}
	}
}

// DefaultEdgeListParser parses the whitespace-separated "src dst" rows of
// the WMD edge-list variant (§6, §4.8's initializeWMD).
func DefaultEdgeListParser(line string) (Record, error) {
	line = stripComment(line)
	if line == "" {
		return Record{}, errBlankLine
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Record{}, errUnknownHeader
	}
	src, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Record{}, err
	}
	dst, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Record{}, err
	}
	return Record{IsEdge: true, Src: src, Dst: dst, Fields: fields}, nil
}

// ShardLines splits r's lines as evenly as possible across numShards
// buckets by line index modulo numShards, matching "rows are sharded
// across T reader threads" (§4.8). Blank lines (after comment-stripping)
// are dropped at this stage.
func ShardLines(r io.Reader, numShards int) ([][]string, error) {
	shards := make([][]string, numShards)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	i := 0
	for sc.Scan() {
		line := stripComment(sc.Text())
		if line == "" {
			continue
		}
		shards[i%numShards] = append(shards[i%numShards], line)
		i++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return shards, nil
}

// ParsedShard is one reader thread's parsed output, per §4.8 step 1: the
// shard's vertex records and edge records, each as a plain slice in input
// order. Edges are not grouped by source token here.
type ParsedShard struct {
	Vertices []Record
	Edges    []Record
}

// ParseShard parses every line in lines with parse, splitting the result
// into vertex and edge records.
func ParseShard(lines []string, parse RowParser) (ParsedShard, error) {
	var out ParsedShard
	for _, line := range lines {
		rec, err := parse(line)
		if err == errBlankLine {
			continue
		}
		if err != nil {
			return ParsedShard{}, err
		}
		if rec.IsEdge {
			out.Edges = append(out.Edges, rec)
		} else {
			out.Vertices = append(out.Vertices, rec)
		}
	}
	return out, nil
}

// pushShardsToVector feeds every shard's records into a
// container.PerThreadVector keyed by shard index, giving the rest of the
// pipeline the same write-local/read-global handle the spec's other
// per-thread structures use.
func pushShardsToVector[T any](shards [][]T) *container.PerThreadVector[T] {
	v := container.NewPerThreadVector[T](len(shards))
	for i, shard := range shards {
		for _, rec := range shard {
			v.PushBack(i, rec)
		}
	}
	return v
}
