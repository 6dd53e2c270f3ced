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

package ingest

import (
	"context"
	"io"

	"github.com/graphfabric/graphfabric/parallel"
)

// BuildWMD is the edge-list-only variant of Build (§4.8's initializeWMD):
// the input carries no vertex records at all, so buildFromParsed's own
// placeholder-vertex synthesis (run for every edge endpoint it finds
// undeclared) ends up materializing one vertex per distinct token in the
// edge list, matching the source's "emit VertexType(src, NONE) the first
// time a token is seen" rule.
func BuildWMD[VD, ED any](ctx context.Context, r io.Reader, vf VertexFactory[VD], ef EdgeFactory[ED], opts ...Option) (*Result[VD, ED], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	lineShards, err := ShardLines(r, o.numReaders)
	if err != nil {
		return nil, err
	}

	parsed := make([]ParsedShard, len(lineShards))
	if err := parallel.DoAllEvenlyPartition(ctx, len(lineShards), len(lineShards), func(_ context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			ps, err := ParseShard(lineShards[i], DefaultEdgeListParser)
			if err != nil {
				return err
			}
			parsed[i] = ps
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return buildFromParsed(ctx, parsed, vf, ef, o)
}
