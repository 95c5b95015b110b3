//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// Context build: walks the catalog's index list and filters by
// readability/queryability before any matching is attempted, applying a
// multi-record-type candidate-discovery rule.
package planner

import (
	"sort"

	"github.com/recordlayer/recordplan/key"
	"github.com/recordlayer/recordplan/metadata"
	"github.com/recordlayer/recordplan/planerr"
)

// PlanContext is the immutable value threaded through one plan() call.
// It is built once by BuildContext and never mutated; it is passed by
// reference through the matcher call chain, never stored in a value
// type.
type PlanContext struct {
	Query             *Query
	CandidateIndexes  []*metadata.Index // sorted by name: deterministic iteration
	CommonPrimaryKey  *key.Expression
	RankComparisons   *RankComparisons
	AllowDuplicates   bool
}

// BuildContext resolves q's record-type set to candidate indexes, computes
// the common primary key, and applies readability/allow-list filtering.
func BuildContext(md *metadata.Metadata, r metadata.Readability, q *Query) (*PlanContext, error) {
	for _, t := range q.RecordTypes {
		if _, ok := md.RecordTypes[t]; !ok {
			return nil, planerr.NewMetadataError(t, "unknown record type")
		}
	}

	commonPK, err := commonPrimaryKey(md, q.RecordTypes)
	if err != nil {
		return nil, err
	}

	candidates := discoverCandidates(md, q.RecordTypes)

	readableCandidates := make([]*metadata.Index, 0, len(candidates))
	var unreadableMatch *metadata.Index
	for _, ix := range candidates {
		if r.IsReadable(ix.Name) {
			readableCandidates = append(readableCandidates, ix)
		} else if ix.Name == q.RequiredIndex {
			unreadableMatch = ix
		}
	}
	filtered := readableCandidates[:0:0]
	for _, ix := range readableCandidates {
		if !indexAllowed(ix, q) {
			continue
		}
		filtered = append(filtered, ix)
	}
	if len(filtered) == 0 && unreadableMatch != nil {
		return nil, planerr.NewUnreadableIndexError(unreadableMatch.Name)
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Name < filtered[j].Name })

	return &PlanContext{
		Query:            q,
		CandidateIndexes: filtered,
		CommonPrimaryKey: commonPK,
		RankComparisons:  NewRankComparisons(),
		AllowDuplicates:  q.AllowDuplicates,
	}, nil
}

func indexAllowed(ix *metadata.Index, q *Query) bool {
	if len(q.AllowedIndexes) > 0 {
		allowed := false
		for _, name := range q.AllowedIndexes {
			if name == ix.Name {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	if q.Queryable != nil && !q.Queryable(ix.Name) {
		return false
	}
	return true
}

// discoverCandidates implements the per-type/multi-type/universal
// candidate rule:
//   - no named types: every universal index;
//   - exactly one named type: that type's own indexes + multi-type indexes
//     that include it, + universal indexes;
//   - multiple named types: only multi-type indexes declared on every named
//     type, + universal indexes.
func discoverCandidates(md *metadata.Metadata, types []string) []*metadata.Index {
	var out []*metadata.Index
	switch len(types) {
	case 0:
		for _, ix := range md.Indexes {
			if ix.Universal() {
				out = append(out, ix)
			}
		}
	case 1:
		t := types[0]
		for _, ix := range md.Indexes {
			if ix.Universal() || ix.AppliesTo(t) {
				out = append(out, ix)
			}
		}
	default:
		for _, ix := range md.Indexes {
			if ix.Universal() {
				out = append(out, ix)
				continue
			}
			appliesToAll := true
			for _, t := range types {
				if !ix.AppliesTo(t) {
					appliesToAll = false
					break
				}
			}
			if appliesToAll {
				out = append(out, ix)
			}
		}
	}
	return out
}

// commonPrimaryKey is the structural common prefix of the primary keys of
// every named type. With no named types it is the structural common
// prefix across every type in the metadata.
func commonPrimaryKey(md *metadata.Metadata, types []string) (*key.Expression, error) {
	names := types
	if len(names) == 0 {
		for name := range md.RecordTypes {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return key.Empty, nil
	}

	var common []*key.Expression
	for i, name := range names {
		rt, ok := md.RecordTypes[name]
		if !ok {
			return nil, planerr.NewMetadataError(name, "unknown record type")
		}
		cols := rt.PrimaryKey.Columns()
		if i == 0 {
			common = cols
			continue
		}
		common = commonPrefix(common, cols)
	}
	if len(common) == 0 {
		return key.Empty, nil
	}
	return key.Then(common...), nil
}

func commonPrefix(a, b []*key.Expression) []*key.Expression {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for ; i < n; i++ {
		if !columnsEqual(a[i], b[i]) {
			break
		}
	}
	return a[:i]
}

func columnsEqual(a, b *key.Expression) bool {
	return a.Equals(b)
}
