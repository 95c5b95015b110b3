//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package plan

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/recordlayer/recordplan/key"
	"github.com/recordlayer/recordplan/predicate"
)

// TypeFilter restricts a universal-index scan's output to a subset of
// record types.
type TypeFilter struct {
	base
	Source Operator
	Types  []string
}

func NewTypeFilter(source Operator, types []string) *TypeFilter {
	return &TypeFilter{
		Source: source,
		Types:  types,
		base: base{
			resultTypes: types,
			reverse:     source.Reverse(),
			duplicates:  source.CreatesDuplicates(),
			orderingKey: source.OrderingKey(),
		},
	}
}

func (f *TypeFilter) Accept(v Visitor) (interface{}, error) { return v.VisitTypeFilter(f) }
func (f *TypeFilter) descriptor() string {
	return fmt.Sprintf("TypeFilter(%v){%s}", f.Types, childIDs(f.Source))
}
func (f *TypeFilter) ID() uuid.UUID   { return stableID(f.descriptor()) }
func (f *TypeFilter) Complexity() int { return childComplexity(f.Source) }

// ResidualFilter evaluates a predicate on each fetched record, post-scan.
// Predicate is never nil and never empty — an empty residual means the
// wrapper should not have been inserted.
type ResidualFilter struct {
	base
	Source    Operator
	Predicate *predicate.Component
}

func NewResidualFilter(source Operator, pred *predicate.Component) *ResidualFilter {
	return &ResidualFilter{
		Source:    source,
		Predicate: pred,
		base: base{
			resultTypes: source.ResultTypes(),
			reverse:     source.Reverse(),
			duplicates:  source.CreatesDuplicates(),
			orderingKey: source.OrderingKey(),
		},
	}
}

func (f *ResidualFilter) Accept(v Visitor) (interface{}, error) { return v.VisitResidualFilter(f) }
func (f *ResidualFilter) descriptor() string {
	return fmt.Sprintf("ResidualFilter{%s}<-%s", childIDs(f.Source), describePredicate(f.Predicate))
}
func (f *ResidualFilter) ID() uuid.UUID   { return stableID(f.descriptor()) }
func (f *ResidualFilter) Complexity() int { return childComplexity(f.Source) }

// PrimaryKeyDistinct removes duplicate primary keys from its source's
// output. The source must itself be ordered by (at least a prefix of) the
// primary key for a streaming dedup; the core does not know or care how
// the execution engine implements that, only that this operator's
// presence documents the guarantee.
type PrimaryKeyDistinct struct {
	base
	Source Operator
}

func NewPrimaryKeyDistinct(source Operator) *PrimaryKeyDistinct {
	return &PrimaryKeyDistinct{
		Source: source,
		base: base{
			resultTypes: source.ResultTypes(),
			reverse:     source.Reverse(),
			orderingKey: source.OrderingKey(),
		},
	}
}

func (d *PrimaryKeyDistinct) Accept(v Visitor) (interface{}, error) {
	return v.VisitPrimaryKeyDistinct(d)
}
func (d *PrimaryKeyDistinct) descriptor() string {
	return fmt.Sprintf("PrimaryKeyDistinct{%s}", childIDs(d.Source))
}
func (d *PrimaryKeyDistinct) ID() uuid.UUID   { return stableID(d.descriptor()) }
func (d *PrimaryKeyDistinct) Complexity() int { return childComplexity(d.Source) }

// CoveringFetch rewrites a would-be record fetch into a read of the index
// entry alone, when every required result field and every predicate above
// the rewrite point is evaluable on the entry.
type CoveringFetch struct {
	base
	Source       Operator
	FetchedField []string // required result fields served from the index entry
}

func NewCoveringFetch(source Operator, fields []string) *CoveringFetch {
	return &CoveringFetch{
		Source:       source,
		FetchedField: fields,
		base: base{
			resultTypes: source.ResultTypes(),
			reverse:     source.Reverse(),
			duplicates:  source.CreatesDuplicates(),
			orderingKey: source.OrderingKey(),
		},
	}
}

func (c *CoveringFetch) Accept(v Visitor) (interface{}, error) { return v.VisitCoveringFetch(c) }
func (c *CoveringFetch) descriptor() string {
	return fmt.Sprintf("CoveringFetch(%v){%s}", c.FetchedField, childIDs(c.Source))
}
func (c *CoveringFetch) ID() uuid.UUID   { return stableID(c.descriptor()) }
func (c *CoveringFetch) Complexity() int { return childComplexity(c.Source) }

// Sort is an explicit in-memory sort, emitted only when
// Configuration.SortConfiguration permits an otherwise-unordered plan.
type Sort struct {
	base
	Source  Operator
	SortKey *key.Expression
}

func NewSort(source Operator, sortKey *key.Expression, reverse bool) *Sort {
	return &Sort{
		Source:  source,
		SortKey: sortKey,
		base: base{
			resultTypes: source.ResultTypes(),
			reverse:     reverse,
			duplicates:  source.CreatesDuplicates(),
			orderingKey: sortKey,
		},
	}
}

func (s *Sort) Accept(v Visitor) (interface{}, error) { return v.VisitSort(s) }
func (s *Sort) descriptor() string {
	return fmt.Sprintf("Sort{%s}", childIDs(s.Source))
}
func (s *Sort) ID() uuid.UUID   { return stableID(s.descriptor()) }
func (s *Sort) Complexity() int { return childComplexity(s.Source) }

func describePredicate(c *predicate.Component) string {
	if c == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v", c.Kind)
}
