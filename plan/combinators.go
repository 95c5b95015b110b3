//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// N-ary ordered combinators over a shared comparison key: unlike a binary
// First()/Second() shape, Children is a slice since ordered intersection
// and IN-union both need to combine more than two branches.
package plan

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/recordlayer/recordplan/key"
)

// Intersection merges two or more order-compatible scans on their shared
// comparison key, keeping only keys present in every branch. ComparisonKey
// is the common primary key, possibly prefixed by the sort.
type Intersection struct {
	base
	Children      []Operator
	ComparisonKey *key.Expression
}

func NewIntersection(children []Operator, comparisonKey *key.Expression, reverse bool) *Intersection {
	types := mergeResultTypes(children)
	// The intersection creates duplicates whenever any branch does; there is
	// no special case for branches over unique indexes.
	dup := false
	for _, c := range children {
		if c.CreatesDuplicates() {
			dup = true
			break
		}
	}
	return &Intersection{
		Children:      children,
		ComparisonKey: comparisonKey,
		base: base{
			resultTypes: types,
			reverse:     reverse,
			duplicates:  dup,
			orderingKey: comparisonKey,
		},
	}
}

func (i *Intersection) Accept(v Visitor) (interface{}, error) { return v.VisitIntersection(i) }
func (i *Intersection) descriptor() string {
	return fmt.Sprintf("Intersection{%s}", childIDs(i.Children...))
}
func (i *Intersection) ID() uuid.UUID   { return stableID(i.descriptor()) }
func (i *Intersection) Complexity() int { return childComplexity(i.Children...) }

// Union merges two or more order-compatible scans on their shared
// comparison key, producing the key-sorted set union.
type Union struct {
	base
	Children      []Operator
	ComparisonKey *key.Expression
}

func NewUnion(children []Operator, comparisonKey *key.Expression, reverse bool) *Union {
	return &Union{
		Children:      children,
		ComparisonKey: comparisonKey,
		base: base{
			resultTypes: mergeResultTypes(children),
			reverse:     reverse,
			duplicates:  true, // a union of branches sharing a key column may repeat a pk across branches
			orderingKey: comparisonKey,
		},
	}
}

func (u *Union) Accept(v Visitor) (interface{}, error) { return v.VisitUnion(u) }
func (u *Union) descriptor() string {
	return fmt.Sprintf("Union{%s}", childIDs(u.Children...))
}
func (u *Union) ID() uuid.UUID   { return stableID(u.descriptor()) }
func (u *Union) Complexity() int { return childComplexity(u.Children...) }

// UnorderedUnion concatenates two or more scans with no merge-key
// requirement. Always creates duplicates across overlapping branches;
// callers wrap with PrimaryKeyDistinct when the query demands
// distinctness.
type UnorderedUnion struct {
	base
	Children []Operator
}

func NewUnorderedUnion(children []Operator) *UnorderedUnion {
	return &UnorderedUnion{
		Children: children,
		base: base{
			resultTypes: mergeResultTypes(children),
			duplicates:  true,
		},
	}
}

func (u *UnorderedUnion) Accept(v Visitor) (interface{}, error) { return v.VisitUnorderedUnion(u) }
func (u *UnorderedUnion) descriptor() string {
	return fmt.Sprintf("UnorderedUnion{%s}", childIDs(u.Children...))
}
func (u *UnorderedUnion) ID() uuid.UUID   { return stableID(u.descriptor()) }
func (u *UnorderedUnion) Complexity() int { return childComplexity(u.Children...) }

// InSource is one outer value list driving an InJoin or InUnion branch.
type InSource struct {
	ParameterName string
	Values        []interface{}
}

// InJoin re-parameterizes Inner once per element of each Source and
// iterates it, concatenating results in source order. Built for a sarged
// IN extraction when no sort was requested, or when a sort was requested
// and neither the IN-union nor the explicit-OR fallback applies.
type InJoin struct {
	base
	Sources []InSource
	Inner   Operator
}

func NewInJoin(sources []InSource, inner Operator) *InJoin {
	return &InJoin{
		Sources: sources,
		Inner:   inner,
		base: base{
			resultTypes: inner.ResultTypes(),
			duplicates:  inner.CreatesDuplicates(),
		},
	}
}

func (j *InJoin) Accept(v Visitor) (interface{}, error) { return v.VisitInJoin(j) }
func (j *InJoin) descriptor() string {
	return fmt.Sprintf("InJoin(%d sources){%s}", len(j.Sources), childIDs(j.Inner))
}
func (j *InJoin) ID() uuid.UUID   { return stableID(j.descriptor()) }
func (j *InJoin) Complexity() int { return childComplexity(j.Inner) + len(j.Sources) }

// InUnion multi-way merges Inner, re-bound once per source element, on the
// merged ordering key of the subplan. Used when the outer iteration order
// cannot be made to match the requested sort directly, but a merge can.
type InUnion struct {
	base
	Sources       []InSource
	Inner         Operator
	ComparisonKey *key.Expression
}

func NewInUnion(sources []InSource, inner Operator, comparisonKey *key.Expression, reverse bool) *InUnion {
	return &InUnion{
		Sources:       sources,
		Inner:         inner,
		ComparisonKey: comparisonKey,
		base: base{
			resultTypes: inner.ResultTypes(),
			reverse:     reverse,
			duplicates:  inner.CreatesDuplicates(),
			orderingKey: comparisonKey,
		},
	}
}

func (u *InUnion) Accept(v Visitor) (interface{}, error) { return v.VisitInUnion(u) }
func (u *InUnion) descriptor() string {
	return fmt.Sprintf("InUnion(%d sources){%s}", len(u.Sources), childIDs(u.Inner))
}
func (u *InUnion) ID() uuid.UUID   { return stableID(u.descriptor()) }
func (u *InUnion) Complexity() int { return childComplexity(u.Inner) + len(u.Sources) }

func mergeResultTypes(children []Operator) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range children {
		for _, t := range c.ResultTypes() {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
