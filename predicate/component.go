//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package predicate

import "github.com/recordlayer/recordplan/key"

// ComponentKind tags a QueryComponent variant.
type ComponentKind int

const (
	KindFieldWithComparison ComponentKind = iota
	KindOneOfThemWithComparison
	KindQueryRecordFunctionWithComparison
	KindRecordTypeKeyComparison
	KindQueryKeyExpressionWithComparison
	KindAnd
	KindOr
	KindNot
	KindNested
	KindOneOfThemWithComponent
)

// RecordFunction names the synthetic function a
// QueryRecordFunctionWithComparison leaf tests, e.g. "version" or "rank".
type RecordFunction string

const (
	FunctionVersion RecordFunction = "version"
	FunctionRank    RecordFunction = "rank"
)

// Component is a node of the boolean QueryComponent tree.
// Leaves carry a Comparison; inner nodes carry Children (And/Or), a single
// Child (Not/Nested/OneOfThemWithComponent).
type Component struct {
	Kind ComponentKind

	// Leaf fields.
	FieldName  string          // KindFieldWithComparison, KindOneOfThemWithComparison
	KeyExpr    *key.Expression // KindQueryKeyExpressionWithComparison, KindQueryRecordFunctionWithComparison (grouping)
	Function   RecordFunction  // KindQueryRecordFunctionWithComparison
	Comparison Comparison

	// Inner-node fields.
	Children []*Component // KindAnd, KindOr
	Child    *Component   // KindNot, KindNested, KindOneOfThemWithComponent
	Nest     string        // KindNested, KindOneOfThemWithComponent: the parent field name
}

func FieldWithComparison(field string, c Comparison) *Component {
	return &Component{Kind: KindFieldWithComparison, FieldName: field, Comparison: c}
}

func OneOfThemWithComparison(field string, c Comparison) *Component {
	return &Component{Kind: KindOneOfThemWithComparison, FieldName: field, Comparison: c}
}

func QueryRecordFunctionWithComparison(fn RecordFunction, groupKey *key.Expression, c Comparison) *Component {
	return &Component{Kind: KindQueryRecordFunctionWithComparison, Function: fn, KeyExpr: groupKey, Comparison: c}
}

func RecordTypeKeyComparison(c Comparison) *Component {
	return &Component{Kind: KindRecordTypeKeyComparison, Comparison: c}
}

func QueryKeyExpressionWithComparison(ke *key.Expression, c Comparison) *Component {
	return &Component{Kind: KindQueryKeyExpressionWithComparison, KeyExpr: ke, Comparison: c}
}

func And(children ...*Component) *Component {
	flat := make([]*Component, 0, len(children))
	for _, c := range children {
		if c.Kind == KindAnd {
			flat = append(flat, c.Children...)
		} else {
			flat = append(flat, c)
		}
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &Component{Kind: KindAnd, Children: flat}
}

func Or(children ...*Component) *Component {
	flat := make([]*Component, 0, len(children))
	for _, c := range children {
		if c.Kind == KindOr {
			flat = append(flat, c.Children...)
		} else {
			flat = append(flat, c)
		}
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &Component{Kind: KindOr, Children: flat}
}

func Not(child *Component) *Component {
	return &Component{Kind: KindNot, Child: child}
}

func Nested(parentField string, child *Component) *Component {
	return &Component{Kind: KindNested, Nest: parentField, Child: child}
}

func OneOfThemWithComponent(parentField string, child *Component) *Component {
	return &Component{Kind: KindOneOfThemWithComponent, Nest: parentField, Child: child}
}

// IsLeaf reports whether this node has no boolean structure of its own.
func (c *Component) IsLeaf() bool {
	switch c.Kind {
	case KindAnd, KindOr, KindNot, KindNested, KindOneOfThemWithComponent:
		return false
	default:
		return true
	}
}

// Clone performs a shallow structural copy; Component trees are treated
// as immutable values everywhere in the planner, so Clone is only needed
// at the few places that build a new tree from parts of an old one.
func (c *Component) Clone() *Component {
	if c == nil {
		return nil
	}
	out := *c
	if c.Children != nil {
		out.Children = append([]*Component{}, c.Children...)
	}
	return &out
}

// Equals is structural equality over the whole subtree.
func (c *Component) Equals(o *Component) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil || c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case KindFieldWithComparison, KindOneOfThemWithComparison:
		return c.FieldName == o.FieldName && c.Comparison.equals(o.Comparison)
	case KindQueryRecordFunctionWithComparison:
		return c.Function == o.Function && c.KeyExpr.Equals(o.KeyExpr) && c.Comparison.equals(o.Comparison)
	case KindRecordTypeKeyComparison:
		return c.Comparison.equals(o.Comparison)
	case KindQueryKeyExpressionWithComparison:
		return c.KeyExpr.Equals(o.KeyExpr) && c.Comparison.equals(o.Comparison)
	case KindAnd, KindOr:
		if len(c.Children) != len(o.Children) {
			return false
		}
		for i := range c.Children {
			if !c.Children[i].Equals(o.Children[i]) {
				return false
			}
		}
		return true
	case KindNot:
		return c.Child.Equals(o.Child)
	case KindNested, KindOneOfThemWithComponent:
		return c.Nest == o.Nest && c.Child.Equals(o.Child)
	}
	return false
}

func (c Comparison) equals(o Comparison) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case CompEquality:
		return c.Equality.Equals(o.Equality)
	case CompInequality:
		return c.InequalityOp == o.InequalityOp && c.InequalityV.Equals(o.InequalityV)
	case CompNull:
		return c.Null == o.Null
	case CompInList:
		if len(c.InList) != len(o.InList) {
			return false
		}
		for i := range c.InList {
			if !c.InList[i].Equals(o.InList[i]) {
				return false
			}
		}
		return true
	case CompTextMatch:
		return c.TextQuery == o.TextQuery
	case CompParameter:
		return c.ParameterName == o.ParameterName
	case CompValueCompare:
		return c.OtherValueField.Equals(o.OtherValueField)
	}
	return false
}

// Walk visits every node of the tree in preorder, depth-first.
func (c *Component) Walk(visit func(*Component)) {
	if c == nil {
		return
	}
	visit(c)
	for _, ch := range c.Children {
		ch.Walk(visit)
	}
	if c.Child != nil {
		c.Child.Walk(visit)
	}
}
