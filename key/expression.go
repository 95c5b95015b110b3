//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// Package key implements the KeyExpression data model: the tree of
// key-building primitives that describe how an index (or a primary key)
// turns a record into an ordered tuple of scan columns, and the
// ScanComparisons algebra used to bind predicates into a scan's start/end
// key. Columns may be nested, fanned out over a repeated field, or grouped
// for a rank-style index, generalizing a flat index key into those shapes.
package key

// Fan describes how a Field expression fans out when building a key.
type Fan int

const (
	FanNone Fan = iota
	FanOut
	FanConcatenate
)

func (f Fan) String() string {
	switch f {
	case FanNone:
		return "none"
	case FanOut:
		return "fan_out"
	case FanConcatenate:
		return "concatenate"
	default:
		return "unknown"
	}
}

// Kind tags the variant of an Expression.
type Kind int

const (
	KindField Kind = iota
	KindNesting
	KindThen
	KindGrouping
	KindKeyWithValue
	KindRecordTypeKey
	KindVersion
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindNesting:
		return "nesting"
	case KindThen:
		return "then"
	case KindGrouping:
		return "grouping"
	case KindKeyWithValue:
		return "key_with_value"
	case KindRecordTypeKey:
		return "record_type_key"
	case KindVersion:
		return "version"
	case KindEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Expression is a node in a KeyExpression tree. It is an immutable value;
// the planner never mutates one after construction, so a single Expression
// value may be shared by several indexes or subplans.
type Expression struct {
	kind Kind

	// KindField
	fieldName string
	fan       Fan

	// KindNesting
	parent *Expression // KindField
	child  *Expression

	// KindThen
	children []*Expression

	// KindGrouping
	whole        *Expression
	groupedCount int

	// KindKeyWithValue
	key        *Expression
	valueSplit int
}

func Field(name string, fan Fan) *Expression {
	return &Expression{kind: KindField, fieldName: name, fan: fan}
}

func Nesting(parent *Expression, child *Expression) *Expression {
	if parent == nil || parent.kind != KindField {
		panic("key: Nesting requires a Field parent")
	}
	return &Expression{kind: KindNesting, parent: parent, child: child}
}

// Then builds an ordered concatenation, flattening any directly nested Then
// children: a Then may not nest a Then directly, so children are flattened
// on build.
func Then(children ...*Expression) *Expression {
	flat := make([]*Expression, 0, len(children))
	for _, c := range children {
		if c.kind == KindThen {
			flat = append(flat, c.children...)
		} else {
			flat = append(flat, c)
		}
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &Expression{kind: KindThen, children: flat}
}

func Grouping(whole *Expression, groupedCount int) *Expression {
	return &Expression{kind: KindGrouping, whole: whole, groupedCount: groupedCount}
}

func KeyWithValue(k *Expression, valueSplit int) *Expression {
	return &Expression{kind: KindKeyWithValue, key: k, valueSplit: valueSplit}
}

var RecordTypeKey = &Expression{kind: KindRecordTypeKey}
var Version = &Expression{kind: KindVersion}
var Empty = &Expression{kind: KindEmpty}

func (e *Expression) Kind() Kind { return e.kind }

func (e *Expression) FieldName() string { return e.fieldName }
func (e *Expression) FieldFan() Fan      { return e.fan }

func (e *Expression) NestingParent() *Expression { return e.parent }
func (e *Expression) NestingChild() *Expression  { return e.child }

func (e *Expression) ThenChildren() []*Expression { return e.children }

func (e *Expression) GroupingWhole() *Expression { return e.whole }
func (e *Expression) GroupingCount() int          { return e.groupedCount }

func (e *Expression) KeyWithValueKey() *Expression { return e.key }
func (e *Expression) ValueSplit() int              { return e.valueSplit }

// Columns flattens the expression into its ordered leaf column list, the
// form the matcher iterates left-to-right. Grouping flattens to its whole
// key; KeyWithValue flattens to its indexed prefix only (the value suffix is
// stored, not indexed).
func (e *Expression) Columns() []*Expression {
	switch e.kind {
	case KindThen:
		out := make([]*Expression, 0, len(e.children))
		for _, c := range e.children {
			out = append(out, c.Columns()...)
		}
		return out
	case KindGrouping:
		return e.whole.Columns()
	case KindKeyWithValue:
		return e.key.Columns()
	default:
		return []*Expression{e}
	}
}

// CreatesDuplicates is true iff any Field column in the expression fans out.
func (e *Expression) CreatesDuplicates() bool {
	for _, c := range e.Columns() {
		switch c.kind {
		case KindField:
			if c.fan == FanOut {
				return true
			}
		case KindNesting:
			if c.parent.fan == FanOut || c.child.CreatesDuplicates() {
				return true
			}
		}
	}
	return false
}

// Sortable is false for any column built with Concatenate fan: a
// concatenated fan-out has no single total order to sort by.
func (e *Expression) Sortable() bool {
	for _, c := range e.Columns() {
		if c.kind == KindField && c.fan == FanConcatenate {
			return false
		}
		if c.kind == KindNesting && (c.parent.fan == FanConcatenate || !c.child.Sortable()) {
			return false
		}
	}
	return true
}

// IsPrefixKey tests column-wise prefix equivalence: every column of this
// expression, in order, equals the corresponding column of other.
func (e *Expression) IsPrefixKey(other *Expression) bool {
	mine := e.Columns()
	theirs := other.Columns()
	if len(mine) > len(theirs) {
		return false
	}
	for i := range mine {
		if !mine[i].equalColumn(theirs[i]) {
			return false
		}
	}
	return true
}

func (e *Expression) equalColumn(o *Expression) bool {
	if e.kind != o.kind {
		return false
	}
	switch e.kind {
	case KindField:
		return e.fieldName == o.fieldName && e.fan == o.fan
	case KindNesting:
		return e.parent.equalColumn(o.parent) && e.child.equalColumn(o.child)
	case KindRecordTypeKey, KindVersion, KindEmpty:
		return true
	default:
		// Then/Grouping/KeyWithValue never appear as a single flattened
		// column; equality at this granularity is therefore structural.
		return e.Equals(o)
	}
}

// Equals is full structural equality, used by the matcher to recognize two
// QueryKeyExpressionWithComparison leaves that target the same key shape.
func (e *Expression) Equals(o *Expression) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil || e.kind != o.kind {
		return false
	}
	switch e.kind {
	case KindField:
		return e.fieldName == o.fieldName && e.fan == o.fan
	case KindNesting:
		return e.parent.Equals(o.parent) && e.child.Equals(o.child)
	case KindThen:
		if len(e.children) != len(o.children) {
			return false
		}
		for i := range e.children {
			if !e.children[i].Equals(o.children[i]) {
				return false
			}
		}
		return true
	case KindGrouping:
		return e.groupedCount == o.groupedCount && e.whole.Equals(o.whole)
	case KindKeyWithValue:
		return e.valueSplit == o.valueSplit && e.key.Equals(o.key)
	case KindRecordTypeKey, KindVersion, KindEmpty:
		return true
	}
	return false
}

// ColumnWidth is the number of flattened columns, used for index-size
// tie-breaking in the selection comparator.
func (e *Expression) ColumnWidth() int {
	return len(e.Columns())
}
