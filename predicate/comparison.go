//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// Package predicate implements the boolean QueryComponent tree and the
// Comparison variant: a closed set of leaf-level comparison kinds
// collapsed into one tagged type rather than one Go type per kind.
package predicate

import "github.com/recordlayer/recordplan/key"
import "github.com/recordlayer/recordplan/value"

// ComparisonKind tags a Comparison variant.
type ComparisonKind int

const (
	CompEquality ComparisonKind = iota
	CompInequality
	CompNull
	CompInList
	CompTextMatch
	CompParameter
	CompValueCompare
)

// Category buckets a Comparison for scan construction.
type Category int

const (
	CategoryEquality Category = iota
	CategoryInequality
)

// NullKind distinguishes IS NULL from IS NOT NULL (or a missing-field test
// in record-layer parlance).
type NullKind int

const (
	IsNull NullKind = iota
	NotNull
)

// Comparison is the tagged leaf-level test applied to one key column.
type Comparison struct {
	Kind ComparisonKind

	Equality value.Value // CompEquality

	InequalityOp key.InequalityOp // CompInequality
	InequalityV  value.Value

	Null NullKind // CompNull

	InList []value.Value // CompInList

	TextQuery string // CompTextMatch, opaque to the core: tokenizing/scoring is the index implementation's job

	ParameterName string // CompParameter

	OtherValueField *key.Expression // CompValueCompare: compare against another key column
}

func Equality(v value.Value) Comparison { return Comparison{Kind: CompEquality, Equality: v} }

func Inequality(op key.InequalityOp, v value.Value) Comparison {
	return Comparison{Kind: CompInequality, InequalityOp: op, InequalityV: v}
}

func Null(kind NullKind) Comparison { return Comparison{Kind: CompNull, Null: kind} }

func InList(vs []value.Value) Comparison { return Comparison{Kind: CompInList, InList: vs} }

func TextMatch(q string) Comparison { return Comparison{Kind: CompTextMatch, TextQuery: q} }

func Parameter(name string) Comparison { return Comparison{Kind: CompParameter, ParameterName: name} }

func ValueCompare(other *key.Expression) Comparison {
	return Comparison{Kind: CompValueCompare, OtherValueField: other}
}

// Category classifies this comparison as sargable-equality or
// sargable-inequality, the split ScanComparisons relies on.
func (c Comparison) Category() Category {
	switch c.Kind {
	case CompEquality, CompInList, CompParameter:
		return CategoryEquality
	default:
		return CategoryInequality
	}
}

// Complement returns the direct complement of a comparison under negation,
// and whether one exists. Used by filter normalization to push a Not into
// a leaf.
func (c Comparison) Complement() (Comparison, bool) {
	switch c.Kind {
	case CompInequality:
		return Inequality(c.InequalityOp.Complement(), c.InequalityV), true
	case CompNull:
		if c.Null == IsNull {
			return Null(NotNull), true
		}
		return Null(IsNull), true
	default:
		return Comparison{}, false
	}
}
