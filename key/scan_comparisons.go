//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package key

import (
	"fmt"
	"strings"

	"github.com/recordlayer/recordplan/value"
)

// InequalityOp enumerates the comparison operators a compound range may use.
type InequalityOp int

const (
	GT InequalityOp = iota
	GTE
	LT
	LTE
)

func (op InequalityOp) String() string {
	switch op {
	case GT:
		return ">"
	case GTE:
		return ">="
	case LT:
		return "<"
	case LTE:
		return "<="
	default:
		return "?"
	}
}

func (op InequalityOp) Complement() InequalityOp {
	switch op {
	case GT:
		return LTE
	case GTE:
		return LT
	case LT:
		return GTE
	default:
		return GT
	}
}

// Inequality is a single bound of a compound range, e.g. (GT, 5).
type Inequality struct {
	Op    InequalityOp
	Value value.Value
}

// ScanComparisons is an ordered tuple of equality comparisons followed by at
// most one compound inequality range. Once an inequality is added, no
// further equality may be added; EqualitySize is the sarged prefix
// length used throughout scoring.
type ScanComparisons struct {
	Equalities []value.Value
	Low, High  *Inequality // Low and/or High bound the single trailing range; both nil if none.
}

// Empty reports whether the comparisons bind nothing (a full scan).
func (sc *ScanComparisons) Empty() bool {
	return sc == nil || (len(sc.Equalities) == 0 && sc.Low == nil && sc.High == nil)
}

// EqualitySize is the sarged prefix length.
func (sc *ScanComparisons) EqualitySize() int {
	if sc == nil {
		return 0
	}
	return len(sc.Equalities)
}

// HasInequality reports whether a trailing range has been bound.
func (sc *ScanComparisons) HasInequality() bool {
	return sc != nil && (sc.Low != nil || sc.High != nil)
}

// Size is the total number of bound columns: equalities plus one if a range
// is present. Used by the scoring comparator.
func (sc *ScanComparisons) Size() int {
	n := sc.EqualitySize()
	if sc.HasInequality() {
		n++
	}
	return n
}

// AddEquality appends an equality to the prefix. It is an invariant
// violation (caught by the matcher, not here) to call this after an
// inequality has been added.
func (sc *ScanComparisons) AddEquality(v value.Value) *ScanComparisons {
	out := sc.clone()
	out.Equalities = append(out.Equalities, v)
	return out
}

// AddInequality sets the single trailing compound range. Low/high may be
// supplied independently (e.g. BETWEEN binds both in one call; a single
// comparison binds only one side).
func (sc *ScanComparisons) AddInequality(low, high *Inequality) *ScanComparisons {
	out := sc.clone()
	if low != nil {
		out.Low = low
	}
	if high != nil {
		out.High = high
	}
	return out
}

func (sc *ScanComparisons) clone() *ScanComparisons {
	if sc == nil {
		return &ScanComparisons{}
	}
	out := &ScanComparisons{
		Equalities: append([]value.Value{}, sc.Equalities...),
		Low:        sc.Low,
		High:       sc.High,
	}
	return out
}

// Merge unions two ScanComparisons that scan the same column, e.g. two rank
// predicates over the same grouping key combined by RankComparisons.
// Equality prefixes must match exactly; ranges are intersected (the
// tighter bound on each side wins). Returns ok=false when the two are not
// compatible (different equality prefixes).
func (sc *ScanComparisons) Merge(other *ScanComparisons) (*ScanComparisons, bool) {
	if sc.Empty() {
		return other.clone(), true
	}
	if other.Empty() {
		return sc.clone(), true
	}
	if len(sc.Equalities) != len(other.Equalities) {
		return nil, false
	}
	for i := range sc.Equalities {
		if !sc.Equalities[i].Equals(other.Equalities[i]) {
			return nil, false
		}
	}
	out := sc.clone()
	out.Low = tighterLow(sc.Low, other.Low)
	out.High = tighterHigh(sc.High, other.High)
	return out, true
}

// MergeGroupingScans unions two ScanComparisons built against the same
// grouping key, e.g. two rank predicates over the same rank index. It is a
// named entry point over Merge for callers (RankComparisons.Bind) binding
// more than one rank leaf to the same grouping prefix.
func MergeGroupingScans(a, b *ScanComparisons) (*ScanComparisons, bool) {
	return a.Merge(b)
}

func tighterLow(a, b *Inequality) *Inequality {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Value.Collate(b.Value) >= 0 {
		return a
	}
	return b
}

// String renders a compact, deterministic description, used to seed stable
// plan-node identifiers and in test failure messages.
func (sc *ScanComparisons) String() string {
	if sc.Empty() {
		return "[]"
	}
	parts := make([]string, 0, len(sc.Equalities)+1)
	for _, v := range sc.Equalities {
		parts = append(parts, "EQ("+v.String()+")")
	}
	if sc.Low != nil {
		parts = append(parts, fmt.Sprintf("LOW(%v,%s)", sc.Low.Op, sc.Low.Value.String()))
	}
	if sc.High != nil {
		parts = append(parts, fmt.Sprintf("HIGH(%v,%s)", sc.High.Op, sc.High.Value.String()))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func tighterHigh(a, b *Inequality) *Inequality {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Value.Collate(b.Value) <= 0 {
		return a
	}
	return b
}
