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
	"testing"

	"github.com/recordlayer/recordplan/value"
)

func TestScanComparisonsSize(t *testing.T) {
	sc := &ScanComparisons{}
	sc = sc.AddEquality(value.NewString("a"))
	sc = sc.AddEquality(value.NewString("b"))
	if sc.Size() != 2 {
		t.Fatalf("expected size 2, got %d", sc.Size())
	}
	sc = sc.AddInequality(&Inequality{Op: GT, Value: value.NewNumber(5)}, nil)
	if sc.Size() != 3 {
		t.Fatalf("expected size 3 after adding an inequality, got %d", sc.Size())
	}
	if !sc.HasInequality() {
		t.Fatal("expected HasInequality to be true")
	}
}

func TestScanComparisonsAddDoesNotMutateOriginal(t *testing.T) {
	base := &ScanComparisons{}
	withEq := base.AddEquality(value.NewString("a"))
	if !base.Empty() {
		t.Fatal("AddEquality should not mutate the receiver")
	}
	if withEq.Empty() {
		t.Fatal("the returned comparisons should carry the new equality")
	}
}

func TestMergeGroupingScansCompatiblePrefix(t *testing.T) {
	a := (&ScanComparisons{}).AddEquality(value.NewString("cat")).AddInequality(&Inequality{Op: GT, Value: value.NewNumber(5)}, nil)
	b := (&ScanComparisons{}).AddEquality(value.NewString("cat")).AddInequality(nil, &Inequality{Op: LT, Value: value.NewNumber(10)})
	merged, ok := MergeGroupingScans(a, b)
	if !ok {
		t.Fatal("expected compatible equality prefixes to merge")
	}
	if merged.Low == nil || merged.High == nil {
		t.Fatal("expected merged range to carry both the low and high bound")
	}
}

func TestMergeGroupingScansIncompatiblePrefix(t *testing.T) {
	a := (&ScanComparisons{}).AddEquality(value.NewString("cat1"))
	b := (&ScanComparisons{}).AddEquality(value.NewString("cat2"))
	if _, ok := MergeGroupingScans(a, b); ok {
		t.Fatal("expected mismatched equality prefixes to fail to merge")
	}
}

func TestTighterLowAndHigh(t *testing.T) {
	a := (&ScanComparisons{}).AddInequality(&Inequality{Op: GT, Value: value.NewNumber(5)}, nil)
	b := (&ScanComparisons{}).AddInequality(&Inequality{Op: GT, Value: value.NewNumber(10)}, nil)
	merged, ok := a.Merge(b)
	if !ok {
		t.Fatal("expected empty equality prefixes to merge")
	}
	if merged.Low.Value.Actual() != 10.0 {
		t.Fatalf("expected the tighter (larger) low bound to win, got %v", merged.Low.Value.Actual())
	}
}
