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
	"testing"

	"github.com/recordlayer/recordplan/key"
)

func TestIndexScanReportsSourceFields(t *testing.T) {
	sc := &key.ScanComparisons{}
	s := NewIndexScan("by_name", key.Field("name", key.FanNone), sc, true, false, []string{"Customer"})
	if s.IndexName != "by_name" {
		t.Fatal("expected IndexName to be preserved")
	}
	if !s.Reverse() {
		t.Fatal("expected Reverse() to reflect the constructor argument")
	}
	if s.CreatesDuplicates() {
		t.Fatal("expected CreatesDuplicates() to be false")
	}
	if len(s.ResultTypes()) != 1 || s.ResultTypes()[0] != "Customer" {
		t.Fatalf("unexpected result types %v", s.ResultTypes())
	}
}

func TestIndexScanOrderingKeyIsItsExpression(t *testing.T) {
	sc := &key.ScanComparisons{}
	ke := key.Field("name", key.FanNone)
	s := NewIndexScan("by_name", ke, sc, false, false, nil)
	if s.OrderingKey() != ke {
		t.Fatal("an IndexScan's OrderingKey should be the key expression it was built with")
	}
}

func TestRecordScanComplexityCountsComparisons(t *testing.T) {
	sc := (&key.ScanComparisons{}).AddEquality(nil).AddEquality(nil)
	s := NewRecordScan(key.Field("pk", key.FanNone), sc, false, nil)
	if s.Complexity() != 1+sc.Size() {
		t.Fatalf("expected complexity 1+%d, got %d", sc.Size(), s.Complexity())
	}
}

func TestScanAcceptDispatchesToCorrectVisitorMethod(t *testing.T) {
	sc := &key.ScanComparisons{}
	idx := NewIndexScan("by_name", key.Field("name", key.FanNone), sc, false, false, nil)
	rec := NewRecordScan(key.Field("pk", key.FanNone), sc, false, nil)

	v := &recordingVisitor{}
	idx.Accept(v)
	rec.Accept(v)
	if v.indexScans != 1 || v.recordScans != 1 {
		t.Fatalf("expected one dispatch per scan type, got indexScans=%d recordScans=%d", v.indexScans, v.recordScans)
	}
}
