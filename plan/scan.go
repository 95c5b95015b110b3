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
)

// IndexScan scans a secondary (or universal) index over a bound range,
// generalized from a single flat index key to a nested/grouped
// key.Expression.
type IndexScan struct {
	base
	IndexName   string
	Comparisons *key.ScanComparisons
	TextQuery   string // non-empty only for text-index scans
}

func NewIndexScan(indexName string, ke *key.Expression, comparisons *key.ScanComparisons, reverse, duplicates bool, resultTypes []string) *IndexScan {
	s := &IndexScan{
		IndexName:   indexName,
		Comparisons: comparisons,
		base: base{
			resultTypes: resultTypes,
			reverse:     reverse,
			duplicates:  duplicates,
			orderingKey: ke,
		},
	}
	return s
}

func (s *IndexScan) Accept(v Visitor) (interface{}, error) { return v.VisitIndexScan(s) }
func (s *IndexScan) descriptor() string {
	return fmt.Sprintf("IndexScan(%s,%s,rev=%t)", s.IndexName, s.Comparisons.String(), s.reverse)
}
func (s *IndexScan) ID() uuid.UUID   { return stableID(s.descriptor()) }
func (s *IndexScan) Complexity() int { return 1 + s.Comparisons.Size() }

// RecordScan scans the primary key space directly, with no secondary
// index. When the query names exactly one record type and the common
// primary key starts with the record-type column, the matcher injects an
// equality on that column into Comparisons.
type RecordScan struct {
	base
	Comparisons *key.ScanComparisons
}

func NewRecordScan(primaryKey *key.Expression, comparisons *key.ScanComparisons, reverse bool, resultTypes []string) *RecordScan {
	return &RecordScan{
		Comparisons: comparisons,
		base: base{
			resultTypes: resultTypes,
			reverse:     reverse,
			orderingKey: primaryKey,
		},
	}
}

func (s *RecordScan) Accept(v Visitor) (interface{}, error) { return v.VisitRecordScan(s) }
func (s *RecordScan) descriptor() string {
	return fmt.Sprintf("RecordScan(%s,rev=%t)", s.Comparisons.String(), s.reverse)
}
func (s *RecordScan) ID() uuid.UUID   { return stableID(s.descriptor()) }
func (s *RecordScan) Complexity() int { return 1 + s.Comparisons.Size() }
