//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// Package metadata holds the immutable, read-only view of record types and
// indexes the planner consumes: a catalog keyed by record-type name rather
// than a flat bucket/scope/collection hierarchy. Loading metadata from
// storage is out of scope here; this package only shapes the value the
// loader is expected to hand the planner.
package metadata

import "github.com/recordlayer/recordplan/key"

// IndexType classifies an Index for matching purposes.
type IndexType int

const (
	IndexValue IndexType = iota
	IndexRank
	IndexText
	IndexOther
)

// RecordType describes one record type's name and primary key shape.
type RecordType struct {
	Name       string
	PrimaryKey *key.Expression
}

// Index describes one secondary (or primary-adjacent) index.
type Index struct {
	Name        string
	KeyExpr     *key.Expression
	Type        IndexType
	Unique      bool
	RecordTypes []string // empty means universal: applies to every record type
	Options     map[string]interface{}
}

// Universal reports whether this index spans every record type rather than
// being scoped to a named subset.
func (ix *Index) Universal() bool { return len(ix.RecordTypes) == 0 }

func (ix *Index) AppliesTo(recordType string) bool {
	if ix.Universal() {
		return true
	}
	for _, t := range ix.RecordTypes {
		if t == recordType {
			return true
		}
	}
	return false
}

// StoredColumnCount is the number of columns actually persisted in each
// index entry — used by the index-size tie-break in the selection
// comparator.
func (ix *Index) StoredColumnCount() int {
	if ix.Type == IndexValue {
		return ix.KeyExpr.ColumnWidth()
	}
	return ix.KeyExpr.ColumnWidth()
}

// Metadata is the full, read-only catalog: every record type and index
// known to the store.
type Metadata struct {
	RecordTypes map[string]*RecordType
	Indexes     map[string]*Index
}

// Readability reports whether the calling store can currently read a given
// index. Loading/tracking this state lives in the store layer, out of
// scope here; the planner only consumes the boolean.
type Readability interface {
	IsReadable(indexName string) bool
}

// AlwaysReadable is a Readability that permits every index; useful for
// tests and for stores with no partial-index-build concept.
type AlwaysReadable struct{}

func (AlwaysReadable) IsReadable(string) bool { return true }
