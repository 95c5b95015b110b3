//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// Package plan implements the RecordQueryPlan operator tree: one Go type
// per operator, an Accept(Visitor) method on each, and a stable,
// content-addressed identifier per node for explainability. Executing a
// plan is out of scope here; these types carry only what an external
// execution engine needs to interpret the tree.
package plan

import (
	"github.com/google/uuid"
	"github.com/recordlayer/recordplan/key"
)

// recordplanNamespace seeds deterministic, content-addressed node IDs: two
// structurally equal plans always mint equal IDs.
var recordplanNamespace = uuid.MustParse("8f14e45f-ceea-467e-8c1a-5d0a7fce2b87")

func stableID(descriptor string) uuid.UUID {
	return uuid.NewSHA1(recordplanNamespace, []byte(descriptor))
}

// Operator is the common interface of every plan-tree node.
type Operator interface {
	Accept(v Visitor) (interface{}, error)
	// ID is a stable identifier for explainability, deterministic given the
	// operator's shape and its children's IDs.
	ID() uuid.UUID
	// ResultTypes is the set of record type names this node's output may
	// contain, used by TypeFilter insertion.
	ResultTypes() []string
	// Reverse reports whether this node's output is in descending key order.
	Reverse() bool
	// Complexity is the sum of children's complexity plus one, plus the
	// size of any ScanComparisons at this node; InJoin and InUnion also add
	// one per IN source.
	Complexity() int
	// CreatesDuplicates reports whether this node's output may repeat a
	// primary key.
	CreatesDuplicates() bool
	// OrderingKey is the sequence of columns this node's output is ordered
	// by, or nil if unordered.
	OrderingKey() *key.Expression
	descriptor() string
}

// base is embedded by every concrete operator; it carries the fields common
// to all of them and implements everything but Accept, ID, descriptor and
// Complexity, which each concrete node must specialize with its own
// operator tag and children.
type base struct {
	resultTypes []string
	reverse     bool
	duplicates  bool
	orderingKey *key.Expression
}

func (b *base) ResultTypes() []string          { return b.resultTypes }
func (b *base) Reverse() bool                  { return b.reverse }
func (b *base) CreatesDuplicates() bool        { return b.duplicates }
func (b *base) OrderingKey() *key.Expression   { return b.orderingKey }

func childComplexity(children ...Operator) int {
	n := 1
	for _, c := range children {
		if c != nil {
			n += c.Complexity()
		}
	}
	return n
}

func childIDs(children ...Operator) string {
	s := ""
	for _, c := range children {
		if c != nil {
			s += c.ID().String() + "|"
		}
	}
	return s
}

