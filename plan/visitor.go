//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package plan

// Visitor is implemented by anything that walks a plan tree: an explain
// renderer, a serializer, or (entirely outside this core) the execution
// engine. Double-dispatch via Accept/Visitor keeps the operator set closed
// and exhaustive.
type Visitor interface {
	VisitIndexScan(*IndexScan) (interface{}, error)
	VisitRecordScan(*RecordScan) (interface{}, error)
	VisitTypeFilter(*TypeFilter) (interface{}, error)
	VisitResidualFilter(*ResidualFilter) (interface{}, error)
	VisitInJoin(*InJoin) (interface{}, error)
	VisitInUnion(*InUnion) (interface{}, error)
	VisitIntersection(*Intersection) (interface{}, error)
	VisitUnion(*Union) (interface{}, error)
	VisitUnorderedUnion(*UnorderedUnion) (interface{}, error)
	VisitPrimaryKeyDistinct(*PrimaryKeyDistinct) (interface{}, error)
	VisitCoveringFetch(*CoveringFetch) (interface{}, error)
	VisitSort(*Sort) (interface{}, error)
}

// Walk visits every node of the tree rooted at op, preorder.
func Walk(op Operator, visit func(Operator)) {
	if op == nil {
		return
	}
	visit(op)
	for _, c := range Children(op) {
		Walk(c, visit)
	}
}

// Children returns the direct child operators of op, in the order the
// operator defines them (empty for leaves).
func Children(op Operator) []Operator {
	switch n := op.(type) {
	case *IndexScan, *RecordScan:
		return nil
	case *TypeFilter:
		return []Operator{n.Source}
	case *ResidualFilter:
		return []Operator{n.Source}
	case *InJoin:
		return []Operator{n.Inner}
	case *InUnion:
		return []Operator{n.Inner}
	case *Intersection:
		return n.Children
	case *Union:
		return n.Children
	case *UnorderedUnion:
		return n.Children
	case *PrimaryKeyDistinct:
		return []Operator{n.Source}
	case *CoveringFetch:
		return []Operator{n.Source}
	case *Sort:
		return []Operator{n.Source}
	default:
		return nil
	}
}
