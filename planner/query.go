//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package planner

import (
	"github.com/recordlayer/recordplan/key"
	"github.com/recordlayer/recordplan/predicate"
)

// Query is the declarative planning input: a record-type set, a boolean
// filter, an optional sort key, and an optional required-result
// projection.
type Query struct {
	RecordTypes []string

	Filter *predicate.Component // nil means "no filter"
	Sort   *key.Expression       // nil means "no sort requested"

	// RequiredFields lists the result fields the caller actually needs;
	// non-empty enables the covering rewrite.
	RequiredFields []string

	// AllowDuplicates, when true, permits a plan to emit a record more than
	// once; when false (the default for most callers) the driver inserts a
	// PrimaryKeyDistinct wrapper wherever the chosen plan can create
	// duplicates.
	AllowDuplicates bool

	// AllowedIndexes, when non-empty, restricts candidate discovery to this
	// set.
	AllowedIndexes []string

	// Queryable, when non-nil, is consulted per-candidate in addition to
	// AllowedIndexes.
	Queryable func(indexName string) bool

	// RequiredIndex, when non-empty, means the caller demands this specific
	// index; if it is the only match and it is unreadable, context build
	// fails with UnreadableIndex rather than silently falling back.
	RequiredIndex string
}
