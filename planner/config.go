//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// Package planner implements the driver, matcher, combiner, and
// post-processors that turn a query against a record-type catalog into a
// physical plan: context build, filter normalization, IN extraction, the
// per-candidate AndWithThen matcher, selection/combination, and
// post-processing.
package planner

import "github.com/recordlayer/recordplan/predicate"

// IndexScanPreference is the tie-break policy between a no-index scan and a
// single-index plan.
type IndexScanPreference int

const (
	PreferIndex IndexScanPreference = iota
	PreferScan
	PreferPKIndex
)

// Configuration holds every recognized planner option. It is passed by
// value into NewPlanner and never mutated in place — there is no
// process-wide mutable singleton.
type Configuration struct {
	IndexScanPreference IndexScanPreference
	ComplexityThreshold int

	AttemptFailedInJoinAsOr        bool
	AttemptFailedInJoinAsUnion     bool
	AttemptFailedInJoinAsUnionMaxSize int

	DeferFetchAfterUnionAndIntersection bool
	OptimizeForIndexFilters            bool
	PlanOtherAttemptWholeFilter        bool
	UseFullKeyForValueIndex            bool

	// TextIndexScore is the score a matched text index contributes, tunable
	// so a deployment can weight a text match against an ordinary
	// equality-index match however it sees fit.
	TextIndexScore int

	// SortConfiguration, when AllowInMemorySort is true, permits the driver
	// to emit an explicit plan.Sort instead of raising UnsatisfiableSort.
	SortConfiguration SortConfiguration

	Normalize predicate.NormalizeOptions
}

type SortConfiguration struct {
	AllowInMemorySort bool
}

// DefaultComplexityThreshold is the out-of-the-box plan complexity cap.
const DefaultComplexityThreshold = 3000

// DefaultConfiguration returns the out-of-the-box planner behavior.
func DefaultConfiguration() Configuration {
	return Configuration{
		IndexScanPreference:               PreferIndex,
		ComplexityThreshold:               DefaultComplexityThreshold,
		AttemptFailedInJoinAsOr:           false,
		AttemptFailedInJoinAsUnion:        true,
		AttemptFailedInJoinAsUnionMaxSize: 100,
		DeferFetchAfterUnionAndIntersection: true,
		OptimizeForIndexFilters:            true,
		PlanOtherAttemptWholeFilter:        true,
		UseFullKeyForValueIndex:            false,
		TextIndexScore:                     10,
		SortConfiguration:                  SortConfiguration{AllowInMemorySort: false},
		Normalize:                          predicate.DefaultNormalizeOptions,
	}
}
