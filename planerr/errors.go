//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// Package planerr implements the planner's error taxonomy: one concrete
// error type carrying a Kind code, the offending object's name, a message,
// and an optional cause, with one constructor per kind rather than a
// hierarchy of error types.
package planerr

import "fmt"

// Kind enumerates the categories of planning failure.
type Kind string

const (
	NoIndexForSort    Kind = "NO_INDEX_FOR_SORT"
	UnsatisfiableSort Kind = "UNSATISFIABLE_SORT"
	PlanTooComplex    Kind = "PLAN_TOO_COMPLEX"
	MetadataError     Kind = "METADATA_ERROR"
	InvalidExpression Kind = "INVALID_EXPRESSION"
	UnexpectedState   Kind = "UNKNOWN"
)

// PlanError is the single concrete error type the planner ever returns.
// Object names the offending sort/predicate/index for diagnostics.
type PlanError struct {
	Kind   Kind
	Object string
	Msg    string
	Cause  error
}

func (e *PlanError) Error() string {
	if e.Object != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s (%s): %v", e.Kind, e.Msg, e.Object, e.Cause)
		}
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Msg, e.Object)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *PlanError) Unwrap() error { return e.Cause }

func NewMetadataError(object, msg string) *PlanError {
	return &PlanError{Kind: MetadataError, Object: object, Msg: msg}
}

func NewUnreadableIndexError(index string) *PlanError {
	return &PlanError{Kind: MetadataError, Object: index, Msg: "index is not readable on this store"}
}

func NewUnsatisfiableSortError(sort string) *PlanError {
	return &PlanError{Kind: UnsatisfiableSort, Object: sort, Msg: "no candidate index can realize the requested sort"}
}

func NewNoIndexForSortError(sort string) *PlanError {
	return &PlanError{Kind: NoIndexForSort, Object: sort, Msg: "no index matches the requested sort"}
}

func NewPlanTooComplexError(object string, complexity, threshold int) *PlanError {
	return &PlanError{
		Kind:   PlanTooComplex,
		Object: object,
		Msg:    fmt.Sprintf("plan complexity %d exceeds threshold %d", complexity, threshold),
	}
}

func NewInvalidExpressionError(object, msg string) *PlanError {
	return &PlanError{Kind: InvalidExpression, Object: object, Msg: msg}
}

func NewUnexpectedStateError(msg string, cause error) *PlanError {
	return &PlanError{Kind: UnexpectedState, Msg: msg, Cause: cause}
}

// IsKind reports whether err is a *PlanError of the given kind.
func IsKind(err error, k Kind) bool {
	pe, ok := err.(*PlanError)
	return ok && pe.Kind == k
}
