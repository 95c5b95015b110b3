//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// Planner is the external entry point. It wires context build, filter
// normalization, candidate matching, and the post-processors (type
// filtering, duplicate removal, residual wrapping, the complexity guard,
// and sort resolution) into one deterministic Plan() call.
package planner

import (
	"go.uber.org/zap"

	"github.com/recordlayer/recordplan/key"
	"github.com/recordlayer/recordplan/metadata"
	"github.com/recordlayer/recordplan/plan"
	"github.com/recordlayer/recordplan/planerr"
	"github.com/recordlayer/recordplan/predicate"
)

// Planner holds the immutable inputs one call to Plan needs: the catalog,
// the store's current readability state, and the tunable configuration.
// None of these are mutated by Plan; SetConfiguration swaps the held
// value rather than editing it in place.
type Planner struct {
	metadata     *metadata.Metadata
	readability  metadata.Readability
	config       Configuration
	logger       *zap.Logger
}

// NewPlanner constructs a Planner. A nil logger is replaced with zap's
// no-op logger so callers that don't care about diagnostics never need a
// nil check.
func NewPlanner(md *metadata.Metadata, readability metadata.Readability, cfg Configuration, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{metadata: md, readability: readability, config: cfg, logger: logger}
}

func (p *Planner) GetConfiguration() Configuration     { return p.config }
func (p *Planner) SetConfiguration(cfg Configuration)  { p.config = cfg }

// Plan resolves q into a physical plan tree, or one of the errors in
// planerr.
func (p *Planner) Plan(q *Query) (plan.Operator, error) {
	ctx, err := BuildContext(p.metadata, p.readability, q)
	if err != nil {
		p.logger.Debug("context build failed", zap.Error(err))
		return nil, err
	}

	filter := q.Filter
	if filter != nil {
		filter = predicate.Normalize(filter, p.config.Normalize)
	}

	if q.Sort != nil && !q.Sort.Sortable() {
		return nil, planerr.NewInvalidExpressionError("sort", "requested sort key contains a fan=concatenate column, which has no total order")
	}
	sortCols := sortColumnsOf(q.Sort)

	sp, err := planFilterCandidates(ctx, filter, sortCols, p.config)
	if err != nil {
		return nil, err
	}

	op := sp.Plan

	op, err = sortFallback(op, sp, q.Sort, p.config)
	if err != nil {
		p.logger.Debug("sort could not be satisfied", zap.String("sort", describeSort(q.Sort)), zap.Error(err))
		return nil, err
	}

	op = applyTypeFilter(op, ctx, q)

	if nonSargables := sp.AllNonSargables(); len(nonSargables) > 0 {
		residual := predicate.And(nonSargables...)
		if p.config.DeferFetchAfterUnionAndIntersection {
			op = pushDownResidual(op, residual)
		} else {
			op = plan.NewResidualFilter(op, residual)
		}
	}

	if !q.AllowDuplicates {
		op = wrapDistinctIfNeeded(op, ctx)
	}

	if op.Complexity() > p.config.ComplexityThreshold {
		p.logger.Debug("plan rejected for complexity", zap.Int("complexity", op.Complexity()), zap.Int("threshold", p.config.ComplexityThreshold))
		return nil, planerr.NewPlanTooComplexError("plan", op.Complexity(), p.config.ComplexityThreshold)
	}

	if len(q.RequiredFields) > 0 {
		if rewritten, ok := tryOwnCoveringRewrite(op, ctx, q.RequiredFields); ok {
			op = rewritten
		}
	}

	return op, nil
}

// PlanCoveringAggregate plans q exactly as Plan does, then attempts the
// covering rewrite against the named index: if the chosen plan is (or
// wraps) a scan of it, every one of q.RequiredFields is servable from that
// index's stored columns, and every residual predicate wrapped around the
// scan reads only those columns, the record fetch is elided in favor of
// CoveringFetch. Otherwise the plan is returned unchanged; a plan built on
// another index or on a record scan is never rewritten. Plan itself already
// tries this against whichever index it picked when q.RequiredFields is
// non-empty.
func (p *Planner) PlanCoveringAggregate(q *Query, indexName string) (plan.Operator, error) {
	op, err := p.Plan(q)
	if err != nil {
		return nil, err
	}
	if _, already := op.(*plan.CoveringFetch); already {
		return op, nil
	}
	ix, ok := p.metadata.Indexes[indexName]
	if !ok {
		return nil, planerr.NewMetadataError(indexName, "unknown index")
	}
	scan := soleIndexScan(op)
	if scan == nil || scan.IndexName != indexName || !coversFields(ix, q.RequiredFields) {
		return op, nil
	}
	stored := storedFields(ix)
	for _, pred := range residualPredicatesAbove(op) {
		if !residualFieldsCovered(pred, stored) {
			return op, nil
		}
	}
	return plan.NewCoveringFetch(op, q.RequiredFields), nil
}

// tryOwnCoveringRewrite is the general covering-rewrite attempt Plan runs
// on its own result whenever the query lists required result fields,
// independent of PlanCoveringAggregate: it looks through the single-child
// wrappers Plan may have already added for the one index scan underneath,
// and rewrites to a CoveringFetch when that index's stored columns serve
// every required result field AND every field referenced by any residual
// predicate already wrapped around the scan — a predicate evaluated above
// the rewrite point needs the fetched record unless the index entry alone
// can answer it too.
func tryOwnCoveringRewrite(op plan.Operator, ctx *PlanContext, fields []string) (plan.Operator, bool) {
	scan := soleIndexScan(op)
	if scan == nil {
		return op, false
	}
	ix := indexNamed(ctx.CandidateIndexes, scan.IndexName)
	if ix == nil || !coversFields(ix, fields) {
		return op, false
	}
	stored := storedFields(ix)
	for _, pred := range residualPredicatesAbove(op) {
		if !residualFieldsCovered(pred, stored) {
			return op, false
		}
	}
	return plan.NewCoveringFetch(op, fields), true
}

// soleIndexScan looks through Plan's single-child post-processing wrappers
// for the one IndexScan underneath, or nil if the plan isn't built on
// exactly one index scan (a Union/Intersection/RecordScan can't be read
// from a single index's stored columns alone).
func soleIndexScan(op plan.Operator) *plan.IndexScan {
	switch o := op.(type) {
	case *plan.IndexScan:
		return o
	case *plan.TypeFilter:
		return soleIndexScan(o.Source)
	case *plan.ResidualFilter:
		return soleIndexScan(o.Source)
	case *plan.PrimaryKeyDistinct:
		return soleIndexScan(o.Source)
	case *plan.Sort:
		return soleIndexScan(o.Source)
	default:
		return nil
	}
}

// residualPredicatesAbove collects every ResidualFilter predicate wrapped
// around the sole index scan soleIndexScan found, walking through the same
// single-child wrappers. Evaluating any of these above the rewrite point
// is exactly what tryOwnCoveringRewrite must confirm the index entry alone
// can still do once the record fetch is elided.
func residualPredicatesAbove(op plan.Operator) []*predicate.Component {
	var out []*predicate.Component
	for {
		switch o := op.(type) {
		case *plan.TypeFilter:
			op = o.Source
		case *plan.ResidualFilter:
			out = append(out, o.Predicate)
			op = o.Source
		case *plan.PrimaryKeyDistinct:
			op = o.Source
		case *plan.Sort:
			op = o.Source
		default:
			return out
		}
	}
}

func indexNamed(indexes []*metadata.Index, name string) *metadata.Index {
	for _, ix := range indexes {
		if ix.Name == name {
			return ix
		}
	}
	return nil
}

func storedFields(ix *metadata.Index) map[string]bool {
	stored := map[string]bool{}
	for _, c := range ix.KeyExpr.Columns() {
		if c.Kind() == key.KindField {
			stored[c.FieldName()] = true
		}
	}
	return stored
}

func coversFields(ix *metadata.Index, fields []string) bool {
	if len(fields) == 0 {
		return false
	}
	stored := storedFields(ix)
	for _, f := range fields {
		if !stored[f] {
			return false
		}
	}
	return true
}

// residualFieldsCovered reports whether every field pred's leaves
// reference is among the index's stored columns. The record-type-key leaf
// is always covered — FDB index entries always carry the primary key
// trailing the index's own columns, and the record-type key leads every
// primary key here. Rank/version/raw-key-expression comparisons and
// predicates nested under a submessage field can't be checked against a
// flat stored-column set, so they are never considered covered.
func residualFieldsCovered(pred *predicate.Component, stored map[string]bool) bool {
	covered := true
	pred.Walk(func(c *predicate.Component) {
		switch c.Kind {
		case predicate.KindFieldWithComparison, predicate.KindOneOfThemWithComparison:
			if !stored[c.FieldName] {
				covered = false
			}
		case predicate.KindRecordTypeKeyComparison, predicate.KindAnd, predicate.KindOr, predicate.KindNot:
			// pure boolean structure, or a leaf always answerable from the
			// index entry's own primary key.
		default:
			covered = false
		}
	})
	return covered
}

// sortFallback implements the UnsatisfiableSort-vs-in-memory-sort
// decision: a plan whose ordering key already realizes the requested
// sort is returned unchanged; one that doesn't gets an explicit plan.Sort
// when Configuration.SortConfiguration allows it, and
// NewUnsatisfiableSortError otherwise. A nil requested sort always
// passes.
func sortFallback(op plan.Operator, sp ScoredPlan, sort *key.Expression, cfg Configuration) (plan.Operator, error) {
	if sort == nil {
		return op, nil
	}
	if sp.PlanOrderingKey != nil && sort.IsPrefixKey(sp.PlanOrderingKey) {
		// The plan's ordering key starts with exactly the requested sort's
		// columns, so its output is already ordered the way the sort
		// demands (any further columns only break ties the sort doesn't
		// care about).
		return op, nil
	}
	if cfg.SortConfiguration.AllowInMemorySort {
		return plan.NewSort(op, sort, false), nil
	}
	return nil, planerr.NewUnsatisfiableSortError(describeSort(sort))
}

func describeSort(sort *key.Expression) string {
	if sort == nil {
		return "<none>"
	}
	names := make([]string, 0, len(sort.Columns()))
	for _, c := range sort.Columns() {
		if c.Kind() == key.KindField {
			names = append(names, c.FieldName())
		} else {
			names = append(names, c.Kind().String())
		}
	}
	s := ""
	for i, n := range names {
		if i > 0 {
			s += ","
		}
		s += n
	}
	return s
}

// applyTypeFilter wraps op in a TypeFilter when its candidate index (if
// any) spans more record types than the query named.
func applyTypeFilter(op plan.Operator, ctx *PlanContext, q *Query) plan.Operator {
	if len(q.RecordTypes) == 0 {
		return op
	}
	resultTypes := op.ResultTypes()
	if len(resultTypes) <= len(q.RecordTypes) {
		return op
	}
	return plan.NewTypeFilter(op, q.RecordTypes)
}
