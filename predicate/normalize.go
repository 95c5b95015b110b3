//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// Filter normalization: a bottom-up rewrite pass that pushes Not to
// leaves (negation normal form), then applies a bounded AND-over-OR
// distribution and, budget permitting, a full disjunctive-normal-form
// expansion.
package predicate

// NormalizeOptions bounds the cost of normalization.
type NormalizeOptions struct {
	// MaxDisjunctionWidth bounds the OR width produced by AND-over-OR
	// distribution; distribution is skipped above this width.
	MaxDisjunctionWidth int
	// MaxDNFTerms bounds the estimated term count of a full DNF expansion;
	// above this budget the original tree is kept unchanged.
	MaxDNFTerms int
}

var DefaultNormalizeOptions = NormalizeOptions{MaxDisjunctionWidth: 16, MaxDNFTerms: 256}

// Normalize rewrites c into canonical form: Not is pushed to leaves where a
// direct complement exists, a bounded AND-over-OR distribution is applied at
// most once, and a full DNF pass is attempted only within the term budget.
func Normalize(c *Component, opts NormalizeOptions) *Component {
	c = pushNot(c)
	c = distributeAndOverOr(c, opts)
	if estimateTerms(c) <= opts.MaxDNFTerms {
		c = toDNF(c)
	}
	return c
}

// pushNot moves Not nodes toward the leaves: De Morgan across And/Or, double
// negation elimination, and leaf complementing where Comparison.Complement
// exists. A Not over a leaf with no complement (e.g. InList, TextMatch) is
// left as-is, to be evaluated as a residual.
func pushNot(c *Component) *Component {
	if c == nil {
		return nil
	}
	switch c.Kind {
	case KindAnd:
		children := make([]*Component, len(c.Children))
		for i, ch := range c.Children {
			children[i] = pushNot(ch)
		}
		return And(children...)
	case KindOr:
		children := make([]*Component, len(c.Children))
		for i, ch := range c.Children {
			children[i] = pushNot(ch)
		}
		return Or(children...)
	case KindNested:
		return Nested(c.Nest, pushNot(c.Child))
	case KindOneOfThemWithComponent:
		return OneOfThemWithComponent(c.Nest, pushNot(c.Child))
	case KindNot:
		inner := c.Child
		switch inner.Kind {
		case KindNot:
			return pushNot(inner.Child)
		case KindAnd:
			negated := make([]*Component, len(inner.Children))
			for i, ch := range inner.Children {
				negated[i] = pushNot(Not(ch))
			}
			return Or(negated...)
		case KindOr:
			negated := make([]*Component, len(inner.Children))
			for i, ch := range inner.Children {
				negated[i] = pushNot(Not(ch))
			}
			return And(negated...)
		default:
			if inner.IsLeaf() {
				if comp, ok := inner.Comparison.Complement(); ok {
					leaf := inner.Clone()
					leaf.Comparison = comp
					return leaf
				}
			}
			return Not(pushNot(inner))
		}
	default:
		return c
	}
}

// distributeAndOverOr rewrites AND(x, OR(a,b,...)) into OR(AND(x,a),
// AND(x,b),...) when x consists of single-field siblings only, applying
// the rewrite at most once and only within the configured disjunction
// width.
func distributeAndOverOr(c *Component, opts NormalizeOptions) *Component {
	if c == nil || c.Kind != KindAnd {
		return recurseChildren(c, opts)
	}

	var orChild *Component
	orIdx := -1
	others := make([]*Component, 0, len(c.Children))
	for i, ch := range c.Children {
		if ch.Kind == KindOr && orChild == nil {
			orChild = ch
			orIdx = i
			continue
		}
		others = append(others, ch)
	}
	if orChild == nil || orIdx < 0 {
		return recurseChildren(c, opts)
	}
	if len(orChild.Children) > opts.MaxDisjunctionWidth {
		return recurseChildren(c, opts)
	}
	for _, o := range others {
		if !o.IsLeaf() {
			// Only single-field siblings participate.
			return recurseChildren(c, opts)
		}
	}

	branches := make([]*Component, len(orChild.Children))
	for i, disjunct := range orChild.Children {
		branches[i] = And(append(append([]*Component{}, others...), disjunct)...)
	}
	return Or(branches...)
}

func recurseChildren(c *Component, opts NormalizeOptions) *Component {
	if c == nil {
		return nil
	}
	switch c.Kind {
	case KindAnd:
		children := make([]*Component, len(c.Children))
		for i, ch := range c.Children {
			children[i] = distributeAndOverOr(ch, opts)
		}
		return And(children...)
	case KindOr:
		children := make([]*Component, len(c.Children))
		for i, ch := range c.Children {
			children[i] = distributeAndOverOr(ch, opts)
		}
		return Or(children...)
	case KindNested:
		return Nested(c.Nest, distributeAndOverOr(c.Child, opts))
	case KindOneOfThemWithComponent:
		return OneOfThemWithComponent(c.Nest, distributeAndOverOr(c.Child, opts))
	case KindNot:
		return Not(distributeAndOverOr(c.Child, opts))
	default:
		return c
	}
}

// estimateTerms approximates the number of DNF terms toDNF would produce,
// without materializing it, so the budget check in Normalize is cheap.
func estimateTerms(c *Component) int {
	if c == nil {
		return 1
	}
	switch c.Kind {
	case KindAnd:
		n := 1
		for _, ch := range c.Children {
			n *= estimateTerms(ch)
		}
		return n
	case KindOr:
		n := 0
		for _, ch := range c.Children {
			n += estimateTerms(ch)
		}
		return n
	case KindNot, KindNested, KindOneOfThemWithComponent:
		return estimateTerms(c.Child)
	default:
		return 1
	}
}

// toDNF expands c into disjunctive normal form: an Or of Ands of leaves (or
// a single leaf/And if no Or is present). Only called once the budget check
// in Normalize passes.
func toDNF(c *Component) *Component {
	if c == nil {
		return nil
	}
	switch c.Kind {
	case KindNot:
		return c // already pushed to a leaf or left as residual by pushNot
	case KindNested:
		return Nested(c.Nest, toDNF(c.Child))
	case KindOneOfThemWithComponent:
		return OneOfThemWithComponent(c.Nest, toDNF(c.Child))
	case KindOr:
		branches := make([]*Component, 0, len(c.Children))
		for _, ch := range c.Children {
			expanded := toDNF(ch)
			if expanded.Kind == KindOr {
				branches = append(branches, expanded.Children...)
			} else {
				branches = append(branches, expanded)
			}
		}
		return Or(branches...)
	case KindAnd:
		// Cross-product the DNF of each child.
		product := []*Component{nil}
		for _, ch := range c.Children {
			expanded := toDNF(ch)
			var disjuncts []*Component
			if expanded.Kind == KindOr {
				disjuncts = expanded.Children
			} else {
				disjuncts = []*Component{expanded}
			}
			next := make([]*Component, 0, len(product)*len(disjuncts))
			for _, p := range product {
				for _, d := range disjuncts {
					if p == nil {
						next = append(next, d)
					} else {
						next = append(next, And(p, d))
					}
				}
			}
			product = next
		}
		if len(product) == 1 {
			return product[0]
		}
		return Or(product...)
	default:
		return c
	}
}
