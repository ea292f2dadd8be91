package optimizer

import (
	"github.com/hupe1980/idxset/index"
	"github.com/hupe1980/idxset/plan"
)

// Rule rewrites a single plan node. The optimizer applies each rule bottom-up,
// so children are already rewritten when a parent is visited.
type Rule interface {
	Name() string
	Apply(n plan.Node, reg *index.Registry) plan.Node
}

type ruleFunc struct {
	name string
	fn   func(plan.Node, *index.Registry) plan.Node
}

func (r ruleFunc) Name() string { return r.name }

func (r ruleFunc) Apply(n plan.Node, reg *index.Registry) plan.Node { return r.fn(n, reg) }

// RuleFunc wraps fn as a named Rule.
func RuleFunc(name string, fn func(n plan.Node, reg *index.Registry) plan.Node) Rule {
	return ruleFunc{name: name, fn: fn}
}

// DefaultRules returns the built-in rule chain.
func DefaultRules() []Rule {
	return []Rule{
		FlattenSetOps,
		FoldConstants,
		UseIndexes,
		MergeRanges,
		Simplify,
		CollapseFilters,
		OrderBySelectivity,
	}
}

type options struct {
	rules []Rule
}

// Option configures an Optimizer.
type Option func(*options)

// WithRules replaces the default rule chain.
func WithRules(rules ...Rule) Option {
	return func(o *options) {
		o.rules = rules
	}
}

// Optimizer rewrites logical plans against an index registry.
type Optimizer struct {
	rules []Rule
}

// New creates an Optimizer.
func New(optFns ...Option) *Optimizer {
	opts := options{rules: DefaultRules()}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Optimizer{rules: opts.rules}
}

// Rules returns the rule chain in application order.
func (o *Optimizer) Rules() []Rule {
	return append([]Rule(nil), o.rules...)
}

// maxPasses bounds the rule chain repetitions of one Optimize call.
const maxPasses = 8

// Optimize applies every rule to n in order and repeats the chain until the
// plan stops changing, since one rule may expose work for an earlier one
// (a collapsed Union can leave two ranges on one index side by side).
// The input plan is not modified.
func (o *Optimizer) Optimize(n plan.Node, reg *index.Registry) plan.Node {
	rendered := n.String()
	for range maxPasses {
		for _, r := range o.rules {
			n = transform(n, func(n plan.Node) plan.Node { return r.Apply(n, reg) })
		}
		next := n.String()
		if next == rendered {
			break
		}
		rendered = next
	}
	return n
}

// Optimize rewrites n with the default rule chain.
func Optimize(n plan.Node, reg *index.Registry) plan.Node {
	return New().Optimize(n, reg)
}

// transform rebuilds n bottom-up, calling fn on every node after its children.
func transform(n plan.Node, fn func(plan.Node) plan.Node) plan.Node {
	switch t := n.(type) {
	case plan.Intersect:
		n = plan.Intersect{Children: transformAll(t.Children, fn)}
	case plan.Union:
		n = plan.Union{Children: transformAll(t.Children, fn)}
	case plan.Filter:
		n = plan.Filter{Predicate: t.Predicate, Child: transform(t.Child, fn)}
	}
	return fn(n)
}

func transformAll(children []plan.Node, fn func(plan.Node) plan.Node) []plan.Node {
	out := make([]plan.Node, len(children))
	for i, c := range children {
		out[i] = transform(c, fn)
	}
	return out
}
