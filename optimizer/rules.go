package optimizer

import (
	"cmp"
	"slices"

	"github.com/hupe1980/idxset/index"
	"github.com/hupe1980/idxset/plan"
	"github.com/hupe1980/idxset/predicate"
	"github.com/hupe1980/idxset/value"
)

var (
	// FlattenSetOps splices nested set operations of the same kind into their parent.
	FlattenSetOps = RuleFunc("FlattenSetOps", flattenSetOps)
	// FoldConstants rewrites ScanFilter(FALSE) to Empty. ScanFilter(TRUE)
	// stays a select-all scan.
	FoldConstants = RuleFunc("FoldConstants", foldConstants)
	// UseIndexes rewrites comparison and membership scans to index operations
	// when a capable index exists. Unions of rewritten branches become unions
	// of index operations.
	UseIndexes = RuleFunc("UseIndexes", useIndexes)
	// MergeRanges merges the range and equality operations of one Intersect
	// that share an index.
	MergeRanges = RuleFunc("MergeRanges", mergeRanges)
	// Simplify propagates Empty and removes single-child set operations.
	Simplify = RuleFunc("Simplify", simplify)
	// CollapseFilters rewrites an Intersect of one index-driven child plus
	// scans into a Filter, and otherwise folds sibling scans into one.
	CollapseFilters = RuleFunc("CollapseFilters", collapseFilters)
	// OrderBySelectivity sorts Intersect children by estimated result size.
	OrderBySelectivity = RuleFunc("OrderBySelectivity", orderBySelectivity)
)

func flattenSetOps(n plan.Node, _ *index.Registry) plan.Node {
	switch t := n.(type) {
	case plan.Intersect:
		var children []plan.Node
		for _, c := range t.Children {
			if nested, ok := c.(plan.Intersect); ok {
				children = append(children, nested.Children...)
				continue
			}
			children = append(children, c)
		}
		return plan.Intersect{Children: children}
	case plan.Union:
		var children []plan.Node
		for _, c := range t.Children {
			if nested, ok := c.(plan.Union); ok {
				children = append(children, nested.Children...)
				continue
			}
			children = append(children, c)
		}
		return plan.Union{Children: children}
	default:
		return n
	}
}

func foldConstants(n plan.Node, _ *index.Registry) plan.Node {
	switch t := n.(type) {
	case plan.ScanFilter:
		if c, ok := t.Predicate.(predicate.Constant); ok && !c.Value {
			return plan.Empty{}
		}
	case plan.Filter:
		if c, ok := t.Predicate.(predicate.Constant); ok {
			if !c.Value {
				return plan.Empty{}
			}
			return t.Child
		}
	}
	return n
}

func useIndexes(n plan.Node, reg *index.Registry) plan.Node {
	scan, ok := n.(plan.ScanFilter)
	if !ok {
		return n
	}
	if rewritten, ok := rewriteLeaf(scan.Predicate, reg); ok {
		return rewritten
	}
	return n
}

// rewriteLeaf maps one comparison or membership to an index operation.
func rewriteLeaf(p predicate.Predicate, reg *index.Registry) (plan.Node, bool) {
	switch leaf := p.(type) {
	case predicate.Comparison:
		ix, ok := reg.Get(leaf.Attr)
		if !ok {
			return nil, false
		}
		caps := ix.Capabilities()
		switch {
		case leaf.Op == predicate.OpEq && caps.Has(index.ExactLookup):
			return plan.IndexLookup{Index: ix, Value: leaf.Value}, true
		case leaf.Op.IsRange() && caps.Has(index.RangeLookup) && ix.SupportsRange(leaf.Value):
			return plan.IndexRange{Index: ix, Range: rangeFor(leaf.Op, leaf.Value)}, true
		}
	case predicate.Membership:
		ix, ok := reg.Get(leaf.Attr)
		if ok && ix.Capabilities().Has(index.MembershipLookup) {
			return plan.IndexLookup{Index: ix, Value: leaf.Value, Membership: true}, true
		}
	}
	return nil, false
}

// rangeFor returns the one-sided range of `attr op v`.
func rangeFor(op predicate.Op, v value.Value) index.Range {
	switch op {
	case predicate.OpLt:
		return index.Below(v, false)
	case predicate.OpLe:
		return index.Below(v, true)
	case predicate.OpGt:
		return index.Above(v, false)
	case predicate.OpGe:
		return index.Above(v, true)
	default:
		return index.Point(v)
	}
}

func mergeRanges(n plan.Node, _ *index.Registry) plan.Node {
	in, ok := n.(plan.Intersect)
	if !ok {
		return n
	}

	groups := make(map[index.Index][]int)
	for i, c := range in.Children {
		if ix, ok := mergeable(c); ok {
			groups[ix] = append(groups[ix], i)
		}
	}

	// The merged nodes of a group take the slot of its first member.
	slots := make(map[int][]plan.Node)
	dropped := make(map[int]bool)
	for ix, members := range groups {
		if len(members) < 2 {
			continue
		}
		merged, empty, ok := mergeGroup(ix, in.Children, members)
		if empty {
			return plan.Empty{}
		}
		if !ok {
			continue
		}
		slots[members[0]] = merged
		for _, m := range members {
			dropped[m] = true
		}
	}

	if len(slots) == 0 {
		return n
	}

	children := make([]plan.Node, 0, len(in.Children))
	for i, c := range in.Children {
		if merged, ok := slots[i]; ok {
			children = append(children, merged...)
			continue
		}
		if !dropped[i] {
			children = append(children, c)
		}
	}
	if len(children) == 1 {
		return children[0]
	}
	return plan.Intersect{Children: children}
}

// mergeable returns the index of an equality lookup or range node.
func mergeable(n plan.Node) (index.Index, bool) {
	switch t := n.(type) {
	case plan.IndexLookup:
		if t.Membership {
			return nil, false
		}
		return t.Index, true
	case plan.IndexRange:
		return t.Index, true
	default:
		return nil, false
	}
}

// mergeGroup merges the nodes at members, which all use ix. Groups without a
// range are left alone: conflicting equalities resolve at execution time.
// empty reports a static contradiction. ok is false when the group cannot be
// merged, e.g. because bounds are incomparable.
func mergeGroup(ix index.Index, children []plan.Node, members []int) (merged []plan.Node, empty, ok bool) {
	var (
		r        index.Range
		hasRange bool
		eqs      []plan.Node
	)
	for _, m := range members {
		switch t := children[m].(type) {
		case plan.IndexRange:
			if !hasRange {
				r, hasRange = t.Range, true
				continue
			}
			next, nonEmpty, err := r.Intersect(t.Range)
			if err != nil {
				return nil, false, false
			}
			if !nonEmpty {
				return nil, true, false
			}
			r = next
		case plan.IndexLookup:
			eqs = append(eqs, t)
		}
	}
	if !hasRange {
		return nil, false, false
	}

	if len(eqs) > 0 {
		for _, eq := range eqs {
			inside, err := r.Contains(eq.(plan.IndexLookup).Value)
			if err != nil {
				return nil, false, false
			}
			if !inside {
				return nil, true, false
			}
		}
		// Every equality lies within the range, which is then redundant.
		return eqs, false, true
	}

	if v, isPoint := r.IsPoint(); isPoint {
		return []plan.Node{plan.IndexLookup{Index: ix, Value: v}}, false, true
	}
	return []plan.Node{plan.IndexRange{Index: ix, Range: r}}, false, true
}

func simplify(n plan.Node, reg *index.Registry) plan.Node {
	// Collapsing a child may expose a nested set operation of the same kind.
	n = flattenSetOps(n, reg)

	switch t := n.(type) {
	case plan.Intersect:
		children := make([]plan.Node, 0, len(t.Children))
		for _, c := range t.Children {
			switch c.(type) {
			case plan.Empty:
				return plan.Empty{}
			case plan.ScanFilter:
				if isTrue(c) {
					continue
				}
			}
			children = append(children, c)
		}
		switch len(children) {
		case 0:
			return plan.ScanFilter{Predicate: predicate.True()}
		case 1:
			return children[0]
		}
		return plan.Intersect{Children: children}
	case plan.Union:
		children := make([]plan.Node, 0, len(t.Children))
		for _, c := range t.Children {
			if _, ok := c.(plan.Empty); ok {
				continue
			}
			children = append(children, c)
		}
		switch len(children) {
		case 0:
			return plan.Empty{}
		case 1:
			return children[0]
		}
		return plan.Union{Children: children}
	case plan.Filter:
		if _, ok := t.Child.(plan.Empty); ok {
			return plan.Empty{}
		}
	}
	return n
}

func isTrue(n plan.Node) bool {
	scan, ok := n.(plan.ScanFilter)
	if !ok {
		return false
	}
	c, ok := scan.Predicate.(predicate.Constant)
	return ok && c.Value
}

func collapseFilters(n plan.Node, _ *index.Registry) plan.Node {
	in, ok := n.(plan.Intersect)
	if !ok {
		return n
	}

	var (
		scans  []predicate.Predicate
		others []plan.Node
	)
	for _, c := range in.Children {
		if scan, ok := c.(plan.ScanFilter); ok {
			scans = append(scans, scan.Predicate)
			continue
		}
		others = append(others, c)
	}

	switch {
	case len(scans) == 0:
		return n
	case len(others) == 0:
		return plan.ScanFilter{Predicate: predicate.AllOf(scans...)}
	case len(others) == 1:
		return plan.Filter{Predicate: predicate.AllOf(scans...), Child: others[0]}
	default:
		return plan.Intersect{Children: append(others, plan.ScanFilter{Predicate: predicate.AllOf(scans...)})}
	}
}

func orderBySelectivity(n plan.Node, _ *index.Registry) plan.Node {
	in, ok := n.(plan.Intersect)
	if !ok {
		return n
	}

	type ranked struct {
		node     plan.Node
		estimate int
		indexed  bool
	}
	items := make([]ranked, len(in.Children))
	for i, c := range in.Children {
		est, indexed := Estimate(c)
		items[i] = ranked{node: c, estimate: est, indexed: indexed}
	}

	slices.SortStableFunc(items, func(a, b ranked) int {
		switch {
		case a.indexed && !b.indexed:
			return -1
		case !a.indexed && b.indexed:
			return 1
		case !a.indexed:
			return 0
		default:
			return cmp.Compare(a.estimate, b.estimate)
		}
	})

	children := make([]plan.Node, len(items))
	for i, it := range items {
		children[i] = it.node
	}
	return plan.Intersect{Children: children}
}

// Estimate returns the expected result size of an index-driven node.
// ok is false for nodes that need a scan of the whole collection.
func Estimate(n plan.Node) (estimate int, ok bool) {
	switch t := n.(type) {
	case plan.Empty:
		return 0, true
	case plan.IndexLookup:
		return t.Index.Estimate(t.Value), true
	case plan.IndexRange:
		return t.Index.EstimateRange(t.Range), true
	case plan.Filter:
		return Estimate(t.Child)
	case plan.Union:
		total := 0
		for _, c := range t.Children {
			est, ok := Estimate(c)
			if !ok {
				return 0, false
			}
			total += est
		}
		return total, true
	case plan.Intersect:
		best, found := 0, false
		for _, c := range t.Children {
			if est, ok := Estimate(c); ok && (!found || est < best) {
				best, found = est, true
			}
		}
		return best, found
	default:
		return 0, false
	}
}
