// Package optimizer rewrites logical plans into physical plans.
//
// Rules run in order. Each rule is applied bottom-up over the whole tree
// before the next one starts:
//
//  1. FlattenSetOps merges nested Intersects and nested Unions.
//  2. FoldConstants turns ScanFilter(FALSE) into Empty.
//  3. UseIndexes rewrites leaves to IndexLookup and IndexRange nodes.
//  4. MergeRanges intersects range bounds on the same index.
//  5. Simplify propagates Empty and collapses single-child set operations.
//  6. CollapseFilters folds residual scans into a Filter over one index child.
//  7. OrderBySelectivity sorts Intersect children by estimated size.
//
// No rule changes the result of a query, only how it is computed.
package optimizer
