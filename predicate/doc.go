// Package predicate defines the boolean query AST and its reference
// evaluator.
//
// # Node Types
//
//	Comparison{Attr, Op, Value}   a = 1, a < 2, a >= 3
//	Membership{Value, Attr}       2 IN a   (a is collection-valued)
//	InSet{Attr, Values}           a IN (1, 2, 3)
//	And{Left, Right}
//	Or{Left, Right}
//	Constant{Value}               TRUE / FALSE
//
// Nodes are immutable values and never reference an index.
//
// # Fluent Builder
//
//	p := predicate.AnyOf(
//	    predicate.Attr("x").Eq(1).And(predicate.Attr("y").In(1, 2)),
//	    predicate.Attr("x").Eq(2),
//	)
//
// # Evaluation
//
// Evaluator is the ground truth every index-accelerated path must
// reproduce. Type-incomparable comparisons yield a *ComparisonError; in the
// default lenient mode the offending leaf simply evaluates to false.
package predicate
