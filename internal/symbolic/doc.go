// Package symbolic represents derivative formulas as immutable expression
// trees and keeps them in simplified form.
//
// Terms are only produced through smart constructors (Add, Sub, Neg, Mul,
// Div, Pow, Transpose, Named). Each constructor applies the algebraic
// identities of its operator to already simplified operands, so every term
// in the system is simplified by construction:
//
//	add:       0 + x = x, x + 0 = x, x + x = 2 * x
//	sub:       0 - x = -x, x - 0 = x, x - x = 0
//	neg:       -(-x) = x, -c folds into a constant
//	mul:       0 absorbs, 1 is the identity, constants fold
//	div:       x / 1 = x
//	pow:       0 ** x = 0 (x != 0), 1 ** x = 1, x ** 0 = 1, x ** 1 = x
//	transpose: no reduction
//
// Empty marks "no contribution yet". Additive operators treat it as their
// identity; every other operator keeps it. Empty has no printable form.
//
// Equality is structural, and symmetric over the two operands of every
// binary operator. Printing inserts the minimal parentheses implied by
// operator priority and associativity.
package symbolic
