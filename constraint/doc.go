// Package constraint holds the compiled validation rules and the builders
// that produce them from schema keywords.
//
// A Registry maps keywords to Builders. Draft4 covers type, pattern,
// minLength and maxLength; callers add keywords with Registry.With:
//
//	reg := constraint.Draft4().With(constraint.Keyword("const", buildConst))
//
// Validation never stops at the first failure. A Constraint returns every
// violation it finds as Errors, and a nil result means the instance is
// valid.
package constraint
