// Copyright 2023 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kusto

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrNameNotDefined is reported when a name cannot be resolved in
	// any active scope. The second argument carries a "maybe you mean"
	// suffix, possibly empty.
	ErrNameNotDefined = errors.NewKind("'%s' is not defined%s")

	// ErrNameNotDefinedInAggregateContext is the variant used when the
	// name was looked up where only aggregate functions are visible.
	ErrNameNotDefinedInAggregateContext = errors.NewKind("'%s' is not a recognized aggregate function")

	// ErrNameNotDefinedInPlugInContext is the variant used when the
	// name was looked up where only plug-in functions are visible.
	ErrNameNotDefinedInPlugInContext = errors.NewKind("'%s' is not a recognized plug-in function")

	// ErrAmbiguousName is reported when a name resolves to more than
	// one symbol.
	ErrAmbiguousName = errors.NewKind("the name '%s' refers to more than one item")

	// ErrWrongNumberOfArguments is reported after arity checking fails.
	ErrWrongNumberOfArguments = errors.NewKind("'%s' expects between %d and %d arguments, got %d")

	// ErrWrongArgumentType is reported when an argument's type does not
	// satisfy its parameter.
	ErrWrongArgumentType = errors.NewKind("argument %d of '%s' has type '%s', expected %s")

	// ErrLiteralRequired is reported for Literal argument kinds.
	ErrLiteralRequired = errors.NewKind("argument %d of '%s' must be a literal")

	// ErrLiteralNotEmptyRequired is reported for LiteralNotEmpty
	// argument kinds.
	ErrLiteralNotEmptyRequired = errors.NewKind("argument %d of '%s' must be a non-empty literal")

	// ErrConstantRequired is reported for Constant argument kinds.
	ErrConstantRequired = errors.NewKind("argument %d of '%s' must be a constant")

	// ErrColumnRequired is reported for Column argument kinds.
	ErrColumnRequired = errors.NewKind("argument %d of '%s' must be a column reference")

	// ErrValueNotAllowed is reported when a literal argument is outside
	// the parameter's enumerated accepted values.
	ErrValueNotAllowed = errors.NewKind("the value '%v' is not allowed for argument %d of '%s', expected one of: %s")

	// ErrNotAFunction is reported when a non-function is invoked.
	ErrNotAFunction = errors.NewKind("'%s' is not a function")

	// ErrFunctionRequiresArgumentList is reported when a function that
	// takes arguments is referenced without parentheses.
	ErrFunctionRequiresArgumentList = errors.NewKind("the function '%s' requires an argument list")

	// ErrAggregateNotAllowed is reported when an aggregate is used
	// outside an aggregation context.
	ErrAggregateNotAllowed = errors.NewKind("the aggregate function '%s' is not allowed in this context")

	// ErrAmbiguousSignature is reported when overload resolution ties.
	ErrAmbiguousSignature = errors.NewKind("the call to '%s' is ambiguous")

	// ErrDuplicateColumnDeclaration is reported when a projection
	// declares the same column twice.
	ErrDuplicateColumnDeclaration = errors.NewKind("the column '%s' is already declared")

	// ErrRenameColumnNotFound is reported by project-rename when the
	// source column does not exist.
	ErrRenameColumnNotFound = errors.NewKind("cannot rename '%s': no such column")

	// ErrMissingPatternMatch is reported when no pattern case matches
	// the invocation's literal arguments.
	ErrMissingPatternMatch = errors.NewKind("no declaration of pattern '%s' matches the arguments")

	// ErrInvalidTypeExpression is reported for malformed typeof forms.
	ErrInvalidTypeExpression = errors.NewKind("'%s' is not a well-formed type expression")

	// ErrStarNotAllowed is reported when * appears where it is not
	// accepted.
	ErrStarNotAllowed = errors.NewKind("a star expression is not allowed in this context")

	// ErrStarMustBeLast is reported when * is followed by further
	// arguments.
	ErrStarMustBeLast = errors.NewKind("a star expression must be the last argument")

	// ErrCompoundNamedArgument is reported for named arguments whose
	// name side is not a simple name.
	ErrCompoundNamedArgument = errors.NewKind("compound named arguments are not supported")

	// ErrUnknownNamedArgument is reported when an argument names a
	// parameter the signature does not have.
	ErrUnknownNamedArgument = errors.NewKind("'%s' has no parameter named '%s'")

	// ErrDuplicateNamedArgument is reported when two arguments name the
	// same parameter.
	ErrDuplicateNamedArgument = errors.NewKind("the parameter '%s' is already given")

	// ErrUnnamedArgumentAfterOutOfOrderNamed is reported when a
	// positional argument follows an out-of-order named one.
	ErrUnnamedArgumentAfterOutOfOrderNamed = errors.NewKind("unnamed arguments may not follow out-of-order named arguments")

	// ErrNamedArgumentsNotSupported is reported when a built-in is
	// called with named arguments.
	ErrNamedArgumentsNotSupported = errors.NewKind("'%s' does not support named arguments")

	// ErrMissingParameter is reported for a required parameter with no
	// argument.
	ErrMissingParameter = errors.NewKind("the required parameter '%s' of '%s' is missing")

	// ErrMissingJoinOnClause is reported for join/lookup without an on
	// clause when one is required.
	ErrMissingJoinOnClause = errors.NewKind("the join requires an 'on' clause")

	// ErrMissingNamedParameter is reported for operators whose named
	// parameter list lacks a required entry.
	ErrMissingNamedParameter = errors.NewKind("the named parameter '%s' is required")

	// ErrUnknownNamedParameter is reported for unrecognized operator
	// parameters such as join kinds.
	ErrUnknownNamedParameter = errors.NewKind("the value '%s' is not valid for parameter '%s', expected one of: %s")

	// ErrBooleanExpected is reported when a predicate is not boolean.
	ErrBooleanExpected = errors.NewKind("the expression must have the type bool, not '%s'")

	// ErrScalarExpected is reported where a scalar value is required.
	ErrScalarExpected = errors.NewKind("the expression must be a scalar value")

	// ErrTabularExpected is reported where a tabular value is required.
	ErrTabularExpected = errors.NewKind("the expression must be a tabular value")

	// ErrColumnExpectsType is reported when a value cannot be assigned
	// to a declared column type.
	ErrColumnExpectsType = errors.NewKind("the expression of type '%s' cannot be assigned to the column '%s' of type '%s'")

	// ErrTableNotDefined is reported by table() over a closed database.
	ErrTableNotDefined = errors.NewKind("the table '%s' is not defined%s")

	// ErrDatabaseNotDefined is reported by database() over a closed
	// cluster.
	ErrDatabaseNotDefined = errors.NewKind("the database '%s' is not defined%s")

	// ErrClusterNotDefined formats an unknown-cluster message. cluster()
	// does not report it: unknown names resolve to an open cluster.
	ErrClusterNotDefined = errors.NewKind("the cluster '%s' is not defined")

	// ErrLeftRightOnlyInJoin is reported when $left/$right appear
	// outside a join on-clause.
	ErrLeftRightOnlyInJoin = errors.NewKind("'%s' is only allowed inside a join condition")

	// ErrPathNotExpected is reported when a dotted selector is applied
	// to a value that has no members.
	ErrPathNotExpected = errors.NewKind("a member selection cannot be applied to a value of type '%s'")

	// ErrDataTableValueCount is reported when a datatable's value list
	// does not fill whole rows.
	ErrDataTableValueCount = errors.NewKind("the datatable value list must be a multiple of %d values")

	// ErrSyntax carries parse errors surfaced as diagnostics.
	ErrSyntax = errors.NewKind("syntax error: %s")
)
