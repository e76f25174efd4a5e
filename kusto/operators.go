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

// The built-in operator table. Operators resolve through the same
// signature matching as function calls; each entry is a signature set.

func numParam(name string) *Parameter  { return NewKindParameter(name, ParameterTypeNumber) }
func sumParam(name string) *Parameter  { return NewKindParameter(name, ParameterTypeSummable) }
func strParam(name string) *Parameter  { return NewKindParameter(name, ParameterTypeStringOrDynamic) }
func commonParam(name string) *Parameter {
	return NewKindParameter(name, ParameterTypeCommonScalarOrDynamic)
}
func orderedParam(name string) *Parameter {
	return NewKindParameter(name, ParameterTypeCommonScalar)
}

func arithmeticOperator(kind OperatorKind, name string, extra ...*Signature) *OperatorSymbol {
	sigs := append(extra,
		NewKindSignature(ReturnWidest, sumParam("left"), sumParam("right")))
	return NewOperatorSymbol(kind, name, sigs...)
}

func comparisonOperator(kind OperatorKind, name string) *OperatorSymbol {
	return NewOperatorSymbol(kind, name,
		NewSignature(TypeBool, orderedParam("left"), orderedParam("right")))
}

func stringOperator(kind OperatorKind, name string) *OperatorSymbol {
	return NewOperatorSymbol(kind, name,
		NewSignature(TypeBool, strParam("left"), strParam("right")))
}

var inOperatorMax = 256

func setOperator(kind OperatorKind, name string) *OperatorSymbol {
	return NewOperatorSymbol(kind, name,
		NewSignature(TypeBool, commonParam("value"), commonParam("set")).Repeatable(inOperatorMax),
		NewSignature(TypeBool,
			NewKindParameter("value", ParameterTypeScalar),
			NewKindParameter("set", ParameterTypeSingleColumnTable)))
}

// Operators maps every operator kind to its symbol.
var Operators = map[OperatorKind]*OperatorSymbol{
	OpAdd: arithmeticOperator(OpAdd, "+",
		NewSignature(TypeDateTime, NewParameter("left", TypeDateTime), NewParameter("right", TypeTimespan)),
		NewSignature(TypeDateTime, NewParameter("left", TypeTimespan), NewParameter("right", TypeDateTime)),
		NewSignature(TypeTimespan, NewParameter("left", TypeTimespan), NewParameter("right", TypeTimespan))),
	OpSubtract: arithmeticOperator(OpSubtract, "-",
		NewSignature(TypeDateTime, NewParameter("left", TypeDateTime), NewParameter("right", TypeTimespan)),
		NewSignature(TypeTimespan, NewParameter("left", TypeDateTime), NewParameter("right", TypeDateTime)),
		NewSignature(TypeTimespan, NewParameter("left", TypeTimespan), NewParameter("right", TypeTimespan))),
	OpMultiply: NewOperatorSymbol(OpMultiply, "*",
		NewSignature(TypeTimespan, numParam("left"), NewParameter("right", TypeTimespan)),
		NewSignature(TypeTimespan, NewParameter("left", TypeTimespan), numParam("right")),
		NewKindSignature(ReturnWidest, numParam("left"), numParam("right"))),
	OpDivide: NewOperatorSymbol(OpDivide, "/",
		NewSignature(TypeReal, NewParameter("left", TypeTimespan), NewParameter("right", TypeTimespan)),
		NewSignature(TypeTimespan, NewParameter("left", TypeTimespan), numParam("right")),
		NewKindSignature(ReturnWidest, numParam("left"), numParam("right"))),
	OpModulo: NewOperatorSymbol(OpModulo, "%",
		NewKindSignature(ReturnWidest, numParam("left"), numParam("right"))),
	OpUnaryMinus: NewOperatorSymbol(OpUnaryMinus, "-",
		NewSignature(TypeTimespan, NewParameter("operand", TypeTimespan)),
		NewKindSignature(ReturnParameter0, numParam("operand"))),
	OpUnaryPlus: NewOperatorSymbol(OpUnaryPlus, "+",
		NewSignature(TypeTimespan, NewParameter("operand", TypeTimespan)),
		NewKindSignature(ReturnParameter0, numParam("operand"))),

	OpEqual:              NewOperatorSymbol(OpEqual, "==", NewSignature(TypeBool, commonParam("left"), commonParam("right"))),
	OpNotEqual:           NewOperatorSymbol(OpNotEqual, "!=", NewSignature(TypeBool, commonParam("left"), commonParam("right"))),
	OpLessThan:           comparisonOperator(OpLessThan, "<"),
	OpLessThanOrEqual:    comparisonOperator(OpLessThanOrEqual, "<="),
	OpGreaterThan:        comparisonOperator(OpGreaterThan, ">"),
	OpGreaterThanOrEqual: comparisonOperator(OpGreaterThanOrEqual, ">="),

	OpEqualTilde: NewOperatorSymbol(OpEqualTilde, "=~", NewSignature(TypeBool, commonParam("left"), commonParam("right"))),
	OpBangTilde:  NewOperatorSymbol(OpBangTilde, "!~", NewSignature(TypeBool, commonParam("left"), commonParam("right"))),
	OpMatchRegex: stringOperator(OpMatchRegex, "matches regex"),

	OpContains:        stringOperator(OpContains, "contains"),
	OpNotContains:     stringOperator(OpNotContains, "!contains"),
	OpContainsCs:      stringOperator(OpContainsCs, "contains_cs"),
	OpNotContainsCs:   stringOperator(OpNotContainsCs, "!contains_cs"),
	OpStartsWith:      stringOperator(OpStartsWith, "startswith"),
	OpNotStartsWith:   stringOperator(OpNotStartsWith, "!startswith"),
	OpStartsWithCs:    stringOperator(OpStartsWithCs, "startswith_cs"),
	OpNotStartsWithCs: stringOperator(OpNotStartsWithCs, "!startswith_cs"),
	OpEndsWith:        stringOperator(OpEndsWith, "endswith"),
	OpNotEndsWith:     stringOperator(OpNotEndsWith, "!endswith"),
	OpEndsWithCs:      stringOperator(OpEndsWithCs, "endswith_cs"),
	OpNotEndsWithCs:   stringOperator(OpNotEndsWithCs, "!endswith_cs"),
	OpHas:             stringOperator(OpHas, "has"),
	OpNotHas:          stringOperator(OpNotHas, "!has"),
	OpHasCs:           stringOperator(OpHasCs, "has_cs"),
	OpNotHasCs:        stringOperator(OpNotHasCs, "!has_cs"),
	OpHasPrefix:       stringOperator(OpHasPrefix, "hasprefix"),
	OpNotHasPrefix:    stringOperator(OpNotHasPrefix, "!hasprefix"),
	OpHasPrefixCs:     stringOperator(OpHasPrefixCs, "hasprefix_cs"),
	OpNotHasPrefixCs:  stringOperator(OpNotHasPrefixCs, "!hasprefix_cs"),
	OpHasSuffix:       stringOperator(OpHasSuffix, "hassuffix"),
	OpNotHasSuffix:    stringOperator(OpNotHasSuffix, "!hassuffix"),
	OpHasSuffixCs:     stringOperator(OpHasSuffixCs, "hassuffix_cs"),
	OpNotHasSuffixCs:  stringOperator(OpNotHasSuffixCs, "!hassuffix_cs"),
	OpLike:            stringOperator(OpLike, "like"),
	OpNotLike:         stringOperator(OpNotLike, "!like"),
	OpLikeCs:          stringOperator(OpLikeCs, "like_cs"),
	OpNotLikeCs:       stringOperator(OpNotLikeCs, "!like_cs"),

	OpIn:     setOperator(OpIn, "in"),
	OpNotIn:  setOperator(OpNotIn, "!in"),
	OpInCs:   setOperator(OpInCs, "in~"),
	OpNotInCs: setOperator(OpNotInCs, "!in~"),
	OpBetween: NewOperatorSymbol(OpBetween, "between",
		NewSignature(TypeBool, orderedParam("value"), orderedParam("low"), orderedParam("high"))),
	OpNotBetween: NewOperatorSymbol(OpNotBetween, "!between",
		NewSignature(TypeBool, orderedParam("value"), orderedParam("low"), orderedParam("high"))),
	OpHasAny: NewOperatorSymbol(OpHasAny, "has_any",
		NewSignature(TypeBool, strParam("source"), NewKindParameter("values", ParameterTypeScalar)).Repeatable(inOperatorMax)),

	OpAnd: NewOperatorSymbol(OpAnd, "and", NewSignature(TypeBool, NewParameter("left", TypeBool), NewParameter("right", TypeBool))),
	OpOr:  NewOperatorSymbol(OpOr, "or", NewSignature(TypeBool, NewParameter("left", TypeBool), NewParameter("right", TypeBool))),

	OpSearch: stringOperator(OpSearch, "search"),
}

// Operator returns the operator symbol for a kind.
func Operator(kind OperatorKind) *OperatorSymbol { return Operators[kind] }
