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

import "strings"

// The built-in aggregate catalog. Aggregates are only visible while the
// binder is in aggregate scope (the left side of a summarize, the
// aggregates of make-series, and the like).

var BuiltInAggregates = []*FunctionSymbol{
	NewFunctionSymbol("count",
		NewSignature(TypeLong)).Aggregate().BuiltIn().
		WithResultName(ResultNamePrefixOnly, "count_"),

	NewFunctionSymbol("countif",
		NewSignature(TypeLong, NewParameter("predicate", TypeBool))).Aggregate().BuiltIn().
		WithResultName(ResultNamePrefixOnly, "countif_"),

	NewFunctionSymbol("sum",
		NewKindSignature(ReturnParameter0Promoted, sumParam("expr"))).Aggregate().BuiltIn().
		WithResultName(ResultNamePrefixAndFirstArgument, "sum"),

	NewFunctionSymbol("sumif",
		NewKindSignature(ReturnParameter0Promoted, sumParam("expr"), NewParameter("predicate", TypeBool))).
		Aggregate().BuiltIn().WithResultName(ResultNamePrefixAndFirstArgument, "sumif"),

	NewFunctionSymbol("min",
		NewKindSignature(ReturnParameter0, orderedParam("expr"))).Aggregate().BuiltIn().
		WithResultName(ResultNamePrefixAndFirstArgument, "min"),

	NewFunctionSymbol("max",
		NewKindSignature(ReturnParameter0, orderedParam("expr"))).Aggregate().BuiltIn().
		WithResultName(ResultNamePrefixAndFirstArgument, "max"),

	NewFunctionSymbol("avg",
		NewSignature(TypeReal, numParam("expr")),
		NewSignature(TypeTimespan, NewParameter("expr", TypeTimespan)),
		NewSignature(TypeDateTime, NewParameter("expr", TypeDateTime))).Aggregate().BuiltIn().
		WithResultName(ResultNamePrefixAndFirstArgument, "avg"),

	NewFunctionSymbol("dcount",
		NewSignature(TypeLong, scalarParam("expr"),
			NewKindParameter("accuracy", ParameterTypeInteger).Optional())).Aggregate().BuiltIn().
		WithResultName(ResultNamePrefixAndFirstArgument, "dcount"),

	NewFunctionSymbol("make_list",
		NewSignature(TypeDynamic, scalarParam("expr"),
			NewKindParameter("maxSize", ParameterTypeInteger).Optional())).Aggregate().BuiltIn().
		WithResultName(ResultNamePrefixAndFirstArgument, "list"),

	NewFunctionSymbol("make_set",
		NewSignature(TypeDynamic, scalarParam("expr"),
			NewKindParameter("maxSize", ParameterTypeInteger).Optional())).Aggregate().BuiltIn().
		WithResultName(ResultNamePrefixAndFirstArgument, "set"),

	NewFunctionSymbol("make_bag",
		NewSignature(TypeDynamic, NewParameter("expr", TypeDynamic),
			NewKindParameter("maxSize", ParameterTypeInteger).Optional())).Aggregate().BuiltIn().
		WithResultName(ResultNamePrefixAndFirstArgument, "bag"),

	NewFunctionSymbol("take_any",
		NewKindSignature(ReturnParameter0, scalarParam("expr"))).Aggregate().BuiltIn().
		WithResultName(ResultNameFirstArgument, ""),

	NewFunctionSymbol("any",
		NewKindSignature(ReturnParameter0, scalarParam("expr"))).Aggregate().BuiltIn().
		WithResultName(ResultNamePrefixAndFirstArgument, "any"),

	NewFunctionSymbol("arg_min",
		NewKindSignature(ReturnParameterN, orderedParam("minimized"), scalarParam("returned"))).
		Aggregate().BuiltIn().WithResultName(ResultNamePrefixAndFirstArgument, "arg_min"),

	NewFunctionSymbol("arg_max",
		NewKindSignature(ReturnParameterN, orderedParam("maximized"), scalarParam("returned"))).
		Aggregate().BuiltIn().WithResultName(ResultNamePrefixAndFirstArgument, "arg_max"),

	NewFunctionSymbol("percentile",
		NewKindSignature(ReturnParameter0, scalarParam("expr"), numParam("percentile"))).
		Aggregate().BuiltIn().WithResultName(ResultNamePrefixAndFirstArgument, "percentile"),

	NewFunctionSymbol("stdev",
		NewSignature(TypeReal, numParam("expr"))).Aggregate().BuiltIn().
		WithResultName(ResultNamePrefixAndFirstArgument, "stdev"),

	NewFunctionSymbol("variance",
		NewSignature(TypeReal, numParam("expr"))).Aggregate().BuiltIn().
		WithResultName(ResultNamePrefixAndFirstArgument, "variance"),
}

// BuiltInAggregate finds a built-in aggregate by name.
func BuiltInAggregate(name string) (*FunctionSymbol, bool) {
	for _, f := range BuiltInAggregates {
		if strings.EqualFold(f.Name(), name) {
			return f, true
		}
	}
	return nil, false
}
