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

// The built-in scalar function catalog. This is the subset of the real
// surface that the binder's rules and tests exercise; new entries slot
// in beside the existing ones.

func scalarParam(name string) *Parameter { return NewKindParameter(name, ParameterTypeScalar) }

var (
	// FnTable is the table(name) function resolved against the current
	// or path database.
	FnTable = NewFunctionSymbol("table",
		NewKindSignature(ReturnParameter0Table,
			NewParameter("name", TypeString).WithArgumentKind(ArgumentConstant))).BuiltIn()

	// FnDatabase is the database(name) function resolved against the
	// current or path cluster.
	FnDatabase = NewFunctionSymbol("database",
		NewKindSignature(ReturnParameter0Database,
			NewParameter("name", TypeString).WithArgumentKind(ArgumentConstant))).BuiltIn()

	// FnCluster is the cluster(name) function resolved against the
	// catalog.
	FnCluster = NewFunctionSymbol("cluster",
		NewKindSignature(ReturnParameter0Cluster,
			NewParameter("name", TypeString).WithArgumentKind(ArgumentConstant))).BuiltIn()
)

// BuiltInFunctions is the global scalar function catalog.
var BuiltInFunctions = []*FunctionSymbol{
	FnTable,
	FnDatabase,
	FnCluster,

	NewFunctionSymbol("strcat",
		NewSignature(TypeString, NewKindParameter("arg", ParameterTypeNotDynamic)).Repeatable(64)).
		ConstantFoldable().BuiltIn().WithResultName(ResultNamePrefixOnly, "strcat"),

	NewFunctionSymbol("strlen",
		NewSignature(TypeLong, strParam("source"))).ConstantFoldable().BuiltIn(),

	NewFunctionSymbol("substring",
		NewSignature(TypeString, strParam("source"), NewKindParameter("start", ParameterTypeInteger),
			NewKindParameter("length", ParameterTypeInteger).Optional())).ConstantFoldable().BuiltIn(),

	NewFunctionSymbol("split",
		NewSignature(TypeDynamic, strParam("source"), NewParameter("delimiter", TypeString),
			NewKindParameter("index", ParameterTypeInteger).Optional())).ConstantFoldable().BuiltIn(),

	NewFunctionSymbol("tolower", NewSignature(TypeString, strParam("source"))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("toupper", NewSignature(TypeString, strParam("source"))).ConstantFoldable().BuiltIn(),

	NewFunctionSymbol("tostring", NewSignature(TypeString, scalarParam("value"))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("toint", NewSignature(TypeInt, scalarParam("value"))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("tolong", NewSignature(TypeLong, scalarParam("value"))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("todouble", NewSignature(TypeReal, scalarParam("value"))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("toreal", NewSignature(TypeReal, scalarParam("value"))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("todecimal", NewSignature(TypeDecimal, scalarParam("value"))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("tobool", NewSignature(TypeBool, scalarParam("value"))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("todatetime", NewSignature(TypeDateTime, scalarParam("value"))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("totimespan", NewSignature(TypeTimespan, scalarParam("value"))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("toguid", NewSignature(TypeGuid, scalarParam("value"))).ConstantFoldable().BuiltIn(),

	NewFunctionSymbol("iff",
		NewKindSignature(ReturnCommon, NewParameter("predicate", TypeBool),
			commonParam("ifTrue"), commonParam("ifFalse"))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("iif",
		NewKindSignature(ReturnCommon, NewParameter("predicate", TypeBool),
			commonParam("ifTrue"), commonParam("ifFalse"))).ConstantFoldable().BuiltIn(),

	NewFunctionSymbol("coalesce",
		NewKindSignature(ReturnCommon, commonParam("arg")).Repeatable(64)).ConstantFoldable().BuiltIn(),

	NewFunctionSymbol("min_of",
		NewKindSignature(ReturnCommon, orderedParam("arg")).Repeatable(64)).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("max_of",
		NewKindSignature(ReturnCommon, orderedParam("arg")).Repeatable(64)).ConstantFoldable().BuiltIn(),

	NewFunctionSymbol("bin",
		NewKindSignature(ReturnParameter0, sumParam("value"), sumParam("roundTo"))).
		ConstantFoldable().BuiltIn().WithResultName(ResultNamePrefixAndFirstArgument, "bin"),
	NewFunctionSymbol("floor",
		NewKindSignature(ReturnParameter0, sumParam("value"), sumParam("roundTo"))).
		ConstantFoldable().BuiltIn().WithResultName(ResultNamePrefixAndFirstArgument, "floor"),

	NewFunctionSymbol("abs",
		NewKindSignature(ReturnParameter0, numParam("value")),
		NewSignature(TypeTimespan, NewParameter("value", TypeTimespan))).ConstantFoldable().BuiltIn(),

	NewFunctionSymbol("round",
		NewKindSignature(ReturnParameter0, numParam("value"),
			NewKindParameter("precision", ParameterTypeInteger).Optional())).ConstantFoldable().BuiltIn(),

	NewFunctionSymbol("ago",
		NewSignature(TypeDateTime, NewParameter("interval", TypeTimespan))).BuiltIn(),
	NewFunctionSymbol("now",
		NewSignature(TypeDateTime, NewParameter("offset", TypeTimespan).Optional())).BuiltIn(),

	NewFunctionSymbol("format_datetime",
		NewSignature(TypeString, NewParameter("date", TypeDateTime),
			NewParameter("format", TypeString).WithArgumentKind(ArgumentLiteralNotEmpty))).ConstantFoldable().BuiltIn(),

	NewFunctionSymbol("parse_json",
		NewSignature(TypeDynamic, strParam("source"))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("array_length",
		NewSignature(TypeLong, NewParameter("array", TypeDynamic))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("bag_keys",
		NewSignature(TypeDynamic, NewParameter("bag", TypeDynamic))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("pack",
		NewSignature(TypeDynamic, scalarParam("pair")).Repeatable(128)).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("bag_pack",
		NewSignature(TypeDynamic, scalarParam("pair")).Repeatable(128)).ConstantFoldable().BuiltIn(),

	NewFunctionSymbol("isnull", NewSignature(TypeBool, scalarParam("value"))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("isnotnull", NewSignature(TypeBool, scalarParam("value"))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("isempty", NewSignature(TypeBool, strParam("value"))).ConstantFoldable().BuiltIn(),
	NewFunctionSymbol("isnotempty", NewSignature(TypeBool, strParam("value"))).ConstantFoldable().BuiltIn(),

	NewFunctionSymbol("estimate_data_size",
		NewSignature(TypeLong, NewKindParameter("column", ParameterTypeScalar).
			WithArgumentKind(ArgumentColumn)).Repeatable(64),
		NewSignature(TypeLong, NewKindParameter("star", ParameterTypeScalar).
			WithArgumentKind(ArgumentStar))).BuiltIn(),

	NewFunctionSymbol("row_number",
		NewSignature(TypeLong, NewKindParameter("startingIndex", ParameterTypeInteger).Optional(),
			NewParameter("restart", TypeBool).Optional())).BuiltIn(),

	NewFunctionSymbol("materialize",
		NewKindSignature(ReturnParameter0, NewKindParameter("expression", ParameterTypeTabular))).BuiltIn(),
}

// BuiltInFunction finds a built-in scalar function by name.
func BuiltInFunction(name string) (*FunctionSymbol, bool) {
	for _, f := range BuiltInFunctions {
		if strings.EqualFold(f.Name(), name) {
			return f, true
		}
	}
	return nil, false
}
