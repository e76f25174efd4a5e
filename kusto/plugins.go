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

// Evaluate plug-ins. Their output schemas depend on the input row scope
// and on argument values, so they resolve through custom return
// closures.

var BuiltInPlugIns = []*FunctionSymbol{
	NewFunctionSymbol("bag_unpack",
		NewCustomSignature(bagUnpackSchema,
			NewParameter("bag", TypeDynamic).WithArgumentKind(ArgumentColumn),
			NewParameter("prefix", TypeString).WithArgumentKind(ArgumentLiteral).Optional())).
		PlugIn().BuiltIn(),

	NewFunctionSymbol("pivot",
		NewCustomSignature(pivotSchema,
			NewKindParameter("pivotColumn", ParameterTypeScalar).WithArgumentKind(ArgumentColumn),
			NewKindParameter("aggregate", ParameterTypeScalar).Optional()).Repeatable(64)).
		PlugIn().BuiltIn(),
}

// bag_unpack removes the unpacked column and opens the schema: the bag
// keys become columns only at execution time.
func bagUnpackSchema(ctx *CustomReturnContext) TypeSymbol {
	var cols []*Column
	if ctx.RowScope != nil {
		var dropped string
		if len(ctx.Args) > 0 {
			if c, ok := ctx.Args[0].Value.(*Column); ok {
				dropped = c.Name()
			}
		}
		for _, c := range ctx.RowScope.Columns() {
			if !strings.EqualFold(c.Name(), dropped) {
				cols = append(cols, c)
			}
		}
	}
	return NewOpenTableSymbol("", cols...)
}

// pivot keeps the non-pivoted input columns and opens the schema for
// the value-derived columns.
func pivotSchema(ctx *CustomReturnContext) TypeSymbol {
	var cols []*Column
	if ctx.RowScope != nil {
		var pivoted string
		if len(ctx.Args) > 0 {
			if c, ok := ctx.Args[0].Value.(*Column); ok {
				pivoted = c.Name()
			}
		}
		for _, c := range ctx.RowScope.Columns() {
			if !strings.EqualFold(c.Name(), pivoted) {
				cols = append(cols, c)
			}
		}
	}
	return NewOpenTableSymbol("", cols...)
}

// BuiltInPlugIn finds a built-in plug-in by name.
func BuiltInPlugIn(name string) (*FunctionSymbol, bool) {
	for _, f := range BuiltInPlugIns {
		if strings.EqualFold(f.Name(), name) {
			return f, true
		}
	}
	return nil, false
}
