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

package binder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kustoql/go-kusto-server/kusto"
	"github.com/kustoql/go-kusto-server/kusto/parse"
	"github.com/kustoql/go-kusto-server/memory"
)

func TestProjectBuildsDeclaredSchema(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Events | project name, doubled = value * 2")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si),
		map[string]kusto.TypeSymbol{"name": kusto.TypeString, "doubled": kusto.TypeReal},
		"name", "doubled")
}

func TestProjectDuplicateDeclaration(t *testing.T) {
	globals := testGlobals()
	root, _ := parse.Parse("Events | project name, name = value")
	info, err := Bind(context.Background(), root, globals)
	require.NoError(t, err)
	diags := allDiagnostics(root, info)
	require.NotEmpty(t, diags)
	require.True(t, diags[0].Is(kusto.ErrDuplicateColumnDeclaration))
}

func TestProjectStarReEmitsRowScope(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Events | project *, extra = 1")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{
		"ts": kusto.TypeDateTime, "name": kusto.TypeString,
		"value": kusto.TypeReal, "extra": kusto.TypeLong,
	}, "ts", "name", "value", "extra")
}

func TestProjectAway(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Events | project-away ts")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si),
		map[string]kusto.TypeSymbol{"name": kusto.TypeString, "value": kusto.TypeReal})
}

func TestProjectRename(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Events | project-rename moment = ts")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{
		"moment": kusto.TypeDateTime, "name": kusto.TypeString, "value": kusto.TypeReal,
	}, "moment", "name", "value")
}

func TestProjectReorder(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Events | project-reorder value, name")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{
		"value": kusto.TypeReal, "name": kusto.TypeString, "ts": kusto.TypeDateTime,
	}, "value", "name", "ts")
}

func TestSummarizeByClause(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Events | summarize Total = sum(value), count() by name")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{
		"name": kusto.TypeString, "Total": kusto.TypeReal, "count_": kusto.TypeLong,
	}, "name", "Total", "count_")
}

func TestSummarizeAutoNames(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Events | summarize sum(value) by name")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	table := resultTable(t, si)
	_, ok := table.Column("sum_value")
	require.True(t, ok)
}

func TestDistinct(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Events | distinct name, value")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si),
		map[string]kusto.TypeSymbol{"name": kusto.TypeString, "value": kusto.TypeReal})

	root, info = bindQuery(t, globals, "Events | distinct *")
	si = queryResult(t, root, info)
	require.Len(t, resultTable(t, si).Columns(), 3)
}

func TestTakeRequiresInteger(t *testing.T) {
	globals := testGlobals()
	root, _ := parse.Parse("Events | take 'lots'")
	info, err := Bind(context.Background(), root, globals)
	require.NoError(t, err)
	diags := allDiagnostics(root, info)
	require.NotEmpty(t, diags)
	require.True(t, diags[0].Is(kusto.ErrWrongArgumentType))
}

func TestSortPreservesScope(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Events | sort by value desc, name asc")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	require.Len(t, resultTable(t, si).Columns(), 3)
}

func TestTopPreservesScope(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Events | top 5 by value desc")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	require.Len(t, resultTable(t, si).Columns(), 3)
}

func TestJoinMergesColumns(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Users | join kind=inner (Logins) on id")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	table := resultTable(t, si)
	// Both sides' columns, with the duplicate key uniquified.
	requireColumns(t, table, map[string]kusto.TypeSymbol{
		"id": kusto.TypeLong, "name": kusto.TypeString,
		"id_1": kusto.TypeLong, "when": kusto.TypeDateTime,
	}, "id", "name", "id_1", "when")
}

func TestJoinKindValidation(t *testing.T) {
	globals := testGlobals()
	root, _ := parse.Parse("Users | join kind=sideways (Logins) on id")
	info, err := Bind(context.Background(), root, globals)
	require.NoError(t, err)
	diags := allDiagnostics(root, info)
	require.NotEmpty(t, diags)
	require.True(t, diags[0].Is(kusto.ErrUnknownNamedParameter))
}

func TestJoinSemiKinds(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Users | join kind=leftsemi (Logins) on id")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si),
		map[string]kusto.TypeSymbol{"id": kusto.TypeLong, "name": kusto.TypeString})

	root, info = bindQuery(t, globals, "Users | join kind=rightsemi (Logins) on id")
	si = queryResult(t, root, info)
	requireColumns(t, resultTable(t, si),
		map[string]kusto.TypeSymbol{"id": kusto.TypeLong, "when": kusto.TypeDateTime})
}

func TestJoinDollarLeftRight(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Users | join kind=inner (Logins) on $left.id == $right.id")
	require.Empty(t, allDiagnostics(root, info))
}

func TestJoinMissingOnClause(t *testing.T) {
	globals := testGlobals()
	root, _ := parse.Parse("Users | join kind=inner (Logins)")
	info, err := Bind(context.Background(), root, globals)
	require.NoError(t, err)
	diags := allDiagnostics(root, info)
	require.NotEmpty(t, diags)
	require.True(t, diags[0].Is(kusto.ErrMissingJoinOnClause))
}

func TestLookupDropsRightKeys(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Users | lookup (Logins) on id")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{
		"id": kusto.TypeLong, "name": kusto.TypeString, "when": kusto.TypeDateTime,
	})
}

func TestUnionOuterSplitsConflicts(t *testing.T) {
	db := memory.NewDatabase("db",
		memory.NewTable("A", "x: long, v: string"),
		memory.NewTable("B", "x: long, v: long"))
	globals := memory.NewGlobals(memory.NewCluster("c", db))

	root, info := bindQuery(t, globals, "union kind=outer A, B")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{
		"x": kusto.TypeLong, "v_string": kusto.TypeString, "v_long": kusto.TypeLong,
	})
}

func TestUnionInnerCommonColumns(t *testing.T) {
	db := memory.NewDatabase("db",
		memory.NewTable("A", "x: long, only_a: string"),
		memory.NewTable("B", "x: long, only_b: real"))
	globals := memory.NewGlobals(memory.NewCluster("c", db))

	root, info := bindQuery(t, globals, "union kind=inner A, B")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{"x": kusto.TypeLong})
}

func TestUnionIncludesPipeInput(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Users | union Logins")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	table := resultTable(t, si)
	_, hasName := table.Column("name")
	_, hasWhen := table.Column("when")
	require.True(t, hasName)
	require.True(t, hasWhen)
}

func TestMvExpandTypes(t *testing.T) {
	db := memory.NewDatabase("db", memory.NewTable("D", "id: long, bag: dynamic"))
	globals := memory.NewGlobals(memory.NewCluster("c", db))

	root, info := bindQuery(t, globals, "D | mv-expand bag to typeof(long)")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si),
		map[string]kusto.TypeSymbol{"id": kusto.TypeLong, "bag": kusto.TypeLong})

	// Without a to clause the expanded column stays dynamic.
	root, info = bindQuery(t, globals, "D | mv-expand bag")
	si = queryResult(t, root, info)
	requireColumns(t, resultTable(t, si),
		map[string]kusto.TypeSymbol{"id": kusto.TypeLong, "bag": kusto.TypeDynamic})
}

func TestMvApplyBindsInnerPipeline(t *testing.T) {
	db := memory.NewDatabase("db", memory.NewTable("D", "id: long, vals: dynamic"))
	globals := memory.NewGlobals(memory.NewCluster("c", db))

	root, info := bindQuery(t, globals,
		"D | mv-apply vals to typeof(long) on (summarize Biggest = max(vals))")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{"Biggest": kusto.TypeLong})
}

func TestMakeSeriesSchema(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals,
		"Events | make-series Total = sum(value) on ts from datetime(2023-01-01) to datetime(2023-02-01) step 1d by name")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{
		"name": kusto.TypeString, "Total": kusto.TypeDynamic, "ts": kusto.TypeDynamic,
	})
}

func TestParseOperatorExtendsScope(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals,
		"Events | parse name with 'user=' user: string ' id=' id: long")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{
		"ts": kusto.TypeDateTime, "name": kusto.TypeString, "value": kusto.TypeReal,
		"user": kusto.TypeString, "id": kusto.TypeLong,
	})
}

func TestFindUnifiesByName(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "find in (Users, Logins) where id > 0")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	table := resultTable(t, si)
	_, hasSource := table.Column("source_")
	require.True(t, hasSource)
	_, hasID := table.Column("id")
	require.True(t, hasID)
}

func TestSearchOverInput(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Events | search 'needle'")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	table := resultTable(t, si)
	_, hasTable := table.Column("$table")
	require.True(t, hasTable)
	_, hasName := table.Column("name")
	require.True(t, hasName)
}

func TestForkBindsBranches(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals,
		"Events | fork a = (where value > 0) b = (summarize count() by name)")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	require.Len(t, resultTable(t, si).Columns(), 3)
}

func TestPartitionBindsSubquery(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals,
		"Events | partition by name (summarize Total = sum(value))")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{"Total": kusto.TypeReal})
}

func TestRangeSchema(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "range steps from 1 to 100 step 5")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{"steps": kusto.TypeLong})
}

func TestEvaluateBagUnpack(t *testing.T) {
	db := memory.NewDatabase("db", memory.NewTable("D", "id: long, bag: dynamic"))
	globals := memory.NewGlobals(memory.NewCluster("c", db))

	root, info := bindQuery(t, globals, "D | evaluate bag_unpack(bag) | where id > 0")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	table := resultTable(t, si)
	require.True(t, table.IsOpen())
	_, hasBag := table.Column("bag")
	require.False(t, hasBag)
	_, hasID := table.Column("id")
	require.True(t, hasID)
}

func TestInvokePassesImplicitInput(t *testing.T) {
	db := memory.NewDatabase("db",
		memory.NewTable("T", "a: long"),
		memory.NewFunction("KeepPositive", "{ src | where a > 0 }",
			kusto.NewParameter("src", kusto.NewTableSymbol("", kusto.NewColumn("a", kusto.TypeLong)))))
	globals := memory.NewGlobals(memory.NewCluster("c", db))

	root, info := bindQuery(t, globals, "T | invoke KeepPositive()")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{"a": kusto.TypeLong})
}

func TestCountGetSchemaReduceRender(t *testing.T) {
	globals := testGlobals()

	root, info := bindQuery(t, globals, "Events | count")
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{"Count": kusto.TypeLong})

	root, info = bindQuery(t, globals, "Events | getschema")
	si = queryResult(t, root, info)
	require.Len(t, resultTable(t, si).Columns(), 4)

	root, info = bindQuery(t, globals, "Events | reduce by name")
	si = queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{
		"Pattern": kusto.TypeString, "Count": kusto.TypeLong, "Representative": kusto.TypeString,
	})

	root, info = bindQuery(t, globals, "Events | render timechart")
	require.Empty(t, allDiagnostics(root, info))
	si = queryResult(t, root, info)
	require.Len(t, resultTable(t, si).Columns(), 3)
}

func TestRenderUnknownChart(t *testing.T) {
	globals := testGlobals()
	root, _ := parse.Parse("Events | render fancygraph")
	info, err := Bind(context.Background(), root, globals)
	require.NoError(t, err)
	diags := allDiagnostics(root, info)
	require.NotEmpty(t, diags)
	require.True(t, diags[0].Is(kusto.ErrUnknownNamedParameter))
}

func TestSerializePreservesAndExtends(t *testing.T) {
	globals := testGlobals()
	root, info := bindQuery(t, globals, "Events | serialize rank = row_number()")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{
		"ts": kusto.TypeDateTime, "name": kusto.TypeString,
		"value": kusto.TypeReal, "rank": kusto.TypeLong,
	})
}

func TestInStringOperatorsBind(t *testing.T) {
	globals := testGlobals()
	queries := []string{
		"Events | where name has 'x'",
		"Events | where name startswith 'a' and name endswith 'z'",
		"Events | where name matches regex 'a+'",
		"Events | where name in ('a', 'b')",
		"Events | where value between (1.0 .. 2.0)",
		"Events | where name !contains 'spam'",
	}
	for _, q := range queries {
		root, info := bindQuery(t, globals, q)
		require.Empty(t, allDiagnostics(root, info), "query %q", q)
	}
}
