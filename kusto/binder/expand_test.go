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
	"github.com/kustoql/go-kusto-server/kusto/syntax"
	"github.com/kustoql/go-kusto-server/memory"
)

func expansionGlobals() *kusto.GlobalState {
	db := memory.NewDatabase("db",
		memory.NewTable("T", "a: long, c: string"),
		memory.NewFunction("ScalarFn", "{ 40 + 2 }"),
		memory.NewFunction("TabularFn", "{ T | project a }"),
		memory.NewFunction("AddOne", "{ x + 1 }", kusto.NewParameter("x", kusto.TypeLong)),
		memory.NewFunction("SelfRef", "{ SelfRef() }"),
		memory.NewFunction("UsesTable", "{ table('T') | count }"),
	)
	return memory.NewGlobals(memory.NewCluster("c", db))
}

func TestDatabaseFunctionExpansion(t *testing.T) {
	globals := expansionGlobals()
	root, info := bindQuery(t, globals, "print v = ScalarFn()")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{"v": kusto.TypeLong})
}

func TestTabularFunctionExpansion(t *testing.T) {
	globals := expansionGlobals()
	root, info := bindQuery(t, globals, "TabularFn() | where a > 0")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{"a": kusto.TypeLong})
}

func TestZeroArgDatabaseFunctionWithoutParens(t *testing.T) {
	globals := expansionGlobals()
	root, info := bindQuery(t, globals, "TabularFn | count")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{"Count": kusto.TypeLong})
}

func TestParameterizedExpansion(t *testing.T) {
	globals := expansionGlobals()
	root, info := bindQuery(t, globals, "print v = AddOne(41)")
	require.Empty(t, allDiagnostics(root, info))
	si := queryResult(t, root, info)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{"v": kusto.TypeLong})
}

// Expansion is memoized per call-site fingerprint within a binding.
func TestExpansionMemoization(t *testing.T) {
	globals := expansionGlobals()
	root, info := bindQuery(t, globals, "print a = ScalarFn(), b = ScalarFn()")
	require.Empty(t, allDiagnostics(root, info))

	var expansions []*Expansion
	syntax.Walk(root, func(n syntax.Node) bool {
		if si := info.Get(n); si != nil && si.Expansion != nil {
			expansions = append(expansions, si.Expansion)
		}
		return true
	})
	require.Len(t, expansions, 2)
	require.Same(t, expansions[0], expansions[1])
}

// A self-referential function terminates: the inner probe yields no
// expansion and the outer result is best-effort.
func TestCycleSafety(t *testing.T) {
	globals := expansionGlobals()
	root, _ := parse.Parse("print v = SelfRef()")
	info, err := Bind(context.Background(), root, globals)
	require.NoError(t, err)
	require.NotNil(t, info)
}

// The facts cache short-circuits repeated probes of invariant bodies.
func TestNonVariableReturnTypeCached(t *testing.T) {
	globals := expansionGlobals()
	db := globals.Database()
	fn, ok := db.Function("ScalarFn")
	require.True(t, ok)
	sig := fn.Signatures()[0]

	bindQuery(t, globals, "print v = ScalarFn()")

	facts, known := sig.BodyFacts()
	require.True(t, known)
	require.Zero(t, facts&kusto.BodyFactVariableReturn)
	cached, has := sig.NonVariableComputedReturnType()
	require.True(t, has)
	require.Equal(t, kusto.TypeSymbol(kusto.TypeLong), cached)
}

// Bodies that reference an unqualified table() are recognized.
func TestUnqualifiedTableFact(t *testing.T) {
	globals := expansionGlobals()
	root, info := bindQuery(t, globals, "UsesTable() | where Count > 0")
	require.Empty(t, allDiagnostics(root, info))

	db := globals.Database()
	fn, _ := db.Function("UsesTable")
	facts, known := fn.Signatures()[0].BodyFacts()
	require.True(t, known)
	require.NotZero(t, facts&kusto.BodyFactUnqualifiedTable)
}

func TestGetComputedReturnType(t *testing.T) {
	globals := expansionGlobals()
	db := globals.Database()

	fn, _ := db.Function("ScalarFn")
	rt := GetComputedReturnType(context.Background(), fn.Signatures()[0], globals)
	require.Equal(t, kusto.TypeSymbol(kusto.TypeLong), rt)

	tab, _ := db.Function("TabularFn")
	rt = GetComputedReturnType(context.Background(), tab.Signatures()[0], globals)
	table, ok := rt.(*kusto.TableSymbol)
	require.True(t, ok)
	_, hasA := table.Column("a")
	require.True(t, hasA)
}

func TestBindExpansionEntryPoint(t *testing.T) {
	globals := expansionGlobals()
	body, diags := parse.ParseFunctionBody("{ x * 2 }")
	require.Empty(t, diags)
	info, rt, err := BindExpansion(context.Background(), body, globals, nil, nil,
		[]kusto.Symbol{kusto.NewVariableSymbol("x", kusto.TypeLong)})
	require.NoError(t, err)
	require.NotNil(t, info)
	require.Equal(t, kusto.TypeSymbol(kusto.TypeLong), rt)
}

func TestPatternInvocation(t *testing.T) {
	db := memory.NewDatabase("db", memory.NewTable("T", "a: long"))
	globals := memory.NewGlobals(memory.NewCluster("c", db))

	pattern := kusto.NewPatternSymbol("app",
		[]*kusto.Parameter{kusto.NewParameter("name", kusto.TypeString)},
		kusto.PatternSignature{Values: []string{"prod"}, Body: "{ T | project a }"},
	)

	root, parseDiags := parse.Parse("app('prod') | count")
	require.Empty(t, parseDiags)

	// Seed the pattern by adding it directly to the binder's local
	// scope before binding.
	b := newBinder(context.Background(), globals)
	b.globalCache.Lock()
	b.locals.Add(pattern)
	b.bindRoot(root)
	b.globalCache.Unlock()

	stmt := root.Statements[0].(*syntax.ExpressionStatement)
	si := b.infoMap.Get(stmt.Expr)
	require.NotNil(t, si)
	requireColumns(t, resultTable(t, si), map[string]kusto.TypeSymbol{"Count": kusto.TypeLong})

	// A non-matching argument reports the missing case.
	root2, _ := parse.Parse("app('dev') | count")
	b2 := newBinder(context.Background(), globals)
	b2.globalCache.Lock()
	b2.locals.Add(pattern)
	b2.bindRoot(root2)
	b2.globalCache.Unlock()
	diags := allDiagnostics(root2, b2.infoMap)
	require.NotEmpty(t, diags)
	require.True(t, diags[0].Is(kusto.ErrMissingPatternMatch))
}
