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

package kqle

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kustoql/go-kusto-server/kusto"
	"github.com/kustoql/go-kusto-server/memory"
)

func testEngine() *Engine {
	db := memory.NewDatabase("db",
		memory.NewTable("Events", "ts: datetime, name: string, value: real"))
	return New(memory.NewGlobals(memory.NewCluster("cluster", db)))
}

func TestEngineAnalyze(t *testing.T) {
	e := testEngine()
	a, err := e.Analyze(context.Background(), "Events | where value > 0 | project name")
	require.NoError(t, err)
	require.Empty(t, a.Diagnostics)

	table, ok := a.ResultType().(*kusto.TableSymbol)
	require.True(t, ok)
	require.Len(t, table.Columns(), 1)
	require.Equal(t, "name", table.Columns()[0].Name())
}

func TestEngineAnalyzeReportsDiagnostics(t *testing.T) {
	e := testEngine()
	a, err := e.Analyze(context.Background(), "Events | where nosuch > 0")
	require.NoError(t, err)
	require.NotEmpty(t, a.Diagnostics)
}

func TestEngineRowScopeAt(t *testing.T) {
	e := testEngine()
	query := "Events | where value > 0"
	scope, err := e.RowScopeAt(context.Background(), query, strings.Index(query, "value"))
	require.NoError(t, err)
	require.NotNil(t, scope)
	require.Len(t, scope.Columns(), 3)
}

func TestEngineSymbolsAt(t *testing.T) {
	e := testEngine()
	query := "Events | where value > 0"
	syms, err := e.SymbolsAt(context.Background(), query, strings.Index(query, "value"))
	require.NoError(t, err)
	require.NotEmpty(t, syms)
}
