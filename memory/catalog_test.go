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

package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kustoql/go-kusto-server/kusto"
)

func TestParseSchema(t *testing.T) {
	cols := ParseSchema("a: long, b: string, c: datetime")
	require.Len(t, cols, 3)
	require.Equal(t, "a", cols[0].Name())
	require.Equal(t, kusto.TypeSymbol(kusto.TypeLong), cols[0].Type())
	require.Equal(t, kusto.TypeSymbol(kusto.TypeString), cols[1].Type())
	require.Equal(t, kusto.TypeSymbol(kusto.TypeDateTime), cols[2].Type())

	require.Empty(t, ParseSchema(""))

	// Unknown types default to dynamic.
	cols = ParseSchema("x: whatever")
	require.Equal(t, kusto.TypeSymbol(kusto.TypeDynamic), cols[0].Type())
}

func TestCatalogConstruction(t *testing.T) {
	db := NewDatabase("db",
		NewTable("T", "a: long"),
		NewFunction("F", "{ T }"))
	cluster := NewCluster("c", db)
	globals := NewGlobals(cluster)

	require.Equal(t, cluster, globals.Cluster())
	require.Equal(t, db, globals.Database())

	table, ok := db.Table("t")
	require.True(t, ok)
	require.False(t, table.IsOpen())

	fn, ok := db.Function("f")
	require.True(t, ok)
	require.Equal(t, kusto.ReturnComputed, fn.Signatures()[0].ReturnKind())

	open := NewOpenTable("O", "")
	require.True(t, open.IsOpen())
}
