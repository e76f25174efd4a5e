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
)

func table(name string, cols ...*kusto.Column) *kusto.TableSymbol {
	return kusto.NewTableSymbol(name, cols...)
}

func col(name string, t kusto.TypeSymbol) *kusto.Column { return kusto.NewColumn(name, t) }

func TestUnifyByNameSameTypes(t *testing.T) {
	b := newTestBinder()
	t1 := table("T1", col("a", kusto.TypeLong), col("b", kusto.TypeString))
	t2 := table("T2", col("b", kusto.TypeString), col("c", kusto.TypeReal))
	out := b.UnifyByName([]*kusto.TableSymbol{t1, t2})
	requireColumns(t, out, map[string]kusto.TypeSymbol{
		"a": kusto.TypeLong, "b": kusto.TypeString, "c": kusto.TypeReal,
	}, "a", "b", "c")
}

func TestUnifyByNameWidensNumerics(t *testing.T) {
	b := newTestBinder()
	t1 := table("T1", col("n", kusto.TypeInt))
	t2 := table("T2", col("n", kusto.TypeReal))
	out := b.UnifyByName([]*kusto.TableSymbol{t1, t2})
	requireColumns(t, out, map[string]kusto.TypeSymbol{"n": kusto.TypeReal})
}

func TestUnifyByNameCollapsesToDynamic(t *testing.T) {
	b := newTestBinder()
	t1 := table("T1", col("v", kusto.TypeString))
	t2 := table("T2", col("v", kusto.TypeLong))
	out := b.UnifyByName([]*kusto.TableSymbol{t1, t2})
	requireColumns(t, out, map[string]kusto.TypeSymbol{"v": kusto.TypeDynamic})
}

func TestUnifyByNameIdempotent(t *testing.T) {
	b := newTestBinder()
	t1 := table("T1", col("a", kusto.TypeInt), col("b", kusto.TypeString))
	t2 := table("T2", col("a", kusto.TypeReal), col("c", kusto.TypeBool))
	once := b.UnifyByName([]*kusto.TableSymbol{t1, t2})
	twice := b.UnifyByName([]*kusto.TableSymbol{once})
	require.Equal(t, len(once.Columns()), len(twice.Columns()))
	for i, c := range once.Columns() {
		require.Equal(t, c.Name(), twice.Columns()[i].Name())
		require.Equal(t, c.Type(), twice.Columns()[i].Type())
	}
}

func TestUnifyByNameAndTypeSplitsOnConflict(t *testing.T) {
	b := newTestBinder()
	t1 := table("T1", col("v", kusto.TypeString), col("x", kusto.TypeLong))
	t2 := table("T2", col("v", kusto.TypeLong))
	out := b.UnifyByNameAndType([]*kusto.TableSymbol{t1, t2})
	requireColumns(t, out, map[string]kusto.TypeSymbol{
		"v_string": kusto.TypeString,
		"v_long":   kusto.TypeLong,
		"x":        kusto.TypeLong,
	}, "v_string", "v_long", "x")
}

func TestCommonColumnsIntersects(t *testing.T) {
	b := newTestBinder()
	t1 := table("T1", col("a", kusto.TypeLong), col("b", kusto.TypeString), col("c", kusto.TypeBool))
	t2 := table("T2", col("b", kusto.TypeString), col("c", kusto.TypeBool))
	t3 := table("T3", col("c", kusto.TypeBool), col("d", kusto.TypeReal))
	out := b.CommonColumns([]*kusto.TableSymbol{t1, t2, t3})
	requireColumns(t, out, map[string]kusto.TypeSymbol{"c": kusto.TypeBool})
}

// Unification of catalog tables of the current database is memoized in
// the global cache; other inputs are ephemeral.
func TestUnificationCaching(t *testing.T) {
	globals := testGlobals()
	b := newBinder(context.Background(), globals)
	db := globals.Database()
	users, _ := db.Table("Users")
	logins, _ := db.Table("Logins")

	first := b.UnifyByName([]*kusto.TableSymbol{users, logins})
	second := b.UnifyByName([]*kusto.TableSymbol{users, logins})
	require.Same(t, first, second)

	// Ad hoc tables bypass the cache.
	adhoc1 := table("A", col("a", kusto.TypeLong))
	adhoc2 := table("B", col("a", kusto.TypeLong))
	e1 := b.UnifyByName([]*kusto.TableSymbol{adhoc1, adhoc2})
	e2 := b.UnifyByName([]*kusto.TableSymbol{adhoc1, adhoc2})
	require.NotSame(t, e1, e2)
}

func TestUnifySingleTablePassesThrough(t *testing.T) {
	b := newTestBinder()
	t1 := table("T1", col("a", kusto.TypeLong))
	require.Same(t, t1, b.UnifyByName([]*kusto.TableSymbol{t1}))
	require.Same(t, t1, b.UnifyByNameAndType([]*kusto.TableSymbol{t1}))
	require.Same(t, t1, b.CommonColumns([]*kusto.TableSymbol{t1}))
}
