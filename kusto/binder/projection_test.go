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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kustoql/go-kusto-server/kusto"
)

func TestProjectionDeclare(t *testing.T) {
	p := NewProjectionBuilder()
	require.True(t, p.Declare(col("a", kusto.TypeLong), false))
	require.False(t, p.Declare(col("a", kusto.TypeString), false))
	require.Len(t, p.Columns(), 1)
	require.Equal(t, kusto.TypeSymbol(kusto.TypeLong), p.Columns()[0].Type())

	// Replace updates type and keeps position.
	require.True(t, p.Declare(col("b", kusto.TypeLong), false))
	require.True(t, p.Declare(col("a", kusto.TypeReal), true))
	require.Equal(t, "a", p.Columns()[0].Name())
	require.Equal(t, kusto.TypeSymbol(kusto.TypeReal), p.Columns()[0].Type())
}

func TestProjectionAddUniquifies(t *testing.T) {
	p := NewProjectionBuilder()
	p.Add(col("x", kusto.TypeLong), false, false)
	p.Add(col("x", kusto.TypeString), false, false)
	require.Len(t, p.Columns(), 2)
	require.Equal(t, "x", p.Columns()[0].Name())
	require.Equal(t, "x_1", p.Columns()[1].Name())
}

func TestProjectionDoNotRepeat(t *testing.T) {
	p := NewProjectionBuilder()
	c := col("x", kusto.TypeLong)
	p.Add(c, true, false)
	p.Add(c, true, false)
	require.Len(t, p.Columns(), 1)
}

func TestProjectionDoNotAdd(t *testing.T) {
	p := NewProjectionBuilder()
	c := col("x", kusto.TypeLong)
	p.DoNotAdd(c)
	p.Add(c, false, false)
	require.Empty(t, p.Columns())
}

func TestProjectionRename(t *testing.T) {
	p := NewProjectionBuilder()
	p.Add(col("old", kusto.TypeLong), false, false)
	require.True(t, p.Rename("old", "new"))
	require.False(t, p.Rename("gone", "x"))
	require.Equal(t, "new", p.Columns()[0].Name())
	require.True(t, p.HasName("new"))
	require.False(t, p.HasName("old"))
}

func TestProjectionAddReplace(t *testing.T) {
	p := NewProjectionBuilder()
	p.Add(col("x", kusto.TypeLong), false, false)
	p.Add(col("x", kusto.TypeString), false, true)
	require.Len(t, p.Columns(), 1)
	require.Equal(t, kusto.TypeSymbol(kusto.TypeString), p.Columns()[0].Type())
}
