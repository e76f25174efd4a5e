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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarFlags(t *testing.T) {
	require.True(t, TypeInt.IsInteger())
	require.True(t, TypeLong.IsInteger())
	require.False(t, TypeReal.IsInteger())
	require.True(t, TypeDecimal.IsNumeric())
	require.True(t, TypeTimespan.IsSummable())
	require.True(t, TypeDateTime.IsSummable())
	require.False(t, TypeString.IsSummable())
	require.True(t, TypeString.IsOrderable())
	require.False(t, TypeGuid.IsOrderable())
}

func TestPromotionLattice(t *testing.T) {
	require.True(t, IsPromotable(TypeInt, TypeLong))
	require.True(t, IsPromotable(TypeDecimal, TypeReal))
	require.False(t, IsPromotable(TypeLong, TypeInt))
	require.False(t, IsPromotable(TypeInt, TypeReal))
	require.False(t, IsPromotable(TypeString, TypeDynamic))

	require.Equal(t, TypeLong, PromoteScalar(TypeInt))
	require.Equal(t, TypeReal, PromoteScalar(TypeDecimal))
	require.Equal(t, TypeLong, PromoteScalar(TypeLong))
}

func TestWidestScalarType(t *testing.T) {
	require.Equal(t, TypeLong, WidestScalarType(TypeInt, TypeLong))
	require.Equal(t, TypeReal, WidestScalarType(TypeLong, TypeReal))
	require.Equal(t, TypeReal, WidestScalarType(TypeDecimal, TypeReal))
	require.Equal(t, TypeInt, WidestScalarType(TypeInt, TypeInt))
	require.Nil(t, WidestScalarType(TypeString, TypeBool))
	require.Equal(t, TypeLong, WidestScalarType(TypeString, TypeLong))
}

func TestCommonScalarType(t *testing.T) {
	require.Equal(t, TypeSymbol(TypeLong), CommonScalarType(TypeInt, TypeLong))
	require.Equal(t, TypeSymbol(TypeLong), CommonScalarType(TypeDynamic, TypeLong))
	require.Equal(t, TypeSymbol(TypeString), CommonScalarType(TypeString, TypeString))
	require.Nil(t, CommonScalarType())
}

func TestScalarTypeByName(t *testing.T) {
	require.Equal(t, TypeLong, ScalarTypeByName("long"))
	require.Equal(t, TypeLong, ScalarTypeByName("int64"))
	require.Equal(t, TypeReal, ScalarTypeByName("double"))
	require.Equal(t, TypeDateTime, ScalarTypeByName("DateTime"))
	require.Equal(t, TypeDynamic, ScalarTypeByName("object"))
	require.Nil(t, ScalarTypeByName("frobnicate"))
}

func TestAssignability(t *testing.T) {
	// None: identity only.
	require.True(t, IsAssignable(TypeInt, TypeInt, ConversionNone))
	require.False(t, IsAssignable(TypeInt, TypeLong, ConversionNone))

	// Promotable: strictly wider targets.
	require.True(t, IsAssignable(TypeInt, TypeLong, ConversionPromotable))
	require.False(t, IsAssignable(TypeLong, TypeInt, ConversionPromotable))

	// Compatible: either direction.
	require.True(t, IsAssignable(TypeLong, TypeInt, ConversionCompatible))
	require.True(t, IsAssignable(TypeInt, TypeLong, ConversionCompatible))
	require.False(t, IsAssignable(TypeString, TypeLong, ConversionCompatible))

	// Any: everything.
	require.True(t, IsAssignable(TypeString, TypeLong, ConversionAny))

	// Dynamic absorbs scalars at every level.
	require.True(t, IsAssignable(TypeLong, TypeDynamic, ConversionNone))
	require.True(t, IsAssignable(TypeDynamic, TypeLong, ConversionNone))
}

func TestTableAssignability(t *testing.T) {
	t1 := NewTableSymbol("T1",
		NewColumn("a", TypeLong),
		NewColumn("b", TypeString),
		NewColumn("c", TypeReal))
	t2 := NewTableSymbol("T2",
		NewColumn("A", TypeLong),
		NewColumn("B", TypeString))
	t3 := NewTableSymbol("T3",
		NewColumn("a", TypeLong),
		NewColumn("missing", TypeString))

	// Every column of the target present, case-insensitively.
	require.True(t, IsTableAssignable(t1, t2, ConversionNone))
	require.False(t, IsTableAssignable(t1, t3, ConversionNone))

	// Column types follow the conversion level.
	t4 := NewTableSymbol("T4", NewColumn("a", TypeInt))
	want := NewTableSymbol("W", NewColumn("a", TypeLong))
	require.False(t, IsTableAssignable(t4, want, ConversionNone))
	require.True(t, IsTableAssignable(t4, want, ConversionPromotable))
}

func TestColumnImmutability(t *testing.T) {
	c := NewColumn("a", TypeLong)
	renamed := c.WithName("b")
	retyped := c.WithType(TypeReal)
	require.Equal(t, "a", c.Name())
	require.Equal(t, TypeSymbol(TypeLong), c.Type())
	require.Equal(t, "b", renamed.Name())
	require.Equal(t, TypeSymbol(TypeReal), retyped.Type())
	require.NotSame(t, c, renamed)
	require.Same(t, c, c.WithName("a"))
}

func TestTableMembers(t *testing.T) {
	table := NewTableSymbol("T", NewColumn("a", TypeLong), NewColumn("b", TypeString))
	col, ok := table.Column("A")
	require.True(t, ok)
	require.Equal(t, "a", col.Name())

	var out []Symbol
	table.GetMembers("", MatchColumn, &out)
	require.Len(t, out, 2)

	out = nil
	table.GetMembers("b", MatchColumn, &out)
	require.Len(t, out, 1)

	out = nil
	table.GetMembers("b", MatchTable, &out)
	require.Empty(t, out)
}

func TestOpenTablePrefixInvariant(t *testing.T) {
	table := NewOpenTableSymbol("T", NewColumn("a", TypeLong))
	extended := table.AddColumns(NewColumn("inferred", TypeDynamic))
	require.True(t, extended.IsOpen())
	require.Equal(t, "a", extended.Columns()[0].Name())
	require.Equal(t, "inferred", extended.Columns()[1].Name())
	// The original is untouched.
	require.Len(t, table.Columns(), 1)
}

func TestParameterAcceptsValue(t *testing.T) {
	p := NewParameter("kind", TypeString).WithValues(false, "inner", "outer")
	require.True(t, p.AcceptsValue("inner"))
	require.True(t, p.AcceptsValue("OUTER"))
	require.False(t, p.AcceptsValue("sideways"))

	cs := NewParameter("kind", TypeString).WithValues(true, "inner")
	require.True(t, cs.AcceptsValue("inner"))
	require.False(t, cs.AcceptsValue("Inner"))

	def := NewParameter("x", TypeString).WithValues(true, "a").WithDefaultValueIndicator("~")
	require.True(t, def.AcceptsValue("~"))
}

func TestSignatureArity(t *testing.T) {
	sig := NewSignature(TypeLong,
		NewParameter("a", TypeLong),
		NewParameter("b", TypeLong).Optional())
	require.Equal(t, 1, sig.MinArgumentCount())
	require.Equal(t, 2, sig.MaxArgumentCount())

	rep := NewSignature(TypeString, NewKindParameter("arg", ParameterTypeNotDynamic)).Repeatable(64)
	require.Equal(t, 1, rep.MinArgumentCount())
	require.Equal(t, 64, rep.MaxArgumentCount())
	require.Equal(t, rep.Parameters()[0], rep.Parameter(10))
}

func TestGroupSymbol(t *testing.T) {
	a := NewColumn("x", TypeLong)
	b := NewColumn("x", TypeString)
	g := NewGroupSymbol("x", a, b)
	require.Equal(t, KindGroup, g.Kind())
	// A group never has a usable result type.
	require.True(t, IsError(g.ResultType()))
	require.Len(t, g.Members(), 2)
}
