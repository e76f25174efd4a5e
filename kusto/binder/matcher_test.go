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
	"github.com/kustoql/go-kusto-server/kusto/syntax"
)

func newTestBinder() *Binder {
	return newBinder(context.Background(), testGlobals())
}

func litArg(t *kusto.ScalarType, v interface{}) callArgument {
	lit := &syntax.Literal{Type: t, Value: v}
	return callArgument{
		expr: lit,
		info: &SemanticInfo{ResultType: t, Constant: true, ConstantValue: v},
	}
}

func typedArg(t kusto.TypeSymbol) callArgument {
	return callArgument{
		expr: &syntax.Literal{},
		info: &SemanticInfo{ResultType: t},
	}
}

func TestBestMatchExactBeatsPromoted(t *testing.T) {
	b := newTestBinder()
	intSig := kusto.NewSignature(kusto.TypeInt, kusto.NewParameter("x", kusto.TypeInt))
	longSig := kusto.NewSignature(kusto.TypeLong, kusto.NewParameter("x", kusto.TypeLong))
	fn := kusto.NewFunctionSymbol("f", intSig, longSig).BuiltIn()

	matches := b.GetBestMatchingSignature(fn, []callArgument{typedArg(kusto.TypeInt)})
	require.Len(t, matches, 1)
	require.Same(t, intSig, matches[0].sig)

	matches = b.GetBestMatchingSignature(fn, []callArgument{typedArg(kusto.TypeLong)})
	require.Len(t, matches, 1)
	require.Same(t, longSig, matches[0].sig)
}

// Overload selection is deterministic regardless of candidate order.
func TestBestMatchOrderIndependence(t *testing.T) {
	b := newTestBinder()
	s1 := kusto.NewSignature(kusto.TypeInt, kusto.NewParameter("x", kusto.TypeInt))
	s2 := kusto.NewSignature(kusto.TypeLong, kusto.NewParameter("x", kusto.TypeLong))
	s3 := kusto.NewKindSignature(kusto.ReturnWidest, kusto.NewKindParameter("x", kusto.ParameterTypeNumber))

	forward := kusto.NewFunctionSymbol("f", s1, s2, s3).BuiltIn()
	backward := kusto.NewFunctionSymbol("f", s3, s2, s1).BuiltIn()

	for _, arg := range []callArgument{
		typedArg(kusto.TypeInt), typedArg(kusto.TypeLong), typedArg(kusto.TypeReal),
	} {
		m1 := b.GetBestMatchingSignature(forward, []callArgument{arg})
		m2 := b.GetBestMatchingSignature(backward, []callArgument{arg})
		require.Len(t, m1, 1)
		require.Len(t, m2, 1)
		require.Same(t, m1[0].sig, m2[0].sig)
	}
}

func TestArityFilterPicksClosest(t *testing.T) {
	b := newTestBinder()
	one := kusto.NewSignature(kusto.TypeLong, kusto.NewParameter("a", kusto.TypeLong))
	three := kusto.NewSignature(kusto.TypeLong,
		kusto.NewParameter("a", kusto.TypeLong),
		kusto.NewParameter("b", kusto.TypeLong),
		kusto.NewParameter("c", kusto.TypeLong))
	fn := kusto.NewFunctionSymbol("f", one, three).BuiltIn()

	// Two arguments: both overloads are one argument away, and the
	// three-parameter overload wins by matching both arguments.
	matches := b.GetBestMatchingSignature(fn, []callArgument{
		typedArg(kusto.TypeLong), typedArg(kusto.TypeLong),
	})
	require.NotEmpty(t, matches)
	require.Same(t, three, matches[0].sig)
}

func TestCheckSignatureArgumentCount(t *testing.T) {
	b := newTestBinder()
	sig := kusto.NewSignature(kusto.TypeLong, kusto.NewParameter("a", kusto.TypeLong))
	fn := kusto.NewFunctionSymbol("f", sig).BuiltIn()
	args := []callArgument{typedArg(kusto.TypeLong), typedArg(kusto.TypeLong)}
	scored := b.GetBestMatchingSignature(fn, args)
	require.NotEmpty(t, scored)
	diags := b.CheckSignature(fn, scored[0], args, kusto.Span{})
	require.NotEmpty(t, diags)
	require.True(t, diags[0].Is(kusto.ErrWrongNumberOfArguments))
}

func TestCheckSignatureWrongType(t *testing.T) {
	b := newTestBinder()
	sig := kusto.NewSignature(kusto.TypeLong, kusto.NewKindParameter("a", kusto.ParameterTypeNumber))
	fn := kusto.NewFunctionSymbol("f", sig).BuiltIn()
	args := []callArgument{typedArg(kusto.TypeString)}
	scored := b.GetBestMatchingSignature(fn, args)
	diags := b.CheckSignature(fn, scored[0], args, kusto.Span{})
	require.NotEmpty(t, diags)
	require.True(t, diags[0].Is(kusto.ErrWrongArgumentType))
}

func TestCheckSignatureEnumeratedValues(t *testing.T) {
	b := newTestBinder()
	sig := kusto.NewSignature(kusto.TypeBool,
		kusto.NewParameter("kind", kusto.TypeString).
			WithArgumentKind(kusto.ArgumentLiteral).
			WithValues(false, "inner", "outer"))
	fn := kusto.NewFunctionSymbol("f", sig).BuiltIn()

	good := []callArgument{litArg(kusto.TypeString, "inner")}
	scored := b.GetBestMatchingSignature(fn, good)
	require.Empty(t, b.CheckSignature(fn, scored[0], good, kusto.Span{}))

	bad := []callArgument{litArg(kusto.TypeString, "sideways")}
	scored = b.GetBestMatchingSignature(fn, bad)
	diags := b.CheckSignature(fn, scored[0], bad, kusto.Span{})
	require.NotEmpty(t, diags)
	require.True(t, diags[0].Is(kusto.ErrValueNotAllowed))
}

func TestCheckSignatureLiteralKinds(t *testing.T) {
	b := newTestBinder()
	sig := kusto.NewSignature(kusto.TypeBool,
		kusto.NewParameter("pattern", kusto.TypeString).WithArgumentKind(kusto.ArgumentLiteralNotEmpty))
	fn := kusto.NewFunctionSymbol("f", sig).BuiltIn()

	empty := []callArgument{litArg(kusto.TypeString, "")}
	scored := b.GetBestMatchingSignature(fn, empty)
	diags := b.CheckSignature(fn, scored[0], empty, kusto.Span{})
	require.NotEmpty(t, diags)
	require.True(t, diags[0].Is(kusto.ErrLiteralNotEmptyRequired))
}

func TestNamedArgumentsOnlyForUserFunctions(t *testing.T) {
	b := newTestBinder()
	sig := kusto.NewSignature(kusto.TypeLong,
		kusto.NewParameter("a", kusto.TypeLong),
		kusto.NewParameter("b", kusto.TypeLong))

	builtin := kusto.NewFunctionSymbol("f", sig).BuiltIn()
	named := typedArg(kusto.TypeLong)
	named.name = "b"
	args := []callArgument{typedArg(kusto.TypeLong), named}
	scored := b.GetBestMatchingSignature(builtin, args)
	diags := b.CheckSignature(builtin, scored[0], args, kusto.Span{})
	require.NotEmpty(t, diags)
	require.True(t, diags[0].Is(kusto.ErrNamedArgumentsNotSupported))

	sig2 := kusto.NewSignature(kusto.TypeLong,
		kusto.NewParameter("a", kusto.TypeLong),
		kusto.NewParameter("b", kusto.TypeLong))
	user := kusto.NewFunctionSymbol("g", sig2)
	scored = b.GetBestMatchingSignature(user, args)
	require.Empty(t, b.CheckSignature(user, scored[0], args, kusto.Span{}))
}

func TestNamedArgumentDiscipline(t *testing.T) {
	b := newTestBinder()
	sig := kusto.NewSignature(kusto.TypeLong,
		kusto.NewParameter("a", kusto.TypeLong),
		kusto.NewParameter("b", kusto.TypeLong),
		kusto.NewParameter("c", kusto.TypeLong))
	user := kusto.NewFunctionSymbol("g", sig)

	// Out-of-order named argument followed by an unnamed one.
	namedC := typedArg(kusto.TypeLong)
	namedC.name = "c"
	args := []callArgument{typedArg(kusto.TypeLong), namedC, typedArg(kusto.TypeLong)}
	scored := b.GetBestMatchingSignature(user, args)
	diags := b.CheckSignature(user, scored[0], args, kusto.Span{})
	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if d.Is(kusto.ErrUnnamedArgumentAfterOutOfOrderNamed) {
			found = true
		}
	}
	require.True(t, found)

	// Unknown and duplicate names.
	unknown := typedArg(kusto.TypeLong)
	unknown.name = "nope"
	args = []callArgument{unknown}
	scored = b.GetBestMatchingSignature(user, args)
	diags = b.CheckSignature(user, scored[0], args, kusto.Span{})
	foundUnknown := false
	for _, d := range diags {
		if d.Is(kusto.ErrUnknownNamedArgument) {
			foundUnknown = true
		}
	}
	require.True(t, foundUnknown)

	dupA := typedArg(kusto.TypeLong)
	dupA.name = "a"
	dupA2 := typedArg(kusto.TypeLong)
	dupA2.name = "a"
	args = []callArgument{dupA, dupA2}
	scored = b.GetBestMatchingSignature(user, args)
	diags = b.CheckSignature(user, scored[0], args, kusto.Span{})
	foundDup := false
	for _, d := range diags {
		if d.Is(kusto.ErrDuplicateNamedArgument) {
			foundDup = true
		}
	}
	require.True(t, foundDup)
}

func TestRepeatableParameterMapping(t *testing.T) {
	b := newTestBinder()
	sig := kusto.NewSignature(kusto.TypeString,
		kusto.NewKindParameter("arg", kusto.ParameterTypeNotDynamic)).Repeatable(8)
	fn := kusto.NewFunctionSymbol("f", sig).BuiltIn()
	args := []callArgument{
		typedArg(kusto.TypeString), typedArg(kusto.TypeLong), typedArg(kusto.TypeBool),
	}
	matches := b.GetBestMatchingSignature(fn, args)
	require.Len(t, matches, 1)
	require.Equal(t, []int{0, 0, 0}, matches[0].mapping)
	require.Empty(t, b.CheckSignature(fn, matches[0], args, kusto.Span{}))
}
