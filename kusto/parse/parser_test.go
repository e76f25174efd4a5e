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

package parse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kustoql/go-kusto-server/kusto"
	"github.com/kustoql/go-kusto-server/kusto/syntax"
)

func queryExpr(t *testing.T, source string) syntax.Expression {
	t.Helper()
	block, diags := Parse(source)
	require.Empty(t, diags, "unexpected parse diagnostics for %q", source)
	require.NotEmpty(t, block.Statements)
	stmt, ok := block.Statements[len(block.Statements)-1].(*syntax.ExpressionStatement)
	require.True(t, ok)
	return stmt.Expr
}

func TestTokenizeBasics(t *testing.T) {
	toks := Tokenize("T | where a >= 10")
	kinds := make([]TokenKind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []TokenKind{
		TokenIdent, TokenPipe, TokenIdent, TokenIdent, TokenGtEq, TokenLong, TokenEOF,
	}, kinds)
}

func TestTokenizeHyphenatedKeywords(t *testing.T) {
	toks := Tokenize("T | project-away a | mv-expand b | execute-and-cache")
	var idents []string
	for _, tok := range toks {
		if tok.Kind == TokenIdent {
			idents = append(idents, tok.Text)
		}
	}
	require.Contains(t, idents, "project-away")
	require.Contains(t, idents, "mv-expand")
	require.Contains(t, idents, "execute-and-cache")

	// A spaced minus stays arithmetic.
	toks = Tokenize("project - away")
	count := 0
	for _, tok := range toks {
		if tok.Kind == TokenMinus {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestTokenizeTimespanLiteral(t *testing.T) {
	toks := Tokenize("ago(1d)")
	var found bool
	for _, tok := range toks {
		if tok.Kind == TokenTimespan {
			require.Equal(t, "1d", tok.Text)
			found = true
		}
	}
	require.True(t, found)
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks := Tokenize(`'a\nb'`)
	require.Equal(t, TokenString, toks[0].Kind)
	require.Equal(t, "a\nb", toks[0].Value)
}

func TestParsePrecedence(t *testing.T) {
	expr := queryExpr(t, "1 + 2 * 3")
	add, ok := expr.(*syntax.BinaryExpression)
	require.True(t, ok)
	require.Equal(t, kusto.OpAdd, add.Op)
	mul, ok := add.Right.(*syntax.BinaryExpression)
	require.True(t, ok)
	require.Equal(t, kusto.OpMultiply, mul.Op)
}

func TestParseComparisonAndLogical(t *testing.T) {
	expr := queryExpr(t, "a > 1 and b != 2 or c == 3")
	or, ok := expr.(*syntax.BinaryExpression)
	require.True(t, ok)
	require.Equal(t, kusto.OpOr, or.Op)
	and, ok := or.Left.(*syntax.BinaryExpression)
	require.True(t, ok)
	require.Equal(t, kusto.OpAnd, and.Op)
}

func TestParseStringOperators(t *testing.T) {
	expr := queryExpr(t, "a contains 'x'")
	bin := expr.(*syntax.BinaryExpression)
	require.Equal(t, kusto.OpContains, bin.Op)

	expr = queryExpr(t, "a !contains 'x'")
	bin = expr.(*syntax.BinaryExpression)
	require.Equal(t, kusto.OpNotContains, bin.Op)

	expr = queryExpr(t, "a startswith_cs 'x'")
	bin = expr.(*syntax.BinaryExpression)
	require.Equal(t, kusto.OpStartsWithCs, bin.Op)

	expr = queryExpr(t, "a matches regex 'x+'")
	bin = expr.(*syntax.BinaryExpression)
	require.Equal(t, kusto.OpMatchRegex, bin.Op)
}

func TestParseInAndBetween(t *testing.T) {
	expr := queryExpr(t, "a in (1, 2, 3)")
	in := expr.(*syntax.InExpression)
	require.Equal(t, kusto.OpIn, in.Op)
	require.Len(t, in.Values, 3)

	expr = queryExpr(t, "a !in (1, 2)")
	in = expr.(*syntax.InExpression)
	require.Equal(t, kusto.OpNotIn, in.Op)

	expr = queryExpr(t, "a between (1 .. 10)")
	between := expr.(*syntax.BetweenExpression)
	require.Equal(t, kusto.OpBetween, between.Op)
}

func TestParsePipeline(t *testing.T) {
	expr := queryExpr(t, "T | where a > 1 | project a, b | take 10")
	pipe := expr.(*syntax.PipeExpression)
	_, ok := pipe.Operator.(*syntax.TakeOperator)
	require.True(t, ok)
	inner := pipe.Expr.(*syntax.PipeExpression)
	project, ok := inner.Operator.(*syntax.ProjectOperator)
	require.True(t, ok)
	require.Len(t, project.Exprs, 2)
	innermost := inner.Expr.(*syntax.PipeExpression)
	where, ok := innermost.Operator.(*syntax.FilterOperator)
	require.True(t, ok)
	require.Equal(t, "where", where.Keyword)
	name, ok := innermost.Expr.(*syntax.NameReference)
	require.True(t, ok)
	require.Equal(t, "T", name.Name)
}

func TestParseSummarize(t *testing.T) {
	expr := queryExpr(t, "T | summarize Total = sum(x), count() by Bucket = bin(ts, 1h), kind")
	pipe := expr.(*syntax.PipeExpression)
	s := pipe.Operator.(*syntax.SummarizeOperator)
	require.Len(t, s.Aggregates, 2)
	require.Len(t, s.By, 2)
	named, ok := s.Aggregates[0].(*syntax.SimpleNamedExpression)
	require.True(t, ok)
	require.Equal(t, "Total", named.Name.Name)
}

func TestParseJoin(t *testing.T) {
	expr := queryExpr(t, "T | join kind=inner (U | where b > 0) on a, $left.x == $right.y")
	pipe := expr.(*syntax.PipeExpression)
	join := pipe.Operator.(*syntax.JoinOperator)
	require.Len(t, join.Parameters, 1)
	require.Len(t, join.OnExprs, 2)
	name, value, _, ok := joinParam(join.Parameters[0])
	require.True(t, ok)
	require.Equal(t, "kind", name)
	require.Equal(t, "inner", value)
}

func joinParam(e syntax.Expression) (string, string, kusto.Span, bool) {
	named, ok := e.(*syntax.SimpleNamedExpression)
	if !ok || named.Name == nil {
		return "", "", kusto.Span{}, false
	}
	ref, ok := named.Expr.(*syntax.NameReference)
	if !ok {
		return named.Name.Name, "", named.Span(), true
	}
	return named.Name.Name, ref.Name, named.Span(), true
}

func TestParseDataTable(t *testing.T) {
	expr := queryExpr(t, "datatable (c: int) [-1, 0, 1, 2, 3]")
	dt := expr.(*syntax.DataTableExpression)
	require.Len(t, dt.Columns, 1)
	require.Len(t, dt.Values, 5)
	prim := dt.Columns[0].Type.(*syntax.PrimitiveTypeExpression)
	require.Equal(t, "int", prim.TypeName)
}

func TestParseRange(t *testing.T) {
	expr := queryExpr(t, "range x from 1 to 10 step 1")
	r := expr.(*syntax.RangeOperator)
	require.Equal(t, "x", r.Name.Name)
	require.NotNil(t, r.From)
	require.NotNil(t, r.To)
	require.NotNil(t, r.Step)
}

func TestParseLetLambda(t *testing.T) {
	block, diags := Parse("let f = (t: (a: long), n: long) { t | take n }; f(T, 5)")
	require.Empty(t, diags)
	require.Len(t, block.Statements, 2)
	let := block.Statements[0].(*syntax.LetStatement)
	require.Equal(t, "f", let.Name.Name)
	decl := let.Expr.(*syntax.FunctionDeclaration)
	require.Len(t, decl.Parameters, 2)
	schema, ok := decl.Parameters[0].Type.(*syntax.SchemaTypeExpression)
	require.True(t, ok)
	require.Len(t, schema.Columns, 1)
	require.NotEmpty(t, decl.Body.Source)
	require.NotNil(t, decl.Body.Expr)
}

func TestParseFunctionBody(t *testing.T) {
	body, diags := ParseFunctionBody("{ let n = 1; T | take n }")
	require.Empty(t, diags)
	require.Len(t, body.Statements, 1)
	require.NotNil(t, body.Expr)

	// Unbraced bodies parse too.
	body, diags = ParseFunctionBody("T | count")
	require.Empty(t, diags)
	require.NotNil(t, body.Expr)
}

func TestParseTypedLiterals(t *testing.T) {
	expr := queryExpr(t, "datetime(2023-01-01)")
	lit := expr.(*syntax.Literal)
	require.Equal(t, kusto.TypeDateTime, lit.Type)

	expr = queryExpr(t, "int(5)")
	lit = expr.(*syntax.Literal)
	require.Equal(t, kusto.TypeInt, lit.Type)
	require.Equal(t, int32(5), lit.Value)

	expr = queryExpr(t, "dynamic({\"a\": 1})")
	lit = expr.(*syntax.Literal)
	require.Equal(t, kusto.TypeDynamic, lit.Type)
}

func TestParseBracketedNames(t *testing.T) {
	expr := queryExpr(t, "['my table'] | where ['my col'] > 1")
	pipe := expr.(*syntax.PipeExpression)
	name := pipe.Expr.(*syntax.NameReference)
	require.Equal(t, "my table", name.Name)
}

func TestParseMvApplyImplicitHead(t *testing.T) {
	expr := queryExpr(t, "T | mv-apply x to typeof(long) on (summarize Total = sum(x))")
	pipe := expr.(*syntax.PipeExpression)
	apply := pipe.Operator.(*syntax.MvApplyOperator)
	require.Len(t, apply.Exprs, 1)
	require.NotNil(t, apply.Exprs[0].To)
	sub := apply.Subquery.(*syntax.PipeExpression)
	require.Nil(t, sub.Expr)
	_, ok := sub.Operator.(*syntax.SummarizeOperator)
	require.True(t, ok)
}

func TestParseErrorRecovery(t *testing.T) {
	block, diags := Parse("T | frobnicate | where a > 1")
	require.NotEmpty(t, diags)
	require.NotEmpty(t, block.Statements)
}

func TestParseUnionFindSearchHeads(t *testing.T) {
	expr := queryExpr(t, "union kind=outer T, U")
	union := expr.(*syntax.UnionOperator)
	require.Len(t, union.Exprs, 2)

	expr = queryExpr(t, "find in (T, U) where a > 1")
	find := expr.(*syntax.FindOperator)
	require.Len(t, find.In, 2)

	expr = queryExpr(t, "search 'needle'")
	search := expr.(*syntax.SearchOperator)
	require.NotNil(t, search.Predicate)
}

func TestParsePositionsAreSpanned(t *testing.T) {
	source := "T | where abc > 1"
	block, _ := Parse(source)
	node := syntax.NodeAt(block, 11)
	name, ok := node.(*syntax.NameReference)
	require.True(t, ok)
	require.Equal(t, "abc", name.Name)
}
