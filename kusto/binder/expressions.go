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
	"github.com/kustoql/go-kusto-server/kusto"
	"github.com/kustoql/go-kusto-server/kusto/syntax"
)

// bindExpression binds one expression node bottom-up and records its
// annotation.
func (b *Binder) bindExpression(e syntax.Expression) *SemanticInfo {
	if e == nil {
		return errorInfo()
	}
	switch n := e.(type) {
	case *syntax.Literal:
		return b.bindLiteral(n)
	case *syntax.NameReference:
		return b.bindNameReference(n, false)
	case *syntax.ParenExpression:
		inner := b.bindExpression(n.Expr)
		return b.setInfo(n, &SemanticInfo{
			ReferencedSymbol: inner.ReferencedSymbol,
			ResultType:       inner.ResultType,
			Constant:         inner.Constant,
			ConstantValue:    inner.ConstantValue,
		})
	case *syntax.PathExpression:
		return b.bindPathExpression(n)
	case *syntax.ElementExpression:
		return b.bindElementExpression(n)
	case *syntax.Call:
		return b.bindCall(n)
	case *syntax.SimpleNamedExpression:
		inner := b.bindExpression(n.Expr)
		return b.setInfo(n, &SemanticInfo{
			ReferencedSymbol: inner.ReferencedSymbol,
			ResultType:       inner.ResultType,
			Constant:         inner.Constant,
			ConstantValue:    inner.ConstantValue,
		})
	case *syntax.CompoundNamedExpression:
		b.bindExpression(n.Expr)
		return b.setInfo(n, errorInfo(kusto.NewDiagnostic(n.Span(), kusto.ErrCompoundNamedArgument)))
	case *syntax.BinaryExpression:
		return b.bindBinaryExpression(n)
	case *syntax.PrefixUnaryExpression:
		return b.bindPrefixUnaryExpression(n)
	case *syntax.InExpression:
		return b.bindInExpression(n)
	case *syntax.BetweenExpression:
		return b.bindBetweenExpression(n)
	case *syntax.StarExpression:
		return b.bindStarExpression(n)
	case *syntax.DataTableExpression:
		return b.bindDataTable(n)
	case *syntax.FunctionDeclaration:
		fn := b.bindFunctionDeclaration("", n)
		return b.setInfo(n, symbolInfo(fn))
	case *syntax.PipeExpression:
		return b.bindPipeExpression(n)
	case *syntax.OrderedExpression:
		inner := b.bindExpression(n.Expr)
		return b.setInfo(n, &SemanticInfo{
			ReferencedSymbol: inner.ReferencedSymbol,
			ResultType:       inner.ResultType,
		})
	case *syntax.NameAndTypeDecl:
		t := b.bindTypeExpression(n.Type)
		return b.setInfo(n, typeInfo(t))
	case *syntax.PrimitiveTypeExpression, *syntax.SchemaTypeExpression:
		t := b.bindTypeExpression(n)
		return b.setInfo(n, typeInfo(t))
	case *syntax.MvExpandExpression:
		inner := b.bindExpression(n.Expr)
		return b.setInfo(n, &SemanticInfo{ResultType: inner.ResultType})
	case syntax.QueryOperator:
		// Pipeline-head forms: range, print, union, find, search.
		return b.bindQueryOperator(n)
	}
	return b.setInfo(e, errorInfo())
}

func (b *Binder) bindLiteral(n *syntax.Literal) *SemanticInfo {
	if n.Type == nil {
		return b.setInfo(n, errorInfo())
	}
	return b.setInfo(n, &SemanticInfo{
		ResultType:    n.Type,
		Constant:      true,
		ConstantValue: n.Value,
	})
}

func (b *Binder) bindPathExpression(n *syntax.PathExpression) *SemanticInfo {
	left := b.bindExpression(n.Expr)

	// Dynamic values admit any member; the result stays dynamic.
	if left.ResultType == kusto.TypeDynamic {
		if sel, ok := n.Selector.(*syntax.NameReference); ok {
			b.setInfo(sel, typeInfo(kusto.TypeDynamic))
		}
		return b.setInfo(n, typeInfo(kusto.TypeDynamic))
	}
	if isErrorInfo(left) {
		return b.setInfo(n, errorInfo())
	}

	scope := pathScopeOf(left)
	if scope == nil {
		return b.setInfo(n, errorInfo(
			kusto.NewDiagnostic(n.Span(), kusto.ErrPathNotExpected, kusto.TypeName(left.ResultType))))
	}

	saved := b.pathScope
	b.pathScope = scope
	sel := b.bindExpression(n.Selector)
	b.pathScope = saved

	return b.setInfo(n, &SemanticInfo{
		ReferencedSymbol: sel.ReferencedSymbol,
		ResultType:       sel.ResultType,
		Constant:         sel.Constant,
		ConstantValue:    sel.ConstantValue,
	})
}

// pathScopeOf derives the member namespace the dotted selector binds
// against.
func pathScopeOf(left *SemanticInfo) kusto.Symbol {
	switch s := left.ReferencedSymbol.(type) {
	case *kusto.DatabaseSymbol:
		return s
	case *kusto.ClusterSymbol:
		return s
	case *kusto.TupleSymbol:
		return s
	case *kusto.TableSymbol:
		return s
	}
	switch t := left.ResultType.(type) {
	case *kusto.DatabaseSymbol:
		return t
	case *kusto.ClusterSymbol:
		return t
	case *kusto.TupleSymbol:
		return t
	case *kusto.TableSymbol:
		return t
	}
	return nil
}

func (b *Binder) bindElementExpression(n *syntax.ElementExpression) *SemanticInfo {
	left := b.bindExpression(n.Expr)
	b.bindExpression(n.Index)
	if left.ResultType == kusto.TypeDynamic {
		return b.setInfo(n, typeInfo(kusto.TypeDynamic))
	}
	if isErrorInfo(left) {
		return b.setInfo(n, errorInfo())
	}
	return b.setInfo(n, errorInfo(
		kusto.NewDiagnostic(n.Span(), kusto.ErrPathNotExpected, kusto.TypeName(left.ResultType))))
}

func (b *Binder) bindStarExpression(n *syntax.StarExpression) *SemanticInfo {
	cols := b.visibleColumns(b.rowScope)
	syms := make([]kusto.Symbol, len(cols))
	for i, c := range cols {
		syms[i] = c
	}
	return b.setInfo(n, &SemanticInfo{
		ReferencedSymbol: kusto.NewGroupSymbol("*", syms...),
		ResultType:       kusto.VoidType,
	})
}

func (b *Binder) bindBinaryExpression(n *syntax.BinaryExpression) *SemanticInfo {
	left := b.bindExpression(n.Left)
	right := b.bindExpression(n.Right)
	op := kusto.Operator(n.Op)
	if op == nil {
		return b.setInfo(n, errorInfo())
	}
	args := []callArgument{
		{expr: n.Left, info: left},
		{expr: n.Right, info: right},
	}
	t, sig, _, diags := b.resolveCall(op, args, n.Span())
	return b.setInfo(n, &SemanticInfo{
		ReferencedSymbol:    op,
		ReferencedSignature: sig,
		ResultType:          t,
		Diagnostics:         diags,
		Constant:            left.Constant && right.Constant,
	})
}

func (b *Binder) bindPrefixUnaryExpression(n *syntax.PrefixUnaryExpression) *SemanticInfo {
	operand := b.bindExpression(n.Expr)
	op := kusto.Operator(n.Op)
	if op == nil {
		return b.setInfo(n, errorInfo())
	}
	args := []callArgument{{expr: n.Expr, info: operand}}
	t, sig, _, diags := b.resolveCall(op, args, n.Span())
	return b.setInfo(n, &SemanticInfo{
		ReferencedSymbol:    op,
		ReferencedSignature: sig,
		ResultType:          t,
		Diagnostics:         diags,
		Constant:            operand.Constant,
	})
}

func (b *Binder) bindInExpression(n *syntax.InExpression) *SemanticInfo {
	left := b.bindExpression(n.Left)
	args := []callArgument{{expr: n.Left, info: left}}
	constant := left.Constant
	for _, v := range n.Values {
		info := b.bindExpression(v)
		args = append(args, callArgument{expr: v, info: info})
		constant = constant && info.Constant
	}
	op := kusto.Operator(n.Op)
	if op == nil {
		return b.setInfo(n, errorInfo())
	}
	t, sig, _, diags := b.resolveCall(op, args, n.Span())
	return b.setInfo(n, &SemanticInfo{
		ReferencedSymbol:    op,
		ReferencedSignature: sig,
		ResultType:          t,
		Diagnostics:         diags,
		Constant:            constant,
	})
}

func (b *Binder) bindBetweenExpression(n *syntax.BetweenExpression) *SemanticInfo {
	left := b.bindExpression(n.Left)
	low := b.bindExpression(n.Low)
	high := b.bindExpression(n.High)
	op := kusto.Operator(n.Op)
	if op == nil {
		return b.setInfo(n, errorInfo())
	}
	args := []callArgument{
		{expr: n.Left, info: left},
		{expr: n.Low, info: low},
		{expr: n.High, info: high},
	}
	t, sig, _, diags := b.resolveCall(op, args, n.Span())
	return b.setInfo(n, &SemanticInfo{
		ReferencedSymbol:    op,
		ReferencedSignature: sig,
		ResultType:          t,
		Diagnostics:         diags,
		Constant:            left.Constant && low.Constant && high.Constant,
	})
}

func (b *Binder) bindCall(n *syntax.Call) *SemanticInfo {
	if n.Name == nil {
		return b.setInfo(n, errorInfo())
	}
	callScope := b.pathScope
	nameInfo := b.bindNameReference(n.Name, true)

	// Arguments bind in the surrounding scope, not the path scope.
	b.pathScope = nil
	var args []callArgument
	argScope := b.scopeKind
	fn, isFunction := nameInfo.ReferencedSymbol.(*kusto.FunctionSymbol)
	if isFunction && (fn.IsAggregate() || fn.IsPlugIn()) {
		// Aggregate and plug-in arguments are ordinary expressions.
		b.scopeKind = ScopeNormal
	}
	constant := true
	for _, argExpr := range n.Args {
		arg := callArgument{expr: argExpr}
		switch a := argExpr.(type) {
		case *syntax.StarExpression:
			arg.star = true
			arg.info = b.bindExpression(a)
		case *syntax.SimpleNamedExpression:
			if a.Name != nil {
				arg.name = a.Name.Name
			}
			arg.info = b.bindExpression(a)
		default:
			arg.info = b.bindExpression(argExpr)
		}
		constant = constant && arg.info.Constant
		args = append(args, arg)
	}
	b.scopeKind = argScope
	b.pathScope = callScope

	if nameInfo.ReferencedSymbol == nil {
		return b.setInfo(n, errorInfo())
	}

	switch sym := nameInfo.ReferencedSymbol.(type) {
	case *kusto.FunctionSymbol:
		var diags []kusto.Diagnostic
		if sym.IsAggregate() && b.scopeKind != ScopeAggregate {
			diags = append(diags, kusto.NewDiagnostic(n.Span(), kusto.ErrAggregateNotAllowed, sym.Name()))
		}
		t, sig, exp, callDiags := b.resolveCall(sym, args, n.Span())
		return b.setInfo(n, &SemanticInfo{
			ReferencedSymbol:    sym,
			ReferencedSignature: sig,
			ResultType:          t,
			Diagnostics:         append(diags, callDiags...),
			Constant:            sym.IsConstantFoldable() && constant && len(args) > 0,
			Expansion:           exp,
		})
	case *kusto.PatternSymbol:
		return b.bindPatternCall(n, sym, args)
	case *kusto.GroupSymbol:
		// The ambiguity was already reported on the name.
		return b.setInfo(n, errorInfo())
	default:
		return b.setInfo(n, errorInfo(
			kusto.NewDiagnostic(n.Name.Span(), kusto.ErrNotAFunction, n.Name.Name)))
	}
}

// bindPatternCall matches the invocation's literal arguments against
// the pattern's declared cases.
func (b *Binder) bindPatternCall(n *syntax.Call, pattern *kusto.PatternSymbol, args []callArgument) *SemanticInfo {
	values := make([]string, 0, len(args))
	for _, a := range args {
		if lit, ok := unwrapLiteral(a.expr); ok {
			if s, ok := lit.Value.(string); ok {
				values = append(values, s)
				continue
			}
		}
		values = append(values, "")
	}
	for _, ps := range pattern.Signatures() {
		if len(ps.Values) != len(values) {
			continue
		}
		match := true
		for i := range values {
			if ps.Values[i] != values[i] {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		sig := kusto.NewComputedSignature(ps.Body, pattern.Parameters()...)
		t, exp, diags := b.expandSignature(sig, args, n.Span())
		return b.setInfo(n, &SemanticInfo{
			ReferencedSymbol: pattern,
			ResultType:       t,
			Diagnostics:      diags,
			Expansion:        exp,
		})
	}
	return b.setInfo(n, errorInfo(
		kusto.NewDiagnostic(n.Span(), kusto.ErrMissingPatternMatch, pattern.Name())))
}

func (b *Binder) bindDataTable(n *syntax.DataTableExpression) *SemanticInfo {
	var cols []*kusto.Column
	for _, decl := range n.Columns {
		t := b.bindTypeExpression(decl.Type)
		name := ""
		if decl.Name != nil {
			name = decl.Name.Name
		}
		col := kusto.NewColumn(name, t)
		cols = append(cols, col)
		b.setInfo(decl, symbolInfo(col))
	}
	table := kusto.NewTableSymbol("", cols...)

	var diags []kusto.Diagnostic
	if len(cols) > 0 && len(n.Values)%len(cols) != 0 {
		diags = append(diags, kusto.NewDiagnostic(n.Span(), kusto.ErrDataTableValueCount, len(cols)))
	}
	for i, v := range n.Values {
		info := b.bindExpression(v)
		if len(cols) == 0 || isErrorInfo(info) {
			continue
		}
		col := cols[i%len(cols)]
		if !kusto.IsAssignable(info.ResultType, col.Type(), kusto.ConversionCompatible) {
			diags = append(diags, kusto.NewDiagnostic(v.Span(), kusto.ErrColumnExpectsType,
				kusto.TypeName(info.ResultType), col.Name(), kusto.TypeName(col.Type())))
		}
	}
	return b.setInfo(n, &SemanticInfo{ResultType: table, Diagnostics: diags})
}

func (b *Binder) bindPipeExpression(n *syntax.PipeExpression) *SemanticInfo {
	var input *kusto.TableSymbol
	if n.Expr == nil {
		// Implicit head: a subquery operating on the surrounding row
		// scope.
		input = b.rowScope
		if input == nil {
			input = kusto.NewTableSymbol("")
		}
	} else {
		left := b.bindExpression(n.Expr)
		input = b.tableOf(n.Expr, left)
	}

	saved := b.rowScope
	b.rowScope = input
	if n.Operator != nil {
		b.rowScopes[n.Operator] = input
	}
	opInfo := b.bindQueryOperator(n.Operator)
	b.rowScope = saved

	return b.setInfo(n, &SemanticInfo{ResultType: opInfo.ResultType})
}

// bindTypeExpression evaluates a type expression to a type symbol.
func (b *Binder) bindTypeExpression(e syntax.Expression) kusto.TypeSymbol {
	switch n := e.(type) {
	case nil:
		return kusto.ErrorType
	case *syntax.PrimitiveTypeExpression:
		if t := kusto.ScalarTypeByName(n.TypeName); t != nil {
			return t
		}
		b.addDiagnostic(n, kusto.NewDiagnostic(n.Span(), kusto.ErrInvalidTypeExpression, n.TypeName))
		return kusto.ErrorType
	case *syntax.SchemaTypeExpression:
		var cols []*kusto.Column
		for _, decl := range n.Columns {
			name := ""
			if decl.Name != nil {
				name = decl.Name.Name
			}
			cols = append(cols, kusto.NewColumn(name, b.bindTypeExpression(decl.Type)))
		}
		if n.Star {
			return kusto.NewOpenTableSymbol("", cols...)
		}
		return kusto.NewTableSymbol("", cols...)
	default:
		b.addDiagnostic(e, kusto.NewDiagnostic(e.Span(), kusto.ErrInvalidTypeExpression, ""))
		return kusto.ErrorType
	}
}
