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
	"github.com/kustoql/go-kusto-server/internal/similartext"
	"github.com/kustoql/go-kusto-server/kusto"
)

// resolveCall runs overload resolution and return-type computation for
// one invocation. All failures surface as diagnostics.
func (b *Binder) resolveCall(sym signatured, args []callArgument, span kusto.Span) (kusto.TypeSymbol, *kusto.Signature, *Expansion, []kusto.Diagnostic) {
	matches := b.GetBestMatchingSignature(sym, args)
	switch len(matches) {
	case 0:
		return kusto.ErrorType, nil, nil, nil
	case 1:
		best := matches[0]
		diags := b.CheckSignature(sym, best, args, span)
		t, exp, moreDiags := b.returnType(best, args, span)
		return t, best.sig, exp, append(diags, moreDiags...)
	default:
		// Ties return the common return type when the candidates
		// agree, otherwise the call is ambiguous.
		var common kusto.TypeSymbol
		agree := true
		for _, m := range matches {
			t, _, _ := b.returnType(m, args, span)
			if common == nil {
				common = t
			} else if common != t {
				agree = false
				break
			}
		}
		if agree && common != nil {
			return common, nil, nil, nil
		}
		// An error-typed operand matches every overload; its own
		// diagnostic is the root cause, not the tie.
		for _, a := range args {
			if kusto.IsError(a.info.ResultType) {
				return kusto.ErrorType, nil, nil, nil
			}
		}
		return kusto.ErrorType, nil, nil, []kusto.Diagnostic{
			kusto.NewDiagnostic(span, kusto.ErrAmbiguousSignature, sym.Name()),
		}
	}
}

// returnType dispatches on the signature's return kind.
func (b *Binder) returnType(scored *scoredSignature, args []callArgument, span kusto.Span) (kusto.TypeSymbol, *Expansion, []kusto.Diagnostic) {
	sig := scored.sig
	switch sig.ReturnKind() {
	case kusto.ReturnDeclared:
		return sig.DeclaredReturnType(), nil, nil

	case kusto.ReturnParameter0, kusto.ReturnParameter1, kusto.ReturnParameter2:
		idx := int(sig.ReturnKind() - kusto.ReturnParameter0)
		if t := argTypeForParameter(args, scored.mapping, idx); t != nil {
			return t, nil, nil
		}
		return kusto.ErrorType, nil, nil

	case kusto.ReturnParameter0Promoted:
		if t := argTypeForParameter(args, scored.mapping, 0); t != nil {
			return kusto.PromoteScalar(t), nil, nil
		}
		return kusto.ErrorType, nil, nil

	case kusto.ReturnParameterN:
		lastIdx := len(sig.Parameters()) - 1
		var t kusto.TypeSymbol
		for i, m := range scored.mapping {
			if m == lastIdx {
				t = args[i].info.ResultType
			}
		}
		if t != nil {
			return t, nil, nil
		}
		return kusto.ErrorType, nil, nil

	case kusto.ReturnParameterNLiteral:
		lastIdx := len(sig.Parameters()) - 1
		for i, m := range scored.mapping {
			if m != lastIdx {
				continue
			}
			if lit, ok := unwrapLiteral(args[i].expr); ok {
				if name, ok := lit.Value.(string); ok {
					if t := kusto.ScalarTypeByName(name); t != nil {
						return t, nil, nil
					}
				}
				return kusto.ErrorType, nil, []kusto.Diagnostic{
					kusto.NewDiagnostic(args[i].expr.Span(), kusto.ErrInvalidTypeExpression, lit.Text),
				}
			}
		}
		return kusto.ErrorType, nil, nil

	case kusto.ReturnCommon:
		var types []kusto.TypeSymbol
		for i, m := range scored.mapping {
			if m < 0 {
				continue
			}
			switch sig.Parameters()[m].TypeKind() {
			case kusto.ParameterTypeCommonScalar, kusto.ParameterTypeCommonScalarOrDynamic,
				kusto.ParameterTypeCommonNumber, kusto.ParameterTypeCommonSummable:
				types = append(types, args[i].info.ResultType)
			}
		}
		if t := kusto.CommonScalarType(types...); t != nil {
			return t, nil, nil
		}
		return kusto.ErrorType, nil, nil

	case kusto.ReturnWidest:
		var types []kusto.TypeSymbol
		dynamicSeen := false
		for _, a := range args {
			types = append(types, a.info.ResultType)
			if a.info.ResultType == kusto.TypeDynamic {
				dynamicSeen = true
			}
		}
		if t := kusto.WidestScalarType(types...); t != nil {
			return t, nil, nil
		}
		if dynamicSeen {
			// Arithmetic over dynamic values yields long at runtime.
			return kusto.TypeLong, nil, nil
		}
		return kusto.ErrorType, nil, nil

	case kusto.ReturnParameter0Cluster:
		return b.clusterFromArg(args, span)
	case kusto.ReturnParameter0Database:
		return b.databaseFromArg(args, span)
	case kusto.ReturnParameter0Table:
		return b.tableFromArg(args, span)

	case kusto.ReturnCustom:
		custom := sig.Custom()
		if custom == nil {
			return kusto.ErrorType, nil, nil
		}
		ctx := &kusto.CustomReturnContext{
			Globals:  b.globals,
			RowScope: b.withInferred(b.rowScope),
			Args:     customArgs(args),
		}
		t := custom(ctx)
		if t == nil {
			t = kusto.ErrorType
		}
		return t, nil, nil

	case kusto.ReturnComputed:
		return b.expandSignature(sig, args, span)
	}
	return kusto.ErrorType, nil, nil
}

func customArgs(args []callArgument) []kusto.CustomArg {
	out := make([]kusto.CustomArg, len(args))
	for i, a := range args {
		value := a.info.ConstantValue
		if col, ok := a.info.ReferencedSymbol.(*kusto.Column); ok {
			value = col
		}
		out[i] = kusto.CustomArg{Type: a.info.ResultType, Constant: a.info.Constant, Value: value}
	}
	return out
}

func argStringValue(args []callArgument) (string, kusto.Span, bool) {
	if len(args) == 0 {
		return "", kusto.Span{}, false
	}
	if lit, ok := unwrapLiteral(args[0].expr); ok {
		if s, ok := lit.Value.(string); ok {
			return s, args[0].expr.Span(), true
		}
	}
	if args[0].info.Constant {
		if s, ok := args[0].info.ConstantValue.(string); ok {
			return s, args[0].expr.Span(), true
		}
	}
	return "", args[0].expr.Span(), false
}

// clusterFromArg evaluates cluster(name) against the catalog; unknown
// names synthesize an open cluster so the dotted path stays bindable.
func (b *Binder) clusterFromArg(args []callArgument, span kusto.Span) (kusto.TypeSymbol, *Expansion, []kusto.Diagnostic) {
	name, _, ok := argStringValue(args)
	if !ok {
		return kusto.ErrorType, nil, nil
	}
	if c, found := b.globals.ClusterByName(name); found {
		return typeOfEntity(c), nil, nil
	}
	return typeOfEntity(b.open.OpenCluster(name)), nil, nil
}

func (b *Binder) databaseFromArg(args []callArgument, span kusto.Span) (kusto.TypeSymbol, *Expansion, []kusto.Diagnostic) {
	name, argSpan, ok := argStringValue(args)
	if !ok {
		return kusto.ErrorType, nil, nil
	}
	cluster := b.currentCluster
	if c, ok := b.pathScope.(*kusto.ClusterSymbol); ok {
		cluster = c
	}
	if alias, ok := b.aliasedDatabases[name]; ok {
		return typeOfEntity(alias), nil, nil
	}
	if cluster != nil {
		if d, found := cluster.Database(name); found {
			return typeOfEntity(d), nil, nil
		}
		if cluster.IsOpen() {
			return typeOfEntity(b.open.OpenDatabase(cluster, name)), nil, nil
		}
	}
	var names []string
	if cluster != nil {
		for _, d := range cluster.Databases() {
			names = append(names, d.Name())
		}
	}
	return kusto.ErrorType, nil, []kusto.Diagnostic{
		kusto.NewDiagnostic(argSpan, kusto.ErrDatabaseNotDefined, name, similartext.Find(names, name)),
	}
}

func (b *Binder) tableFromArg(args []callArgument, span kusto.Span) (kusto.TypeSymbol, *Expansion, []kusto.Diagnostic) {
	name, argSpan, ok := argStringValue(args)
	if !ok {
		return kusto.ErrorType, nil, nil
	}
	db := b.currentDatabase
	if d, ok := b.pathScope.(*kusto.DatabaseSymbol); ok {
		db = d
	}
	if db != nil {
		if t, found := db.Table(name); found {
			return t, nil, nil
		}
		if db.IsOpen() {
			return b.open.OpenTable(db, name), nil, nil
		}
	}
	var names []string
	if db != nil {
		for _, t := range db.Tables() {
			names = append(names, t.Name())
		}
	}
	return kusto.ErrorType, nil, []kusto.Diagnostic{
		kusto.NewDiagnostic(argSpan, kusto.ErrTableNotDefined, name, similartext.Find(names, name)),
	}
}

// typeOfEntity adapts a cluster or database to a result type: both are
// type symbols, so the entity itself becomes the expression's type and
// path expressions resolve members through it. Symbols that are not
// types yield Error.
func typeOfEntity(sym kusto.Symbol) kusto.TypeSymbol {
	if t, ok := sym.(kusto.TypeSymbol); ok {
		return t
	}
	return kusto.ErrorType
}

// signatureResultType resolves a signature's return type without a
// call site, as the public GetComputedReturnType entry does: declared
// types come back directly, computed bodies expand with parameters
// bound to their declared types.
func (b *Binder) signatureResultType(sig *kusto.Signature, args []callArgument, span kusto.Span) kusto.TypeSymbol {
	switch sig.ReturnKind() {
	case kusto.ReturnDeclared:
		return sig.DeclaredReturnType()
	case kusto.ReturnComputed:
		t, _, _ := b.expandSignature(sig, args, span)
		return t
	default:
		scored := &scoredSignature{sig: sig, mapping: identityMapping(len(args))}
		for range args {
			scored.kinds = append(scored.kinds, MatchExact)
		}
		t, _, _ := b.returnType(scored, args, span)
		return t
	}
}

// signatureResultTypeForCall resolves a function's result for an
// implicit zero-argument invocation.
func (b *Binder) signatureResultTypeForCall(fn *kusto.FunctionSymbol, args []callArgument, span kusto.Span) kusto.TypeSymbol {
	t, _, _, _ := b.resolveCall(fn, args, span)
	return t
}

func identityMapping(n int) []int {
	m := make([]int, n)
	for i := range m {
		m[i] = i
	}
	return m
}
