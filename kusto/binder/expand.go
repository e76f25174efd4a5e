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
	"fmt"
	"strings"

	"github.com/kustoql/go-kusto-server/kusto"
	"github.com/kustoql/go-kusto-server/kusto/parse"
	"github.com/kustoql/go-kusto-server/kusto/syntax"
)

// expandSignature computes the return type of a computed-body
// signature by re-parsing the body and recursively binding it under a
// derived context. Expansions are memoized per call-site fingerprint,
// globally for database functions whose schema varies with arguments,
// locally otherwise; bodies that reference an unqualified table() are
// never cached because their resolution depends on dynamic scope.
func (b *Binder) expandSignature(sig *kusto.Signature, args []callArgument, span kusto.Span) (t kusto.TypeSymbol, exp *Expansion, diags []kusto.Diagnostic) {
	if sig.Body() == "" {
		return kusto.ErrorType, nil, nil
	}

	// Self-recursion returns no expansion; the outer call falls back
	// to a best-effort result.
	if b.localCache.isExpanding(sig) {
		return kusto.ErrorType, nil, nil
	}

	key := callSiteFingerprint(sig, fingerprintArgs(sig, args))
	if cached, ok := b.localCache.expansion(key); ok {
		return cached.ReturnType, cached, nil
	}
	if cached, ok := b.globalCache.expansion(key); ok {
		return cached.ReturnType, cached, nil
	}

	// A schema that does not vary with arguments resolves from the
	// per-signature cache without re-binding.
	if facts, known := sig.BodyFacts(); known && facts&kusto.BodyFactVariableReturn == 0 {
		if cached, ok := sig.NonVariableComputedReturnType(); ok {
			return cached, nil, nil
		}
	}

	defer func() {
		// A grammar or binder failure inside the expansion never
		// escapes; the expansion is simply unavailable.
		if r := recover(); r != nil {
			b.log.WithField("function", symbolName(sig.Symbol())).
				Warnf("inline expansion failed: %v", r)
			t, exp, diags = kusto.ErrorType, nil, nil
		}
	}()

	b.localCache.beginExpansion(sig)
	defer b.localCache.endExpansion(sig)

	body, _ := parse.ParseFunctionBody(sig.Body())
	if body == nil {
		return kusto.ErrorType, nil, nil
	}

	derived := b.deriveExpansionBinder(sig, args)
	info := derived.bindFunctionBody(body)

	facts := computeBodyFacts(body)
	if signatureHasVariableReturn(sig) {
		facts |= kusto.BodyFactVariableReturn
	}
	sig.SetBodyFacts(facts)
	if facts&(kusto.BodyFactVariableReturn|kusto.BodyFactUnqualifiedTable) == 0 {
		sig.SetNonVariableComputedReturnType(info.ResultType)
	}

	expansion := &Expansion{
		Root:       body,
		ReturnType: info.ResultType,
		Info:       derived.infoMap,
		Facts:      facts,
	}

	switch {
	case facts&kusto.BodyFactUnqualifiedTable != 0:
		// Not cacheable: table(x) resolves against the caller's scope.
	case b.isDatabaseFunction(sig) && facts&kusto.BodyFactVariableReturn != 0:
		b.globalCache.addExpansion(key, expansion)
	default:
		b.localCache.addExpansion(key, expansion)
	}

	return info.ResultType, expansion, nil
}

// deriveExpansionBinder builds the context the body binds under:
// parameters become constants or typed variables in a fresh local
// scope, and database functions bind against their owning catalog.
func (b *Binder) deriveExpansionBinder(sig *kusto.Signature, args []callArgument) *Binder {
	derived := &Binder{
		ctx:              b.ctx,
		globals:          b.globals,
		currentCluster:   b.currentCluster,
		currentDatabase:  b.currentDatabase,
		locals:           newLocalScope(nil),
		aliasedDatabases: b.aliasedDatabases,
		infoMap:          make(SemanticMap),
		localCache:       b.localCache,
		globalCache:      b.globalCache,
		open:             newOpenEntities(),
		rowScopes:        make(map[syntax.Node]*kusto.TableSymbol),
		stmtScopes:       make(map[syntax.Node]*localScope),
		log:              b.log,
	}
	if fn, ok := sig.Symbol().(*kusto.FunctionSymbol); ok {
		if cluster, db, isDb := b.globals.OwnerDatabase(fn); isDb {
			derived.currentCluster = cluster
			derived.currentDatabase = db
		}
	}
	for i, param := range sig.Parameters() {
		var argInfo *SemanticInfo
		if i < len(args) {
			argInfo = args[i].info
		}
		derived.locals.Add(parameterSymbol(param, argInfo))
	}
	return derived
}

// parameterSymbol binds one parameter for the body's local scope: a
// constant when the argument was one, a typed variable otherwise.
func parameterSymbol(param *kusto.Parameter, argInfo *SemanticInfo) kusto.Symbol {
	var t kusto.TypeSymbol
	if argInfo != nil {
		t = argInfo.ResultType
	} else if declared := param.DeclaredTypes(); len(declared) > 0 {
		t = declared[0]
	} else {
		t = kusto.ErrorType
	}
	if argInfo != nil && argInfo.Constant {
		return kusto.NewConstantVariableSymbol(param.Name(), t, argInfo.ConstantValue)
	}
	return kusto.NewVariableSymbol(param.Name(), t)
}

// fingerprintArgs captures, per parameter, the bound type, constant
// flag and constant value, so structurally identical call sites share
// an expansion.
func fingerprintArgs(sig *kusto.Signature, args []callArgument) []fingerprintArg {
	out := make([]fingerprintArg, 0, len(sig.Parameters()))
	for i, param := range sig.Parameters() {
		fa := fingerprintArg{Name: param.Name()}
		if i < len(args) {
			info := args[i].info
			fa.Type = typeIdentity(info.ResultType)
			fa.Constant = info.Constant
			if info.Constant {
				fa.Value = fmt.Sprint(info.ConstantValue)
			}
		} else if declared := param.DeclaredTypes(); len(declared) > 0 {
			fa.Type = typeIdentity(declared[0])
		}
		out = append(out, fa)
	}
	return out
}

// typeIdentity distinguishes types for fingerprinting: scalar names
// suffice, tables hash by identity and shape.
func typeIdentity(t kusto.TypeSymbol) string {
	if table, ok := t.(*kusto.TableSymbol); ok {
		return fmt.Sprintf("%p%s", table, kusto.TypeName(table))
	}
	return kusto.TypeName(t)
}

func signatureHasVariableReturn(sig *kusto.Signature) bool {
	for _, p := range sig.Parameters() {
		if p.TypeKind() == kusto.ParameterTypeTabular ||
			p.TypeKind() == kusto.ParameterTypeSingleColumnTable {
			return true
		}
		for _, t := range p.DeclaredTypes() {
			if _, ok := t.(*kusto.TableSymbol); ok {
				return true
			}
		}
	}
	return false
}

func (b *Binder) isDatabaseFunction(sig *kusto.Signature) bool {
	fn, ok := sig.Symbol().(*kusto.FunctionSymbol)
	if !ok {
		return false
	}
	_, _, isDb := b.globals.OwnerDatabase(fn)
	return isDb
}

// computeBodyFacts records which ambient entry points a body touches:
// cluster(), database(), and qualified or unqualified table().
func computeBodyFacts(body *syntax.FunctionBody) kusto.FunctionBodyFacts {
	facts := kusto.BodyFactNone
	qualified := make(map[*syntax.Call]bool)
	syntax.Walk(body, func(n syntax.Node) bool {
		if path, ok := n.(*syntax.PathExpression); ok {
			if call, ok := path.Selector.(*syntax.Call); ok {
				qualified[call] = true
			}
		}
		return true
	})
	syntax.Walk(body, func(n syntax.Node) bool {
		call, ok := n.(*syntax.Call)
		if !ok || call.Name == nil {
			return true
		}
		switch strings.ToLower(call.Name.Name) {
		case "cluster":
			facts |= kusto.BodyFactCluster
		case "database":
			facts |= kusto.BodyFactDatabase
		case "table":
			if qualified[call] {
				facts |= kusto.BodyFactQualifiedTable
			} else {
				facts |= kusto.BodyFactUnqualifiedTable
			}
		}
		return true
	})
	return facts
}

func symbolName(sym kusto.Symbol) string {
	if sym == nil {
		return "<anonymous>"
	}
	return sym.Name()
}

// BindExpansion binds a function body under a derived context: bare
// parameters become variables in a fresh local scope. It is the
// re-entry point mirrored by inline expansion, exposed for callers
// that manage expansion themselves.
func BindExpansion(ctx context.Context, body *syntax.FunctionBody, globals *kusto.GlobalState,
	cluster *kusto.ClusterSymbol, database *kusto.DatabaseSymbol, locals []kusto.Symbol) (SemanticMap, kusto.TypeSymbol, error) {
	b := newBinder(ctx, globals)
	if cluster != nil {
		b.currentCluster = cluster
	}
	if database != nil {
		b.currentDatabase = database
	}
	for _, sym := range locals {
		b.locals.Add(sym)
	}
	b.globalCache.Lock()
	defer b.globalCache.Unlock()
	info := b.bindFunctionBody(body)
	if b.cancelled {
		return b.infoMap, kusto.ErrorType, ctx.Err()
	}
	return b.infoMap, info.ResultType, nil
}
