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
	"strings"

	"github.com/kustoql/go-kusto-server/internal/similartext"
	"github.com/kustoql/go-kusto-server/kusto"
	"github.com/kustoql/go-kusto-server/kusto/syntax"
)

// bindNameReference resolves a name used as an expression. When
// callPosition is true the name is the target of an argument list and
// function symbols are returned unresolved for the call path to
// handle.
func (b *Binder) bindNameReference(n *syntax.NameReference, callPosition bool) *SemanticInfo {
	name := n.Name

	// Whole-row references are only meaningful while joining.
	if strings.EqualFold(name, "$left") || strings.EqualFold(name, "$right") {
		return b.setInfo(n, b.bindRowReference(n))
	}

	hits := b.resolveName(name, callPosition)

	switch len(hits) {
	case 0:
		return b.setInfo(n, b.nameNotDefined(n, callPosition))
	case 1:
		return b.setInfo(n, b.singleHit(n, hits[0], callPosition))
	default:
		group := kusto.NewGroupSymbol(name, hits...)
		info := &SemanticInfo{
			ReferencedSymbol: group,
			ResultType:       kusto.ErrorType,
			Diagnostics: []kusto.Diagnostic{
				kusto.NewDiagnostic(n.Span(), kusto.ErrAmbiguousName, name),
			},
		}
		return b.setInfo(n, info)
	}
}

// resolveName runs the fixed lookup order and returns the hits of the
// first populated tier.
func (b *Binder) resolveName(name string, callPosition bool) []kusto.Symbol {
	var hits []kusto.Symbol

	// 1. An active path scope confines the lookup entirely.
	if b.pathScope != nil {
		return b.resolveInPathScope(name, callPosition)
	}

	// 2. Row scope columns, then right row scope columns.
	if b.rowScope != nil {
		if c, ok := b.lookupColumn(b.rowScope, name); ok {
			return []kusto.Symbol{c}
		}
	}
	if b.rightRowScope != nil {
		if c, ok := b.lookupColumn(b.rightRowScope, name); ok {
			return []kusto.Symbol{c}
		}
	}

	// 3. Local scope: let bindings, as-names, parameters, lambdas.
	b.locals.Lookup(name, &hits)
	if len(hits) > 0 {
		return hits
	}

	// 4. Members of the current database, zero-argument stored
	// functions included.
	if b.currentDatabase != nil {
		b.currentDatabase.GetMembers(name, kusto.MatchTable|kusto.MatchFunction, &hits)
		if len(hits) > 0 {
			return hits
		}
	}

	// 5. Databases of the current cluster.
	if b.currentCluster != nil {
		b.currentCluster.GetMembers(name, kusto.MatchDatabase, &hits)
		if len(hits) > 0 {
			return hits
		}
	}

	// 6. The global built-in catalog, filtered by scope kind.
	if sym, ok := b.lookupBuiltIn(name); ok {
		return []kusto.Symbol{sym}
	}

	// 7. An open row scope admits any column name.
	if b.rowScope != nil && b.rowScope.IsOpen() {
		return []kusto.Symbol{b.open.InferColumn(b.rowScope, name)}
	}

	return nil
}

func (b *Binder) resolveInPathScope(name string, callPosition bool) []kusto.Symbol {
	switch scope := b.pathScope.(type) {
	case *kusto.DatabaseSymbol:
		if callPosition && strings.EqualFold(name, "table") {
			return []kusto.Symbol{kusto.FnTable}
		}
		var hits []kusto.Symbol
		scope.GetMembers(name, kusto.MatchTable|kusto.MatchFunction, &hits)
		if len(hits) > 0 {
			return hits
		}
		if scope.IsOpen() {
			return []kusto.Symbol{b.open.OpenTable(scope, name)}
		}
	case *kusto.ClusterSymbol:
		if callPosition && strings.EqualFold(name, "database") {
			return []kusto.Symbol{kusto.FnDatabase}
		}
		var hits []kusto.Symbol
		scope.GetMembers(name, kusto.MatchDatabase, &hits)
		if len(hits) > 0 {
			return hits
		}
		if scope.IsOpen() {
			return []kusto.Symbol{b.open.OpenDatabase(scope, name)}
		}
	case kusto.MemberContainer:
		var hits []kusto.Symbol
		scope.GetMembers(name, kusto.MatchAny, &hits)
		return hits
	}
	return nil
}

// lookupBuiltIn consults the built-in registries appropriate for the
// active scope kind.
func (b *Binder) lookupBuiltIn(name string) (kusto.Symbol, bool) {
	switch b.scopeKind {
	case ScopeAggregate:
		if f, ok := kusto.BuiltInAggregate(name); ok {
			return f, true
		}
	case ScopePlugIn:
		if f, ok := kusto.BuiltInPlugIn(name); ok {
			return f, true
		}
		return nil, false
	}
	if f, ok := kusto.BuiltInFunction(name); ok {
		return f, true
	}
	return nil, false
}

func (b *Binder) singleHit(n *syntax.NameReference, hit kusto.Symbol, callPosition bool) *SemanticInfo {
	if fn, ok := hit.(*kusto.FunctionSymbol); ok && !callPosition {
		// A function referenced without parentheses invokes its
		// zero-argument form when one exists.
		if fn.IsAggregate() && b.scopeKind != ScopeAggregate {
			return errorInfo(kusto.NewDiagnostic(n.Span(), kusto.ErrAggregateNotAllowed, fn.Name()))
		}
		if fn.MinArgumentCount() == 0 {
			t := b.signatureResultTypeForCall(fn, nil, n.Span())
			return &SemanticInfo{ReferencedSymbol: fn, ResultType: t}
		}
		return &SemanticInfo{
			ReferencedSymbol: fn,
			ResultType:       kusto.ErrorType,
			Diagnostics: []kusto.Diagnostic{
				kusto.NewDiagnostic(n.Span(), kusto.ErrFunctionRequiresArgumentList, fn.Name()),
			},
		}
	}

	switch s := hit.(type) {
	case *kusto.TableSymbol:
		return symbolInfo(s)
	case *kusto.VariableSymbol:
		info := symbolInfo(s)
		info.Constant = s.IsConstant()
		info.ConstantValue = s.ConstantValue()
		return info
	default:
		return symbolInfo(hit)
	}
}

func (b *Binder) bindRowReference(n *syntax.NameReference) *SemanticInfo {
	if b.rightRowScope == nil {
		return errorInfo(kusto.NewDiagnostic(n.Span(), kusto.ErrLeftRightOnlyInJoin, n.Name))
	}
	var table *kusto.TableSymbol
	if strings.EqualFold(n.Name, "$left") {
		table = b.rowScope
	} else {
		table = b.rightRowScope
	}
	if table == nil {
		return errorInfo(kusto.NewDiagnostic(n.Span(), kusto.ErrLeftRightOnlyInJoin, n.Name))
	}
	tuple := kusto.NewTupleSymbol(b.visibleColumns(table)...)
	return &SemanticInfo{ReferencedSymbol: tuple, ResultType: tuple}
}

func (b *Binder) nameNotDefined(n *syntax.NameReference, callPosition bool) *SemanticInfo {
	if callPosition {
		switch b.scopeKind {
		case ScopeAggregate:
			// The context-sensitive variant: the name was used where an
			// aggregate was expected.
			if _, ok := kusto.BuiltInFunction(n.Name); !ok {
				return errorInfo(kusto.NewDiagnostic(n.Span(), kusto.ErrNameNotDefinedInAggregateContext, n.Name))
			}
		case ScopePlugIn:
			return errorInfo(kusto.NewDiagnostic(n.Span(), kusto.ErrNameNotDefinedInPlugInContext, n.Name))
		}
	}
	suggestion := similartext.Find(b.visibleNames(), n.Name)
	return errorInfo(kusto.NewDiagnostic(n.Span(), kusto.ErrNameNotDefined, n.Name, suggestion))
}

// visibleNames lists every name in scope, for did-you-mean hints.
func (b *Binder) visibleNames() []string {
	var names []string
	for _, c := range b.visibleColumns(b.rowScope) {
		names = append(names, c.Name())
	}
	for _, c := range b.visibleColumns(b.rightRowScope) {
		names = append(names, c.Name())
	}
	var syms []kusto.Symbol
	b.locals.GetMembers(kusto.MatchAny, &syms)
	if b.currentDatabase != nil {
		b.currentDatabase.GetMembers("", kusto.MatchTable|kusto.MatchFunction, &syms)
	}
	for _, s := range syms {
		names = append(names, s.Name())
	}
	return names
}
