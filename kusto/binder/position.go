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

// parentMap records each node's parent for upward walks from a
// position.
func parentMap(root syntax.Node) map[syntax.Node]syntax.Node {
	parents := make(map[syntax.Node]syntax.Node)
	syntax.Walk(root, func(n syntax.Node) bool {
		for _, c := range n.Children() {
			parents[c] = n
		}
		return true
	})
	return parents
}

// positionNode finds the node the position falls in, preferring the
// token just before the position when it sits on a boundary.
func positionNode(root syntax.Node, pos int) syntax.Node {
	if pos > 0 {
		if prev := syntax.NodeAt(root, pos-1); prev != nil && prev.Span().End == pos {
			return prev
		}
	}
	return syntax.NodeAt(root, pos)
}

// rowScopeAt returns the input row scope of the query operator
// containing the position.
func (b *Binder) rowScopeAt(root syntax.Node, pos int) *kusto.TableSymbol {
	node := positionNode(root, pos)
	if node == nil {
		return nil
	}
	parents := parentMap(root)
	for n := node; n != nil; n = parents[n] {
		if _, ok := n.(syntax.QueryOperator); !ok {
			continue
		}
		if scope, ok := b.rowScopes[n]; ok {
			return b.withInferred(scope)
		}
	}
	return nil
}

// symbolsAt lists the symbols visible at a position, filtered by the
// symbol match mask and the function kinds requested.
func (b *Binder) symbolsAt(root syntax.Node, pos int, match kusto.SymbolMatch, include IncludeFunctionKinds) []kusto.Symbol {
	var out []kusto.Symbol

	if match&kusto.MatchColumn != 0 {
		if scope := b.rowScopeAt(root, pos); scope != nil {
			for _, c := range scope.Columns() {
				out = append(out, c)
			}
		}
	}

	// The local scope snapshot of the statement containing the
	// position; falls back to the final scope.
	locals := b.localsAt(root, pos)
	var localSyms []kusto.Symbol
	locals.GetMembers(match, &localSyms)
	for _, s := range localSyms {
		if fn, ok := s.(*kusto.FunctionSymbol); ok {
			if include&IncludeLocalFunctions == 0 && !fn.IsBuiltIn() {
				continue
			}
		}
		out = append(out, s)
	}

	if b.currentDatabase != nil {
		if match&kusto.MatchTable != 0 {
			for _, t := range b.currentDatabase.Tables() {
				out = append(out, t)
			}
		}
		if match&kusto.MatchFunction != 0 && include&IncludeDatabaseFunctions != 0 {
			for _, f := range b.currentDatabase.Functions() {
				out = append(out, f)
			}
		}
	}

	if match&kusto.MatchDatabase != 0 && b.currentCluster != nil {
		for _, d := range b.currentCluster.Databases() {
			out = append(out, d)
		}
	}
	if match&kusto.MatchCluster != 0 {
		for _, c := range b.globals.Clusters() {
			out = append(out, c)
		}
	}

	if match&kusto.MatchFunction != 0 && include&IncludeBuiltInFunctions != 0 {
		for _, f := range kusto.BuiltInFunctions {
			out = append(out, f)
		}
	}
	return out
}

// localsAt finds the local scope active at the statement containing
// the position.
func (b *Binder) localsAt(root syntax.Node, pos int) *localScope {
	node := positionNode(root, pos)
	if node == nil {
		return b.locals
	}
	parents := parentMap(root)
	for n := node; n != nil; n = parents[n] {
		stmt, ok := n.(syntax.Statement)
		if !ok {
			continue
		}
		if scope, ok := b.stmtScopes[stmt]; ok {
			return scope
		}
	}
	return b.locals
}
