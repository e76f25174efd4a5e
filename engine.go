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

// Package kqle ties the front end and the binder together behind one
// engine handle for embedders.
package kqle

import (
	"context"

	"github.com/kustoql/go-kusto-server/kusto"
	"github.com/kustoql/go-kusto-server/kusto/binder"
	"github.com/kustoql/go-kusto-server/kusto/parse"
	"github.com/kustoql/go-kusto-server/kusto/syntax"
)

// Engine analyzes queries against one catalog snapshot.
type Engine struct {
	globals *kusto.GlobalState
}

// New creates an engine over a catalog snapshot.
func New(globals *kusto.GlobalState) *Engine {
	return &Engine{globals: globals}
}

// Globals returns the engine's catalog snapshot.
func (e *Engine) Globals() *kusto.GlobalState { return e.globals }

// Analysis is the result of analyzing one query: the parsed tree, the
// semantic annotations, and every diagnostic found.
type Analysis struct {
	Root        *syntax.QueryBlock
	Info        binder.SemanticMap
	Diagnostics []kusto.Diagnostic
}

// ResultType returns the type of the query's final expression.
func (a *Analysis) ResultType() kusto.TypeSymbol {
	if a.Root == nil || len(a.Root.Statements) == 0 {
		return kusto.VoidType
	}
	last := a.Root.Statements[len(a.Root.Statements)-1]
	if es, ok := last.(*syntax.ExpressionStatement); ok {
		if info := a.Info.Get(es.Expr); info != nil {
			return info.ResultType
		}
	}
	return kusto.VoidType
}

// Analyze parses and binds a query. Semantic and syntax problems land
// in Analysis.Diagnostics; the error reports only cancellation.
func (e *Engine) Analyze(ctx context.Context, query string) (*Analysis, error) {
	root, parseDiags := parse.Parse(query)
	info, err := binder.Bind(ctx, root, e.globals)
	if err != nil {
		return nil, err
	}
	diags := append([]kusto.Diagnostic(nil), parseDiags...)
	syntax.Walk(root, func(n syntax.Node) bool {
		if si := info.Get(n); si != nil {
			diags = append(diags, si.Diagnostics...)
		}
		return true
	})
	return &Analysis{Root: root, Info: info, Diagnostics: diags}, nil
}

// RowScopeAt parses the query and reports the row scope at a position.
func (e *Engine) RowScopeAt(ctx context.Context, query string, position int) (*kusto.TableSymbol, error) {
	root, _ := parse.Parse(query)
	return binder.GetRowScope(ctx, root, position, e.globals)
}

// SymbolsAt parses the query and reports the symbols visible at a
// position.
func (e *Engine) SymbolsAt(ctx context.Context, query string, position int) ([]kusto.Symbol, error) {
	root, _ := parse.Parse(query)
	return binder.GetSymbolsInScope(ctx, root, position, e.globals,
		kusto.MatchAny, binder.IncludeAllFunctions)
}
