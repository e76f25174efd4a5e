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

// Package binder performs semantic analysis of parsed queries: name
// resolution, type checking, overload resolution, schema inference
// through piped operators, and inline expansion of user functions.
// Binding never fails with an error for semantic problems; every
// failure is a diagnostic attached to the node it belongs to.
package binder

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/kustoql/go-kusto-server/kusto"
	"github.com/kustoql/go-kusto-server/kusto/syntax"
)

// IncludeFunctionKinds filters GetSymbolsInScope results.
type IncludeFunctionKinds uint

const (
	IncludeBuiltInFunctions IncludeFunctionKinds = 1 << iota
	IncludeDatabaseFunctions
	IncludeLocalFunctions

	IncludeAllFunctions = IncludeBuiltInFunctions | IncludeDatabaseFunctions | IncludeLocalFunctions
)

// Binder carries the mutable context of one binding: the scopes active
// at the current tree position, the catalog snapshot, and per-binding
// caches. A Binder is confined to a single goroutine.
type Binder struct {
	ctx     context.Context
	globals *kusto.GlobalState

	currentCluster  *kusto.ClusterSymbol
	currentDatabase *kusto.DatabaseSymbol
	locals          *localScope
	rowScope        *kusto.TableSymbol
	rightRowScope   *kusto.TableSymbol
	pathScope        kusto.Symbol
	scopeKind        ScopeKind
	aliasedDatabases map[string]*kusto.DatabaseSymbol

	infoMap SemanticMap
	setter  SemanticInfoSetter

	localCache  *LocalBindingCache
	globalCache *GlobalBindingCache

	open *openEntities

	// rowScopes records the input row scope of every query operator
	// node, for the positional entry points.
	rowScopes map[syntax.Node]*kusto.TableSymbol
	// stmtScopes records the local scope active when each top-level
	// statement began to bind.
	stmtScopes map[syntax.Node]*localScope

	log       *logrus.Entry
	cancelled bool
}

// Option configures a binding run.
type Option func(*Binder)

// WithLocalCache supplies a caller-owned local binding cache.
func WithLocalCache(c *LocalBindingCache) Option {
	return func(b *Binder) { b.localCache = c }
}

// WithSemanticInfoSetter routes annotations to a caller-owned setter in
// addition to the binder's own side table.
func WithSemanticInfoSetter(s SemanticInfoSetter) Option {
	return func(b *Binder) { b.setter = s }
}

// WithDatabase overrides the database in scope for this binding.
func WithDatabase(d *kusto.DatabaseSymbol) Option {
	return func(b *Binder) { b.currentDatabase = d }
}

// WithCluster overrides the cluster in scope for this binding.
func WithCluster(c *kusto.ClusterSymbol) Option {
	return func(b *Binder) { b.currentCluster = c }
}

func newBinder(ctx context.Context, globals *kusto.GlobalState, opts ...Option) *Binder {
	b := &Binder{
		ctx:              ctx,
		globals:          globals,
		currentCluster:   globals.Cluster(),
		currentDatabase:  globals.Database(),
		locals:           newLocalScope(nil),
		aliasedDatabases: make(map[string]*kusto.DatabaseSymbol),
		infoMap:          make(SemanticMap),
		globalCache:      cacheForGlobals(globals),
		open:             newOpenEntities(),
		rowScopes:        make(map[syntax.Node]*kusto.TableSymbol),
		stmtScopes:       make(map[syntax.Node]*localScope),
		log:              logrus.WithField("component", "binder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.localCache == nil {
		b.localCache = NewLocalBindingCache()
	}
	return b
}

// Bind walks the tree and attaches SemanticInfo to every expression.
// Semantic failures become diagnostics; the returned error is only ever
// the context's cancellation error.
func Bind(ctx context.Context, root syntax.Node, globals *kusto.GlobalState, opts ...Option) (SemanticMap, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "binder.Bind")
	defer span.Finish()

	b := newBinder(ctx, globals, opts...)
	b.globalCache.Lock()
	defer b.globalCache.Unlock()

	b.bindRoot(root)
	if b.cancelled {
		return b.infoMap, ctx.Err()
	}
	return b.infoMap, nil
}

// GetComputedReturnType resolves a signature's declared return type,
// expanding the body when the signature computes it.
func GetComputedReturnType(ctx context.Context, sig *kusto.Signature, globals *kusto.GlobalState, opts ...Option) kusto.TypeSymbol {
	span, ctx := opentracing.StartSpanFromContext(ctx, "binder.GetComputedReturnType")
	defer span.Finish()

	b := newBinder(ctx, globals, opts...)
	b.globalCache.Lock()
	defer b.globalCache.Unlock()

	return b.signatureResultType(sig, nil, kusto.Span{})
}

// GetSymbolsInScope returns the symbols visible at a source position.
func GetSymbolsInScope(ctx context.Context, root syntax.Node, position int, globals *kusto.GlobalState,
	match kusto.SymbolMatch, include IncludeFunctionKinds, opts ...Option) ([]kusto.Symbol, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "binder.GetSymbolsInScope")
	defer span.Finish()

	b := newBinder(ctx, globals, opts...)
	b.globalCache.Lock()
	defer b.globalCache.Unlock()

	b.bindRoot(root)
	if b.cancelled {
		return nil, ctx.Err()
	}
	return b.symbolsAt(root, position, match, include), nil
}

// GetRowScope returns the row scope (the columns in scope) at a source
// position, or nil when the position is outside any tabular context.
func GetRowScope(ctx context.Context, root syntax.Node, position int, globals *kusto.GlobalState, opts ...Option) (*kusto.TableSymbol, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "binder.GetRowScope")
	defer span.Finish()

	b := newBinder(ctx, globals, opts...)
	b.globalCache.Lock()
	defer b.globalCache.Unlock()

	b.bindRoot(root)
	if b.cancelled {
		return nil, ctx.Err()
	}
	return b.rowScopeAt(root, position), nil
}

// checkCancel cooperatively polls the context at statement- and
// operator-level rules.
func (b *Binder) checkCancel() bool {
	if b.cancelled {
		return true
	}
	select {
	case <-b.ctx.Done():
		b.cancelled = true
		return true
	default:
		return false
	}
}

// setInfo records the annotation for a node.
func (b *Binder) setInfo(node syntax.Node, info *SemanticInfo) *SemanticInfo {
	if info == nil {
		info = errorInfo()
	}
	if info.ResultType == nil {
		info.ResultType = kusto.ErrorType
	}
	b.infoMap[node] = info
	if b.setter != nil {
		b.setter(node, info)
	}
	return info
}

func (b *Binder) info(node syntax.Node) *SemanticInfo { return b.infoMap[node] }

func (b *Binder) bindRoot(root syntax.Node) {
	switch n := root.(type) {
	case *syntax.QueryBlock:
		for _, stmt := range n.Statements {
			if b.checkCancel() {
				return
			}
			// Each statement gets its own scope layer so positional
			// queries see exactly the declarations preceding it.
			b.locals = newLocalScope(b.locals)
			b.stmtScopes[stmt] = b.locals
			b.bindStatement(stmt)
		}
	case *syntax.FunctionBody:
		b.bindFunctionBody(n)
	case syntax.Expression:
		b.bindExpression(n)
	}
}

func (b *Binder) bindStatement(stmt syntax.Statement) {
	switch s := stmt.(type) {
	case *syntax.LetStatement:
		b.bindLetStatement(s)
	case *syntax.ExpressionStatement:
		b.bindExpression(s.Expr)
	}
}

// bindFunctionBody binds let statements then the final expression and
// returns the body's result info.
func (b *Binder) bindFunctionBody(body *syntax.FunctionBody) *SemanticInfo {
	for _, stmt := range body.Statements {
		if b.checkCancel() {
			break
		}
		b.bindStatement(stmt)
	}
	var info *SemanticInfo
	if body.Expr != nil {
		info = b.bindExpression(body.Expr)
	} else {
		info = typeInfo(kusto.VoidType)
	}
	return b.setInfo(body, &SemanticInfo{
		ResultType:  info.ResultType,
		Diagnostics: nil,
	})
}

func (b *Binder) bindLetStatement(s *syntax.LetStatement) {
	if s.Expr == nil || s.Name == nil {
		return
	}
	if decl, ok := s.Expr.(*syntax.FunctionDeclaration); ok {
		fn := b.bindFunctionDeclaration(s.Name.Name, decl)
		b.locals.Add(fn)
		b.setInfo(s.Name, symbolInfo(fn))
		return
	}
	info := b.bindExpression(s.Expr)
	if db, ok := info.ResultType.(*kusto.DatabaseSymbol); ok {
		// let name = database('x') aliases the database for later
		// database(name) references.
		b.aliasedDatabases[s.Name.Name] = db
	}
	var sym kusto.Symbol
	if info.Constant {
		sym = kusto.NewConstantVariableSymbol(s.Name.Name, info.ResultType, info.ConstantValue)
	} else if table, ok := info.ResultType.(*kusto.TableSymbol); ok {
		sym = kusto.NewVariableSymbol(s.Name.Name, b.withInferred(table))
	} else {
		sym = kusto.NewVariableSymbol(s.Name.Name, info.ResultType)
	}
	b.locals.Add(sym)
	b.setInfo(s.Name, symbolInfo(sym))
}

// bindFunctionDeclaration turns a lambda into a function symbol with a
// computed-return signature over the body source text.
func (b *Binder) bindFunctionDeclaration(name string, decl *syntax.FunctionDeclaration) *kusto.FunctionSymbol {
	var params []*kusto.Parameter
	for _, fp := range decl.Parameters {
		if fp.Name == nil {
			continue
		}
		typ := b.bindTypeExpression(fp.Type)
		p := kusto.NewParameter(fp.Name.Name, typ)
		if fp.DefaultValue != nil {
			p = p.Optional()
		}
		params = append(params, p)
	}
	body := ""
	if decl.Body != nil {
		body = decl.Body.Source
	}
	fn := kusto.NewFunctionSymbol(name, kusto.NewComputedSignature(body, params...))
	b.setInfo(decl, symbolInfo(fn))
	return fn
}

// tableOf coerces an expression's result into a table symbol for row
// scope threading, reporting when it cannot be tabular.
func (b *Binder) tableOf(expr syntax.Expression, info *SemanticInfo) *kusto.TableSymbol {
	switch t := info.ResultType.(type) {
	case *kusto.TableSymbol:
		return t
	}
	if !isErrorInfo(info) {
		b.addDiagnostic(expr, kusto.NewDiagnostic(expr.Span(), kusto.ErrTabularExpected))
	}
	return kusto.NewTableSymbol("")
}

// addDiagnostic appends to a node's existing annotation, or creates an
// error annotation carrying it.
func (b *Binder) addDiagnostic(node syntax.Node, d kusto.Diagnostic) {
	if info, ok := b.infoMap[node]; ok {
		info.Diagnostics = append(info.Diagnostics, d)
		return
	}
	b.setInfo(node, errorInfo(d))
}
