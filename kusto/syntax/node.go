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

// Package syntax defines the immutable syntax tree the binder consumes.
// The tree carries no semantic state; binding attaches information
// through a side table keyed by node identity.
package syntax

import "github.com/kustoql/go-kusto-server/kusto"

// Node is any syntax tree node.
type Node interface {
	Span() kusto.Span
	Children() []Node
}

// Expression is a node that produces a value when bound.
type Expression interface {
	Node
	expression()
}

// Statement is a top-level statement.
type Statement interface {
	Node
	statement()
}

// QueryOperator is a pipe-chained operator. Operators are expressions:
// several of them (range, union, find, search, print) may head a
// pipeline with no input.
type QueryOperator interface {
	Expression
	queryOperator()
}

// Fragment carries the source span; every node embeds it.
type Fragment struct {
	SourceSpan kusto.Span
}

func (f *Fragment) Span() kusto.Span { return f.SourceSpan }

// Walk visits the tree depth-first, parents before children. The visit
// function returns false to prune the subtree.
func Walk(n Node, visit func(Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, visit)
	}
}

// NodeAt returns the deepest node whose span contains the position,
// preferring later siblings when spans nest ambiguously.
func NodeAt(root Node, pos int) Node {
	var found Node
	var search func(n Node)
	search = func(n Node) {
		if n == nil {
			return
		}
		if n.Span().Contains(pos) || n.Span() == (kusto.Span{}) {
			if n.Span().Contains(pos) {
				found = n
			}
			for _, c := range n.Children() {
				search(c)
			}
		}
	}
	search(root)
	return found
}

// addExpr appends an expression child when present.
func addExpr(dst []Node, e Expression) []Node {
	if e != nil {
		dst = append(dst, e)
	}
	return dst
}

// addExprs appends all expression children.
func addExprs(dst []Node, exprs []Expression) []Node {
	for _, e := range exprs {
		if e != nil {
			dst = append(dst, e)
		}
	}
	return dst
}
