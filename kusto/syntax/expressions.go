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

package syntax

import "github.com/kustoql/go-kusto-server/kusto"

// Literal is a scalar literal. Value holds the parsed Go value; Text is
// the raw source text.
type Literal struct {
	Fragment
	Type  *kusto.ScalarType
	Value interface{}
	Text  string
}

func (l *Literal) expression()      {}
func (l *Literal) Children() []Node { return nil }

// NameReference is a bare or bracket-quoted identifier.
type NameReference struct {
	Fragment
	Name string
}

func (n *NameReference) expression()      {}
func (n *NameReference) Children() []Node { return nil }

// PathExpression is a dotted member access. The selector is resolved
// inside the member namespace of the left-hand value.
type PathExpression struct {
	Fragment
	Expr     Expression
	Selector Expression
}

func (p *PathExpression) expression() {}
func (p *PathExpression) Children() []Node {
	return addExpr(addExpr(nil, p.Expr), p.Selector)
}

// ElementExpression is a bracketed element access, e.g. d["key"].
type ElementExpression struct {
	Fragment
	Expr  Expression
	Index Expression
}

func (e *ElementExpression) expression() {}
func (e *ElementExpression) Children() []Node {
	return addExpr(addExpr(nil, e.Expr), e.Index)
}

// Call is a function invocation.
type Call struct {
	Fragment
	Name *NameReference
	Args []Expression
}

func (c *Call) expression() {}
func (c *Call) Children() []Node {
	var out []Node
	if c.Name != nil {
		out = append(out, c.Name)
	}
	return addExprs(out, c.Args)
}

// SimpleNamedExpression is `name = expr`: a declared projection column,
// a named argument, or an operator parameter.
type SimpleNamedExpression struct {
	Fragment
	Name *NameReference
	Expr Expression
}

func (s *SimpleNamedExpression) expression() {}
func (s *SimpleNamedExpression) Children() []Node {
	var out []Node
	if s.Name != nil {
		out = append(out, s.Name)
	}
	return addExpr(out, s.Expr)
}

// CompoundNamedExpression is `(a, b) = expr`. The binder only ever
// rejects it for named arguments; it exists so the parser has somewhere
// to put the form.
type CompoundNamedExpression struct {
	Fragment
	Names []*NameReference
	Expr  Expression
}

func (c *CompoundNamedExpression) expression() {}
func (c *CompoundNamedExpression) Children() []Node {
	var out []Node
	for _, n := range c.Names {
		out = append(out, n)
	}
	return addExpr(out, c.Expr)
}

// BinaryExpression applies a built-in binary operator.
type BinaryExpression struct {
	Fragment
	Op    kusto.OperatorKind
	Left  Expression
	Right Expression
}

func (b *BinaryExpression) expression() {}
func (b *BinaryExpression) Children() []Node {
	return addExpr(addExpr(nil, b.Left), b.Right)
}

// PrefixUnaryExpression applies unary plus or minus.
type PrefixUnaryExpression struct {
	Fragment
	Op   kusto.OperatorKind
	Expr Expression
}

func (p *PrefixUnaryExpression) expression()      {}
func (p *PrefixUnaryExpression) Children() []Node { return addExpr(nil, p.Expr) }

// InExpression is `x in (a, b, c)` and its variants.
type InExpression struct {
	Fragment
	Op     kusto.OperatorKind
	Left   Expression
	Values []Expression
}

func (i *InExpression) expression() {}
func (i *InExpression) Children() []Node {
	return addExprs(addExpr(nil, i.Left), i.Values)
}

// BetweenExpression is `x between (low .. high)` and its negation.
type BetweenExpression struct {
	Fragment
	Op   kusto.OperatorKind
	Left Expression
	Low  Expression
	High Expression
}

func (b *BetweenExpression) expression() {}
func (b *BetweenExpression) Children() []Node {
	return addExpr(addExpr(addExpr(nil, b.Left), b.Low), b.High)
}

// StarExpression is the `*` argument or projection form.
type StarExpression struct {
	Fragment
}

func (s *StarExpression) expression()      {}
func (s *StarExpression) Children() []Node { return nil }

// ParenExpression preserves explicit grouping.
type ParenExpression struct {
	Fragment
	Expr Expression
}

func (p *ParenExpression) expression()      {}
func (p *ParenExpression) Children() []Node { return addExpr(nil, p.Expr) }

// OrderingKind tags sort expressions.
type OrderingKind int

const (
	OrderingUnspecified OrderingKind = iota
	OrderingAscending
	OrderingDescending
)

// OrderedExpression is an expression with an asc/desc tag, used by
// sort, top and project-reorder.
type OrderedExpression struct {
	Fragment
	Expr     Expression
	Ordering OrderingKind
}

func (o *OrderedExpression) expression()      {}
func (o *OrderedExpression) Children() []Node { return addExpr(nil, o.Expr) }

// PrimitiveTypeExpression names a scalar type, e.g. `long`.
type PrimitiveTypeExpression struct {
	Fragment
	TypeName string
}

func (t *PrimitiveTypeExpression) expression()      {}
func (t *PrimitiveTypeExpression) Children() []Node { return nil }

// SchemaTypeExpression declares a tabular type, e.g. `(a: long, b:
// string)`. Star declares an open schema.
type SchemaTypeExpression struct {
	Fragment
	Columns []*NameAndTypeDecl
	Star    bool
}

func (t *SchemaTypeExpression) expression() {}
func (t *SchemaTypeExpression) Children() []Node {
	var out []Node
	for _, c := range t.Columns {
		out = append(out, c)
	}
	return out
}

// NameAndTypeDecl is a `name: type` declaration inside schemas, parse
// patterns and datatable headers.
type NameAndTypeDecl struct {
	Fragment
	Name *NameReference
	Type Expression
}

func (n *NameAndTypeDecl) expression() {}
func (n *NameAndTypeDecl) Children() []Node {
	var out []Node
	if n.Name != nil {
		out = append(out, n.Name)
	}
	return addExpr(out, n.Type)
}

// DataTableExpression is the `datatable (schema) [values]` source form.
type DataTableExpression struct {
	Fragment
	Columns []*NameAndTypeDecl
	Values  []Expression
}

func (d *DataTableExpression) expression() {}
func (d *DataTableExpression) Children() []Node {
	var out []Node
	for _, c := range d.Columns {
		out = append(out, c)
	}
	return addExprs(out, d.Values)
}

// FunctionParameter is one formal parameter of a lambda declaration.
type FunctionParameter struct {
	Fragment
	Name         *NameReference
	Type         Expression
	DefaultValue Expression
}

func (f *FunctionParameter) expression() {}
func (f *FunctionParameter) Children() []Node {
	var out []Node
	if f.Name != nil {
		out = append(out, f.Name)
	}
	out = addExpr(out, f.Type)
	return addExpr(out, f.DefaultValue)
}

// FunctionBody is `{ statements...; expr }`. Source preserves the body
// text so call sites can re-parse it during inline expansion.
type FunctionBody struct {
	Fragment
	Statements []Statement
	Expr       Expression
	Source     string
}

func (f *FunctionBody) expression() {}
func (f *FunctionBody) Children() []Node {
	var out []Node
	for _, s := range f.Statements {
		out = append(out, s)
	}
	return addExpr(out, f.Expr)
}

// FunctionDeclaration is a lambda: `(params) { body }`.
type FunctionDeclaration struct {
	Fragment
	Parameters []*FunctionParameter
	Body       *FunctionBody
}

func (f *FunctionDeclaration) expression() {}
func (f *FunctionDeclaration) Children() []Node {
	var out []Node
	for _, p := range f.Parameters {
		out = append(out, p)
	}
	if f.Body != nil {
		out = append(out, f.Body)
	}
	return out
}

// PipeExpression chains a query operator onto a tabular input.
type PipeExpression struct {
	Fragment
	Expr     Expression
	Operator QueryOperator
}

func (p *PipeExpression) expression() {}
func (p *PipeExpression) Children() []Node {
	out := addExpr(nil, p.Expr)
	if p.Operator != nil {
		out = append(out, p.Operator)
	}
	return out
}
