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

// LetStatement binds a name in the local scope.
type LetStatement struct {
	Fragment
	Name *NameReference
	Expr Expression
}

func (s *LetStatement) statement() {}
func (s *LetStatement) Children() []Node {
	var out []Node
	if s.Name != nil {
		out = append(out, s.Name)
	}
	return addExpr(out, s.Expr)
}

// ExpressionStatement wraps the query expression of a block.
type ExpressionStatement struct {
	Fragment
	Expr Expression
}

func (s *ExpressionStatement) statement()       {}
func (s *ExpressionStatement) Children() []Node { return addExpr(nil, s.Expr) }

// QueryBlock is the root node of a parsed query: let statements
// followed by one query expression.
type QueryBlock struct {
	Fragment
	Statements []Statement
}

func (b *QueryBlock) Children() []Node {
	var out []Node
	for _, s := range b.Statements {
		out = append(out, s)
	}
	return out
}
