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

// SemanticInfo is the annotation binding attaches to every expression
// node. ResultType is never nil: unknown types are the error sentinel.
type SemanticInfo struct {
	ReferencedSymbol    kusto.Symbol
	ReferencedSignature *kusto.Signature
	ResultType          kusto.TypeSymbol
	Diagnostics         []kusto.Diagnostic
	Constant            bool
	ConstantValue       interface{}
	Expansion           *Expansion
}

// Expansion is the bound body of a user or database function at a
// specific call site.
type Expansion struct {
	Root       *syntax.FunctionBody
	ReturnType kusto.TypeSymbol
	Info       SemanticMap
	Facts      kusto.FunctionBodyFacts
}

// SemanticInfoSetter receives the annotation for each bound node. The
// default setter writes a side table; callers may substitute their own
// node decoration.
type SemanticInfoSetter func(node syntax.Node, info *SemanticInfo)

// SemanticMap is the default annotation side table, keyed by node
// identity.
type SemanticMap map[syntax.Node]*SemanticInfo

// Get returns the annotation for a node, or nil.
func (m SemanticMap) Get(node syntax.Node) *SemanticInfo { return m[node] }

// Setter returns a SemanticInfoSetter writing into the map.
func (m SemanticMap) Setter() SemanticInfoSetter {
	return func(node syntax.Node, info *SemanticInfo) { m[node] = info }
}

func errorInfo(diags ...kusto.Diagnostic) *SemanticInfo {
	return &SemanticInfo{ResultType: kusto.ErrorType, Diagnostics: diags}
}

func typeInfo(t kusto.TypeSymbol) *SemanticInfo {
	if t == nil {
		t = kusto.ErrorType
	}
	return &SemanticInfo{ResultType: t}
}

func symbolInfo(sym kusto.Symbol) *SemanticInfo {
	if sym == nil {
		return errorInfo()
	}
	return &SemanticInfo{ReferencedSymbol: sym, ResultType: sym.ResultType()}
}

// isErrorInfo reports whether any operand type already failed; callers
// suppress their own diagnostics then (root-cause rule).
func isErrorInfo(infos ...*SemanticInfo) bool {
	for _, in := range infos {
		if in != nil && kusto.IsError(in.ResultType) {
			return true
		}
	}
	return false
}
