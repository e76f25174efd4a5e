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
)

// ScopeKind selects which function namespaces are visible.
type ScopeKind int

const (
	// ScopeNormal sees scalar functions and everything else.
	ScopeNormal ScopeKind = iota
	// ScopeAggregate sees aggregate functions too (summarize,
	// make-series, top-nested aggregates).
	ScopeAggregate
	// ScopePlugIn sees plug-in functions (evaluate).
	ScopePlugIn
)

// localScope is one layer of let bindings, as-named tables, function
// parameters and declared functions. Layers chain to their parent;
// lookups walk outward.
type localScope struct {
	parent  *localScope
	symbols []kusto.Symbol
}

func newLocalScope(parent *localScope) *localScope {
	return &localScope{parent: parent}
}

// Add declares a symbol in this layer. Earlier declarations of the same
// name stay in place: Lookup returns all of them.
func (s *localScope) Add(sym kusto.Symbol) {
	if sym == nil {
		return
	}
	s.symbols = append(s.symbols, sym)
}

// Lookup collects every symbol answering to name across all reachable
// layers. Declarations do not shadow: a name declared in two
// overlapping scopes resolves ambiguously, which name binding reports
// as a group.
func (s *localScope) Lookup(name string, out *[]kusto.Symbol) {
	for layer := s; layer != nil; layer = layer.parent {
		for i := len(layer.symbols) - 1; i >= 0; i-- {
			sym := layer.symbols[i]
			if !kusto.NameMatches(name, sym.Name()) {
				continue
			}
			if contains(*out, sym) {
				continue
			}
			*out = append(*out, sym)
		}
	}
}

func contains(symbols []kusto.Symbol, sym kusto.Symbol) bool {
	for _, existing := range symbols {
		if existing == sym {
			return true
		}
	}
	return false
}

// GetMembers lists every visible symbol, innermost first, skipping
// shadowed names.
func (s *localScope) GetMembers(match kusto.SymbolMatch, out *[]kusto.Symbol) {
	start := len(*out)
	for layer := s; layer != nil; layer = layer.parent {
		for i := len(layer.symbols) - 1; i >= 0; i-- {
			sym := layer.symbols[i]
			if !matchesLocal(sym, match) {
				continue
			}
			if shadowed(*out, start, sym.Name()) {
				continue
			}
			*out = append(*out, sym)
		}
	}
}

func shadowed(symbols []kusto.Symbol, from int, name string) bool {
	for _, existing := range symbols[from:] {
		if kusto.NameMatches(name, existing.Name()) {
			return true
		}
	}
	return false
}

func matchesLocal(sym kusto.Symbol, match kusto.SymbolMatch) bool {
	switch sym.Kind() {
	case kusto.KindVariable, kusto.KindParameter:
		return match&kusto.MatchLocal != 0
	case kusto.KindFunction, kusto.KindPattern:
		return match&kusto.MatchFunction != 0 || match&kusto.MatchLocal != 0
	case kusto.KindTable:
		return match&kusto.MatchTable != 0 || match&kusto.MatchLocal != 0
	default:
		return match&kusto.MatchLocal != 0
	}
}
