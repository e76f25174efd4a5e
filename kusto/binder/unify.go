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

	"github.com/kustoql/go-kusto-server/kusto"
)

// Column unification: three deterministic procedures merging ordered
// table lists into one table. Results are memoized in the global cache
// when every input is a catalog table of the current database, because
// only then is input identity stable across bindings.

// UnifyByName merges columns by name: one column per name, widened to
// the common scalar type, dynamic when the types cannot agree.
func (b *Binder) UnifyByName(tables []*kusto.TableSymbol) *kusto.TableSymbol {
	return b.unify("byname", tables, unifyByName)
}

// UnifyByNameAndType merges columns by name and type: names whose
// types disagree split into one column per type, suffixed "_<type>".
func (b *Binder) UnifyByNameAndType(tables []*kusto.TableSymbol) *kusto.TableSymbol {
	return b.unify("bynametype", tables, unifyByNameAndType)
}

// CommonColumns intersects the tables' columns by name, keeping the
// first table's declaration of each survivor.
func (b *Binder) CommonColumns(tables []*kusto.TableSymbol) *kusto.TableSymbol {
	return b.unify("common", tables, commonColumns)
}

func (b *Binder) unify(strategy string, tables []*kusto.TableSymbol,
	fn func([]*kusto.TableSymbol) *kusto.TableSymbol) *kusto.TableSymbol {
	if len(tables) == 1 {
		return tables[0]
	}
	cacheable := len(tables) > 0
	for _, t := range tables {
		if !kusto.IsDatabaseTable(b.currentDatabase, t) {
			cacheable = false
			break
		}
	}
	var key uint64
	if cacheable {
		key = unificationKey(strategy, tables)
		if result, ok := b.globalCache.unification(key); ok {
			return result
		}
	}
	result := fn(tables)
	if cacheable {
		b.globalCache.addUnification(key, result)
	}
	return result
}

func unifyByName(tables []*kusto.TableSymbol) *kusto.TableSymbol {
	var order []string
	byName := make(map[string][]*kusto.Column)
	open := false
	for _, t := range tables {
		open = open || t.IsOpen()
		for _, c := range t.Columns() {
			key := strings.ToLower(c.Name())
			if _, ok := byName[key]; !ok {
				order = append(order, key)
			}
			byName[key] = append(byName[key], c)
		}
	}
	var cols []*kusto.Column
	for _, key := range order {
		group := byName[key]
		cols = append(cols, mergeColumns(group))
	}
	result := kusto.NewTableSymbol("", cols...)
	if open {
		result = kusto.NewOpenTableSymbol("", cols...)
	}
	return result
}

// mergeColumns collapses same-named columns to one: the declared column
// when all types agree, the widest common scalar when one exists, else
// dynamic.
func mergeColumns(group []*kusto.Column) *kusto.Column {
	first := group[0]
	same := true
	for _, c := range group[1:] {
		if c.Type() != first.Type() {
			same = false
			break
		}
	}
	if same {
		return first
	}
	types := make([]kusto.TypeSymbol, len(group))
	for i, c := range group {
		types[i] = c.Type()
	}
	if widest := kusto.WidestScalarType(types...); widest != nil {
		allNumeric := true
		for _, t := range types {
			s, ok := t.(*kusto.ScalarType)
			if !ok || !s.IsNumeric() {
				allNumeric = false
				break
			}
		}
		if allNumeric {
			return first.WithType(widest)
		}
	}
	return first.WithType(kusto.TypeDynamic)
}

func unifyByNameAndType(tables []*kusto.TableSymbol) *kusto.TableSymbol {
	type slot struct {
		col   *kusto.Column
		types []kusto.TypeSymbol
	}
	var order []string
	byName := make(map[string][]*kusto.Column)
	open := false
	for _, t := range tables {
		open = open || t.IsOpen()
		for _, c := range t.Columns() {
			key := strings.ToLower(c.Name())
			if _, ok := byName[key]; !ok {
				order = append(order, key)
			}
			byName[key] = append(byName[key], c)
		}
	}
	builder := NewProjectionBuilder()
	for _, key := range order {
		group := byName[key]
		distinct := distinctTypes(group)
		if len(distinct) == 1 {
			builder.Add(group[0], false, false)
			continue
		}
		for _, t := range distinct {
			for _, c := range group {
				if c.Type() == t {
					builder.Add(c.WithName(c.Name()+"_"+kusto.TypeName(t)), false, false)
					break
				}
			}
		}
	}
	cols := builder.Columns()
	if open {
		return kusto.NewOpenTableSymbol("", cols...)
	}
	return kusto.NewTableSymbol("", cols...)
}

func distinctTypes(group []*kusto.Column) []kusto.TypeSymbol {
	var out []kusto.TypeSymbol
	for _, c := range group {
		found := false
		for _, t := range out {
			if t == c.Type() {
				found = true
				break
			}
		}
		if !found {
			out = append(out, c.Type())
		}
	}
	return out
}

func commonColumns(tables []*kusto.TableSymbol) *kusto.TableSymbol {
	if len(tables) == 0 {
		return kusto.NewTableSymbol("")
	}
	var cols []*kusto.Column
	for _, c := range tables[0].Columns() {
		inAll := true
		for _, t := range tables[1:] {
			if _, ok := t.Column(c.Name()); !ok {
				inAll = false
				break
			}
		}
		if inAll {
			cols = append(cols, c)
		}
	}
	return kusto.NewTableSymbol("", cols...)
}
