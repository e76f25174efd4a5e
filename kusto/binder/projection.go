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
	"strconv"
	"strings"

	"github.com/kustoql/go-kusto-server/kusto"
)

// ProjectionBuilder accumulates the output row schema of a
// project-like operator: ordered columns, the set of declared names,
// and source columns marked do-not-add-again.
type ProjectionBuilder struct {
	columns  []*kusto.Column
	declared map[string]int
	doNotAdd map[*kusto.Column]struct{}
}

func NewProjectionBuilder() *ProjectionBuilder {
	return &ProjectionBuilder{
		declared: make(map[string]int),
		doNotAdd: make(map[*kusto.Column]struct{}),
	}
}

// Columns returns the schema accumulated so far.
func (p *ProjectionBuilder) Columns() []*kusto.Column { return p.columns }

// Table materializes the projection as an anonymous table.
func (p *ProjectionBuilder) Table() *kusto.TableSymbol {
	return kusto.NewTableSymbol("", p.columns...)
}

// Declare adds an explicitly named column. With replace set an existing
// declaration updates in place; without it a duplicate name is
// reported.
func (p *ProjectionBuilder) Declare(col *kusto.Column, replace bool) (ok bool) {
	key := strings.ToLower(col.Name())
	if idx, exists := p.declared[key]; exists {
		if replace {
			p.columns[idx] = col
			return true
		}
		return false
	}
	p.declared[key] = len(p.columns)
	p.columns = append(p.columns, col)
	return true
}

// Add appends a column under a unique name, suffixing a counter when
// the name is taken. Columns in the do-not-add set are skipped. With
// doNotRepeat set, the same column will be skipped if added again.
func (p *ProjectionBuilder) Add(col *kusto.Column, doNotRepeat, replace bool) {
	if _, skip := p.doNotAdd[col]; skip {
		return
	}
	if doNotRepeat {
		p.doNotAdd[col] = struct{}{}
	}
	key := strings.ToLower(col.Name())
	if idx, exists := p.declared[key]; exists {
		if replace {
			p.columns[idx] = col
			return
		}
		unique := p.uniqueName(col.Name())
		col = col.WithName(unique)
		key = strings.ToLower(unique)
	}
	p.declared[key] = len(p.columns)
	p.columns = append(p.columns, col)
}

// Rename renames an existing entry, reporting whether it was found.
func (p *ProjectionBuilder) Rename(fromName, toName string) bool {
	key := strings.ToLower(fromName)
	idx, exists := p.declared[key]
	if !exists {
		return false
	}
	delete(p.declared, key)
	p.columns[idx] = p.columns[idx].WithName(toName)
	p.declared[strings.ToLower(toName)] = idx
	return true
}

// DoNotAdd marks a source column consumed so later wildcard emission
// skips it.
func (p *ProjectionBuilder) DoNotAdd(col *kusto.Column) {
	p.doNotAdd[col] = struct{}{}
}

// HasName reports whether a name is already declared.
func (p *ProjectionBuilder) HasName(name string) bool {
	_, ok := p.declared[strings.ToLower(name)]
	return ok
}

func (p *ProjectionBuilder) uniqueName(name string) string {
	for i := 1; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if _, taken := p.declared[strings.ToLower(candidate)]; !taken {
			return candidate
		}
	}
}
