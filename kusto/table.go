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

package kusto

import "strings"

// TableSymbol is an ordered list of columns, optionally named. An open
// table permits references to undeclared columns, which the binder
// infers as dynamic-typed on first use.
type TableSymbol struct {
	name    string
	columns []*Column
	open    bool
}

// NewTableSymbol constructs a closed table.
func NewTableSymbol(name string, columns ...*Column) *TableSymbol {
	return &TableSymbol{name: name, columns: columns}
}

// NewOpenTableSymbol constructs an open table.
func NewOpenTableSymbol(name string, columns ...*Column) *TableSymbol {
	return &TableSymbol{name: name, columns: columns, open: true}
}

func (t *TableSymbol) Name() string           { return t.name }
func (t *TableSymbol) Kind() SymbolKind       { return KindTable }
func (t *TableSymbol) ResultType() TypeSymbol { return t }
func (t *TableSymbol) typeSymbol()            {}

func (t *TableSymbol) Columns() []*Column { return t.columns }
func (t *TableSymbol) IsOpen() bool       { return t.open }

// Column finds a declared column by name, case-insensitively.
func (t *TableSymbol) Column(name string) (*Column, bool) {
	for _, c := range t.columns {
		if strings.EqualFold(c.Name(), name) {
			return c, true
		}
	}
	return nil, false
}

// WithName returns a copy of the table under a new name.
func (t *TableSymbol) WithName(name string) *TableSymbol {
	if name == t.name {
		return t
	}
	return &TableSymbol{name: name, columns: t.columns, open: t.open}
}

// WithColumns returns a copy of the table with a new column list.
func (t *TableSymbol) WithColumns(columns []*Column) *TableSymbol {
	return &TableSymbol{name: t.name, columns: columns, open: t.open}
}

// AddColumns returns a copy of the table with extra columns appended.
// The declared columns remain a prefix of the result.
func (t *TableSymbol) AddColumns(extra ...*Column) *TableSymbol {
	if len(extra) == 0 {
		return t
	}
	cols := make([]*Column, 0, len(t.columns)+len(extra))
	cols = append(cols, t.columns...)
	cols = append(cols, extra...)
	return &TableSymbol{name: t.name, columns: cols, open: t.open}
}

func (t *TableSymbol) GetMembers(name string, match SymbolMatch, out *[]Symbol) {
	if match&MatchColumn == 0 {
		return
	}
	for _, c := range t.columns {
		if NameMatches(name, c.Name()) {
			*out = append(*out, c)
		}
	}
}

// Tuple returns the whole-row tuple of the table.
func (t *TableSymbol) Tuple() *TupleSymbol {
	return NewTupleSymbol(t.columns...)
}
