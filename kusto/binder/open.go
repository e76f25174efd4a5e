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

// openEntities lazily synthesizes clusters, databases, tables and
// columns for names that are unknown but permitted by an open schema.
// Every allocation is memoized for the life of the binder instance so
// repeated references agree on identity.
type openEntities struct {
	clusters  map[string]*kusto.ClusterSymbol
	databases map[openKey]*kusto.DatabaseSymbol
	tables    map[openKey]*kusto.TableSymbol
	columns   map[openKey]*kusto.Column
	inferred  map[*kusto.TableSymbol][]*kusto.Column
}

type openKey struct {
	owner interface{}
	name  string
}

func newOpenEntities() *openEntities {
	return &openEntities{
		clusters:  make(map[string]*kusto.ClusterSymbol),
		databases: make(map[openKey]*kusto.DatabaseSymbol),
		tables:    make(map[openKey]*kusto.TableSymbol),
		columns:   make(map[openKey]*kusto.Column),
		inferred:  make(map[*kusto.TableSymbol][]*kusto.Column),
	}
}

func lowerKey(owner interface{}, name string) openKey {
	return openKey{owner: owner, name: strings.ToLower(name)}
}

// OpenCluster returns the open cluster synthesized for an unknown
// cluster name.
func (o *openEntities) OpenCluster(name string) *kusto.ClusterSymbol {
	key := strings.ToLower(name)
	if c, ok := o.clusters[key]; ok {
		return c
	}
	c := kusto.NewOpenClusterSymbol(name)
	o.clusters[key] = c
	return c
}

// OpenDatabase returns the open database synthesized for an unknown
// name under an open cluster.
func (o *openEntities) OpenDatabase(cluster *kusto.ClusterSymbol, name string) *kusto.DatabaseSymbol {
	key := lowerKey(cluster, name)
	if d, ok := o.databases[key]; ok {
		return d
	}
	d := kusto.NewOpenDatabaseSymbol(name)
	o.databases[key] = d
	return d
}

// OpenTable returns the open table synthesized for an unknown name
// under an open database.
func (o *openEntities) OpenTable(db *kusto.DatabaseSymbol, name string) *kusto.TableSymbol {
	key := lowerKey(db, name)
	if t, ok := o.tables[key]; ok {
		return t
	}
	t := kusto.NewOpenTableSymbol(name)
	o.tables[key] = t
	return t
}

// InferColumn returns the dynamic-typed column synthesized for an
// undeclared name referenced against an open table. The column extends
// the table's visible row scope monotonically for this binding.
func (o *openEntities) InferColumn(table *kusto.TableSymbol, name string) *kusto.Column {
	key := lowerKey(table, name)
	if c, ok := o.columns[key]; ok {
		return c
	}
	c := kusto.NewColumn(name, kusto.TypeDynamic)
	o.columns[key] = c
	o.inferred[table] = append(o.inferred[table], c)
	return c
}

// Inferred lists the columns inferred against a table so far.
func (o *openEntities) Inferred(table *kusto.TableSymbol) []*kusto.Column {
	return o.inferred[table]
}

// lookupColumn finds a visible column of a table: declared first, then
// previously inferred.
func (b *Binder) lookupColumn(table *kusto.TableSymbol, name string) (*kusto.Column, bool) {
	if table == nil {
		return nil, false
	}
	if c, ok := table.Column(name); ok {
		return c, true
	}
	for _, c := range b.open.Inferred(table) {
		if strings.EqualFold(c.Name(), name) {
			return c, true
		}
	}
	return nil, false
}

// withInferred returns the table extended by the columns inferred so
// far; the declared columns stay a prefix.
func (b *Binder) withInferred(table *kusto.TableSymbol) *kusto.TableSymbol {
	if table == nil {
		return nil
	}
	inferred := b.open.Inferred(table)
	if len(inferred) == 0 {
		return table
	}
	return table.AddColumns(inferred...)
}

// visibleColumns lists a row scope's declared plus inferred columns.
func (b *Binder) visibleColumns(table *kusto.TableSymbol) []*kusto.Column {
	if table == nil {
		return nil
	}
	cols := table.Columns()
	inferred := b.open.Inferred(table)
	if len(inferred) == 0 {
		return cols
	}
	out := make([]*kusto.Column, 0, len(cols)+len(inferred))
	out = append(out, cols...)
	out = append(out, inferred...)
	return out
}
