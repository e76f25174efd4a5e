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

// DatabaseSymbol holds the tables and stored functions of a database.
type DatabaseSymbol struct {
	name      string
	tables    []*TableSymbol
	functions []*FunctionSymbol
	open      bool
}

func NewDatabaseSymbol(name string, members ...Symbol) *DatabaseSymbol {
	d := &DatabaseSymbol{name: name}
	for _, m := range members {
		switch s := m.(type) {
		case *TableSymbol:
			d.tables = append(d.tables, s)
		case *FunctionSymbol:
			d.functions = append(d.functions, s)
		}
	}
	return d
}

func NewOpenDatabaseSymbol(name string, members ...Symbol) *DatabaseSymbol {
	d := NewDatabaseSymbol(name, members...)
	d.open = true
	return d
}

func (d *DatabaseSymbol) Name() string           { return d.name }
func (d *DatabaseSymbol) Kind() SymbolKind       { return KindDatabase }
func (d *DatabaseSymbol) ResultType() TypeSymbol { return d }
func (d *DatabaseSymbol) IsOpen() bool           { return d.open }

// A database is the type of database(...) expressions.
func (d *DatabaseSymbol) typeSymbol() {}

func (d *DatabaseSymbol) Tables() []*TableSymbol       { return d.tables }
func (d *DatabaseSymbol) Functions() []*FunctionSymbol { return d.functions }

// Table finds a table by name, case-insensitively.
func (d *DatabaseSymbol) Table(name string) (*TableSymbol, bool) {
	for _, t := range d.tables {
		if strings.EqualFold(t.Name(), name) {
			return t, true
		}
	}
	return nil, false
}

// Function finds a stored function by name, case-insensitively.
func (d *DatabaseSymbol) Function(name string) (*FunctionSymbol, bool) {
	for _, f := range d.functions {
		if strings.EqualFold(f.Name(), name) {
			return f, true
		}
	}
	return nil, false
}

func (d *DatabaseSymbol) GetMembers(name string, match SymbolMatch, out *[]Symbol) {
	if match&MatchTable != 0 {
		for _, t := range d.tables {
			if NameMatches(name, t.Name()) {
				*out = append(*out, t)
			}
		}
	}
	if match&MatchFunction != 0 {
		for _, f := range d.functions {
			if NameMatches(name, f.Name()) {
				*out = append(*out, f)
			}
		}
	}
}

// ClusterSymbol holds the databases of a cluster.
type ClusterSymbol struct {
	name      string
	databases []*DatabaseSymbol
	open      bool
}

func NewClusterSymbol(name string, databases ...*DatabaseSymbol) *ClusterSymbol {
	return &ClusterSymbol{name: name, databases: databases}
}

func NewOpenClusterSymbol(name string, databases ...*DatabaseSymbol) *ClusterSymbol {
	return &ClusterSymbol{name: name, databases: databases, open: true}
}

func (c *ClusterSymbol) Name() string           { return c.name }
func (c *ClusterSymbol) Kind() SymbolKind       { return KindCluster }
func (c *ClusterSymbol) ResultType() TypeSymbol { return c }
func (c *ClusterSymbol) IsOpen() bool           { return c.open }

// A cluster is the type of cluster(...) expressions.
func (c *ClusterSymbol) typeSymbol() {}

func (c *ClusterSymbol) Databases() []*DatabaseSymbol { return c.databases }

// Database finds a database by name, case-insensitively.
func (c *ClusterSymbol) Database(name string) (*DatabaseSymbol, bool) {
	for _, d := range c.databases {
		if strings.EqualFold(d.Name(), name) {
			return d, true
		}
	}
	return nil, false
}

func (c *ClusterSymbol) GetMembers(name string, match SymbolMatch, out *[]Symbol) {
	if match&MatchDatabase == 0 {
		return
	}
	for _, d := range c.databases {
		if NameMatches(name, d.Name()) {
			*out = append(*out, d)
		}
	}
}

// GlobalState is an immutable catalog snapshot: the known clusters plus
// the cluster and database in scope by default. It is safe to share
// across concurrent bindings.
type GlobalState struct {
	clusters []*ClusterSymbol
	cluster  *ClusterSymbol
	database *DatabaseSymbol
}

func NewGlobalState(clusters ...*ClusterSymbol) *GlobalState {
	g := &GlobalState{clusters: clusters}
	if len(clusters) > 0 {
		g.cluster = clusters[0]
		if dbs := clusters[0].Databases(); len(dbs) > 0 {
			g.database = dbs[0]
		}
	}
	return g
}

// WithCluster returns a copy of the state with a different cluster in
// scope.
func (g *GlobalState) WithCluster(c *ClusterSymbol) *GlobalState {
	ng := *g
	ng.cluster = c
	return &ng
}

// WithDatabase returns a copy of the state with a different database in
// scope.
func (g *GlobalState) WithDatabase(d *DatabaseSymbol) *GlobalState {
	ng := *g
	ng.database = d
	return &ng
}

func (g *GlobalState) Clusters() []*ClusterSymbol { return g.clusters }
func (g *GlobalState) Cluster() *ClusterSymbol    { return g.cluster }
func (g *GlobalState) Database() *DatabaseSymbol  { return g.database }

// ClusterByName finds a known cluster, matching either the full host
// name or its first label.
func (g *GlobalState) ClusterByName(name string) (*ClusterSymbol, bool) {
	for _, c := range g.clusters {
		if strings.EqualFold(c.Name(), name) {
			return c, true
		}
		if label, _, ok := strings.Cut(c.Name(), "."); ok && strings.EqualFold(label, name) {
			return c, true
		}
	}
	return nil, false
}

// OwnerDatabase returns the database a stored function belongs to, if
// any.
func (g *GlobalState) OwnerDatabase(f *FunctionSymbol) (*ClusterSymbol, *DatabaseSymbol, bool) {
	for _, c := range g.clusters {
		for _, d := range c.Databases() {
			for _, fn := range d.Functions() {
				if fn == f {
					return c, d, true
				}
			}
		}
	}
	return nil, nil, false
}

// IsDatabaseTable reports whether the table is a catalog table of the
// given database. Unification results are only globally cacheable when
// every input satisfies this (identity is stable across bindings).
func IsDatabaseTable(d *DatabaseSymbol, t *TableSymbol) bool {
	if d == nil {
		return false
	}
	for _, dt := range d.Tables() {
		if dt == t {
			return true
		}
	}
	return false
}
