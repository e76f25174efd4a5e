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

// Package memory builds in-memory catalog snapshots for tests and
// embedders.
package memory

import (
	"strings"

	"github.com/kustoql/go-kusto-server/kusto"
)

// NewTable builds a closed table from a schema string like
// "a: long, b: string".
func NewTable(name, schema string) *kusto.TableSymbol {
	return kusto.NewTableSymbol(name, ParseSchema(schema)...)
}

// NewOpenTable builds an open table from a schema string.
func NewOpenTable(name, schema string) *kusto.TableSymbol {
	return kusto.NewOpenTableSymbol(name, ParseSchema(schema)...)
}

// NewDatabase builds a database from tables and functions.
func NewDatabase(name string, members ...kusto.Symbol) *kusto.DatabaseSymbol {
	return kusto.NewDatabaseSymbol(name, members...)
}

// NewOpenDatabase builds an open database.
func NewOpenDatabase(name string, members ...kusto.Symbol) *kusto.DatabaseSymbol {
	return kusto.NewOpenDatabaseSymbol(name, members...)
}

// NewCluster builds a cluster from databases.
func NewCluster(name string, dbs ...*kusto.DatabaseSymbol) *kusto.ClusterSymbol {
	return kusto.NewClusterSymbol(name, dbs...)
}

// NewGlobals builds a catalog snapshot; the first cluster and its
// first database are in scope by default.
func NewGlobals(clusters ...*kusto.ClusterSymbol) *kusto.GlobalState {
	return kusto.NewGlobalState(clusters...)
}

// NewFunction builds a stored function with a computed-return body.
func NewFunction(name, body string, params ...*kusto.Parameter) *kusto.FunctionSymbol {
	return kusto.NewFunctionSymbol(name, kusto.NewComputedSignature(body, params...))
}

// ParseSchema parses "name: type, name: type" into columns. Unknown
// type names become dynamic.
func ParseSchema(schema string) []*kusto.Column {
	var cols []*kusto.Column
	for _, part := range strings.Split(schema, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, typeName, found := strings.Cut(part, ":")
		t := kusto.TypeSymbol(kusto.TypeDynamic)
		if found {
			if st := kusto.ScalarTypeByName(strings.TrimSpace(typeName)); st != nil {
				t = st
			}
		}
		cols = append(cols, kusto.NewColumn(strings.TrimSpace(name), t))
	}
	return cols
}
