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

// FilterOperator is `where`/`filter`.
type FilterOperator struct {
	Fragment
	Keyword   string
	Predicate Expression
}

func (o *FilterOperator) expression()      {}
func (o *FilterOperator) queryOperator()   {}
func (o *FilterOperator) Children() []Node { return addExpr(nil, o.Predicate) }

// ExtendOperator appends computed columns.
type ExtendOperator struct {
	Fragment
	Exprs []Expression
}

func (o *ExtendOperator) expression()      {}
func (o *ExtendOperator) queryOperator()   {}
func (o *ExtendOperator) Children() []Node { return addExprs(nil, o.Exprs) }

// ProjectOperator selects and computes the output columns.
type ProjectOperator struct {
	Fragment
	Exprs []Expression
}

func (o *ProjectOperator) expression()      {}
func (o *ProjectOperator) queryOperator()   {}
func (o *ProjectOperator) Children() []Node { return addExprs(nil, o.Exprs) }

// ProjectAwayOperator removes columns; wildcards allowed.
type ProjectAwayOperator struct {
	Fragment
	Columns []Expression
}

func (o *ProjectAwayOperator) expression()      {}
func (o *ProjectAwayOperator) queryOperator()   {}
func (o *ProjectAwayOperator) Children() []Node { return addExprs(nil, o.Columns) }

// ProjectRenameOperator renames columns, new = old.
type ProjectRenameOperator struct {
	Fragment
	Exprs []Expression
}

func (o *ProjectRenameOperator) expression()      {}
func (o *ProjectRenameOperator) queryOperator()   {}
func (o *ProjectRenameOperator) Children() []Node { return addExprs(nil, o.Exprs) }

// ProjectReorderOperator reorders columns; wildcards and asc/desc tags
// allowed.
type ProjectReorderOperator struct {
	Fragment
	Exprs []Expression
}

func (o *ProjectReorderOperator) expression()      {}
func (o *ProjectReorderOperator) queryOperator()   {}
func (o *ProjectReorderOperator) Children() []Node { return addExprs(nil, o.Exprs) }

// SummarizeOperator groups by the by-clause and computes aggregates.
type SummarizeOperator struct {
	Fragment
	Aggregates []Expression
	By         []Expression
}

func (o *SummarizeOperator) expression()    {}
func (o *SummarizeOperator) queryOperator() {}
func (o *SummarizeOperator) Children() []Node {
	return addExprs(addExprs(nil, o.Aggregates), o.By)
}

// DistinctOperator keeps distinct rows of the listed columns, or of all
// columns with `*`.
type DistinctOperator struct {
	Fragment
	Exprs []Expression
}

func (o *DistinctOperator) expression()      {}
func (o *DistinctOperator) queryOperator()   {}
func (o *DistinctOperator) Children() []Node { return addExprs(nil, o.Exprs) }

// TakeOperator is `take`/`limit`.
type TakeOperator struct {
	Fragment
	Keyword string
	Expr    Expression
}

func (o *TakeOperator) expression()      {}
func (o *TakeOperator) queryOperator()   {}
func (o *TakeOperator) Children() []Node { return addExpr(nil, o.Expr) }

// SampleOperator samples a number of rows.
type SampleOperator struct {
	Fragment
	Expr Expression
}

func (o *SampleOperator) expression()      {}
func (o *SampleOperator) queryOperator()   {}
func (o *SampleOperator) Children() []Node { return addExpr(nil, o.Expr) }

// SampleDistinctOperator samples distinct values of one column.
type SampleDistinctOperator struct {
	Fragment
	Expr Expression
	Of   Expression
}

func (o *SampleDistinctOperator) expression()    {}
func (o *SampleDistinctOperator) queryOperator() {}
func (o *SampleDistinctOperator) Children() []Node {
	return addExpr(addExpr(nil, o.Expr), o.Of)
}

// SortOperator is `sort by`/`order by`.
type SortOperator struct {
	Fragment
	Exprs []Expression
}

func (o *SortOperator) expression()      {}
func (o *SortOperator) queryOperator()   {}
func (o *SortOperator) Children() []Node { return addExprs(nil, o.Exprs) }

// TopOperator keeps the first N rows by sort order.
type TopOperator struct {
	Fragment
	Expr Expression
	By   []Expression
}

func (o *TopOperator) expression()    {}
func (o *TopOperator) queryOperator() {}
func (o *TopOperator) Children() []Node {
	return addExprs(addExpr(nil, o.Expr), o.By)
}

// TopHittersOperator approximates the top values of a column.
type TopHittersOperator struct {
	Fragment
	Expr Expression
	Of   Expression
	By   Expression
}

func (o *TopHittersOperator) expression()    {}
func (o *TopHittersOperator) queryOperator() {}
func (o *TopHittersOperator) Children() []Node {
	return addExpr(addExpr(addExpr(nil, o.Expr), o.Of), o.By)
}

// TopNestedClause is one level of a top-nested aggregation.
type TopNestedClause struct {
	Fragment
	Expr Expression
	Of   Expression
	Agg  Expression
}

func (c *TopNestedClause) expression() {}
func (c *TopNestedClause) Children() []Node {
	return addExpr(addExpr(addExpr(nil, c.Expr), c.Of), c.Agg)
}

// TopNestedOperator is the nested top aggregation.
type TopNestedOperator struct {
	Fragment
	Clauses []*TopNestedClause
}

func (o *TopNestedOperator) expression()    {}
func (o *TopNestedOperator) queryOperator() {}
func (o *TopNestedOperator) Children() []Node {
	var out []Node
	for _, c := range o.Clauses {
		out = append(out, c)
	}
	return out
}

// SerializeOperator marks the row order as significant, optionally
// extending columns.
type SerializeOperator struct {
	Fragment
	Exprs []Expression
}

func (o *SerializeOperator) expression()      {}
func (o *SerializeOperator) queryOperator()   {}
func (o *SerializeOperator) Children() []Node { return addExprs(nil, o.Exprs) }

// AsOperator names the current result in the local scope.
type AsOperator struct {
	Fragment
	Name *NameReference
}

func (o *AsOperator) expression()    {}
func (o *AsOperator) queryOperator() {}
func (o *AsOperator) Children() []Node {
	if o.Name == nil {
		return nil
	}
	return []Node{o.Name}
}

// JoinOperator joins against a right-hand pipeline.
type JoinOperator struct {
	Fragment
	Parameters []Expression
	Right      Expression
	OnExprs    []Expression
}

func (o *JoinOperator) expression()    {}
func (o *JoinOperator) queryOperator() {}
func (o *JoinOperator) Children() []Node {
	out := addExprs(nil, o.Parameters)
	out = addExpr(out, o.Right)
	return addExprs(out, o.OnExprs)
}

// LookupOperator is a join with an enforced on clause and
// dimension-table semantics.
type LookupOperator struct {
	Fragment
	Parameters []Expression
	Right      Expression
	OnExprs    []Expression
}

func (o *LookupOperator) expression()    {}
func (o *LookupOperator) queryOperator() {}
func (o *LookupOperator) Children() []Node {
	out := addExprs(nil, o.Parameters)
	out = addExpr(out, o.Right)
	return addExprs(out, o.OnExprs)
}

// UnionOperator unions tabular expressions.
type UnionOperator struct {
	Fragment
	Parameters []Expression
	Exprs      []Expression
}

func (o *UnionOperator) expression()    {}
func (o *UnionOperator) queryOperator() {}
func (o *UnionOperator) Children() []Node {
	return addExprs(addExprs(nil, o.Parameters), o.Exprs)
}

// MvExpandExpression is one expansion target with an optional `to
// typeof(...)` clause.
type MvExpandExpression struct {
	Fragment
	Expr Expression
	To   Expression
}

func (m *MvExpandExpression) expression() {}
func (m *MvExpandExpression) Children() []Node {
	return addExpr(addExpr(nil, m.Expr), m.To)
}

// MvExpandOperator expands dynamic values into rows.
type MvExpandOperator struct {
	Fragment
	Exprs    []*MvExpandExpression
	RowLimit Expression
}

func (o *MvExpandOperator) expression()    {}
func (o *MvExpandOperator) queryOperator() {}
func (o *MvExpandOperator) Children() []Node {
	var out []Node
	for _, e := range o.Exprs {
		out = append(out, e)
	}
	return addExpr(out, o.RowLimit)
}

// MvApplyOperator expands values and applies a subquery per row.
type MvApplyOperator struct {
	Fragment
	Exprs    []*MvExpandExpression
	RowLimit Expression
	Subquery Expression
}

func (o *MvApplyOperator) expression()    {}
func (o *MvApplyOperator) queryOperator() {}
func (o *MvApplyOperator) Children() []Node {
	var out []Node
	for _, e := range o.Exprs {
		out = append(out, e)
	}
	out = addExpr(out, o.RowLimit)
	return addExpr(out, o.Subquery)
}

// MakeSeriesOperator builds series of aggregated values over an axis.
type MakeSeriesOperator struct {
	Fragment
	Aggregates []Expression
	OnExpr     Expression
	From       Expression
	To         Expression
	Step       Expression
	By         []Expression
}

func (o *MakeSeriesOperator) expression()    {}
func (o *MakeSeriesOperator) queryOperator() {}
func (o *MakeSeriesOperator) Children() []Node {
	out := addExprs(nil, o.Aggregates)
	out = addExpr(out, o.OnExpr)
	out = addExpr(out, o.From)
	out = addExpr(out, o.To)
	out = addExpr(out, o.Step)
	return addExprs(out, o.By)
}

// ParseOperator extracts columns from a string column by pattern.
type ParseOperator struct {
	Fragment
	Kind     string
	Expr     Expression
	Patterns []Expression
}

func (o *ParseOperator) expression()    {}
func (o *ParseOperator) queryOperator() {}
func (o *ParseOperator) Children() []Node {
	return addExprs(addExpr(nil, o.Expr), o.Patterns)
}

// FindOperator searches a set of tables for matching rows.
type FindOperator struct {
	Fragment
	In        []Expression
	Predicate Expression
	Projects  []Expression
}

func (o *FindOperator) expression()    {}
func (o *FindOperator) queryOperator() {}
func (o *FindOperator) Children() []Node {
	out := addExprs(nil, o.In)
	out = addExpr(out, o.Predicate)
	return addExprs(out, o.Projects)
}

// SearchOperator searches tables (or the incoming input) for a term.
type SearchOperator struct {
	Fragment
	In        []Expression
	Predicate Expression
}

func (o *SearchOperator) expression()    {}
func (o *SearchOperator) queryOperator() {}
func (o *SearchOperator) Children() []Node {
	return addExpr(addExprs(nil, o.In), o.Predicate)
}

// ForkBranch is one named branch of a fork.
type ForkBranch struct {
	Fragment
	Name *NameReference
	Expr Expression
}

func (b *ForkBranch) expression() {}
func (b *ForkBranch) Children() []Node {
	var out []Node
	if b.Name != nil {
		out = append(out, b.Name)
	}
	return addExpr(out, b.Expr)
}

// ForkOperator runs branches over the same input.
type ForkOperator struct {
	Fragment
	Branches []*ForkBranch
}

func (o *ForkOperator) expression()    {}
func (o *ForkOperator) queryOperator() {}
func (o *ForkOperator) Children() []Node {
	var out []Node
	for _, b := range o.Branches {
		out = append(out, b)
	}
	return out
}

// PartitionOperator runs the subquery once per partition key.
type PartitionOperator struct {
	Fragment
	By       Expression
	Subquery Expression
}

func (o *PartitionOperator) expression()    {}
func (o *PartitionOperator) queryOperator() {}
func (o *PartitionOperator) Children() []Node {
	return addExpr(addExpr(nil, o.By), o.Subquery)
}

// RangeOperator generates a single-column table of stepped values. It
// only appears at the head of a pipeline.
type RangeOperator struct {
	Fragment
	Name *NameReference
	From Expression
	To   Expression
	Step Expression
}

func (o *RangeOperator) expression()    {}
func (o *RangeOperator) queryOperator() {}
func (o *RangeOperator) Children() []Node {
	var out []Node
	if o.Name != nil {
		out = append(out, o.Name)
	}
	out = addExpr(out, o.From)
	out = addExpr(out, o.To)
	return addExpr(out, o.Step)
}

// PrintExpression evaluates scalar expressions into a one-row table.
type PrintExpression struct {
	Fragment
	Exprs []Expression
}

func (o *PrintExpression) expression()      {}
func (o *PrintExpression) queryOperator()   {}
func (o *PrintExpression) Children() []Node { return addExprs(nil, o.Exprs) }

// EvaluateOperator invokes a plug-in.
type EvaluateOperator struct {
	Fragment
	Parameters []Expression
	Call       *Call
}

func (o *EvaluateOperator) expression()    {}
func (o *EvaluateOperator) queryOperator() {}
func (o *EvaluateOperator) Children() []Node {
	out := addExprs(nil, o.Parameters)
	if o.Call != nil {
		out = append(out, o.Call)
	}
	return out
}

// InvokeOperator calls a function with the input as the implicit first
// argument.
type InvokeOperator struct {
	Fragment
	Call Expression
}

func (o *InvokeOperator) expression()      {}
func (o *InvokeOperator) queryOperator()   {}
func (o *InvokeOperator) Children() []Node { return addExpr(nil, o.Call) }

// RenderOperator declares a visualization; it does not change the row
// scope.
type RenderOperator struct {
	Fragment
	ChartType  *NameReference
	Parameters []Expression
}

func (o *RenderOperator) expression()    {}
func (o *RenderOperator) queryOperator() {}
func (o *RenderOperator) Children() []Node {
	var out []Node
	if o.ChartType != nil {
		out = append(out, o.ChartType)
	}
	return addExprs(out, o.Parameters)
}

// CountOperator reduces the input to a single Count column.
type CountOperator struct {
	Fragment
	AsName *NameReference
}

func (o *CountOperator) expression()    {}
func (o *CountOperator) queryOperator() {}
func (o *CountOperator) Children() []Node {
	if o.AsName == nil {
		return nil
	}
	return []Node{o.AsName}
}

// GetSchemaOperator yields the schema description of the input.
type GetSchemaOperator struct {
	Fragment
}

func (o *GetSchemaOperator) expression()      {}
func (o *GetSchemaOperator) queryOperator()   {}
func (o *GetSchemaOperator) Children() []Node { return nil }

// ConsumeOperator swallows the input.
type ConsumeOperator struct {
	Fragment
}

func (o *ConsumeOperator) expression()      {}
func (o *ConsumeOperator) queryOperator()   {}
func (o *ConsumeOperator) Children() []Node { return nil }

// ExecuteAndCacheOperator caches the input result; the row scope passes
// through.
type ExecuteAndCacheOperator struct {
	Fragment
}

func (o *ExecuteAndCacheOperator) expression()      {}
func (o *ExecuteAndCacheOperator) queryOperator()   {}
func (o *ExecuteAndCacheOperator) Children() []Node { return nil }

// ReduceOperator groups rows by string similarity.
type ReduceOperator struct {
	Fragment
	By   Expression
	With []Expression
}

func (o *ReduceOperator) expression()    {}
func (o *ReduceOperator) queryOperator() {}
func (o *ReduceOperator) Children() []Node {
	return addExprs(addExpr(nil, o.By), o.With)
}
