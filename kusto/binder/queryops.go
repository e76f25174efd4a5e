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
	"github.com/kustoql/go-kusto-server/kusto/syntax"
)

// bindQueryOperator binds one pipe-chained operator against the
// current row scope and produces the operator's output row scope as
// its result type. An operator whose own semantics failed still yields
// a best-effort row scope so downstream operators continue to bind.
func (b *Binder) bindQueryOperator(op syntax.QueryOperator) *SemanticInfo {
	if op == nil {
		return errorInfo()
	}
	if b.checkCancel() {
		return b.setInfo(op, errorInfo())
	}
	if _, ok := b.rowScopes[op]; !ok {
		b.rowScopes[op] = b.rowScope
	}

	switch n := op.(type) {
	case *syntax.FilterOperator:
		return b.bindFilter(n)
	case *syntax.ExtendOperator:
		return b.bindExtend(n, n.Exprs)
	case *syntax.SerializeOperator:
		return b.bindExtend(n, n.Exprs)
	case *syntax.ProjectOperator:
		return b.bindProject(n)
	case *syntax.ProjectAwayOperator:
		return b.bindProjectAway(n)
	case *syntax.ProjectRenameOperator:
		return b.bindProjectRename(n)
	case *syntax.ProjectReorderOperator:
		return b.bindProjectReorder(n)
	case *syntax.SummarizeOperator:
		return b.bindSummarize(n)
	case *syntax.DistinctOperator:
		return b.bindDistinct(n)
	case *syntax.TakeOperator:
		return b.bindRowCountOperator(n, n.Expr)
	case *syntax.SampleOperator:
		return b.bindRowCountOperator(n, n.Expr)
	case *syntax.SampleDistinctOperator:
		return b.bindSampleDistinct(n)
	case *syntax.SortOperator:
		return b.bindSort(n)
	case *syntax.TopOperator:
		return b.bindTop(n)
	case *syntax.TopHittersOperator:
		return b.bindTopHitters(n)
	case *syntax.TopNestedOperator:
		return b.bindTopNested(n)
	case *syntax.AsOperator:
		return b.bindAs(n)
	case *syntax.JoinOperator:
		return b.bindJoin(n, n.Parameters, n.Right, n.OnExprs, false)
	case *syntax.LookupOperator:
		return b.bindJoin(n, n.Parameters, n.Right, n.OnExprs, true)
	case *syntax.UnionOperator:
		return b.bindUnion(n)
	case *syntax.MvExpandOperator:
		return b.bindMvExpand(n)
	case *syntax.MvApplyOperator:
		return b.bindMvApply(n)
	case *syntax.MakeSeriesOperator:
		return b.bindMakeSeries(n)
	case *syntax.ParseOperator:
		return b.bindParse(n)
	case *syntax.FindOperator:
		return b.bindFind(n)
	case *syntax.SearchOperator:
		return b.bindSearch(n)
	case *syntax.ForkOperator:
		return b.bindFork(n)
	case *syntax.PartitionOperator:
		return b.bindPartition(n)
	case *syntax.RangeOperator:
		return b.bindRange(n)
	case *syntax.PrintExpression:
		return b.bindPrint(n)
	case *syntax.EvaluateOperator:
		return b.bindEvaluate(n)
	case *syntax.InvokeOperator:
		return b.bindInvoke(n)
	case *syntax.RenderOperator:
		return b.bindRender(n)
	case *syntax.CountOperator:
		return b.bindCount(n)
	case *syntax.GetSchemaOperator:
		return b.setInfo(n, typeInfo(getSchemaTable))
	case *syntax.ConsumeOperator:
		return b.setInfo(n, typeInfo(kusto.NewTableSymbol("")))
	case *syntax.ExecuteAndCacheOperator:
		return b.setInfo(n, typeInfo(b.inputScope()))
	case *syntax.ReduceOperator:
		return b.bindReduce(n)
	}
	return b.setInfo(op, errorInfo())
}

var getSchemaTable = kusto.NewTableSymbol("",
	kusto.NewColumn("ColumnName", kusto.TypeString),
	kusto.NewColumn("ColumnOrdinal", kusto.TypeLong),
	kusto.NewColumn("DataType", kusto.TypeString),
	kusto.NewColumn("ColumnType", kusto.TypeString),
)

var reduceTable = kusto.NewTableSymbol("",
	kusto.NewColumn("Pattern", kusto.TypeString),
	kusto.NewColumn("Count", kusto.TypeLong),
	kusto.NewColumn("Representative", kusto.TypeString),
)

// inputScope is the current row scope, never nil.
func (b *Binder) inputScope() *kusto.TableSymbol {
	if b.rowScope == nil {
		return kusto.NewTableSymbol("")
	}
	return b.rowScope
}

// checkBoolean reports a diagnostic when a predicate is neither bool
// nor dynamic.
func (b *Binder) checkBoolean(expr syntax.Expression, info *SemanticInfo) []kusto.Diagnostic {
	if isErrorInfo(info) || info.ResultType == kusto.TypeBool || info.ResultType == kusto.TypeDynamic {
		return nil
	}
	return []kusto.Diagnostic{
		kusto.NewDiagnostic(expr.Span(), kusto.ErrBooleanExpected, kusto.TypeName(info.ResultType)),
	}
}

// checkInteger reports a diagnostic when a row-count expression is not
// an integer.
func (b *Binder) checkInteger(expr syntax.Expression, info *SemanticInfo) []kusto.Diagnostic {
	if isErrorInfo(info) {
		return nil
	}
	if s, ok := info.ResultType.(*kusto.ScalarType); ok && (s.IsInteger() || s == kusto.TypeDynamic) {
		return nil
	}
	return []kusto.Diagnostic{
		kusto.NewDiagnostic(expr.Span(), kusto.ErrWrongArgumentType,
			1, "the operator", kusto.TypeName(info.ResultType), "an integer value"),
	}
}

func (b *Binder) bindFilter(n *syntax.FilterOperator) *SemanticInfo {
	info := b.bindExpression(n.Predicate)
	diags := b.checkBoolean(n.Predicate, info)
	return b.setInfo(n, &SemanticInfo{ResultType: b.inputScope(), Diagnostics: diags})
}

// resultColumnName derives the output column name of a projection
// expression that was not explicitly named.
func (b *Binder) resultColumnName(expr syntax.Expression) string {
	switch e := expr.(type) {
	case *syntax.NameReference:
		return e.Name
	case *syntax.OrderedExpression:
		return b.resultColumnName(e.Expr)
	case *syntax.ParenExpression:
		return b.resultColumnName(e.Expr)
	case *syntax.PathExpression:
		return b.resultColumnName(e.Selector)
	case *syntax.Call:
		info := b.info(e)
		if info == nil {
			return ""
		}
		fn, ok := info.ReferencedSymbol.(*kusto.FunctionSymbol)
		if !ok {
			return ""
		}
		switch fn.ResultNameKind() {
		case kusto.ResultNamePrefixOnly:
			return fn.ResultNamePrefix()
		case kusto.ResultNameFirstArgument:
			if len(e.Args) > 0 {
				return b.resultColumnName(e.Args[0])
			}
		case kusto.ResultNamePrefixAndFirstArgument:
			if len(e.Args) > 0 {
				if argName := b.resultColumnName(e.Args[0]); argName != "" {
					return fn.ResultNamePrefix() + "_" + argName
				}
			}
			return fn.ResultNamePrefix() + "_"
		}
	}
	return ""
}

// declareProjection applies one projection expression to the builder
// under the declared/auto-add discipline shared by project, extend and
// summarize.
func (b *Binder) declareProjection(builder *ProjectionBuilder, expr syntax.Expression,
	ordinal int, replace bool) []kusto.Diagnostic {
	var diags []kusto.Diagnostic
	switch e := expr.(type) {
	case *syntax.StarExpression:
		b.bindExpression(e)
		for _, col := range b.visibleColumns(b.rowScope) {
			builder.Add(col, true, true)
		}
		return nil
	case *syntax.SimpleNamedExpression:
		info := b.bindExpression(e)
		name := ""
		if e.Name != nil {
			name = e.Name.Name
		}
		col := kusto.NewColumn(name, scalarOrError(info.ResultType))
		if !builder.Declare(col, replace) {
			diags = append(diags, kusto.NewDiagnostic(e.Span(), kusto.ErrDuplicateColumnDeclaration, name))
		}
		if e.Name != nil {
			b.setInfo(e.Name, symbolInfo(col))
		}
		return diags
	default:
		info := b.bindExpression(expr)
		if col, ok := info.ReferencedSymbol.(*kusto.Column); ok {
			if replace {
				builder.Declare(col, true)
			} else if !builder.Declare(col, false) {
				diags = append(diags, kusto.NewDiagnostic(expr.Span(), kusto.ErrDuplicateColumnDeclaration, col.Name()))
			}
			return diags
		}
		name := b.resultColumnName(expr)
		if name == "" {
			name = "Column" + strconv.Itoa(ordinal)
		}
		builder.Add(kusto.NewColumn(name, scalarOrError(info.ResultType)), false, false)
		return diags
	}
}

// scalarOrError keeps tabular results out of column declarations.
func scalarOrError(t kusto.TypeSymbol) kusto.TypeSymbol {
	switch t.(type) {
	case *kusto.TableSymbol, *kusto.TupleSymbol:
		return kusto.ErrorType
	}
	return t
}

func (b *Binder) bindExtend(n syntax.QueryOperator, exprs []syntax.Expression) *SemanticInfo {
	builder := NewProjectionBuilder()
	for _, col := range b.visibleColumns(b.rowScope) {
		builder.Add(col, true, false)
	}
	var diags []kusto.Diagnostic
	for i, e := range exprs {
		diags = append(diags, b.declareProjection(builder, e, i+1, true)...)
	}
	return b.setInfo(n, &SemanticInfo{ResultType: builder.Table(), Diagnostics: diags})
}

func (b *Binder) bindProject(n *syntax.ProjectOperator) *SemanticInfo {
	builder := NewProjectionBuilder()
	var diags []kusto.Diagnostic
	for i, e := range n.Exprs {
		diags = append(diags, b.declareProjection(builder, e, i+1, false)...)
	}
	return b.setInfo(n, &SemanticInfo{ResultType: builder.Table(), Diagnostics: diags})
}

func (b *Binder) bindProjectAway(n *syntax.ProjectAwayOperator) *SemanticInfo {
	removed := make(map[*kusto.Column]bool)
	removeAll := false
	for _, e := range n.Columns {
		if _, ok := e.(*syntax.StarExpression); ok {
			removeAll = true
			continue
		}
		info := b.bindExpression(e)
		if col, ok := info.ReferencedSymbol.(*kusto.Column); ok {
			removed[col] = true
		}
	}
	var cols []*kusto.Column
	if !removeAll {
		for _, col := range b.visibleColumns(b.rowScope) {
			if !removed[col] {
				cols = append(cols, col)
			}
		}
	}
	return b.setInfo(n, typeInfo(kusto.NewTableSymbol("", cols...)))
}

func (b *Binder) bindProjectRename(n *syntax.ProjectRenameOperator) *SemanticInfo {
	builder := NewProjectionBuilder()
	for _, col := range b.visibleColumns(b.rowScope) {
		builder.Add(col, true, false)
	}
	var diags []kusto.Diagnostic
	for _, e := range n.Exprs {
		named, ok := e.(*syntax.SimpleNamedExpression)
		if !ok || named.Name == nil {
			b.bindExpression(e)
			continue
		}
		// Rename resolves name-to-name only: the right side must be a
		// column of the input.
		ref, ok := named.Expr.(*syntax.NameReference)
		if !ok {
			b.bindExpression(named.Expr)
			diags = append(diags, kusto.NewDiagnostic(named.Expr.Span(), kusto.ErrColumnRequired, 1, "project-rename"))
			continue
		}
		info := b.bindExpression(ref)
		if _, isCol := info.ReferencedSymbol.(*kusto.Column); !isCol {
			continue
		}
		if !builder.Rename(ref.Name, named.Name.Name) {
			diags = append(diags, kusto.NewDiagnostic(ref.Span(), kusto.ErrRenameColumnNotFound, ref.Name))
		}
	}
	return b.setInfo(n, &SemanticInfo{ResultType: builder.Table(), Diagnostics: diags})
}

func (b *Binder) bindProjectReorder(n *syntax.ProjectReorderOperator) *SemanticInfo {
	builder := NewProjectionBuilder()
	for _, e := range n.Exprs {
		target := e
		if ordered, ok := e.(*syntax.OrderedExpression); ok {
			target = ordered.Expr
		}
		if _, ok := target.(*syntax.StarExpression); ok {
			for _, col := range b.visibleColumns(b.rowScope) {
				builder.Add(col, true, false)
			}
			continue
		}
		info := b.bindExpression(target)
		if col, ok := info.ReferencedSymbol.(*kusto.Column); ok {
			builder.Add(col, true, false)
		}
	}
	// Unmentioned columns keep their original order at the end.
	for _, col := range b.visibleColumns(b.rowScope) {
		builder.Add(col, true, false)
	}
	return b.setInfo(n, typeInfo(builder.Table()))
}

// aggregateName derives the output name of an unnamed aggregate.
func (b *Binder) aggregateName(expr syntax.Expression, ordinal int) string {
	if name := b.resultColumnName(expr); name != "" {
		return name
	}
	return "Column" + strconv.Itoa(ordinal)
}

func (b *Binder) bindSummarize(n *syntax.SummarizeOperator) *SemanticInfo {
	builder := NewProjectionBuilder()
	var diags []kusto.Diagnostic

	// The by-clause binds in normal scope and declares first.
	for i, e := range n.By {
		diags = append(diags, b.declareProjection(builder, e, i+1, false)...)
	}

	// Aggregates bind in aggregate scope: only aggregate functions are
	// visible as call targets.
	saved := b.scopeKind
	b.scopeKind = ScopeAggregate
	for i, e := range n.Aggregates {
		if named, ok := e.(*syntax.SimpleNamedExpression); ok {
			info := b.bindExpression(named)
			name := ""
			if named.Name != nil {
				name = named.Name.Name
			}
			col := kusto.NewColumn(name, scalarOrError(info.ResultType))
			if !builder.Declare(col, false) {
				diags = append(diags, kusto.NewDiagnostic(e.Span(), kusto.ErrDuplicateColumnDeclaration, name))
			}
			if named.Name != nil {
				b.setInfo(named.Name, symbolInfo(col))
			}
			continue
		}
		info := b.bindExpression(e)
		name := b.aggregateName(e, len(n.By)+i+1)
		builder.Add(kusto.NewColumn(name, scalarOrError(info.ResultType)), false, false)
	}
	b.scopeKind = saved

	return b.setInfo(n, &SemanticInfo{ResultType: builder.Table(), Diagnostics: diags})
}

func (b *Binder) bindDistinct(n *syntax.DistinctOperator) *SemanticInfo {
	builder := NewProjectionBuilder()
	var diags []kusto.Diagnostic
	for i, e := range n.Exprs {
		diags = append(diags, b.declareProjection(builder, e, i+1, false)...)
	}
	return b.setInfo(n, &SemanticInfo{ResultType: builder.Table(), Diagnostics: diags})
}

func (b *Binder) bindRowCountOperator(n syntax.QueryOperator, expr syntax.Expression) *SemanticInfo {
	info := b.bindExpression(expr)
	diags := b.checkInteger(expr, info)
	return b.setInfo(n, &SemanticInfo{ResultType: b.inputScope(), Diagnostics: diags})
}

func (b *Binder) bindSampleDistinct(n *syntax.SampleDistinctOperator) *SemanticInfo {
	countInfo := b.bindExpression(n.Expr)
	diags := b.checkInteger(n.Expr, countInfo)
	ofInfo := b.bindExpression(n.Of)
	if col, ok := ofInfo.ReferencedSymbol.(*kusto.Column); ok {
		return b.setInfo(n, &SemanticInfo{ResultType: kusto.NewTableSymbol("", col), Diagnostics: diags})
	}
	diags = append(diags, kusto.NewDiagnostic(n.Of.Span(), kusto.ErrColumnRequired, 1, "sample-distinct"))
	return b.setInfo(n, &SemanticInfo{ResultType: b.inputScope(), Diagnostics: diags})
}

func (b *Binder) bindSort(n *syntax.SortOperator) *SemanticInfo {
	for _, e := range n.Exprs {
		b.bindExpression(e)
	}
	return b.setInfo(n, typeInfo(b.inputScope()))
}

func (b *Binder) bindTop(n *syntax.TopOperator) *SemanticInfo {
	info := b.bindExpression(n.Expr)
	diags := b.checkInteger(n.Expr, info)
	for _, e := range n.By {
		b.bindExpression(e)
	}
	return b.setInfo(n, &SemanticInfo{ResultType: b.inputScope(), Diagnostics: diags})
}

func (b *Binder) bindTopHitters(n *syntax.TopHittersOperator) *SemanticInfo {
	countInfo := b.bindExpression(n.Expr)
	diags := b.checkInteger(n.Expr, countInfo)
	ofInfo := b.bindExpression(n.Of)

	builder := NewProjectionBuilder()
	name := b.resultColumnName(n.Of)
	if name == "" {
		name = "Column1"
	}
	builder.Add(kusto.NewColumn(name, scalarOrError(ofInfo.ResultType)), false, false)
	if n.By != nil {
		b.bindExpression(n.By)
		byName := b.resultColumnName(n.By)
		builder.Add(kusto.NewColumn("approximate_sum_"+byName, kusto.TypeLong), false, false)
	} else {
		builder.Add(kusto.NewColumn("approximate_count_"+name, kusto.TypeLong), false, false)
	}
	return b.setInfo(n, &SemanticInfo{ResultType: builder.Table(), Diagnostics: diags})
}

func (b *Binder) bindTopNested(n *syntax.TopNestedOperator) *SemanticInfo {
	builder := NewProjectionBuilder()
	for i, clause := range n.Clauses {
		if clause.Expr != nil {
			b.bindExpression(clause.Expr)
		}
		var ofInfo *SemanticInfo
		name := ""
		if named, ok := clause.Of.(*syntax.SimpleNamedExpression); ok {
			ofInfo = b.bindExpression(named)
			if named.Name != nil {
				name = named.Name.Name
			}
		} else {
			ofInfo = b.bindExpression(clause.Of)
			name = b.resultColumnName(clause.Of)
		}
		if name == "" {
			name = "Column" + strconv.Itoa(i+1)
		}
		builder.Add(kusto.NewColumn(name, scalarOrError(ofInfo.ResultType)), false, false)

		if clause.Agg != nil {
			saved := b.scopeKind
			b.scopeKind = ScopeAggregate
			aggName := ""
			var aggInfo *SemanticInfo
			if named, ok := clause.Agg.(*syntax.SimpleNamedExpression); ok {
				aggInfo = b.bindExpression(named)
				if named.Name != nil {
					aggName = named.Name.Name
				}
			} else {
				aggInfo = b.bindExpression(clause.Agg)
			}
			b.scopeKind = saved
			if aggName == "" {
				aggName = "aggregated_" + name
			}
			builder.Add(kusto.NewColumn(aggName, scalarOrError(aggInfo.ResultType)), false, false)
		}
	}
	return b.setInfo(n, typeInfo(builder.Table()))
}

// bindAs names the current result in the local scope; downstream
// statements may refer to it by name.
func (b *Binder) bindAs(n *syntax.AsOperator) *SemanticInfo {
	table := b.withInferred(b.inputScope())
	if n.Name != nil {
		named := table.WithName(n.Name.Name)
		b.locals.Add(named)
		b.setInfo(n.Name, symbolInfo(named))
	}
	return b.setInfo(n, typeInfo(table))
}

var joinKinds = []string{
	"inner", "innerunique", "leftouter", "rightouter", "fullouter",
	"leftanti", "rightanti", "leftsemi", "rightsemi", "anti", "semi",
	"leftantisemi", "rightantisemi",
}

var unionKinds = []string{"inner", "outer"}

// operatorParameter extracts a name=value operator parameter.
func operatorParameter(e syntax.Expression) (name, value string, span kusto.Span, ok bool) {
	named, isNamed := e.(*syntax.SimpleNamedExpression)
	if !isNamed || named.Name == nil {
		return "", "", kusto.Span{}, false
	}
	switch v := named.Expr.(type) {
	case *syntax.NameReference:
		return named.Name.Name, v.Name, named.Span(), true
	case *syntax.Literal:
		if s, isStr := v.Value.(string); isStr {
			return named.Name.Name, s, named.Span(), true
		}
		return named.Name.Name, v.Text, named.Span(), true
	}
	return named.Name.Name, "", named.Span(), true
}

func validateKindParameter(params []syntax.Expression, allowed []string) (string, []kusto.Diagnostic) {
	kind := ""
	var diags []kusto.Diagnostic
	for _, p := range params {
		name, value, span, ok := operatorParameter(p)
		if !ok || !strings.EqualFold(name, "kind") {
			continue
		}
		found := false
		for _, a := range allowed {
			if strings.EqualFold(a, value) {
				found = true
				kind = strings.ToLower(value)
				break
			}
		}
		if !found {
			diags = append(diags, kusto.NewDiagnostic(span, kusto.ErrUnknownNamedParameter,
				value, "kind", strings.Join(allowed, ", ")))
		}
	}
	return kind, diags
}

func (b *Binder) bindJoin(n syntax.QueryOperator, params []syntax.Expression, right syntax.Expression,
	onExprs []syntax.Expression, lookup bool) *SemanticInfo {
	left := b.withInferred(b.inputScope())

	kind, diags := validateKindParameter(params, joinKinds)
	if kind == "" {
		kind = "innerunique"
	}

	// The right side binds without the left row scope.
	savedRow := b.rowScope
	b.rowScope = nil
	rightInfo := b.bindExpression(right)
	b.rowScope = savedRow
	rightTable := b.withInferred(b.tableOf(right, rightInfo))

	// The on clause sees both sides: bare columns must exist in each,
	// $left/$right address one side explicitly.
	if len(onExprs) == 0 {
		diags = append(diags, kusto.NewDiagnostic(n.Span(), kusto.ErrMissingJoinOnClause))
	}
	var keyColumns []string
	b.rowScope = left
	b.rightRowScope = rightTable
	for _, on := range onExprs {
		if ref, ok := on.(*syntax.NameReference); ok {
			info := b.bindExpression(ref)
			if _, isCol := info.ReferencedSymbol.(*kusto.Column); isCol {
				if _, inRight := b.lookupColumn(rightTable, ref.Name); !inRight {
					diags = append(diags, kusto.NewDiagnostic(ref.Span(), kusto.ErrNameNotDefined, ref.Name, ""))
				} else {
					keyColumns = append(keyColumns, ref.Name)
				}
			}
			continue
		}
		info := b.bindExpression(on)
		diags = append(diags, b.checkBoolean(on, info)...)
	}
	b.rightRowScope = nil
	b.rowScope = savedRow

	builder := NewProjectionBuilder()
	switch kind {
	case "leftsemi", "leftanti", "anti", "semi", "leftantisemi":
		for _, c := range left.Columns() {
			builder.Add(c, true, false)
		}
	case "rightsemi", "rightanti", "rightantisemi":
		for _, c := range rightTable.Columns() {
			builder.Add(c, true, false)
		}
	default:
		for _, c := range left.Columns() {
			builder.Add(c, true, false)
		}
		for _, c := range rightTable.Columns() {
			if lookup && isKeyColumn(keyColumns, c.Name()) {
				continue
			}
			builder.Add(c, true, false)
		}
	}
	return b.setInfo(n, &SemanticInfo{ResultType: builder.Table(), Diagnostics: diags})
}

func isKeyColumn(keys []string, name string) bool {
	for _, k := range keys {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

func (b *Binder) bindUnion(n *syntax.UnionOperator) *SemanticInfo {
	kind, diags := validateKindParameter(n.Parameters, unionKinds)
	if kind == "" {
		kind = "outer"
	}

	var tables []*kusto.TableSymbol
	if input := b.rowScopes[n]; input != nil {
		tables = append(tables, b.withInferred(input))
	}
	savedRow := b.rowScope
	b.rowScope = nil
	for _, e := range n.Exprs {
		info := b.bindExpression(e)
		tables = append(tables, b.withInferred(b.tableOf(e, info)))
	}
	b.rowScope = savedRow

	var result *kusto.TableSymbol
	if kind == "inner" {
		result = b.CommonColumns(tables)
	} else {
		result = b.UnifyByNameAndType(tables)
	}
	return b.setInfo(n, &SemanticInfo{ResultType: result, Diagnostics: diags})
}

func (b *Binder) bindMvExpand(n *syntax.MvExpandOperator) *SemanticInfo {
	table, diags := b.bindExpansionTargets(n.Exprs)
	if n.RowLimit != nil {
		info := b.bindExpression(n.RowLimit)
		diags = append(diags, b.checkInteger(n.RowLimit, info)...)
	}
	return b.setInfo(n, &SemanticInfo{ResultType: table, Diagnostics: diags})
}

// bindExpansionTargets computes the row scope after expanding dynamic
// columns: expanded columns take their to-typeof type, dynamic
// otherwise.
func (b *Binder) bindExpansionTargets(exprs []*syntax.MvExpandExpression) (*kusto.TableSymbol, []kusto.Diagnostic) {
	var diags []kusto.Diagnostic
	builder := NewProjectionBuilder()
	for _, col := range b.visibleColumns(b.rowScope) {
		builder.Add(col, true, false)
	}
	for _, me := range exprs {
		target := me.Expr
		name := ""
		if named, ok := target.(*syntax.SimpleNamedExpression); ok {
			if named.Name != nil {
				name = named.Name.Name
			}
			target = named.Expr
		}
		info := b.bindExpression(me.Expr)
		elemType := kusto.TypeSymbol(kusto.TypeDynamic)
		if me.To != nil {
			elemType = b.bindTypeExpression(me.To)
		}
		if tinfo := b.info(target); tinfo != nil {
			if col, ok := tinfo.ReferencedSymbol.(*kusto.Column); ok {
				outName := col.Name()
				if name != "" {
					outName = name
				}
				builder.DoNotAdd(col)
				builder.Declare(kusto.NewColumn(outName, elemType), true)
				continue
			}
		}
		if name == "" {
			name = b.resultColumnName(target)
		}
		if name == "" {
			name = "Column1"
		}
		if !isErrorInfo(info) && info.ResultType != kusto.TypeDynamic {
			diags = append(diags, kusto.NewDiagnostic(me.Expr.Span(), kusto.ErrWrongArgumentType,
				1, "mv-expand", kusto.TypeName(info.ResultType), "'dynamic'"))
		}
		builder.Add(kusto.NewColumn(name, elemType), false, true)
	}
	return builder.Table(), diags
}

func (b *Binder) bindMvApply(n *syntax.MvApplyOperator) *SemanticInfo {
	expanded, diags := b.bindExpansionTargets(n.Exprs)
	if n.RowLimit != nil {
		info := b.bindExpression(n.RowLimit)
		diags = append(diags, b.checkInteger(n.RowLimit, info)...)
	}
	saved := b.rowScope
	b.rowScope = expanded
	subInfo := b.bindExpression(n.Subquery)
	result := b.tableOf(n.Subquery, subInfo)
	b.rowScope = saved
	return b.setInfo(n, &SemanticInfo{ResultType: result, Diagnostics: diags})
}

func (b *Binder) bindMakeSeries(n *syntax.MakeSeriesOperator) *SemanticInfo {
	builder := NewProjectionBuilder()
	var diags []kusto.Diagnostic

	for i, e := range n.By {
		diags = append(diags, b.declareProjection(builder, e, i+1, false)...)
	}

	saved := b.scopeKind
	b.scopeKind = ScopeAggregate
	for i, e := range n.Aggregates {
		name := ""
		if named, ok := e.(*syntax.SimpleNamedExpression); ok {
			b.bindExpression(named)
			if named.Name != nil {
				name = named.Name.Name
			}
		} else {
			b.bindExpression(e)
			name = b.aggregateName(e, i+1)
		}
		// Series values materialize as arrays.
		builder.Add(kusto.NewColumn(name, kusto.TypeDynamic), false, false)
	}
	b.scopeKind = saved

	onInfo := b.bindExpression(n.OnExpr)
	axisName := b.resultColumnName(n.OnExpr)
	if axisName == "" {
		axisName = "Column1"
	}
	if s, ok := onInfo.ResultType.(*kusto.ScalarType); ok && !s.IsSummable() && !isErrorInfo(onInfo) {
		diags = append(diags, kusto.NewDiagnostic(n.OnExpr.Span(), kusto.ErrWrongArgumentType,
			1, "make-series", kusto.TypeName(onInfo.ResultType), "a summable value"))
	}
	builder.Add(kusto.NewColumn(axisName, kusto.TypeDynamic), false, false)

	for _, e := range []syntax.Expression{n.From, n.To, n.Step} {
		if e != nil {
			b.bindExpression(e)
		}
	}
	return b.setInfo(n, &SemanticInfo{ResultType: builder.Table(), Diagnostics: diags})
}

func (b *Binder) bindParse(n *syntax.ParseOperator) *SemanticInfo {
	info := b.bindExpression(n.Expr)
	var diags []kusto.Diagnostic
	if !isErrorInfo(info) && info.ResultType != kusto.TypeString && info.ResultType != kusto.TypeDynamic {
		diags = append(diags, kusto.NewDiagnostic(n.Expr.Span(), kusto.ErrWrongArgumentType,
			1, "parse", kusto.TypeName(info.ResultType), "'string'"))
	}
	builder := NewProjectionBuilder()
	for _, col := range b.visibleColumns(b.rowScope) {
		builder.Add(col, true, false)
	}
	for _, pat := range n.Patterns {
		decl, ok := pat.(*syntax.NameAndTypeDecl)
		if !ok {
			continue
		}
		t := kusto.TypeSymbol(kusto.TypeString)
		if decl.Type != nil {
			t = b.bindTypeExpression(decl.Type)
		}
		name := ""
		if decl.Name != nil {
			name = decl.Name.Name
		}
		col := kusto.NewColumn(name, t)
		b.setInfo(decl, symbolInfo(col))
		builder.Declare(col, true)
	}
	return b.setInfo(n, &SemanticInfo{ResultType: builder.Table(), Diagnostics: diags})
}

// candidateTables resolves the table set a find or search evaluates
// against.
func (b *Binder) candidateTables(in []syntax.Expression) []*kusto.TableSymbol {
	var tables []*kusto.TableSymbol
	if len(in) > 0 {
		savedRow := b.rowScope
		b.rowScope = nil
		for _, e := range in {
			info := b.bindExpression(e)
			tables = append(tables, b.withInferred(b.tableOf(e, info)))
		}
		b.rowScope = savedRow
		return tables
	}
	if b.currentDatabase != nil {
		tables = append(tables, b.currentDatabase.Tables()...)
	}
	return tables
}

func (b *Binder) bindFind(n *syntax.FindOperator) *SemanticInfo {
	tables := b.candidateTables(n.In)
	unified := b.UnifyByName(tables)

	saved := b.rowScope
	b.rowScope = unified
	predInfo := b.bindExpression(n.Predicate)
	diags := b.checkBoolean(n.Predicate, predInfo)

	builder := NewProjectionBuilder()
	builder.Add(kusto.NewColumn("source_", kusto.TypeString), false, false)
	if len(n.Projects) > 0 {
		for i, e := range n.Projects {
			diags = append(diags, b.declareProjection(builder, e, i+1, false)...)
		}
	} else {
		for _, col := range unified.Columns() {
			builder.Add(col, true, false)
		}
	}
	b.rowScope = saved
	return b.setInfo(n, &SemanticInfo{ResultType: builder.Table(), Diagnostics: diags})
}

func (b *Binder) bindSearch(n *syntax.SearchOperator) *SemanticInfo {
	var tables []*kusto.TableSymbol
	if len(n.In) == 0 && b.rowScopes[n] != nil {
		tables = []*kusto.TableSymbol{b.withInferred(b.rowScopes[n])}
	} else {
		tables = b.candidateTables(n.In)
	}
	unified := b.UnifyByNameAndType(tables)

	saved := b.rowScope
	b.rowScope = unified
	var diags []kusto.Diagnostic
	if n.Predicate != nil {
		predInfo := b.bindExpression(n.Predicate)
		// A bare term is a string; anything else must be boolean.
		if predInfo.ResultType != kusto.TypeString {
			diags = b.checkBoolean(n.Predicate, predInfo)
		}
	}
	b.rowScope = saved

	builder := NewProjectionBuilder()
	builder.Add(kusto.NewColumn("$table", kusto.TypeString), false, false)
	for _, col := range unified.Columns() {
		builder.Add(col, true, false)
	}
	return b.setInfo(n, &SemanticInfo{ResultType: builder.Table(), Diagnostics: diags})
}

func (b *Binder) bindFork(n *syntax.ForkOperator) *SemanticInfo {
	var result kusto.TypeSymbol = b.inputScope()
	input := b.rowScope
	for i, branch := range n.Branches {
		saved := b.rowScope
		b.rowScope = input
		info := b.bindExpression(branch.Expr)
		table := b.tableOf(branch.Expr, info)
		b.rowScope = saved
		if branch.Name != nil {
			named := table.WithName(branch.Name.Name)
			b.locals.Add(named)
			b.setInfo(branch.Name, symbolInfo(named))
		}
		if i == 0 {
			result = table
		}
		b.setInfo(branch, typeInfo(table))
	}
	return b.setInfo(n, typeInfo(result))
}

func (b *Binder) bindPartition(n *syntax.PartitionOperator) *SemanticInfo {
	byInfo := b.bindExpression(n.By)
	var diags []kusto.Diagnostic
	if _, ok := byInfo.ReferencedSymbol.(*kusto.Column); !ok && !isErrorInfo(byInfo) {
		diags = append(diags, kusto.NewDiagnostic(n.By.Span(), kusto.ErrColumnRequired, 1, "partition"))
	}
	subInfo := b.bindExpression(n.Subquery)
	result := b.tableOf(n.Subquery, subInfo)
	return b.setInfo(n, &SemanticInfo{ResultType: result, Diagnostics: diags})
}

func (b *Binder) bindRange(n *syntax.RangeOperator) *SemanticInfo {
	fromInfo := b.bindExpression(n.From)
	toInfo := b.bindExpression(n.To)
	stepInfo := b.bindExpression(n.Step)

	var diags []kusto.Diagnostic
	colType := kusto.TypeSymbol(kusto.TypeLong)
	if widest := kusto.WidestScalarType(fromInfo.ResultType, toInfo.ResultType, stepInfo.ResultType); widest != nil {
		colType = widest
	} else if s, ok := fromInfo.ResultType.(*kusto.ScalarType); ok && s.IsSummable() {
		colType = s
	}
	for _, pair := range []struct {
		expr syntax.Expression
		info *SemanticInfo
	}{{n.From, fromInfo}, {n.To, toInfo}, {n.Step, stepInfo}} {
		if pair.expr == nil || isErrorInfo(pair.info) {
			continue
		}
		if s, ok := pair.info.ResultType.(*kusto.ScalarType); !ok || !s.IsSummable() {
			diags = append(diags, kusto.NewDiagnostic(pair.expr.Span(), kusto.ErrWrongArgumentType,
				1, "range", kusto.TypeName(pair.info.ResultType), "a summable value"))
		}
	}

	name := "x"
	if n.Name != nil {
		name = n.Name.Name
	}
	col := kusto.NewColumn(name, colType)
	if n.Name != nil {
		b.setInfo(n.Name, symbolInfo(col))
	}
	return b.setInfo(n, &SemanticInfo{
		ResultType:  kusto.NewTableSymbol("", col),
		Diagnostics: diags,
	})
}

func (b *Binder) bindPrint(n *syntax.PrintExpression) *SemanticInfo {
	builder := NewProjectionBuilder()
	for i, e := range n.Exprs {
		if named, ok := e.(*syntax.SimpleNamedExpression); ok {
			info := b.bindExpression(named)
			name := ""
			if named.Name != nil {
				name = named.Name.Name
			}
			col := kusto.NewColumn(name, scalarOrError(info.ResultType))
			builder.Declare(col, true)
			if named.Name != nil {
				b.setInfo(named.Name, symbolInfo(col))
			}
			continue
		}
		info := b.bindExpression(e)
		builder.Add(kusto.NewColumn("print_"+strconv.Itoa(i), scalarOrError(info.ResultType)), false, false)
	}
	return b.setInfo(n, typeInfo(builder.Table()))
}

func (b *Binder) bindEvaluate(n *syntax.EvaluateOperator) *SemanticInfo {
	if n.Call == nil {
		return b.setInfo(n, typeInfo(b.inputScope()))
	}
	saved := b.scopeKind
	b.scopeKind = ScopePlugIn
	callInfo := b.bindCall(n.Call)
	b.scopeKind = saved

	if table, ok := callInfo.ResultType.(*kusto.TableSymbol); ok {
		return b.setInfo(n, typeInfo(table))
	}
	if isErrorInfo(callInfo) {
		return b.setInfo(n, &SemanticInfo{ResultType: b.inputScope()})
	}
	return b.setInfo(n, &SemanticInfo{
		ResultType: b.inputScope(),
		Diagnostics: []kusto.Diagnostic{
			kusto.NewDiagnostic(n.Call.Span(), kusto.ErrTabularExpected),
		},
	})
}

// bindInvoke calls a function with the input table as the implicit
// first argument.
func (b *Binder) bindInvoke(n *syntax.InvokeOperator) *SemanticInfo {
	call, ok := n.Call.(*syntax.Call)
	if !ok {
		if path, isPath := n.Call.(*syntax.PathExpression); isPath {
			// database('db').fn(...) routes through the path binder.
			info := b.bindExpression(path)
			if table, isTable := info.ResultType.(*kusto.TableSymbol); isTable {
				return b.setInfo(n, typeInfo(table))
			}
			return b.setInfo(n, &SemanticInfo{ResultType: b.inputScope()})
		}
		return b.setInfo(n, errorInfo())
	}

	input := b.withInferred(b.inputScope())
	nameInfo := b.bindNameReference(call.Name, true)
	args := []callArgument{{expr: call, info: typeInfo(input)}}
	for _, argExpr := range call.Args {
		arg := callArgument{expr: argExpr}
		if named, isNamed := argExpr.(*syntax.SimpleNamedExpression); isNamed && named.Name != nil {
			arg.name = named.Name.Name
		}
		arg.info = b.bindExpression(argExpr)
		args = append(args, arg)
	}

	fn, isFn := nameInfo.ReferencedSymbol.(*kusto.FunctionSymbol)
	if !isFn {
		if nameInfo.ReferencedSymbol == nil {
			return b.setInfo(n, errorInfo())
		}
		return b.setInfo(n, errorInfo(
			kusto.NewDiagnostic(call.Name.Span(), kusto.ErrNotAFunction, call.Name.Name)))
	}
	t, sig, exp, diags := b.resolveCall(fn, args, n.Span())
	info := &SemanticInfo{
		ReferencedSymbol:    fn,
		ReferencedSignature: sig,
		ResultType:          t,
		Diagnostics:         diags,
		Expansion:           exp,
	}
	b.setInfo(call, info)
	if table, isTable := t.(*kusto.TableSymbol); isTable {
		return b.setInfo(n, typeInfo(table))
	}
	return b.setInfo(n, &SemanticInfo{ResultType: b.inputScope(), Diagnostics: diags})
}

var renderChartTypes = []string{
	"table", "list", "card", "barchart", "columnchart", "piechart",
	"linechart", "timechart", "anomalychart", "areachart", "scatterchart",
	"stackedareachart", "ladderchart", "pivotchart", "timepivot",
	"treemap",
}

func (b *Binder) bindRender(n *syntax.RenderOperator) *SemanticInfo {
	var diags []kusto.Diagnostic
	if n.ChartType != nil {
		known := false
		for _, c := range renderChartTypes {
			if strings.EqualFold(c, n.ChartType.Name) {
				known = true
				break
			}
		}
		if !known {
			diags = append(diags, kusto.NewDiagnostic(n.ChartType.Span(), kusto.ErrUnknownNamedParameter,
				n.ChartType.Name, "visualization", strings.Join(renderChartTypes, ", ")))
		}
	}
	for _, p := range n.Parameters {
		b.bindExpression(p)
	}
	return b.setInfo(n, &SemanticInfo{ResultType: b.inputScope(), Diagnostics: diags})
}

func (b *Binder) bindCount(n *syntax.CountOperator) *SemanticInfo {
	name := "Count"
	if n.AsName != nil {
		name = n.AsName.Name
	}
	col := kusto.NewColumn(name, kusto.TypeLong)
	if n.AsName != nil {
		b.setInfo(n.AsName, symbolInfo(col))
	}
	return b.setInfo(n, typeInfo(kusto.NewTableSymbol("", col)))
}

func (b *Binder) bindReduce(n *syntax.ReduceOperator) *SemanticInfo {
	info := b.bindExpression(n.By)
	var diags []kusto.Diagnostic
	if !isErrorInfo(info) && info.ResultType != kusto.TypeString && info.ResultType != kusto.TypeDynamic {
		diags = append(diags, kusto.NewDiagnostic(n.By.Span(), kusto.ErrWrongArgumentType,
			1, "reduce", kusto.TypeName(info.ResultType), "'string'"))
	}
	for _, w := range n.With {
		b.bindExpression(w)
	}
	return b.setInfo(n, &SemanticInfo{ResultType: reduceTable, Diagnostics: diags})
}
