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

package parse

import (
	"strings"

	"github.com/kustoql/go-kusto-server/kusto"
	"github.com/kustoql/go-kusto-server/kusto/syntax"
)

// parseQueryOperator dispatches on the operator keyword after a pipe.
func (p *parser) parseQueryOperator() syntax.QueryOperator {
	if !p.at(TokenIdent) {
		p.errorHere("expected a query operator")
		p.skipToPipe()
		return nil
	}
	start := p.cur().Start
	word := strings.ToLower(p.cur().Text)
	switch word {
	case "where", "filter":
		p.advance()
		pred := p.parseUnpiped()
		return &syntax.FilterOperator{Fragment: frag(p.spanFrom(start)), Keyword: word, Predicate: pred}

	case "extend":
		p.advance()
		return &syntax.ExtendOperator{Fragment: frag(p.spanFrom(start)), Exprs: p.parseNamedOrExprList()}

	case "project":
		p.advance()
		return &syntax.ProjectOperator{Fragment: frag(p.spanFrom(start)), Exprs: p.parseNamedOrExprList()}

	case "project-away":
		p.advance()
		return &syntax.ProjectAwayOperator{Fragment: frag(p.spanFrom(start)), Columns: p.parseExprList()}

	case "project-rename":
		p.advance()
		return &syntax.ProjectRenameOperator{Fragment: frag(p.spanFrom(start)), Exprs: p.parseNamedOrExprList()}

	case "project-reorder":
		p.advance()
		return &syntax.ProjectReorderOperator{Fragment: frag(p.spanFrom(start)), Exprs: p.parseOrderedList()}

	case "summarize":
		return p.parseSummarize()

	case "distinct":
		p.advance()
		return &syntax.DistinctOperator{Fragment: frag(p.spanFrom(start)), Exprs: p.parseExprList()}

	case "take", "limit":
		p.advance()
		return &syntax.TakeOperator{Fragment: frag(p.spanFrom(start)), Keyword: word, Expr: p.parseUnpiped()}

	case "sample":
		p.advance()
		return &syntax.SampleOperator{Fragment: frag(p.spanFrom(start)), Expr: p.parseUnpiped()}

	case "sample-distinct":
		p.advance()
		expr := p.parseUnpiped()
		p.expectKeyword("of")
		of := p.parseUnpiped()
		return &syntax.SampleDistinctOperator{Fragment: frag(p.spanFrom(start)), Expr: expr, Of: of}

	case "sort", "order":
		p.advance()
		p.expectKeyword("by")
		return &syntax.SortOperator{Fragment: frag(p.spanFrom(start)), Exprs: p.parseOrderedList()}

	case "top":
		p.advance()
		expr := p.parseUnpiped()
		p.expectKeyword("by")
		return &syntax.TopOperator{Fragment: frag(p.spanFrom(start)), Expr: expr, By: p.parseOrderedList()}

	case "top-hitters":
		p.advance()
		expr := p.parseUnpiped()
		p.expectKeyword("of")
		of := p.parseUnpiped()
		var by syntax.Expression
		if p.atIdent("by") {
			p.advance()
			by = p.parseUnpiped()
		}
		return &syntax.TopHittersOperator{Fragment: frag(p.spanFrom(start)), Expr: expr, Of: of, By: by}

	case "top-nested":
		return p.parseTopNested()

	case "serialize":
		p.advance()
		return &syntax.SerializeOperator{Fragment: frag(p.spanFrom(start)), Exprs: p.parseNamedOrExprList()}

	case "as":
		p.advance()
		return &syntax.AsOperator{Fragment: frag(p.spanFrom(start)), Name: p.parseNameReference()}

	case "join":
		return p.parseJoin(false)

	case "lookup":
		return p.parseJoin(true)

	case "union":
		u := p.parseUnion()
		return u.(*syntax.UnionOperator)

	case "mv-expand":
		return p.parseMvExpand()

	case "mv-apply":
		return p.parseMvApply()

	case "make-series":
		return p.parseMakeSeries()

	case "parse":
		return p.parseParse()

	case "find":
		f := p.parseFind()
		return f.(*syntax.FindOperator)

	case "search":
		s := p.parseSearch()
		return s.(*syntax.SearchOperator)

	case "fork":
		return p.parseFork()

	case "partition":
		return p.parsePartition()

	case "evaluate":
		return p.parseEvaluate()

	case "invoke":
		p.advance()
		return &syntax.InvokeOperator{Fragment: frag(p.spanFrom(start)), Call: p.parsePostfix()}

	case "render":
		return p.parseRender()

	case "count":
		p.advance()
		var asName *syntax.NameReference
		if p.atIdent("as") {
			p.advance()
			asName = p.parseNameReference()
		}
		return &syntax.CountOperator{Fragment: frag(p.spanFrom(start)), AsName: asName}

	case "getschema":
		p.advance()
		return &syntax.GetSchemaOperator{Fragment: frag(p.spanFrom(start))}

	case "consume":
		p.advance()
		return &syntax.ConsumeOperator{Fragment: frag(p.spanFrom(start))}

	case "execute-and-cache":
		p.advance()
		return &syntax.ExecuteAndCacheOperator{Fragment: frag(p.spanFrom(start))}

	case "reduce":
		p.advance()
		p.expectKeyword("by")
		by := p.parseUnpiped()
		var with []syntax.Expression
		if p.atIdent("with") {
			p.advance()
			with = p.parseNamedOrExprList()
		}
		return &syntax.ReduceOperator{Fragment: frag(p.spanFrom(start)), By: by, With: with}
	}

	p.errorHere("'" + p.cur().Text + "' is not a recognized query operator")
	p.skipToPipe()
	return nil
}

func (p *parser) skipToPipe() {
	for !p.at(TokenEOF) && !p.at(TokenPipe) && !p.at(TokenSemicolon) &&
		!p.at(TokenRParen) && !p.at(TokenRBrace) {
		p.advance()
	}
}

func (p *parser) parseNamedOrExprList() []syntax.Expression {
	var exprs []syntax.Expression
	for !p.listEnd() {
		exprs = append(exprs, p.parseNamedOrExpr())
		if p.at(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	return exprs
}

func (p *parser) parseExprList() []syntax.Expression {
	var exprs []syntax.Expression
	for !p.listEnd() {
		exprs = append(exprs, p.parseUnpiped())
		if p.at(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	return exprs
}

func (p *parser) parseOrderedList() []syntax.Expression {
	var exprs []syntax.Expression
	for !p.listEnd() {
		start := p.cur().Start
		expr := p.parseUnpiped()
		ordering := syntax.OrderingUnspecified
		if p.atIdent("asc") {
			p.advance()
			ordering = syntax.OrderingAscending
		} else if p.atIdent("desc") {
			p.advance()
			ordering = syntax.OrderingDescending
		}
		// nulls first / nulls last tags are accepted and dropped.
		if p.atIdent("nulls") {
			p.advance()
			if p.atIdent("first") || p.atIdent("last") {
				p.advance()
			}
		}
		exprs = append(exprs, &syntax.OrderedExpression{
			Fragment: frag(p.spanFrom(start)), Expr: expr, Ordering: ordering,
		})
		if p.at(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	return exprs
}

func (p *parser) listEnd() bool {
	return p.at(TokenEOF) || p.at(TokenPipe) || p.at(TokenSemicolon) ||
		p.at(TokenRParen) || p.at(TokenRBrace) || p.at(TokenRBracket)
}

func (p *parser) parseSummarize() syntax.QueryOperator {
	start := p.cur().Start
	p.advance() // summarize
	op := &syntax.SummarizeOperator{}
	for !p.listEnd() && !p.atIdent("by") {
		op.Aggregates = append(op.Aggregates, p.parseNamedOrExpr())
		if p.at(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	if p.atIdent("by") {
		p.advance()
		op.By = p.parseNamedOrExprList()
	}
	op.Fragment = frag(p.spanFrom(start))
	return op
}

func (p *parser) parseTopNested() syntax.QueryOperator {
	start := p.cur().Start
	p.advance() // top-nested
	op := &syntax.TopNestedOperator{}
	for {
		cstart := p.cur().Start
		clause := &syntax.TopNestedClause{}
		if !p.atIdent("of") {
			clause.Expr = p.parseUnpiped()
		}
		p.expectKeyword("of")
		clause.Of = p.parseNamedOrExpr()
		if p.atIdent("by") {
			p.advance()
			clause.Agg = p.parseNamedOrExpr()
		}
		clause.Fragment = frag(p.spanFrom(cstart))
		op.Clauses = append(op.Clauses, clause)
		if p.at(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	op.Fragment = frag(p.spanFrom(start))
	return op
}

func (p *parser) parseJoin(lookup bool) syntax.QueryOperator {
	start := p.cur().Start
	p.advance() // join / lookup
	params := p.parseOperatorParameters("on")
	right := p.parseJoinSource()
	var onExprs []syntax.Expression
	if p.atIdent("on") {
		p.advance()
		for !p.listEnd() {
			onExprs = append(onExprs, p.parseUnpiped())
			if p.at(TokenComma) {
				p.advance()
				continue
			}
			break
		}
	}
	if lookup {
		return &syntax.LookupOperator{Fragment: frag(p.spanFrom(start)), Parameters: params, Right: right, OnExprs: onExprs}
	}
	return &syntax.JoinOperator{Fragment: frag(p.spanFrom(start)), Parameters: params, Right: right, OnExprs: onExprs}
}

// parseJoinSource parses the right side of a join: a parenthesized
// pipeline or a table reference.
func (p *parser) parseJoinSource() syntax.Expression {
	if p.at(TokenLParen) {
		start := p.cur().Start
		p.advance()
		inner := p.parseExpression()
		p.expect(TokenRParen, "')'")
		return &syntax.ParenExpression{Fragment: frag(p.spanFrom(start)), Expr: inner}
	}
	return p.parsePostfix()
}

func (p *parser) parseUnion() syntax.Expression {
	start := p.cur().Start
	p.advance() // union
	params := p.parseOperatorParameters()
	var exprs []syntax.Expression
	for !p.listEnd() {
		exprs = append(exprs, p.parseJoinSource())
		if p.at(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	return &syntax.UnionOperator{Fragment: frag(p.spanFrom(start)), Parameters: params, Exprs: exprs}
}

func (p *parser) parseMvExpandExprs() []*syntax.MvExpandExpression {
	var exprs []*syntax.MvExpandExpression
	for !p.listEnd() && !p.atIdent("limit") && !p.atIdent("on") {
		estart := p.cur().Start
		expr := p.parseNamedOrExpr()
		var to syntax.Expression
		if p.atIdent("to") {
			p.advance()
			p.expectKeyword("typeof")
			p.expect(TokenLParen, "'('")
			to = p.parseTypeExpression()
			p.expect(TokenRParen, "')'")
		}
		exprs = append(exprs, &syntax.MvExpandExpression{
			Fragment: frag(p.spanFrom(estart)), Expr: expr, To: to,
		})
		if p.at(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	return exprs
}

func (p *parser) parseMvExpand() syntax.QueryOperator {
	start := p.cur().Start
	p.advance() // mv-expand
	op := &syntax.MvExpandOperator{Exprs: p.parseMvExpandExprs()}
	if p.atIdent("limit") {
		p.advance()
		op.RowLimit = p.parseUnpiped()
	}
	op.Fragment = frag(p.spanFrom(start))
	return op
}

func (p *parser) parseMvApply() syntax.QueryOperator {
	start := p.cur().Start
	p.advance() // mv-apply
	op := &syntax.MvApplyOperator{Exprs: p.parseMvExpandExprs()}
	if p.atIdent("limit") {
		p.advance()
		op.RowLimit = p.parseUnpiped()
	}
	p.expectKeyword("on")
	p.expect(TokenLParen, "'('")
	op.Subquery = p.parseExpression()
	p.expect(TokenRParen, "')'")
	op.Fragment = frag(p.spanFrom(start))
	return op
}

func (p *parser) parseMakeSeries() syntax.QueryOperator {
	start := p.cur().Start
	p.advance() // make-series
	op := &syntax.MakeSeriesOperator{}
	for !p.listEnd() && !p.atIdent("on") {
		op.Aggregates = append(op.Aggregates, p.parseNamedOrExpr())
		if p.atIdent("default") {
			p.advance()
			p.expect(TokenEq, "'='")
			p.parseUnpiped() // default value participates at execution only
		}
		if p.at(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	p.expectKeyword("on")
	op.OnExpr = p.parseUnpiped()
	if p.atIdent("from") {
		p.advance()
		op.From = p.parseUnpiped()
	}
	if p.atIdent("to") {
		p.advance()
		op.To = p.parseUnpiped()
	}
	if p.atIdent("step") {
		p.advance()
		op.Step = p.parseUnpiped()
	}
	if p.atIdent("by") {
		p.advance()
		op.By = p.parseNamedOrExprList()
	}
	op.Fragment = frag(p.spanFrom(start))
	return op
}

func (p *parser) parseParse() syntax.QueryOperator {
	start := p.cur().Start
	p.advance() // parse
	kind := "simple"
	if p.at(TokenIdent) && strings.EqualFold(p.cur().Text, "kind") && p.next().Kind == TokenEq {
		p.advance()
		p.advance()
		kind = strings.ToLower(p.expect(TokenIdent, "parse kind").Text)
	}
	op := &syntax.ParseOperator{Kind: kind}
	op.Expr = p.parseUnpiped()
	p.expectKeyword("with")
	for !p.listEnd() {
		if p.at(TokenString) {
			t := p.advance()
			op.Patterns = append(op.Patterns, &syntax.Literal{
				Fragment: frag(p.spanFrom(t.Start)), Type: kusto.TypeString, Value: t.Value, Text: t.Text,
			})
			continue
		}
		if p.at(TokenIdent) || p.at(TokenLBracket) {
			cstart := p.cur().Start
			name := p.parseNameReference()
			var typ syntax.Expression
			if p.at(TokenColon) {
				p.advance()
				typ = p.parseTypeExpression()
			}
			op.Patterns = append(op.Patterns, &syntax.NameAndTypeDecl{
				Fragment: frag(p.spanFrom(cstart)), Name: name, Type: typ,
			})
			continue
		}
		if p.at(TokenStar) {
			t := p.advance()
			op.Patterns = append(op.Patterns, &syntax.StarExpression{
				Fragment: frag(kusto.Span{Start: t.Start, End: t.End}),
			})
			continue
		}
		break
	}
	op.Fragment = frag(p.spanFrom(start))
	return op
}

func (p *parser) parseFind() syntax.Expression {
	start := p.cur().Start
	p.advance() // find
	op := &syntax.FindOperator{}
	if p.atIdent("in") {
		p.advance()
		p.expect(TokenLParen, "'('")
		for !p.at(TokenRParen) && !p.at(TokenEOF) {
			op.In = append(op.In, p.parsePostfix())
			if p.at(TokenComma) {
				p.advance()
			}
		}
		p.expect(TokenRParen, "')'")
	}
	p.expectKeyword("where")
	op.Predicate = p.parseUnpiped()
	if p.atIdent("project") {
		p.advance()
		op.Projects = p.parseNamedOrExprList()
	}
	op.Fragment = frag(p.spanFrom(start))
	return op
}

func (p *parser) parseSearch() syntax.Expression {
	start := p.cur().Start
	p.advance() // search
	op := &syntax.SearchOperator{}
	if p.atIdent("in") {
		p.advance()
		p.expect(TokenLParen, "'('")
		for !p.at(TokenRParen) && !p.at(TokenEOF) {
			op.In = append(op.In, p.parsePostfix())
			if p.at(TokenComma) {
				p.advance()
			}
		}
		p.expect(TokenRParen, "')'")
	}
	op.Predicate = p.parseUnpiped()
	op.Fragment = frag(p.spanFrom(start))
	return op
}

func (p *parser) parseFork() syntax.QueryOperator {
	start := p.cur().Start
	p.advance() // fork
	op := &syntax.ForkOperator{}
	for p.at(TokenIdent) || p.at(TokenLParen) {
		bstart := p.cur().Start
		branch := &syntax.ForkBranch{}
		if p.at(TokenIdent) && p.next().Kind == TokenEq {
			branch.Name = p.parseNameReference()
			p.advance() // '='
		}
		p.expect(TokenLParen, "'('")
		branch.Expr = p.parseExpression()
		p.expect(TokenRParen, "')'")
		branch.Fragment = frag(p.spanFrom(bstart))
		op.Branches = append(op.Branches, branch)
	}
	op.Fragment = frag(p.spanFrom(start))
	return op
}

func (p *parser) parsePartition() syntax.QueryOperator {
	start := p.cur().Start
	p.advance() // partition
	p.expectKeyword("by")
	// A bare name directly followed by '(' is the key; the parenthesis
	// opens the subquery, not a call.
	var by syntax.Expression
	if p.at(TokenIdent) && p.next().Kind == TokenLParen {
		by = p.parseNameReference()
	} else {
		by = p.parseUnpiped()
	}
	p.expect(TokenLParen, "'('")
	sub := p.parseExpression()
	p.expect(TokenRParen, "')'")
	return &syntax.PartitionOperator{Fragment: frag(p.spanFrom(start)), By: by, Subquery: sub}
}

func (p *parser) parseEvaluate() syntax.QueryOperator {
	start := p.cur().Start
	p.advance() // evaluate
	params := p.parseOperatorParameters()
	name := p.parseNameReference()
	var call *syntax.Call
	if p.at(TokenLParen) {
		call = p.parseCall(name.Span().Start, name).(*syntax.Call)
	} else {
		call = &syntax.Call{Fragment: frag(name.Span()), Name: name}
	}
	return &syntax.EvaluateOperator{Fragment: frag(p.spanFrom(start)), Parameters: params, Call: call}
}

func (p *parser) parseRender() syntax.QueryOperator {
	start := p.cur().Start
	p.advance() // render
	name := p.parseNameReference()
	op := &syntax.RenderOperator{ChartType: name}
	if p.atIdent("with") {
		p.advance()
		p.expect(TokenLParen, "'('")
		for !p.at(TokenRParen) && !p.at(TokenEOF) {
			op.Parameters = append(op.Parameters, p.parseNamedOrExpr())
			if p.at(TokenComma) {
				p.advance()
			}
		}
		p.expect(TokenRParen, "')'")
	}
	op.Fragment = frag(p.spanFrom(start))
	return op
}
