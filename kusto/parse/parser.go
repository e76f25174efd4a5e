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

// Package parse is the recursive-descent front end for the query and
// function-body grammars. Parsing is best-effort: errors become syntax
// diagnostics on a usable tree, never panics.
package parse

import (
	"strconv"
	"strings"

	"github.com/kustoql/go-kusto-server/kusto"
	"github.com/kustoql/go-kusto-server/kusto/syntax"
)

type parser struct {
	source string
	toks   []Token
	pos    int
	diags  []kusto.Diagnostic
}

// Parse parses a whole query block: let statements followed by a query
// expression.
func Parse(source string) (*syntax.QueryBlock, []kusto.Diagnostic) {
	p := &parser{source: source, toks: Tokenize(source)}
	block := p.parseQueryBlock()
	return block, p.diags
}

// ParseFunctionBody parses a function body, with or without the
// surrounding braces.
func ParseFunctionBody(source string) (*syntax.FunctionBody, []kusto.Diagnostic) {
	p := &parser{source: source, toks: Tokenize(source)}
	body := p.parseFunctionBody(true)
	return body, p.diags
}

func (p *parser) cur() Token  { return p.toks[p.pos] }
func (p *parser) next() Token { return p.peek(1) }

func (p *parser) peek(n int) Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) at(kind TokenKind) bool { return p.cur().Kind == kind }

func (p *parser) atIdent(text string) bool {
	return p.cur().Kind == TokenIdent && strings.EqualFold(p.cur().Text, text)
}

func (p *parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind TokenKind, what string) Token {
	if p.at(kind) {
		return p.advance()
	}
	p.errorHere("expected " + what)
	return p.cur()
}

func (p *parser) errorHere(msg string) {
	t := p.cur()
	p.diags = append(p.diags, kusto.NewDiagnostic(
		kusto.Span{Start: t.Start, End: t.End}, kusto.ErrSyntax, msg))
}

func (p *parser) spanFrom(start int) kusto.Span {
	end := start
	if p.pos > 0 {
		end = p.toks[p.pos-1].End
	}
	return kusto.Span{Start: start, End: end}
}

func frag(span kusto.Span) syntax.Fragment { return syntax.Fragment{SourceSpan: span} }

func (p *parser) parseQueryBlock() *syntax.QueryBlock {
	start := p.cur().Start
	var stmts []syntax.Statement
	for !p.at(TokenEOF) {
		stmts = append(stmts, p.parseStatement())
		if p.at(TokenSemicolon) {
			p.advance()
			continue
		}
		if !p.at(TokenEOF) {
			p.errorHere("expected ';' or end of query")
			break
		}
	}
	return &syntax.QueryBlock{Fragment: frag(p.spanFrom(start)), Statements: stmts}
}

func (p *parser) parseStatement() syntax.Statement {
	start := p.cur().Start
	if p.atIdent("let") {
		p.advance()
		name := p.parseNameReference()
		p.expect(TokenEq, "'='")
		expr := p.parseExpression()
		return &syntax.LetStatement{Fragment: frag(p.spanFrom(start)), Name: name, Expr: expr}
	}
	expr := p.parseExpression()
	return &syntax.ExpressionStatement{Fragment: frag(p.spanFrom(start)), Expr: expr}
}

func (p *parser) parseFunctionBody(topLevel bool) *syntax.FunctionBody {
	start := p.cur().Start
	braced := false
	if p.at(TokenLBrace) {
		p.advance()
		braced = true
	}
	body := &syntax.FunctionBody{}
	for !p.at(TokenEOF) && !(braced && p.at(TokenRBrace)) {
		if p.atIdent("let") {
			body.Statements = append(body.Statements, p.parseStatement())
		} else {
			expr := p.parseExpression()
			body.Expr = expr
		}
		if p.at(TokenSemicolon) {
			p.advance()
			continue
		}
		break
	}
	if braced {
		p.expect(TokenRBrace, "'}'")
	}
	body.Fragment = frag(p.spanFrom(start))
	if sp := body.Fragment.SourceSpan; sp.End > sp.Start && sp.End <= len(p.source) {
		body.Source = p.source[sp.Start:sp.End]
	}
	return body
}

// parseExpression parses a full expression including pipe chains. A
// leading operator keyword (as in partition and mv-apply subqueries)
// heads an implicit pipeline over the surrounding row scope.
func (p *parser) parseExpression() syntax.Expression {
	start := p.cur().Start
	var left syntax.Expression
	if p.at(TokenIdent) && isOperatorKeyword(strings.ToLower(p.cur().Text)) {
		op := p.parseQueryOperator()
		if op == nil {
			return &syntax.Literal{Fragment: frag(p.spanFrom(start))}
		}
		left = &syntax.PipeExpression{Fragment: frag(p.spanFrom(start)), Operator: op}
	} else {
		left = p.parseUnpiped()
	}
	for p.at(TokenPipe) {
		p.advance()
		op := p.parseQueryOperator()
		if op == nil {
			break
		}
		left = &syntax.PipeExpression{Fragment: frag(p.spanFrom(start)), Expr: left, Operator: op}
	}
	return left
}

// operator keywords that cannot begin an ordinary expression; these
// head implicit pipelines inside subqueries. Source forms that are
// also primary expressions (range, print, union, find, search,
// datatable) are deliberately absent.
var operatorKeywords = map[string]bool{
	"where": true, "filter": true, "extend": true, "project": true,
	"project-away": true, "project-rename": true, "project-reorder": true,
	"summarize": true, "distinct": true, "take": true, "limit": true,
	"sample": true, "sample-distinct": true, "sort": true, "order": true,
	"top": true, "top-hitters": true, "top-nested": true, "serialize": true,
	"join": true, "lookup": true, "mv-expand": true, "mv-apply": true,
	"make-series": true, "parse": true, "fork": true, "partition": true,
	"evaluate": true, "invoke": true, "render": true, "count": true,
	"getschema": true, "consume": true, "execute-and-cache": true,
	"reduce": true,
}

func isOperatorKeyword(word string) bool { return operatorKeywords[word] }

func (p *parser) parseUnpiped() syntax.Expression { return p.parseOr() }

func (p *parser) parseOr() syntax.Expression {
	start := p.cur().Start
	left := p.parseAnd()
	for p.atIdent("or") {
		p.advance()
		right := p.parseAnd()
		left = &syntax.BinaryExpression{Fragment: frag(p.spanFrom(start)), Op: kusto.OpOr, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseAnd() syntax.Expression {
	start := p.cur().Start
	left := p.parseRelational()
	for p.atIdent("and") {
		p.advance()
		right := p.parseRelational()
		left = &syntax.BinaryExpression{Fragment: frag(p.spanFrom(start)), Op: kusto.OpAnd, Left: left, Right: right}
	}
	return left
}

var stringOpKinds = map[string][2]kusto.OperatorKind{
	// positive, negated
	"contains":       {kusto.OpContains, kusto.OpNotContains},
	"contains_cs":    {kusto.OpContainsCs, kusto.OpNotContainsCs},
	"startswith":     {kusto.OpStartsWith, kusto.OpNotStartsWith},
	"startswith_cs":  {kusto.OpStartsWithCs, kusto.OpNotStartsWithCs},
	"endswith":       {kusto.OpEndsWith, kusto.OpNotEndsWith},
	"endswith_cs":    {kusto.OpEndsWithCs, kusto.OpNotEndsWithCs},
	"has":            {kusto.OpHas, kusto.OpNotHas},
	"has_cs":         {kusto.OpHasCs, kusto.OpNotHasCs},
	"hasprefix":      {kusto.OpHasPrefix, kusto.OpNotHasPrefix},
	"hasprefix_cs":   {kusto.OpHasPrefixCs, kusto.OpNotHasPrefixCs},
	"hassuffix":      {kusto.OpHasSuffix, kusto.OpNotHasSuffix},
	"hassuffix_cs":   {kusto.OpHasSuffixCs, kusto.OpNotHasSuffixCs},
	"like":           {kusto.OpLike, kusto.OpNotLike},
	"like_cs":        {kusto.OpLikeCs, kusto.OpNotLikeCs},
}

func (p *parser) parseRelational() syntax.Expression {
	start := p.cur().Start
	left := p.parseAdditive()
	for {
		var op kusto.OperatorKind
		negated := false
		switch {
		case p.at(TokenEqEq):
			op = kusto.OpEqual
		case p.at(TokenBangEq):
			op = kusto.OpNotEqual
		case p.at(TokenLt):
			op = kusto.OpLessThan
		case p.at(TokenLtEq):
			op = kusto.OpLessThanOrEqual
		case p.at(TokenGt):
			op = kusto.OpGreaterThan
		case p.at(TokenGtEq):
			op = kusto.OpGreaterThanOrEqual
		case p.at(TokenEqTilde):
			op = kusto.OpEqualTilde
		case p.at(TokenBangTilde):
			op = kusto.OpBangTilde
		case p.at(TokenBang) && p.next().Kind == TokenIdent && p.next().Start == p.cur().End:
			negated = true
		}

		if negated {
			word := strings.ToLower(p.next().Text)
			if kinds, ok := stringOpKinds[word]; ok {
				p.advance()
				p.advance()
				right := p.parseAdditive()
				left = &syntax.BinaryExpression{Fragment: frag(p.spanFrom(start)), Op: kinds[1], Left: left, Right: right}
				continue
			}
			if word == "in" {
				p.advance()
				p.advance()
				inOp := kusto.OpNotIn
				if p.at(TokenTilde) {
					p.advance()
					inOp = kusto.OpNotInCs
				}
				left = p.parseInList(start, inOp, left)
				continue
			}
			if word == "between" {
				p.advance()
				p.advance()
				left = p.parseBetween(start, kusto.OpNotBetween, left)
				continue
			}
			return left
		}

		if op != kusto.OpUnknown {
			p.advance()
			right := p.parseAdditive()
			left = &syntax.BinaryExpression{Fragment: frag(p.spanFrom(start)), Op: op, Left: left, Right: right}
			continue
		}

		if p.cur().Kind == TokenIdent {
			word := strings.ToLower(p.cur().Text)
			if kinds, ok := stringOpKinds[word]; ok {
				p.advance()
				right := p.parseAdditive()
				left = &syntax.BinaryExpression{Fragment: frag(p.spanFrom(start)), Op: kinds[0], Left: left, Right: right}
				continue
			}
			switch word {
			case "in":
				p.advance()
				inOp := kusto.OpIn
				if p.at(TokenTilde) {
					p.advance()
					inOp = kusto.OpInCs
				}
				left = p.parseInList(start, inOp, left)
				continue
			case "between":
				p.advance()
				left = p.parseBetween(start, kusto.OpBetween, left)
				continue
			case "has_any":
				p.advance()
				left = p.parseInList(start, kusto.OpHasAny, left)
				continue
			case "matches":
				if strings.EqualFold(p.next().Text, "regex") {
					p.advance()
					p.advance()
					right := p.parseAdditive()
					left = &syntax.BinaryExpression{Fragment: frag(p.spanFrom(start)), Op: kusto.OpMatchRegex, Left: left, Right: right}
					continue
				}
			}
		}
		return left
	}
}

func (p *parser) parseInList(start int, op kusto.OperatorKind, left syntax.Expression) syntax.Expression {
	p.expect(TokenLParen, "'('")
	var values []syntax.Expression
	for !p.at(TokenRParen) && !p.at(TokenEOF) {
		values = append(values, p.parseExpression())
		if p.at(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(TokenRParen, "')'")
	return &syntax.InExpression{Fragment: frag(p.spanFrom(start)), Op: op, Left: left, Values: values}
}

func (p *parser) parseBetween(start int, op kusto.OperatorKind, left syntax.Expression) syntax.Expression {
	p.expect(TokenLParen, "'('")
	low := p.parseAdditive()
	p.expect(TokenDotDot, "'..'")
	high := p.parseAdditive()
	p.expect(TokenRParen, "')'")
	return &syntax.BetweenExpression{Fragment: frag(p.spanFrom(start)), Op: op, Left: left, Low: low, High: high}
}

func (p *parser) parseAdditive() syntax.Expression {
	start := p.cur().Start
	left := p.parseMultiplicative()
	for p.at(TokenPlus) || p.at(TokenMinus) {
		op := kusto.OpAdd
		if p.at(TokenMinus) {
			op = kusto.OpSubtract
		}
		p.advance()
		right := p.parseMultiplicative()
		left = &syntax.BinaryExpression{Fragment: frag(p.spanFrom(start)), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseMultiplicative() syntax.Expression {
	start := p.cur().Start
	left := p.parseUnary()
	for p.at(TokenStar) || p.at(TokenSlash) || p.at(TokenPercent) {
		var op kusto.OperatorKind
		switch p.cur().Kind {
		case TokenStar:
			op = kusto.OpMultiply
		case TokenSlash:
			op = kusto.OpDivide
		default:
			op = kusto.OpModulo
		}
		p.advance()
		right := p.parseUnary()
		left = &syntax.BinaryExpression{Fragment: frag(p.spanFrom(start)), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseUnary() syntax.Expression {
	start := p.cur().Start
	if p.at(TokenMinus) || p.at(TokenPlus) {
		op := kusto.OpUnaryMinus
		if p.at(TokenPlus) {
			op = kusto.OpUnaryPlus
		}
		p.advance()
		expr := p.parseUnary()
		return &syntax.PrefixUnaryExpression{Fragment: frag(p.spanFrom(start)), Op: op, Expr: expr}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() syntax.Expression {
	start := p.cur().Start
	expr := p.parsePrimary()
	for {
		switch {
		case p.at(TokenDot):
			p.advance()
			sel := p.parseSelector()
			expr = &syntax.PathExpression{Fragment: frag(p.spanFrom(start)), Expr: expr, Selector: sel}
		case p.at(TokenLBracket):
			p.advance()
			index := p.parseExpression()
			p.expect(TokenRBracket, "']'")
			expr = &syntax.ElementExpression{Fragment: frag(p.spanFrom(start)), Expr: expr, Index: index}
		default:
			return expr
		}
	}
}

// parseSelector parses the right side of a dot: a name or a call.
func (p *parser) parseSelector() syntax.Expression {
	start := p.cur().Start
	name := p.parseNameReference()
	if p.at(TokenLParen) {
		return p.parseCall(start, name)
	}
	return name
}

// literalTypeNames are the function-style literal forms.
var literalTypeNames = map[string]*kusto.ScalarType{
	"datetime": kusto.TypeDateTime,
	"date":     kusto.TypeDateTime,
	"time":     kusto.TypeTimespan,
	"timespan": kusto.TypeTimespan,
	"guid":     kusto.TypeGuid,
	"dynamic":  kusto.TypeDynamic,
	"int":      kusto.TypeInt,
	"long":     kusto.TypeLong,
	"real":     kusto.TypeReal,
	"double":   kusto.TypeReal,
	"decimal":  kusto.TypeDecimal,
	"bool":     kusto.TypeBool,
}

func (p *parser) parsePrimary() syntax.Expression {
	start := p.cur().Start
	t := p.cur()
	switch t.Kind {
	case TokenLong:
		p.advance()
		v, _ := strconv.ParseInt(t.Text, 10, 64)
		return &syntax.Literal{Fragment: frag(p.spanFrom(start)), Type: kusto.TypeLong, Value: v, Text: t.Text}
	case TokenReal:
		p.advance()
		v, _ := strconv.ParseFloat(t.Text, 64)
		return &syntax.Literal{Fragment: frag(p.spanFrom(start)), Type: kusto.TypeReal, Value: v, Text: t.Text}
	case TokenTimespan:
		p.advance()
		return &syntax.Literal{Fragment: frag(p.spanFrom(start)), Type: kusto.TypeTimespan, Value: t.Text, Text: t.Text}
	case TokenString:
		p.advance()
		return &syntax.Literal{Fragment: frag(p.spanFrom(start)), Type: kusto.TypeString, Value: t.Value, Text: t.Text}
	case TokenStar:
		p.advance()
		return &syntax.StarExpression{Fragment: frag(p.spanFrom(start))}
	case TokenLBracket:
		return p.parseBracketedName()
	case TokenLParen:
		if p.lambdaAhead() {
			return p.parseLambda()
		}
		p.advance()
		inner := p.parseExpression()
		p.expect(TokenRParen, "')'")
		return &syntax.ParenExpression{Fragment: frag(p.spanFrom(start)), Expr: inner}
	case TokenIdent:
		word := strings.ToLower(t.Text)
		switch word {
		case "true", "false":
			p.advance()
			return &syntax.Literal{Fragment: frag(p.spanFrom(start)), Type: kusto.TypeBool, Value: word == "true", Text: t.Text}
		case "datatable":
			return p.parseDataTable()
		case "print":
			return p.parsePrint()
		case "range":
			if p.next().Kind == TokenIdent && strings.EqualFold(p.peek(2).Text, "from") {
				return p.parseRange()
			}
		case "union":
			return p.parseUnion()
		case "find":
			return p.parseFind()
		case "search":
			return p.parseSearch()
		}
		if lt, ok := literalTypeNames[word]; ok && p.next().Kind == TokenLParen {
			return p.parseTypedLiteral(lt)
		}
		name := p.parseNameReference()
		if p.at(TokenLParen) {
			return p.parseCall(start, name)
		}
		return name
	}
	p.errorHere("unexpected token '" + t.Text + "'")
	p.advance()
	return &syntax.Literal{Fragment: frag(p.spanFrom(start)), Type: nil, Value: nil, Text: t.Text}
}

// lambdaAhead reports whether the current '(' opens a lambda parameter
// list, which is the case when its matching ')' is followed by '{'.
func (p *parser) lambdaAhead() bool {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				return i+1 < len(p.toks) && p.toks[i+1].Kind == TokenLBrace
			}
		case TokenEOF:
			return false
		}
	}
	return false
}

func (p *parser) parseLambda() syntax.Expression {
	start := p.cur().Start
	p.expect(TokenLParen, "'('")
	var params []*syntax.FunctionParameter
	for !p.at(TokenRParen) && !p.at(TokenEOF) {
		pstart := p.cur().Start
		name := p.parseNameReference()
		var typ syntax.Expression
		if p.at(TokenColon) {
			p.advance()
			typ = p.parseTypeExpression()
		}
		var def syntax.Expression
		if p.at(TokenEq) {
			p.advance()
			def = p.parseUnpiped()
		}
		params = append(params, &syntax.FunctionParameter{
			Fragment: frag(p.spanFrom(pstart)), Name: name, Type: typ, DefaultValue: def,
		})
		if p.at(TokenComma) {
			p.advance()
		}
	}
	p.expect(TokenRParen, "')'")
	body := p.parseFunctionBody(false)
	return &syntax.FunctionDeclaration{Fragment: frag(p.spanFrom(start)), Parameters: params, Body: body}
}

// parseTypeExpression parses `long` or `(a: long, b: string)` or `(*)`.
func (p *parser) parseTypeExpression() syntax.Expression {
	start := p.cur().Start
	if p.at(TokenLParen) {
		p.advance()
		schema := &syntax.SchemaTypeExpression{}
		for !p.at(TokenRParen) && !p.at(TokenEOF) {
			if p.at(TokenStar) {
				p.advance()
				schema.Star = true
			} else {
				cstart := p.cur().Start
				name := p.parseNameReference()
				var typ syntax.Expression
				if p.at(TokenColon) {
					p.advance()
					typ = p.parseTypeExpression()
				}
				schema.Columns = append(schema.Columns, &syntax.NameAndTypeDecl{
					Fragment: frag(p.spanFrom(cstart)), Name: name, Type: typ,
				})
			}
			if p.at(TokenComma) {
				p.advance()
			}
		}
		p.expect(TokenRParen, "')'")
		schema.Fragment = frag(p.spanFrom(start))
		return schema
	}
	name := p.expect(TokenIdent, "type name")
	return &syntax.PrimitiveTypeExpression{Fragment: frag(p.spanFrom(start)), TypeName: name.Text}
}

// parseTypedLiteral consumes name '(' raw ')' into a literal of the
// named type.
func (p *parser) parseTypedLiteral(t *kusto.ScalarType) syntax.Expression {
	start := p.cur().Start
	p.advance() // type name
	p.expect(TokenLParen, "'('")
	depth := 1
	textStart := p.cur().Start
	textEnd := textStart
	var value interface{}
	var single *Token
	count := 0
	for !p.at(TokenEOF) && depth > 0 {
		switch p.cur().Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				p.advance()
				goto done
			}
		}
		tok := p.advance()
		textEnd = tok.End
		single = &tok
		count++
	}
done:
	text := ""
	if textEnd > textStart && textEnd <= len(p.source) {
		text = p.source[textStart:textEnd]
	}
	if count == 1 && single != nil {
		switch single.Kind {
		case TokenLong:
			v, _ := strconv.ParseInt(single.Text, 10, 64)
			if t == kusto.TypeInt {
				value = int32(v)
			} else {
				value = v
			}
		case TokenReal:
			value, _ = strconv.ParseFloat(single.Text, 64)
		case TokenString:
			value = single.Value
		default:
			value = single.Text
		}
	} else {
		value = text
	}
	return &syntax.Literal{Fragment: frag(p.spanFrom(start)), Type: t, Value: value, Text: text}
}

func (p *parser) parseNameReference() *syntax.NameReference {
	start := p.cur().Start
	if p.at(TokenLBracket) {
		n := p.parseBracketedName()
		if nr, ok := n.(*syntax.NameReference); ok {
			return nr
		}
	}
	t := p.expect(TokenIdent, "name")
	return &syntax.NameReference{Fragment: frag(p.spanFrom(start)), Name: t.Text}
}

func (p *parser) parseBracketedName() syntax.Expression {
	start := p.cur().Start
	p.expect(TokenLBracket, "'['")
	t := p.expect(TokenString, "quoted name")
	p.expect(TokenRBracket, "']'")
	return &syntax.NameReference{Fragment: frag(p.spanFrom(start)), Name: t.Value}
}

func (p *parser) parseCall(start int, name *syntax.NameReference) syntax.Expression {
	p.expect(TokenLParen, "'('")
	var args []syntax.Expression
	for !p.at(TokenRParen) && !p.at(TokenEOF) {
		args = append(args, p.parseArgument())
		if p.at(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(TokenRParen, "')'")
	return &syntax.Call{Fragment: frag(p.spanFrom(start)), Name: name, Args: args}
}

func (p *parser) parseArgument() syntax.Expression {
	start := p.cur().Start
	if p.at(TokenStar) {
		p.advance()
		return &syntax.StarExpression{Fragment: frag(p.spanFrom(start))}
	}
	if p.at(TokenIdent) && p.next().Kind == TokenEq {
		name := p.parseNameReference()
		p.advance() // '='
		expr := p.parseUnpiped()
		return &syntax.SimpleNamedExpression{Fragment: frag(p.spanFrom(start)), Name: name, Expr: expr}
	}
	return p.parseUnpiped()
}

// parseNamedOrExpr parses `Name = expr` or a bare expression, for
// projection lists.
func (p *parser) parseNamedOrExpr() syntax.Expression {
	start := p.cur().Start
	named := p.at(TokenIdent) && p.next().Kind == TokenEq
	if !named && p.at(TokenLBracket) {
		// Bracketed declared name: ['col name'] = expr.
		depth := 0
		for i := p.pos; i < len(p.toks); i++ {
			if p.toks[i].Kind == TokenLBracket {
				depth++
			} else if p.toks[i].Kind == TokenRBracket {
				depth--
				if depth == 0 {
					named = i+1 < len(p.toks) && p.toks[i+1].Kind == TokenEq
					break
				}
			}
		}
	}
	if named {
		name := p.parseNameReference()
		p.advance() // '='
		expr := p.parseUnpiped()
		return &syntax.SimpleNamedExpression{Fragment: frag(p.spanFrom(start)), Name: name, Expr: expr}
	}
	return p.parseUnpiped()
}

func (p *parser) parseDataTable() syntax.Expression {
	start := p.cur().Start
	p.advance() // datatable
	p.expect(TokenLParen, "'('")
	var cols []*syntax.NameAndTypeDecl
	for !p.at(TokenRParen) && !p.at(TokenEOF) {
		cstart := p.cur().Start
		name := p.parseNameReference()
		p.expect(TokenColon, "':'")
		typ := p.parseTypeExpression()
		cols = append(cols, &syntax.NameAndTypeDecl{Fragment: frag(p.spanFrom(cstart)), Name: name, Type: typ})
		if p.at(TokenComma) {
			p.advance()
		}
	}
	p.expect(TokenRParen, "')'")
	p.expect(TokenLBracket, "'['")
	var values []syntax.Expression
	for !p.at(TokenRBracket) && !p.at(TokenEOF) {
		values = append(values, p.parseUnpiped())
		if p.at(TokenComma) {
			p.advance()
		}
	}
	p.expect(TokenRBracket, "']'")
	return &syntax.DataTableExpression{Fragment: frag(p.spanFrom(start)), Columns: cols, Values: values}
}

func (p *parser) parsePrint() syntax.Expression {
	start := p.cur().Start
	p.advance() // print
	var exprs []syntax.Expression
	for !p.at(TokenEOF) && !p.at(TokenPipe) {
		exprs = append(exprs, p.parseNamedOrExpr())
		if p.at(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	return &syntax.PrintExpression{Fragment: frag(p.spanFrom(start)), Exprs: exprs}
}

func (p *parser) parseRange() syntax.Expression {
	start := p.cur().Start
	p.advance() // range
	name := p.parseNameReference()
	p.expectKeyword("from")
	from := p.parseUnpiped()
	p.expectKeyword("to")
	to := p.parseUnpiped()
	p.expectKeyword("step")
	step := p.parseUnpiped()
	return &syntax.RangeOperator{Fragment: frag(p.spanFrom(start)), Name: name, From: from, To: to, Step: step}
}

func (p *parser) expectKeyword(word string) {
	if p.atIdent(word) {
		p.advance()
		return
	}
	p.errorHere("expected '" + word + "'")
}

// parseOperatorParameters parses leading name=value pairs such as
// kind=inner.
func (p *parser) parseOperatorParameters(stopWords ...string) []syntax.Expression {
	var params []syntax.Expression
	for p.at(TokenIdent) && p.next().Kind == TokenEq {
		word := strings.ToLower(p.cur().Text)
		stop := false
		for _, s := range stopWords {
			if word == s {
				stop = true
			}
		}
		if stop {
			break
		}
		start := p.cur().Start
		name := p.parseNameReference()
		p.advance() // '='
		var value syntax.Expression
		if p.at(TokenIdent) && p.next().Kind != TokenDot {
			value = p.parseNameReference()
		} else {
			value = p.parseUnpiped()
		}
		params = append(params, &syntax.SimpleNamedExpression{
			Fragment: frag(p.spanFrom(start)), Name: name, Expr: value,
		})
	}
	return params
}
