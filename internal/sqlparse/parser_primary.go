package sqlparse

import (
	"fmt"
	"strings"
)

// Primary expression parsing: literals, column references, function
// calls, CASE, CAST, EXISTS, subqueries, and window specifications.

// parsePrimary parses a primary expression.
func (p *Parser) parsePrimary() Expr {
	switch p.token.Type {
	case TOKEN_NUMBER:
		lit := &Literal{Type: LiteralNumber, Value: p.token.Literal}
		p.nextToken()
		return lit
	case TOKEN_STRING:
		lit := &Literal{Type: LiteralString, Value: p.token.Literal}
		p.nextToken()
		return lit
	case TOKEN_TRUE:
		p.nextToken()
		return &Literal{Type: LiteralBool, Value: "TRUE"}
	case TOKEN_FALSE:
		p.nextToken()
		return &Literal{Type: LiteralBool, Value: "FALSE"}
	case TOKEN_NULL:
		p.nextToken()
		return &Literal{Type: LiteralNull, Value: "NULL"}
	case TOKEN_CASE:
		return p.parseCaseExpr()
	case TOKEN_CAST:
		return p.parseCastExpr()
	case TOKEN_EXISTS:
		return p.parseExistsExpr(false)
	case TOKEN_LPAREN:
		return p.parseParenOrSubquery()
	case TOKEN_IDENT:
		return p.parseIdentExpr()
	}

	p.addError(fmt.Sprintf("unexpected token in expression: %s", p.token.Type))
	p.nextToken()
	return &Literal{Type: LiteralNull, Value: "NULL"}
}

// parseCaseExpr parses both simple and searched CASE expressions.
func (p *Parser) parseCaseExpr() Expr {
	p.expect(TOKEN_CASE)
	expr := &CaseExpr{}

	if !p.check(TOKEN_WHEN) {
		expr.Operand = p.parseExpression()
	}

	for p.match(TOKEN_WHEN) {
		when := WhenClause{Cond: p.parseExpression()}
		p.expect(TOKEN_THEN)
		when.Then = p.parseExpression()
		expr.Whens = append(expr.Whens, when)
	}
	if len(expr.Whens) == 0 {
		p.addError("expected WHEN clause in CASE expression")
	}

	if p.match(TOKEN_ELSE) {
		expr.Else = p.parseExpression()
	}
	p.expect(TOKEN_END)
	return expr
}

// parseCastExpr parses CAST(expr AS type).
func (p *Parser) parseCastExpr() Expr {
	p.expect(TOKEN_CAST)
	p.expect(TOKEN_LPAREN)
	expr := &CastExpr{Expr: p.parseExpression()}
	p.expect(TOKEN_AS)
	expr.TypeName = p.parseTypeName()
	p.expect(TOKEN_RPAREN)
	return expr
}

// parseExistsExpr parses EXISTS (query).
func (p *Parser) parseExistsExpr(not bool) Expr {
	p.expect(TOKEN_EXISTS)
	expr := &ExistsExpr{Not: not}
	p.expect(TOKEN_LPAREN)
	expr.Query = p.parseQuery()
	p.expect(TOKEN_RPAREN)
	return expr
}

// parseParenOrSubquery parses ( expr ) or ( SELECT ... ).
func (p *Parser) parseParenOrSubquery() Expr {
	if p.checkPeek(TOKEN_SELECT) || p.checkPeek(TOKEN_WITH) {
		p.nextToken() // consume (
		expr := &SubqueryExpr{Query: p.parseQuery()}
		p.expect(TOKEN_RPAREN)
		return expr
	}
	p.nextToken() // consume (
	expr := &ParenExpr{Expr: p.parseExpression()}
	p.expect(TOKEN_RPAREN)
	return expr
}

// parseIdentExpr parses a column reference or a function call.
func (p *Parser) parseIdentExpr() Expr {
	name := p.token.Literal
	p.nextToken()

	// Function call: name directly followed by (
	if p.check(TOKEN_LPAREN) {
		return p.parseFuncCall(name)
	}

	ref := &ColumnRef{Column: name}
	if p.match(TOKEN_DOT) {
		if p.check(TOKEN_IDENT) {
			ref.Table = ref.Column
			ref.Column = p.token.Literal
			p.nextToken()
		} else {
			p.addError("expected column name after '.'")
		}
	}
	return ref
}

// parseFuncCall parses the argument list and optional OVER clause of a
// function call whose name has already been consumed.
func (p *Parser) parseFuncCall(name string) Expr {
	p.expect(TOKEN_LPAREN)
	fn := &FuncCall{Name: name}

	switch {
	case p.check(TOKEN_RPAREN):
		// no arguments
	case p.check(TOKEN_STAR):
		fn.Star = true
		p.nextToken()
	default:
		if p.match(TOKEN_DISTINCT) {
			fn.Distinct = true
		}
		fn.Args = p.parseExpressionList()
	}
	p.expect(TOKEN_RPAREN)

	if p.match(TOKEN_OVER) {
		if p.check(TOKEN_IDENT) {
			fn.Over = &WindowSpec{Name: p.token.Literal}
			p.nextToken()
		} else {
			p.expect(TOKEN_LPAREN)
			fn.Over = p.parseWindowSpec()
			p.expect(TOKEN_RPAREN)
		}
	}

	return fn
}

// parseWindowSpec parses the contents of a window specification, after
// the opening parenthesis.
func (p *Parser) parseWindowSpec() *WindowSpec {
	spec := &WindowSpec{}

	// Base window name, e.g. OVER (w ORDER BY x)
	if p.check(TOKEN_IDENT) && !p.checkSoftKeyword("RANGE") && !p.checkSoftKeyword("GROUPS") {
		spec.Name = p.token.Literal
		p.nextToken()
	}

	if p.check(TOKEN_PARTITION) {
		p.nextToken()
		p.expect(TOKEN_BY)
		spec.PartitionBy = p.parseExpressionList()
	}

	if p.check(TOKEN_ORDER) {
		p.nextToken()
		p.expect(TOKEN_BY)
		spec.OrderBy = p.parseOrderByList()
	}

	switch {
	case p.check(TOKEN_ROWS):
		p.nextToken()
		spec.Frame = p.parseFrameSpec("ROWS")
	case p.checkSoftKeyword("RANGE"):
		p.nextToken()
		spec.Frame = p.parseFrameSpec("RANGE")
	case p.checkSoftKeyword("GROUPS"):
		p.nextToken()
		spec.Frame = p.parseFrameSpec("GROUPS")
	}

	return spec
}

// parseFrameSpec parses a window frame after its unit keyword.
func (p *Parser) parseFrameSpec(unit string) *FrameSpec {
	frame := &FrameSpec{Unit: unit}
	if p.match(TOKEN_BETWEEN) {
		frame.Start = p.parseFrameBound()
		p.expect(TOKEN_AND)
		end := p.parseFrameBound()
		frame.End = &end
	} else {
		frame.Start = p.parseFrameBound()
	}
	return frame
}

// parseFrameBound parses a single frame bound.
func (p *Parser) parseFrameBound() FrameBound {
	switch {
	case p.matchSoftKeyword("UNBOUNDED"):
		switch {
		case p.matchSoftKeyword("PRECEDING"):
			return FrameBound{Kind: "UNBOUNDED PRECEDING"}
		case p.matchSoftKeyword("FOLLOWING"):
			return FrameBound{Kind: "UNBOUNDED FOLLOWING"}
		}
		p.addError("expected PRECEDING or FOLLOWING after UNBOUNDED")
		return FrameBound{}
	case p.matchSoftKeyword("CURRENT"):
		if !p.matchSoftKeyword("ROW") && !p.match(TOKEN_ROWS) {
			p.addError("expected ROW after CURRENT")
		}
		return FrameBound{Kind: "CURRENT ROW"}
	}

	bound := FrameBound{Offset: p.parseExpression()}
	switch {
	case p.matchSoftKeyword("PRECEDING"):
		bound.Kind = "PRECEDING"
	case p.matchSoftKeyword("FOLLOWING"):
		bound.Kind = "FOLLOWING"
	default:
		p.addError("expected PRECEDING or FOLLOWING in frame bound")
	}
	return bound
}

// parseTypeName parses a type name like INTEGER, VARCHAR(10), or
// DOUBLE PRECISION.
func (p *Parser) parseTypeName() string {
	if !p.check(TOKEN_IDENT) {
		p.addError("expected type name")
		return ""
	}
	name := strings.ToUpper(p.token.Literal)
	p.nextToken()

	// Two-word types: DOUBLE PRECISION, CHARACTER VARYING. Anything else
	// after the type name is an alias, not part of the type.
	if p.check(TOKEN_IDENT) &&
		(strings.EqualFold(p.token.Literal, "PRECISION") || strings.EqualFold(p.token.Literal, "VARYING")) {
		name += " " + strings.ToUpper(p.token.Literal)
		p.nextToken()
	}

	if p.match(TOKEN_LPAREN) {
		name += "("
		if p.check(TOKEN_NUMBER) {
			name += p.token.Literal
			p.nextToken()
			if p.match(TOKEN_COMMA) {
				name += ","
				if p.check(TOKEN_NUMBER) {
					name += p.token.Literal
					p.nextToken()
				}
			}
		}
		p.expect(TOKEN_RPAREN)
		name += ")"
	}

	return name
}
