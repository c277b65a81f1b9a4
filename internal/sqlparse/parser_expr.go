package sqlparse

// Expression parsing with precedence climbing.

// parseExpression parses an expression at the lowest precedence level.
func (p *Parser) parseExpression() Expr {
	return p.parseExpressionWithPrecedence(PrecedenceOr)
}

// parseExpressionWithPrecedence parses expressions at or above the given
// precedence level.
func (p *Parser) parseExpressionWithPrecedence(minPrec int) Expr {
	left := p.parsePrefixExpr()

	for {
		prec := p.getInfixPrecedence()
		if prec < minPrec {
			return left
		}
		left = p.parseInfixExpr(left, prec)
	}
}

// parsePrefixExpr parses prefix operators and primary expressions.
func (p *Parser) parsePrefixExpr() Expr {
	switch p.token.Type {
	case TOKEN_NOT:
		p.nextToken()
		if p.check(TOKEN_EXISTS) {
			return p.parseExistsExpr(true)
		}
		return &UnaryExpr{Op: TOKEN_NOT, Expr: p.parseExpressionWithPrecedence(PrecedenceNot)}
	case TOKEN_MINUS:
		p.nextToken()
		return &UnaryExpr{Op: TOKEN_MINUS, Expr: p.parseExpressionWithPrecedence(PrecedenceUnary)}
	case TOKEN_PLUS:
		p.nextToken()
		return &UnaryExpr{Op: TOKEN_PLUS, Expr: p.parseExpressionWithPrecedence(PrecedenceUnary)}
	}
	return p.parsePrimary()
}

// getInfixPrecedence returns the binding power of the current token when
// used as an infix operator, or PrecedenceNone when it is not one.
func (p *Parser) getInfixPrecedence() int {
	switch p.token.Type {
	case TOKEN_OR:
		return PrecedenceOr
	case TOKEN_AND:
		return PrecedenceAnd
	case TOKEN_EQ, TOKEN_NE, TOKEN_LT, TOKEN_GT, TOKEN_LE, TOKEN_GE:
		return PrecedenceComparison
	case TOKEN_IS, TOKEN_IN, TOKEN_BETWEEN, TOKEN_LIKE, TOKEN_ILIKE, TOKEN_GLOB, TOKEN_NOT:
		return PrecedenceComparison
	case TOKEN_PLUS, TOKEN_MINUS, TOKEN_DPIPE:
		return PrecedenceAddition
	case TOKEN_STAR, TOKEN_SLASH, TOKEN_MOD:
		return PrecedenceMultiply
	case TOKEN_DCOLON:
		return PrecedencePostfix
	}
	return PrecedenceNone
}

// parseInfixExpr parses one infix operation with left already parsed.
func (p *Parser) parseInfixExpr(left Expr, prec int) Expr {
	switch p.token.Type {
	case TOKEN_NOT:
		return p.parseNotInfixExpr(left)
	case TOKEN_IS:
		return p.parseIsExpr(left)
	case TOKEN_IN:
		p.nextToken()
		return p.parseInExpr(left, false)
	case TOKEN_BETWEEN:
		p.nextToken()
		return p.parseBetweenExpr(left, false)
	case TOKEN_LIKE, TOKEN_ILIKE, TOKEN_GLOB:
		return p.parsePatternExpr(left, false)
	case TOKEN_DCOLON:
		p.nextToken()
		return &CastExpr{Expr: left, TypeName: p.parseTypeName()}
	}

	op := p.token.Type
	p.nextToken()
	right := p.parseExpressionWithPrecedence(prec + 1)
	return &BinaryExpr{Left: left, Op: op, Right: right}
}

// parseNotInfixExpr parses expr NOT IN / NOT BETWEEN / NOT LIKE forms.
func (p *Parser) parseNotInfixExpr(left Expr) Expr {
	p.nextToken() // consume NOT
	switch p.token.Type {
	case TOKEN_IN:
		p.nextToken()
		return p.parseInExpr(left, true)
	case TOKEN_BETWEEN:
		p.nextToken()
		return p.parseBetweenExpr(left, true)
	case TOKEN_LIKE, TOKEN_ILIKE, TOKEN_GLOB:
		return p.parsePatternExpr(left, true)
	}
	p.addError("expected IN, BETWEEN, LIKE, ILIKE, or GLOB after NOT")
	return left
}

// parseIsExpr parses IS [NOT] NULL / TRUE / FALSE.
func (p *Parser) parseIsExpr(left Expr) Expr {
	p.nextToken() // consume IS
	expr := &IsExpr{Expr: left}
	if p.match(TOKEN_NOT) {
		expr.Not = true
	}
	switch p.token.Type {
	case TOKEN_NULL:
		expr.What = LiteralNull
		p.nextToken()
	case TOKEN_TRUE:
		expr.What = LiteralBool
		expr.Bool = true
		p.nextToken()
	case TOKEN_FALSE:
		expr.What = LiteralBool
		p.nextToken()
	default:
		p.addError("expected NULL, TRUE, or FALSE after IS")
	}
	return expr
}

// parseInExpr parses the parenthesized part of expr [NOT] IN (...).
func (p *Parser) parseInExpr(left Expr, not bool) Expr {
	expr := &InExpr{Expr: left, Not: not}
	p.expect(TOKEN_LPAREN)
	if p.check(TOKEN_SELECT) || p.check(TOKEN_WITH) {
		expr.Query = p.parseQuery()
	} else if !p.check(TOKEN_RPAREN) {
		expr.Values = p.parseExpressionList()
	}
	p.expect(TOKEN_RPAREN)
	return expr
}

// parseBetweenExpr parses expr [NOT] BETWEEN low AND high. The bounds
// bind tighter than AND so the range's own AND is not swallowed.
func (p *Parser) parseBetweenExpr(left Expr, not bool) Expr {
	expr := &BetweenExpr{Expr: left, Not: not}
	expr.Low = p.parseExpressionWithPrecedence(PrecedenceAddition)
	p.expect(TOKEN_AND)
	expr.High = p.parseExpressionWithPrecedence(PrecedenceAddition)
	return expr
}

// parsePatternExpr parses expr [NOT] LIKE/ILIKE/GLOB pattern [ESCAPE e].
func (p *Parser) parsePatternExpr(left Expr, not bool) Expr {
	expr := &PatternExpr{Expr: left, Not: not, Op: p.token.Type}
	p.nextToken()
	expr.Pattern = p.parseExpressionWithPrecedence(PrecedenceAddition)
	if p.matchSoftKeyword("ESCAPE") {
		expr.Escape = p.parseExpressionWithPrecedence(PrecedenceAddition)
	}
	return expr
}

// parseExpressionList parses a comma-separated expression list.
func (p *Parser) parseExpressionList() []Expr {
	var list []Expr
	for {
		list = append(list, p.parseExpression())
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	return list
}
