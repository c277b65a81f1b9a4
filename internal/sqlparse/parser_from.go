package sqlparse

import "fmt"

// FROM clause parsing: table references, joins, subqueries, table functions.

// parseFromClause parses the FROM clause including any joins.
func (p *Parser) parseFromClause() *FromClause {
	fc := &FromClause{Source: p.parseTableRef()}
	for {
		join := p.parseJoin()
		if join == nil {
			break
		}
		fc.Joins = append(fc.Joins, join)
	}
	return fc
}

// parseJoin parses one join clause, or returns nil when the next token
// does not start a join.
func (p *Parser) parseJoin() *Join {
	join := &Join{}

	switch {
	case p.check(TOKEN_COMMA):
		p.nextToken()
		join.Type = JoinComma
		join.Right = p.parseTableRef()
		return join
	case p.check(TOKEN_NATURAL):
		p.nextToken()
		join.Natural = true
	}

	switch p.token.Type {
	case TOKEN_LEFT:
		p.nextToken()
		p.match(TOKEN_OUTER)
		join.Type = JoinLeft
		p.expect(TOKEN_JOIN)
	case TOKEN_RIGHT:
		p.nextToken()
		p.match(TOKEN_OUTER)
		join.Type = JoinRight
		p.expect(TOKEN_JOIN)
	case TOKEN_FULL:
		p.nextToken()
		p.match(TOKEN_OUTER)
		join.Type = JoinFull
		p.expect(TOKEN_JOIN)
	case TOKEN_INNER:
		p.nextToken()
		join.Type = JoinInner
		p.expect(TOKEN_JOIN)
	case TOKEN_CROSS:
		p.nextToken()
		join.Type = JoinCross
		p.expect(TOKEN_JOIN)
	case TOKEN_JOIN:
		p.nextToken()
		join.Type = JoinInner
	default:
		if join.Natural {
			p.addError("expected join type after NATURAL")
		}
		return nil
	}

	join.Right = p.parseTableRef()

	if p.match(TOKEN_ON) {
		join.Condition = p.parseExpression()
	} else if p.match(TOKEN_USING) {
		p.expect(TOKEN_LPAREN)
		for {
			if p.check(TOKEN_IDENT) {
				join.Using = append(join.Using, p.token.Literal)
				p.nextToken()
			} else {
				p.addError("expected column name in USING clause")
				break
			}
			if !p.match(TOKEN_COMMA) {
				break
			}
		}
		p.expect(TOKEN_RPAREN)
	}

	return join
}

// parseTableRef parses a single table reference: a named table, a
// subquery, or a table function call.
func (p *Parser) parseTableRef() TableRef {
	// Parenthesized subquery: (SELECT ...) alias
	if p.check(TOKEN_LPAREN) && p.isQueryStart(p.peek.Type) {
		p.nextToken() // consume (
		ref := &SubqueryRef{Select: p.parseQuery()}
		p.expect(TOKEN_RPAREN)
		ref.Alias = p.parseTableAlias()
		return ref
	}

	if !p.check(TOKEN_IDENT) {
		p.addError(fmt.Sprintf("expected table name, got %s", p.token.Type))
		return &TableName{}
	}

	name := p.token.Literal
	p.nextToken()

	// Table function: name(args...), only on an unqualified name.
	if p.check(TOKEN_LPAREN) {
		p.nextToken()
		fn := &TableFunc{Name: name}
		if !p.check(TOKEN_RPAREN) {
			fn.Args = p.parseExpressionList()
		}
		p.expect(TOKEN_RPAREN)
		fn.Alias = p.parseTableAlias()
		return fn
	}

	ref := &TableName{Name: name}
	if p.match(TOKEN_DOT) {
		if p.check(TOKEN_IDENT) {
			ref.Schema = ref.Name
			ref.Name = p.token.Literal
			p.nextToken()
		} else {
			p.addError("expected identifier after '.'")
		}
	}
	ref.Alias = p.parseTableAlias()
	return ref
}

// parseTableAlias parses an optional alias after a table reference.
func (p *Parser) parseTableAlias() string {
	if p.match(TOKEN_AS) {
		if p.check(TOKEN_IDENT) {
			alias := p.token.Literal
			p.nextToken()
			return alias
		}
		p.addError("expected alias after AS")
		return ""
	}
	if p.check(TOKEN_IDENT) && !p.isKeyword(p.token) {
		alias := p.token.Literal
		p.nextToken()
		return alias
	}
	return ""
}

// isQueryStart reports whether a token type can begin a query body.
func (p *Parser) isQueryStart(t TokenType) bool {
	switch t {
	case TOKEN_SELECT, TOKEN_WITH, TOKEN_VALUES, TOKEN_LPAREN:
		return true
	}
	return false
}
