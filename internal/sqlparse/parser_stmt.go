package sqlparse

import "strings"

// Statement parsing: queries, WITH handling, and classified statements.

// parseQuery parses a full query (optional WITH prefix plus body). Used for
// subqueries and parenthesized queries, where only query forms are legal.
func (p *Parser) parseQuery() *SelectStmt {
	stmt := &SelectStmt{}
	if p.check(TOKEN_WITH) {
		stmt.With = p.parseWithClause()
	}
	stmt.Body = p.parseSelectBody()
	return stmt
}

// parseWithStatement parses a top-level statement that begins with WITH.
// The final body decides what the statement is: a query, or a write
// statement that merely carries a CTE prefix.
func (p *Parser) parseWithStatement() Stmt {
	with := p.parseWithClause()

	switch p.token.Type {
	case TOKEN_SELECT, TOKEN_VALUES, TOKEN_LPAREN:
		return &SelectStmt{With: with, Body: p.parseSelectBody()}
	case TOKEN_INSERT:
		return p.parseWriteStatement(WriteInsert, with)
	case TOKEN_UPDATE:
		return p.parseWriteStatement(WriteUpdate, with)
	case TOKEN_DELETE:
		return p.parseWriteStatement(WriteDelete, with)
	default:
		p.addError("expected SELECT, VALUES, INSERT, UPDATE, or DELETE after WITH clause")
		return nil
	}
}

// parseWithClause parses a WITH clause with one or more CTEs.
func (p *Parser) parseWithClause() *WithClause {
	p.expect(TOKEN_WITH)
	with := &WithClause{}

	if p.match(TOKEN_RECURSIVE) {
		with.Recursive = true
	}

	for {
		cte := p.parseCTE()
		with.CTEs = append(with.CTEs, cte)
		if !p.match(TOKEN_COMMA) {
			break
		}
	}

	return with
}

// parseCTE parses a single CTE. A data-modifying body is not parsed in
// detail; it is flagged so classification rejects the whole statement.
func (p *Parser) parseCTE() *CTE {
	cte := &CTE{}

	if !p.check(TOKEN_IDENT) {
		p.addError("expected CTE name")
		return cte
	}
	cte.Name = p.token.Literal
	p.nextToken()

	// Optional column list: cte(col1, col2, ...)
	if p.match(TOKEN_LPAREN) {
		for {
			if p.check(TOKEN_IDENT) {
				cte.Columns = append(cte.Columns, p.token.Literal)
				p.nextToken()
			}
			if !p.match(TOKEN_COMMA) {
				break
			}
		}
		p.expect(TOKEN_RPAREN)
	}

	p.expect(TOKEN_AS)

	// Optional MATERIALIZED / NOT MATERIALIZED hint
	if !p.matchSoftKeyword("MATERIALIZED") {
		if p.check(TOKEN_NOT) && p.checkPeek(TOKEN_IDENT) && strings.EqualFold(p.peek.Literal, "MATERIALIZED") {
			p.nextToken()
			p.nextToken()
		}
	}

	p.expect(TOKEN_LPAREN)
	switch p.token.Type {
	case TOKEN_INSERT, TOKEN_UPDATE, TOKEN_DELETE:
		cte.Writes = true
		p.consumeBalancedParens()
	default:
		cte.Select = p.parseQuery()
		p.expect(TOKEN_RPAREN)
	}

	return cte
}

// parseSelectBody parses a query body with possible set operations.
func (p *Parser) parseSelectBody() *SelectBody {
	body := &SelectBody{}

	switch {
	case p.check(TOKEN_LPAREN):
		p.nextToken() // consume (
		body.Paren = p.parseQuery()
		p.expect(TOKEN_RPAREN)
	case p.check(TOKEN_VALUES):
		body.Core = p.parseValuesCore()
	default:
		body.Core = p.parseSelectCore()
	}

	if p.check(TOKEN_UNION) || p.check(TOKEN_INTERSECT) || p.check(TOKEN_EXCEPT) {
		switch p.token.Type {
		case TOKEN_UNION:
			p.nextToken()
			if p.match(TOKEN_ALL) {
				body.Op = SetOpUnionAll
				body.All = true
			} else {
				body.Op = SetOpUnion
				p.match(TOKEN_DISTINCT)
			}
		case TOKEN_INTERSECT:
			p.nextToken()
			body.Op = SetOpIntersect
			if p.match(TOKEN_ALL) {
				body.All = true
			}
		case TOKEN_EXCEPT:
			p.nextToken()
			body.Op = SetOpExcept
			if p.match(TOKEN_ALL) {
				body.All = true
			}
		}
		body.Right = p.parseSelectBody()
	}

	return body
}

// parseSelectCore parses a single SELECT clause with its optional clauses.
func (p *Parser) parseSelectCore() *SelectCore {
	p.expect(TOKEN_SELECT)
	sc := &SelectCore{}

	if p.match(TOKEN_DISTINCT) {
		sc.Distinct = true
	} else {
		p.match(TOKEN_ALL)
	}

	sc.Columns = p.parseSelectList()

	if p.match(TOKEN_FROM) {
		sc.From = p.parseFromClause()
	}

	if p.match(TOKEN_WHERE) {
		sc.Where = p.parseExpression()
	}

	if p.check(TOKEN_GROUP) {
		p.nextToken()
		p.expect(TOKEN_BY)
		sc.GroupBy = p.parseExpressionList()
	}

	if p.match(TOKEN_HAVING) {
		sc.Having = p.parseExpression()
	}

	if p.check(TOKEN_WINDOW) {
		p.nextToken()
		sc.Windows = p.parseNamedWindows()
	}

	if p.check(TOKEN_ORDER) {
		p.nextToken()
		p.expect(TOKEN_BY)
		sc.OrderBy = p.parseOrderByList()
	}

	if p.match(TOKEN_LIMIT) {
		if p.check(TOKEN_EOF) || p.check(TOKEN_SEMICOLON) {
			// Dangling LIMIT at the end of the statement, typically a
			// truncated generation. Tolerated here so the limit stage
			// can repair it; Limit stays nil.
			return sc
		}
		sc.Limit = p.parseExpression()
		if p.match(TOKEN_COMMA) {
			// SQLite two-value form: LIMIT offset, count
			sc.Offset = sc.Limit
			sc.Limit = p.parseExpression()
		} else if p.match(TOKEN_OFFSET) {
			sc.Offset = p.parseExpression()
		}
	}

	return sc
}

// parseValuesCore parses a bare VALUES (...), (...) list.
func (p *Parser) parseValuesCore() *SelectCore {
	sc := &SelectCore{}
	p.expect(TOKEN_VALUES)
	for {
		p.expect(TOKEN_LPAREN)
		row := p.parseExpressionList()
		sc.ValuesRows = append(sc.ValuesRows, row)
		p.expect(TOKEN_RPAREN)
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	return sc
}

// parseSelectList parses the list of SELECT items.
func (p *Parser) parseSelectList() []SelectItem {
	var items []SelectItem
	for {
		item := p.parseSelectItem()
		items = append(items, item)
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	return items
}

// parseSelectItem parses a single SELECT item.
func (p *Parser) parseSelectItem() SelectItem {
	item := SelectItem{}

	// SELECT *
	if p.check(TOKEN_STAR) {
		item.Star = true
		p.nextToken()
		return item
	}

	// table.* pattern using 3-token lookahead
	if p.check(TOKEN_IDENT) && p.checkPeek(TOKEN_DOT) && p.checkPeek2(TOKEN_STAR) {
		item.TableStar = p.token.Literal
		p.nextToken() // consume ident
		p.nextToken() // consume DOT
		p.nextToken() // consume STAR
		return item
	}

	item.Expr = p.parseExpression()

	if p.match(TOKEN_AS) {
		if p.check(TOKEN_IDENT) || p.check(TOKEN_STRING) {
			item.Alias = p.token.Literal
			p.nextToken()
		} else {
			p.addError("expected alias after AS")
		}
	} else if p.check(TOKEN_IDENT) && !p.isKeyword(p.token) {
		item.Alias = p.token.Literal
		p.nextToken()
	}

	return item
}

// parseOrderByList parses a list of ORDER BY items.
func (p *Parser) parseOrderByList() []OrderByItem {
	var items []OrderByItem
	for {
		item := OrderByItem{Expr: p.parseExpression()}
		if p.match(TOKEN_DESC) {
			item.Desc = true
		} else {
			p.match(TOKEN_ASC)
		}
		if p.match(TOKEN_NULLS) {
			switch {
			case p.matchSoftKeyword("FIRST"):
				v := true
				item.NullsFirst = &v
			case p.matchSoftKeyword("LAST"):
				v := false
				item.NullsFirst = &v
			default:
				p.addError("expected FIRST or LAST after NULLS")
			}
		}
		items = append(items, item)
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	return items
}

// parseNamedWindows parses the definitions of a WINDOW clause.
func (p *Parser) parseNamedWindows() []NamedWindow {
	var defs []NamedWindow
	for {
		def := NamedWindow{}
		if p.check(TOKEN_IDENT) {
			def.Name = p.token.Literal
			p.nextToken()
		} else {
			p.addError("expected window name")
		}
		p.expect(TOKEN_AS)
		p.expect(TOKEN_LPAREN)
		def.Spec = p.parseWindowSpec()
		p.expect(TOKEN_RPAREN)
		defs = append(defs, def)
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	return defs
}

// === Classified Statements ===

// parseWriteStatement records the kind of a data-modifying statement
// without parsing its contents.
func (p *Parser) parseWriteStatement(kind WriteKind, with *WithClause) Stmt {
	stmt := &WriteStmt{Kind: kind, With: with, Raw: p.input}
	p.consumeStatementRest()
	return stmt
}

// parseDDLStatement records the kind of a schema-changing statement.
func (p *Parser) parseDDLStatement(kind DDLKind) Stmt {
	stmt := &DDLStmt{Kind: kind, Raw: p.input}
	p.consumeStatementRest()
	return stmt
}

// parseUtilityStatement records any other non-query statement by its
// leading keyword.
func (p *Parser) parseUtilityStatement() Stmt {
	stmt := &UtilityStmt{Keyword: strings.ToUpper(p.token.Literal), Raw: p.input}
	p.consumeStatementRest()
	return stmt
}
