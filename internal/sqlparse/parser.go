package sqlparse

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmpty is returned when the input contains no statement.
var ErrEmpty = errors.New("empty SQL")

// ErrMultipleStatements is returned when more than one statement is found.
var ErrMultipleStatements = errors.New("multiple statements are not allowed")

// Parser parses a single SQL statement into an AST.
type Parser struct {
	lexer  *Lexer
	input  string // original input for raw classification
	token  Token  // current token
	peek   Token  // lookahead token
	peek2  Token  // second lookahead token
	errors []error
}

// NewParser creates a new parser for the given SQL input.
func NewParser(sql string) *Parser {
	p := &Parser{
		lexer: NewLexer(sql),
		input: sql,
	}
	// Initialize three-token lookahead
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// ParseStatement parses the SQL as exactly one statement. It returns
// ErrEmpty for blank input and ErrMultipleStatements when tokens remain
// after the first statement (a semicolon-separated sequence).
func ParseStatement(sql string) (Stmt, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return nil, ErrEmpty
	}

	p := NewParser(sql)
	for p.match(TOKEN_SEMICOLON) {
	}
	if p.token.Type == TOKEN_EOF {
		// Comments or semicolons only: no statement to parse.
		return nil, ErrEmpty
	}
	stmt := p.parseTopLevel()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}

	// One trailing terminator is fine; anything after it is a second statement.
	p.match(TOKEN_SEMICOLON)
	if p.token.Type != TOKEN_EOF {
		return nil, ErrMultipleStatements
	}

	return stmt, nil
}

// IsReadOnly reports whether the parsed statement is a query that cannot
// mutate data or schema: a SELECT (or VALUES), a WITH-prefixed query, or a
// set combination of queries, with no data-modifying CTE anywhere.
func IsReadOnly(stmt Stmt) bool {
	s, ok := stmt.(*SelectStmt)
	if !ok {
		return false
	}
	return !selectWrites(s)
}

// StatementKind returns a short upper-case description of the statement for
// error messages: SELECT, INSERT, CREATE, PRAGMA, and so on.
func StatementKind(stmt Stmt) string {
	switch s := stmt.(type) {
	case *SelectStmt:
		if s.Body != nil && s.Body.Op == SetOpNone && s.Body.Core != nil && len(s.Body.Core.ValuesRows) > 0 {
			return "VALUES"
		}
		return "SELECT"
	case *WriteStmt:
		return string(s.Kind)
	case *DDLStmt:
		return string(s.Kind)
	case *UtilityStmt:
		return s.Keyword
	default:
		return "UNKNOWN"
	}
}

// selectWrites reports whether any CTE in the query tree modifies data.
func selectWrites(s *SelectStmt) bool {
	if s == nil {
		return false
	}
	if s.With != nil {
		for _, cte := range s.With.CTEs {
			if cte.Writes || selectWrites(cte.Select) {
				return true
			}
		}
	}
	return bodyWrites(s.Body)
}

func bodyWrites(b *SelectBody) bool {
	for ; b != nil; b = b.Right {
		if b.Paren != nil && selectWrites(b.Paren) {
			return true
		}
		if b.Core != nil && coreWrites(b.Core) {
			return true
		}
	}
	return false
}

func coreWrites(c *SelectCore) bool {
	for _, item := range c.Columns {
		if exprWrites(item.Expr) {
			return true
		}
	}
	if fromWrites(c.From) {
		return true
	}
	if exprWrites(c.Where) || exprWrites(c.Having) {
		return true
	}
	for _, e := range c.GroupBy {
		if exprWrites(e) {
			return true
		}
	}
	for _, item := range c.OrderBy {
		if exprWrites(item.Expr) {
			return true
		}
	}
	for _, row := range c.ValuesRows {
		for _, e := range row {
			if exprWrites(e) {
				return true
			}
		}
	}
	return false
}

func fromWrites(f *FromClause) bool {
	if f == nil {
		return false
	}
	if tableRefWrites(f.Source) {
		return true
	}
	for _, j := range f.Joins {
		if tableRefWrites(j.Right) || exprWrites(j.Condition) {
			return true
		}
	}
	return false
}

func tableRefWrites(ref TableRef) bool {
	switch r := ref.(type) {
	case *SubqueryRef:
		return selectWrites(r.Select)
	case *TableFunc:
		for _, a := range r.Args {
			if exprWrites(a) {
				return true
			}
		}
	}
	return false
}

// exprWrites reports whether any subquery inside the expression tree
// modifies data.
func exprWrites(e Expr) bool {
	switch ex := e.(type) {
	case nil:
		return false
	case *BinaryExpr:
		return exprWrites(ex.Left) || exprWrites(ex.Right)
	case *UnaryExpr:
		return exprWrites(ex.Expr)
	case *ParenExpr:
		return exprWrites(ex.Expr)
	case *FuncCall:
		for _, a := range ex.Args {
			if exprWrites(a) {
				return true
			}
		}
		if ex.Over != nil {
			for _, pe := range ex.Over.PartitionBy {
				if exprWrites(pe) {
					return true
				}
			}
			for _, item := range ex.Over.OrderBy {
				if exprWrites(item.Expr) {
					return true
				}
			}
		}
	case *CaseExpr:
		if exprWrites(ex.Operand) || exprWrites(ex.Else) {
			return true
		}
		for _, w := range ex.Whens {
			if exprWrites(w.Cond) || exprWrites(w.Then) {
				return true
			}
		}
	case *CastExpr:
		return exprWrites(ex.Expr)
	case *InExpr:
		if exprWrites(ex.Expr) || selectWrites(ex.Query) {
			return true
		}
		for _, v := range ex.Values {
			if exprWrites(v) {
				return true
			}
		}
	case *BetweenExpr:
		return exprWrites(ex.Expr) || exprWrites(ex.Low) || exprWrites(ex.High)
	case *PatternExpr:
		return exprWrites(ex.Expr) || exprWrites(ex.Pattern) || exprWrites(ex.Escape)
	case *IsExpr:
		return exprWrites(ex.Expr)
	case *ExistsExpr:
		return selectWrites(ex.Query)
	case *SubqueryExpr:
		return selectWrites(ex.Query)
	}
	return false
}

// parseTopLevel dispatches to the appropriate statement parser based on the
// first token.
func (p *Parser) parseTopLevel() Stmt {
	switch p.token.Type {
	case TOKEN_SELECT, TOKEN_VALUES:
		return &SelectStmt{Body: p.parseSelectBody()}

	case TOKEN_LPAREN:
		// ( SELECT ... ) possibly followed by set operations
		return &SelectStmt{Body: p.parseSelectBody()}

	case TOKEN_WITH:
		return p.parseWithStatement()

	case TOKEN_INSERT:
		return p.parseWriteStatement(WriteInsert, nil)
	case TOKEN_UPDATE:
		return p.parseWriteStatement(WriteUpdate, nil)
	case TOKEN_DELETE:
		return p.parseWriteStatement(WriteDelete, nil)

	case TOKEN_CREATE:
		return p.parseDDLStatement(DDLCreate)
	case TOKEN_DROP:
		return p.parseDDLStatement(DDLDrop)
	case TOKEN_ALTER:
		return p.parseDDLStatement(DDLAlter)
	case TOKEN_TRUNCATE:
		return p.parseDDLStatement(DDLTruncate)

	case TOKEN_ANALYZE, TOKEN_ATTACH, TOKEN_BEGIN, TOKEN_CALL, TOKEN_COMMIT,
		TOKEN_COPY, TOKEN_DESCRIBE, TOKEN_DETACH, TOKEN_EXPLAIN, TOKEN_EXPORT,
		TOKEN_GRANT, TOKEN_INSTALL, TOKEN_LOAD, TOKEN_PRAGMA, TOKEN_REINDEX,
		TOKEN_REPLACE, TOKEN_REVOKE, TOKEN_ROLLBACK, TOKEN_SET, TOKEN_SHOW,
		TOKEN_SUMMARIZE, TOKEN_USE, TOKEN_VACUUM:
		return p.parseUtilityStatement()

	default:
		p.addError(fmt.Sprintf("unexpected token at start of statement: %s", p.token.Type))
		return nil
	}
}

// === Token Helpers ===

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t TokenType) bool {
	return p.token.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t TokenType) bool {
	return p.peek.Type == t
}

// checkPeek2 returns true if the peek2 token is of the given type.
func (p *Parser) checkPeek2(t TokenType) bool {
	return p.peek2.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// matchSoftKeyword consumes the current token if it's an identifier matching
// the given non-reserved keyword (case-insensitive).
func (p *Parser) matchSoftKeyword(keyword string) bool {
	if p.check(TOKEN_IDENT) && strings.EqualFold(p.token.Literal, keyword) {
		p.nextToken()
		return true
	}
	return false
}

// checkSoftKeyword returns true if the current token is an identifier
// matching the given non-reserved keyword, without consuming it.
func (p *Parser) checkSoftKeyword(keyword string) bool {
	return p.check(TOKEN_IDENT) && strings.EqualFold(p.token.Literal, keyword)
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("unexpected token %s, expected %s", p.token.Type, t))
	return false
}

// addError adds a parse error.
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Errorf("parse error: %s", msg))
}

// isKeyword returns true if the token is a reserved keyword that cannot be
// used as a bare alias.
func (p *Parser) isKeyword(tok Token) bool {
	switch tok.Type {
	case TOKEN_FROM, TOKEN_UNION, TOKEN_INTERSECT, TOKEN_EXCEPT,
		TOKEN_LEFT, TOKEN_RIGHT, TOKEN_INNER, TOKEN_OUTER, TOKEN_FULL,
		TOKEN_CROSS, TOKEN_JOIN, TOKEN_ON, TOKEN_NATURAL, TOKEN_USING,
		TOKEN_WHERE, TOKEN_GROUP, TOKEN_HAVING, TOKEN_ORDER, TOKEN_WINDOW,
		TOKEN_LIMIT, TOKEN_OFFSET, TOKEN_AND, TOKEN_OR, TOKEN_NOT,
		TOKEN_SELECT, TOKEN_INSERT, TOKEN_UPDATE, TOKEN_DELETE, TOKEN_SET,
		TOKEN_INTO, TOKEN_VALUES, TOKEN_CASE, TOKEN_WHEN, TOKEN_THEN,
		TOKEN_ELSE, TOKEN_END, TOKEN_IS, TOKEN_IN, TOKEN_BETWEEN,
		TOKEN_LIKE, TOKEN_ILIKE, TOKEN_GLOB, TOKEN_AS, TOKEN_BY:
		return true
	}
	return false
}

// consumeStatementRest consumes the remaining tokens of a statement that is
// only classified, not deeply parsed. It stops before a second statement so
// multi-statement input is still detected at the top level.
func (p *Parser) consumeStatementRest() {
	for p.token.Type != TOKEN_EOF && p.token.Type != TOKEN_SEMICOLON {
		p.nextToken()
	}
}

// consumeBalancedParens consumes tokens until the parenthesis depth returns
// to zero. The current token must be inside the open parenthesis.
func (p *Parser) consumeBalancedParens() {
	depth := 1
	for depth > 0 && p.token.Type != TOKEN_EOF {
		switch p.token.Type {
		case TOKEN_LPAREN:
			depth++
		case TOKEN_RPAREN:
			depth--
		}
		p.nextToken()
	}
}
