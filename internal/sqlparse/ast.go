package sqlparse

// Node is the base interface for all AST nodes.
type Node interface {
	node()
}

// Expr is a marker interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a marker interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// TableRef is a marker interface for table reference nodes.
type TableRef interface {
	Node
	tableRefNode()
}

// === Statement Nodes ===

// SelectStmt represents a complete query: an optional WITH prefix and a body
// that is a single SELECT core or a chain of set operations.
type SelectStmt struct {
	With *WithClause
	Body *SelectBody
}

func (*SelectStmt) node()     {}
func (*SelectStmt) stmtNode() {}

// WithClause represents a WITH clause with CTEs.
type WithClause struct {
	Recursive bool
	CTEs      []*CTE
}

// CTE represents a common table expression. Writes is set when the CTE body
// is a data-modifying statement (allowed by some dialects); the safety gate
// rejects such statements.
type CTE struct {
	Name    string
	Columns []string
	Select  *SelectStmt
	Writes  bool
}

// SelectBody represents a query body with possible set operations. Exactly
// one of Core or Paren is set on each node.
type SelectBody struct {
	Core  *SelectCore // plain SELECT or VALUES core
	Paren *SelectStmt // parenthesized query: ( SELECT ... )
	Op    SetOpType   // UNION, INTERSECT, EXCEPT, or empty
	All   bool        // UNION ALL / INTERSECT ALL / EXCEPT ALL
	Right *SelectBody // for chained set operations
}

// SetOpType represents the type of set operation.
type SetOpType string

// SetOpNone and friends classify set operations.
const (
	SetOpNone      SetOpType = ""
	SetOpUnion     SetOpType = "UNION"
	SetOpUnionAll  SetOpType = "UNION ALL"
	SetOpIntersect SetOpType = "INTERSECT"
	SetOpExcept    SetOpType = "EXCEPT"
)

// SelectCore represents a single SELECT clause with its optional clauses,
// or a bare VALUES list (ValuesRows set, everything else empty).
type SelectCore struct {
	Distinct   bool
	Columns    []SelectItem
	From       *FromClause
	Where      Expr
	GroupBy    []Expr
	Having     Expr
	Windows    []NamedWindow
	OrderBy    []OrderByItem
	Limit      Expr
	Offset     Expr
	ValuesRows [][]Expr
}

// NamedWindow represents one definition in a WINDOW clause.
type NamedWindow struct {
	Name string
	Spec *WindowSpec
}

// SelectItem represents an item in the SELECT list.
type SelectItem struct {
	Star      bool   // SELECT *
	TableStar string // SELECT t.*
	Expr      Expr
	Alias     string
}

// FromClause represents the FROM clause.
type FromClause struct {
	Source TableRef
	Joins  []*Join
}

// Join represents a JOIN clause.
type Join struct {
	Type      JoinType
	Natural   bool
	Right     TableRef
	Condition Expr     // ON clause
	Using     []string // USING (col1, col2)
}

// JoinType represents the type of join.
type JoinType string

// JoinInner and friends classify SQL JOIN types.
const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
	JoinCross JoinType = "CROSS"
	JoinComma JoinType = ","
)

// OrderByItem represents an item in an ORDER BY clause.
type OrderByItem struct {
	Expr       Expr
	Desc       bool
	NullsFirst *bool // nil = default, true = NULLS FIRST, false = NULLS LAST
}

// === Table References ===

// TableName represents a possibly qualified table name with optional alias.
type TableName struct {
	Schema string
	Name   string
	Alias  string
}

func (*TableName) node()         {}
func (*TableName) tableRefNode() {}

// SubqueryRef represents a parenthesized subquery in FROM.
type SubqueryRef struct {
	Select *SelectStmt
	Alias  string
}

func (*SubqueryRef) node()         {}
func (*SubqueryRef) tableRefNode() {}

// TableFunc represents a table-valued function call in FROM, such as
// read_csv('f.csv') or pragma_table_info('t').
type TableFunc struct {
	Name  string
	Args  []Expr
	Alias string
}

func (*TableFunc) node()         {}
func (*TableFunc) tableRefNode() {}

// === Non-query Statements ===
//
// The safety gate only needs to know what kind of statement these are, never
// their contents, so they carry the raw text and a classification.

// WriteKind classifies data-modifying statements.
type WriteKind string

// WriteInsert and friends classify data-modifying statements.
const (
	WriteInsert WriteKind = "INSERT"
	WriteUpdate WriteKind = "UPDATE"
	WriteDelete WriteKind = "DELETE"
)

// WriteStmt represents an INSERT, UPDATE, or DELETE statement, with an
// optional WITH prefix.
type WriteStmt struct {
	Kind WriteKind
	With *WithClause
	Raw  string
}

func (*WriteStmt) node()     {}
func (*WriteStmt) stmtNode() {}

// DDLKind classifies schema-changing statements.
type DDLKind string

// DDLCreate and friends classify schema-changing statements.
const (
	DDLCreate   DDLKind = "CREATE"
	DDLDrop     DDLKind = "DROP"
	DDLAlter    DDLKind = "ALTER"
	DDLTruncate DDLKind = "TRUNCATE"
)

// DDLStmt represents a DDL statement (classification only, not deeply parsed).
type DDLStmt struct {
	Kind DDLKind
	Raw  string
}

func (*DDLStmt) node()     {}
func (*DDLStmt) stmtNode() {}

// UtilityStmt represents a non-query, non-DML statement such as PRAGMA, SET,
// SHOW, EXPLAIN, ATTACH, or a transaction control statement.
type UtilityStmt struct {
	Keyword string // leading keyword, upper case
	Raw     string
}

func (*UtilityStmt) node()     {}
func (*UtilityStmt) stmtNode() {}
