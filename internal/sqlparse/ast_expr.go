package sqlparse

// === Expression Nodes ===

// ColumnRef represents a column reference, optionally qualified with a table
// or alias name.
type ColumnRef struct {
	Table  string
	Column string
}

func (*ColumnRef) node()     {}
func (*ColumnRef) exprNode() {}

// LiteralType represents the type of a literal.
type LiteralType int

// LiteralNumber and friends classify literal values.
const (
	LiteralNumber LiteralType = iota
	LiteralString
	LiteralBool
	LiteralNull
)

// Literal represents a literal value (number, string, bool, null).
type Literal struct {
	Type  LiteralType
	Value string
}

func (*Literal) node()     {}
func (*Literal) exprNode() {}

// BinaryExpr represents a binary expression (left op right).
type BinaryExpr struct {
	Left  Expr
	Op    TokenType
	Right Expr
}

func (*BinaryExpr) node()     {}
func (*BinaryExpr) exprNode() {}

// UnaryExpr represents a unary expression (NOT x, -x, +x).
type UnaryExpr struct {
	Op   TokenType
	Expr Expr
}

func (*UnaryExpr) node()     {}
func (*UnaryExpr) exprNode() {}

// ParenExpr represents a parenthesized expression.
type ParenExpr struct {
	Expr Expr
}

func (*ParenExpr) node()     {}
func (*ParenExpr) exprNode() {}

// FuncCall represents a function call, optionally with an OVER clause.
type FuncCall struct {
	Name     string
	Distinct bool
	Args     []Expr
	Star     bool // COUNT(*)
	Over     *WindowSpec
}

func (*FuncCall) node()     {}
func (*FuncCall) exprNode() {}

// WindowSpec represents a window specification (OVER clause).
type WindowSpec struct {
	Name        string // named window reference
	PartitionBy []Expr
	OrderBy     []OrderByItem
	Frame       *FrameSpec
}

// FrameSpec represents a window frame specification.
type FrameSpec struct {
	Unit  string // ROWS, RANGE, or GROUPS
	Start FrameBound
	End   *FrameBound // nil when only a start bound is given
}

// FrameBound represents one bound of a window frame.
type FrameBound struct {
	Kind   string // UNBOUNDED PRECEDING, CURRENT ROW, PRECEDING, FOLLOWING
	Offset Expr   // for <expr> PRECEDING / FOLLOWING
}

// CaseExpr represents a CASE expression.
type CaseExpr struct {
	Operand Expr // nil for searched CASE
	Whens   []WhenClause
	Else    Expr
}

func (*CaseExpr) node()     {}
func (*CaseExpr) exprNode() {}

// WhenClause represents one WHEN ... THEN ... arm of a CASE expression.
type WhenClause struct {
	Cond Expr
	Then Expr
}

// CastExpr represents CAST(expr AS type) or expr::type.
type CastExpr struct {
	Expr     Expr
	TypeName string
}

func (*CastExpr) node()     {}
func (*CastExpr) exprNode() {}

// InExpr represents expr [NOT] IN (values) or expr [NOT] IN (subquery).
type InExpr struct {
	Expr   Expr
	Not    bool
	Values []Expr
	Query  *SelectStmt
}

func (*InExpr) node()     {}
func (*InExpr) exprNode() {}

// BetweenExpr represents expr [NOT] BETWEEN low AND high.
type BetweenExpr struct {
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

func (*BetweenExpr) node()     {}
func (*BetweenExpr) exprNode() {}

// PatternExpr represents expr [NOT] LIKE/ILIKE/GLOB pattern [ESCAPE e].
type PatternExpr struct {
	Expr    Expr
	Not     bool
	Op      TokenType // TOKEN_LIKE, TOKEN_ILIKE, TOKEN_GLOB
	Pattern Expr
	Escape  Expr
}

func (*PatternExpr) node()     {}
func (*PatternExpr) exprNode() {}

// IsExpr represents expr IS [NOT] NULL / TRUE / FALSE.
type IsExpr struct {
	Expr Expr
	Not  bool
	What LiteralType // LiteralNull or LiteralBool
	Bool bool        // for LiteralBool: the TRUE/FALSE value tested
}

func (*IsExpr) node()     {}
func (*IsExpr) exprNode() {}

// ExistsExpr represents [NOT] EXISTS (subquery).
type ExistsExpr struct {
	Not   bool
	Query *SelectStmt
}

func (*ExistsExpr) node()     {}
func (*ExistsExpr) exprNode() {}

// SubqueryExpr represents a scalar subquery in an expression position.
type SubqueryExpr struct {
	Query *SelectStmt
}

func (*SubqueryExpr) node()     {}
func (*SubqueryExpr) exprNode() {}
