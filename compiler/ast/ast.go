package ast

type (
	// Node is one of the types declared in this package.
	Node interface {
		node()
	}

	BlockItem interface {
		Node
		blockItem()
	}

	Stmt interface {
		BlockItem
		stmt()
	}

	Expr interface {
		Node
		expr()
	}

	Base struct {
		Pos int
		End int
	}

	CompUnit struct {
		Base `tlog:",embed"`

		Func *FuncDef
	}

	FuncDef struct {
		Base `tlog:",embed"`

		Type FuncType
		Name string
		Body *Block
	}

	FuncType string

	Block struct {
		Base `tlog:",embed"`

		Items []BlockItem
	}

	ConstDecl struct {
		Base `tlog:",embed"`

		Defs []ConstDef
	}

	ConstDef struct {
		Base `tlog:",embed"`

		Name string
		Init Expr
	}

	VarDecl struct {
		Base `tlog:",embed"`

		Defs []VarDef
	}

	VarDef struct {
		Base `tlog:",embed"`

		Name string
		Init Expr // nil if absent
	}

	AssignStmt struct {
		Base `tlog:",embed"`

		LVal *Ident
		Exp  Expr
	}

	ExprStmt struct {
		Base `tlog:",embed"`

		Exp Expr // nil for empty statement
	}

	BlockStmt struct {
		Base `tlog:",embed"`

		Block *Block
	}

	ReturnStmt struct {
		Base `tlog:",embed"`

		Exp Expr // nil for bare return
	}

	BinaryExpr struct {
		Base `tlog:",embed"`

		Op Op
		X  Expr
		Y  Expr
	}

	UnaryExpr struct {
		Base `tlog:",embed"`

		Op Op
		X  Expr
	}

	Number struct {
		Base `tlog:",embed"`

		Value int32
	}

	Ident struct {
		Base `tlog:",embed"`

		Name string
	}

	Op string
)

const (
	Int  FuncType = "int"
	Void FuncType = "void"
)

const (
	LOr  Op = "||"
	LAnd Op = "&&"

	Eq Op = "=="
	Ne Op = "!="

	Lt Op = "<"
	Gt Op = ">"
	Le Op = "<="
	Ge Op = ">="

	Add Op = "+"
	Sub Op = "-"

	Mul Op = "*"
	Div Op = "/"
	Mod Op = "%"

	Not Op = "!"
)

func (*CompUnit) node()   {}
func (*FuncDef) node()    {}
func (*Block) node()      {}
func (*ConstDecl) node()  {}
func (*VarDecl) node()    {}
func (*AssignStmt) node() {}
func (*ExprStmt) node()   {}
func (*BlockStmt) node()  {}
func (*ReturnStmt) node() {}
func (*BinaryExpr) node() {}
func (*UnaryExpr) node()  {}
func (*Number) node()     {}
func (*Ident) node()      {}

func (*ConstDecl) blockItem()  {}
func (*VarDecl) blockItem()    {}
func (*AssignStmt) blockItem() {}
func (*ExprStmt) blockItem()   {}
func (*BlockStmt) blockItem()  {}
func (*ReturnStmt) blockItem() {}

func (*AssignStmt) stmt() {}
func (*ExprStmt) stmt()   {}
func (*BlockStmt) stmt()  {}
func (*ReturnStmt) stmt() {}

func (*BinaryExpr) expr() {}
func (*UnaryExpr) expr()  {}
func (*Number) expr()     {}
func (*Ident) expr()      {}

// Tier is the precedence level of a binary operator, lowest first.
func (op Op) Tier() int {
	switch op {
	case LOr:
		return 1
	case LAnd:
		return 2
	case Eq, Ne:
		return 3
	case Lt, Gt, Le, Ge:
		return 4
	case Add, Sub:
		return 5
	case Mul, Div, Mod:
		return 6
	default:
		return 0
	}
}
