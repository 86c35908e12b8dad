package ast

// Expression is a DSL expression. The set of implementations is closed.
type Expression interface {
	expressionKind()
}

// Literal is a constant value.
type Literal struct {
	Value LiteralValue
}

func (Literal) expressionKind() {}

// LiteralValue is the payload of a Literal.
type LiteralValue interface {
	literalValue()
}

type (
	LiteralInt    int32
	LiteralLong   int64
	LiteralFloat  float32
	LiteralDouble float64
	LiteralBool   bool
)

func (LiteralInt) literalValue()    {}
func (LiteralLong) literalValue()   {}
func (LiteralFloat) literalValue()  {}
func (LiteralDouble) literalValue() {}
func (LiteralBool) literalValue()   {}

// Infinity is INF or -INF. Type is the resolved type of the expression.
type Infinity struct {
	Positive bool
	Type     Scalar
}

func (Infinity) expressionKind() {}

// Identifier names a variable, parameter or iterator.
type Identifier struct {
	Name string
}

func (Identifier) expressionKind() {}

// PropAccess is Owner.Prop, the value of property Prop at node or edge Owner.
type PropAccess struct {
	Owner string
	Prop  string
}

func (PropAccess) expressionKind() {}

// BinaryOp is an arithmetic, logical or relational operator.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// Token returns the operator spelling shared by the C-family targets.
func (op BinaryOp) Token() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return "?"
	}
}

// IsRelational reports whether op compares its operands.
func (op BinaryOp) IsRelational() bool {
	return op >= OpEq
}

// Binary is Left Op Right. Parens records that the source wrote explicit
// enclosing parentheses.
type Binary struct {
	Op     BinaryOp
	Left   Expression
	Right  Expression
	Parens bool
}

func (Binary) expressionKind() {}

// UnaryOp is a unary operator.
type UnaryOp uint8

const (
	OpNot     UnaryOp = iota // prefix !
	OpPostInc                // postfix ++
	OpPostDec                // postfix --
)

// Unary applies Op to X.
type Unary struct {
	Op UnaryOp
	X  Expression
}

func (Unary) expressionKind() {}

// Call is Receiver.Method(Args). Receiver is empty for free functions.
type Call struct {
	Receiver string
	Method   string
	Args     []Expression
}

func (Call) expressionKind() {}
