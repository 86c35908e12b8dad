package ast

// Statement is a DSL statement. The set of implementations is closed.
type Statement interface {
	statementKind()
}

// Block is a sequence of statements executed in order.
type Block []Statement

func (Block) statementKind() {}

// Declaration declares a local variable or property.
//
// For property types Init, when present, fills every element; Redeclared
// requests a second shadow-next buffer.
type Declaration struct {
	Name       string
	Type       Type
	Init       Expression // optional
	Redeclared bool
}

func (Declaration) statementKind() {}

// Assignment stores Value into Target.
//
// Target is an Identifier or a PropAccess. Atomic is set by the front end
// when the store races with other work items and must be lowered through the
// backend's atomic update.
type Assignment struct {
	Target Expression
	Value  Expression
	Atomic bool
}

func (Assignment) statementKind() {}

// IfStmt executes Then when Cond holds, Else otherwise.
type IfStmt struct {
	Cond Expression
	Then Block
	Else Block
}

func (IfStmt) statementKind() {}

// ForAll iterates Iterator over Source. Filter, when present, selects the
// iterations that run Body.
type ForAll struct {
	Iterator string
	Source   IterSource
	Filter   Expression // optional
	Body     Block
}

func (ForAll) statementKind() {}

// IterSource is the range of a ForAll. The set of implementations is closed.
type IterSource interface {
	iterSource()
}

// DomainNodes iterates over every node of Graph: g.nodes().
type DomainNodes struct {
	Graph string
}

func (DomainNodes) iterSource() {}

// DomainEdges iterates over every edge of Graph: g.edges().
type DomainEdges struct {
	Graph string
}

func (DomainEdges) iterSource() {}

// Neighbors iterates over the out-neighbors of Of: g.neighbors(v).
type Neighbors struct {
	Graph string
	Of    string
}

func (Neighbors) iterSource() {}

// InNeighbors iterates over the in-neighbors of Of: g.nodes_to(v).
type InNeighbors struct {
	Graph string
	Of    string
}

func (InNeighbors) iterSource() {}

// Collection iterates over an externally supplied set.
type Collection struct {
	Name string
}

func (Collection) iterSource() {}

// FixedPoint repeats Body until no node has Prop set.
//
// DSL form: fixedPoint until (Flag: !Prop) { Body }. Flag is a host boolean
// declared before the statement; Prop is a boolean node property that Body
// updates through reductions. Prop is double buffered for the duration of the
// loop.
type FixedPoint struct {
	Flag string
	Prop string
	Body Block
}

func (FixedPoint) statementKind() {}

// ReduceOp is the operator of a ReductionCall.
type ReduceOp uint8

const (
	ReduceMin ReduceOp = iota
	ReduceMax
	ReduceSum     // +=
	ReduceSub     // -=
	ReduceProduct // *=
	ReduceAnd     // &&=
	ReduceOr      // ||=
	ReduceCount   // ++
)

// String returns the DSL spelling of the operator.
func (op ReduceOp) String() string {
	switch op {
	case ReduceMin:
		return "Min"
	case ReduceMax:
		return "Max"
	case ReduceSum:
		return "+="
	case ReduceSub:
		return "-="
	case ReduceProduct:
		return "*="
	case ReduceAnd:
		return "&&="
	case ReduceOr:
		return "||="
	case ReduceCount:
		return "++"
	default:
		return "?"
	}
}

// IsMinMax reports whether op is a Min or Max call form.
func (op ReduceOp) IsMinMax() bool {
	return op == ReduceMin || op == ReduceMax
}

// ReductionCall is a reduction statement.
//
// Min/Max form: <Targets[0], Targets[1..]> = <Op(Targets[0], Values[0]), Values[1..]>.
// Values[0] is the candidate; the remaining pairs are dependents that are
// committed only when the candidate wins.
//
// Op-assign form: Targets[0] op= Values[0] (Values is empty for ReduceCount).
type ReductionCall struct {
	Op      ReduceOp
	Targets []Expression
	Values  []Expression
}

func (ReductionCall) statementKind() {}

// Arg is a procedure call argument. Name is set for the name = value
// arguments of attachNodeProperty and attachEdgeProperty.
type Arg struct {
	Name  string
	Value Expression
}

// ProcCall is a method call in statement position: recv.Method(args).
type ProcCall struct {
	Receiver string
	Method   string
	Args     []Arg
}

func (ProcCall) statementKind() {}

// ForwardBFS is iterateInBFS(Iterator in g.nodes() from Root) { Body }.
type ForwardBFS struct {
	Graph    string
	Iterator string
	Root     Expression
	Body     Block
}

func (ForwardBFS) statementKind() {}

// ReverseBFS is iterateInReverse(Filter) { Body }. It replays the levels of
// the ForwardBFS that precedes it in the same block, deepest first, binding
// Iterator to each node of a level.
type ReverseBFS struct {
	Iterator string
	Filter   Expression // optional
	Body     Block
}

func (ReverseBFS) statementKind() {}

// While is while (Cond) { Body }, or do { Body } while (Cond) when DoWhile is set.
type While struct {
	Cond    Expression
	Body    Block
	DoWhile bool
}

func (While) statementKind() {}

// Return leaves the function, optionally with a value.
type Return struct {
	Value Expression // optional
}

func (Return) statementKind() {}

// ExprStmt evaluates an expression for its side effect (x++, x--).
type ExprStmt struct {
	X Expression
}

func (ExprStmt) statementKind() {}
