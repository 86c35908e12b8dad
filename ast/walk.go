package ast

// Inspect traverses s in depth-first order, calling fn for every statement
// and expression it reaches. If fn returns false, the children of that node
// are skipped.
func Inspect(s Statement, fn func(node any) bool) {
	inspectStmt(s, fn)
}

// InspectExpr is Inspect for an expression root.
func InspectExpr(e Expression, fn func(node any) bool) {
	inspectExpr(e, fn)
}

func inspectStmt(s Statement, fn func(node any) bool) {
	if s == nil || !fn(s) {
		return
	}
	switch k := s.(type) {
	case Block:
		for _, c := range k {
			inspectStmt(c, fn)
		}
	case Declaration:
		inspectExpr(k.Init, fn)
	case Assignment:
		inspectExpr(k.Target, fn)
		inspectExpr(k.Value, fn)
	case IfStmt:
		inspectExpr(k.Cond, fn)
		inspectStmt(k.Then, fn)
		inspectStmt(k.Else, fn)
	case ForAll:
		inspectExpr(k.Filter, fn)
		inspectStmt(k.Body, fn)
	case FixedPoint:
		inspectStmt(k.Body, fn)
	case ReductionCall:
		for _, t := range k.Targets {
			inspectExpr(t, fn)
		}
		for _, v := range k.Values {
			inspectExpr(v, fn)
		}
	case ProcCall:
		for _, a := range k.Args {
			inspectExpr(a.Value, fn)
		}
	case ForwardBFS:
		inspectExpr(k.Root, fn)
		inspectStmt(k.Body, fn)
	case ReverseBFS:
		inspectExpr(k.Filter, fn)
		inspectStmt(k.Body, fn)
	case While:
		inspectExpr(k.Cond, fn)
		inspectStmt(k.Body, fn)
	case Return:
		inspectExpr(k.Value, fn)
	case ExprStmt:
		inspectExpr(k.X, fn)
	}
}

func inspectExpr(e Expression, fn func(node any) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch k := e.(type) {
	case Binary:
		inspectExpr(k.Left, fn)
		inspectExpr(k.Right, fn)
	case Unary:
		inspectExpr(k.X, fn)
	case Call:
		for _, a := range k.Args {
			inspectExpr(a, fn)
		}
	}
}
