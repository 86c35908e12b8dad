package ast

// Program is one compilation unit: an ordered list of DSL functions.
type Program struct {
	Functions []*Function
}

// Function is a DSL function together with the metadata the front end
// computed for it.
type Function struct {
	Name   string
	Params []Param

	// Result is the declared return type, nil for functions without a result.
	Result *Type

	Body Block

	// Usage records which CSR fields the function body touches.
	Usage Usage
}

// Param is a formal function parameter.
type Param struct {
	Name string
	Type Type
}

// GraphParam returns the first graph-typed parameter, or false when the
// function takes no graph.
func (f *Function) GraphParam() (Param, bool) {
	for _, p := range f.Params {
		if p.Type.Kind == KindGraph {
			return p, true
		}
	}
	return Param{}, false
}

// Usage holds the per-function CSR field usage flags.
//
// A buffer, a device allocation or a transfer may be emitted for a field if
// and only if its flag is set.
type Usage struct {
	MetaUsed    bool // forward offsets, V+1 entries
	RevMetaUsed bool // reverse offsets, V+1 entries
	DataUsed    bool // destination list, E entries
	SrcUsed     bool // source list, E entries
	WeightUsed  bool // edge weights, E entries
}

// Union returns the flags set in u or o.
func (u Usage) Union(o Usage) Usage {
	return Usage{
		MetaUsed:    u.MetaUsed || o.MetaUsed,
		RevMetaUsed: u.RevMetaUsed || o.RevMetaUsed,
		DataUsed:    u.DataUsed || o.DataUsed,
		SrcUsed:     u.SrcUsed || o.SrcUsed,
		WeightUsed:  u.WeightUsed || o.WeightUsed,
	}
}

// Any reports whether at least one flag is set.
func (u Usage) Any() bool {
	return u.MetaUsed || u.RevMetaUsed || u.DataUsed || u.SrcUsed || u.WeightUsed
}
