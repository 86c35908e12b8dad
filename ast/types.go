package ast

// TypeKind classifies a DSL value.
type TypeKind uint8

const (
	KindPrimitive TypeKind = iota
	KindNodeProp
	KindEdgeProp
	KindNode
	KindEdge
	KindGraph
	KindCollection
)

// String returns the DSL spelling of the kind.
func (k TypeKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindNodeProp:
		return "propNode"
	case KindEdgeProp:
		return "propEdge"
	case KindNode:
		return "node"
	case KindEdge:
		return "edge"
	case KindGraph:
		return "Graph"
	case KindCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// Scalar is the element type of a primitive or a property.
type Scalar uint8

const (
	ScalarInt Scalar = iota
	ScalarBool
	ScalarLong
	ScalarFloat
	ScalarDouble
)

// String returns the DSL spelling of the scalar.
func (s Scalar) String() string {
	switch s {
	case ScalarInt:
		return "int"
	case ScalarBool:
		return "bool"
	case ScalarLong:
		return "long"
	case ScalarFloat:
		return "float"
	case ScalarDouble:
		return "double"
	default:
		return "unknown"
	}
}

// CollectionKind identifies the externally supplied set types.
type CollectionKind uint8

const (
	SetN CollectionKind = iota // set of nodes
	SetE                       // set of edges
)

// Type is the resolved type descriptor of a value.
//
// Scalar is meaningful for KindPrimitive, KindNodeProp and KindEdgeProp.
// Collection is meaningful for KindCollection.
type Type struct {
	Kind       TypeKind
	Scalar     Scalar
	Collection CollectionKind
}

// Convenience constructors used by the front end and by tests.

func Primitive(s Scalar) Type { return Type{Kind: KindPrimitive, Scalar: s} }
func NodeProp(s Scalar) Type  { return Type{Kind: KindNodeProp, Scalar: s} }
func EdgeProp(s Scalar) Type  { return Type{Kind: KindEdgeProp, Scalar: s} }
func Node() Type              { return Type{Kind: KindNode} }
func Edge() Type              { return Type{Kind: KindEdge} }
func Graph() Type             { return Type{Kind: KindGraph} }
func NodeSet() Type           { return Type{Kind: KindCollection, Collection: SetN} }

// IsProperty reports whether the type is a node or edge property.
func (t Type) IsProperty() bool {
	return t.Kind == KindNodeProp || t.Kind == KindEdgeProp
}

// IsScalarLike reports whether values of the type are held in a single
// machine word: primitives, node and edge references.
func (t Type) IsScalarLike() bool {
	return t.Kind == KindPrimitive || t.Kind == KindNode || t.Kind == KindEdge
}
