package codegen

// Hooks for the external test package.
var (
	CSRFields = csrFields
	Literal   = literal
	Infinity  = infinity
)
