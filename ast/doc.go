// Package ast defines the typed program tree consumed by the code generator.
//
// The tree is produced by the StarPlat front end (lexer, parser, symbol table
// and type checker) which lives outside this module. By the time a Program
// reaches the generator it is validated and fully typed:
//
//   - every identifier that names a property, node, edge or graph has been
//     resolved, so the generator only needs the declared Type;
//   - every function carries its CSR Usage flags;
//   - reduction, fixed point and BFS constructs have been desugared into the
//     statement kinds declared in statement.go.
//
// # Structure
//
// Statements and expressions are closed sum types. Each variant implements an
// unexported marker method, so code outside this package cannot add kinds and
// a lowering switch only has to handle the variants listed here:
//
//	Program
//	  └── Function (Params, Usage, Body)
//	        └── Block ── Statement ── Expression
//
// The tree is read-only for the generator. A single Program may be compiled
// by several backends, one after another or concurrently.
package ast
