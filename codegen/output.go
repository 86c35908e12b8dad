// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import (
	"fmt"
	"strings"
)

// indentUnit is one level of indentation in generated code.
const indentUnit = "    "

// Stream is an append-only text sink with an indentation level.
type Stream struct {
	out    strings.Builder
	indent int
}

// NewStream returns an empty stream at indentation level zero.
func NewStream() *Stream {
	return &Stream{}
}

// Line writes one indented line. Args are applied with fmt.Sprintf when present.
func (s *Stream) Line(format string, args ...any) {
	s.writeIndent()
	if len(args) == 0 {
		s.out.WriteString(format)
	} else {
		fmt.Fprintf(&s.out, format, args...)
	}
	s.out.WriteByte('\n')
}

// Blank writes an empty line.
func (s *Stream) Blank() {
	s.out.WriteByte('\n')
}

// Open writes a line followed by " {" and increases indentation.
func (s *Stream) Open(format string, args ...any) {
	s.Line(format+" {", args...)
	s.Push()
}

// Close decreases indentation and writes "}".
func (s *Stream) Close() {
	s.Pop()
	s.Line("}")
}

// Push increases indentation.
func (s *Stream) Push() {
	s.indent++
}

// Pop decreases indentation.
func (s *Stream) Pop() {
	if s.indent > 0 {
		s.indent--
	}
}

// Indent returns the current indentation level.
func (s *Stream) Indent() int {
	return s.indent
}

// SetIndent sets the indentation level.
func (s *Stream) SetIndent(level int) {
	if level < 0 {
		level = 0
	}
	s.indent = level
}

// Append copies the text of other onto s verbatim.
func (s *Stream) Append(other *Stream) {
	s.out.WriteString(other.out.String())
}

// AppendIndented copies the text of other onto s, shifting every non-empty
// line by the current indentation of s.
func (s *Stream) AppendIndented(other *Stream) {
	text := other.out.String()
	for text != "" {
		line := text
		rest := ""
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			line, rest = text[:i], text[i+1:]
		}
		if line != "" {
			s.writeIndent()
			s.out.WriteString(line)
		}
		s.out.WriteByte('\n')
		text = rest
	}
}

// Len returns the number of bytes written.
func (s *Stream) Len() int {
	return s.out.Len()
}

// String returns the accumulated text.
func (s *Stream) String() string {
	return s.out.String()
}

func (s *Stream) writeIndent() {
	for i := 0; i < s.indent; i++ {
		s.out.WriteString(indentUnit)
	}
}

// Output holds the two artifacts produced for one compilation unit.
type Output struct {
	// Interface receives declarations and the include guard.
	Interface *Stream

	// Implementation receives function bodies and, for kernel backends,
	// device kernels.
	Implementation *Stream
}

// NewOutput returns an Output with two empty streams.
func NewOutput() *Output {
	return &Output{
		Interface:      NewStream(),
		Implementation: NewStream(),
	}
}
