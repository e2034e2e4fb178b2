package parser

import (
	"fmt"
	"strings"
)

// SyntaxError reports malformed input.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

// Error returns the error message.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("parser: %d:%d: %s", e.Line, e.Column, e.Msg)
}

func newSyntaxError(src string, pos int, msg string) *SyntaxError {
	before := src[:pos]
	line := strings.Count(before, "\n") + 1
	col := pos - strings.LastIndexByte(before, '\n')
	return &SyntaxError{Line: line, Column: col, Msg: msg}
}
