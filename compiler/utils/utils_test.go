//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package utils

import (
	"bytes"
	"errors"
	"testing"
)

func TestPoint(t *testing.T) {
	p := Point{}
	if !p.Undefined() {
		t.Errorf("Undefined point is not undefined")
	}
	p = Point{Source: "a.r3", Line: 1}
	p = p.Advance('x').Advance('\n').Advance('y')
	if p.Line != 2 || p.Col != 1 {
		t.Errorf("Advance: got %v", p)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	err := l.Errorf(Point{Source: "a.r3", Line: 3, Col: 4},
		"unsupported operation %q\ndetails", "foo")
	if got := buf.String(); got != "a.r3:3:4: unsupported operation \"foo\"\ndetails\n" {
		t.Errorf("Errorf output: %q", got)
	}
	var diag *Diagnostic
	if !errors.As(err, &diag) {
		t.Fatalf("Errorf returned %T", err)
	}
	if diag.Msg != `unsupported operation "foo"` {
		t.Errorf("diagnostic message: %q", diag.Msg)
	}
	if l.Errors() != 1 {
		t.Errorf("Errors: %d", l.Errors())
	}
}

func TestRecover(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err)
		ICE("shape mismatch %v", []int{2})
		return nil
	}
	err := run()
	var ie *InternalError
	if !errors.As(err, &ie) {
		t.Fatalf("Recover: got %v", err)
	}
}
