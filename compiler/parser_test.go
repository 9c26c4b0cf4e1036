//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/markkurossi/rep3/compiler/ast"
	"github.com/markkurossi/rep3/compiler/utils"
)

func parse(code string) (*ast.Package, string, error) {
	var out bytes.Buffer
	pkg, err := NewParser("{data}", utils.NewLogger(&out),
		strings.NewReader(code)).Parse()
	return pkg, out.String(), err
}

func TestParseFunc(t *testing.T) {
	pkg, _, err := parse(`
func main(a, b secret int[2, 3], c public fixed, d bits[4]) {
    return f(a, b), c
}

func f(x, y) {
    z = x + y * 2
    return z
}
`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	main, ok := pkg.Functions["main"]
	if !ok || len(main.Args) != 4 {
		t.Fatalf("main: %v", main)
	}
	for idx, expected := range []string{
		"secret int[2, 3]",
		"secret int[2, 3]",
		"public fixed",
		"bits[4]",
	} {
		if got := main.Args[idx].Type.String(); got != expected {
			t.Errorf("arg %d: got %q, expected %q", idx, got, expected)
		}
	}
	f := pkg.Functions["f"]
	if f.Args[0].Type != nil || f.Args[1].Type != nil {
		t.Errorf("f: typed arguments")
	}
	if got := f.Body[0].String(); got != "z = (x + (y * 2))" {
		t.Errorf("precedence: got %q", got)
	}
	if got := main.Body[0].String(); got != "return f(a, b), c" {
		t.Errorf("return: got %q", got)
	}
}

func TestParseExpr(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"a - b - c", "((a - b) - c)"},
		{"a & b | c", "((a & b) | c)"},
		{"a + b < c * d", "((a + b) < (c * d))"},
		{"-a * ^b", "(-a * ^b)"},
		{"(a + b) * c", "((a + b) * c)"},
		{"slice(x, [0, 1], [2, -1])", "slice(x, [0, 1], [2, -1])"},
		{"f()", "f()"},
	}
	for _, test := range tests {
		pkg, _, err := parse("func main() {\n r = " + test.code + "\n}")
		if err != nil {
			t.Errorf("%s: %v", test.code, err)
			continue
		}
		assign := pkg.Functions["main"].Body[0].(*ast.Assign)
		if got := assign.Expr.String(); got != test.expected {
			t.Errorf("%s: got %q, expected %q", test.code, got,
				test.expected)
		}
	}
}

func TestParseLines(t *testing.T) {
	pkg, _, err := parse(`func main(a secret int) {
    b = a
    -a
}`)
	if err == nil {
		t.Fatalf("statement starting with operator accepted: %v",
			pkg.Functions["main"].Body)
	}

	pkg, _, err = parse(`func main(a secret int) {
    b = a +
        a
    return b
}`)
	if err != nil {
		t.Fatalf("continued expression: %v", err)
	}
	if got := pkg.Functions["main"].Body[0].String(); got != "b = (a + a)" {
		t.Errorf("continued expression: got %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	for _, code := range []string{
		"main() {}",
		"func main(a) {",
		"func main(a, a secret int) {}",
		"func main(a hidden int) {}",
		"func main(a bits fixed) {}",
		"func main(a secret int[0]) {}",
		"func main(a secret float) {}",
		"func main() { return }",
		"func main() { 1 = 2 }",
		"func main() {}\nfunc main() {}",
	} {
		_, out, err := parse(code)
		if err == nil {
			t.Errorf("%q: parse succeeded", code)
			continue
		}
		if !strings.HasPrefix(out, "{data}:") {
			t.Errorf("%q: diagnostic %q", code, out)
		}
	}
}
