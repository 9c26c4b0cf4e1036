//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package compiler

import (
	"io"
	"strings"
	"testing"
)

var lexerInput = `func main(a secret fixed[2]) { // comment
    b, c = a*1.5 <= ^x >= y == z
}`

var lexerTokens = []TokenType{
	TSymFunc, TIdentifier, TLParen, TIdentifier, TIdentifier, TIdentifier,
	TLBracket, TInteger, TRBracket, TRParen, TLBrace,
	TIdentifier, TComma, TIdentifier, TAssign, TIdentifier, TMult, TFloat,
	TLe, TBitXor, TIdentifier, TGe, TIdentifier, TEq, TIdentifier,
	TRBrace,
}

func TestLexer(t *testing.T) {
	lexer := NewLexer("{data}", strings.NewReader(lexerInput))
	for idx, tt := range lexerTokens {
		token, err := lexer.Get()
		if err != nil {
			t.Fatalf("token %d: %v", idx, err)
		}
		if token.Type != tt {
			t.Fatalf("token %d: got %v, expected %v", idx, token.Type, tt)
		}
	}
	_, err := lexer.Get()
	if err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestLexerValues(t *testing.T) {
	lexer := NewLexer("{data}", strings.NewReader("42 0.25\n  foo_1"))

	token, err := lexer.Get()
	if err != nil || token.ConstVal.(int64) != 42 {
		t.Fatalf("integer: %v %v", token, err)
	}
	token, err = lexer.Get()
	if err != nil || token.ConstVal.(float64) != 0.25 {
		t.Fatalf("float: %v %v", token, err)
	}
	token, err = lexer.Get()
	if err != nil || token.StrVal != "foo_1" {
		t.Fatalf("identifier: %v %v", token, err)
	}
	if token.From.Line != 2 || token.From.Col != 2 {
		t.Errorf("identifier position: %v", token.From)
	}
	if lexer.Last() != token {
		t.Errorf("last token: %v", lexer.Last())
	}

	lexer = NewLexer("{data}", strings.NewReader("1.2.3"))
	_, err = lexer.Get()
	if err == nil {
		t.Errorf("malformed number accepted")
	}
	lexer = NewLexer("{data}", strings.NewReader("a # b"))
	lexer.Get()
	_, err = lexer.Get()
	if err == nil {
		t.Errorf("unexpected character accepted")
	}
}

func TestUnget(t *testing.T) {
	lexer := NewLexer("{data}", strings.NewReader("a b"))
	a, _ := lexer.Get()
	b, _ := lexer.Get()
	lexer.Unget(b)
	if lexer.Last() != a {
		t.Errorf("Last after Unget: %v", lexer.Last())
	}
	n, _ := lexer.Get()
	if n != b || lexer.Last() != b {
		t.Errorf("Get after Unget: %v", n)
	}
}
