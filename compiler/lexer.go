//
// lexer.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package compiler

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"unicode"

	"github.com/markkurossi/rep3/compiler/utils"
)

// TokenType specifies input token types.
type TokenType int

// Input tokens.
const (
	TIdentifier TokenType = iota
	TInteger
	TFloat
	TSymFunc
	TSymReturn
	TAssign
	TPlus
	TMinus
	TMult
	TBitAnd
	TBitOr
	TBitXor
	TLt
	TLe
	TGt
	TGe
	TEq
	TLParen
	TRParen
	TLBrace
	TRBrace
	TLBracket
	TRBracket
	TComma
)

var tokenTypes = map[TokenType]string{
	TIdentifier: "identifier",
	TInteger:    "integer",
	TFloat:      "float",
	TSymFunc:    "func",
	TSymReturn:  "return",
	TAssign:     "=",
	TPlus:       "+",
	TMinus:      "-",
	TMult:       "*",
	TBitAnd:     "&",
	TBitOr:      "|",
	TBitXor:     "^",
	TLt:         "<",
	TLe:         "<=",
	TGt:         ">",
	TGe:         ">=",
	TEq:         "==",
	TLParen:     "(",
	TRParen:     ")",
	TLBrace:     "{",
	TRBrace:     "}",
	TLBracket:   "[",
	TRBracket:   "]",
	TComma:      ",",
}

func (t TokenType) String() string {
	name, ok := tokenTypes[t]
	if ok {
		return name
	}
	return fmt.Sprintf("{TokenType %d}", t)
}

var symbols = map[string]TokenType{
	"func":   TSymFunc,
	"return": TSymReturn,
}

// Token specifies an input token.
type Token struct {
	Type     TokenType
	From     utils.Point
	To       utils.Point
	StrVal   string
	ConstVal interface{}
}

func (t *Token) String() string {
	var str string
	if len(t.StrVal) > 0 {
		str = t.StrVal
	} else {
		str = t.Type.String()
	}
	return str
}

// Lexer implements the input tokenizer.
type Lexer struct {
	in          *bufio.Reader
	point       utils.Point
	tokenStart  utils.Point
	ungot       *Token
	last        *Token
	prev        *Token
	unread      bool
	unreadRune  rune
	unreadPoint utils.Point
	history     map[int][]rune
}

// NewLexer creates a new lexer for the input source.
func NewLexer(source string, in io.Reader) *Lexer {
	return &Lexer{
		in: bufio.NewReader(in),
		point: utils.Point{
			Source: source,
			Line:   1,
			Col:    0,
		},
		history: make(map[int][]rune),
	}
}

// Source returns the input source name.
func (l *Lexer) Source() string {
	return l.point.Source
}

// ReadRune reads the next input rune.
func (l *Lexer) ReadRune() (rune, error) {
	if l.unread {
		l.point, l.unreadPoint = l.unreadPoint, l.point
		l.unread = false
		return l.unreadRune, nil
	}
	r, _, err := l.in.ReadRune()
	if err != nil {
		return 0, err
	}

	l.unreadPoint = l.point
	if r != '\n' {
		l.history[l.point.Line] = append(l.history[l.point.Line], r)
	}
	l.point = l.point.Advance(r)

	return r, nil
}

// UnreadRune unreads the last rune.
func (l *Lexer) UnreadRune(r rune) {
	l.point, l.unreadPoint = l.unreadPoint, l.point
	l.unreadRune = r
	l.unread = true
}

// FlushEOL discards all remaining input from the current line.
func (l *Lexer) FlushEOL() error {
	for {
		r, err := l.ReadRune()
		if err != nil {
			if err != io.EOF {
				return err
			}
			return nil
		}
		if r == '\n' {
			return nil
		}
	}
}

// Last returns the last consumed token.
func (l *Lexer) Last() *Token {
	return l.last
}

// Get gets the next token.
func (l *Lexer) Get() (*Token, error) {
	if l.ungot != nil {
		token := l.ungot
		l.ungot = nil
		l.prev, l.last = l.last, token
		return token, nil
	}
	token, err := l.get()
	if err != nil {
		return nil, err
	}
	l.prev, l.last = l.last, token
	return token, nil
}

func (l *Lexer) get() (*Token, error) {
	for {
		l.tokenStart = l.point
		r, err := l.ReadRune()
		if err != nil {
			return nil, err
		}
		if unicode.IsSpace(r) {
			continue
		}
		switch r {
		case '+':
			return l.Token(TPlus), nil
		case '-':
			return l.Token(TMinus), nil
		case '*':
			return l.Token(TMult), nil
		case '&':
			return l.Token(TBitAnd), nil
		case '|':
			return l.Token(TBitOr), nil
		case '^':
			return l.Token(TBitXor), nil
		case '(':
			return l.Token(TLParen), nil
		case ')':
			return l.Token(TRParen), nil
		case '{':
			return l.Token(TLBrace), nil
		case '}':
			return l.Token(TRBrace), nil
		case '[':
			return l.Token(TLBracket), nil
		case ']':
			return l.Token(TRBracket), nil
		case ',':
			return l.Token(TComma), nil

		case '/':
			n, err := l.ReadRune()
			if err != nil && err != io.EOF {
				return nil, err
			}
			if err != nil || n != '/' {
				return nil, fmt.Errorf("%s: unexpected character '/'",
					l.tokenStart)
			}
			if err := l.FlushEOL(); err != nil {
				return nil, err
			}
			continue

		case '<', '>', '=':
			n, err := l.ReadRune()
			if err != nil && err != io.EOF {
				return nil, err
			}
			eq := err == nil && n == '='
			if err == nil && !eq {
				l.UnreadRune(n)
			}
			switch {
			case r == '<' && eq:
				return l.Token(TLe), nil
			case r == '<':
				return l.Token(TLt), nil
			case r == '>' && eq:
				return l.Token(TGe), nil
			case r == '>':
				return l.Token(TGt), nil
			case eq:
				return l.Token(TEq), nil
			default:
				return l.Token(TAssign), nil
			}

		default:
			if unicode.IsLetter(r) || r == '_' {
				symbol, err := l.read(r, func(r rune) bool {
					return unicode.IsLetter(r) || unicode.IsDigit(r) ||
						r == '_'
				})
				if err != nil {
					return nil, err
				}
				tt, ok := symbols[symbol]
				if ok {
					return l.Token(tt), nil
				}
				token := l.Token(TIdentifier)
				token.StrVal = symbol
				return token, nil
			}
			if unicode.IsDigit(r) {
				return l.number(r)
			}
		}
		l.UnreadRune(r)
		return nil, fmt.Errorf("%s: unexpected character '%s'",
			l.tokenStart, string(r))
	}
}

func (l *Lexer) read(r rune, accept func(r rune) bool) (string, error) {
	val := []rune{r}
	for {
		r, err := l.ReadRune()
		if err != nil {
			if err != io.EOF {
				return "", err
			}
			break
		}
		if !accept(r) {
			l.UnreadRune(r)
			break
		}
		val = append(val, r)
	}
	return string(val), nil
}

func (l *Lexer) number(r rune) (*Token, error) {
	str, err := l.read(r, func(r rune) bool {
		return unicode.IsDigit(r) || r == '.'
	})
	if err != nil {
		return nil, err
	}
	i, err := strconv.ParseInt(str, 10, 64)
	if err == nil {
		token := l.Token(TInteger)
		token.StrVal = str
		token.ConstVal = i
		return token, nil
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: malformed number %s", l.tokenStart, str)
	}
	token := l.Token(TFloat)
	token.StrVal = str
	token.ConstVal = f
	return token, nil
}

// Unget ungets the token. The next call to Get returns it.
func (l *Lexer) Unget(t *Token) {
	l.ungot = t
	l.last = l.prev
}

// Token creates a new token of the type t at the current input
// position.
func (l *Lexer) Token(t TokenType) *Token {
	return &Token{
		Type: t,
		From: l.tokenStart,
		To:   l.point,
	}
}
