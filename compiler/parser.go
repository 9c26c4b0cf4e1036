//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package compiler

import (
	"fmt"
	"io"

	"github.com/markkurossi/rep3/compiler/ast"
	"github.com/markkurossi/rep3/compiler/utils"
)

// Parser implements the tensor program parser.
type Parser struct {
	logger *utils.Logger
	lexer  *Lexer
	pkg    *ast.Package
}

// NewParser creates a new parser.
func NewParser(source string, logger *utils.Logger, in io.Reader) *Parser {
	return &Parser{
		logger: logger,
		lexer:  NewLexer(source, in),
	}
}

// Parse parses the function definitions of the input.
func (p *Parser) Parse() (*ast.Package, error) {
	p.pkg = ast.NewPackage(p.lexer.Source())

	for {
		t, err := p.lexer.Get()
		if err == io.EOF {
			return p.pkg, nil
		} else if err != nil {
			return nil, err
		}
		if t.Type != TSymFunc {
			return nil, p.errUnexpected(t, TSymFunc)
		}
		f, err := p.parseFunc()
		if err == io.EOF {
			return nil, p.errf(p.lexer.point, "unexpected end of file")
		} else if err != nil {
			return nil, err
		}
		_, ok := p.pkg.Functions[f.Name]
		if ok {
			return nil, p.errf(f.Loc, "function %s redeclared", f.Name)
		}
		p.pkg.Functions[f.Name] = f
	}
}

func (p *Parser) errf(loc utils.Point, format string, a ...interface{}) error {
	msg := fmt.Sprintf(format, a...)

	p.lexer.FlushEOL()

	line, ok := p.lexer.history[loc.Line]
	if ok {
		var indicator []rune
		for i := 0; i < loc.Col && i < len(line); i++ {
			var r rune
			if line[i] == '\t' {
				r = '\t'
			} else {
				r = ' '
			}
			indicator = append(indicator, r)
		}
		indicator = append(indicator, '^')
		return p.logger.Errorf(loc, "%s\n%s\n%s\n",
			msg, string(line), string(indicator))
	}
	return p.logger.Errorf(loc, "%s", msg)
}

func (p *Parser) errUnexpected(offending *Token, expected TokenType) error {
	return p.errf(offending.From, "unexpected token '%s': expected '%s'",
		offending, expected)
}

func (p *Parser) needToken(tt TokenType) (*Token, error) {
	token, err := p.lexer.Get()
	if err != nil {
		return nil, err
	}
	if token.Type != tt {
		p.lexer.Unget(token)
		return nil, p.errUnexpected(token, tt)
	}
	return token, nil
}

// operator gets the next token if it is one of the binary operators
// types and it is on the same line as the preceding token.
func (p *Parser) operator(types ...TokenType) (*Token, error) {
	prev := p.lexer.Last()
	t, err := p.lexer.Get()
	if err != nil {
		return nil, err
	}
	for _, tt := range types {
		if t.Type == tt && (prev == nil || prev.To.Line == t.From.Line) {
			return t, nil
		}
	}
	p.lexer.Unget(t)
	return nil, nil
}

func (p *Parser) parseFunc() (*ast.Func, error) {
	name, err := p.needToken(TIdentifier)
	if err != nil {
		return nil, err
	}
	_, err = p.needToken(TLParen)
	if err != nil {
		return nil, err
	}

	var arguments []*ast.Variable
	var typed int

	t, err := p.lexer.Get()
	if err != nil {
		return nil, err
	}
	if t.Type != TRParen {
		p.lexer.Unget(t)
		for {
			t, err = p.needToken(TIdentifier)
			if err != nil {
				return nil, err
			}
			arg := &ast.Variable{
				Loc:  t.From,
				Name: t.StrVal,
			}
			for _, a := range arguments {
				if a.Name == arg.Name {
					return nil, p.errf(t.From, "duplicate argument %s",
						arg.Name)
				}
			}
			arguments = append(arguments, arg)

			t, err = p.lexer.Get()
			if err != nil {
				return nil, err
			}
			if t.Type == TComma {
				continue
			}
			if t.Type == TRParen {
				break
			}
			p.lexer.Unget(t)

			typeInfo, err := p.parseType()
			if err != nil {
				return nil, err
			}
			// All untyped arguments get this type.
			for ; typed < len(arguments); typed++ {
				arguments[typed].Type = typeInfo
			}

			t, err = p.lexer.Get()
			if err != nil {
				return nil, err
			}
			if t.Type == TRParen {
				break
			}
			if t.Type != TComma {
				return nil, p.errUnexpected(t, TComma)
			}
		}
	}

	_, err = p.needToken(TLBrace)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.Func{
		Loc:  name.From,
		Name: name.StrVal,
		Args: arguments,
		Body: body,
	}, nil
}

func (p *Parser) parseType() (*ast.TypeInfo, error) {
	result := new(ast.TypeInfo)

	t, err := p.needToken(TIdentifier)
	if err != nil {
		return result, err
	}
	tag, ok := ast.Tags[t.StrVal]
	if !ok {
		return result, p.errf(t.From, "unknown argument tag %s", t.StrVal)
	}
	result.Tag = tag
	result.Integer = tag == ast.TagBits

	t, err = p.lexer.Get()
	if err != nil {
		return result, err
	}
	if t.Type == TIdentifier {
		switch t.StrVal {
		case "fixed":
			if tag == ast.TagBits {
				return result, p.errf(t.From, "fixed point bits")
			}
			result.Integer = false
		case "int":
			result.Integer = true
		default:
			return result, p.errf(t.From, "unknown element type %s",
				t.StrVal)
		}
		t, err = p.lexer.Get()
		if err != nil {
			return result, err
		}
	}
	if t.Type != TLBracket {
		p.lexer.Unget(t)
		return result, nil
	}
	shape, err := p.parseIntList(t)
	if err != nil {
		return result, err
	}
	for _, d := range shape.Values {
		if d <= 0 {
			return result, p.errf(shape.Loc, "invalid dimension %d", d)
		}
	}
	result.Shape = shape.Values
	return result, nil
}

// parseIntList parses an integer list. The opening bracket is
// already consumed.
func (p *Parser) parseIntList(open *Token) (*ast.Attribute, error) {
	result := &ast.Attribute{
		Loc:    open.From,
		Values: []int{},
	}
	t, err := p.lexer.Get()
	if err != nil {
		return nil, err
	}
	if t.Type == TRBracket {
		return result, nil
	}
	p.lexer.Unget(t)

	for {
		t, err = p.lexer.Get()
		if err != nil {
			return nil, err
		}
		var neg bool
		if t.Type == TMinus {
			neg = true
			t, err = p.lexer.Get()
			if err != nil {
				return nil, err
			}
		}
		if t.Type != TInteger {
			return nil, p.errUnexpected(t, TInteger)
		}
		v := int(t.ConstVal.(int64))
		if neg {
			v = -v
		}
		result.Values = append(result.Values, v)

		t, err = p.lexer.Get()
		if err != nil {
			return nil, err
		}
		if t.Type == TRBracket {
			return result, nil
		}
		if t.Type != TComma {
			return nil, p.errUnexpected(t, TComma)
		}
	}
}

func (p *Parser) parseBlock() (ast.List, error) {
	var result ast.List
	for {
		t, err := p.lexer.Get()
		if err != nil {
			return nil, err
		}
		if t.Type == TRBrace {
			return result, nil
		}
		p.lexer.Unget(t)
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		result = append(result, stmt)
	}
}

func (p *Parser) parseStatement() (ast.AST, error) {
	t, err := p.lexer.Get()
	if err != nil {
		return nil, err
	}
	switch t.Type {
	case TSymReturn:
		exprs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		return &ast.Return{
			Loc:   t.From,
			Exprs: exprs,
		}, nil

	case TIdentifier:
		names := []string{t.StrVal}
		for {
			n, err := p.lexer.Get()
			if err != nil {
				return nil, err
			}
			if n.Type == TAssign {
				break
			}
			if n.Type != TComma {
				return nil, p.errUnexpected(n, TAssign)
			}
			n, err = p.needToken(TIdentifier)
			if err != nil {
				return nil, err
			}
			names = append(names, n.StrVal)
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Assign{
			Loc:   t.From,
			Names: names,
			Expr:  expr,
		}, nil

	default:
		return nil, p.errf(t.From, "syntax error: unexpected %s", t)
	}
}

func (p *Parser) parseExprList() ([]ast.AST, error) {
	var result []ast.AST
	for {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		result = append(result, expr)

		t, err := p.lexer.Get()
		if err != nil {
			if err == io.EOF {
				return result, nil
			}
			return nil, err
		}
		if t.Type != TComma {
			p.lexer.Unget(t)
			return result, nil
		}
	}
}

var comparatives = map[TokenType]ast.BinaryType{
	TLt: ast.BinaryLt,
	TLe: ast.BinaryLe,
	TGt: ast.BinaryGt,
	TGe: ast.BinaryGe,
	TEq: ast.BinaryEq,
}

var additives = map[TokenType]ast.BinaryType{
	TPlus:   ast.BinaryPlus,
	TMinus:  ast.BinaryMinus,
	TBitOr:  ast.BinaryBitOr,
	TBitXor: ast.BinaryBitXor,
}

var multiplicatives = map[TokenType]ast.BinaryType{
	TMult:   ast.BinaryMult,
	TBitAnd: ast.BinaryBitAnd,
}

func keys(m map[TokenType]ast.BinaryType) []TokenType {
	var result []TokenType
	for k := range m {
		result = append(result, k)
	}
	return result
}

func (p *Parser) parseExpr() (ast.AST, error) {
	left, err := p.parseExprAdditive()
	if err != nil {
		return nil, err
	}
	t, err := p.operator(keys(comparatives)...)
	if err != nil {
		if err == io.EOF {
			return left, nil
		}
		return nil, err
	}
	if t == nil {
		return left, nil
	}
	right, err := p.parseExprAdditive()
	if err != nil {
		return nil, err
	}
	return &ast.Binary{
		Loc:   t.From,
		Left:  left,
		Op:    comparatives[t.Type],
		Right: right,
	}, nil
}

func (p *Parser) parseBinary(ops map[TokenType]ast.BinaryType,
	operand func() (ast.AST, error)) (ast.AST, error) {

	left, err := operand()
	if err != nil {
		return nil, err
	}
	types := keys(ops)
	for {
		t, err := p.operator(types...)
		if err != nil {
			if err == io.EOF {
				return left, nil
			}
			return nil, err
		}
		if t == nil {
			return left, nil
		}
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{
			Loc:   t.From,
			Left:  left,
			Op:    ops[t.Type],
			Right: right,
		}
	}
}

func (p *Parser) parseExprAdditive() (ast.AST, error) {
	return p.parseBinary(additives, p.parseExprMultiplicative)
}

func (p *Parser) parseExprMultiplicative() (ast.AST, error) {
	return p.parseBinary(multiplicatives, p.parseExprUnary)
}

func (p *Parser) parseExprUnary() (ast.AST, error) {
	t, err := p.lexer.Get()
	if err != nil {
		return nil, err
	}
	switch t.Type {
	case TMinus, TBitXor:
		expr, err := p.parseExprUnary()
		if err != nil {
			return nil, err
		}
		ut := ast.UnaryMinus
		if t.Type == TBitXor {
			ut = ast.UnaryBitNot
		}
		return &ast.Unary{
			Loc:  t.From,
			Type: ut,
			Expr: expr,
		}, nil

	default:
		p.lexer.Unget(t)
		return p.parseExprPrimary()
	}
}

func (p *Parser) parseExprPrimary() (ast.AST, error) {
	t, err := p.lexer.Get()
	if err != nil {
		return nil, err
	}
	switch t.Type {
	case TInteger, TFloat:
		return &ast.Constant{
			Loc:   t.From,
			Value: t.ConstVal,
		}, nil

	case TLBracket:
		return p.parseIntList(t)

	case TLParen:
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		_, err = p.needToken(TRParen)
		if err != nil {
			return nil, err
		}
		return expr, nil

	case TIdentifier:
		n, err := p.lexer.Get()
		if err != nil {
			if err == io.EOF {
				return &ast.VariableRef{
					Loc:  t.From,
					Name: t.StrVal,
				}, nil
			}
			return nil, err
		}
		if n.Type != TLParen {
			p.lexer.Unget(n)
			return &ast.VariableRef{
				Loc:  t.From,
				Name: t.StrVal,
			}, nil
		}
		call := &ast.Call{
			Loc:  t.From,
			Name: t.StrVal,
		}
		n, err = p.lexer.Get()
		if err != nil {
			return nil, err
		}
		if n.Type == TRParen {
			return call, nil
		}
		p.lexer.Unget(n)
		call.Exprs, err = p.parseExprList()
		if err != nil {
			return nil, err
		}
		_, err = p.needToken(TRParen)
		if err != nil {
			return nil, err
		}
		return call, nil

	default:
		return nil, p.errf(t.From, "unexpected token '%s'", t)
	}
}
