//
// ast.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Package ast implements the abstract syntax tree of the tensor
// program language and its code generation into high-level graphs.
package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/markkurossi/rep3/compiler/hl"
	"github.com/markkurossi/rep3/compiler/utils"
)

var (
	_ AST = List{}
	_ AST = &Assign{}
	_ AST = &Return{}
	_ AST = &Call{}
	_ AST = &Binary{}
	_ AST = &Unary{}
	_ AST = &VariableRef{}
	_ AST = &Constant{}
	_ AST = &Attribute{}
)

func indent(w io.Writer, indent int) {
	for i := 0; i < indent; i++ {
		fmt.Fprint(w, " ")
	}
}

// AST implements abstract syntax tree nodes.
type AST interface {
	String() string
	Location() utils.Point
	Fprint(w io.Writer, indent int)
	// HL generates the high-level graph operations of the node. The
	// function returns the values of an expression node; statements
	// return nil.
	HL(ctx *Codegen) ([]Value, error)
}

// List implements a list of statements.
type List []AST

func (ast List) String() string {
	return fmt.Sprintf("%v", []AST(ast))
}

// Location implements the AST.Location.
func (ast List) Location() utils.Point {
	if len(ast) > 0 {
		return ast[0].Location()
	}
	return utils.Point{}
}

// Fprint implements the AST.Fprint.
func (ast List) Fprint(w io.Writer, ind int) {
	indent(w, ind)
	fmt.Fprintf(w, "{\n")
	for _, el := range ast {
		el.Fprint(w, ind+4)
		fmt.Fprintf(w, "\n")
	}
	indent(w, ind)
	fmt.Fprintf(w, "}")
}

// Tag specifies the secrecy of a function argument.
type Tag int

// Argument tags.
const (
	TagSecret Tag = iota
	TagPublic
	TagBits
)

var tagNames = map[Tag]string{
	TagSecret: "secret",
	TagPublic: "public",
	TagBits:   "bits",
}

func (t Tag) String() string {
	name, ok := tagNames[t]
	if ok {
		return name
	}
	return fmt.Sprintf("{Tag %d}", t)
}

// Tags maps tag names to tags.
var Tags = map[string]Tag{
	"secret": TagSecret,
	"public": TagPublic,
	"bits":   TagBits,
}

// Kind returns the high-level value kind of the tag.
func (t Tag) Kind() hl.Kind {
	switch t {
	case TagSecret:
		return hl.SecretArith
	case TagBits:
		return hl.SecretBits
	default:
		return hl.Public
	}
}

// TypeInfo specifies the type of a function argument. Integer values
// have fixed point 0 and others the default fixed point of the
// compilation.
type TypeInfo struct {
	Tag     Tag
	Integer bool
	Shape   []int
}

func (ti TypeInfo) String() string {
	var sb strings.Builder
	sb.WriteString(ti.Tag.String())
	if ti.Tag != TagBits {
		if ti.Integer {
			sb.WriteString(" int")
		} else {
			sb.WriteString(" fixed")
		}
	}
	if len(ti.Shape) > 0 {
		sb.WriteString(hl.FormatList(ti.Shape))
	}
	return sb.String()
}

// Variable implements a function argument. The type is nil for
// untyped arguments of helper functions.
type Variable struct {
	Loc  utils.Point
	Name string
	Type *TypeInfo
}

// Func implements a function definition.
type Func struct {
	Loc  utils.Point
	Name string
	Args []*Variable
	Body List
}

func (ast *Func) String() string {
	return fmt.Sprintf("func %s()", ast.Name)
}

// Location returns the source location of the function.
func (ast *Func) Location() utils.Point {
	return ast.Loc
}

// Fprint prints the function to w.
func (ast *Func) Fprint(w io.Writer, ind int) {
	indent(w, ind)
	fmt.Fprintf(w, "func %s(", ast.Name)
	for idx, arg := range ast.Args {
		if idx > 0 {
			fmt.Fprintf(w, ", ")
		}
		if arg.Type == nil {
			fmt.Fprintf(w, "%s", arg.Name)
		} else {
			fmt.Fprintf(w, "%s %s", arg.Name, arg.Type)
		}
	}
	fmt.Fprintf(w, ") ")
	ast.Body.Fprint(w, ind)
	fmt.Fprintln(w)
}

// Assign implements variable assignment.
type Assign struct {
	Loc   utils.Point
	Names []string
	Expr  AST
}

func (ast *Assign) String() string {
	return fmt.Sprintf("%s = %s", strings.Join(ast.Names, ", "), ast.Expr)
}

// Location implements the AST.Location.
func (ast *Assign) Location() utils.Point {
	return ast.Loc
}

// Fprint implements the AST.Fprint.
func (ast *Assign) Fprint(w io.Writer, ind int) {
	indent(w, ind)
	fmt.Fprintf(w, "%s", ast)
}

// Return implements the return statement.
type Return struct {
	Loc   utils.Point
	Exprs []AST
}

func (ast *Return) String() string {
	return fmt.Sprintf("return %s", exprList(ast.Exprs))
}

// Location implements the AST.Location.
func (ast *Return) Location() utils.Point {
	return ast.Loc
}

// Fprint implements the AST.Fprint.
func (ast *Return) Fprint(w io.Writer, ind int) {
	indent(w, ind)
	fmt.Fprintf(w, "%s", ast)
}

func exprList(exprs []AST) string {
	var sb strings.Builder
	for idx, e := range exprs {
		if idx > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	return sb.String()
}

// Call implements a function call.
type Call struct {
	Loc   utils.Point
	Name  string
	Exprs []AST
}

func (ast *Call) String() string {
	return fmt.Sprintf("%s(%s)", ast.Name, exprList(ast.Exprs))
}

// Location implements the AST.Location.
func (ast *Call) Location() utils.Point {
	return ast.Loc
}

// Fprint implements the AST.Fprint.
func (ast *Call) Fprint(w io.Writer, ind int) {
	indent(w, ind)
	fmt.Fprintf(w, "%s", ast)
}

// BinaryType defines binary operator types.
type BinaryType int

// Binary operators.
const (
	BinaryPlus BinaryType = iota
	BinaryMinus
	BinaryMult
	BinaryBitAnd
	BinaryBitOr
	BinaryBitXor
	BinaryLt
	BinaryLe
	BinaryGt
	BinaryGe
	BinaryEq
)

var binaryTypes = map[BinaryType]string{
	BinaryPlus:   "+",
	BinaryMinus:  "-",
	BinaryMult:   "*",
	BinaryBitAnd: "&",
	BinaryBitOr:  "|",
	BinaryBitXor: "^",
	BinaryLt:     "<",
	BinaryLe:     "<=",
	BinaryGt:     ">",
	BinaryGe:     ">=",
	BinaryEq:     "==",
}

func (t BinaryType) String() string {
	name, ok := binaryTypes[t]
	if ok {
		return name
	}
	return fmt.Sprintf("{BinaryType %d}", t)
}

// Binary implements binary expressions.
type Binary struct {
	Loc   utils.Point
	Left  AST
	Op    BinaryType
	Right AST
}

func (ast *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", ast.Left, ast.Op, ast.Right)
}

// Location implements the AST.Location.
func (ast *Binary) Location() utils.Point {
	return ast.Loc
}

// Fprint implements the AST.Fprint.
func (ast *Binary) Fprint(w io.Writer, ind int) {
	indent(w, ind)
	fmt.Fprintf(w, "%s", ast)
}

// UnaryType defines unary operator types.
type UnaryType int

// Unary operators.
const (
	UnaryMinus UnaryType = iota
	UnaryBitNot
)

// Unary implements unary expressions.
type Unary struct {
	Loc  utils.Point
	Type UnaryType
	Expr AST
}

func (ast *Unary) String() string {
	if ast.Type == UnaryMinus {
		return fmt.Sprintf("-%s", ast.Expr)
	}
	return fmt.Sprintf("^%s", ast.Expr)
}

// Location implements the AST.Location.
func (ast *Unary) Location() utils.Point {
	return ast.Loc
}

// Fprint implements the AST.Fprint.
func (ast *Unary) Fprint(w io.Writer, ind int) {
	indent(w, ind)
	fmt.Fprintf(w, "%s", ast)
}

// VariableRef implements variable reference.
type VariableRef struct {
	Loc  utils.Point
	Name string
}

func (ast *VariableRef) String() string {
	return ast.Name
}

// Location implements the AST.Location.
func (ast *VariableRef) Location() utils.Point {
	return ast.Loc
}

// Fprint implements the AST.Fprint.
func (ast *VariableRef) Fprint(w io.Writer, ind int) {
	indent(w, ind)
	fmt.Fprintf(w, "%s", ast)
}

// Constant implements an untyped numeric literal. The value is an
// int64 or a float64.
type Constant struct {
	Loc   utils.Point
	Value interface{}
}

func (ast *Constant) String() string {
	return fmt.Sprintf("%v", ast.Value)
}

// Location implements the AST.Location.
func (ast *Constant) Location() utils.Point {
	return ast.Loc
}

// Fprint implements the AST.Fprint.
func (ast *Constant) Fprint(w io.Writer, ind int) {
	indent(w, ind)
	fmt.Fprintf(w, "%s", ast)
}

// Attribute implements an integer list argument of a call.
type Attribute struct {
	Loc    utils.Point
	Values []int
}

func (ast *Attribute) String() string {
	return hl.FormatList(ast.Values)
}

// Location implements the AST.Location.
func (ast *Attribute) Location() utils.Point {
	return ast.Loc
}

// Fprint implements the AST.Fprint.
func (ast *Attribute) Fprint(w io.Writer, ind int) {
	indent(w, ind)
	fmt.Fprintf(w, "%s", ast)
}
