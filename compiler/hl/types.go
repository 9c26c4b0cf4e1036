//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package hl

import (
	"fmt"
	"strings"

	"github.com/markkurossi/rep3/compiler/graph"
)

// Kind specifies the secrecy and representation of a value.
type Kind uint8

// Value kinds.
const (
	SecretArith Kind = iota
	SecretBits
	Public
)

var kindNames = map[Kind]string{
	SecretArith: "arith",
	SecretBits:  "bits",
	Public:      "public",
}

func (k Kind) String() string {
	name, ok := kindNames[k]
	if ok {
		return name
	}
	return fmt.Sprintf("{Kind %d}", k)
}

// Secret tests if the kind is secret shared.
func (k Kind) Secret() bool {
	return k == SecretArith || k == SecretBits
}

// Type defines the type of a high-level value. FixedPoint counts the
// fractional bits of fixed-point values and is always 0 for
// SecretBits.
type Type struct {
	Kind       Kind
	FixedPoint uint8
	Shape      graph.ShapeRef
}

// FormatShape formats a shape as the axis prefix of a tensor type.
func FormatShape(shape []int) string {
	var sb strings.Builder
	for _, d := range shape {
		fmt.Fprintf(&sb, "%dx", d)
	}
	return sb.String()
}

func (g *Graph) formatType(t Type) string {
	shape := FormatShape(g.attrs.Shape(t.Shape))
	switch t.Kind {
	case SecretArith:
		return fmt.Sprintf("tensor<%s[%d]a64>", shape, t.FixedPoint)
	case SecretBits:
		return fmt.Sprintf("tensor<%sb64>", shape)
	default:
		return fmt.Sprintf("tensor<%s[%d]p64>", shape, t.FixedPoint)
	}
}
