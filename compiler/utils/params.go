//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package utils

import (
	"io"
)

// Params specify compiler parameters.
type Params struct {
	Verbose bool

	// FixedPoint is the default count of fractional bits for fixed
	// point values and the scale that multiplications are truncated
	// back to.
	FixedPoint uint8

	// Protocol names the nonlinear protocol of the lowering.
	Protocol string

	ASTOut   io.WriteCloser
	HLOut    io.WriteCloser
	LocalOut io.WriteCloser
	StatsOut io.WriteCloser
}

// NewParams returns new compiler params object, initialized with the
// default values.
func NewParams() *Params {
	return &Params{
		FixedPoint: 15,
		Protocol:   "generic",
	}
}

// Close closes all open resources.
func (p *Params) Close() {
	if p.ASTOut != nil {
		p.ASTOut.Close()
		p.ASTOut = nil
	}
	if p.HLOut != nil {
		p.HLOut.Close()
		p.HLOut = nil
	}
	if p.LocalOut != nil {
		p.LocalOut.Close()
		p.LocalOut = nil
	}
	if p.StatsOut != nil {
		p.StatsOut.Close()
		p.StatsOut = nil
	}
}
