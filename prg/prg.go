//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package prg implements correlated randomness sources for the
// per-party executor. A source is a deterministic function of the
// party pair and the draw seed, so the two holders of a random draw
// compute identical values without communication.
package prg

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"

	"github.com/markkurossi/rep3/compiler/local"
)

// KeySize is the master key size in bytes.
const KeySize = chacha20.KeySize

// ChaCha20 blocks are 64 bytes.
const wordsPerBlock = 64 / 8

// Counter is the reference source: element k of a draw with the seed
// s is s+k.
type Counter struct{}

// Fill implements local.Source.
func (c Counter) Fill(pair local.Pair, seed uint64, out []uint64) {
	for i := range out {
		out[i] = seed + uint64(i)
	}
}

// ChaCha20 derives a ChaCha20 key for each party pair from a master
// key. Element k of a draw with the seed s is the little-endian word
// s+k of the pair's keystream.
type ChaCha20 struct {
	keys [local.NumParties][]byte
}

// NewChaCha20 creates a ChaCha20 source from the master key.
func NewChaCha20(master []byte) (*ChaCha20, error) {
	if len(master) != KeySize {
		return nil, errors.Newf("invalid master key size %d", len(master))
	}
	result := new(ChaCha20)
	for p := 0; p < local.NumParties; p++ {
		for q := p + 1; q < local.NumParties; q++ {
			pair := local.NewPair(p, q)
			kdf := hkdf.New(sha256.New, master, nil,
				[]byte(fmt.Sprintf("rep3 pair %v", pair)))
			key := make([]byte, chacha20.KeySize)
			if _, err := io.ReadFull(kdf, key); err != nil {
				return nil, errors.Wrap(err, "derive pair key")
			}
			result.keys[pair.Index()] = key
		}
	}
	return result, nil
}

// Fill implements local.Source.
func (c *ChaCha20) Fill(pair local.Pair, seed uint64, out []uint64) {
	block := seed / wordsPerBlock
	if block > 0xffffffff {
		panic(fmt.Sprintf("prg: seed %d exceeds keystream", seed))
	}
	nonce := make([]byte, chacha20.NonceSize)
	cipher, err := chacha20.NewUnauthenticatedCipher(c.keys[pair.Index()],
		nonce)
	if err != nil {
		panic(err)
	}
	cipher.SetCounter(uint32(block))

	skip := int(seed%wordsPerBlock) * 8
	buf := make([]byte, skip+len(out)*8)
	cipher.XORKeyStream(buf, buf)

	buf = buf[skip:]
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(buf[i*8:])
	}
}
