// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // SIG2 headers default to SHA-1.
	"crypto/sha256"
	"crypto/x509"
	"encoding/binary"
	"fmt"
	"hash"
	"math/big"
)

// Hash method tags stored in SIG2 headers.
const (
	// HashMethodSHA1 selects SHA-1 block digests and signatures.
	HashMethodSHA1 int32 = 4
	// HashMethodSHA256 selects SHA-256 block digests and signatures.
	HashMethodSHA256 int32 = 6
)

// signerSaltSize is the fixed PSS salt length used by editor signatures.
const signerSaltSize = 11

// signerTrailer is the PSS trailer byte of editor signatures.
const signerTrailer = 0xBC

// Signer produces deterministic RSA-PSS signatures with an 11-byte zero salt
// and trailer byte 0xBC, as expected by SIG2 stream consumers. It holds no
// OS handles and is destroyed with its owning stream.
type Signer struct {
	key      *rsa.PrivateKey
	hashTag  int32
	saltSize int
}

// NewSigner parses a DER-encoded PKCS#1 RSAPrivateKey and prepares a signer
// for the given hash method tag.
func NewSigner(der []byte, hashTag int32) (*Signer, error) {
	if hashTag != HashMethodSHA1 && hashTag != HashMethodSHA256 {
		return nil, fmt.Errorf("%w: tag %d", ErrUnsupportedHashMethod, hashTag)
	}

	key, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return &Signer{key: key, hashTag: hashTag, saltSize: signerSaltSize}, nil
}

// SignatureSize returns the signature length in bytes (the modulus size).
func (s *Signer) SignatureSize() int {
	return (s.key.N.BitLen() + 7) / 8
}

// HashTag returns the SIG2 hash method tag this signer was created with.
func (s *Signer) HashTag() int32 {
	return s.hashTag
}

// newHash returns a fresh digest for the configured hash method.
func (s *Signer) newHash() hash.Hash {
	if s.hashTag == HashMethodSHA256 {
		return sha256.New()
	}

	return sha1.New() //nolint:gosec // SIG2 headers default to SHA-1.
}

// Sign produces the deterministic PSS signature over data.
func (s *Signer) Sign(data []byte) ([]byte, error) {
	h := s.newHash()
	_, _ = h.Write(data)
	mHash := h.Sum(nil)

	em, err := s.encodePSS(mHash)
	if err != nil {
		return nil, err
	}

	m := new(big.Int).SetBytes(em)
	sig := new(big.Int).Exp(m, s.key.D, s.key.N)

	out := make([]byte, s.SignatureSize())
	sig.FillBytes(out)
	return out, nil
}

// Verify checks a signature produced by Sign over data.
func (s *Signer) Verify(data []byte, sig []byte) error {
	if len(sig) != s.SignatureSize() {
		return fmt.Errorf("signature length %d, want %d", len(sig), s.SignatureSize())
	}

	h := s.newHash()
	_, _ = h.Write(data)
	mHash := h.Sum(nil)

	em, err := s.encodePSS(mHash)
	if err != nil {
		return err
	}

	m := new(big.Int).SetBytes(sig)
	if m.Cmp(s.key.N) >= 0 {
		return fmt.Errorf("signature out of range")
	}

	recovered := new(big.Int).Exp(m, big.NewInt(int64(s.key.E)), s.key.N)
	got := make([]byte, len(em))
	recovered.FillBytes(got)

	// The salt is fixed, so a valid signature recovers the exact encoding.
	for i := range em {
		if em[i] != got[i] {
			return fmt.Errorf("signature mismatch")
		}
	}

	return nil
}

// encodePSS runs EMSA-PSS encoding (RFC 8017 §9.1.1) with the fixed salt.
func (s *Signer) encodePSS(mHash []byte) ([]byte, error) {
	emBits := s.key.N.BitLen() - 1
	emLen := (emBits + 7) / 8
	hLen := len(mHash)

	if emLen < hLen+s.saltSize+2 {
		return nil, fmt.Errorf("%w: modulus too small for PSS encoding", ErrInvalidKey)
	}

	salt := make([]byte, s.saltSize)

	h := s.newHash()
	var prefix [8]byte
	_, _ = h.Write(prefix[:])
	_, _ = h.Write(mHash)
	_, _ = h.Write(salt)
	digest := h.Sum(nil)

	dbLen := emLen - hLen - 1
	db := make([]byte, dbLen)
	db[dbLen-s.saltSize-1] = 0x01
	copy(db[dbLen-s.saltSize:], salt)

	mask := mgf1(s.newHash, digest, dbLen)
	for i := range db {
		db[i] ^= mask[i]
	}

	db[0] &= 0xFF >> (8*emLen - emBits)

	em := make([]byte, 0, emLen)
	em = append(em, db...)
	em = append(em, digest...)
	em = append(em, signerTrailer)
	return em, nil
}

// mgf1 generates maskLen bytes with the MGF1 mask generation function.
func mgf1(newHash func() hash.Hash, seed []byte, maskLen int) []byte {
	out := make([]byte, 0, maskLen)
	var counter [4]byte

	for i := uint32(0); len(out) < maskLen; i++ {
		binary.BigEndian.PutUint32(counter[:], i)
		h := newHash()
		_, _ = h.Write(seed)
		_, _ = h.Write(counter[:])
		out = append(out, h.Sum(nil)...)
	}

	return out[:maskLen]
}

// randomUint32 draws a uniform 32-bit value from the system CSPRNG.
func randomUint32() uint32 {
	var buf [4]byte
	_, _ = rand.Read(buf[:])
	return binary.LittleEndian.Uint32(buf[:])
}
