// Package signing wraps an Ed25519 private key and produces the base64
// signature a FIX Logon's RawData (96) field carries.
package signing

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
)

// soh is the FIX field delimiter (the same octet as wire.SOH) the canonical
// signature payload is joined with; it is defined here so that signing
// does not import wire.
const soh = "\x01"

// ErrInvalidKey indicates the supplied PEM block could not be parsed, or
// parsed to a key that is not Ed25519.
var ErrInvalidKey = errors.New("signing: invalid or non-Ed25519 private key")

// Signer produces logon signatures for one Ed25519 key.
type Signer struct {
	key ed25519.PrivateKey
}

// NewSignerFromPEM parses a PEM-encoded PKCS8 Ed25519 private key.
func NewSignerFromPEM(pemBytes []byte) (*Signer, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrInvalidKey
	}

	raw, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	key, ok := raw.(ed25519.PrivateKey)
	if !ok {
		return nil, ErrInvalidKey
	}

	return &Signer{key: key}, nil
}

// NewSigner wraps an already-parsed Ed25519 private key directly, useful
// for tests and callers that manage key material themselves.
func NewSigner(key ed25519.PrivateKey) (*Signer, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKey
	}
	return &Signer{key: key}, nil
}

// LogonPayload is the canonical set of logon field values the signature is
// computed over, in the required order: MsgType, SenderCompID,
// TargetCompID, MsgSeqNum, SendingTime.
type LogonPayload struct {
	MsgType      string
	SenderCompID string
	TargetCompID string
	MsgSeqNum    string
	SendingTime  string
}

// canonical joins the payload fields with SOH in the fixed signature order.
func (p LogonPayload) canonical() []byte {
	return []byte(p.MsgType + soh + p.SenderCompID + soh + p.TargetCompID + soh + p.MsgSeqNum + soh + p.SendingTime)
}

// Sign returns the standard base64 (no line wrapping) encoding of the raw
// 64-byte Ed25519 signature over the canonical logon payload.
func (s *Signer) Sign(p LogonPayload) string {
	sig := ed25519.Sign(s.key, p.canonical())
	return base64.StdEncoding.EncodeToString(sig)
}

// PublicKey returns the public half of the wrapped key, for callers that
// need to verify a signature independently (as tests do).
func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

// Verify checks a base64-encoded signature against the canonical payload
// under pub. Exposed primarily for tests asserting the testable property
// that every produced signature verifies.
func Verify(pub ed25519.PublicKey, p LogonPayload, base64Sig string) (bool, error) {
	sig, err := base64.StdEncoding.DecodeString(base64Sig)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(pub, p.canonical(), sig), nil
}
