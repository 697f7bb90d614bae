package wire

import "errors"

var (
	// ErrNeedMore indicates the buffer does not yet contain a complete
	// frame; the caller should read more bytes and retry Decode.
	ErrNeedMore = errors.New("wire: need more bytes")

	// ErrChecksumMismatch indicates a frame's CheckSum (tag 10) did not
	// match the computed modulo-256 sum of the preceding bytes.
	ErrChecksumMismatch = errors.New("wire: checksum mismatch")

	// ErrMalformedMessage indicates a frame could not be parsed into
	// well-formed tag=value pairs, or a message was missing required
	// header fields at Encode time.
	ErrMalformedMessage = errors.New("wire: malformed message")
)
