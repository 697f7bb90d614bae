package wire

import (
	"bytes"
	"strconv"
)

// headerPrefix is the fixed literal every FIX 4.4 message from this venue
// begins with: BeginString followed immediately by the start of BodyLength.
var headerPrefix = []byte("8=" + BeginString + string(rune(SOH)) + "9=")

// checksumFieldLen is the length of "10=NNN\x01", the fixed-width trailer.
const checksumFieldLen = 7

// Decode parses the first complete FIX message out of buf and returns it
// along with the number of bytes consumed. If buf does not yet contain a
// complete frame, it returns ErrNeedMore and the caller should read more
// bytes and retry with the same (or a grown) buffer. A stream may contain
// several concatenated messages per read; callers loop Decode until
// ErrNeedMore.
func Decode(buf []byte) (*Message, int, error) {
	if !bytes.HasPrefix(buf, headerPrefix) {
		if len(buf) < len(headerPrefix) && bytes.HasPrefix(headerPrefix, buf) {
			return nil, 0, ErrNeedMore
		}
		return nil, 0, ErrMalformedMessage
	}

	lenStart := len(headerPrefix)
	sohAt := bytes.IndexByte(buf[lenStart:], SOH)
	if sohAt < 0 {
		return nil, 0, ErrNeedMore
	}
	bodyLenBytes := buf[lenStart : lenStart+sohAt]
	bodyLen, err := strconv.Atoi(string(bodyLenBytes))
	if err != nil || bodyLen < 0 {
		return nil, 0, ErrMalformedMessage
	}

	headerLen := lenStart + sohAt + 1
	total := headerLen + bodyLen + checksumFieldLen
	if len(buf) < total {
		return nil, 0, ErrNeedMore
	}

	checksumStart := headerLen + bodyLen
	trailer := buf[checksumStart:total]
	if !bytes.HasPrefix(trailer, []byte("10=")) || trailer[len(trailer)-1] != SOH {
		return nil, 0, ErrMalformedMessage
	}
	wantChecksum, err := strconv.Atoi(string(trailer[3 : len(trailer)-1]))
	if err != nil {
		return nil, 0, ErrMalformedMessage
	}

	gotChecksum := sum256(buf[:checksumStart])
	if gotChecksum != wantChecksum {
		// The frame's length is known even though its contents are
		// suspect; callers can skip exactly `total` bytes to resync.
		return nil, total, ErrChecksumMismatch
	}

	msg, err := parseFields(buf[:total])
	if err != nil {
		return nil, total, err
	}
	return msg, total, nil
}

// parseFields splits a complete, checksum-verified frame into its ordered
// tag/value pairs.
func parseFields(frame []byte) (*Message, error) {
	msg := newEmptyMessage()
	start := 0
	for start < len(frame) {
		eq := bytes.IndexByte(frame[start:], '=')
		if eq < 0 {
			return nil, ErrMalformedMessage
		}
		eq += start
		tag, err := strconv.Atoi(string(frame[start:eq]))
		if err != nil {
			return nil, ErrMalformedMessage
		}
		soh := bytes.IndexByte(frame[eq+1:], SOH)
		if soh < 0 {
			return nil, ErrMalformedMessage
		}
		soh += eq + 1
		value := make([]byte, soh-(eq+1))
		copy(value, frame[eq+1:soh])
		msg.appendBytes(tag, value)
		start = soh + 1
	}
	if len(msg.fields) == 0 {
		return nil, ErrMalformedMessage
	}
	return msg, nil
}
