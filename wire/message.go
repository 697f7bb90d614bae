// Package wire implements the FIX 4.4 tag=value wire grammar: framing,
// BodyLength/CheckSum arithmetic, and an ordered, repeat-tag-aware message
// type. It does not know about session state, sequence numbers, or any
// particular message type's business meaning.
package wire

import (
	"bytes"
	"strconv"
)

// SOH is the FIX field delimiter, octet 0x01.
const SOH = 0x01

// field is a single tag/value pair as it appears on the wire, in order.
type field struct {
	tag   int
	value []byte
}

// Message is an ordered sequence of (tag, value) pairs. Tags may repeat;
// order of insertion is preserved and is significant for BodyLength and
// CheckSum computation.
type Message struct {
	fields []field
	index  map[int][]int // tag -> positions in fields, insertion order
}

// NewMessage returns an empty message with BeginString, a placeholder
// BodyLength, and MsgType populated, ready for callers to AppendPair
// additional fields before Encode.
func NewMessage(msgType string) *Message {
	m := &Message{index: make(map[int][]int)}
	m.AppendPair(TagBeginString, BeginString)
	m.AppendPair(TagBodyLength, "0")
	m.AppendPair(TagMsgType, msgType)
	return m
}

// newEmptyMessage returns a message with no fields at all, used by Decode
// which reconstructs the header fields from the wire bytes it parses.
func newEmptyMessage() *Message {
	return &Message{index: make(map[int][]int)}
}

// AppendPair appends a tag/value pair unconditionally. Repeated tags retain
// insertion order.
func (m *Message) AppendPair(tag int, value string) {
	m.appendBytes(tag, []byte(value))
}

// AppendInt is a convenience for numeric fields, rendered as a decimal
// string with no leading zeros.
func (m *Message) AppendInt(tag int, value int) {
	m.AppendPair(tag, strconv.Itoa(value))
}

func (m *Message) appendBytes(tag int, value []byte) {
	pos := len(m.fields)
	m.fields = append(m.fields, field{tag: tag, value: value})
	m.index[tag] = append(m.index[tag], pos)
}

// Get returns the value of the Nth occurrence of tag (1-based). occurrence
// <= 0 is treated as 1. Returns (nil, false) if absent.
func (m *Message) Get(tag int, occurrence int) ([]byte, bool) {
	if occurrence <= 0 {
		occurrence = 1
	}
	positions, ok := m.index[tag]
	if !ok || occurrence > len(positions) {
		return nil, false
	}
	return m.fields[positions[occurrence-1]].value, true
}

// GetString is Get with the value decoded as a string, default occurrence 1.
func (m *Message) GetString(tag int) (string, bool) {
	v, ok := m.Get(tag, 1)
	if !ok {
		return "", false
	}
	return string(v), true
}

// MsgType returns the value of tag 35, the distinguished message type.
func (m *Message) MsgType() string {
	v, _ := m.GetString(TagMsgType)
	return v
}

// Count returns how many occurrences of tag are present.
func (m *Message) Count(tag int) int {
	return len(m.index[tag])
}

// Encode serializes the message to wire bytes, computing BodyLength and
// CheckSum over the final byte stream. The message must already carry
// BeginString, BodyLength (any placeholder), and MsgType as its first three
// fields, in that order. A CheckSum field already present (as on a decoded
// message) is left out and recomputed; Encode appends CheckSum itself.
func (m *Message) Encode() ([]byte, error) {
	if len(m.fields) < 3 {
		return nil, ErrMalformedMessage
	}
	if m.fields[0].tag != TagBeginString || m.fields[1].tag != TagBodyLength || m.fields[2].tag != TagMsgType {
		return nil, ErrMalformedMessage
	}

	var body bytes.Buffer
	for _, f := range m.fields[2:] {
		if f.tag == TagCheckSum {
			continue
		}
		writeField(&body, f.tag, f.value)
	}
	bodyLen := body.Len()

	var out bytes.Buffer
	writeField(&out, TagBeginString, m.fields[0].value)
	writeField(&out, TagBodyLength, []byte(strconv.Itoa(bodyLen)))
	out.Write(body.Bytes())

	checksum := sum256(out.Bytes())
	writeField(&out, TagCheckSum, []byte(checksumString(checksum)))

	return out.Bytes(), nil
}

func writeField(buf *bytes.Buffer, tag int, value []byte) {
	buf.WriteString(strconv.Itoa(tag))
	buf.WriteByte('=')
	buf.Write(value)
	buf.WriteByte(SOH)
}

func sum256(b []byte) int {
	sum := 0
	for _, c := range b {
		sum += int(c)
	}
	return sum % 256
}

func checksumString(v int) string {
	s := strconv.Itoa(v)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}
