package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildLogonLikeMessage() *Message {
	m := NewMessage(MsgTypeLogon)
	m.AppendPair(TagSenderCompID, "BMDWATCH")
	m.AppendPair(TagTargetCompID, "SPOT")
	m.AppendInt(TagMsgSeqNum, 1)
	m.AppendPair(TagSendingTime, "20250301-01:00:00.000000")
	m.AppendInt(TagEncryptMethod, 0)
	m.AppendInt(TagHeartBtInt, 30)
	return m
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := buildLogonLikeMessage()

	encoded, err := m.Encode()
	require.NoError(t, err)

	decoded, consumed, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), consumed)

	assert.Equal(t, "A", decoded.MsgType())
	senderCompID, ok := decoded.GetString(TagSenderCompID)
	require.True(t, ok)
	assert.Equal(t, "BMDWATCH", senderCompID)

	reEncoded, err := decoded.Encode()
	require.NoError(t, err)
	assert.Equal(t, encoded, reEncoded)
}

func TestEncodeChecksumAndBodyLength(t *testing.T) {
	m := NewMessage("0")
	m.AppendPair(TagTestReqID, "ABC")

	encoded, err := m.Encode()
	require.NoError(t, err)

	decoded, _, err := Decode(encoded)
	require.NoError(t, err)

	bodyLenField, ok := decoded.GetString(TagBodyLength)
	require.True(t, ok)
	assert.NotEqual(t, "0", bodyLenField)

	_, ok = decoded.GetString(TagCheckSum)
	require.True(t, ok)
}

func TestDecodeNeedsMoreOnPartialBuffer(t *testing.T) {
	m := buildLogonLikeMessage()
	encoded, err := m.Encode()
	require.NoError(t, err)

	_, _, err = Decode(encoded[:len(encoded)-1])
	assert.ErrorIs(t, err, ErrNeedMore)
}

func TestDecodeMultipleConcatenatedFrames(t *testing.T) {
	first, err := NewMessage("0").Encode()
	require.NoError(t, err)
	second, err := buildLogonLikeMessage().Encode()
	require.NoError(t, err)

	buf := append(append([]byte{}, first...), second...)

	msg1, n1, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, "0", msg1.MsgType())

	msg2, n2, err := Decode(buf[n1:])
	require.NoError(t, err)
	assert.Equal(t, "A", msg2.MsgType())
	assert.Equal(t, len(buf), n1+n2)
}

func TestDecodeChecksumMismatch(t *testing.T) {
	m := buildLogonLikeMessage()
	encoded, err := m.Encode()
	require.NoError(t, err)

	tampered := append([]byte{}, encoded...)
	trailerStart := len(tampered) - checksumFieldLen
	tampered[trailerStart+3] = '9' // corrupt a checksum digit

	_, _, err = Decode(tampered)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestGetRepeatedTagOccurrence(t *testing.T) {
	m := NewMessage("XLR")
	m.AppendInt(TagLimitRowType, 1)
	m.AppendInt(TagLimitRowType, 2)
	m.AppendInt(TagLimitRowType, 3)

	assert.Equal(t, 3, m.Count(TagLimitRowType))

	v1, ok := m.Get(TagLimitRowType, 1)
	require.True(t, ok)
	assert.Equal(t, "1", string(v1))

	v3, ok := m.Get(TagLimitRowType, 3)
	require.True(t, ok)
	assert.Equal(t, "3", string(v3))

	_, ok = m.Get(TagLimitRowType, 4)
	assert.False(t, ok)
}

func TestDecodeRejectsNonFixPrefix(t *testing.T) {
	_, _, err := Decode([]byte("not a fix message"))
	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestLogonSignAndSendExample(t *testing.T) {
	// Builds a Logon in the field order the session signs and sends, with
	// an 88-character RawData (the length of a base64 Ed25519 signature),
	// and checks that it encodes and decodes back as one complete frame.
	m := NewMessage(MsgTypeLogon)
	m.AppendPair(TagSenderCompID, "BMDWATCH")
	m.AppendPair(TagTargetCompID, "SPOT")
	m.AppendInt(TagMsgSeqNum, 1)
	m.AppendPair(TagSendingTime, "20250301-01:00:00.000000")
	m.AppendInt(TagRecvWindow, 100)
	m.AppendInt(TagEncryptMethod, 0)
	m.AppendInt(TagHeartBtInt, 30)
	m.AppendPair(TagRawDataLength, "88")
	m.AppendPair(TagRawData, "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbee=")
	m.AppendPair(TagResetSeqNumFlag, "Y")
	m.AppendPair(TagUsername, "API_KEY")
	m.AppendInt(TagMessageHandling, 2)

	encoded, err := m.Encode()
	require.NoError(t, err)

	decoded, consumed, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), consumed)
	assert.Equal(t, "A", decoded.MsgType())
}
