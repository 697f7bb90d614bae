package session

import (
	"context"
	"crypto/ed25519"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/fixconnector/signing"
	"github.com/example/fixconnector/wire"
)

func testSigner(t *testing.T) *signing.Signer {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	s, err := signing.NewSigner(priv)
	require.NoError(t, err)
	return s
}

func baseParams(t *testing.T, conn *fakeConn) Params {
	return Params{
		Role:              RoleMarketData,
		SenderCompID:      "BMDWATCH",
		TargetCompID:      "SPOT",
		APIKey:            "API_KEY",
		Signer:            testSigner(t),
		Endpoint:          "tcp+tls://venue.example:9000",
		HeartBtIntSeconds: 30,
		MessageHandling:   2,
		DialTimeout:       time.Second,
		dial:              fakeDial(conn),
	}
}

func encodeReply(t *testing.T, msg *wire.Message) []byte {
	t.Helper()
	b, err := msg.Encode()
	require.NoError(t, err)
	return b
}

func TestConnectSuccessfulLogonTransitionsToLoggedOn(t *testing.T) {
	conn := newFakeConn()
	params := baseParams(t, conn)

	reply := wire.NewMessage(wire.MsgTypeLogon)
	reply.AppendPair(wire.TagSenderCompID, "SPOT")
	reply.AppendPair(wire.TagTargetCompID, "BMDWATCH")
	reply.AppendInt(wire.TagMsgSeqNum, 1)
	reply.AppendPair(wire.TagSendingTime, "20250301-01:00:00.000000")
	conn.push(encodeReply(t, reply))

	s, err := New(params)
	require.NoError(t, err)

	require.NoError(t, s.Connect(context.Background()))
	assert.Equal(t, StateLoggedOn, s.State())

	sent := conn.sentFrames()
	require.Len(t, sent, 1)
	logon, _, err := wire.Decode(sent[0])
	require.NoError(t, err)
	assert.Equal(t, wire.MsgTypeLogon, logon.MsgType())

	rawData, ok := logon.GetString(wire.TagRawData)
	require.True(t, ok)
	rawLen, ok := logon.GetString(wire.TagRawDataLength)
	require.True(t, ok)
	assert.Equal(t, rawLen, strconv.Itoa(len(rawData)))

	seqNum, ok := logon.GetString(wire.TagMsgSeqNum)
	require.True(t, ok)
	assert.Equal(t, "1", seqNum)
}

func TestConnectRejectedLogonReturnsErrLogonRejected(t *testing.T) {
	conn := newFakeConn()
	params := baseParams(t, conn)

	reject := wire.NewMessage(wire.MsgTypeReject)
	reject.AppendPair(wire.TagText, "unsupported MessageHandling")
	conn.push(encodeReply(t, reject))

	s, err := New(params)
	require.NoError(t, err)

	err = s.Connect(context.Background())
	assert.ErrorIs(t, err, ErrLogonRejected)
	assert.Equal(t, StateClosed, s.State())
}

func TestConnectOrderEntryIncludesResponseModeAndDropCopyFlag(t *testing.T) {
	conn := newFakeConn()
	params := baseParams(t, conn)
	params.Role = RoleOrderEntry
	params.SenderCompID = "BOETRADE"
	params.ResponseMode = 1
	params.DropCopyFlag = "N"

	reply := wire.NewMessage(wire.MsgTypeLogon)
	reply.AppendPair(wire.TagSenderCompID, "SPOT")
	reply.AppendPair(wire.TagTargetCompID, "BOETRADE")
	reply.AppendInt(wire.TagMsgSeqNum, 1)
	reply.AppendPair(wire.TagSendingTime, "20250301-01:00:00.000000")
	conn.push(encodeReply(t, reply))

	s, err := New(params)
	require.NoError(t, err)
	require.NoError(t, s.Connect(context.Background()))

	sent := conn.sentFrames()
	logon, _, err := wire.Decode(sent[0])
	require.NoError(t, err)

	respMode, ok := logon.GetString(wire.TagResponseMode)
	require.True(t, ok)
	assert.Equal(t, "1", respMode)
	dropCopy, ok := logon.GetString(wire.TagDropCopyFlag)
	require.True(t, ok)
	assert.Equal(t, "N", dropCopy)
}

func TestConnectMarketDataWithRecvWindowIncludesTag(t *testing.T) {
	conn := newFakeConn()
	params := baseParams(t, conn)
	recvWindow := 100
	params.RecvWindowMillis = &recvWindow

	reply := wire.NewMessage(wire.MsgTypeLogon)
	reply.AppendPair(wire.TagSenderCompID, "SPOT")
	reply.AppendPair(wire.TagTargetCompID, "BMDWATCH")
	reply.AppendInt(wire.TagMsgSeqNum, 1)
	reply.AppendPair(wire.TagSendingTime, "20250301-01:00:00.000000")
	conn.push(encodeReply(t, reply))

	s, err := New(params)
	require.NoError(t, err)
	require.NoError(t, s.Connect(context.Background()))

	sent := conn.sentFrames()
	logon, _, err := wire.Decode(sent[0])
	require.NoError(t, err)
	window, ok := logon.GetString(wire.TagRecvWindow)
	require.True(t, ok)
	assert.Equal(t, "100", window)
}
