package wire

// FIX tag numbers used throughout the connector. Only tags the core wire
// codec, signing, and session layers need to read or write directly are
// named here; business-level tag meanings belong to callers.
const (
	TagBeginString            = 8
	TagBodyLength              = 9
	TagCheckSum                = 10
	TagClOrdID                 = 11
	TagCumQty                  = 14
	TagCurrency                = 15
	TagLastQty                 = 32
	TagMsgSeqNum                = 34
	TagMsgType                  = 35
	TagOrderID                  = 37
	TagOrderQty                 = 38
	TagOrdStatus                = 39
	TagOrdType                  = 40
	TagPrice                    = 44
	TagSenderCompID             = 49
	TagSendingTime              = 52
	TagSide                     = 54
	TagSymbol                   = 55
	TagTargetCompID             = 56
	TagText                     = 58
	TagTimeInForce              = 59
	TagTransactTime             = 60
	TagRawDataLength            = 95
	TagRawData                  = 96
	TagEncryptMethod            = 98
	TagHeartBtInt               = 108
	TagTestReqID                = 112
	TagResetSeqNumFlag          = 141
	TagNoSymbols                = 146
	TagHeadline                 = 148
	TagExecType                 = 150
	TagLeavesQty                = 151
	TagMDReqID                  = 262
	TagSubscriptionRequestType  = 263
	TagMarketDepth              = 264
	TagAggregatedBook           = 266
	TagNoMDEntryTypes           = 267
	TagNoMDEntries              = 268
	TagMDEntryType              = 269
	TagMDEntryPx                = 270
	TagMDEntrySize              = 271
	TagMDUpdateAction           = 279
	TagInstrumentReqID          = 320
	TagListStatusType           = 429
	TagListOrderStatus          = 431
	TagUsername                 = 553
	TagInstrumentListRequestType = 559
	TagContingencyType          = 1385
	TagLimitType                = 6136
	TagRecvWindow               = 25000
	TagSelfTradePreventionMode  = 25001
	TagLimitRowType             = 25004
	TagLimitRowCount            = 25005
	TagLimitRowMax              = 25006
	TagLimitRowInterval         = 25007
	TagLimitRowIntervalRes      = 25008
	TagClListID                 = 25014
	TagErrorCode                = 25016
	TagCumQuoteQty               = 25017
	TagMessageHandling           = 25035
	TagResponseMode              = 25036
	TagFirstBookID               = 25043
	TagLastBookID                = 25044
	TagDropCopyFlag               = 9406
)

// FIX MsgType (tag 35) values the session engine classifies internally.
const (
	MsgTypeHeartbeat     = "0"
	MsgTypeTestRequest   = "1"
	MsgTypeResendRequest = "2"
	MsgTypeReject        = "3"
	MsgTypeLogout        = "5"
	MsgTypeLogon         = "A"
	MsgTypeNews          = "B"
)

// BeginString is the literal protocol version this connector speaks.
const BeginString = "FIX.4.4"
