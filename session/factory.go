package session

import (
	"context"
	"time"

	"github.com/example/fixconnector/config"
	"github.com/example/fixconnector/metrics"
	"github.com/example/fixconnector/signing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// targetCompID is the venue's FIX TargetCompID for every session role.
const targetCompID = "SPOT"

// FactoryOptions carries the callable inputs common to both factories:
// credentials, endpoint, and the ambient collaborators (logger, metrics
// registry) a caller wants the session wired with.
type FactoryOptions struct {
	APIKey      string
	PrivateKey  *signing.Signer
	Endpoint    string
	RestartEnabled bool

	// Config supplies ambient defaults (heartbeat interval, timeouts, buffer
	// size); nil falls back to config.Default(). DialTimeout/RestartDelay
	// below, when set, take precedence over Config for just those two
	// fields, preserving existing caller overrides.
	Config *config.Config

	DialTimeout  time.Duration
	RestartDelay time.Duration

	Logger       logrus.FieldLogger
	PromRegistry *prometheus.Registry
}

func (o FactoryOptions) buildParams(role Role, senderCompID string) Params {
	var reg *metrics.Registry
	if o.PromRegistry != nil {
		reg = metrics.New(o.PromRegistry, senderCompID)
	}
	return Params{
		Role:            role,
		SenderCompID:    senderCompID,
		TargetCompID:    targetCompID,
		APIKey:          o.APIKey,
		Signer:          o.PrivateKey,
		Endpoint:        o.Endpoint,
		MessageHandling: 2,
		RestartEnabled:  o.RestartEnabled,
		Config:          o.Config,
		DialTimeout:     o.DialTimeout,
		RestartDelay:    o.RestartDelay,
		Logger:          o.Logger,
		Metrics:         reg,
	}
}

// NewOrderEntrySession builds, validates, and connects an ORDER_ENTRY
// session: SenderCompID "BOETRADE", ResponseMode=1, DropCopyFlag="N".
func NewOrderEntrySession(ctx context.Context, opts FactoryOptions) (*Session, error) {
	params := opts.buildParams(RoleOrderEntry, "BOETRADE")
	params.ResponseMode = 1
	params.DropCopyFlag = "N"

	s, err := New(params)
	if err != nil {
		return nil, err
	}
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMarketDataSession builds, validates, and connects a MARKET_DATA
// session: SenderCompID "BMDWATCH". recvWindow, if non-nil, is carried as
// the Logon's RecvWindow (25000) in milliseconds.
func NewMarketDataSession(ctx context.Context, opts FactoryOptions, recvWindow *int) (*Session, error) {
	params := opts.buildParams(RoleMarketData, "BMDWATCH")
	params.RecvWindowMillis = recvWindow

	s, err := New(params)
	if err != nil {
		return nil, err
	}
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
