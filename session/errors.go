package session

import "errors"

var (
	// ErrNotConnected is returned by SendMessage/Logout when the session is
	// not in the LOGGED_ON state.
	ErrNotConnected = errors.New("session: not connected")

	// ErrLogonRejected is returned by Connect when the server replies to a
	// Logon with a Reject or a Logout instead of a Logon.
	ErrLogonRejected = errors.New("session: logon rejected")

	// ErrAlreadyConnected is returned by Connect if called more than once
	// on the same Session.
	ErrAlreadyConnected = errors.New("session: already connected")
)
