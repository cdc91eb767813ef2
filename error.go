// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error captures the code and reason carried by a connection.close or
// channel.close method, whichever side originated it. Recover reports
// whether the condition is one a client could plausibly retry after
// (anything below 500 in the AMQP reply-code space).
type Error struct {
	Code    int
	Reason  string
	Server  bool
	Recover bool
}

func newError(code uint16, text string) *Error {
	return &Error{
		Code:    int(code),
		Reason:  text,
		Server:  true,
		Recover: int(code) < 500,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("Exception (%d) Reason: %q", e.Code, e.Reason)
}

// Sentinel errors raised locally by the library, without waiting for a
// reply from the broker. ErrUnexpectedFrame and ErrUnknownChannel also
// supply the reply code and text of the connection.close that closeWith
// sends before tearing the connection down.
var (
	ErrClosed      = &Error{Code: ChannelError, Reason: "channel/connection is not open"}
	ErrChannelMax  = &Error{Code: NotAllowed, Reason: "channel id space exhausted"}
	ErrSASL        = &Error{Code: AccessRefused, Reason: "SASL could not negotiate a shared mechanism"}
	ErrCredentials = &Error{Code: AccessRefused, Reason: "username or password not allowed"}
	ErrVhost       = &Error{Code: NotAllowed, Reason: "no access to this vhost"}
	ErrSyntax      = &Error{Code: SyntaxError, Reason: "invalid field or value inside of a frame"}
	ErrFrame       = &Error{Code: FrameError, Reason: "frame could not be parsed"}
	ErrCommandInvalid = &Error{Code: CommandInvalid, Reason: "unexpected command received"}
	ErrUnexpectedFrame = &Error{Code: UnexpectedFrame, Reason: "frame received out of expected order"}
	ErrFieldType   = &Error{Code: SyntaxError, Reason: "unsupported table field type"}
	ErrUnknownChannel = &Error{Code: ResourceError, Reason: "frame received for unknown channel"}
)

// ErrTimeout is returned by DrainEvents and Channel.PublishConfirm when
// their timeout elapses first. The waiter gives up in a select on a timer
// rather than mid-read, so the connection and channel remain usable.
// Channel RPCs and Channel.Get take no timeout: they wait until a reply or
// a close arrives.
var ErrTimeout = errors.New("amqp: timeout waiting for reply")

// wrapf annotates err with a message using github.com/pkg/errors, preserving
// the original cause for errors.Cause / errors.Unwrap-style inspection.
func wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}
