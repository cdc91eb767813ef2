// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

// Authentication is an AMQP SASL authentication mechanism, contributed by
// the client during connection.start-ok.
type Authentication interface {
	Mechanism() string
	Response() string
}

// PlainAuth is the AMQP PLAIN SASL mechanism, the default credential
// exchange used against RabbitMQ.
type PlainAuth struct {
	Username string
	Password string
}

// Mechanism returns "PLAIN".
func (auth *PlainAuth) Mechanism() string {
	return "PLAIN"
}

// Response returns the PLAIN SASL response: a NUL-separated
// identity/username/password triple with an empty authorization identity.
func (auth *PlainAuth) Response() string {
	return "\x00" + auth.Username + "\x00" + auth.Password
}

// AMQPlainAuth is the AMQPLAIN SASL mechanism, a RabbitMQ extension that
// encodes the credentials as a field table instead of a NUL-separated
// string.
type AMQPlainAuth struct {
	Username string
	Password string
}

// Mechanism returns "AMQPLAIN".
func (auth *AMQPlainAuth) Mechanism() string {
	return "AMQPLAIN"
}

// Response encodes LOGIN/PASSWORD as a field table per the AMQPLAIN scheme.
func (auth *AMQPlainAuth) Response() string {
	// LOGIN/PASSWORD are always strings, a supported field type, so this
	// can never fail.
	buf, _ := encodeTable(Table{
		"LOGIN":    auth.Username,
		"PASSWORD": auth.Password,
	})
	return string(buf)
}

// pickSASLMechanism returns the first client mechanism the server also
// advertised, preserving the client's preference order.
func pickSASLMechanism(client []Authentication, serverMechanisms []string) (auth Authentication, ok bool) {
	for _, auth := range client {
		for _, mech := range serverMechanisms {
			if auth.Mechanism() == mech {
				return auth, true
			}
		}
	}
	return nil, false
}
