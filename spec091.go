// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file is the method registry: one struct per (class-id, method-id)
// pair defined by the AMQP 0.9.1 XML spec plus the RabbitMQ extensions
// named in the protocol overview (confirm.*, basic.nack,
// exchange.bind/unbind). It is hand-written rather than generated, but its
// shape -- a closed tagged union of argument structs satisfying a common
// `message` interface -- is exactly what a generator driven by the spec XML
// would produce. Nothing in this package checks it against the XML.

package amqp

import (
	"fmt"
	"io"
)

func newMethod(class, method uint16) (message, error) {
	switch class {
	case classConnection:
		switch method {
		case 10:
			return &connectionStart{}, nil
		case 11:
			return &connectionStartOk{}, nil
		case 20:
			return &connectionSecure{}, nil
		case 21:
			return &connectionSecureOk{}, nil
		case 30:
			return &connectionTune{}, nil
		case 31:
			return &connectionTuneOk{}, nil
		case 40:
			return &connectionOpen{}, nil
		case 41:
			return &connectionOpenOk{}, nil
		case 50:
			return &connectionClose{}, nil
		case 51:
			return &connectionCloseOk{}, nil
		case 60:
			return &connectionBlocked{}, nil
		case 61:
			return &connectionUnblocked{}, nil
		}
	case classChannel:
		switch method {
		case 10:
			return &channelOpen{}, nil
		case 11:
			return &channelOpenOk{}, nil
		case 20:
			return &channelFlow{}, nil
		case 21:
			return &channelFlowOk{}, nil
		case 40:
			return &channelClose{}, nil
		case 41:
			return &channelCloseOk{}, nil
		}
	case classExchange:
		switch method {
		case 10:
			return &exchangeDeclare{}, nil
		case 11:
			return &exchangeDeclareOk{}, nil
		case 20:
			return &exchangeDelete{}, nil
		case 21:
			return &exchangeDeleteOk{}, nil
		case 30:
			return &exchangeBind{}, nil
		case 31:
			return &exchangeBindOk{}, nil
		case 40:
			return &exchangeUnbind{}, nil
		case 51:
			return &exchangeUnbindOk{}, nil
		}
	case classQueue:
		switch method {
		case 10:
			return &queueDeclare{}, nil
		case 11:
			return &queueDeclareOk{}, nil
		case 20:
			return &queueBind{}, nil
		case 21:
			return &queueBindOk{}, nil
		case 30:
			return &queuePurge{}, nil
		case 31:
			return &queuePurgeOk{}, nil
		case 40:
			return &queueDelete{}, nil
		case 41:
			return &queueDeleteOk{}, nil
		case 50:
			return &queueUnbind{}, nil
		case 51:
			return &queueUnbindOk{}, nil
		}
	case classBasic:
		switch method {
		case 10:
			return &basicQos{}, nil
		case 11:
			return &basicQosOk{}, nil
		case 20:
			return &basicConsume{}, nil
		case 21:
			return &basicConsumeOk{}, nil
		case 30:
			return &basicCancel{}, nil
		case 31:
			return &basicCancelOk{}, nil
		case 40:
			return &basicPublish{}, nil
		case 50:
			return &basicReturn{}, nil
		case 60:
			return &basicDeliver{}, nil
		case 70:
			return &basicGet{}, nil
		case 71:
			return &basicGetOk{}, nil
		case 72:
			return &basicGetEmpty{}, nil
		case 80:
			return &basicAck{}, nil
		case 90:
			return &basicReject{}, nil
		case 100:
			return &basicRecoverAsync{}, nil
		case 110:
			return &basicRecover{}, nil
		case 111:
			return &basicRecoverOk{}, nil
		case 120:
			return &basicNack{}, nil
		}
	case classTx:
		switch method {
		case 10:
			return &txSelect{}, nil
		case 11:
			return &txSelectOk{}, nil
		case 20:
			return &txCommit{}, nil
		case 21:
			return &txCommitOk{}, nil
		case 30:
			return &txRollback{}, nil
		case 31:
			return &txRollbackOk{}, nil
		}
	case classConfirm:
		switch method {
		case 10:
			return &confirmSelect{}, nil
		case 11:
			return &confirmSelectOk{}, nil
		}
	}
	return nil, fmt.Errorf("amqp: %w: unknown method %d/%d", ErrFrame, class, method)
}

// ---- connection (class 10) ----

type connectionStart struct {
	VersionMajor     uint8
	VersionMinor     uint8
	ServerProperties Table
	Mechanisms       string
	Locales          string
}

func (m *connectionStart) id() (uint16, uint16) { return classConnection, 10 }
func (m *connectionStart) wait() bool           { return true }

func (m *connectionStart) write(w io.Writer) error {
	if err := writeOctet(w, m.VersionMajor); err != nil {
		return err
	}
	if err := writeOctet(w, m.VersionMinor); err != nil {
		return err
	}
	if err := writeTableArg(w, m.ServerProperties); err != nil {
		return err
	}
	if err := writeLongstr(w, m.Mechanisms); err != nil {
		return err
	}
	return writeLongstr(w, m.Locales)
}

func (m *connectionStart) read(r io.Reader) (err error) {
	if m.VersionMajor, err = readOctet(r); err != nil {
		return
	}
	if m.VersionMinor, err = readOctet(r); err != nil {
		return
	}
	if m.ServerProperties, err = readTableArg(r); err != nil {
		return
	}
	if m.Mechanisms, err = readLongstrArg(r); err != nil {
		return
	}
	m.Locales, err = readLongstrArg(r)
	return
}

type connectionStartOk struct {
	ClientProperties Table
	Mechanism        string
	Response         string
	Locale           string
}

func (m *connectionStartOk) id() (uint16, uint16) { return classConnection, 11 }
func (m *connectionStartOk) wait() bool           { return false }

func (m *connectionStartOk) write(w io.Writer) error {
	if err := writeTableArg(w, m.ClientProperties); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Mechanism); err != nil {
		return err
	}
	if err := writeLongstr(w, m.Response); err != nil {
		return err
	}
	return writeShortstr(w, m.Locale)
}

func (m *connectionStartOk) read(r io.Reader) (err error) {
	if m.ClientProperties, err = readTableArg(r); err != nil {
		return
	}
	if m.Mechanism, err = readShortstrArg(r); err != nil {
		return
	}
	if m.Response, err = readLongstrArg(r); err != nil {
		return
	}
	m.Locale, err = readShortstrArg(r)
	return
}

type connectionSecure struct {
	Challenge string
}

func (m *connectionSecure) id() (uint16, uint16)     { return classConnection, 20 }
func (m *connectionSecure) wait() bool                { return true }
func (m *connectionSecure) write(w io.Writer) error   { return writeLongstr(w, m.Challenge) }
func (m *connectionSecure) read(r io.Reader) (err error) {
	m.Challenge, err = readLongstrArg(r)
	return
}

type connectionSecureOk struct {
	Response string
}

func (m *connectionSecureOk) id() (uint16, uint16)   { return classConnection, 21 }
func (m *connectionSecureOk) wait() bool              { return false }
func (m *connectionSecureOk) write(w io.Writer) error { return writeLongstr(w, m.Response) }
func (m *connectionSecureOk) read(r io.Reader) (err error) {
	m.Response, err = readLongstrArg(r)
	return
}

type connectionTune struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (m *connectionTune) id() (uint16, uint16) { return classConnection, 30 }
func (m *connectionTune) wait() bool           { return true }

func (m *connectionTune) write(w io.Writer) error {
	if err := writeShort(w, m.ChannelMax); err != nil {
		return err
	}
	if err := writeLong(w, m.FrameMax); err != nil {
		return err
	}
	return writeShort(w, m.Heartbeat)
}

func (m *connectionTune) read(r io.Reader) (err error) {
	if m.ChannelMax, err = readShort(r); err != nil {
		return
	}
	if m.FrameMax, err = readLong(r); err != nil {
		return
	}
	m.Heartbeat, err = readShort(r)
	return
}

type connectionTuneOk struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (m *connectionTuneOk) id() (uint16, uint16) { return classConnection, 31 }
func (m *connectionTuneOk) wait() bool           { return false }

func (m *connectionTuneOk) write(w io.Writer) error {
	if err := writeShort(w, m.ChannelMax); err != nil {
		return err
	}
	if err := writeLong(w, m.FrameMax); err != nil {
		return err
	}
	return writeShort(w, m.Heartbeat)
}

func (m *connectionTuneOk) read(r io.Reader) (err error) {
	if m.ChannelMax, err = readShort(r); err != nil {
		return
	}
	if m.FrameMax, err = readLong(r); err != nil {
		return
	}
	m.Heartbeat, err = readShort(r)
	return
}

type connectionOpen struct {
	VirtualHost string
}

func (m *connectionOpen) id() (uint16, uint16) { return classConnection, 40 }
func (m *connectionOpen) wait() bool           { return true }

func (m *connectionOpen) write(w io.Writer) error {
	if err := writeShortstr(w, m.VirtualHost); err != nil {
		return err
	}
	if err := writeShortstr(w, ""); err != nil { // reserved: capabilities
		return err
	}
	bw := &bitWriter{w: w}
	if err := bw.writeBit(false); err != nil { // reserved: insist
		return err
	}
	return bw.flush()
}

func (m *connectionOpen) read(r io.Reader) (err error) {
	if m.VirtualHost, err = readShortstrArg(r); err != nil {
		return
	}
	if _, err = readShortstrArg(r); err != nil { // reserved
		return
	}
	br := &bitReader{r: r}
	_, err = br.readBit() // reserved
	return
}

type connectionOpenOk struct{}

func (m *connectionOpenOk) id() (uint16, uint16) { return classConnection, 41 }
func (m *connectionOpenOk) wait() bool           { return false }
func (m *connectionOpenOk) write(w io.Writer) error {
	return writeShortstr(w, "") // reserved: known-hosts
}
func (m *connectionOpenOk) read(r io.Reader) error {
	_, err := readShortstrArg(r)
	return err
}

type connectionClose struct {
	ReplyCode uint16
	ReplyText string
	ClassId   uint16
	MethodId  uint16
}

func (m *connectionClose) id() (uint16, uint16) { return classConnection, 50 }
func (m *connectionClose) wait() bool           { return true }

func (m *connectionClose) write(w io.Writer) error {
	if err := writeShort(w, m.ReplyCode); err != nil {
		return err
	}
	if err := writeShortstr(w, m.ReplyText); err != nil {
		return err
	}
	if err := writeShort(w, m.ClassId); err != nil {
		return err
	}
	return writeShort(w, m.MethodId)
}

func (m *connectionClose) read(r io.Reader) (err error) {
	if m.ReplyCode, err = readShort(r); err != nil {
		return
	}
	if m.ReplyText, err = readShortstrArg(r); err != nil {
		return
	}
	if m.ClassId, err = readShort(r); err != nil {
		return
	}
	m.MethodId, err = readShort(r)
	return
}

type connectionCloseOk struct{}

func (m *connectionCloseOk) id() (uint16, uint16)     { return classConnection, 51 }
func (m *connectionCloseOk) wait() bool               { return false }
func (m *connectionCloseOk) write(io.Writer) error    { return nil }
func (m *connectionCloseOk) read(io.Reader) error     { return nil }

type connectionBlocked struct {
	Reason string
}

func (m *connectionBlocked) id() (uint16, uint16) { return classConnection, 60 }
func (m *connectionBlocked) wait() bool           { return false }
func (m *connectionBlocked) write(w io.Writer) error {
	return writeShortstr(w, m.Reason)
}
func (m *connectionBlocked) read(r io.Reader) (err error) {
	m.Reason, err = readShortstrArg(r)
	return
}

type connectionUnblocked struct{}

func (m *connectionUnblocked) id() (uint16, uint16)  { return classConnection, 61 }
func (m *connectionUnblocked) wait() bool            { return false }
func (m *connectionUnblocked) write(io.Writer) error { return nil }
func (m *connectionUnblocked) read(io.Reader) error  { return nil }

// ---- channel (class 20) ----

type channelOpen struct{}

func (m *channelOpen) id() (uint16, uint16)   { return classChannel, 10 }
func (m *channelOpen) wait() bool             { return true }
func (m *channelOpen) write(w io.Writer) error { return writeShortstr(w, "") } // reserved
func (m *channelOpen) read(r io.Reader) error {
	_, err := readShortstrArg(r)
	return err
}

type channelOpenOk struct{}

func (m *channelOpenOk) id() (uint16, uint16)    { return classChannel, 11 }
func (m *channelOpenOk) wait() bool              { return false }
func (m *channelOpenOk) write(w io.Writer) error { return writeLongstr(w, "") } // reserved
func (m *channelOpenOk) read(r io.Reader) error {
	_, err := readLongstrArg(r)
	return err
}

type channelFlow struct {
	Active bool
}

func (m *channelFlow) id() (uint16, uint16) { return classChannel, 20 }
func (m *channelFlow) wait() bool           { return true }
func (m *channelFlow) write(w io.Writer) error {
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.Active); err != nil {
		return err
	}
	return bw.flush()
}
func (m *channelFlow) read(r io.Reader) (err error) {
	br := &bitReader{r: r}
	m.Active, err = br.readBit()
	return
}

type channelFlowOk struct {
	Active bool
}

func (m *channelFlowOk) id() (uint16, uint16) { return classChannel, 21 }
func (m *channelFlowOk) wait() bool           { return false }
func (m *channelFlowOk) write(w io.Writer) error {
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.Active); err != nil {
		return err
	}
	return bw.flush()
}
func (m *channelFlowOk) read(r io.Reader) (err error) {
	br := &bitReader{r: r}
	m.Active, err = br.readBit()
	return
}

type channelClose struct {
	ReplyCode uint16
	ReplyText string
	ClassId   uint16
	MethodId  uint16
}

func (m *channelClose) id() (uint16, uint16) { return classChannel, 40 }
func (m *channelClose) wait() bool           { return true }

func (m *channelClose) write(w io.Writer) error {
	if err := writeShort(w, m.ReplyCode); err != nil {
		return err
	}
	if err := writeShortstr(w, m.ReplyText); err != nil {
		return err
	}
	if err := writeShort(w, m.ClassId); err != nil {
		return err
	}
	return writeShort(w, m.MethodId)
}

func (m *channelClose) read(r io.Reader) (err error) {
	if m.ReplyCode, err = readShort(r); err != nil {
		return
	}
	if m.ReplyText, err = readShortstrArg(r); err != nil {
		return
	}
	if m.ClassId, err = readShort(r); err != nil {
		return
	}
	m.MethodId, err = readShort(r)
	return
}

type channelCloseOk struct{}

func (m *channelCloseOk) id() (uint16, uint16) { return classChannel, 41 }
func (m *channelCloseOk) wait() bool           { return false }
func (m *channelCloseOk) write(io.Writer) error { return nil }
func (m *channelCloseOk) read(io.Reader) error  { return nil }

// ---- exchange (class 40) ----

type exchangeDeclare struct {
	Exchange   string
	Type       string
	Passive    bool
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Arguments  Table
}

func (m *exchangeDeclare) id() (uint16, uint16) { return classExchange, 10 }
func (m *exchangeDeclare) wait() bool           { return !m.NoWait }

func (m *exchangeDeclare) write(w io.Writer) error {
	if err := writeShort(w, 0); err != nil { // reserved1
		return err
	}
	if err := writeShortstr(w, m.Exchange); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Type); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	for _, b := range []bool{m.Passive, m.Durable, m.AutoDelete, m.Internal, m.NoWait} {
		if err := bw.writeBit(b); err != nil {
			return err
		}
	}
	if err := bw.flush(); err != nil {
		return err
	}
	return writeTableArg(w, m.Arguments)
}

func (m *exchangeDeclare) read(r io.Reader) (err error) {
	if _, err = readShort(r); err != nil {
		return
	}
	if m.Exchange, err = readShortstrArg(r); err != nil {
		return
	}
	if m.Type, err = readShortstrArg(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	if m.Passive, err = br.readBit(); err != nil {
		return
	}
	if m.Durable, err = br.readBit(); err != nil {
		return
	}
	if m.AutoDelete, err = br.readBit(); err != nil {
		return
	}
	if m.Internal, err = br.readBit(); err != nil {
		return
	}
	if m.NoWait, err = br.readBit(); err != nil {
		return
	}
	m.Arguments, err = readTableArg(r)
	return
}

type exchangeDeclareOk struct{}

func (m *exchangeDeclareOk) id() (uint16, uint16)  { return classExchange, 11 }
func (m *exchangeDeclareOk) wait() bool            { return false }
func (m *exchangeDeclareOk) write(io.Writer) error { return nil }
func (m *exchangeDeclareOk) read(io.Reader) error  { return nil }

type exchangeDelete struct {
	Exchange string
	IfUnused bool
	NoWait   bool
}

func (m *exchangeDelete) id() (uint16, uint16) { return classExchange, 20 }
func (m *exchangeDelete) wait() bool           { return !m.NoWait }

func (m *exchangeDelete) write(w io.Writer) error {
	if err := writeShort(w, 0); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Exchange); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.IfUnused); err != nil {
		return err
	}
	if err := bw.writeBit(m.NoWait); err != nil {
		return err
	}
	return bw.flush()
}

func (m *exchangeDelete) read(r io.Reader) (err error) {
	if _, err = readShort(r); err != nil {
		return
	}
	if m.Exchange, err = readShortstrArg(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	if m.IfUnused, err = br.readBit(); err != nil {
		return
	}
	m.NoWait, err = br.readBit()
	return
}

type exchangeDeleteOk struct{}

func (m *exchangeDeleteOk) id() (uint16, uint16)  { return classExchange, 21 }
func (m *exchangeDeleteOk) wait() bool            { return false }
func (m *exchangeDeleteOk) write(io.Writer) error { return nil }
func (m *exchangeDeleteOk) read(io.Reader) error  { return nil }

type exchangeBind struct {
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   Table
}

func (m *exchangeBind) id() (uint16, uint16) { return classExchange, 30 }
func (m *exchangeBind) wait() bool           { return !m.NoWait }

func (m *exchangeBind) write(w io.Writer) error {
	if err := writeShort(w, 0); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Destination); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Source); err != nil {
		return err
	}
	if err := writeShortstr(w, m.RoutingKey); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.NoWait); err != nil {
		return err
	}
	if err := bw.flush(); err != nil {
		return err
	}
	return writeTableArg(w, m.Arguments)
}

func (m *exchangeBind) read(r io.Reader) (err error) {
	if _, err = readShort(r); err != nil {
		return
	}
	if m.Destination, err = readShortstrArg(r); err != nil {
		return
	}
	if m.Source, err = readShortstrArg(r); err != nil {
		return
	}
	if m.RoutingKey, err = readShortstrArg(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	if m.NoWait, err = br.readBit(); err != nil {
		return
	}
	m.Arguments, err = readTableArg(r)
	return
}

type exchangeBindOk struct{}

func (m *exchangeBindOk) id() (uint16, uint16)  { return classExchange, 31 }
func (m *exchangeBindOk) wait() bool            { return false }
func (m *exchangeBindOk) write(io.Writer) error { return nil }
func (m *exchangeBindOk) read(io.Reader) error  { return nil }

type exchangeUnbind struct {
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   Table
}

func (m *exchangeUnbind) id() (uint16, uint16) { return classExchange, 40 }
func (m *exchangeUnbind) wait() bool           { return !m.NoWait }

func (m *exchangeUnbind) write(w io.Writer) error {
	if err := writeShort(w, 0); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Destination); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Source); err != nil {
		return err
	}
	if err := writeShortstr(w, m.RoutingKey); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.NoWait); err != nil {
		return err
	}
	if err := bw.flush(); err != nil {
		return err
	}
	return writeTableArg(w, m.Arguments)
}

func (m *exchangeUnbind) read(r io.Reader) (err error) {
	if _, err = readShort(r); err != nil {
		return
	}
	if m.Destination, err = readShortstrArg(r); err != nil {
		return
	}
	if m.Source, err = readShortstrArg(r); err != nil {
		return
	}
	if m.RoutingKey, err = readShortstrArg(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	if m.NoWait, err = br.readBit(); err != nil {
		return
	}
	m.Arguments, err = readTableArg(r)
	return
}

type exchangeUnbindOk struct{}

func (m *exchangeUnbindOk) id() (uint16, uint16)  { return classExchange, 51 }
func (m *exchangeUnbindOk) wait() bool            { return false }
func (m *exchangeUnbindOk) write(io.Writer) error { return nil }
func (m *exchangeUnbindOk) read(io.Reader) error  { return nil }

// ---- queue (class 50) ----

type queueDeclare struct {
	Queue      string
	Passive    bool
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	NoWait     bool
	Arguments  Table
}

func (m *queueDeclare) id() (uint16, uint16) { return classQueue, 10 }
func (m *queueDeclare) wait() bool           { return !m.NoWait }

func (m *queueDeclare) write(w io.Writer) error {
	if err := writeShort(w, 0); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Queue); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	for _, b := range []bool{m.Passive, m.Durable, m.Exclusive, m.AutoDelete, m.NoWait} {
		if err := bw.writeBit(b); err != nil {
			return err
		}
	}
	if err := bw.flush(); err != nil {
		return err
	}
	return writeTableArg(w, m.Arguments)
}

func (m *queueDeclare) read(r io.Reader) (err error) {
	if _, err = readShort(r); err != nil {
		return
	}
	if m.Queue, err = readShortstrArg(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	if m.Passive, err = br.readBit(); err != nil {
		return
	}
	if m.Durable, err = br.readBit(); err != nil {
		return
	}
	if m.Exclusive, err = br.readBit(); err != nil {
		return
	}
	if m.AutoDelete, err = br.readBit(); err != nil {
		return
	}
	if m.NoWait, err = br.readBit(); err != nil {
		return
	}
	m.Arguments, err = readTableArg(r)
	return
}

type queueDeclareOk struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

func (m *queueDeclareOk) id() (uint16, uint16) { return classQueue, 11 }
func (m *queueDeclareOk) wait() bool           { return false }

func (m *queueDeclareOk) write(w io.Writer) error {
	if err := writeShortstr(w, m.Queue); err != nil {
		return err
	}
	if err := writeLong(w, m.MessageCount); err != nil {
		return err
	}
	return writeLong(w, m.ConsumerCount)
}

func (m *queueDeclareOk) read(r io.Reader) (err error) {
	if m.Queue, err = readShortstrArg(r); err != nil {
		return
	}
	if m.MessageCount, err = readLong(r); err != nil {
		return
	}
	m.ConsumerCount, err = readLong(r)
	return
}

type queueBind struct {
	Queue      string
	Exchange   string
	RoutingKey string
	NoWait     bool
	Arguments  Table
}

func (m *queueBind) id() (uint16, uint16) { return classQueue, 20 }
func (m *queueBind) wait() bool           { return !m.NoWait }

func (m *queueBind) write(w io.Writer) error {
	if err := writeShort(w, 0); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Queue); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Exchange); err != nil {
		return err
	}
	if err := writeShortstr(w, m.RoutingKey); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.NoWait); err != nil {
		return err
	}
	if err := bw.flush(); err != nil {
		return err
	}
	return writeTableArg(w, m.Arguments)
}

func (m *queueBind) read(r io.Reader) (err error) {
	if _, err = readShort(r); err != nil {
		return
	}
	if m.Queue, err = readShortstrArg(r); err != nil {
		return
	}
	if m.Exchange, err = readShortstrArg(r); err != nil {
		return
	}
	if m.RoutingKey, err = readShortstrArg(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	if m.NoWait, err = br.readBit(); err != nil {
		return
	}
	m.Arguments, err = readTableArg(r)
	return
}

type queueBindOk struct{}

func (m *queueBindOk) id() (uint16, uint16)  { return classQueue, 21 }
func (m *queueBindOk) wait() bool            { return false }
func (m *queueBindOk) write(io.Writer) error { return nil }
func (m *queueBindOk) read(io.Reader) error  { return nil }

type queuePurge struct {
	Queue  string
	NoWait bool
}

func (m *queuePurge) id() (uint16, uint16) { return classQueue, 30 }
func (m *queuePurge) wait() bool           { return !m.NoWait }

func (m *queuePurge) write(w io.Writer) error {
	if err := writeShort(w, 0); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Queue); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.NoWait); err != nil {
		return err
	}
	return bw.flush()
}

func (m *queuePurge) read(r io.Reader) (err error) {
	if _, err = readShort(r); err != nil {
		return
	}
	if m.Queue, err = readShortstrArg(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	m.NoWait, err = br.readBit()
	return
}

type queuePurgeOk struct {
	MessageCount uint32
}

func (m *queuePurgeOk) id() (uint16, uint16)   { return classQueue, 31 }
func (m *queuePurgeOk) wait() bool             { return false }
func (m *queuePurgeOk) write(w io.Writer) error { return writeLong(w, m.MessageCount) }
func (m *queuePurgeOk) read(r io.Reader) (err error) {
	m.MessageCount, err = readLong(r)
	return
}

type queueDelete struct {
	Queue    string
	IfUnused bool
	IfEmpty  bool
	NoWait   bool
}

func (m *queueDelete) id() (uint16, uint16) { return classQueue, 40 }
func (m *queueDelete) wait() bool           { return !m.NoWait }

func (m *queueDelete) write(w io.Writer) error {
	if err := writeShort(w, 0); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Queue); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	for _, b := range []bool{m.IfUnused, m.IfEmpty, m.NoWait} {
		if err := bw.writeBit(b); err != nil {
			return err
		}
	}
	return bw.flush()
}

func (m *queueDelete) read(r io.Reader) (err error) {
	if _, err = readShort(r); err != nil {
		return
	}
	if m.Queue, err = readShortstrArg(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	if m.IfUnused, err = br.readBit(); err != nil {
		return
	}
	if m.IfEmpty, err = br.readBit(); err != nil {
		return
	}
	m.NoWait, err = br.readBit()
	return
}

type queueDeleteOk struct {
	MessageCount uint32
}

func (m *queueDeleteOk) id() (uint16, uint16)    { return classQueue, 41 }
func (m *queueDeleteOk) wait() bool              { return false }
func (m *queueDeleteOk) write(w io.Writer) error { return writeLong(w, m.MessageCount) }
func (m *queueDeleteOk) read(r io.Reader) (err error) {
	m.MessageCount, err = readLong(r)
	return
}

type queueUnbind struct {
	Queue      string
	Exchange   string
	RoutingKey string
	Arguments  Table
}

func (m *queueUnbind) id() (uint16, uint16) { return classQueue, 50 }
func (m *queueUnbind) wait() bool           { return true }

func (m *queueUnbind) write(w io.Writer) error {
	if err := writeShort(w, 0); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Queue); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Exchange); err != nil {
		return err
	}
	if err := writeShortstr(w, m.RoutingKey); err != nil {
		return err
	}
	return writeTableArg(w, m.Arguments)
}

func (m *queueUnbind) read(r io.Reader) (err error) {
	if _, err = readShort(r); err != nil {
		return
	}
	if m.Queue, err = readShortstrArg(r); err != nil {
		return
	}
	if m.Exchange, err = readShortstrArg(r); err != nil {
		return
	}
	if m.RoutingKey, err = readShortstrArg(r); err != nil {
		return
	}
	m.Arguments, err = readTableArg(r)
	return
}

type queueUnbindOk struct{}

func (m *queueUnbindOk) id() (uint16, uint16)  { return classQueue, 51 }
func (m *queueUnbindOk) wait() bool            { return false }
func (m *queueUnbindOk) write(io.Writer) error { return nil }
func (m *queueUnbindOk) read(io.Reader) error  { return nil }

// ---- basic (class 60) ----

type basicQos struct {
	PrefetchSize  uint32
	PrefetchCount uint16
	Global        bool
}

func (m *basicQos) id() (uint16, uint16) { return classBasic, 10 }
func (m *basicQos) wait() bool           { return true }

func (m *basicQos) write(w io.Writer) error {
	if err := writeLong(w, m.PrefetchSize); err != nil {
		return err
	}
	if err := writeShort(w, m.PrefetchCount); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.Global); err != nil {
		return err
	}
	return bw.flush()
}

func (m *basicQos) read(r io.Reader) (err error) {
	if m.PrefetchSize, err = readLong(r); err != nil {
		return
	}
	if m.PrefetchCount, err = readShort(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	m.Global, err = br.readBit()
	return
}

type basicQosOk struct{}

func (m *basicQosOk) id() (uint16, uint16)  { return classBasic, 11 }
func (m *basicQosOk) wait() bool            { return false }
func (m *basicQosOk) write(io.Writer) error { return nil }
func (m *basicQosOk) read(io.Reader) error  { return nil }

type basicConsume struct {
	Queue       string
	ConsumerTag string
	NoLocal     bool
	NoAck       bool
	Exclusive   bool
	NoWait      bool
	Arguments   Table
}

func (m *basicConsume) id() (uint16, uint16) { return classBasic, 20 }
func (m *basicConsume) wait() bool           { return !m.NoWait }

func (m *basicConsume) write(w io.Writer) error {
	if err := writeShort(w, 0); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Queue); err != nil {
		return err
	}
	if err := writeShortstr(w, m.ConsumerTag); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	for _, b := range []bool{m.NoLocal, m.NoAck, m.Exclusive, m.NoWait} {
		if err := bw.writeBit(b); err != nil {
			return err
		}
	}
	if err := bw.flush(); err != nil {
		return err
	}
	return writeTableArg(w, m.Arguments)
}

func (m *basicConsume) read(r io.Reader) (err error) {
	if _, err = readShort(r); err != nil {
		return
	}
	if m.Queue, err = readShortstrArg(r); err != nil {
		return
	}
	if m.ConsumerTag, err = readShortstrArg(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	if m.NoLocal, err = br.readBit(); err != nil {
		return
	}
	if m.NoAck, err = br.readBit(); err != nil {
		return
	}
	if m.Exclusive, err = br.readBit(); err != nil {
		return
	}
	if m.NoWait, err = br.readBit(); err != nil {
		return
	}
	m.Arguments, err = readTableArg(r)
	return
}

type basicConsumeOk struct {
	ConsumerTag string
}

func (m *basicConsumeOk) id() (uint16, uint16)   { return classBasic, 21 }
func (m *basicConsumeOk) wait() bool             { return false }
func (m *basicConsumeOk) write(w io.Writer) error { return writeShortstr(w, m.ConsumerTag) }
func (m *basicConsumeOk) read(r io.Reader) (err error) {
	m.ConsumerTag, err = readShortstrArg(r)
	return
}

type basicCancel struct {
	ConsumerTag string
	NoWait      bool
}

func (m *basicCancel) id() (uint16, uint16) { return classBasic, 30 }
func (m *basicCancel) wait() bool           { return !m.NoWait }

func (m *basicCancel) write(w io.Writer) error {
	if err := writeShortstr(w, m.ConsumerTag); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.NoWait); err != nil {
		return err
	}
	return bw.flush()
}

func (m *basicCancel) read(r io.Reader) (err error) {
	if m.ConsumerTag, err = readShortstrArg(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	m.NoWait, err = br.readBit()
	return
}

type basicCancelOk struct {
	ConsumerTag string
}

func (m *basicCancelOk) id() (uint16, uint16)   { return classBasic, 31 }
func (m *basicCancelOk) wait() bool             { return false }
func (m *basicCancelOk) write(w io.Writer) error { return writeShortstr(w, m.ConsumerTag) }
func (m *basicCancelOk) read(r io.Reader) (err error) {
	m.ConsumerTag, err = readShortstrArg(r)
	return
}

type basicPublish struct {
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Immediate  bool

	Properties properties
	Body       []byte
}

func (m *basicPublish) id() (uint16, uint16) { return classBasic, 40 }
func (m *basicPublish) wait() bool           { return false }

func (m *basicPublish) getContent() (properties, []byte) { return m.Properties, m.Body }
func (m *basicPublish) setContent(p properties, b []byte) {
	m.Properties, m.Body = p, b
}

func (m *basicPublish) write(w io.Writer) error {
	if err := writeShort(w, 0); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Exchange); err != nil {
		return err
	}
	if err := writeShortstr(w, m.RoutingKey); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.Mandatory); err != nil {
		return err
	}
	if err := bw.writeBit(m.Immediate); err != nil {
		return err
	}
	return bw.flush()
}

func (m *basicPublish) read(r io.Reader) (err error) {
	if _, err = readShort(r); err != nil {
		return
	}
	if m.Exchange, err = readShortstrArg(r); err != nil {
		return
	}
	if m.RoutingKey, err = readShortstrArg(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	if m.Mandatory, err = br.readBit(); err != nil {
		return
	}
	m.Immediate, err = br.readBit()
	return
}

type basicReturn struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string

	Properties properties
	Body       []byte
}

func (m *basicReturn) id() (uint16, uint16)               { return classBasic, 50 }
func (m *basicReturn) wait() bool                          { return false }
func (m *basicReturn) getContent() (properties, []byte)   { return m.Properties, m.Body }
func (m *basicReturn) setContent(p properties, b []byte)  { m.Properties, m.Body = p, b }

func (m *basicReturn) write(w io.Writer) error {
	if err := writeShort(w, m.ReplyCode); err != nil {
		return err
	}
	if err := writeShortstr(w, m.ReplyText); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Exchange); err != nil {
		return err
	}
	return writeShortstr(w, m.RoutingKey)
}

func (m *basicReturn) read(r io.Reader) (err error) {
	if m.ReplyCode, err = readShort(r); err != nil {
		return
	}
	if m.ReplyText, err = readShortstrArg(r); err != nil {
		return
	}
	if m.Exchange, err = readShortstrArg(r); err != nil {
		return
	}
	m.RoutingKey, err = readShortstrArg(r)
	return
}

type basicDeliver struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string

	Properties properties
	Body       []byte
}

func (m *basicDeliver) id() (uint16, uint16)              { return classBasic, 60 }
func (m *basicDeliver) wait() bool                         { return false }
func (m *basicDeliver) getContent() (properties, []byte)  { return m.Properties, m.Body }
func (m *basicDeliver) setContent(p properties, b []byte) { m.Properties, m.Body = p, b }

func (m *basicDeliver) write(w io.Writer) error {
	if err := writeShortstr(w, m.ConsumerTag); err != nil {
		return err
	}
	if err := writeLonglong(w, m.DeliveryTag); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.Redelivered); err != nil {
		return err
	}
	if err := bw.flush(); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Exchange); err != nil {
		return err
	}
	return writeShortstr(w, m.RoutingKey)
}

func (m *basicDeliver) read(r io.Reader) (err error) {
	if m.ConsumerTag, err = readShortstrArg(r); err != nil {
		return
	}
	if m.DeliveryTag, err = readLonglong(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	if m.Redelivered, err = br.readBit(); err != nil {
		return
	}
	if m.Exchange, err = readShortstrArg(r); err != nil {
		return
	}
	m.RoutingKey, err = readShortstrArg(r)
	return
}

type basicGet struct {
	Queue string
	NoAck bool
}

func (m *basicGet) id() (uint16, uint16) { return classBasic, 70 }
func (m *basicGet) wait() bool           { return true }

func (m *basicGet) write(w io.Writer) error {
	if err := writeShort(w, 0); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Queue); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.NoAck); err != nil {
		return err
	}
	return bw.flush()
}

func (m *basicGet) read(r io.Reader) (err error) {
	if _, err = readShort(r); err != nil {
		return
	}
	if m.Queue, err = readShortstrArg(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	m.NoAck, err = br.readBit()
	return
}

type basicGetOk struct {
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string
	MessageCount uint32

	Properties properties
	Body       []byte
}

func (m *basicGetOk) id() (uint16, uint16)              { return classBasic, 71 }
func (m *basicGetOk) wait() bool                         { return false }
func (m *basicGetOk) getContent() (properties, []byte)  { return m.Properties, m.Body }
func (m *basicGetOk) setContent(p properties, b []byte) { m.Properties, m.Body = p, b }

func (m *basicGetOk) write(w io.Writer) error {
	if err := writeLonglong(w, m.DeliveryTag); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.Redelivered); err != nil {
		return err
	}
	if err := bw.flush(); err != nil {
		return err
	}
	if err := writeShortstr(w, m.Exchange); err != nil {
		return err
	}
	if err := writeShortstr(w, m.RoutingKey); err != nil {
		return err
	}
	return writeLong(w, m.MessageCount)
}

func (m *basicGetOk) read(r io.Reader) (err error) {
	if m.DeliveryTag, err = readLonglong(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	if m.Redelivered, err = br.readBit(); err != nil {
		return
	}
	if m.Exchange, err = readShortstrArg(r); err != nil {
		return
	}
	if m.RoutingKey, err = readShortstrArg(r); err != nil {
		return
	}
	m.MessageCount, err = readLong(r)
	return
}

type basicGetEmpty struct{}

func (m *basicGetEmpty) id() (uint16, uint16)  { return classBasic, 72 }
func (m *basicGetEmpty) wait() bool            { return false }
func (m *basicGetEmpty) write(w io.Writer) error { return writeShortstr(w, "") } // reserved
func (m *basicGetEmpty) read(r io.Reader) error {
	_, err := readShortstrArg(r)
	return err
}

type basicAck struct {
	DeliveryTag uint64
	Multiple    bool
}

func (m *basicAck) id() (uint16, uint16) { return classBasic, 80 }
func (m *basicAck) wait() bool           { return false }

func (m *basicAck) write(w io.Writer) error {
	if err := writeLonglong(w, m.DeliveryTag); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.Multiple); err != nil {
		return err
	}
	return bw.flush()
}

func (m *basicAck) read(r io.Reader) (err error) {
	if m.DeliveryTag, err = readLonglong(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	m.Multiple, err = br.readBit()
	return
}

type basicReject struct {
	DeliveryTag uint64
	Requeue     bool
}

func (m *basicReject) id() (uint16, uint16) { return classBasic, 90 }
func (m *basicReject) wait() bool           { return false }

func (m *basicReject) write(w io.Writer) error {
	if err := writeLonglong(w, m.DeliveryTag); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.Requeue); err != nil {
		return err
	}
	return bw.flush()
}

func (m *basicReject) read(r io.Reader) (err error) {
	if m.DeliveryTag, err = readLonglong(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	m.Requeue, err = br.readBit()
	return
}

type basicRecoverAsync struct {
	Requeue bool
}

func (m *basicRecoverAsync) id() (uint16, uint16) { return classBasic, 100 }
func (m *basicRecoverAsync) wait() bool           { return false }
func (m *basicRecoverAsync) write(w io.Writer) error {
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.Requeue); err != nil {
		return err
	}
	return bw.flush()
}
func (m *basicRecoverAsync) read(r io.Reader) (err error) {
	br := &bitReader{r: r}
	m.Requeue, err = br.readBit()
	return
}

type basicRecover struct {
	Requeue bool
}

func (m *basicRecover) id() (uint16, uint16) { return classBasic, 110 }
func (m *basicRecover) wait() bool           { return true }
func (m *basicRecover) write(w io.Writer) error {
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.Requeue); err != nil {
		return err
	}
	return bw.flush()
}
func (m *basicRecover) read(r io.Reader) (err error) {
	br := &bitReader{r: r}
	m.Requeue, err = br.readBit()
	return
}

type basicRecoverOk struct{}

func (m *basicRecoverOk) id() (uint16, uint16)  { return classBasic, 111 }
func (m *basicRecoverOk) wait() bool            { return false }
func (m *basicRecoverOk) write(io.Writer) error { return nil }
func (m *basicRecoverOk) read(io.Reader) error  { return nil }

type basicNack struct {
	DeliveryTag uint64
	Multiple    bool
	Requeue     bool
}

func (m *basicNack) id() (uint16, uint16) { return classBasic, 120 }
func (m *basicNack) wait() bool           { return false }

func (m *basicNack) write(w io.Writer) error {
	if err := writeLonglong(w, m.DeliveryTag); err != nil {
		return err
	}
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.Multiple); err != nil {
		return err
	}
	if err := bw.writeBit(m.Requeue); err != nil {
		return err
	}
	return bw.flush()
}

func (m *basicNack) read(r io.Reader) (err error) {
	if m.DeliveryTag, err = readLonglong(r); err != nil {
		return
	}
	br := &bitReader{r: r}
	if m.Multiple, err = br.readBit(); err != nil {
		return
	}
	m.Requeue, err = br.readBit()
	return
}

// ---- tx (class 90) ----

type txSelect struct{}

func (m *txSelect) id() (uint16, uint16)  { return classTx, 10 }
func (m *txSelect) wait() bool            { return true }
func (m *txSelect) write(io.Writer) error { return nil }
func (m *txSelect) read(io.Reader) error  { return nil }

type txSelectOk struct{}

func (m *txSelectOk) id() (uint16, uint16)  { return classTx, 11 }
func (m *txSelectOk) wait() bool            { return false }
func (m *txSelectOk) write(io.Writer) error { return nil }
func (m *txSelectOk) read(io.Reader) error  { return nil }

type txCommit struct{}

func (m *txCommit) id() (uint16, uint16)  { return classTx, 20 }
func (m *txCommit) wait() bool            { return true }
func (m *txCommit) write(io.Writer) error { return nil }
func (m *txCommit) read(io.Reader) error  { return nil }

type txCommitOk struct{}

func (m *txCommitOk) id() (uint16, uint16)  { return classTx, 21 }
func (m *txCommitOk) wait() bool            { return false }
func (m *txCommitOk) write(io.Writer) error { return nil }
func (m *txCommitOk) read(io.Reader) error  { return nil }

type txRollback struct{}

func (m *txRollback) id() (uint16, uint16)  { return classTx, 30 }
func (m *txRollback) wait() bool            { return true }
func (m *txRollback) write(io.Writer) error { return nil }
func (m *txRollback) read(io.Reader) error  { return nil }

type txRollbackOk struct{}

func (m *txRollbackOk) id() (uint16, uint16)  { return classTx, 31 }
func (m *txRollbackOk) wait() bool            { return false }
func (m *txRollbackOk) write(io.Writer) error { return nil }
func (m *txRollbackOk) read(io.Reader) error  { return nil }

// ---- confirm (class 85, RabbitMQ extension) ----

type confirmSelect struct {
	NoWait bool
}

func (m *confirmSelect) id() (uint16, uint16) { return classConfirm, 10 }
func (m *confirmSelect) wait() bool           { return !m.NoWait }
func (m *confirmSelect) write(w io.Writer) error {
	bw := &bitWriter{w: w}
	if err := bw.writeBit(m.NoWait); err != nil {
		return err
	}
	return bw.flush()
}
func (m *confirmSelect) read(r io.Reader) (err error) {
	br := &bitReader{r: r}
	m.NoWait, err = br.readBit()
	return
}

type confirmSelectOk struct{}

func (m *confirmSelectOk) id() (uint16, uint16)  { return classConfirm, 11 }
func (m *confirmSelectOk) wait() bool            { return false }
func (m *confirmSelectOk) write(io.Writer) error { return nil }
func (m *confirmSelectOk) read(io.Reader) error  { return nil }
