// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"bufio"
	"context"
	"crypto/tls"
	"io"
	"net"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	defaultHeartbeat         = 60 * time.Second
	defaultConnectionTimeout = 30 * time.Second
	defaultChannelMax        = (2 << 15) - 1
	defaultFrameSize         = 131072
	defaultLocale            = "en_US"
)

// Config tunes a connection's handshake: the SASL mechanisms to offer, the
// virtual host to open, and the channel/frame/heartbeat limits the client
// proposes (the negotiated values, the min of client and server, end up on
// Connection.Config).
type Config struct {
	SASL []Authentication

	Vhost string

	ChannelMax int           // 0 or less means the default, 65535
	FrameSize  int           // 0 or less means the default, 131072
	Heartbeat  time.Duration // 0 or less means the default, 60s; under 1s proposes 0, so the server's value wins

	Properties Table
	Locale     string

	TLSClientConfig   *tls.Config
	ConnectionTimeout time.Duration
}

// Connection manages serialization/deserialization of frames from the
// transport and dispatches them to the appropriate Channel. All RPC methods
// and asynchronous deliveries, acks, nacks, and returns are multiplexed
// through this connection's single reader goroutine.
type Connection struct {
	destructor sync.Once
	sendM      sync.Mutex
	m          sync.Mutex

	conn io.ReadWriteCloser

	rpc       chan message
	writer    *writer
	sends     chan time.Time
	deadlines chan readDeadliner

	allocator *allocator
	channels  map[uint16]*Channel

	noNotify bool
	closes   []chan *Error
	blocks   []chan Blocking

	errors chan *Error

	deliverySignal chan struct{}

	log logger

	Config Config

	Major      int
	Minor      int
	Properties Table
}

type readDeadliner interface {
	SetReadDeadline(time.Time) error
}

// Dial accepts an AMQP URI and returns a new Connection over TCP using
// PlainAuth. Defaults to a 60 second server heartbeat interval and a 30
// second connect/handshake timeout.
func Dial(uri string) (*Connection, error) {
	return DialConfig(uri, Config{
		Heartbeat:         defaultHeartbeat,
		ConnectionTimeout: defaultConnectionTimeout,
	})
}

// DialTLS is Dial for amqps:// URIs, performing a TLS handshake using the
// given tls.Config (which may be nil to use Go's defaults).
func DialTLS(uri string, tlsConfig *tls.Config) (*Connection, error) {
	return DialConfig(uri, Config{
		Heartbeat:         defaultHeartbeat,
		ConnectionTimeout: defaultConnectionTimeout,
		TLSClientConfig:   tlsConfig,
	})
}

// DialConfig accepts an AMQP URI and a Config for the transport and
// handshake, returning a new, already-open Connection.
func DialConfig(uri string, config Config) (*Connection, error) {
	u, err := ParseURI(uri)
	if err != nil {
		return nil, errors.Wrap(err, "amqp: invalid uri")
	}

	if config.SASL == nil {
		config.SASL = []Authentication{u.PlainAuth()}
	}
	if config.Vhost == "" {
		config.Vhost = u.Vhost
	}
	if u.Scheme == "amqps" && config.TLSClientConfig == nil {
		config.TLSClientConfig = new(tls.Config)
	}

	addr := net.JoinHostPort(u.Host, strconv.Itoa(u.Port))

	timeout := config.ConnectionTimeout
	if timeout <= 0 {
		timeout = defaultConnectionTimeout
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrap(err, "amqp: dial failed")
	}

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		conn.Close()
		return nil, err
	}

	var transport io.ReadWriteCloser = conn

	if config.TLSClientConfig != nil {
		tlsCfg := config.TLSClientConfig
		if tlsCfg.ServerName == "" {
			c := *tlsCfg
			c.ServerName = u.Host
			tlsCfg = &c
		}
		client := tls.Client(conn, tlsCfg)
		if err := client.HandshakeContext(context.Background()); err != nil {
			conn.Close()
			return nil, errors.Wrap(err, "amqp: tls handshake failed")
		}
		transport = client
	}

	c, err := Open(transport, config)
	if err != nil {
		return c, err
	}

	// The deadline above bounds only the dial and handshake. Writes are
	// unbounded from here on; reads are bounded by the heartbeater when
	// heartbeats were negotiated.
	conn.SetWriteDeadline(time.Time{})
	if c.Config.Heartbeat <= 0 {
		conn.SetReadDeadline(time.Time{})
	}
	return c, nil
}

// Connect is a convenience constructor matching the spec's
// (host, port, username, password, vhost) signature; Dial/DialConfig are
// the idiomatic entry points.
func Connect(host string, port int, username, password, vhost string, config Config) (*Connection, error) {
	uri := URI{Scheme: "amqp", Host: host, Port: port, Username: username, Password: password, Vhost: vhost}
	return DialConfig(uri.String(), config)
}

// Open wraps an already-established io.ReadWriteCloser (a TCP socket, a TLS
// session, or a test double) and performs the AMQP handshake over it.
func Open(conn io.ReadWriteCloser, config Config) (*Connection, error) {
	c := &Connection{
		conn:           conn,
		writer:         &writer{bufio.NewWriter(conn)},
		channels:       make(map[uint16]*Channel),
		rpc:            make(chan message),
		sends:          make(chan time.Time),
		errors:         make(chan *Error, 1),
		deadlines:      make(chan readDeadliner, 1),
		deliverySignal: make(chan struct{}, 1),
		log:            defaultLogger,
	}
	go c.reader(conn)
	return c, c.open(config)
}

// NotifyClose registers a listener for connection-level close events,
// whether initiated by an error accompanying a connection.close method or a
// normal shutdown. On normal shutdown the channel is closed without a value.
func (c *Connection) NotifyClose(ch chan *Error) chan *Error {
	c.m.Lock()
	defer c.m.Unlock()

	if c.noNotify {
		close(ch)
	} else {
		c.closes = append(c.closes, ch)
	}
	return ch
}

// NotifyBlocked registers a listener for the RabbitMQ connection.blocked /
// connection.unblocked TCP back-pressure extension.
func (c *Connection) NotifyBlocked(ch chan Blocking) chan Blocking {
	c.m.Lock()
	defer c.m.Unlock()

	if c.noNotify {
		close(ch)
	} else {
		c.blocks = append(c.blocks, ch)
	}
	return ch
}

// IsCapable reports whether the server advertised the named capability in
// its connection.start server-properties table (e.g. "basic.nack",
// "exchange_exchange_bindings", "consumer_cancel_notify").
func (c *Connection) IsCapable(feature string) bool {
	caps, _ := c.Properties["capabilities"].(Table)
	enabled, _ := caps[feature].(bool)
	return enabled
}

// Channel opens a new logical channel, performing the channel.open
// handshake before returning.
func (c *Connection) Channel() (*Channel, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	c.m.Lock()
	id, ok := c.allocator.next()
	c.m.Unlock()
	if !ok {
		return nil, ErrChannelMax
	}
	return c.openChannel(uint16(id))
}

func (c *Connection) openChannel(id uint16) (*Channel, error) {
	ch := newChannel(c, id)

	c.m.Lock()
	c.channels[id] = ch
	c.m.Unlock()

	if err := ch.open(); err != nil {
		c.m.Lock()
		delete(c.channels, id)
		c.allocator.release(int(id))
		c.m.Unlock()
		return nil, err
	}
	return ch, nil
}

func (c *Connection) releaseChannel(id uint16) {
	c.m.Lock()
	delete(c.channels, id)
	if c.allocator != nil {
		c.allocator.release(int(id))
	}
	c.m.Unlock()
}

// Close requests a graceful close: connection.close / connection.close-ok,
// then closes the transport. All channels, their consumers, and any
// pending RPCs are torn down with the resulting error (or nil, for a clean
// shutdown).
func (c *Connection) Close() error {
	if c.isClosed() {
		return nil
	}
	defer c.shutdown(nil)
	return c.call(
		&connectionClose{ReplyCode: ReplySuccess, ReplyText: "normal shutdown"},
		&connectionCloseOk{},
	)
}

// closeWith reports a locally detected error (framing, unexpected frame,
// unknown channel) to the broker and tears the connection down. It is
// always invoked from the reader goroutine itself, so it cannot wait for a
// connection.close-ok the way the public Close does: nothing else would be
// left to read it off the wire. The close method is sent best-effort and
// the transport is abandoned immediately after, matching the heartbeat
// subsystem's abrupt-close behavior.
func (c *Connection) closeWith(err *Error) {
	c.send(&methodFrame{ChannelId: 0, Method: &connectionClose{
		ReplyCode: uint16(err.Code),
		ReplyText: err.Reason,
	}})
	c.shutdown(err)
}

func (c *Connection) isClosed() bool {
	c.m.Lock()
	defer c.m.Unlock()
	return c.noNotify
}

// DrainEvents blocks until at least one consumer delivery or basic.return
// has been dispatched by the reader goroutine, or until timeout elapses
// (<=0 means wait forever). Publisher confirms do not wake it.
func (c *Connection) DrainEvents(timeout time.Duration) error {
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case <-c.deliverySignal:
		return nil
	case err := <-c.errors:
		c.errors <- err // let other waiters observe it too
		return err
	case <-timeoutCh:
		return ErrTimeout
	}
}

func (c *Connection) noteDelivery() {
	select {
	case c.deliverySignal <- struct{}{}:
	default:
	}
}

func (c *Connection) send(f frame) error {
	c.sendM.Lock()
	err := c.writer.WriteFrame(f)
	c.sendM.Unlock()

	if err != nil {
		c.shutdown(&Error{Code: FrameError, Reason: err.Error()})
	} else {
		select {
		case c.sends <- time.Now():
		default:
		}
	}
	return err
}

// sendMethodWithContent writes method, then its header/body frames, all
// under a single acquisition of the write lock so no other writer can
// interleave a frame for a different channel in between.
func (c *Connection) sendMethodWithContent(channel uint16, method messageWithContent, frameSize int) error {
	props, body := method.getContent()
	class, _ := method.id()

	maxBody := frameSize - 8
	if frameSize <= 0 {
		maxBody = len(body)
		if maxBody == 0 {
			maxBody = 1
		}
	}

	err := func() error {
		c.sendM.Lock()
		defer c.sendM.Unlock()

		if err := c.writer.WriteFrame(&methodFrame{ChannelId: channel, Method: method}); err != nil {
			return err
		}
		if err := c.writer.WriteFrame(&headerFrame{
			ChannelId:  channel,
			ClassId:    class,
			Size:       uint64(len(body)),
			Properties: props,
		}); err != nil {
			return err
		}
		for remaining := body; len(remaining) > 0; {
			n := maxBody
			if n > len(remaining) || n <= 0 {
				n = len(remaining)
			}
			if err := c.writer.WriteFrame(&bodyFrame{ChannelId: channel, Body: remaining[:n]}); err != nil {
				return err
			}
			remaining = remaining[n:]
		}
		return nil
	}()

	if err != nil {
		c.shutdown(&Error{Code: FrameError, Reason: err.Error()})
		return err
	}

	select {
	case c.sends <- time.Now():
	default:
	}
	return nil
}

func (c *Connection) shutdown(err *Error) {
	c.destructor.Do(func() {
		c.m.Lock()
		channels := c.channels
		c.channels = nil
		closes := c.closes
		blocks := c.blocks
		c.noNotify = true
		c.m.Unlock()

		if err != nil {
			for _, ch := range closes {
				ch <- err
			}
			select {
			case c.errors <- err:
			default:
			}
		}

		for _, ch := range channels {
			ch.shutdown(err)
		}

		c.conn.Close()

		for _, ch := range closes {
			close(ch)
		}
		for _, ch := range blocks {
			close(ch)
		}
	})
}

func (c *Connection) demux(f frame) {
	if f.channel() == 0 {
		c.dispatch0(f)
	} else {
		c.dispatchN(f)
	}
}

func (c *Connection) dispatch0(f frame) {
	switch mf := f.(type) {
	case *methodFrame:
		switch m := mf.Method.(type) {
		case *connectionClose:
			c.send(&methodFrame{ChannelId: 0, Method: &connectionCloseOk{}})
			c.shutdown(newError(m.ReplyCode, m.ReplyText))
		case *connectionBlocked:
			c.m.Lock()
			blocks := c.blocks
			c.m.Unlock()
			for _, ch := range blocks {
				ch <- Blocking{Active: true, Reason: m.Reason}
			}
		case *connectionUnblocked:
			c.m.Lock()
			blocks := c.blocks
			c.m.Unlock()
			for _, ch := range blocks {
				ch <- Blocking{Active: false}
			}
		default:
			c.rpc <- m
		}
	case *heartbeatFrame:
		// inbound heartbeats only reset the read deadline; handled in reader().
	default:
		c.closeWith(ErrUnexpectedFrame)
	}
}

func (c *Connection) dispatchN(f frame) {
	c.m.Lock()
	ch := c.channels[f.channel()]
	c.m.Unlock()

	if ch == nil {
		c.dispatchClosed(f)
		return
	}
	if err := ch.recv(f); err != nil {
		c.closeWith(ErrUnexpectedFrame)
	}
}

// dispatchClosed handles frames that race a channel's teardown: AMQP
// section 2.3.7 requires responding to a Close even if we believe the
// channel is already gone, to avoid a mutual-close deadlock.
func (c *Connection) dispatchClosed(f frame) {
	mf, ok := f.(*methodFrame)
	if !ok {
		c.closeWith(ErrUnknownChannel)
		return
	}
	switch mf.Method.(type) {
	case *channelClose:
		c.send(&methodFrame{ChannelId: f.channel(), Method: &channelCloseOk{}})
	case *channelCloseOk:
	default:
		c.closeWith(ErrUnknownChannel)
	}
}

func (c *Connection) reader(r io.Reader) {
	buf := bufio.NewReader(r)
	fr := &reader{buf}
	deadliner, haveDeadliner := r.(readDeadliner)

	for {
		frame, err := fr.ReadFrame()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() && c.Config.Heartbeat > 0 {
				c.shutdown(&Error{Code: FrameError, Reason: "missed heartbeat"})
				return
			}
			c.shutdown(&Error{Code: FrameError, Reason: err.Error()})
			return
		}

		c.demux(frame)

		if haveDeadliner {
			select {
			case c.deadlines <- deadliner:
			default:
			}
		}
	}
}

// heartbeater sends an outbound heartbeat whenever the connection has been
// idle for interval/2 and closes the connection if no frame (including a
// peer heartbeat) has been read within 2*interval.
func (c *Connection) heartbeater(interval time.Duration, done chan *Error) {
	if interval <= 0 {
		return
	}

	const missedHeartbeatsAllowed = 2

	send := time.NewTicker(interval / 2)
	defer send.Stop()

	lastSent := time.Now()

	for {
		select {
		case at, ok := <-c.sends:
			if !ok {
				return
			}
			lastSent = at

		case at := <-send.C:
			if at.Sub(lastSent) >= interval/2 {
				if err := c.send(&heartbeatFrame{}); err != nil {
					return
				}
			}

		case deadliner := <-c.deadlines:
			deadliner.SetReadDeadline(time.Now().Add(missedHeartbeatsAllowed * interval))

		case <-done:
			return
		}
	}
}

func (c *Connection) call(req message, res ...message) error {
	if req != nil {
		if err := c.send(&methodFrame{ChannelId: 0, Method: req}); err != nil {
			return err
		}
	}

	select {
	case err := <-c.errors:
		return err
	case msg := <-c.rpc:
		for _, want := range res {
			if reflect.TypeOf(msg) == reflect.TypeOf(want) {
				reflect.ValueOf(want).Elem().Set(reflect.ValueOf(msg).Elem())
				return nil
			}
		}
		return ErrCommandInvalid
	}
}

func (c *Connection) open(config Config) error {
	if _, err := c.conn.Write([]byte("AMQP\x00\x00\x09\x01")); err != nil {
		return errors.Wrap(err, "amqp: failed writing protocol header")
	}
	return c.openStart(config)
}

func (c *Connection) openStart(config Config) error {
	start := &connectionStart{}
	if err := c.call(nil, start); err != nil {
		return err
	}

	c.Major = int(start.VersionMajor)
	c.Minor = int(start.VersionMinor)
	c.Properties = start.ServerProperties

	if len(config.SASL) == 0 {
		config.SASL = []Authentication{&PlainAuth{Username: defaultURI.Username, Password: defaultURI.Password}}
	}
	auth, ok := pickSASLMechanism(config.SASL, strings.Split(start.Mechanisms, " "))
	if !ok {
		return ErrSASL
	}
	c.Config.SASL = []Authentication{auth}

	return c.openTune(config, auth)
}

func (c *Connection) openTune(config Config, auth Authentication) error {
	if config.Locale == "" {
		config.Locale = defaultLocale
	}
	clientProps := Table{
		"product": "go-amqp091",
		"version": "1.0",
		"platform": "Go",
		"capabilities": Table{
			"connection.blocked":     true,
			"consumer_cancel_notify": true,
			"publisher_confirms":     true,
		},
	}
	for k, v := range config.Properties {
		clientProps[k] = v
	}

	ok := &connectionStartOk{
		ClientProperties: clientProps,
		Mechanism:        auth.Mechanism(),
		Response:         auth.Response(),
		Locale:           config.Locale,
	}

	tune := &connectionTune{}
	if err := c.call(ok, tune); err != nil {
		return ErrCredentials
	}

	clientChannelMax := config.ChannelMax
	if clientChannelMax <= 0 {
		clientChannelMax = defaultChannelMax
	}
	c.Config.ChannelMax = negotiate(clientChannelMax, int(tune.ChannelMax))

	clientFrameMax := config.FrameSize
	if clientFrameMax <= 0 {
		clientFrameMax = defaultFrameSize
	}
	c.Config.FrameSize = negotiate(clientFrameMax, int(tune.FrameMax))

	clientHeartbeat := config.Heartbeat
	if clientHeartbeat <= 0 {
		clientHeartbeat = defaultHeartbeat
	}
	negotiatedHeartbeat := time.Duration(negotiate(int(clientHeartbeat/time.Second), int(tune.Heartbeat))) * time.Second
	c.Config.Heartbeat = negotiatedHeartbeat

	c.allocator = newAllocator(1, c.Config.ChannelMax)

	go c.heartbeater(c.Config.Heartbeat, c.NotifyClose(make(chan *Error, 1)))

	if err := c.send(&methodFrame{
		ChannelId: 0,
		Method: &connectionTuneOk{
			ChannelMax: uint16(c.Config.ChannelMax),
			FrameMax:   uint32(c.Config.FrameSize),
			Heartbeat:  uint16(c.Config.Heartbeat / time.Second),
		},
	}); err != nil {
		return err
	}

	return c.openVhost(config)
}

func (c *Connection) openVhost(config Config) error {
	if config.Vhost == "" {
		config.Vhost = defaultURI.Vhost
	}
	req := &connectionOpen{VirtualHost: config.Vhost}
	res := &connectionOpenOk{}

	if err := c.call(req, res); err != nil {
		return ErrVhost
	}

	c.Config.Vhost = config.Vhost
	return nil
}

// negotiate applies AMQP 0.9.1's "0 means no limit" tuning rule: the
// negotiated value is min(client, server) except that 0 on either side
// means "no limit" and loses to any finite value.
func negotiate(client, server int) int {
	if client == 0 || server == 0 {
		if client > server {
			return client
		}
		return server
	}
	if client < server {
		return client
	}
	return server
}

func newConsumerTag() string {
	return "ctag-" + uuid.New().String()
}
