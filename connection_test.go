// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import (
	"bufio"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serverReadFrame and serverWriteFrame let a test drive the broker side of
// a net.Pipe without going through a full Connection.
func serverReadFrame(t *testing.T, conn net.Conn) frame {
	t.Helper()
	fr, err := (&reader{bufio.NewReader(conn)}).ReadFrame()
	require.NoError(t, err)
	return fr
}

func serverWriteFrame(t *testing.T, conn net.Conn, f frame) {
	t.Helper()
	require.NoError(t, f.write(conn))
}

// handshakeServer performs the broker side of connection.open against conn,
// then returns. It runs in its own goroutine so the client side of Open can
// proceed concurrently.
func handshakeServer(t *testing.T, conn net.Conn) {
	t.Helper()

	var header [8]byte
	_, err := io.ReadFull(conn, header[:])
	require.NoError(t, err)

	serverWriteFrame(t, conn, &methodFrame{ChannelId: 0, Method: &connectionStart{
		VersionMajor:     0,
		VersionMinor:     9,
		ServerProperties: Table{"capabilities": Table{"consumer_cancel_notify": true}},
		Mechanisms:       "PLAIN",
		Locales:          "en_US",
	}})

	startOk := serverReadFrame(t, conn).(*methodFrame).Method.(*connectionStartOk)
	assert.Equal(t, "PLAIN", startOk.Mechanism)

	serverWriteFrame(t, conn, &methodFrame{ChannelId: 0, Method: &connectionTune{
		ChannelMax: 2047,
		FrameMax:   4096,
		Heartbeat:  0,
	}})

	serverReadFrame(t, conn) // connection.tune-ok, no reply expected

	open := serverReadFrame(t, conn).(*methodFrame).Method.(*connectionOpen)
	assert.Equal(t, "/", open.VirtualHost)

	serverWriteFrame(t, conn, &methodFrame{ChannelId: 0, Method: &connectionOpenOk{}})
}

// dialFake opens a Connection over an in-memory net.Pipe against a
// handshakeServer goroutine, returning the client Connection and the
// server's side of the pipe for further scripting.
func dialFake(t *testing.T) (*Connection, net.Conn) {
	t.Helper()

	client, server := net.Pipe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		handshakeServer(t, server)
	}()

	conn, err := Open(client, Config{})
	require.NoError(t, err)
	<-done

	return conn, server
}

func TestOpenNegotiatesTuneParameters(t *testing.T) {
	conn, server := dialFake(t)
	defer server.Close()

	assert.Equal(t, 2047, conn.Config.ChannelMax)
	assert.Equal(t, 4096, conn.Config.FrameSize)
	assert.Equal(t, "/", conn.Config.Vhost)
	assert.True(t, conn.IsCapable("consumer_cancel_notify"))
	assert.False(t, conn.IsCapable("nonexistent"))
}

func TestConnectionCloseIsGraceful(t *testing.T) {
	conn, server := dialFake(t)
	defer server.Close()

	closeDone := make(chan struct{})
	go func() {
		defer close(closeDone)
		f := serverReadFrame(t, server).(*methodFrame)
		_, ok := f.Method.(*connectionClose)
		require.True(t, ok)
		serverWriteFrame(t, server, &methodFrame{ChannelId: 0, Method: &connectionCloseOk{}})
	}()

	require.NoError(t, conn.Close())
	<-closeDone
	assert.True(t, conn.isClosed())
}

func TestConnectionNotifyCloseFiresOnServerClose(t *testing.T) {
	conn, server := dialFake(t)
	defer server.Close()

	notify := conn.NotifyClose(make(chan *Error, 1))

	// net.Pipe has no buffer: drain the client's connection.close-ok so its
	// write can complete.
	go io.Copy(io.Discard, server)

	serverWriteFrame(t, server, &methodFrame{ChannelId: 0, Method: &connectionClose{
		ReplyCode: InternalError,
		ReplyText: "boom",
	}})

	select {
	case err := <-notify:
		require.NotNil(t, err)
		assert.Equal(t, InternalError, err.Code)
		assert.Equal(t, "boom", err.Reason)
	case <-time.After(2 * time.Second):
		t.Fatal("NotifyClose never fired")
	}
}

func TestConnectionChannelOpensWithFirstChannelId(t *testing.T) {
	conn, server := dialFake(t)
	defer server.Close()

	go func() {
		f := serverReadFrame(t, server).(*methodFrame)
		_, ok := f.Method.(*channelOpen)
		require.True(t, ok)
		serverWriteFrame(t, server, &methodFrame{ChannelId: f.ChannelId, Method: &channelOpenOk{}})
	}()

	ch, err := conn.Channel()
	require.NoError(t, err)
	assert.EqualValues(t, 1, ch.id)
}

func TestUnknownChannelMethodFrameClosesConnectionWith506(t *testing.T) {
	conn, server := dialFake(t)
	defer server.Close()

	notify := conn.NotifyClose(make(chan *Error, 1))

	// net.Pipe has no buffer: drain the client's connection.close so its
	// write can complete.
	go io.Copy(io.Discard, server)

	// channel 7 was never opened.
	serverWriteFrame(t, server, &methodFrame{ChannelId: 7, Method: &channelFlowOk{Active: true}})

	select {
	case err := <-notify:
		require.NotNil(t, err)
		assert.Equal(t, ResourceError, err.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("connection never closed on frame for unknown channel")
	}
}

func TestUnknownChannelBodyFrameClosesConnectionWith506(t *testing.T) {
	conn, server := dialFake(t)
	defer server.Close()

	notify := conn.NotifyClose(make(chan *Error, 1))

	// net.Pipe has no buffer: drain the client's connection.close so its
	// write can complete.
	go io.Copy(io.Discard, server)

	// a header/body frame for a channel id the client never opened must
	// also close the connection, not be silently dropped.
	serverWriteFrame(t, server, &bodyFrame{ChannelId: 7, Body: []byte("orphaned")})

	select {
	case err := <-notify:
		require.NotNil(t, err)
		assert.Equal(t, ResourceError, err.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("connection never closed on body frame for unknown channel")
	}
}

func TestNegotiateZeroMeansNoLimit(t *testing.T) {
	assert.Equal(t, 10, negotiate(10, 0))
	assert.Equal(t, 10, negotiate(0, 10))
	assert.Equal(t, 0, negotiate(0, 0))
	assert.Equal(t, 5, negotiate(5, 10))
	assert.Equal(t, 5, negotiate(10, 5))
}
