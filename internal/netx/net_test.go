package netx

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
		}
	}()

	assert.True(t, Reachable(context.Background(), addr, time.Second))

	require.NoError(t, ln.Close())
	assert.False(t, Reachable(context.Background(), addr, 200*time.Millisecond))
}

func TestReachable_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, Reachable(ctx, "127.0.0.1:1", time.Second))
}

func TestUniform(t *testing.T) {
	got := Uniform(3 * time.Second)
	assert.Equal(t, Timeouts{Connect: 3 * time.Second, Read: 3 * time.Second, Write: 3 * time.Second}, got)
}

func TestNewTransport_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	}))
	defer ts.Close()

	c := &http.Client{Transport: NewTransport(Uniform(time.Second))}
	resp, err := c.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(b))
}

func TestNewTransport_ReadTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	c := &http.Client{Transport: NewTransport(Timeouts{Connect: time.Second, Read: 100 * time.Millisecond})}
	_, err := c.Get(ts.URL)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "timeout"), "unexpected error: %v", err)
}
