// Package gate holds the network availability checks evaluated before a sync
// run. Gates have no side effects and never cache a result.
package gate

import (
	"context"
	"net"
	"net/url"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/netx"
)

type Gate interface {
	IsAvailable(ctx context.Context) bool
}

// Func adapts a function to Gate.
type Func func(ctx context.Context) bool

func (f Func) IsAvailable(ctx context.Context) bool { return f(ctx) }

// Always reports the network as available.
var Always Gate = Func(func(context.Context) bool { return true })

// Dial probes a TCP address.
type Dial struct {
	Addr    string
	Timeout time.Duration
}

func (d Dial) IsAvailable(ctx context.Context) bool {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return netx.Reachable(ctx, d.Addr, timeout)
}

// DialURL returns a Dial gate for the host of a base URL, defaulting the port
// from the scheme.
func DialURL(rawURL string, timeout time.Duration) (Dial, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Dial{}, err
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return Dial{Addr: net.JoinHostPort(u.Hostname(), port), Timeout: timeout}, nil
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping treats a successful Ping as available.
type Ping struct {
	P Pinger
}

func (p Ping) IsAvailable(ctx context.Context) bool {
	return p.P.Ping(ctx) == nil
}

// All is available only when every gate is; it stops at the first failure.
func All(gates ...Gate) Gate {
	return Func(func(ctx context.Context) bool {
		for _, g := range gates {
			if !g.IsAvailable(ctx) {
				return false
			}
		}
		return true
	})
}
