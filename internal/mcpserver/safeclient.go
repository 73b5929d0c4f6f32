package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"time"
)

const (
	urlDialTimeout    = 10 * time.Second
	urlRequestTimeout = 30 * time.Second
	urlMaxRedirects   = 5
)

// addrGuard keeps document URLs supplied by MCP clients from reaching hosts
// on the server's own network.
type addrGuard struct {
	lookup func(ctx context.Context, host string) ([]netip.Addr, error)
}

func defaultGuard() addrGuard {
	return addrGuard{lookup: func(ctx context.Context, host string) ([]netip.Addr, error) {
		return net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	}}
}

// blockedAddr reports whether a is private, loopback, link-local,
// multicast, or unspecified. IPv4-mapped IPv6 addresses are checked as IPv4.
func blockedAddr(a netip.Addr) bool {
	a = a.Unmap()
	return a.IsPrivate() || a.IsLoopback() || a.IsLinkLocalUnicast() ||
		a.IsLinkLocalMulticast() || a.IsMulticast() || a.IsUnspecified()
}

// resolve returns the addresses of host, failing if any of them is blocked.
func (g addrGuard) resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	addrs, err := g.lookup(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no IP addresses found for host: %s", host)
	}
	for _, a := range addrs {
		if blockedAddr(a) {
			return nil, fmt.Errorf("blocked request to private/loopback IP: %s resolves to %s", host, a)
		}
	}
	return addrs, nil
}

func (g addrGuard) dialContext(dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		addrs, err := g.resolve(ctx, host)
		if err != nil {
			return nil, err
		}
		// Dial the checked address rather than the name so a second lookup
		// cannot return something else.
		return dialer.DialContext(ctx, network, net.JoinHostPort(addrs[0].String(), port))
	}
}

func (g addrGuard) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= urlMaxRedirects {
		return fmt.Errorf("stopped after %d redirects", urlMaxRedirects)
	}
	_, err := g.resolve(req.Context(), req.URL.Hostname())
	return err
}

// newSafeHTTPClient returns the client used to fetch document URLs when
// ENFORCER_ALLOW_PRIVATE_IPS is not set.
func newSafeHTTPClient() *http.Client {
	return defaultGuard().client()
}

func (g addrGuard) client() *http.Client {
	return &http.Client{
		Timeout: urlRequestTimeout,
		Transport: &http.Transport{
			DialContext: g.dialContext(&net.Dialer{Timeout: urlDialTimeout}),
		},
		CheckRedirect: g.checkRedirect,
	}
}
