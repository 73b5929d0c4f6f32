package mcpserver

import (
	"context"
	"errors"
	"net/http"
	"net/netip"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockedAddr(t *testing.T) {
	tests := map[string]bool{
		"127.0.0.1":        true,
		"10.0.0.1":         true,
		"172.16.0.1":       true,
		"192.168.1.1":      true,
		"169.254.1.1":      true,
		"224.0.0.1":        true,
		"::1":              true,
		"0.0.0.0":          true,
		"::":               true,
		"fe80::1":          true,
		"fd00::1":          true,
		"::ffff:127.0.0.1": true,
		"8.8.8.8":          false,
		"1.1.1.1":          false,
		"2606:4700::1111":  false,
	}
	for ip, want := range tests {
		t.Run(ip, func(t *testing.T) {
			assert.Equal(t, want, blockedAddr(netip.MustParseAddr(ip)))
		})
	}
}

func fixedGuard(hosts map[string][]string) addrGuard {
	return addrGuard{lookup: func(_ context.Context, host string) ([]netip.Addr, error) {
		list, ok := hosts[host]
		if !ok {
			return nil, errors.New("no such host: " + host)
		}
		addrs := make([]netip.Addr, len(list))
		for i, s := range list {
			addrs[i] = netip.MustParseAddr(s)
		}
		return addrs, nil
	}}
}

func TestAddrGuardResolve(t *testing.T) {
	g := fixedGuard(map[string][]string{
		"public.example":   {"93.184.216.34"},
		"internal.example": {"10.1.2.3"},
		"mixed.example":    {"93.184.216.34", "127.0.0.1"},
		"empty.example":    {},
	})
	ctx := context.Background()

	addrs, err := g.resolve(ctx, "public.example")
	require.NoError(t, err)
	assert.Equal(t, []netip.Addr{netip.MustParseAddr("93.184.216.34")}, addrs)

	_, err = g.resolve(ctx, "internal.example")
	assert.ErrorContains(t, err, "blocked request to private/loopback IP: internal.example resolves to 10.1.2.3")

	_, err = g.resolve(ctx, "mixed.example")
	assert.ErrorContains(t, err, "127.0.0.1")

	_, err = g.resolve(ctx, "empty.example")
	assert.ErrorContains(t, err, "no IP addresses found")

	_, err = g.resolve(ctx, "missing.example")
	assert.ErrorContains(t, err, "no such host")
}

func TestAddrGuardCheckRedirect(t *testing.T) {
	g := fixedGuard(map[string][]string{
		"public.example":   {"93.184.216.34"},
		"internal.example": {"192.168.0.10"},
	})
	req := func(raw string) *http.Request {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		return (&http.Request{URL: u}).WithContext(context.Background())
	}

	assert.NoError(t, g.checkRedirect(req("https://public.example/api.yaml"), nil))
	assert.ErrorContains(t, g.checkRedirect(req("http://internal.example/api.yaml"), nil), "192.168.0.10")

	via := make([]*http.Request, urlMaxRedirects)
	assert.ErrorContains(t, g.checkRedirect(req("https://public.example/api.yaml"), via), "stopped after 5 redirects")
}

func TestNewSafeHTTPClient(t *testing.T) {
	client := newSafeHTTPClient()
	assert.Equal(t, urlRequestTimeout, client.Timeout)
	assert.NotNil(t, client.CheckRedirect)
	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.NotNil(t, transport.DialContext)
}
