package validators

import (
	"context"
	"net"
	"strings"
	"time"
)

const lookupTimeout = 2 * time.Second

// resolver is swapped in tests.
var resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
} = net.DefaultResolver

// EmailDomain returns the part after the last '@', lower-cased.
func EmailDomain(email string) (string, bool) {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", false
	}
	return strings.ToLower(email[at+1:]), true
}

// IsEmailDomainValid accepts a domain that publishes MX records or, failing
// that, resolves to an address.
func IsEmailDomainValid(email string) bool {
	domain, ok := EmailDomain(email)
	if !ok {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	if mx, err := resolver.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}
	if ips, err := resolver.LookupIPAddr(ctx, domain); err == nil && len(ips) > 0 {
		return true
	}
	return false
}
