package dnsclient

import (
	"context"
	"time"
)

const probeTimeout = 5 * time.Second

// DomainResolves reports whether the domain answers an A query at all.
// Used to decide whether an analysis result is worth persisting.
func (c *Client) DomainResolves(ctx context.Context, domain string) bool {
	exists, _ := c.ProbeExists(ctx, domain)
	return exists
}

// EmailDomainAnswers checks that the domain behind an email address is
// real: MX records count as proof; otherwise an HTTPS probe is tried and,
// when that fails, plain HTTP, each within the probe timeout. Only a
// domain that fails all three is treated as nonexistent.
func (c *Client) EmailDomainAnswers(ctx context.Context, domain string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if mx := c.QueryDNS(ctx, "MX", domain); len(mx) > 0 {
		return true
	}

	httpClient := NewSafeHTTPClient(probeTimeout)
	for _, scheme := range []string{"https://", "http://"} {
		resp, err := httpClient.Head(ctx, scheme+domain)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode < 500 {
			return true
		}
	}

	return c.DomainResolves(ctx, domain)
}
