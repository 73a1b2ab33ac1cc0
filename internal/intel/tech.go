package intel

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/dnsclient"

	wappalyzergo "github.com/projectdiscovery/wappalyzergo"
)

// FingerprintTechnologies fetches the domain homepage (HTTPS first, HTTP
// as fallback) and fingerprints the stack from headers and body. Failures
// return an empty list — tech detection only enriches reputation results.
func FingerprintTechnologies(ctx context.Context, domain string) []string {
	wappalyzer, err := wappalyzergo.New()
	if err != nil {
		slog.Warn("wappalyzer init failed", "error", err)
		return nil
	}

	httpClient := dnsclient.NewSafeHTTPClient(10 * time.Second)

	for _, scheme := range []string{"https://", "http://"} {
		resp, err := httpClient.Get(ctx, scheme+domain)
		if err != nil {
			continue
		}
		body, err := httpClient.ReadBody(resp, 2<<20)
		if err != nil {
			continue
		}

		fingerprints := wappalyzer.Fingerprint(resp.Header, body)
		techs := make([]string, 0, len(fingerprints))
		for name := range fingerprints {
			techs = append(techs, name)
		}
		sort.Strings(techs)
		return techs
	}

	return nil
}
