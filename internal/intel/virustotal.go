package intel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/telemetry"
)

var ErrVTNotConfigured = errors.New("VirusTotal API key not configured")

// VTReport summarizes a file-hash lookup. Found is false when VirusTotal
// has never seen the hash — that is a clean outcome, not an error.
type VTReport struct {
	FileHash   string   `json:"fileHash"`
	Found      bool     `json:"found"`
	Malicious  int      `json:"malicious"`
	Suspicious int      `json:"suspicious"`
	Harmless   int      `json:"harmless"`
	Undetected int      `json:"undetected"`
	Names      []string `json:"names,omitempty"`
	TypeTag    string   `json:"type_tag,omitempty"`
	Reputation int      `json:"reputation"`
}

type VirusTotalClient struct {
	httpClient *http.Client
	baseURL    string
	key        string
	registry   *telemetry.Registry
}

func NewVirusTotalClient(key string, registry *telemetry.Registry) *VirusTotalClient {
	return &VirusTotalClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://www.virustotal.com/api/v3",
		key:        key,
		registry:   registry,
	}
}

func (c *VirusTotalClient) Configured() bool {
	return c.key != ""
}

// SetBaseURL points the client at a different API host. Tests use it.
func (c *VirusTotalClient) SetBaseURL(u string) {
	c.baseURL = u
}

type vtFileResponse struct {
	Data struct {
		Attributes struct {
			LastAnalysisStats struct {
				Malicious  int `json:"malicious"`
				Suspicious int `json:"suspicious"`
				Harmless   int `json:"harmless"`
				Undetected int `json:"undetected"`
			} `json:"last_analysis_stats"`
			Names      []string `json:"names"`
			TypeTag    string   `json:"type_tag"`
			Reputation int      `json:"reputation"`
		} `json:"attributes"`
	} `json:"data"`
}

func (c *VirusTotalClient) LookupHash(ctx context.Context, hash string) (*VTReport, error) {
	if !c.Configured() {
		return nil, ErrVTNotConfigured
	}

	url := fmt.Sprintf("%s/files/%s", c.baseURL, hash)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-apikey", c.key)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.fail(err.Error())
		return nil, fmt.Errorf("VirusTotal request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.ok(start)
		return &VTReport{FileHash: hash, Found: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		c.fail(fmt.Sprintf("status %d", resp.StatusCode))
		return nil, fmt.Errorf("VirusTotal returned status %d: %s", resp.StatusCode, body)
	}

	var parsed vtFileResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.fail("unparsable response")
		return nil, fmt.Errorf("failed to parse VirusTotal response: %w", err)
	}

	attrs := parsed.Data.Attributes
	names := attrs.Names
	if len(names) > 5 {
		names = names[:5]
	}

	c.ok(start)
	return &VTReport{
		FileHash:   hash,
		Found:      true,
		Malicious:  attrs.LastAnalysisStats.Malicious,
		Suspicious: attrs.LastAnalysisStats.Suspicious,
		Harmless:   attrs.LastAnalysisStats.Harmless,
		Undetected: attrs.LastAnalysisStats.Undetected,
		Names:      names,
		TypeTag:    attrs.TypeTag,
		Reputation: attrs.Reputation,
	}, nil
}

func (c *VirusTotalClient) ok(start time.Time) {
	if c.registry != nil {
		c.registry.RecordSuccess("virustotal", time.Since(start))
	}
}

func (c *VirusTotalClient) fail(msg string) {
	if c.registry != nil {
		c.registry.RecordFailure("virustotal", msg)
	}
}
