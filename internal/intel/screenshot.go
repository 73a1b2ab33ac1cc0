package intel

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Raju-kumar-vishwakarma/CyberShield-AI-sub001/internal/telemetry"
)

var ErrScreenshotNotConfigured = errors.New("screenshot provider key not configured")

// Viewport presets keyed by the device name the dashboard sends.
var deviceViewports = map[string]Viewport{
	"desktop": {Width: 1920, Height: 1080},
	"tablet":  {Width: 768, Height: 1024},
	"mobile":  {Width: 390, Height: 844},
}

type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Screenshot struct {
	ImageBase64 string   `json:"screenshot"`
	URL         string   `json:"url"`
	Device      string   `json:"device"`
	Viewport    Viewport `json:"viewport"`
}

type ScreenshotClient struct {
	httpClient *http.Client
	baseURL    string
	key        string
	registry   *telemetry.Registry
}

func NewScreenshotClient(key string, registry *telemetry.Registry) *ScreenshotClient {
	return &ScreenshotClient{
		httpClient: &http.Client{Timeout: 45 * time.Second},
		baseURL:    "https://api.screenshotone.com/take",
		key:        key,
		registry:   registry,
	}
}

func (c *ScreenshotClient) Configured() bool {
	return c.key != ""
}

func (c *ScreenshotClient) SetBaseURL(u string) {
	c.baseURL = u
}

// ViewportFor resolves a device name, defaulting to desktop.
func ViewportFor(device string) (string, Viewport) {
	if vp, ok := deviceViewports[device]; ok {
		return device, vp
	}
	return "desktop", deviceViewports["desktop"]
}

// Capture renders the page through the screenshot provider and returns the
// PNG as base64.
func (c *ScreenshotClient) Capture(ctx context.Context, pageURL string, fullPage bool, device string) (*Screenshot, error) {
	if !c.Configured() {
		return nil, ErrScreenshotNotConfigured
	}

	device, vp := ViewportFor(device)

	q := url.Values{}
	q.Set("access_key", c.key)
	q.Set("url", pageURL)
	q.Set("format", "png")
	q.Set("viewport_width", fmt.Sprintf("%d", vp.Width))
	q.Set("viewport_height", fmt.Sprintf("%d", vp.Height))
	if fullPage {
		q.Set("full_page", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.fail(err.Error())
		return nil, fmt.Errorf("screenshot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		c.fail(fmt.Sprintf("status %d", resp.StatusCode))
		return nil, fmt.Errorf("screenshot provider returned status %d: %s", resp.StatusCode, body)
	}

	image, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		c.fail("truncated image body")
		return nil, fmt.Errorf("failed to read screenshot body: %w", err)
	}

	if c.registry != nil {
		c.registry.RecordSuccess("screenshot", time.Since(start))
	}
	return &Screenshot{
		ImageBase64: base64.StdEncoding.EncodeToString(image),
		URL:         pageURL,
		Device:      device,
		Viewport:    vp,
	}, nil
}

func (c *ScreenshotClient) fail(msg string) {
	if c.registry != nil {
		c.registry.RecordFailure("screenshot", msg)
	}
}
