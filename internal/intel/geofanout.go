package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// GeoResult is the merged view of the independent geolocation sources.
type GeoResult struct {
	IP      string `json:"ip"`
	Country string `json:"country"`
	City    string `json:"city"`
	Region  string `json:"region"`
	ISP     string `json:"isp"`
	Org     string `json:"org"`
	Loc     string `json:"loc"`
	Sources []string `json:"sources"`
}

type ipAPIResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	City    string `json:"city"`
	Region  string `json:"regionName"`
	ISP     string `json:"isp"`
	Org     string `json:"org"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

var ipAPIBaseURL = "http://ip-api.com/json"

// SetIPAPIBaseURL points the ip-api lookup at a different endpoint.
func SetIPAPIBaseURL(u string) {
	ipAPIBaseURL = u
}

var geoHTTPClient = &http.Client{Timeout: 10 * time.Second}

// Geolocate races the ipinfo and ip-api lookups and merges whichever
// succeeded. Both failing still yields a result carrying just the IP —
// individual source failures are tolerated, not propagated.
func Geolocate(ctx context.Context, ip string, ipinfo *IPInfoClient) GeoResult {
	result := GeoResult{IP: ip}

	var wg sync.WaitGroup
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		info, err := ipinfo.Lookup(ctx, ip)
		if err != nil || info == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		result.Country = info.Country
		result.City = info.City
		result.Region = info.Region
		result.Org = info.Org
		result.Loc = info.Loc
		result.Sources = append(result.Sources, "ipinfo")
	}()

	go func() {
		defer wg.Done()
		parsed, err := fetchIPAPI(ctx, ip)
		if err != nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if result.Country == "" {
			result.Country = parsed.Country
		}
		if result.City == "" {
			result.City = parsed.City
		}
		if result.Region == "" {
			result.Region = parsed.Region
		}
		result.ISP = parsed.ISP
		if result.Org == "" {
			result.Org = parsed.Org
		}
		if result.Loc == "" && (parsed.Lat != 0 || parsed.Lon != 0) {
			result.Loc = fmt.Sprintf("%.4f,%.4f", parsed.Lat, parsed.Lon)
		}
		result.Sources = append(result.Sources, "ip-api")
	}()

	wg.Wait()
	return result
}

func fetchIPAPI(ctx context.Context, ip string) (*ipAPIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", ipAPIBaseURL, ip), nil)
	if err != nil {
		return nil, err
	}

	resp, err := geoHTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ip-api: unexpected status %d", resp.StatusCode)
	}

	var parsed ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if parsed.Status != "success" {
		return nil, fmt.Errorf("ip-api: lookup failed for %s", ip)
	}
	return &parsed, nil
}
