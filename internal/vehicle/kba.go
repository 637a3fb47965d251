package vehicle

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var (
	ErrNotConfigured = errors.New("vehicle lookup is not configured")
	ErrInvalidCode   = errors.New("invalid HSN/TSN")
	ErrNotFound      = errors.New("no vehicle data for this HSN/TSN")
	ErrUpstream      = errors.New("vehicle lookup service failed")
)

var (
	hsnPattern = regexp.MustCompile(`^[0-9]{4}$`)
	tsnPattern = regexp.MustCompile(`^[A-Z0-9]{3}$`)
)

// NormalizeCode upper-cases and checks a HSN (4 digits) and TSN
// (3 characters) pair.
func NormalizeCode(hsn, tsn string) (string, string, error) {
	hsn = strings.TrimSpace(hsn)
	tsn = strings.ToUpper(strings.TrimSpace(tsn))
	if !hsnPattern.MatchString(hsn) || !tsnPattern.MatchString(tsn) {
		return "", "", ErrInvalidCode
	}
	return hsn, tsn, nil
}

// KBAClient queries the CheckGermany endpoint of kbaapi.de.
type KBAClient struct {
	baseURL  string
	username string
	http     *http.Client
}

func NewKBAClient(baseURL, username string, hc *http.Client) *KBAClient {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &KBAClient{baseURL: baseURL, username: username, http: hc}
}

type kbaEnvelope struct {
	VehicleJSON string `xml:"vehicleJson"`
}

// Fetch returns the decoded vehicleJson document for hsn/tsn.
func (c *KBAClient) Fetch(ctx context.Context, hsn, tsn string) (Record, error) {
	if c.username == "" || c.baseURL == "" {
		return Record{}, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("KBANumber", hsn+"/"+tsn)
	q.Set("username", c.username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Record{}, fmt.Errorf("build kba request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Record{}, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	if resp.StatusCode/100 != 2 {
		// the service answers 500 with a plain text message for unknown codes
		if bytes.Contains(bytes.ToLower(body), []byte("no vehicle")) || resp.StatusCode == http.StatusNotFound {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var env kbaEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return Record{}, fmt.Errorf("%w: parse xml: %v", ErrUpstream, err)
	}
	if strings.TrimSpace(env.VehicleJSON) == "" {
		return Record{}, ErrNotFound
	}

	var rec Record
	if err := json.Unmarshal([]byte(env.VehicleJSON), &rec); err != nil {
		return Record{}, fmt.Errorf("%w: parse vehicleJson: %v", ErrUpstream, err)
	}
	return rec, nil
}
