package treasury

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"fxconvert/internal/domain"

	"github.com/sirupsen/logrus"
)

// Client reads the rates of exchange dataset of the Treasury fiscal data API.
type Client struct {
	http   *http.Client
	url    string
	logger logrus.FieldLogger
}

type apiResponse struct {
	Data []json.RawMessage `json:"data"`
}

func (c *Client) URL() string { return c.url }

// FetchRecords downloads one page of rate records. Elements that cannot be
// decoded are dropped; the rest of the page is still returned.
func (c *Client) FetchRecords(ctx context.Context) ([]domain.RateRecord, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchRequest, Err: fmt.Errorf("failed to parse URL: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchRequest, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	c.logger.WithField("url", c.url).Debug("Requesting exchange rates")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Kind: classify(err), Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.FetchError{Kind: domain.FetchStatus, Err: fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, resp.Status)}
	}

	var body apiResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchDecode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if body.Data == nil {
		return nil, &domain.FetchError{Kind: domain.FetchDecode, Err: errors.New("response has no data field")}
	}

	records := make([]domain.RateRecord, 0, len(body.Data))
	for i, raw := range body.Data {
		var rec domain.RateRecord
		if err = json.Unmarshal(raw, &rec); err != nil {
			c.logger.WithError(err).WithField("index", i).Warn("Dropping undecodable rate record")
			continue
		}
		records = append(records, rec)
	}

	c.logger.WithField("records", len(records)).Debug("Exchange rates received")
	return records, nil
}

func classify(err error) domain.FetchErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.FetchTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.FetchTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return domain.FetchConnection
	}
	return domain.FetchRequest
}

// NewClient builds the request URL the same way the configuration describes
// it: base URL, endpoint and query string concatenated.
func NewClient(httpClient *http.Client, baseURL, endpoint, query string, logger logrus.FieldLogger) *Client {
	return &Client{http: httpClient, url: baseURL + endpoint + query, logger: logger}
}
