// Package storefront provides a client for the nemlig.com product-search
// gateway.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/shopper-cli/internal/model"
)

const defaultBaseURL = "https://webapi.prod.knl.nemlig.it/searchgateway/api"

// Client defines the search-gateway operations.
type Client interface {
	// Search returns up to limit products matching the query.
	Search(ctx context.Context, query string, limit int) ([]model.Product, error)
	// Suggestions returns query completions and category hints.
	Suggestions(ctx context.Context, query string) (*SuggestResponse, error)
}

// SuggestResponse holds quick-search completions for a partial query.
type SuggestResponse struct {
	Suggestions []string   `json:"Suggestions"`
	Categories  []Category `json:"Categories"`
}

// Category is a storefront category hint returned by quick search.
type Category struct {
	Name string `json:"Name"`
	URL  string `json:"Url"`
}

// searchResponse is the gateway's search envelope. Products nests a second
// Products list under a paging wrapper.
type searchResponse struct {
	Products struct {
		Products []gatewayProduct `json:"Products"`
	} `json:"Products"`
}

// productID tolerates the gateway emitting IDs as either JSON numbers or
// numeric strings.
type productID int64

func (id *productID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return eris.Wrap(err, "storefront: parse product id")
	}
	*id = productID(n)
	return nil
}

// gatewayProduct mirrors the gateway's PascalCase product record.
// Availability booleans are pointers; an absent field means available.
type gatewayProduct struct {
	ID            productID `json:"Id"`
	Name          string    `json:"Name"`
	Price         float64   `json:"Price"`
	UnitPrice     string    `json:"UnitPrice"`
	UnitPriceCalc float64   `json:"UnitPriceCalc"`
	Description   string    `json:"Description"`
	Brand         string    `json:"Brand"`
	Category      string    `json:"Category"`
	SubCategory   string    `json:"SubCategory"`
	Labels        []string  `json:"Labels"`
	Availability  struct {
		IsDeliveryAvailable *bool `json:"IsDeliveryAvailable"`
		IsAvailableInStock  *bool `json:"IsAvailableInStock"`
	} `json:"Availability"`
}

// Option configures the storefront client.
type Option func(*httpClient)

// WithBaseURL sets a custom gateway base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing requests per second. Zero or negative
// disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *breaker
}

// NewClient creates a search-gateway client. The gateway serves anonymous
// traffic, so no credentials are needed.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		limiter: rate.NewLimiter(3, 1),
		breaker: newBreaker(5, 30*time.Second),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) Search(ctx context.Context, query string, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("take", strconv.Itoa(limit))
	params.Set("skip", "0")
	params.Set("recipeCount", "0")
	params.Set("deliveryZoneId", "1")

	body, err := c.get(ctx, c.baseURL+"/search?"+params.Encode())
	if err != nil {
		return nil, eris.Wrapf(err, "storefront: search %q", query)
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "storefront: unmarshal search response")
	}

	products := make([]model.Product, 0, len(result.Products.Products))
	for i, item := range result.Products.Products {
		if i >= limit {
			break
		}
		products = append(products, item.toProduct())
	}
	return products, nil
}

func (c *httpClient) Suggestions(ctx context.Context, query string) (*SuggestResponse, error) {
	params := url.Values{}
	params.Set("query", query)

	body, err := c.get(ctx, c.baseURL+"/quick?"+params.Encode())
	if err != nil {
		return nil, eris.Wrapf(err, "storefront: suggestions %q", query)
	}

	var result SuggestResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "storefront: unmarshal suggestions response")
	}
	return &result, nil
}

// get performs a rate-limited GET with gateway headers and retries on
// transient failures. Content-Type is deliberately absent; the gateway
// rejects GET requests that carry it.
func (c *httpClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.breaker.allow(); err != nil {
		return nil, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("X-Correlation-Id", uuid.NewString())
	req.Header.Set("Origin", "https://www.nemlig.com")
	req.Header.Set("Referer", "https://www.nemlig.com/")

	body, statusCode, err := c.retryDo(ctx, req)
	if err != nil {
		c.breaker.record(true)
		return nil, err
	}
	// Client-side rejections (4xx other than 429) do not trip the breaker.
	c.breaker.record(retryableStatusCode(statusCode))
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("unexpected status %d: %s", statusCode, string(body))
	}
	return body, nil
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes an HTTP request with exponential backoff retries on
// transient failures (429, 500, 502, 503). Returns the response body and
// status code on success, or the last error after exhausting retries.
func (c *httpClient) retryDo(ctx context.Context, req *http.Request) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryReq := req.Clone(ctx)

		resp, err := c.http.Do(retryReq)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

// toProduct flattens a gateway record into the core product shape.
// Availability requires both delivery and stock; absent flags count as
// available.
func (p gatewayProduct) toProduct() model.Product {
	available := boolOrTrue(p.Availability.IsDeliveryAvailable) &&
		boolOrTrue(p.Availability.IsAvailableInStock)

	return model.Product{
		ID:            int64(p.ID),
		Name:          p.Name,
		Price:         p.Price,
		UnitPrice:     p.UnitPrice,
		UnitPriceCalc: p.UnitPriceCalc,
		UnitSize:      p.Description,
		Brand:         p.Brand,
		Category:      p.Category,
		Subcategory:   p.SubCategory,
		Available:     available,
		Labels:        p.Labels,
	}
}

func boolOrTrue(b *bool) bool {
	return b == nil || *b
}
