package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/estatelens/backend/internal/domain"
)

const (
	defaultAuthURL = "https://api.ebay.com/identity/v1/oauth2/token"
	defaultBaseURL = "https://api.ebay.com/buy/browse/v1"

	oauthScope  = "https://api.ebay.com/oauth/api_scope"
	marketplace = "EBAY_US"

	// tokenExpirySlack refreshes the token when it is within this window of
	// expiring, so an in-flight request never carries a just-expired token.
	tokenExpirySlack = 60 * time.Second

	// defaultTokenTTL applies when the provider omits expires_in.
	defaultTokenTTL = 7200 * time.Second

	maxSearchLimit = 200
)

// Config holds credentials and endpoints for the eBay Browse API client.
// AuthURL and BaseURL default to the production endpoints when empty.
type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	BaseURL      string
}

// Client talks to the eBay Browse API for sold-listing searches. The OAuth
// token is cached per client instance and refreshed transparently; callers
// share one client and must Close it when done.
type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	authURL      string
	baseURL      string
	rateLimiter  *rate.Limiter

	// tokenMu serializes refresh-if-expired so concurrent callers never
	// perform two simultaneous token requests.
	tokenMu        sync.Mutex
	token          string
	tokenExpiresAt time.Time
}

// NewClient creates an eBay Browse API client.
func NewClient(cfg Config) *Client {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = defaultAuthURL
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	// Browse API application quota is 5000 calls per day,
	// 5000/86400 ≈ 0.058 requests/sec with a small burst for a scan.
	limiter := rate.NewLimiter(rate.Limit(0.058), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		authURL:      authURL,
		baseURL:      baseURL,
		rateLimiter:  limiter,
	}
}

// getToken returns a valid bearer token, requesting a fresh one when the
// cached token is absent or within tokenExpirySlack of expiry.
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	now := time.Now()
	if c.token != "" && c.tokenExpiresAt.After(now.Add(tokenExpirySlack)) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", oauthScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEbayAuthFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d, body: %s", domain.ErrEbayAuthFailure, resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("%w: decoding token response: %v", domain.ErrEbayAuthFailure, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", domain.ErrEbayAuthFailure)
	}

	ttl := defaultTokenTTL
	if tok.ExpiresIn > 0 {
		ttl = time.Duration(tok.ExpiresIn) * time.Second
	}

	c.token = tok.AccessToken
	c.tokenExpiresAt = now.Add(ttl)
	return c.token, nil
}

// SearchSold performs one bounded sold-listings search. A failed call is
// reported to the caller as an error, not silently retried.
func (c *Client) SearchSold(ctx context.Context, query string, limit int, categoryIDs []string) ([]domain.SoldListing, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	token, err := c.getToken(ctx)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 20
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort", "newlyListed")
	params.Set("filter", "buyingOptions:{FIXED_PRICE|AUCTION},conditions:{NEW|USED|VERY_GOOD|GOOD|ACCEPTABLE}")
	if len(categoryIDs) > 0 {
		params.Set("category_ids", strings.Join(categoryIDs, ","))
	}

	reqURL := fmt.Sprintf("%s/item_summary/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", marketplace)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEbayAPIFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrEbayAPIFailure, resp.StatusCode, string(body))
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("%w: decoding search response: %v", domain.ErrEbayAPIFailure, err)
	}

	return mapListings(search.ItemSummaries), nil
}

// SearchWithBroadening searches with progressive query relaxation when the
// exact query is too narrow. The ladder favors precision first, then
// brand/category generalization, then raw term truncation; each step is
// tried only when the previous one under-delivered. Zero results is a valid
// terminal state, paired with the original primary query.
func (c *Client) SearchWithBroadening(ctx context.Context, primaryQuery, brand, category string, threshold, limit int) ([]domain.SoldListing, string, error) {
	results, err := c.SearchSold(ctx, primaryQuery, limit, nil)
	if err != nil {
		return nil, "", err
	}
	if len(results) >= threshold {
		return results, primaryQuery, nil
	}

	if brand != "" && category != "" {
		broaderQuery := brand + " " + category
		log.Printf("[EBAY] Broadening %q -> %q", primaryQuery, broaderQuery)
		results, err = c.SearchSold(ctx, broaderQuery, limit, nil)
		if err != nil {
			return nil, "", err
		}
		if len(results) >= threshold {
			return results, broaderQuery, nil
		}
	}

	if category != "" {
		terms := strings.Fields(primaryQuery)
		if len(terms) > 3 {
			shorterQuery := strings.Join(terms[:3], " ")
			log.Printf("[EBAY] Broadening %q -> %q", primaryQuery, shorterQuery)
			results, err = c.SearchSold(ctx, shorterQuery, limit, nil)
			if err != nil {
				return nil, "", err
			}
			// Truncation is the last resort; any comps at all beat none.
			if len(results) > 0 {
				return results, shorterQuery, nil
			}
		}
	}

	return results, primaryQuery, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
