// Package customsearch queries the Google Custom Search JSON API for job postings.
package customsearch

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/jobs"
	"github.com/spigell/job-recommender/internal/normalize"
	"github.com/spigell/job-recommender/internal/utils"
)

const (
	apiURL          = "https://www.googleapis.com/customsearch/v1"
	userAgent       = "spigell/job-recommender"
	contentEncoding = "gzip"
	// The API never returns more than 10 results per request.
	maxPerPage = 10
	// The API refuses start indexes past 100.
	maxStart = 100

	defaultTimeout = 15 * time.Second
	callName       = "job search request"
)

// maxBodySize caps a decoded response body. A search page is a few dozen kilobytes.
var maxBodySize int64 = 4 << 20

// Config holds the provider settings.
type Config struct {
	APIKey        string        `mapstructure:"api-key" json:"-"`
	EngineID      string        `mapstructure:"engine-id"`
	PerPage       int           `mapstructure:"results-per-page" validate:"gte=0,lte=10"`
	PagesPerQuery int           `mapstructure:"pages-per-query" validate:"gte=0,lte=10"`
	PageDelay     time.Duration `mapstructure:"page-delay"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// Client is a Custom Search JSON API client.
type Client struct {
	apiKey     string
	engineID   string
	perPage    int
	pages      int
	pageDelay  time.Duration
	timeout    time.Duration
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// New creates a client. Zero values in cfg fall back to one page of ten results and a
// fifteen second timeout per request.
func New(logger *zap.Logger, cfg Config) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PerPage <= 0 || cfg.PerPage > maxPerPage {
		cfg.PerPage = maxPerPage
	}
	if cfg.PagesPerQuery <= 0 {
		cfg.PagesPerQuery = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		apiKey:     cfg.APIKey,
		engineID:   cfg.EngineID,
		perPage:    cfg.PerPage,
		pages:      cfg.PagesPerQuery,
		pageDelay:  cfg.PageDelay,
		timeout:    cfg.Timeout,
		logger:     logger,
		HTTPClient: &http.Client{},
		UserAgent:  userAgent,
		APIURL:     apiURL,
	}
}

// Search fetches and decodes a single page for the query. The query page token is the
// 1-based start index of the page.
func (c *Client) Search(ctx context.Context, q jobs.Query) (*normalize.Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.URL.RawQuery = c.buildParams(q).Encode()

	c.logger.Debug("make request", zap.String("q", BuildSearchText(q)), zap.String("start", q.PageToken))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, c.wrapErr(err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, c.wrapErr(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &jobs.ProviderResponseError{
			Provider:   normalize.Provider,
			StatusCode: resp.StatusCode,
			Message:    apiErrorMessage(body, resp.Status),
		}
	}

	return normalize.Decode(body)
}

// SearchPages fetches up to the configured number of pages for the query, waiting the
// page delay between requests. An error on the first page fails the call. Errors on
// later pages are logged and the pages collected so far are returned.
func (c *Client) SearchPages(ctx context.Context, q jobs.Query) ([]normalize.Batch, error) {
	batches := make([]normalize.Batch, 0, c.pages)

	for page := 0; page < c.pages; page++ {
		if page > 0 {
			if err := utils.WaitFor(ctx, c.pageDelay); err != nil {
				return batches, err
			}
		}

		env, err := c.Search(ctx, q)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			c.logger.Warn("stopping pagination after failed page",
				zap.String("location", q.Location),
				zap.Int("page", page+1),
				zap.Error(err),
			)
			break
		}

		batches = append(batches, normalize.Batch{Query: q, Envelope: env})

		next, ok := nextToken(env.NextPageToken)
		if !ok || len(env.Items) == 0 {
			break
		}
		q.PageToken = next
	}

	return batches, nil
}

// BuildSearchText renders keywords as quoted alternatives followed by the location,
// e.g. `"go" OR "kubernetes" job openings in Berlin`.
func BuildSearchText(q jobs.Query) string {
	quoted := make([]string, 0, len(q.Keywords))
	for _, kw := range q.Keywords {
		kw = strings.TrimSpace(strings.ReplaceAll(kw, `"`, ""))
		if kw != "" {
			quoted = append(quoted, strconv.Quote(kw))
		}
	}

	text := strings.Join(quoted, " OR ") + " job openings"
	if location := strings.TrimSpace(q.Location); location != "" {
		text += " in " + location
	}
	return text
}

func (c *Client) buildParams(q jobs.Query) url.Values {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", BuildSearchText(q))
	params.Set("num", strconv.Itoa(c.perPage))
	params.Set("safe", "off")
	if q.PageToken != "" {
		params.Set("start", q.PageToken)
	}
	return params
}

func (c *Client) wrapErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if wrapped := jobs.WrapTimeout(callName, c.timeout, err); wrapped != err {
		return wrapped
	}
	return &jobs.ProviderResponseError{Provider: normalize.Provider, Message: "request failed", Cause: err}
}

func nextToken(token string) (string, bool) {
	start, err := strconv.Atoi(token)
	if err != nil || start <= 0 || start > maxStart {
		return "", false
	}
	return token, true
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > maxBodySize {
		return nil, fmt.Errorf("response body exceeds %d bytes", maxBodySize)
	}
	return body, nil
}

// apiErrorMessage extracts error.message from a Google API error body.
func apiErrorMessage(body []byte, status string) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return fmt.Sprintf("%s: %s", status, payload.Error.Message)
	}
	return status
}
