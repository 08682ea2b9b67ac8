package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newsobserver/internal/domain"
	"newsobserver/internal/logging"
	"newsobserver/internal/ports"
)

const defaultBaseURL = "https://newsapi.org/v2"

// Config points the client at a NewsAPI-compatible endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Country string
	Timeout time.Duration
}

// Client fetches top headlines from NewsAPI.
type Client struct {
	baseURL string
	apiKey  string
	country string
	http    *http.Client
	logger  *slog.Logger
}

var _ ports.HeadlineSource = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets cfg.Timeout (20s by default).
func NewClient(cfg Config, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	base := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	country := cfg.Country
	if country == "" {
		country = "us"
	}
	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		country: country,
		http:    client,
		logger:  logging.Resolve(logger),
	}
}

type headlinesResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string  `json:"title"`
		URL         string  `json:"url"`
		Description *string `json:"description"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// TopHeadlines returns the current top headlines in feed order.
func (c *Client) TopHeadlines(ctx context.Context) ([]domain.Headline, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("newsapi: api key is not configured")
	}

	endpoint, err := c.buildURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "NewsObserver/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request headlines: %w", err)
	}
	defer resp.Body.Close()

	var body headlinesResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && body.Message != "" {
			return nil, fmt.Errorf("newsapi returned %s: %s", resp.Status, body.Message)
		}
		return nil, fmt.Errorf("newsapi returned %s", resp.Status)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode headlines: %w", decodeErr)
	}
	if body.Status != "" && body.Status != "ok" {
		return nil, fmt.Errorf("newsapi status %s: %s", body.Status, body.Message)
	}

	headlines := make([]domain.Headline, 0, len(body.Articles))
	for _, item := range body.Articles {
		description := ""
		if item.Description != nil {
			description = plainText(*item.Description)
		}
		headlines = append(headlines, domain.Headline{
			Title:       strings.TrimSpace(item.Title),
			URL:         strings.TrimSpace(item.URL),
			Description: description,
			SourceName:  strings.TrimSpace(item.Source.Name),
		})
	}

	c.logger.Debug("headlines fetched", "count", len(headlines))
	return headlines, nil
}

func (c *Client) buildURL() (string, error) {
	parsed, err := url.Parse(c.baseURL + "/top-headlines")
	if err != nil {
		return "", fmt.Errorf("invalid newsapi url %s: %w", c.baseURL, err)
	}
	query := parsed.Query()
	query.Set("country", c.country)
	query.Set("apiKey", c.apiKey)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// plainText strips markup some publishers leave in descriptions.
func plainText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.ContainsAny(raw, "<&") {
		return raw
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
