package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tieubaoca/rag-be/types"
	"github.com/tieubaoca/rag-be/utils"
)

const (
	confluencePageLimit   = 50
	confluenceExpand      = "body.storage,version,history,metadata.labels"
	confluenceHTTPTimeout = 30 * time.Second
)

// ConfluenceConnector fetches pages from Confluence Cloud over the REST API.
// Requests are rate limited and retried before a page listing is abandoned.
type ConfluenceConnector struct {
	baseURL  string
	username string
	apiToken string
	spaces   []string
	client   *http.Client
	limiter  *rate.Limiter
	retryCfg utils.RetryConfig
}

var _ Connector = (*ConfluenceConnector)(nil)

func NewConfluenceConnector(baseURL, username, apiToken string, spaces []string, requestsPerSecond float64) *ConfluenceConnector {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5.0
	}
	return &ConfluenceConnector{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		apiToken: apiToken,
		spaces:   spaces,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		retryCfg: utils.DefaultRetryConfig,
	}
}

func (c *ConfluenceConnector) SourceName() string {
	return "confluence"
}

// Connect creates the HTTP session and verifies credentials against the
// space listing endpoint.
func (c *ConfluenceConnector) Connect(ctx context.Context) error {
	c.client = &http.Client{Timeout: confluenceHTTPTimeout}
	if _, err := c.makeRequest(ctx, "/rest/api/space", url.Values{"limit": {"1"}}); err != nil {
		c.client = nil
		return fmt.Errorf("failed to connect to Confluence at %s: %v", c.baseURL, err)
	}
	log.Printf("Successfully connected to Confluence at %s", c.baseURL)
	return nil
}

// FetchAllDocuments walks every configured space. A space that fails is
// logged and skipped; the remaining spaces still contribute documents.
func (c *ConfluenceConnector) FetchAllDocuments(ctx context.Context) ([]types.Document, error) {
	if c.client == nil {
		return nil, fmt.Errorf("confluence connector is not connected")
	}
	var documents []types.Document
	for _, spaceKey := range c.spaces {
		docs, err := c.fetchSpaceDocuments(ctx, spaceKey)
		if err != nil {
			log.Printf("Error fetching from space %s: %v", spaceKey, err)
			continue
		}
		log.Printf("Fetched %d documents from space %s", len(docs), spaceKey)
		documents = append(documents, docs...)
	}
	log.Printf("Fetched %d documents total from Confluence", len(documents))
	return documents, nil
}

// fetchSpaceDocuments pages through a space until the listing is exhausted.
// A mid-listing failure returns the pages collected so far along with nil;
// only a failure on the very first page surfaces as an error.
func (c *ConfluenceConnector) fetchSpaceDocuments(ctx context.Context, spaceKey string) ([]types.Document, error) {
	var documents []types.Document
	start := 0
	for {
		params := url.Values{
			"spaceKey": {spaceKey},
			"start":    {fmt.Sprintf("%d", start)},
			"limit":    {fmt.Sprintf("%d", confluencePageLimit)},
			"expand":   {confluenceExpand},
		}
		body, err := c.makeRequest(ctx, "/rest/api/content", params)
		if err != nil {
			if len(documents) == 0 {
				return nil, err
			}
			log.Printf("Error listing space %s at offset %d, keeping %d documents: %v", spaceKey, start, len(documents), err)
			return documents, nil
		}

		var page contentListResponse
		if err := json.Unmarshal(body, &page); err != nil {
			if len(documents) == 0 {
				return nil, fmt.Errorf("failed to decode content listing: %v", err)
			}
			log.Printf("Error decoding space %s listing at offset %d, keeping %d documents: %v", spaceKey, start, len(documents), err)
			return documents, nil
		}
		if len(page.Results) == 0 {
			break
		}
		for _, raw := range page.Results {
			documents = append(documents, c.parsePage(raw, spaceKey))
		}
		if page.Links.Next == "" {
			break
		}
		start += confluencePageLimit
	}
	return documents, nil
}

// makeRequest performs a rate-limited GET with retries. Any status outside
// 2xx counts as a failure so transient 429s and 5xxs go through the retry
// schedule.
func (c *ConfluenceConnector) makeRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	requestURL := c.baseURL + "/" + strings.TrimPrefix(endpoint, "/")
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}
	var body []byte
	err := utils.Retry(ctx, c.retryCfg, fmt.Sprintf("GET %s", endpoint), func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return err
		}
		req.SetBasicAuth(c.username, c.apiToken)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// parsePage maps a Confluence content entry onto the internal document type.
func (c *ConfluenceConnector) parsePage(page confluencePage, spaceKey string) types.Document {
	title := page.Title
	if title == "" {
		title = "Untitled"
	}
	author := page.History.CreatedBy.DisplayName
	if author == "" {
		author = page.Version.By.DisplayName
	}
	if author == "" {
		author = "Unknown"
	}
	versionNumber := page.Version.Number
	if versionNumber == 0 {
		versionNumber = 1
	}
	var tags []string
	for _, label := range page.Metadata.Labels.Results {
		if label.Name != "" {
			tags = append(tags, label.Name)
		}
	}

	return types.Document{
		ID:           "confluence_" + page.ID,
		Title:        title,
		Content:      htmlToText(page.Body.Storage.Value),
		URL:          c.pageURL(spaceKey, page.ID),
		Author:       author,
		Source:       "confluence",
		CreatedDate:  page.History.CreatedDate,
		ModifiedDate: page.Version.When,
		Tags:         tags,
		Metadata: types.Metadata{
			"space_key": types.StringValue(spaceKey),
			"page_id":   types.StringValue(page.ID),
			"version":   types.NumberValue(float64(versionNumber)),
		},
	}
}

// pageURL resolves the human-facing page link against the site origin, so a
// base URL carrying a path like /wiki still yields an origin-rooted link.
func (c *ConfluenceConnector) pageURL(spaceKey, pageID string) string {
	ref := &url.URL{Path: fmt.Sprintf("/spaces/%s/pages/%s", spaceKey, pageID)}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return ref.Path
	}
	return base.ResolveReference(ref).String()
}

type contentListResponse struct {
	Results []confluencePage `json:"results"`
	Links   struct {
		Next string `json:"next"`
	} `json:"_links"`
}

type confluencePage struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
	Version struct {
		Number int    `json:"number"`
		When   string `json:"when"`
		By     struct {
			DisplayName string `json:"displayName"`
		} `json:"by"`
	} `json:"version"`
	History struct {
		CreatedDate string `json:"createdDate"`
		CreatedBy   struct {
			DisplayName string `json:"displayName"`
		} `json:"createdBy"`
	} `json:"history"`
	Metadata struct {
		Labels struct {
			Results []struct {
				Name string `json:"name"`
			} `json:"results"`
		} `json:"labels"`
	} `json:"metadata"`
}
