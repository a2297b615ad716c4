package connector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/rag-be/types"
	"github.com/tieubaoca/rag-be/utils"
)

var fastRetry = utils.RetryConfig{MaxRetries: 1, InitialDelay: time.Millisecond, BackoffFactor: 1.0}

func testPage(id, title, body string) map[string]interface{} {
	return map[string]interface{}{
		"id":    id,
		"title": title,
		"body":  map[string]interface{}{"storage": map[string]interface{}{"value": body}},
		"version": map[string]interface{}{
			"number": 3,
			"when":   "2024-05-01T10:00:00Z",
			"by":     map[string]interface{}{"displayName": "Ana"},
		},
		"history": map[string]interface{}{
			"createdDate": "2024-01-01T00:00:00Z",
			"createdBy":   map[string]interface{}{"displayName": "Bob"},
		},
		"metadata": map[string]interface{}{
			"labels": map[string]interface{}{
				"results": []interface{}{map[string]interface{}{"name": "howto"}},
			},
		},
	}
}

func writeListing(t *testing.T, w http.ResponseWriter, pages []map[string]interface{}, next string) {
	t.Helper()
	resp := map[string]interface{}{
		"results": pages,
		"_links":  map[string]interface{}{},
	}
	if next != "" {
		resp["_links"] = map[string]interface{}{"next": next}
	}
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func newTestConnector(serverURL string, spaces []string) *ConfluenceConnector {
	c := NewConfluenceConnector(serverURL, "user@example.com", "token123", spaces, 1000)
	c.retryCfg = fastRetry
	return c
}

func TestConnectVerifiesCredentials(t *testing.T) {
	var sawAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		sawAuth = ok && user == "user@example.com" && pass == "token123"
		assert.Equal(t, "/rest/api/space", r.URL.Path)
		writeListing(t, w, nil, "")
	}))
	defer server.Close()

	c := newTestConnector(server.URL, []string{"ENG"})
	require.NoError(t, c.Connect(context.Background()))
	assert.True(t, sawAuth)
}

func TestConnectFailsOnBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := newTestConnector(server.URL, []string{"ENG"})
	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Confluence")
}

func TestFetchAllDocumentsRequiresConnect(t *testing.T) {
	c := newTestConnector("http://localhost:0", []string{"ENG"})
	_, err := c.FetchAllDocuments(context.Background())
	require.Error(t, err)
}

func TestFetchAllDocumentsPaginates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/api/space":
			writeListing(t, w, nil, "")
		case "/rest/api/content":
			assert.Equal(t, "ENG", r.URL.Query().Get("spaceKey"))
			assert.Equal(t, "body.storage,version,history,metadata.labels", r.URL.Query().Get("expand"))
			switch r.URL.Query().Get("start") {
			case "0":
				writeListing(t, w, []map[string]interface{}{
					testPage("101", "First", "<p>Alpha</p>"),
					testPage("102", "Second", "<p>Beta</p>"),
				}, "/rest/api/content?start=50")
			case "50":
				writeListing(t, w, []map[string]interface{}{
					testPage("103", "Third", "<p>Gamma</p>"),
				}, "")
			default:
				t.Errorf("unexpected start offset %q", r.URL.Query().Get("start"))
			}
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := newTestConnector(server.URL, []string{"ENG"})
	require.NoError(t, c.Connect(context.Background()))

	docs, err := c.FetchAllDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "confluence_101", docs[0].ID)
	assert.Equal(t, "confluence_103", docs[2].ID)
}

func TestFetchAllDocumentsParsesPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/api/space" {
			writeListing(t, w, nil, "")
			return
		}
		writeListing(t, w, []map[string]interface{}{
			testPage("123", "Getting Started", "<h1>Intro</h1><p>Hello &amp; welcome</p><p>Second paragraph</p>"),
		}, "")
	}))
	defer server.Close()

	c := newTestConnector(server.URL, []string{"ENG"})
	require.NoError(t, c.Connect(context.Background()))

	docs, err := c.FetchAllDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "confluence_123", doc.ID)
	assert.Equal(t, "Getting Started", doc.Title)
	assert.Equal(t, "Intro\nHello & welcome\nSecond paragraph", doc.Content)
	assert.Equal(t, "Bob", doc.Author)
	assert.Equal(t, "confluence", doc.Source)
	assert.Equal(t, "2024-01-01T00:00:00Z", doc.CreatedDate)
	assert.Equal(t, "2024-05-01T10:00:00Z", doc.ModifiedDate)
	assert.Equal(t, []string{"howto"}, doc.Tags)
	assert.True(t, strings.HasSuffix(doc.URL, "/spaces/ENG/pages/123"))
	assert.Equal(t, "ENG", doc.Metadata.GetString("space_key"))
	assert.Equal(t, "123", doc.Metadata.GetString("page_id"))
	version, ok := doc.Metadata["version"].AsNumber()
	require.True(t, ok)
	assert.Equal(t, float64(3), version)
}

func TestParsePageDefaults(t *testing.T) {
	c := newTestConnector("https://example.atlassian.net/wiki", []string{"ENG"})
	doc := c.parsePage(confluencePage{ID: "9"}, "ENG")

	assert.Equal(t, "confluence_9", doc.ID)
	assert.Equal(t, "Untitled", doc.Title)
	assert.Equal(t, "Unknown", doc.Author)
	assert.Empty(t, doc.Content)
	assert.Equal(t, "https://example.atlassian.net/spaces/ENG/pages/9", doc.URL)
	version, ok := doc.Metadata["version"].AsNumber()
	require.True(t, ok)
	assert.Equal(t, float64(1), version)
}

func TestParsePageAuthorFallsBackToVersion(t *testing.T) {
	c := newTestConnector("https://example.atlassian.net", []string{"ENG"})
	page := confluencePage{ID: "9"}
	page.Version.By.DisplayName = "Cara"
	doc := c.parsePage(page, "ENG")
	assert.Equal(t, "Cara", doc.Author)
}

func TestFetchAllDocumentsSkipsFailingSpace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/api/space" {
			writeListing(t, w, nil, "")
			return
		}
		if r.URL.Query().Get("spaceKey") == "BAD" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeListing(t, w, []map[string]interface{}{
			testPage("201", "Kept", "<p>Body</p>"),
		}, "")
	}))
	defer server.Close()

	c := newTestConnector(server.URL, []string{"BAD", "GOOD"})
	require.NoError(t, c.Connect(context.Background()))

	docs, err := c.FetchAllDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "confluence_201", docs[0].ID)
}

func TestFetchSpaceDocumentsKeepsPartialResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/api/space" {
			writeListing(t, w, nil, "")
			return
		}
		if r.URL.Query().Get("start") == "0" {
			writeListing(t, w, []map[string]interface{}{
				testPage("301", "Page", "<p>Body</p>"),
			}, "/rest/api/content?start=50")
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestConnector(server.URL, []string{"ENG"})
	require.NoError(t, c.Connect(context.Background()))

	docs, err := c.FetchAllDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "confluence_301", docs[0].ID)
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain", "just text", "just text"},
		{"paragraphs", "<p>one</p><p>two</p>", "one\ntwo"},
		{"line breaks", "one<br>two<br/>three", "one\ntwo\nthree"},
		{"entities", "<p>fish &amp; chips &lt;3</p>", "fish & chips <3"},
		{"script dropped", "<p>keep</p><script>alert('x')</script>", "keep"},
		{"style dropped", "<style>p{color:red}</style><p>keep</p>", "keep"},
		{"comments dropped", "<!-- note --><p>keep</p>", "keep"},
		{"inline tags collapse", "a <b>bold</b> move", "a bold move"},
		{"blank lines dropped", "<p>  </p><p>one</p><div></div><p>two</p>", "one\ntwo"},
		{"table cells", "<table><tr><td>a</td><td>b</td></tr></table>", "a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, htmlToText(tt.input))
		})
	}
}
