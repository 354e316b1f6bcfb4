// Package pulse is a thin client for the PulseMCP directory API, used to
// discover MCP server repositories worth describing.
package pulse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.pulsemcp.com/v0beta"

// Server is one directory entry. Name is derived from the entry's URL slug;
// the directory's own name moves to DisplayName.
type Server struct {
	Name                 string `json:"name"`
	DisplayName          string `json:"display_name"`
	URL                  string `json:"url"`
	ExternalURL          string `json:"external_url,omitempty"`
	ShortDescription     string `json:"short_description,omitempty"`
	SourceCodeURL        string `json:"source_code_url,omitempty"`
	Repository           string `json:"repository,omitempty"`
	Path                 string `json:"path,omitempty"`
	GithubStars          int    `json:"github_stars,omitempty"`
	PackageRegistry      string `json:"package_registry,omitempty"`
	PackageName          string `json:"package_name,omitempty"`
	PackageDownloadCount int    `json:"package_download_count,omitempty"`
}

// Client calls the PulseMCP REST API.
type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// ListServers queries the directory. query filters by search term; countPerPage
// and offset paginate (0 leaves them to the server's defaults).
func (c *Client) ListServers(ctx context.Context, query string, countPerPage, offset int) ([]Server, error) {
	params := url.Values{}
	if query != "" {
		params.Set("query", query)
	}
	if countPerPage > 0 {
		params.Set("count_per_page", strconv.Itoa(countPerPage))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	u := c.baseURL + "/servers"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pulse: unexpected status %s", resp.Status)
	}

	var body struct {
		Servers []Server `json:"servers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	for i := range body.Servers {
		s := &body.Servers[i]
		s.DisplayName = s.Name
		if idx := strings.LastIndex(s.URL, "/"); idx >= 0 {
			s.Name = s.URL[idx+1:]
		}
	}
	return body.Servers, nil
}
