package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/turtacn/patentlake/pkg/errors"
)

const detailsEngine = "google_patents_details"

// Client calls the search API's patent details endpoint.  Keys stay out of
// logs and error messages; they only ever appear in the request itself.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, apperrors.New(apperrors.CodeFetchKeyMissing, "no search API key found in environment")
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// FetchDetails returns the raw details payload for one document identifier.
// The identifier is expanded to the API's "patent/<id>/en" form.
func (c *Client) FetchDetails(ctx context.Context, rawID string) (map[string]interface{}, error) {
	q := url.Values{}
	q.Set("engine", detailsEngine)
	q.Set("patent_id", fmt.Sprintf("patent/%s/en", rawID))
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeFetchAPIFailed, "build details request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeFetchAPIFailed, "call details API for "+rawID)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeFetchAPIFailed, "read details response for "+rawID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(apperrors.CodeFetchAPIFailed,
			fmt.Sprintf("details API returned status %d for %s", resp.StatusCode, rawID))
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeFetchAPIFailed, "decode details response for "+rawID)
	}
	return data, nil
}
