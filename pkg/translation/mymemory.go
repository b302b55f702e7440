package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
	"github.com/lingomeet/lingomeet/pkg/logging"
)

// DefaultMyMemoryURL is the public MyMemory endpoint.
const DefaultMyMemoryURL = "https://api.mymemory.translated.net"

// MyMemoryClient calls the MyMemory translation API. Rate limits and server
// errors surface as transient errors so the pipeline retries them.
type MyMemoryClient struct {
	baseURL    string
	httpClient *http.Client
	email      string
	log        logging.Logger
}

// MyMemoryOptions configures a MyMemoryClient.
type MyMemoryOptions struct {
	// BaseURL overrides the API endpoint. Defaults to DefaultMyMemoryURL.
	BaseURL string

	// Email raises the daily quota when set (per the MyMemory usage policy).
	Email string

	HTTPClient *http.Client
	Logger     logging.Logger
}

// NewMyMemoryClient builds a client for the MyMemory translation API.
func NewMyMemoryClient(opts MyMemoryOptions) *MyMemoryClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultMyMemoryURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	return &MyMemoryClient{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		email:      opts.Email,
		log:        opts.Logger.With(logging.F("component", "mymemory")),
	}
}

type myMemoryResponse struct {
	ResponseStatus json.Number `json:"responseStatus"`
	ResponseData   struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
}

// Translate implements Translator against the MyMemory GET API.
func (c *MyMemoryClient) Translate(ctx context.Context, req Request) (string, error) {
	q := url.Values{}
	q.Set("q", req.Text)
	q.Set("langpair", fmt.Sprintf("%s|%s", req.Source.Tag(), req.Target.Tag()))
	if c.email != "" {
		q.Set("de", c.email)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("building mymemory request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", lmerrors.Transient("mymemory request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", lmerrors.Transient("mymemory request",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mymemory request: unexpected status %d", resp.StatusCode)
	}

	var body myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", lmerrors.Transient("mymemory decode", err)
	}
	// The API reports its own status inside a 200 response.
	if status, err := body.ResponseStatus.Int64(); err == nil && status != 0 && status != http.StatusOK {
		return "", fmt.Errorf("mymemory response status %d", status)
	}
	if body.ResponseData.TranslatedText == "" {
		return "", fmt.Errorf("mymemory returned empty translation")
	}

	c.log.Debug("translated",
		logging.F("chars", len(req.Text)),
		logging.F("langpair", fmt.Sprintf("%s|%s", req.Source, req.Target)))
	return body.ResponseData.TranslatedText, nil
}
