package rag

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"studysphere/internal/config"
	"studysphere/internal/domain"
	"studysphere/internal/port"

	"go.uber.org/zap"
)

const serviceAccountHeader = "X-NUCLIA-SERVICEACCOUNT"

// Client talks to the knowledge-box API. It implements port.UpstreamClient.
type Client struct {
	baseURL    string
	askBaseURL string
	serviceKey string
	kb         string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a client from the upstream configuration. AskBaseURL
// falls back to BaseURL when unset.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger) *Client {
	askBase := cfg.AskBaseURL
	if askBase == "" {
		askBase = cfg.BaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		askBaseURL: strings.TrimRight(askBase, "/"),
		serviceKey: cfg.ServiceKey,
		kb:         cfg.KnowledgeBox,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type createResourcePayload struct {
	Slug    string         `json:"slug"`
	Title   string         `json:"title"`
	Summary string         `json:"summary"`
	Origin  resourceOrigin `json:"origin"`
	Files   map[string]struct {
		File filePayload `json:"file"`
	} `json:"files"`
}

type resourceOrigin struct {
	Source   string `json:"source"`
	SourceID string `json:"source_id"`
	Filename string `json:"filename"`
}

type filePayload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Payload     string `json:"payload"`
}

type createResourceResponse struct {
	UUID string `json:"uuid"`
	ID   string `json:"id"`
}

// CreateResource uploads a file as a new knowledge-box resource. The file
// body travels base64-encoded inside the JSON payload.
func (c *Client) CreateResource(ctx context.Context, payload domain.UploadPayload) (*domain.UploadReceipt, error) {
	body := createResourcePayload{
		Slug:    payload.Slug,
		Title:   payload.Title,
		Summary: payload.Summary,
		Origin: resourceOrigin{
			Source:   "upload",
			SourceID: payload.Slug,
			Filename: payload.Filename,
		},
		Files: map[string]struct {
			File filePayload `json:"file"`
		}{
			"file": {File: filePayload{
				Filename:    payload.Filename,
				ContentType: payload.ContentType,
				Payload:     base64.StdEncoding.EncodeToString(payload.Content),
			}},
		},
	}

	url := fmt.Sprintf("%s/v1/kb/%s/resources", c.baseURL, c.kb)
	raw, err := c.postJSON(ctx, url, body)
	if err != nil {
		return nil, fmt.Errorf("upstream upload error: %w", err)
	}

	var resp createResourceResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	uuid := resp.UUID
	if uuid == "" {
		uuid = resp.ID
	}
	return &domain.UploadReceipt{UUID: uuid}, nil
}

// FetchExtractedText retrieves the resource with its extraction payload and
// runs the text locator over it. Empty text is a valid outcome the caller
// must branch on.
func (c *Client) FetchExtractedText(ctx context.Context, documentID string) (string, error) {
	url := fmt.Sprintf("%s/v1/kb/%s/resource/%s?show=extracted", c.baseURL, c.kb, documentID)
	raw, err := c.get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("upstream resource fetch error: %w", err)
	}

	var resource Resource
	if err := json.Unmarshal(raw, &resource); err != nil {
		return "", fmt.Errorf("failed to decode resource: %w", err)
	}

	text := LocateText(&resource)
	c.logger.Debug("Located resource text",
		zap.String("document_id", documentID),
		zap.Int("length", len(text)),
	)
	return text, nil
}

type searchRequest struct {
	Query            string   `json:"query"`
	Features         []string `json:"features"`
	GenerativeAnswer bool     `json:"generative_answer"`
	MaxTokens        int      `json:"max_tokens"`
	Filters          []string `json:"filters,omitempty"`
}

type searchResponse struct {
	Answer *struct {
		Text string `json:"text"`
	} `json:"answer"`
	Paragraphs *struct {
		Results []struct {
			Text string `json:"text"`
		} `json:"results"`
	} `json:"paragraphs"`
	Resources *struct {
		Results map[string]struct {
			Title string `json:"title"`
		} `json:"results"`
	} `json:"resources"`
	Fulltext *struct {
		Total int `json:"total"`
	} `json:"fulltext"`
}

// Search runs a knowledge-box search with fulltext and semantic features and
// a generative answer request. Filters may be nil.
func (c *Client) Search(ctx context.Context, query string, filters []string) (*domain.SearchOutcome, error) {
	req := searchRequest{
		Query:            query,
		Features:         []string{"fulltext", "semantic"},
		GenerativeAnswer: true,
		MaxTokens:        300,
		Filters:          filters,
	}

	url := fmt.Sprintf("%s/v1/kb/%s/search", c.baseURL, c.kb)
	raw, err := c.postJSON(ctx, url, req)
	if err != nil {
		return nil, fmt.Errorf("upstream search error: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	outcome := &domain.SearchOutcome{}
	if resp.Answer != nil {
		outcome.AnswerText = resp.Answer.Text
	}
	if resp.Paragraphs != nil {
		for _, p := range resp.Paragraphs.Results {
			if p.Text != "" {
				outcome.Paragraphs = append(outcome.Paragraphs, p.Text)
			}
		}
	}
	if resp.Resources != nil {
		for _, r := range resp.Resources.Results {
			outcome.ResourceTitles = append(outcome.ResourceTitles, r.Title)
		}
	}
	if resp.Fulltext != nil {
		outcome.FulltextTotal = resp.Fulltext.Total
	}
	return outcome, nil
}

type askRequest struct {
	Query    string   `json:"query"`
	Features []string `json:"features"`
	Show     []string `json:"show"`
}

// Ask calls the generative endpoint and reassembles its NDJSON stream into a
// single answer with citations.
func (c *Client) Ask(ctx context.Context, query string) (*domain.Answer, error) {
	req := askRequest{
		Query:    query,
		Features: []string{"semantic"},
		Show:     []string{"basic"},
	}

	url := fmt.Sprintf("%s/v1/kb/%s/ask", c.askBaseURL, c.kb)
	raw, err := c.postJSON(ctx, url, req)
	if err != nil {
		return nil, fmt.Errorf("upstream ask error: %w", err)
	}

	answer, citations := ParseAskStream(raw)
	c.logger.Debug("Parsed ask stream",
		zap.Int("answer_length", len(answer)),
		zap.Int("citations", len(citations)),
	)
	return &domain.Answer{Text: answer, Citations: citations}, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) postJSON(ctx context.Context, url string, body interface{}) ([]byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// do executes the request with the service-account header and returns the
// raw body. Non-2xx responses become errors carrying the status code and
// body text, so auth-failure signatures stay matchable by the caller.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set(serviceAccountHeader, "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d - %s", resp.StatusCode, string(body))
	}
	return body, nil
}

var _ port.UpstreamClient = (*Client)(nil)
