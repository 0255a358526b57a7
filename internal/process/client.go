package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTimeout bounds one HTTP round trip.
const DefaultTimeout = 20 * time.Second

// Client sends a message and returns the decoded reply.
type Client interface {
	Send(ctx context.Context, msg Message) (Response, error)
}

// StatusError is returned for a non-2xx gateway reply.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("process gateway status %d: %s", e.Code, e.Body)
}

// HTTPClient posts messages to a JSON gateway at <base>/message.
type HTTPClient struct {
	baseURL string
	wallet  string
	client  *http.Client
	logger  *zap.Logger
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithWallet sets the owner address sent with each message.
func WithWallet(wallet string) ClientOption {
	return func(c *HTTPClient) {
		c.wallet = wallet
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// NewHTTPClient creates a gateway client.
func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

type wireRequest struct {
	Target string `json:"Target"`
	Owner  string `json:"Owner,omitempty"`
	Tags   []Tag  `json:"Tags"`
	Data   string `json:"Data"`
}

type wireMessage struct {
	Tags []Tag  `json:"Tags"`
	Data string `json:"Data"`
}

type wireResponse struct {
	Messages []wireMessage `json:"Messages"`
}

// Send posts msg and decodes the first reply message.
func (c *HTTPClient) Send(ctx context.Context, msg Message) (Response, error) {
	if msg.Target == "" {
		return nil, fmt.Errorf("message target is empty")
	}

	ref := uuid.NewString()
	tags := append(msg.AllTags(), Tag{Name: "X-Reference", Value: ref})
	body, err := json.Marshal(wireRequest{
		Target: msg.Target,
		Owner:  c.wallet,
		Tags:   tags,
		Data:   msg.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/message", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	var decoded wireResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedResponse, err)
	}
	if len(decoded.Messages) == 0 {
		return nil, fmt.Errorf("%w: no messages", ErrUnrecognizedResponse)
	}

	first := decoded.Messages[0]
	c.logger.Debug("process reply",
		zap.String("target", msg.Target),
		zap.String("action", msg.Action),
		zap.String("reference", ref),
		zap.Int("messages", len(decoded.Messages)),
	)
	return Decode(first.Tags, first.Data)
}
