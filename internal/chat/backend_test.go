package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yieldScope/internal/process"
)

type recordingClient struct {
	sent    []process.Message
	replies []process.Response
}

func (c *recordingClient) Send(_ context.Context, msg process.Message) (process.Response, error) {
	c.sent = append(c.sent, msg)
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

func TestProcessBackendSessionFlow(t *testing.T) {
	client := &recordingClient{replies: []process.Response{
		process.Pending{},
		process.Success{Data: "done"},
	}}
	backend := &ProcessBackend{Client: client, Target: "advisor"}

	resp, err := backend.Submit(context.Background(), "prompt")
	require.NoError(t, err)
	pending, ok := resp.(process.Pending)
	require.True(t, ok)
	require.NotEmpty(t, pending.SessionID)

	sent := client.sent[0]
	assert.Equal(t, "advisor", sent.Target)
	assert.Equal(t, ActionChat, sent.Action)
	assert.Equal(t, "prompt", sent.Data)
	assert.Equal(t, pending.SessionID, process.Value(sent.Tags, "Session-Id"))

	resp, err = backend.Poll(context.Background(), pending.SessionID)
	require.NoError(t, err)
	assert.Equal(t, process.Success{Data: "done"}, resp)
	assert.Equal(t, ActionGetChatResult, client.sent[1].Action)
	assert.Equal(t, pending.SessionID, process.Value(client.sent[1].Tags, "Session-Id"))
}

func TestProcessBackendKeepsServerSession(t *testing.T) {
	client := &recordingClient{replies: []process.Response{process.Pending{SessionID: "server-1"}}}
	resp, err := (&ProcessBackend{Client: client, Target: "advisor"}).Submit(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, process.Pending{SessionID: "server-1"}, resp)
}

func TestAnthropicBackendSubmit(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "test-model",
			"content": [{"type": "text", "text": "Pick USDC/USDT."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 4}
		}`))
	}))
	defer srv.Close()

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(srv.URL),
		option.WithMaxRetries(0),
	)
	backend := NewAnthropicBackend(&client, "test-model", 0)

	p, _ := newTestPoller(backend, 10)
	out, err := p.Ask(context.Background(), "which pool?")
	require.NoError(t, err)
	assert.Equal(t, "Pick USDC/USDT.", out.Answer)
	assert.Equal(t, "test-model", body["model"])
	assert.EqualValues(t, 1024, body["max_tokens"])
}

func TestAnthropicBackendPollUnsupported(t *testing.T) {
	resp, err := (&AnthropicBackend{}).Poll(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, process.KindError, resp.Kind())
}
