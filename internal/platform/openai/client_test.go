package openai

import (
	"context"
	"errors"
	"testing"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

type scriptedAPI struct {
	replies []goopenai.ChatCompletionResponse
	errs    []error
	calls   int
	last    goopenai.ChatCompletionRequest
}

func (s *scriptedAPI) CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
	i := s.calls
	s.calls++
	s.last = req
	if i < len(s.errs) && s.errs[i] != nil {
		return goopenai.ChatCompletionResponse{}, s.errs[i]
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return goopenai.ChatCompletionResponse{}, errors.New("no scripted reply")
}

func reply(content string) goopenai.ChatCompletionResponse {
	return goopenai.ChatCompletionResponse{Choices: []goopenai.ChatCompletionChoice{{
		Message: goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleAssistant, Content: content},
	}}}
}

func newTestClient(api chatAPI, retries int) *client {
	c := newClient(logger.Nop(), api, Config{Model: "test-model", MaxRetries: retries})
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestGenerateJSONDecodes(t *testing.T) {
	api := &scriptedAPI{replies: []goopenai.ChatCompletionResponse{reply(`{"is_safe":false,"risk_level":"high"}`)}}
	c := newTestClient(api, 0)

	var out struct {
		IsSafe    bool   `json:"is_safe"`
		RiskLevel string `json:"risk_level"`
	}
	require.NoError(t, c.GenerateJSON(context.Background(), "Assess safety.", "{}", &out))
	assert.False(t, out.IsSafe)
	assert.Equal(t, "high", out.RiskLevel)
	require.NotNil(t, api.last.ResponseFormat)
	assert.Equal(t, goopenai.ChatCompletionResponseFormatTypeJSONObject, api.last.ResponseFormat.Type)
	assert.Equal(t, "test-model", api.last.Model)
	assert.Contains(t, api.last.Messages[0].Content, "Assess safety.")
}

func TestRetriesRetryableStatus(t *testing.T) {
	api := &scriptedAPI{
		errs:    []error{&goopenai.APIError{HTTPStatusCode: 429, Message: "slow down"}, nil},
		replies: []goopenai.ChatCompletionResponse{{}, reply("hello")},
	}
	c := newTestClient(api, 2)
	text, err := c.GenerateText(context.Background(), "Say hi.", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, 2, api.calls)
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	api := &scriptedAPI{errs: []error{&goopenai.APIError{HTTPStatusCode: 400, Message: "bad"}}}
	c := newTestClient(api, 3)
	_, err := c.GenerateText(context.Background(), "x", "y")
	require.Error(t, err)
	assert.Equal(t, 1, api.calls)
	assert.Equal(t, "400", statusLabel(err))
}

func TestGivesUpAfterMaxRetries(t *testing.T) {
	e := &goopenai.APIError{HTTPStatusCode: 503, Message: "down"}
	api := &scriptedAPI{errs: []error{e, e, e, e}}
	c := newTestClient(api, 2)
	_, err := c.GenerateText(context.Background(), "x", "y")
	require.Error(t, err)
	assert.Equal(t, 3, api.calls)
}

func TestMalformedJSONAndEmptyChoices(t *testing.T) {
	c := newTestClient(&scriptedAPI{replies: []goopenai.ChatCompletionResponse{reply("not json")}}, 0)
	var out map[string]any
	assert.Error(t, c.GenerateJSON(context.Background(), "x", "y", &out))

	c = newTestClient(&scriptedAPI{replies: []goopenai.ChatCompletionResponse{{}}}, 0)
	_, err := c.GenerateText(context.Background(), "x", "y")
	assert.Error(t, err)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(logger.Nop(), Config{})
	assert.Error(t, err)

	c, err := NewClient(logger.Nop(), Config{APIKey: "sk-test", BaseURL: "http://localhost:9999/"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", c.Model())
}
