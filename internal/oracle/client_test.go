package oracle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutil "address-similarity/internal/testing"
	"address-similarity/pkg/circuit"
	errs "address-similarity/pkg/errors"
)

func TestNewWithoutCredentials(t *testing.T) {
	c, err := New(Config{}, nil, nil)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestNewWithCredentialsDoesNotCallNetwork(t *testing.T) {
	c, err := New(Config{APIKey: "sk-test", BaseURL: "http://127.0.0.1:1/v1"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", c.Model())
}

func TestCompareSendsRubricPrompt(t *testing.T) {
	chat := testutil.NewMockChat("0.85")
	c, err := NewWithChat(chat, Config{Model: "test-model", MaxTokens: 8}, nil, nil)
	require.NoError(t, err)

	score, err := c.Compare(context.Background(), "Damrak 1, Amsterdam", "Damrak 1, Amsterdam NL")
	require.NoError(t, err)
	assert.InDelta(t, 0.85, score, 1e-12)

	require.Equal(t, 1, chat.RequestCount())
	req := chat.Requests[0]
	assert.Equal(t, "test-model", req.Model)
	assert.Equal(t, 8, req.MaxTokens)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[1].Content, "Address 1: Damrak 1, Amsterdam\n")
	assert.Contains(t, req.Messages[1].Content, "Address 2: Damrak 1, Amsterdam NL")

	u := c.Usage()
	assert.Equal(t, 1, u.TotalRequests)
	assert.Equal(t, 122, u.TotalTokens)
	assert.Greater(t, u.EstimatedCostUSD, 0.0)
}

func TestCompareErrors(t *testing.T) {
	tests := []struct {
		name  string
		chat  *testutil.MockChat
		match string
	}{
		{"transport", &testutil.MockChat{Err: errors.New("connection reset")}, "connection reset"},
		{"malformed", testutil.NewMockChat("I cannot tell"), "malformed reply"},
		{"out of range", testutil.NewMockChat("1.7"), "outside [0,1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewWithChat(tt.chat, Config{}, nil, nil)
			require.NoError(t, err)

			_, err = c.Compare(context.Background(), "a street 1", "b street 2")
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrExternal))
			assert.Contains(t, err.Error(), tt.match)
		})
	}
}

func TestCompareOpensCircuit(t *testing.T) {
	chat := &testutil.MockChat{Err: errors.New("503")}
	c, err := NewWithChat(chat, Config{}, nil, nil)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, _ = c.Compare(context.Background(), "x road", "y road")
	}
	assert.Equal(t, circuit.Open, c.breaker.State())
	assert.Less(t, chat.RequestCount(), 10, "open circuit short-circuits calls")

	_, err = c.Compare(context.Background(), "x road", "y road")
	assert.ErrorIs(t, err, circuit.ErrOpen)
}

func TestCompareRespectsCancelledContext(t *testing.T) {
	chat := testutil.NewMockChat("0.9")
	c, err := NewWithChat(chat, Config{RateLimit: 0.001, Burst: 1}, nil, nil)
	require.NoError(t, err)

	// first call uses the only token
	_, err = c.Compare(context.Background(), "a lane", "b lane")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Compare(ctx, "a lane", "b lane")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "rate limiter"))
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		reply   string
		want    float64
		wantErr bool
	}{
		{"0.9", 0.9, false},
		{"  1.0\n", 1.0, false},
		{"0", 0, false},
		{"```\n0.75\n```", 0.75, false},
		{`{"score": 0.4}`, 0.4, false},
		{"Score: 0.6 (same city)", 0.6, false},
		{"", 0, true},
		{"unknown", 0, true},
		{"1.2", 0, true},
		{"-0.1", 0, true},
		{"NaN", 0, true},
		{`{"score": 3}`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			got, err := ParseScore(tt.reply)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}
