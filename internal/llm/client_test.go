package llm

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_MissingAPIKey(t *testing.T) {
	for _, key := range []string{"", "   "} {
		client, err := NewClient(context.Background(), DefaultConfig(), key)
		assert.ErrorIs(t, err, ErrMissingAPIKey)
		assert.Nil(t, client)
	}
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	client, err := NewClient(context.Background(), &Config{Provider: "openai", Model: "x"}, "k1")
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "unsupported provider")
}

func TestNewClient_Gemini(t *testing.T) {
	// Construction does not contact the service.
	client, err := NewClient(context.Background(), nil, "k1")
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	assert.Equal(t, DefaultModel, client.Model())
}

func TestExtractTextFromResponse(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr string
	}{
		{
			name:    "nil response",
			resp:    nil,
			wantErr: "no candidates",
		},
		{
			name:    "no candidates",
			resp:    &genai.GenerateContentResponse{},
			wantErr: "no candidates",
		},
		{
			name: "no content",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{}},
			},
			wantErr: "no content",
		},
		{
			name: "non-text parts only",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}},
				}},
			},
			wantErr: "no text parts",
		},
		{
			name: "joins text parts",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []genai.Part{
						genai.Text("Strong Python background. "),
						genai.Text("Suggest adding metrics."),
					}},
				}},
			},
			want: "Strong Python background. Suggest adding metrics.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractTextFromResponse(tt.resp)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewFactory(t *testing.T) {
	factory := NewFactory("gemini-2.5-flash")

	_, err := factory(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	client, err := factory(context.Background(), "k1")
	require.NoError(t, err)
	defer func() { _ = client.Close() }()
	assert.Equal(t, "gemini-2.5-flash", client.Model())
}
