package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "missing provider",
			config:  Config{Model: "gpt-4"},
			wantErr: true,
		},
		{
			name:    "missing model",
			config:  Config{Provider: ProviderOpenAI, APIKey: "key"},
			wantErr: true,
		},
		{
			name:    "openai without key",
			config:  Config{Provider: ProviderOpenAI, Model: "gpt-4"},
			wantErr: true,
		},
		{
			name:    "anthropic without key",
			config:  Config{Provider: ProviderAnthropic, Model: "claude-sonnet-4-5"},
			wantErr: true,
		},
		{
			name:   "ollama without key is fine",
			config: Config{Provider: ProviderOllama, Model: "llama2"},
		},
		{
			name:    "unknown provider",
			config:  Config{Provider: "cohere", Model: "command"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewClient(Config{}).Configure(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigureDefaultBaseURLs(t *testing.T) {
	client := NewClient(Config{})

	err := client.Configure(Config{Provider: ProviderOpenAI, Model: "gpt-4", APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.openai.com/v1", client.config.BaseURL)

	err = client.Configure(Config{Provider: ProviderOllama, Model: "llama2"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", client.config.BaseURL)
}

func TestGenerateSQLOpenAI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "add Sarah to marketing")

		json.NewEncoder(w).Encode(openAIResponse{
			Choices: []openAIChoice{{
				Message: openAIMessage{
					Role:    "assistant",
					Content: "INSERT INTO employee (name, department, salary) VALUES ('Sarah', 'Marketing', NULL);",
				},
			}},
		})
	}))
	defer server.Close()

	client := NewClient(Config{})
	require.NoError(t, client.Configure(Config{
		Provider: ProviderOpenAI,
		Model:    "gpt-4",
		APIKey:   "test-key",
		BaseURL:  server.URL,
	}))

	sql, err := client.GenerateSQL(context.Background(), "add Sarah to marketing", testSchemaContext)
	require.NoError(t, err)
	assert.Contains(t, sql, "INSERT INTO employee")
}

func TestGenerateSQLAnthropic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("anthropic-version"))

		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicContent{{Type: "text", Text: "SELECT * FROM employee WHERE department = 'Marketing';"}},
		})
	}))
	defer server.Close()

	client := NewClient(Config{})
	require.NoError(t, client.Configure(Config{
		Provider: ProviderAnthropic,
		Model:    "claude-sonnet-4-5",
		APIKey:   "test-key",
		BaseURL:  server.URL,
	}))

	sql, err := client.GenerateSQL(context.Background(), "who is in marketing", testSchemaContext)
	require.NoError(t, err)
	assert.Contains(t, sql, "SELECT * FROM employee")
}

func TestSummarizeOllama(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)

		json.NewEncoder(w).Encode(ollamaResponse{
			Response: "Sarah was added to the Marketing department.",
			Done:     true,
		})
	}))
	defer server.Close()

	client := NewClient(Config{})
	require.NoError(t, client.Configure(Config{
		Provider: ProviderOllama,
		Model:    "llama2",
		BaseURL:  server.URL,
	}))

	text, err := client.Summarize(context.Background(), "inserted 1 row into employee")
	require.NoError(t, err)
	assert.Contains(t, text, "Sarah")
}

func TestClientSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{})
	require.NoError(t, client.Configure(Config{
		Provider: ProviderOpenAI,
		Model:    "gpt-4",
		APIKey:   "test-key",
		BaseURL:  server.URL,
	}))

	_, err := client.GenerateSQL(context.Background(), "show employees", testSchemaContext)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestWithFallbackUsesSecondaryOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{})
	require.NoError(t, client.Configure(Config{
		Provider: ProviderOllama,
		Model:    "llama2",
		BaseURL:  server.URL,
	}))

	svc := WithFallback(client, NewRuleBased())

	sql, err := svc.GenerateSQL(context.Background(), "show all employees", testSchemaContext)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM employee;", sql)
}
