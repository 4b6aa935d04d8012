package openai_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ardalanebrahimi/mini-coder-sub001/internal/provider/openai"
)

func TestNewClient_Success(t *testing.T) {
	config := openai.Config{
		APIKey:     "test-api-key",
		BaseURL:    "https://api.openai.com/v1",
		Model:      "gpt-4o-mini",
		Timeout:    60,
		MaxRetries: 3,
	}

	client, err := openai.NewClient(config)

	require.NoError(t, err)
	require.NotNil(t, client)
	require.Equal(t, "openai", client.Name())
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	config := openai.Config{
		APIKey:     "",
		BaseURL:    "https://api.openai.com/v1",
		Timeout:    60,
		MaxRetries: 3,
	}

	client, err := openai.NewClient(config)

	require.Error(t, err)
	require.Nil(t, client)
	require.Contains(t, err.Error(), "OpenAI API key is required")
}

func TestClient_Name(t *testing.T) {
	client, err := openai.NewClient(openai.Config{APIKey: "test-key"})
	require.NoError(t, err)

	require.Equal(t, "openai", client.Name())
}
