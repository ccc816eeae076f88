package refactor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModelServer returns an httptest server that replies to generateContent
// with the given candidate text.
func fakeModelServer(t *testing.T, candidateText string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Contains(t, req.URL.Path, ":generateContent")
		assert.NotEmpty(t, req.Header.Get("x-goog-api-key"))

		var gen generateRequest

		decodeErr := json.NewDecoder(req.Body).Decode(&gen)
		require.NoError(t, decodeErr)
		require.NotEmpty(t, gen.Contents)
		assert.Equal(t, "application/json", gen.GenerationConfig.ResponseMIMEType)
		assert.Zero(t, gen.GenerationConfig.Temperature)

		reply := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": candidateText}}}},
			},
		}

		rw.Header().Set("Content-Type", "application/json")

		encodeErr := json.NewEncoder(rw).Encode(reply)
		require.NoError(t, encodeErr)
	}))
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := NewClient("test-key", WithBaseURL(baseURL))
	require.NoError(t, err)

	return client
}

func TestNewClientMissingAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewClient("")
	require.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewClient("   ")
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestRefactorSuccess(t *testing.T) {
	t.Parallel()

	reply := `{"refactored_code": "THRESHOLD = 42\n", "explanation": "Named the constant."}`

	server := fakeModelServer(t, reply)
	defer server.Close()

	client := newTestClient(t, server.URL)

	resp, err := client.Refactor(context.Background(), "Improve Readability", "[]", "x = 42")
	require.NoError(t, err)

	assert.Equal(t, "THRESHOLD = 42\n", resp.RefactoredCode)
	assert.Equal(t, "Named the constant.", resp.Explanation)
}

func TestRefactorStripsMarkdownFences(t *testing.T) {
	t.Parallel()

	reply := "```json\n{\"refactored_code\": \"pass\", \"explanation\": \"No changes.\"}\n```"

	server := fakeModelServer(t, reply)
	defer server.Close()

	client := newTestClient(t, server.URL)

	resp, err := client.Refactor(context.Background(), "", "[]", "pass")
	require.NoError(t, err)

	assert.Equal(t, "pass", resp.RefactoredCode)
}

func TestRefactorEmptyCandidates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "application/json")

		_, _ = rw.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Refactor(context.Background(), "", "[]", "pass")
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestRefactorEndpointError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		http.Error(rw, `{"error": {"message": "API key not valid"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Refactor(context.Background(), "", "[]", "pass")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestRefactorMalformedResponseMissingField(t *testing.T) {
	t.Parallel()

	server := fakeModelServer(t, `{"refactored_code": "pass"}`)
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Refactor(context.Background(), "", "[]", "pass")
	require.ErrorIs(t, err, ErrMalformedResponse)
	assert.Contains(t, err.Error(), "explanation")
}

func TestRefactorMalformedResponseExtraField(t *testing.T) {
	t.Parallel()

	reply := `{"refactored_code": "pass", "explanation": "ok", "confidence": 0.9}`

	server := fakeModelServer(t, reply)
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Refactor(context.Background(), "", "[]", "pass")
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRefactorNonJSONResponse(t *testing.T) {
	t.Parallel()

	server := fakeModelServer(t, "Sure! Here is the refactored code: pass")
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Refactor(context.Background(), "", "[]", "pass")
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestStripMarkdownFences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare json", in: `{"a": 1}`, want: `{"a": 1}`},
		{name: "json fence", in: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "plain fence", in: "```\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "surrounding whitespace", in: "  \n```json\n{}\n```\n ", want: "{}"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, stripMarkdownFences(tc.in))
		})
	}
}
