package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiReply(text string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content": map[string]interface{}{
					"parts": []interface{}{map[string]string{"text": text}},
				},
			},
		},
	})
	return string(b)
}

const sampleQuestions = `[{"question":"Capital of France?","options":["Paris","Rome","Berlin","Madrid"],"answer":"Paris","explanation":"Paris is the capital."}]`

func TestGenerate_Success(t *testing.T) {
	var gotPath, gotKey, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.Contents[0].Parts[0].Text
		w.Write([]byte(geminiReply("```json\n" + sampleQuestions + "\n```")))
	}))
	defer srv.Close()

	g := NewGeminiClient(srv.URL+"/", "secret", "gemini-test", 5*time.Second)
	questions, err := g.Generate(context.Background(), "Geography", "Easy", 1)
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-test:generateContent", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Contains(t, gotPrompt, "1 multiple-choice quiz questions about Geography at Easy difficulty")
	require.Len(t, questions, 1)
	assert.Equal(t, "Paris", questions[0].Answer)
	assert.Len(t, questions[0].Options, 4)
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		reason  string
	}{
		{
			name: "upstream error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte("quota exceeded"))
			},
			reason: "model returned status 429",
		},
		{
			name: "no candidates",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"candidates":[]}`))
			},
			reason: "model returned no candidates",
		},
		{
			name: "prose instead of json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(geminiReply("Sorry, I cannot help with that.")))
			},
			reason: "no JSON array found",
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(geminiReply(`[{"question": }]`)))
			},
			reason: "invalid JSON from model",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			_, err := NewGeminiClient(srv.URL, "k", "m", 5*time.Second).Generate(context.Background(), "X", "Hard", 3)
			require.Error(t, err)
			var genErr *GenerationError
			require.True(t, errors.As(err, &genErr))
			assert.True(t, strings.Contains(genErr.Reason, tc.reason), genErr.Reason)
		})
	}
}

func TestGenerate_MissingKey(t *testing.T) {
	_, err := NewGeminiClient("http://unused", "", "m", time.Second).Generate(context.Background(), "X", "Easy", 1)
	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
}

func TestExtractJSONArray(t *testing.T) {
	assert.Equal(t, `[1,2]`, extractJSONArray("```json\n[1,2]\n```"))
	assert.Equal(t, `[{"a":[1]}]`, extractJSONArray(`Here you go: [{"a":[1]}] enjoy`))
	assert.Equal(t, "", extractJSONArray("nothing here"))
}
