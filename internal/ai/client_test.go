package ai_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/WingsGames/Neve-Or/internal/ai"
	"github.com/WingsGames/Neve-Or/internal/models"
	"github.com/WingsGames/Neve-Or/internal/testhelpers"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ai.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	config := openai.DefaultConfig("test-key")
	config.BaseURL = srv.URL + "/v1"
	return ai.NewClientWithConfig(config, testhelpers.NewLogger(io.Discard))
}

func TestClient_GenerateImage(t *testing.T) {
	t.Parallel()
	png := []byte("\x89PNG fake")
	var request openai.ImageRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"created": 1,
			"data":    []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(png)}},
		})
	})

	url, err := client.GenerateImage(context.Background(), "a town square", ai.Landscape)
	require.NoError(t, err)
	require.Equal(t, ai.DataURL("image/png", png), url)
	require.Equal(t, openai.CreateImageSize1792x1024, request.Size)
	require.Equal(t, openai.CreateImageResponseFormatB64JSON, request.ResponseFormat)

	_, err = client.GenerateImage(context.Background(), "Lior", ai.Square)
	require.NoError(t, err)
	require.Equal(t, openai.CreateImageSize1024x1024, request.Size)
}

func TestClient_failures(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[]}`))
	})
	_, err := client.GenerateImage(context.Background(), "x", ai.Square)
	require.ErrorIs(t, err, ai.ErrEmptyResponse)

	failing := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	})
	_, err = failing.GenerateImage(context.Background(), "x", ai.Square)
	require.Error(t, err)

	var unconfigured *ai.Client
	require.Nil(t, ai.NewClient("", testhelpers.NewLogger(io.Discard)))
	_, err = unconfigured.GenerateImage(context.Background(), "x", ai.Square)
	require.ErrorIs(t, err, ai.ErrNoAPIKey)
}

func TestBackgroundPrompt(t *testing.T) {
	t.Parallel()
	node := models.Node{ID: "city_hall", Data: models.NodeContent{Description: "The mayor bans protests."}}
	require.Contains(t, ai.BackgroundPrompt(node, nil), "The mayor bans protests.")
	require.Contains(t, ai.BackgroundPrompt(models.Node{ID: "town_square"}, nil), "wide city square")

	sub := &models.SubScene{ID: "loc_cafe", Title: "The cafe"}
	prompt := ai.BackgroundPrompt(node, sub)
	require.Contains(t, prompt, "coffee shop")
	require.Contains(t, prompt, "Context from story: The mayor bans protests.")

	require.Contains(t, ai.CharacterPrompt("Lior", ""), "looking neutral")
	require.Contains(t, ai.CharacterPrompt("Lior", models.MoodAngry), "looking angry")
}
