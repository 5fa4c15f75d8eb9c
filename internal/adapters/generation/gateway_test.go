package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursedeck/deliverables-api/config"
	"github.com/coursedeck/deliverables-api/internal/core"
	"github.com/coursedeck/deliverables-api/internal/domain/model"
)

func newTestGateway(t *testing.T, serverURL string) *Gateway {
	t.Helper()
	g, err := NewGateway(GatewayOptions{
		Config: config.GenerationConfig{
			BaseURL:     serverURL,
			APIKey:      "test-key",
			Model:       "coursedeck-writer-1",
			Timeout:     5 * time.Second,
			ContentPath: "output.content",
		},
	})
	require.NoError(t, err)
	return g
}

func testGenerateRequest() core.GenerateRequest {
	return core.GenerateRequest{
		AssignmentID: "assign-1",
		Prompt:       "Summarize the reading into a study guide.",
		Material:     &model.Material{Bytes: []byte("lecture notes"), Mime: "text/plain"},
	}
}

func TestGateway_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/generate", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "coursedeck-writer-1", body["model"])
		assert.Equal(t, "lecture notes", body["material"])

		_, _ = w.Write([]byte(`{
			"id": "gen-1",
			"output": {
				"content": {
					"title": "Study Guide",
					"sections": [
						{"heading": "Key Ideas", "paragraphs": ["First idea.", "Second idea."]}
					]
				}
			}
		}`))
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)

	content, err := g.Generate(context.Background(), testGenerateRequest())
	require.NoError(t, err)
	assert.Equal(t, "Study Guide", content.Title)
	require.Len(t, content.Sections, 1)
	assert.Equal(t, 2, content.ParagraphCount())
}

func TestGateway_Generate_ConfiguredContentPath(t *testing.T) {
	// The content node is located with the compiled expression, so a
	// differently shaped envelope works as long as the path matches it.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"result": {
				"document": {
					"title": "Deep Guide",
					"sections": [{"paragraphs": ["One paragraph."]}]
				}
			}
		}`))
	}))
	defer srv.Close()

	g, err := NewGateway(GatewayOptions{
		Config: config.GenerationConfig{
			BaseURL:     srv.URL,
			Model:       "coursedeck-writer-1",
			Timeout:     5 * time.Second,
			ContentPath: "result.document",
		},
	})
	require.NoError(t, err)

	content, err := g.Generate(context.Background(), testGenerateRequest())
	require.NoError(t, err)
	assert.Equal(t, "Deep Guide", content.Title)
}

func TestNewGateway_BadContentPath(t *testing.T) {
	_, err := NewGateway(GatewayOptions{
		Config: config.GenerationConfig{
			BaseURL:     "http://localhost:1",
			ContentPath: "output.[",
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile content path")
}

func TestGateway_Generate_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)

	_, err := g.Generate(context.Background(), testGenerateRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestGateway_Generate_MissingContentNode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"output": {}}`))
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)

	_, err := g.Generate(context.Background(), testGenerateRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}

func TestGateway_Generate_SchemaDrift(t *testing.T) {
	// A renamed key produces a schema violation, not a silently empty struct.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"output": {
				"content": {
					"name": "Study Guide",
					"sections": [{"paragraphs": ["p"]}]
				}
			}
		}`))
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)

	_, err := g.Generate(context.Background(), testGenerateRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
}

func TestGateway_Generate_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"output": {
				"content": {
					"title": "Study Guide",
					"sections": [{"heading": "h", "paragraphs": ["   "]}]
				}
			}
		}`))
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)

	_, err := g.Generate(context.Background(), testGenerateRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
}

func TestValidateContentJSON(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "valid", payload: `{"title":"t","sections":[{"paragraphs":["p"]}]}`, wantErr: false},
		{name: "missing title", payload: `{"sections":[{"paragraphs":["p"]}]}`, wantErr: true},
		{name: "empty sections", payload: `{"title":"t","sections":[]}`, wantErr: true},
		{name: "wrong paragraph type", payload: `{"title":"t","sections":[{"paragraphs":[1]}]}`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateContentJSON([]byte(tc.payload))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
