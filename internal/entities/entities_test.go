package entities

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/pkg/config"
)

func TestLocalExtractClassifiesPersonFromTwoWordRun(t *testing.T) {
	e := NewLocal()
	ents, err := e.Extract(context.Background(), "I met Jane Smith yesterday")
	require.NoError(t, err)
	require.Len(t, ents, 1)
	require.Equal(t, "Jane Smith", ents[0].Text)
	require.Equal(t, model.EntityPerson, ents[0].Type)
}

func TestLocalExtractClassifiesOrgBySuffix(t *testing.T) {
	e := NewLocal()
	ents, err := e.Extract(context.Background(), "I work at Acme Corp on a new project")
	require.NoError(t, err)
	require.Len(t, ents, 1)
	require.Equal(t, "Acme Corp", ents[0].Text)
	require.Equal(t, model.EntityOrg, ents[0].Type)
}

func TestLocalExtractClassifiesLocationBySuffix(t *testing.T) {
	e := NewLocal()
	ents, err := e.Extract(context.Background(), "The office is on Baker Street near downtown")
	require.NoError(t, err)
	require.Len(t, ents, 1)
	require.Equal(t, "Baker Street", ents[0].Text)
	require.Equal(t, model.EntityLocation, ents[0].Type)
}

func TestLocalExtractClassifiesSingleWordAsOther(t *testing.T) {
	e := NewLocal()
	ents, err := e.Extract(context.Background(), "Paris is lovely in spring but Tuesday is busy")
	require.NoError(t, err)
	require.NotEmpty(t, ents)
	for _, ent := range ents {
		if ent.Text == "Paris" || ent.Text == "Tuesday" {
			require.Equal(t, model.EntityOther, ent.Type)
		}
	}
}

func TestLocalExtractEmptyTextYieldsNoEntities(t *testing.T) {
	e := NewLocal()
	ents, err := e.Extract(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, ents)
}

func TestLocalExtractLowercaseTextYieldsNoEntities(t *testing.T) {
	e := NewLocal()
	ents, err := e.Extract(context.Background(), "nothing capitalized appears in this sentence")
	require.NoError(t, err)
	require.Empty(t, ents)
}

func TestHTTPClientExtractsViaConfiguredEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/extract", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"entities": []map[string]any{
				{"text": "Jane Smith", "label": "Person", "start": 6, "end": 16},
			},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(config.EntitiesConfig{BaseURL: srv.URL})
	ents, err := client.Extract(context.Background(), "I met Jane Smith")
	require.NoError(t, err)
	require.Len(t, ents, 1)
	require.Equal(t, "Jane Smith", ents[0].Text)
	require.Equal(t, model.EntityPerson, ents[0].Type)
}

func TestHTTPClientUnavailableWithoutBaseURL(t *testing.T) {
	client := NewHTTPClient(config.EntitiesConfig{})
	_, err := client.Extract(context.Background(), "hello")
	require.Error(t, err)
	require.Equal(t, model.KindUnavailable, model.KindOf(err))
}

func TestHTTPClientUnavailableOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(config.EntitiesConfig{BaseURL: srv.URL})
	_, err := client.Extract(context.Background(), "hello")
	require.Error(t, err)
	require.Equal(t, model.KindUnavailable, model.KindOf(err))
}

func TestHTTPClientEmptyTextSkipsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewHTTPClient(config.EntitiesConfig{BaseURL: srv.URL})
	ents, err := client.Extract(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, ents)
	require.False(t, called)
}
