package doctor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shodhmemory/engine/pkg/config"
)

func TestRunReportsHealthyWithDisabledFallbacks(t *testing.T) {
	cfg := *config.DefaultConfig()
	cfg.StoragePath = t.TempDir() + "/data.db"
	report := Run(cfg)
	require.True(t, report.Healthy)
	for _, c := range report.Checks {
		if c.Name == "embedder" || c.Name == "entities" {
			require.Equal(t, StatusDisabled, c.Status)
		}
	}
}

func TestRunMarksMissingStoragePathDown(t *testing.T) {
	cfg := *config.DefaultConfig()
	cfg.StoragePath = ""
	report := Run(cfg)
	require.False(t, report.Healthy)
}

func TestRunProbesConfiguredCollaborator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := *config.DefaultConfig()
	cfg.StoragePath = t.TempDir() + "/data.db"
	cfg.Embedder.BaseURL = srv.URL
	report := Run(cfg)

	var embedderCheck Check
	for _, c := range report.Checks {
		if c.Name == "embedder" {
			embedderCheck = c
		}
	}
	require.Equal(t, StatusOK, embedderCheck.Status)
}
