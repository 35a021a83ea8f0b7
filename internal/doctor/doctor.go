// Package doctor reports whether the engine's optional collaborators
// (embedder, entity extractor) and its storage directory are ready to
// serve, surfaced on GET /health and the "doctor" CLI subcommand.
package doctor

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/shodhmemory/engine/pkg/config"
)

// Status classifies one dependency's readiness.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
	StatusDisabled Status = "disabled"
)

// Check is one collaborator's readiness result.
type Check struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Report summarizes overall engine readiness.
type Report struct {
	Offline bool    `json:"offline"`
	Healthy bool    `json:"healthy"`
	Checks  []Check `json:"checks"`
}

// Run probes every collaborator: the embedder and entity-extractor
// HTTP endpoints (if configured; an unset BaseURL means the local
// fallback is in use and reports disabled), and the storage
// directory's writability. Each endpoint probe is bounded by that
// collaborator's configured Timeout (5s when unset).
func Run(cfg config.Config) Report {
	report := Report{Offline: cfg.Offline, Healthy: true}

	report.Checks = append(report.Checks, checkStoragePath(cfg.StoragePath))
	report.Checks = append(report.Checks, checkCollaborator("embedder", cfg.Embedder.BaseURL, cfg.Embedder.Timeout))
	report.Checks = append(report.Checks, checkCollaborator("entities", cfg.Entities.BaseURL, cfg.Entities.Timeout))

	for _, c := range report.Checks {
		if c.Status == StatusDown {
			report.Healthy = false
		}
	}
	return report
}

func checkStoragePath(path string) Check {
	if path == "" {
		return Check{Name: "storage_path", Status: StatusDown, Message: "no storage path configured"}
	}
	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = parentDir(path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Check{Name: "storage_path", Status: StatusDown, Message: err.Error()}
	}
	probe := dir + "/.doctor_write_probe"
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return Check{Name: "storage_path", Status: StatusDown, Message: err.Error()}
	}
	_ = os.Remove(probe)
	return Check{Name: "storage_path", Status: StatusOK}
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

// checkCollaborator probes a configured HTTP collaborator. An unset
// BaseURL means the offline local fallback is in use, which is always
// ready, so that reports as disabled-but-fine rather than down.
func checkCollaborator(name, baseURL string, timeout time.Duration) Check {
	if baseURL == "" {
		return Check{Name: name, Status: StatusDisabled, Message: "using offline local fallback"}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return Check{Name: name, Status: StatusDown, Message: err.Error()}
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return Check{Name: name, Status: StatusDown, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Check{Name: name, Status: StatusDegraded, Message: "endpoint returned server error"}
	}
	return Check{Name: name, Status: StatusOK}
}
