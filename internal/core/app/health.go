package app

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if result, ok := s.app.LastResult(); ok {
		status.Components["pipeline"] = fmt.Sprintf("ok (%d files, %d modules)", result.FilesScanned, result.ModulesIndexed)
		if len(result.Warnings) > 0 {
			status.Components["last_run_warnings"] = fmt.Sprintf("%d warning(s), first: %s", len(result.Warnings), result.Warnings[0])
		}
	} else {
		status.Components["pipeline"] = "no completed run yet"
	}

	if s.app.history != nil {
		status.Components["history"] = "ok"
	} else if s.app.Config.History.Enabled {
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	}

	if s.app.watcher != nil {
		status.Components["watcher"] = "ok"
	}

	return status
}
