package main

import (
	"context"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"
)

const backendPollInterval = 5 * time.Second

// pollBackend loads the table once the backend answers, then watches it.
// The table is reloaded when the backend comes back after an outage.
func (a *App) pollBackend() {
	ticker := time.NewTicker(backendPollInterval)
	defer ticker.Stop()

	// Try immediately on startup
	loaded := a.tryLoad()

	for {
		select {
		case <-a.stopPoll:
			return
		case <-ticker.C:
			if !loaded {
				loaded = a.tryLoad()
				continue
			}

			wasConnected := a.backendUp.Load()
			isConnected := a.ping()

			if isConnected && !wasConnected {
				// Back after an outage; pick up changes made meanwhile
				a.log.Info("backend reachable again")
				a.tryLoad()
			} else if !isConnected && wasConnected {
				a.log.Warn("backend unreachable")
				a.setBackendStatus(false, "Backend unreachable. Waiting...")
			}
		}
	}
}

// tryLoad runs one load and reports the backend status it implies
func (a *App) tryLoad() bool {
	if err := a.tracker.Load(a.ctx); err != nil {
		a.setBackendStatus(false, "Waiting for backend...")
		return false
	}
	a.setBackendStatus(true, "Connected")
	return true
}

func (a *App) ping() bool {
	ctx, cancel := context.WithTimeout(a.ctx, a.cfg.RequestTimeout)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		a.log.Debug("backend ping failed", zap.Error(err))
		return false
	}
	return true
}

func (a *App) setBackendStatus(connected bool, message string) {
	a.backendUp.Store(connected)
	runtime.EventsEmit(a.ctx, "backend:status", map[string]interface{}{
		"connected": connected,
		"message":   message,
		"url":       a.cfg.APIURL,
	})
}

// GetConnectionStatus returns the last known backend status
func (a *App) GetConnectionStatus() map[string]interface{} {
	if a.backendUp.Load() {
		return map[string]interface{}{
			"connected": true,
			"message":   "Connected",
			"url":       a.cfg.APIURL,
		}
	}
	return map[string]interface{}{
		"connected": false,
		"message":   "Waiting for backend...",
		"url":       a.cfg.APIURL,
	}
}
