package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthStatus struct {
	Status      string    `json:"status"`
	LastChecked time.Time `json:"last_checked"`
	Uptime      string    `json:"uptime"`
	Version     string    `json:"version"`
}

var (
	healthStatus = HealthStatus{
		Status:      "ok",
		LastChecked: time.Now(),
		Uptime:      "0s",
		Version:     "1.0.0",
	}
	healthMutex      sync.RWMutex
	startTime        = time.Now()
	lastResponse     []byte
	lastResponseTime time.Time
	cacheDuration    = 5 * time.Second
)

// HealthCheckMiddleware serves the health endpoint with a short response cache.
func HealthCheckMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		healthMutex.RLock()
		cached := lastResponse
		fresh := time.Since(lastResponseTime) < cacheDuration
		healthMutex.RUnlock()

		if fresh && cached != nil {
			c.Data(http.StatusOK, "application/json", cached)
			return
		}

		c.Data(http.StatusOK, "application/json", refreshHealthResponse())
	}
}

// refreshHealthResponse rebuilds the cached payload under the write lock.
// Concurrent cache misses may race here; the re-check keeps them from
// marshalling twice.
func refreshHealthResponse() []byte {
	healthMutex.Lock()
	defer healthMutex.Unlock()

	if time.Since(lastResponseTime) < cacheDuration && lastResponse != nil {
		return lastResponse
	}

	healthStatus.Uptime = time.Since(startTime).String()
	healthStatus.LastChecked = time.Now()

	response, _ := json.Marshal(healthStatus)
	lastResponse = response
	lastResponseTime = time.Now()

	return response
}

func UpdateHealthStatus(status string) {
	healthMutex.Lock()
	defer healthMutex.Unlock()

	healthStatus.Status = status
	healthStatus.LastChecked = time.Now()
	lastResponse = nil
}

func SetVersion(version string) {
	healthMutex.Lock()
	defer healthMutex.Unlock()

	healthStatus.Version = version
	lastResponse = nil
}
