package models

import "time"

// HealthCheck reports the optional collaborators; conversion itself has no
// external dependency and is always available.
type HealthCheck struct {
	Status        string            `json:"status"`
	Timestamp     time.Time         `json:"timestamp"`
	Services      map[string]string `json:"services"`
	Workers       int               `json:"workers"`
	FailurePolicy string            `json:"failure_policy"`
}
