package domain

import "time"

// LogEntry is one recorded API invocation. Entries are never mutated.
type LogEntry struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Endpoint     string    `json:"endpoint" bson:"endpoint"`
	Route        string    `json:"route,omitempty" bson:"route,omitempty"`
	Method       string    `json:"method" bson:"method"`
	StatusCode   int       `json:"status_code" bson:"status_code"`
	LatencyMs    int64     `json:"latency_ms" bson:"latency_ms"`
	UserID       *string   `json:"user_id,omitempty" bson:"user_id,omitempty"`
	RequestBody  *string   `json:"request_body,omitempty" bson:"request_body,omitempty"`
	ResponseBody *string   `json:"response_body,omitempty" bson:"response_body,omitempty"`
	Error        *string   `json:"error,omitempty" bson:"error,omitempty"`
	RequestID    string    `json:"request_id,omitempty" bson:"request_id,omitempty"`
	Timestamp    time.Time `json:"timestamp" bson:"timestamp"`
}

// LogFilter narrows a log listing.
type LogFilter struct {
	Method         string
	StatusCode     int
	EndpointPrefix string
	UserID         string
	Page           int
	Limit          int
}

// SettingAPILogging is the system_settings key holding the logging flag.
const SettingAPILogging = "api_logging_enabled"
