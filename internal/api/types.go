package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the answer to an analysis request.
type Response struct {
	Identifier        string  `json:"identifier"`
	StartTime         float64 `json:"start_time"`
	RequestedDuration float64 `json:"requested_duration"`
	Status            string  `json:"status"`
	Outcome           string  `json:"outcome,omitempty"`
	Reason            string  `json:"reason,omitempty"`
	Cached            bool    `json:"cached"`
	Error             string  `json:"error,omitempty"`
}

// HealthResponse is returned by the liveness probe.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse describes a request that could not be served.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// CacheEntry describes a cached result in a transport-friendly format.
type CacheEntry struct {
	Identifier        string  `json:"identifier"`
	RequestedDuration float64 `json:"requested_duration"`
	StartTime         float64 `json:"start_time"`
	Outcome           string  `json:"outcome"`
	Reason            string  `json:"reason,omitempty"`
	CreatedAt         string  `json:"created_at,omitempty"`
	AccessedAt        string  `json:"accessed_at,omitempty"`
}

// CacheListResponse wraps the cached results.
type CacheListResponse struct {
	Entries    []CacheEntry `json:"entries"`
	MaxEntries int          `json:"max_entries"`
}

// CacheClearResponse reports how many entries a delete removed.
type CacheClearResponse struct {
	Removed int64 `json:"removed"`
}

// DependencyStatus captures availability of an external binary.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running       bool               `json:"running"`
	PID           int                `json:"pid"`
	ListenAddress string             `json:"listen_address,omitempty"`
	DatabasePath  string             `json:"database_path,omitempty"`
	ClipsPath     string             `json:"clips_path,omitempty"`
	LockFilePath  string             `json:"lock_file_path"`
	CacheEntries  int                `json:"cache_entries"`
	Dependencies  []DependencyStatus `json:"dependencies"`
}

// Clip is a saved preview range.
type Clip struct {
	Identifier string  `json:"identifier"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Duration   float64 `json:"duration"`
	UpdatedAt  string  `json:"updated_at,omitempty"`
}

// ClipListResponse wraps every saved clip.
type ClipListResponse struct {
	Clips []Clip `json:"clips"`
}

// ClipDeleteResponse reports whether a delete removed a clip.
type ClipDeleteResponse struct {
	Deleted bool `json:"deleted"`
}
