package auditlogs

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

type AuditLog struct {
	ID             int             `json:"id"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      *time.Time      `json:"deleted_at"`
	UserID         string          `json:"user_id"`
	UserEmail      *string         `json:"user_email"`
	UserName       *string         `json:"user_name"`
	Action         string          `json:"action"`
	EntityType     *string         `json:"entity_type"`
	EntityID       *string         `json:"entity_id"`
	Description    string          `json:"description"`
	RequestData    json.RawMessage `json:"request_data,omitempty"`
	ResponseData   json.RawMessage `json:"response_data,omitempty"`
	Status         string          `json:"status"`
	Level          string          `json:"level"`
	IPAddress      string          `json:"ip_address"`
	UserAgent      string          `json:"user_agent"`
	Endpoint       string          `json:"endpoint"`
	HTTPMethod     string          `json:"http_method"`
	ResponseTimeMS int64           `json:"response_time_ms"`
	ErrorMessage   *string         `json:"error_message"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

type SortDir string

const (
	SortAsc  SortDir = "ASC"
	SortDesc SortDir = "DESC"
)

// Filters are sent as query parameters; zero values are left out.
// Dates use the backend's YYYY-MM-DD form.
type Filters struct {
	Page       int
	Limit      int
	Search     string
	Action     string
	EntityType string
	Status     string
	Level      string
	StartDate  string
	EndDate    string
	SortBy     string
	SortDir    SortDir
}

func (f Filters) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	set("search", f.Search)
	set("action", f.Action)
	set("entity_type", f.EntityType)
	set("status", f.Status)
	set("level", f.Level)
	set("start_date", f.StartDate)
	set("end_date", f.EndDate)
	set("sort_by", f.SortBy)
	set("sort_dir", string(f.SortDir))
	return v
}

type ListResponse struct {
	Logs       []AuditLog `json:"logs"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"totalPages"`
}

type ActionCount struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type LevelCount struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

type Stats struct {
	TotalLogs      int           `json:"totalLogs"`
	LogsByAction   []ActionCount `json:"logsByAction"`
	LogsByStatus   []StatusCount `json:"logsByStatus"`
	LogsByLevel    []LevelCount  `json:"logsByLevel"`
	RecentActivity []AuditLog    `json:"recentActivity"`
}

// Vocabulary lists the values the action, status and level filters accept.
type Vocabulary struct {
	Actions  []string `json:"actions"`
	Statuses []string `json:"statuses"`
	Levels   []string `json:"levels"`
}

type InventoryFilterOptions struct {
	Genres     []string `json:"genres"`
	Publishers []string `json:"publishers"`
	Authors    []string `json:"authors"`
}
