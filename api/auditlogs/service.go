// Package auditlogs reads and maintains the backend's audit trail.
//
// Replies from these endpoints are wrapped twice ({data: {data: ...}}); the
// service returns the inner payload.
package auditlogs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jrsteele09/book-inventory-client/api"
	apperrors "github.com/jrsteele09/book-inventory-client/internal/errors"
)

const (
	basePath = "/audit-logs"

	// DefaultRetentionDays is what Cleanup keeps when given no positive value.
	DefaultRetentionDays = 90
)

// NowTimeFunc dates export file names.
var NowTimeFunc = time.Now

type Service struct {
	client *api.Client
}

func New(client *api.Client) *Service {
	return &Service{client: client}
}

func (s *Service) List(ctx context.Context, f Filters) (*ListResponse, error) {
	var out ListResponse
	if err := s.get(ctx, "", f.Values(), &out); err != nil {
		return nil, fmt.Errorf("[auditlogs List] %w", err)
	}
	return &out, nil
}

// Inventory lists only the entries about the book catalogue.
func (s *Service) Inventory(ctx context.Context, f Filters) (*ListResponse, error) {
	var out ListResponse
	if err := s.get(ctx, "/inventory", f.Values(), &out); err != nil {
		return nil, fmt.Errorf("[auditlogs Inventory] %w", err)
	}
	return &out, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := s.get(ctx, "/stats", nil, &out); err != nil {
		return nil, fmt.Errorf("[auditlogs Stats] %w", err)
	}
	return &out, nil
}

func (s *Service) Actions(ctx context.Context) (*Vocabulary, error) {
	var out Vocabulary
	if err := s.get(ctx, "/actions", nil, &out); err != nil {
		return nil, fmt.Errorf("[auditlogs Actions] %w", err)
	}
	return &out, nil
}

func (s *Service) Get(ctx context.Context, id int) (*AuditLog, error) {
	if id <= 0 {
		return nil, fmt.Errorf("[auditlogs Get] %w: log id must be positive", apperrors.ErrInvalidRequest)
	}
	var out AuditLog
	if err := s.get(ctx, "/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, fmt.Errorf("[auditlogs Get] %d: %w", id, err)
	}
	return &out, nil
}

func (s *Service) InventoryFilterOptions(ctx context.Context) (*InventoryFilterOptions, error) {
	var out InventoryFilterOptions
	if err := s.get(ctx, "/inventory/filter-options", nil, &out); err != nil {
		return nil, fmt.Errorf("[auditlogs InventoryFilterOptions] %w", err)
	}
	return &out, nil
}

// Export streams the filtered log as CSV into w.
func (s *Service) Export(ctx context.Context, f Filters, w io.Writer) (int64, error) {
	n, err := s.client.Stream(ctx, api.Request{Path: basePath + "/export", Query: f.Values()}, w)
	if err != nil {
		return n, fmt.Errorf("[auditlogs Export] %w", err)
	}
	return n, nil
}

// InventoryExport is Export for the catalogue entries only.
func (s *Service) InventoryExport(ctx context.Context, f Filters, w io.Writer) (int64, error) {
	n, err := s.client.Stream(ctx, api.Request{Path: basePath + "/inventory/export", Query: f.Values()}, w)
	if err != nil {
		return n, fmt.Errorf("[auditlogs InventoryExport] %w", err)
	}
	return n, nil
}

// Cleanup deletes entries older than days and returns how many went.
func (s *Service) Cleanup(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		days = DefaultRetentionDays
	}
	var out struct {
		DeletedCount int `json:"deletedCount"`
	}
	if err := s.get(ctx, "/cleanup", url.Values{"days": {strconv.Itoa(days)}}, &out); err != nil {
		return 0, fmt.Errorf("[auditlogs Cleanup] %w", err)
	}
	return out.DeletedCount, nil
}

// DeleteAll wipes the audit trail and returns the number of entries removed.
func (s *Service) DeleteAll(ctx context.Context) (int, error) {
	var deleted int
	if err := s.do(ctx, http.MethodDelete, "/delete-all", nil, &deleted); err != nil {
		return 0, fmt.Errorf("[auditlogs DeleteAll] %w", err)
	}
	return deleted, nil
}

// ExportFileName is the name a browser download would have used.
func ExportFileName(inventory bool) string {
	prefix := "audit-logs"
	if inventory {
		prefix = "inventory-logs"
	}
	return fmt.Sprintf("%s-%s.csv", prefix, NowTimeFunc().UTC().Format(time.DateOnly))
}

func (s *Service) get(ctx context.Context, path string, query url.Values, out any) error {
	return s.do(ctx, http.MethodGet, path, query, out)
}

func (s *Service) do(ctx context.Context, method, path string, query url.Values, out any) error {
	resp, err := s.client.Do(ctx, api.Request{Method: method, Path: basePath + path, Query: query})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	return api.UnwrapTwiceInto(body, out)
}
