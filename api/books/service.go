// Package books is the client for the inventory's book catalogue and the
// image storage that backs it.
package books

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/jrsteele09/book-inventory-client/api"
	apperrors "github.com/jrsteele09/book-inventory-client/internal/errors"
)

const (
	booksPath       = "/books"
	searchPath      = "/books/search"
	genresPath      = "/books/genres"
	publishersPath  = "/books/publishers"
	uploadImagePath = "/books/upload-image-only"
	exportCSVPath   = "/books/export/csv"
	storageUpload   = "/storage/upload"
	storageDelete   = "/storage/delete"
	storageMetadata = "/storage/metadata"

	formFileField = "file"
)

type Service struct {
	client *api.Client
}

func New(client *api.Client) *Service {
	return &Service{client: client}
}

type searchQuery struct {
	Filters
	SortBy  string  `json:"sortBy"`
	SortDir SortDir `json:"sortDir"`
	Page    int     `json:"page"`
	Limit   int     `json:"limit"`
}

// Search lists books matching filters. A zero sort or page takes the defaults
// (title ascending, page 1 of 10).
func (s *Service) Search(ctx context.Context, filters Filters, sort Sort, page Page) (*ListResponse, error) {
	if sort.Field == "" {
		sort.Field = DefaultSort.Field
	}
	if sort.Dir == "" {
		sort.Dir = DefaultSort.Dir
	}
	if !slices.Contains(SortFields, sort.Field) {
		return nil, fmt.Errorf("[books Search] %w: cannot sort by %q", apperrors.ErrInvalidRequest, sort.Field)
	}
	if sort.Dir != SortAsc && sort.Dir != SortDesc {
		return nil, fmt.Errorf("[books Search] %w: sort direction %q", apperrors.ErrInvalidRequest, sort.Dir)
	}
	if page.Page < 1 {
		page.Page = DefaultPage.Page
	}
	if page.Limit < 1 {
		page.Limit = DefaultPage.Limit
	}

	body := map[string]searchQuery{
		"query": {Filters: filters, SortBy: sort.Field, SortDir: sort.Dir, Page: page.Page, Limit: page.Limit},
	}
	var out ListResponse
	if err := s.client.DoJSON(ctx, api.Request{Method: http.MethodPost, Path: searchPath, Body: body}, &out); err != nil {
		return nil, fmt.Errorf("[books Search] %w", err)
	}
	return &out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Book, error) {
	path, err := bookPath(id)
	if err != nil {
		return nil, err
	}
	var out Book
	if err := s.client.DoJSON(ctx, api.Request{Path: path}, &out); err != nil {
		return nil, fmt.Errorf("[books Get] %s: %w", id, err)
	}
	return &out, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*Book, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var out Book
	if err := s.client.DoJSON(ctx, api.Request{Method: http.MethodPost, Path: booksPath, Body: in}, &out); err != nil {
		return nil, fmt.Errorf("[books Create] %w", err)
	}
	return &out, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*Book, error) {
	path, err := bookPath(id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var out Book
	if err := s.client.DoJSON(ctx, api.Request{Method: http.MethodPut, Path: path, Body: in}, &out); err != nil {
		return nil, fmt.Errorf("[books Update] %s: %w", id, err)
	}
	return &out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	path, err := bookPath(id)
	if err != nil {
		return err
	}
	if err := s.client.DoJSON(ctx, api.Request{Method: http.MethodDelete, Path: path}, nil); err != nil {
		return fmt.Errorf("[books Delete] %s: %w", id, err)
	}
	return nil
}

func (s *Service) Genres(ctx context.Context) ([]string, error) {
	return s.names(ctx, genresPath)
}

func (s *Service) Publishers(ctx context.Context) ([]string, error) {
	return s.names(ctx, publishersPath)
}

// names reads a list of strings. Anything that is not a list reads as empty.
func (s *Service) names(ctx context.Context, path string) ([]string, error) {
	var raw json.RawMessage
	if err := s.client.DoJSON(ctx, api.Request{Path: path}, &raw); err != nil {
		return nil, fmt.Errorf("[books %s] %w", path, err)
	}
	var out []string
	if json.Unmarshal(raw, &out) != nil || out == nil {
		return []string{}, nil
	}
	return out, nil
}

// UploadImage stores an image for later use as a book cover and returns its
// location. name is used for the part's file name and content type.
func (s *Service) UploadImage(ctx context.Context, name string, r io.Reader) (*UploadedImage, error) {
	return s.upload(ctx, uploadImagePath, name, r, nil)
}

// UploadToStorage is UploadImage against the generic storage endpoint, filed
// under folder when it is not empty.
func (s *Service) UploadToStorage(ctx context.Context, name string, r io.Reader, folder string) (*UploadedImage, error) {
	var fields map[string]string
	if folder != "" {
		fields = map[string]string{"folder": folder}
	}
	return s.upload(ctx, storageUpload, name, r, fields)
}

func (s *Service) upload(ctx context.Context, path, name string, r io.Reader, fields map[string]string) (*UploadedImage, error) {
	body, contentType, err := multipartBody(name, r, fields)
	if err != nil {
		return nil, fmt.Errorf("[books upload] %s: %w", name, err)
	}
	var out UploadedImage
	err = s.client.DoJSON(ctx, api.Request{
		Method:      http.MethodPost,
		Path:        path,
		RawBody:     body,
		ContentType: contentType,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("[books upload] %s: %w", name, err)
	}
	return &out, nil
}

// DeleteImage removes a stored image by its URL.
func (s *Service) DeleteImage(ctx context.Context, imageURL string) (bool, error) {
	var deleted bool
	err := s.client.DoJSON(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   storageDelete,
		Query:  url.Values{"url": {imageURL}},
	}, &deleted)
	if err != nil {
		return false, fmt.Errorf("[books DeleteImage] %w", err)
	}
	return deleted, nil
}

// ImageMetadata returns whatever the storage backend knows about an image.
func (s *Service) ImageMetadata(ctx context.Context, imageURL string) (map[string]any, error) {
	var out map[string]any
	err := s.client.DoJSON(ctx, api.Request{
		Path:  storageMetadata,
		Query: url.Values{"url": {imageURL}},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("[books ImageMetadata] %w", err)
	}
	return out, nil
}

// ExportCSV streams the catalogue, narrowed by filters, as CSV into w.
func (s *Service) ExportCSV(ctx context.Context, filters Filters, w io.Writer) (int64, error) {
	n, err := s.client.Stream(ctx, api.Request{Path: exportCSVPath, Query: filters.Values()}, w)
	if err != nil {
		return n, fmt.Errorf("[books ExportCSV] %w", err)
	}
	return n, nil
}

// Values renders the set filters as query parameters.
func (f Filters) Values() url.Values {
	v := url.Values{}
	setIf := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	setIf("genre", f.Genre)
	setIf("publisher", f.Publisher)
	setIf("author", f.Author)
	setIf("search", f.Search)
	if f.Availability != nil {
		v.Set("availability", strconv.FormatBool(*f.Availability))
	}
	return v
}

// Validate checks the fields the backend requires.
func (in Input) Validate() error {
	var missing []string
	for field, value := range map[string]string{
		"title":     in.Title,
		"author":    in.Author,
		"publisher": in.Publisher,
		"genre":     in.Genre,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("%w: %s required", apperrors.ErrInvalidRequest, strings.Join(missing, ", "))
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must be positive", apperrors.ErrInvalidRequest)
	}
	return nil
}

func bookPath(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("%w: book id is required", apperrors.ErrInvalidRequest)
	}
	return booksPath + "/" + url.PathEscape(id), nil
}

func multipartBody(name string, r io.Reader, fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, formFileField, filepath.Base(name)))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
