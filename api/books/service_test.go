package books_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/book-inventory-client/api"
	"github.com/jrsteele09/book-inventory-client/api/books"
	apperrors "github.com/jrsteele09/book-inventory-client/internal/errors"
	"github.com/jrsteele09/book-inventory-client/internal/utils"
)

type captured struct {
	method string
	path   string
	query  string
	ctype  string
	body   []byte
}

type backend struct {
	mu    sync.Mutex
	calls []captured
}

func (b *backend) last() captured {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[len(b.calls)-1]
}

func newService(t *testing.T, reply string) (*books.Service, *backend) {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.calls = append(b.calls, captured{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			ctype:  r.Header.Get("Content-Type"),
			body:   body,
		})
		b.mu.Unlock()
		if strings.HasSuffix(r.URL.Path, "/csv") {
			w.Header().Set("Content-Type", "text/csv")
		}
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t", TokenType: "Bearer"})
	return books.New(api.NewClient(srv.URL, srv.Client(), tokens)), b
}

func TestSearch(t *testing.T) {
	reply := `{"data":{"books":[{"id":"1","title":"Dune","price":29.99,"availability":true}],"total":1,"page":1,"limit":10,"totalPages":1}}`

	t.Run("defaults", func(t *testing.T) {
		svc, b := newService(t, reply)
		got, err := svc.Search(context.Background(), books.Filters{}, books.Sort{}, books.Page{})
		require.NoError(t, err)
		require.Len(t, got.Books, 1)
		require.Equal(t, "Dune", got.Books[0].Title)
		require.Equal(t, 1, got.TotalPages)

		call := b.last()
		require.Equal(t, http.MethodPost, call.method)
		require.Equal(t, "/books/search", call.path)
		require.JSONEq(t, `{"query":{"sortBy":"title","sortDir":"asc","page":1,"limit":10}}`, string(call.body))
	})

	t.Run("filters and ordering", func(t *testing.T) {
		svc, b := newService(t, reply)
		_, err := svc.Search(context.Background(),
			books.Filters{Genre: "Sci-Fi", Availability: utils.Ptr(false), Search: "dune"},
			books.Sort{Field: "price", Dir: books.SortDesc},
			books.Page{Page: 3, Limit: 25},
		)
		require.NoError(t, err)
		require.JSONEq(t, `{"query":{"genre":"Sci-Fi","availability":false,"search":"dune","sortBy":"price","sortDir":"desc","page":3,"limit":25}}`, string(b.last().body))
	})

	t.Run("unknown sort field", func(t *testing.T) {
		svc, b := newService(t, reply)
		_, err := svc.Search(context.Background(), books.Filters{}, books.Sort{Field: "isbn"}, books.Page{})
		require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
		require.Empty(t, b.calls)
	})
}

func TestCRUD(t *testing.T) {
	valid := books.Input{Title: "Dune", Author: "Herbert", Publisher: "Chilton", Genre: "Sci-Fi", Price: 10}

	t.Run("create", func(t *testing.T) {
		svc, b := newService(t, `{"data":{"id":"9","title":"Dune"}}`)
		got, err := svc.Create(context.Background(), valid)
		require.NoError(t, err)
		require.Equal(t, "9", got.ID)

		var sent books.Input
		require.NoError(t, json.Unmarshal(b.last().body, &sent))
		require.Equal(t, valid, sent)
	})

	t.Run("get unwrapped", func(t *testing.T) {
		svc, b := newService(t, `{"id":"9","title":"Dune"}`)
		got, err := svc.Get(context.Background(), "9")
		require.NoError(t, err)
		require.Equal(t, "Dune", got.Title)
		require.Equal(t, "/books/9", b.last().path)
	})

	t.Run("update", func(t *testing.T) {
		svc, b := newService(t, `{"data":{"id":"9","title":"Dune Messiah"}}`)
		got, err := svc.Update(context.Background(), "9", valid)
		require.NoError(t, err)
		require.Equal(t, "Dune Messiah", got.Title)
		require.Equal(t, http.MethodPut, b.last().method)
	})

	t.Run("delete", func(t *testing.T) {
		svc, b := newService(t, ``)
		require.NoError(t, svc.Delete(context.Background(), "9"))
		require.Equal(t, http.MethodDelete, b.last().method)
		require.Equal(t, "/books/9", b.last().path)
	})

	t.Run("missing id", func(t *testing.T) {
		svc, _ := newService(t, ``)
		require.ErrorIs(t, svc.Delete(context.Background(), " "), apperrors.ErrInvalidRequest)
	})

	t.Run("invalid input", func(t *testing.T) {
		svc, b := newService(t, ``)
		_, err := svc.Create(context.Background(), books.Input{Title: "Dune", Price: -1})
		require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
		require.Contains(t, err.Error(), "author, genre, publisher required")
		require.Empty(t, b.calls)
	})
}

func TestNames(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		svc, _ := newService(t, `{"data":["Fiction","Sci-Fi"]}`)
		got, err := svc.Genres(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"Fiction", "Sci-Fi"}, got)
	})

	t.Run("not a list reads as empty", func(t *testing.T) {
		svc, _ := newService(t, `{"data":{"unexpected":true}}`)
		got, err := svc.Publishers(context.Background())
		require.NoError(t, err)
		require.Empty(t, got)
		require.NotNil(t, got)
	})
}

func TestUploadImage(t *testing.T) {
	svc, b := newService(t, `{"data":{"success":true,"imageUrl":"https://cdn.example.com/a.png","originalName":"a.png","size":4,"mimeType":"image/png"}}`)
	got, err := svc.UploadImage(context.Background(), "covers/a.png", bytes.NewReader([]byte("\x89PNG")))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/a.png", got.Location())

	call := b.last()
	require.Equal(t, "/books/upload-image-only", call.path)
	require.True(t, strings.HasPrefix(call.ctype, "multipart/form-data; boundary="))

	req, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader(call.body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", call.ctype)
	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "a.png", header.Filename)
	assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Equal(t, "\x89PNG", string(content))
}

func TestUploadToStorageFolder(t *testing.T) {
	svc, b := newService(t, `{"url":"https://cdn.example.com/x/a.jpg","originalName":"a.jpg","size":1,"mimeType":"image/jpeg"}`)
	got, err := svc.UploadToStorage(context.Background(), "a.jpg", strings.NewReader("x"), "covers")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/x/a.jpg", got.Location())

	req, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader(b.last().body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", b.last().ctype)
	require.NoError(t, req.ParseMultipartForm(1<<20))
	require.Equal(t, "covers", req.FormValue("folder"))
}

func TestStorage(t *testing.T) {
	t.Run("delete image", func(t *testing.T) {
		svc, b := newService(t, `{"data":true}`)
		ok, err := svc.DeleteImage(context.Background(), "https://cdn.example.com/a b.png")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "/storage/delete", b.last().path)
		require.Equal(t, "url=https%3A%2F%2Fcdn.example.com%2Fa+b.png", b.last().query)
	})

	t.Run("metadata", func(t *testing.T) {
		svc, _ := newService(t, `{"data":{"size":10}}`)
		meta, err := svc.ImageMetadata(context.Background(), "https://cdn.example.com/a.png")
		require.NoError(t, err)
		require.EqualValues(t, 10, meta["size"])
	})
}

func TestExportCSV(t *testing.T) {
	svc, b := newService(t, "id,title\n1,Dune\n")
	var buf bytes.Buffer
	n, err := svc.ExportCSV(context.Background(), books.Filters{Genre: "Sci-Fi", Availability: utils.Ptr(true)}, &buf)
	require.NoError(t, err)
	require.EqualValues(t, len("id,title\n1,Dune\n"), n)
	require.Equal(t, "id,title\n1,Dune\n", buf.String())
	require.Equal(t, "availability=true&genre=Sci-Fi", b.last().query)
}
