package books

import "time"

type Book struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Publisher    string    `json:"publisher"`
	Price        float64   `json:"price"`
	Availability bool      `json:"availability"`
	Genre        string    `json:"genre"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Input is the writable part of a Book, sent on create and update.
type Input struct {
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	Publisher    string  `json:"publisher"`
	Price        float64 `json:"price"`
	Availability bool    `json:"availability"`
	Genre        string  `json:"genre"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// Filters narrow a search. Empty fields are not sent.
type Filters struct {
	Genre        string `json:"genre,omitempty"`
	Publisher    string `json:"publisher,omitempty"`
	Author       string `json:"author,omitempty"`
	Availability *bool  `json:"availability,omitempty"`
	Search       string `json:"search,omitempty"`
}

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// SortFields are the fields the backend can order by.
var SortFields = []string{"title", "author", "publisher", "price", "genre", "createdAt"}

type Sort struct {
	Field string
	Dir   SortDir
}

type Page struct {
	Page  int
	Limit int
}

var (
	DefaultSort = Sort{Field: "title", Dir: SortAsc}
	DefaultPage = Page{Page: 1, Limit: 10}
)

type ListResponse struct {
	Books      []Book `json:"books"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}

// UploadedImage describes an image stored by the backend.
type UploadedImage struct {
	Success      bool   `json:"success,omitempty"`
	Message      string `json:"message,omitempty"`
	URL          string `json:"url,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
}

// Location returns whichever of ImageURL and URL the endpoint filled in.
func (u UploadedImage) Location() string {
	if u.ImageURL != "" {
		return u.ImageURL
	}
	return u.URL
}
