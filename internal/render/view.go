package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/atinyakov/GolfClubAuctions/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

// Views served by the single page.
const (
	ViewHome   = "home"
	ViewBrowse = "browse"
	ViewCreate = "create"
)

// ParseView maps the view query parameter to a known view, defaulting to
// home.
func ParseView(v string) string {
	switch v {
	case ViewBrowse, ViewCreate:
		return v
	default:
		return ViewHome
	}
}

// Notice kinds.
const (
	NoticeInfo    = "info"
	NoticeSuccess = "success"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// Notice is a dismissible banner shown above the page.
type Notice struct {
	Kind string
	Text string
}

// Page is the data passed to the layout template.
type Page struct {
	View     string
	Session  session.Session
	Notice   *Notice
	Criteria models.FilterCriteria

	Cards []Card
	Empty *Placeholder
	Count string

	// MyListings is shown on the create view for signed-in users.
	MyListings []Card
}

// SetListings fills the card grid, the count line and, for an empty result,
// the placeholder. The session must be set first.
func (p *Page) SetListings(listings []models.Listing) {
	p.Cards = Cards(listings, p.Session)
	p.Count = Count(len(listings))
	p.Empty = nil
	if len(listings) == 0 {
		e := Empty(p.Session)
		p.Empty = &e
	}
}

var funcs = template.FuncMap{
	"clubTypes":    func() []models.ClubType { return models.ClubTypes },
	"conditions":   func() []models.Condition { return models.Conditions },
	"priceBuckets": func() []models.PriceBucket { return models.PriceBuckets },
	"allTypes":     func() string { return models.AllTypes },
	"noticeClass": func(kind string) string {
		switch kind {
		case NoticeSuccess:
			return "is-success"
		case NoticeWarning:
			return "is-warning"
		case NoticeError:
			return "is-danger"
		default:
			return "is-info"
		}
	},
}

// Renderer executes the page templates.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Page writes the full HTML document for p.
func (r *Renderer) Page(w io.Writer, p Page) error {
	p.View = ParseView(p.View)
	if err := r.tmpl.ExecuteTemplate(w, "layout.html", p); err != nil {
		return fmt.Errorf("render %s: %w", p.View, err)
	}
	return nil
}

// Assets serves the stylesheet, script and stock images under /assets/.
func Assets() http.Handler {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/assets/", http.FileServer(http.FS(sub)))
}
