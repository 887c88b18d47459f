package views

import (
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/multitemplate"
	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Pages rendered through the shared layout.
var Pages = []string{"overview", "tour", "login", "signup", "account", "reviews", "error"}

var funcs = template.FuncMap{
	"upper":     strings.ToUpper,
	"userPhoto": utils.UserPhotoURL,
	"tourImage": utils.TourImageURL,
	"monthYear": func(t time.Time) string { return t.Format("January 2006") },
	"firstDate": func(ds []time.Time) string {
		if len(ds) == 0 {
			return "TBA"
		}
		return ds[0].Format("January 2006")
	},
	"firstName": func(name string) string {
		if i := strings.IndexByte(name, ' '); i > 0 {
			return name[:i]
		}
		return name
	},
	"stars": func(rating int) []bool {
		out := make([]bool, 5)
		for i := range out {
			out[i] = i < rating
		}
		return out
	},
	"roleLabel": func(role string) string {
		if role == entity.RoleLeadGuide {
			return "Lead guide"
		}
		return "Tour guide"
	},
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}

// Renderer parses every page together with the layout.
func Renderer() (multitemplate.Render, error) {
	r := multitemplate.New()
	for _, page := range Pages {
		t, err := template.New("base.html").Funcs(funcs).
			ParseFS(templateFS, "templates/base.html", "templates/"+page+".html")
		if err != nil {
			return nil, err
		}
		r.Add(page, t)
	}
	return r, nil
}

// Static serves one of the embedded asset directories, "js" or "css".
func Static(dir string) http.FileSystem {
	sub, err := fs.Sub(staticFS, "static/"+dir)
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
