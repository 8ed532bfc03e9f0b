// Package pages renders the html views of the game.
package pages

import (
	"embed"
	"html/template"
	"time"

	"github.com/a-h/templ"
	"github.com/jon4hz/naijamap/internal/api/models"
	"github.com/jon4hz/naijamap/internal/regions"
	"github.com/samber/lo"
)

//go:embed templates/*.html
var files embed.FS

var (
	signupTmpl = parse("signup.html")
	loginTmpl  = parse("login.html")
	gameTmpl   = parse("game.html")
	stateTmpl  = parse("state.html")
)

func parse(page string) *template.Template {
	return template.Must(template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+page))
}

// Page is shared by every view.
type Page struct {
	Title string
	User  *models.User
}

type SignupData struct {
	Page
	Error    string
	Username string
	Email    string
}

type LoginData struct {
	Page
	Error    string
	Username string
}

type GameData struct {
	Page
	Guessed    []string
	GuessedSet map[string]bool
	Regions    []regions.Region
	Names      []string
	Found      int
	Total      int
	HighScore  int
	LastSaved  time.Time
}

type StateData struct {
	Page
	Name   string
	Region regions.Region
	Known  bool
}

func Signup(data SignupData) templ.Component {
	data.Title = "Sign up"
	return templ.FromGoHTML(signupTmpl, data)
}

func Login(data LoginData) templ.Component {
	data.Title = "Log in"
	return templ.FromGoHTML(loginTmpl, data)
}

// Game renders the game with guessed as the initial client state.
func Game(user *models.User, guessed []string, highScore int, lastSaved time.Time) templ.Component {
	if guessed == nil {
		guessed = []string{}
	}
	data := GameData{
		Page:       Page{Title: "Play", User: user},
		Guessed:    guessed,
		GuessedSet: lo.SliceToMap(guessed, func(name string) (string, bool) { return name, true }),
		Regions:    regions.All(),
		Names:      regions.Names(),
		Found:      regions.CountKnown(guessed),
		Total:      regions.Total(),
		HighScore:  highScore,
		LastSaved:  lastSaved,
	}
	return templ.FromGoHTML(gameTmpl, data)
}

// State renders the detail view of a region. name is expected to be title cased already.
func State(user *models.User, name string) templ.Component {
	region, known := regions.Lookup(name)
	return templ.FromGoHTML(stateTmpl, StateData{
		Page:   Page{Title: name, User: user},
		Name:   name,
		Region: region,
		Known:  known,
	})
}
