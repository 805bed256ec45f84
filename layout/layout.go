package layout

import (
	"github.com/spektr-org/winedash/widgets"
)

// ============================================================================
// LAYOUT — Static page descriptor
// ============================================================================
// Built once at startup and handed to every session. A Page is pure data:
// it marshals to JSON for /api/layout and renders to HTML through Render.
// ============================================================================

// Chart placeholder identifiers, also the reactive targets.
const (
	HistogramTarget = "histogram"
	ScatterTarget   = "scatter_chart"
	BarTarget       = "bar_chart"
	PieTarget       = "pie_chart"

	ModalTarget = "modal"
)

const (
	DefaultTitle     = "Wine Dataset Analysis"
	sidebarTitle     = "Sidebar"
	bootstrapCSS     = "https://cdn.jsdelivr.net/npm/bootstrap@5.3.1/dist/css/bootstrap.min.css"
	pageBackground   = "#e5ecf6"
	creditText       = "Dashboard Designed By : "
	placeholderClass = "col-5"
)

// Page is the full dashboard descriptor.
type Page struct {
	Title      string             `json:"title"`
	Stylesheet string             `json:"stylesheet"`
	Sidebar    Sidebar            `json:"sidebar"`
	Main       Main               `json:"main"`
	Modal      Modal              `json:"modal"`
	Dropdowns  []widgets.Dropdown `json:"dropdowns"`
	Buttons    []widgets.Button   `json:"buttons"`
}

// Sidebar is the dark left column with one section per dropdown group.
type Sidebar struct {
	Title    string          `json:"title"`
	Sections []widgets.Group `json:"sections"`
}

// Main is the content column: heading, two rows of charts, designer credit.
type Main struct {
	Heading    string          `json:"heading"`
	Rows       [][]Placeholder `json:"rows"`
	Credit     string          `json:"credit"`
	OpenButton string          `json:"openButton"`
	Background string          `json:"background"`
}

// Placeholder is an empty chart slot bound to a reactive target.
type Placeholder struct {
	ID        string `json:"id"`
	ClassName string `json:"className"`
	Static    bool   `json:"static"` // filled once at session start, no inputs
}

// Modal is the about dialog toggled by the open and close buttons.
type Modal struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Profile     Profile `json:"profile"`
	CloseButton string  `json:"closeButton"`
}

// Profile is the designer card shown in the modal body.
type Profile struct {
	Name  string   `json:"name"`
	Intro string   `json:"intro"`
	About []string `json:"about"`
	Email string   `json:"email"`
	Image string   `json:"image,omitempty"`
	Links []Link   `json:"links"`
}

// Link is a social profile link.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// DefaultProfile is the card of the dashboard's designer.
func DefaultProfile() Profile {
	return Profile{
		Name:  "Karel Hernandez",
		Intro: "Software Developer",
		About: []string{
			"I am a passionate developer with a strong foundation in web, app and game development, backend systems, and blockchain technology. I specialize in creating efficient, scalable, and visually appealing applications using a wide range of tools and technologies.",
			"Proficient in modern JavaScript frameworks and libraries, including Bootstrap and Tailwind CSS for responsive design. Experienced in building robust backend systems, REST APIs, and server-side applications, and in designing relational databases such as PostgreSQL and MySQL.",
		},
		Email: "karelh2207@gmail.com",
		Links: []Link{
			{Label: "LinkedIn", URL: "https://www.linkedin.com/in/karel95/"},
			{Label: "Twitter", URL: "https://twitter.com/"},
			{Label: "GitHub", URL: "https://github.com/Karel95"},
		},
	}
}

// Compose assembles the page from the widget registry. An empty title
// falls back to DefaultTitle.
func Compose(reg *widgets.Registry, title string, about Profile) Page {
	if title == "" {
		title = DefaultTitle
	}

	openLabel := about.Name
	if openLabel == "" {
		if b, ok := reg.Button(widgets.OpenButton); ok {
			openLabel = b.Label
		}
	}
	buttons := reg.Buttons()
	for i := range buttons {
		if buttons[i].ID == widgets.OpenButton {
			buttons[i].Label = openLabel
		}
	}

	return Page{
		Title:      title,
		Stylesheet: bootstrapCSS,
		Sidebar: Sidebar{
			Title:    sidebarTitle,
			Sections: reg.Groups(),
		},
		Main: Main{
			Heading: title,
			Rows: [][]Placeholder{
				{{ID: HistogramTarget, ClassName: placeholderClass}, {ID: ScatterTarget, ClassName: placeholderClass}},
				{{ID: BarTarget, ClassName: placeholderClass}, {ID: PieTarget, ClassName: placeholderClass, Static: true}},
			},
			Credit:     creditText,
			OpenButton: widgets.OpenButton,
			Background: pageBackground,
		},
		Modal: Modal{
			ID:          ModalTarget,
			Title:       about.Name,
			Profile:     about,
			CloseButton: widgets.CloseButton,
		},
		Dropdowns: reg.Dropdowns(),
		Buttons:   buttons,
	}
}

// ChartTargets returns every placeholder id in layout order.
func (p Page) ChartTargets() []string {
	var ids []string
	for _, row := range p.Main.Rows {
		for _, ph := range row {
			ids = append(ids, ph.ID)
		}
	}
	return ids
}

// Button returns the page's button with id, with its display label.
func (p Page) Button(id string) (widgets.Button, bool) {
	for _, b := range p.Buttons {
		if b.ID == id {
			return b, true
		}
	}
	return widgets.Button{}, false
}

// Dropdown returns the page's dropdown with id.
func (p Page) Dropdown(id string) (widgets.Dropdown, bool) {
	for _, d := range p.Dropdowns {
		if d.ID == id {
			return d, true
		}
	}
	return widgets.Dropdown{}, false
}
