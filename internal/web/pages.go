package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/widget.js
var widgetJS []byte

// Page is one entry of the site's route table.
type Page struct {
	Path     string
	Title    string
	Template string
	// NavLabel is empty for pages that are not linked from the navbar.
	NavLabel string
}

var Pages = []Page{
	{Path: "/", Title: "The right way to approach investing", Template: "home.html"},
	{Path: "/portfolio", Title: "Portfolio", Template: "portfolio.html", NavLabel: "Portfolio"},
	{Path: "/mutual-funds", Title: "Mutual Funds and SIPs", Template: "mutual_funds.html", NavLabel: "Mutual Fund/SIP"},
	{Path: "/stocks", Title: "Stocks", Template: "stocks.html", NavLabel: "Stock"},
	{Path: "/guidelines", Title: "Investment Guidelines", Template: "guidelines.html", NavLabel: "Investment Guidelines"},
}

const notFoundTemplate = "not_found.html"

type navLink struct {
	Path   string
	Label  string
	Active bool
}

type pageData struct {
	Title string
	Path  string
	Nav   []navLink
}

func newPageData(title, path string) pageData {
	data := pageData{Title: title, Path: path}
	for _, p := range Pages {
		if p.NavLabel == "" {
			continue
		}
		data.Nav = append(data.Nav, navLink{Path: p.Path, Label: p.NavLabel, Active: p.Path == path})
	}
	return data
}

func ParseTemplates() (*template.Template, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	names := []string{notFoundTemplate}
	for _, p := range Pages {
		names = append(names, p.Template)
	}
	for _, name := range names {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("page template %s missing", name)
		}
	}
	return tmpl, nil
}

// RegisterRoutes serves every page, the widget script and the 404 page.
func RegisterRoutes(h *server.Hertz) error {
	tmpl, err := ParseTemplates()
	if err != nil {
		return err
	}
	h.SetHTMLTemplate(tmpl)

	for _, p := range Pages {
		h.GET(p.Path, func(_ context.Context, c *app.RequestContext) {
			c.HTML(http.StatusOK, p.Template, newPageData(p.Title, p.Path))
		})
	}

	h.GET("/static/widget.js", func(_ context.Context, c *app.RequestContext) {
		c.Data(http.StatusOK, "application/javascript; charset=utf-8", widgetJS)
	})

	h.NoRoute(func(_ context.Context, c *app.RequestContext) {
		c.HTML(http.StatusNotFound, notFoundTemplate, newPageData("Page not found", string(c.Path())))
	})
	return nil
}
