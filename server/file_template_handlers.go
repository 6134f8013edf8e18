package server

import (
	"embed"
	"html/template"
	"io/fs"
	"time"
)

//go:embed templates/*
var templateFiles embed.FS

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format("2006-01-02 15:04")
	},
}

// ParseTemplate parses a page together with the shared layout from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(name).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), "layout.html", name)
}

type pages struct {
	login          *template.Template
	changePassword *template.Template
	dashboard      *template.Template
}

func parsePages() (*pages, error) {
	var (
		p   pages
		err error
	)
	if p.login, err = ParseTemplate("login.html"); err != nil {
		return nil, err
	}
	if p.changePassword, err = ParseTemplate("change_password.html"); err != nil {
		return nil, err
	}
	if p.dashboard, err = ParseTemplate("dashboard.html"); err != nil {
		return nil, err
	}
	return &p, nil
}
