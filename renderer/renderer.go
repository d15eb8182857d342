// Package renderer turns the monthly figures of the indices into markdown reports.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

// RenderMonthly renders the monthly report to a markdown string.
func RenderMonthly(m *Monthly) string {
	partials := map[string]string{
		"monthly_title":     "monthly_title.md",
		"monthly_financial": "monthly_financial.md",
		"monthly_advance":   "monthly_advance.md",
		"monthly_composite": "monthly_composite.md",
		"monthly_errors":    "monthly_errors.md",
	}
	return renderTemplate("monthly", "monthly.md", partials, m)
}

// renderTemplate renders a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name results in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
