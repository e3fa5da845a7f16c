// Package render turns a generated story into HTML for display or export.
package render

import (
	"bytes"
	"html/template"
	"os"
	"strings"

	"github.com/yuin/goldmark"

	"storybot_eli5/generator"
)

// MarkdownToHTML converts story markdown to an HTML fragment.
func MarkdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var pageTmpl = template.Must(template.New("story").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, serif; max-width: 720px; margin: 2em auto; padding: 0 1em; color: #2D3748; background: #FFF8F0; line-height: 1.6; }
.badge { display: inline-block; padding: .2em .7em; border-radius: 1em; background: #F6AD55; font-family: sans-serif; font-size: .85em; }
footer { margin-top: 3em; font-size: .8em; color: #718096; font-family: sans-serif; }
</style>
</head>
<body>
<p class="badge">{{.Emoji}} {{.AgeGroup}}{{if .Simpler}} · simpler language{{end}}</p>
{{if .ShowTitle}}<h1>{{.Title}}</h1>{{end}}
<article>{{.Body}}</article>
<footer>Topic: {{.Topic}} · written by {{.Agents}}</footer>
</body>
</html>
`))

type pageData struct {
	Title     string
	ShowTitle bool
	Emoji     string
	AgeGroup  string
	Simpler   bool
	Topic     string
	Agents    string
	Body      template.HTML
}

// Page renders res as a standalone HTML document.
func Page(res *generator.Result) ([]byte, error) {
	body, err := MarkdownToHTML(res.FinalStory)
	if err != nil {
		return nil, err
	}
	data := pageData{
		Title:     res.Title,
		Emoji:     res.AgeConfig.Emoji,
		AgeGroup:  res.AgeConfig.Name,
		Simpler:   res.SimplerLanguage,
		Topic:     res.Topic,
		Agents:    strings.Join(res.AgentsUsed, ", "),
		// goldmark drops raw HTML from the model output unless WithUnsafe is set.
		Body: template.HTML(body),
	}
	if data.Title == "" {
		// The story carries no heading of its own; use the topic.
		data.Title = res.Topic
		data.ShowTitle = true
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders res and writes it to path.
func WriteFile(path string, res *generator.Result) error {
	page, err := Page(res)
	if err != nil {
		return err
	}
	return os.WriteFile(path, page, 0o644)
}
