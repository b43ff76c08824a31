// Package views embeds the board page template and its static assets.
package views

import "embed"

//go:embed templates/*.html static/*
var FS embed.FS

// BoardTemplate is the render name of the board page.
const BoardTemplate = "templates/board"
