// Package web carries the dashboard UI: HTML templates and the static
// assets they reference, embedded so the binaries ship self-contained.
package web

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static/*
var StaticFS embed.FS
