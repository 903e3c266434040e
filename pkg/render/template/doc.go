// Package template defines the template engine contract used by the HTML
// renderer. The gotemplate subpackage provides the default pongo2 engine.
package template
