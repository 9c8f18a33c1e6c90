// Package renderer formats data sets and archives as markdown, and renders
// markdown for the terminal.
package renderer
