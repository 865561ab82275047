// Package book2pdf builds styled PDF books from Markdown projects.
//
// A project is a directory holding config.yaml, an entry Markdown file that
// pulls chapters in with !include directives, a themes/ directory with CSS,
// and an optional assets/ directory. The Service resolves the contributing
// source files, runs the Markdown-to-HTML pipeline, and renders the PDF with
// headless Chrome, writing artifacts under build/.
//
// The cmd/book2pdf CLI wraps the Service with init, build, and watch modes;
// internal/watch provides the incremental rebuild coordinator used by
// build --watch.
package book2pdf
