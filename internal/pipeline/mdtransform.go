package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Directive and highlight placeholders use Unicode Private Use Area
// characters. These are guaranteed to not conflict with any standard
// characters and pass through Goldmark unchanged (no WithUnsafe needed).
// Post-processing converts them to real markup after HTML generation.
const (
	MarkStartPlaceholder = "\uE000" // U+E000: ==highlight== start
	MarkEndPlaceholder   = "\uE001" // U+E001: ==highlight== end
	PageBreakPlaceholder = "\uE002" // U+E002: !newpage directive
	TOCPlaceholder       = "\uE003" // U+E003: !toc directive
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// Highlight syntax ==text==
	highlightPattern = regexp.MustCompile(`==(.*?)==`)
)

// isFenceLine reports whether a line opens or closes a fenced code block,
// backtick or tilde style. The include resolver applies the same rule so a
// directive and an include inside the same fence are treated alike.
func isFenceLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor applies transformations before CommonMark conversion.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown applies all transformations to prepare Markdown for conversion.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	// Check for cancellation before processing
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	content = convertDirectives(content)
	content = convertHighlights(content)
	content = compressBlankLines(content)
	return content
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 2 maximum.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// convertHighlights transforms ==text== to placeholder markers.
// The placeholders are converted to <mark> tags after Goldmark processing
// via ConvertMarkPlaceholders. This avoids needing html.WithUnsafe().
func convertHighlights(content string) string {
	return highlightPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
}

// convertDirectives replaces !newpage and !toc lines with placeholder
// paragraphs. Directives inside fenced code blocks are left alone so code
// samples documenting the syntax render literally.
func convertDirectives(content string) string {
	lines := strings.Split(content, "\n")
	inCodeBlock := false

	for i, line := range lines {
		if isFenceLine(line) {
			inCodeBlock = !inCodeBlock
		}
		if inCodeBlock {
			continue
		}
		switch strings.TrimSpace(line) {
		case "!newpage":
			lines[i] = PageBreakPlaceholder
		case "!toc":
			lines[i] = TOCPlaceholder
		}
	}

	return strings.Join(lines, "\n")
}

// ConvertMarkPlaceholders converts placeholder markers to <mark> tags.
// Called after Goldmark HTML conversion to finalize highlight markup.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}

// ConvertBreakPlaceholders converts page-break placeholders to a div the
// print stylesheet targets. Goldmark wraps a placeholder-only line in a
// paragraph, so the wrapped form is replaced first to keep the markup valid.
func ConvertBreakPlaceholders(content string) string {
	const breakDiv = `<div class="page-break"></div>`
	content = strings.ReplaceAll(content, "<p>"+PageBreakPlaceholder+"</p>", breakDiv)
	return strings.ReplaceAll(content, PageBreakPlaceholder, breakDiv)
}
