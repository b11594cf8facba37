package application

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"support-rag/domain"
)

// Section is a contiguous run of extracted text under one label: a markdown
// heading for .md sources, "Page N" for PDF pages, empty for plain
// paragraphs before the first heading.
type Section struct {
	Heading string
	Text    string
}

// TextExtractor converts a source document byte stream into plain text
// sections. Supported formats are PDF and Markdown; anything else is
// rejected with an UnsupportedFormatError.
type TextExtractor struct {
	markdown goldmark.Markdown
}

// NewTextExtractor creates a new TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{markdown: goldmark.New()}
}

// Extract converts the raw bytes of the named file into ordered sections of
// plain text. The format is chosen by the file's declared extension.
func (te *TextExtractor) Extract(data []byte, fileName string) ([]Section, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf":
		sections, err := extractPDF(data)
		if err != nil {
			return nil, &domain.ExtractionError{Source: fileName, Err: err}
		}
		return sections, nil
	case ".md", ".markdown":
		return te.extractMarkdown(data), nil
	default:
		return nil, &domain.UnsupportedFormatError{Extension: ext}
	}
}

// extractPDF pulls plain text out of each page in order. Pages that fail to
// decode are skipped rather than failing the whole document; a document
// whose reader cannot be opened at all is an extraction failure.
func extractPDF(data []byte) ([]Section, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var sections []Section
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		sections = append(sections, Section{
			Heading: fmt.Sprintf("Page %d", i),
			Text:    pageText,
		})
	}
	return sections, nil
}

// extractMarkdown walks the markdown AST and strips markup, keeping heading
// boundaries so later chunking can label each chunk with its section.
func (te *TextExtractor) extractMarkdown(data []byte) []Section {
	doc := te.markdown.Parser().Parse(text.NewReader(data))

	var sections []Section
	var current Section
	var body strings.Builder

	flush := func() {
		current.Text = strings.TrimSpace(body.String())
		if current.Text != "" || current.Heading != "" {
			sections = append(sections, current)
		}
		body.Reset()
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading:
			flush()
			current = Section{Heading: inlineText(n, data)}
			return ast.WalkSkipChildren, nil
		case ast.KindParagraph, ast.KindTextBlock:
			body.WriteString(inlineText(n, data))
			body.WriteString("\n\n")
			return ast.WalkSkipChildren, nil
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				body.Write(seg.Value(data))
			}
			body.WriteString("\n")
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	flush()

	return sections
}

// inlineText collects the literal text of a node's inline children, leaving
// emphasis and link markers behind.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := child.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteString("\n")
			}
		case *ast.String:
			sb.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
