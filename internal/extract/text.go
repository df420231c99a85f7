package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"golang.org/x/text/encoding/charmap"
)

// extractText reads UTF-8 text, falling back to Latin-1 for legacy files.
func extractText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return string(decoded), nil
}

const markdownBlocks = "h1,h2,h3,h4,h5,h6,p,li,pre,blockquote,td,th"

// extractMarkdown renders markdown to HTML and keeps only the text nodes.
func extractMarkdown(data []byte) (string, error) {
	source, err := extractText(data)
	if err != nil {
		return "", err
	}

	var html bytes.Buffer
	if err := goldmark.Convert([]byte(source), &html); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(&html)
	if err != nil {
		return "", fmt.Errorf("failed to parse rendered markdown: %w", err)
	}

	// Only outermost blocks are emitted; their Text already covers nested ones.
	var parts []string
	doc.Find(markdownBlocks).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(markdownBlocks).Length() > 0 {
			return
		}
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		return strings.TrimSpace(doc.Text()), nil
	}
	return strings.Join(parts, "\n"), nil
}

// sanitizeUTF8 drops invalid byte sequences so postgres accepts the text.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}
