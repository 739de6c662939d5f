// Package extract is the text-extraction boundary for uploaded resume files.
// Real format parsers (PDF, DOCX, RTF) plug in per content type; plain text
// passes through.
package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/hirevox/hirevox/internal/utils"
)

type Extractor interface {
	// Text returns the plain text content of one uploaded file.
	Text(data []byte, contentType string) (string, error)
}

// PlainText handles text/* uploads and rejects binary formats it cannot parse.
type PlainText struct{}

func (PlainText) Text(data []byte, contentType string) (string, error) {
	const op = "extract.PlainText.Text"

	base := contentType
	if idx := strings.Index(base, ";"); idx >= 0 {
		base = base[:idx]
	}
	base = strings.TrimSpace(base)

	switch base {
	case "", "text/plain", "text/markdown", "application/octet-stream":
		if !utf8.Valid(data) {
			return "", utils.E(utils.CodeInvalidArgument, op, "file is not valid UTF-8 text", nil)
		}
		return strings.TrimSpace(string(data)), nil
	default:
		return "", utils.E(utils.CodeInvalidArgument, op, "unsupported content type "+base, nil)
	}
}
