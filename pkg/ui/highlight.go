package ui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlight colors an artifact for terminal display. OpenVPN profiles are
// directive lines plus PEM blocks, which the INI lexer renders legibly.
// Content is returned unchanged when color is disabled or tokenizing fails.
func Highlight(content string) string {
	if !ColorEnabled() {
		return content
	}

	lexer := lexers.Get("ini")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return content
	}

	var buf strings.Builder
	if err := formatters.TTY256.Format(&buf, style, iterator); err != nil {
		return content
	}
	return buf.String()
}
