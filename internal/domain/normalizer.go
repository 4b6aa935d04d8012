package domain

import "strings"

// documentTemplate is the minimal valid page incomplete model output is
// wrapped into. The %s-free split around bodyPlaceholder keeps injection a
// plain string concatenation.
const (
	documentHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Generated App</title>
</head>
<body>
`
	documentTail = `
</body>
</html>`
)

// NormalizeHTML turns raw model output into a complete, renderable HTML
// document. Markdown code fences are stripped first; if the remaining text
// already carries a document root marker it is returned unchanged, otherwise
// it is injected into the body of a minimal default document.
//
// The function is pure and idempotent: NormalizeHTML(NormalizeHTML(x)) ==
// NormalizeHTML(x) for any input, and input already containing the root
// marker (with no fences) comes back byte-identical.
func NormalizeHTML(raw string) string {
	text := stripCodeFences(raw)

	if hasDocumentRoot(text) {
		return text
	}

	return documentHead + text + documentTail
}

// stripCodeFences removes a single wrapping markdown code fence, with or
// without a language tag. Text without a leading fence is returned untouched.
func stripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return raw
	}

	// Drop the opening fence line ("```" or "```html").
	body := trimmed[len("```"):]
	if newline := strings.IndexByte(body, '\n'); newline >= 0 {
		body = body[newline+1:]
	} else {
		// Opening fence with no content after it.
		body = strings.TrimPrefix(body, "html")
	}

	// Drop the closing fence if present.
	body = strings.TrimRight(body, " \t\n")
	body = strings.TrimSuffix(body, "```")

	return strings.TrimSpace(body)
}

// hasDocumentRoot reports whether the text is already a self-contained HTML
// document, detected by the doctype declaration or an <html> root element.
func hasDocumentRoot(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html")
}
