package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const appSystemPrompt = `You are MiniCoder, an assistant that builds small web apps for kids.
Generate a complete, self-contained HTML document with inline CSS and JavaScript.
The app must work offline in a single file with no external resources.
Keep the visuals playful and the controls large and simple.
Respond with the HTML document only, no explanations.`

const modifySystemPrompt = `You are MiniCoder, an assistant that modifies small web apps for kids.
You receive an existing HTML document and a change request.
Apply the change and return the complete updated HTML document.
Keep everything self-contained in a single file with no external resources.
Respond with the HTML document only, no explanations.`

const nameSystemPrompt = `You suggest a short, fun app name for a kid's project.
Respond with the name only: two or three words, no quotes, no punctuation.`

// nameMaxTokens bounds the secondary name call; names are a handful of words.
const nameMaxTokens = 16

// buildAppPrompt frames the app generation call.
func buildAppPrompt(req *GenerationRequest) *CompletionRequest {
	userPrompt := req.Prompt
	if req.Language != "" {
		userPrompt = fmt.Sprintf("%s\n\nThe request is written in %q. Use that language for all visible text in the app.",
			req.Prompt, req.Language)
	}

	return &CompletionRequest{
		SystemPrompt: appSystemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    req.MaxOutputTokens,
		Temperature:  req.Temperature,
	}
}

// buildModifyPrompt frames the modification call around the existing artifact.
func buildModifyPrompt(req *GenerationRequest, existingCode string) *CompletionRequest {
	userPrompt := fmt.Sprintf("Change request: %s\n\nCurrent app:\n%s", req.Prompt, existingCode)
	if req.Language != "" {
		userPrompt = fmt.Sprintf("%s\n\nThe change request is written in %q. Use that language for all visible text.",
			userPrompt, req.Language)
	}

	return &CompletionRequest{
		SystemPrompt: modifySystemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    req.MaxOutputTokens,
		Temperature:  req.Temperature,
	}
}

// buildNamePrompt frames the short name-suggestion call of the composite flow.
func buildNamePrompt(req *GenerationRequest) *CompletionRequest {
	return &CompletionRequest{
		SystemPrompt: nameSystemPrompt,
		UserPrompt:   req.Prompt,
		MaxTokens:    nameMaxTokens,
	}
}

// nameStopWords are filler words skipped when deriving a fallback name from
// the prompt.
var nameStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "with": true,
	"make": true, "build": true, "create": true, "please": true,
	"me": true, "my": true, "for": true, "that": true, "app": true,
}

const fallbackNameWords = 3

// FallbackAppName derives a deterministic app name from the request text:
// the first few meaningful words, title-cased. Used when the name call of
// the composite flow fails so the primary artifact can still be returned.
func FallbackAppName(prompt string) string {
	words := make([]string, 0, fallbackNameWords)
	for _, word := range strings.Fields(prompt) {
		cleaned := strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if cleaned == "" || nameStopWords[strings.ToLower(cleaned)] {
			continue
		}

		words = append(words, titleCase(cleaned))
		if len(words) == fallbackNameWords {
			break
		}
	}

	if len(words) == 0 {
		return "My App"
	}
	return strings.Join(words, " ")
}

// titleCase upper-cases the first rune and lower-cases the rest.
func titleCase(word string) string {
	first, size := utf8.DecodeRuneInString(word)
	if first == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(word[size:])
}

// cleanAppName trims decoration the model tends to add around a suggested
// name (quotes, trailing punctuation, surrounding whitespace).
func cleanAppName(name string) string {
	cleaned := strings.TrimSpace(name)
	cleaned = strings.Trim(cleaned, "\"'`")
	cleaned = strings.TrimRight(cleaned, ".!")
	// Collapse a multi-line answer to its first line.
	if newline := strings.IndexByte(cleaned, '\n'); newline >= 0 {
		cleaned = strings.TrimSpace(cleaned[:newline])
	}
	return cleaned
}
