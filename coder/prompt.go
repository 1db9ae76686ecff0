package coder

import (
	"fmt"
	"os"
	"strings"
)

// DefaultPrompt asks for a flat JSON object of string fields.
const DefaultPrompt = `You are coding news articles for a content analysis study.
Read the article below (and the attached photo, if any) and answer with ONE flat JSON object.

Fields:
- "summary": one sentence summary in the article's language.
- "topic": the main topic in one or two words.
- "actors": the main people or organizations, separated by semicolons.
- "tone": one of "positive", "neutral", "negative".
- "photo_description": what the photo shows, or "" when there is no photo.

Rules:
- Return ONLY the JSON object, no markdown fences or explanation.
- Every value must be a string.`

// LoadPrompt reads a prompt file. An empty path returns DefaultPrompt.
func LoadPrompt(path string) (string, error) {
	if path == "" {
		return DefaultPrompt, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt file: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}
	return prompt, nil
}
