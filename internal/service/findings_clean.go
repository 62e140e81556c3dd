package service

import (
	"regexp"
	"strings"
)

// cleanFindingsPayload quita fences ```json ... ``` y BOM, dejando el contenido usable.
// Los hallazgos pueden venir directo del LLM, asi que toleramos markdown sucio.
func cleanFindingsPayload(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = strings.TrimPrefix(s, "\uFEFF")

	reStart := regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	reEnd := regexp.MustCompile("(?is)\\s*```\\s*$")
	s = reStart.ReplaceAllString(s, "")
	s = reEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
