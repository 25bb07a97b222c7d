package util

import (
	"regexp"
	"strings"
)

var jsonFenceRe = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// ExtractJsonFromText tries to find the largest JSON object/array in the text.
// LLMs often wrap JSON in markdown code fences or surround it with prose.
func ExtractJsonFromText(text string) string {
	// 1. Try to find markdown code block first
	matches := jsonFenceRe.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// 2. Fallback: Find first '{' or '[' and last '}' or ']'
	start := firstJsonStart(text)
	if start == -1 {
		return text // No JSON found, return raw text
	}

	end := lastJsonEnd(text)
	if end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}

func firstJsonStart(text string) int {
	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	switch {
	case startObj == -1:
		return startArr
	case startArr == -1:
		return startObj
	case startObj < startArr:
		return startObj
	default:
		return startArr
	}
}

func lastJsonEnd(text string) int {
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")
	if endObj > endArr {
		return endObj
	}
	return endArr
}
