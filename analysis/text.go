package analysis

import (
	"strings"
	"unicode/utf8"
)

// TextAnalysis holds the lexical counts of a text blob. All character counts
// are in Unicode code points.
type TextAnalysis struct {
	WordCount              int `json:"word_count"`
	CharacterCount         int `json:"character_count"`
	CharacterCountNoSpaces int `json:"character_count_no_spaces"`
	SentenceCount          int `json:"sentence_count"`
	ParagraphCount         int `json:"paragraph_count"`
}

// AnalyzeText computes lexical counts over text. Only the ASCII space
// character is excluded from CharacterCountNoSpaces; tabs and newlines still
// count.
func AnalyzeText(text string) TextAnalysis {
	return TextAnalysis{
		WordCount:              len(strings.Fields(text)),
		CharacterCount:         utf8.RuneCountInString(text),
		CharacterCountNoSpaces: utf8.RuneCountInString(strings.ReplaceAll(text, " ", "")),
		SentenceCount:          countSegments(text, "."),
		ParagraphCount:         countSegments(text, "\n"),
	}
}

// countSegments counts sep-delimited segments that contain non-whitespace
// content after trimming.
func countSegments(text, sep string) int {
	count := 0
	for _, segment := range strings.Split(text, sep) {
		if strings.TrimSpace(segment) != "" {
			count++
		}
	}
	return count
}
