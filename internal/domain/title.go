package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxTitleLength is the character budget for generated titles.
	DefaultMaxTitleLength = 100

	// MaxHashtags is the number of hashtags kept when a title is shortened.
	MaxHashtags = 3

	// MinMainTitleLength is the room the main title should have before
	// trailing hashtags start being dropped.
	MinMainTitleLength = 20

	// MaxOptimizePasses caps how many times EnforceTitleLength shortens a title.
	MaxOptimizePasses = 2
)

// OptimizeTitle shortens title so it fits in maxLength characters while
// keeping its leading hashtags. Titles already within the limit are returned
// unchanged. Lengths are counted in runes.
//
// A single hashtag longer than the budget is kept as is, so the result can
// still exceed maxLength in that case.
func OptimizeTitle(title string, maxLength int) string {
	if runeLen(title) <= maxLength {
		return title
	}

	main, hashtags := splitHashtags(title)
	if len(hashtags) > MaxHashtags {
		hashtags = hashtags[:MaxHashtags]
	}

	block := hashtagBlock(hashtags)
	available := maxLength - runeLen(block)
	for available < MinMainTitleLength && len(hashtags) > 1 {
		hashtags = hashtags[:len(hashtags)-1]
		block = hashtagBlock(hashtags)
		available = maxLength - runeLen(block)
	}

	if runeLen(main) > available {
		main = truncateWords(main, available)
	}

	return main + block
}

// EnforceTitleLength runs OptimizeTitle and, if the result is still too long,
// runs it once more. When the first pass overshoots maxLength its length is
// returned as overshoot, otherwise overshoot is 0.
func EnforceTitleLength(title string, maxLength int) (result string, overshoot int) {
	result = title
	for pass := 0; pass < MaxOptimizePasses; pass++ {
		result = OptimizeTitle(result, maxLength)
		n := runeLen(result)
		if n <= maxLength {
			break
		}
		if pass == 0 {
			overshoot = n
		}
	}
	return result, overshoot
}

// TitleLength reports the length of a title as OptimizeTitle measures it.
func TitleLength(title string) int {
	return runeLen(title)
}

// Hashtags returns the hashtags of a title in order of appearance.
func Hashtags(title string) []string {
	_, tags := splitHashtags(title)
	return tags
}

func splitHashtags(title string) (string, []string) {
	parts := strings.Split(title, "#")
	main := strings.TrimSpace(parts[0])

	var hashtags []string
	for _, p := range parts[1:] {
		tag := strings.TrimSpace(p)
		if tag == "" {
			continue
		}
		hashtags = append(hashtags, "#"+tag)
	}
	return main, hashtags
}

func hashtagBlock(hashtags []string) string {
	if len(hashtags) == 0 {
		return ""
	}
	return " " + strings.Join(hashtags, " ")
}

// truncateWords keeps whole words from the front of s while the running
// length, counting one separator per word, stays within limit. It stops at
// the first word that does not fit.
func truncateWords(s string, limit int) string {
	var kept []string
	current := 0
	for _, w := range strings.Fields(s) {
		n := runeLen(w) + 1
		if current+n > limit {
			break
		}
		kept = append(kept, w)
		current += n
	}
	return strings.Join(kept, " ")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
