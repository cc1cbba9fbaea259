package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Segment is a timed piece of recognized speech
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the speech recognized in a video's audio track
type Transcript struct {
	Text          string    `json:"text"`
	Segments      []Segment `json:"segments"`
	Model         string    `json:"model"`
	Language      string    `json:"language"`
	Backend       string    `json:"backend"`
	TranscribedAt time.Time `json:"transcribed_at"`
}

// IsEmpty reports whether no speech was recognized
func (t *Transcript) IsEmpty() bool {
	return t == nil || strings.TrimSpace(t.ToText()) == ""
}

// ToText returns the full text. Backends that only fill segments get them
// joined with single spaces.
func (t *Transcript) ToText() string {
	if t.Text != "" {
		return strings.TrimSpace(t.Text)
	}

	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if s := strings.TrimSpace(seg.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Duration is the end of the last segment, or zero without timings.
func (t *Transcript) Duration() time.Duration {
	var end float64
	for _, seg := range t.Segments {
		end = max(end, seg.End)
	}
	return time.Duration(end * float64(time.Second))
}

// Preview returns at most n runes of the text, cut at a word boundary when
// one is close enough, followed by "...".
func (t *Transcript) Preview(n int) string {
	text := strings.Join(strings.Fields(t.ToText()), " ")
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return cut + "..."
}
