package editor

import (
	"regexp"
	"strings"

	"github.com/iliyamo/seatmap-editor/internal/model"
)

var blockedVocabulary = regexp.MustCompile(`(?i)\b(pillars?|not\s+for\s+sale|no\s+seat|not\s+a\s+seat)\b`)

var bracketChars = strings.NewReplacer("(", " ", ")", " ", "[", " ", "]", " ", "{", " ", "}", " ")

// IsBlocked reports whether a seat's number, label or notes mark it as a
// pillar, not for sale or not a real seat.  Brackets are dropped but their
// content is kept, so "C12 (Pillar)" is blocked.
func IsBlocked(seat *model.Seat) bool {
	return blockedVocabulary.MatchString(bracketChars.Replace(seat.Text()))
}
