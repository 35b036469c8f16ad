package survey

import "strings"

// likertScale is the fixed agreement vocabulary. "Neutral" and
// "Neither agree, nor disagree" both appear in exports and share the midpoint.
var likertScale = map[string]int{
	"Strongly Agree":              5,
	"Agree":                       4,
	"Neither agree, nor disagree": 3,
	"Neutral":                     3,
	"Disagree":                    2,
	"Strongly Disagree":           1,
}

// Encode maps an answer to 1..5. ok is false for any text outside the
// vocabulary, blank cells included; callers must skip such values, not count zero.
func Encode(answer string) (score int, ok bool) {
	score, ok = likertScale[strings.TrimSpace(answer)]
	return score, ok
}
