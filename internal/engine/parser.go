package engine

import (
	"regexp"
	"strings"
)

// rawSegment is one parsed speaker turn before annotation.
type rawSegment struct {
	speaker string
	text    string
}

// speakerPatterns detect a speaker header at the start of a line, most
// specific first: known role labels and turn tags, then ALL-CAPS names, then
// simple names. Each pattern captures (speaker, rest-of-line).
var speakerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(Speaker \d+|Host|Guest|Interviewer|Interviewee|\[S\d+\]|[A-Z][a-zA-Z\s]*)\s*:\s*(.*)$`),
	regexp.MustCompile(`(?i)^([A-Z][A-Z\s]+):\s*(.*)$`),
	regexp.MustCompile(`(?i)^([A-Za-z]+):\s*(.*)$`),
}

// parseScript splits a script into speaker turns. A line matching a speaker
// header starts a new turn; other lines continue the current speaker's text.
// Lines before the first header have no speaker and are dropped. Blank lines
// are ignored.
func parseScript(script string) []rawSegment {
	var segments []rawSegment

	currentSpeaker := ""
	currentText := ""

	flush := func() {
		if currentSpeaker != "" && currentText != "" {
			segments = append(segments, rawSegment{
				speaker: currentSpeaker,
				text:    strings.TrimSpace(currentText),
			})
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(script), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		matched := false
		for _, pattern := range speakerPatterns {
			if m := pattern.FindStringSubmatch(line); m != nil {
				flush()
				currentSpeaker = strings.TrimSpace(m[1])
				currentText = strings.TrimSpace(m[2])
				matched = true
				break
			}
		}
		if !matched {
			if currentText != "" {
				currentText += " " + line
			} else {
				currentText = line
			}
		}
	}
	flush()

	return segments
}
