package voice

import (
	"regexp"
	"strings"
)

// annotation matches whisper's environmental notes like "(typing)",
// "[BLANK_AUDIO]" or "[laughter]".
var annotation = regexp.MustCompile(`[\(\[][A-Za-z_][A-Za-z_\s]*[\)\]]`)

// timestamp matches whisper's "[00:00:00.000 --> 00:00:02.000]" prefixes.
var timestamp = regexp.MustCompile(`^\[[0-9:.]+\s*-->\s*[0-9:.]+\]`)

// hallucinations are transcripts whisper produces from silence.
var hallucinations = map[string]bool{
	"...":                     true,
	"you":                     true,
	"thank you.":              true,
	"thank you":               true,
	"thanks for watching!":    true,
	"thank you for watching.": true,
	"bye.":                    true,
	"the end.":                true,
}

// cleanTranscription collapses whitespace, strips whisper annotations and
// timestamps, and discards known silence hallucinations.
func cleanTranscription(s string) string {
	s = timestamp.ReplaceAllString(strings.TrimSpace(s), "")
	s = annotation.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	if hallucinations[strings.ToLower(s)] {
		return ""
	}
	return s
}

// stripWakeWord removes a leading wake phrase. It reports whether one
// was found.
func stripWakeWord(text string, wakeWords []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, w := range wakeWords {
		wl := strings.ToLower(w)
		if !strings.HasPrefix(lower, wl) {
			continue
		}
		rest := strings.TrimLeft(text[len(wl):], " ,.!")
		return strings.TrimSpace(rest), true
	}
	return "", false
}
