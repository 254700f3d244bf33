// Package conversation provides intent parsing and player notification
// implementations.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches player input to intents using keywords and simple
// patterns. Typed commands and voice transcripts go through the same rules.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

// patternRule maps a regex to an intent. When the regex has capture
// groups, the non-empty groups joined by a space become the payload.
type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`^(?:list|recipes|menu|show recipes)$`), domain.IntentListRecipes},
		{regexp.MustCompile(`^(?:spawn|get|grab|fetch)\s+(?:an?\s+|the\s+)?(.+)$`), domain.IntentSpawn},
		{regexp.MustCompile(`^(?:chop|slice|cut)\s+(?:an?\s+|the\s+)?(.+)$`), domain.IntentChop},
		{regexp.MustCompile(`^(?:drop|put|throw)\s+(?:an?\s+|the\s+)?(.+?)(?:\s+in(?:to)?\s+(?:the\s+)?pot)?$`), domain.IntentDrop},
		{regexp.MustCompile(`^add\s+(?:an?\s+|the\s+)?(.+)$`), domain.IntentAdd},
		{regexp.MustCompile(`^(?:stir|mix)(?:\s+(?:the\s+)?pot)?$`), domain.IntentStir},
		{regexp.MustCompile(`^move(?:\s+(?:the\s+)?pot)?(?:\s+to)?\s+(-?\d+(?:\.\d+)?)\s*[,\s]\s*(-?\d+(?:\.\d+)?)$`), domain.IntentMove},
		{regexp.MustCompile(`^serve(?:\s+(?:the\s+)?(.+))?$`), domain.IntentServe},
		{regexp.MustCompile(`^(?:remove|take off|pick up)\s+(?:slot\s+|dish\s+)?(.+)$`), domain.IntentRemove},
		{regexp.MustCompile(`^(?:clear|empty|dump)(?:\s+(?:the\s+)?pot)?$`), domain.IntentClear},
		{regexp.MustCompile(`^(?:reset|restart|new round)$`), domain.IntentReset},
		{regexp.MustCompile(`^(?:status|where|progress|score|info)$`), domain.IntentStatus},
		{regexp.MustCompile(`^(?:volume|vol)\s+(\S+)$`), domain.IntentVolume},
		{regexp.MustCompile(`^(?:wait|sleep|tick)\s+(\S+)$`), domain.IntentWait},
		{regexp.MustCompile(`^(?:quit|exit|stop|q|bye)$`), domain.IntentQuit},
		{regexp.MustCompile(`^(?:help|h|\?)$`), domain.IntentHelp},
	}
	return p
}

// Parse converts player input into an intent. Unrecognised input comes
// back as IntentUnknown with the cleaned input as payload.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Intent, error) {
	cleaned := normalize(input)
	if cleaned == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", cleaned)

	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(cleaned)
		if m == nil {
			continue
		}
		p.log.Debug("matched intent: %s", rule.intent)
		return &domain.Intent{Type: rule.intent, Payload: payload(m[1:])}, nil
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: cleaned}, nil
}

// normalize lowercases input, collapses whitespace and drops the
// sentence punctuation speech transcripts add.
func normalize(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	if s == "?" {
		return s
	}
	return strings.TrimSpace(strings.TrimRight(s, ".!?"))
}

func payload(groups []string) string {
	var parts []string
	for _, g := range groups {
		if g = strings.TrimSpace(g); g != "" {
			parts = append(parts, g)
		}
	}
	return strings.Join(parts, " ")
}
