package agent

import "regexp"

// DirectiveKind identifies what kind of side effect a parsed directive asks for.
type DirectiveKind int

const (
	// KindAddTask creates one task record.
	KindAddTask DirectiveKind = iota
)

// Directive is one action tag extracted from generated text. Field values are
// the raw captured substrings; normalization (trimming, lowercasing) happens
// when the directive is applied. Raw holds the exact matched tag so it can be
// stripped from the response text.
type Directive struct {
	Kind     DirectiveKind
	Title    string
	Priority string
	Deadline string
	Raw      string
}

// addTaskRE matches [ADD_TASK|title|priority|deadline]. Title and priority
// exclude '|'; deadline runs to the closing ']'. The tag is accepted anywhere
// in the text and any number of times, even though the prompt instructs the
// model to emit at most one at the very end.
var addTaskRE = regexp.MustCompile(`\[ADD_TASK\|([^|]+)\|([^|]+)\|([^\]]+)\]`)

// ParseDirectives extracts every well-formed action tag from text.
func ParseDirectives(text string) []Directive {
	matches := addTaskRE.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	directives := make([]Directive, len(matches))
	for i, m := range matches {
		directives[i] = Directive{
			Kind:     KindAddTask,
			Title:    m[1],
			Priority: m[2],
			Deadline: m[3],
			Raw:      m[0],
		}
	}
	return directives
}
