package tgz

import (
	"fmt"
	"regexp"
	"strings"
)

// Placeholder tokens recognized in OnCommand patterns. Each compiles to one
// capture group; tokens are separated from literal text by whitespace.
//
//	%s  greedy rest of the string
//	%w  one non-space word
//	%n  digits only
const (
	placeholderString = "%s"
	placeholderWord   = "%w"
	placeholderNumber = "%n"
)

func hasPlaceholder(pattern string) bool {
	return strings.Contains(pattern, placeholderString) ||
		strings.Contains(pattern, placeholderWord) ||
		strings.Contains(pattern, placeholderNumber)
}

// compilePlaceholder turns a command pattern like "/buy %n" into an anchored
// case-insensitive regex. It is called once, at route registration.
func compilePlaceholder(pattern string) *regexp.Regexp {
	parts := strings.Fields(pattern)
	compiled := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case placeholderString:
			compiled = append(compiled, "(.+)")
		case placeholderWord:
			compiled = append(compiled, `(\S+)`)
		case placeholderNumber:
			compiled = append(compiled, `(\d+)`)
		default:
			compiled = append(compiled, regexp.QuoteMeta(part))
		}
	}
	expr := `(?i)^` + strings.Join(compiled, `\s+`) + `$`
	re, err := regexp.Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("tgz: command pattern %q does not compile: %v", pattern, err))
	}
	return re
}

// compileCommandConditions prepares an OnCommand action: placeholder
// conditions get a compiled matcher, plain ones stay literal.
func compileCommandConditions(a *Action) {
	a.patterns = make([]*regexp.Regexp, len(a.conditions))
	for i, cond := range a.conditions {
		if hasPlaceholder(cond) {
			a.patterns[i] = compilePlaceholder(cond)
		}
	}
}

// compileRegexConditions prepares an OnTextPreg action. Invalid expressions
// are a programming error and fail at registration, not at dispatch.
func compileRegexConditions(a *Action) {
	a.patterns = make([]*regexp.Regexp, len(a.conditions))
	for i, cond := range a.conditions {
		re, err := regexp.Compile(cond)
		if err != nil {
			panic(fmt.Sprintf("tgz: regex route %q: pattern %q does not compile: %v", a.id, cond, err))
		}
		a.patterns[i] = re
	}
}

// matchCommand tests a command action against the text. Placeholder
// conditions match via their compiled regex with the captures as args.
// Literal conditions match as a case-insensitive prefix whose next character
// is end-of-string, a space or a newline; the remaining words become args.
func matchCommand(a *Action, text string) (args []string, ok bool) {
	for i, cond := range a.conditions {
		if re := a.patterns[i]; re != nil {
			if m := re.FindStringSubmatch(text); m != nil {
				return m[1:], true
			}
			continue
		}
		if len(text) < len(cond) || !strings.EqualFold(text[:len(cond)], cond) {
			continue
		}
		rest := text[len(cond):]
		if rest != "" && rest[0] != ' ' && rest[0] != '\n' {
			continue
		}
		return strings.Fields(rest), true
	}
	return nil, false
}

// matchRegex tests a regex action against the text. The returned args hold
// the whole match followed by the capture groups.
func matchRegex(a *Action, text string) (args []string, ok bool) {
	for _, re := range a.patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m, true
		}
	}
	return nil, false
}

// matchLiteral tests exact equality against the condition set.
func matchLiteral(a *Action, text string) bool {
	for _, cond := range a.conditions {
		if cond == text {
			return true
		}
	}
	return false
}

// matchBotCommand compares the first word of a bot command, lower-cased,
// against the condition set.
func matchBotCommand(a *Action, command string) bool {
	for _, cond := range a.conditions {
		if strings.ToLower(cond) == command {
			return true
		}
	}
	return false
}
