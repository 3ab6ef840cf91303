// Package manifest contains heuristics for recognizing, cleaning, and
// describing Puppet DSL code. The scrapers and the dataset builder share
// these so that a snippet scores the same no matter where it was found.
package manifest

import (
	"regexp"
	"strings"
)

var syntaxPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bclass\s+\w+`),
	regexp.MustCompile(`(?i)\bdefine\s+\w+`),
	regexp.MustCompile(`(?i)\bnode\s+['"]?\w+`),
	regexp.MustCompile(`(?i)\binclude\s+\w+`),
	regexp.MustCompile(`(?i)\brequire\s+\w+`),
	regexp.MustCompile(`(?i)\bnotify\s*=>`),
	regexp.MustCompile(`(?i)\bfile\s*\{`),
	regexp.MustCompile(`(?i)\bpackage\s*\{`),
	regexp.MustCompile(`(?i)\bservice\s*\{`),
	regexp.MustCompile(`(?i)\bexec\s*\{`),
	regexp.MustCompile(`(?i)\buser\s*\{`),
	regexp.MustCompile(`(?i)\bgroup\s*\{`),
	regexp.MustCompile(`(?i)\bcron\s*\{`),
	regexp.MustCompile(`(?i)=>\s*['"]`),
	regexp.MustCompile(`(?i)\bensure\s*=>`),
	regexp.MustCompile(`(?i)\bcontent\s*=>`),
	regexp.MustCompile(`(?i)\bsource\s*=>`),
	regexp.MustCompile(`\$\w+`),
	regexp.MustCompile(`\w+::\w+`),
}

var hostLanguagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`def\s+\w+\(`),
	regexp.MustCompile(`import\s+\w+`),
	regexp.MustCompile(`print\s*\(`),
	regexp.MustCompile(`if\s+\w+\s*==`),
	regexp.MustCompile(`for\s+\w+\s+in`),
}

var (
	classNameRe   = regexp.MustCompile(`class\s+([\w:]+)`)
	defineNameRe  = regexp.MustCompile(`define\s+([\w:]+)`)
	leadCommentRe = regexp.MustCompile(`(?m)^#\s*(.+?)\s*$`)
	blankRunRe    = regexp.MustCompile(`\n\s*\n`)
)

// Score counts how many distinct Puppet syntax patterns appear in code.
// One point per pattern, regardless of how often it matches.
func Score(code string) int {
	score := 0
	for _, re := range syntaxPatterns {
		if re.MatchString(code) {
			score++
		}
	}
	return score
}

// IsLikely reports whether a snippet looks like Puppet code: at least two
// syntax patterns, or explicit mention of puppet/manifest/.pp in the text.
func IsLikely(code string) bool {
	if Score(code) >= 2 {
		return true
	}
	lower := strings.ToLower(code)
	for _, key := range []string{"puppet", "manifest", ".pp"} {
		if strings.Contains(lower, key) {
			return true
		}
	}
	return false
}

// HostLanguagePenalty counts constructs that belong to a general-purpose
// host language rather than Puppet DSL. Model output that drifts into
// Python tends to trip these.
func HostLanguagePenalty(code string) int {
	n := 0
	for _, re := range hostLanguagePatterns {
		if re.MatchString(code) {
			n++
		}
	}
	return n
}

// Clean normalizes a snippet: blank-line runs collapse to a single blank
// line and indentation is rewritten as two-space steps, preserving the
// relative depth of each line.
func Clean(code string) string {
	code = blankRunRe.ReplaceAllString(code, "\n\n")

	lines := strings.Split(code, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		stripped := strings.TrimLeft(line, " \t")
		if stripped == "" {
			cleaned = append(cleaned, "")
			continue
		}
		depth := (len(line) - len(stripped)) / 2
		cleaned = append(cleaned, strings.Repeat("  ", depth)+stripped)
	}
	return strings.Join(cleaned, "\n")
}

// Describe derives an instruction for a snippet. A leading comment is used
// verbatim when present; otherwise the class or defined-type name drives a
// generated phrase.
func Describe(code string) string {
	if m := leadCommentRe.FindStringSubmatch(code); m != nil {
		return m[1]
	}
	if m := classNameRe.FindStringSubmatch(code); m != nil {
		return "Write a Puppet class named " + m[1]
	}
	if m := defineNameRe.FindStringSubmatch(code); m != nil {
		return "Write a Puppet defined type named " + m[1]
	}
	if strings.Contains(code, "node ") {
		return "Write a Puppet node definition"
	}
	if strings.Contains(code, "include ") {
		return "Write Puppet code including classes"
	}
	return "Write Puppet code for system configuration"
}

// WeakDescription reports whether a scraped description is too generic to
// keep, in which case Describe should be used instead.
func WeakDescription(desc string) bool {
	switch desc {
	case "", "Classes", "Puppet":
		return true
	}
	return len(desc) < 10
}
