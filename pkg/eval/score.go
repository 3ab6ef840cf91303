// Package eval scores model output for Puppet syntax quality and runs
// prompt suites against a model backend, producing comparable reports.
package eval

import (
	"regexp"

	"github.com/manifestlab/puppetmill/pkg/manifest"
)

// resourceTypeRes match the core Puppet resource declarations, 15 points
// each.
var resourceTypeRes = compileAll(
	`file\s*\{`,
	`package\s*\{`,
	`service\s*\{`,
	`user\s*\{`,
	`group\s*\{`,
	`exec\s*\{`,
	`cron\s*\{`,
)

// syntaxRes match well-formed Puppet attribute syntax, 10 points each.
var syntaxRes = compileAll(
	`\w+\s*\{\s*['"][^'"]+['"]:\s*`,
	`ensure\s*=>\s*\w+`,
	`require\s*=>\s*\w+\[['"][^'"]+['"]\]`,
	`notify\s*=>\s*\w+\[['"][^'"]+['"]\]`,
	`mode\s*=>\s*['"][0-9]{4}['"]`,
	`owner\s*=>\s*['"][^'"]+['"]`,
	`group\s*=>\s*['"][^'"]+['"]`,
)

var resourceDeclRe = regexp.MustCompile(`\w+\s*\{`)

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}

// SyntaxScore rates a completion's Puppet syntax quality from 0 to 100.
func SyntaxScore(text string) int {
	score := 0
	for _, re := range resourceTypeRes {
		if re.MatchString(text) {
			score += 15
		}
	}
	for _, re := range syntaxRes {
		if re.MatchString(text) {
			score += 10
		}
	}
	// Host-language leakage is what fine-tuning gone wrong looks like.
	score -= 20 * manifest.HostLanguagePenalty(text)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// HasResource reports whether the text contains any resource-style
// declaration.
func HasResource(text string) bool {
	return resourceDeclRe.MatchString(text)
}
