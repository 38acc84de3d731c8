package score

import (
	"regexp"
	"strings"

	"github.com/crisiswatch/crisiswatch/internal/model"
)

// Ranker maps (crisis category, verdict, claim text) to a severity level.
// Pure and deterministic: no external calls, no failure modes. Ambiguous
// cases resolve toward the higher severity.
type Ranker struct {
	directives []*regexp.Regexp
	panic      []*regexp.Regexp
}

// Action-directive keyword classes: phrasings that instruct people to act
// (or not act) during a crisis, where believing a false claim carries
// immediate physical risk.
var defaultDirectivePatterns = []string{
	// Evacuation and movement directives
	`\bevacuate\b`,
	`\bevacuation (route|order|center)s?\b`,
	`\bshelter in place\b`,
	`\bleave (your|the) (home|house|area|city|town)\b`,
	// Treatment and medication instructions
	`\b(take|drink|inject|gargle|apply|swallow|inhale)\b.*\bto (cure|treat|prevent|kill)\b`,
	`\b(do not|don't|stop|avoid|refuse) (tak(e|ing)|us(e|ing)|get(ting)?) (the |any )?(vaccine|medicine|medication|treatment)s?\b`,
	`\b(do not|don't|avoid) (go(ing)? to|visit(ing)?) (the )?(hospital|doctor|clinic)s?\b`,
	// Emergency-service status
	`\b(helpline|hotline|emergency (number|service|line)s?)\b`,
	`\b(hospital|ambulance|police|fire (station|department))s? (is|are) (closed|full|down|not (responding|available|coming))\b`,
	`\b(call|dial) (911|112|108)\b`,
	// Supply and rationing directives
	`\b(stock up|hoard|withdraw (all|your) (cash|money))\b`,
	`\b(atm|bank)s? (is|are) (closing|closed|out of)\b`,
}

// Panic signals: claims that can incite mass panic even when true.
var defaultPanicPatterns = []string{
	`\b(thousands|hundreds|lakhs?) (dead|killed|dying)\b`,
	`\b(mass|total|complete) (panic|collapse|breakdown)\b`,
	`\b(deadly|lethal|fatal) (outbreak|virus|disease|gas|leak)\b`,
	`\bmartial law\b`,
	`\bcity (is )?(sealed|locked down)\b`,
}

// NewRanker creates a severity ranker with the default keyword classes
func NewRanker() *Ranker {
	return &Ranker{
		directives: compileAll(defaultDirectivePatterns),
		panic:      compileAll(defaultPanicPatterns),
	}
}

func compileAll(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+p))
	}
	return compiled
}

// Rank assigns a severity level to a verdict for the given claim.
//
// critical: in-category false/mostly_false claims carrying an action
// directive (the claim tells people what to do, and it is wrong).
// high: in-category false/mostly_false without a directive, or in-category
// claims that can incite panic regardless of verdict.
// medium: mixed or mostly_true misleading content, and anything else
// false-leaning outside the crisis categories.
// low: true claims and cosmetic inaccuracies.
func (r *Ranker) Rank(category model.CrisisCategory, verdict model.Verdict, claimText string) model.Severity {
	inCategory := category == model.CategoryHealth ||
		category == model.CategoryNaturalDisaster ||
		category == model.CategoryCivilUnrest

	falseLeaning := verdict == model.VerdictFalse || verdict == model.VerdictMostlyFalse
	directive := matchAny(r.directives, claimText)
	incitesPanic := matchAny(r.panic, claimText)

	switch {
	case inCategory && falseLeaning && directive:
		return model.SeverityCritical
	case inCategory && falseLeaning:
		return model.SeverityHigh
	case inCategory && incitesPanic:
		// True but panic-inducing still warrants attention.
		return model.SeverityHigh
	case falseLeaning:
		return model.SeverityMedium
	case verdict == model.VerdictMixed || verdict == model.VerdictMostlyTrue:
		return model.SeverityMedium
	case verdict == model.VerdictUnverifiable:
		if inCategory && directive {
			return model.SeverityHigh
		}
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	text = strings.ToLower(text)
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
