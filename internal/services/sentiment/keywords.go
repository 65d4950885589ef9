package sentiment

import "regexp"

// Each pattern counts at most once per headline. Matching is case-insensitive.
var bullishPatterns = compile(
	`\bsurg(e|es|ed|ing)\b`,
	`\bsoar(s|ed|ing)?\b`,
	`\brall(y|ies|ied)\b`,
	`\bjump(s|ed)?\b`,
	`\brecord high\b|\ball[- ]time high\b`,
	`\bbreak(s|ing)? out\b|\bbreakout\b`,
	`\bbullish\b`,
	`\bapprov(e|es|ed|al)\b|\bgreen light\b`,
	`\binflows?\b`,
	`\bupgrade[sd]?\b`,
	`\badopt(s|ed|ion)\b`,
	`\beas(e|es|ing)\b|\brate cuts?\b`,
	// localized
	`利多`, `上漲`, `大漲`, `飆升`, `突破`, `創新高`, `看漲`,
	`核准`, `批准`, `通過`, `寬鬆`, `合法化`, `流入`,
)

var bearishPatterns = compile(
	`\bplung(e|es|ed|ing)\b`,
	`\bcrash(es|ed)?\b`,
	`\bslump(s|ed)?\b`,
	`\bsell[- ]?off\b`,
	`\btumbl(e|es|ed)\b`,
	`\bbearish\b`,
	`\bhack(s|ed|er|ers)?\b|\bexploit(s|ed)?\b`,
	`\bliquidat(ion|ions|ed)\b`,
	`\breject(s|ed|ion)?\b`,
	`\bban(s|ned)?\b`,
	`\blawsuits?\b|\bsu(e|es|ed)\b`,
	`\bsanctions?\b`,
	`\bfined\b|\bfines\b`,
	`\boutflows?\b`,
	`\bdelay(s|ed)?\b`,
	`\bfraud\b`,
	`\bdowngrade[sd]?\b`,
	// localized
	`利空`, `下跌`, `大跌`, `暴跌`, `崩盤`, `看跌`, `駭客`, `清算`,
	`駁回`, `否決`, `延後`, `延遲`, `制裁`, `禁令`, `起訴`, `訴訟`, `罰款`, `罰金`, `流出`,
)

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// Polarity returns bullish minus bearish pattern hits across both titles.
func Polarity(title, translated string) int {
	score := 0
	for _, re := range bullishPatterns {
		if re.MatchString(title) || (translated != "" && re.MatchString(translated)) {
			score++
		}
	}
	for _, re := range bearishPatterns {
		if re.MatchString(title) || (translated != "" && re.MatchString(translated)) {
			score--
		}
	}
	return score
}
