package intent

import "regexp"

// ClaimDC is the Persuasion DC of each kind of bold claim.
var ClaimDC = map[string]int{
	"royal_heritage":      18,
	"fame":                15,
	"powerful_connection": 20,
	"supernatural":        14,
	"physical_prowess":    12,
	"expertise":           14,
}

var claimPatterns = []struct {
	claimType string
	re        *regexp.Regexp
}{
	{"royal_heritage", regexp.MustCompile(`\b(?:i'm|i am) (?:the )?(?:king's|queen's|prince|princess|duke's|duchess's|royal|noble) (?:son|daughter|heir|blood)\b`)},
	{"royal_heritage", regexp.MustCompile(`\b(?:i'm|i am) (?:of |from )?(?:royal|noble) (?:blood|birth|lineage|descent)\b`)},
	{"fame", regexp.MustCompile(`\b(?:i'm|i am) (?:very |incredibly |extremely )?(?:famous|renowned|legendary|well-known|celebrated)\b`)},
	{"fame", regexp.MustCompile(`\b(?:everyone|all|people) (?:knows|know|has heard of|have heard of|recognizes|recognize) me\b`)},
	{"powerful_connection", regexp.MustCompile(`\b(?:dragon|ancient one|deity|god|goddess|demon lord) (?:owes me|is my (?:friend|ally)|knows me|trusts me)\b`)},
	{"powerful_connection", regexp.MustCompile(`\b(?:i|i'm|i am) (?:friends with|allied with|connected to) (?:the |a )?(?:dragon|demon|deity|god)\b`)},
	{"supernatural", regexp.MustCompile(`\b(?:i'm|i am) (?:cursed|hexed|doomed|damned)\b`)},
	{"supernatural", regexp.MustCompile(`\b(?:i'm|i am) blessed (?:by|with)\b`)},
	{"physical_prowess", regexp.MustCompile(`\b(?:i'm|i am) (?:incredibly|extremely|very|unbelievably) (?:strong|powerful|mighty|tough)\b`)},
	{"expertise", regexp.MustCompile(`\b(?:i'm|i am) (?:a |an )?(?:master|expert|legendary) (?:swordsman|swordswoman|warrior|mage|thief|assassin)\b`)},
}

// DetectClaim reports the type and DC of the first bold claim in
// normalized text.
func DetectClaim(text string) (claimType string, dc int, ok bool) {
	for _, p := range claimPatterns {
		if p.re.MatchString(text) {
			return p.claimType, ClaimDC[p.claimType], true
		}
	}
	return "", 0, false
}
