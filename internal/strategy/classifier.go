package strategy

import (
	"fmt"
	"sort"
	"strings"
)

// Domain is a claim subject-matter class used to select methodologies.
type Domain string

const (
	DomainMedical     Domain = "medical"
	DomainScientific  Domain = "scientific"
	DomainEconomic    Domain = "economic"
	DomainPolicy      Domain = "policy"
	DomainStatistical Domain = "statistical"
	DomainHistorical  Domain = "historical"
	DomainGeneral     Domain = "general"
)

// domainPreference is the tie-break order: earlier wins on equal scores.
var domainPreference = []Domain{
	DomainMedical,
	DomainScientific,
	DomainEconomic,
	DomainPolicy,
	DomainStatistical,
	DomainHistorical,
	DomainGeneral,
}

var domainKeywords = map[Domain][]string{
	DomainMedical: {
		"vaccine", "vaccines", "drug", "drugs", "disease", "cancer", "virus",
		"treatment", "medical", "medicine", "health", "autism", "covid",
		"patients", "clinical", "symptoms", "infection", "doctors", "hospital",
		"fda", "dosage", "cure", "therapy", "immune",
	},
	DomainScientific: {
		"study", "research", "scientists", "experiment", "physics", "chemistry",
		"biology", "climate", "energy", "species", "evolution", "dna",
		"quantum", "laboratory", "discovered", "evidence", "earth", "planet",
		"temperature", "carbon", "emissions",
	},
	DomainEconomic: {
		"economy", "economic", "gdp", "inflation", "unemployment", "jobs",
		"market", "markets", "stock", "trade", "tariff", "tax", "taxes",
		"budget", "deficit", "wages", "prices", "revenue", "investment",
		"recession", "interest rate",
	},
	DomainPolicy: {
		"policy", "policies", "law", "laws", "regulation", "government",
		"congress", "senate", "legislation", "bill", "election", "vote",
		"voting", "rigged", "ballot", "federal", "state", "mayor", "city",
		"council", "immigration",
	},
	DomainStatistical: {
		"percent", "percentage", "rate", "rates", "average", "median",
		"statistics", "statistical", "survey", "poll", "census", "increase",
		"decrease", "growth", "decline", "per capita", "majority",
	},
	DomainHistorical: {
		"history", "historical", "war", "century", "ancient", "founded",
		"revolution", "empire", "dynasty", "archive", "decade", "era",
		"anniversary", "discovered in", "first ever",
	},
}

// Classification is the auditable result of domain scoring.
type Classification struct {
	Domain    Domain
	Scores    map[Domain]int
	Matched   map[Domain][]string
	Reasoning string
}

// Classify scores the claim text against each domain keyword set. Each
// matched keyword contributes 1; the highest score wins with ties broken by
// the fixed preference order. The reasoning string records which keywords
// matched and which rule applied.
func Classify(text string) Classification {
	lower := strings.ToLower(text)

	scores := make(map[Domain]int)
	matched := make(map[Domain][]string)

	for domain, keywords := range domainKeywords {
		for _, kw := range keywords {
			if containsKeyword(lower, kw) {
				scores[domain]++
				matched[domain] = append(matched[domain], kw)
			}
		}
		sort.Strings(matched[domain])
	}

	best := DomainGeneral
	bestScore := 0
	for _, domain := range domainPreference {
		if scores[domain] > bestScore {
			best = domain
			bestScore = scores[domain]
		}
	}

	var reasoning string
	if bestScore == 0 {
		reasoning = "no domain keywords matched; rule: default to general"
	} else {
		reasoning = fmt.Sprintf("matched %s keywords: %s; rule: highest keyword count wins, ties prefer %s",
			best, strings.Join(matched[best], ", "), preferenceString())
	}

	return Classification{
		Domain:    best,
		Scores:    scores,
		Matched:   matched,
		Reasoning: reasoning,
	}
}

// containsKeyword matches whole words for single tokens and substrings for
// multi-word keywords.
func containsKeyword(lower, kw string) bool {
	if strings.Contains(kw, " ") {
		return strings.Contains(lower, kw)
	}
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if w == kw {
			return true
		}
	}
	return false
}

func preferenceString() string {
	parts := make([]string, len(domainPreference))
	for i, d := range domainPreference {
		parts[i] = string(d)
	}
	return strings.Join(parts, " > ")
}
