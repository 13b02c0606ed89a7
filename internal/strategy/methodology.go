package strategy

import "github.com/veritas-check/veritas/internal/models"

// Each domain maps to an ordered methodology list; the generator takes the
// first three. The vocabulary targets kinds of evidence, never institutions.

var domainMethodologies = map[Domain][]models.MethodologyTag{
	DomainMedical: {
		models.MethodologySystematicReview,
		models.MethodologyPeerReviewed,
		models.MethodologyGovernmentOfficial,
	},
	DomainScientific: {
		models.MethodologyPeerReviewed,
		models.MethodologySystematicReview,
		models.MethodologyExperimental,
	},
	DomainEconomic: {
		models.MethodologyGovernmentOfficial,
		models.MethodologyIndependentResearch,
		models.MethodologyObservational,
	},
	DomainPolicy: {
		models.MethodologyGovernmentOfficial,
		models.MethodologyIndependentResearch,
		models.MethodologyPeerReviewed,
	},
	DomainStatistical: {
		models.MethodologyGovernmentOfficial,
		models.MethodologyObservational,
		models.MethodologyPeerReviewed,
	},
	DomainHistorical: {
		models.MethodologyPeerReviewed,
		models.MethodologyIndependentResearch,
		models.MethodologyGovernmentOfficial,
	},
	DomainGeneral: {
		models.MethodologyIndependentResearch,
		models.MethodologyPeerReviewed,
		models.MethodologyObservational,
	},
}

// methodologyPhrases is the fixed per-tag phrase vocabulary appended to the
// claim text during query synthesis, in priority order.
var methodologyPhrases = map[models.MethodologyTag][]string{
	models.MethodologyPeerReviewed: {
		"peer reviewed study",
		"published research",
		"academic journal article",
	},
	models.MethodologySystematicReview: {
		"systematic review",
		"meta-analysis",
		"evidence review",
	},
	models.MethodologyGovernmentOfficial: {
		"official report",
		"government data",
		"official statistics",
	},
	models.MethodologyExperimental: {
		"randomized controlled trial",
		"clinical trial results",
		"experiment results",
	},
	models.MethodologyObservational: {
		"cohort study",
		"observational study",
		"survey data",
	},
	models.MethodologyIndependentResearch: {
		"independent analysis",
		"research findings",
		"expert analysis",
	},
}

// counterPhrases drives the required counter-evidence queries. These exist
// to avoid confirmation bias and share the same quality bar downstream.
var counterPhrases = []string{
	"debunked",
	"myth",
	"false",
	"fact check",
}

// MethodologiesFor returns the first three methodology tags for a domain.
func MethodologiesFor(domain Domain) []models.MethodologyTag {
	tags := domainMethodologies[domain]
	if len(tags) > 3 {
		tags = tags[:3]
	}
	return tags
}
