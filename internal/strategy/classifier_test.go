package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Domain
	}{
		{"medical", "the new vaccine prevents disease in patients", DomainMedical},
		{"scientific", "scientists discovered a new species on the planet", DomainScientific},
		{"economic", "inflation and unemployment pushed the economy into recession", DomainEconomic},
		{"policy", "congress passed the immigration bill into law", DomainPolicy},
		{"statistical", "the survey found the average rate of decline", DomainStatistical},
		{"historical", "the empire fell a century after the revolution", DomainHistorical},
		{"general fallback", "the bridge is painted green", DomainGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := Classify(tt.text)
			assert.Equal(t, tt.want, cls.Domain)
			assert.NotEmpty(t, cls.Reasoning)
		})
	}
}

func TestClassify_TieBreakPrefersMedical(t *testing.T) {
	// One medical keyword and one scientific keyword: preference order wins.
	cls := Classify("the vaccine study continues")
	assert.Equal(t, DomainMedical, cls.Domain)
}

func TestClassify_ReasoningListsKeywords(t *testing.T) {
	cls := Classify("the vaccine trial treated cancer patients")
	assert.Contains(t, cls.Reasoning, "vaccine")
	assert.Contains(t, cls.Reasoning, "highest keyword count wins")
}

func TestMethodologiesFor(t *testing.T) {
	for _, d := range domainPreference {
		tags := MethodologiesFor(d)
		assert.Len(t, tags, 3, "domain %s", d)
	}
}
