package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultRules() []TagRule {
	return []TagRule{
		{Label: "HR", Keywords: []string{"hr", "human resource"}},
		{Label: "FINANCE", Keywords: []string{"finance", "accounts"}},
		{Label: "LEGAL", Keywords: []string{"legal"}},
	}
}

func TestClassifyMatchesKeyword(t *testing.T) {
	classifier := NewTagClassifier(defaultRules())

	assert.Equal(t, "HR", classifier.Classify("What is the HR leave policy?"))
	assert.Equal(t, "FINANCE", classifier.Classify("how do I submit accounts payable"))
	assert.Equal(t, "LEGAL", classifier.Classify("LEGAL obligations of the vendor"))
}

func TestClassifyCaseInsensitive(t *testing.T) {
	classifier := NewTagClassifier(defaultRules())
	assert.Equal(t, "HR", classifier.Classify("HUMAN RESOURCE guidelines"))
}

func TestClassifyFirstRuleWins(t *testing.T) {
	classifier := NewTagClassifier(defaultRules())
	// 同时包含HR和finance关键词，规则顺序决定结果
	assert.Equal(t, "HR", classifier.Classify("hr budget and finance report"))
}

func TestClassifyNoMatchReturnsEmpty(t *testing.T) {
	classifier := NewTagClassifier(defaultRules())
	assert.Equal(t, "", classifier.Classify("weather forecast for tomorrow"))
}

func TestClassifyIgnoresEmptyKeywords(t *testing.T) {
	classifier := NewTagClassifier([]TagRule{{Label: "X", Keywords: []string{""}}})
	assert.Equal(t, "", classifier.Classify("anything"))
}
