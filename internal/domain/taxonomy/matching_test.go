package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchingRule_Any(t *testing.T) {
	rule := MatchingRule{Match: "invoice receipt", MatchingAlgorithm: MatchAny, IsInsensitive: true}

	assert.True(t, rule.Matches("Your INVOICE is attached"))
	assert.True(t, rule.Matches("thanks for the receipt"))
	assert.False(t, rule.Matches("statement of account"))
	assert.False(t, rule.Matches("invoices"), "word boundaries must be respected")
}

func TestMatchingRule_All(t *testing.T) {
	rule := MatchingRule{Match: "electric bill", MatchingAlgorithm: MatchAll, IsInsensitive: true}

	assert.True(t, rule.Matches("your electric bill for march"))
	assert.False(t, rule.Matches("your electric statement"))
}

func TestMatchingRule_Literal(t *testing.T) {
	rule := MatchingRule{Match: "bank of examples", MatchingAlgorithm: MatchLiteral, IsInsensitive: true}

	assert.True(t, rule.Matches("statement from Bank of Examples today"))
	assert.False(t, rule.Matches("bank examples"))
}

func TestMatchingRule_Regex(t *testing.T) {
	rule := MatchingRule{Match: `inv-\d{4}`, MatchingAlgorithm: MatchRegex, IsInsensitive: true}

	assert.True(t, rule.Matches("reference INV-2038 enclosed"))
	assert.False(t, rule.Matches("reference INV-20 enclosed"))
}

func TestMatchingRule_RegexInvalidPatternNeverMatches(t *testing.T) {
	rule := MatchingRule{Match: "([", MatchingAlgorithm: MatchRegex}

	assert.False(t, rule.Matches("(["))
}

func TestMatchingRule_Fuzzy(t *testing.T) {
	rule := MatchingRule{Match: "electricity company", MatchingAlgorithm: MatchFuzzy, IsInsensitive: true}

	assert.True(t, rule.Matches("a letter from the electricity company about rates"))
	assert.False(t, rule.Matches("a letter from the water utility"))
}

func TestMatchingRule_NoneAndEmpty(t *testing.T) {
	none := MatchingRule{Match: "anything", MatchingAlgorithm: MatchNone}
	assert.False(t, none.Matches("anything"))

	empty := MatchingRule{Match: "", MatchingAlgorithm: MatchAny}
	assert.False(t, empty.Matches("text"))
}

func TestMatchingRule_CaseSensitive(t *testing.T) {
	rule := MatchingRule{Match: "ACME", MatchingAlgorithm: MatchAny, IsInsensitive: false}

	assert.True(t, rule.Matches("invoice from ACME"))
	assert.False(t, rule.Matches("invoice from acme"))
}

func TestMatchingRule_SetRuleRejectsBadRegex(t *testing.T) {
	var rule MatchingRule

	err := rule.SetRule("([", MatchRegex, false)
	assert.Error(t, err)

	err = rule.SetRule("fine", "bogus", false)
	assert.Error(t, err)

	err = rule.SetRule("fine", MatchLiteral, true)
	assert.NoError(t, err)
	assert.Equal(t, MatchLiteral, rule.MatchingAlgorithm)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "tax-returns-2025", Slugify("Tax Returns (2025)"))
	assert.Equal(t, "inbox", Slugify("Inbox"))
}

func TestTag_TextColor(t *testing.T) {
	tag, err := NewTag("inbox")
	assert.NoError(t, err)

	assert.NoError(t, tag.SetColor("#ffffff"))
	assert.Equal(t, "#000000", tag.TextColor())

	assert.NoError(t, tag.SetColor("#102030"))
	assert.Equal(t, "#ffffff", tag.TextColor())

	assert.Error(t, tag.SetColor("red"))
}
