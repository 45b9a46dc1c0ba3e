package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "guardrails.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesAllRuleSets(t *testing.T) {
	path := writePolicyFile(t, `
topics:
  - crypto
  - stock market
denyPhrases:
  - apply butter
diagnosisPatterns:
  - "you (probably|likely) have"
`)

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"crypto", "stock market"}, p.Topics)
	assert.Equal(t, []string{"apply butter"}, p.DenyPhrases)
	assert.Equal(t, []string{"you (probably|likely) have"}, p.DiagnosisPatterns)
	assert.False(t, p.Missing)
}

func TestLoadFailsOnMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read policy file")
}

func TestLoadFailsOnMalformedDocument(t *testing.T) {
	path := writePolicyFile(t, "topics: [unclosed")

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse policy file")
}

func TestEmptyPolicyMatchesNothing(t *testing.T) {
	p := Empty()

	assert.True(t, p.Missing)
	assert.Empty(t, p.MatchTopics("crypto stock homework"))

	_, found := p.MatchTopic("crypto")
	assert.False(t, found)
}

func TestMatchTopics(t *testing.T) {
	p := &Policy{Topics: []string{"crypto", "stock market", "homework"}}

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single word topic matches a whole token",
			text: "should I buy crypto today",
			want: []string{"crypto"},
		},
		{
			name: "single word topic does not match inside a longer word",
			text: "a cryptographic hash function",
			want: nil,
		},
		{
			name: "matching is case insensitive",
			text: "CRYPTO went up again",
			want: []string{"crypto"},
		},
		{
			name: "punctuation does not hide a topic",
			text: "crypto, again?",
			want: []string{"crypto"},
		},
		{
			name: "multi word topic matches across punctuation",
			text: "the stock... market? crashed",
			want: []string{"stock market"},
		},
		{
			name: "multiple topics come back in policy order",
			text: "do my homework about the crypto crash",
			want: []string{"crypto", "homework"},
		},
		{
			name: "clean first aid text matches nothing",
			text: "my hand is bleeding after a kitchen accident",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.MatchTopics(tt.text))
		})
	}
}

func TestMatchTopicReturnsFirstHit(t *testing.T) {
	p := &Policy{Topics: []string{"crypto", "homework"}}

	topic, found := p.MatchTopic("homework first, crypto later")

	require.True(t, found)
	assert.Equal(t, "crypto", topic)
}

func TestMatchTopicsSkipsBlankEntries(t *testing.T) {
	p := &Policy{Topics: []string{"", "  ", "recipe"}}

	assert.Equal(t, []string{"recipe"}, p.MatchTopics("send me a recipe"))
}
