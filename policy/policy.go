package policy

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the policy document is looked up when GUARDRAILS_PATH is unset
const DefaultPath = "guardrails.yaml"

var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9]+`)

// Policy holds the guardrail rule sets loaded from the policy document.
// Topics bound the conversation scope, deny phrases and diagnosis patterns
// bound the generated output.
type Policy struct {
	Topics            []string `yaml:"topics"`
	DenyPhrases       []string `yaml:"denyPhrases"`
	DiagnosisPatterns []string `yaml:"diagnosisPatterns"`

	// Missing is true when no document could be read and the empty rule set
	// is in effect
	Missing bool `yaml:"-"`
}

// Load reads and parses the policy document at path
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	return &p, nil
}

// Empty returns a policy with no rules. The pipeline keeps serving with it
// and reports itself degraded.
func Empty() *Policy {
	return &Policy{Missing: true}
}

// MatchTopics returns every disallowed topic found in text, in policy order.
// Single-word topics match whole tokens; multi-word topics match as
// substrings of the tokenized text, so punctuation differences do not hide
// them.
func (p *Policy) MatchTopics(text string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokenString := " " + strings.Join(tokens, " ") + " "

	var matched []string
	for _, topic := range p.Topics {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic == "" {
			continue
		}
		if strings.Contains(tokenString, " "+topic+" ") {
			matched = append(matched, topic)
		}
	}
	return matched
}

// MatchTopic returns the first disallowed topic found in text, if any
func (p *Policy) MatchTopic(text string) (string, bool) {
	matched := p.MatchTopics(text)
	if len(matched) == 0 {
		return "", false
	}
	return matched[0], true
}
