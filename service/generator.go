package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"firstaidguide-backend/models"
	"firstaidguide-backend/provider"
)

const generatorTimeout = 20 * time.Second

// stepPrefixPattern strips list enumerators from generated step lines
var stepPrefixPattern = regexp.MustCompile(`^\s*(?:\d+[.)]\s*|[-*]\s+)`)

// Generator produces first-aid instruction sets, grounded in retrieved guide
// content when available
type Generator struct {
	completer provider.ChatCompleter
	logger    zerolog.Logger
}

// NewGenerator creates a generator. The completer may be nil, in which case
// every request is answered from the static templates.
func NewGenerator(completer provider.ChatCompleter, logger zerolog.Logger) *Generator {
	return &Generator{
		completer: completer,
		logger:    logger.With().Str("component", "generator").Logger(),
	}
}

// Generate asks the model for instructions and falls back to the static
// template for the category when the model is unavailable or returns nothing
// usable. The returned set always has at least one step.
func (g *Generator) Generate(ctx context.Context, category models.Category, userText, grounding string) models.InstructionSet {
	if g.completer == nil {
		g.logger.Debug().Msg("no completion provider configured, using template")
		return FallbackInstructions(category)
	}

	ctx, cancel := context.WithTimeout(ctx, generatorTimeout)
	defer cancel()

	prompt := buildInstructionPrompt(category, userText, grounding)

	content, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		g.logger.Warn().Err(err).Str("category", string(category)).Msg("instruction generation failed, using template")
		return FallbackInstructions(category)
	}

	summary, steps := parseInstructions(content)
	if len(steps) == 0 {
		g.logger.Warn().Str("category", string(category)).Msg("generated response had no usable steps, using template")
		return FallbackInstructions(category)
	}
	if summary == "" {
		summary = defaultSummary(category)
	}

	return models.InstructionSet{
		Summary: summary,
		Steps:   steps,
		Source:  models.InstructionSourceGenerated,
	}
}

func buildInstructionPrompt(category models.Category, userText, grounding string) string {
	var sb strings.Builder

	sb.WriteString("You are a first-aid instruction generator. Use the provided context strictly. ")
	sb.WriteString("Give clear, short, numbered steps a layperson can follow right now. ")
	sb.WriteString("Include cautions where they matter. If unsure, say to contact emergency services. ")
	sb.WriteString("Never diagnose a condition and never recommend medication doses.\n\n")

	if grounding != "" {
		sb.WriteString("CONTEXT FROM FIRST-AID GUIDES:\n")
		sb.WriteString(grounding)
		sb.WriteString("\n\n")
	}

	sb.WriteString("SITUATION CATEGORY: ")
	sb.WriteString(string(category))
	sb.WriteString("\n\nUSER MESSAGE:\n")
	sb.WriteString(userText)
	sb.WriteString("\n\nOUTPUT REQUIREMENTS:\n")
	sb.WriteString("- First line: a one-sentence summary of what to do.\n")
	sb.WriteString(fmt.Sprintf("- Then numbered steps, at most %d, one per line.\n", models.MaxInstructionSteps))
	sb.WriteString("- Plain text only, no markdown headings.")

	return sb.String()
}

// parseInstructions splits a model response into a summary line and its
// enumerated steps. Lines carrying a list enumerator become steps; the first
// plain line before any step becomes the summary.
func parseInstructions(content string) (string, []string) {
	summary := ""
	var steps []string

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if stepPrefixPattern.MatchString(line) {
			step := strings.TrimSpace(stepPrefixPattern.ReplaceAllString(line, ""))
			if step != "" {
				steps = append(steps, step)
			}
			continue
		}
		if summary == "" && len(steps) == 0 {
			summary = line
		}
	}

	if len(steps) > models.MaxInstructionSteps {
		steps = steps[:models.MaxInstructionSteps]
	}

	return summary, steps
}

func defaultSummary(category models.Category) string {
	if category == models.CategoryUnknown {
		return "General first-aid guidance."
	}
	label := strings.ReplaceAll(string(category), "_", " ")
	return fmt.Sprintf("First aid for %s.", label)
}

// fallbackTemplate holds the static instructions served when generation is
// unavailable
type fallbackTemplate struct {
	summary string
	steps   []string
}

var fallbackTemplates = map[models.Category]fallbackTemplate{
	models.CategoryBleeding: {
		summary: "Control the bleeding and keep the wound clean.",
		steps: []string{
			"Press firmly on the wound with a clean cloth or bandage.",
			"Raise the injured area above heart level if you can.",
			"Once the bleeding slows, clean the wound gently with water.",
			"Get urgent medical help if the bleeding is heavy or does not stop.",
		},
	},
	models.CategoryBurn: {
		summary: "Cool the burn and protect the skin.",
		steps: []string{
			"Cool the burn under cool running water for at least 10 minutes.",
			"Remove rings or tight items near the burn before it swells.",
			"Cover the burn loosely with a sterile, non-fluffy dressing.",
			"Leave any blisters intact and seek medical care for large or deep burns.",
		},
	},
	models.CategoryChoking: {
		summary: "Clear the airway and call for help if it stays blocked.",
		steps: []string{
			"Encourage them to keep coughing if they can.",
			"Give up to 5 firm back blows between the shoulder blades.",
			"If that fails, give up to 5 abdominal thrusts.",
			"Call emergency services immediately if the airway stays blocked.",
		},
	},
	models.CategoryAllergicReaction: {
		summary: "Treat the reaction fast and watch the breathing.",
		steps: []string{
			"Use an epinephrine auto-injector right away if one is available.",
			"Call emergency services for any trouble breathing or face swelling.",
			"Help them lie flat with legs raised unless breathing is difficult.",
			"Stay with them and start CPR if they stop breathing and you are trained.",
		},
	},
	models.CategoryBruise: {
		summary: "Ease the swelling and rest the area.",
		steps: []string{
			"Hold a cold pack wrapped in cloth on the bruise for 15 to 20 minutes.",
			"Rest the bruised area and avoid pressing on it.",
			"Raise the area above heart level when possible.",
			"See a doctor if the pain is severe or the bruising keeps spreading.",
		},
	},
	models.CategorySprain: {
		summary: "Rest, cool and support the joint.",
		steps: []string{
			"Stop using the joint and rest it.",
			"Apply a cold pack wrapped in cloth for 15 to 20 minutes at a time.",
			"Wrap the joint with a bandage that is snug but not tight.",
			"Keep it raised, and get medical care if you cannot bear weight on it.",
		},
	},
	models.CategoryFracture: {
		summary: "Keep the limb still and get help.",
		steps: []string{
			"Keep the injured limb still and do not try to straighten it.",
			"Support it in the position found, with padding if available.",
			"Apply a cold pack wrapped in cloth to limit swelling.",
			"Call emergency services or get them to a hospital quickly.",
		},
	},
	models.CategoryFainting: {
		summary: "Get them safely down and let blood return to the head.",
		steps: []string{
			"Help them lie down flat and raise their legs.",
			"Loosen any tight clothing around the neck.",
			"Once fully awake, help them sit up slowly and sip water.",
			"Seek medical advice if they stay unwell, fainted for long, or hit their head.",
		},
	},
	models.CategoryHeadache: {
		summary: "Reduce the strain and watch for warning signs.",
		steps: []string{
			"Rest in a quiet, dimly lit room.",
			"Drink water, since dehydration is a common trigger.",
			"Place a cool compress on the forehead.",
			"Get urgent care for a sudden severe headache or any vision or speech changes.",
		},
	},
	models.CategoryPoisoning: {
		summary: "Get professional help before doing anything else.",
		steps: []string{
			"Call emergency services or a poison information line immediately.",
			"Do not give them anything to eat or drink unless told to by professionals.",
			"Keep the container, label or a sample of what was taken for responders.",
			"If they become drowsy or stop responding, call an ambulance right away.",
		},
	},
}

// genericFallback covers the unknown category and anything missing a template
var genericFallback = fallbackTemplate{
	summary: "Keep them safe and comfortable while you assess.",
	steps: []string{
		"Move them to a safe, comfortable position and stay calm.",
		"Check for serious bleeding or trouble breathing.",
		"Use rest, a cool compress and small sips of water as comfort measures.",
		"Contact a medical professional if anything worsens or you are unsure.",
	},
}

// FallbackInstructions returns the static template for a category. The same
// category always yields the same instructions.
func FallbackInstructions(category models.Category) models.InstructionSet {
	template, ok := fallbackTemplates[category]
	if !ok {
		template = genericFallback
	}

	steps := make([]string, len(template.steps))
	copy(steps, template.steps)

	return models.InstructionSet{
		Summary: template.summary,
		Steps:   steps,
		Source:  models.InstructionSourceFallback,
	}
}
