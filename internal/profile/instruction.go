package profile

import "strings"

const (
	maxInstructionInterests = 3
	maxInstructionTopics    = 2
)

// BuildInstruction formats a profile into the natural-language prefix
// injected into the generation prompt. It is a pure function: the same
// profile always yields the identical string. A profile without a name
// yields "" (no personalization).
func BuildInstruction(p Profile) string {
	if p.Name == "" {
		return ""
	}

	parts := []string{"You're helping " + p.Name}

	if p.City != "" {
		parts = append(parts, "from "+p.City)
	}
	if p.Profession != "" {
		parts = append(parts, "who works as a "+p.Profession)
	}
	if len(p.Interests) > 0 {
		interests := p.Interests
		if len(interests) > maxInstructionInterests {
			interests = interests[:maxInstructionInterests]
		}
		parts = append(parts, "who likes "+strings.Join(interests, ", "))
	}
	if p.ExpertiseLevel != "" && p.ExpertiseLevel != "beginner" {
		parts = append(parts, "with "+p.ExpertiseLevel+" expertise")
	}
	if len(p.PreferredTopics) > 0 {
		topics := p.PreferredTopics
		if len(topics) > maxInstructionTopics {
			topics = topics[:maxInstructionTopics]
		}
		parts = append(parts, "and prefers topics like "+strings.Join(topics, ", "))
	}

	return strings.Join(parts, " ") + ". Personalize examples and explanations accordingly."
}
