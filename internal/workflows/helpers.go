package workflows

import (
	"scrimworks/quartermaster/internal/constants"
	"scrimworks/quartermaster/internal/platform"
)

// only builds the single-responder set used by most prompts.
func only(userID string) []string {
	return []string{userID}
}

func field(name string, minLen, maxLen int) platform.FieldSpec {
	return platform.FieldSpec{Name: name, MinLen: minLen, MaxLen: maxLen}
}

func regionChoices() []platform.Choice {
	choices := make([]platform.Choice, 0, len(constants.AllRegions))
	for _, r := range constants.AllRegions {
		choices = append(choices, platform.Choice{ID: r.String(), Label: r.String()})
	}
	return choices
}
