package chatbot

import (
	"strings"
	"time"

	"famtreebot/internal/models"
)

const dateLayout = "02-01-2006"

const (
	invalidDateReply   = "Invalid date format. Please use DD-MM-YYYY."
	invalidGenderReply = "Invalid gender. Please enter Male, Female, or Other."
)

// parseDate parses a DD-MM-YYYY date.
func parseDate(input string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(input))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseGender matches the three gender labels case-insensitively.
func parseGender(input string) (models.Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "male":
		return models.GenderMale, true
	case "female":
		return models.GenderFemale, true
	case "other":
		return models.GenderOther, true
	default:
		return "", false
	}
}
