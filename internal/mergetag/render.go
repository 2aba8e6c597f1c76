// Package mergetag renders {tag} placeholders in template text against a
// lead's attributes.
package mergetag

import (
	"regexp"

	"github.com/abhishekbhowal06/email-automation/internal/models"
)

// tag pattern: {tag_name}
var tagPattern = regexp.MustCompile(`\{([a-z]+)\}`)

// Render replaces every occurrence of the known merge tags ({name},
// {company}, {location}, {industry}, {title}) with the lead's field
// value. Unrecognized placeholders pass through unchanged.
func Render(text string, lead *models.Lead) string {
	if text == "" {
		return text
	}

	return tagPattern.ReplaceAllStringFunc(text, func(match string) string {
		switch match[1 : len(match)-1] {
		case "name":
			return lead.Name
		case "company":
			return lead.Company
		case "location":
			return lead.Location
		case "industry":
			return lead.Industry
		case "title":
			return lead.Title
		default:
			return match
		}
	})
}
