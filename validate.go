package folioapi

import (
	"regexp"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// validateBlogPost checks required fields on an assembled post.
// publishDateRaw is the value as sent, so a present-but-unparseable date
// is reported distinctly from a missing one. Every failure is returned,
// not just the first.
func validateBlogPost(p BlogPost, publishDateRaw string) []string {
	var details []string
	if p.Title == "" {
		details = append(details, "title is required")
	}
	if p.Excerpt == "" {
		details = append(details, "excerpt is required")
	}
	if p.Content == "" {
		details = append(details, "content is required")
	}
	switch {
	case publishDateRaw == "":
		details = append(details, "publishDate is required")
	case p.PublishDate.IsZero():
		details = append(details, "publishDate must be a valid date")
	}
	return details
}

// validateProject checks required fields, including all three nested
// stats fields.
func validateProject(p Project) []string {
	var details []string
	if p.Title == "" {
		details = append(details, "title is required")
	}
	if p.Description == "" {
		details = append(details, "description is required")
	}
	if p.Stats.Users == "" {
		details = append(details, "stats.users is required")
	}
	if p.Stats.Performance == "" {
		details = append(details, "stats.performance is required")
	}
	if p.Stats.Rating == "" {
		details = append(details, "stats.rating is required")
	}
	return details
}

// validateMessage enforces presence plus the store-level length and
// pattern constraints on contact messages.
func validateMessage(m Message) []string {
	var details []string
	switch {
	case m.Name == "":
		details = append(details, "name is required")
	case utf8.RuneCountInString(m.Name) < 2:
		details = append(details, "name must be at least 2 characters")
	}
	switch {
	case m.Email == "":
		details = append(details, "email is required")
	case !emailPattern.MatchString(m.Email):
		details = append(details, "email must be a valid email address")
	}
	switch {
	case m.Subject == "":
		details = append(details, "subject is required")
	case utf8.RuneCountInString(m.Subject) < 5:
		details = append(details, "subject must be at least 5 characters")
	}
	switch {
	case m.Body == "":
		details = append(details, "message is required")
	case utf8.RuneCountInString(m.Body) < 10:
		details = append(details, "message must be at least 10 characters")
	}
	return details
}
