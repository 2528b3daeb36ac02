package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Placeholder stored for optional organization fields the user left blank.
const Placeholder = "Не указано"

// Field length bounds for organization profiles.
const (
	MaxNameLen        = 255
	MaxDescriptionLen = 1000
	MaxActivitiesLen  = 1000
	MaxContactLen     = 500
)

// Organization is the durable per-user NGO profile used to personalize
// generated content. At most one active row exists per user; deletion
// flips IsActive instead of removing the row.
type Organization struct {
	ID          string
	UserID      int64
	Name        string
	Description string
	Activities  string
	Contact     string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks required fields and length bounds. It returns a
// *ValidationError listing every problem found, or nil.
func (o *Organization) Validate() error {
	var problems []string
	if o.Name == "" {
		problems = append(problems, "название организации обязательно")
	}
	if utf8.RuneCountInString(o.Name) > MaxNameLen {
		problems = append(problems, fmt.Sprintf("название слишком длинное (максимум %d символов)", MaxNameLen))
	}
	if utf8.RuneCountInString(o.Description) > MaxDescriptionLen {
		problems = append(problems, fmt.Sprintf("описание слишком длинное (максимум %d символов)", MaxDescriptionLen))
	}
	if utf8.RuneCountInString(o.Activities) > MaxActivitiesLen {
		problems = append(problems, fmt.Sprintf("описание деятельности слишком длинное (максимум %d символов)", MaxActivitiesLen))
	}
	if utf8.RuneCountInString(o.Contact) > MaxContactLen {
		problems = append(problems, fmt.Sprintf("контактная информация слишком длинная (максимум %d символов)", MaxContactLen))
	}
	if problems != nil {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// FillDefaults substitutes the placeholder for optional fields left blank.
func (o *Organization) FillDefaults() {
	if o.Description == "" {
		o.Description = Placeholder
	}
	if o.Activities == "" {
		o.Activities = Placeholder
	}
	if o.Contact == "" {
		o.Contact = Placeholder
	}
}
