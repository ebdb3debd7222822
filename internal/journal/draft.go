package journal

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/chroniclelens/internal/apperr"
)

// MaxTags is the number of tags a draft may carry.
const MaxTags = 5

// Draft is the user-authored input for a new entry.
type Draft struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	HasPhoto    bool     `json:"has_photo"`
	HasAudio    bool     `json:"has_audio"`
	HasLocation bool     `json:"has_location"`
}

// Normalize trims surrounding whitespace from the title, content and tags.
func (d Draft) Normalize() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Content = strings.TrimSpace(d.Content)
	if d.Tags != nil {
		tags := make([]string, len(d.Tags))
		for i, t := range d.Tags {
			tags[i] = strings.TrimSpace(t)
		}
		d.Tags = tags
	}
	return d
}

// Validate checks the draft. Failures wrap apperr.ErrValidation; the field
// details are available through FieldErrors.
func (d Draft) Validate() error {
	err := validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Required, validation.Length(3, 100)),
		validation.Field(&d.Content, validation.Required, validation.Length(10, 5000)),
		validation.Field(&d.Tags,
			validation.Length(0, MaxTags),
			validation.Each(validation.Required),
			validation.By(uniqueTags),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	return nil
}

// FieldErrors extracts per-field messages from a Validate error. It returns
// nil when err carries no field details.
func FieldErrors(err error) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for field, e := range verrs {
		out[field] = e.Error()
	}
	return out
}

func uniqueTags(value interface{}) error {
	tags, _ := value.([]string)
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate tag %q", t)
		}
		seen[key] = struct{}{}
	}
	return nil
}
