package schema

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Default options injected when a choice field arrives without any. Keeping
// choice fields non-empty lets validators treat membership checks as total.
var defaultChoiceOptions = []string{"Option 1", "Option 2", "Option 3"}

// Normalize produces a fully populated copy of the form: choice fields get a
// non-empty options list, rating fields get concrete bounds, author-supplied
// rich text is sanitized, and unusable validation rules are dropped. The only
// fatal conditions are structural defects (missing or duplicate field IDs)
// because those would corrupt a respondent session rather than degrade it.
//
// Normalization runs once, before a session is constructed; the result must
// be treated as immutable afterwards.
func Normalize(form Form) (Form, error) {
	out := form
	out.Fields = append([]Field(nil), form.Fields...)
	out.Groups = make([]Group, len(form.Groups))
	for i, group := range form.Groups {
		out.Groups[i] = group
		out.Groups[i].Fields = append([]Field(nil), group.Fields...)
	}

	seen := make(map[string]struct{})
	check := func(field Field) error {
		if strings.TrimSpace(field.ID) == "" {
			return fmt.Errorf("schema: form %q contains a field without an id", form.ID)
		}
		if _, dup := seen[field.ID]; dup {
			return fmt.Errorf("schema: form %q declares field id %q more than once", form.ID, field.ID)
		}
		seen[field.ID] = struct{}{}
		return nil
	}

	if out.Grouped() {
		for gi := range out.Groups {
			for fi := range out.Groups[gi].Fields {
				field := &out.Groups[gi].Fields[fi]
				if err := check(*field); err != nil {
					return Form{}, err
				}
				normalizeField(field)
			}
		}
		// Flat view mirrors the grouped declaration order for callers that
		// iterate fields without caring about steps.
		out.Fields = out.AllFields()
	} else {
		for fi := range out.Fields {
			field := &out.Fields[fi]
			if err := check(*field); err != nil {
				return Form{}, err
			}
			normalizeField(field)
		}
	}

	return out, nil
}

func normalizeField(field *Field) {
	profile := DefaultsFor(field.Type)

	if profile.Shape == ValueShapeChoice && len(field.Options) == 0 {
		field.Options = append([]string(nil), defaultChoiceOptions...)
	}

	if profile.Shape == ValueShapeNumber {
		if field.MinRating == nil {
			min := profile.DefaultMinRating
			field.MinRating = &min
		}
		if field.MaxRating == nil {
			max := profile.DefaultMaxRating
			field.MaxRating = &max
		}
		if *field.MinRating > *field.MaxRating {
			field.MinRating, field.MaxRating = field.MaxRating, field.MinRating
		}
	}

	// Display-only blocks never gate navigation.
	if profile.Display {
		field.Required = false
	}

	if field.Rules != nil && field.Rules.Pattern != "" {
		if _, err := regexp.Compile(field.Rules.Pattern); err != nil {
			// A broken pattern must not take the whole form down; drop the
			// rule and keep the field otherwise intact.
			rules := *field.Rules
			rules.Pattern = ""
			field.Rules = &rules
		}
	}

	if profile.Display {
		field.Label = sanitizeRichText(field.Label)
		field.Description = sanitizeRichText(field.Description)
	}

	field.Conditional = normalizeConditional(field.Conditional)
}

func normalizeConditional(logic *ConditionalLogic) *ConditionalLogic {
	if logic == nil {
		return nil
	}
	out := ConditionalLogic{
		ShowWhen: append([]Condition(nil), logic.ShowWhen...),
		HideWhen: append([]Condition(nil), logic.HideWhen...),
	}
	if len(out.ShowWhen) == 0 && len(out.HideWhen) == 0 {
		return nil
	}
	// Malformed conditions (blank source field, unknown operator) are kept
	// as written: they evaluate to false at runtime, so a showWhen list made
	// of them hides the field rather than silently showing it.
	return &out
}

var (
	richTextPolicyOnce sync.Once
	richTextPolicy     *bluemonday.Policy
)

// sanitizeRichText strips unsafe markup from author-supplied statement and
// consent copy while keeping basic formatting.
func sanitizeRichText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(richTextSanitizer().Sanitize(trimmed))
}

func richTextSanitizer() *bluemonday.Policy {
	richTextPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("p", "br", "strong", "em", "b", "i", "u", "ul", "ol", "li", "a")
		policy.AllowAttrs("href").OnElements("a")
		policy.RequireNoFollowOnLinks(true)
		richTextPolicy = policy
	})
	return richTextPolicy
}
