package template

import "fmt"

// Render substitutes {{token}} markers in every textual field with the
// string form of the matching variable. Tokens with no matching key
// are left verbatim; stripping or erroring on them is a pending
// product decision, since leaked markers are visible to end users.
// Rendering is pure: identical inputs always produce identical output.
func Render(t *Template, variables map[string]any) RenderedMessage {
	return RenderedMessage{
		Subject:  substitute(t.Subject, variables),
		Title:    substitute(t.Title, variables),
		Body:     substitute(t.Body, variables),
		HTMLBody: substitute(t.HTMLBody, variables),
	}
}

func substitute(text string, variables map[string]any) string {
	if text == "" {
		return ""
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := tokenPattern.FindStringSubmatch(match)[1]
		v, ok := variables[name]
		if !ok {
			return match
		}
		return fmt.Sprintf("%v", v)
	})
}
