// Package assets provides the embedded prompt templates sent to the text model.
//
// Templates are stored as text files under prompts/ and embedded at compile time
// so that prompt wording can be reviewed without reading Go code.
package assets

import (
	"bytes"
	_ "embed"
	"text/template"
)

// PandaSystemPrompt sets the persona and style constraints for the text model.
//
//go:embed prompts/panda-system.txt
var PandaSystemPrompt string

//go:embed prompts/panda-user.txt
var pandaUserTemplate string

// Parsed once at init; a malformed template panics there.
var pandaUserTmpl = template.Must(template.New("panda-user").Parse(pandaUserTemplate))

// PandaPromptData holds the dynamic data injected into the user prompt.
type PandaPromptData struct {
	// MonthDay is the human-readable day, e.g. "November 2".
	MonthDay string
	// PastEvents is the raw ledger content used as an exclusion list.
	PastEvents string
	// TokenBudget is the output token limit the model should plan for.
	TokenBudget int
}

// RenderPandaUserPrompt renders the user prompt template.
func RenderPandaUserPrompt(data PandaPromptData) string {
	var buf bytes.Buffer
	// Only strings and an int are interpolated, so Execute cannot fail.
	_ = pandaUserTmpl.Execute(&buf, data)
	return buf.String()
}
