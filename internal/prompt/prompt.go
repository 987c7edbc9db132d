// Package prompt builds the instruction sent to the text model and turns the
// model's answer into the final image prompt.
package prompt

import (
	"strings"
	"time"

	"github.com/fpang/daily-panda/internal/assets"
	"github.com/fpang/daily-panda/internal/textproc"
)

// MaxOutputTokens is the output budget requested from the text model and
// quoted back to it in the instruction.
const MaxOutputTokens = 100

// Instruction is the system/user message pair for one text-generation call.
type Instruction struct {
	System string
	User   string
}

// BuildInstruction composes the instruction for date. pastEvents is the raw
// ledger content and is embedded verbatim as the exclusion list.
func BuildInstruction(date time.Time, pastEvents string) Instruction {
	return Instruction{
		System: strings.TrimSpace(assets.PandaSystemPrompt),
		User: assets.RenderPandaUserPrompt(assets.PandaPromptData{
			MonthDay:    MonthDay(date),
			PastEvents:  strings.TrimSpace(pastEvents),
			TokenBudget: MaxOutputTokens,
		}),
	}
}

// MonthDay formats date as "January 2".
func MonthDay(date time.Time) string {
	return date.Format("January 2")
}

// Finalize converts raw model output into the image prompt: ASCII only and
// cut back to the last complete sentence. The result may be empty.
func Finalize(raw string) string {
	return textproc.TruncateToCompleteSentences(textproc.Normalize(strings.TrimSpace(raw)))
}
