package pipeline

import (
	"time"

	"github.com/fpang/daily-panda/internal/params"
)

// Keys of the "current" artifacts, overwritten on every run.
const (
	CurrentImageKey  = "images/panda_current.png"
	CurrentPromptKey = "prompts/prompt_current.txt"
)

// Artifact is what a successful run produces.
type Artifact struct {
	Date   time.Time
	Prompt string
	Image  []byte
}

// ImageKey is the dated image location for date.
func ImageKey(date time.Time) string {
	return "images/panda_" + date.Format(params.ISODate) + ".png"
}

// PromptKey is the dated prompt location for date.
func PromptKey(date time.Time) string {
	return "prompts/prompt_" + date.Format(params.ISODate) + ".txt"
}
