package chat

import (
	"fmt"
	"strings"

	"yieldScope/internal/model"
)

// BuildPrompt renders the question with the ranked strategies as context.
func BuildPrompt(question string, strategies []model.Strategy) string {
	var b strings.Builder
	b.WriteString("Ranked strategies (safest first):\n")
	if len(strategies) == 0 {
		b.WriteString("(none available)\n")
	}
	for i, s := range strategies {
		fmt.Fprintf(&b, "%d. %s [%s] APY %s, risk %s (%d), TVL %s\n",
			i+1, s.Name, s.ID, s.APYDisplay, s.Risk.Tier, s.Risk.Score, s.TVLDisplay)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(strings.TrimSpace(question))
	return b.String()
}
