// Oracle wraps Client with the monthly USD budget ledger spec.md §6
// requires of the LLM collaborator: every call is costed against the
// current month's llm_usage row before it is allowed through, and the
// observed token usage is charged back afterward.
package llm

import (
	"fmt"
	"time"

	"github.com/talgya/abydos/internal/store"
)

// ErrBudgetExceeded is returned when the projected cost of a call would
// push the current month's spend over the configured hard limit. Callers
// map this to the Budget error-taxonomy case: emit a fixed message and
// skip generation.
var ErrBudgetExceeded = fmt.Errorf("llm: monthly budget exceeded")

// Oracle is the budget-gated front door to the Haiku client. Narration,
// rule-of-the-day flavor, and any future text-generation call sites go
// through here, never through Client directly.
type Oracle struct {
	client        *Client
	store         *store.Store
	monthlyUSDCap float64
	price1kInput  float64
	price1kOutput float64
}

// NewOracle builds an Oracle around an already-constructed Client. client
// may be nil (disabled), in which case Generate always reports the
// oracle as disabled rather than erroring on every call site.
func NewOracle(client *Client, st *store.Store, monthlyUSDCap, price1kInput, price1kOutput float64) *Oracle {
	return &Oracle{
		client:        client,
		store:         st,
		monthlyUSDCap: monthlyUSDCap,
		price1kInput:  price1kInput,
		price1kOutput: price1kOutput,
	}
}

// Enabled reports whether the underlying client has an API key configured.
func (o *Oracle) Enabled() bool {
	return o.client.Enabled()
}

// estimatedCallCostUSD gives a conservative pre-call estimate so the
// budget gate can refuse before spending any tokens. It assumes maxTokens
// output tokens are actually produced and a 4-chars-per-token estimate
// for the combined prompt length.
func (o *Oracle) estimatedCallCostUSD(promptChars, maxTokens int) float64 {
	estInputTokens := float64(promptChars) / 4
	return estInputTokens/1000*o.price1kInput + float64(maxTokens)/1000*o.price1kOutput
}

// Generate is the oracle collaborator of spec.md §6:
// generate(mode, instructions, input, max_tokens) -> text | limit_exceeded | error.
// mode is carried through only for logging; the underlying Haiku call has
// no notion of modes, it is the caller's system/user prompt split that
// differs per mode.
func (o *Oracle) Generate(mode, instructions, input string, maxTokens int) (string, error) {
	if !o.Enabled() {
		return "", fmt.Errorf("llm: oracle disabled")
	}

	month := time.Now().UTC().Format("2006-01")
	usage, err := o.store.GetLLMUsage(month)
	if err != nil {
		return "", fmt.Errorf("llm: read usage: %w", err)
	}

	estCost := o.estimatedCallCostUSD(len(instructions)+len(input), maxTokens)
	if usage.USD+estCost > o.monthlyUSDCap {
		return "", ErrBudgetExceeded
	}

	text, inputTokens, outputTokens, err := o.client.completeWithUsage(instructions, input, maxTokens)
	if err != nil {
		return "", fmt.Errorf("llm: %s: %w", mode, err)
	}

	actualCost := float64(inputTokens)/1000*o.price1kInput + float64(outputTokens)/1000*o.price1kOutput
	if err := o.store.AddLLMUsage(month, actualCost, int64(inputTokens+outputTokens)); err != nil {
		return text, fmt.Errorf("llm: charge usage: %w", err)
	}

	return text, nil
}
