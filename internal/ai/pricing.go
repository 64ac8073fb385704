package ai

// modelPrice holds USD prices per 1K tokens.
type modelPrice struct {
	InputPer1K  float64
	OutputPer1K float64
}

var pricing = map[string]modelPrice{
	"gpt-4o":        {InputPer1K: 0.0025, OutputPer1K: 0.01},
	"gpt-4o-mini":   {InputPer1K: 0.00015, OutputPer1K: 0.0006},
	"gpt-4-turbo":   {InputPer1K: 0.01, OutputPer1K: 0.03},
	"gpt-4":         {InputPer1K: 0.03, OutputPer1K: 0.06},
	"gpt-3.5-turbo": {InputPer1K: 0.0005, OutputPer1K: 0.0015},
}

// EstimateCost returns the estimated dollar cost of a call. Unknown models
// cost zero rather than failing the call.
func EstimateCost(model string, promptTokens, completionTokens int) float64 {
	price, ok := pricing[model]
	if !ok {
		return 0
	}
	return price.InputPer1K*float64(promptTokens)/1000 +
		price.OutputPer1K*float64(completionTokens)/1000
}
