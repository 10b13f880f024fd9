package utils

import (
	"github.com/pkoukk/tiktoken-go"
)

// NumTokens counts tokens for budgeting completion sizes. Falls back to a
// rough chars/4 estimate if the encoding is unavailable offline.
func NumTokens(text string) int {
	tkm, err := tiktoken.EncodingForModel("gpt-4o-mini")
	if err != nil {
		return len(text) / 4
	}
	return len(tkm.Encode(text, nil, nil))
}
