package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanJSON("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanJSON(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, CleanJSON("  {\"a\":1}  "))
}

func TestStripReasoning(t *testing.T) {
	assert.Equal(t, "answer", StripReasoning("<think>some chain of thought</think>answer"))
	assert.Equal(t, "answer", StripReasoning("answer"))
	assert.Equal(t, "b", StripReasoning("<think>a</think><think>nested</think>b"))
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, ExtractJSON(`Here is the JSON you asked for: {"a":1}`))
	assert.Equal(t, `{"a":1}`, ExtractJSON("```json\n{\"a\":1}\n```\nLet me know if you need anything else."))
	assert.Equal(t, `[1,2]`, ExtractJSON(`Sure: [1,2] done`))
	assert.Equal(t, `no json here`, ExtractJSON(`no json here`))
}

func TestCoerceEnum(t *testing.T) {
	allowed := []string{"close-up", "medium", "wide"}
	aliases := map[string]string{"close up": "close-up"}

	assert.Equal(t, "medium", CoerceEnum("medium", allowed, "medium", nil))
	assert.Equal(t, "wide", CoerceEnum("  WIDE ", allowed, "medium", nil))
	assert.Equal(t, "close-up", CoerceEnum("close up", allowed, "medium", aliases))
	assert.Equal(t, "medium", CoerceEnum("fisheye", allowed, "medium", aliases))
	assert.Equal(t, "medium", CoerceEnum("", allowed, "medium", aliases))
}
