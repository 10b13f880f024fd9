package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordsEqualStrings(t *testing.T) {
	d := Words("same text", "same text")
	require.Len(t, d.Deltas, 1)
	assert.Equal(t, Equal, d.Deltas[0].Op)
	assert.Equal(t, "same text", d.Deltas[0].Text)
}

func TestWordsDetectsEdits(t *testing.T) {
	d := Words("the quick brown fox", "the slow brown fox")

	var deleted, inserted []string
	for _, delta := range d.Deltas {
		switch delta.Op {
		case Delete:
			deleted = append(deleted, strings.TrimSpace(delta.Text))
		case Insert:
			inserted = append(inserted, strings.TrimSpace(delta.Text))
		}
	}
	assert.Equal(t, []string{"quick"}, deleted)
	assert.Equal(t, []string{"slow"}, inserted)

	ins, del := d.Stats()
	assert.Equal(t, 1, ins)
	assert.Equal(t, 1, del)
}

func TestWordsReconstructsNewString(t *testing.T) {
	old := "She opened the door slowly."
	new := "She opened the heavy door and waited."
	d := Words(old, new)

	var b strings.Builder
	for _, delta := range d.Deltas {
		if delta.Op != Delete {
			b.WriteString(delta.Text)
		}
	}
	assert.Equal(t, new, b.String())
}

func TestWordsPureInsertion(t *testing.T) {
	d := Words("", "fresh text")
	require.NotEmpty(t, d.Deltas)
	for _, delta := range d.Deltas {
		assert.Equal(t, Insert, delta.Op)
	}

	ins, del := d.Stats()
	assert.Equal(t, 2, ins)
	assert.Equal(t, 0, del)
}
