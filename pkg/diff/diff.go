package diff

import (
	"fmt"
	"io"
	"strings"

	"fable/pkg/utils"

	"github.com/aryann/difflib"
)

type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

type WordDelta struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// StringDiff is a word-level diff between two pieces of prose.
type StringDiff struct {
	Old    string      `json:"old"`
	New    string      `json:"new"`
	Deltas []WordDelta `json:"deltas"`
}

// Words diffs two strings at word granularity. Runs of whitespace are
// folded into their neighboring deltas so the result renders cleanly.
func Words(a, b string) StringDiff {
	if a == b {
		return StringDiff{Old: a, New: b, Deltas: []WordDelta{{Op: Equal, Text: a}}}
	}
	at := utils.TokenizeWords(a)
	bt := utils.TokenizeWords(b)
	recs := difflib.Diff(at, bt)
	deltas := make([]WordDelta, 0, len(recs))
	for _, r := range recs {
		switch r.Delta {
		case difflib.Common:
			deltas = append(deltas, WordDelta{Op: Equal, Text: r.Payload})
		case difflib.LeftOnly:
			deltas = append(deltas, WordDelta{Op: Delete, Text: r.Payload})
		case difflib.RightOnly:
			deltas = append(deltas, WordDelta{Op: Insert, Text: r.Payload})
		}
	}
	return StringDiff{Old: a, New: b, Deltas: coalesceSpaces(deltas)}
}

// Stats counts inserted and deleted words in the diff.
func (sd StringDiff) Stats() (inserted, deleted int) {
	for _, d := range sd.Deltas {
		words := len(strings.Fields(d.Text))
		switch d.Op {
		case Insert:
			inserted += words
		case Delete:
			deleted += words
		}
	}
	return
}

func coalesceSpaces(in []WordDelta) []WordDelta {
	out := make([]WordDelta, 0, len(in))
	flush := func(op Op, buf *strings.Builder) {
		if buf.Len() == 0 {
			return
		}
		out = append(out, WordDelta{Op: op, Text: buf.String()})
		buf.Reset()
	}
	var curOp Op = -1
	var buf strings.Builder
	for _, d := range in {
		if strings.TrimSpace(d.Text) == "" && d.Op == Equal {
			buf.WriteString(d.Text)
			continue
		}
		if curOp != d.Op && curOp != -1 {
			flush(curOp, &buf)
		}
		if curOp != d.Op {
			curOp = d.Op
		}
		buf.WriteString(d.Text)
	}
	flush(curOp, &buf)
	return out
}

const (
	ansiReset = "\x1b[0m"
	fgGreen   = "\x1b[32m"
	fgRed     = "\x1b[31m"
	uline     = "\x1b[4m"
	strike    = "\x1b[9m"
)

// Print renders the diff with ANSI markup for terminal output.
func (sd StringDiff) Print(w io.Writer) {
	for _, d := range sd.Deltas {
		switch d.Op {
		case Equal:
			fmt.Fprint(w, d.Text)
		case Insert:
			fmt.Fprintf(w, "%s%s%s%s", fgGreen, uline, d.Text, ansiReset)
		case Delete:
			fmt.Fprintf(w, "%s%s%s%s", fgRed, strike, d.Text, ansiReset)
		}
	}
	fmt.Fprintln(w)
}
