package utils

import (
	"strings"
	"unicode/utf8"

	"fable/pkg/pool"
)

type levRows struct {
	prev []int
	curr []int
}

func (l *levRows) Reset() {
	for i := range l.prev {
		l.prev[i] = 0
	}
	for i := range l.curr {
		l.curr[i] = 0
	}
}

var rowsPool = pool.New(func() *levRows {
	return &levRows{
		prev: make([]int, 0, 256),
		curr: make([]int, 0, 256),
	}
})

// Levenshtein returns the edit distance between two strings.
func Levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	al, bl := len(ar), len(br)
	if al == 0 {
		return bl
	}
	if bl == 0 {
		return al
	}

	if bl > al {
		ar, br = br, ar
		al, bl = bl, al
	}

	rows := rowsPool.Get()
	if cap(rows.prev) < bl+1 {
		rows.prev = make([]int, bl+1)
	} else {
		rows.prev = rows.prev[:bl+1]
	}
	if cap(rows.curr) < bl+1 {
		rows.curr = make([]int, bl+1)
	} else {
		rows.curr = rows.curr[:bl+1]
	}

	for j := 0; j <= bl; j++ {
		rows.prev[j] = j
	}

	for i := 1; i <= al; i++ {
		rows.curr[0] = i
		for j := 1; j <= bl; j++ {
			cost := 0
			if ar[i-1] != br[j-1] {
				cost = 1
			}
			del := rows.prev[j] + 1
			ins := rows.curr[j-1] + 1
			sub := rows.prev[j-1] + cost

			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			rows.curr[j] = min
		}
		rows.prev, rows.curr = rows.curr, rows.prev
	}

	res := rows.prev[bl]
	rowsPool.Put(rows)
	return res
}

// Similarity returns a float between 0 and 1 (1 = identical).
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" && b == "" {
		return 1.0
	}
	dist := Levenshtein(a, b)
	maxLen := float64(max(utf8.RuneCountInString(a), utf8.RuneCountInString(b)))
	if maxLen == 0 {
		return 0
	}
	return 1.0 - float64(dist)/maxLen
}
