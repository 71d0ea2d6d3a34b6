package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"digits", `<a href="/p-2">2</a><a href="/p-3">3</a><a href="/p-7">7</a>`, 7},
		{"href only", `<a href="/search?page=4">last</a>`, 4},
		{"path segment", `<a href="/obiavi/avtomobili-dzhipove/bmw/p-5">»</a>`, 5},
		{"next word", `<a href="/x">Напред</a>`, 2},
		{"next arrow", `<a href="/x">›</a>`, 2},
		{"none", `<a href="/about">About</a>`, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := parseDoc(t, "<html><body>"+tc.body+"</body></html>")
			assert.Equal(t, tc.want, TotalPages(doc))
		})
	}
}
