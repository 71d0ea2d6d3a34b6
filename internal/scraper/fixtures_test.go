package scraper

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func nullLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func parseDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

type item struct {
	id    int
	title string
	price string
	km    string
}

func (i item) html() string {
	return fmt.Sprintf(`<div class="item">
  <div class="photo"><img class="pic" src="//cdn.mobile.bg/%[1]d-1.jpg"><img class="pic" data-src="https://cdn.mobile.bg/%[1]d-2.jpg"></div>
  <a class="title" href="//www.mobile.bg/obiava-%[1]d-listing">%[2]s</a>
  <div class="price"><div>%[3]s</div></div>
  <div class="params"><span>януари 2019</span><span>%[4]s</span><span>Черен</span><span>Дизелов</span><span>245 к.с.</span><span>Автоматична</span></div>
  <div class="info">Full service history</div>
  <div class="seller"><div class="location">обл. София, гр. София</div><div class="name"><a>Auto Dealer</a></div></div>
</div>`, i.id, i.title, i.price, i.km)
}

func searchPage(totalPages int, items ...item) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="content">`)
	for _, it := range items {
		b.WriteString(it.html())
	}
	b.WriteString(`</div><div class="pagination">`)
	for p := 1; p <= totalPages; p++ {
		fmt.Fprintf(&b, `<a href="/obiavi/avtomobili-dzhipove/p-%d">%d</a>`, p, p)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}
