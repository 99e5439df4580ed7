package convert

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RewriteHTML replaces local image references in document with their
// uploaded URLs. It touches <img src> attributes and preload hints
// (<link rel="preload" as="image" href>), leaving everything else as the
// parser serialized it.
//
// A reference that normalizes to something outside images/, or that has no
// entry in urls, is left untouched: an unmapped image keeps its original
// reference rather than failing the whole conversion.
func RewriteHTML(document string, urls map[string]string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return "", ParseError(err)
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		rewriteAttr(s, "src", urls)
	})
	doc.Find(`link[rel="preload"][as="image"]`).Each(func(_ int, s *goquery.Selection) {
		rewriteAttr(s, "href", urls)
	})

	out, err := doc.Html()
	if err != nil {
		return "", ParseError(err)
	}
	return out, nil
}

func rewriteAttr(s *goquery.Selection, attr string, urls map[string]string) {
	ref, ok := s.Attr(attr)
	if !ok {
		return
	}
	key := NormalizePath(ref)
	if !strings.HasPrefix(key, "images/") {
		return
	}
	if url, ok := urls[key]; ok {
		s.SetAttr(attr, url)
	}
}
