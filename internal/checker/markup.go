package checker

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	// csrfTokenSelector matches hidden token inputs and csrf meta tags.
	csrfTokenSelector = "input[name^=csrf], input[name=_csrf], input[name$=token], input[name$=Token], meta[name^=csrf], meta[name=_csrf]"
	// formFieldSelector matches every control nested in a form.
	formFieldSelector = "form input, form select, form textarea"
)

// Document is a parsed HTML page. Parsing is permissive: malformed markup
// still yields a tree, and a selector that matches nothing returns no elements.
type Document struct {
	doc *goquery.Document
}

// Element is one matched node.
type Element struct {
	sel *goquery.Selection
}

// ParseDocument builds a Document from a response body.
func ParseDocument(body []byte) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{What: "html document", Err: err}
	}
	return &Document{doc: goquery.NewDocumentFromNode(root)}, nil
}

// Select returns the elements matching a CSS selector in document order.
func (d *Document) Select(selector string) []Element {
	if d == nil || d.doc == nil {
		return nil
	}
	matches := d.doc.Find(selector)
	elements := make([]Element, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, Element{sel: s})
	})
	return elements
}

// First returns the first element matching selector.
func (d *Document) First(selector string) (Element, bool) {
	if d == nil || d.doc == nil {
		return Element{}, false
	}
	match := d.doc.Find(selector).First()
	if match.Length() == 0 {
		return Element{}, false
	}
	return Element{sel: match}, true
}

// Attr returns the attribute value and whether it was present. A boolean
// attribute such as required is present with an empty value.
func (e Element) Attr(name string) (string, bool) {
	if e.sel == nil {
		return "", false
	}
	return e.sel.Attr(name)
}

// Tag returns the lower-case element name.
func (e Element) Tag() string {
	if e.sel == nil {
		return ""
	}
	return goquery.NodeName(e.sel)
}
