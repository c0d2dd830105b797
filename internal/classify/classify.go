// Package classify maps fetched page markup to an existence signal.
//
// The remote platform has no list API: the only way to learn whether an item
// ID exists is to fetch its page and inspect the markup. That markup is an
// external, versioned contract, so the rules live here as plain data and can
// be swapped without touching any probing logic.
package classify

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Classification is the outcome of inspecting one fetched page.
type Classification string

// Classification values. Exists and Missing are authoritative; Inconclusive
// means the page could not be interpreted and the probe should be retried.
const (
	Exists       Classification = "exists"
	Missing      Classification = "missing"
	Inconclusive Classification = "inconclusive"
)

// Rule binds page markers to a terminal classification. A rule matches when
// any of its substrings appears in the body (case-insensitive) or any of its
// CSS selectors finds a node.
type Rule struct {
	Name       string
	Result     Classification
	Substrings []string
	Selectors  []string
}

// Classifier applies an ordered rule list; the first matching rule wins.
// Order matters: error markers must be checked before positive markers so an
// error page that happens to embed share-link boilerplate is not mistaken
// for a live item.
type Classifier struct {
	rules []Rule
}

// New builds a Classifier from the given rules, evaluated in order.
func New(rules ...Rule) *Classifier {
	return &Classifier{rules: append([]Rule(nil), rules...)}
}

// Default returns a Classifier with the stock marker rules.
func Default() *Classifier {
	return New(DefaultRules()...)
}

// DefaultRules returns the stock ordered rule list.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:   "error-page",
			Result: Missing,
			Substrings: []string{
				"<title>error</title>",
				"an error occurred",
			},
		},
		{
			Name:   "not-found",
			Result: Missing,
			Substrings: []string{
				"page not found",
				"invalid item",
				"does not exist",
			},
		},
		{
			Name:   "canonical",
			Result: Exists,
			Selectors: []string{
				`link[rel="canonical"]`,
				`meta[property="og:url"]`,
			},
		},
	}
}

// Classify inspects body and returns the first matching rule's result, or
// Inconclusive when nothing matches. An empty body (the shape every fetch
// failure is reduced to) is always Inconclusive.
func (c *Classifier) Classify(body []byte) Classification {
	if len(bytes.TrimSpace(body)) == 0 {
		return Inconclusive
	}
	p := newPage(body)
	for _, rule := range c.rules {
		if rule.matches(p) {
			return rule.Result
		}
	}
	return Inconclusive
}

// Rules exposes a copy of the configured rule list, mostly for diagnostics.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

func (r Rule) matches(p *page) bool {
	for _, sub := range r.Substrings {
		sub = strings.TrimSpace(sub)
		if sub == "" {
			continue
		}
		if bytes.Contains(p.lowered, bytes.ToLower([]byte(sub))) {
			return true
		}
	}
	for _, sel := range r.Selectors {
		if sel == "" {
			continue
		}
		doc := p.document()
		if doc == nil {
			continue
		}
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}

// page caches derived views of the body so a multi-rule pass lowers and
// parses it at most once.
type page struct {
	body    []byte
	lowered []byte
	doc     *goquery.Document
	parsed  bool
}

func newPage(body []byte) *page {
	return &page{
		body:    body,
		lowered: bytes.ToLower(body),
	}
}

func (p *page) document() *goquery.Document {
	if !p.parsed {
		p.parsed = true
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.body))
		if err == nil {
			p.doc = doc
		}
	}
	return p.doc
}
