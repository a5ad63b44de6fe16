package normalize

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// blockElements get a space on each side when flattened to text so that
// adjacent cells do not run into each other.
var blockElements = map[atom.Atom]bool{
	atom.Div:     true,
	atom.P:       true,
	atom.Li:      true,
	atom.Tr:      true,
	atom.Td:      true,
	atom.Th:      true,
	atom.Table:   true,
	atom.Section: true,
}

// Clean converts an HTML fragment to display text. <br> becomes a space,
// every other tag is dropped, entities are decoded and runs of whitespace
// collapse to a single space.
func Clean(fragment string) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return collapse(html.UnescapeString(fragment))
	}

	var b strings.Builder
	for _, n := range nodes {
		writeText(&b, n)
	}
	return collapse(b.String())
}

// CleanSelection is Clean for nodes that were already parsed.
func CleanSelection(sel *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
	}
	return collapse(b.String())
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Br:
			b.WriteByte(' ')
			return
		case atom.Script, atom.Style:
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteByte(' ')
	}
}

// Fold prepares text for name matching: accents are decomposed and dropped,
// letters are lowercased, anything that is not a letter or digit becomes a
// space and whitespace is collapsed.
func Fold(text string) string {
	// transform.Chain keeps state between calls, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}

	folded := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, stripped)

	return collapse(folded)
}

// ContainsWords reports whether the folded form of needle appears in the
// folded form of haystack on word boundaries.
func ContainsWords(haystack, needle string) bool {
	n := Fold(needle)
	if n == "" {
		return false
	}
	return strings.Contains(" "+Fold(haystack)+" ", " "+n+" ")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
