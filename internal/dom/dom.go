// Package dom is a small headless document model for the dashboard page.
// It parses server-rendered pages into detached documents and exposes the
// id-addressed regions the dashboard mirrors.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed page
type Document struct {
	root *html.Node
	ids  map[string]*html.Node
}

// Parse reads a full HTML page into a detached document
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	d := &Document{root: root, ids: make(map[string]*html.Node)}
	d.index(root)
	return d, nil
}

// ParseString parses a page held in memory
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// index records the first element for every id, like getElementById
func (d *Document) index(n *html.Node) {
	if n.Type == html.ElementNode {
		if id := attr(n, "id"); id != "" {
			if _, seen := d.ids[id]; !seen {
				d.ids[id] = n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.index(c)
	}
}

// Has reports whether an element with the id exists
func (d *Document) Has(id string) bool {
	_, ok := d.ids[id]
	return ok
}

// Inner returns the serialized children of the element with the given id
func (d *Document) Inner(id string) (string, bool) {
	n, ok := d.ids[id]
	if !ok {
		return "", false
	}
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", false
		}
	}
	return buf.String(), true
}

// Text returns the whitespace-normalized text content of the element
func (d *Document) Text(id string) (string, bool) {
	n, ok := d.ids[id]
	if !ok {
		return "", false
	}
	return textOf(n), true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// Action is a dashboard handler bound to an element, e.g. playResult('a.mp4')
type Action struct {
	Func string
	Arg  string
}

// Row is one visible entry of a region: a table row, list item or block
type Row struct {
	Cells   []string
	Actions []Action
	Links   []string
}

// Text joins the row's cells
func (r Row) Text() string {
	return strings.Join(r.Cells, " ")
}

// Action returns the first action calling fn
func (r Row) Action(fn string) (Action, bool) {
	for _, a := range r.Actions {
		if a.Func == fn {
			return a, true
		}
	}
	return Action{}, false
}

var handlerPattern = regexp.MustCompile(`(\w+)\(\s*['"]([^'"]*)['"]\s*\)`)

// Rows splits region markup into rows. Table rows yield one cell per column;
// other elements yield a single cell with their text.
func Rows(markup string) ([]Row, error) {
	parent := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	if strings.HasPrefix(strings.TrimSpace(markup), "<tr") {
		parent = &html.Node{Type: html.ElementNode, Data: "tbody", DataAtom: atom.Tbody}
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return nil, fmt.Errorf("parse region: %w", err)
	}

	nodes = unwrap(elements(nodes))

	rows := make([]Row, 0, len(nodes))
	for _, n := range nodes {
		r := Row{}
		if n.DataAtom == atom.Tr {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.DataAtom == atom.Td || c.DataAtom == atom.Th {
					r.Cells = append(r.Cells, textOf(c))
				}
			}
		} else if t := textOf(n); t != "" {
			r.Cells = []string{t}
		}
		collect(n, &r)
		if len(r.Cells) == 0 && len(r.Actions) == 0 && len(r.Links) == 0 {
			continue
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func elements(nodes []*html.Node) []*html.Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, n)
		}
	}
	return out
}

// unwrap descends through single list or table containers
func unwrap(nodes []*html.Node) []*html.Node {
	for len(nodes) == 1 {
		switch nodes[0].DataAtom {
		case atom.Ul, atom.Ol, atom.Table, atom.Tbody, atom.Thead:
		default:
			return nodes
		}
		var children []*html.Node
		for c := nodes[0].FirstChild; c != nil; c = c.NextSibling {
			children = append(children, c)
		}
		nodes = elements(children)
	}
	return nodes
}

func collect(n *html.Node, r *Row) {
	if n.Type == html.ElementNode {
		for _, m := range handlerPattern.FindAllStringSubmatch(attr(n, "onclick"), -1) {
			r.Actions = append(r.Actions, Action{Func: m[1], Arg: m[2]})
		}
		if href := attr(n, "href"); href != "" && !strings.HasPrefix(href, "#") && !strings.HasPrefix(href, "javascript:") {
			r.Links = append(r.Links, href)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, r)
	}
}
