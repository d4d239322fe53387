package page

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"movieorg/internal/movietable"
	"movieorg/internal/services"
)

// ErrNoTable reports a page without a movie table.
var ErrNoTable = fmt.Errorf("%w: movies table not found", services.ErrBackend)

// BannerError is the error banner the backend rendered on the page.
type BannerError struct {
	Message string
}

func (e *BannerError) Error() string {
	return "backend reported: " + e.Message
}

func (e *BannerError) Unwrap() error {
	return services.ErrBackend
}

// Move is a move button already present in a row's actions cell.
type Move struct {
	Path       string
	BaseFolder string
	Genre      string
}

// Page is the parsed content of one movies page.
type Page struct {
	BaseFolder string
	// Genres is nil when the page did not advertise any.
	Genres []string
	Rows   []movietable.Row
	// Moves lists existing move buttons in row order.
	Moves []Move
}

// Parse reads a movies page. A page carrying an error banner returns a
// *BannerError together with whatever rows it still rendered.
func Parse(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse movies page: %w", err)
	}

	var banner error
	if alert := findFirst(doc, func(n *html.Node) bool {
		return hasClass(n, "alert") && hasClass(n, "alert-danger")
	}); alert != nil {
		banner = &BannerError{Message: text(alert)}
	}

	table := findFirst(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Table && hasAttr(n, "data-base-folder")
	})
	if table == nil {
		table = findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.Table })
	}
	if table == nil {
		if banner != nil {
			return &Page{}, banner
		}
		return nil, ErrNoTable
	}

	p := &Page{BaseFolder: attr(table, "data-base-folder")}
	if raw := attr(table, "data-genres"); raw != "" {
		var genres []string
		if err := json.Unmarshal([]byte(raw), &genres); err != nil {
			return nil, services.Wrap(services.ErrBackend, "page", "parse", "invalid data-genres", err)
		}
		p.Genres = genres
	}

	body := findFirst(table, func(n *html.Node) bool { return n.DataAtom == atom.Tbody })
	if body == nil {
		return p, banner
	}
	for tr := body.FirstChild; tr != nil; tr = tr.NextSibling {
		if tr.Type != html.ElementNode || tr.DataAtom != atom.Tr {
			continue
		}
		row, move, ok := parseRow(tr, p.BaseFolder)
		if !ok {
			continue
		}
		p.Rows = append(p.Rows, row)
		if move != nil {
			p.Moves = append(p.Moves, *move)
		}
	}
	if p.BaseFolder == "" {
		p.BaseFolder = rowFolder(p)
	}
	return p, banner
}

// rowFolder returns the folder carried by the first row or move button, for
// pages whose table has no data-base-folder.
func rowFolder(p *Page) string {
	for _, row := range p.Rows {
		if row.BaseFolder != "" {
			return row.BaseFolder
		}
	}
	for _, move := range p.Moves {
		if move.BaseFolder != "" {
			return move.BaseFolder
		}
	}
	return ""
}

func parseRow(tr *html.Node, folder string) (movietable.Row, *Move, bool) {
	var cells []*html.Node
	for td := tr.FirstChild; td != nil; td = td.NextSibling {
		if td.Type == html.ElementNode && td.DataAtom == atom.Td {
			cells = append(cells, td)
		}
	}
	if len(cells) == 0 {
		return movietable.Row{}, nil, false
	}

	row := movietable.Row{
		Title:      text(cells[0]),
		BaseFolder: folder,
	}
	if len(cells) > 1 {
		row.CurrentGenre = text(cells[1])
	}
	if cell := findFirst(tr, func(n *html.Node) bool { return hasClass(n, "current-genre") }); cell != nil {
		row.CurrentGenre = text(cell)
	}

	if button := findFirst(tr, func(n *html.Node) bool { return hasClass(n, "suggestion-button") }); button != nil {
		row.Path = attr(button, "data-path")
		if bf := attr(button, "data-base-folder"); bf != "" {
			row.BaseFolder = bf
		}
	}
	if cell := findFirst(tr, func(n *html.Node) bool { return hasClass(n, "suggestion-cell") }); cell != nil {
		if span := findFirst(cell, func(n *html.Node) bool {
			return n.DataAtom == atom.Span && !hasClass(n, "visually-hidden")
		}); span != nil {
			row.SuggestedGenre = text(span)
		}
	}

	var move *Move
	if button := findFirst(tr, func(n *html.Node) bool { return hasClass(n, "move-button") }); button != nil {
		m := Move{
			Path:       attr(button, "data-path"),
			BaseFolder: attr(button, "data-base-folder"),
			Genre:      attr(button, "data-genre"),
		}
		if m.BaseFolder == "" {
			m.BaseFolder = row.BaseFolder
		}
		if row.Path == "" {
			row.Path = m.Path
		}
		if m.Path != "" && m.Genre != "" {
			move = &m
			row.Action = "Move to " + m.Genre
		}
	}
	if row.Path == "" {
		row.Path = row.Title
	}
	return row, move, true
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	for n := range root.Descendants() {
		if n.Type == html.ElementNode && match(n) {
			return n
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}

// text returns the trimmed text content of n. Inner whitespace is kept as
// rendered so cells compare the way the page shows them.
func text(n *html.Node) string {
	var sb strings.Builder
	for d := range n.Descendants() {
		if d.Type == html.TextNode {
			sb.WriteString(d.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}

// IsBanner reports whether err is an error banner rendered by the backend.
func IsBanner(err error) bool {
	var banner *BannerError
	return errors.As(err, &banner)
}
