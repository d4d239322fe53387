package page

import (
	"bytes"
	"context"
)

// Fetcher returns the rendered movies page for a folder.
type Fetcher interface {
	MoviesPage(ctx context.Context, folder string) ([]byte, error)
}

// Load fetches and parses the movies page for folder. When the page omits
// data-base-folder the requested folder is used.
func Load(ctx context.Context, fetcher Fetcher, folder string) (*Page, error) {
	data, err := fetcher.MoviesPage(ctx, folder)
	if err != nil {
		return nil, err
	}
	p, err := Parse(bytes.NewReader(data))
	if p != nil && p.BaseFolder == "" && folder != "" {
		p.BaseFolder = folder
		for i := range p.Rows {
			if p.Rows[i].BaseFolder == "" {
				p.Rows[i].BaseFolder = folder
			}
		}
		for i := range p.Moves {
			if p.Moves[i].BaseFolder == "" {
				p.Moves[i].BaseFolder = folder
			}
		}
	}
	return p, err
}
