package leaderboard

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// TopListPage renders the ranked list as a standalone HTML page.
func TopListPage(entries []Entry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!doctype html><html lang="sv"><head><meta charset="utf-8"><title>Topplista</title><link rel="stylesheet" href="/static/css/leaderboard.css"></head><body><main><h1>Topplista</h1>`); err != nil {
			return err
		}
		if len(entries) == 0 {
			if _, err := io.WriteString(w, `<p class="empty">Inga resultat än.</p>`); err != nil {
				return err
			}
		} else {
			if err := entryTable(entries).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

func entryTable(entries []Entry) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<table><thead><tr><th>#</th><th>Namn</th><th>Poäng</th><th>Hjälpta</th></tr></thead><tbody>`); err != nil {
			return err
		}
		for i, e := range entries {
			if _, err := fmt.Fprintf(w, `<tr><td>%d</td><td>%s</td><td>%d</td><td>%d</td></tr>`,
				i+1, templ.EscapeString(e.Name), e.Score, e.HelpedCount); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table>`)
		return err
	})
}
