// Package templates holds the HTMX partials returned by the web layer.
//
// Components are plain templ.ComponentFunc values so they render without a
// generation step. All dynamic text goes through templ.EscapeString.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/gridcheck/internal/core"

	"github.com/a-h/templ"
)

// ErrorAlert renders a dismissible error box with the support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert" data-code="%s"><p class="alert-message">%s</p>`,
			templ.EscapeString(code), templ.EscapeString(message))
		if err != nil {
			return err
		}
		if action != "" {
			if _, err := fmt.Fprintf(w, `<p class="alert-action">%s</p>`, templ.EscapeString(action)); err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(w, `<p class="alert-code">Code: %s</p></div>`, templ.EscapeString(code))
		return err
	})
}

// ValidationReport renders the messages of a run ordered by key.
// A run without messages renders a success banner.
func ValidationReport(gridKey string, res core.RunResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		status := "valid"
		if res.IsError {
			status = "invalid"
		}
		_, err := fmt.Fprintf(w,
			`<section class="validation-report" data-grid="%s" data-run="%s" data-status="%s">`,
			templ.EscapeString(gridKey), res.RunID.String(), status)
		if err != nil {
			return err
		}

		if len(res.Messages) == 0 {
			if _, err := io.WriteString(w, `<p class="report-ok">No problems found</p></section>`); err != nil {
				return err
			}
			return nil
		}

		if _, err := fmt.Fprintf(w, `<p class="report-summary">%d problem(s)</p><ul>`, len(res.Messages)); err != nil {
			return err
		}
		for _, msg := range res.Messages.Sorted() {
			_, err := fmt.Fprintf(w, `<li class="msg msg-%s msg-%s" data-key="%s">%s</li>`,
				msg.Severity, core.KindOf(msg.Key),
				templ.EscapeString(msg.Key), templ.EscapeString(msg.Text))
			if err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, `</ul></section>`)
		return err
	})
}

// GridList renders the registered grids as links to their schema.
func GridList(grids []*core.GridDefinition) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<ul class="grid-list">`); err != nil {
			return err
		}
		for _, g := range grids {
			label := g.Label
			if label == "" {
				label = g.Key
			}
			_, err := fmt.Fprintf(w, `<li><a href="/api/grids/%s">%s</a> <span class="cols">%d columns</span></li>`,
				templ.EscapeString(g.Key), templ.EscapeString(label), len(g.Columns))
			if err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul>`)
		return err
	})
}
