package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps body in the shared email shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`+
			templ.EscapeString(title)+
			`</title></head><body style="margin:0;padding:24px;background:#f4f4f5;font-family:Helvetica,Arial,sans-serif;color:#18181b;">`+
			`<table role="presentation" width="100%" cellspacing="0" cellpadding="0"><tr><td align="center">`+
			`<table role="presentation" width="560" cellspacing="0" cellpadding="0" style="background:#ffffff;border-radius:8px;padding:32px;">`+
			`<tr><td>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</td></tr></table></td></tr></table></body></html>`)
		return err
	})
}

// Text renders an escaped paragraph.
func Text(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<p style="font-size:16px;line-height:24px;margin:0 0 16px;">`+templ.EscapeString(s)+`</p>`)
		return err
	})
}

// TextSecondary renders a muted, escaped paragraph.
func TextSecondary(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<p style="font-size:13px;line-height:20px;margin:0 0 16px;color:#71717a;">`+templ.EscapeString(s)+`</p>`)
		return err
	})
}

// PrimaryButton renders a call-to-action link. Unsafe URLs are replaced by templ's sanitizer.
func PrimaryButton(label, href string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<p style="margin:24px 0;"><a href="`+
			templ.EscapeString(string(templ.URL(href)))+
			`" style="display:inline-block;padding:12px 24px;background:#2563eb;color:#ffffff;text-decoration:none;border-radius:6px;font-weight:600;">`+
			templ.EscapeString(label)+`</a></p>`)
		return err
	})
}

// Group renders components in order.
func Group(parts ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, p := range parts {
			if err := p.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}
