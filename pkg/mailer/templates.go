package mailer

import (
	"bytes"
	"fmt"
	htmpl "html/template"
)

// Template names.
const (
	Welcome        = "welcome"
	AccountDeleted = "account_deleted"
)

var subjects = map[string]string{
	Welcome:        "Welcome to {{.AppName}}",
	AccountDeleted: "Your {{.AppName}} account has been deleted",
}

var bodies = map[string]string{
	Welcome: `<html><body>
<h2>Welcome{{if .Name}}, {{.Name}}{{end}}!</h2>
<p>Your {{.AppName}} profile is ready. Sign in any time at <a href="{{.ServiceURL}}">{{.ServiceURL}}</a> to fill in your details and upload photos.</p>
</body></html>`,
	AccountDeleted: `<html><body>
<h2>Account deleted</h2>
<p>Your {{.AppName}} account and all associated profile data and images have been removed. If this wasn't you, contact support immediately.</p>
</body></html>`,
}

// Render renders the subject and HTML body for a named template.
func Render(name string, data map[string]any) (subject string, html string, err error) {
	st, ok := subjects[name]
	bt, ok2 := bodies[name]
	if !ok || !ok2 {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	subject, err = render(name+".subject", st, data)
	if err != nil {
		return "", "", err
	}
	html, err = render(name+".html", bt, data)
	if err != nil {
		return "", "", err
	}
	return subject, html, nil
}

func render(name, text string, data map[string]any) (string, error) {
	tpl, err := htmpl.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}
