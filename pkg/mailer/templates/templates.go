package templates

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

// Template names.
const (
	ResetCode         = "reset_code"
	Welcome           = "welcome"
	LoginNotification = "login_notification"
)

// EmailData carries the fields the built-in templates can reference.
type EmailData struct {
	Name      string
	Email     string
	AppName   string
	Code      string
	ExpiresIn string // human readable, e.g. "15 minutes"
	IP        string
	UserAgent string
	Time      string
}

type definition struct {
	subject string
	text    string
	html    string
}

var defs = map[string]definition{
	ResetCode: {
		subject: "Your password reset code",
		text: `Hi {{.Name | default "there"}},

Use this code to reset your {{.AppName}} password:

    {{.Code}}

The code expires in {{.ExpiresIn}}. If you did not request a reset, you can ignore this email.`,
		html: `<p>Hi {{.Name | default "there"}},</p>
<p>Use this code to reset your {{.AppName}} password:</p>
<p style="font-size:28px;letter-spacing:6px;font-family:monospace"><b>{{.Code}}</b></p>
<p>The code expires in {{.ExpiresIn}}. If you did not request a reset, you can ignore this email.</p>`,
	},
	Welcome: {
		subject: "Welcome to {{.AppName}}",
		text: `Hi {{.Name | default "there"}},

Your {{.AppName}} account is ready. You can sign in with {{.Email}}.`,
		html: `<p>Hi {{.Name | default "there"}},</p>
<p>Your {{.AppName}} account is ready. You can sign in with <b>{{.Email}}</b>.</p>`,
	},
	LoginNotification: {
		subject: "New login to your account",
		text: `Hi {{.Name | default "there"}},

A new login to your {{.AppName}} account was detected{{if .Time}} at {{.Time}}{{end}}.
{{if .IP}}IP: {{.IP}}
{{end}}{{if .UserAgent}}Device: {{.UserAgent}}
{{end}}
If this was not you, reset your password immediately.`,
		html: `<p>Hi {{.Name | default "there"}},</p>
<p>A new login to your {{.AppName}} account was detected{{if .Time}} at {{.Time}}{{end}}.</p>
{{if .IP}}<p>IP: {{.IP}}</p>{{end}}
{{if .UserAgent}}<p>Device: {{.UserAgent}}</p>{{end}}
<p>If this was not you, reset your password immediately.</p>`,
	},
}

func funcs() map[string]any {
	return map[string]any{
		// pipe fallback: {{ .Name | default "there" }}
		"default": func(fallback, value string) string {
			if value == "" {
				return fallback
			}
			return value
		},
	}
}

// Render produces subject, text and html bodies for the named template.
func Render(name string, data EmailData) (subject, text, html string, err error) {
	def, ok := defs[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	subject, err = renderText(name+".subject", def.subject, data)
	if err != nil {
		return "", "", "", err
	}
	text, err = renderText(name+".text", def.text, data)
	if err != nil {
		return "", "", "", err
	}
	html, err = renderHTML(name+".html", def.html, data)
	if err != nil {
		return "", "", "", err
	}
	return subject, text, html, nil
}

func renderText(name, tpl string, data EmailData) (string, error) {
	t, err := texttpl.New(name).Funcs(funcs()).Parse(tpl)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

func renderHTML(name, tpl string, data EmailData) (string, error) {
	t, err := htmpl.New(name).Funcs(funcs()).Parse(tpl)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

// ToMap converts EmailData to the loose map carried in an EmailJob.
func ToMap(d EmailData) map[string]any {
	return map[string]any{
		"Name":      d.Name,
		"Email":     d.Email,
		"AppName":   d.AppName,
		"Code":      d.Code,
		"ExpiresIn": d.ExpiresIn,
		"IP":        d.IP,
		"UserAgent": d.UserAgent,
		"Time":      d.Time,
	}
}

// FromMap rebuilds EmailData from an EmailJob payload.
func FromMap(m map[string]any) EmailData {
	get := func(k string) string {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
			return fmt.Sprintf("%v", v)
		}
		return ""
	}
	return EmailData{
		Name:      get("Name"),
		Email:     get("Email"),
		AppName:   get("AppName"),
		Code:      get("Code"),
		ExpiresIn: get("ExpiresIn"),
		IP:        get("IP"),
		UserAgent: get("UserAgent"),
		Time:      get("Time"),
	}
}
