package notify

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

type messageData struct {
	RecipientName   string
	CounterpartName string
	CounterpartRole string
	Label           string
	When            string
	Subject         string
	Notes           string
	Link            string
	Reason          string
}

const reminderHTML = `<p>Hi {{.RecipientName}},</p>
<p>Your session with {{.CounterpartName}} ({{.CounterpartRole}}) starts {{.Label}}, at {{.When}}.</p>
{{if .Subject}}<p>Subject: {{.Subject}}</p>{{end}}
{{if .Notes}}<p>Notes: {{.Notes}}</p>{{end}}
<p><a href="{{.Link}}">Join the call</a></p>`

const reminderText = `Hi {{.RecipientName}},

Your session with {{.CounterpartName}} ({{.CounterpartRole}}) starts {{.Label}}, at {{.When}}.
{{if .Subject}}Subject: {{.Subject}}
{{end}}{{if .Notes}}Notes: {{.Notes}}
{{end}}
Join the call: {{.Link}}
`

const claimedHTML = `<p>Hi {{.RecipientName}},</p>
<p>{{.CounterpartName}} booked your session at {{.When}}.</p>
{{if .Notes}}<p>Notes from the student: {{.Notes}}</p>{{end}}
<p><a href="{{.Link}}">View booking</a></p>`

const claimedText = `Hi {{.RecipientName}},

{{.CounterpartName}} booked your session at {{.When}}.
{{if .Notes}}Notes from the student: {{.Notes}}
{{end}}
View booking: {{.Link}}
`

const cancelledHTML = `<p>Hi {{.RecipientName}},</p>
<p>Your session with {{.CounterpartName}} at {{.When}} was cancelled.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}`

const cancelledText = `Hi {{.RecipientName}},

Your session with {{.CounterpartName}} at {{.When}} was cancelled.
{{if .Reason}}Reason: {{.Reason}}
{{end}}`

type mailTemplate struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func mustTemplate(name, html, text string) mailTemplate {
	return mailTemplate{
		html: htmltemplate.Must(htmltemplate.New(name).Parse(html)),
		text: texttemplate.Must(texttemplate.New(name).Parse(text)),
	}
}

var (
	reminderTemplate  = mustTemplate("reminder", reminderHTML, reminderText)
	claimedTemplate   = mustTemplate("claimed", claimedHTML, claimedText)
	cancelledTemplate = mustTemplate("cancelled", cancelledHTML, cancelledText)
)
