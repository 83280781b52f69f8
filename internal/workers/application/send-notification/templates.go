// internal/workers/application/send-notification/templates.go
package sendnotification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"maritime-intake/internal/models"
)

var adminTemplate = template.Must(template.New("admin").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<h3>New Student Application</h3>
<p><b>Tracking #:</b> {{.TrackingCode}}</p>
<p><b>Name:</b> {{.ApplicantName}}</p>
<p><b>Email:</b> {{if .ApplicantEmail}}{{.ApplicantEmail}}{{else}}N/A{{end}}</p>
<p><b>Phone:</b> {{if .ApplicantPhone}}{{.ApplicantPhone}}{{else}}N/A{{end}}</p>
<p><b>Program:</b> {{.Program}}</p>
<p><b>Intake:</b> {{.IntakeDate}}</p>
{{if .DocumentLocators}}<h4>Documents</h4>
<ul>{{range $i, $url := .DocumentLocators}}
<li><a href="{{$url}}">Document {{inc $i}}</a></li>{{end}}
</ul>{{end}}
`))

var applicantTemplate = template.Must(template.New("applicant").Parse(`<p>Dear {{.ApplicantName}},</p>
<p>Your application was received successfully.</p>
<p><b>Tracking #:</b> {{.TrackingCode}}</p>
<p><b>Program:</b> {{.Program}}</p>
<p>Our admissions team will review your documents and contact you within 3-5 business days.</p>
<p>Regards,<br/>AA Maritime Admissions</p>
`))

type message struct {
	subject string
	html    string
	text    string
}

func renderAdmin(p *models.NotificationPayload) (*message, error) {
	html, err := execute(adminTemplate, p)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "New Student Application\nTracking #: %s\nName: %s\nEmail: %s\nProgram: %s\n",
		p.TrackingCode, p.ApplicantName, orNA(p.ApplicantEmail), p.Program)
	for i, url := range p.DocumentLocators {
		fmt.Fprintf(&text, "Document %d: %s\n", i+1, url)
	}

	return &message{
		subject: fmt.Sprintf(adminSubjectFormat, p.TrackingCode),
		html:    html,
		text:    text.String(),
	}, nil
}

func renderApplicant(p *models.NotificationPayload) (*message, error) {
	html, err := execute(applicantTemplate, p)
	if err != nil {
		return nil, err
	}
	return &message{
		subject: fmt.Sprintf(applicantSubjectFormat, p.TrackingCode),
		html:    html,
		text: fmt.Sprintf("Dear %s,\nYour application was received successfully.\nTracking #: %s\nProgram: %s\n",
			p.ApplicantName, p.TrackingCode, p.Program),
	}, nil
}

func execute(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
