package reminder

import (
	"fmt"
	"html"
	"regexp"
	"sync"
)

var placeholder = regexp.MustCompile(`\{\{([a-z_]+)\}\}`)

const AppointmentReminder = "appointment-reminder"

// Template is a reusable email. Placeholders are written {{key}}.
type Template struct {
	ID      string
	Subject string
	Body    string
}

type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewTemplateEngine returns an engine with the appointment reminder registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]Template)}
	e.Register(Template{
		ID:      AppointmentReminder,
		Subject: "Reminder: {{type}} appointment on {{date}}",
		Body: `<p>Dear {{patient_name}},</p>
<p>This is a reminder of your upcoming appointment.</p>
<ul>
	<li><strong>Date:</strong> {{date}}</li>
	<li><strong>Time:</strong> {{time}}</li>
	<li><strong>Treatment:</strong> {{type}}</li>
	<li><strong>Dentist:</strong> {{doctor}}</li>
	<li><strong>Reference:</strong> {{reference}}</li>
</ul>
<p>If you need to reschedule, please contact the clinic as soon as possible.</p>`,
	})
	return e
}

// Register adds or replaces a template.
func (e *TemplateEngine) Register(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = t
}

// Render fills a template in a single pass, so values are never expanded
// again. Body values are HTML-escaped; the subject is a plain header.
// Placeholders missing from data are left as written.
func (e *TemplateEngine) Render(id string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[id]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", id)
	}

	subject = fill(t.Subject, data, func(v string) string { return v })
	body = fill(t.Body, data, html.EscapeString)
	return subject, body, nil
}

func fill(text string, data map[string]string, escape func(string) string) string {
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		v, ok := data[m[2:len(m)-2]]
		if !ok {
			return m
		}
		return escape(v)
	})
}
