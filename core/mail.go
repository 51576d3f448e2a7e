package core

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"net/mail"
	"path/filepath"
	"strings"
	texttmpl "text/template"
)

var templates tmplCache

type (
	tmplCacheEntry map[string]interface{}    // {ext: *Template}
	tmplCache      map[string]tmplCacheEntry // {name: tmplCacheEntry}

	EmailMessage struct {
		To      []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string

		ctx ContextData
	}

	ContextData struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) getTemplate(ext string) (interface{}, bool) {
	cache, ok := templates[m.TemplateName]
	if !ok {
		return nil, ok
	}
	tmplEntry, ok := cache[ext]
	return tmplEntry, ok
}

func (m *EmailMessage) renderText() error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	} else if m.TemplateName == "" {
		return nil
	}

	tmplEntry, ok := m.getTemplate(".txt")
	if !ok {
		return nil
	}
	tmpl, ok := tmplEntry.(*texttmpl.Template)
	if !ok {
		return nil
	}

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, m.ctx); err != nil {
		return err
	}
	m.TextContent = buff.String()
	return nil
}

func (m *EmailMessage) renderHTML() error {
	if m.TemplateName == "" {
		return nil
	}

	tmplEntry, ok := m.getTemplate(".gohtml")
	if !ok {
		return nil
	}
	tmpl, ok := tmplEntry.(*htmltmpl.Template)
	if !ok {
		return nil
	}

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, m.ctx); err != nil {
		return err
	}
	m.HTMLContent = buff.String()
	return nil
}

// Render renders the message's text and HTML contents from its template (if any).
// ParseEmailTemplates must have been called at app start.
func (m *EmailMessage) Render(conf *Config) error {
	m.ctx = ContextData{
		AppName:         conf.AppName,
		FrontendBaseURL: conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}
	if err := m.renderText(); err != nil {
		return err
	}
	return m.renderHTML()
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }

// ParseEmailTemplates loads all email templates under assets/templates/email.
// Template pairs share a base name; `_`-prefixed files are bases/partials.
func ParseEmailTemplates(conf *Config, logger Logger) {
	templates = make(tmplCache)

	rp := filepath.Join(conf.WorkDir, "assets", "templates", "email")
	fps, err := filepath.Glob(filepath.Join(rp, "*"))
	if err != nil {
		logger.Error(fmt.Sprintf("parsing email templates: %v", err), err)
		return
	}

	for _, fp := range fps {
		fname := filepath.Base(fp)
		ext := filepath.Ext(fname)
		if strings.HasPrefix(fname, "_") || !(ext == ".txt" || ext == ".gohtml") {
			continue
		}
		name := fname[:strings.LastIndex(fname, ".")]
		entry, ok := templates[name]
		if !ok {
			templates[name] = make(tmplCacheEntry)
			entry = templates[name]
		}
		if ext == ".txt" {
			tmpl, err := texttmpl.ParseFiles(filepath.Join(rp, "_base.txt"), fp)
			if err != nil {
				logger.Error(fmt.Sprintf("parsing email template %s: %v", fname, err), err)
				continue
			}
			if conf.Debug || conf.TestMode {
				tmpl = tmpl.Option("missingkey=error")
			}
			entry[ext] = tmpl
		} else {
			tmpl, err := htmltmpl.ParseFiles(filepath.Join(rp, "_base.gohtml"), fp)
			if err != nil {
				logger.Error(fmt.Sprintf("parsing email template %s: %v", fname, err), err)
				continue
			}
			if conf.Debug || conf.TestMode {
				tmpl = tmpl.Option("missingkey=error")
			}
			entry[ext] = tmpl
		}
	}
}
