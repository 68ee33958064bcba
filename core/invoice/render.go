package invoice

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core"
	appfs "github.com/trezcool/tuition/fs"
)

const invoiceTemplate = "templates/invoice/invoice.gohtml"

var (
	tmplOnce sync.Once
	tmpl     *template.Template
	tmplErr  error
)

type renderData struct {
	Invoice
	Business core.InvoiceConfig
}

func parseTemplate() (*template.Template, error) {
	tmplOnce.Do(func() {
		funcs := template.FuncMap{
			"money": func(currency string, v float64) string { return fmt.Sprintf("%s%.2f", currency, v) },
			"lines": func(s string) []string { return strings.Split(s, "\n") },
			"date":  func(inv Invoice) string { return inv.Date.Format("2 Jan 2006") },
		}
		tmpl, tmplErr = template.New("invoice.gohtml").Funcs(funcs).ParseFS(appfs.FS, invoiceTemplate)
	})
	return tmpl, tmplErr
}

// RenderHTML renders inv as a standalone HTML document, ready to be printed to PDF.
func RenderHTML(inv Invoice, business core.InvoiceConfig) (string, error) {
	t, err := parseTemplate()
	if err != nil {
		return "", errors.Wrap(err, "parsing invoice template")
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, renderData{Invoice: inv, Business: business}); err != nil {
		return "", errors.Wrap(err, "rendering invoice")
	}
	return buf.String(), nil
}
