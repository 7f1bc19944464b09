package render

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// HTMLRenderer builds the deterministic HTML page for a Document.
type HTMLRenderer struct {
	tpl *template.Template
}

func NewHTMLRenderer() *HTMLRenderer {
	funcs := template.FuncMap{
		"money":          formatMoney,
		"formatDate":     formatDate,
		"formatDatePtr":  formatDatePtr,
		"formatQuantity": formatQuantity,
		"safeURL":        safeDataURI,
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(doc Document) (string, error) {
	if strings.TrimSpace(doc.Company.Signatory) == "" {
		doc.Company.Signatory = "Authorised Signatory"
	}

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatMoney prints symbol + amount with two decimals and thousands
// separators: Indian grouping (12,34,567.00) for ₹, western otherwise.
func formatMoney(symbol string, amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, frac, _ := strings.Cut(fixed, ".")
	grouped := groupWestern(intPart)
	if symbol == "₹" {
		grouped = groupIndian(intPart)
	}

	out := symbol + grouped + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

func groupWestern(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func groupIndian(s string) string {
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.UTC().Format("02 Jan 2006")
}

func formatDatePtr(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return formatDate(*value)
}

func formatQuantity(value decimal.Decimal) string {
	return value.String()
}

// safeDataURI lets inline image data URIs through html/template's URL filter.
func safeDataURI(value string) template.URL {
	if strings.HasPrefix(value, "data:image/") {
		return template.URL(value)
	}
	return ""
}
