package format

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

const DefaultInvoiceNumberTemplate = "INV/{YYYY}/{SEQ3}"

var ErrInvalidTemplate = errors.New("invalid_invoice_number_template")

// FormatInvoiceNumber expands a numbering template such as "INV/{YYYY}/{SEQ3}"
// for the given issue date and sequence value. Supported tokens: {YYYY} {YY}
// {MM} {DD} {SEQ} and {SEQn} (zero padded to n digits).
func FormatInvoiceNumber(template string, issuedAt time.Time, seq int64) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidTemplate)
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}

	out := expandDate(template, issuedAt)
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))
	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		width, err := strconv.Atoi(seqPadRe.FindStringSubmatch(m)[1])
		if err != nil || width <= 0 || width > 12 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("%w: unresolved token in %q", ErrInvalidTemplate, out)
	}
	return out, nil
}

// SequenceScope names the counter a template draws from. Numbers restart
// whenever the date part of the template changes, so "INV/{YYYY}/{SEQ3}"
// scopes by year and "INV-{YYYY}{MM}-{SEQ}" by month.
func SequenceScope(template string, issuedAt time.Time) string {
	scope := expandDate(seqPadRe.ReplaceAllString(template, ""), issuedAt)
	scope = strings.ReplaceAll(scope, "{SEQ}", "")
	return scope
}

// ArtifactFileName turns an invoice number into a bucket-key and filesystem
// safe PDF name: "INV/2024/001" becomes "INV-2024-001.pdf".
func ArtifactFileName(invoiceNo string) string {
	safe := strings.NewReplacer("/", "-", `\`, "-").Replace(strings.TrimSpace(invoiceNo))
	return safe + ".pdf"
}

func expandDate(template string, t time.Time) string {
	return strings.NewReplacer(
		"{YYYY}", t.Format("2006"),
		"{YY}", t.Format("06"),
		"{MM}", t.Format("01"),
		"{DD}", t.Format("02"),
	).Replace(template)
}
