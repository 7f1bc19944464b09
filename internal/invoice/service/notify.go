package service

import (
	"bytes"
	"context"
	"html/template"

	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/internal/invoice/format"
	"github.com/smallbiznis/billdesk/internal/invoice/render"
	"github.com/smallbiznis/billdesk/internal/providers/email"
	"github.com/smallbiznis/billdesk/pkg/log/ctxlogger"
	"go.uber.org/zap"
)

// Notifier delivers invoice e-mails. *email.Dispatcher satisfies it.
type Notifier interface {
	Send(ctx context.Context, msg email.Message) (email.Receipt, error)
}

var notificationTemplate = template.Must(template.New("invoice_email").Parse(`<p>Dear {{.Client}},</p>
<p>Please find attached {{.Kind}} <strong>{{.InvoiceNo}}</strong> for {{.Amount}}.</p>
{{- if .DueDate}}
<p>Payment is due by {{.DueDate}}.</p>
{{- end}}
<p>You can also download it <a href="{{.URL}}">here</a>.</p>
<p>Regards,<br>{{.Company}}</p>
`))

type notificationData struct {
	Client    string
	Kind      string
	InvoiceNo string
	Amount    string
	DueDate   string
	URL       string
	Company   string
}

// notify sends the invoice e-mail with the stored artifact attached. Failures
// are logged and returned as warnings; they never fail the caller.
func (s *Service) notify(ctx context.Context, inv *invoicedomain.Invoice, url string) []string {
	log := ctxlogger.WithContext(ctx, s.log).With(zap.String("invoice_no", inv.InvoiceNo))

	subject, body, err := s.composeNotification(inv, url)
	if err != nil {
		log.Warn("invoice email not composed", zap.Error(err))
		return []string{"notification: " + err.Error()}
	}

	receipt, err := s.notifier.Send(ctx, email.Message{
		To:       inv.ClientEmail,
		Subject:  subject,
		HTMLBody: body,
		Attachment: email.URLAttachment{
			URL:      url,
			FileName: format.ArtifactFileName(inv.InvoiceNo),
		},
	})
	if err != nil {
		log.Warn("invoice email not sent", zap.Error(err))
		return []string{"notification: " + err.Error()}
	}

	log.Info("invoice email sent",
		zap.String("provider", receipt.Provider),
		zap.String("message_id", receipt.MessageID),
	)
	return nil
}

func (s *Service) composeNotification(inv *invoicedomain.Invoice, url string) (string, string, error) {
	kind := "Invoice"
	if inv.DocumentType == invoicedomain.DocumentTypeProforma {
		kind = "Proforma Invoice"
	}

	subject := kind + " " + inv.InvoiceNo
	if s.company.Name != "" {
		subject += " | " + s.company.Name
	}

	data := notificationData{
		Client:    inv.ClientName,
		Kind:      kind,
		InvoiceNo: inv.InvoiceNo,
		Amount:    render.CurrencySymbol(inv.Currency) + inv.Total.StringFixed(2),
		URL:       url,
		Company:   s.company.Name,
	}
	if inv.DocumentType == invoicedomain.DocumentTypeProforma && inv.DueDate != nil {
		data.DueDate = inv.DueDate.Format("02 Jan 2006")
	}

	var body bytes.Buffer
	if err := notificationTemplate.Execute(&body, data); err != nil {
		return "", "", err
	}
	return subject, body.String(), nil
}
