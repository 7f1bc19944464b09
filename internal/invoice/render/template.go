package render

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}} {{.InvoiceNo}}</title>
  <style>
    @page { size: A4; margin: 0; }
    * { box-sizing: border-box; }
    body {
      margin: 0;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      color: #1a1f36;
      font-size: 12px;
      -webkit-print-color-adjust: exact;
    }
    .page { position: relative; padding: 36px 44px; min-height: 1120px; }
    .watermark {
      position: absolute; top: 45%; left: 0; right: 0;
      text-align: center; font-size: 96px; font-weight: 800;
      color: rgba(17, 24, 39, 0.04); transform: rotate(-24deg); z-index: 0;
    }
    .content { position: relative; z-index: 1; }
    .letterhead { display: flex; justify-content: space-between; border-bottom: 3px solid #111827; padding-bottom: 14px; }
    .letterhead img { max-height: 56px; }
    .company-name { font-size: 20px; font-weight: 700; }
    .muted { color: #697386; }
    .title { text-align: center; font-size: 18px; font-weight: 700; letter-spacing: 1px; margin: 22px 0; }
    .meta { display: flex; justify-content: space-between; margin-bottom: 22px; }
    .label { font-size: 10px; text-transform: uppercase; color: #8792a2; font-weight: 600; margin-bottom: 4px; }
    table { width: 100%; border-collapse: collapse; }
    th { background: #111827; color: #fff; font-size: 10px; text-transform: uppercase; padding: 8px; text-align: left; }
    td { padding: 8px; border-bottom: 1px solid #e3e8ee; vertical-align: top; }
    .r { text-align: right; }
    .totals { margin-left: auto; width: 300px; margin-top: 14px; }
    .totals div { display: flex; justify-content: space-between; padding: 4px 0; }
    .grand { border-top: 2px solid #111827; font-weight: 700; font-size: 14px; margin-top: 6px; padding-top: 8px !important; }
    .words { margin-top: 18px; font-style: italic; }
    .bank { margin-top: 22px; display: flex; justify-content: space-between; }
    .sign { text-align: right; margin-top: 48px; font-weight: 600; }
    .footer { margin-top: 36px; border-top: 1px solid #e3e8ee; padding-top: 10px; font-size: 10px; color: #8792a2; text-align: center; }
  </style>
</head>
<body>
<div class="page">
  <div class="watermark">{{.Company.Name}}</div>
  <div class="content">
    <div class="letterhead">
      <div>
        {{if .Company.LogoDataURI}}<img src="{{safeURL .Company.LogoDataURI}}" alt="{{.Company.Name}}">{{end}}
        <div class="company-name">{{.Company.Name}}</div>
        {{if .Company.Tagline}}<div class="muted">{{.Company.Tagline}}</div>{{end}}
      </div>
      <div class="r">
        {{if .Company.Address}}<div>{{.Company.Address}}</div>{{end}}
        {{if .Company.Email}}<div>{{.Company.Email}}</div>{{end}}
        {{if .Company.Phone}}<div>{{.Company.Phone}}</div>{{end}}
        {{if .Company.Website}}<div>{{.Company.Website}}</div>{{end}}
        {{if .Company.TaxID}}<div><strong>GSTIN:</strong> {{.Company.TaxID}}</div>{{end}}
      </div>
    </div>

    <div class="title">{{.Title}}</div>

    <div class="meta">
      <div>
        <div class="label">Bill to</div>
        <div><strong>{{.Client.Name}}</strong></div>
        <div>{{.Client.Address}}</div>
        <div>{{.Client.Region}}{{if .Client.RegionCode}} ({{.Client.RegionCode}}){{end}} {{.Client.PostalCode}}</div>
        <div>{{.Client.Country}}</div>
        <div>{{.Client.Email}} | {{.Client.Phone}}</div>
        {{if .Client.TaxID}}<div><strong>GSTIN:</strong> {{.Client.TaxID}}</div>{{end}}
      </div>
      <div class="r">
        <div class="label">Invoice no</div>
        <div><strong>{{.InvoiceNo}}</strong></div>
        <div class="label" style="margin-top:10px">Date</div>
        <div>{{formatDate .InvoiceDate}}</div>
        {{if .DueDate}}
        <div class="label" style="margin-top:10px">Valid until</div>
        <div>{{formatDatePtr .DueDate}}</div>
        {{end}}
      </div>
    </div>

    <table>
      <thead>
        <tr>
          <th style="width:6%">SL No</th>
          <th>Service</th>
          <th style="width:12%">SAC</th>
          <th class="r" style="width:8%">Qty</th>
          <th class="r" style="width:16%">Rate</th>
          <th class="r" style="width:18%">Amount</th>
        </tr>
      </thead>
      <tbody>
        {{range .Items}}
        <tr>
          <td>{{.Position}}</td>
          <td>
            <div>{{.ServiceName}}</div>
            {{if .Description}}<div class="muted">{{.Description}}</div>{{end}}
          </td>
          <td>{{.SAC}}</td>
          <td class="r">{{formatQuantity .Quantity}}</td>
          <td class="r">{{money $.CurrencySymbol .Rate}}</td>
          <td class="r">{{money $.CurrencySymbol .Amount}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>

    <div class="totals">
      <div><span>Subtotal</span><span>{{money .CurrencySymbol .Subtotal}}</span></div>
      {{if eq .Jurisdiction "DOMESTIC"}}
      <div><span>CGST ({{.CGSTPercent}}%)</span><span>{{money .CurrencySymbol .CGST}}</span></div>
      <div><span>SGST ({{.SGSTPercent}}%)</span><span>{{money .CurrencySymbol .SGST}}</span></div>
      {{else if not .IGST.IsZero}}
      <div><span>IGST ({{.IGSTPercent}}%)</span><span>{{money .CurrencySymbol .IGST}}</span></div>
      {{end}}
      <div class="grand"><span>Total</span><span>{{money .CurrencySymbol .Total}}</span></div>
    </div>

    <div class="words"><strong>Amount in words:</strong> {{.AmountInWords}}</div>

    <div class="bank">
      <div>
        {{if .Company.BankName}}
        <div class="label">Bank details</div>
        <div>{{.Company.BankName}}{{if .Company.BankBranch}}, {{.Company.BankBranch}}{{end}}</div>
        {{if .Company.BankAccount}}<div>A/C: {{.Company.BankAccount}}</div>{{end}}
        {{if .Company.BankIFSC}}<div>IFSC: {{.Company.BankIFSC}}</div>{{end}}
        {{if .Company.BankSwift}}<div>SWIFT: {{.Company.BankSwift}}</div>{{end}}
        {{end}}
      </div>
      <div class="sign">
        <div>For {{.Company.Name}}</div>
        <div style="margin-top:40px">{{.Company.Signatory}}</div>
      </div>
    </div>

    <div class="footer">
      {{if eq .Jurisdiction "DOMESTIC"}}This is a computer generated tax invoice under GST.{{else}}This is a computer generated invoice.{{end}}
    </div>
  </div>
</div>
</body>
</html>
`
