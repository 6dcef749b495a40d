package email

import (
	"fmt"
	"html/template"
	"strings"

	"invoicer/internal/model"

	"github.com/shopspring/decimal"
)

const invoiceHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <style>
    html, body { margin: 0; padding: 0; background: #ffffff; color: #1f2937; }
    body { font-family: Arial, sans-serif; padding: 40px 48px; }
    .container { width: 100%; box-sizing: border-box; }
    .header { display: flex; justify-content: space-between; align-items: center; border-bottom: 2px solid #f1f5f9; padding-bottom: 20px; margin-bottom: 30px; }
    .company-info { display: flex; align-items: center; gap: 20px; }
    .logo img { max-height: 80px; }
    h1 { margin: 0; font-size: 28px; }
    h3 { margin: 0 0 10px 0; font-size: 18px; }
    table { width: 100%; border-collapse: collapse; margin: 30px 0; }
    th { background-color: #f8fafc; text-align: left; padding: 12px; font-size: 12px; text-transform: uppercase; letter-spacing: 0.05em; color: #64748b; }
    td { padding: 12px; border-bottom: 1px solid #e2e8f0; font-size: 14px; }
    .totals { margin-top: 30px; display: flex; justify-content: flex-end; }
    .totals table { width: 320px; }
    .totals td { border: none; }
    .total-row td { font-size: 16px; font-weight: bold; border-top: 2px solid #e2e8f0; }
    .status { display: inline-flex; padding: 6px 14px; border-radius: 9999px; font-weight: bold; text-transform: uppercase; font-size: 12px; letter-spacing: 0.05em; }
    .status-paid { background: #dcfce7; color: #166534; }
    .status-sent { background: #dbeafe; color: #1d4ed8; }
    .status-partial { background: #fef3c7; color: #92400e; }
    .status-draft { background: #e2e8f0; color: #475569; }
    .footer { margin-top: 40px; padding-top: 20px; border-top: 1px solid #e2e8f0; color: #64748b; font-size: 13px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div>
        <h1>Invoice {{.InvoiceNumber}}</h1>
        <p><strong>Date:</strong> {{.Date}}</p>
        {{if .DueDate}}<p><strong>Due Date:</strong> {{.DueDate}}</p>{{end}}
        <p><strong>Status:</strong> <span class="status status-{{.Status}}">{{.StatusUpper}}</span></p>
      </div>
      <div class="company-info">
        {{if .Company.LogoURL}}<div class="logo"><img src="{{.Company.LogoURL}}" alt="{{.Company.Name}}"></div>{{end}}
        <div>
          <h3>{{.Company.Name}}</h3>
          {{if .Company.Address}}<p>{{.Company.Address}}</p>{{end}}
          {{if .Company.Phone}}<p>{{.Company.Phone}}</p>{{end}}
          {{if .Company.Email}}<p>{{.Company.Email}}</p>{{end}}
          {{if .Company.Website}}<p>{{.Company.Website}}</p>{{end}}
        </div>
      </div>
    </div>

    <div>
      <h3>Bill To</h3>
      <p><strong>{{.CustomerName}}</strong></p>
      <p>{{.CustomerEmail}}</p>
    </div>

    <table>
      <thead>
        <tr>
          <th>Description</th>
          <th>Size / Origin</th>
          <th>Quantity</th>
          <th>Price</th>
          <th>Total</th>
        </tr>
      </thead>
      <tbody>
        {{range .Items}}
        <tr>
          <td><div style="font-weight:600;color:#0f172a;">{{.Name}}</div></td>
          <td>
            <div>{{if .Serial}}Serial: {{.Serial}}{{else}}-{{end}}</div>
            <div style="color:#94a3b8;font-size:12px;">{{.Dimensions}}</div>
          </td>
          <td>{{.Quantity}}</td>
          <td>{{.Price}}</td>
          <td>{{.Total}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>

    <div class="totals">
      <table>
        <tr>
          <td style="text-align:right;">Subtotal:</td>
          <td style="text-align:right;">{{.Subtotal}}</td>
        </tr>
        {{if .Discount}}
        <tr>
          <td style="text-align:right;">Discount:</td>
          <td style="text-align:right;">-{{.Discount}}</td>
        </tr>
        {{end}}
        <tr>
          <td style="text-align:right;">Tax:</td>
          <td style="text-align:right;">{{.Tax}}</td>
        </tr>
        <tr class="total-row">
          <td style="text-align:right;">Total:</td>
          <td style="text-align:right;">{{.Total}}</td>
        </tr>
      </table>
    </div>

    {{if .Notes}}<div style="margin-top:32px;"><h3>Memo</h3><p>{{.Notes}}</p></div>{{end}}

    <div class="footer">
      <p>{{.FooterNote}}</p>
    </div>
  </div>
</body>
</html>
`

var invoiceTmpl = template.Must(template.New("invoice").Parse(invoiceHTMLTemplate))

type invoiceItemView struct {
	Name       string
	Serial     string
	Dimensions string
	Quantity   string
	Price      string
	Total      string
}

type invoiceView struct {
	InvoiceNumber string
	Date          string
	DueDate       string
	Status        string
	StatusUpper   string
	CustomerName  string
	CustomerEmail string
	Company       CompanyInfo
	Items         []invoiceItemView
	Subtotal      string
	Discount      string
	Tax           string
	Total         string
	Notes         string
	FooterNote    string
}

// RenderInvoiceHTML renders the customer-facing invoice document.
func RenderInvoiceHTML(invoice *model.Invoice, company CompanyInfo, footerNote string) (string, error) {
	var sb strings.Builder
	if err := invoiceTmpl.Execute(&sb, buildView(invoice, company, footerNote)); err != nil {
		return "", fmt.Errorf("failed to render invoice template: %w", err)
	}
	return sb.String(), nil
}

// RenderInvoiceText renders the plain-text alternative body.
func RenderInvoiceText(invoice *model.Invoice, company CompanyInfo, footerNote string) string {
	view := buildView(invoice, company, footerNote)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Invoice %s\n", view.InvoiceNumber)
	fmt.Fprintf(&sb, "Status: %s\n", view.StatusUpper)
	fmt.Fprintf(&sb, "Date: %s\n", view.Date)
	if view.DueDate != "" {
		fmt.Fprintf(&sb, "Due Date: %s\n", view.DueDate)
	}
	fmt.Fprintf(&sb, "\nBill To:\n%s\n%s\n", view.CustomerName, view.CustomerEmail)

	if company.Address != "" {
		fmt.Fprintf(&sb, "\nCompany Address:\n%s\n", company.Address)
	}
	if company.Phone != "" {
		fmt.Fprintf(&sb, "Phone: %s\n", company.Phone)
	}
	if company.Email != "" {
		fmt.Fprintf(&sb, "Email: %s\n", company.Email)
	}

	sb.WriteString("\nItems:\n")
	for _, item := range view.Items {
		fmt.Fprintf(&sb, "%s\n", item.Name)
		size := item.Dimensions
		if item.Serial != "" {
			size = strings.TrimSpace("Serial: " + item.Serial + " " + size)
		}
		if size == "" {
			size = "N/A"
		}
		fmt.Fprintf(&sb, "  Size/Origin: %s\n", size)
		fmt.Fprintf(&sb, "  Quantity: %s\n", item.Quantity)
		fmt.Fprintf(&sb, "  Price: %s\n", item.Price)
		fmt.Fprintf(&sb, "  Line Total: %s\n\n", item.Total)
	}

	fmt.Fprintf(&sb, "Subtotal: %s\n", view.Subtotal)
	if view.Discount != "" {
		fmt.Fprintf(&sb, "Discount: -%s\n", view.Discount)
	}
	fmt.Fprintf(&sb, "Tax: %s\n", view.Tax)
	fmt.Fprintf(&sb, "Total: %s\n", view.Total)

	if view.Notes != "" {
		fmt.Fprintf(&sb, "\nMemo:\n%s\n", view.Notes)
	}
	fmt.Fprintf(&sb, "\n%s\n", view.FooterNote)
	return sb.String()
}

func buildView(invoice *model.Invoice, company CompanyInfo, footerNote string) invoiceView {
	if company.Name == "" {
		company.Name = "Invoicer"
	}
	if footerNote == "" {
		footerNote = fmt.Sprintf("Thank you for choosing %s. If you have any questions about this invoice, please contact us.", company.Name)
	}

	date := invoice.InvoiceDate
	if date.IsZero() {
		date = invoice.CreatedAt
	}

	view := invoiceView{
		InvoiceNumber: invoice.InvoiceNumber,
		Date:          date.Format("Jan 2, 2006"),
		Status:        invoice.Status,
		StatusUpper:   strings.ToUpper(invoice.Status),
		CustomerName:  invoice.CustomerName,
		CustomerEmail: invoice.CustomerEmail,
		Company:       company,
		Subtotal:      formatCurrency(invoice.Subtotal),
		Tax:           formatCurrency(invoice.Tax),
		Total:         formatCurrency(invoice.Total),
		Notes:         invoice.Memo,
		FooterNote:    footerNote,
	}
	if invoice.DueDate != nil {
		view.DueDate = invoice.DueDate.Format("Jan 2, 2006")
	}
	if invoice.DiscountAmount.IsPositive() {
		view.Discount = formatCurrency(invoice.DiscountAmount)
	}

	for _, item := range invoice.Items {
		view.Items = append(view.Items, invoiceItemView{
			Name:       item.ProductName,
			Serial:     item.ProductID,
			Dimensions: formatDimensions(item),
			Quantity:   item.Quantity.String(),
			Price:      formatCurrency(item.Price),
			Total:      formatCurrency(item.Total),
		})
	}
	return view
}

func formatDimensions(item model.InvoiceItem) string {
	var parts []string
	if item.Length != nil && *item.Length > 0 {
		parts = append(parts, fmt.Sprintf("%gcm", *item.Length))
	}
	if item.Width != nil && *item.Width > 0 {
		parts = append(parts, fmt.Sprintf("%gcm", *item.Width))
	}
	dims := strings.Join(parts, " × ")
	if item.Origin != "" {
		if dims != "" {
			dims += " • " + item.Origin
		} else {
			dims = item.Origin
		}
	}
	return dims
}

func formatCurrency(value decimal.Decimal) string {
	return "$" + value.StringFixed(2)
}
