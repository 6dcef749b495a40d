package email

import (
	"strings"
	"testing"
	"time"

	"invoicer/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoice() *model.Invoice {
	length := 2.0
	width := 3.0
	return &model.Invoice{
		InvoiceNumber: "INV-000042",
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Status:        model.StatusSent,
		InvoiceDate:   time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
		Items: []model.InvoiceItem{
			{
				ProductName: "Kilim",
				ProductID:   "p7",
				Quantity:    decimal.NewFromInt(1),
				Price:       decimal.NewFromInt(250),
				Total:       decimal.NewFromInt(250),
				Length:      &length,
				Width:       &width,
				Origin:      "Anatolia",
			},
		},
		Subtotal: decimal.NewFromInt(250),
		Tax:      decimal.NewFromFloat(22.5),
		Total:    decimal.NewFromFloat(272.5),
	}
}

func TestRenderInvoiceHTML(t *testing.T) {
	html, err := RenderInvoiceHTML(sampleInvoice(), CompanyInfo{Name: "Acme Rugs", Email: "info@acme.test"}, "")
	require.NoError(t, err)

	assert.Contains(t, html, "Invoice INV-000042")
	assert.Contains(t, html, "Alice")
	assert.Contains(t, html, "Acme Rugs")
	assert.Contains(t, html, "Serial: p7")
	assert.Contains(t, html, "$250.00")
	assert.Contains(t, html, "$272.50")
	assert.Contains(t, html, "status-sent")
	assert.Contains(t, html, "Thank you for choosing Acme Rugs")
}

func TestRenderInvoiceHTMLEscapesCustomerInput(t *testing.T) {
	invoice := sampleInvoice()
	invoice.CustomerName = `<script>alert("x")</script>`

	html, err := RenderInvoiceHTML(invoice, CompanyInfo{Name: "Acme"}, "")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert")
}

func TestRenderInvoiceText(t *testing.T) {
	text := RenderInvoiceText(sampleInvoice(), CompanyInfo{Name: "Acme Rugs", Phone: "555-0101"}, "Custom footer")

	assert.True(t, strings.HasPrefix(text, "Invoice INV-000042"))
	assert.Contains(t, text, "Status: SENT")
	assert.Contains(t, text, "Phone: 555-0101")
	assert.Contains(t, text, "Kilim")
	assert.Contains(t, text, "Total: $272.50")
	assert.Contains(t, text, "Custom footer")
}

func TestRenderFallsBackToCompanyDefaults(t *testing.T) {
	html, err := RenderInvoiceHTML(sampleInvoice(), CompanyInfo{}, "")
	require.NoError(t, err)
	assert.Contains(t, html, "Invoicer")
}
