// Package email sends invoice documents to customers. The Sender seam keeps
// delivery swappable; the renderer turns a computed invoice plus the company
// profile into the customer-facing document.
package email

import "context"

// Message represents an email to be sent.
type Message struct {
	To          []string
	From        string
	Subject     string
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}

// Attachment represents a file attachment.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Sender delivers messages. Implementations must treat a delivery failure
// as their own failure only; callers decide what that means for the
// surrounding operation.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// CompanyInfo is the issuer identity printed on rendered invoices.
type CompanyInfo struct {
	Name    string
	Email   string
	LogoURL string
	Address string
	Phone   string
	Website string
}
