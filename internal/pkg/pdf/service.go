// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/freshbasket/storefront/internal/config"
	"github.com/freshbasket/storefront/internal/domain/order"
)

// Service renders order receipts as PDF
type Service struct {
	store config.StoreConfig
	tmpl  *template.Template
}

// NewService creates a new PDF service
func NewService(store config.StoreConfig) *Service {
	return &Service{
		store: store,
		tmpl:  template.Must(template.New("receipt").Parse(receiptTemplate)),
	}
}

// ReceiptData is passed to the receipt template
type ReceiptData struct {
	ReceiptNumber string
	OrderDate     string
	Order         *order.Order
	Store         config.StoreConfig
}

// RenderHTML fills the receipt template for an order
func (s *Service) RenderHTML(o *order.Order) ([]byte, error) {
	data := ReceiptData{
		ReceiptNumber: fmt.Sprintf("FB-%06d", o.ID),
		OrderDate:     o.OrderDate.Format("January 2, 2006 15:04 MST"),
		Order:         o,
		Store:         s.store,
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateReceipt converts the rendered receipt to PDF with wkhtmltopdf
func (s *Service) GenerateReceipt(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderHTML(o)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 24px; color: #222; }
        .header { display: flex; justify-content: space-between; border-bottom: 2px solid #2e7d32; padding-bottom: 12px; }
        .store-name { font-size: 24px; font-weight: bold; color: #2e7d32; }
        .meta { text-align: right; font-size: 13px; }
        table { width: 100%; border-collapse: collapse; margin-top: 24px; }
        th, td { padding: 8px; border-bottom: 1px solid #ddd; font-size: 13px; }
        th { background: #f1f8e9; text-align: left; }
        .num { text-align: right; }
        .totals { margin-top: 16px; width: 40%; margin-left: auto; }
        .totals td { border: none; }
        .grand { font-weight: bold; font-size: 15px; border-top: 2px solid #222; }
    </style>
</head>
<body>
    <div class="header">
        <div>
            <div class="store-name">{{.Store.Name}}</div>
            <div>{{.Store.Address}}</div>
            <div>{{.Store.Phone}} {{.Store.Email}}</div>
        </div>
        <div class="meta">
            <div><strong>Receipt {{.ReceiptNumber}}</strong></div>
            <div>Order #{{.Order.ID}}</div>
            <div>{{.OrderDate}}</div>
            <div>Status: {{.Order.Status}}</div>
        </div>
    </div>

    <p><strong>Ship to:</strong> {{.Order.ShippingAddress}}</p>
    {{if .Order.DriverName}}<p><strong>Driver:</strong> {{.Order.DriverName}}</p>{{end}}

    <table>
        <thead>
            <tr><th>Item</th><th>Unit</th><th class="num">Price</th><th class="num">Qty</th><th class="num">Total</th></tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td>{{.Name}}</td>
                <td>{{.Unit}}</td>
                <td class="num">{{.Price.StringFixed 2}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{.LineTotal.StringFixed 2}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <table class="totals">
        <tr><td>Subtotal</td><td class="num">{{.Order.Subtotal.StringFixed 2}}</td></tr>
        <tr><td>Delivery</td><td class="num">{{.Order.DeliveryFee.StringFixed 2}}</td></tr>
        {{if .Order.TipAmount.IsPositive}}<tr><td>Driver tip</td><td class="num">{{.Order.TipAmount.StringFixed 2}}</td></tr>{{end}}
        <tr class="grand"><td>Total</td><td class="num">{{.Order.TotalAmount.StringFixed 2}}</td></tr>
    </table>
</body>
</html>
`
