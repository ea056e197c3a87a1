package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"homebudget/internal/models"
)

const (
	leftMargin  = 15.0
	topMargin   = 18.0
	lineHeight  = 6.0
	bottomLimit = 272.0 // A4 is 297mm tall
)

// RenderPDF produces the report document for an ordered purchase list
// and returns it together with the total, accumulated line by line
// while rendering. An empty purchase list yields a document with no
// detail lines and a 0.00 total.
func RenderPDF(user *models.User, purchases []models.Purchase, title string, generatedAt time.Time) ([]byte, decimal.Decimal, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	y := topMargin
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(leftMargin, y, title)
	y += 10
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(leftMargin, y, fmt.Sprintf("User: %s -- Email: %s", user.Name, user.Email))
	y += 7
	pdf.Text(leftMargin, y, "Generated: "+generatedAt.Format("2006-01-02 15:04"))
	y += 10
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(leftMargin, y, "Details:")
	y += 7
	pdf.SetFont("Helvetica", "", 10)

	total := decimal.Zero
	for _, p := range purchases {
		category := p.Category
		if category == "" {
			category = "-"
		}
		line := fmt.Sprintf("%s | %s | %s | %s DZD",
			p.Date.Format("2006-01-02"), category, p.ItemName, p.Price.StringFixed(2))
		pdf.Text(leftMargin, y, line)
		y += lineHeight
		total = total.Add(p.Price)
		if y > bottomLimit {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "", 10)
			y = topMargin
		}
	}

	y += 4
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(leftMargin, y, "Total: "+total.StringFixed(2)+" DZD")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, decimal.Zero, err
	}
	return buf.Bytes(), total, nil
}
