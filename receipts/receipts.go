package receipts

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"ktvadmin/models"
)

const (
	venueName  = "KTV Family"
	timeLayout = "2006-01-02 15:04"
)

// Renderer prints booking passes and order receipts as single-page PDFs.
// A non-empty Secret signs the QR payload.
type Renderer struct {
	Secret []byte
}

// Payload returns kind|id, plus an HMAC signature when a secret is set.
func (r Renderer) Payload(kind, id string) string {
	data := fmt.Sprintf("%s|%s", kind, id)
	if len(r.Secret) == 0 {
		return data
	}
	h := hmac.New(sha256.New, r.Secret)
	h.Write([]byte(data))
	return data + "|" + base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func (r Renderer) BookingPass(b *models.Booking, room *models.Room) ([]byte, error) {
	pdf := newDocument("Booking Pass")

	line(pdf, "Booking ID: %s", b.BookingID)
	line(pdf, "Customer: %s", b.CustomerID)
	if room != nil {
		line(pdf, "Room: %s (%s, %s)", room.Name, room.RoomID, room.Type)
	} else {
		line(pdf, "Room: %s", b.RoomID)
	}
	line(pdf, "From: %s", b.TimeSlot.StartAt.Format(timeLayout))
	line(pdf, "To: %s", b.TimeSlot.EndAt.Format(timeLayout))
	line(pdf, "Duration: %.2f h", b.Duration)
	line(pdf, "Total: %.2f", b.TotalPrice)
	line(pdf, "Status: %s", b.Status)

	if err := r.addQR(pdf, "BOOKING", b.BookingID); err != nil {
		return nil, err
	}
	return output(pdf)
}

func (r Renderer) OrderReceipt(o *models.Order) ([]byte, error) {
	pdf := newDocument("Order Receipt")

	line(pdf, "Order ID: %s", o.OrderID)
	line(pdf, "Customer: %s", o.CustomerID)
	if o.BookingID != nil {
		line(pdf, "Booking: %s", *o.BookingID)
	}
	line(pdf, "Date: %s", o.OrderDate.Format(timeLayout))
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(80, 8, "Item", "B", 0, "", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Unit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Subtotal", "B", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, d := range o.OrderDetails {
		name := d.ProductName
		if name == "" {
			name = d.ProductID
		}
		pdf.CellFormat(80, 7, name, "", 0, "", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", d.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", d.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", d.Subtotal), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	line(pdf, "Subtotal: %.2f", o.Subtotal)
	line(pdf, "Discount: %.2f", o.Discount)
	pdf.SetFont("Arial", "B", 12)
	line(pdf, "Total: %.2f", o.TotalAmount)
	pdf.SetFont("Arial", "", 12)
	line(pdf, "Payment: %s", o.PaymentMethod)

	if err := r.addQR(pdf, "ORDER", o.OrderID); err != nil {
		return nil, err
	}
	return output(pdf)
}

// WritePDF sends body as an attachment named filename.
func WritePDF(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func newDocument(title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, venueName+" - "+title)
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	return pdf
}

func line(pdf *gofpdf.Fpdf, format string, args ...interface{}) {
	pdf.Cell(0, 8, fmt.Sprintf(format, args...))
	pdf.Ln(8)
}

func (r Renderer) addQR(pdf *gofpdf.Fpdf, kind, id string) error {
	png, err := qrcode.Encode(r.Payload(kind, id), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("qr code: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr-"+id, opts, bytes.NewReader(png))
	pdf.ImageOptions("qr-"+id, 150, 30, 40, 40, false, opts, 0, "")
	return nil
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
