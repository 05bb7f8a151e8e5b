package tickets

import (
	"bytes"
	"fmt"
	"time"

	"evently/internal/models"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

// Document is everything printed into a booking's ticket PDF.
type Document struct {
	EventTitle string
	StartTime  time.Time
	HolderName string
	BookingID  uuid.UUID
	Tickets    []models.Ticket
	TypeNames  map[uuid.UUID]string
	QRImages   map[uuid.UUID][]byte
}

// RenderPDF lays out one A4 page per ticket with its QR code.
func RenderPDF(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(doc.EventTitle, true)
	pdf.SetCreator("evently", true)

	imgOpts := fpdf.ImageOptions{ImageType: "PNG"}

	for i, t := range doc.Tickets {
		pdf.AddPage()

		pdf.SetFont("Helvetica", "B", 20)
		pdf.CellFormat(0, 12, tr(doc.EventTitle), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("Starts: %s", doc.StartTime.UTC().Format("Mon, 02 Jan 2006 15:04 MST")), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("Holder: %s", doc.HolderName)), "", 1, "L", false, 0, "")
		if name, ok := doc.TypeNames[t.TicketDetailID]; ok {
			pdf.CellFormat(0, 8, tr(fmt.Sprintf("Ticket type: %s", name)), "", 1, "L", false, 0, "")
		}
		pdf.CellFormat(0, 8, fmt.Sprintf("Price: %s", t.Price.StringFixed(2)), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 8, fmt.Sprintf("Ticket %d of %d", i+1, len(doc.Tickets)), "", 1, "L", false, 0, "")

		pdf.SetFont("Courier", "", 9)
		pdf.CellFormat(0, 6, fmt.Sprintf("Booking %s", doc.BookingID), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("Ticket %s", t.ID), "", 1, "L", false, 0, "")

		if png, ok := doc.QRImages[t.ID]; ok {
			name := "qr-" + t.ID.String()
			pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(png))
			pdf.ImageOptions(name, 15, 90, 70, 70, false, imgOpts, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render tickets PDF: %w", err)
	}
	return buf.Bytes(), nil
}
