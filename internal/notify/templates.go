package notify

import (
	"bytes"
	"html/template"
	"time"
)

var ticketsTemplate = template.Must(template.New("tickets").Parse(`<html><body>
<p>Hello {{.Name}},</p>
<p>Your booking for <b>{{.EventTitle}}</b> on {{.StartTime}} is confirmed.</p>
<p>{{.TicketCount}} ticket(s) are attached as a PDF. Total paid: {{.Total}}.</p>
<p>Booking reference: {{.BookingID}}</p>
</body></html>`))

var refundTemplate = template.Must(template.New("refund").Parse(`<html><body>
<p>Hello {{.Name}},</p>
<p>Your ticket for <b>{{.EventTitle}}</b> has been refunded.</p>
<p>Refunded: {{.Amount}} ({{.Percent}}% of the ticket price). The amount has been credited to your wallet.</p>
<p>Ticket reference: {{.TicketID}}</p>
</body></html>`))

type TicketsEmail struct {
	Name        string
	EventTitle  string
	StartTime   time.Time
	TicketCount int
	Total       string
	BookingID   string
}

type RefundEmail struct {
	Name       string
	EventTitle string
	Amount     string
	Percent    int
	TicketID   string
}

func RenderTickets(data TicketsEmail) (string, error) {
	var buf bytes.Buffer
	err := ticketsTemplate.Execute(&buf, struct {
		TicketsEmail
		StartTime string
	}{data, data.StartTime.UTC().Format("Mon, 02 Jan 2006 15:04 MST")})
	return buf.String(), err
}

func RenderRefund(data RefundEmail) (string, error) {
	var buf bytes.Buffer
	err := refundTemplate.Execute(&buf, data)
	return buf.String(), err
}
