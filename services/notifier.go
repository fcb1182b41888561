package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/chethanac15/eStore/models"
)

// EmailNotifier sends an order summary to the store admin over SMTP.
type EmailNotifier struct {
	host       string
	port       string
	username   string
	password   string
	adminEmail string
}

func NewEmailNotifier(host, port, username, password, adminEmail string) (*EmailNotifier, error) {
	if host == "" {
		return nil, fmt.Errorf("SMTP_HOST not set")
	}
	if username == "" {
		return nil, fmt.Errorf("SMTP_USER not set")
	}
	if password == "" {
		return nil, fmt.Errorf("SMTP_PASS not set")
	}
	if adminEmail == "" {
		return nil, fmt.Errorf("ADMIN_EMAIL not set")
	}
	return &EmailNotifier{host, port, username, password, adminEmail}, nil
}

func (n *EmailNotifier) OrderPlaced(ctx context.Context, order *models.Order) error {
	addr := fmt.Sprintf("%s:%s", n.host, n.port)
	auth := smtp.PlainAuth("", n.username, n.password, n.host)

	subject := "New Order Received"
	body := orderSummaryHTML(order)

	msg := []byte(
		"From: " + n.username + "\r\n" +
			"To: " + n.adminEmail + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)

	if err := smtp.SendMail(addr, auth, n.username, []string{n.adminEmail}, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func orderSummaryHTML(order *models.Order) string {
	var b strings.Builder
	b.WriteString("<h2>New Order Received</h2>")
	fmt.Fprintf(&b, "<p><strong>Order ID:</strong> %s</p>", order.ID.Hex())
	fmt.Fprintf(&b, "<p><strong>Order Number:</strong> %s</p>", order.OrderNumber)
	fmt.Fprintf(&b, "<p><strong>Customer:</strong> %s</p>", order.UserID)
	fmt.Fprintf(&b, "<p><strong>Total Amount:</strong> %s</p>", FormatAmount(order.TotalAmount))
	addr := order.ShippingAddress
	fmt.Fprintf(&b, "<p><strong>Shipping Address:</strong></p><p>%s<br>%s, %s %s<br>%s</p>",
		addr.Street, addr.City, addr.State, addr.ZipCode, addr.Country)
	b.WriteString("<h3>Items:</h3><ul>")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "<li>%s - Quantity: %d - Price: %s</li>", item.Name, item.Quantity, FormatAmount(item.Price))
	}
	b.WriteString("</ul>")
	return b.String()
}

// FormatAmount renders minor currency units as a dollar string for display.
// Money is never computed in floats; this is formatting only.
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
