package email

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/shopkartapp/shopkart/internal/models"
)

var orderConfirmationText = template.Must(template.New("order_confirmation").Parse(`Hi {{.Name}},

Thanks for your order! Payment for order {{.OrderNumber}} has been received.

Items:
{{- range .Items}}
  - {{.Name}} x{{.Quantity}} — {{$.Currency}} {{printf "%.2f" .Total}}
{{- end}}

Subtotal: {{.Currency}} {{printf "%.2f" .Subtotal}}
Tax:      {{.Currency}} {{printf "%.2f" .Tax}}
Shipping: {{.Currency}} {{printf "%.2f" .ShippingFee}}
Total:    {{.Currency}} {{printf "%.2f" .Total}}

We'll let you know as soon as your order ships.
`))

type orderConfirmationData struct {
	Name        string
	OrderNumber string
	Currency    string
	Items       []models.OrderItem
	Subtotal    float64
	Tax         float64
	ShippingFee float64
	Total       float64
}

// OrderConfirmation renders the mail sent when an order's payment is
// captured.
func OrderConfirmation(order *models.Order) (*Email, error) {
	if order == nil {
		return nil, fmt.Errorf("order is required")
	}

	name := order.Billing.Name
	if name == "" {
		name = "there"
	}

	var body bytes.Buffer
	err := orderConfirmationText.Execute(&body, orderConfirmationData{
		Name:        name,
		OrderNumber: order.OrderNumber,
		Currency:    order.Currency,
		Items:       order.Items,
		Subtotal:    order.Subtotal,
		Tax:         order.Tax,
		ShippingFee: order.ShippingFee,
		Total:       order.Total,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render order confirmation: %w", err)
	}

	return &Email{
		To:      order.UserEmail,
		Subject: fmt.Sprintf("Order %s confirmed", order.OrderNumber),
		Text:    body.String(),
	}, nil
}
