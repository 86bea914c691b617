package email

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Ahmedchetoui/Delta-sub000/internal/mailer"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/orders"
	"github.com/Ahmedchetoui/Delta-sub000/internal/shared/money"
)

// Notifier sipariş yaşam döngüsü e-postalarını gönderir. Best-effort:
// gönderim hatası loglanır, sipariş işlemini asla başarısız kılmaz.
type Notifier struct {
	mail     mailer.Service
	from     string
	fromName string
	logger   *slog.Logger
}

func NewNotifier(mail mailer.Service, from, fromName string, logger *slog.Logger) *Notifier {
	if fromName == "" {
		fromName = "Delta Fashion"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{mail: mail, from: from, fromName: fromName, logger: logger}
}

var statusLabels = map[orders.OrderStatus]string{
	orders.StatusPending:    "Beklemede",
	orders.StatusConfirmed:  "Onaylandı",
	orders.StatusProcessing: "Hazırlanıyor",
	orders.StatusShipped:    "Kargoya Verildi",
	orders.StatusDelivered:  "Teslim Edildi",
	orders.StatusCancelled:  "İptal Edildi",
	orders.StatusRefunded:   "İade Edildi",
}

func statusLabel(s orders.OrderStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// recipient: misafir siparişinde guest_email, kayıtlı kullanıcıda adres
// snapshot'ındaki e-posta.
func recipient(o orders.Order) (email, name string) {
	var addr orders.Address
	if len(o.ShippingAddressJSON) > 0 {
		_ = json.Unmarshal(o.ShippingAddressJSON, &addr)
	}
	name = addr.FirstName
	if o.GuestEmail != nil && *o.GuestEmail != "" {
		return *o.GuestEmail, name
	}
	return addr.Email, name
}

func (n *Notifier) OrderPlaced(ctx context.Context, o orders.Order) {
	to, name := recipient(o)
	if to == "" {
		n.logger.Warn("email.no_recipient", slog.String("order", o.OrderNumber))
		return
	}
	total := money.Format(o.Currency, int64(o.TotalCents))

	subject := "Siparişiniz alındı (#" + o.OrderNumber + ")"
	text := "Merhaba " + name + ",\n\nSiparişiniz (#" + o.OrderNumber + ") alındı. Toplam: " + total + "\n\nTeşekkürler!"
	html := `
<html>
  <body style="font-family: sans-serif;">
    <h2>Siparişiniz Alındı</h2>
    <p>Merhaba ` + name + `,</p>
    <p><strong>Sipariş No:</strong> #` + o.OrderNumber + `</p>
    <p><strong>Toplam:</strong> ` + total + `</p>
    <p>Teşekkürler!</p>
    <p>Delta Fashion Ekibi</p>
  </body>
</html>
`
	n.send(ctx, o.OrderNumber, to, name, subject, text, html)
}

func (n *Notifier) OrderStatusChanged(ctx context.Context, o orders.Order, from orders.OrderStatus) {
	to, name := recipient(o)
	if to == "" {
		n.logger.Warn("email.no_recipient", slog.String("order", o.OrderNumber))
		return
	}
	label := statusLabel(o.OrderStatus)

	subject := "Sipariş durumu güncellendi (#" + o.OrderNumber + "): " + label
	text := "Merhaba " + name + ",\n\nSiparişinizin (#" + o.OrderNumber + ") durumu: " + label
	if o.OrderStatus == orders.StatusShipped && o.TrackingNumber != nil {
		text += "\nTakip numarası: " + *o.TrackingNumber
	}
	html := `
<html>
  <body style="font-family: sans-serif;">
    <h2>Sipariş Durumu: ` + label + `</h2>
    <p>Merhaba ` + name + `,</p>
    <p><strong>Sipariş No:</strong> #` + o.OrderNumber + `</p>`
	if o.OrderStatus == orders.StatusShipped && o.TrackingNumber != nil {
		html += `
    <p><strong>Takip No:</strong> ` + *o.TrackingNumber + `</p>`
	}
	html += `
    <p>Delta Fashion Ekibi</p>
  </body>
</html>
`
	n.send(ctx, o.OrderNumber, to, name, subject, text, html)
}

func (n *Notifier) send(ctx context.Context, orderNumber, to, toName, subject, text, html string) {
	err := n.mail.Send(ctx, mailer.Email{
		From:     n.from,
		FromName: n.fromName,
		To:       []string{to},
		Subject:  subject,
		TextBody: text,
		HTMLBody: html,
	})
	if err != nil {
		n.logger.Error("email.send_failed",
			slog.String("order", orderNumber),
			slog.String("to", to),
			slog.Any("err", err),
		)
	}
}
