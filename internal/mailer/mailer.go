package mailer

import (
	"context"
	"fmt"
	"strings"
)

// Service sipariş bildirimlerinin çıkış kapısıdır. Gerçek gönderim
// SMTPMailer ile, testlerde Mock ile yapılır.
type Service interface {
	Send(ctx context.Context, e Email) error
}

// Email tek bir işlemsel e-postadır (sipariş onayı, durum değişikliği).
// TextBody ve HTMLBody birlikte verilirse multipart/alternative üretilir.
type Email struct {
	FromName string // opsiyonel: "Delta Fashion"
	From     string // zorunlu
	ReplyTo  string // opsiyonel: destek kutusu

	To []string

	Subject  string
	TextBody string
	HTMLBody string
}

// Validate gönderime uygunluğu kontrol eder; MIME üretiminden ve SMTP
// konuşmasından önce çağrılır.
func (e Email) Validate() error {
	if len(e.To) == 0 {
		return fmt.Errorf("mailer: en az bir alıcı gerekli")
	}
	for _, to := range e.To {
		if !strings.Contains(to, "@") {
			return fmt.Errorf("mailer: geçersiz alıcı adresi: %q", to)
		}
	}
	if e.From == "" {
		return fmt.Errorf("mailer: from adresi gerekli")
	}
	if e.Subject == "" {
		return fmt.Errorf("mailer: subject gerekli")
	}
	if e.TextBody == "" && e.HTMLBody == "" {
		return fmt.Errorf("mailer: textBody veya htmlBody gerekli")
	}
	return nil
}
