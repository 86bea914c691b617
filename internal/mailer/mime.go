package mailer

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime"
	"strings"
	"time"
)

func formatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	// RFC2047: Türkçe karakterli gönderen adları için
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", name), addr)
}

func randomToken() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func writeBodyPart(b *strings.Builder, contentType, body string) {
	b.WriteString("Content-Type: " + contentType + "; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 7bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\r\n")
	}
}

// buildMIMEMessage Email'i ham SMTP DATA içeriğine çevirir. Email.Validate
// çağıranın sorumluluğundadır.
func buildMIMEMessage(e Email, messageIDDomain string) string {
	var b strings.Builder

	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString(fmt.Sprintf("Message-ID: <%s@%s>\r\n", randomToken(), messageIDDomain))
	b.WriteString("From: " + formatAddress(e.FromName, e.From) + "\r\n")
	b.WriteString("To: " + strings.Join(e.To, ", ") + "\r\n")
	if e.ReplyTo != "" {
		b.WriteString("Reply-To: " + e.ReplyTo + "\r\n")
	}
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", e.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case e.TextBody != "" && e.HTMLBody != "":
		boundary := "alt-" + randomToken()
		b.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n", boundary))
		b.WriteString("\r\n")
		b.WriteString("--" + boundary + "\r\n")
		writeBodyPart(&b, "text/plain", e.TextBody)
		b.WriteString("--" + boundary + "\r\n")
		writeBodyPart(&b, "text/html", e.HTMLBody)
		b.WriteString("--" + boundary + "--\r\n")
	case e.HTMLBody != "":
		writeBodyPart(&b, "text/html", e.HTMLBody)
	default:
		writeBodyPart(&b, "text/plain", e.TextBody)
	}

	return b.String()
}
