package middleware

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"
)

const (
	HeaderRequestID = "X-Request-ID"
	CtxKeyRequestID = "request_id"

	maxRequestIDLen = 64
)

// RequestID gelen X-Request-ID başlığını kabul eder (proxy zincirinde
// korelasyon için), yoksa üretir. Dışarıdan gelen değer loglara gireceği
// için uzunluk ve karakter seti sınırlanır.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := sanitizeRequestID(c.GetHeader(HeaderRequestID))
		if rid == "" {
			rid = newRequestID()
		}

		c.Set(CtxKeyRequestID, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)

		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(CtxKeyRequestID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func sanitizeRequestID(s string) string {
	if len(s) > maxRequestIDLen {
		return ""
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'a' && b <= 'z':
		case b >= 'A' && b <= 'Z':
		case b >= '0' && b <= '9':
		case b == '-' || b == '_':
		default:
			return ""
		}
	}
	return s
}

func newRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "rid_fallback"
	}
	return hex.EncodeToString(b)
}
