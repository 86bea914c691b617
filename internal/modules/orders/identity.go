package orders

import "strings"

// Owner is the resolved attribution of an order: an account, or a guest
// identified by email. Guest orders are retrievable only via the exact
// (order number, email) pair; no account is created.
type Owner struct {
	UserID     *string
	GuestEmail *string
}

// ResolveOwner decides guest vs. registered attribution. When an account id
// is present the order belongs to it and the email is only kept inside the
// address snapshot. Guest emails are normalised to lower case so the later
// pair lookup is case-insensitive exact match.
func ResolveOwner(userID *string, email string) Owner {
	if userID != nil && *userID != "" {
		id := *userID
		return Owner{UserID: &id}
	}
	em := strings.ToLower(strings.TrimSpace(email))
	return Owner{GuestEmail: &em}
}

// guestEmailMatches compares a lookup email against the stored guest email.
// Kısmi ya da bulanık eşleşme yok; sadece büyük/küçük harf toleransı.
func guestEmailMatches(stored *string, email string) bool {
	if stored == nil {
		return false
	}
	return *stored == strings.ToLower(strings.TrimSpace(email))
}
