package validators

import (
	"net"
	"net/mail"
	"strings"
)

// IsEmailDomainValid checks that email is syntactically well-formed and that
// its domain resolves to either an MX or an A/AAAA record. Registration
// (auth_handler.go) uses this to reject typo'd or clearly non-deliverable
// addresses before a store's customer roster ever sees them.
func IsEmailDomainValid(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}

	at := strings.LastIndex(addr.Address, "@")
	if at < 0 || at == len(addr.Address)-1 {
		return false
	}
	domain := addr.Address[at+1:]

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}
	if ips, err := net.LookupIP(domain); err == nil && len(ips) > 0 {
		return true
	}
	return false
}
