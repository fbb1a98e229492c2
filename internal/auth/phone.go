// Package auth implements the phone-number login surface and session tokens.
//
// A phone number is matched first against the group's admin contact, then
// against each member; first match wins. This is a membership lookup, not a
// credential check: anyone who knows a registered number can log in, which
// matches the trust model of a small savings group run by one administrator.
package auth

import (
	"errors"
	"strings"

	"chittrack/internal/core"
)

// ErrUnknownPhone is returned when a number matches neither the admin contact
// nor any member.
var ErrUnknownPhone = errors.New("phone number not recognized")

// Session identifies a logged-in caller.
type Session struct {
	Role  core.Role `json:"role"`
	Phone string    `json:"phone"`
	Name  string    `json:"name"`
}

// NormalizePhone strips every non-digit character so "98765-43210" and
// "98765 43210" match a stored "9876543210".
func NormalizePhone(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Login resolves a phone number against the snapshot's membership. The admin
// contact is checked before the member list.
func Login(snap core.Snapshot, phone string) (Session, error) {
	normalized := NormalizePhone(phone)
	if normalized == "" {
		return Session{}, ErrUnknownPhone
	}

	if normalized == NormalizePhone(snap.Config.AdminPhone) {
		return Session{Role: core.RoleAdmin, Phone: phone, Name: "Administrator"}, nil
	}

	for _, m := range snap.Members {
		if NormalizePhone(m.Phone) == normalized {
			return Session{Role: core.RoleMember, Phone: phone, Name: m.Name}, nil
		}
	}
	return Session{}, ErrUnknownPhone
}
