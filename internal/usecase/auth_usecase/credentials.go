package auth

import (
	"net/mail"
	"strings"
)

const maxEmailLength = 120

// 前後の空白を落としてRFC5322の単一アドレスか確認
func normalizeEmail(raw string) (string, bool) {
	email := strings.TrimSpace(raw)
	if email == "" || len(email) > maxEmailLength {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	return email, true
}

// 辞書にある定番パスワードは拒否
var commonPasswords = map[string]struct{}{
	"password":     {},
	"password123":  {},
	"123456789012": {},
	"1234567890":   {},
	"qwertyuiop":   {},
	"letmein":      {},
	"admin123":     {},
	"rewards":      {},
	"rewards123":   {},
	"truckdriver":  {},
}

func checkPassword(pw string) error {
	if len(pw) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if _, ok := commonPasswords[strings.ToLower(strings.TrimSpace(pw))]; ok {
		return ErrWeakPassword
	}
	return nil
}
