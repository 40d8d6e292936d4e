// Package docket defines the docket number formats. Authority-issued numbers
// and provisional offline numbers are recognizably distinct so a reconciled
// transaction can never be mistaken for, or collide with, an authoritative
// docket.
package docket

import (
	"fmt"
	"strings"
)

const (
	authorityPrefix   = "WB"
	provisionalPrefix = "OFF"
)

// Format renders an authority-issued docket number, e.g. "WB-2026-000123".
// Sequences are per tenant and never reused; gaps are acceptable.
func Format(year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%06d", authorityPrefix, year, seq)
}

// Provisional renders an offline-issued number, e.g. "OFF-SITE7-00042".
// The local counter is site scoped and only unique within that site.
func Provisional(siteCode string, n int64) string {
	return fmt.Sprintf("%s-%s-%05d", provisionalPrefix, strings.ToUpper(strings.TrimSpace(siteCode)), n)
}

// IsProvisional reports whether a number carries the local-origin marker.
func IsProvisional(no string) bool {
	return strings.HasPrefix(strings.TrimSpace(no), provisionalPrefix+"-")
}

// IsAuthoritative reports whether a number was issued by the numbering
// authority.
func IsAuthoritative(no string) bool {
	return strings.HasPrefix(strings.TrimSpace(no), authorityPrefix+"-")
}
