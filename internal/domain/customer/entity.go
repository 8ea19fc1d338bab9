// internal/domain/customer/entity.go
package customer

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrInvalidSection = errors.New("customer: invalid section")
)

// CompanyType buckets customers for pricing and navigation decisions.
type CompanyType string

const (
	CompanyGuest     CompanyType = "guest"
	CompanyRetail    CompanyType = "retail"
	CompanyTrade     CompanyType = "trade"
	CompanyWholesale CompanyType = "wholesale"
	CompanyEmployee  CompanyType = "employee"
)

// ParseCompanyType normalizes a raw company type, falling back to guest
// for unknown values.
func ParseCompanyType(s string) CompanyType {
	switch CompanyType(strings.ToLower(strings.TrimSpace(s))) {
	case CompanyRetail:
		return CompanyRetail
	case CompanyTrade:
		return CompanyTrade
	case CompanyWholesale:
		return CompanyWholesale
	case CompanyEmployee:
		return CompanyEmployee
	default:
		return CompanyGuest
	}
}

// NeedsAdditionalPriceCall reports whether pricing for this company type
// requires a follow-up call to other services.
func (t CompanyType) NeedsAdditionalPriceCall() bool {
	return t != CompanyGuest && t != CompanyRetail
}

// SessionIdentity is the authentication display state derived from the
// cached customer section.
type SessionIdentity struct {
	LoggedIn bool        `json:"loggedIn"`
	Company  CompanyType `json:"companyType"`
}

// Section is the cached "customer" partition of the remote session state.
type Section struct {
	Fullname    string `json:"fullname"`
	Firstname   string `json:"firstname"`
	CompanyType string `json:"companyType"`
}

// DecodeSection parses customer section bytes. Empty input yields a zero
// Section (anonymous visitor), not an error.
func DecodeSection(data []byte) (Section, error) {
	if len(data) == 0 {
		return Section{}, nil
	}
	var s Section
	if err := json.Unmarshal(data, &s); err != nil {
		return Section{}, ErrInvalidSection
	}
	return s, nil
}

// LoggedIn reports whether the section describes a registered, signed-in
// customer. The commerce backend only populates fullname for logged-in
// sessions.
func (s Section) LoggedIn() bool {
	return strings.TrimSpace(s.Fullname) != ""
}

// Company returns the normalized company type for the section.
func (s Section) Company() CompanyType {
	if !s.LoggedIn() {
		return CompanyGuest
	}
	return ParseCompanyType(s.CompanyType)
}

// Identity derives the display identity for the section.
func (s Section) Identity() SessionIdentity {
	return SessionIdentity{LoggedIn: s.LoggedIn(), Company: s.Company()}
}
