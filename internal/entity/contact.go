package entity

import (
	"strconv"
	"strings"
)

// Contact status values.
const (
	StatusPending = "pending"
	StatusValid   = "valid"
	StatusInvalid = "invalid"
)

// Contact is one customer row of the contact spreadsheet.
type Contact struct {
	ID                string `json:"id"`
	ClientID          string `json:"clientId"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	AccountName       string `json:"accountName"`
	CountryName       string `json:"countryName"`
	Phone             string `json:"phone"`
	CountryMobileCode string `json:"countryMobileCode"`
	Mobile            string `json:"mobile"`
	Email             string `json:"email"`
	Language          string `json:"language"`
	AccountOwner      string `json:"accountOwner"`
	Status            string `json:"status"`
	LastValidated     string `json:"lastValidated,omitempty"`
	Row               int    `json:"row"`
}

// ContactIDForRow returns the identifier used for the contact stored on row.
func ContactIDForRow(row int) string {
	return "customer-" + strconv.Itoa(row)
}

// Name joins first and last name.
func (c Contact) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// PhoneToValidate returns the mobile number when present, otherwise the phone column.
func (c Contact) PhoneToValidate() string {
	if mobile := strings.TrimSpace(c.Mobile); mobile != "" {
		return mobile
	}
	return strings.TrimSpace(c.Phone)
}
