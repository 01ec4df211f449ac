package dto

// SingleValidationRequest asks for one contact's phone to be validated.
type SingleValidationRequest struct {
	CustomerID  string `json:"customerId" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
}

// BulkValidationRequest lists the contacts to validate.
type BulkValidationRequest struct {
	CustomerIDs []string `json:"customerIds" validate:"required"`
}

// PhoneSearchRequest carries contact-search criteria.
type PhoneSearchRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email" validate:"omitempty,email"`
	Company      string `json:"company"`
	Domain       string `json:"domain"`
	CurrentPhone string `json:"currentPhone"`
}
