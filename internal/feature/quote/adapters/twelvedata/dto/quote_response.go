// Package dto defines data transfer objects for the Twelve Data API responses.
package dto

// Status is the envelope every Twelve Data response carries.
// On failure Status is "error" and only Code/Message are set.
type Status struct {
	Status  string `json:"status,omitempty"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ProfileResponse represents the JSON response from the Twelve Data /profile endpoint.
type ProfileResponse struct {
	Status
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// QuoteResponse represents the JSON response from the Twelve Data /quote endpoint.
// Numeric values arrive as strings.
type QuoteResponse struct {
	Status
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Open          string `json:"open"`
	High          string `json:"high"`
	Low           string `json:"low"`
	Close         string `json:"close"`
	Volume        string `json:"volume"`
	PreviousClose string `json:"previous_close"`
	FiftyTwoWeek  struct {
		High string `json:"high"`
		Low  string `json:"low"`
	} `json:"fifty_two_week"`
}
