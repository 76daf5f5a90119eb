package models

// Participant represents a registered entrant and the number allocated to
// them. Identity is whatever the caller presented at registration; it is
// never reassigned.
type Participant struct {
	Identity string `json:"identity"`
	Name     string `json:"name"`
	Number   int    `json:"number"`
}

// WinnerRecord is one entry of the append-only winner sequence.
type WinnerRecord struct {
	Identity string `json:"identity"`
	Name     string `json:"name"`
	Number   int    `json:"number"`
}

// Request types

type EnterRequest struct {
	Name string `json:"name"`
}

// Response types

type EnterResponse struct {
	Number int `json:"number"`
}

type ParticipantInfoResponse struct {
	Name   string `json:"name"`
	Number int    `json:"number"`
	Exists bool   `json:"exists"`
}

type IsWinnerResponse struct {
	Winner bool `json:"winner"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type AckResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
