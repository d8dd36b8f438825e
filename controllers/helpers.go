package controllers

// Created is the standard response for new items
type Created struct {
	ID string `json:"id"`
}

// Ingested is the standard response for document uploads
type Ingested struct {
	Received int   `json:"received"`
	Inserted int64 `json:"inserted"`
}
