package model

import "time"

// Contact is one CRM entry (person or company). All fields except the name
// are optional free text; scpi holds a " - " delimited list of product names
// and date_creation is free text, not a structured date.
type Contact struct {
	ID           int64     `json:"id"`
	Nom          string    `json:"nom"`
	Email        *string   `json:"email"`
	Telephone    *string   `json:"telephone"`
	Mobile       *string   `json:"mobile"`
	Adresse      *string   `json:"adresse"`
	Statut       *string   `json:"statut"`
	Consultant   *string   `json:"consultant"`
	Commentaires *string   `json:"commentaires"`
	DateCreation *string   `json:"date_creation"`
	SCPI         *string   `json:"scpi"`
	Marketing    *string   `json:"marketing"`
	Montant      *int64    `json:"montant"`
	CreatedAt    time.Time `json:"createdAt"`
}
