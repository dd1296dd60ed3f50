package model

// Medicine is a catalog row keyed by the natural (name, strength, form) triple.
type Medicine struct {
	Base
	Name     string `json:"name" db:"name"`
	Strength string `json:"strength" db:"strength"`
	Form     string `json:"form" db:"form"`
	IsActive bool   `json:"is_active" db:"is_active"`
}
