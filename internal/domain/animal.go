package domain

import "time"

type Species string

const (
	SpeciesDog Species = "dog"
	SpeciesCat Species = "cat"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Animal represents an adoption listing published by a user.
type Animal struct {
	ID          int64
	Name        string
	Species     Species
	Breed       string
	Age         int
	Gender      Gender
	Description string
	Price       float64
	Color       string
	Vaccinated  bool
	Sterilized  bool
	Location    string
	PhotoKey    string
	AuthorID    int64
	AuthorName  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
