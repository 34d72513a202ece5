package repository

import (
	"context"

	"pet-market/internal/domain"
)

// AnimalFilter narrows List results by client-visible fields.
// Breed matches as a case-insensitive substring; the rest match exactly.
type AnimalFilter struct {
	Species domain.Species
	Breed   string
	Gender  domain.Gender
}

// AnimalRepository exposes persistence operations for adoption listings.
type AnimalRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, animal *domain.Animal) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Animal, error)
	List(ctx context.Context, filter AnimalFilter) ([]domain.Animal, error)
	Update(ctx context.Context, animal *domain.Animal) error
	UpdatePhotoKey(ctx context.Context, id int64, key string) error
	Delete(ctx context.Context, id int64) error
}
