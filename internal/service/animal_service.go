package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pet-market/internal/domain"
	"pet-market/internal/repository"
)

var (
	// ErrAnimalNotFound is returned when the target listing does not exist.
	ErrAnimalNotFound = errors.New("animal not found")
	// ErrNotOwner is returned when the requester is known but did not create the listing.
	ErrNotOwner = errors.New("not the owner of this animal")
)

// AnimalUpdate enumerates the fields a listing update may change. Nil fields
// are left untouched; set fields are validated independently.
type AnimalUpdate struct {
	Name        *string
	Species     *domain.Species
	Breed       *string
	Age         *int
	Gender      *domain.Gender
	Description *string
	Price       *float64
	Color       *string
	Vaccinated  *bool
	Sterilized  *bool
	Location    *string
}

// AnimalService coordinates listing operations and enforces ownership on mutations.
type AnimalService interface {
	Create(ctx context.Context, animal *domain.Animal) (*domain.Animal, error)
	Get(ctx context.Context, id int64) (*domain.Animal, error)
	GetOwned(ctx context.Context, id, actorID int64) (*domain.Animal, error)
	List(ctx context.Context, filter repository.AnimalFilter) ([]domain.Animal, error)
	Update(ctx context.Context, id, actorID int64, update AnimalUpdate) (*domain.Animal, error)
	SetPhotoKey(ctx context.Context, id, actorID int64, key string) (*domain.Animal, error)
	Delete(ctx context.Context, id, actorID int64) (*domain.Animal, error)
}

type animalService struct {
	animals repository.AnimalRepository
}

func NewAnimalService(animals repository.AnimalRepository) AnimalService {
	return &animalService{animals: animals}
}

func (s *animalService) Create(ctx context.Context, animal *domain.Animal) (*domain.Animal, error) {
	if animal.AuthorID <= 0 {
		return nil, errors.New("author is required")
	}
	normalizeAnimal(animal)
	if err := validateAnimal(animal); err != nil {
		return nil, err
	}

	if _, err := s.animals.Create(ctx, animal); err != nil {
		return nil, err
	}
	return s.animals.Get(ctx, animal.ID)
}

func (s *animalService) Get(ctx context.Context, id int64) (*domain.Animal, error) {
	animal, err := s.animals.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAnimalNotFound
		}
		return nil, err
	}
	return animal, nil
}

func (s *animalService) List(ctx context.Context, filter repository.AnimalFilter) ([]domain.Animal, error) {
	return s.animals.List(ctx, filter)
}

func (s *animalService) Update(ctx context.Context, id, actorID int64, update AnimalUpdate) (*domain.Animal, error) {
	animal, err := s.GetOwned(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	applyUpdate(animal, update)
	normalizeAnimal(animal)
	if err := validateAnimal(animal); err != nil {
		return nil, err
	}

	if err := s.animals.Update(ctx, animal); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAnimalNotFound
		}
		return nil, err
	}
	return s.animals.Get(ctx, id)
}

func (s *animalService) SetPhotoKey(ctx context.Context, id, actorID int64, key string) (*domain.Animal, error) {
	if _, err := s.GetOwned(ctx, id, actorID); err != nil {
		return nil, err
	}
	if err := s.animals.UpdatePhotoKey(ctx, id, key); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAnimalNotFound
		}
		return nil, err
	}
	return s.animals.Get(ctx, id)
}

func (s *animalService) Delete(ctx context.Context, id, actorID int64) (*domain.Animal, error) {
	animal, err := s.GetOwned(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.animals.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAnimalNotFound
		}
		return nil, err
	}
	return animal, nil
}

// GetOwned is the single ownership check: existence is confirmed first so a
// denial never leaks into a 404 and absence never leaks into a 403.
func (s *animalService) GetOwned(ctx context.Context, id, actorID int64) (*domain.Animal, error) {
	animal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if animal.AuthorID != actorID {
		return nil, ErrNotOwner
	}
	return animal, nil
}

func applyUpdate(animal *domain.Animal, update AnimalUpdate) {
	if update.Name != nil {
		animal.Name = *update.Name
	}
	if update.Species != nil {
		animal.Species = *update.Species
	}
	if update.Breed != nil {
		animal.Breed = *update.Breed
	}
	if update.Age != nil {
		animal.Age = *update.Age
	}
	if update.Gender != nil {
		animal.Gender = *update.Gender
	}
	if update.Description != nil {
		animal.Description = *update.Description
	}
	if update.Price != nil {
		animal.Price = *update.Price
	}
	if update.Color != nil {
		animal.Color = *update.Color
	}
	if update.Vaccinated != nil {
		animal.Vaccinated = *update.Vaccinated
	}
	if update.Sterilized != nil {
		animal.Sterilized = *update.Sterilized
	}
	if update.Location != nil {
		animal.Location = *update.Location
	}
}

// normalizeAnimal trims surrounding whitespace from the free-text fields, so
// a whitespace-only value counts as missing.
func normalizeAnimal(animal *domain.Animal) {
	animal.Name = strings.TrimSpace(animal.Name)
	animal.Breed = strings.TrimSpace(animal.Breed)
	animal.Description = strings.TrimSpace(animal.Description)
	animal.Color = strings.TrimSpace(animal.Color)
	animal.Location = strings.TrimSpace(animal.Location)
}

func validateAnimal(animal *domain.Animal) error {
	if animal.Name == "" || len(animal.Name) > 50 {
		return fmt.Errorf("%w: name is required and must be at most 50 characters", ErrValidation)
	}
	if animal.Species != domain.SpeciesDog && animal.Species != domain.SpeciesCat {
		return fmt.Errorf("%w: species must be %q or %q", ErrValidation, domain.SpeciesDog, domain.SpeciesCat)
	}
	if animal.Breed == "" || len(animal.Breed) > 50 {
		return fmt.Errorf("%w: breed is required and must be at most 50 characters", ErrValidation)
	}
	if animal.Age < 0 || animal.Age > 25 {
		return fmt.Errorf("%w: age must be between 0 and 25", ErrValidation)
	}
	if animal.Gender != domain.GenderMale && animal.Gender != domain.GenderFemale {
		return fmt.Errorf("%w: gender must be %q or %q", ErrValidation, domain.GenderMale, domain.GenderFemale)
	}
	if animal.Description == "" || len(animal.Description) > 1000 {
		return fmt.Errorf("%w: description is required and must be at most 1000 characters", ErrValidation)
	}
	if animal.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if animal.Color == "" {
		return fmt.Errorf("%w: color is required", ErrValidation)
	}
	if animal.Location == "" {
		return fmt.Errorf("%w: location is required", ErrValidation)
	}
	return nil
}
