package service

import (
	"context"
	"strings"
	"time"

	"pet-market/internal/domain"
	"pet-market/internal/repository"
)

// in-memory repositories used by the service tests

type fakeUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int64]*domain.User{}}
}

func (r *fakeUserRepo) Init(ctx context.Context) error { return nil }

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username || strings.EqualFold(existing.Email, user.Email) {
			return 0, repository.ErrDuplicate
		}
	}
	user.ID = r.nextID
	r.nextID++
	clone := *user
	r.users[user.ID] = &clone
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

type fakeAnimalRepo struct {
	nextID  int64
	animals map[int64]*domain.Animal
}

func newFakeAnimalRepo() *fakeAnimalRepo {
	return &fakeAnimalRepo{nextID: 1, animals: map[int64]*domain.Animal{}}
}

func (r *fakeAnimalRepo) Init(ctx context.Context) error { return nil }

func (r *fakeAnimalRepo) Create(ctx context.Context, animal *domain.Animal) (int64, error) {
	animal.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	animal.CreatedAt = now
	animal.UpdatedAt = now
	clone := *animal
	r.animals[animal.ID] = &clone
	return animal.ID, nil
}

func (r *fakeAnimalRepo) Get(ctx context.Context, id int64) (*domain.Animal, error) {
	animal, ok := r.animals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *animal
	return &clone, nil
}

func (r *fakeAnimalRepo) List(ctx context.Context, filter repository.AnimalFilter) ([]domain.Animal, error) {
	var animals []domain.Animal
	for _, animal := range r.animals {
		if filter.Species != "" && animal.Species != filter.Species {
			continue
		}
		if filter.Breed != "" && !strings.Contains(strings.ToLower(animal.Breed), strings.ToLower(filter.Breed)) {
			continue
		}
		if filter.Gender != "" && animal.Gender != filter.Gender {
			continue
		}
		animals = append(animals, *animal)
	}
	return animals, nil
}

func (r *fakeAnimalRepo) Update(ctx context.Context, animal *domain.Animal) error {
	if _, ok := r.animals[animal.ID]; !ok {
		return repository.ErrNotFound
	}
	animal.UpdatedAt = time.Now().UTC()
	clone := *animal
	r.animals[animal.ID] = &clone
	return nil
}

func (r *fakeAnimalRepo) UpdatePhotoKey(ctx context.Context, id int64, key string) error {
	animal, ok := r.animals[id]
	if !ok {
		return repository.ErrNotFound
	}
	animal.PhotoKey = key
	return nil
}

func (r *fakeAnimalRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.animals[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.animals, id)
	return nil
}
