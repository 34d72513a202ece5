package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pet-market/internal/domain"
	"pet-market/internal/repository"
)

const createAnimalsTable = `
CREATE TABLE IF NOT EXISTS animals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	species TEXT NOT NULL,
	breed TEXT NOT NULL,
	age INTEGER NOT NULL,
	gender TEXT NOT NULL,
	description TEXT NOT NULL,
	price REAL NOT NULL,
	color TEXT NOT NULL,
	vaccinated INTEGER NOT NULL DEFAULT 0,
	sterilized INTEGER NOT NULL DEFAULT 0,
	location TEXT NOT NULL,
	photo_key TEXT NOT NULL DEFAULT '',
	author_id INTEGER NOT NULL REFERENCES users(id),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const animalColumns = `
a.id, a.name, a.species, a.breed, a.age, a.gender, a.description, a.price,
a.color, a.vaccinated, a.sterilized, a.location, a.photo_key, a.author_id,
u.username, a.created_at, a.updated_at`

type AnimalRepository struct {
	db *sql.DB
}

func NewAnimalRepository(db *sql.DB) repository.AnimalRepository {
	return &AnimalRepository{db: db}
}

func (r *AnimalRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAnimalsTable); err != nil {
		return fmt.Errorf("create animals table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_animals_author ON animals(author_id)`); err != nil {
		return fmt.Errorf("create animals author index: %w", err)
	}
	return nil
}

func (r *AnimalRepository) Create(ctx context.Context, animal *domain.Animal) (int64, error) {
	now := time.Now().UTC()
	animal.CreatedAt = now
	animal.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO animals (name, species, breed, age, gender, description, price, color, vaccinated, sterilized, location, photo_key, author_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		animal.Name,
		animal.Species,
		animal.Breed,
		animal.Age,
		animal.Gender,
		animal.Description,
		animal.Price,
		animal.Color,
		animal.Vaccinated,
		animal.Sterilized,
		animal.Location,
		animal.PhotoKey,
		animal.AuthorID,
		animal.CreatedAt,
		animal.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert animal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("animal last insert id: %w", err)
	}
	animal.ID = id
	return id, nil
}

func (r *AnimalRepository) Get(ctx context.Context, id int64) (*domain.Animal, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+animalColumns+`
FROM animals a
JOIN users u ON u.id = a.author_id
WHERE a.id = ?`,
		id,
	)
	return scanAnimal(row)
}

func (r *AnimalRepository) List(ctx context.Context, filter repository.AnimalFilter) ([]domain.Animal, error) {
	query := `
SELECT ` + animalColumns + `
FROM animals a
JOIN users u ON u.id = a.author_id
WHERE 1 = 1`
	var args []any

	if filter.Species != "" {
		query += ` AND a.species = ?`
		args = append(args, filter.Species)
	}
	if filter.Breed != "" {
		query += ` AND a.breed LIKE ? COLLATE NOCASE`
		args = append(args, "%"+filter.Breed+"%")
	}
	if filter.Gender != "" {
		query += ` AND a.gender = ?`
		args = append(args, filter.Gender)
	}
	query += ` ORDER BY a.created_at DESC, a.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list animals: %w", err)
	}
	defer rows.Close()

	var animals []domain.Animal
	for rows.Next() {
		animal, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		animals = append(animals, *animal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate animals: %w", err)
	}
	return animals, nil
}

func (r *AnimalRepository) Update(ctx context.Context, animal *domain.Animal) error {
	animal.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
UPDATE animals
SET name = ?, species = ?, breed = ?, age = ?, gender = ?, description = ?,
	price = ?, color = ?, vaccinated = ?, sterilized = ?, location = ?, updated_at = ?
WHERE id = ?`,
		animal.Name,
		animal.Species,
		animal.Breed,
		animal.Age,
		animal.Gender,
		animal.Description,
		animal.Price,
		animal.Color,
		animal.Vaccinated,
		animal.Sterilized,
		animal.Location,
		animal.UpdatedAt,
		animal.ID,
	)
	if err != nil {
		return fmt.Errorf("update animal: %w", err)
	}
	return ensureAffected(res)
}

func (r *AnimalRepository) UpdatePhotoKey(ctx context.Context, id int64, key string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE animals SET photo_key = ?, updated_at = ? WHERE id = ?`,
		key, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update animal photo: %w", err)
	}
	return ensureAffected(res)
}

func (r *AnimalRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM animals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete animal: %w", err)
	}
	return ensureAffected(res)
}

func ensureAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanAnimal(row interface {
	Scan(dest ...any) error
}) (*domain.Animal, error) {
	var animal domain.Animal
	if err := row.Scan(
		&animal.ID,
		&animal.Name,
		&animal.Species,
		&animal.Breed,
		&animal.Age,
		&animal.Gender,
		&animal.Description,
		&animal.Price,
		&animal.Color,
		&animal.Vaccinated,
		&animal.Sterilized,
		&animal.Location,
		&animal.PhotoKey,
		&animal.AuthorID,
		&animal.AuthorName,
		&animal.CreatedAt,
		&animal.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan animal: %w", err)
	}
	return &animal, nil
}
