package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mess-ledger/backend/internal/types"
	"github.com/mess-ledger/backend/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence the ledger works on.
type Store interface {
	// ActiveMembers returns the roster: all active members ordered by name.
	ActiveMembers(ctx context.Context) ([]models.Member, error)

	// Members returns all members ordered by name, optionally filtered by their active flag.
	Members(ctx context.Context, active *bool) ([]models.Member, error)
	Member(ctx context.Context, id uuid.UUID) (models.Member, error)
	CreateMember(ctx context.Context, member *models.Member) error
	UpdateMember(ctx context.Context, member *models.Member, fields []string) error

	// DeleteMember deletes the member together with all of their records.
	DeleteMember(ctx context.Context, id uuid.UUID) error

	// Records returns all records of the store in the range ordered by date.
	Records(ctx context.Context, kind models.Kind, r types.DateRange) ([]models.Entry, error)

	// MemberRecords returns the records of one member in the range ordered by date.
	MemberRecords(ctx context.Context, kind models.Kind, memberID uuid.UUID, r types.DateRange) ([]models.Entry, error)

	Record(ctx context.Context, kind models.Kind, id uuid.UUID) (models.Entry, error)

	// Upsert creates the record for the member and date or replaces the
	// quantity and description of the existing one.
	Upsert(ctx context.Context, kind models.Kind, e models.Entry) (models.Entry, error)

	// UpsertMany upserts all records in one transaction. Either all of them are
	// stored or none is.
	UpsertMany(ctx context.Context, kind models.Kind, entries []models.Entry) error

	// Update overwrites all fields of the record with the ID of e.
	Update(ctx context.Context, kind models.Kind, e models.Entry) (models.Entry, error)

	Delete(ctx context.Context, kind models.Kind, id uuid.UUID) error
}

// GormStore implements Store on a gorm database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore returns a Store for the database.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ActiveMembers(ctx context.Context) ([]models.Member, error) {
	active := true
	return s.Members(ctx, &active)
}

func (s *GormStore) Members(ctx context.Context, active *bool) ([]models.Member, error) {
	query := s.db.WithContext(ctx).Order("name ASC")
	if active != nil {
		query = query.Where("active = ?", *active)
	}

	var members []models.Member
	err := query.Find(&members).Error
	if err != nil {
		return nil, err
	}

	return members, nil
}

func (s *GormStore) Member(ctx context.Context, id uuid.UUID) (models.Member, error) {
	var member models.Member
	err := s.db.WithContext(ctx).First(&member, "id = ?", id).Error
	return member, err
}

func (s *GormStore) CreateMember(ctx context.Context, member *models.Member) error {
	return s.db.WithContext(ctx).Create(member).Error
}

func (s *GormStore) UpdateMember(ctx context.Context, member *models.Member, fields []string) error {
	if len(fields) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Model(member).Select(fields).Updates(member).Error
}

func (s *GormStore) DeleteMember(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, kind := range models.Kinds {
			err := tx.Table(kind.Table()).Where("member_id = ?", id).Delete(&models.Entry{}).Error
			if err != nil {
				return err
			}
		}

		result := tx.Delete(&models.Member{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return fmt.Errorf("%w member matching your query", models.ErrResourceNotFound)
		}
		return nil
	})
}

func (s *GormStore) Records(ctx context.Context, kind models.Kind, r types.DateRange) ([]models.Entry, error) {
	var entries []models.Entry
	err := s.db.WithContext(ctx).
		Table(kind.Table()).
		Where("date >= ? AND date <= ?", r.Start.Time(), r.End.Time()).
		Order("date ASC, created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (s *GormStore) MemberRecords(ctx context.Context, kind models.Kind, memberID uuid.UUID, r types.DateRange) ([]models.Entry, error) {
	var entries []models.Entry
	err := s.db.WithContext(ctx).
		Table(kind.Table()).
		Where("member_id = ? AND date >= ? AND date <= ?", memberID, r.Start.Time(), r.End.Time()).
		Order("date ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (s *GormStore) Record(ctx context.Context, kind models.Kind, id uuid.UUID) (models.Entry, error) {
	var entry models.Entry
	err := s.db.WithContext(ctx).Table(kind.Table()).First(&entry, "id = ?", id).Error
	return entry, err
}

func (s *GormStore) Upsert(ctx context.Context, kind models.Kind, e models.Entry) (models.Entry, error) {
	db := s.db.WithContext(ctx)
	if err := upsert(db, kind, e); err != nil {
		return models.Entry{}, err
	}

	// On conflict, the existing row keeps its ID
	var entry models.Entry
	err := db.
		Table(kind.Table()).
		Where("member_id = ? AND date = ?", e.MemberID, types.DateOf(e.Date).Time()).
		First(&entry).Error
	return entry, err
}

func (s *GormStore) UpsertMany(ctx context.Context, kind models.Kind, entries []models.Entry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			if err := upsert(tx, kind, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsert(db *gorm.DB, kind models.Kind, e models.Entry) error {
	columns := []string{"quantity", "updated_at"}
	if kind.HasDescription() {
		columns = append(columns, "description")
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(kind.Model(e)).Error
}

func (s *GormStore) Update(ctx context.Context, kind models.Kind, e models.Entry) (models.Entry, error) {
	updates := map[string]any{
		"member_id":  e.MemberID,
		"date":       types.DateOf(e.Date).Time(),
		"quantity":   e.Quantity,
		"updated_at": time.Now().UTC(),
	}
	if kind.HasDescription() {
		updates["description"] = e.Description
	}

	result := s.db.WithContext(ctx).Table(kind.Table()).Where("id = ?", e.ID).Updates(updates)
	if result.Error != nil {
		return models.Entry{}, result.Error
	}

	if result.RowsAffected == 0 {
		return models.Entry{}, fmt.Errorf("%w %s matching your query", models.ErrResourceNotFound, kind.Label())
	}

	return s.Record(ctx, kind, e.ID)
}

func (s *GormStore) Delete(ctx context.Context, kind models.Kind, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Table(kind.Table()).Where("id = ?", id).Delete(&models.Entry{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w %s matching your query", models.ErrResourceNotFound, kind.Label())
	}
	return nil
}
