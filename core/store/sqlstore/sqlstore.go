package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog-sync/core/identifier"
	"catalog-sync/core/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one registry row: a foreign identifier owned by a local id.
// The unique index enforces one owner per (kind, external id, source).
type Record struct {
	Seq        uint      `gorm:"primaryKey;autoIncrement"`
	Kind       string    `gorm:"size:32;not null;uniqueIndex:idx_registry_identity,priority:1;index:idx_registry_local,priority:1"`
	ExternalID string    `gorm:"size:255;not null;uniqueIndex:idx_registry_identity,priority:2"`
	Source     string    `gorm:"size:255;not null;uniqueIndex:idx_registry_identity,priority:3"`
	LocalID    uuid.UUID `gorm:"type:varchar(36);not null;index:idx_registry_local,priority:2"`
	IDType     string    `gorm:"size:16"`
	SourceType string    `gorm:"size:16"`
	CreatedAt  time.Time
}

func (Record) TableName() string { return "external_identifiers" }

// Models returns every model this package persists, in migration order.
func Models() []any {
	return []any{
		&store.OperatingUnit{},
		&store.Farm{},
		&store.Field{},
		&store.Crop{},
		&store.ManagementZone{},
		&Record{},
		&store.ImportRun{},
	}
}

// Store is a store.Store backed by GORM.
type Store struct {
	db       *gorm.DB
	registry *Registry
	runs     *RunLog
}

// New wraps db. Call Migrate before first use.
func New(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		registry: &Registry{db: db},
		runs:     &RunLog{db: db},
	}
}

// Migrate creates or updates the tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}
	return s.backfillNameFold(ctx)
}

// backfillNameFold fills name_fold for rows written before the column existed.
func (s *Store) backfillNameFold(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	for _, kind := range store.Kinds {
		m, _ := store.New(kind)
		var rows []struct {
			Seq  uint
			Name string
		}
		if err := db.Model(m).Select("seq", "name").Where("name_fold = ? AND name <> ?", "", "").Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to backfill %s names: %w", kind, err)
		}
		for _, r := range rows {
			if err := db.Model(m).Where("seq = ?", r.Seq).Update("name_fold", store.FoldName(r.Name)).Error; err != nil {
				return fmt.Errorf("failed to backfill %s names: %w", kind, err)
			}
		}
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, e store.Entity) (uuid.UUID, error) {
	if _, err := store.New(e.Kind()); err != nil {
		return uuid.Nil, err
	}
	id := uuid.New()
	e.SetLocalID(id)
	store.PrepareInsert(e)
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert %s: %w", e.Kind(), err)
	}
	return id, nil
}

func (s *Store) first(ctx context.Context, kind store.Kind, query func(*gorm.DB) *gorm.DB) (store.Entity, error) {
	m, err := store.New(kind)
	if err != nil {
		return nil, err
	}
	err = query(s.db.WithContext(ctx)).Order("seq").Take(m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", kind, err)
	}
	return m, nil
}

func (s *Store) FindByLocalID(ctx context.Context, kind store.Kind, id uuid.UUID) (store.Entity, error) {
	return s.first(ctx, kind, func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	})
}

func (s *Store) FindByExternalIdentifiers(ctx context.Context, kind store.Kind, ids []identifier.ExternalIdentifier) (store.Entity, error) {
	id, ok, err := s.registry.Lookup(ctx, kind, ids)
	if err != nil || !ok {
		return nil, err
	}
	return s.FindByLocalID(ctx, kind, id)
}

func (s *Store) FindByName(ctx context.Context, kind store.Kind, name string) (store.Entity, error) {
	return s.first(ctx, kind, func(db *gorm.DB) *gorm.DB {
		return db.Where("name_fold = ?", store.FoldName(name))
	})
}

type entityPtr[T any] interface {
	*T
	store.Entity
}

func list[T any, P entityPtr[T]](ctx context.Context, db *gorm.DB) ([]store.Entity, error) {
	var rows []T
	if err := db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]store.Entity, len(rows))
	for i := range rows {
		out[i] = P(&rows[i])
	}
	return out, nil
}

func (s *Store) List(ctx context.Context, kind store.Kind) ([]store.Entity, error) {
	var (
		out []store.Entity
		err error
	)
	switch kind {
	case store.KindOperatingUnit:
		out, err = list[store.OperatingUnit](ctx, s.db)
	case store.KindFarm:
		out, err = list[store.Farm](ctx, s.db)
	case store.KindField:
		out, err = list[store.Field](ctx, s.db)
	case store.KindCrop:
		out, err = list[store.Crop](ctx, s.db)
	case store.KindManagementZone:
		out, err = list[store.ManagementZone](ctx, s.db)
	default:
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	return out, nil
}

func (s *Store) Clear(ctx context.Context, kind store.Kind) error {
	m, err := store.New(kind)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", kind, err)
		}
		if err := tx.Where("kind = ?", string(kind)).Delete(&Record{}).Error; err != nil {
			return fmt.Errorf("failed to clear %s registry: %w", kind, err)
		}
		return nil
	})
}

func (s *Store) Registry() store.Registry { return s.registry }

func (s *Store) Runs() store.RunLog { return s.runs }

// Registry is a store.Registry backed by the external_identifiers table.
type Registry struct {
	db *gorm.DB
}

func (r *Registry) Record(ctx context.Context, kind store.Kind, localID uuid.UUID, ids []identifier.ExternalIdentifier) (int, error) {
	if _, err := store.New(kind); err != nil {
		return 0, err
	}
	added := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range identifier.Dedupe(ids) {
			rec := Record{
				Kind:       string(kind),
				ExternalID: id.ID,
				Source:     id.Source,
				LocalID:    localID,
				IDType:     string(id.IDType),
				SourceType: string(id.SourceType),
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
			if res.Error != nil {
				return res.Error
			}
			added += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record %s identifiers: %w", kind, err)
	}
	return added, nil
}

// pairCondition renders "(external_id = ? AND source = ?) OR ..." for ids.
func pairCondition(ids []identifier.ExternalIdentifier) (string, []any) {
	parts := make([]string, 0, len(ids))
	args := make([]any, 0, 2*len(ids))
	for _, id := range ids {
		parts = append(parts, "(external_id = ? AND source = ?)")
		args = append(args, id.ID, id.Source)
	}
	return strings.Join(parts, " OR "), args
}

func (r *Registry) Lookup(ctx context.Context, kind store.Kind, ids []identifier.ExternalIdentifier) (uuid.UUID, bool, error) {
	if _, err := store.New(kind); err != nil {
		return uuid.Nil, false, err
	}
	if len(ids) == 0 {
		return uuid.Nil, false, nil
	}

	cond, args := pairCondition(ids)
	owners := r.db.Model(&Record{}).Select("local_id").Where("kind = ?", string(kind)).Where(cond, args...)

	var rows []struct {
		LocalID  uuid.UUID
		FirstSeq uint
	}
	err := r.db.WithContext(ctx).Model(&Record{}).
		Select("local_id, MIN(seq) AS first_seq").
		Where("kind = ? AND local_id IN (?)", string(kind), owners).
		Group("local_id").
		Order("first_seq").
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to look up %s identifiers: %w", kind, err)
	}
	if len(rows) == 0 {
		return uuid.Nil, false, nil
	}
	return rows[0].LocalID, true, nil
}

func (r *Registry) Identifiers(ctx context.Context, kind store.Kind, localID uuid.UUID) ([]identifier.ExternalIdentifier, error) {
	var recs []Record
	err := r.db.WithContext(ctx).
		Where("kind = ? AND local_id = ?", string(kind), localID).
		Order("seq").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s identifiers: %w", kind, err)
	}
	out := make([]identifier.ExternalIdentifier, len(recs))
	for i, rec := range recs {
		out[i] = identifier.ExternalIdentifier{
			ID:         rec.ExternalID,
			IDType:     identifier.IDType(rec.IDType),
			Source:     rec.Source,
			SourceType: identifier.SourceType(rec.SourceType),
		}
	}
	return out, nil
}

// RunLog is a store.RunLog backed by the import_runs table.
type RunLog struct {
	db *gorm.DB
}

func (l *RunLog) Append(ctx context.Context, run *store.ImportRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if err := l.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to append import run: %w", err)
	}
	return nil
}

func (l *RunLog) Recent(ctx context.Context, limit int) ([]store.ImportRun, error) {
	var runs []store.ImportRun
	q := l.db.WithContext(ctx).Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	return runs, nil
}
