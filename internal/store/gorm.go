package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pitaka/internal/models"
	"pitaka/internal/pagination"
)

// gormStore implements LedgerStore on top of GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a LedgerStore backed by db.
func NewGormStore(db *gorm.DB) LedgerStore {
	return &gormStore{db: db}
}

// classify maps driver errors onto the store taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnavailable) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func (s *gormStore) GetAllowance(ctx context.Context, id string) (*models.Allowance, error) {
	var allowance models.Allowance
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&allowance).Error; err != nil {
		return nil, classify(err)
	}
	return &allowance, nil
}

func (s *gormStore) ListAllowances(ctx context.Context, userID string) ([]models.Allowance, error) {
	var allowances []models.Allowance
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC, created_at DESC").
		Find(&allowances).Error
	if err != nil {
		return nil, classify(err)
	}
	return allowances, nil
}

func (s *gormStore) CreateAllowance(ctx context.Context, allowance *models.Allowance) error {
	return classify(s.db.WithContext(ctx).Create(allowance).Error)
}

func (s *gormStore) UpdateAllowanceFunding(ctx context.Context, id string, newTotal, newLimit decimal.Decimal) error {
	res := s.db.WithContext(ctx).Model(&models.Allowance{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_amount":   newTotal,
			"spending_limit": newLimit,
		})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) ListEntries(ctx context.Context, allowanceID string) ([]models.Entry, error) {
	var entries []models.Entry
	err := s.db.WithContext(ctx).
		Where("allowance_id = ?", allowanceID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, classify(err)
	}
	return entries, nil
}

func (s *gormStore) QueryEntries(ctx context.Context, q EntryQuery, page pagination.PageRequest) ([]models.Entry, int64, error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Entry{}).Where("allowance_id = ?", q.AllowanceID)
	if q.Kind != nil {
		base = base.Where("kind = ?", *q.Kind)
	}
	if q.Category != "" {
		base = base.Where("category = ?", q.Category)
	}
	if q.FromDate != nil {
		base = base.Where("created_at >= ?", *q.FromDate)
	}
	if q.ToDate != nil {
		base = base.Where("created_at < ?", *q.ToDate)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}

	order := "created_at ASC, id ASC"
	if page.Descending() {
		order = "created_at DESC, id DESC"
	}

	var entries []models.Entry
	if err := base.Order(order).Scopes(pagination.Paginate(page)).Find(&entries).Error; err != nil {
		return nil, 0, classify(err)
	}
	return entries, total, nil
}

func (s *gormStore) AppendEntry(ctx context.Context, entry *models.Entry) error {
	return classify(s.db.WithContext(ctx).Create(entry).Error)
}

func (s *gormStore) ListGoalEntries(ctx context.Context, goalID string) ([]models.Entry, error) {
	var entries []models.Entry
	err := s.db.WithContext(ctx).
		Where("goal_id = ? AND kind IN ?", goalID, savingsKinds()).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, classify(err)
	}
	return entries, nil
}

func (s *gormStore) CreateGoal(ctx context.Context, goal *models.Goal) error {
	return classify(s.db.WithContext(ctx).Create(goal).Error)
}

func (s *gormStore) GetGoal(ctx context.Context, id string) (*models.Goal, error) {
	var goal models.Goal
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&goal).Error; err != nil {
		return nil, classify(err)
	}
	return &goal, nil
}

func (s *gormStore) ListGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	var goals []models.Goal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&goals).Error
	if err != nil {
		return nil, classify(err)
	}
	return goals, nil
}

// IncrementGoal adds amount to the goal's current amount. The sum is computed
// in decimal arithmetic rather than in SQL so every backend rounds alike.
func (s *gormStore) IncrementGoal(ctx context.Context, id string, amount decimal.Decimal) error {
	return s.Atomic(ctx, func(tx LedgerStore) error {
		db := tx.(*gormStore).db
		var goal models.Goal
		if err := db.Where("id = ?", id).First(&goal).Error; err != nil {
			return classify(err)
		}
		err := db.Model(&models.Goal{}).
			Where("id = ?", id).
			Update("current_amount", goal.CurrentAmount.Add(amount)).Error
		return classify(err)
	})
}

func (s *gormStore) DeleteGoal(ctx context.Context, id string) error {
	return s.Atomic(ctx, func(tx LedgerStore) error {
		db := tx.(*gormStore).db
		if err := db.Where("goal_id = ? AND kind IN ?", id, savingsKinds()).Delete(&models.Entry{}).Error; err != nil {
			return classify(err)
		}
		res := db.Where("id = ?", id).Delete(&models.Goal{})
		if res.Error != nil {
			return classify(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *gormStore) Atomic(ctx context.Context, fn func(LedgerStore) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&gormStore{db: tx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return classify(err)
}

func savingsKinds() []models.EntryKind {
	return []models.EntryKind{models.EntryKindAllowanceSavings, models.EntryKindAllocationSavings}
}
