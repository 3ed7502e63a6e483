package coupon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ConsultationService/pkg/psqlbuilder"
)

// Repository промокоды (только чтение и списание использований, управление - вне сервиса)
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByCode ищет промокод без учёта регистра. Внутри транзакции строка блокируется.
func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"code",
		"is_active",
		"valid_from",
		"valid_until",
		"usage_limit",
		"usage_count",
		"min_purchase_amount",
		"free_minutes",
		"created_at",
		"updated_at",
	).
		From("coupons").
		Where(squirrel.Expr("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))))

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCode - build select query: %v", ErrBuildQuery, err)
	}

	var (
		c                     domain.Coupon
		validFrom, validUntil sql.NullTime
		usageLimit            sql.NullInt64
		minPurchase           sql.NullFloat64
		freeMinutes           sql.NullInt64
		createdAt, updatedAt  sql.NullTime
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&c.ID,
		&c.Code,
		&c.IsActive,
		&validFrom,
		&validUntil,
		&usageLimit,
		&c.UsageCount,
		&minPurchase,
		&freeMinutes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("%w: GetByCode - scan: %v", execErr(err), err)
	}

	if validFrom.Valid {
		c.ValidFrom = &validFrom.Time
	}
	if validUntil.Valid {
		c.ValidUntil = &validUntil.Time
	}
	if usageLimit.Valid {
		limit := int(usageLimit.Int64)
		c.UsageLimit = &limit
	}
	if minPurchase.Valid {
		c.MinPurchaseAmount = &minPurchase.Float64
	}
	if freeMinutes.Valid {
		minutes := int(freeMinutes.Int64)
		c.FreeMinutes = &minutes
	}
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time

	return &c, nil
}

// IncrementUsage списывает одно использование, если лимит ещё не исчерпан
func (r *Repository) IncrementUsage(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("coupons").
		Set("usage_count", squirrel.Expr("usage_count + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Or{
			squirrel.Eq{"usage_limit": nil},
			squirrel.Expr("usage_count < usage_limit"),
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: IncrementUsage - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: IncrementUsage - execute update: %v", execErr(err), err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: IncrementUsage - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrUsageLimitReached
	}
	return nil
}

// ReleaseUsage возвращает использование, списанное для бронирования, которое не состоялось
func (r *Repository) ReleaseUsage(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("coupons").
		Set("usage_count", squirrel.Expr("usage_count - 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Gt{"usage_count": 0}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReleaseUsage - build update query: %v", ErrBuildQuery, err)
	}

	if _, err = executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReleaseUsage - execute update: %v", execErr(err), err)
	}
	return nil
}
