// Package postgresrepo persists the ledger in Postgres: one row per order and
// review, an append-only order_changes table and a single-row treasury table.
// Each commit runs in one transaction so a crash never leaves a transition
// half applied.
package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shipledger/ledger/internal/dal/interfaces/iledgerrepo"
	"github.com/shipledger/ledger/internal/service/models/identity"
	"github.com/shipledger/ledger/internal/service/models/order"
	"github.com/shipledger/ledger/internal/service/models/orderchange"
	"github.com/shipledger/ledger/internal/service/models/review"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// OrderDal represents the order data access layer model.
type OrderDal struct {
	ID           int64  `db:"id"`
	Sender       string `db:"sender"`
	Recipient    string `db:"recipient"`
	DistanceKm   int64  `db:"distance_km"`
	CargoType    string `db:"cargo_type"`
	Price        int64  `db:"price"`
	Escrowed     int64  `db:"escrowed"`
	Status       string `db:"status"`
	DeliveryDate int64  `db:"delivery_date"`
	CreatedAt    int64  `db:"created_at"`
	PaidAt       int64  `db:"paid_at"`
	CompletedAt  int64  `db:"completed_at"`
	CancelledAt  int64  `db:"cancelled_at"`
}

// ToModel converts OrderDal to the service layer Order model.
func (d *OrderDal) ToModel() order.Order {
	return order.Order{
		ID:           uint64(d.ID),
		Sender:       identity.Address(d.Sender),
		Recipient:    identity.Address(d.Recipient),
		DistanceKm:   uint64(d.DistanceKm),
		CargoType:    d.CargoType,
		Price:        uint64(d.Price),
		Escrowed:     uint64(d.Escrowed),
		Status:       order.Status(d.Status),
		DeliveryDate: d.DeliveryDate,
		CreatedAt:    d.CreatedAt,
		PaidAt:       d.PaidAt,
		CompletedAt:  d.CompletedAt,
		CancelledAt:  d.CancelledAt,
	}
}

// OrderDalFromModel converts the service layer Order model to OrderDal.
func OrderDalFromModel(o *order.Order) *OrderDal {
	return &OrderDal{
		ID:           int64(o.ID),
		Sender:       o.Sender.String(),
		Recipient:    o.Recipient.String(),
		DistanceKm:   int64(o.DistanceKm),
		CargoType:    o.CargoType,
		Price:        int64(o.Price),
		Escrowed:     int64(o.Escrowed),
		Status:       o.Status.String(),
		DeliveryDate: o.DeliveryDate,
		CreatedAt:    o.CreatedAt,
		PaidAt:       o.PaidAt,
		CompletedAt:  o.CompletedAt,
		CancelledAt:  o.CancelledAt,
	}
}

// Repository is the Postgres-backed ledger repository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository over the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Persist writes one commit in a single transaction.
func (r *Repository) Persist(ctx context.Context, c iledgerrepo.Commit) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin commit transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if c.Order != nil {
		if err := upsertOrder(ctx, tx, c.Order); err != nil {
			return err
		}
	}
	if c.Change != nil {
		if err := insertChange(ctx, tx, c.Change); err != nil {
			return err
		}
	}
	if c.Review != nil {
		if err := insertReview(ctx, tx, c.Review); err != nil {
			return err
		}
	}
	if c.TreasuryBalance != nil {
		if err := setTreasuryBalance(ctx, tx, *c.TreasuryBalance); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func upsertOrder(ctx context.Context, tx pgx.Tx, o *order.Order) error {
	dal := OrderDalFromModel(o)

	sql, args, err := builder.
		Insert("orders").
		Columns(
			"id", "sender", "recipient", "distance_km", "cargo_type",
			"price", "escrowed", "status", "delivery_date",
			"created_at", "paid_at", "completed_at", "cancelled_at",
		).
		Values(
			dal.ID, dal.Sender, dal.Recipient, dal.DistanceKm, dal.CargoType,
			dal.Price, dal.Escrowed, dal.Status, dal.DeliveryDate,
			dal.CreatedAt, dal.PaidAt, dal.CompletedAt, dal.CancelledAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			escrowed = EXCLUDED.escrowed,
			status = EXCLUDED.status,
			delivery_date = EXCLUDED.delivery_date,
			paid_at = EXCLUDED.paid_at,
			completed_at = EXCLUDED.completed_at,
			cancelled_at = EXCLUDED.cancelled_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build order upsert: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert order %d: %w", o.ID, err)
	}
	return nil
}

func insertChange(ctx context.Context, tx pgx.Tx, ch *orderchange.Change) error {
	sql, args, err := builder.
		Insert("order_changes").
		Columns("order_id", "change_type", "change_ts", "details").
		Values(int64(ch.OrderID), ch.Type.String(), ch.Timestamp, ch.Details).
		ToSql()
	if err != nil {
		return fmt.Errorf("build change insert: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert change for order %d: %w", ch.OrderID, err)
	}
	return nil
}

func insertReview(ctx context.Context, tx pgx.Tx, rev *review.Review) error {
	sql, args, err := builder.
		Insert("reviews").
		Columns("id", "order_id", "reviewer", "comment", "rating", "created_at").
		Values(int64(rev.ID), int64(rev.OrderID), rev.Reviewer.String(), rev.Comment, int16(rev.Rating), rev.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build review insert: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert review %d: %w", rev.ID, err)
	}
	return nil
}

func setTreasuryBalance(ctx context.Context, tx pgx.Tx, balance uint64) error {
	sql, args, err := builder.
		Update("treasury").
		Set("balance", int64(balance)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build treasury update: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("set treasury balance: %w", err)
	}
	return nil
}

// Load reads the full ledger state for startup recovery.
func (r *Repository) Load(ctx context.Context) (*iledgerrepo.State, error) {
	state := &iledgerrepo.State{}

	if err := r.loadOrders(ctx, state); err != nil {
		return nil, err
	}
	if err := r.loadReviews(ctx, state); err != nil {
		return nil, err
	}
	if err := r.loadChanges(ctx, state); err != nil {
		return nil, err
	}
	if err := r.loadTreasury(ctx, state); err != nil {
		return nil, err
	}

	return state, nil
}

func (r *Repository) loadOrders(ctx context.Context, state *iledgerrepo.State) error {
	sql, _, err := builder.
		Select(
			"id", "sender", "recipient", "distance_km", "cargo_type",
			"price", "escrowed", "status", "delivery_date",
			"created_at", "paid_at", "completed_at", "cancelled_at",
		).
		From("orders").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build orders query: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		dal := OrderDal{}
		if err := rows.Scan(
			&dal.ID, &dal.Sender, &dal.Recipient, &dal.DistanceKm, &dal.CargoType,
			&dal.Price, &dal.Escrowed, &dal.Status, &dal.DeliveryDate,
			&dal.CreatedAt, &dal.PaidAt, &dal.CompletedAt, &dal.CancelledAt,
		); err != nil {
			return fmt.Errorf("scan order: %w", err)
		}
		state.Orders = append(state.Orders, dal.ToModel())
	}
	return rows.Err()
}

func (r *Repository) loadReviews(ctx context.Context, state *iledgerrepo.State) error {
	sql, _, err := builder.
		Select("id", "order_id", "reviewer", "comment", "rating", "created_at").
		From("reviews").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build reviews query: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, orderID, createdAt int64
			reviewer, comment      string
			ratingValue            int16
		)
		if err := rows.Scan(&id, &orderID, &reviewer, &comment, &ratingValue, &createdAt); err != nil {
			return fmt.Errorf("scan review: %w", err)
		}
		state.Reviews = append(state.Reviews, review.Review{
			ID:        uint64(id),
			OrderID:   uint64(orderID),
			Reviewer:  identity.Address(reviewer),
			Comment:   comment,
			Rating:    uint8(ratingValue),
			CreatedAt: createdAt,
		})
	}
	return rows.Err()
}

func (r *Repository) loadChanges(ctx context.Context, state *iledgerrepo.State) error {
	// The serial primary key preserves commit order across the whole log.
	sql, _, err := builder.
		Select("order_id", "change_type", "change_ts", "details").
		From("order_changes").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build changes query: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return fmt.Errorf("query order changes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID, ts         int64
			changeType, details string
		)
		if err := rows.Scan(&orderID, &changeType, &ts, &details); err != nil {
			return fmt.Errorf("scan order change: %w", err)
		}
		state.Changes = append(state.Changes, orderchange.Change{
			OrderID:   uint64(orderID),
			Type:      orderchange.ChangeType(changeType),
			Timestamp: ts,
			Details:   details,
		})
	}
	return rows.Err()
}

func (r *Repository) loadTreasury(ctx context.Context, state *iledgerrepo.State) error {
	sql, _, err := builder.Select("balance").From("treasury").ToSql()
	if err != nil {
		return fmt.Errorf("build treasury query: %w", err)
	}

	var balance int64
	if err := r.pool.QueryRow(ctx, sql).Scan(&balance); err != nil {
		if err == pgx.ErrNoRows {
			return nil
		}
		return fmt.Errorf("query treasury balance: %w", err)
	}
	state.TreasuryBalance = uint64(balance)

	return nil
}

// Close is a no-op; the pool is owned by the postgres client.
func (r *Repository) Close() error {
	return nil
}
