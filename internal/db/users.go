package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/formation-kit/internal/types"
)

// CreateUser inserts a user with a subscription tier and returns the new ID
func (db *DB) CreateUser(ctx context.Context, email, name string, tier types.Tier) (uuid.UUID, error) {
	if !tier.Valid() {
		return uuid.Nil, fmt.Errorf("invalid subscription tier: %q", tier)
	}
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, subscription_tier)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		strings.ToLower(strings.TrimSpace(email)), name, string(tier),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// UpdateSubscriptionTier changes a user's active tier
func (db *DB) UpdateSubscriptionTier(ctx context.Context, userID uuid.UUID, tier types.Tier) error {
	if !tier.Valid() {
		return fmt.Errorf("invalid subscription tier: %q", tier)
	}
	_, err := db.pool.Exec(ctx,
		`UPDATE users SET subscription_tier = $1, updated_at = NOW() WHERE id = $2`,
		string(tier), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription tier: %w", err)
	}
	return nil
}

// DeleteUser removes a user and, by cascade, their documents
func (db *DB) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// GetEntitlementContext reads the subscription tier and account creation time of a user
func (db *DB) GetEntitlementContext(ctx context.Context, userID uuid.UUID) (*types.EntitlementContext, error) {
	var (
		ec   types.EntitlementContext
		tier string
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, email, subscription_tier, created_at FROM users WHERE id = $1`,
		userID,
	).Scan(&ec.UserID, &ec.Email, &tier, &ec.AccountCreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get entitlement context: %w", err)
	}
	ec.Tier = types.Tier(tier)
	return &ec, nil
}
