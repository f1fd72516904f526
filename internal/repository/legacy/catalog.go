package legacy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	gocache "github.com/patrickmn/go-cache"

	"github.com/unilib/portal-api/internal/model"
	"github.com/unilib/portal-api/internal/repository"
)

const (
	cacheTTL     = 30 * time.Second
	cacheCleanup = 5 * time.Minute
)

// catalogGateway reads the legacy physical catalog over its own pool.
// Copy rows are read-mostly, so lookups go through a short-TTL cache;
// status writes invalidate the cached row.
type catalogGateway struct {
	db    *sqlx.DB
	cache *gocache.Cache
}

func NewCatalogGateway(db *sqlx.DB) repository.CatalogGateway {
	return &catalogGateway{
		db:    db,
		cache: gocache.New(cacheTTL, cacheCleanup),
	}
}

func cacheKey(legacyItemID int64) string {
	return fmt.Sprintf("copy:%d", legacyItemID)
}

// copyRow is the raw join result. The copy columns come from a LEFT
// JOIN and are NULL for items that never had a physical copy.
type copyRow struct {
	ItemID     int64          `db:"item_id"`
	Title      string         `db:"title"`
	Barcode    sql.NullString `db:"barcode"`
	StatusCode sql.NullString `db:"status_code"`
}

func (g *catalogGateway) FindByID(ctx context.Context, legacyItemID int64) (*model.CatalogCopyRef, error) {
	if cached, ok := g.cache.Get(cacheKey(legacyItemID)); ok {
		ref := cached.(model.CatalogCopyRef)
		return &ref, nil
	}

	query := `
		SELECT i.item_id, i.title, c.barcode, c.status_code
		FROM catalog_items i
		LEFT JOIN catalog_copies c ON c.item_id = i.item_id
		WHERE i.item_id = ?
		LIMIT 1
	`
	var row copyRow
	err := g.db.GetContext(ctx, &row, query, legacyItemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve legacy item: %w", err)
	}

	ref := model.CatalogCopyRef{
		LegacyItemID: row.ItemID,
		Title:        row.Title,
		Barcode:      row.Barcode.String,
		StatusCode:   row.StatusCode.String,
	}
	ref.Availability = model.AvailabilityFromCode(ref.StatusCode)
	g.cache.Set(cacheKey(legacyItemID), ref, cacheTTL)
	return &ref, nil
}

func (g *catalogGateway) UpdateCopyStatus(ctx context.Context, legacyItemID int64, barcode, statusCode string) error {
	query := `UPDATE catalog_copies SET status_code = ? WHERE item_id = ?`
	args := []interface{}{statusCode, legacyItemID}

	if barcode != "" {
		query += " AND barcode = ?"
		args = append(args, barcode)
	}

	result, err := g.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update copy status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no copy matched item %d", legacyItemID)
	}

	g.cache.Delete(cacheKey(legacyItemID))
	return nil
}
