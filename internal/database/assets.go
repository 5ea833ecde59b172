package database

import (
	"context"
	"errors"
	"katalog-mediow/internal/media"
	"katalog-mediow/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrOwnerNotFound = errors.New("owner user does not exist")

const assetWithOwnerColumns = `
	a.id, a.kind, a.title, a.description, a.full_description,
	a.stored_filename, a.owner_id, a.created_at,
	u.id, u.username
`

func scanAssetWithOwner(row pgx.Row) (*models.Asset, error) {
	var asset models.Asset
	var owner models.Owner

	err := row.Scan(
		&asset.ID,
		&asset.Kind,
		&asset.Title,
		&asset.Description,
		&asset.FullDescription,
		&asset.StoredFilename,
		&asset.OwnerID,
		&asset.CreatedAt,
		&owner.ID,
		&owner.Username,
	)
	if err != nil {
		return nil, err
	}

	asset.Owner = &owner
	return &asset, nil
}

func collectAssetsWithOwner(rows pgx.Rows) ([]models.Asset, error) {
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		asset, err := scanAssetWithOwner(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *asset)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if assets == nil {
		return []models.Asset{}, nil
	}

	return assets, nil
}

// ListPage returns one page ordered by ascending id plus the total count of
// all assets of the kind. The count is a separate query, not derived from
// the page length, so clients can compute "has more" on any page.
func (q *Queries) ListPage(ctx context.Context, kind models.Kind, limit, offset int) ([]models.Asset, int64, error) {
	query := `
		SELECT ` + assetWithOwnerColumns + `
		FROM assets a
		JOIN users u ON a.owner_id = u.id
		WHERE a.kind = $1
		ORDER BY a.id
		LIMIT $2 OFFSET $3
	`
	rows, err := q.db.Query(ctx, query, kind, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	assets, err := collectAssetsWithOwner(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.db.QueryRow(ctx, `SELECT count(*) FROM assets WHERE kind = $1`, kind).Scan(&total); err != nil {
		return nil, 0, err
	}

	return assets, total, nil
}

func (q *Queries) ListByOwner(ctx context.Context, kind models.Kind, ownerID int64) ([]models.Asset, error) {
	query := `
		SELECT ` + assetWithOwnerColumns + `
		FROM assets a
		JOIN users u ON a.owner_id = u.id
		WHERE a.kind = $1 AND a.owner_id = $2
		ORDER BY a.id
	`
	rows, err := q.db.Query(ctx, query, kind, ownerID)
	if err != nil {
		return nil, err
	}

	return collectAssetsWithOwner(rows)
}

func (q *Queries) GetByID(ctx context.Context, kind models.Kind, id int64) (*models.Asset, error) {
	query := `
		SELECT ` + assetWithOwnerColumns + `
		FROM assets a
		JOIN users u ON a.owner_id = u.id
		WHERE a.kind = $1 AND a.id = $2
	`
	asset, err := scanAssetWithOwner(q.db.QueryRow(ctx, query, kind, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return asset, nil
}

// GetManyByIDs returns the assets that exist; ids without a row are simply
// absent from the result.
func (q *Queries) GetManyByIDs(ctx context.Context, kind models.Kind, ids []int64) ([]models.Asset, error) {
	query := `
		SELECT ` + assetWithOwnerColumns + `
		FROM assets a
		JOIN users u ON a.owner_id = u.id
		WHERE a.kind = $1 AND a.id = ANY($2)
		ORDER BY a.id
	`
	rows, err := q.db.Query(ctx, query, kind, ids)
	if err != nil {
		return nil, err
	}

	return collectAssetsWithOwner(rows)
}

func (q *Queries) CreateAsset(ctx context.Context, kind models.Kind, arg media.CreateAssetParams) (*models.Asset, error) {
	if err := media.ValidateFields(arg.Fields); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO assets (kind, title, description, full_description, stored_filename, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, kind, title, description, full_description, stored_filename, owner_id, created_at
	`
	row := q.db.QueryRow(ctx, query,
		kind,
		arg.Fields.Title,
		arg.Fields.Description,
		arg.Fields.FullDescription,
		arg.StoredFilename,
		arg.OwnerID,
	)

	var asset models.Asset
	err := row.Scan(
		&asset.ID,
		&asset.Kind,
		&asset.Title,
		&asset.Description,
		&asset.FullDescription,
		&asset.StoredFilename,
		&asset.OwnerID,
		&asset.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}

	return &asset, nil
}

// UpdateAsset applies only the supplied fields; an update with no fields
// still returns the current row.
func (q *Queries) UpdateAsset(ctx context.Context, kind models.Kind, id int64, arg media.AssetUpdate) (*models.Asset, error) {
	query := `
		UPDATE assets
		SET title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    full_description = COALESCE($5, full_description)
		WHERE kind = $1 AND id = $2
		RETURNING id, kind, title, description, full_description, stored_filename, owner_id, created_at
	`
	row := q.db.QueryRow(ctx, query, kind, id, arg.Title, arg.Description, arg.FullDescription)

	var asset models.Asset
	err := row.Scan(
		&asset.ID,
		&asset.Kind,
		&asset.Title,
		&asset.Description,
		&asset.FullDescription,
		&asset.StoredFilename,
		&asset.OwnerID,
		&asset.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &asset, nil
}
