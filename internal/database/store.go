package database

import (
	"context"
	"fmt"
	"katalog-mediow/internal/media"
	"katalog-mediow/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
	*Queries
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:    pool,
		Queries: New(pool),
	}
}

func (s *Store) ExecTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	q := New(tx)
	err = fn(q)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) GetPool() *pgxpool.Pool {
	return s.pool
}

// DeleteAssets deletes exactly the subset of ids that exists, inside one
// transaction. The rows are locked and ownership is verified again against
// the principal before the DELETE runs, so an ownership change between the
// caller's authorization check and the delete aborts the whole batch
// instead of removing a row the principal no longer owns.
func (s *Store) DeleteAssets(ctx context.Context, kind models.Kind, ids []int64, principal models.Principal) ([]media.DeletedAsset, error) {
	var deleted []media.DeletedAsset

	err := s.ExecTx(ctx, func(q *Queries) error {
		query := `
			SELECT id, owner_id, stored_filename
			FROM assets
			WHERE kind = $1 AND id = ANY($2)
			ORDER BY id
			FOR UPDATE
		`
		rows, err := q.db.Query(ctx, query, kind, ids)
		if err != nil {
			return err
		}
		defer rows.Close()

		var existingIDs []int64
		for rows.Next() {
			var d media.DeletedAsset
			var ownerID int64
			if err := rows.Scan(&d.ID, &ownerID, &d.StoredFilename); err != nil {
				return err
			}
			if !media.CanMutate(principal, ownerID) {
				return &media.ForbiddenError{AssetID: d.ID}
			}
			deleted = append(deleted, d)
			existingIDs = append(existingIDs, d.ID)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		if len(existingIDs) == 0 {
			return nil
		}

		_, err = q.db.Exec(ctx, `DELETE FROM assets WHERE kind = $1 AND id = ANY($2)`, kind, existingIDs)
		return err
	})

	if err != nil {
		return nil, err
	}

	if deleted == nil {
		return []media.DeletedAsset{}, nil
	}

	return deleted, nil
}

// OwnedFile identifies a stored file left behind by the user-deletion
// cascade, across both kinds.
type OwnedFile struct {
	Kind           models.Kind
	StoredFilename string
}

// DeleteUser removes the user and all their assets in one transaction, the
// assets first. It returns the stored filenames so the caller can remove
// the files after the commit, when the rows are authoritatively gone.
func (s *Store) DeleteUser(ctx context.Context, userID int64) ([]OwnedFile, error) {
	var files []OwnedFile

	err := s.ExecTx(ctx, func(q *Queries) error {
		rows, err := q.db.Query(ctx, `DELETE FROM assets WHERE owner_id = $1 RETURNING kind, stored_filename`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var f OwnedFile
			if err := rows.Scan(&f.Kind, &f.StoredFilename); err != nil {
				return err
			}
			files = append(files, f)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		res, err := q.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return ErrUserNotFound
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	if files == nil {
		return []OwnedFile{}, nil
	}

	return files, nil
}
