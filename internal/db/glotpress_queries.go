package db

import (
	"context"
	"fmt"
)

// ProjectRecord is one translation project.
type ProjectRecord struct {
	ID   int64
	Name string
	Slug string
}

// SetRecord is one translation set: a (project, locale) pair.
type SetRecord struct {
	ID        int64
	ProjectID int64
	Name      string
	Locale    string
}

// TranslationEntry is one original string queued for translation, carrying the
// id of its persisted translation row when one already exists.
type TranslationEntry struct {
	OriginalID        int64
	Singular          string
	TranslatorComment string
	TranslationID     int64 // 0 when no persisted translation row exists
}

// TranslationRecord is one persisted translation row.
type TranslationRecord struct {
	ID               int64
	OriginalID       int64
	TranslationSetID int64
	Translation0     string
	Status           string
}

// CreateTranslationParams describes a new translation row.
type CreateTranslationParams struct {
	OriginalID       int64
	TranslationSetID int64
	Translation0     string
	Status           string
}

// GlotPressStore reads and writes projects, sets, originals and translations.
type GlotPressStore struct {
	pool *Pool
}

func NewGlotPressStore(pool *Pool) *GlotPressStore {
	return &GlotPressStore{pool: pool}
}

func (s *GlotPressStore) GetProject(ctx context.Context, projectID int64) (ProjectRecord, error) {
	const q = `
SELECT p.id, p.name, p.slug
FROM glossa.projects p
WHERE p.id = $1
`
	var row ProjectRecord
	if err := s.pool.QueryRow(ctx, q, projectID).Scan(&row.ID, &row.Name, &row.Slug); err != nil {
		if IsNoRows(err) {
			return ProjectRecord{}, ErrNoRows
		}
		return ProjectRecord{}, fmt.Errorf("query project: %w", err)
	}
	return row, nil
}

func (s *GlotPressStore) GetSet(ctx context.Context, setID int64) (SetRecord, error) {
	const q = `
SELECT ts.id, ts.project_id, ts.name, ts.locale
FROM glossa.translation_sets ts
WHERE ts.id = $1
`
	var row SetRecord
	if err := s.pool.QueryRow(ctx, q, setID).Scan(&row.ID, &row.ProjectID, &row.Name, &row.Locale); err != nil {
		if IsNoRows(err) {
			return SetRecord{}, ErrNoRows
		}
		return SetRecord{}, fmt.Errorf("query translation set: %w", err)
	}
	return row, nil
}

// ForTranslation fetches one page of originals that have no current translation
// in the given set, together with the total number of matching rows. Pages are
// 1-based. An original with a non-current translation row carries that row's id
// so callers can update it in place.
func (s *GlotPressStore) ForTranslation(
	ctx context.Context,
	projectID, setID int64,
	page, pageSize int,
) ([]TranslationEntry, int64, error) {
	if page < 1 {
		return nil, 0, fmt.Errorf("page must be >= 1")
	}
	if pageSize < 1 {
		return nil, 0, fmt.Errorf("page size must be >= 1")
	}

	const countQuery = `
SELECT COUNT(*)
FROM glossa.originals o
WHERE o.project_id = $1
  AND NOT EXISTS (
	SELECT 1
	FROM glossa.translations t
	WHERE t.original_id = o.id
	  AND t.translation_set_id = $2
	  AND t.status = 'current'
  )
`
	var foundRows int64
	if err := s.pool.QueryRow(ctx, countQuery, projectID, setID).Scan(&foundRows); err != nil {
		return nil, 0, fmt.Errorf("count untranslated originals: %w", err)
	}

	offset := (page - 1) * pageSize

	// An original can carry several non-current rows in a set (waiting plus a
	// rejected one); DISTINCT ON keeps exactly one entry per original, pinned
	// to the newest row so the in-place update target is deterministic.
	const rowsQuery = `
SELECT DISTINCT ON (o.id)
	o.id,
	o.singular,
	COALESCE(o.translator_comment, ''),
	COALESCE(t.id, 0)
FROM glossa.originals o
LEFT JOIN glossa.translations t
	ON t.original_id = o.id
	AND t.translation_set_id = $2
	AND t.status <> 'current'
WHERE o.project_id = $1
  AND NOT EXISTS (
	SELECT 1
	FROM glossa.translations cur
	WHERE cur.original_id = o.id
	  AND cur.translation_set_id = $2
	  AND cur.status = 'current'
  )
ORDER BY o.id, t.id DESC NULLS LAST
LIMIT $3
OFFSET $4
`

	rows, err := s.pool.Query(ctx, rowsQuery, projectID, setID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query untranslated originals: %w", err)
	}
	defer rows.Close()

	entries := make([]TranslationEntry, 0, pageSize)
	for rows.Next() {
		var entry TranslationEntry
		if err := rows.Scan(
			&entry.OriginalID,
			&entry.Singular,
			&entry.TranslatorComment,
			&entry.TranslationID,
		); err != nil {
			return nil, 0, fmt.Errorf("scan untranslated original: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate untranslated originals: %w", err)
	}

	return entries, foundRows, nil
}

func (s *GlotPressStore) GetTranslation(ctx context.Context, translationID int64) (TranslationRecord, error) {
	const q = `
SELECT t.id, t.original_id, t.translation_set_id, t.translation_0, t.status
FROM glossa.translations t
WHERE t.id = $1
`
	var row TranslationRecord
	err := s.pool.QueryRow(ctx, q, translationID).Scan(
		&row.ID,
		&row.OriginalID,
		&row.TranslationSetID,
		&row.Translation0,
		&row.Status,
	)
	if err != nil {
		if IsNoRows(err) {
			return TranslationRecord{}, ErrNoRows
		}
		return TranslationRecord{}, fmt.Errorf("query translation: %w", err)
	}
	return row, nil
}

// UpdateTranslation replaces the text of an existing translation row and marks
// it current.
func (s *GlotPressStore) UpdateTranslation(ctx context.Context, translationID int64, text string) error {
	const q = `
UPDATE glossa.translations
SET translation_0 = $2,
	status = 'current',
	updated_at = now()
WHERE id = $1
`
	tag, err := s.pool.Exec(ctx, q, translationID, text)
	if err != nil {
		return fmt.Errorf("update translation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

func (s *GlotPressStore) CreateTranslation(ctx context.Context, params CreateTranslationParams) (int64, error) {
	status := params.Status
	if status == "" {
		status = StatusCurrent
	}

	const q = `
INSERT INTO glossa.translations (original_id, translation_set_id, translation_0, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
RETURNING id
`
	var id int64
	err := s.pool.QueryRow(ctx, q, params.OriginalID, params.TranslationSetID, params.Translation0, status).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create translation: %w", err)
	}
	return id, nil
}
