// Package scraper keeps the registry of installed scraper sources and their
// versioned scripts.
package scraper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// IMDbPlusScriptID identifies the IMDb+ scraper script.
const IMDbPlusScriptID = 314159265

const dateLayout = "2006-01-02"

// ErrNotFound is returned when no source matches.
var ErrNotFound = errors.New("source not found")

// AddResult is the outcome of installing a script.
type AddResult int

const (
	Success AddResult = iota
	SuccessReplaced
	Failed
	FailedVersion
	FailedDate
)

func (r AddResult) String() string {
	switch r {
	case Success:
		return "success"
	case SuccessReplaced:
		return "success_replaced"
	case Failed:
		return "failed"
	case FailedVersion:
		return "failed_version"
	case FailedDate:
		return "failed_date"
	default:
		return "unknown"
	}
}

// Succeeded reports whether the script was installed.
func (r AddResult) Succeeded() bool {
	return r == Success || r == SuccessReplaced
}

// Source is a registered scraper. A priority of -1 disables it for that data type.
type Source struct {
	ID               int64   `json:"id"`
	ScriptID         int     `json:"scriptId"`
	Name             string  `json:"name"`
	DetailsPriority  int     `json:"detailsPriority"`
	CoverPriority    int     `json:"coverPriority"`
	SelectedScriptID *int64  `json:"selectedScriptId,omitempty"`
	SelectedScript   *Script `json:"selectedScript,omitempty"`
}

func (s Source) String() string {
	return s.Name
}

// Script is one installed version of a source's script.
type Script struct {
	ID          int64     `json:"id"`
	SourceID    int64     `json:"sourceId"`
	Version     string    `json:"version"`
	Published   time.Time `json:"published"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	Contents    string    `json:"-"`
}

// Registry stores sources and scripts in the library database.
type Registry struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRegistry(db *sql.DB, logger *zerolog.Logger) *Registry {
	return &Registry{
		db:     db,
		logger: logger.With().Str("component", "scraper").Logger(),
	}
}

// AddSource installs a script document. A document that cannot be parsed
// yields Failed. Re-adding an installed version yields FailedVersion unless
// debugMode is set, in which case the stored script is overwritten. A new
// version must carry a published date not used by another version of the
// same source. The installed script becomes the source's selected script
// unless a newer version is already selected.
// A non-nil error is only returned for storage failures.
func (r *Registry) AddSource(ctx context.Context, contents string, debugMode bool) (AddResult, error) {
	details, err := ParseScript(contents)
	if err != nil {
		r.logger.Debug().Err(err).Msg("Rejected scraper script")
		return Failed, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Failed, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sourceID, err := r.ensureSource(ctx, tx, details)
	if err != nil {
		return Failed, err
	}

	existing, err := scriptsForSource(ctx, tx, sourceID)
	if err != nil {
		return Failed, err
	}

	version := details.Version.String()
	published := details.Published.Format(dateLayout)
	result := Success
	var scriptID int64

	for _, s := range existing {
		if s.Version != version {
			continue
		}
		if !debugMode {
			return FailedVersion, nil
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE scripts SET contents = ?, published = ?, author = ?, description = ? WHERE id = ?`,
			contents, published, details.Author, details.Description, s.ID); err != nil {
			return Failed, fmt.Errorf("replace script: %w", err)
		}
		scriptID = s.ID
		result = SuccessReplaced
	}

	if result == Success {
		for _, s := range existing {
			if s.Published.Format(dateLayout) == published {
				return FailedDate, nil
			}
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO scripts (source_id, version, published, author, description, contents)
			VALUES (?, ?, ?, ?, ?, ?)`,
			sourceID, version, published, details.Author, details.Description, contents)
		if err != nil {
			return Failed, fmt.Errorf("insert script: %w", err)
		}
		if scriptID, err = res.LastInsertId(); err != nil {
			return Failed, fmt.Errorf("insert script: %w", err)
		}
	}

	selected, err := selectedVersion(ctx, tx, sourceID)
	if err != nil {
		return Failed, err
	}
	if selected == nil || !details.Version.LessThan(*selected) {
		if _, err := tx.ExecContext(ctx, `UPDATE sources SET name = ?, selected_script_id = ? WHERE id = ?`,
			details.Name, scriptID, sourceID); err != nil {
			return Failed, fmt.Errorf("select script: %w", err)
		}
	} else {
		r.logger.Debug().
			Str("version", version).
			Str("selected", selected.String()).
			Msg("Keeping newer selected script")
	}

	if err := tx.Commit(); err != nil {
		return Failed, fmt.Errorf("commit: %w", err)
	}

	r.logger.Debug().
		Str("name", details.Name).
		Str("version", version).
		Str("result", result.String()).
		Msg("Installed scraper script")

	return result, nil
}

// ensureSource returns the source for details.ScriptID, registering it at the
// lowest enabled priority when it is new.
func (r *Registry) ensureSource(ctx context.Context, tx *sql.Tx, details *Details) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM sources WHERE script_id = ?`, details.ScriptID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("find source: %w", err)
	}

	var nextDetails, nextCover int
	if err := tx.QueryRowContext(ctx, `
		SELECT
			COALESCE((SELECT MAX(details_priority) + 1 FROM sources WHERE details_priority > -1), 0),
			COALESCE((SELECT MAX(cover_priority) + 1 FROM sources WHERE cover_priority > -1), 0)`,
	).Scan(&nextDetails, &nextCover); err != nil {
		return 0, fmt.Errorf("compute priorities: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO sources (script_id, name, details_priority, cover_priority) VALUES (?, ?, ?, ?)`,
		details.ScriptID, details.Name, nextDetails, nextCover)
	if err != nil {
		return 0, fmt.Errorf("insert source: %w", err)
	}
	return res.LastInsertId()
}

// GetByScriptID returns the source registered for scriptID with its selected script.
func (r *Registry) GetByScriptID(ctx context.Context, scriptID int) (*Source, error) {
	row := r.db.QueryRowContext(ctx, sourceSelect+` WHERE s.script_id = ?`, scriptID)
	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	return src, nil
}

// Get returns the source with the given row id.
func (r *Registry) Get(ctx context.Context, id int64) (*Source, error) {
	row := r.db.QueryRowContext(ctx, sourceSelect+` WHERE s.id = ?`, id)
	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	return src, nil
}

// List returns every source ordered by details priority, disabled sources last.
func (r *Registry) List(ctx context.Context) ([]*Source, error) {
	rows, err := r.db.QueryContext(ctx, sourceSelect+`
		ORDER BY CASE WHEN s.details_priority < 0 THEN 1 ELSE 0 END, s.details_priority, s.name`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var out []*Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("list sources: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// PromoteDetails makes sourceID the first details provider. Every enabled
// details source shifts down by one before the target is set to zero.
func (r *Registry) PromoteDetails(ctx context.Context, sourceID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		UPDATE sources SET details_priority = details_priority + 1 WHERE details_priority > -1`); err != nil {
		return fmt.Errorf("shift priorities: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE sources SET details_priority = 0 WHERE id = ?`, sourceID)
	if err != nil {
		return fmt.Errorf("set priority: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// ReplaceInScript rewrites the selected script of sourceID. It reports
// whether the contents changed.
func (r *Registry) ReplaceInScript(ctx context.Context, sourceID int64, replacer *strings.Replacer) (bool, error) {
	var scriptID int64
	var contents string
	err := r.db.QueryRowContext(ctx, `
		SELECT sc.id, sc.contents FROM sources s
		JOIN scripts sc ON sc.id = s.selected_script_id
		WHERE s.id = ?`, sourceID).Scan(&scriptID, &contents)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("load script: %w", err)
	}

	updated := replacer.Replace(contents)
	if updated == contents {
		return false, nil
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE scripts SET contents = ? WHERE id = ?`, updated, scriptID); err != nil {
		return false, fmt.Errorf("update script: %w", err)
	}
	return true, nil
}

// ScriptContents returns the selected script document of sourceID.
func (r *Registry) ScriptContents(ctx context.Context, sourceID int64) (string, error) {
	var contents string
	err := r.db.QueryRowContext(ctx, `
		SELECT sc.contents FROM sources s
		JOIN scripts sc ON sc.id = s.selected_script_id
		WHERE s.id = ?`, sourceID).Scan(&contents)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return contents, err
}

const sourceSelect = `
	SELECT s.id, s.script_id, s.name, s.details_priority, s.cover_priority, s.selected_script_id,
		sc.id, sc.version, sc.published, sc.author, sc.description
	FROM sources s
	LEFT JOIN scripts sc ON sc.id = s.selected_script_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*Source, error) {
	var (
		src                              Source
		selected, scriptID               sql.NullInt64
		version, published, author, desc sql.NullString
	)
	if err := row.Scan(&src.ID, &src.ScriptID, &src.Name, &src.DetailsPriority, &src.CoverPriority, &selected,
		&scriptID, &version, &published, &author, &desc); err != nil {
		return nil, err
	}

	if selected.Valid {
		src.SelectedScriptID = &selected.Int64
	}
	if scriptID.Valid {
		script := &Script{
			ID:          scriptID.Int64,
			SourceID:    src.ID,
			Version:     version.String,
			Author:      author.String,
			Description: desc.String,
		}
		if t, err := time.Parse(dateLayout, published.String); err == nil {
			script.Published = t
		}
		src.SelectedScript = script
	}
	return &src, nil
}

// selectedVersion returns the version of the source's selected script, or nil
// when none is selected or its version cannot be parsed.
func selectedVersion(ctx context.Context, tx *sql.Tx, sourceID int64) (*Version, error) {
	var raw string
	err := tx.QueryRowContext(ctx, `
		SELECT s.version FROM sources src
		JOIN scripts s ON s.id = src.selected_script_id
		WHERE src.id = ?`, sourceID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find selected script: %w", err)
	}
	v, err := ParseVersion(raw)
	if err != nil {
		return nil, nil
	}
	return &v, nil
}

func scriptsForSource(ctx context.Context, tx *sql.Tx, sourceID int64) ([]Script, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, version, published FROM scripts WHERE source_id = ?`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	defer rows.Close()

	var out []Script
	for rows.Next() {
		var s Script
		var published string
		if err := rows.Scan(&s.ID, &s.Version, &published); err != nil {
			return nil, fmt.Errorf("list scripts: %w", err)
		}
		s.SourceID = sourceID
		s.Published, _ = time.Parse(dateLayout, published)
		out = append(out, s)
	}
	return out, rows.Err()
}
