package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/csmith/biglittle/model"
	_ "modernc.org/sqlite"
)

// SQLite is a store backed by a local SQLite database holding any number
// of chapters
type SQLite struct {
	Path string

	mu sync.Mutex
	db *sql.DB
}

// Preferences loads every Big and Little profile registered to the chapter
func (s *SQLite) Preferences(ctx context.Context, chapter model.Chapter) (model.Preferences, model.Preferences, error) {
	if !chapter.Complete() {
		return nil, nil, model.ErrChapterIncomplete
	}

	db, err := s.getDB(ctx)
	if err != nil {
		return nil, nil, err
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT name, email, role, preferences_json
		 FROM profiles
		 WHERE school = ? AND organization = ?
		 ORDER BY name`,
		chapter.School,
		chapter.Organization,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		var (
			profile  model.Profile
			role     string
			prefJSON string
		)
		if err := rows.Scan(&profile.Name, &profile.Email, &role, &prefJSON); err != nil {
			return nil, nil, fmt.Errorf("scan profile: %w", err)
		}
		if err := json.Unmarshal([]byte(prefJSON), &profile.Preferences); err != nil {
			return nil, nil, fmt.Errorf("decode preferences for %s: %w", profile.Name, err)
		}
		profile.Role = model.Role(role)
		profile.Chapter = chapter
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate profiles: %w", err)
	}

	if len(profiles) == 0 {
		return nil, nil, model.ErrNoProfiles
	}

	bigs, littles := model.Split(profiles)
	slog.Debug("Loaded preferences", "store", "sqlite", "chapter", chapter.Key(), "bigs", len(bigs), "littles", len(littles))
	return bigs, littles, nil
}

// SaveProfile adds or replaces a profile
func (s *SQLite) SaveProfile(ctx context.Context, profile model.Profile) error {
	if !profile.Chapter.Complete() {
		return model.ErrChapterIncomplete
	}
	if strings.TrimSpace(profile.Name) == "" {
		return fmt.Errorf("profile name is required")
	}

	db, err := s.getDB(ctx)
	if err != nil {
		return err
	}

	prefs := profile.Preferences
	if prefs == nil {
		prefs = []string{}
	}
	prefJSON, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	_, err = db.ExecContext(
		ctx,
		`INSERT INTO profiles (school, organization, name, email, role, preferences_json)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(school, organization, name, role) DO UPDATE SET
		    email = excluded.email,
		    preferences_json = excluded.preferences_json`,
		profile.Chapter.School,
		profile.Chapter.Organization,
		profile.Name,
		profile.Email,
		string(profile.Role),
		string(prefJSON),
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// SaveResult stores the result, replacing any earlier result for the chapter
func (s *SQLite) SaveResult(ctx context.Context, result model.Result) error {
	if !result.Chapter.Complete() {
		return model.ErrChapterIncomplete
	}

	db, err := s.getDB(ctx)
	if err != nil {
		return err
	}

	matchesJSON, err := json.Marshal(result.Matches)
	if err != nil {
		return fmt.Errorf("encode matches: %w", err)
	}

	_, err = db.ExecContext(
		ctx,
		`INSERT INTO results (chapter_key, id, school, organization, matches_json, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(chapter_key) DO UPDATE SET
		    id = excluded.id,
		    matches_json = excluded.matches_json,
		    created_by = excluded.created_by,
		    created_at = excluded.created_at`,
		result.Chapter.Key(),
		result.ID,
		result.Chapter.School,
		result.Chapter.Organization,
		string(matchesJSON),
		result.CreatedBy,
		result.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}

	slog.Debug("Saved result", "store", "sqlite", "chapter", result.Chapter.Key(), "id", result.ID)
	return nil
}

// Result returns the last result saved for the chapter
func (s *SQLite) Result(ctx context.Context, chapter model.Chapter) (model.Result, error) {
	if !chapter.Complete() {
		return model.Result{}, model.ErrChapterIncomplete
	}

	db, err := s.getDB(ctx)
	if err != nil {
		return model.Result{}, err
	}

	var (
		result      model.Result
		matchesJSON string
		createdAt   int64
	)
	err = db.QueryRowContext(
		ctx,
		`SELECT id, school, organization, matches_json, created_by, created_at
		 FROM results
		 WHERE chapter_key = ?`,
		chapter.Key(),
	).Scan(&result.ID, &result.Chapter.School, &result.Chapter.Organization, &matchesJSON, &result.CreatedBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Result{}, model.ErrNoResult
	} else if err != nil {
		return model.Result{}, fmt.Errorf("get result: %w", err)
	}

	if err := json.Unmarshal([]byte(matchesJSON), &result.Matches); err != nil {
		return model.Result{}, fmt.Errorf("decode matches: %w", err)
	}
	result.CreatedAt = time.UnixMilli(createdAt).UTC()

	return result, nil
}

// Close releases the database, if it was opened
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLite) getDB(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	if strings.TrimSpace(s.Path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := filepath.Clean(s.Path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Debug("Opened database", "store", "sqlite", "path", s.Path)
	s.db = db
	return db, nil
}
