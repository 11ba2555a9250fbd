package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/csmith/biglittle/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres is a store backed by a shared PostgreSQL database
type Postgres struct {
	DSN string

	mu sync.Mutex
	db *gorm.DB
}

type profileRow struct {
	School          string `gorm:"primaryKey"`
	Organization    string `gorm:"primaryKey"`
	Name            string `gorm:"primaryKey"`
	Role            string `gorm:"primaryKey"`
	Email           string
	PreferencesJSON string `gorm:"column:preferences_json;not null;default:'[]'"`
}

func (profileRow) TableName() string { return "profiles" }

type resultRow struct {
	ChapterKey   string `gorm:"primaryKey"`
	ID           string `gorm:"column:id;not null"`
	School       string
	Organization string
	MatchesJSON  string `gorm:"column:matches_json;not null"`
	CreatedBy    string
	CreatedAt    time.Time
}

func (resultRow) TableName() string { return "results" }

// Preferences loads every Big and Little profile registered to the chapter
func (p *Postgres) Preferences(ctx context.Context, chapter model.Chapter) (model.Preferences, model.Preferences, error) {
	if !chapter.Complete() {
		return nil, nil, model.ErrChapterIncomplete
	}

	db, err := p.getDB(ctx)
	if err != nil {
		return nil, nil, err
	}

	var rows []profileRow
	if err := db.WithContext(ctx).
		Where("school = ? AND organization = ?", chapter.School, chapter.Organization).
		Order("name").
		Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("query profiles: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil, model.ErrNoProfiles
	}

	profiles := make([]model.Profile, 0, len(rows))
	for _, row := range rows {
		profile := model.Profile{
			Name:    row.Name,
			Email:   row.Email,
			Role:    model.Role(row.Role),
			Chapter: chapter,
		}
		if err := json.Unmarshal([]byte(row.PreferencesJSON), &profile.Preferences); err != nil {
			return nil, nil, fmt.Errorf("decode preferences for %s: %w", row.Name, err)
		}
		profiles = append(profiles, profile)
	}

	bigs, littles := model.Split(profiles)
	slog.Debug("Loaded preferences", "store", "postgres", "chapter", chapter.Key(), "bigs", len(bigs), "littles", len(littles))
	return bigs, littles, nil
}

// SaveProfile adds or replaces a profile
func (p *Postgres) SaveProfile(ctx context.Context, profile model.Profile) error {
	if !profile.Chapter.Complete() {
		return model.ErrChapterIncomplete
	}
	if strings.TrimSpace(profile.Name) == "" {
		return fmt.Errorf("profile name is required")
	}

	db, err := p.getDB(ctx)
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

	row := profileRow{
		School:          profile.Chapter.School,
		Organization:    profile.Chapter.Organization,
		Name:            profile.Name,
		Role:            string(profile.Role),
		Email:           profile.Email,
		PreferencesJSON: string(prefJSON),
	}
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "school"}, {Name: "organization"}, {Name: "name"}, {Name: "role"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "preferences_json"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// SaveResult stores the result, replacing any earlier result for the chapter
func (p *Postgres) SaveResult(ctx context.Context, result model.Result) error {
	if !result.Chapter.Complete() {
		return model.ErrChapterIncomplete
	}

	db, err := p.getDB(ctx)
	if err != nil {
		return err
	}

	matchesJSON, err := json.Marshal(result.Matches)
	if err != nil {
		return fmt.Errorf("encode matches: %w", err)
	}

	row := resultRow{
		ChapterKey:   result.Chapter.Key(),
		ID:           result.ID,
		School:       result.Chapter.School,
		Organization: result.Chapter.Organization,
		MatchesJSON:  string(matchesJSON),
		CreatedBy:    result.CreatedBy,
		CreatedAt:    result.CreatedAt,
	}
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chapter_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"id", "matches_json", "created_by", "created_at"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("save result: %w", err)
	}

	slog.Debug("Saved result", "store", "postgres", "chapter", row.ChapterKey, "id", row.ID)
	return nil
}

// Result returns the last result saved for the chapter
func (p *Postgres) Result(ctx context.Context, chapter model.Chapter) (model.Result, error) {
	if !chapter.Complete() {
		return model.Result{}, model.ErrChapterIncomplete
	}

	db, err := p.getDB(ctx)
	if err != nil {
		return model.Result{}, err
	}

	var row resultRow
	err = db.WithContext(ctx).Where("chapter_key = ?", chapter.Key()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Result{}, model.ErrNoResult
	} else if err != nil {
		return model.Result{}, fmt.Errorf("get result: %w", err)
	}

	result := model.Result{
		ID:        row.ID,
		Chapter:   model.Chapter{School: row.School, Organization: row.Organization},
		CreatedBy: row.CreatedBy,
		CreatedAt: row.CreatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(row.MatchesJSON), &result.Matches); err != nil {
		return model.Result{}, fmt.Errorf("decode matches: %w", err)
	}
	return result, nil
}

// Close releases the database connection, if it was opened
func (p *Postgres) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	p.db = nil
	return sqlDB.Close()
}

func (p *Postgres) getDB(ctx context.Context) (*gorm.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		return p.db, nil
	}

	if strings.TrimSpace(p.DSN) == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := gorm.Open(postgres.Open(p.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve postgres sql db handle: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&profileRow{}, &resultRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	slog.Debug("Connected to database", "store", "postgres")
	p.db = db
	return db, nil
}
