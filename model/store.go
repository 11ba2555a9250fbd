package model

import (
	"context"
	"errors"
)

var (
	ErrChapterIncomplete = errors.New("chapter must include school and organization")
	ErrNoProfiles        = errors.New("no profiles found for chapter")
	ErrNoResult          = errors.New("no result saved for chapter")
)

// ProfileStore provides the preferences submitted by a chapter's members
type ProfileStore interface {
	Preferences(ctx context.Context, chapter Chapter) (bigs, littles Preferences, err error)
	SaveProfile(ctx context.Context, profile Profile) error
}

// ResultStore persists computed assignments
type ResultStore interface {
	SaveResult(ctx context.Context, result Result) error
	Result(ctx context.Context, chapter Chapter) (Result, error)
}

// Split sorts profiles into Big and Little preferences. Profiles with any
// other role are ignored.
func Split(profiles []Profile) (bigs, littles Preferences) {
	bigs = make(Preferences)
	littles = make(Preferences)
	for _, p := range profiles {
		prefs := p.Preferences
		if prefs == nil {
			prefs = []string{}
		}
		switch p.Role {
		case RoleBig:
			bigs[p.Name] = prefs
		case RoleLittle:
			littles[p.Name] = prefs
		}
	}
	return bigs, littles
}
