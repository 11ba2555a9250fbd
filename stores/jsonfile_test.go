package stores

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/csmith/biglittle/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testChapter = model.Chapter{School: "State University", Organization: "Alpha Beta"}

func TestJSONFiles_Preferences(t *testing.T) {
	dir := t.TempDir()
	bigsPath := filepath.Join(dir, "bigs.json")
	littlesPath := filepath.Join(dir, "littles.json")

	require.NoError(t, os.WriteFile(bigsPath, []byte(`{"A": ["X", "Y"], "B": null}`), 0644))
	require.NoError(t, os.WriteFile(littlesPath, []byte(`{"X": ["B"], "Y": []}`), 0644))

	store := &JSONFiles{BigsPath: bigsPath, LittlesPath: littlesPath}
	bigs, littles, err := store.Preferences(context.Background(), testChapter)
	require.NoError(t, err)

	assert.Equal(t, model.Preferences{"A": {"X", "Y"}, "B": {}}, bigs)
	assert.Equal(t, model.Preferences{"X": {"B"}, "Y": {}}, littles)
}

func TestJSONFiles_PreferencesMissingFiles(t *testing.T) {
	dir := t.TempDir()
	store := &JSONFiles{
		BigsPath:    filepath.Join(dir, "bigs.json"),
		LittlesPath: filepath.Join(dir, "littles.json"),
	}

	_, _, err := store.Preferences(context.Background(), testChapter)
	assert.ErrorIs(t, err, model.ErrNoProfiles)
}

func TestJSONFiles_PreferencesInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	bigsPath := filepath.Join(dir, "bigs.json")
	require.NoError(t, os.WriteFile(bigsPath, []byte(`["A"]`), 0644))

	store := &JSONFiles{BigsPath: bigsPath}
	_, _, err := store.Preferences(context.Background(), testChapter)
	assert.Error(t, err)
}

func TestJSONFiles_SaveProfile(t *testing.T) {
	dir := t.TempDir()
	store := &JSONFiles{
		BigsPath:    filepath.Join(dir, "bigs.json"),
		LittlesPath: filepath.Join(dir, "littles.json"),
	}
	ctx := context.Background()

	require.NoError(t, store.SaveProfile(ctx, model.Profile{Name: "A", Role: model.RoleBig, Preferences: []string{"X"}}))
	require.NoError(t, store.SaveProfile(ctx, model.Profile{Name: "X", Role: model.RoleLittle}))
	require.NoError(t, store.SaveProfile(ctx, model.Profile{Name: "A", Role: model.RoleBig, Preferences: []string{"Y", "X"}}))

	bigs, littles, err := store.Preferences(ctx, testChapter)
	require.NoError(t, err)
	assert.Equal(t, model.Preferences{"A": {"Y", "X"}}, bigs)
	assert.Equal(t, model.Preferences{"X": {}}, littles)

	err = store.SaveProfile(ctx, model.Profile{Name: "N", Role: "Member"})
	assert.Error(t, err)
}

func TestJSONFiles_Results(t *testing.T) {
	dir := t.TempDir()
	store := &JSONFiles{ResultsPath: filepath.Join(dir, "results.json")}
	ctx := context.Background()

	_, err := store.Result(ctx, testChapter)
	assert.ErrorIs(t, err, model.ErrNoResult)

	first := model.NewResult(testChapter, model.Assignment{"A": {"X"}}, "nme@example.com")
	require.NoError(t, store.SaveResult(ctx, first))

	second := model.NewResult(testChapter, model.Assignment{"A": {"Y"}, "B": {"X"}}, "nme@example.com")
	second.CreatedAt = second.CreatedAt.Add(time.Minute)
	require.NoError(t, store.SaveResult(ctx, second))

	other := model.Chapter{School: "State University", Organization: "Gamma Delta"}
	require.NoError(t, store.SaveResult(ctx, model.NewResult(other, model.Assignment{"C": {"Z"}}, "")))

	got, err := store.Result(ctx, testChapter)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, second.Matches, got.Matches)
	assert.True(t, second.CreatedAt.Equal(got.CreatedAt))

	got, err = store.Result(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, model.Assignment{"C": {"Z"}}, got.Matches)
}

func TestJSONFiles_SaveResultWithoutFile(t *testing.T) {
	store := &JSONFiles{}
	err := store.SaveResult(context.Background(), model.NewResult(testChapter, model.Assignment{}, ""))
	assert.Error(t, err)
}
