package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/matchups/internal/events"
	"github.com/ramonehamilton/matchups/internal/matchups"
	"github.com/ramonehamilton/matchups/internal/storage"
	"github.com/ramonehamilton/matchups/internal/storage/repository"
)

var fixture = matchups.RawTables{
	Matchups: []byte(`{
		"1": {"2": {"win_rate": 60, "total_games": 100}, "3": {"win_rate": 55, "total_games": 100}},
		"2": {"1": {"win_rate": 40, "total_games": 100}, "3": {"win_rate": 50, "total_games": 100}},
		"3": {"1": {"win_rate": 45, "total_games": 100}, "2": {"win_rate": 50, "total_games": 100}}
	}`),
	Popularity: []byte(`{
		"MAGE": [{"archetype_id": 1, "pct_of_class": 50, "pct_of_total": 10, "win_rate": 55, "total_games": 1000}],
		"ROGUE": [{"archetype_id": 2, "pct_of_class": 40, "pct_of_total": 8, "win_rate": 45, "total_games": 800}],
		"WARRIOR": [{"archetype_id": 3, "pct_of_class": 30, "pct_of_total": 6, "win_rate": 50, "total_games": 600}]
	}`),
	Archetypes: []byte(`[
		{"id": 1, "name": "Alpha Mage", "player_class_name": "MAGE"},
		{"id": 2, "name": "Beta Rogue", "player_class_name": "ROGUE"},
		{"id": 3, "name": "Gamma Warrior", "player_class_name": "WARRIOR"}
	]`),
}

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Fetch(ctx context.Context) (matchups.RawTables, error) {
	args := m.Called(ctx)
	return args.Get(0).(matchups.RawTables), args.Error(1)
}

func (m *mockSource) Name() string {
	return "mock"
}

type mockSettings struct {
	mock.Mock
}

func (m *mockSettings) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockSettings) GetTyped(ctx context.Context, key string, target interface{}) error {
	return m.Called(ctx, key, target).Error(0)
}

func (m *mockSettings) Set(ctx context.Context, key string, value interface{}) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockSettings) SetMany(ctx context.Context, settings map[string]interface{}) error {
	return m.Called(ctx, settings).Error(0)
}

type eventRecorder struct {
	events []events.Event
}

func (r *eventRecorder) OnEvent(e events.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) GetName() string { return "recorder" }

func (r *eventRecorder) ShouldHandle(string) bool { return true }

func (r *eventRecorder) types() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(storage.DefaultConfig(storage.MemoryPath))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newLoadedService returns a service over fixture backed by real in-memory
// repositories, already loaded.
func newLoadedService(t *testing.T) (*Service, repository.SettingsRepository, *eventRecorder) {
	t.Helper()

	src := &mockSource{}
	src.On("Fetch", mock.Anything).Return(fixture, nil)

	settings := repository.NewSettingsRepository(openDB(t).Conn())
	dispatcher := events.NewEventDispatcher()
	recorder := &eventRecorder{}
	dispatcher.Register(recorder)

	svc := NewService(Config{
		Source:     src,
		Settings:   settings,
		Dispatcher: dispatcher,
		Options:    matchups.DefaultOptions(),
	})
	require.NoError(t, svc.Load(context.Background()))
	return svc, settings, recorder
}

func newDispatcher(observers ...events.Observer) *events.EventDispatcher {
	d := events.NewEventDispatcher()
	for _, o := range observers {
		d.Register(o)
	}
	return d
}
