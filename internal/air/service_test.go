package air

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubSource struct {
	readings []Reading
	err      error
	calls    int
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) FetchArea(ctx context.Context, q AreaQuery) ([]Reading, error) {
	s.calls++
	return s.readings, s.err
}

type stubStore struct {
	saved []AreaSnapshot
}

func (s *stubStore) SaveSnapshot(q AreaQuery, snapshot AreaSnapshot) {
	s.saved = append(s.saved, snapshot)
}

func (s *stubStore) GetLatest(q AreaQuery) (AreaSnapshot, error) {
	if len(s.saved) == 0 {
		return AreaSnapshot{}, errors.New("empty")
	}
	return s.saved[len(s.saved)-1], nil
}

func (s *stubStore) GetRange(q AreaQuery, from, to time.Time) ([]AreaSnapshot, error) {
	return s.saved, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testArea() AreaQuery {
	return AreaQuery{Lat: 40.7128, Lon: -74.006, RadiusKM: 10, Pollutant: PollutantPM25}
}

func TestBuildSnapshot(t *testing.T) {
	readings := []Reading{
		{Pollutant: PollutantPM25, Value: 8, LocationID: 1},
		{Pollutant: PollutantPM25, Value: 22, LocationID: 2},
		{Pollutant: PollutantPM25, Value: 48, LocationID: 3},
	}

	snap, err := BuildSnapshot(testArea(), "openaq", readings)
	require.NoError(t, err)

	require.Equal(t, "openaq", snap.Source)
	require.False(t, snap.FetchedAt.IsZero())
	require.Len(t, snap.Readings, 3)

	require.Equal(t, BandGreen, snap.Readings[0].Band)
	require.Equal(t, BandYellow, snap.Readings[1].Band)
	require.Equal(t, BandRed, snap.Readings[2].Band)
	for _, cr := range snap.Readings {
		require.NotEmpty(t, cr.Advisory)
	}

	require.Equal(t, 3, snap.Summary.Count)
	require.Equal(t, 1, snap.Summary.BandCounts[BandRed])
}

func TestBuildSnapshotUnsupportedPollutant(t *testing.T) {
	_, err := BuildSnapshot(testArea(), "openaq", []Reading{{Pollutant: Pollutant("voc"), Value: 3}})
	require.ErrorIs(t, err, ErrUnsupportedPollutant)
}

func TestServiceFetchAreaEmpty(t *testing.T) {
	svc := NewService(&stubStore{}, &stubSource{}, testLogger())

	snap, err := svc.FetchArea(context.Background(), testArea())
	require.NoError(t, err)
	require.Zero(t, snap.Summary.Count)
	require.Nil(t, snap.Summary.Stats)
	require.Empty(t, snap.Readings)
}

func TestServiceFetchAreaSourceError(t *testing.T) {
	src := &stubSource{err: errors.New("upstream down")}
	svc := NewService(&stubStore{}, src, testLogger())

	_, err := svc.FetchArea(context.Background(), testArea())
	require.Error(t, err)
	require.Contains(t, err.Error(), "upstream down")
}

func TestServiceRefreshAreaStores(t *testing.T) {
	store := &stubStore{}
	src := &stubSource{readings: []Reading{{Pollutant: PollutantPM25, Value: 18}}}
	svc := NewService(store, src, testLogger())

	require.NoError(t, svc.RefreshArea(context.Background(), testArea()))
	require.Len(t, store.saved, 1)
	require.Equal(t, 1, store.saved[0].Summary.Count)
}

func TestServiceRefreshAreaKeepsLastGoodOnEmpty(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, &stubSource{}, testLogger())

	require.NoError(t, svc.RefreshArea(context.Background(), testArea()))
	require.Empty(t, store.saved, "an empty fetch must not overwrite the last good snapshot")
}
