package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_CreateAssignsMonotonicIDs(t *testing.T) {
	s := New()
	p1 := s.Create("/tmp/a")
	p2 := s.Create("/tmp/b")

	require.Equal(t, uint(1), p1.ID)
	require.Equal(t, uint(2), p2.ID)
	require.Equal(t, Prepared, p1.Status)
}

func TestStore_GetUnknownIDReturnsFalse(t *testing.T) {
	s := New()
	_, ok := s.Get(999)
	require.False(t, ok)
}

func TestStore_SetStatusUpdatesInPlace(t *testing.T) {
	s := New()
	p := s.Create("/tmp/a")
	s.SetStatus(p.ID, Running)

	got, ok := s.Get(p.ID)
	require.True(t, ok)
	require.Equal(t, Running, got.Status)
}

func TestStore_ListByStatusFiltersCorrectly(t *testing.T) {
	s := New()
	a := s.Create("/tmp/a")
	b := s.Create("/tmp/b")
	s.SetStatus(b.ID, Completed)

	prepared := s.ListByStatus(Prepared)
	require.Len(t, prepared, 1)
	require.Equal(t, a.ID, prepared[0].ID)

	completed := s.ListByStatus(Completed)
	require.Len(t, completed, 1)
	require.Equal(t, b.ID, completed[0].ID)
}

func TestStore_DeleteRemovesRecord(t *testing.T) {
	s := New()
	p := s.Create("/tmp/a")
	s.Delete(p.ID)

	_, ok := s.Get(p.ID)
	require.False(t, ok)
}
