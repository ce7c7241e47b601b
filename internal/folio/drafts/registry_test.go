package drafts

import (
	"testing"
	"time"

	"github.com/aisa-it/folio/internal/folio/apierrors"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	svc := newFakeService()

	s, err := NewSession(KindBlog, svc, Create(), nil)
	require.NoError(t, err)
	assert.Equal(t, KindBlog, s.Kind())
	assert.IsType(t, DefaultBlogMetadata(), s.MetadataValue())

	s, err = NewSession(KindProject, svc, Update("p"), nil)
	require.NoError(t, err)
	assert.Equal(t, KindProject, s.Kind())
	assert.Equal(t, "p", s.Mode().Slug())

	_, err = NewSession("friend", svc, Create(), nil)
	assert.ErrorIs(t, err, apierrors.ErrUnsupportedKind)
}

func TestRegistry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(10 * time.Minute)
	r.now = func() time.Time { return now }

	idle := NewBlogEditor(newFakeService(), Create(), nil)
	active := NewProjectEditor(newFakeService(), Create(), nil)
	idleID := r.Open(idle)
	activeID := r.Open(active)
	assert.NotEqual(t, idleID, activeID)
	assert.Equal(t, 2, r.Len())

	now = now.Add(6 * time.Minute)
	_, ok := r.Get(activeID)
	require.True(t, ok)

	now = now.Add(6 * time.Minute)
	assert.Equal(t, 1, r.Cleanup())
	assert.True(t, idle.Closed())
	assert.False(t, active.Closed())

	_, ok = r.Get(idleID)
	assert.False(t, ok)

	assert.True(t, r.Close(activeID))
	assert.True(t, active.Closed())
	assert.False(t, r.Close(activeID))
	assert.False(t, r.Close(uuid.Nil))
	assert.Zero(t, r.Len())
}
