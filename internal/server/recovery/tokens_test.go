package recovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndConsume(t *testing.T) {
	s := NewStore()

	id := s.Create(ActionPassRecover, "alice", time.Hour)
	require.NotEmpty(t, id)

	login, ok := s.Consume(ActionPassRecover, id)
	require.True(t, ok)
	assert.Equal(t, "alice", login)
}

func TestConsume_OneShot(t *testing.T) {
	s := NewStore()

	id := s.Create(ActionAccountConfirm, "bob", time.Hour)

	_, ok := s.Consume(ActionAccountConfirm, id)
	require.True(t, ok)

	_, ok = s.Consume(ActionAccountConfirm, id)
	assert.False(t, ok, "second consume must fail")
}

func TestConsume_WrongAction(t *testing.T) {
	s := NewStore()

	id := s.Create(ActionAccountConfirm, "bob", time.Hour)

	_, ok := s.Consume(ActionPassRecover, id)
	assert.False(t, ok, "action tag mismatch must fail")

	// The token survives a wrong-action attempt.
	_, ok = s.Consume(ActionAccountConfirm, id)
	assert.True(t, ok)
}

func TestConsume_Expired(t *testing.T) {
	s := NewStore()
	current := time.Now()
	s.now = func() time.Time { return current }

	id := s.Create(ActionPassRecover, "carol", time.Minute)

	current = current.Add(2 * time.Minute)

	_, ok := s.Consume(ActionPassRecover, id)
	assert.False(t, ok, "expired token must not consume")
}

func TestConsume_Unknown(t *testing.T) {
	s := NewStore()

	_, ok := s.Consume(ActionPassRecover, "no-such-token")
	assert.False(t, ok)
}
