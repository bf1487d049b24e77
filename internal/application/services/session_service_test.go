package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetSessionIDSlidingExpiry(t *testing.T) {
	eng := newTestEngine(t, EmitterOptions{})
	sessions := eng.sessions

	first := sessions.GetSessionID("client-1")
	assert.True(t, strings.HasPrefix(first, "sess-"))

	// Activity inside the idle window keeps the session alive, and each
	// read slides the window forward.
	eng.clock.Advance(29 * time.Minute)
	assert.Equal(t, first, sessions.GetSessionID("client-1"))

	eng.clock.Advance(29 * time.Minute)
	assert.Equal(t, first, sessions.GetSessionID("client-1"))

	// Thirty idle minutes rotate the id.
	eng.clock.Advance(30 * time.Minute)
	second := sessions.GetSessionID("client-1")
	assert.NotEqual(t, first, second)

	// Clients never share sessions.
	assert.NotEqual(t, second, sessions.GetSessionID("client-2"))
}

func TestCreateAnonymousIDUnauthenticated(t *testing.T) {
	eng := newTestEngine(t, EmitterOptions{})
	sessions := eng.sessions

	id := sessions.CreateAnonymousID("client-1", "")
	assert.True(t, strings.HasPrefix(id, "anon-"))

	// Created once, then reused.
	assert.Equal(t, id, sessions.CreateAnonymousID("client-1", ""))
	assert.NotEqual(t, id, sessions.CreateAnonymousID("client-2", ""))
}

func TestCreateAnonymousIDHashesKnownID(t *testing.T) {
	eng := newTestEngine(t, EmitterOptions{})
	sessions := eng.sessions

	hashed := sessions.CreateAnonymousID("client-1", "rider-42")
	assert.True(t, strings.HasPrefix(hashed, "u-"))
	assert.NotContains(t, hashed, "rider-42")

	// Deterministic per user, distinct across users, independent of
	// which client asks.
	assert.Equal(t, hashed, sessions.CreateAnonymousID("client-2", "rider-42"))
	assert.NotEqual(t, hashed, sessions.CreateAnonymousID("client-1", "rider-43"))
}

func TestResetIdentity(t *testing.T) {
	eng := newTestEngine(t, EmitterOptions{})
	sessions := eng.sessions

	sessionID := sessions.GetSessionID("client-1")
	anonymousID := sessions.CreateAnonymousID("client-1", "")

	sessions.ResetIdentity("client-1")

	assert.NotEqual(t, sessionID, sessions.GetSessionID("client-1"))
	assert.NotEqual(t, anonymousID, sessions.CreateAnonymousID("client-1", ""))
}
