package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"electional-engine/internal/domain"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.subjects = append(c.subjects, subject)
	c.payloads = append(c.payloads, data)
	return nil
}

func generatedEvent() *domain.Event {
	return &domain.Event{
		ID:          "ev-1",
		UserID:      "user-1",
		Title:       "Venus Trine Jupiter",
		Date:        "2025-02-03",
		Time:        "10:00",
		Type:        domain.EventBenefic,
		Description: "Astrologically calculated optimal timing (Score: 7/10).",
		Score:       7,
		IsGenerated: true,
		State:       domain.StateConfirmed,
		ChartData:   &domain.ChartSnapshot{Planets: []domain.PlanetPosition{{Body: domain.Venus}}},
	}
}

func TestPublisher_Subject(t *testing.T) {
	assert.Equal(t, "electional.events.generated", NewPublisher(&fakeConn{}, "").Subject())
	assert.Equal(t, "staging.events.generated", NewPublisher(&fakeConn{}, "staging").Subject())
}

func TestPublisher_PublishGenerated(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "test")
	e := generatedEvent()

	require.NoError(t, p.PublishGenerated(context.Background(), e))
	require.Len(t, conn.payloads, 1)
	assert.Equal(t, "test.events.generated", conn.subjects[0])

	var msg Message
	require.NoError(t, json.Unmarshal(conn.payloads[0], &msg))
	assert.Equal(t, "generated", msg.Kind)
	require.NotNil(t, msg.Event)
	assert.Equal(t, "ev-1", msg.Event.ID)
	assert.Equal(t, 7, msg.Event.Score)
	assert.Nil(t, msg.Event.ChartData, "chart snapshot is not published")
	assert.False(t, msg.PublishedAt.IsZero())

	assert.NotNil(t, e.ChartData, "caller's event must not be modified")
}

func TestPublisher_Errors(t *testing.T) {
	down := &fakeConn{err: errors.New("nats: connection closed")}
	err := NewPublisher(down, "").PublishGenerated(context.Background(), generatedEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish event ev-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	conn := &fakeConn{}
	err = NewPublisher(conn, "").PublishGenerated(ctx, generatedEvent())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, conn.payloads)
}
