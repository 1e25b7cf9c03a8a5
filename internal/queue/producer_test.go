package queue

import (
	"context"
	stderrors "errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StreakKeeper/pkg/snowflake"
)

func TestMain(m *testing.M) {
	if err := snowflake.Init(1, 1); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type sent struct {
	routingKey string
	messageID  string
	body       interface{}
}

func recorder(out *[]sent, err error) publishFunc {
	return func(ctx context.Context, routingKey, messageID string, body interface{}) error {
		*out = append(*out, sent{routingKey: routingKey, messageID: messageID, body: body})
		return err
	}
}

func TestPublishStreakEventAssignsMessageID(t *testing.T) {
	var out []sent
	p := newMQPublisher(recorder(&out, nil))

	err := p.PublishStreakEvent(context.Background(), RoutingKeyStreakPerfectDay, StreakEventMessage{
		Checkpoint:    "evening",
		Date:          "2024-01-02",
		Status:        "perfect_day",
		CurrentStreak: 4,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, RoutingKeyStreakPerfectDay, out[0].routingKey)
	assert.True(t, strings.HasPrefix(out[0].messageID, "streak_"))

	msg, ok := out[0].body.(StreakEventMessage)
	require.True(t, ok)
	assert.Equal(t, out[0].messageID, msg.MessageID)
	assert.Equal(t, 4, msg.CurrentStreak)
}

func TestPublishReminderKeepsMessageID(t *testing.T) {
	var out []sent
	p := newMQPublisher(recorder(&out, nil))

	err := p.PublishReminder(context.Background(), CheckpointReminderMessage{
		MessageID:  "reminder_fixed",
		Checkpoint: "morning",
		Date:       "2024-01-02",
		Deadline:   "09:00",
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, RoutingKeyReminder, out[0].routingKey)
	assert.Equal(t, "reminder_fixed", out[0].messageID)
}

func TestPublisherTripsBreaker(t *testing.T) {
	var out []sent
	p := newMQPublisher(recorder(&out, stderrors.New("connection refused")))

	for i := 0; i < 5; i++ {
		assert.Error(t, p.PublishReminder(context.Background(), CheckpointReminderMessage{Checkpoint: "morning"}))
	}
	err := p.PublishReminder(context.Background(), CheckpointReminderMessage{Checkpoint: "morning"})
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.Len(t, out, 5)
}

func TestRoutingKeysForOutcome(t *testing.T) {
	cases := []struct {
		status, worst string
		want          []string
	}{
		{"on_time", "none", nil},
		{"within_grace", "none", nil},
		{"warning", "warning", []string{RoutingKeyStreakWarning}},
		{"reset", "reset", []string{RoutingKeyStreakReset}},
		{"perfect_day", "none", []string{RoutingKeyStreakPerfectDay}},
		{"perfect_day", "warning", []string{RoutingKeyStreakWarning, RoutingKeyStreakPerfectDay}},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, RoutingKeysForOutcome(tc.status, tc.worst), tc.status+"/"+tc.worst)
	}
}
