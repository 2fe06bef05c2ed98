package followup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rDingyFourFour/handybob-sub000/internal/model"
)

func TestFindMatchingMessage(t *testing.T) {
	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return time.Date(2024, 6, 3, h, 0, 0, 0, time.UTC) }

	messages := []model.Message{
		{ID: 1, Channel: model.ChannelSMS, Status: model.MessageStatusSent, JobID: intPtr(10), CreatedAt: at(9)},
		{ID: 2, Channel: model.ChannelEmail, Status: model.MessageStatusSent, JobID: intPtr(10), CreatedAt: at(12)},
		{ID: 3, Channel: model.ChannelSMS, Status: model.MessageStatusSent, QuoteID: intPtr(20), CreatedAt: at(11)},
		{ID: 4, Channel: model.ChannelSMS, Status: model.MessageStatusFailed, JobID: intPtr(10), CreatedAt: at(14)},
		{ID: 5, Channel: model.ChannelSMS, Status: model.MessageStatusSent, JobID: intPtr(10), CreatedAt: now.AddDate(0, 0, -1)},
		{ID: 6, Channel: model.ChannelSMS, Status: model.MessageStatusPending, JobID: intPtr(99), CreatedAt: at(13)},
	}
	today := DayWindow(now)

	t.Run("newest matching channel and job", func(t *testing.T) {
		got := FindMatchingMessage(messages, MatchParams{Channel: model.ChannelSMS, JobID: 10, QuoteID: 20, Window: today})
		require.NotNil(t, got)
		assert.Equal(t, 3, got.ID)
	})

	t.Run("channel never differs", func(t *testing.T) {
		for _, ch := range []model.Channel{model.ChannelSMS, model.ChannelEmail} {
			got := FindMatchingMessage(messages, MatchParams{Channel: ch, JobID: 10, QuoteID: 20, InvoiceID: 30, Window: today})
			if got != nil {
				assert.Equal(t, ch, got.Channel)
			}
		}
	})

	t.Run("email match", func(t *testing.T) {
		got := FindMatchingMessage(messages, MatchParams{Channel: model.ChannelEmail, JobID: 10, Window: today})
		require.NotNil(t, got)
		assert.Equal(t, 2, got.ID)
	})

	t.Run("window excludes yesterday", func(t *testing.T) {
		got := FindMatchingMessage(messages, MatchParams{Channel: model.ChannelSMS, JobID: 10, Window: today})
		require.NotNil(t, got)
		assert.Equal(t, 1, got.ID)
	})

	t.Run("open window includes yesterday", func(t *testing.T) {
		got := FindMatchingMessage(messages[4:5], MatchParams{Channel: model.ChannelSMS, JobID: 10})
		require.NotNil(t, got)
		assert.Equal(t, 5, got.ID)
	})

	t.Run("no ids", func(t *testing.T) {
		assert.Nil(t, FindMatchingMessage(messages, MatchParams{Channel: model.ChannelSMS, Window: today}))
	})

	t.Run("no linkage", func(t *testing.T) {
		assert.Nil(t, FindMatchingMessage(messages, MatchParams{Channel: model.ChannelSMS, InvoiceID: 30, Window: today}))
	})

	t.Run("ties broken by id", func(t *testing.T) {
		tied := []model.Message{
			{ID: 7, Channel: model.ChannelSMS, JobID: intPtr(1), CreatedAt: at(10)},
			{ID: 8, Channel: model.ChannelSMS, JobID: intPtr(1), CreatedAt: at(10)},
		}
		got := FindMatchingMessage(tied, MatchParams{Channel: model.ChannelSMS, JobID: 1, Window: today})
		require.NotNil(t, got)
		assert.Equal(t, 8, got.ID)
	})
}

func TestDayWindow(t *testing.T) {
	now := time.Date(2024, 6, 3, 15, 30, 0, 0, time.UTC)
	w := DayWindow(now)
	assert.True(t, w.Contains(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.Contains(time.Date(2024, 6, 3, 23, 59, 59, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2024, 6, 2, 23, 59, 59, 0, time.UTC)))
}
