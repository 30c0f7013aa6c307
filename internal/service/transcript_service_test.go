package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/community-bot/internal/clock"
	"github.com/spec-kit/community-bot/internal/platform"
	"github.com/spec-kit/community-bot/internal/platform/platformtest"
)

func TestTranscriptLines(t *testing.T) {
	at := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	lines := TranscriptLines([]platform.HistoryMessage{
		{AuthorID: "1", AuthorName: "alice", Content: "hi", CreatedAt: at},
		{AuthorID: "2", AuthorName: "bob", Content: "look", Attachments: []string{"https://a/1.png", "https://a/2.png"}, CreatedAt: at.Add(time.Minute)},
	})
	assert.Equal(t, []string{
		"[2026-01-10T12:00:00+00:00] alice (1): hi",
		"[2026-01-10T12:01:00+00:00] bob (2): look",
		"[Attachments: https://a/1.png https://a/2.png]",
	}, lines)

	assert.Equal(t, []string{"No messages found."}, TranscriptLines(nil))
}

func TestPaginate(t *testing.T) {
	lines := make([]string, 0, 300)
	for i := 0; i < 300; i++ {
		lines = append(lines, strings.Repeat("x", i%40))
	}
	blocks := Paginate(lines, 100)
	require.NotEmpty(t, blocks)
	for _, b := range blocks {
		assert.LessOrEqual(t, len(b), 100)
		assert.NotEmpty(t, b)
	}
	assert.Equal(t, strings.Join(lines, "\n")+"\n", strings.Join(blocks, ""))
}

func TestPaginateLongLine(t *testing.T) {
	blocks := Paginate([]string{"short", strings.Repeat("é", 30), "tail"}, 20)
	for _, b := range blocks {
		assert.LessOrEqual(t, len(b), 20)
		assert.True(t, strings.ToValidUTF8(b, "?") == b, "block splits a rune: %q", b)
	}
	assert.Equal(t, "short\n", blocks[0])
	assert.Equal(t, "tail\n", blocks[len(blocks)-1])
}

func TestTranscriptEmit(t *testing.T) {
	fake := platformtest.New()
	clk := clock.NewFake(epoch)
	svc := NewTranscriptService(fake, clk, zaptest.NewLogger(t), actionLogID, 2)
	fake.AddHistory("t1",
		platform.HistoryMessage{AuthorID: "1", AuthorName: "a", Content: "dropped", CreatedAt: epoch},
		platform.HistoryMessage{AuthorID: "1", AuthorName: "a", Content: "one", CreatedAt: epoch},
		platform.HistoryMessage{AuthorID: "2", AuthorName: "b", Content: "two", CreatedAt: epoch},
	)

	require.NoError(t, svc.Emit(context.Background(), platform.Channel{ID: "t1", Name: "u-1"}))

	msgs := fake.MessagesTo(actionLogID)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Transcript — u-1", msgs[0].Embed.Title)
	assert.Equal(t, "Ticket closed at 2026-03-01T20:00:00", msgs[0].Embed.Description)
	assert.True(t, strings.HasPrefix(msgs[1].Content, "```["))
	assert.True(t, strings.HasSuffix(msgs[1].Content, "```"))
	assert.Contains(t, msgs[1].Content, "a (1): one")
	assert.NotContains(t, msgs[1].Content, "dropped")
}

func TestTranscriptEmitEmptyHistory(t *testing.T) {
	fake := platformtest.New()
	fake.Fail(platformtest.OpMessageHistory, nil)
	svc := NewTranscriptService(fake, clock.NewFake(epoch), nil, actionLogID, 0)

	require.NoError(t, svc.Emit(context.Background(), platform.Channel{ID: "t1", Name: "u-1"}))
	msgs := fake.MessagesTo(actionLogID)
	require.Len(t, msgs, 2)
	assert.Equal(t, "```No messages found.\n```", msgs[1].Content)
}
