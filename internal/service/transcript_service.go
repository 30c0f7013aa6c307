package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/community-bot/internal/clock"
	"github.com/spec-kit/community-bot/internal/platform"
	apperrors "github.com/spec-kit/community-bot/pkg/util/errorutil"
)

const (
	// TranscriptBlockLimit bounds the text inside each fenced block.
	TranscriptBlockLimit = 1900
	// DefaultTranscriptLimit is how many of the latest messages are kept.
	DefaultTranscriptLimit = 500
	emptyTranscript        = "No messages found."
	fence                  = "```"
)

// TranscriptService renders a channel's history into the action log.
type TranscriptService struct {
	platform  platform.Platform
	clock     clock.Clock
	logger    *zap.Logger
	channelID string
	limit     int
}

// NewTranscriptService posts transcripts to logChannelID.
func NewTranscriptService(p platform.Platform, clk clock.Clock, logger *zap.Logger, logChannelID string, limit int) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.Real()
	}
	if limit <= 0 {
		limit = DefaultTranscriptLimit
	}
	return &TranscriptService{platform: p, clock: clk, logger: logger, channelID: logChannelID, limit: limit}
}

// Emit posts a header embed followed by the paginated transcript. An
// unreadable history produces the empty transcript rather than an error.
func (s *TranscriptService) Emit(ctx context.Context, ch platform.Channel) error {
	msgs, err := s.platform.MessageHistory(ctx, ch.ID, s.limit)
	if err != nil {
		s.logger.Warn("ticket history unreadable", zap.String("channel_id", ch.ID), zap.Error(err))
		msgs = nil
	}

	now := s.clock.Now()
	header := platform.Message{Embed: &platform.Embed{
		Title:       "Transcript — " + ch.Name,
		Description: "Ticket closed at " + now.UTC().Format(tsLayout),
		Timestamp:   now,
		Color:       BotColor,
	}}
	if _, err := s.platform.SendMessage(ctx, s.channelID, header); err != nil {
		return apperrors.NewCollaboratorFailure("send transcript header", err)
	}

	for _, block := range Paginate(TranscriptLines(msgs), TranscriptBlockLimit) {
		if _, err := s.platform.SendMessage(ctx, s.channelID, platform.Message{Content: fence + block + fence}); err != nil {
			return apperrors.NewCollaboratorFailure("send transcript block", err)
		}
	}
	return nil
}

// TranscriptLines formats history oldest first, one line per text line.
func TranscriptLines(msgs []platform.HistoryMessage) []string {
	var lines []string
	for _, m := range msgs {
		content := m.Content
		if len(m.Attachments) > 0 {
			content = fmt.Sprintf("%s\n[Attachments: %s]", content, strings.Join(m.Attachments, " "))
		}
		entry := fmt.Sprintf("[%s] %s (%s): %s", m.CreatedAt.UTC().Format(tsLayoutOffset), m.AuthorName, m.AuthorID, content)
		lines = append(lines, strings.Split(entry, "\n")...)
	}
	if len(lines) == 0 {
		return []string{emptyTranscript}
	}
	return lines
}

// Paginate packs newline-terminated lines into blocks of at most max
// characters. A line longer than max is split across blocks.
func Paginate(lines []string, max int) []string {
	if max < 1 {
		max = TranscriptBlockLimit
	}
	var (
		blocks  []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			blocks = append(blocks, current.String())
			current.Reset()
		}
	}
	for _, line := range lines {
		if len(line)+1 > max {
			flush()
			for len(line)+1 > max {
				cut := runeCut(line, max)
				blocks = append(blocks, line[:cut])
				line = line[cut:]
			}
			if line == "" {
				continue
			}
		}
		if current.Len()+len(line)+1 > max {
			flush()
		}
		current.WriteString(line)
		current.WriteByte('\n')
	}
	flush()
	return blocks
}

// runeCut returns the largest index <= n that does not split a rune.
func runeCut(s string, n int) int {
	if n >= len(s) {
		return len(s)
	}
	for i := n; i > 0; i-- {
		if utf8.RuneStart(s[i]) {
			return i
		}
	}
	return n
}
