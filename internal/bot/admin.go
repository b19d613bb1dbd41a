package bot

import (
	"context"
	"errors"
	"time"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/JamesLuiz/House-me/internal/jobs"
)

func (b *Bot) isAdmin(userId int64) bool {
	return b.opts.AdminID != 0 && userId == b.opts.AdminID
}

// handleAdminCommand runs an operational command. Commands from anyone but
// the configured admin are dropped without a reply.
func (b *Bot) handleAdminCommand(ctx context.Context, session *UserSession, cmd Command) error {
	if !b.isAdmin(session.userId) {
		log.Warn().Int64("userId", session.userId).Str("command", cmd.Name).Msg("ignoring admin command from non-admin")
		return nil
	}

	log.Info().Int64("userId", session.userId).Str("command", cmd.Name).Msg("admin command")

	switch cmd.Kind {
	case CommandRefreshImages:
		b.startRefresh(ctx, session)
	case CommandTerminate:
		b.terminateRefresh(session)
	case CommandStatus:
		return b.replyStatus(ctx, session)
	case CommandExport:
		return b.exportUsers(ctx, session)
	}
	return nil
}

func (b *Bot) startRefresh(ctx context.Context, session *UserSession) {
	// The run outlives the update that started it
	run, err := b.refresher.Start(context.WithoutCancel(ctx))
	if errors.Is(err, jobs.ErrAlreadyRunning) {
		current := b.refresher.Current()
		if current == nil {
			session.reply(MsgAdminNothingToStop)
			return
		}
		processed, _ := current.Progress()
		session.reply(MsgAdminRefreshRunning, current.ID, humanize.Comma(processed))
		return
	}
	session.reply(MsgAdminRefreshStarted, run.ID)
}

func (b *Bot) terminateRefresh(session *UserSession) {
	if _, err := b.refresher.Terminate(); errors.Is(err, jobs.ErrNotRunning) {
		session.reply(MsgAdminNothingToStop)
		return
	}
	session.reply(MsgAdminTerminating)
}

func (b *Bot) replyStatus(ctx context.Context, session *UserSession) error {
	count, err := b.users.CountUsers(ctx)
	if err != nil {
		return err
	}

	job := MsgAdminJobIdle
	if run := b.refresher.Current(); run != nil {
		processed, _ := run.Progress()
		job = formatReplyText(MsgAdminJobActive, humanize.Time(run.StartedAt), humanize.Comma(processed))
	}

	session.reply(MsgAdminStatus, humanize.Comma(count), b.chats.Backend(), b.state.Len(), job)
	return nil
}

// notifyRefreshDone reports a finished refresh run to the admin.
func (b *Bot) notifyRefreshDone(summary jobs.Summary) {
	if b.opts.AdminID == 0 {
		return
	}

	duration := summary.Duration.Round(time.Second).String()
	var text string
	switch {
	case summary.Err != nil:
		text = formatReplyText(MsgAdminRefreshFailed, summary.Processed, summary.Err.Error())
	case summary.Expired:
		text = formatReplyText(MsgAdminRefreshExpired, summary.Processed, summary.Updated, summary.Failed, duration)
	case summary.Terminated:
		text = formatReplyText(MsgAdminRefreshTerminated, summary.Processed, summary.Updated, summary.Failed, duration)
	default:
		text = formatReplyText(MsgAdminRefreshFinished, summary.Processed, summary.Updated, summary.Failed, duration)
	}

	if _, err := b.tg.Send(tgbotapi.NewMessage(b.opts.AdminID, text)); err != nil {
		log.Error().Err(err).Str("runId", summary.RunID).Msg("failed to send refresh summary")
	}
}
