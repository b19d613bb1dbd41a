package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/JamesLuiz/House-me/internal/storage"
)

const referralPrefix = "ref_"

// handleStart registers first-time users and sends the welcome menu.
// Database failures after initialization are logged and the welcome is
// still sent.
func (b *Bot) handleStart(ctx context.Context, session *UserSession, message *tgbotapi.Message, payload string) error {
	if !b.users.Initialized() {
		if err := b.users.Init(ctx); err != nil {
			log.Error().Err(err).Msg("failed to initialize user store")
			session.reply(MsgDatabaseUnavail)
			return nil
		}
	}

	user, err := b.users.GetUser(ctx, userKey(session.userId))
	if err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Msg("failed to look up user")
	} else if user == nil {
		b.createUser(ctx, message.From, payload)
	}

	keyboard := makeStartKeyboard(b.opts.WebAppURL, b.opts.SupportURL)
	session.replyWithKeyboard(&keyboard, MsgWelcome, escapeMarkdown(firstNameOf(message.From)))
	return nil
}

func (b *Bot) createUser(ctx context.Context, from *tgbotapi.User, payload string) {
	now := b.now().UTC()
	user := &storage.User{
		ID:           userKey(from.ID),
		FirstName:    firstNameOf(from),
		LastName:     from.LastName,
		Username:     from.UserName,
		LanguageCode: orDefault(from.LanguageCode, "en"),
		Favorites:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	image, err := b.ResolveUserImage(ctx, from.ID)
	if err != nil {
		log.Warn().Err(err).Int64("userId", from.ID).Msg("failed to resolve profile image")
	}
	user.UserImage = image

	if referrer := b.findReferrer(ctx, from.ID, payload); referrer != nil {
		b.applyReferral(ctx, referrer, user)
	}

	created, err := b.users.CreateUser(ctx, user)
	if err != nil {
		log.Error().Err(err).Int64("userId", from.ID).Msg("failed to create user")
		return
	}
	if created {
		usersCreatedTotal.Inc()
		log.Info().Int64("userId", from.ID).Str("referredBy", user.ReferredBy).Msg("created user")
	}
}

// findReferrer returns the existing user named by a "ref_<id>" payload.
// Self referrals and unknown ids yield nil.
func (b *Bot) findReferrer(ctx context.Context, userId int64, payload string) *storage.User {
	id, ok := strings.CutPrefix(strings.TrimSpace(payload), referralPrefix)
	if !ok || id == "" || id == userKey(userId) {
		return nil
	}

	referrer, err := b.users.GetUser(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("referrerId", id).Msg("failed to look up referrer")
		return nil
	}
	if referrer == nil {
		log.Info().Str("referrerId", id).Msg("ignoring referral from unknown user")
	}
	return referrer
}

func (b *Bot) applyReferral(ctx context.Context, referrer *storage.User, user *storage.User) {
	bonus := b.opts.ReferralBonus
	if err := b.users.ApplyReferral(ctx, referrer.ID, user.ID, bonus); err != nil {
		log.Error().Err(err).Str("referrerId", referrer.ID).Str("userId", user.ID).Msg("failed to apply referral")
		return
	}
	user.ReferredBy = referrer.ID
	referralsTotal.Inc()

	chatID, err := strconv.ParseInt(referrer.ID, 10, 64)
	if err != nil {
		log.Warn().Str("referrerId", referrer.ID).Msg("referrer id is not a chat id")
		return
	}
	msg := tgbotapi.NewMessage(chatID, formatReplyText(MsgReferralReward,
		escapeMarkdown(user.FirstName), "₦"+humanize.Comma(bonus)))
	if _, err := b.tg.Send(msg); err != nil {
		log.Warn().Err(err).Str("referrerId", referrer.ID).Msg("failed to notify referrer")
	}
}
