package bot

import (
	"bytes"
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/JamesLuiz/House-me/internal/storage"
)

const usersSheet = "Users"

var userColumns = []string{
	"ID", "First name", "Last name", "Username", "Language", "Premium",
	"Favorites", "Balance", "Referred by", "Referrals", "Created at",
}

// buildUsersWorkbook writes every stored user as one row. It returns the
// number of users written.
func buildUsersWorkbook(ctx context.Context, users storage.UserStore) (*excelize.File, int, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(usersSheet)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, 0, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	for i, title := range userColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(usersSheet, cell, title)
	}
	if style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(userColumns), 1)
		f.SetCellStyle(usersSheet, "A1", last, style)
	}

	row := 2
	err = users.EachUser(ctx, func(u *storage.User) error {
		values := []any{
			u.ID, u.FirstName, u.LastName, u.Username, u.LanguageCode, u.IsPremium,
			len(u.Favorites), u.Balance, u.ReferredBy, len(u.Referrals),
			u.CreatedAt.UTC().Format(time.RFC3339),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(usersSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row for user %s: %w", u.ID, err)
		}
		row++
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	f.SetColWidth(usersSheet, "A", "A", 14)
	f.SetColWidth(usersSheet, "B", "D", 20)
	f.SetColWidth(usersSheet, "K", "K", 22)

	return f, row - 2, nil
}

// exportUsers sends the users workbook to the admin's chat.
func (b *Bot) exportUsers(ctx context.Context, session *UserSession) error {
	f, count, err := buildUsersWorkbook(ctx, b.users)
	if err != nil {
		return err
	}
	defer f.Close()

	if count == 0 {
		session.reply(MsgAdminExportEmpty)
		return nil
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	date := b.now().Format("2006-01-02")
	doc := tgbotapi.NewDocument(session.userId, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("users-%s.xlsx", date),
		Bytes: buf.Bytes(),
	})
	doc.Caption = formatReplyText(MsgAdminExportCaption, pluralize("user", "users", count))
	if _, err := b.tg.Send(doc); err != nil {
		return fmt.Errorf("failed to send export: %w", err)
	}

	log.Info().Int64("userId", session.userId).Int("users", count).Msg("exported users")
	return nil
}
