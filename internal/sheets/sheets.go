// Package sheets mirrors confirmed questionnaires into a Google spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/seplitsa/seplitsa-bot/internal/platform/config"
	"github.com/seplitsa/seplitsa-bot/internal/platform/observability"
	"github.com/seplitsa/seplitsa-bot/internal/profile"
)

const (
	timestampLayout = "2006-01-02 15:04:05"

	valueInputOption = "USER_ENTERED"
	insertDataOption = "INSERT_ROWS"

	statusOK       = "ok"
	statusError    = "error"
	statusDisabled = "disabled"

	defaultTimeout = 15 * time.Second
)

// Appender appends one row to a range.
type Appender interface {
	Append(ctx context.Context, rangeA1 string, row []interface{}) error
}

// Mirror implements profile.Mirror. A Mirror without an appender is disabled
// and every append is a no-op.
type Mirror struct {
	appender Appender
	rangeA1  string
	timeout  time.Duration
	logger   *zerolog.Logger
	now      func() time.Time
}

// NewMirror wraps an appender.
func NewMirror(appender Appender, rangeA1 string, timeout time.Duration, logger *zerolog.Logger) *Mirror {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Mirror{
		appender: appender,
		rangeA1:  rangeA1,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}
}

// New builds the mirror from configuration. Missing credentials disable the
// mirror with a warning instead of failing startup.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*Mirror, error) {
	if !cfg.SheetsEnabled {
		return NewMirror(nil, cfg.SheetsRange, cfg.SheetsTimeout, logger), nil
	}

	if _, err := os.Stat(cfg.SheetsCredentialsFile); err != nil {
		logger.Warn().Err(err).
			Str("credentials_file", cfg.SheetsCredentialsFile).
			Msg("spreadsheet credentials not found, mirror disabled")

		return NewMirror(nil, cfg.SheetsRange, cfg.SheetsTimeout, logger), nil
	}

	appender, err := NewServiceAppender(ctx, cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("range", cfg.SheetsRange).Msg("spreadsheet mirror enabled")

	return NewMirror(appender, cfg.SheetsRange, cfg.SheetsTimeout, logger), nil
}

// Enabled reports whether rows are actually written.
func (m *Mirror) Enabled() bool {
	return m != nil && m.appender != nil
}

// AppendProfile appends one row describing the confirmed profile.
func (m *Mirror) AppendProfile(ctx context.Context, userID int64, p profile.Profile, pr profile.Progress) error {
	if !m.Enabled() {
		observability.SheetsAppends.WithLabelValues(statusDisabled).Inc()

		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.appender.Append(ctx, m.rangeA1, m.row(userID, p, pr)); err != nil {
		observability.SheetsAppends.WithLabelValues(statusError).Inc()

		return fmt.Errorf("appending profile row: %w", err)
	}

	observability.SheetsAppends.WithLabelValues(statusOK).Inc()
	m.logger.Info().Int64(profile.LogFieldUserID, userID).Msg("profile mirrored to spreadsheet")

	return nil
}

func (m *Mirror) row(userID int64, p profile.Profile, pr profile.Progress) []interface{} {
	age := ""
	if p.Age != 0 {
		age = strconv.Itoa(p.Age)
	}

	return []interface{}{
		m.now().Format(timestampLayout),
		strconv.FormatInt(userID, 10),
		p.TelegramUsername,
		p.TelegramFirstName,
		p.TelegramLastName,
		p.Name,
		age,
		p.City,
		p.Financial,
		p.Motivation,
		string(pr.CurrentRank),
		pr.RegistrationDate,
	}
}

// ServiceAppender appends through the Sheets API.
type ServiceAppender struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// NewServiceAppender authenticates with a service account key file.
func NewServiceAppender(ctx context.Context, credentialsFile, spreadsheetID string) (*ServiceAppender, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &ServiceAppender{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Append appends the row after the last filled row of rangeA1.
func (a *ServiceAppender) Append(ctx context.Context, rangeA1 string, row []interface{}) error {
	_, err := a.svc.Spreadsheets.Values.
		Append(a.spreadsheetID, rangeA1, &gsheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets values append: %w", err)
	}

	return nil
}

var _ profile.Mirror = (*Mirror)(nil)
