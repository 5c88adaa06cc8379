package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/crm-sync/internal/config"
	"github.com/xavierca1/crm-sync/internal/entity"
)

//go:embed templates/*.txt
var templates embed.FS

var inspectionTmpl = template.Must(
	template.New("inspection.txt").
		Funcs(template.FuncMap{"join": joinIDs}).
		ParseFS(templates, "templates/inspection.txt"),
)

func NewEmailSender(cfg config.MailConfig, log zerolog.Logger) *EmailSender {
	return &EmailSender{
		Host:       cfg.Host,
		Port:       cfg.Port,
		User:       cfg.User,
		Password:   cfg.Password,
		From:       cfg.From,
		Recipients: cfg.Recipients,
		Log:        log,
		dialer:     gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

// SendInspectionReport mails the run report to every configured recipient.
func (s *EmailSender) SendInspectionReport(_ context.Context, report entity.InspectionReport) error {
	if len(s.Recipients) == 0 {
		return fmt.Errorf("mail: no inspection recipients configured")
	}

	body, err := RenderInspection(report)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.Recipients...)
	m.SetHeader("Subject", fmt.Sprintf("Lead sync %s: %d lead(s) need inspection", report.RunID, report.Categories.Total()))
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.Log.Error().Err(err).Str("run_id", report.RunID).Str("host", s.Host).Msg("[MAIL] inspection report not sent")
		return fmt.Errorf("mail: smtp send: %w", err)
	}

	s.Log.Info().
		Str("run_id", report.RunID).
		Strs("to", s.Recipients).
		Msg("[MAIL] inspection report sent")
	return nil
}

// RenderInspection renders the plain-text body of an inspection mail.
func RenderInspection(report entity.InspectionReport) (string, error) {
	data := InspectionEmailData{
		RunID:        report.RunID,
		StartedAt:    report.StartedAt,
		FinishedAt:   report.FinishedAt,
		Created:      report.Created,
		Updated:      report.Updated,
		CreateFailed: report.CreateFailed,
		UpdateFailed: report.UpdateFailed,
		StillPending: report.StillPending,
		Rejected:     report.Rejected,
	}
	for _, cat := range entity.InspectionCategories {
		if ids := report.Categories[cat]; len(ids) > 0 {
			data.Categories = append(data.Categories, CategoryLine{Name: string(cat), TableIDs: ids})
		}
	}

	var body bytes.Buffer
	if err := inspectionTmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("mail: render inspection template: %w", err)
	}
	return body.String(), nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
