package mail

import (
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// InspectionEmailData is the view rendered into the inspection mail body.
type InspectionEmailData struct {
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	Created      int
	Updated      int
	CreateFailed int
	UpdateFailed int
	StillPending int
	Rejected     []int64
	Categories   []CategoryLine
}

type CategoryLine struct {
	Name     string
	TableIDs []int64
}

// dialer is satisfied by *gomail.Dialer.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	Recipients []string
	Log        zerolog.Logger

	dialer dialer
}
