package mail

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/Masterminds/sprig/v3"
)

type ReminderMailParams struct {
	DocumentName  string
	ExpiryDate    time.Time
	DaysRemaining int
	SenderName    string
}

var (
	reminderTemplate = template.New("reminder").Funcs(sprig.FuncMap())

	//go:embed templates/reminder.html
	reminderTemplateRaw string
)

func init() {
	if _, err := reminderTemplate.Parse(reminderTemplateRaw); err != nil {
		panic(err)
	}
}

func render(t *template.Template, p any) (string, error) {
	b := bytes.Buffer{}
	err := t.Execute(&b, p)
	return b.String(), err
}

func RenderReminder(p ReminderMailParams) (string, error) {
	return render(reminderTemplate, p)
}

// ReminderSubject is the subject line of a reminder for documentName.
func ReminderSubject(documentName string) string {
	return fmt.Sprintf("Renewal Reminder: %s", documentName)
}
