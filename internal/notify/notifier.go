package notify

import (
	"alcyxob/gym-manager/internal/domain"
	"bytes"
	"context"
	"fmt"
	"html/template"
)

// Notifier sends the member-facing emails.
type Notifier interface {
	Welcome(ctx context.Context, member *domain.Member, plan *domain.Plan) error
	ExpiryReminder(ctx context.Context, member *domain.Member, plan *domain.Plan) error
}

var (
	welcomeTmpl = template.Must(template.New("welcome").Parse(
		`<p>Hola {{.Name}},</p>
<p>Tu registro en {{.Gym}} fue exitoso. Plan: <strong>{{.Plan}}</strong> ({{.Price}}).</p>
<p>Tu membresía vence el {{.ExpiresAt}}.</p>`))

	reminderTmpl = template.Must(template.New("reminder").Parse(
		`<p>Hola {{.Name}},</p>
<p>Tu membresía {{.Plan}} en {{.Gym}} vence el {{.ExpiresAt}}.</p>
<p>Acércate a recepción para renovarla.</p>`))
)

type emailData struct {
	Name      string
	Gym       string
	Plan      string
	Price     string
	ExpiresAt string
}

// MailNotifier renders the emails and hands them to a Sender.
type MailNotifier struct {
	sender  Sender
	gymName string
}

func NewMailNotifier(sender Sender, gymName string) *MailNotifier {
	return &MailNotifier{sender: sender, gymName: gymName}
}

var _ Notifier = (*MailNotifier)(nil)

func (n *MailNotifier) Welcome(ctx context.Context, member *domain.Member, plan *domain.Plan) error {
	body, err := render(welcomeTmpl, n.data(member, plan))
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		To:      member.Email,
		Subject: "Bienvenido a " + n.gymName,
		HTML:    body,
	})
}

func (n *MailNotifier) ExpiryReminder(ctx context.Context, member *domain.Member, plan *domain.Plan) error {
	body, err := render(reminderTmpl, n.data(member, plan))
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		To:      member.Email,
		Subject: "Tu membresía está por vencer",
		HTML:    body,
	})
}

func (n *MailNotifier) data(member *domain.Member, plan *domain.Plan) emailData {
	d := emailData{
		Name:      member.Name,
		Gym:       n.gymName,
		ExpiresAt: member.ExpiresAt.Format("02/01/2006"),
	}
	if plan != nil {
		d.Plan = plan.Name
		d.Price = FormatPrice(plan.Price)
	}
	return d
}

// FormatPrice renders an amount in soles, e.g. "S/ 80.00".
func FormatPrice(amount float64) string {
	return fmt.Sprintf("S/ %.2f", amount)
}

func render(t *template.Template, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
