package service

import (
	"bitwise74/conference-api/internal/model"
	"fmt"
	"html"
	"net/url"
	"time"
)

// Links builds absolute URLs to the frontend
type Links struct {
	Domain string
	SSL    bool
}

func (l Links) URL(path string, query url.Values) string {
	scheme := "http"
	if l.SSL {
		scheme = "https"
	}

	u := url.URL{Scheme: scheme, Host: l.Domain, Path: path}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	return u.String()
}

func body(lines ...string) string {
	var out string
	for _, l := range lines {
		out += "<p>" + l + "</p>"
	}

	return out
}

var esc = html.EscapeString

func VerificationMail(l Links, to string, t *model.VerificationToken) Mail {
	link := l.URL("/verify", url.Values{"user_id": {t.UserID}, "token": {t.Token}})

	return Mail{
		To:      to,
		Subject: "Verify your email address",
		HTML: body(
			fmt.Sprintf("Click <a href='%s'>here</a> to verify your account.", link),
			"This link will expire in 30 minutes.",
		),
	}
}

func ResetCodeMail(to, code string) Mail {
	return Mail{
		To:      to,
		Subject: "Your password reset code",
		HTML: body(
			fmt.Sprintf("Your password reset code is <b>%s</b>.", code),
			"It expires in 10 minutes. If you didn't ask for a reset you can ignore this mail.",
		),
	}
}

func StaffCredentialsMail(l Links, u *model.User, password string) Mail {
	return Mail{
		To:      u.Email,
		Subject: fmt.Sprintf("Your %s account", u.Role),
		HTML: body(
			fmt.Sprintf("An account with the role %s was created for you.", esc(string(u.Role))),
			fmt.Sprintf("Email: %s<br>Temporary password: <b>%s</b>", esc(u.Email), esc(password)),
			fmt.Sprintf("Sign in at <a href='%s'>%s</a> and change your password.", l.URL("/login", nil), esc(l.Domain)),
		),
	}
}

func SubmissionReceivedMail(p *model.Paper, bookingID string) Mail {
	return Mail{
		To:      p.AuthorEmail,
		Subject: "Submission received: " + p.SubmissionID,
		HTML: body(
			fmt.Sprintf("We received your paper <i>%s</i>.", esc(p.Title)),
			fmt.Sprintf("Submission ID: <b>%s</b><br>Booking ID: <b>%s</b>", p.SubmissionID, bookingID),
		),
	}
}

func EditorAssignedMail(to string, p *model.Paper) Mail {
	return Mail{
		To:      to,
		Subject: "Paper assigned to you: " + p.SubmissionID,
		HTML:    body(fmt.Sprintf("You are now the handling editor of <i>%s</i> (%s).", esc(p.Title), p.SubmissionID)),
	}
}

func ReviewerAssignedMail(to string, p *model.Paper, deadline time.Time) Mail {
	return Mail{
		To:      to,
		Subject: "Review request: " + p.SubmissionID,
		HTML: body(
			fmt.Sprintf("You were asked to review <i>%s</i> (%s).", esc(p.Title), p.SubmissionID),
			"Please submit your review by "+deadline.Format(time.RFC1123)+".",
		),
	}
}

func ReviewReminderMail(to string, p *model.Paper, deadline time.Time) Mail {
	return Mail{
		To:      to,
		Subject: "Reminder: review pending for " + p.SubmissionID,
		HTML: body(
			fmt.Sprintf("Your review of <i>%s</i> (%s) is still pending.", esc(p.Title), p.SubmissionID),
			"It was due "+deadline.Format(time.RFC1123)+".",
		),
	}
}

func ReviewSubmittedMail(to string, p *model.Paper) Mail {
	return Mail{
		To:      to,
		Subject: "Review submitted for " + p.SubmissionID,
		HTML:    body(fmt.Sprintf("A reviewer submitted a review of <i>%s</i>.", esc(p.Title))),
	}
}

func AllReviewsInMail(to string, p *model.Paper) Mail {
	return Mail{
		To:      to,
		Subject: "All reviews received for " + p.SubmissionID,
		HTML:    body(fmt.Sprintf("Every reviewer of <i>%s</i> has submitted. The paper is ready for a decision.", esc(p.Title))),
	}
}

func RevisionRequestedMail(p *model.Paper, comments string) Mail {
	return Mail{
		To:      p.AuthorEmail,
		Subject: "Revision requested for " + p.SubmissionID,
		HTML: body(
			fmt.Sprintf("The editor asked for a revision of <i>%s</i>.", esc(p.Title)),
			esc(comments),
		),
	}
}

func RevisionSubmittedMail(to string, p *model.Paper, version int) Mail {
	return Mail{
		To:      to,
		Subject: "Revision submitted for " + p.SubmissionID,
		HTML:    body(fmt.Sprintf("The author uploaded version %d of <i>%s</i>.", version, esc(p.Title))),
	}
}

func DecisionMail(p *model.Paper) Mail {
	return Mail{
		To:      p.AuthorEmail,
		Subject: fmt.Sprintf("Decision on %s: %s", p.SubmissionID, p.FinalDecision),
		HTML: body(
			fmt.Sprintf("The decision on <i>%s</i> is <b>%s</b>.", esc(p.Title), esc(p.FinalDecision)),
			esc(p.EditorComments),
		),
	}
}

func CopyrightDecisionMail(to string, c *model.Copyright) Mail {
	return Mail{
		To:      to,
		Subject: fmt.Sprintf("Copyright form %s: %s", c.SubmissionID, c.Status),
		HTML: body(
			fmt.Sprintf("Your copyright form for %s was <b>%s</b>.", c.SubmissionID, esc(c.Status)),
			esc(c.AdminComment),
		),
	}
}

func PaymentDecisionMail(to string, p *model.Payment) Mail {
	return Mail{
		To:      to,
		Subject: fmt.Sprintf("Payment for %s: %s", p.SubmissionID, p.Status),
		HTML: body(
			fmt.Sprintf("Your payment of %.2f %s for %s was <b>%s</b>.", p.Amount, esc(p.Currency), p.SubmissionID, esc(p.Status)),
			esc(p.AdminComment),
		),
	}
}

func MessageMail(to, subject, text string) Mail {
	return Mail{
		To:      to,
		Subject: subject,
		HTML:    body(esc(text)),
	}
}
