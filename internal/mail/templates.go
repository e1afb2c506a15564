package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// Branding is the product identity every email carries
type Branding struct {
	Name      string
	ClientURL string
}

func (b Branding) link(path string) string {
	return strings.TrimRight(b.ClientURL, "/") + path
}

const (
	colorPrimary = "#5b8def"
	colorText    = "#111827"
	colorMuted   = "#6b7280"
	colorBg      = "#f7f9fc"
	colorBorder  = "#e5e7eb"
)

var palette = map[string]string{
	"Primary": colorPrimary,
	"Text":    colorText,
	"Muted":   colorMuted,
	"Bg":      colorBg,
	"Border":  colorBorder,
}

// LayoutData fills the shared branded layout. Intro is trusted markup; build
// it with the intro templates so user values are escaped.
type LayoutData struct {
	Title      string
	Intro      template.HTML
	ButtonText string
	ButtonLink string
	FooterNote string
}

var layoutTmpl = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width" />
<title>{{.Title}} • {{.Brand}}</title>
</head>
<body style="margin:0;padding:24px;background:{{.C.Bg}};font-family:Inter,Segoe UI,Roboto,Helvetica,Arial,sans-serif;">
  <table width="100%" border="0" cellspacing="0" cellpadding="0" role="presentation">
    <tr>
      <td align="center">
        <table width="560" style="width:560px;max-width:560px;background:#ffffff;border:1px solid {{.C.Border}};border-radius:14px;overflow:hidden;">
          <tr>
            <td style="padding:24px 24px 0 24px;">
              <table width="100%">
                <tr>
                  <td align="left" style="font-size:18px;font-weight:800;color:{{.C.Text}};">{{.Brand}}</td>
                  <td align="right" style="color:{{.C.Muted}};font-size:12px;">{{.Year}}</td>
                </tr>
              </table>
            </td>
          </tr>
          <tr>
            <td style="padding:24px;">
              <h1 style="margin:0 0 8px 0;font-size:22px;line-height:1.3;color:{{.C.Text}};">{{.Title}}</h1>
              <p style="margin:0 0 20px 0;color:{{.C.Muted}};font-size:14px;line-height:1.6;">{{.Intro}}</p>
              {{- if .ButtonLink}}
              <table role="presentation" cellspacing="0" cellpadding="0" border="0" style="margin:16px 0 6px 0;">
                <tr>
                  <td align="center" bgcolor="{{.C.Primary}}" style="border-radius:10px;">
                    <a href="{{.ButtonLink}}" style="display:inline-block;padding:12px 22px;border-radius:10px;background:{{.C.Primary}};color:#ffffff;font-weight:700;font-size:14px;">{{.ButtonText}}</a>
                  </td>
                </tr>
              </table>
              <p style="margin:12px 0 0 0;color:{{.C.Muted}};font-size:12px;line-height:1.6;">
                Or copy &amp; paste this URL in your browser:<br />
                <span style="word-break:break-all;"><a href="{{.ButtonLink}}">{{.ButtonLink}}</a></span>
              </p>
              {{- end}}
              {{- if .FooterNote}}
              <div style="margin-top:18px;padding:12px;border:1px dashed {{.C.Border}};border-radius:10px;">
                <p style="margin:0;color:{{.C.Muted}};font-size:12px;line-height:1.6;">{{.FooterNote}}</p>
              </div>
              {{- end}}
              <p style="margin:18px 0 0 0;color:{{.C.Muted}};font-size:12px;">If you didn't request this, you can safely ignore this email.</p>
            </td>
          </tr>
          <tr>
            <td style="padding:16px 24px;background:#fafbff;border-top:1px solid {{.C.Border}};">
              <p style="margin:0;color:{{.C.Muted}};font-size:12px;">© {{.Year}} {{.Brand}}. All rights reserved.</p>
            </td>
          </tr>
        </table>
        <p style="color:{{.C.Muted}};font-size:12px;margin:16px 0 0 0;">This message was sent by {{.Brand}}. Please don't reply to this email.</p>
      </td>
    </tr>
  </table>
</body>
</html>`))

var acceptedTmpl = template.Must(template.New("accepted").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width" />
<title>Application Accepted • {{.Brand}}</title>
</head>
<body style="margin:0;padding:24px;background:{{.C.Bg}};font-family:Inter,Segoe UI,Roboto,Helvetica,Arial,sans-serif;">
  <table width="100%" border="0" cellspacing="0" cellpadding="0" role="presentation">
    <tr>
      <td align="center">
        <table width="560" style="width:560px;max-width:560px;background:#ffffff;border:1px solid {{.C.Border}};border-radius:14px;overflow:hidden;padding:24px;">
          <tr>
            <td style="padding-bottom:12px;font-size:18px;font-weight:800;color:{{.C.Text}};">{{.Brand}}</td>
          </tr>
          <tr>
            <td>
              <h2 style="font-size:22px;margin:0 0 12px 0;color:{{.C.Text}};">Your Application Was Accepted 🎉</h2>
              <p style="font-size:15px;line-height:1.6;color:{{.C.Text}};margin:0 0 16px;">
                Hi {{.Name}},<br/><br/>
                Great news! Your application for <b>{{.JobTitle}}</b> at <b>{{.Company}}</b> has been <b>accepted</b> by the recruiter.
              </p>
              <p style="font-size:13px;margin:16px 0;color:{{.C.Muted}};line-height:1.6;">
                You will hear from the recruiter soon regarding the next steps. No action is required from your side right now.
              </p>
              <p style="font-size:12px;color:{{.C.Muted}};margin-top:32px;">If you did not apply for this job, you may safely ignore this email.</p>
            </td>
          </tr>
        </table>
        <p style="color:{{.C.Muted}};font-size:12px;margin-top:12px;">© {{.Year}} {{.Brand}}. All rights reserved.</p>
      </td>
    </tr>
  </table>
</body>
</html>`))

var (
	receivedIntroTmpl = template.Must(template.New("received").Parse(
		`Hi {{.Name}},<br/>Thanks for applying to <strong>{{.JobTitle}}</strong> at <strong>{{.Company}}</strong>. We have received your application and the recruiter will review it shortly.`))

	newApplicationIntroTmpl = template.Must(template.New("new-application").Parse(
		`Hi {{.RecruiterName}},<br/><strong>{{.ApplicantName}}</strong> has applied to your job <strong>{{.JobTitle}}</strong> at <strong>{{.Company}}</strong>.`))
)

// Layout renders the shared branded layout
func Layout(b Branding, year int, d LayoutData) (string, error) {
	var buf bytes.Buffer
	err := layoutTmpl.Execute(&buf, struct {
		LayoutData
		Brand string
		Year  int
		C     map[string]string
	}{d, b.Name, year, palette})
	if err != nil {
		return "", fmt.Errorf("failed to render layout: %w", err)
	}
	return buf.String(), nil
}

// ApplicationData describes one application for the applicant-facing templates
type ApplicationData struct {
	Name      string
	JobTitle  string
	Company   string
	NextSteps string
}

// ApplicationReceived is the receipt sent to an applicant after applying
func ApplicationReceived(b Branding, year int, to string, d ApplicationData) (Message, error) {
	d.Name = orThere(d.Name)

	intro, err := renderFragment(receivedIntroTmpl, d)
	if err != nil {
		return Message{}, err
	}

	footer := d.NextSteps
	if footer == "" {
		footer = "You will be notified by email if the recruiter shortlists or accepts your application."
	}

	html, err := Layout(b, year, LayoutData{
		Title:      "Application received",
		Intro:      intro,
		ButtonText: "View your applications",
		ButtonLink: b.link("/dashboard/seeker"),
		FooterNote: footer,
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Application received • %s @ %s", d.JobTitle, d.Company),
		HTML:    html,
	}, nil
}

// ApplicationAccepted is the dedicated acceptance email
func ApplicationAccepted(b Branding, year int, to string, d ApplicationData) (Message, error) {
	d.Name = orThere(d.Name)

	var buf bytes.Buffer
	err := acceptedTmpl.Execute(&buf, struct {
		ApplicationData
		Brand string
		Year  int
		C     map[string]string
	}{d, b.Name, year, palette})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render acceptance email: %w", err)
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Application accepted • %s @ %s", d.JobTitle, d.Company),
		HTML:    buf.String(),
	}, nil
}

// NewApplicationData describes an application for the recruiter-facing template
type NewApplicationData struct {
	RecruiterName string
	ApplicantName string
	ApplicantID   string
	JobTitle      string
	Company       string
}

// NewApplicationForRecruiter tells a recruiter someone applied to their job
func NewApplicationForRecruiter(b Branding, year int, to string, d NewApplicationData) (Message, error) {
	d.RecruiterName = orThere(d.RecruiterName)

	intro, err := renderFragment(newApplicationIntroTmpl, d)
	if err != nil {
		return Message{}, err
	}

	link := b.link("/dashboard/recruiter")
	if d.ApplicantID != "" {
		link = b.link("/recruiter/applicants/" + d.ApplicantID)
	}

	html, err := Layout(b, year, LayoutData{
		Title:      "New application received",
		Intro:      intro,
		ButtonText: "View application",
		ButtonLink: link,
		FooterNote: "Open the recruiter dashboard to view the full application and resume.",
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("New applicant for %s", d.JobTitle),
		HTML:    html,
	}, nil
}

func renderFragment(t *template.Template, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", t.Name(), err)
	}
	return template.HTML(buf.String()), nil
}

func orThere(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
