package smtp

import (
	"io"
	"net/mail"
	"regexp"
	"strings"

	"github.com/jhillyerd/enmime"
	"github.com/welldanyogia/elite-estate/internal/inquiry"
)

var (
	scriptRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe    = regexp.MustCompile(`<[^>]*>`)
)

// ParsedEmail is the part of an email an inquiry is made from.
// Attachments are ignored.
type ParsedEmail struct {
	SenderEmail string
	SenderName  string
	Subject     string
	BodyText    string
	BodyHTML    string
}

// ParseEmail parses an email from an io.Reader
func ParseEmail(r io.Reader) (*ParsedEmail, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedEmail{
		Subject:  strings.TrimSpace(env.GetHeader("Subject")),
		BodyText: env.Text,
		BodyHTML: env.HTML,
	}

	if addrs, err := env.AddressList("From"); err == nil && len(addrs) > 0 {
		parsed.SenderName = strings.TrimSpace(addrs[0].Name)
		parsed.SenderEmail = strings.TrimSpace(addrs[0].Address)
	} else {
		parsed.SenderName, parsed.SenderEmail = parseFromHeader(env.GetHeader("From"))
	}

	return parsed, nil
}

// SubmitInput maps the email onto contact form fields. The name falls back to
// the local part of the sender address and the message is the subject
// followed by the plain-text body.
func (p *ParsedEmail) SubmitInput() inquiry.SubmitInput {
	name := p.SenderName
	if name == "" {
		name, _, _ = strings.Cut(p.SenderEmail, "@")
	}

	body := strings.TrimSpace(p.BodyText)
	if body == "" && p.BodyHTML != "" {
		body = collapseWhitespace(stripHTMLTags(p.BodyHTML))
	}

	message := body
	if p.Subject != "" {
		message = strings.TrimSpace(p.Subject + "\n\n" + body)
	}

	return inquiry.SubmitInput{
		Name:    name,
		Email:   p.SenderEmail,
		Message: message,
	}
}

// parseFromHeader extracts name and email from a From header that enmime
// could not turn into an address list
func parseFromHeader(from string) (name, email string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", ""
	}

	if addr, err := mail.ParseAddress(from); err == nil {
		return addr.Name, addr.Address
	}

	// Fallback: treat entire string as email
	return "", strings.Trim(from, "<>")
}

// stripHTMLTags removes HTML tags from a string
func stripHTMLTags(html string) string {
	// Remove script and style elements
	html = scriptRe.ReplaceAllString(html, "")
	html = styleRe.ReplaceAllString(html, "")

	// Remove HTML tags
	html = tagRe.ReplaceAllString(html, " ")

	// Decode common HTML entities
	html = strings.ReplaceAll(html, "&nbsp;", " ")
	html = strings.ReplaceAll(html, "&lt;", "<")
	html = strings.ReplaceAll(html, "&gt;", ">")
	html = strings.ReplaceAll(html, "&quot;", `"`)
	html = strings.ReplaceAll(html, "&#39;", "'")
	html = strings.ReplaceAll(html, "&amp;", "&")

	return html
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
