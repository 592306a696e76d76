package mail

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
	senderName       = "HOMELOTO"
)

type SendGrid struct {
	apiKey string
	from   string
	host   string
}

func NewSendGrid(apiKey, from string) *SendGrid {
	return &SendGrid{
		apiKey: apiKey,
		from:   from,
		host:   sendGridHost,
	}
}

func (c *SendGrid) Send(ctx context.Context, to, subject, body string) error {
	if c.apiKey == "" {
		return errors.New("sendgrid api key is empty")
	}
	if to == "" {
		return errors.New("to address is empty")
	}

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail(senderName, c.from),
		subject,
		sgmail.NewEmail("", to),
		body,
		"<pre>"+html.EscapeString(body)+"</pre>",
	)

	req := sendgrid.GetRequest(c.apiKey, sendGridEndpoint, c.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(message)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid.MakeRequestWithContext -> %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send failed: status=%d body=%s", resp.StatusCode, resp.Body)
	}

	return nil
}
