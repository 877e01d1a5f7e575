package delivery

import (
	"context"
	"fmt"
	"time"

	"firstscoop-backend/internal/components/assert"
	"firstscoop-backend/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
)

const DefaultSendGridUrl = "https://api.sendgrid.com"

type SendGridOptions struct {
	BaseUrl string
	ApiKey  string
	From    Address
}

type SendGridProvider struct {
	http *resty.Client
	from Address
}

func NewSendGridProvider(options SendGridOptions, tel telemetry.API) SendGridProvider {
	assert.NotNil(tel)
	if options.BaseUrl == "" {
		options.BaseUrl = DefaultSendGridUrl
	}

	client := resty.New()
	client.SetBaseURL(options.BaseUrl)
	client.SetAuthToken(options.ApiKey)
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, telemetry.NewScopedAPI("sendgrid", tel))

	return SendGridProvider{http: client, from: options.From}
}

func (p SendGridProvider) Name() string {
	return "sendgrid"
}

type sendgridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendgridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendgridRequest struct {
	Personalizations []struct {
		To []sendgridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendgridAddress   `json:"from"`
	Subject string            `json:"subject"`
	Content []sendgridContent `json:"content"`
}

func (p SendGridProvider) Send(ctx context.Context, msg Message) error {
	body := sendgridRequest{
		From:    sendgridAddress{Email: p.from.Email, Name: p.from.Name},
		Subject: msg.Subject,
		Content: []sendgridContent{{Type: "text/html", Value: msg.HTML}},
	}
	body.Personalizations = append(body.Personalizations, struct {
		To []sendgridAddress `json:"to"`
	}{To: []sendgridAddress{{Email: msg.To}}})

	res, err := p.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/v3/mail/send")
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if !res.IsSuccess() {
		return &ProviderError{Provider: p.Name(), StatusCode: res.StatusCode(), Body: res.String()}
	}
	return nil
}
