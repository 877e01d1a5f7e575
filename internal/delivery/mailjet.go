package delivery

import (
	"context"
	"fmt"
	"time"

	"firstscoop-backend/internal/components/assert"
	"firstscoop-backend/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
)

const DefaultMailjetUrl = "https://api.mailjet.com"

type MailjetOptions struct {
	BaseUrl   string
	ApiKey    string
	SecretKey string
	From      Address
}

type MailjetProvider struct {
	http *resty.Client
	from Address
}

func NewMailjetProvider(options MailjetOptions, tel telemetry.API) MailjetProvider {
	assert.NotNil(tel)
	if options.BaseUrl == "" {
		options.BaseUrl = DefaultMailjetUrl
	}

	client := resty.New()
	client.SetBaseURL(options.BaseUrl)
	client.SetBasicAuth(options.ApiKey, options.SecretKey)
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, telemetry.NewScopedAPI("mailjet", tel))

	return MailjetProvider{http: client, from: options.From}
}

func (p MailjetProvider) Name() string {
	return "mailjet"
}

type mailjetContact struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

type mailjetMessage struct {
	From     mailjetContact   `json:"From"`
	To       []mailjetContact `json:"To"`
	Subject  string           `json:"Subject"`
	HTMLPart string           `json:"HTMLPart"`
}

type mailjetRequest struct {
	Messages []mailjetMessage `json:"Messages"`
}

type mailjetResponse struct {
	Messages []struct {
		Status string `json:"Status"`
	} `json:"Messages"`
}

func (p MailjetProvider) Send(ctx context.Context, msg Message) error {
	var result mailjetResponse
	res, err := p.http.R().
		SetContext(ctx).
		SetBody(mailjetRequest{
			Messages: []mailjetMessage{
				{
					From:     mailjetContact{Email: p.from.Email, Name: p.from.Name},
					To:       []mailjetContact{{Email: msg.To, Name: msg.To}},
					Subject:  msg.Subject,
					HTMLPart: msg.HTML,
				},
			},
		}).
		SetResult(&result).
		Post("/v3.1/send")
	if err != nil {
		return fmt.Errorf("mailjet: %w", err)
	}
	if !res.IsSuccess() {
		return &ProviderError{Provider: p.Name(), StatusCode: res.StatusCode(), Body: res.String()}
	}
	for _, m := range result.Messages {
		if m.Status != "success" {
			return &ProviderError{Provider: p.Name(), StatusCode: res.StatusCode(), Body: res.String()}
		}
	}
	return nil
}
