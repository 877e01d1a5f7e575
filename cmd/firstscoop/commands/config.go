package commands

import (
	"fmt"
	"time"

	"firstscoop-backend/internal/components/chrono"
	"firstscoop-backend/internal/components/telemetry"
	"firstscoop-backend/internal/db"
	"firstscoop-backend/internal/delivery"
	"firstscoop-backend/internal/menu"
	"firstscoop-backend/internal/render"
	"firstscoop-backend/internal/scrapers/nutritics"
	"firstscoop-backend/internal/storage"
	"firstscoop-backend/internal/subscribers"
)

type SiteConfig struct {
	BaseUrl          string `json:"base_url"`
	UserAgent        string `json:"user_agent"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
	// Location is the IANA timezone the menu is published in.
	Location string `json:"location"`
	// DumpDir keeps the raw fetched pages of the last run when set.
	DumpDir string `json:"dump_dir"`
}

type MenuConfig struct {
	LunchAliases   []string `json:"lunch_aliases"`
	Exclude        []string `json:"exclude"`
	PhotoUrlPrefix string   `json:"photo_url_prefix"`
	Title          string   `json:"title"`
}

type OutputConfig struct {
	File string `json:"file"`
}

type StorageConfig struct {
	Endpoint     string `json:"endpoint"`
	Region       string `json:"region"`
	Bucket       string `json:"bucket"`
	AccessKey    string `json:"access_key"`
	SecretKey    string `json:"secret_key"`
	Key          string `json:"key"`
	CreateBucket bool   `json:"create_bucket"`
}

func (c StorageConfig) Enabled() bool {
	return c.Bucket != ""
}

type SubscribersConfig struct {
	CredentialsFile string `json:"credentials_file"`
	SpreadsheetId   string `json:"spreadsheet_id"`
	Sheet           string `json:"sheet"`
	Column          string `json:"column"`
	HeaderRows      int    `json:"header_rows"`
}

type MailjetConfig struct {
	ApiKey    string `json:"api_key"`
	SecretKey string `json:"secret_key"`
}

type SendGridConfig struct {
	ApiKey string `json:"api_key"`
}

type SmtpConfig struct {
	Server   string `json:"server"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type DeliveryConfig struct {
	// Provider is one of "mailjet", "sendgrid" or "smtp".
	Provider string           `json:"provider"`
	Subject  string           `json:"subject"`
	From     delivery.Address `json:"from"`
	// Spacing is the minimum time between two emails, ex. "3s".
	Spacing  string         `json:"spacing"`
	Mailjet  MailjetConfig  `json:"mailjet"`
	SendGrid SendGridConfig `json:"sendgrid"`
	Smtp     SmtpConfig     `json:"smtp"`
}

type UnsubscribeConfig struct {
	// Endpoint is the public url of the unsubscribe page.
	Endpoint string `json:"endpoint"`
	Port     int    `json:"port"`
}

type Config struct {
	Site        SiteConfig           `json:"site"`
	Menu        MenuConfig           `json:"menu"`
	Output      OutputConfig         `json:"output"`
	Storage     StorageConfig        `json:"storage"`
	Subscribers SubscribersConfig    `json:"subscribers"`
	Delivery    DeliveryConfig       `json:"delivery"`
	Unsubscribe UnsubscribeConfig    `json:"unsubscribe"`
	Database    db.Config            `json:"database"`
	Otlp        telemetry.OtlpConfig `json:"otlp"`
	// Schedule is the cron spec the daemon runs on, evaluated in Site.Location.
	Schedule string `json:"schedule"`
}

func (c Config) withDefaults() Config {
	if c.Site.BaseUrl == "" {
		c.Site.BaseUrl = nutritics.DefaultBaseUrl
	}
	if c.Site.Location == "" {
		c.Site.Location = chrono.DefaultLocation
	}
	if c.Menu.LunchAliases == nil {
		c.Menu.LunchAliases = menu.DefaultLunchAliases
	}
	if c.Menu.Exclude == nil {
		c.Menu.Exclude = menu.DefaultExclude
	}
	if c.Menu.PhotoUrlPrefix == "" {
		c.Menu.PhotoUrlPrefix = menu.DefaultPhotoURLPrefix
	}
	if c.Menu.Title == "" {
		c.Menu.Title = render.DefaultTitle
	}
	if c.Output.File == "" {
		c.Output.File = storage.DefaultKey
	}
	if c.Storage.Key == "" {
		c.Storage.Key = storage.DefaultKey
	}
	if c.Subscribers.Sheet == "" {
		c.Subscribers.Sheet = "Form Responses 1"
	}
	if c.Subscribers.Column == "" {
		c.Subscribers.Column = "B"
	}
	if c.Subscribers.HeaderRows == 0 {
		c.Subscribers.HeaderRows = 1
	}
	if c.Delivery.Provider == "" {
		c.Delivery.Provider = "mailjet"
	}
	if c.Delivery.Subject == "" {
		c.Delivery.Subject = delivery.DefaultSubject
	}
	if c.Delivery.Spacing == "" {
		// sendgrid throttles harder than mailjet
		c.Delivery.Spacing = "3s"
		if c.Delivery.Provider == "sendgrid" {
			c.Delivery.Spacing = "5s"
		}
	}
	if c.Unsubscribe.Endpoint == "" {
		c.Unsubscribe.Endpoint = "https://first-scoop.vercel.app/unsubscribe"
	}
	if c.Unsubscribe.Port == 0 {
		c.Unsubscribe.Port = 8080
	}
	if c.Schedule == "" {
		c.Schedule = "0 6 * * *"
	}
	return c
}

func (c DeliveryConfig) spacing() (time.Duration, error) {
	spacing, err := time.ParseDuration(c.Spacing)
	if err != nil {
		return 0, fmt.Errorf("invalid delivery spacing %q: %w", c.Spacing, err)
	}
	return spacing, nil
}

func (c DeliveryConfig) provider(tel telemetry.API) (delivery.Provider, error) {
	switch c.Provider {
	case "mailjet":
		return delivery.NewMailjetProvider(delivery.MailjetOptions{
			ApiKey:    c.Mailjet.ApiKey,
			SecretKey: c.Mailjet.SecretKey,
			From:      c.From,
		}, tel), nil
	case "sendgrid":
		return delivery.NewSendGridProvider(delivery.SendGridOptions{
			ApiKey: c.SendGrid.ApiKey,
			From:   c.From,
		}, tel), nil
	case "smtp":
		return delivery.NewSMTPProvider(delivery.SmtpOptions{
			Server:   c.Smtp.Server,
			Port:     c.Smtp.Port,
			Username: c.Smtp.Username,
			Password: c.Smtp.Password,
			From:     c.From,
		}), nil
	}
	return nil, fmt.Errorf("unknown delivery provider %q", c.Provider)
}

func (c SubscribersConfig) sheetOptions() subscribers.SheetOptions {
	return subscribers.SheetOptions{
		SpreadsheetId: c.SpreadsheetId,
		Sheet:         c.Sheet,
		Column:        c.Column,
		HeaderRows:    c.HeaderRows,
	}
}

func (c StorageConfig) s3Options() storage.S3Options {
	return storage.S3Options{
		Endpoint:     c.Endpoint,
		Region:       c.Region,
		Bucket:       c.Bucket,
		AccessKey:    c.AccessKey,
		SecretKey:    c.SecretKey,
		CreateBucket: c.CreateBucket,
	}
}
