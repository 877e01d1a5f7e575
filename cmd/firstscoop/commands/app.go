package commands

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"firstscoop-backend/internal/components/chrono"
	"firstscoop-backend/internal/components/telemetry"
	"firstscoop-backend/internal/db"
	"firstscoop-backend/internal/delivery"
	"firstscoop-backend/internal/menu"
	"firstscoop-backend/internal/pipeline"
	"firstscoop-backend/internal/render"
	"firstscoop-backend/internal/scrapers/nutritics"
	"firstscoop-backend/internal/storage"
	"firstscoop-backend/internal/subscribers"

	"google.golang.org/api/option"
)

// app holds the collaborators built from the config for a single invocation.
type app struct {
	config Config
	tel    telemetry.API
	clock  chrono.TimeAPI

	database *sql.DB
	qry      *db.Queries
}

func newApp(config Config, clock chrono.TimeAPI) (*app, error) {
	a := &app{
		config: config,
		tel:    telemetry.SlogAPI{},
		clock:  clock,
	}
	if a.clock == nil {
		standard, err := chrono.NewStandardTime(config.Site.Location)
		if err != nil {
			return nil, fmt.Errorf("load location: %w", err)
		}
		a.clock = standard
	}

	if config.Database.File != "" || config.Database.Url != "" {
		database, err := config.Database.OpenDB()
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		err = db.Migrate(context.Background(), database)
		if err != nil {
			database.Close()
			return nil, err
		}
		a.database = database
		a.qry = db.New(database, a.clock)
	}
	return a, nil
}

func (a *app) Close() {
	if a.database != nil {
		a.database.Close()
	}
}

func (a *app) pipeline() (pipeline.Pipeline, error) {
	client, err := nutritics.NewClient(nutritics.Options{
		BaseUrl:          a.config.Site.BaseUrl,
		UserAgent:        a.config.Site.UserAgent,
		CloudflareBypass: a.config.Site.CloudflareBypass,
		DumpDir:          a.config.Site.DumpDir,
	}, a.tel)
	if err != nil {
		return pipeline.Pipeline{}, err
	}
	return pipeline.NewPipeline(pipeline.Options{
		Selector: menu.NutriticsSelector{LunchAliases: a.config.Menu.LunchAliases},
		Extractor: menu.Extractor{
			PhotoURLPrefix: a.config.Menu.PhotoUrlPrefix,
			Exclude:        a.config.Menu.Exclude,
		},
		Render: render.Options{
			Title:   a.config.Menu.Title,
			MenuURL: a.config.Site.BaseUrl,
		},
	}, client, a.clock, a.tel), nil
}

func (a *app) sheet(ctx context.Context) (subscribers.SheetSource, error) {
	var opts []option.ClientOption
	if a.config.Subscribers.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(a.config.Subscribers.CredentialsFile))
	}
	return subscribers.NewSheetSource(ctx, a.config.Subscribers.sheetOptions(), a.tel, opts...)
}

func (a *app) uploader() (storage.Uploader, error) {
	if !a.config.Storage.Enabled() {
		return nil, nil
	}
	uploader, err := storage.NewS3Uploader(a.config.Storage.s3Options(), a.tel)
	if err != nil {
		return nil, err
	}
	return uploader, nil
}

func (a *app) dispatcher(runId string) (delivery.Dispatcher, error) {
	provider, err := a.config.Delivery.provider(a.tel)
	if err != nil {
		return delivery.Dispatcher{}, err
	}
	spacing, err := a.config.Delivery.spacing()
	if err != nil {
		return delivery.Dispatcher{}, err
	}

	options := delivery.DispatcherOptions{
		Subject:             a.config.Delivery.Subject,
		UnsubscribeEndpoint: a.config.Unsubscribe.Endpoint,
		Spacing:             spacing,
	}
	if a.qry != nil && runId != "" {
		options.Log = deliveryLog{qry: a.qry, runId: runId}
	}
	return delivery.NewDispatcher(provider, options, a.clock, a.tel), nil
}

// startRun records a run in the delivery log, it returns an empty id when there is no log.
func (a *app) startRun(ctx context.Context) string {
	if a.qry == nil {
		return ""
	}
	run, err := a.qry.CreateRun(ctx, a.clock.Now().Format("2006-01-02"))
	if err != nil {
		a.tel.ReportBroken("app.start-run", err)
		return ""
	}
	return run.ID
}

func (a *app) finishRun(ctx context.Context, runId, status, detail string) {
	if a.qry == nil || runId == "" {
		return
	}
	err := a.qry.FinishRun(ctx, db.FinishRunParams{ID: runId, Status: status, Detail: detail})
	if err != nil {
		a.tel.ReportBroken("app.finish-run", err)
	}
}

type deliveryLog struct {
	qry   *db.Queries
	runId string
}

func (l deliveryLog) LogAttempt(ctx context.Context, attempt delivery.Attempt) error {
	errText := ""
	if attempt.Err != nil {
		errText = attempt.Err.Error()
	}
	return l.qry.RecordDelivery(ctx, db.RecordDeliveryParams{
		RunID:         l.runId,
		RecipientHash: attempt.RecipientHash,
		Provider:      attempt.Provider,
		Ok:            attempt.Err == nil,
		Error:         errText,
		SentAt:        attempt.At.Unix(),
	})
}

// renderMenu runs the pipeline, writes the document to out and uploads it unless upload is
// false. Nothing is written when the pipeline fails, an upload failure is only logged.
func (a *app) renderMenu(ctx context.Context, runId, out string, upload bool) (pipeline.Result, error) {
	p, err := a.pipeline()
	if err != nil {
		return pipeline.Result{}, err
	}
	result, err := p.Run(ctx)
	if err != nil {
		a.finishRun(ctx, runId, db.RunFailed, err.Error())
		return result, err
	}

	err = storage.WriteFile(out, result.HTML)
	if err != nil {
		a.finishRun(ctx, runId, db.RunFailed, err.Error())
		return result, err
	}
	slog.Info("wrote menu", "file", out, "categories", len(result.Resolved))

	if upload {
		a.upload(ctx, result.HTML)
	}
	a.finishRun(ctx, runId, db.RunRendered, fmt.Sprintf("%d categories", len(result.Resolved)))
	return result, nil
}

func (a *app) upload(ctx context.Context, html string) {
	uploader, err := a.uploader()
	if err != nil {
		a.tel.ReportBroken("app.upload", err)
		return
	}
	if uploader == nil {
		slog.Debug("no storage bucket configured, skipping upload")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	err = uploader.Upload(ctx, a.config.Storage.Key, []byte(html), storage.HTMLContentType)
	if err != nil {
		a.tel.ReportBroken("app.upload", err)
		return
	}
	slog.Info("uploaded menu", "bucket", a.config.Storage.Bucket, "key", a.config.Storage.Key)
}

// sendMenu mails html to everyone in source.
func (a *app) sendMenu(ctx context.Context, runId, html string, source subscribers.Source) (delivery.Report, error) {
	recipients, err := source.List(ctx)
	if err != nil {
		a.finishRun(ctx, runId, db.RunFailed, err.Error())
		return delivery.Report{}, err
	}
	dispatcher, err := a.dispatcher(runId)
	if err != nil {
		return delivery.Report{}, err
	}

	report := dispatcher.Dispatch(ctx, html, recipients)
	slog.Info("dispatched menu", "attempted", report.Attempted, "sent", report.Sent, "failed", report.Failed)
	a.finishRun(ctx, runId, db.RunSent, fmt.Sprintf("%d sent, %d failed", report.Sent, report.Failed))
	return report, nil
}

// runDaily renders, uploads and mails the menu.
func (a *app) runDaily(ctx context.Context) error {
	runId := a.startRun(ctx)

	result, err := a.renderMenu(ctx, runId, a.config.Output.File, true)
	if err != nil {
		return err
	}

	source, err := a.sheet(ctx)
	if err != nil {
		a.finishRun(ctx, runId, db.RunFailed, err.Error())
		return err
	}
	_, err = a.sendMenu(ctx, runId, result.HTML, source)
	return err
}
