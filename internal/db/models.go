package db

type Run struct {
	ID        string
	MenuDate  string
	Status    string
	Detail    string
	CreatedAt int64
}

type Delivery struct {
	RunID         string
	RecipientHash string
	Provider      string
	Ok            bool
	Error         string
	SentAt        int64
}

const (
	RunStarted  = "started"
	RunRendered = "rendered"
	RunSent     = "sent"
	RunFailed   = "failed"
)
