package document

import "context"

// Notifier delivers a payload to the external document generator.
type Notifier interface {
	Notify(ctx context.Context, payload WebhookPayload) (WebhookResult, error)
}

// Trigger asks the dispatcher to run soon. It never blocks.
type Trigger interface {
	Kick()
}

type Dispatcher interface {
	Trigger
	DispatchPending(ctx context.Context) (DispatchSummary, error)
}
