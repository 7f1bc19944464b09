package email

import (
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// newRetryClient retries transport errors and 5xx responses a couple of
// times; the dispatcher deadline still bounds the whole exchange.
func newRetryClient(timeout time.Duration, log *zap.Logger) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	if timeout > 0 {
		client.HTTPClient.Timeout = timeout
	}
	client.Logger = zapLeveled{log: log.Sugar()}
	return client
}

type zapLeveled struct {
	log *zap.SugaredLogger
}

func (l zapLeveled) Error(msg string, kv ...interface{}) { l.log.Errorw(msg, kv...) }
func (l zapLeveled) Info(msg string, kv ...interface{})  { l.log.Debugw(msg, kv...) }
func (l zapLeveled) Debug(msg string, kv ...interface{}) { l.log.Debugw(msg, kv...) }
func (l zapLeveled) Warn(msg string, kv ...interface{})  { l.log.Warnw(msg, kv...) }
