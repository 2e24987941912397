package smssvc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/edumanage/edurisk/core"
)

type twilioService struct {
	client *twilio.RestClient
	from   string
}

var _ core.SMSService = (*twilioService)(nil)

func NewTwilioService(conf *core.Config) *twilioService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: conf.TwilioAccountSID,
		Password: conf.TwilioAuthToken,
	})
	return &twilioService{
		client: client,
		from:   conf.TwilioFromNumber,
	}
}

// Send delivers one message through the Twilio Messages API. The client
// has no context plumbing of its own, so the call runs in a goroutine and
// the ctx deadline bounds the wait.
func (svc twilioService) Send(ctx context.Context, msg core.SMSMessage) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetFrom(svc.from)
	params.SetBody(msg.Body)

	done := make(chan error, 1)
	go func() {
		_, err := svc.client.Api.CreateMessage(params)
		done <- err
	}()

	select {
	case err := <-done:
		return errors.Wrap(err, "twilio send")
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "twilio send")
	}
}
