package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// CodeSender delivers a one-time code to a mobile number out of band.
type CodeSender interface {
	SendCode(ctx context.Context, mobile, code string) error
}

func codeMessage(code string) string {
	return fmt.Sprintf("Your EcoTrack verification code is %s. It expires in 10 minutes.", code)
}

// LogSender writes codes to the log. Development delivery only.
type LogSender struct {
	logger *zap.SugaredLogger
}

func NewLogSender(logger *zap.SugaredLogger) *LogSender {
	return &LogSender{logger: logger.Named("sms")}
}

func (s *LogSender) SendCode(_ context.Context, mobile, code string) error {
	s.logger.Infow("verification code issued", "mobile", mobile, "code", code)
	return nil
}

// messageCreator is the slice of the Twilio REST client the sender uses.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender sends SMS through the Twilio Messages API.
type TwilioSender struct {
	from     string
	messages messageCreator
	logger   *zap.SugaredLogger
}

func NewTwilioSender(accountSID, authToken, from string, logger *zap.SugaredLogger) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{
		from:     from,
		messages: client.Api,
		logger:   logger.Named("sms"),
	}
}

// SendCode does not honour cancellation once the request is in flight; the
// SDK call takes no context.
func (s *TwilioSender) SendCode(ctx context.Context, mobile, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(mobile)
	params.SetFrom(s.from)
	params.SetBody(codeMessage(code))

	resp, err := s.messages.CreateMessage(params)
	if err != nil {
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) {
			s.logger.Warnw("twilio send failed", "status", restErr.Status, "code", restErr.Code)
			return fmt.Errorf("twilio send failed: status=%d code=%d: %s", restErr.Status, restErr.Code, restErr.Message)
		}
		return fmt.Errorf("twilio send failed: %w", err)
	}

	var sid string
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	s.logger.Infow("sms sent", "to", mobile, "sid", sid)
	return nil
}
