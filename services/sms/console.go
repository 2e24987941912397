package smssvc

import (
	"context"
	"log"
	"sync"

	"github.com/edumanage/edurisk/core"
)

var (
	SentMessages = make([]core.SMSMessage, 0)
	mu           sync.Mutex
)

// consoleService prints messages instead of delivering them; used in
// debug mode and by tests.
type consoleService struct {
	disableOutput bool
}

var _ core.SMSService = (*consoleService)(nil)

func NewConsoleService() core.SMSService {
	return &consoleService{}
}

// NewConsoleServiceMock records silently; tests inspect SentMessages.
func NewConsoleServiceMock() core.SMSService {
	return &consoleService{disableOutput: true}
}

func (svc consoleService) Send(ctx context.Context, msg core.SMSMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !svc.disableOutput {
		log.Printf("SMS to %s: %s", msg.To, msg.Body)
	}
	mu.Lock()
	SentMessages = append(SentMessages, msg)
	mu.Unlock()
	return nil
}

// ClearSentMessages resets the capture buffer between tests.
func ClearSentMessages() {
	mu.Lock()
	SentMessages = SentMessages[:0]
	mu.Unlock()
}
