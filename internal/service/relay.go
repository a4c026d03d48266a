package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"devdesk/internal/llm"
	"devdesk/internal/logger"
	"devdesk/internal/prompts"
)

// FailureMessage is what users see whenever generation fails.
const FailureMessage = "Content generation failed, please try again later."

const defaultLLMTimeout = 60 * time.Second

var ErrMissingSystemType = errors.New("system_type is required")

// RelayService composes prompts from the template table and forwards them to the completer.
type RelayService struct {
	completer llm.Completer
	table     *prompts.Table
	timeout   time.Duration
	testMode  atomic.Bool
	log       *logger.Logger
}

func NewRelayService(c llm.Completer, table *prompts.Table, timeout time.Duration, log *logger.Logger) *RelayService {
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	return &RelayService{
		completer: c,
		table:     table,
		timeout:   timeout,
		log:       log,
	}
}

var _ Relay = (*RelayService)(nil)

// SetTestMode switches the relay to echo composed prompts instead of calling upstream.
func (s *RelayService) SetTestMode(on bool) {
	s.testMode.Store(on)
}

func (s *RelayService) TestMode() bool {
	return s.testMode.Load()
}

// Generate returns the completion for the prompt built from systemType and contentType.
// On any upstream failure it returns FailureMessage together with the cause.
func (s *RelayService) Generate(ctx context.Context, systemType, contentType string) (string, error) {
	if strings.TrimSpace(systemType) == "" {
		return FailureMessage, ErrMissingSystemType
	}

	prompt := s.table.Compose(systemType, contentType)
	if s.testMode.Load() {
		return prompt, nil
	}
	if s.completer == nil {
		return FailureMessage, errors.New("no completer configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.completer.Complete(ctx, s.table.System, prompt)
	if err != nil {
		if s.log != nil {
			s.log.Errorw("relay_generate_failed",
				"system_type", systemType,
				"content_type", contentType,
				"error", err,
			)
		}
		return FailureMessage, fmt.Errorf("generate %s/%s: %w", contentType, systemType, err)
	}
	return text, nil
}
