package llm

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/logger"
)

// defaultPreviewChars bounds prompt/response previews in debug logs.
const defaultPreviewChars = 400

// Call describes one bounded oracle invocation.
type Call struct {
	Task      Task
	Prompt    string
	Schema    SchemaHint
	MaxTokens int32
	Timeout   time.Duration
}

// Oracle is the single boundary through which the pipeline talks to the LLM.
// Every call is independently timed out and its response normalized into a Payload.
type Oracle struct {
	client Client
	config *Config
	logger *zap.Logger
}

// NewOracle wraps a client. A nil config uses DefaultConfig.
func NewOracle(client Client, config *Config, log *zap.Logger) *Oracle {
	if config == nil {
		config = DefaultConfig()
	}
	return &Oracle{
		client: client,
		config: config,
		logger: logger.Named(log, "oracle"),
	}
}

// Call runs the prompt with its schema hint under the call's timeout.
// Cancellation of ctx is returned as ctx.Err(); an expired call timeout as
// *TimeoutError; transport failures as *OracleError; unparseable output as *ShapeError.
func (o *Oracle) Call(ctx context.Context, call Call) (*Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	callCtx := ctx
	if call.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, call.Timeout)
		defer cancel()
	}

	tier := o.config.TierFor(call.Task)
	prompt := call.Prompt
	if len(call.Schema.Fields) > 0 {
		prompt += "\n\n" + call.Schema.Instructions()
	}

	log := o.logger.With(
		zap.String(logger.FieldOracleCall, string(call.Task)),
		zap.String(logger.FieldModel, o.client.GetModel(tier)),
	)
	log.Debug("oracle request",
		zap.Int("prompt_chars", len(prompt)),
		zap.Duration("timeout", call.Timeout),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, defaultPreviewChars)),
	)

	start := time.Now()
	text, err := o.client.GenerateJSON(callCtx, prompt, tier, call.MaxTokens)
	elapsed := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Debug("oracle call abandoned", zap.Error(ctxErr))
			return nil, ctxErr
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			log.Warn("oracle call timed out", zap.Duration("duration", elapsed))
			return nil, &TimeoutError{Task: call.Task, Timeout: call.Timeout}
		}
		log.Warn("oracle call failed", zap.Duration("duration", elapsed), zap.Error(err))
		return nil, &OracleError{Task: call.Task, Message: "generation failed", Cause: err}
	}

	payload, err := ParsePayload(text)
	if err != nil {
		preview := logger.TruncateForLog(text, defaultPreviewChars)
		log.Warn("oracle response malformed", zap.String("response_preview", preview), zap.Error(err))
		return nil, &ShapeError{Task: call.Task, Preview: preview, Cause: err}
	}

	log.Debug("oracle response",
		zap.Duration("duration", elapsed),
		zap.Stringer("shape", payload.Shape),
		zap.String("response_preview", logger.TruncateForLog(text, defaultPreviewChars)),
	)
	return payload, nil
}
