package formgen

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/formflow-backend/internal/data/db"
	types "github.com/yungbote/formflow-backend/internal/domain"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
	"github.com/yungbote/formflow-backend/internal/platform/openai"
)

type Config struct {
	APIKey      string
	Model       string
	Temperature float64
}

// Authenticator turns an Authorization header into a verified identity.
type Authenticator interface {
	ExtractBearer(header string) (string, bool)
	VerifyIdentity(ctx context.Context, credential string) (*types.Identity, error)
}

type Request struct {
	Prompt        string
	Authorization string
}

type Result struct {
	FormID        uuid.UUID
	QuestionCount int
}

type Pipeline struct {
	log    *logger.Logger
	cfg    Config
	auth   Authenticator
	gen    openai.Client
	writer *Writer
}

func NewPipeline(log *logger.Logger, cfg Config, auth Authenticator, gen openai.Client, store Store) *Pipeline {
	return &Pipeline{
		log:    log.With("service", "FormGenPipeline"),
		cfg:    cfg,
		auth:   auth,
		gen:    gen,
		writer: NewWriter(store),
	}
}

var tracer = otel.Tracer("formflow/formgen")

// Run executes one generation request. Stages run strictly in order and the
// first failure ends the run. No stage is retried.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, *Failure) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "formgen.generate_form")
	defer span.End()

	res, fail := p.run(ctx, req)
	if fail != nil {
		span.SetAttributes(
			attribute.String("formgen.failure_kind", string(fail.Kind)),
			attribute.String("formgen.failure_stage", string(fail.Stage)),
		)
		span.SetStatus(codes.Error, string(fail.Kind))
		fields := []any{
			"kind", string(fail.Kind),
			"status", fail.Status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if fail.FormID != nil {
			fields = append(fields, "form_id", fail.FormID.String())
		}
		if fail.Err != nil {
			fields = append(fields, "error", fail.Err.Error())
		}
		if fail.Details != nil {
			fields = append(fields, "details", fail.Details)
		}
		p.log.Warn("generate-form "+string(fail.Stage)+" failed", fields...)
		return res, fail
	}

	span.SetAttributes(
		attribute.String("formgen.form_id", res.FormID.String()),
		attribute.Int("formgen.question_count", res.QuestionCount),
	)
	p.log.Info("generate-form succeeded",
		"form_id", res.FormID.String(),
		"question_count", res.QuestionCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, req Request) (Result, *Failure) {
	prompt := strings.TrimSpace(req.Prompt)

	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return Result{}, newFailure(KindConfigMissing, StageRequireAPIKey, MsgMissingAPIKey, nil, nil)
	}
	if prompt == "" {
		return Result{}, newFailure(KindInvalidRequest, StageRequirePrompt, MsgPromptRequired, nil, nil)
	}

	credential, ok := "", false
	if p.auth != nil {
		credential, ok = p.auth.ExtractBearer(req.Authorization)
	}
	if !ok {
		return Result{}, newFailure(KindUnauthorized, StageRequireCredential, MsgMissingToken, nil, nil)
	}

	var identity *types.Identity
	if fail := p.stage(ctx, StageVerifyIdentity, func(ctx context.Context) *Failure {
		id, err := p.auth.VerifyIdentity(ctx, credential)
		if err != nil {
			return newFailure(KindUnauthorized, StageVerifyIdentity, MsgUnauthorized, nil, err)
		}
		if id == nil || id.ID == uuid.Nil {
			return newFailure(KindUnauthorized, StageVerifyIdentity, MsgUnauthorized, nil, errors.New("no identity"))
		}
		identity = id
		return nil
	}); fail != nil {
		return Result{}, fail
	}

	var text string
	if fail := p.stage(ctx, StageInvokeGeneration, func(ctx context.Context) *Failure {
		out, err := p.generate(ctx, prompt)
		if err != nil {
			return generationFailure(err)
		}
		if out == "" {
			return newFailure(KindEmptyGeneration, StageExtractText, MsgNoAIOutput, nil, openai.ErrEmptyCompletion)
		}
		text = out
		return nil
	}); fail != nil {
		return Result{}, fail
	}

	var form GeneratedForm
	if fail := p.stage(ctx, StageSanitize, func(ctx context.Context) *Failure {
		f, ok := DecodeAndSanitize(text)
		if !ok {
			return newFailure(KindInvalidGeneration, StageSanitize, MsgInvalidAIOutput, text, nil)
		}
		form = f
		return nil
	}); fail != nil {
		return Result{}, fail
	}

	var persisted PersistResult
	if fail := p.stage(ctx, StagePersistForm, func(ctx context.Context) *Failure {
		out, err := p.writer.Persist(ctx, identity.ID, form)
		if err != nil {
			return persistFailure(err)
		}
		persisted = out
		return nil
	}); fail != nil {
		if fail.FormID != nil {
			return Result{FormID: *fail.FormID}, fail
		}
		return Result{}, fail
	}

	return Result{FormID: persisted.FormID, QuestionCount: persisted.QuestionCount}, nil
}

func (p *Pipeline) generate(ctx context.Context, prompt string) (string, error) {
	if p.gen == nil {
		return "", errors.New("generation client not configured")
	}
	temperature := p.cfg.Temperature
	return p.gen.Complete(ctx, openai.CompletionRequest{
		Model: p.cfg.Model,
		Messages: []openai.Message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: UserPrompt(prompt)},
		},
		Schema: &openai.JSONSchema{
			Name:   SchemaName,
			Schema: FormSchema(),
			Strict: true,
		},
		Temperature: &temperature,
	})
}

func (p *Pipeline) stage(ctx context.Context, stage Stage, fn func(ctx context.Context) *Failure) *Failure {
	ctx, span := tracer.Start(ctx, "formgen."+string(stage))
	defer span.End()
	fail := fn(ctx)
	if fail != nil {
		if fail.Err != nil {
			span.RecordError(fail.Err)
		}
		span.SetStatus(codes.Error, fail.Message)
	}
	return fail
}

func generationFailure(err error) *Failure {
	var (
		emptyErr     *openai.EmptyCompletionError
		httpErr      *openai.HTTPError
		decodeErr    *openai.DecodeError
		transportErr *openai.TransportError
	)
	switch {
	case errors.As(err, &emptyErr):
		return newFailure(KindEmptyGeneration, StageExtractText, MsgNoAIOutput, emptyErr.Payload, err)
	case errors.Is(err, openai.ErrEmptyCompletion):
		return newFailure(KindEmptyGeneration, StageExtractText, MsgNoAIOutput, nil, err)
	case errors.As(err, &httpErr):
		return newFailure(KindGenerationUnavailable, StageInvokeGeneration, MsgAIRequestFailed, httpErr.Body, err)
	case errors.As(err, &decodeErr):
		return newFailure(KindGenerationUnavailable, StageInvokeGeneration, MsgAIRequestFailed, decodeErr.Body, err)
	case errors.As(err, &transportErr):
		return newFailure(KindGenerationUnavailable, StageInvokeGeneration, MsgAIRequestFailed, transportErr.Error(), err)
	default:
		return newFailure(KindGenerationUnavailable, StageInvokeGeneration, MsgAIRequestFailed, err.Error(), err)
	}
}

func persistFailure(err error) *Failure {
	var perr *PersistError
	if !errors.As(err, &perr) {
		return newFailure(KindPersistenceFailure, StagePersistForm, MsgInsertFailed, db.ErrorDetails(err), err)
	}
	msg := db.Message(perr.Err)
	if msg == "" {
		msg = MsgInsertFailed
	}
	stage := StagePersistForm
	if perr.Phase == PhaseQuestions {
		stage = StagePersistQuestions
	}
	fail := newFailure(KindPersistenceFailure, stage, msg, db.ErrorDetails(perr.Err), err)
	fail.FormID = perr.FormID
	return fail
}
