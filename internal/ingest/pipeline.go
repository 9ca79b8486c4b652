package ingest

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"signal-dashboard-go/internal/archive"
	"signal-dashboard-go/internal/metrics"
	"signal-dashboard-go/internal/models"
	"signal-dashboard-go/internal/sink"
	"signal-dashboard-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParseError reports a malformed or incomplete webhook body. It maps to a
// 422 response and never mutates state.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string {
	return e.Detail
}

// Pipeline turns raw webhook bytes into applied state mutations and a
// normalized payload forwarded to the sink.
type Pipeline struct {
	logger        *zap.Logger
	state         *store.State
	sinkClient    sink.ClientInterface
	archive       *archive.Archive // nil when the archive is disabled
	defaultChatID string
	forwardWait   time.Duration
	now           func() time.Time
	forwards      sync.WaitGroup
}

// NewPipeline creates the ingestion pipeline. archiveStore may be nil.
func NewPipeline(
	logger *zap.Logger,
	state *store.State,
	sinkClient sink.ClientInterface,
	archiveStore *archive.Archive,
	defaultChatID string,
	forwardTimeout time.Duration,
) *Pipeline {
	return &Pipeline{
		logger:        logger,
		state:         state,
		sinkClient:    sinkClient,
		archive:       archiveStore,
		defaultChatID: defaultChatID,
		forwardWait:   forwardTimeout,
		now:           time.Now,
	}
}

// inbound mirrors the Signal schema with pointers on the required fields,
// so a missing field can be told apart from a zero value.
type inbound struct {
	Action  *string        `json:"action"`
	Ticker  *string        `json:"ticker"`
	Price   *models.Number `json:"price"`
	SL      models.Number  `json:"sl"`
	TP1     models.Number  `json:"tp1"`
	TP2     models.Number  `json:"tp2"`
	TP3     models.Number  `json:"tp3"`
	Result  string         `json:"result"`
	Comment string         `json:"comment"`
	Date    string         `json:"date"`
	Time    string         `json:"time"`
	ChatID  string         `json:"chat_id"`
	Text    string         `json:"text"`
}

// parse decodes raw bytes into a validated signal. The body is treated as
// JSON regardless of the declared content type, and a double-encoded JSON
// string is unwrapped once.
func (p *Pipeline) parse(raw []byte) (models.Signal, error) {
	var in inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		var wrapped string
		if inner := json.Unmarshal(raw, &wrapped); inner != nil {
			return models.Signal{}, &ParseError{Detail: "body is not valid JSON: " + err.Error()}
		}
		if err := json.Unmarshal([]byte(wrapped), &in); err != nil {
			return models.Signal{}, &ParseError{Detail: "body is not valid JSON: " + err.Error()}
		}
	}

	switch {
	case in.Action == nil || *in.Action == "":
		return models.Signal{}, &ParseError{Detail: "field \"action\" is required"}
	case in.Ticker == nil || *in.Ticker == "":
		return models.Signal{}, &ParseError{Detail: "field \"ticker\" is required"}
	case in.Price == nil:
		return models.Signal{}, &ParseError{Detail: "field \"price\" is required"}
	}

	return models.Signal{
		Action:  *in.Action,
		Ticker:  *in.Ticker,
		Price:   *in.Price,
		SL:      in.SL,
		TP1:     in.TP1,
		TP2:     in.TP2,
		TP3:     in.TP3,
		Result:  in.Result,
		Comment: in.Comment,
		Date:    in.Date,
		Time:    in.Time,
		ChatID:  in.ChatID,
		Text:    in.Text,
	}, nil
}

// Ingest runs the full pipeline for one webhook body: parse, validate,
// timestamp, classify, apply to state, and dispatch the normalized payload
// to the sink. Everything except the forwarding completes before return;
// forwarding is fire-and-forget and its outcome never reaches the caller.
func (p *Pipeline) Ingest(ctx context.Context, raw []byte) (models.Payload, error) {
	signal, err := p.parse(raw)
	if err != nil {
		metrics.ParseRejects.Inc()
		return models.Payload{}, err
	}

	now := p.now()
	if signal.Date == "" {
		signal.Date = now.Format(store.DateLayout)
	}
	if signal.Time == "" {
		signal.Time = now.Format(store.TimeLayout)
	}

	kind := signal.Kind()
	if kind == models.KindUnknown {
		p.logger.Warn("Unrecognized signal action, keeping for display only",
			zap.String("action", signal.Action),
			zap.String("ticker", signal.Ticker),
		)
	}

	p.state.Apply(signal)
	metrics.SignalsTotal.WithLabelValues(string(kind)).Inc()

	id := uuid.NewString()
	payload := models.NewPayload(signal, id, p.defaultChatID)

	p.logger.Info("Signal received",
		zap.String("ticker", signal.Ticker),
		zap.String("action", signal.Action),
		zap.String("kind", string(kind)),
		zap.String("id", id),
	)

	p.forwards.Add(1)
	go p.forward(payload)

	return payload, nil
}

// forward delivers one payload to the sink and the local archive. It runs
// on its own goroutine with its own deadline; failures are recorded for
// observability and nothing else.
func (p *Pipeline) forward(payload models.Payload) {
	defer p.forwards.Done()

	ctx, cancel := context.WithTimeout(context.Background(), p.forwardWait)
	defer cancel()

	if err := p.sinkClient.PushSignal(ctx, payload); err != nil {
		metrics.ForwardsTotal.WithLabelValues("error").Inc()
		p.logger.Error("Failed to forward signal to sink",
			zap.String("ticker", payload.Ticker),
			zap.String("id", payload.ID),
			zap.Error(err),
		)
	} else {
		metrics.ForwardsTotal.WithLabelValues("ok").Inc()
	}

	if p.archive != nil {
		p.archive.Record(payload.Signal, payload.ID)
	}
}

// Wait blocks until all in-flight forwards have finished. Used on
// shutdown and in tests.
func (p *Pipeline) Wait() {
	p.forwards.Wait()
}
