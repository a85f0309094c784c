// Package tsvrepair provides a core processor that runs an operator-supplied
// repair script against rejected tab-separated records and either republishes
// a corrected record or discards the original.
package tsvrepair

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/tabstreams/component"
	"github.com/c360/tabstreams/errors"
	"github.com/c360/tabstreams/message"
	"github.com/c360/tabstreams/natsclient"
	"github.com/c360/tabstreams/pkg/worker"
	"github.com/c360/tabstreams/script"
)

// Config holds configuration for the TSV repair processor
type Config struct {
	Ports      *component.PortConfig `json:"ports"            schema:"type:ports,description:Port configuration,category:basic"`
	Script     string                `json:"script,omitempty" schema:"type:string,description:Inline repair script source,category:basic"`
	ScriptFile string                `json:"script_file,omitempty" schema:"type:string,description:Path to repair script file,category:basic"`

	Workers       int `json:"workers,omitempty"         schema:"type:int,description:Concurrent evaluation workers,category:advanced"`
	QueueSize     int `json:"queue_size,omitempty"      schema:"type:int,description:Pending record queue size,category:advanced"`
	EvalTimeoutMs int `json:"eval_timeout_ms,omitempty" schema:"type:int,description:Per-record evaluation timeout in milliseconds (0 disables),category:advanced"`
}

// DefaultConfig returns the default configuration for the TSV repair processor
func DefaultConfig() Config {
	inputDefs := []component.PortDefinition{
		{
			Name:        "nats_input",
			Type:        "nats",
			Subject:     "tsv.bad",
			Interface:   "tsv.bad.v1",
			Required:    true,
			Description: "NATS subjects delivering rejected records",
		},
	}

	outputDefs := []component.PortDefinition{
		{
			Name:        "nats_output",
			Type:        "nats",
			Subject:     "tsv.repaired",
			Interface:   "tsv.repaired.v1",
			Required:    true,
			Description: "NATS subject for repaired records",
		},
		{
			Name:        "discard_output",
			Type:        "nats",
			Subject:     "",
			Interface:   "tsv.bad.v1",
			Required:    false,
			Description: "Optional dead-letter subject for discarded records",
		},
	}

	return Config{
		Ports: &component.PortConfig{
			Inputs:  inputDefs,
			Outputs: outputDefs,
		},
		Workers:   4,
		QueueSize: 1000,
	}
}

// tsvRepairSchema defines the configuration schema for the TSV repair processor
var tsvRepairSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Processor repairs or discards rejected tab-separated records by running
// a compiled operator script once per record.
type Processor struct {
	name          string
	subjects      []string
	repairSubjs   []string
	discardSubjs  []string
	compiled      *script.Compiled
	evaluator     *script.Evaluator
	pool          *worker.Pool[repairTask]
	natsClient    *natsclient.Client
	logger        *slog.Logger
	workers       int
	queueSize     int

	// Lifecycle management
	shutdown    chan struct{}
	done        chan struct{}
	running     bool
	startTime   time.Time
	mu          sync.RWMutex
	lifecycleMu sync.Mutex

	// Metrics (atomic counters for DataFlow)
	recordsProcessed int64
	recordsRepaired  int64
	recordsDiscarded int64
	errors           int64
	lastActivity     time.Time

	// Prometheus metrics
	metrics *repairMetrics
}

// repairTask is one unit of work for the evaluation pool: the raw bytes
// of an incoming tsv.bad.v1 message.
type repairTask struct {
	data []byte
}

// NewProcessor creates a new TSV repair processor from configuration.
// The repair script is compiled here, once; a script that fails to compile
// makes construction fail and the processor never becomes usable.
func NewProcessor(
	rawConfig json.RawMessage, deps component.Dependencies,
) (component.Discoverable, error) {
	config := DefaultConfig()
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &config); err != nil {
			return nil, errors.WrapInvalid(err, "TSVRepairProcessor", "NewProcessor", "config unmarshal")
		}
	}

	if config.Ports == nil {
		config.Ports = DefaultConfig().Ports
	}

	source, err := loadScriptSource(config)
	if err != nil {
		return nil, err
	}

	compiled, err := script.Compile(source)
	if err != nil {
		// No fallback: a broken script must stop the pipeline from starting.
		return nil, errors.WrapFatal(err, "TSVRepairProcessor", "NewProcessor", "compile repair script")
	}

	var inputSubjects []string
	var repairSubjects []string
	var discardSubjects []string

	for _, input := range config.Ports.Inputs {
		if input.Type == "nats" && input.Subject != "" {
			inputSubjects = append(inputSubjects, input.Subject)
		}
	}
	for _, output := range config.Ports.Outputs {
		if output.Type != "nats" || output.Subject == "" {
			continue
		}
		if strings.HasPrefix(output.Name, "discard") {
			discardSubjects = append(discardSubjects, output.Subject)
		} else {
			repairSubjects = append(repairSubjects, output.Subject)
		}
	}

	if len(inputSubjects) == 0 {
		return nil, errors.WrapInvalid(
			errors.ErrInvalidConfig, "TSVRepairProcessor", "NewProcessor",
			"no input subjects configured")
	}
	if len(repairSubjects) == 0 {
		return nil, errors.WrapInvalid(
			errors.ErrInvalidConfig, "TSVRepairProcessor", "NewProcessor",
			"no repair output subjects configured")
	}

	metrics, err := newRepairMetrics(deps.MetricsRegistry, "tsv-repair-processor")
	if err != nil {
		deps.GetLogger().Error("Failed to initialize TSV repair metrics", "error", err)
		metrics = nil // Continue without metrics
	}

	var evalOpts []script.EvaluatorOption
	if config.EvalTimeoutMs > 0 {
		evalOpts = append(evalOpts, script.WithTimeout(time.Duration(config.EvalTimeoutMs)*time.Millisecond))
	}

	p := &Processor{
		name:         "tsv-repair-processor",
		subjects:     inputSubjects,
		repairSubjs:  repairSubjects,
		discardSubjs: discardSubjects,
		compiled:     compiled,
		evaluator:    script.NewEvaluator(deps.GetLogger(), evalOpts...),
		natsClient:   deps.NATSClient,
		logger:       deps.GetLogger(),
		workers:      config.Workers,
		queueSize:    config.QueueSize,
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
		metrics:      metrics,
	}

	var poolOpts []worker.Option[repairTask]
	if deps.MetricsRegistry != nil {
		poolOpts = append(poolOpts,
			worker.WithMetricsRegistry[repairTask](deps.MetricsRegistry, "tsv_repair_pool"))
	}
	p.pool = worker.NewPool(config.Workers, config.QueueSize, p.processTask, poolOpts...)

	return p, nil
}

// loadScriptSource resolves the script text from inline config or a file.
func loadScriptSource(config Config) (string, error) {
	if config.Script != "" && config.ScriptFile != "" {
		return "", errors.WrapInvalid(
			errors.ErrInvalidConfig, "TSVRepairProcessor", "NewProcessor",
			"script and script_file are mutually exclusive")
	}
	if config.Script != "" {
		return config.Script, nil
	}
	if config.ScriptFile != "" {
		data, err := os.ReadFile(config.ScriptFile)
		if err != nil {
			return "", errors.WrapFatal(err, "TSVRepairProcessor", "NewProcessor",
				fmt.Sprintf("read script file %s", config.ScriptFile))
		}
		return string(data), nil
	}
	return "", errors.WrapInvalid(
		errors.ErrMissingConfig, "TSVRepairProcessor", "NewProcessor",
		"either script or script_file must be set")
}

// Initialize prepares the processor (no-op for TSV repair)
func (p *Processor) Initialize() error {
	return nil
}

// Start begins consuming bad records
func (p *Processor) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.running {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "TSVRepairProcessor", "Start", "check running state")
	}

	if p.natsClient == nil {
		return errors.WrapFatal(errors.ErrMissingConfig, "TSVRepairProcessor", "Start", "NATS client required")
	}

	if err := p.pool.Start(ctx); err != nil {
		return errors.WrapFatal(err, "TSVRepairProcessor", "Start", "start worker pool")
	}

	for _, subject := range p.subjects {
		p.logger.Debug("Subscribing to NATS subject",
			"component", p.name,
			"subject", subject)

		if err := p.natsClient.Subscribe(ctx, subject, p.handleMessage); err != nil {
			p.logger.Error("Failed to subscribe to NATS subject",
				"component", p.name,
				"subject", subject,
				"error", err)
			return errors.WrapTransient(err, "TSVRepairProcessor", "Start", fmt.Sprintf("subscribe to %s", subject))
		}
	}

	p.mu.Lock()
	p.running = true
	p.startTime = time.Now()
	p.mu.Unlock()

	p.logger.Info("TSV repair processor started",
		"component", p.name,
		"input_subjects", p.subjects,
		"repair_subjects", p.repairSubjs,
		"discard_subjects", p.discardSubjs,
		"workers", p.workers)

	return nil
}

// Stop gracefully stops the processor
func (p *Processor) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.running {
		return nil
	}

	close(p.shutdown)

	if err := p.pool.Stop(timeout); err != nil {
		return errors.WrapTransient(err, "TSVRepairProcessor", "Stop", "stop worker pool")
	}

	p.mu.Lock()
	p.running = false
	close(p.done)
	p.mu.Unlock()

	return nil
}

// handleMessage queues an incoming bad record for evaluation.
func (p *Processor) handleMessage(_ context.Context, msgData []byte) {
	if err := p.pool.Submit(repairTask{data: msgData}); err != nil {
		atomic.AddInt64(&p.errors, 1)
		p.metrics.recordError(p.name, "queue")
		p.logger.Warn("Dropped bad record, queue full",
			"component", p.name,
			"error", err)
	}
}

// processTask evaluates one queued bad record.
func (p *Processor) processTask(ctx context.Context, task repairTask) error {
	atomic.AddInt64(&p.recordsProcessed, 1)
	p.mu.Lock()
	p.lastActivity = time.Now()
	p.mu.Unlock()

	var baseMsg message.BaseMessage
	if err := json.Unmarshal(task.data, &baseMsg); err != nil {
		atomic.AddInt64(&p.errors, 1)
		p.metrics.recordError(p.name, "parse")
		p.logger.Debug("Failed to parse message as BaseMessage",
			"component", p.name,
			"error", err)
		return err
	}

	bad, ok := baseMsg.Payload().(*message.BadRecordPayload)
	if !ok {
		atomic.AddInt64(&p.errors, 1)
		p.metrics.recordError(p.name, "type")
		p.logger.Debug("Payload is not a bad record",
			"component", p.name,
			"actual_type", fmt.Sprintf("%T", baseMsg.Payload()))
		return errors.ErrInvalidData
	}

	if err := bad.Validate(); err != nil {
		atomic.AddInt64(&p.errors, 1)
		p.metrics.recordError(p.name, "validation")
		p.logger.Debug("Bad record payload failed validation",
			"component", p.name,
			"error", err)
		return err
	}

	start := time.Now()
	repaired, ok := p.ProcessRecord(bad.Record, bad.Errors)
	duration := time.Since(start)
	p.metrics.recordEvaluation(p.name, ok, duration)

	if !ok {
		atomic.AddInt64(&p.recordsDiscarded, 1)
		p.publishDiscard(ctx, task.data)
		p.logger.Debug("Record discarded",
			"component", p.name,
			"error_count", len(bad.Errors),
			"evaluation_time_us", duration.Microseconds())
		p.maybeUpdateRepairRate()
		return nil
	}

	atomic.AddInt64(&p.recordsRepaired, 1)
	p.publishRepaired(ctx, repaired, bad.Errors)
	p.maybeUpdateRepairRate()
	return nil
}

// ProcessRecord runs the compiled repair script against one record.
// It returns the corrected record and true for a repair, or false when
// the script decided (or a fault forced) a discard. This is the direct
// per-record interface; NATS plumbing above is just transport.
func (p *Processor) ProcessRecord(record string, errs []string) (string, bool) {
	return p.evaluator.Evaluate(p.compiled, record, errs)
}

// publishRepaired sends the corrected record to every repair output.
func (p *Processor) publishRepaired(ctx context.Context, repaired string, originalErrors []string) {
	payload := &message.RepairedRecordPayload{
		Record:         repaired,
		OriginalErrors: originalErrors,
	}
	msg := message.NewBaseMessage(message.RepairedRecordMessage, payload, p.name)

	data, err := json.Marshal(msg)
	if err != nil {
		atomic.AddInt64(&p.errors, 1)
		p.metrics.recordError(p.name, "marshal")
		p.logger.Error("Failed to marshal repaired record message",
			"component", p.name,
			"error", err)
		return
	}

	for _, subject := range p.repairSubjs {
		if err := p.natsClient.Publish(ctx, subject, data); err != nil {
			atomic.AddInt64(&p.errors, 1)
			p.metrics.recordError(p.name, "publish")
			p.logger.Error("Failed to publish repaired record",
				"component", p.name,
				"output_subject", subject,
				"error", err)
		}
	}
}

// publishDiscard forwards the original message to the dead-letter
// subjects, when configured. Discards with no dead-letter are dropped.
func (p *Processor) publishDiscard(ctx context.Context, original []byte) {
	for _, subject := range p.discardSubjs {
		if err := p.natsClient.Publish(ctx, subject, original); err != nil {
			atomic.AddInt64(&p.errors, 1)
			p.metrics.recordError(p.name, "publish")
			p.logger.Error("Failed to publish discarded record",
				"component", p.name,
				"output_subject", subject,
				"error", err)
		}
	}
}

// maybeUpdateRepairRate refreshes the repair rate gauge every 100 records.
func (p *Processor) maybeUpdateRepairRate() {
	if atomic.LoadInt64(&p.recordsProcessed)%100 == 0 {
		p.metrics.updateRepairRate(
			atomic.LoadInt64(&p.recordsRepaired),
			atomic.LoadInt64(&p.recordsProcessed),
		)
	}
}

// Discoverable interface implementation

// Meta returns metadata describing this processor component.
func (p *Processor) Meta() component.Metadata {
	return component.Metadata{
		Name:        p.name,
		Type:        "processor",
		Description: "Script-driven repair of rejected tab-separated records",
		Version:     "0.1.0",
	}
}

// InputPorts returns the NATS input ports this processor subscribes to.
func (p *Processor) InputPorts() []component.Port {
	ports := make([]component.Port, len(p.subjects))
	for i, subj := range p.subjects {
		ports[i] = component.Port{
			Name:      fmt.Sprintf("input_%d", i),
			Direction: component.DirectionInput,
			Required:  true,
			Config: component.NATSPort{
				Subject: subj,
				Interface: &component.InterfaceContract{
					Type:    "tsv.bad.v1",
					Version: "v1",
				},
			},
		}
	}
	return ports
}

// OutputPorts returns the repaired and dead-letter output ports.
func (p *Processor) OutputPorts() []component.Port {
	ports := make([]component.Port, 0, len(p.repairSubjs)+len(p.discardSubjs))
	for i, subject := range p.repairSubjs {
		ports = append(ports, component.Port{
			Name:      fmt.Sprintf("output_%d", i),
			Direction: component.DirectionOutput,
			Required:  true,
			Config: component.NATSPort{
				Subject: subject,
				Interface: &component.InterfaceContract{
					Type:    "tsv.repaired.v1",
					Version: "v1",
				},
			},
		})
	}
	for i, subject := range p.discardSubjs {
		ports = append(ports, component.Port{
			Name:      fmt.Sprintf("discard_%d", i),
			Direction: component.DirectionOutput,
			Required:  false,
			Config: component.NATSPort{
				Subject: subject,
				Interface: &component.InterfaceContract{
					Type:    "tsv.bad.v1",
					Version: "v1",
				},
			},
		})
	}
	return ports
}

// ConfigSchema returns the configuration schema for this processor.
func (p *Processor) ConfigSchema() component.ConfigSchema {
	return tsvRepairSchema
}

// Health returns the current health status of this processor.
func (p *Processor) Health() component.HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return component.HealthStatus{
		Healthy:    p.running,
		LastCheck:  time.Now(),
		ErrorCount: int(atomic.LoadInt64(&p.errors)),
		Uptime:     time.Since(p.startTime),
	}
}

// DataFlow returns current data flow metrics for this processor.
func (p *Processor) DataFlow() component.FlowMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()

	processed := atomic.LoadInt64(&p.recordsProcessed)
	errorCount := atomic.LoadInt64(&p.errors)

	var errorRate float64
	if processed > 0 {
		errorRate = float64(errorCount) / float64(processed)
	}

	return component.FlowMetrics{
		ErrorRate:    errorRate,
		LastActivity: p.lastActivity,
	}
}

// Stats exposes worker pool statistics for diagnostics.
func (p *Processor) Stats() worker.PoolStats {
	return p.pool.Stats()
}

// Register registers the TSV repair processor component with the given registry
func Register(registry *component.Registry) error {
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "tsv_repair",
		Factory:     NewProcessor,
		Schema:      tsvRepairSchema,
		Type:        "processor",
		Protocol:    "tsv_repair",
		Domain:      "processing",
		Description: "Script-driven repair of rejected tab-separated records",
		Version:     "0.1.0",
	})
}
