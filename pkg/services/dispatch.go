package services

import (
	"go.uber.org/zap"

	"github.com/askdata-inc/askdata-engine/pkg/logging"
	"github.com/askdata-inc/askdata-engine/pkg/models"
)

// Detector inspects a question plus the inferred schema and either claims it
// with a fully parameterized intent or declines with nil. Detectors are pure
// functions: a detector that cannot resolve a required field declines rather
// than guessing.
type Detector interface {
	Name() string
	Detect(question string, schema *models.DatasetSchema) models.Intent
}

// Dispatcher runs detectors in fixed precedence order, short-circuiting on
// the first claim. The order is specificity-driven: the most
// parameter-constrained operations run first so a generic aggregation never
// swallows a top-N or trend question.
type Dispatcher struct {
	detectors []Detector
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher with the canonical detector order.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		detectors: []Detector{
			ListAllDetector{},
			TopNDetector{},
			GroupByDetector{},
			GroupRankDetector{},
			ConditionalCountDetector{},
			FilteredAggregateDetector{},
			AggregateDetector{},
			ThresholdFilterDetector{},
			TrendDetector{},
			OutlierDetector{},
		},
		logger: logger.Named("dispatch"),
	}
}

// Dispatch returns the first intent any detector claims, or nil when the
// question should fall through to retrieval.
func (d *Dispatcher) Dispatch(question string, schema *models.DatasetSchema) models.Intent {
	if schema.IsEmpty() {
		return nil
	}
	for _, det := range d.detectors {
		if intent := det.Detect(question, schema); intent != nil {
			d.logger.Debug("detector claimed question",
				zap.String("detector", det.Name()),
				zap.String("question", logging.TruncateQuestion(question)))
			return intent
		}
	}
	return nil
}
