// Package store persists execution history. The SQLite store is the
// durable implementation; MemStore backs tests and store-less serving.
package store

import (
	"errors"
	"time"

	"obelisk/pkg/pipeline"
)

// ErrNotFound is returned when no execution matches the given ID.
var ErrNotFound = errors.New("execution not found")

// Record is one persisted execution with its incident context.
type Record struct {
	ExecutionID   string
	DeploymentID  string
	CreatedAt     time.Time
	TopLabel      string
	TopConfidence float64
	ReviewFlagged bool
	Result        pipeline.ExecutionResult
}

// Summary is the listing view of a Record, without the full result.
type Summary struct {
	ExecutionID   string    `json:"execution_id"`
	DeploymentID  string    `json:"deployment_id"`
	CreatedAt     time.Time `json:"created_at"`
	TopLabel      string    `json:"top_label,omitempty"`
	TopConfidence float64   `json:"top_confidence"`
	ReviewFlagged bool      `json:"review_flagged"`
}

// Store is the execution history interface.
type Store interface {
	// Save persists one finished execution.
	Save(deploymentID string, result pipeline.ExecutionResult) error
	// Get returns the full result for an execution ID, or ErrNotFound.
	Get(executionID string) (*Record, error)
	// List returns the most recent executions, newest first, up to limit
	// (0 = all).
	List(limit int) ([]Summary, error)
	Close() error
}

// newRecord builds a Record from a finished execution.
func newRecord(deploymentID string, result pipeline.ExecutionResult) Record {
	rec := Record{
		ExecutionID:   result.ExecutionID,
		DeploymentID:  deploymentID,
		CreatedAt:     time.Now().UTC(),
		ReviewFlagged: result.RequiresHumanReview,
		Result:        result,
	}
	if len(result.RankedHypotheses) > 0 {
		rec.TopLabel = result.RankedHypotheses[0].Label
		rec.TopConfidence = result.RankedHypotheses[0].Confidence
	}
	return rec
}

func (r Record) summary() Summary {
	return Summary{
		ExecutionID:   r.ExecutionID,
		DeploymentID:  r.DeploymentID,
		CreatedAt:     r.CreatedAt,
		TopLabel:      r.TopLabel,
		TopConfidence: r.TopConfidence,
		ReviewFlagged: r.ReviewFlagged,
	}
}
