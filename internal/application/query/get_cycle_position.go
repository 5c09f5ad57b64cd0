package query

import (
	"time"

	"github.com/analist0/tehillim-hub/internal/domain/cycle"
	"github.com/analist0/tehillim-hub/internal/domain/shared"
	"github.com/analist0/tehillim-hub/pkg/timeutil"
)

// CyclePositionResult is the study-cycle position for a given date.
type CyclePositionResult struct {
	Date     string         `json:"date"`
	Position cycle.Position `json:"position"`
}

// GetCyclePositionHandler answers cycle position queries. The calculation
// is pure, so the handler holds nothing but the calculator.
type GetCyclePositionHandler struct {
	calc *cycle.Calculator
	now  func() time.Time
}

// NewGetCyclePositionHandler creates a GetCyclePositionHandler.
func NewGetCyclePositionHandler(calc *cycle.Calculator) *GetCyclePositionHandler {
	return &GetCyclePositionHandler{calc: calc, now: timeutil.Now}
}

// WithClock overrides the handler clock. Used by tests.
func (h *GetCyclePositionHandler) WithClock(now func() time.Time) *GetCyclePositionHandler {
	h.now = now
	return h
}

// Handle returns the position for the requested date, or for today when
// rawDate is empty. rawDate uses YYYY-MM-DD.
func (h *GetCyclePositionHandler) Handle(rawDate string) (*CyclePositionResult, error) {
	at := timeutil.ToLocal(h.now())
	if rawDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", rawDate, timeutil.JerusalemTZ)
		if err != nil {
			return nil, shared.NewDomainError("cycle", "position", shared.ErrInvalidInput,
				"date must use YYYY-MM-DD format")
		}
		at = parsed
	}

	return &CyclePositionResult{
		Date:     timeutil.DayKey(at),
		Position: h.calc.PositionAt(at),
	}, nil
}
