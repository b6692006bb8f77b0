package booking

import (
	"context"
	"fmt"

	"github.com/homecyclehelp/booking-client/internal/observability/metrics"
	"github.com/homecyclehelp/booking-client/pkg/logging"
)

// Availability check messages.
const (
	MsgServedFmt     = "Nous desservons votre adresse (%s)."
	MsgNotServed     = "Désolé, cette adresse n'est pas encore desservie."
	MsgVerifyFailure = "Adresse invalide ou erreur lors de la vérification."
)

// AvailabilityChecker answers "do you serve my address?" without requiring a
// session. It resolves the address and checks coverage, nothing more.
type AvailabilityChecker struct {
	resolver AddressResolver
	api      API
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewAvailabilityChecker constructs the standalone coverage check.
func NewAvailabilityChecker(resolver AddressResolver, api API, m *metrics.BookingMetrics, logger *logging.Logger) *AvailabilityChecker {
	if logger == nil {
		logger = logging.Default()
	}
	return &AvailabilityChecker{resolver: resolver, api: api, metrics: m, logger: logger}
}

// Verify resolves a free-text address and reports whether it is covered,
// with the user-facing message. A resolution or transport failure returns
// the generic failure message along with the error.
func (c *AvailabilityChecker) Verify(ctx context.Context, query string) (bool, string, error) {
	coord, err := c.resolver.Resolve(ctx, query)
	if err != nil {
		c.metrics.ObserveCoverage("error")
		return false, MsgVerifyFailure, err
	}

	coverage, err := c.api.CheckCoverage(ctx, coord.Latitude, coord.Longitude)
	if err != nil {
		c.metrics.ObserveCoverage("error")
		c.logger.Warn("availability verification failed", "error", err)
		return false, MsgVerifyFailure, err
	}

	if !coverage.Covered {
		c.metrics.ObserveCoverage("not_covered")
		return false, MsgNotServed, nil
	}
	c.metrics.ObserveCoverage("covered")
	return true, fmt.Sprintf(MsgServedFmt, coord.Label), nil
}
