package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/lotworks/reconboard/internal/models"
)

// DigestSubject is the subject line for the daily summary notification.
const DigestSubject = "Reconboard daily summary"

// BuildDigest renders the board summary as plain text suitable for any
// notification channel.
func (s *Service) BuildDigest(ctx context.Context) (string, error) {
	sum, err := s.Summary(ctx)
	if err != nil {
		return "", fmt.Errorf("analytics: build digest: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Vehicles on the board: %d\n", sum.TotalVehicles)
	for _, status := range []string{
		models.StatusPending,
		models.StatusInProgress,
		models.StatusOnHold,
		models.StatusCompleted,
	} {
		if n := sum.ByStatus[status]; n > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", status, n)
		}
	}
	fmt.Fprintf(&b, "Completed in the last 7 days: %d\n", sum.CompletedLast7d)
	if sum.AvgDaysToComplete > 0 {
		fmt.Fprintf(&b, "Average days to complete: %.1f\n", sum.AvgDaysToComplete)
	}
	return b.String(), nil
}
