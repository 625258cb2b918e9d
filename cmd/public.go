package cmd

import (
	"context"
	"fmt"

	"github.com/jifma-project/jifmactl/internal/record"
)

// fetchPublic lists one collection without credentials
func fetchPublic(ctx context.Context, kind record.Kind) ([]record.Record, error) {
	records, err := newGateway(nil).List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", kind.Collection(), err)
	}
	return records, nil
}

const (
	dateLayout     = "02/01/2006"
	timeLayout     = "15:04"
	dateTimeLayout = "02/01/2006 15:04"
)

// formatWhen renders ts in the display timezone, or the placeholder when it is unset
func formatWhen(ts record.Timestamp, layout string) string {
	if ts.IsZero() {
		return record.Placeholder
	}
	return ts.In(cfg.Location()).Format(layout)
}
