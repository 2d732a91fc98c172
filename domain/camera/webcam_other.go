//go:build !linux

package camera

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/camsnap/config"
)

func openWebcam(_ context.Context, device string, _ config.Constraints, _ time.Duration, _ *slog.Logger) (Feed, error) {
	return nil, fmt.Errorf("%w: v4l2 device %s", ErrUnsupported, device)
}
