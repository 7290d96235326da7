package page

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const screenshotStamp = "20060102_150405"

var screenshotName = strings.NewReplacer(" ", "_", "::", "_", "/", "_", `\`, "_")

// ScreenshotPath returns dir/<test>_<YYYYMMDD_HHMMSS>.png.
func ScreenshotPath(dir, testName string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.png", screenshotName.Replace(testName), now.Format(screenshotStamp)))
}

// CaptureFailure saves a screenshot of the current page for a failed test
// and returns its path.
func CaptureFailure(ctx context.Context, drv Driver, dir, testName string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating screenshot directory: %w", err)
	}
	path := ScreenshotPath(dir, testName, now)
	if err := drv.Screenshot(ctx, path); err != nil {
		return "", fmt.Errorf("capturing screenshot for %s: %w", testName, err)
	}
	return path, nil
}
