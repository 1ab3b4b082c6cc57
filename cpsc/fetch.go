package cpsc

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// downloadBase is where CMS hosts the monthly ZIP files.
const downloadBase = "https://www.cms.gov/files/zip"

// ErrNotPublished is returned when no naming variant of the monthly file
// exists yet; CMS releases data around the 15th for the prior month.
var ErrNotPublished = errors.New("cpsc: monthly file not published")

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// DataMonth returns the most recent month CMS should have published by now.
func DataMonth(now time.Time) (year, month int) {
	offset := 1
	if now.Day() < 15 {
		offset = 2
	}
	t := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -offset, 0)
	return t.Year(), int(t.Month())
}

// candidateFilenames lists the naming conventions CMS has used.
func candidateFilenames(year, month int) []string {
	name := monthNames[month-1]
	return []string{
		fmt.Sprintf("monthly-enrollment-cpsc-%s-%d.zip", name, year),
		fmt.Sprintf("monthly-enrollment-by-cpsc-%s-%d.zip", name, year),
		fmt.Sprintf("CPSC_Enrollment_Info_%d_%02d.zip", year, month),
		fmt.Sprintf("CPSC-Enrollment-Info-%d-%02d.zip", year, month),
		fmt.Sprintf("cpsc-enrollment-%d-%02d.zip", year, month),
		fmt.Sprintf("Monthly_Report_By_CPSC_%d_%02d.zip", year, month),
	}
}

// Download fetches the monthly ZIP, trying each filename variant, and
// extracts the enrollment CSV into outDir. Returns the extracted CSV path.
func Download(ctx context.Context, client *http.Client, year, month int, outDir string) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	var zipData []byte
	for _, name := range candidateFilenames(year, month) {
		url := downloadBase + "/" + name
		data, err := fetchURL(ctx, client, url)
		if err != nil {
			slog.Debug("cpsc download variant failed", "url", url, "error", err)
			continue
		}
		slog.Info("cpsc data downloaded", "url", url, "bytes", len(data))
		zipData = data
		break
	}
	if zipData == nil {
		return "", fmt.Errorf("%w: %d-%02d", ErrNotPublished, year, month)
	}
	return extractCSV(zipData, outDir, year, month)
}

func fetchURL(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// extractCSV pulls the largest CSV out of the archive; CMS ships the
// enrollment file alongside a small contract-info CSV.
func extractCSV(zipData []byte, outDir string, year, month int) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return "", fmt.Errorf("cpsc: open zip: %w", err)
	}

	var best *zip.File
	for _, f := range zr.File {
		if !strings.EqualFold(filepath.Ext(f.Name), ".csv") {
			continue
		}
		if best == nil || f.UncompressedSize64 > best.UncompressedSize64 {
			best = f
		}
	}
	if best == nil {
		return "", errors.New("cpsc: no CSV in archive")
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("cpsc: mkdir: %w", err)
	}
	outPath := filepath.Join(outDir, fmt.Sprintf("cpsc_enrollment_%d_%02d.csv", year, month))

	rc, err := best.Open()
	if err != nil {
		return "", fmt.Errorf("cpsc: open %s: %w", best.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("cpsc: create %s: %w", outPath, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, rc); err != nil {
		return "", fmt.Errorf("cpsc: extract: %w", err)
	}
	return outPath, nil
}

// LoadContractOrgs reads an optional CMS contract-info CSV mapping contract
// numbers to parent organizations. Missing file or columns degrade to nil.
func LoadContractOrgs(path string) map[string]string {
	raw, err := os.ReadFile(path)
	if err != nil {
		slog.Info("no contract info file, using built-in mapping", "path", path)
		return nil
	}
	rows, err := parseContractInfo(raw)
	if err != nil {
		slog.Warn("contract info unreadable, using built-in mapping", "path", path, "error", err)
		return nil
	}
	return rows
}
