package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"curator/internal/config"
)

// CheckResult reports the outcome of a single preflight check.
type CheckResult struct {
	Name   string
	Passed bool
	Detail string
}

// Preflight runs every environment check relevant to cfg. It never mutates
// the environment; the caller decides whether failed checks abort the run.
func Preflight(ctx context.Context, cfg *config.Config) []CheckResult {
	if cfg == nil {
		return nil
	}

	results := []CheckResult{
		checkDirectoryAccess("Cache directory", cfg.Paths.CacheDir),
	}
	if cfg.Paths.SourceDir != "" {
		results = append(results, checkDirectoryAccess("Source directory", cfg.Paths.SourceDir))
	}
	results = append(results,
		checkBinary("Text recognition", cfg.OCR.Binary),
		checkBinary("Transcriber", cfg.Transcriber.Binary),
		checkSummarizer(ctx, cfg.Ollama.BaseURL),
	)
	return results
}

// checkDirectoryAccess verifies that the directory exists and is
// readable/writable by the current process.
func checkDirectoryAccess(name, path string) CheckResult {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return CheckResult{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return CheckResult{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return CheckResult{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return CheckResult{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// checkBinary verifies the tool is resolvable on PATH or at its absolute path.
func checkBinary(name, binary string) CheckResult {
	if strings.TrimSpace(binary) == "" {
		return CheckResult{Name: name, Detail: "binary not configured"}
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return CheckResult{Name: name, Detail: fmt.Sprintf("%s (error: not found)", binary)}
	}
	return CheckResult{Name: name, Passed: true, Detail: resolved}
}

// checkSummarizer verifies the summarization endpoint answers at all. A
// single short probe, no retries.
func checkSummarizer(ctx context.Context, baseURL string) CheckResult {
	const name = "Summarizer"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return CheckResult{Name: name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/api/version", nil)
	if err != nil {
		return CheckResult{Name: name, Detail: fmt.Sprintf("probe failed (%v)", err)}
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return CheckResult{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return CheckResult{Name: name, Detail: fmt.Sprintf("probe failed (%d)", resp.StatusCode)}
	}
	return CheckResult{Name: name, Passed: true, Detail: "endpoint reachable"}
}
