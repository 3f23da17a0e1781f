package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/tender-intel/internal/config"
	"github.com/jonathan/tender-intel/internal/fetch"
	"github.com/jonathan/tender-intel/internal/payload"
)

// readInput reads a local file, an http(s) URL or "-" for stdin.
func readInput(ctx context.Context, src string, cfg *config.Config) ([]byte, error) {
	if src == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	opts := fetch.DefaultOptions()
	if cfg != nil {
		opts.Timeout = cfg.Fetch.Timeout
		opts.UserAgent = cfg.Fetch.UserAgent
	}
	res, err := fetch.Source(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}

// loadPayload reads and validates a tender payload.
func loadPayload(ctx context.Context, src string, cfg *config.Config) (*payload.Payload, error) {
	data, err := readInput(ctx, src, cfg)
	if err != nil {
		return nil, err
	}
	p, err := payload.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid payload %s: %w", src, err)
	}
	return p, nil
}

// writeFileAtomic writes data to a temp file beside path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// commandContext bounds one-shot commands that may fetch over the network.
func commandContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	timeout := 2 * fetch.DefaultTimeout
	if cfg != nil && cfg.Fetch.Timeout > 0 {
		timeout = 2 * cfg.Fetch.Timeout
	}
	return context.WithTimeout(context.Background(), timeout+5*time.Second)
}
