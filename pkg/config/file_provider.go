package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// FileProvider watches a configuration file and publishes validated snapshots.
// Edits that fail to parse or validate are logged and the previous snapshot
// stays current.
type FileProvider struct {
	path        string
	logger      *slog.Logger
	mu          sync.RWMutex
	current     *Config
	subscribers []chan *Config
	watcher     *fsnotify.Watcher
	cancel      context.CancelFunc
	done        chan struct{}
	closed      bool
}

// NewFileProvider loads path and starts watching it. The initial load must
// succeed.
func NewFileProvider(path string, logger *slog.Logger) (*FileProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	p := &FileProvider{
		path:   absPath,
		logger: logger.With("component", "config", "path", absPath),
		done:   make(chan struct{}),
	}
	cfg, err := p.read()
	if err != nil {
		return nil, err
	}
	p.current = cfg

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are still seen.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}
	p.watcher = watcher

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.watchLoop(ctx)

	return p, nil
}

// Current returns the latest valid configuration.
func (p *FileProvider) Current() *Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Subscribe returns a channel that receives each new valid configuration. The
// current configuration is sent immediately. Slow consumers miss
// intermediate snapshots.
func (p *FileProvider) Subscribe() <-chan *Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan *Config, 1)
	p.subscribers = append(p.subscribers, ch)
	ch <- p.current
	return ch
}

// Close stops the watcher and closes subscriber channels.
func (p *FileProvider) Close() error {
	p.cancel()
	err := p.watcher.Close()
	<-p.done

	p.mu.Lock()
	p.closed = true
	for _, ch := range p.subscribers {
		close(ch)
	}
	p.subscribers = nil
	p.mu.Unlock()
	return err
}

func (p *FileProvider) watchLoop(ctx context.Context) {
	defer close(p.done)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != p.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(reloadDebounce, func() {
					if ctx.Err() != nil {
						return
					}
					p.reload()
				})
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (p *FileProvider) reload() {
	cfg, err := p.read()
	if err != nil {
		p.logger.Error("config reload rejected", "error", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.current = cfg

	// Sends never block, so holding the lock keeps Close from racing them.
	for _, ch := range p.subscribers {
		select {
		case ch <- cfg:
		default:
			// Drop the stale pending snapshot and replace it.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- cfg:
			default:
			}
		}
	}
	p.logger.Info("configuration reloaded")
}

func (p *FileProvider) read() (*Config, error) {
	// #nosec G304 -- File path is configured at startup
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}
