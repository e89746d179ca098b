// Package watch 监听内容目录，文件保存后自动重新校验。
package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"contentgate/server/internal/domain"
	"contentgate/server/internal/logger"
	"contentgate/server/internal/model"
)

// ValidateFunc 校验一个文件的内容。
type ValidateFunc func(ctx context.Context, path string, raw []byte) (model.ValidationReport, error)

// Result 一次文件校验的结果。Err 非 nil 时 Report 无意义。
type Result struct {
	Path   string
	Report model.ValidationReport
	Err    error
}

const defaultDebounce = 300 * time.Millisecond

// Watcher 对同一文件的连续写入做去抖，静默 debounce 之后才校验一次。
type Watcher struct {
	dir      string
	fsw      *fsnotify.Watcher
	validate ValidateFunc
	onResult func(Result)
	debounce time.Duration
	maxBytes int64
	log      *logger.Logger
	now      func() time.Time

	pending map[string]time.Time
}

// New 创建 Watcher 并立即开始监听 dir，返回后的写入都不会丢失。
func New(dir string, validate ValidateFunc, onResult func(Result), debounce time.Duration, log *logger.Logger) (*Watcher, error) {
	if validate == nil || onResult == nil {
		return nil, errors.New("watch: validate and onResult are required")
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if log == nil {
		log = logger.Nop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		dir:      dir,
		fsw:      fsw,
		validate: validate,
		onResult: onResult,
		debounce: debounce,
		log:      log,
		now:      time.Now,
		pending:  make(map[string]time.Time),
	}, nil
}

// SetMaxBytes 设置单个文件的读取上限。
func (w *Watcher) SetMaxBytes(n int64) {
	w.maxBytes = n
}

// Close 释放底层 watcher。只在不调用 Run 时需要。
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// ScanExisting 校验目录中已有的全部内容文件，在 Run 之前调用。
func (w *Watcher) ScanExisting(ctx context.Context) error {
	files, err := domain.ListContentFiles(w.dir)
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.process(ctx, path)
	}
	return nil
}

// Run 阻塞处理文件事件直到 ctx 取消。返回时底层 watcher 已关闭。
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	tick := max(w.debounce/2, 10*time.Millisecond)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	w.log.Info("[Watch] watching directory", "dir", w.dir, "debounce", w.debounce.String())
	for {
		select {
		case <-ctx.Done():
			w.log.Info("[Watch] stopped", "dir", w.dir)
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("[Watch] watcher error", "error", err)

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !domain.IsContentFile(event.Name) {
		return
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(w.pending, event.Name)
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.pending[event.Name] = w.now()
	}
}

// flush 处理静默期已过的文件。
func (w *Watcher) flush(ctx context.Context) {
	now := w.now()
	for path, last := range w.pending {
		if now.Sub(last) < w.debounce {
			continue
		}
		delete(w.pending, path)
		w.process(ctx, path)
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	raw, err := domain.LoadContentFile(path, w.maxBytes)
	if err != nil {
		w.onResult(Result{Path: path, Err: err})
		return
	}
	report, err := w.validate(ctx, path, raw)
	if err != nil {
		w.onResult(Result{Path: path, Err: err})
		return
	}
	w.log.Debug("[Watch] file validated", "path", path, "valid", report.IsValid)
	w.onResult(Result{Path: path, Report: report})
}
