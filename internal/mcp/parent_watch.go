package mcp

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// WatchParent monitors for parent process death in a background
// goroutine. When the parent PID changes (the editor disconnected or
// restarted its extension host), cancelFn triggers graceful shutdown so
// orphaned server processes do not accumulate.
//
// This must NOT read from stdin. The SDK's StdioTransport owns stdin
// exclusively; reading here would steal bytes and corrupt the JSON-RPC
// stream.
func WatchParent(ctx context.Context, log *slog.Logger, cancelFn context.CancelFunc) {
	if log == nil {
		log = slog.Default()
	}
	ppid := os.Getppid()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
				if os.Getppid() != ppid {
					log.Warn("parent process died, shutting down", "was_pid", ppid)
					cancelFn()
					return
				}
			}
		}
	}()
}
