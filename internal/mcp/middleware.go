package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// instrument wraps a tool handler: a panic becomes a tool error instead of
// taking the stdio session down, and every call is logged with its duration.
func instrument[In, Out any](log *slog.Logger, name string, h mcp.ToolHandlerFor[In, Out]) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (res *mcp.CallToolResult, out Out, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered in tool handler",
					"tool", name,
					"error", r,
					"stack", string(debug.Stack()),
				)
				var zero Out
				res, out, err = nil, zero, fmt.Errorf("%s: internal error", name)
			}
			if err != nil {
				log.Warn("tool call failed", "tool", name, "duration", time.Since(start).String(), "error", err)
				return
			}
			log.Debug("tool call", "tool", name, "duration", time.Since(start).String())
		}()
		return h(ctx, req, in)
	}
}
