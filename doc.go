// Package sidecarrpc provides a Go client for JSON-line RPC over the stdio
// pipes of a sidecar worker process.
//
// The client spawns a long-lived worker binary, writes newline-delimited
// JSON requests to its stdin, and reads its stdout for two kinds of
// documents multiplexed on the same stream: responses correlated back to
// waiting callers by request id, and unsolicited tagged events fanned out
// to subscribers. Concurrent calls are safe; a slow event consumer never
// stalls an in-flight call.
//
// # Basic Usage
//
// For a single request against a short-lived worker, use the Call function:
//
//	ctx := context.Background()
//	result, err := sidecarrpc.Call(ctx, "sendMessage", sidecarrpc.SendMessageParams{
//	    APIKey:   apiKey,
//	    Model:    "claude-sonnet-4-5",
//	    Messages: []sidecarrpc.ChatMessage{{Role: "user", Content: "Hello"}},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result)
//
// # Interactive Sessions
//
// For multiple calls against one worker, use NewClient or the WithClient
// helper:
//
//	// Using WithClient for automatic lifecycle management
//	err := sidecarrpc.WithClient(ctx, func(c sidecarrpc.Client) error {
//	    result, err := c.SendMessage(ctx, params)
//	    if err != nil {
//	        return err
//	    }
//	    // process result...
//	    return nil
//	},
//	    sidecarrpc.WithWorkerCommand("agent"),
//	)
//
//	// Or using NewClient directly for more control
//	client := sidecarrpc.NewClient()
//	defer client.Close()
//
//	err := client.Start(ctx,
//	    sidecarrpc.WithWorkerCommand("agent"),
//	    sidecarrpc.WithLogger(slog.Default()),
//	)
//
// # Events
//
// Workers push status updates and streamed output as tagged events,
// independent of any call. Subscribe by tag (or AllTags) and decode the
// payload:
//
//	sub, err := client.Subscribe(sidecarrpc.EventAssistantDelta)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sub.Close()
//
//	for evt := range sub.Events() {
//	    var d sidecarrpc.DeltaEvent
//	    if err := evt.Decode(&d); err == nil {
//	        fmt.Print(d.Delta)
//	    }
//	}
//
// # Logging
//
// For detailed operation tracking, use WithLogger:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	result, err := sidecarrpc.Call(ctx, "sendMessage", params,
//	    sidecarrpc.WithLogger(logger),
//	)
//
// # Error Handling
//
// The package provides typed errors for different failure scenarios:
//
//	result, err := client.Call(ctx, "sendMessage", params)
//	if err != nil {
//	    if workerErr, ok := errors.AsType[*sidecarrpc.WorkerError](err); ok {
//	        log.Fatalf("worker rejected the call (code %d): %s", workerErr.Code, workerErr.Message)
//	    }
//	    if procErr, ok := errors.AsType[*sidecarrpc.ProcessError](err); ok {
//	        log.Fatalf("worker died with exit code %d: %s", procErr.ExitCode, procErr.Stderr)
//	    }
//	    if errors.Is(err, sidecarrpc.ErrCallTimeout) {
//	        log.Fatal("worker never answered")
//	    }
//	    log.Fatal(err)
//	}
//
// # Requirements
//
// The worker binary ("agent" by default) must be installed and available in
// your system PATH, or configured explicitly with WithWorkerCommand.
package sidecarrpc
