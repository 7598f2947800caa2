// Command eventsim stands in for the tabletop event source. It listens on the
// configured stream address and plays a script of JSON event lines to every
// connected terminal.
//
// Usage: eventsim [script]
//
// Without a script, lines are read from stdin. Blank lines and lines starting
// with '#' are skipped; "@wait <duration>" pauses playback.
package main

import (
	"bufio"
	"context"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bedside_terminal/internal/config"
	"bedside_terminal/internal/logger"
	"bedside_terminal/internal/protocol"
	"bedside_terminal/internal/stream"
)

const (
	lineDelay     = 300 * time.Millisecond
	clientPoll    = 100 * time.Millisecond
	waitDirective = "@wait"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Encoding).Named("eventsim")
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Stream.Addr())
	if err != nil {
		log.Fatalw("listen failed", "addr", cfg.Stream.Addr(), "err", err)
	}
	log.Infow("event source listening", "addr", ln.Addr().String())

	b := stream.NewBroadcaster(log)
	go func() {
		if err := b.Serve(ctx, ln); err != nil {
			log.Errorw("serve failed", "err", err)
			stop()
		}
	}()

	in, closeIn, err := openScript(os.Args[1:])
	if err != nil {
		log.Fatalw("open script failed", "err", err)
	}
	defer closeIn()

	if !waitForClient(ctx, b) {
		return
	}
	play(ctx, b, in, log)
	<-ctx.Done()
}

func openScript(args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func waitForClient(ctx context.Context, b *stream.Broadcaster) bool {
	t := time.NewTicker(clientPoll)
	defer t.Stop()
	for b.Clients() == 0 {
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
		}
	}
	return true
}

// play broadcasts each script line. Lines that would not decode are still
// sent, so a script can exercise the terminal's malformed-input path.
func play(ctx context.Context, b *stream.Broadcaster, in io.Reader, log *logger.Logger) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, waitDirective); ok {
			d, err := time.ParseDuration(strings.TrimSpace(rest))
			if err != nil {
				log.Warnw("bad_wait_directive", "line", line, "err", err)
				continue
			}
			if !pause(ctx, d) {
				return
			}
			continue
		}

		if _, err := protocol.Decode(line); err != nil {
			log.Warnw("sending_malformed_line", "line", protocol.Preview(line), "err", err)
		}
		n := b.Broadcast(line)
		log.Infow("broadcast", "clients", n, "line", protocol.Preview(line))
		if !pause(ctx, lineDelay) {
			return
		}
	}
	if err := sc.Err(); err != nil {
		log.Errorw("script_read_failed", "err", err)
	}
	log.Infow("script finished")
}

func pause(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
