package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"StakeScope/internal/engine"
	"StakeScope/internal/notifier"
	"StakeScope/internal/session"
)

// Sender delivers a rendered message to the user.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler owns the refresh tasks and routes user commands to the engine.
type Scheduler struct {
	Cron   *cron.Cron
	Engine *engine.Engine
	Sender Sender
	Log    *slog.Logger
	Ctx    context.Context
}

// NewScheduler creates a new Scheduler. sender may be nil when no push channel
// is configured.
func NewScheduler(ctx context.Context, eng *engine.Engine, sender Sender, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Engine: eng,
		Sender: sender,
		Log:    log,
		Ctx:    ctx,
	}
}

// RegisterAll registers the periodic refresh tasks. An empty expression disables
// the corresponding task.
func (s *Scheduler) RegisterAll(priceCron, pointsCron string) error {
	if priceCron != "" {
		if _, err := s.Cron.AddFunc(priceCron, s.priceTask); err != nil {
			return fmt.Errorf("register price task: %w", err)
		}
	}
	if pointsCron != "" {
		if _, err := s.Cron.AddFunc(pointsCron, s.pointsTask); err != nil {
			return fmt.Errorf("register points task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started", "tasks", len(s.Cron.Entries()))
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RunStartup issues the price and global points fetches concurrently and
// waits for both. Failures are logged; cached values stay in place.
func (s *Scheduler) RunStartup() {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.priceTask()
	}()
	go func() {
		defer wg.Done()
		s.pointsTask()
	}()
	wg.Wait()
}

func (s *Scheduler) priceTask() {
	if err := s.Engine.RefreshPrice(s.Ctx); err != nil {
		s.Log.Warn("price refresh failed, keeping cached price", "error", err)
	}
}

func (s *Scheduler) pointsTask() {
	if err := s.Engine.RefreshGlobalPoints(s.Ctx); err != nil {
		s.Log.Warn("global points refresh failed, keeping last-known total", "error", err)
	}
}

// NotifyLookup pushes the result of a completed lookup. It is registered as
// the engine's lookup hook, so it must not block.
func (s *Scheduler) NotifyLookup(v engine.View) {
	if s.Sender == nil {
		return
	}
	go s.trySend(notifier.FormatEstimate(v))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	name, arg := splitCommand(command)
	switch name {
	case "/start", "/help":
		return notifier.FormatHelp()
	case "/points":
		return s.submit(ctx, arg)
	case "/boost":
		m, err := strconv.Atoi(arg)
		if err == nil {
			err = s.Engine.SetBoost(ctx, m)
		}
		if err != nil {
			if errors.Is(err, session.ErrInvalidBoost) || errors.As(err, new(*strconv.NumError)) {
				return "Boost must be one of 1, 2, 5 or 10, e.g. /boost 5"
			}
			return s.unavailable(err)
		}
		return s.status(ctx)
	case "/calc":
		if err := s.Engine.ToggleCalculations(ctx); err != nil {
			return s.unavailable(err)
		}
		return s.status(ctx)
	case "/guide":
		if err := s.Engine.ToggleGuide(ctx); err != nil {
			return s.unavailable(err)
		}
		return s.status(ctx)
	case "/status":
		return s.status(ctx)
	case "":
		return s.submit(ctx, arg)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) submit(ctx context.Context, identity string) string {
	if _, err := s.Engine.Submit(ctx, identity); err != nil {
		if errors.Is(err, session.ErrEmptyIdentity) {
			return session.MsgEmptyIdentity
		}
		return s.unavailable(err)
	}
	return fmt.Sprintf("⏳ Fetching staking points for <code>%s</code>...", html.EscapeString(strings.TrimSpace(identity)))
}

func (s *Scheduler) status(ctx context.Context) string {
	v, err := s.Engine.Snapshot(ctx)
	if err != nil {
		return s.unavailable(err)
	}
	return notifier.FormatEstimate(v)
}

func (s *Scheduler) unavailable(err error) string {
	s.Log.Error("command failed", "error", err)
	return "Service is shutting down, please try again later."
}

func (s *Scheduler) trySend(text string) {
	if err := s.Sender.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Log.Error("send notification failed", "error", err)
	}
}

// splitCommand splits "/cmd@bot arg" into ("/cmd", "arg"). Text that is not a
// command returns an empty name and the whole text as arg.
func splitCommand(text string) (name, arg string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	name, arg, _ = strings.Cut(text, " ")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name), strings.TrimSpace(arg)
}
