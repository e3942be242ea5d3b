package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/pagewalk/models"
)

const (
	actionTimeout = 10 * time.Second
	scrollPause   = 100 * time.Millisecond
)

type actionRunner func(p *rod.Page, a models.Action) error

var actionRunners = map[string]actionRunner{
	"wait":       waitAction,
	"click":      clickAction,
	"scroll":     scrollAction,
	"execute_js": jsAction,
}

// executeActions prepares the page before the operation runs. Actions run in
// order and the first failure aborts the request with ACTION_FAILED.
func executeActions(ctx context.Context, page *rod.Page, actions []models.Action) error {
	for i, a := range actions {
		run, ok := actionRunners[a.Type]
		if !ok {
			return actionError(i, a, fmt.Errorf("unknown action type %q", a.Type))
		}

		actx, cancel := context.WithTimeout(ctx, actionTimeout)
		err := run(page.Context(actx), a)
		cancel()
		if err != nil {
			return actionError(i, a, err)
		}
	}
	return nil
}

func actionError(i int, a models.Action, err error) error {
	msg := fmt.Sprintf("action %d (%s) failed after %d completed: %v", i, a.Type, i, err)
	return models.NewScrapeError(models.ErrCodeActionFailed, msg, err)
}

// waitAction waits for a selector to match when one is given, otherwise
// sleeps for the requested milliseconds.
func waitAction(p *rod.Page, a models.Action) error {
	switch {
	case a.Selector != "":
		return p.WaitElementsMoreThan(a.Selector, 0)
	case a.Milliseconds > 0:
		return sleepCtx(p.GetContext(), time.Duration(a.Milliseconds)*time.Millisecond)
	}
	return nil
}

func clickAction(p *rod.Page, a models.Action) error {
	if a.Selector == "" {
		return errors.New("click needs a selector")
	}
	el, err := p.Element(a.Selector)
	if err != nil {
		return fmt.Errorf("no element matches %q: %w", a.Selector, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// scrollAction moves a.Amount viewports so lazily rendered rows exist
// before extraction starts.
func scrollAction(p *rod.Page, a models.Action) error {
	steps := max(a.Amount, 1)

	height, err := p.Eval(`() => window.innerHeight`)
	if err != nil {
		return fmt.Errorf("read viewport height: %w", err)
	}
	dy := float64(height.Value.Int())
	if a.Direction == "up" {
		dy = -dy
	}

	for i := range steps {
		if err := p.Mouse.Scroll(0, dy, 0); err != nil {
			return fmt.Errorf("scroll step %d: %w", i, err)
		}
		if err := sleepCtx(p.GetContext(), scrollPause); err != nil {
			return err
		}
	}
	return nil
}

func jsAction(p *rod.Page, a models.Action) error {
	if a.Code == "" {
		return errors.New("execute_js needs code")
	}
	_, err := p.Eval(a.Code)
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
