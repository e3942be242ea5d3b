package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/pagewalk/paginate"
)

// rodDocument adapts a live browser page to paginate.Document.
type rodDocument struct {
	page *rod.Page
}

func (d *rodDocument) QueryAll(ctx context.Context, selector string) ([]paginate.Element, error) {
	els, err := d.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	out := make([]paginate.Element, len(els))
	for i, el := range els {
		out[i] = &rodElement{el: el}
	}
	return out, nil
}

// ClickAndWait clicks the first element matching selector and waits for the
// navigation it triggers to reach network-almost-idle.
func (d *rodDocument) ClickAndWait(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := d.page.Context(waitCtx)
	wait := p.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)

	els, err := p.Elements(selector)
	if err != nil {
		return fmt.Errorf("find control %q: %w", selector, err)
	}
	if len(els) == 0 {
		return fmt.Errorf("control %q is no longer attached", selector)
	}
	if err := els[0].Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click control %q: %w", selector, err)
	}

	wait()
	if err := waitCtx.Err(); err != nil {
		return fmt.Errorf("wait for navigation after %q: %w", selector, err)
	}
	return nil
}

const selectorCheckJS = `(selector) => {
	try {
		document.createDocumentFragment().querySelector(selector);
		return "";
	} catch (e) {
		return String((e && e.message) || e);
	}
}`

// selectorSyntax returns a parser that asks the page's own CSS engine
// whether a selector is valid. A failed evaluation is not blamed on the
// selector.
func (d *rodDocument) selectorSyntax(ctx context.Context) func(string) error {
	return func(selector string) error {
		res, err := d.page.Context(ctx).Eval(selectorCheckJS, selector)
		if err != nil {
			slog.Warn("selector check could not run", "selector", selector, "error", err)
			return nil
		}
		if msg := res.Value.Str(); msg != "" {
			return errors.New(msg)
		}
		return nil
	}
}

// rodElement adapts a *rod.Element to paginate.Element.
type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Find(selector string) (paginate.Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, nil
	}
	return &rodElement{el: els[0]}, nil
}

func (e *rodElement) Text() (string, error) {
	v, err := e.el.Property("textContent")
	if err != nil {
		return "", err
	}
	return v.Str(), nil
}

func (e *rodElement) HTML() (string, error) {
	v, err := e.el.Property("innerHTML")
	if err != nil {
		return "", err
	}
	return v.Str(), nil
}

func (e *rodElement) Attribute(name string) (string, bool, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}
