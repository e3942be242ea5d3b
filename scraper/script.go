package scraper

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-rod/rod"
	"github.com/use-agent/pagewalk/models"
)

// DoScript evaluates req.Script in the loaded page and returns its value as
// JSON. A script that throws is reported in ScriptResult.ScriptError.
func (s *Scraper) DoScript(ctx context.Context, req *models.ScriptRequest) (*ScriptResult, error) {
	out := &ScriptResult{}
	timing, err := s.withPage(ctx, &req.Target, func(ctx context.Context, p *rod.Page) error {
		res, evalErr := p.Eval(req.Script)
		if evalErr != nil {
			var jsErr *rod.EvalError
			if errors.As(evalErr, &jsErr) {
				out.ScriptError = jsErr.Error()
				out.Value = json.RawMessage("null")
				return nil
			}
			return categorizeError(evalErr, "script evaluation failed")
		}
		value, err := json.Marshal(res.Value)
		if err != nil {
			return models.NewScrapeError(models.ErrCodeScriptFailed, "script result is not serialisable", err)
		}
		out.Value = value
		return nil
	})
	if err != nil {
		return nil, categorizeError(err, "script evaluation failed")
	}
	out.Timing = timing
	return out, nil
}
