package paginate

import "github.com/use-agent/pagewalk/models"

// session is the mutable state of one Run call.
type session struct {
	rules           []models.ExtractionRule
	controlSelector string
	pageLimit       int
	currentPage     int
	records         []models.PageRecord
}

func newSession(rules []models.ExtractionRule, controlSelector string, pageLimit int) *session {
	return &session{
		rules:           rules,
		controlSelector: controlSelector,
		pageLimit:       pageLimit,
		currentPage:     1,
		records:         []models.PageRecord{},
	}
}

func (s *session) result() *Result {
	return &Result{
		Records:      s.records,
		PagesVisited: s.currentPage,
		TotalRecords: len(s.records),
	}
}

// Result summarises a finished walk.
type Result struct {
	Records      []models.PageRecord
	PagesVisited int
	TotalRecords int
}
