package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"costedge/backend/internal/model"
	pkgerrors "costedge/backend/pkg/errors"
)

// ── milestone calendar feed ─────────────────────────────────
//
// One all-day VEVENT per milestone on its expected completion date.
// The UID is stable per record so subscribed clients update in place.
// An empty status filter exports every milestone.
// ─────────────────────────────────────────────────────────────

const (
	calendarProductID = "-//costedge//milestones//EN"
	calendarName      = "Milestone completions"
	calendarUIDDomain = "costedge"
)

func (s *milestoneService) Calendar(ctx context.Context, status string) (string, error) {
	fetch := s.repo.MilestoneCost.List
	if status != "" {
		st, ok := model.ParseApprovalStatus(status)
		if !ok {
			ve := pkgerrors.NewValidationError()
			ve.Add("approval_status", "must be one of "+validValues(model.ApprovalStatuses))
			return "", ve
		}
		fetch = func(ctx context.Context) ([]model.MilestoneCost, error) {
			return s.repo.MilestoneCost.ListByApprovalStatus(ctx, st)
		}
	}

	ms, err := fetch(ctx)
	if err != nil {
		s.logger.Error("milestone query failed", zap.String("op", "calendar"), zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(calendarName)

	stamp := s.now().UTC()
	for i := range ms {
		addMilestoneEvent(cal, &ms[i], stamp)
	}
	return cal.Serialize(), nil
}

func addMilestoneEvent(cal *ics.Calendar, m *model.MilestoneCost, stamp time.Time) {
	due := time.Time(m.ExpectedCompletionDate)
	day := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)

	ev := cal.AddEvent(fmt.Sprintf("milestone-%d@%s", m.ID, calendarUIDDomain))
	ev.SetDtStampTime(stamp)
	if !m.UpdatedAt.IsZero() {
		ev.SetModifiedAt(m.UpdatedAt.UTC())
	}
	ev.SetAllDayStartAt(day)
	ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
	ev.SetSummary(m.ProjectName + ": " + m.Milestone)
	ev.SetDescription(milestoneEventDescription(m))
	if m.Category != "" {
		ev.SetProperty(ics.ComponentPropertyCategories, m.Category)
	}
}

func milestoneEventDescription(m *model.MilestoneCost) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project %d (%s)\n", m.ProjectID, m.Department)
	fmt.Fprintf(&b, "Planned %s %s, actual %s %s\n",
		m.Planned.StringFixed(2), m.Currency, m.Actual.StringFixed(2), m.Currency)
	fmt.Fprintf(&b, "Approval: %s", m.ApprovalStatus)
	return b.String()
}
