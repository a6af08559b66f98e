package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	ics "github.com/arran4/golang-ical"

	"costedge/backend/internal/dto"
	"costedge/backend/internal/model"
	pkgerrors "costedge/backend/pkg/errors"
)

func parseFeed(t *testing.T, feed string) *ics.Calendar {
	t.Helper()
	cal, err := ics.ParseCalendar(strings.NewReader(feed))
	if err != nil {
		t.Fatalf("feed does not parse: %v\n%s", err, feed)
	}
	return cal
}

func TestMilestoneService_Calendar_AllDayEventPerMilestone(t *testing.T) {
	svc, _ := setupTestMilestoneService()
	first := createMilestone(t, svc)
	req := validMilestoneRequest()
	req.Milestone = "Pilot run"
	req.ExpectedCompletionDate = "2024-07-31"
	if _, err := svc.Create(context.Background(), req, "user-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	feed, err := svc.Calendar(context.Background(), "")
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	events := parseFeed(t, feed).Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	ev := events[0]
	if ev.Id() != "milestone-1@costedge" || first.ID != 1 {
		t.Errorf("uid = %q", ev.Id())
	}
	if got := ev.GetProperty(ics.ComponentPropertySummary).Value; got != "Falcon: Tooling" {
		t.Errorf("summary = %q", got)
	}
	start := ev.GetProperty(ics.ComponentPropertyDtStart)
	if start == nil || start.Value != "20240501" {
		t.Fatalf("DTSTART should be the expected completion date, got %+v", start)
	}
	if vt := start.ICalParameters["VALUE"]; len(vt) != 1 || vt[0] != "DATE" {
		t.Errorf("DTSTART should be an all-day date, params %v", start.ICalParameters)
	}
	if end := ev.GetProperty(ics.ComponentPropertyDtEnd); end == nil || end.Value != "20240502" {
		t.Errorf("DTEND should be the next day, got %+v", end)
	}
	if !strings.Contains(ev.GetProperty(ics.ComponentPropertyDescription).Value, "Approval: Pending") {
		t.Errorf("description should carry the approval status")
	}
}

func TestMilestoneService_Calendar_StatusFilter(t *testing.T) {
	svc, _ := setupTestMilestoneService()
	createMilestone(t, svc)
	second := createMilestone(t, svc)
	if _, err := svc.SubmitApproval(context.Background(), second.ID,
		&dto.ApprovalRequest{ApprovalStatus: string(model.ApprovalApproved), ApprovedBy: "m"}, ""); err != nil {
		t.Fatalf("SubmitApproval: %v", err)
	}

	feed, err := svc.Calendar(context.Background(), "Approved")
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	events := parseFeed(t, feed).Events()
	if len(events) != 1 || events[0].Id() != "milestone-2@costedge" {
		t.Errorf("expected only the approved milestone, got %d events", len(events))
	}
}

func TestMilestoneService_Calendar_EmptyFeed(t *testing.T) {
	svc, _ := setupTestMilestoneService()

	feed, err := svc.Calendar(context.Background(), "")
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	if !strings.HasPrefix(feed, "BEGIN:VCALENDAR") {
		t.Errorf("expected a calendar envelope, got %q", feed)
	}
	if n := len(parseFeed(t, feed).Events()); n != 0 {
		t.Errorf("expected no events, got %d", n)
	}
}

func TestMilestoneService_Calendar_InvalidStatus(t *testing.T) {
	svc, _ := setupTestMilestoneService()

	_, err := svc.Calendar(context.Background(), "approved")
	var ve *pkgerrors.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected validation error, got %v", err)
	}
}
