package query

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/job-tracker/internal/tracker/activity"
	"github.com/cuongbtq/job-tracker/internal/tracker/job"
	"github.com/cuongbtq/job-tracker/internal/tracker/report"
)

var base = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testJobs() []job.Record {
	return []job.Record{
		{
			ID:              "1",
			Company:         "Google",
			Position:        "Software Engineer",
			RecruiterName:   "Alice",
			HiringManager:   "Bob",
			RecruiterScreen: job.ScreenCompleted,
			TechnicalScreen: job.ScreenInProgress,
			Notes:           "Referral from a friend",
		},
		{
			ID:            "2",
			Company:       "Microsoft",
			Position:      "SRE",
			RecruiterName: "Carol",
		},
	}
}

// googleLogs returns seven Google entries out of chronological order
func googleLogs() []activity.Entry {
	order := []int{3, 0, 6, 1, 5, 2, 4}
	var logs []activity.Entry
	for _, day := range order {
		logs = append(logs, activity.Entry{
			ID:        int64(day + 1),
			Timestamp: base.Add(time.Duration(day) * 24 * time.Hour),
			Action:    activity.ActionUpdated,
			Company:   "google",
			Details:   fmt.Sprintf("update %d", day),
			Username:  fmt.Sprintf("user%d", day),
		})
	}
	return logs
}

func paragraphs(lines []report.Line) []string {
	var out []string
	for _, l := range lines {
		if l.Kind == report.Paragraph {
			out = append(out, l.Text)
		}
	}
	return out
}

func TestMatcher_CompanyMatch(t *testing.T) {
	m := NewMatcher(time.UTC)

	tests := []struct {
		name    string
		query   string
		company string
	}{
		{name: "exact name", query: "Google", company: "Google"},
		{name: "different case", query: "gOOgLE", company: "Google"},
		{name: "substring of company", query: "micro", company: "Microsoft"},
		{name: "company inside query", query: "What's the status of Microsoft?", company: "Microsoft"},
		{name: "surrounding whitespace", query: "  google  ", company: "Google"},
		{name: "company wins over overview keyword", query: "google summary", company: "Google"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := m.Match(tt.query, testJobs(), nil)

			assert.Equal(t, report.OutcomeCompany, doc.Outcome)
			assert.Equal(t, tt.company, doc.Company)
			require.NotEmpty(t, doc.Lines)
			assert.Equal(t, report.Heading, doc.Lines[0].Kind)
			assert.Equal(t, "Summary for "+tt.company, doc.Lines[0].Text)
		})
	}
}

func TestMatcher_CompanyMatch_FirstInArrayOrderWins(t *testing.T) {
	jobs := []job.Record{
		{Company: "MetaCorp", Position: "First"},
		{Company: "Meta", Position: "Second"},
	}

	doc := NewMatcher(time.UTC).Match("meta", jobs, nil)

	assert.Equal(t, "MetaCorp", doc.Company)
	line, ok := doc.Find("Position")
	require.True(t, ok)
	assert.Equal(t, "First", line.Text)
}

func TestMatcher_CompanyMatch_SkipsEmptyCompany(t *testing.T) {
	jobs := []job.Record{{Company: ""}, {Company: "Stripe"}}

	doc := NewMatcher(time.UTC).Match("anything at all", jobs, nil)
	assert.Equal(t, report.OutcomeNoMatch, doc.Outcome)

	doc = NewMatcher(time.UTC).Match("stripe", jobs, nil)
	assert.Equal(t, "Stripe", doc.Company)
}

func TestMatcher_CompanyMatch_ComparesStoredCompanyAsIs(t *testing.T) {
	jobs := []job.Record{{Company: " Acme"}}

	doc := NewMatcher(time.UTC).Match("acme", jobs, nil)
	assert.Equal(t, " Acme", doc.Company)

	doc = NewMatcher(time.UTC).Match("acme inc", jobs, nil)
	assert.Equal(t, report.OutcomeNoMatch, doc.Outcome, "surrounding spaces are part of the company")
}

func TestMatcher_CompanyReport_Content(t *testing.T) {
	doc := NewMatcher(time.UTC).Match("google", testJobs(), googleLogs())

	want := []report.Line{
		{Kind: report.Heading, Text: "Summary for Google"},
		{Kind: report.Bold, Label: "Position", Text: "Software Engineer"},
		{Kind: report.Bold, Label: "Recruiter", Text: "Alice"},
		{Kind: report.Bold, Label: "Hiring Manager", Text: "Bob"},
		{Kind: report.SubHeading, Text: "Current Status"},
		{Kind: report.Bold, Label: "Recruiter Screen", Text: "Completed"},
		{Kind: report.Bold, Label: "Technical Screen", Text: "In Progress"},
		{Kind: report.Bold, Label: "Onsite Round 1", Text: "Not Started"},
		{Kind: report.Bold, Label: "Onsite Round 2", Text: "Not Started"},
		{Kind: report.Bold, Label: "Onsite Round 3", Text: "Not Started"},
		{Kind: report.Bold, Label: "Onsite Round 4", Text: "Not Started"},
		{Kind: report.Bold, Label: "Decision", Text: "Pending"},
		{Kind: report.SubHeading, Text: "Notes"},
		{Kind: report.Paragraph, Text: "Referral from a friend"},
		{Kind: report.SubHeading, Text: "Recent Activity"},
		{Kind: report.Paragraph, Text: "1. Mar 7, 2026 - update 6"},
		{Kind: report.Paragraph, Text: "2. Mar 6, 2026 - update 5"},
		{Kind: report.Paragraph, Text: "3. Mar 5, 2026 - update 4"},
		{Kind: report.Paragraph, Text: "4. Mar 4, 2026 - update 3"},
		{Kind: report.Paragraph, Text: "5. Mar 3, 2026 - update 2"},
		{Kind: report.Paragraph, Text: "...and 2 more updates"},
		{Kind: report.SubHeading, Text: "Last Updated"},
		{Kind: report.Bold, Label: "Date", Text: "Saturday, March 7, 2026 at 10:00 AM"},
		{Kind: report.Bold, Label: "By", Text: "user6"},
		{Kind: report.Bold, Label: "Action", Text: "update 6"},
	}

	assert.Equal(t, want, doc.Lines)
}

func TestMatcher_CompanyReport_OptionalBlocks(t *testing.T) {
	doc := NewMatcher(time.UTC).Match("microsoft", testJobs(), googleLogs())

	_, ok := doc.Find("Hiring Manager")
	assert.False(t, ok, "hiring manager line must be omitted when empty")
	assert.Empty(t, doc.Section("Notes"))

	activityLines := doc.Section("Recent Activity")
	require.Len(t, activityLines, 1)
	assert.Equal(t, "No updates recorded yet for this application.", activityLines[0].Text)
	assert.Contains(t, doc.Text(), "No updates recorded yet")
	assert.NotContains(t, doc.Text(), "Last Updated")
}

func TestMatcher_CompanyReport_FewLogsHasNoMoreLine(t *testing.T) {
	logs := googleLogs()[:3]

	doc := NewMatcher(time.UTC).Match("google", testJobs(), logs)

	lines := paragraphs(doc.Section("Recent Activity"))
	assert.Len(t, lines, 3)
	assert.NotContains(t, doc.Text(), "more updates")
}

func TestMatcher_CompanyReport_ExactlyFiveLogs(t *testing.T) {
	logs := activity.SortNewestFirst(googleLogs())[:5]

	doc := NewMatcher(time.UTC).Match("google", testJobs(), logs)

	assert.Len(t, paragraphs(doc.Section("Recent Activity")), 5)
	assert.NotContains(t, doc.Text(), "more updates")
}

func TestMatcher_Overview(t *testing.T) {
	jobs := []job.Record{
		{Company: "Alpha", Position: "P1", RecruiterScreen: job.ScreenInProgress},
		{Company: "Beta", Position: "P2", RecruiterScreen: job.ScreenCompleted, TechnicalScreen: job.ScreenCompleted, Decision: job.DecisionOfferExtended},
		{Company: "Gamma", Position: "P3", RecruiterScreen: job.ScreenCompleted, TechnicalScreen: job.ScreenInProgress, Decision: job.DecisionRejected},
		{Company: "Delta", Position: "P4", RecruiterScreen: job.ScreenCompleted, TechnicalScreen: job.ScreenCompleted, Decision: job.DecisionAccepted},
		{Company: "Epsilon", Position: "P5"},
		{Company: "Zeta", Position: "P6", Decision: job.DecisionDeclined},
	}

	var logs []activity.Entry
	for _, c := range []string{"Alpha", "Beta", "Gamma", "Beta", "Gamma", "Beta", "Gamma", "Delta", "Delta", ""} {
		logs = append(logs, activity.Entry{Company: c, Timestamp: base})
	}

	doc := NewMatcher(time.UTC).Match("Give me an OVERVIEW", jobs, logs)

	assert.Equal(t, report.OutcomeOverview, doc.Outcome)
	assert.Equal(t, "Overall Job Search Summary", doc.Lines[0].Text)

	text := doc.Text()
	assert.Contains(t, text, "Total Applications: 6")
	assert.Contains(t, text, "Total Activities: 10")

	breakdown := doc.Section("Status Breakdown")
	assert.Equal(t, []report.Line{
		{Kind: report.Bold, Label: "In Progress", Text: "2"},
		{Kind: report.Bold, Label: "Completed Interviews", Text: "2"},
		{Kind: report.Bold, Label: "Rejected", Text: "1"},
		{Kind: report.Bold, Label: "Offers", Text: "2"},
	}, breakdown)

	assert.Equal(t, []string{
		"Zeta - P6 (Declined)",
		"Epsilon - P5 (Pending)",
		"Delta - P4 (Accepted)",
		"Gamma - P3 (Rejected)",
		"Beta - P2 (Offer Extended)",
	}, paragraphs(doc.Section("Recent Companies")))

	assert.Equal(t, []string{
		"1. Beta: 3 activities",
		"2. Gamma: 3 activities",
		"3. Delta: 2 activities",
	}, paragraphs(doc.Section("Most Active Companies")))
}

func TestMatcher_Overview_Empty(t *testing.T) {
	doc := NewMatcher(time.UTC).Match("summary", nil, nil)

	assert.Equal(t, report.OutcomeOverview, doc.Outcome)
	assert.Contains(t, doc.Text(), "Total Applications: 0")
	assert.Contains(t, doc.Text(), "Total Activities: 0")
	assert.Equal(t, []string{"No applications yet."}, paragraphs(doc.Section("Recent Companies")))
	assert.Equal(t, []string{"No activity recorded yet."}, paragraphs(doc.Section("Most Active Companies")))
}

func TestMatcher_NoMatch(t *testing.T) {
	query := `where is "Initech"?`

	doc := NewMatcher(time.UTC).Match(query, testJobs(), googleLogs())

	assert.Equal(t, report.OutcomeNoMatch, doc.Outcome)
	assert.Contains(t, doc.Text(), `I couldn't find information about "`+query+`".`)

	suggestions := paragraphs(doc.Section("Try asking"))
	require.Len(t, suggestions, 4)
	for i, s := range Suggestions {
		assert.Equal(t, "- "+s, suggestions[i])
	}
}

func TestMatcher_Idempotent(t *testing.T) {
	m := NewMatcher(time.UTC)
	jobs := testJobs()
	logs := googleLogs()
	jobsBefore := append([]job.Record(nil), jobs...)
	logsBefore := append([]activity.Entry(nil), logs...)

	for _, q := range []string{"google", "overview", "nothing here"} {
		first := m.Match(q, jobs, logs)
		second := m.Match(q, jobs, logs)

		assert.Equal(t, first.Markdown(), second.Markdown(), q)
		assert.Equal(t, first.Text(), second.Text(), q)
	}

	assert.Equal(t, jobsBefore, jobs)
	assert.Equal(t, logsBefore, logs)
}

func TestMatcher_Markdown(t *testing.T) {
	doc := NewMatcher(time.UTC).Match("microsoft", testJobs(), nil)

	md := doc.Markdown()
	assert.True(t, strings.HasPrefix(md, "## Summary for Microsoft\n**Position:** SRE\n"))
	assert.Contains(t, md, "### Current Status")
	assert.Contains(t, md, "**Decision:** Pending")
}
