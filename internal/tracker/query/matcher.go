package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cuongbtq/job-tracker/internal/tracker/activity"
	"github.com/cuongbtq/job-tracker/internal/tracker/job"
	"github.com/cuongbtq/job-tracker/internal/tracker/report"
)

const (
	// MaxRecentActivity is how many log lines a company summary lists
	MaxRecentActivity = 5
	// MaxRecentCompanies is how many jobs the overview lists
	MaxRecentCompanies = 5
	// MaxActiveCompanies is how many companies the overview ranks
	MaxActiveCompanies = 3

	shortDateLayout = "Jan 2, 2006"
	longDateLayout  = "Monday, January 2, 2006 at 3:04 PM"
)

// Suggestions are the example queries offered when nothing matched
var Suggestions = []string{
	"Give me an overview of my job search",
	"Show me a summary",
	"Tell me about Google",
	"What's the status of Microsoft?",
}

// Matcher turns a free-text query into a report over a jobs/logs snapshot
type Matcher struct {
	// Location is used to display log dates. Nil means time.Local.
	Location *time.Location
}

// NewMatcher creates a Matcher that renders dates in loc
func NewMatcher(loc *time.Location) *Matcher {
	return &Matcher{Location: loc}
}

// Match resolves the query. Inputs are never modified.
func (m *Matcher) Match(query string, jobs []job.Record, logs []activity.Entry) report.Document {
	q := strings.ToLower(strings.TrimSpace(query))

	if j, ok := findCompany(q, jobs); ok {
		return m.companySummary(job.Normalize(j), logs)
	}

	if strings.Contains(q, "summary") || strings.Contains(q, "overview") {
		return m.overview(job.NormalizeAll(jobs), logs)
	}

	return noMatch(query)
}

// findCompany returns the first job whose company contains q or is contained in q.
// Jobs without a company never match.
func findCompany(q string, jobs []job.Record) (job.Record, bool) {
	if q == "" {
		return job.Record{}, false
	}
	for _, j := range jobs {
		company := strings.ToLower(j.Company)
		if company == "" {
			continue
		}
		if strings.Contains(company, q) || strings.Contains(q, company) {
			return j, true
		}
	}
	return job.Record{}, false
}

func (m *Matcher) location() *time.Location {
	if m.Location == nil {
		return time.Local
	}
	return m.Location
}

func (m *Matcher) companySummary(j job.Record, logs []activity.Entry) report.Document {
	b := report.NewBuilder(report.OutcomeCompany).Company(j.Company)

	b.Heading("Summary for " + j.Company)
	b.Bold("Position", j.Position)
	b.Bold("Recruiter", j.RecruiterName)
	if j.HiringManager != "" {
		b.Bold("Hiring Manager", j.HiringManager)
	}

	b.SubHeading("Current Status")
	for _, f := range job.StageFields {
		b.Bold(f.Label, j.Stage(f))
	}

	if j.Notes != "" {
		b.SubHeading("Notes")
		b.Paragraph(j.Notes)
	}

	b.SubHeading("Recent Activity")
	related := activity.SortNewestFirst(activity.ForCompany(logs, j.Company))
	if len(related) == 0 {
		b.Paragraph("No updates recorded yet for this application.")
		return b.Build()
	}

	loc := m.location()
	for i, e := range related {
		if i == MaxRecentActivity {
			break
		}
		b.Paragraph(fmt.Sprintf("%d. %s - %s", i+1, e.Timestamp.In(loc).Format(shortDateLayout), e.Details))
	}
	if len(related) > MaxRecentActivity {
		b.Paragraph(fmt.Sprintf("...and %d more updates", len(related)-MaxRecentActivity))
	}

	latest := related[0]
	b.SubHeading("Last Updated")
	b.Bold("Date", latest.Timestamp.In(loc).Format(longDateLayout))
	b.Bold("By", latest.Username)
	b.Bold("Action", latest.Details)

	return b.Build()
}

func (m *Matcher) overview(jobs []job.Record, logs []activity.Entry) report.Document {
	b := report.NewBuilder(report.OutcomeOverview)

	b.Heading("Overall Job Search Summary")
	b.Bold("Total Applications", strconv.Itoa(len(jobs)))
	b.Bold("Total Activities", strconv.Itoa(len(logs)))

	var inProgress, completed, rejected, offers int
	for _, j := range jobs {
		if j.RecruiterScreen == job.ScreenInProgress || j.TechnicalScreen == job.ScreenInProgress {
			inProgress++
		}
		if j.RecruiterScreen == job.ScreenCompleted && j.TechnicalScreen == job.ScreenCompleted {
			completed++
		}
		if j.Decision == job.DecisionRejected {
			rejected++
		}
		if j.Decision.IsOffer() {
			offers++
		}
	}

	b.SubHeading("Status Breakdown")
	b.Bold("In Progress", strconv.Itoa(inProgress))
	b.Bold("Completed Interviews", strconv.Itoa(completed))
	b.Bold("Rejected", strconv.Itoa(rejected))
	b.Bold("Offers", strconv.Itoa(offers))

	b.SubHeading("Recent Companies")
	if len(jobs) == 0 {
		b.Paragraph("No applications yet.")
	}
	start := len(jobs) - MaxRecentCompanies
	if start < 0 {
		start = 0
	}
	for i := len(jobs) - 1; i >= start; i-- {
		j := jobs[i]
		b.Paragraph(fmt.Sprintf("%s - %s (%s)", j.Company, j.Position, j.Decision))
	}

	b.SubHeading("Most Active Companies")
	ranked := rankCompanies(logs)
	if len(ranked) == 0 {
		b.Paragraph("No activity recorded yet.")
	}
	for i, c := range ranked {
		if i == MaxActiveCompanies {
			break
		}
		b.Paragraph(fmt.Sprintf("%d. %s: %d activities", i+1, c.name, c.count))
	}

	return b.Build()
}

type companyCount struct {
	name  string
	count int
}

// rankCompanies counts logs per company, descending, ties in first-seen order
func rankCompanies(logs []activity.Entry) []companyCount {
	index := make(map[string]int)
	var counts []companyCount
	for _, e := range logs {
		if e.Company == "" {
			continue
		}
		i, ok := index[e.Company]
		if !ok {
			i = len(counts)
			index[e.Company] = i
			counts = append(counts, companyCount{name: e.Company})
		}
		counts[i].count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})
	return counts
}

func noMatch(query string) report.Document {
	b := report.NewBuilder(report.OutcomeNoMatch)

	b.Heading("No Match Found")
	b.Paragraph(`I couldn't find information about "` + query + `".`)
	b.SubHeading("Try asking")
	for _, s := range Suggestions {
		b.Paragraph("- " + s)
	}

	return b.Build()
}
