package upstream

import (
	"strconv"
	"strings"
)

// Parameterized query template documents. These are treated as opaque: the
// client only substitutes the {{teamNumber}}, {{EVENT_CODE}} and {{season}}
// placeholders and, for bulk requests, aliases N copies into one document.

const teamQueryTemplate = `teamByNumber(number: {{teamNumber}}) {
	number
	name
	events(season: {{season}}) {
		eventCode
	}
	matches(season: {{season}}) {
		eventCode
		matchId
		match {
			hasBeenPlayed
			actualStartTime
			scores {
				red {
					totalPoints
					autoPark1
					autoPark2
					autoSampleLow
					autoSampleHigh
					autoSpecimenLow
					autoSpecimenHigh
					dcSampleNet
					dcSampleLow
					dcSampleHigh
					dcSpecimenLow
					dcSpecimenHigh
					dcPark1
					dcPark2
				}
				blue {
					totalPoints
					autoPark1
					autoPark2
					autoSampleLow
					autoSampleHigh
					autoSpecimenLow
					autoSpecimenHigh
					dcSampleNet
					dcSampleLow
					dcSampleHigh
					dcSpecimenLow
					dcSpecimenHigh
					dcPark1
					dcPark2
				}
			}
		}
	}
}`

const eventQueryTemplate = `eventByCode(code: "{{EVENT_CODE}}", season: {{season}}) {
	code
	name
	type
	start
	end
	matches {
		id
		actualStartTime
		hasBeenPlayed
		teams {
			teamNumber
			alliance
		}
	}
	teams {
		teamNumber
	}
}`

func (c *Client) teamQueryBody(number string) string {
	q := strings.ReplaceAll(teamQueryTemplate, "{{teamNumber}}", number)
	return strings.ReplaceAll(q, "{{season}}", itoa(c.season))
}

func (c *Client) eventQueryBody(code string) string {
	q := strings.ReplaceAll(eventQueryTemplate, "{{EVENT_CODE}}", code)
	return strings.ReplaceAll(q, "{{season}}", itoa(c.season))
}

// buildTeamQuery wraps a single team sub-query into a document.
func (c *Client) buildTeamQuery(number string) string {
	return "{\n" + c.teamQueryBody(number) + "\n}"
}

// buildTeamBatchQuery aliases one sub-query per team number, aliased by the
// team number, into a single document.
func (c *Client) buildTeamBatchQuery(numbers []string) string {
	var b strings.Builder
	b.WriteString("{\n")
	for _, n := range numbers {
		b.WriteString("\tteam")
		b.WriteString(n)
		b.WriteString(": ")
		b.WriteString(c.teamQueryBody(n))
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// buildEventQuery wraps a single event sub-query into a document.
func (c *Client) buildEventQuery(code string) string {
	return "{\n" + c.eventQueryBody(code) + "\n}"
}

// buildEventBatchQuery aliases one sub-query per event code.
func (c *Client) buildEventBatchQuery(codes []string) string {
	var b strings.Builder
	b.WriteString("{\n")
	for _, code := range codes {
		b.WriteString("\t")
		b.WriteString(code)
		b.WriteString(": ")
		b.WriteString(c.eventQueryBody(code))
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

func itoa(n int) string { return strconv.Itoa(n) }
