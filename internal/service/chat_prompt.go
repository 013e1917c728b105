package service

import (
	"fmt"
	"strings"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
)

// chatCommand is an instruction the assistant carries out without the model
type chatCommand string

const (
	commandNone          chatCommand = ""
	commandAddToRoadmap  chatCommand = "add_to_roadmap"
	commandMarkCompleted chatCommand = "mark_completed"
	commandMonthlyFocus  chatCommand = "monthly_focus"
)

var commandPhrases = []struct {
	command chatCommand
	phrases []string
}{
	{commandAddToRoadmap, []string{"add this to my roadmap", "add to roadmap", "add to my roadmap", "add to my plan", "add this to plan"}},
	{commandMarkCompleted, []string{"mark as completed", "mark completed", "mark this as completed", "completed this", "finished this"}},
	{commandMonthlyFocus, []string{"what should i focus on this month", "focus this month", "monthly focus", "what to focus on"}},
}

func detectCommand(query string) chatCommand {
	q := strings.ToLower(query)
	for _, c := range commandPhrases {
		for _, p := range c.phrases {
			if strings.Contains(q, p) {
				return c.command
			}
		}
	}
	return commandNone
}

var categoryKeywords = []struct {
	category esg.Category
	words    []string
}{
	{esg.CategoryEnvironmental, []string{"energy", "environment", "carbon", "waste", "water", "solar", "recycl"}},
	{esg.CategorySocial, []string{"employee", "safety", "training", "welfare", "social", "diversity", "health"}},
}

// inferCategory guesses the pillar a chat action belongs to. Anything that
// is neither environmental nor social is treated as governance.
func inferCategory(text string) esg.Category {
	t := strings.ToLower(text)
	for _, k := range categoryKeywords {
		for _, w := range k.words {
			if strings.Contains(t, w) {
				return k.category
			}
		}
	}
	return esg.CategoryGovernance
}

const maxTitleWords = 5

// actionTitle extracts what the user wants on the roadmap. It looks at the
// words after "implement", then between "add" and "to my roadmap", then at
// the last SOP the assistant produced, and finally falls back to the query.
func actionTitle(query string, history []models.ChatMessage) string {
	words := strings.Fields(query)
	lower := make([]string, len(words))
	for i, w := range words {
		lower[i] = strings.ToLower(w)
	}

	for i, w := range lower {
		if !strings.Contains(w, "implement") {
			continue
		}
		end := i + 1
		for end < len(words) && end-i-1 < maxTitleWords && lower[end] != "and" && lower[end] != "to" {
			end++
		}
		if title := cleanTitle(strings.Join(words[i+1:end], " ")); title != "" {
			return title
		}
	}

	add, target := -1, -1
	for i, w := range lower {
		if add < 0 && w == "add" {
			add = i
		}
		if strings.Contains(w, "roadmap") || strings.Contains(w, "plan") {
			target = i
			break
		}
	}
	// "add <title> to my roadmap": drop the "to" and "my" before the target
	if add >= 0 && target > add {
		end := target
		for end > add+1 && isFiller(lower[end-1]) {
			end--
		}
		if title := cleanTitle(strings.Join(words[add+1:end], " ")); title != "" {
			return title
		}
	}

	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != models.ChatRoleAssistant {
			continue
		}
		if title := sopTitle(history[i].Content); title != "" {
			return title
		}
	}

	q := strings.TrimSpace(query)
	if len(q) > 50 {
		q = q[:50] + "..."
	}
	return "Action from chat: " + q
}

func isFiller(w string) bool {
	switch w {
	case "to", "my", "the", "our", "this", "it":
		return true
	}
	return false
}

func cleanTitle(s string) string {
	s = strings.Trim(s, " .,!?:;\"'")
	if strings.EqualFold(s, "this") || strings.EqualFold(s, "it") {
		return ""
	}
	return s
}

// sopTitle returns the heading of a "[SOP] TITLE - Implementation SOP" block
func sopTitle(content string) string {
	for line := range strings.Lines(content) {
		if !strings.Contains(line, "[SOP]") {
			continue
		}
		title, _, _ := strings.Cut(line, " - ")
		return strings.TrimSpace(strings.ReplaceAll(title, "[SOP]", ""))
	}
	return ""
}

func scoreInsight(c esg.Category, score float64) string {
	phrases := map[esg.Category][3]string{
		esg.CategoryEnvironmental: {"Environmental practices need significant improvement", "Environmental practices show room for enhancement", "Strong environmental performance"},
		esg.CategorySocial:        {"Social responsibility initiatives need development", "Social practices can be strengthened", "Good social responsibility practices"},
		esg.CategoryGovernance:    {"Governance structures need strengthening", "Governance practices can be improved", "Solid governance framework"},
	}[c]
	switch {
	case score < 50:
		return phrases[0]
	case score < esg.Benchmark:
		return phrases[1]
	default:
		return phrases[2]
	}
}

const systemPrompt = `You are an ESG Implementation Assistant for small and medium businesses.

Your role:
- Explain ESG recommendations in simple language
- Generate step-by-step SOPs (Standard Operating Procedures)
- Help the user decide implementation priorities

For SOPs, always include:
1. Objective (why this matters)
2. Steps (numbered, specific actions)
3. Responsible role (who does what)
4. Effort level (time and resources needed)
5. ESG impact (expected score improvement)

Never claim ESG certification and never give legal or regulatory compliance advice.
State that this is indicative guidance. Be practical and end with a concrete next step.
`

// chatContext is everything the model is told about the business
type chatContext struct {
	Profile         *models.BusinessProfile
	Snapshot        esg.Snapshot
	Recommendations []models.Recommendation
	Roadmap         []models.RoadmapItem
	History         []models.ChatMessage
	Query           string
}

func buildPrompt(c chatContext) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)

	sb.WriteString("\nBUSINESS CONTEXT:\n")
	if c.Profile != nil {
		fmt.Fprintf(&sb, "Company: %s\nIndustry: %s\nEmployees: %d\n",
			c.Profile.BusinessName, c.Profile.Industry, c.Profile.EmployeeCount)
	}

	s := c.Snapshot
	sb.WriteString("\nCURRENT ESG PERFORMANCE:\n")
	for _, cat := range []esg.Category{esg.CategoryEnvironmental, esg.CategorySocial, esg.CategoryGovernance} {
		score := s.CategoryScore(cat)
		fmt.Fprintf(&sb, "- %s: %.0f/100 (%s)\n", strings.ToUpper(cat.Name()[:1])+cat.Name()[1:], score, scoreInsight(cat, score))
	}
	fmt.Fprintf(&sb, "- Overall: %.0f/100 (data completeness %.0f%%, confidence %s)\n",
		s.OverallScore, s.DataCompleteness, s.Confidence)

	sb.WriteString("\nTOP RECOMMENDATIONS:\n")
	if len(c.Recommendations) == 0 {
		sb.WriteString("No specific recommendations available\n")
	}
	for _, r := range c.Recommendations[:min(esg.TopCount, len(c.Recommendations))] {
		fmt.Fprintf(&sb, "- %s: %s\n", r.Title, r.Description)
	}

	sb.WriteString("\nCURRENT ROADMAP ACTIONS:\n")
	if len(c.Roadmap) == 0 {
		sb.WriteString("No roadmap actions yet\n")
	}
	for _, item := range c.Roadmap[:min(3, len(c.Roadmap))] {
		fmt.Fprintf(&sb, "- %s: %s (Phase %d)\n", item.Title, item.Description, item.Phase)
	}

	if len(c.History) > 0 {
		sb.WriteString("\nCONVERSATION SO FAR:\n")
		for _, m := range c.History {
			fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
		}
	}

	fmt.Fprintf(&sb, "\nUSER QUERY: %s\n", c.Query)
	return sb.String()
}

const disclaimer = "Note: This is indicative guidance for ESG improvement, not certified compliance advice."

const welfareSOP = `[SOP] EMPLOYEE WELFARE PROGRAM - Implementation SOP

OBJECTIVE: Improve employee satisfaction and safety to boost your Social ESG score

STEPS:
1. Week 1: Survey employees on current satisfaction and needs (HR Manager)
2. Week 2: Research health insurance options and safety training providers (HR Manager)
3. Week 3: Draft employee benefits policy and safety protocols (HR Manager + Management)
4. Week 4: Present proposal to leadership for approval (HR Manager)
5. Month 2: Implement approved benefits and conduct first safety training (All Staff)
6. Month 3: Collect feedback and adjust programs (HR Manager)

RESPONSIBLE ROLE: HR Manager (lead), with Management approval
EFFORT LEVEL: Medium (10-15 hours/month for 3 months)
ESG IMPACT: +8-12 Social score points

NEXT STEPS: Start with the employee survey this week. Would you like me to add this to your roadmap?

` + disclaimer

const governanceSOP = `[SOP] GOVERNANCE FRAMEWORK - Implementation SOP

OBJECTIVE: Establish formal policies to strengthen your Governance ESG score and reduce compliance risks

STEPS:
1. Week 1: Draft a Code of Conduct (1-2 pages, simple language) (Management)
2. Week 2: Create an Anti-Corruption Policy (Management)
3. Week 3: Develop Data Privacy procedures (IT Manager + Management)
4. Week 4: Design a Whistleblower reporting process (HR Manager)
5. Month 2: Train all employees on the new policies (HR Manager)
6. Month 3: Set up an annual policy review (Management)

RESPONSIBLE ROLE: Management (lead), HR Manager (training), IT Manager (data privacy)
EFFORT LEVEL: Low-Medium (5-10 hours/month for 3 months)
ESG IMPACT: +10-15 Governance score points

NEXT STEPS: Start with the Code of Conduct draft. Would you like me to add this to your roadmap?

` + disclaimer

// fallbackResponse answers without the model. How-to questions get an SOP
// template, anything else a summary of the scores.
func fallbackResponse(query string, s esg.Snapshot) string {
	q := strings.ToLower(query)
	if strings.Contains(q, "implement") || strings.Contains(q, "sop") || strings.Contains(q, "how to") {
		switch {
		case strings.Contains(q, "welfare") || strings.Contains(q, "safety"):
			return welfareSOP
		case strings.Contains(q, "governance") || strings.Contains(q, "policy"):
			return governanceSOP
		default:
			return fmt.Sprintf(`For implementing '%s':

Based on your ESG assessment (Overall: %.0f/100), I recommend:

1. Start with your lowest scoring area (%s)
2. Focus on quick wins first (low cost, high impact)
3. Break each action into a step-by-step SOP
4. Assign a clear owner to every step
5. Track progress monthly

Would you like a detailed SOP for a specific recommendation?

%s`, strings.TrimSpace(query), s.OverallScore, esg.LowestCategory(s).Name(), disclaimer)
		}
	}

	return fmt.Sprintf("Based on your ESG assessment, I recommend focusing on your lowest scoring area first. "+
		"Your current scores: Environmental %.0f, Social %.0f, Governance %.0f. "+
		"What specific area would you like help implementing?",
		s.EnvironmentalScore, s.SocialScore, s.GovernanceScore)
}
