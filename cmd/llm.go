package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hitensaxena/pathfinder/internal/curriculum"
	"github.com/hitensaxena/pathfinder/internal/llm"
	"github.com/hitensaxena/pathfinder/internal/quiz"
	"github.com/hitensaxena/pathfinder/internal/store"
)

// genFlow is a prompt pipeline whose model requests are recorded as events
// under its name.
type genFlow struct {
	name  string
	short string
	about string
}

var genFlows = []genFlow{
	{curriculum.OutlineFlowName, "outline", "module outline for a learning goal"},
	{curriculum.DetailFlowName, "detail", "sections of one module"},
	{quiz.FlowName, "quiz", "questions for a module quiz"},
}

// resolveFlow accepts a flow's full name or its short alias. An empty
// string means every flow.
func resolveFlow(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	var known []string
	for _, f := range genFlows {
		if s == f.name || s == f.short {
			return f.name, nil
		}
		known = append(known, f.short)
	}
	return "", fmt.Errorf("unknown flow %q, want one of: %s", s, strings.Join(known, ", "))
}

func flowLabel(purpose string) string {
	for _, f := range genFlows {
		if f.name == purpose {
			return f.short
		}
	}
	if purpose == "" {
		return "-"
	}
	return purpose
}

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the model requests made while generating paths and quizzes",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		failedOnly, _ := cmd.Flags().GetBool("failed")
		flowArg, _ := cmd.Flags().GetString("flow")
		flow, err := resolveFlow(flowArg)
		if err != nil {
			return err
		}

		docs, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer docs.Close()

		opts := store.QueryOpts{Limit: limit, Purpose: flow}
		if failedOnly {
			opts.Limit = 0
		}
		events, err := store.NewEventRepo(docs).QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if failedOnly {
			events = failedEvents(events, limit)
		}

		writeEvents(cmd.OutOrStdout(), events)
		return nil
	},
}

func failedEvents(events []store.LLMEvent, limit int) []store.LLMEvent {
	var out []store.LLMEvent
	for _, e := range events {
		if e.Success {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func writeEvents(w io.Writer, events []store.LLMEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No model requests recorded.")
		return
	}

	fmt.Fprintf(w, "%-19s  %-8s  %-28s  %13s  %7s  %9s  %-4s  %s\n",
		"Time", "Flow", "Model", "Tokens in/out", "Ms", "Cost", "OK", "ID")
	fmt.Fprintln(w, rule(120))
	for _, e := range events {
		ok := okStyle.Render("yes")
		if !e.Success {
			ok = errStyle.Render("no")
		}
		cost := "?"
		if c := llm.LookupCost(e.Model); c != nil {
			cost = formatCost(c.Cost(e.InputTokens, e.OutputTokens))
		}
		fmt.Fprintf(w, "%-19s  %-8s  %-28s  %13s  %7d  %9s  %-4s  %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			flowLabel(e.Purpose),
			truncate(e.Model, 28),
			fmt.Sprintf("%d/%d", e.InputTokens, e.OutputTokens),
			e.LatencyMs,
			cost,
			ok,
			e.ID,
		)
	}
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one model request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer docs.Close()

		e, err := store.NewEventRepo(docs).GetLLMEvent(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %s not found", args[0])
		}
		writeEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

func writeEvent(w io.Writer, e *store.LLMEvent) {
	fmt.Fprintln(w, titleStyle.Render(flowLabel(e.Purpose)+" request "+e.ID))
	fields := [][2]string{
		{"Time", e.Timestamp.Local().Format("2006-01-02 15:04:05")},
		{"Flow", e.Purpose},
		{"Provider", e.Provider},
		{"Model", e.Model},
		{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
		{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
	}
	if e.Success {
		fields = append(fields, [2]string{"Result", okStyle.Render("succeeded")})
	} else {
		fields = append(fields, [2]string{"Result", errStyle.Render("failed: " + e.ErrorMessage)})
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%-10s %s\n", f[0]+":", f[1])
	}

	for _, body := range []struct{ name, text string }{
		{"Request", e.RequestBody},
		{"Response", e.ResponseBody},
	} {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headingStyle.Render(body.name))
		fmt.Fprintln(w, rule(60))
		if body.text == "" {
			fmt.Fprintln(w, dimStyle.Render("(not captured)"))
			continue
		}
		fmt.Fprintln(w, body.text)
	}
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per generation flow and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer docs.Close()

		ctx := cmd.Context()
		events := store.NewEventRepo(docs)
		byFlow, err := events.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byFlow) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No model requests recorded yet.")
			return nil
		}
		byModel, err := events.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		w := cmd.OutOrStdout()
		writeFlowUsage(w, byFlow)
		fmt.Fprintln(w)
		writeModelCost(w, byModel)
		return nil
	},
}

// writeFlowUsage prints one row per generation flow in pipeline order, then
// any other recorded purposes.
func writeFlowUsage(w io.Writer, usage []store.PurposeUsage) {
	byName := make(map[string]store.PurposeUsage, len(usage))
	for _, u := range usage {
		byName[u.Purpose] = u
	}

	rows := make([]store.PurposeUsage, 0, len(usage)+len(genFlows))
	for _, f := range genFlows {
		u := byName[f.name]
		u.Purpose = f.name
		rows = append(rows, u)
		delete(byName, f.name)
	}
	for _, u := range usage {
		if _, ok := byName[u.Purpose]; ok {
			rows = append(rows, u)
		}
	}

	fmt.Fprintln(w, headingStyle.Render("Usage by flow"))
	fmt.Fprintln(w, rule(70))
	fmt.Fprintf(w, "%-10s  %6s  %10s  %10s  %10s  %8s\n", "Flow", "Calls", "Input", "Output", "Total", "Avg ms")
	var calls, in, out int
	for _, u := range rows {
		fmt.Fprintf(w, "%-10s  %6d  %10d  %10d  %10d  %8d\n",
			truncate(flowLabel(u.Purpose), 10), u.Calls, u.InputTokens, u.OutputTokens,
			u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		in += u.InputTokens
		out += u.OutputTokens
	}
	fmt.Fprintln(w, rule(70))
	fmt.Fprintf(w, "%-10s  %6d  %10d  %10d  %10d\n", "TOTAL", calls, in, out, in+out)
}

func writeModelCost(w io.Writer, usage []store.ModelUsage) {
	fmt.Fprintln(w, headingStyle.Render("Estimated cost (USD)"))
	fmt.Fprintln(w, rule(72))
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %9s\n", "Model", "Calls", "Input", "Output", "Cost")

	var total float64
	var unpriced []string
	for _, u := range usage {
		cost := "?"
		if c := llm.LookupCost(u.Model); c != nil {
			usd := c.Cost(u.InputTokens, u.OutputTokens)
			total += usd
			cost = formatCost(usd)
		} else {
			unpriced = append(unpriced, u.Model)
		}
		fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %9s\n",
			truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, cost)
	}
	fmt.Fprintln(w, rule(72))

	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %9s\n", label, "", "", "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("flow", "f", "", "Only show one flow: outline, detail or quiz")
	llmListCmd.Flags().Bool("failed", false, "Only show failed requests")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
