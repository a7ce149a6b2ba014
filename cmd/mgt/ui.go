package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"magnate/internal/econ"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

type catalogPayload struct {
	Templates []struct {
		ID            int64              `json:"id"`
		Name          string             `json:"name"`
		Icon          string             `json:"icon"`
		IncomePerHour float64            `json:"income_per_hour"`
		Price         float64            `json:"price"`
		UpgradeCost   float64            `json:"upgrade_cost"`
		BaseRisk      int32              `json:"base_risk"`
		BaseWorkers   int32              `json:"base_workers"`
		CanGoDark     bool               `json:"can_go_dark"`
		Projects      []econ.ProjectSpec `json:"projects"`
	} `json:"templates"`
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func promptInt64(label string, min int64) (int64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			printWarn("Enter a whole number.")
			continue
		}
		if v < min {
			printWarn(fmt.Sprintf("Value must be >= %d", min))
			continue
		}
		return v, nil
	}
}

func renderState(state econ.StateView) {
	accent.Println("\n== EMPIRE ==")
	fmt.Printf("Balance:     %s coins\n", formatMicros(state.Player.BalanceMicros))
	if state.Player.CryptoBalanceMicros != 0 {
		fmt.Printf("Crypto:      %s coins\n", formatMicros(state.Player.CryptoBalanceMicros))
	}
	fmt.Printf("Reputation:  %d\n", state.Player.Reputation)
	fmt.Printf("Risk Level:  %d\n", state.Player.RiskLevel)
	fmt.Printf("Innovation:  %d pts\n", state.Player.InnovationPoints)
	if state.Event != nil {
		warn.Printf("Event:       %s (demand x%.2f, until %s)\n",
			state.Event.Name, state.Event.DemandMult, state.Event.ExpiresAt.Local().Format("15:04:05"))
	}

	fmt.Println()
	accent.Println("Businesses")
	if len(state.Businesses) == 0 {
		printInfo("No businesses yet. Run `mgt catalog` to shop.")
	} else {
		fmt.Printf("%-4s %-20s %-6s %5s %12s %8s %5s %5s %-24s\n", "ID", "NAME", "SIDE", "LVL", "INCOME/H", "WORKERS", "RISK", "LOAD", "PROJECT")
		for _, b := range state.Businesses {
			project := "-"
			if b.Project != nil {
				project = fmt.Sprintf("%s %.0f%%", truncate(b.Project.Name, 18), b.Project.Progress)
			}
			side := string(b.Category)
			line := fmt.Sprintf("%-4d %-20s %-6s %5d %12s %8d %5d %5d %-24s",
				b.TemplateID,
				truncate(b.Name, 20),
				side,
				b.Level,
				formatMicros(b.IncomePerHourMicros),
				b.Workers,
				b.Risk,
				b.Workload,
				project,
			)
			if b.Category == econ.CategoryDark {
				danger.Println(line)
			} else {
				fmt.Println(line)
			}
		}
	}

	if len(state.Synergies) > 0 {
		fmt.Println()
		accent.Println("Active Synergies")
		for _, name := range state.Synergies {
			fmt.Printf("  %s\n", name)
		}
	}
	fmt.Println()
}

func renderBusiness(b econ.BusinessView) {
	accent.Printf("\n== %s (#%d) ==\n", b.Name, b.TemplateID)
	fmt.Printf("Side:        %s\n", b.Category)
	fmt.Printf("Level:       %d\n", b.Level)
	fmt.Printf("Income/h:    %s coins\n", formatMicros(b.IncomePerHourMicros))
	fmt.Printf("Workers:     %d\n", b.Workers)
	fmt.Printf("Risk:        %d\n", b.Risk)
	fmt.Printf("Workload:    %d\n", b.Workload)
	fmt.Printf("Tracks:      prod=%d qual=%d auto=%d innov=%d sec=%d\n",
		b.UpgradeLevels["productivity"],
		b.UpgradeLevels["quality"],
		b.UpgradeLevels["automation"],
		b.UpgradeLevels["innovation"],
		b.UpgradeLevels["security"],
	)
	if len(b.Features) > 0 {
		fmt.Printf("Features:    %s\n", strings.Join(b.Features, ", "))
	}
	if b.Project != nil {
		fmt.Printf("Project:     %s (%.1f%%, reward x%.2f)\n", b.Project.Name, b.Project.Progress, b.Project.RewardMultiplier)
	}
	fmt.Println()
}

func renderCatalog(raw map[string]any) error {
	payload, err := decodeInto[catalogPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== CATALOG ==")
	fmt.Printf("%-4s %-20s %12s %12s %12s %5s %8s %-5s\n", "ID", "NAME", "PRICE", "INCOME/H", "UPGRADE", "RISK", "WORKERS", "DARK")
	for _, t := range payload.Templates {
		dark := "-"
		if t.CanGoDark {
			dark = "yes"
		}
		fmt.Printf("%-4d %-20s %12s %12s %12s %5d %8d %-5s\n",
			t.ID,
			truncate(t.Name, 20),
			formatCoins(t.Price),
			formatCoins(t.IncomePerHour),
			formatCoins(t.UpgradeCost),
			t.BaseRisk,
			t.BaseWorkers,
			dark,
		)
		for _, p := range t.Projects {
			fmt.Printf("     - %s: %s coins, %.0fh, reward x%.2f\n",
				p.Name, formatMicros(p.CostMicros), p.DurationHours, p.RewardMultiplier)
		}
	}
	fmt.Println()
	return nil
}

func decodeInto[T any](in any) (T, error) {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

func formatMicros(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := v / econ.MicrosPerCoin
	frac := (v % econ.MicrosPerCoin) / 10_000
	return fmt.Sprintf("%s%s.%02d", sign, comma(whole), frac)
}

func formatCoins(v float64) string {
	return formatMicros(econ.CoinsToMicros(v))
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
