package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"StakeScope/internal/engine"
	"StakeScope/internal/session"
)

const (
	portfolioURL = "https://www.enkixyz.com/portfolio"
	boostURL     = "https://www.enkixyz.com/defi"
)

// formatNumber renders en-US grouping with at most four fraction digits, rounded.
func formatNumber(v float64) string {
	return humanize.Commaf(math.Round(v*1e4) / 1e4)
}

// FormatEstimate renders the full calculator view.
func FormatEstimate(v engine.View) string {
	var b strings.Builder
	s := v.Session

	b.WriteString("🧮 <b>ENKI Staking Rewards Calculator</b>\n\n")

	if s.Identity != "" {
		b.WriteString(fmt.Sprintf("Address: <code>%s</code>\n", html.EscapeString(s.Identity)))
	}
	if s.Phase == session.PhaseFetching {
		b.WriteString("⏳ Fetching staking points...\n")
	}
	if s.Error != "" {
		b.WriteString(fmt.Sprintf("❌ %s\n", html.EscapeString(s.Error)))
	}
	if s.Info != "" {
		b.WriteString(fmt.Sprintf("ℹ️ %s\n", html.EscapeString(s.Info)))
	}

	b.WriteString(fmt.Sprintf("\nTotal Staking Points: %s ~\n", formatNumber(v.GlobalPoints)))
	b.WriteString(fmt.Sprintf("Total ENKI Airdrop: %s ENKI\n", humanize.Commaf(v.Constants.TotalRewardPool)))
	if v.Price != nil {
		b.WriteString(fmt.Sprintf("Current ENKI Price: $%.4f USD\n", v.Price.USD))
	}

	if r := v.Reward; r != nil {
		b.WriteString(fmt.Sprintf("\n🎯 Estimated Reward: <b>%s ENKI</b>", formatNumber(r.Reward)))
		if r.Boost > 1 {
			b.WriteString(fmt.Sprintf(" (%dx BOOST)", r.Boost))
		}
		b.WriteString("\n")
		if r.HasPrice {
			b.WriteString(fmt.Sprintf("Estimated Value: <b>$%s USD</b>\n", formatNumber(r.ValueUSD)))
		}
		b.WriteString(fmt.Sprintf("Estimated Value at ATH: <b>$%s USD</b>\n", formatNumber(r.PeakValueUSD)))
		b.WriteString(fmt.Sprintf("Boost: /boost 2 · /boost 5 · /boost 10 (<a href=\"%s\">How to boost?</a>)\n", boostURL))
	}

	if s.ShowCalculations {
		b.WriteString("\n")
		b.WriteString(FormatCalculations(v))
	}
	if s.ShowGuide {
		b.WriteString("\n")
		b.WriteString(FormatGuide())
	}
	return b.String()
}

// FormatCalculations renders the unboosted calculation breakdown.
func FormatCalculations(v engine.View) string {
	var b strings.Builder
	b.WriteString("📐 <b>Calculation Breakdown</b>\n")

	est := v.Session.Estimate
	r := v.Reward
	if est == nil || r == nil {
		b.WriteString("No estimate yet. Send /points &lt;address&gt; first.\n")
		return b.String()
	}

	pool := humanize.Commaf(v.Constants.TotalRewardPool)
	b.WriteString(fmt.Sprintf("Your Staking Points: %s\n", formatNumber(est.IdentityPoints)))
	b.WriteString(fmt.Sprintf("Total Staking Points: %s\n", formatNumber(est.GlobalPoints)))
	b.WriteString(fmt.Sprintf("Total ENKI Airdrop: %s ENKI\n", pool))
	b.WriteString("Formula: (Your Staking Points / Total Staking Points) × Total ENKI Airdrop\n")
	b.WriteString(fmt.Sprintf("Calculation: (%s / %s) × %s = %s ENKI\n",
		formatNumber(est.IdentityPoints), formatNumber(est.GlobalPoints), pool, formatNumber(r.BaseReward)))
	if r.HasPrice {
		b.WriteString(fmt.Sprintf("USD Value: %s ENKI × $%.4f = $%s USD\n",
			formatNumber(r.BaseReward), r.PriceUSD, formatNumber(r.BaseValueUSD)))
	}
	b.WriteString(fmt.Sprintf("USD Value at ATH: %s ENKI × $%.2f = $%s USD\n",
		formatNumber(r.BaseReward), r.PeakPriceUSD, formatNumber(r.BasePeakValueUSD)))
	if r.Boost > 1 {
		b.WriteString(fmt.Sprintf("Boosted Reward: %s ENKI × %dx = %s ENKI\n",
			formatNumber(r.BaseReward), r.Boost, formatNumber(r.Reward)))
	}
	return b.String()
}

// FormatGuide explains where users find their staking points.
func FormatGuide() string {
	var b strings.Builder
	b.WriteString("❓ <b>How to find your staking points:</b>\n")
	b.WriteString(fmt.Sprintf("1. Go to %s\n", portfolioURL))
	b.WriteString("2. Connect your MetisL2 wallet\n")
	b.WriteString("3. Find your staking points under \"Staking Rewards\"\n")
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "⚠️ Community tool, not affiliated with ENKI. All figures are estimates.\n\n" +
		"Commands:\n" +
		"• /points &lt;address&gt; (or just send the address)\n" +
		"• /boost 2|5|10\n" +
		"• /calc toggle calculation breakdown\n" +
		"• /guide toggle how to find your points\n" +
		"• /status show the current estimate"
}
