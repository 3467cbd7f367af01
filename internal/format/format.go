// Package format builds the user-facing chat messages. All phrasing lives
// here so the workflow and transport stay free of copy.
package format

import (
	"fmt"
	"strings"

	"github.com/pkodial/tulubot/internal/engine"
	"github.com/pkodial/tulubot/internal/lexicon"
)

// Translation renders a successful resolution.
func Translation(original string, r engine.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** → **%s**", original, r.Translation)

	switch {
	case r.Tier == engine.TierTaught:
		b.WriteString("\n_Taught by the community._")
	case r.NeedsVerification:
		fmt.Fprintf(&b, "\n_Machine translation (%s) — not yet verified by a native speaker. Reply `/correct %s` if it's wrong._", r.Source, original)
	}
	return b.String()
}

// TeachPrompt renders the teach-me fallback for an unknown word.
func TeachPrompt(original string, suggestions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I don't know the Tulu word for **%s** yet. If you know it, reply with the translation to teach me. Reply `/cancel` to skip.", original)

	if len(suggestions) > 0 {
		quoted := make([]string, len(suggestions))
		for i, s := range suggestions {
			quoted[i] = "**" + s + "**"
		}
		fmt.Fprintf(&b, "\nDid you mean: %s?", strings.Join(quoted, ", "))
	}
	return b.String()
}

// TaughtConfirmation acknowledges a stored contribution.
func TaughtConfirmation(english, tulu string) string {
	return fmt.Sprintf("Got it! **%s** → **%s**. Solmelu (thank you) for teaching me!", english, tulu)
}

// CorrectionConfirmation acknowledges a stored correction.
func CorrectionConfirmation(english, oldTulu, newTulu string) string {
	return fmt.Sprintf("Updated! **%s**: ~~%s~~ → **%s**. Solmelu for the correction!", english, oldTulu, newTulu)
}

// CorrectionPrompt asks for the replacement translation.
func CorrectionPrompt(english, current string) string {
	return fmt.Sprintf("The current translation of **%s** is **%s**. Reply with the correct Tulu word, or `/cancel` to keep it.", english, current)
}

// BaseImmutable explains why base lexicon entries cannot be corrected.
func BaseImmutable(english string) string {
	return fmt.Sprintf("**%s** is part of the verified core dictionary and can't be changed here. If you believe it's wrong, please raise it with the maintainers.", english)
}

// NothingToCorrect is sent when /correct names an unknown word.
func NothingToCorrect(english string) string {
	return fmt.Sprintf("I don't have a translation for **%s**, so there's nothing to correct. Send it as a message and teach me instead!", english)
}

// Cancelled acknowledges an abandoned teaching or correction conversation.
func Cancelled() string {
	return "No problem, cancelled. Ask me anything else!"
}

// NothingToCancel is sent when /cancel arrives without a pending conversation.
func NothingToCancel() string {
	return "Nothing to cancel. You're all set."
}

// TooShort rejects a contribution that cannot be a real word.
func TooShort(text string) string {
	return fmt.Sprintf("**%s** looks too short to be a Tulu word. Please send the full translation, or `/cancel` to skip.", text)
}

// Stats renders the dictionary counters.
func Stats(base, taught, cached int) string {
	return fmt.Sprintf(
		"**Dictionary stats**\nCore words: %d\nCommunity-taught: %d\nMachine-cached: %d",
		base, taught, cached,
	)
}

// Recent renders the latest community contributions.
func Recent(rows []RecentRow) string {
	if len(rows) == 0 {
		return "No community contributions yet. Teach me a word!"
	}
	var b strings.Builder
	b.WriteString("**Recently taught**")
	for _, row := range rows {
		fmt.Fprintf(&b, "\n• **%s** → **%s**", row.English, row.Tulu)
		if row.Contributor != "" {
			fmt.Fprintf(&b, " _(by <@%s>)_", row.Contributor)
		}
	}
	return b.String()
}

// RecentRow is one line of the /recent listing.
type RecentRow struct {
	English     string
	Tulu        string
	Contributor string
}

// Words renders the core-dictionary entries of one category.
func Words(c lexicon.Category, entries []lexicon.Entry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No core words in the **%s** category yet.", c)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Core words — %s**", c)
	for _, e := range entries {
		fmt.Fprintf(&b, "\n• **%s** → **%s**", e.English, e.Tulu)
	}
	return b.String()
}

// UnknownCategory lists the valid categories after a bad /words argument.
func UnknownCategory(input string, valid []lexicon.Category) string {
	names := make([]string, len(valid))
	for i, c := range valid {
		names[i] = "`" + string(c) + "`"
	}
	return fmt.Sprintf("I don't have a **%s** category. Try one of: %s.", input, strings.Join(names, ", "))
}

// Forgotten acknowledges a deleted taught entry.
func Forgotten(english string) string {
	return fmt.Sprintf("Forgot **%s**. The community can teach it again anytime.", english)
}

// NotTaught is sent when /forget names a word the community never taught.
func NotTaught(english string) string {
	return fmt.Sprintf("**%s** isn't in the community dictionary.", english)
}

// SaveFailed apologises for a storage failure without leaking details.
func SaveFailed() string {
	return "I couldn't save that right now. Please try again in a moment."
}

// UnknownCommand lists the available commands.
func UnknownCommand() string {
	return "I know these commands: `/teach <english> <tulu>`, `/correct <english>`, `/forget <english>`, `/words <category>`, `/recent`, `/stats`, `/cancel`."
}

// CommandUsage explains a malformed command invocation.
func CommandUsage(usage string) string {
	return "Usage: `" + usage + "`"
}
