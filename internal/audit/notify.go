package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kdd-community/website-backend/internal/diff"
	"github.com/kdd-community/website-backend/internal/models"
	"github.com/kdd-community/website-backend/pkg/webhook"
)

// maxDetailBytes caps the webhook details block (Discord field limit)
const maxDetailBytes = 1000

const footerText = "KDD Website Activity Log"

type kindConfig struct {
	label string
	color int
}

// kindConfigs keys every log-event kind to its webhook label and color. The
// enumeration is fixed; an unknown kind falls back to its raw name.
var kindConfigs = map[models.LogEvent]kindConfig{
	models.LogCreateEvent:      {label: "Create Event", color: 0x00ff00},
	models.LogUpdateEvent:      {label: "Update Event", color: 0x0099ff},
	models.LogDeleteEvent:      {label: "Delete Event", color: 0xff0000},
	models.LogMoveEventPhoto:   {label: "Move Photo", color: 0xffaa00},
	models.LogDeleteEventPhoto: {label: "Delete Photo", color: 0xff5500},
	models.LogAddEventPhoto:    {label: "Add Photo", color: 0x00ff00},
	models.LogAdminLogin:       {label: "Admin Login", color: 0x00ff00},
	models.LogAdminLogout:      {label: "Admin Logout", color: 0xffaa00},
}

// BuildEmbed formats one log record as a webhook embed. Diff-shaped entries
// whose normalized from/to serialize identically are dropped; non-diff
// metadata passes through verbatim.
func BuildEmbed(kind models.LogEvent, info models.UserInfo, data map[string]interface{}, at time.Time) webhook.Embed {
	cfg, ok := kindConfigs[kind]
	if !ok {
		cfg = kindConfig{label: string(kind), color: 0x888888}
	}

	user := info.DisplayName
	if user == "" {
		user = info.Email
	}
	if user == "" {
		user = info.UID
	}
	email := info.Email
	if email == "" {
		email = "N/A"
	}

	return webhook.Embed{
		Title: cfg.label,
		Color: cfg.color,
		Fields: []webhook.Field{
			{Name: "User", Value: user, Inline: true},
			{Name: "Email", Value: email, Inline: true},
			{Name: "Event", Value: string(kind), Inline: true},
			{Name: "Details", Value: fmt.Sprintf("```json\n%s\n```", detailsString(data)), Inline: false},
		},
		Timestamp: at.Format(time.RFC3339),
		Footer:    webhook.Footer{Text: footerText},
	}
}

// detailsString renders the payload for display. The result is deterministic
// for a given payload: JSON object keys marshal in sorted order.
func detailsString(data map[string]interface{}) string {
	if len(data) == 0 {
		return "No additional data"
	}

	changed := FilterChanged(data)
	if len(changed) > 0 {
		return truncate(marshalDetails(changed))
	}
	return "No changes detected"
}

// FilterChanged re-checks every diff-shaped entry and keeps only those whose
// normalized from and to values serialize differently. Non-diff metadata is
// kept verbatim (normalized for serialization only).
func FilterChanged(data map[string]interface{}) map[string]interface{} {
	filtered := map[string]interface{}{}
	for key, value := range data {
		change, ok := asChange(value)
		if !ok {
			filtered[key] = diff.Normalize(value)
			continue
		}
		from := diff.Normalize(change.From)
		to := diff.Normalize(change.To)
		fromJSON, _ := json.Marshal(from)
		toJSON, _ := json.Marshal(to)
		if string(fromJSON) != string(toJSON) {
			filtered[key] = map[string]interface{}{"from": from, "to": to}
		}
	}
	return filtered
}

// asChange recognizes a diff entry: a Change value, or a two-key map holding
// exactly "from" and "to".
func asChange(value interface{}) (diff.Change, bool) {
	switch v := value.(type) {
	case diff.Change:
		return v, true
	case map[string]interface{}:
		if len(v) != 2 {
			return diff.Change{}, false
		}
		from, hasFrom := v["from"]
		to, hasTo := v["to"]
		if !hasFrom || !hasTo {
			return diff.Change{}, false
		}
		return diff.Change{From: from, To: to}, true
	}
	return diff.Change{}, false
}

func marshalDetails(data map[string]interface{}) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(b)
}

func truncate(s string) string {
	if len(s) <= maxDetailBytes {
		return s
	}
	return s[:maxDetailBytes] + "\n... (truncated)"
}
