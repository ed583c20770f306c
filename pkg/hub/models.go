package hub

import "time"

// Rule statuses.
const (
	RuleActive   = "active"
	RuleInactive = "inactive"
)

// User is the authenticated account returned by /v1/users/me.
type User struct {
	ID                  string `json:"id"`
	Email               string `json:"email"`
	Name                string `json:"name"`
	IsActive            bool   `json:"is_active"`
	IsEmailVerified     bool   `json:"is_email_verified"`
	OnboardingCompleted bool   `json:"onboarding_completed"`
	Plan                string `json:"plan"`
}

// Rule is an automation rule written in natural language.
type Rule struct {
	ID          string    `json:"rule_id"`
	RawText     string    `json:"raw_text"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	ChatIDs     []string  `json:"w_id"`
	TriggerTime string    `json:"trigger_time,omitempty"`
	Interval    int       `json:"interval,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// RuleInput is the body for creating or replacing a rule. TriggerTime and
// Interval are only sent for scheduled rules.
type RuleInput struct {
	RawText     string   `json:"raw_text"`
	Status      string   `json:"status"`
	ChatIDs     []string `json:"w_id"`
	TriggerTime string   `json:"trigger_time,omitempty"`
	Interval    int      `json:"interval,omitempty"`
}

// Connector is a third-party integration the hub can act on.
type Connector struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	Connected   bool              `json:"connected"`
	Description string            `json:"description,omitempty"`
	CreatedAt   *time.Time        `json:"created_at,omitempty"`
	LastSynced  *time.Time        `json:"last_synced,omitempty"`
	Config      map[string]string `json:"config,omitempty"`
}

// ConnectResponse carries the URL that starts a connector's auth flow.
type ConnectResponse struct {
	URL string `json:"url"`
}

// Group is a WhatsApp group or chat rules can target.
type Group struct {
	ChatID           string `json:"w_id"`
	ChatName         string `json:"chat_name"`
	NumActiveRules   int    `json:"num_active_rules"`
	NumInactiveRules int    `json:"num_inactive_rules"`
}

// GroupsResponse lists WhatsApp groups and direct chats.
type GroupsResponse struct {
	Groups []Group `json:"groups"`
	Chats  []Group `json:"chats"`
}

// Targets returns groups followed by chats, deduplicated by chat id.
func (g GroupsResponse) Targets() []Group {
	seen := make(map[string]struct{}, len(g.Groups)+len(g.Chats))
	out := make([]Group, 0, len(g.Groups)+len(g.Chats))
	for _, list := range [][]Group{g.Groups, g.Chats} {
		for _, item := range list {
			if _, ok := seen[item.ChatID]; ok {
				continue
			}
			seen[item.ChatID] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

// LinkCode is the pairing code shown to the user while linking WhatsApp.
type LinkCode struct {
	Code string `json:"code"`
}
