package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aira-hq/hubclient/pkg/apiclient"
)

const (
	mePath         = "/v1/users/me"
	rulesPath      = "/rules"
	connectorsPath = "/connectors"
	groupsPath     = "/waha/groups"
	wahaLinkPath   = "/waha/connect"
)

// Service exposes the hub endpoints as typed calls. Every response is checked
// against a JSON schema before it is decoded.
type Service struct {
	api *apiclient.Client
}

// NewService wraps api.
func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

// Shared wraps the client stored by apiclient.Initialize.
func Shared() (*Service, error) {
	api, err := apiclient.Instance()
	if err != nil {
		return nil, err
	}
	return NewService(api), nil
}

// Me returns the authenticated user.
func (s *Service) Me(ctx context.Context) (User, error) {
	var u User
	err := s.api.Get(ctx, mePath, &u, userSchema)
	return u, err
}

// ListRules returns every rule of the current user.
func (s *Service) ListRules(ctx context.Context) ([]Rule, error) {
	var rules []Rule
	if err := s.api.Get(ctx, rulesPath, &rules, rulesSchema); err != nil {
		return nil, err
	}
	return rules, nil
}

// GetRule returns one rule.
func (s *Service) GetRule(ctx context.Context, id string) (Rule, error) {
	var r Rule
	p, err := rulePath(id)
	if err != nil {
		return r, err
	}
	err = s.api.Get(ctx, p, &r, ruleSchema)
	return r, err
}

// CreateRule creates a rule. An empty status defaults to active.
func (s *Service) CreateRule(ctx context.Context, in RuleInput) (Rule, error) {
	var r Rule
	in, err := normalizeRuleInput(in)
	if err != nil {
		return r, err
	}
	err = s.api.Post(ctx, rulesPath, in, &r, ruleSchema)
	return r, err
}

// UpdateRule replaces a rule.
func (s *Service) UpdateRule(ctx context.Context, id string, in RuleInput) (Rule, error) {
	var r Rule
	p, err := rulePath(id)
	if err != nil {
		return r, err
	}
	if in, err = normalizeRuleInput(in); err != nil {
		return r, err
	}
	err = s.api.Put(ctx, p, in, &r, ruleSchema)
	return r, err
}

// SetRuleStatus pauses or resumes a rule.
func (s *Service) SetRuleStatus(ctx context.Context, id, status string) (Rule, error) {
	var r Rule
	p, err := rulePath(id)
	if err != nil {
		return r, err
	}
	if status != RuleActive && status != RuleInactive {
		return r, fmt.Errorf("invalid rule status %q", status)
	}
	err = s.api.Patch(ctx, p, map[string]string{"status": status}, &r, ruleSchema)
	return r, err
}

// DeleteRule removes a rule.
func (s *Service) DeleteRule(ctx context.Context, id string) error {
	p, err := rulePath(id)
	if err != nil {
		return err
	}
	return s.api.Delete(ctx, p, nil, nil, nil)
}

// ListConnectors returns the available connectors and their state.
func (s *Service) ListConnectors(ctx context.Context) ([]Connector, error) {
	var cs []Connector
	if err := s.api.Get(ctx, connectorsPath, &cs, connectorsSchema); err != nil {
		return nil, err
	}
	return cs, nil
}

// ConnectURL returns the URL that starts the auth flow for a connector.
func (s *Service) ConnectURL(ctx context.Context, connectorID string) (string, error) {
	connectorID = strings.TrimSpace(connectorID)
	if connectorID == "" {
		return "", errors.New("connector id is required")
	}
	var resp ConnectResponse
	if err := s.api.Get(ctx, connectorsPath+"/connect/"+url.PathEscape(connectorID), &resp, connectSchema); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// ListGroups returns WhatsApp groups and chats. moderated limits the result
// to chats the hub moderates.
func (s *Service) ListGroups(ctx context.Context, moderated bool) (GroupsResponse, error) {
	var g GroupsResponse
	p := groupsPath
	if moderated {
		p += "?" + url.Values{"moderation_status": {"true"}}.Encode()
	}
	err := s.api.Get(ctx, p, &g, groupsSchema)
	return g, err
}

// LinkWhatsApp requests a pairing code for phone. The optional avatar is
// uploaded as the linked device's picture.
func (s *Service) LinkWhatsApp(ctx context.Context, phone string, avatar io.Reader) (LinkCode, error) {
	var code LinkCode
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return code, errors.New("phone number is required")
	}

	form := apiclient.FormData{Fields: map[string]string{"phone_number": phone}}
	if avatar != nil {
		form.Files = append(form.Files, apiclient.FormFile{Field: "avatar", FileName: "avatar.png", Content: avatar})
	}
	err := s.api.PostFormData(ctx, wahaLinkPath, form, &code, linkCodeSchema)
	return code, err
}

func rulePath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("rule id is required")
	}
	return rulesPath + "/" + url.PathEscape(id), nil
}

func normalizeRuleInput(in RuleInput) (RuleInput, error) {
	in.RawText = strings.TrimSpace(in.RawText)
	if in.RawText == "" {
		return in, errors.New("rule text is required")
	}
	switch in.Status {
	case "":
		in.Status = RuleActive
	case RuleActive, RuleInactive:
	default:
		return in, fmt.Errorf("invalid rule status %q", in.Status)
	}
	if in.ChatIDs == nil {
		in.ChatIDs = []string{}
	}
	if in.Interval < 0 {
		return in, fmt.Errorf("invalid rule interval %d", in.Interval)
	}
	return in, nil
}
