package views

import (
	"time"

	"github.com/dms/backend/internal/domain/views"
	"github.com/google/uuid"
)

// FilterRuleDTO is one predicate of a saved view
type FilterRuleDTO struct {
	RuleType int    `json:"rule_type"`
	Value    string `json:"value"`
}

// SavedViewResponse is the API shape of a saved view
type SavedViewResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	ShowOnDashboard bool            `json:"show_on_dashboard"`
	ShowInSidebar   bool            `json:"show_in_sidebar"`
	SortField       string          `json:"sort_field"`
	SortReverse     bool            `json:"sort_reverse"`
	FilterRules     []FilterRuleDTO `json:"filter_rules"`
	Owner           uuid.UUID       `json:"owner"`
	Created         time.Time       `json:"created"`
}

// ToSavedViewResponse converts a saved view
func ToSavedViewResponse(view *views.SavedView) *SavedViewResponse {
	rules := make([]FilterRuleDTO, len(view.FilterRules))
	for i, rule := range view.FilterRules {
		rules[i] = FilterRuleDTO{RuleType: rule.RuleType, Value: rule.Value}
	}
	return &SavedViewResponse{
		ID:              view.ID,
		Name:            view.Name,
		ShowOnDashboard: view.ShowOnDashboard,
		ShowInSidebar:   view.ShowInSidebar,
		SortField:       view.SortField,
		SortReverse:     view.SortReverse,
		FilterRules:     rules,
		Owner:           view.OwnerID,
		Created:         view.CreatedAt,
	}
}

// CreateSavedViewRequest is the payload for creating a saved view
type CreateSavedViewRequest struct {
	Name            string          `json:"name" binding:"required"`
	ShowOnDashboard bool            `json:"show_on_dashboard"`
	ShowInSidebar   bool            `json:"show_in_sidebar"`
	SortField       string          `json:"sort_field"`
	SortReverse     bool            `json:"sort_reverse"`
	FilterRules     []FilterRuleDTO `json:"filter_rules"`
}

// UpdateSavedViewRequest is the payload for updating a saved view.
// Nil fields stay unchanged.
type UpdateSavedViewRequest struct {
	Name            *string          `json:"name"`
	ShowOnDashboard *bool            `json:"show_on_dashboard"`
	ShowInSidebar   *bool            `json:"show_in_sidebar"`
	SortField       *string          `json:"sort_field"`
	SortReverse     *bool            `json:"sort_reverse"`
	FilterRules     *[]FilterRuleDTO `json:"filter_rules"`
}

// UserInfo is the account summary embedded in the UI settings payload
type UserInfo struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	IsSuperuser bool      `json:"is_superuser"`
	Groups      []string  `json:"groups"`
}

// UISettingsResponse is the payload backing the frontend boot sequence
type UISettingsResponse struct {
	User        UserInfo               `json:"user"`
	Settings    map[string]interface{} `json:"settings"`
	Permissions []string               `json:"permissions"`
}

// ReplaceUISettingsRequest replaces the user's settings blob
type ReplaceUISettingsRequest struct {
	Settings map[string]interface{} `json:"settings" binding:"required"`
}
