package models

import "time"

// Action types recorded for irreversible or sensitive operations.
const (
	ActionOrderSplit    = "order_split"
	ActionOrderMerge    = "order_merge"
	ActionOrderDelete   = "order_delete"
	ActionPaymentEdit   = "payment_edit"
	ActionPaymentDelete = "payment_delete"
	ActionUserCreate    = "user_create"
	ActionUserUpdate    = "user_update"
	ActionUserDelete    = "user_delete"
	ActionExpenseDelete = "expense_delete"
)

type AdminActionLog struct {
	ID          int       `json:"id"`
	AdminUserID int       `json:"admin_user_id"`
	AdminName   string    `json:"admin_name,omitempty"`
	ActionType  string    `json:"action_type"`
	TargetType  string    `json:"target_type"`
	TargetID    *int      `json:"target_id,omitempty"`
	Description string    `json:"description"`
	OldValue    *string   `json:"old_value,omitempty"`
	NewValue    *string   `json:"new_value,omitempty"`
	IPAddress   *string   `json:"ip_address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
