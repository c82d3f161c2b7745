package models

import "time"

type LoginLog struct {
	ID         int        `json:"id"`
	UserID     int        `json:"user_id"`
	UserName   string     `json:"user_name,omitempty"`
	LoginTime  time.Time  `json:"login_time"`
	LogoutTime *time.Time `json:"logout_time,omitempty"`
	IPAddress  string     `json:"ip_address,omitempty"`
	UserAgent  string     `json:"user_agent,omitempty"`
}
