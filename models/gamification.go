package models

import "time"

// GamificationEvent is broadcast over WebSocket when a user's XP, level or
// badges change.
type GamificationEvent struct {
	Type      string    `json:"type"` // "xp_awarded", "level_up", "badge_awarded"
	UserID    string    `json:"userId"`
	BadgeName string    `json:"badgeName,omitempty"`
	XPGained  int       `json:"xpGained,omitempty"`
	NewXP     int       `json:"newXp,omitempty"`
	NewLevel  int       `json:"newLevel,omitempty"`
	Action    string    `json:"action,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
