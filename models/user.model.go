package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationPreferences controls which emails a user receives
type NotificationPreferences struct {
	EmailOnApproval    bool `json:"email_on_approval"`
	EmailOnRejection   bool `json:"email_on_rejection"`
	EmailOnMilestone   bool `json:"email_on_milestone"`
	EmailOnCertificate bool `json:"email_on_certificate"`
	WeeklyDigest       bool `json:"weekly_digest"`
}

// AccessibilityPreferences holds per-user accessibility settings
type AccessibilityPreferences struct {
	CaptionsByDefault  bool   `json:"captions_by_default"`
	PreferredFontScale int    `json:"preferred_font_scale"` // percent, 100 = default
	ReducedMotion      bool   `json:"reduced_motion"`
	PreferredLanguage  string `json:"preferred_language"`
}

// DefaultNotificationPreferences returns the opt-in defaults for new users
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		EmailOnApproval:    true,
		EmailOnRejection:   true,
		EmailOnMilestone:   true,
		EmailOnCertificate: true,
		WeeklyDigest:       false,
	}
}

type User struct {
	gorm.Model
	ProfileImage        string     `gorm:"default:''"`
	Name                string     `gorm:"default:''"`
	Email               string     `gorm:"unique;not null"`
	Mobile              string     `gorm:"default:''"`
	Role                string     `gorm:"default:'USER'"` // USER, AUTHOR, ADMIN
	Password            string     `gorm:"not null"`
	Headline            string     `gorm:"default:''"`
	Bio                 string     `gorm:"type:text"`
	IsMobileVerified    bool       `gorm:"default:false"`
	IsEmailVerified     bool       `gorm:"default:false"`
	LastLogin           time.Time  `gorm:"default:NULL"`
	FailedLoginAttempts int        `gorm:"default:0"`
	LastFailedLogin     *time.Time `json:"last_failed_login"`
	IsBlocked           bool       `gorm:"default:false"`
	BlockedUntil        *time.Time `json:"blocked_until"`

	NotificationPrefs  datatypes.JSONType[NotificationPreferences]  `json:"notification_prefs"`
	AccessibilityPrefs datatypes.JSONType[AccessibilityPreferences] `json:"accessibility_prefs"`

	IsDeleted bool `gorm:"default:false"`
}

// IsAdmin reports whether the user holds the administrator role
func (u *User) IsAdmin() bool {
	return u.Role == "ADMIN"
}
