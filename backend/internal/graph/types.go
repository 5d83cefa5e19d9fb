package graph

import "time"

// ============================================================================
// Relation enums
// ============================================================================

// RelationType is one directed family-edge kind
type RelationType string

const (
	RelationMother  RelationType = "mother"
	RelationFather  RelationType = "father"
	RelationSibling RelationType = "sibling"
	RelationSpouse  RelationType = "spouse"
	RelationChild   RelationType = "child"
)

// RelationTypes lists every valid relation type
var RelationTypes = []RelationType{
	RelationMother,
	RelationFather,
	RelationSibling,
	RelationSpouse,
	RelationChild,
}

// Valid reports whether t is one of the five relation types
func (t RelationType) Valid() bool {
	for _, rt := range RelationTypes {
		if t == rt {
			return true
		}
	}
	return false
}

// RelationStatus is the confirmation-workflow state of a relation
type RelationStatus string

const (
	StatusPending  RelationStatus = "pending"
	StatusAccepted RelationStatus = "accepted"
	StatusRejected RelationStatus = "rejected"
)

// ============================================================================
// Accounts
// ============================================================================

// Account represents a registered user. The password hash is never serialized.
type Account struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	PasswordHash   string `json:"-"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	Bio            string `json:"bio,omitempty"`
	Location       string `json:"location,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`

	Privacy          PrivacySettings      `json:"privacySettings"`
	TreePreferences  TreePreferences      `json:"familyTreePreferences"`
	Notifications    NotificationSettings `json:"notificationSettings"`
	RelationSettings RelationSettings     `json:"relationManagementSettings"`
	AppPreferences   AppPreferences       `json:"appPreferences"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary projects the account into its public display fields
func (a *Account) Summary() *AccountSummary {
	return &AccountSummary{
		ID:             a.ID,
		Username:       a.Username,
		FullName:       a.FullName,
		ProfilePicture: a.ProfilePicture,
	}
}

// AccountSummary is the display projection used when resolving relation parties
type AccountSummary struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"fullName"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// PrivacySettings controls profile visibility
type PrivacySettings struct {
	ProfileVisibility    string   `json:"profileVisibility"` // public, private, connections
	HideFromGlobalSearch bool     `json:"hideFromGlobalSearch"`
	BlockList            []string `json:"blockList"`
}

// TreePreferences controls the radial tree rendering
type TreePreferences struct {
	DefaultCenterNode    string  `json:"defaultCenterNode"` // self, lastViewed
	ShowPlaceholderNodes bool    `json:"showPlaceholderNodes"`
	AnimationSpeed       float64 `json:"animationSpeed"`
	EnableAnimations     bool    `json:"enableAnimations"`
	NodeSize             int     `json:"nodeSize"`
	LayoutStyle          string  `json:"layoutStyle"` // standard, compact
}

// NotificationSettings controls in-app alerting
type NotificationSettings struct {
	InAppNotifications     bool `json:"inAppNotifications"`
	ConnectionRequestAlert bool `json:"connectionRequestAlerts"`
	NicknameEditAlerts     bool `json:"nicknameEditAlerts"`
}

// RelationSettings controls relation-management behavior
type RelationSettings struct {
	ManageSuggestedRelations      bool                `json:"manageSuggestedRelations"`
	AllowOthersToSuggestRelations bool                `json:"allowOthersToSuggestRelations"`
	CustomRelationshipLabels      []CustomLabelEntry `json:"customRelationshipLabels"`
}

// CustomLabelEntry maps a relation key to a custom display label
type CustomLabelEntry struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// AppPreferences controls app appearance
type AppPreferences struct {
	Theme              string `json:"theme"` // light, dark, custom
	FontSize           int    `json:"fontSize"`
	DefaultLandingPage string `json:"defaultLandingPage"` // home, profile, tree
}

// DefaultPrivacySettings returns the registration-time privacy defaults
func DefaultPrivacySettings() PrivacySettings {
	return PrivacySettings{ProfileVisibility: "public", BlockList: []string{}}
}

// DefaultTreePreferences returns the registration-time tree defaults
func DefaultTreePreferences() TreePreferences {
	return TreePreferences{
		DefaultCenterNode:    "self",
		ShowPlaceholderNodes: true,
		AnimationSpeed:       1,
		EnableAnimations:     true,
		NodeSize:             100,
		LayoutStyle:          "standard",
	}
}

// DefaultNotificationSettings returns the registration-time notification defaults
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		InAppNotifications:     true,
		ConnectionRequestAlert: true,
		NicknameEditAlerts:     true,
	}
}

// DefaultRelationSettings returns the registration-time relation-management defaults
func DefaultRelationSettings() RelationSettings {
	return RelationSettings{
		ManageSuggestedRelations:      true,
		AllowOthersToSuggestRelations: true,
		CustomRelationshipLabels:      []CustomLabelEntry{},
	}
}

// DefaultAppPreferences returns the registration-time appearance defaults
func DefaultAppPreferences() AppPreferences {
	return AppPreferences{Theme: "light", FontSize: 14, DefaultLandingPage: "home"}
}

// AccountUpdate lists exactly the mutable profile fields. Nil means "leave unchanged".
type AccountUpdate struct {
	FullName         *string               `json:"fullName"`
	Email            *string               `json:"email"`
	PhoneNumber      *string               `json:"phoneNumber"`
	Bio              *string               `json:"bio"`
	Location         *string               `json:"location"`
	ProfilePicture   *string               `json:"profilePicture"`
	Privacy          *PrivacySettings      `json:"privacySettings"`
	TreePreferences  *TreePreferences      `json:"familyTreePreferences"`
	Notifications    *NotificationSettings `json:"notificationSettings"`
	RelationSettings *RelationSettings     `json:"relationManagementSettings"`
	AppPreferences   *AppPreferences       `json:"appPreferences"`
}

// Empty reports whether the update touches no fields
func (u *AccountUpdate) Empty() bool {
	return u.FullName == nil && u.Email == nil && u.PhoneNumber == nil &&
		u.Bio == nil && u.Location == nil && u.ProfilePicture == nil &&
		u.Privacy == nil && u.TreePreferences == nil && u.Notifications == nil &&
		u.RelationSettings == nil && u.AppPreferences == nil
}

// ============================================================================
// Relations
// ============================================================================

// Relation is one directed edge in the family graph, owned by FromUser.
// A placeholder relation has no target account; a real relation always does.
type Relation struct {
	ID       string          `json:"id"`
	FromUser *AccountSummary `json:"fromUser,omitempty"`
	ToUser   *AccountSummary `json:"toUser,omitempty"`

	Type   RelationType   `json:"relationType"`
	Status RelationStatus `json:"status"`

	IsPlaceholder bool   `json:"isPlaceholder"`
	FullName      string `json:"fullName,omitempty"`
	Nickname      string `json:"nickname,omitempty"`
	Description   string `json:"description,omitempty"`
	PlaceholderID string `json:"placeholderId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OwnerID returns the owning account's ID
func (r *Relation) OwnerID() string {
	if r.FromUser == nil {
		return ""
	}
	return r.FromUser.ID
}

// TargetID returns the target account's ID, empty for placeholders
func (r *Relation) TargetID() string {
	if r.ToUser == nil {
		return ""
	}
	return r.ToUser.ID
}

// RelationView is the flat display shape produced for the relation listing:
// always the other party from the viewer's perspective, with the owner's
// private annotations included only for the owner.
type RelationView struct {
	ID             string         `json:"id"`
	RelationType   RelationType   `json:"relationType"`
	DisplayName    string         `json:"fullName"`
	UserID         string         `json:"userId,omitempty"`
	Username       string         `json:"username,omitempty"`
	ProfilePicture string         `json:"profilePicture,omitempty"`
	IsPlaceholder  bool           `json:"isPlaceholder"`
	Nickname       string         `json:"nickname,omitempty"`
	Description    string         `json:"description,omitempty"`
	Status         RelationStatus `json:"status"`
}
