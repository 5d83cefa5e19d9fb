package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"kinnected/backend/pkg/apperrors"
)

// ============================================================================
// Account Operations
// ============================================================================

const accountProjection = `a {.id, .username, .name, .email, .password_hash, .phone_number,
	.bio, .location, .profile_picture, .privacy_settings, .tree_preferences,
	.notification_settings, .relation_settings, .app_preferences, .created_at, .updated_at}`

// CreateAccount persists a new account. A username or email collision surfaces
// as a conflict error from the unique constraints.
func (r *Repository) CreateAccount(ctx context.Context, acc *Account) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		CREATE (a:Account {
			id: $id,
			username: $username,
			username_lower: $usernameLower,
			name: $name,
			email: $email,
			password_hash: $passwordHash,
			phone_number: $phoneNumber,
			bio: $bio,
			location: $location,
			profile_picture: $profilePicture,
			privacy_settings: $privacySettings,
			tree_preferences: $treePreferences,
			notification_settings: $notificationSettings,
			relation_settings: $relationSettings,
			app_preferences: $appPreferences,
			created_at: datetime($now),
			updated_at: datetime($now)
		})
		RETURN a.id as id
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"id":                   acc.ID,
		"username":             acc.Username,
		"usernameLower":        strings.ToLower(acc.Username),
		"name":                 acc.FullName,
		"email":                strings.ToLower(acc.Email),
		"passwordHash":         acc.PasswordHash,
		"phoneNumber":          acc.PhoneNumber,
		"bio":                  acc.Bio,
		"location":             acc.Location,
		"profilePicture":       acc.ProfilePicture,
		"privacySettings":      mustJSON(acc.Privacy),
		"treePreferences":      mustJSON(acc.TreePreferences),
		"notificationSettings": mustJSON(acc.Notifications),
		"relationSettings":     mustJSON(acc.RelationSettings),
		"appPreferences":       mustJSON(acc.AppPreferences),
		"now":                  now,
	})
	if err != nil {
		return translateError(err, "Username or email already exists", "username")
	}

	if _, err := result.Single(ctx); err != nil {
		return translateError(err, "Username or email already exists", "username")
	}

	r.logger.Info("Account created",
		zap.String("account_id", acc.ID),
		zap.String("username", acc.Username),
	)
	return nil
}

// GetAccountByID fetches an account, returning nil when it does not exist
func (r *Repository) GetAccountByID(ctx context.Context, id string) (*Account, error) {
	return r.findAccount(ctx, "a.id = $value", id)
}

// GetAccountByUsername fetches an account by handle, case-insensitively,
// returning nil when it does not exist
func (r *Repository) GetAccountByUsername(ctx context.Context, username string) (*Account, error) {
	return r.findAccount(ctx, "a.username_lower = toLower($value)", username)
}

func (r *Repository) findAccount(ctx context.Context, where, value string) (*Account, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (a:Account)
		WHERE %s
		RETURN %s as account
		LIMIT 1
	`, where, accountProjection)

	result, err := session.Run(ctx, query, map[string]interface{}{"value": value})
	if err != nil {
		return nil, apperrors.Server("Failed to fetch account", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, apperrors.Server("Failed to fetch account", err)
		}
		return nil, nil
	}

	return scanAccount(getMapFromRecord(result.Record(), "account")), nil
}

// SearchAccounts matches the query case-insensitively against handle, display
// name, and email, returning at most limit public summaries
func (r *Repository) SearchAccounts(ctx context.Context, query string, limit int) ([]*AccountSummary, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	cypher := `
		MATCH (a:Account)
		WHERE toLower(a.username) CONTAINS toLower($query)
		   OR toLower(a.name) CONTAINS toLower($query)
		   OR toLower(a.email) CONTAINS toLower($query)
		RETURN a {.id, .username, .name, .profile_picture} as account
		ORDER BY a.username_lower
		LIMIT $limit
	`

	result, err := session.Run(ctx, cypher, map[string]interface{}{
		"query": query,
		"limit": limit,
	})
	if err != nil {
		return nil, apperrors.Server("Failed to search accounts", err)
	}

	summaries := []*AccountSummary{}
	for result.Next(ctx) {
		m := getMapFromRecord(result.Record(), "account")
		if m == nil {
			continue
		}
		summaries = append(summaries, &AccountSummary{
			ID:             getStringFromMap(m, "id"),
			Username:       getStringFromMap(m, "username"),
			FullName:       getStringFromMap(m, "name"),
			ProfilePicture: getStringFromMap(m, "profile_picture"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.Server("Failed to search accounts", err)
	}

	return summaries, nil
}

// UpdateAccount applies the non-nil fields of the update and returns the
// refreshed account. Returns nil when the account does not exist.
func (r *Repository) UpdateAccount(ctx context.Context, id string, update *AccountUpdate) (*Account, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	setClauses := []string{"a.updated_at = datetime($now)"}
	params := map[string]interface{}{
		"id":  id,
		"now": time.Now().UTC().Format(time.RFC3339),
	}

	addSet := func(clause, key string, value interface{}) {
		setClauses = append(setClauses, clause)
		params[key] = value
	}

	if update.FullName != nil {
		addSet("a.name = $name", "name", *update.FullName)
	}
	if update.Email != nil {
		addSet("a.email = $email", "email", strings.ToLower(*update.Email))
	}
	if update.PhoneNumber != nil {
		addSet("a.phone_number = $phoneNumber", "phoneNumber", *update.PhoneNumber)
	}
	if update.Bio != nil {
		addSet("a.bio = $bio", "bio", *update.Bio)
	}
	if update.Location != nil {
		addSet("a.location = $location", "location", *update.Location)
	}
	if update.ProfilePicture != nil {
		addSet("a.profile_picture = $profilePicture", "profilePicture", *update.ProfilePicture)
	}
	if update.Privacy != nil {
		addSet("a.privacy_settings = $privacySettings", "privacySettings", mustJSON(*update.Privacy))
	}
	if update.TreePreferences != nil {
		addSet("a.tree_preferences = $treePreferences", "treePreferences", mustJSON(*update.TreePreferences))
	}
	if update.Notifications != nil {
		addSet("a.notification_settings = $notificationSettings", "notificationSettings", mustJSON(*update.Notifications))
	}
	if update.RelationSettings != nil {
		addSet("a.relation_settings = $relationSettings", "relationSettings", mustJSON(*update.RelationSettings))
	}
	if update.AppPreferences != nil {
		addSet("a.app_preferences = $appPreferences", "appPreferences", mustJSON(*update.AppPreferences))
	}

	query := fmt.Sprintf(`
		MATCH (a:Account {id: $id})
		SET %s
		RETURN %s as account
	`, strings.Join(setClauses, ", "), accountProjection)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, translateError(err, "Email already exists", "email")
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, translateError(err, "Email already exists", "email")
		}
		return nil, nil
	}

	return scanAccount(getMapFromRecord(result.Record(), "account")), nil
}

// DeleteAccount removes the account node and its edges. Relation records the
// account owned or targeted are left behind; relation cleanup is not cascaded.
func (r *Repository) DeleteAccount(ctx context.Context, id string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (a:Account {id: $id})
		DETACH DELETE a
	`

	if _, err := session.Run(ctx, query, map[string]interface{}{"id": id}); err != nil {
		return apperrors.Server("Failed to delete account", err)
	}

	r.logger.Info("Account deleted", zap.String("account_id", id))
	return nil
}

// ============================================================================
// Scanning
// ============================================================================

func scanAccount(m map[string]interface{}) *Account {
	if m == nil {
		return nil
	}

	acc := &Account{
		ID:               getStringFromMap(m, "id"),
		Username:         getStringFromMap(m, "username"),
		FullName:         getStringFromMap(m, "name"),
		Email:            getStringFromMap(m, "email"),
		PasswordHash:     getStringFromMap(m, "password_hash"),
		PhoneNumber:      getStringFromMap(m, "phone_number"),
		Bio:              getStringFromMap(m, "bio"),
		Location:         getStringFromMap(m, "location"),
		ProfilePicture:   getStringFromMap(m, "profile_picture"),
		Privacy:          DefaultPrivacySettings(),
		TreePreferences:  DefaultTreePreferences(),
		Notifications:    DefaultNotificationSettings(),
		RelationSettings: DefaultRelationSettings(),
		AppPreferences:   DefaultAppPreferences(),
		CreatedAt:        getTimeFromMap(m, "created_at"),
		UpdatedAt:        getTimeFromMap(m, "updated_at"),
	}

	unmarshalInto(getStringFromMap(m, "privacy_settings"), &acc.Privacy)
	unmarshalInto(getStringFromMap(m, "tree_preferences"), &acc.TreePreferences)
	unmarshalInto(getStringFromMap(m, "notification_settings"), &acc.Notifications)
	unmarshalInto(getStringFromMap(m, "relation_settings"), &acc.RelationSettings)
	unmarshalInto(getStringFromMap(m, "app_preferences"), &acc.AppPreferences)

	return acc
}

// Preference groups are stored as JSON-string properties; malformed or absent
// values keep the defaults already set on the struct.
func unmarshalInto(raw string, v interface{}) {
	if raw == "" {
		return
	}
	_ = json.Unmarshal([]byte(raw), v)
}

func mustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
